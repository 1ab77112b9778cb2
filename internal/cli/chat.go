// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/Seabass-up/Charlie-Chat/internal/browser"
	"github.com/Seabass-up/Charlie-Chat/internal/export"
	"github.com/Seabass-up/Charlie-Chat/internal/model"
	"github.com/Seabass-up/Charlie-Chat/internal/render"
	"github.com/Seabass-up/Charlie-Chat/internal/util"
	"github.com/Seabass-up/Charlie-Chat/internal/voice"
)

// VoiceWait bounds how long /voice waits for a transcript.
const VoiceWait = 30 * time.Second

func newChatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat in the current terminal",
		Long: `Start a line-oriented chat session with input history.

Commands:
  /files [path]     List a directory on the backend host
  /open <n>         Open entry n of the last listing
  /up               Go to the parent directory
  /tools            List MCP tools
  /search <query>   Search with tools
  /model [name]     Show or switch the model
  /export [format]  Save the transcript (txt, md, json, yaml, html)
  /copy             Copy the last reply to the clipboard
  /clear            Clear the conversation
  /voice            Dictate a message
  /quit             Exit`,
		Example: `  charlie chat
  charlie chat --model llama3.2
  charlie chat --backend http://192.168.1.10:8000`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationLogToFile: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := RequiresTTY("chat"); err != nil {
				return err
			}
			return a.runChat(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// =============================================================================
// LINE INPUT
// =============================================================================

// lineReader provides input history and line editing.
type lineReader struct {
	line        *liner.State
	historyFile string
}

func newLineReader(historyFile string) *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &lineReader{line: line, historyFile: historyFile}
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return r
}

// ReadInput prompts for a line and records non-empty input in history.
func (r *lineReader) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the
// terminal.
func (r *lineReader) Close() {
	defer r.line.Close()
	if r.historyFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = r.line.WriteHistory(f)
}

// =============================================================================
// REPL
// =============================================================================

func (a *app) runChat(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	width := GetTerminalWidth()
	var renderer render.Renderer = render.Plain{}
	if isTerminalWriter(out) {
		term, err := render.NewTerminal(a.cfg.UI.Theme, width)
		if err != nil {
			a.logger.Warn("markdown renderer unavailable", "err", err)
		} else {
			renderer = term
		}
	}

	fe := a.newFrontend(renderer)
	defer fe.voice.Stop()
	r := newREPL(ctx, fe, out)
	r.width = width
	r.exportDir = a.cfg.Client.ExportDir

	input := newLineReader(a.cfg.Client.HistoryFile)
	defer input.Close()

	fmt.Fprintln(out, titleStyle.Render("Charlie"), dimStyle.Render(fmt.Sprintf("model %s, backend %s", fe.ctrl.Session().SelectedModel, a.cfg.Client.BackendURL)))
	fmt.Fprintln(out, dimStyle.Render("Type /help for commands, /quit to exit."))

	for {
		line, err := input.ReadInput(promptStyle.Render("charlie> "))
		if err != nil {
			// Ctrl+C aborts the prompt; Ctrl+D is io.EOF. Both end the session.
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				a.logger.Warn("input closed", "err", err)
			}
			fmt.Fprintln(out)
			return nil
		}
		if r.handle(line) {
			return nil
		}
	}
}

// repl executes chat input against the controllers and prints every new
// turn. It is separate from the liner loop so it can be driven in tests.
type repl struct {
	ctx       context.Context
	fe        *frontend
	out       io.Writer
	width     int
	exportDir string
	voiceWait time.Duration
	copy      func(string) error

	shown    int
	skipEcho bool
}

func newREPL(ctx context.Context, fe *frontend, out io.Writer) *repl {
	return &repl{
		ctx:       ctx,
		fe:        fe,
		out:       out,
		voiceWait: VoiceWait,
		copy:      clipboard.WriteAll,
	}
}

// handle runs one line of input. It reports whether the session should end.
func (r *repl) handle(line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false
	case strings.EqualFold(line, "exit"), strings.EqualFold(line, "quit"):
		return true
	case strings.HasPrefix(line, "/"):
		quit := r.command(line)
		r.flush()
		return quit
	}

	r.skipEcho = true
	if !r.fe.ctrl.SendText(r.ctx, line) {
		r.skipEcho = false
		r.info("A message is already being sent.")
	}
	r.flush()
	return false
}

func (r *repl) command(line string) bool {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	name = strings.ToLower(name)
	arg = strings.TrimSpace(arg)
	ctrl := r.fe.ctrl

	switch name {
	case "help", "h", "?":
		r.info(chatHelp)

	case "quit", "exit", "q":
		return true

	case "clear":
		ctrl.Clear()
		r.shown = 0
		r.info("Conversation cleared.")

	case "model":
		if arg == "" {
			r.info("Model: " + ctrl.Session().SelectedModel)
			break
		}
		ctrl.SetModel(arg)
		r.info("Model switched to " + arg)

	case "files":
		path := arg
		if path == "" {
			path = r.fe.browser.CurrentPath()
		}
		if r.fe.browser.LoadDirectory(r.ctx, path) {
			r.printListing()
		}

	case "open":
		r.open(arg)

	case "up":
		if _, ok := browser.ParentPath(r.fe.browser.CurrentPath()); !ok {
			r.info("Already at the top.")
			break
		}
		if r.fe.browser.GoUp(r.ctx) {
			r.printListing()
		}

	case "tools":
		text, err := r.fe.discovery.ListTools(r.ctx)
		r.notice("load the tool list", text, err)

	case "search":
		if arg == "" {
			r.info("Usage: /search <query>")
			break
		}
		ctrl.AddUserTurn("Search: " + arg)
		text, err := r.fe.discovery.Search(r.ctx, arg)
		r.notice("search with tools", text, err)

	case "export":
		r.export(arg)

	case "copy":
		last := ctrl.Session().LastAssistant()
		if last == nil {
			r.info("Nothing to copy yet.")
			break
		}
		if err := r.copy(last.Text); err != nil {
			r.info("Clipboard unavailable: " + err.Error())
			break
		}
		r.info("Copied last reply.")

	case "voice":
		r.listen()

	default:
		r.info(fmt.Sprintf("Unknown command /%s (try /help)", name))
	}
	return false
}

const chatHelp = `Commands:
  /files [path]     list a directory
  /open <n>         open entry n of the last listing
  /up               parent directory
  /tools            list MCP tools
  /search <query>   search with tools
  /model [name]     show or switch the model
  /export [format]  save the transcript (txt, md, json, yaml, html)
  /copy             copy the last reply
  /clear            clear the conversation
  /voice            dictate a message
  /quit             exit`

func (r *repl) open(arg string) {
	listing := r.fe.browser.Listing()
	if listing == nil {
		r.info("No directory listed yet. Use /files first.")
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(listing.Items) {
		r.info(fmt.Sprintf("Usage: /open <1-%d>", len(listing.Items)))
		return
	}
	entry := listing.Items[n-1]
	if r.fe.browser.SelectEntry(r.ctx, entry) && entry.IsDir() {
		r.printListing()
	}
}

func (r *repl) export(format string) {
	opts := export.DefaultOptions()
	if r.exportDir != "" {
		opts.OutputDir = r.exportDir
	}
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		r.info(err.Error())
		return
	}
	path, err := export.ExportToFile(export.NewTranscript(r.fe.ctrl.Session(), time.Now()), exporter, opts)
	if err != nil {
		r.fe.ctrl.Fail("export the conversation", err)
		return
	}
	r.info("Exported to " + path)
}

// listen runs one voice session and sends the transcript.
func (r *repl) listen() {
	err := r.fe.voice.Start()
	switch {
	case errors.Is(err, voice.ErrUnsupported):
		r.fe.ctrl.Notify("Voice input is not available: " + err.Error())
		return
	case err != nil:
		r.fe.ctrl.Fail("start voice input", err)
		return
	case !r.fe.voice.Available():
		r.info("Voice input is not available.")
		return
	}

	r.info("Listening...")
	select {
	case ev := <-r.fe.voice.Events():
		switch {
		case errors.Is(ev.Err, voice.ErrNoSpeech):
			r.info("No speech detected.")
		case ev.Err != nil:
			r.fe.ctrl.Fail("recognize speech", ev.Err)
		case ev.Transcript != "":
			if r.fe.ctrl.SendText(r.ctx, ev.Transcript) {
				r.speakReply()
			}
		}
	case <-time.After(r.voiceWait):
		r.fe.voice.Stop()
		r.info("No speech detected.")
	case <-r.ctx.Done():
		r.fe.voice.Stop()
	}
}

// speakReply reads the last reply aloud when a speaker is configured.
func (r *repl) speakReply() {
	last := r.fe.ctrl.Session().LastAssistant()
	if r.fe.speaker == nil || last == nil {
		return
	}
	r.flush()
	if err := r.fe.speaker.Speak(r.ctx, last.Text); err != nil {
		r.info("Could not read the reply aloud: " + err.Error())
	}
}

func (r *repl) notice(action, text string, err error) {
	if err != nil {
		r.fe.ctrl.Fail(action, err)
		return
	}
	r.fe.ctrl.Notify(text)
}

// =============================================================================
// OUTPUT
// =============================================================================

func (r *repl) info(text string) {
	fmt.Fprintln(r.out, dimStyle.Render(text))
}

// flush prints every turn added since the last call.
func (r *repl) flush() {
	turns := r.fe.ctrl.Session().Turns
	if r.shown > len(turns) {
		r.shown = 0
	}
	for _, t := range turns[r.shown:] {
		if t.Pending {
			continue
		}
		if r.skipEcho && t.Role == model.RoleUser {
			r.skipEcho = false
			continue
		}
		r.printTurn(t)
	}
	r.shown = len(turns)
	r.skipEcho = false
}

func (r *repl) printTurn(t *model.Turn) {
	label := assistantStyle.Render(t.Role.DisplayName())
	if t.Role == model.RoleUser {
		label = userStyle.Render(t.Role.DisplayName())
	}
	fmt.Fprintf(r.out, "%s %s\n", label, dimStyle.Render(t.Clock()))

	body := t.Display()
	if t.Rendered == "" && r.width > 0 {
		body = util.Wrap(body, r.width)
	}
	fmt.Fprintln(r.out, body)
	fmt.Fprintln(r.out)
}

func (r *repl) printListing() {
	listing := r.fe.browser.Listing()
	if listing == nil {
		return
	}
	fmt.Fprintln(r.out, titleStyle.Render(listing.Path))
	if len(listing.Items) == 0 {
		r.info("(empty)")
		return
	}
	for i, e := range listing.Items {
		name := e.Name
		size := ""
		if e.IsDir() {
			name += "/"
		} else if e.Size != nil {
			size = humanize.Bytes(uint64(*e.Size))
		}
		fmt.Fprintf(r.out, "%4d. %s %s\n", i+1, util.PadRight(name, 40), dimStyle.Render(size))
	}
}
