// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Seabass-up/Charlie-Chat/internal/browser"
	"github.com/Seabass-up/Charlie-Chat/internal/export"
	"github.com/Seabass-up/Charlie-Chat/internal/voice"
)

// Command is a parsed slash command.
type Command struct {
	Name string
	Arg  string
}

// ParseCommand splits "/name rest of line". It reports false for input
// that is not a slash command.
func ParseCommand(input string) (Command, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") || len(input) < 2 {
		return Command{}, false
	}
	name, arg, _ := strings.Cut(input[1:], " ")
	return Command{Name: strings.ToLower(name), Arg: strings.TrimSpace(arg)}, true
}

const commandHelp = "**Commands**\n\n" +
	"- `/model [name]` show or switch the model\n" +
	"- `/clear` clear the conversation\n" +
	"- `/copy` copy the last reply\n" +
	"- `/export [txt|md|json|yaml|html]` save the transcript\n" +
	"- `/files [path]` browse files\n" +
	"- `/up` parent directory\n" +
	"- `/tools` list MCP tools\n" +
	"- `/search <query>` search with tools\n" +
	"- `/voice` toggle voice input\n" +
	"- `/quit` exit"

// runCommand executes a slash command.
func (m *Model) runCommand(c Command) tea.Cmd {
	switch c.Name {
	case "help", "h", "?":
		m.ctrl.Notify(commandHelp)

	case "quit", "exit", "q":
		return m.quit()

	case "clear":
		m.ctrl.Clear()
		return m.setStatus("Conversation cleared")

	case "model":
		if c.Arg == "" {
			return m.setStatus("Model: " + m.ctrl.Session().SelectedModel)
		}
		m.ctrl.SetModel(c.Arg)
		m.logger.Info("model switched", "model", c.Arg)
		return m.setStatus("Model switched to " + c.Arg)

	case "copy":
		return m.copyLastReply()

	case "export":
		return m.exportTranscript(c.Arg)

	case "files":
		m.showFiles = true
		m.setFocus(focusFiles)
		path := c.Arg
		if path == "" {
			path = m.browser.CurrentPath()
		}
		return fetchDirectoryCmd(m.ctx, m.browser, path)

	case "up":
		return m.goUp()

	case "tools":
		return listToolsCmd(m.ctx, m.discovery)

	case "search":
		if c.Arg == "" {
			return m.setStatus("Usage: /search <query>")
		}
		m.ctrl.AddUserTurn("Search: " + c.Arg)
		return searchToolsCmd(m.ctx, m.discovery, c.Arg)

	case "voice":
		return m.toggleVoice()

	default:
		return m.setStatus(fmt.Sprintf("Unknown command /%s (try /help)", c.Name))
	}
	return nil
}

// =============================================================================
// ACTIONS
// =============================================================================

func (m *Model) copyLastReply() tea.Cmd {
	last := m.ctrl.Session().LastAssistant()
	if last == nil {
		return m.setStatus("Nothing to copy yet")
	}
	if err := m.copy(last.Text); err != nil {
		m.logger.Warn("clipboard write failed", "err", err)
		return m.setStatus("Clipboard unavailable: " + err.Error())
	}
	return m.setStatus("Copied last reply")
}

func (m *Model) exportTranscript(format string) tea.Cmd {
	opts := export.DefaultOptions()
	if m.exportDir != "" {
		opts.OutputDir = m.exportDir
	}
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return m.setStatus(err.Error())
	}
	path, err := export.ExportToFile(export.NewTranscript(m.ctrl.Session(), time.Now()), exporter, opts)
	if err != nil {
		m.ctrl.Fail("export the conversation", err)
		return nil
	}
	m.logger.Info("conversation exported", "path", path)
	return m.setStatus("Exported to " + path)
}

func (m *Model) toggleVoice() tea.Cmd {
	if m.voice == nil {
		m.ctrl.Notify(voice.ErrUnsupported.Error())
		return nil
	}
	err := m.voice.Toggle()
	switch {
	case errors.Is(err, voice.ErrUnsupported):
		m.ctrl.Notify("Voice input is not available: " + err.Error())
	case err != nil:
		m.ctrl.Fail("start voice input", err)
	case m.voice.Listening():
		return m.setStatus("Listening...")
	default:
		return m.setStatus("Voice input stopped")
	}
	return nil
}

func (m *Model) goUp() tea.Cmd {
	parent, ok := browser.ParentPath(m.browser.CurrentPath())
	if !ok {
		return m.setStatus("Already at the top")
	}
	return fetchDirectoryCmd(m.ctx, m.browser, parent)
}
