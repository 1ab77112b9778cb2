// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seabass-up/Charlie-Chat/internal/config"
	"github.com/Seabass-up/Charlie-Chat/internal/logging"
	"github.com/Seabass-up/Charlie-Chat/internal/model"
	"github.com/Seabass-up/Charlie-Chat/internal/render"
	"github.com/Seabass-up/Charlie-Chat/internal/server"
	"github.com/Seabass-up/Charlie-Chat/internal/voice"
)

// =============================================================================
// FAKE BACKEND
// =============================================================================

type backend struct {
	*httptest.Server
	messages []string
}

func size(n int64) *int64 { return &n }

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req model.ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.messages = append(b.messages, req.Message)
		if req.Message == "boom" {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "model exploded"})
			return
		}
		_ = json.NewEncoder(w).Encode(model.ChatReply{Reply: "reply to " + strings.SplitN(req.Message, "\n", 2)[0]})
	})
	mux.HandleFunc("GET /api/files", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		if path == "" {
			path = "/home/me"
		}
		_ = json.NewEncoder(w).Encode(model.DirectoryListing{
			Path: path,
			Items: []model.Entry{
				{Name: "docs", Type: model.EntryDirectory},
				{Name: "notes.txt", Type: model.EntryFile, Size: size(2048)},
			},
		})
	})
	mux.HandleFunc("GET /api/files/read", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.FileContent{
			Path:    r.URL.Query().Get("path"),
			Content: "remember the milk",
		})
	})
	mux.HandleFunc("GET /api/mcp/tools", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.ToolsResponse{Tools: model.ToolCatalog{
			"web_search": {{Name: "search", Description: "Search the web"}},
		}})
	})
	mux.HandleFunc("POST /api/mcp/search", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.SearchResponse{
			Query:     "go",
			ToolsUsed: []string{"memory"},
			Results:   map[string]json.RawMessage{"memory": json.RawMessage(`{"message":"nothing stored"}`)},
		})
	})
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

// isolate points config discovery at an empty home and writes a config
// file aimed at url.
func isolate(t *testing.T, url string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{"CHARLIE_CONFIG", "CHARLIE_BACKEND_URL", "CHARLIE_MODEL", "CHARLIE_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	config.ResetGlobalForTesting()

	path := filepath.Join(home, "charlie.toml")
	body := "[client]\nbackend_url = \"" + url + "\"\ndefault_model = \"test-model\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// =============================================================================
// COMMAND TREE
// =============================================================================

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"tui", "chat", "ask", "serve", "tools", "version"} {
		assert.Contains(t, names, want)
	}
	for _, flag := range []string{"config", "backend", "model", "log-level", "verbose"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing --%s", flag)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "charlie "+server.Version)
	assert.Contains(t, out, "Go version:")
}

func TestConfigFlag_MissingFile(t *testing.T) {
	isolate(t, "http://127.0.0.1:1")
	_, err := run(t, "", "--config", filepath.Join(t.TempDir(), "nope.toml"), "ask", "hi")
	assert.Error(t, err)
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk_Arguments(t *testing.T) {
	b := newBackend(t)
	cfg := isolate(t, b.URL)

	out, err := run(t, "", "--config", cfg, "ask", "what", "is", "this?")
	require.NoError(t, err)
	assert.Equal(t, "reply to what is this?\n", out)
	assert.Equal(t, []string{"what is this?"}, b.messages)
}

func TestAsk_Stdin(t *testing.T) {
	b := newBackend(t)
	cfg := isolate(t, b.URL)

	out, err := run(t, "  piped question\n", "--config", cfg, "ask")
	require.NoError(t, err)
	assert.Contains(t, out, "reply to piped question")
}

func TestAsk_Empty(t *testing.T) {
	b := newBackend(t)
	cfg := isolate(t, b.URL)

	_, err := run(t, "   ", "--config", cfg, "ask")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Empty(t, b.messages)
}

func TestAsk_BackendError(t *testing.T) {
	b := newBackend(t)
	cfg := isolate(t, b.URL)

	_, err := run(t, "", "--config", cfg, "ask", "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ask failed")
}

func TestAsk_BackendFlagOverridesConfig(t *testing.T) {
	b := newBackend(t)
	cfg := isolate(t, "http://127.0.0.1:1")

	out, err := run(t, "", "--config", cfg, "--backend", b.URL, "ask", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "reply to hello")
}

// =============================================================================
// TOOLS
// =============================================================================

func TestTools_List(t *testing.T) {
	b := newBackend(t)
	cfg := isolate(t, b.URL)

	out, err := run(t, "", "--config", cfg, "tools")
	require.NoError(t, err)
	assert.Contains(t, out, "**Web Search**")
	assert.Contains(t, out, "`search` - Search the web")
}

func TestTools_Search(t *testing.T) {
	b := newBackend(t)
	cfg := isolate(t, b.URL)

	out, err := run(t, "", "--config", cfg, "tools", "search", "go")
	require.NoError(t, err)
	assert.Contains(t, out, `Tool results for "go"`)
	assert.Contains(t, out, "nothing stored")
}

func TestTools_SearchNeedsQuery(t *testing.T) {
	_, err := run(t, "", "tools", "search")
	assert.Error(t, err)
}

// =============================================================================
// REPL
// =============================================================================

func newTestREPL(t *testing.T) (*repl, *backend, *bytes.Buffer) {
	t.Helper()
	b := newBackend(t)
	cfg := config.Default()
	cfg.Client.BackendURL = b.URL
	cfg.Client.DefaultModel = "test-model"
	cfg.Client.ExportDir = t.TempDir()
	cfg.Voice.Enabled = false

	a := &app{cfg: cfg, logger: logging.Discard()}
	var out bytes.Buffer
	r := newREPL(context.Background(), a.newFrontend(render.Plain{}), &out)
	r.exportDir = cfg.Client.ExportDir
	return r, b, &out
}

func TestREPL_SendPrintsReplyOnly(t *testing.T) {
	r, b, out := newTestREPL(t)

	assert.False(t, r.handle("hello there"))
	assert.Equal(t, []string{"hello there"}, b.messages)
	assert.Contains(t, out.String(), "Charlie")
	assert.Contains(t, out.String(), "reply to hello there")
	assert.NotContains(t, out.String(), "You ")
	assert.Len(t, r.fe.ctrl.Session().Turns, 2)
}

func TestREPL_BlankAndQuit(t *testing.T) {
	r, b, _ := newTestREPL(t)

	assert.False(t, r.handle("   "))
	assert.True(t, r.handle("/quit"))
	assert.True(t, r.handle("exit"))
	assert.Empty(t, b.messages)
}

func TestREPL_FilesAndOpen(t *testing.T) {
	r, b, out := newTestREPL(t)

	r.handle("/files")
	assert.Contains(t, out.String(), "/home/me")
	assert.Contains(t, out.String(), "1. docs/")
	assert.Contains(t, out.String(), "2. notes.txt")
	assert.Contains(t, out.String(), "2.0 kB")

	out.Reset()
	r.handle("/open 1")
	assert.Equal(t, "/home/me/docs", r.fe.browser.CurrentPath())
	assert.Contains(t, out.String(), "/home/me/docs")

	out.Reset()
	r.handle("/open 2")
	require.Len(t, b.messages, 1)
	assert.Contains(t, b.messages[0], "remember the milk")
	assert.Contains(t, out.String(), "Opened file: notes.txt")

	out.Reset()
	r.handle("/up")
	assert.Equal(t, "/home/me", r.fe.browser.CurrentPath())
}

func TestREPL_OpenNeedsListing(t *testing.T) {
	r, _, out := newTestREPL(t)

	r.handle("/open 1")
	assert.Contains(t, out.String(), "Use /files first")

	r.handle("/files")
	out.Reset()
	r.handle("/open 9")
	assert.Contains(t, out.String(), "Usage: /open <1-2>")
}

func TestREPL_Commands(t *testing.T) {
	r, _, out := newTestREPL(t)

	r.handle("/help")
	assert.Contains(t, out.String(), "/voice            dictate a message")

	r.handle("/model llama3")
	assert.Equal(t, "llama3", r.fe.ctrl.Session().SelectedModel)
	assert.Contains(t, out.String(), "Model switched to llama3")

	r.handle("hi")
	r.handle("/clear")
	assert.Empty(t, r.fe.ctrl.Session().Turns)

	out.Reset()
	r.handle("/nope")
	assert.Contains(t, out.String(), "Unknown command /nope")

	out.Reset()
	r.handle("/tools")
	assert.Contains(t, out.String(), "Available tools")

	out.Reset()
	r.handle("/search go")
	assert.Contains(t, out.String(), "Search: go")
	assert.Contains(t, out.String(), "nothing stored")
}

func TestREPL_CopyAndExport(t *testing.T) {
	r, _, out := newTestREPL(t)
	var copied string
	r.copy = func(s string) error { copied = s; return nil }

	r.handle("/copy")
	assert.Contains(t, out.String(), "Nothing to copy yet")

	r.handle("hello")
	r.handle("/copy")
	assert.Equal(t, "reply to hello", copied)

	out.Reset()
	r.handle("/export md")
	assert.Contains(t, out.String(), "Exported to ")
	files, err := filepath.Glob(filepath.Join(r.exportDir, "*.md"))
	require.NoError(t, err)
	assert.Len(t, files, 1)

	out.Reset()
	r.handle("/export docx")
	assert.NotContains(t, out.String(), "Exported to ")
}

func TestREPL_VoiceUnavailable(t *testing.T) {
	r, _, out := newTestREPL(t)

	r.handle("/voice")
	assert.Contains(t, out.String(), "Voice input is not available")

	out.Reset()
	r.handle("/voice")
	assert.Contains(t, out.String(), "Voice input is not available")
}

// scriptedRecognizer fails its first failStarts starts, then delivers
// transcript immediately.
type scriptedRecognizer struct {
	failStarts int
	transcript string
	starts     int
}

func (s *scriptedRecognizer) Available() bool { return true }

func (s *scriptedRecognizer) Start(cb voice.Callbacks) error {
	s.starts++
	if s.starts <= s.failStarts {
		return errors.New("microphone busy")
	}
	cb.OnResult(s.transcript)
	return nil
}

func (s *scriptedRecognizer) Stop() {}

type fakeSpeaker struct {
	err    error
	spoken []string
}

func (f *fakeSpeaker) Available() bool { return true }

func (f *fakeSpeaker) Speak(ctx context.Context, text string) error {
	f.spoken = append(f.spoken, text)
	return f.err
}

func countTurns(r *repl, prefix string) int {
	n := 0
	for _, turn := range r.fe.ctrl.Session().Turns {
		if strings.HasPrefix(turn.Text, prefix) {
			n++
		}
	}
	return n
}

func TestREPL_VoiceRetryAfterStartFailure(t *testing.T) {
	r, b, out := newTestREPL(t)
	r.fe.voice = voice.NewAdapter(&scriptedRecognizer{failStarts: 1, transcript: "hello from voice"}, logging.Discard())

	r.handle("/voice")
	assert.Contains(t, out.String(), "Could not start voice input.")
	assert.Empty(t, b.messages)
	assert.Empty(t, r.fe.voice.Events(), "a failed start leaves nothing queued")

	r.handle("/voice")
	assert.Equal(t, []string{"hello from voice"}, b.messages)
	assert.Contains(t, out.String(), "reply to hello from voice")
	assert.Equal(t, 1, countTurns(r, "Could not start voice input"))
}

func TestREPL_VoiceSpeaksReply(t *testing.T) {
	r, b, out := newTestREPL(t)
	speaker := &fakeSpeaker{}
	r.fe.speaker = speaker
	r.fe.voice = voice.NewAdapter(&scriptedRecognizer{transcript: "what time is it"}, logging.Discard())

	r.handle("/voice")
	assert.Equal(t, []string{"what time is it"}, b.messages)
	assert.Equal(t, []string{"reply to what time is it"}, speaker.spoken)

	r.handle("typed, not dictated")
	assert.Len(t, speaker.spoken, 1, "typed messages are not read aloud")

	speaker.err = errors.New("no audio device")
	r.handle("/voice")
	assert.Contains(t, out.String(), "Could not read the reply aloud: no audio device")
}

func TestApp_SpeakerNeedsSpeakReplies(t *testing.T) {
	cfg := config.Default()
	cfg.Voice.Enabled = true
	cfg.Voice.SpeakCommand = "espeak"
	a := &app{cfg: cfg, logger: logging.Discard()}
	assert.Nil(t, a.speaker())

	cfg.Voice.SpeakReplies = true
	assert.NotNil(t, a.speaker())

	cfg.Voice.Enabled = false
	assert.Nil(t, a.speaker())
}

func TestREPL_BackendFailureBecomesTurn(t *testing.T) {
	r, _, out := newTestREPL(t)

	r.handle("boom")
	assert.Contains(t, out.String(), "Sorry, something went wrong.")
	assert.False(t, r.fe.ctrl.Session().IsSending)
}
