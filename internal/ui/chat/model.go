// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Seabass-up/Charlie-Chat/internal/browser"
	convo "github.com/Seabass-up/Charlie-Chat/internal/chat"
	"github.com/Seabass-up/Charlie-Chat/internal/render"
	"github.com/Seabass-up/Charlie-Chat/internal/tools"
	"github.com/Seabass-up/Charlie-Chat/internal/ui/styles"
	"github.com/Seabass-up/Charlie-Chat/internal/voice"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

type pane int

const (
	focusInput pane = iota
	focusFiles
)

// Options wires the controllers into a Model. Controller, Browser and
// Discovery are required; the rest may be left zero.
type Options struct {
	Controller *convo.Controller
	Browser    *browser.Browser
	Discovery  *tools.Discovery
	Voice      *voice.Adapter

	// Speaker, when set, reads replies to dictated messages aloud.
	Speaker voice.Speaker

	// Terminal is resized with the window and installed as the
	// controller's renderer.
	Terminal *render.Terminal
	Theme    *styles.Theme

	BackendURL string
	ExportDir  string
	StartPath  string
	ShowFiles  bool
	WordWrap   int

	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
	Logger    *log.Logger
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx       context.Context
	ctrl      *convo.Controller
	browser   *browser.Browser
	discovery *tools.Discovery
	voice     *voice.Adapter
	speaker   voice.Speaker
	terminal  *render.Terminal
	theme     *styles.Theme
	logger    *log.Logger
	copy      func(string) error

	backendURL string
	exportDir  string
	startPath  string
	wordWrap   int

	// UI components
	keys     KeyMap
	help     help.Model
	viewport viewport.Model
	input    *textarea.Model
	spinner  spinner.Model

	// Dimensions
	width  int
	height int
	ready  bool

	focus     pane
	showFiles bool
	showHelp  bool
	cursor    int

	status    string
	statusSeq int
	quitting  bool
}

// inputBox adapts the textarea to the controller's Input interface.
type inputBox struct {
	ta *textarea.Model
}

func (b inputBox) Value() string { return b.ta.Value() }
func (b inputBox) Reset()        { b.ta.Reset() }
func (b inputBox) Focus()        { b.ta.Focus() }

// New creates the chat model. ctx bounds every network call it starts.
func New(ctx context.Context, opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme("auto")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	keys := DefaultKeyMap()

	ta := textarea.New()
	ta.Placeholder = "Type a message, or /help for commands..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 16000
	ta.Prompt = "> "
	ta.KeyMap.InsertNewline = keys.Newline
	ta.SetHeight(3)
	ta.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(opts.Theme.PendingText),
	)

	m := Model{
		ctx:        ctx,
		ctrl:       opts.Controller,
		browser:    opts.Browser,
		discovery:  opts.Discovery,
		voice:      opts.Voice,
		speaker:    opts.Speaker,
		terminal:   opts.Terminal,
		theme:      opts.Theme,
		logger:     opts.Logger,
		copy:       opts.Clipboard,
		backendURL: opts.BackendURL,
		exportDir:  opts.ExportDir,
		startPath:  opts.StartPath,
		wordWrap:   opts.WordWrap,
		keys:       keys,
		help:       help.New(),
		viewport:   viewport.New(0, 0),
		input:      &ta,
		spinner:    sp,
		showFiles:  opts.ShowFiles,
	}
	m.ctrl.SetInput(inputBox{ta: m.input})
	return m
}

// Init loads the starting directory and begins listening for voice events.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, fetchDirectoryCmd(m.ctx, m.browser, m.startPath)}
	if m.voice != nil {
		cmds = append(cmds, waitVoiceCmd(m.voice))
	}
	return tea.Batch(cmds...)
}

// FilesFocused reports whether the file panel has focus.
func (m Model) FilesFocused() bool { return m.focus == focusFiles }

// FilesVisible reports whether the file panel is shown.
func (m Model) FilesVisible() bool { return m.showFiles }

// Status returns the transient status line text.
func (m Model) Status() string { return m.status }

// Cursor returns the selected file panel row.
func (m Model) Cursor() int { return m.cursor }

func (m *Model) setStatus(text string) tea.Cmd {
	m.statusSeq++
	m.status = text
	return clearStatusCmd(m.statusSeq)
}

func (m *Model) quit() tea.Cmd {
	if m.voice != nil && m.voice.Listening() {
		m.voice.Stop()
	}
	m.quitting = true
	return tea.Quit
}
