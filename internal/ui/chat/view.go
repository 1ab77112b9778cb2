// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Seabass-up/Charlie-Chat/internal/model"
	"github.com/Seabass-up/Charlie-Chat/internal/util"
)

const (
	headerHeight = 1
	statusHeight = 1
	inputHeight  = 5 // textarea plus border
	minBodyLines = 3
)

const welcomeText = "Say hello to Charlie. Enter sends, /help lists commands, Ctrl+O opens the file browser."

// =============================================================================
// LAYOUT
// =============================================================================

// panelWidth is the file panel's outer width, or 0 when hidden.
func (m Model) panelWidth() int {
	if !m.showFiles {
		return 0
	}
	return m.theme.PanelWidth()
}

func (m Model) bodyHeight() int {
	h := m.height - headerHeight - statusHeight - inputHeight
	if m.showHelp {
		h -= lipgloss.Height(m.help.FullHelpView(m.keys.FullHelp()))
	}
	if h < minBodyLines {
		h = minBodyLines
	}
	return h
}

// layout sizes the components for the current window.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	m.theme.SetSize(m.width, m.height)
	m.help.Width = m.width

	convWidth := m.width - m.panelWidth()
	m.viewport.Width = convWidth
	m.viewport.Height = m.bodyHeight()
	m.input.SetWidth(m.width - 2)

	if m.terminal != nil {
		if err := m.terminal.SetWidth(m.wrapWidth()); err != nil {
			m.logger.Warn("resize markdown renderer", "err", err)
		} else {
			m.ctrl.SetRenderer(m.terminal)
		}
	}
	m.refresh(true)
}

// wrapWidth is the text width inside a turn.
func (m Model) wrapWidth() int {
	w := m.viewport.Width - 4
	if m.wordWrap > 0 && m.wordWrap < w {
		w = m.wordWrap
	}
	if w < 10 {
		w = 10
	}
	return w
}

// refresh redraws the conversation into the viewport.
func (m *Model) refresh(bottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderConversation())
	if bottom {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Starting charlie..."
	}

	body := m.viewport.View()
	if w := m.panelWidth(); w > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderFilePanel(w, m.bodyHeight()))
	}

	inputStyle := m.theme.Input
	if m.focus == focusInput {
		inputStyle = m.theme.InputFocused
	}

	parts := []string{
		m.renderHeader(),
		body,
		inputStyle.Width(m.width - 2).Render(m.input.View()),
		m.renderStatus(),
	}
	if m.showHelp {
		parts = append(parts, m.help.FullHelpView(m.keys.FullHelp()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	brand := m.theme.Header.Render("Charlie")
	info := m.ctrl.Session().SelectedModel
	if m.backendURL != "" {
		info += " @ " + m.backendURL
	}
	avail := m.width - lipgloss.Width(brand)
	if avail < 0 {
		avail = 0
	}
	return brand + m.theme.HeaderModel.Width(avail).Render(util.Truncate(info, avail-2))
}

func (m Model) renderStatus() string {
	var state string
	switch {
	case m.voice != nil && m.voice.Listening():
		state = m.theme.StatusListening.Render("● listening")
	case m.ctrl.Session().IsSending:
		state = m.theme.StatusSending.Render(m.spinner.View() + " sending")
	default:
		state = m.theme.StatusIdle.Render("● ready")
	}

	right := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.status != "" {
		right = m.theme.StatusNotice.Render(m.status)
	}
	return m.theme.StatusBar.MaxWidth(m.width).Render(state + "  " + right)
}

// renderConversation draws every turn, pending placeholders included.
func (m Model) renderConversation() string {
	turns := m.ctrl.Session().Turns
	if len(turns) == 0 {
		return m.theme.Muted.Render(util.Wrap(welcomeText, m.wrapWidth()))
	}

	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderTurn(t))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderTurn(t *model.Turn) string {
	label := m.theme.AssistantLabel
	if t.Role == model.RoleUser {
		label = m.theme.UserLabel
	}
	header := label.Render(t.Role.DisplayName()) + " " + m.theme.Timestamp.Render(t.Clock())

	var body string
	switch {
	case t.Pending:
		body = m.theme.TurnBody.Render(m.spinner.View() + m.theme.PendingText.Render(" Charlie is typing..."))
	case t.Rendered != "":
		body = strings.TrimRight(t.Rendered, "\n")
	default:
		body = m.theme.TurnBody.Render(util.Wrap(t.Text, m.wrapWidth()))
	}
	return header + "\n" + body
}

// renderFilePanel draws the directory listing with the cursor row
// highlighted, scrolled so the cursor stays visible.
func (m Model) renderFilePanel(width, height int) string {
	style := m.theme.Panel
	if m.focus == focusFiles {
		style = m.theme.PanelFocused
	}
	inner := width - style.GetHorizontalFrameSize()
	rows := height - style.GetVerticalFrameSize() - 1
	if inner < 4 || rows < 1 {
		return ""
	}

	path := m.browser.CurrentPath()
	if path == "" {
		path = "Files"
	}
	lines := []string{m.theme.PanelTitle.Render(util.Truncate(path, inner))}

	items := m.items()
	if len(items) == 0 {
		lines = append(lines, m.theme.Muted.Render("(empty)"))
	}

	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	for i := start; i < len(items) && i < start+rows; i++ {
		lines = append(lines, m.renderEntry(items[i], inner, i == m.cursor))
	}
	return style.Width(inner).Height(height - style.GetVerticalFrameSize()).Render(strings.Join(lines, "\n"))
}

func (m Model) renderEntry(e model.Entry, width int, selected bool) string {
	name := e.Name
	size := ""
	if e.IsDir() {
		name += "/"
	} else if e.Size != nil {
		size = humanize.Bytes(uint64(*e.Size))
	}

	nameWidth := width - util.Width(size) - 1
	if size == "" {
		nameWidth = width
	}
	line := util.PadRight(util.Truncate(name, nameWidth), nameWidth)
	if size != "" {
		line += " " + size
	}

	switch {
	case selected && m.focus == focusFiles:
		return m.theme.Selected.Render(line)
	case e.IsDir():
		return m.theme.Directory.Render(line)
	}
	return m.theme.File.Render(line)
}
