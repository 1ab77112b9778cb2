// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Seabass-up/Charlie-Chat/internal/model"
	"github.com/Seabass-up/Charlie-Chat/internal/voice"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and key events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		m.ctrl.Finish(msg.Outcome)
		m.refresh(true)
		if last := m.ctrl.Session().LastAssistant(); msg.Dictated && m.speaker != nil && last != nil {
			return m, speakCmd(m.ctx, m.speaker, last.Text)
		}
		return m, nil

	case DirectoryMsg:
		if m.browser.ApplyDirectory(msg.Result) {
			m.cursor = 0
		}
		m.refresh(true)
		return m, nil

	case FileMsg:
		p, ok := m.browser.ApplyFile(msg.Result)
		m.refresh(true)
		if !ok {
			return m, nil
		}
		return m, tea.Batch(dispatchCmd(m.ctx, m.ctrl, p), m.spinner.Tick)

	case NoticeMsg:
		if msg.Err != nil {
			m.ctrl.Fail(msg.Action, msg.Err)
		} else {
			m.ctrl.Notify(msg.Text)
		}
		m.refresh(true)
		return m, nil

	case VoiceMsg:
		return m.handleVoice(msg.Event)

	case StatusMsg:
		return m, m.setStatus(msg.Text)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Session().IsSending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh(false)
		return m, cmd
	}

	var cmd tea.Cmd
	*m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.ToggleFile):
		m.showFiles = !m.showFiles
		if !m.showFiles {
			m.setFocus(focusInput)
		}
		m.layout()
		if m.showFiles && m.browser.Listing() == nil {
			return m, fetchDirectoryCmd(m.ctx, m.browser, m.startPath)
		}
		return m, nil

	case key.Matches(msg, m.keys.SwitchPane):
		if m.showFiles {
			if m.focus == focusInput {
				m.setFocus(focusFiles)
			} else {
				m.setFocus(focusInput)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Voice):
		cmd := m.toggleVoice()
		m.refresh(true)
		return m, cmd

	case key.Matches(msg, m.keys.Tools):
		return m, listToolsCmd(m.ctx, m.discovery)

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyLastReply()

	case key.Matches(msg, m.keys.Clear):
		m.ctrl.Clear()
		m.refresh(true)
		return m, m.setStatus("Conversation cleared")

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focus == focusFiles {
		return m.handleFileKey(msg)
	}

	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}

	var cmd tea.Cmd
	*m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleFileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.items()

	switch {
	case msg.Type == tea.KeyEsc:
		m.setFocus(focusInput)

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Open):
		if m.cursor >= len(items) {
			return m, nil
		}
		entry := items[m.cursor]
		if entry.IsDir() {
			return m, fetchDirectoryCmd(m.ctx, m.browser, m.browser.EntryPath(entry))
		}
		if m.ctrl.Session().IsSending {
			return m, m.setStatus("Wait for the current reply before opening a file")
		}
		return m, fetchFileCmd(m.ctx, m.browser, entry)

	case key.Matches(msg, m.keys.Parent):
		return m, m.goUp()
	}
	return m, nil
}

func (m *Model) setFocus(p pane) {
	m.focus = p
	if p == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m Model) items() []model.Entry {
	if l := m.browser.Listing(); l != nil {
		return l.Items
	}
	return nil
}

// =============================================================================
// SENDING
// =============================================================================

func (m Model) submit() (tea.Model, tea.Cmd) {
	if c, ok := ParseCommand(m.input.Value()); ok {
		m.input.Reset()
		cmd := m.runCommand(c)
		m.layout()
		m.refresh(true)
		return m, cmd
	}

	p, ok := m.ctrl.BeginInput()
	if !ok {
		if m.ctrl.Session().IsSending {
			return m, m.setStatus("Still waiting for the previous reply")
		}
		return m, nil
	}
	m.refresh(true)
	return m, tea.Batch(dispatchCmd(m.ctx, m.ctrl, p), m.spinner.Tick)
}

func (m Model) handleVoice(ev voice.Event) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch {
	case errors.Is(ev.Err, voice.ErrNoSpeech):
		cmds = append(cmds, m.setStatus("No speech detected"))
	case ev.Err != nil:
		m.ctrl.Fail("recognize speech", ev.Err)
	default:
		if p, ok := m.ctrl.BeginText(ev.Transcript); ok {
			cmds = append(cmds, dictatedCmd(m.ctx, m.ctrl, p), m.spinner.Tick)
		} else if m.ctrl.Session().IsSending {
			cmds = append(cmds, m.setStatus("Voice input ignored while waiting for a reply"))
		}
	}
	m.refresh(true)
	if m.voice != nil {
		cmds = append(cmds, waitVoiceCmd(m.voice))
	}
	return m, tea.Batch(cmds...)
}
