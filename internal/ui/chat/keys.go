// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/charmbracelet/bubbles/key"

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Submit     key.Binding
	Newline    key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	ToggleFile key.Binding
	SwitchPane key.Binding
	Up         key.Binding
	Down       key.Binding
	Open       key.Binding
	Parent     key.Binding
	Voice      key.Binding
	Tools      key.Binding
	Copy       key.Binding
	Clear      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("M-Enter", "newline"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		ToggleFile: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "files"),
		),
		SwitchPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "switch pane"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous entry"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next entry"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "right", "l"),
			key.WithHelp("Enter", "open"),
		),
		Parent: key.NewBinding(
			key.WithKeys("backspace", "left", "h"),
			key.WithHelp("BS", "parent dir"),
		),
		Voice: key.NewBinding(
			key.WithKeys("f2", "alt+v"),
			key.WithHelp("F2", "voice"),
		),
		Tools: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "tools"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy reply"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear chat"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.ToggleFile, k.Voice, k.Tools, k.Help, k.Quit}
}

// FullHelp returns the bindings shown by the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Newline, k.PageUp, k.PageDown},
		{k.ToggleFile, k.SwitchPane, k.Up, k.Down, k.Open, k.Parent},
		{k.Voice, k.Tools, k.Copy, k.Clear},
		{k.Help, k.Quit},
	}
}
