// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// Terminal renders markdown with ANSI styling via glamour.
type Terminal struct {
	mu       sync.Mutex
	renderer *glamour.TermRenderer
	width    int
	style    string
}

// ResolveStyle maps a configured theme ("auto", "dark", "light") to a glamour
// standard style name.
func ResolveStyle(theme string) string {
	switch theme {
	case "dark", "light", "notty", "ascii":
		return theme
	}
	if termenv.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// NewTerminal creates a terminal renderer wrapping at width columns.
func NewTerminal(theme string, width int) (*Terminal, error) {
	t := &Terminal{style: ResolveStyle(theme)}
	if err := t.SetWidth(width); err != nil {
		return nil, err
	}
	return t, nil
}

// SetWidth rebuilds the underlying renderer for a new wrap width.
func (t *Terminal) SetWidth(width int) error {
	if width <= 0 {
		width = 80
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.renderer != nil && width == t.width {
		return nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(t.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return err
	}
	t.renderer = r
	t.width = width
	return nil
}

// Render implements Renderer.
func (t *Terminal) Render(markdown string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out, err := t.renderer.Render(markdown)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
