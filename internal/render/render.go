// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render converts assistant markdown into display-ready text.
//
// Two renderers are provided: HTML (goldmark + chroma, sanitized with
// bluemonday) for HTML consumers such as exports, and Terminal (glamour) for
// the TUI and the REPL. Plain passes text through unchanged.
package render

import "strings"

// Renderer turns markdown into a formatted string.
type Renderer interface {
	Render(markdown string) (string, error)
}

// Plain is a Renderer that returns its input with surrounding whitespace
// trimmed. Used when output is not a terminal.
type Plain struct{}

// Render implements Renderer.
func (Plain) Render(markdown string) (string, error) {
	return strings.TrimSpace(markdown), nil
}

// Func adapts a function to the Renderer interface.
type Func func(string) (string, error)

// Render implements Renderer.
func (f Func) Render(markdown string) (string, error) {
	return f(markdown)
}
