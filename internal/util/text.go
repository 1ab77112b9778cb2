// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Width returns the number of terminal columns s occupies.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens s to at most width columns, ending with an ellipsis
// when anything was cut. Wide runes are never split.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= runewidth.StringWidth(Ellipsis) {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

// PadRight pads s with spaces to width columns. Longer strings are
// returned unchanged.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Wrap word-wraps s at width columns and hard-wraps words that are longer
// than a line. A width below one returns s unchanged.
func Wrap(s string, width int) string {
	if width < 1 {
		return s
	}
	return wrap.String(wordwrap.String(s, width), width)
}
