// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
)

// TextExporter writes one line per turn: "[15:04:05] You: text".
// Line breaks inside a turn are collapsed.
type TextExporter struct{}

// NewTextExporter creates a plain text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Export implements Exporter.
func (e *TextExporter) Export(t *Transcript) ([]byte, error) {
	var sb strings.Builder
	for _, turn := range t.Turns {
		fmt.Fprintf(&sb, "[%s] %s: %s\n", turn.Clock(), turn.Role.DisplayName(), flatten(turn.Text))
	}
	return []byte(sb.String()), nil
}

// FileExtension implements Exporter.
func (e *TextExporter) FileExtension() string { return ".txt" }

// MimeType implements Exporter.
func (e *TextExporter) MimeType() string { return "text/plain" }
