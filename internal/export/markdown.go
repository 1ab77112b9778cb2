// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export implements Exporter.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("model: %s\n", t.Model))
		sb.WriteString(fmt.Sprintf("exported: %s\n", t.ExportedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("turns: %d\n", len(t.Turns)))
		sb.WriteString("generator: charlie\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# Charlie Chat, %s\n", t.ExportedAt.Format("2006-01-02")))

	for _, turn := range t.Turns {
		sb.WriteString(fmt.Sprintf("\n### %s (%s)\n\n", turn.Role.DisplayName(), turn.Clock()))
		sb.WriteString(strings.TrimSpace(turn.Text))
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension implements Exporter.
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// MimeType implements Exporter.
func (e *MarkdownExporter) MimeType() string { return "text/markdown" }
