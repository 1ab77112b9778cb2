// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Seabass-up/Charlie-Chat/internal/model"
	"github.com/Seabass-up/Charlie-Chat/internal/render"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports transcripts to a standalone HTML page. Assistant
// turns are rendered from markdown; user turns are escaped verbatim.
type HTMLExporter struct {
	options  *Options
	renderer *render.HTML
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts, renderer: render.NewHTML()}
}

// Export implements Exporter.
func (e *HTMLExporter) Export(t *Transcript) ([]byte, error) {
	var sb strings.Builder
	title := fmt.Sprintf("Charlie Chat, %s", t.ExportedAt.Format("2006-01-02"))

	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"UTF-8\">\n")
	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(title)))
	sb.WriteString("<meta name=\"generator\" content=\"charlie\">\n")
	sb.WriteString("<style>\n")
	sb.WriteString(baseCSS)
	if err := e.renderer.WriteCSS(&sb); err != nil {
		return nil, err
	}
	sb.WriteString("</style>\n</head>\n<body>\n")
	sb.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(title)))

	if e.options.IncludeMetadata {
		sb.WriteString(fmt.Sprintf("<p class=\"meta\">Model: %s &middot; Exported %s &middot; %d turns</p>\n",
			html.EscapeString(t.Model), t.ExportedAt.Format(time.RFC3339), len(t.Turns)))
	}

	for _, turn := range t.Turns {
		body, err := e.turnHTML(turn)
		if err != nil {
			return nil, err
		}
		sb.WriteString(fmt.Sprintf("<div class=\"turn %s\">\n<div class=\"who\">%s <span>%s</span></div>\n%s\n</div>\n",
			turn.Role, turn.Role.DisplayName(), turn.Clock(), body))
	}

	sb.WriteString("</body>\n</html>\n")
	return []byte(sb.String()), nil
}

func (e *HTMLExporter) turnHTML(turn *model.Turn) (string, error) {
	if turn.Role == model.RoleAssistant {
		return e.renderer.Render(turn.Text)
	}
	return "<p>" + strings.ReplaceAll(html.EscapeString(turn.Text), "\n", "<br>") + "</p>", nil
}

// FileExtension implements Exporter.
func (e *HTMLExporter) FileExtension() string { return ".html" }

// MimeType implements Exporter.
func (e *HTMLExporter) MimeType() string { return "text/html" }

const baseCSS = `body { font-family: system-ui, sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; }
.meta { color: #666; }
.turn { border-radius: 8px; padding: 0.5rem 1rem; margin: 1rem 0; }
.turn.user { background: #eef4ff; }
.turn.assistant { background: #f6f6f6; }
.who { font-weight: 600; }
.who span { font-weight: 400; color: #888; font-size: 0.85em; }
pre { overflow-x: auto; padding: 0.75rem; border-radius: 6px; }
`
