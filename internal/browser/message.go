// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package browser

import (
	"fmt"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/Seabass-up/Charlie-Chat/internal/model"
)

// FileMessage builds the chat message that carries a file's contents.
func FileMessage(e model.Entry, c *model.FileContent) string {
	name := e.Path
	if c.Path != "" {
		name = c.Path
	}

	fence := "```"
	for strings.Contains(c.Content, fence) {
		fence += "`"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here is the content of `%s`:\n\n", name)
	b.WriteString(fence)
	b.WriteString(Language(e.Name))
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(c.Content, "\n"))
	b.WriteString("\n")
	b.WriteString(fence)
	b.WriteString("\n")

	if notice := TruncationNotice(c); notice != "" {
		b.WriteString("\n")
		b.WriteString(notice)
		b.WriteString("\n")
	}
	return b.String()
}

// TruncationNotice describes how much of a truncated file was shown.
func TruncationNotice(c *model.FileContent) string {
	if !c.Truncated {
		return ""
	}
	if c.TotalLines > 0 {
		return fmt.Sprintf("_File truncated: showing %d of %d lines._", c.ShownLines, c.TotalLines)
	}
	return "_File truncated._"
}

// Language guesses a fenced-code language tag from a file name.
func Language(name string) string {
	lexer := lexers.Match(path.Base(strings.ReplaceAll(name, `\`, "/")))
	if lexer == nil {
		return ""
	}
	cfg := lexer.Config()
	if len(cfg.Aliases) > 0 {
		return cfg.Aliases[0]
	}
	return strings.ToLower(cfg.Name)
}
