// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Seabass-up/Charlie-Chat/internal/model"
)

// ListLimit is the number of list items shown before the remainder is
// summarized.
const ListLimit = 10

// =============================================================================
// RESULT VARIANTS
// =============================================================================

// Result is one tool's output, classified by shape.
type Result interface {
	isResult()
}

// DirectoryResult is a directory listing.
type DirectoryResult struct {
	Path  string
	Items []model.Entry
}

// MatchResult is a list of matching file paths.
type MatchResult struct {
	Pattern string
	Matches []string
}

// Document is a single search or wiki hit.
type Document struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Summary returns the snippet, falling back to the content.
func (d Document) Summary() string {
	if d.Snippet != "" {
		return d.Snippet
	}
	return d.Content
}

// DocumentResult is a list of search or wiki hits.
type DocumentResult struct {
	Query     string
	Documents []Document
}

// Workflow is an automation workflow.
type Workflow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// WorkflowResult is a list of workflows.
type WorkflowResult struct {
	Workflows []Workflow
}

// MemoryResult is a retrieved memory value.
type MemoryResult struct {
	Key   string
	Value string
	Found bool
}

// MessageResult is a plain status message.
type MessageResult struct {
	Message string
}

// ErrorResult is an error reported by the tool.
type ErrorResult struct {
	Message string
}

// UnknownResult is any shape not recognized above.
type UnknownResult struct {
	Raw json.RawMessage
}

func (DirectoryResult) isResult() {}
func (MatchResult) isResult()     {}
func (DocumentResult) isResult()  {}
func (WorkflowResult) isResult()  {}
func (MemoryResult) isResult()    {}
func (MessageResult) isResult()   {}
func (ErrorResult) isResult()     {}
func (UnknownResult) isResult()   {}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Classify decodes a raw tool result into its variant.
func Classify(raw json.RawMessage) Result {
	var shape struct {
		Error     *string       `json:"error"`
		Path      string        `json:"path"`
		Items     []model.Entry `json:"items"`
		Pattern   string        `json:"pattern"`
		Matches   []string      `json:"matches"`
		Query     string        `json:"query"`
		Results   []Document    `json:"results"`
		Workflows []Workflow    `json:"workflows"`
		Key       *string       `json:"key"`
		Value     any           `json:"value"`
		Found     *bool         `json:"found"`
		Message   *string       `json:"message"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return UnknownResult{Raw: raw}
	}

	switch {
	case shape.Error != nil:
		return ErrorResult{Message: *shape.Error}
	case shape.Items != nil:
		return DirectoryResult{Path: shape.Path, Items: shape.Items}
	case shape.Matches != nil:
		return MatchResult{Pattern: shape.Pattern, Matches: shape.Matches}
	case shape.Workflows != nil:
		return WorkflowResult{Workflows: shape.Workflows}
	case shape.Results != nil:
		return DocumentResult{Query: shape.Query, Documents: shape.Results}
	case shape.Key != nil:
		found := shape.Value != nil
		if shape.Found != nil {
			found = *shape.Found
		}
		return MemoryResult{Key: *shape.Key, Value: stringify(shape.Value), Found: found}
	case shape.Message != nil:
		return MessageResult{Message: *shape.Message}
	default:
		return UnknownResult{Raw: raw}
	}
}

// =============================================================================
// FORMATTING
// =============================================================================

// Format renders a result as markdown.
func Format(r Result) string {
	var b strings.Builder

	switch r := r.(type) {
	case DirectoryResult:
		fmt.Fprintf(&b, "`%s` (%d items)\n\n", r.Path, len(r.Items))
		writeList(&b, len(r.Items), func(i int) string {
			e := r.Items[i]
			if e.IsDir() {
				return "- " + e.Name + "/"
			}
			return "- " + e.Name
		})
	case MatchResult:
		fmt.Fprintf(&b, "%d matches for `%s`\n\n", len(r.Matches), r.Pattern)
		writeList(&b, len(r.Matches), func(i int) string { return "- `" + r.Matches[i] + "`" })
	case DocumentResult:
		if len(r.Documents) == 0 {
			b.WriteString("No results.\n")
			break
		}
		writeList(&b, len(r.Documents), func(i int) string {
			d := r.Documents[i]
			line := fmt.Sprintf("%d. **%s**", i+1, d.Title)
			if s := d.Summary(); s != "" {
				line += " - " + s
			}
			if d.URL != "" {
				line += " (" + d.URL + ")"
			}
			return line
		})
	case WorkflowResult:
		if len(r.Workflows) == 0 {
			b.WriteString("No workflows.\n")
			break
		}
		writeList(&b, len(r.Workflows), func(i int) string {
			w := r.Workflows[i]
			status := "inactive"
			if w.Active {
				status = "active"
			}
			return fmt.Sprintf("- %s (`%s`, %s)", w.Name, w.ID, status)
		})
	case MemoryResult:
		if !r.Found {
			fmt.Fprintf(&b, "Nothing stored under `%s`.\n", r.Key)
			break
		}
		fmt.Fprintf(&b, "`%s`: %s\n", r.Key, r.Value)
	case MessageResult:
		b.WriteString(r.Message + "\n")
	case ErrorResult:
		b.WriteString("Error: " + r.Message + "\n")
	case UnknownResult:
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, r.Raw, "", "  "); err != nil {
			pretty.Reset()
			pretty.Write(r.Raw)
		}
		b.WriteString("```json\n" + pretty.String() + "\n```\n")
	default:
		panic(fmt.Sprintf("tools: unhandled result type %T", r))
	}

	return b.String()
}

func writeList(b *strings.Builder, n int, line func(i int) string) {
	shown := min(n, ListLimit)
	for i := 0; i < shown; i++ {
		b.WriteString(line(i))
		b.WriteString("\n")
	}
	if n > shown {
		fmt.Fprintf(b, "- ... and %d more\n", n-shown)
	}
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
