// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seabass-up/Charlie-Chat/internal/model"
)

type fakeCatalog struct {
	catalog model.ToolCatalog
	resp    *model.SearchResponse
	err     error
	queries []string
}

func (f *fakeCatalog) ListTools(context.Context) (model.ToolCatalog, error) {
	return f.catalog, f.err
}

func (f *fakeCatalog) SearchTools(_ context.Context, q string) (*model.SearchResponse, error) {
	f.queries = append(f.queries, q)
	return f.resp, f.err
}

func TestListTools_Empty(t *testing.T) {
	d := NewDiscovery(&fakeCatalog{catalog: model.ToolCatalog{}})

	out, err := d.ListTools(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NoToolsMessage, out)
}

func TestListTools_Grouped(t *testing.T) {
	d := NewDiscovery(&fakeCatalog{catalog: model.ToolCatalog{
		"web_search": {{Name: "search_web", Description: "Search the web"}},
		"filesystem": {{Name: "read_file"}, {Name: "list_directory", Description: "List"}},
	}})

	out, err := d.ListTools(context.Background())
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Filesystem"), strings.Index(out, "Web Search"))
	assert.Contains(t, out, "- `read_file`\n")
	assert.Contains(t, out, "- `search_web` - Search the web")
}

func TestListTools_Error(t *testing.T) {
	d := NewDiscovery(&fakeCatalog{err: errors.New("down")})
	_, err := d.ListTools(context.Background())
	assert.Error(t, err)
}

func TestSearch_EmptyQuery(t *testing.T) {
	cat := &fakeCatalog{}
	_, err := NewDiscovery(cat).Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Empty(t, cat.queries)
}

func TestSearch_FormatsEveryTool(t *testing.T) {
	cat := &fakeCatalog{resp: &model.SearchResponse{
		ToolsUsed: []string{"web_search", "filesystem"},
		Results: map[string]json.RawMessage{
			"filesystem": json.RawMessage(`{"path":"/tmp","items":[{"name":"a","type":"directory"},{"name":"b.txt","type":"file"}]}`),
			"web_search": json.RawMessage(`{"query":"go","results":[{"title":"Go","snippet":"The Go language","url":"https://go.dev"}]}`),
			"mystery":    json.RawMessage(`{"weird":true}`),
		},
	}}

	out, err := NewDiscovery(cat).Search(context.Background(), " go ")
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, cat.queries)

	assert.Contains(t, out, `"go"`)
	assert.Less(t, strings.Index(out, "Web Search"), strings.Index(out, "Filesystem"))
	assert.Contains(t, out, "- a/\n- b.txt")
	assert.Contains(t, out, "1. **Go** - The Go language (https://go.dev)")
	assert.Contains(t, out, "```json\n{\n  \"weird\": true\n}\n```")
}

func TestSearch_NoResults(t *testing.T) {
	out, err := NewDiscovery(&fakeCatalog{resp: &model.SearchResponse{}}).Search(context.Background(), "x")
	require.NoError(t, err)
	assert.Contains(t, out, "No tools matched")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Result
	}{
		{"error", `{"error":"nope"}`, ErrorResult{Message: "nope"}},
		{"directory", `{"path":"/x","items":[]}`, DirectoryResult{Path: "/x", Items: []model.Entry{}}},
		{"matches", `{"pattern":"*.go","matches":["a.go"]}`, MatchResult{Pattern: "*.go", Matches: []string{"a.go"}}},
		{"workflows", `{"workflows":[{"id":"1","name":"Sync","active":true}]}`, WorkflowResult{Workflows: []Workflow{{ID: "1", Name: "Sync", Active: true}}}},
		{"documents", `{"query":"q","results":[{"title":"T","content":"C"}]}`, DocumentResult{Query: "q", Documents: []Document{{Title: "T", Content: "C"}}}},
		{"memory found", `{"key":"k","value":"v"}`, MemoryResult{Key: "k", Value: "v", Found: true}},
		{"memory missing", `{"key":"k","value":null,"found":false}`, MemoryResult{Key: "k"}},
		{"message", `{"message":"stored"}`, MessageResult{Message: "stored"}},
		{"unknown object", `{"a":1}`, UnknownResult{Raw: json.RawMessage(`{"a":1}`)}},
		{"wrong field type", `{"results":{"a":1}}`, UnknownResult{Raw: json.RawMessage(`{"results":{"a":1}}`)}},
		{"array", `[1,2]`, UnknownResult{Raw: json.RawMessage(`[1,2]`)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(json.RawMessage(tc.raw)))
		})
	}
}

func TestFormat_TruncatesLists(t *testing.T) {
	matches := make([]string, 25)
	for i := range matches {
		matches[i] = fmt.Sprintf("file%02d.go", i)
	}

	out := Format(MatchResult{Pattern: "*.go", Matches: matches})
	assert.Contains(t, out, "file09.go")
	assert.NotContains(t, out, "file10.go")
	assert.Contains(t, out, "... and 15 more")
}

func TestFormat_Variants(t *testing.T) {
	assert.Equal(t, "Error: bad\n", Format(ErrorResult{Message: "bad"}))
	assert.Equal(t, "stored\n", Format(MessageResult{Message: "stored"}))
	assert.Contains(t, Format(MemoryResult{Key: "k"}), "Nothing stored")
	assert.Contains(t, Format(WorkflowResult{Workflows: []Workflow{{ID: "7", Name: "Mail"}}}), "- Mail (`7`, inactive)")
	assert.Equal(t, "No results.\n", Format(DocumentResult{}))
	assert.Contains(t, Format(UnknownResult{Raw: json.RawMessage("not json")}), "not json")
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Web Search", Label("web_search"))
	assert.Equal(t, "N8n Mcp", Label("n8n-mcp"))
}
