// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractToolCall(t *testing.T) {
	call, ok := ExtractToolCall("please run\n```json\n{\"tool\":\"fs\",\"action\":\"list\",\"parameters\":{\"search_path\":\"/srv\"}}\n```")
	require.True(t, ok)
	assert.Equal(t, "fs", call.Tool)
	assert.Equal(t, "/srv", call.Parameters["path"])

	call, ok = ExtractToolCall(`{"action":"fs_read"}`)
	require.True(t, ok)
	assert.NotNil(t, call.Parameters)

	_, ok = ExtractToolCall(`{"foo":1}`)
	assert.False(t, ok)
	_, ok = ExtractToolCall("no json here")
	assert.False(t, ok)
}

func TestMapAction(t *testing.T) {
	tests := []struct {
		tool, action string
		server, name string
		ok           bool
	}{
		{"", "fs_search", ServerFilesystem, "search_files", true},
		{"", "cat", ServerFilesystem, "read_file", true},
		{"", "dance", "", "", false},
		{"filesystem", "", ServerFilesystem, "list_directory", true},
		{"FS", "find", ServerFilesystem, "search_files", true},
		{"memory", "recall", ServerMemory, "retrieve_memory", true},
		{"memory", "save", ServerMemory, "store_memory", true},
		{"web", "", ServerWebSearch, "search_web", true},
		{"wiki", "", ServerDeepWiki, "search_wiki", true},
		{"n8n", "list", ServerN8N, "list_workflows", true},
		{"workflow", "make", ServerN8N, "create_workflow", true},
		{"calendar", "list", "", "", false},
	}
	for _, tc := range tests {
		server, name, ok := MapAction(tc.tool, tc.action)
		assert.Equal(t, tc.ok, ok, "%s/%s", tc.tool, tc.action)
		assert.Equal(t, tc.server, server, "%s/%s", tc.tool, tc.action)
		assert.Equal(t, tc.name, name, "%s/%s", tc.tool, tc.action)
	}
}

func TestDetectPath(t *testing.T) {
	p, ok := DetectPath(`look at D:\Projects\notes.txt`)
	require.True(t, ok)
	assert.Equal(t, `D:\Projects\notes.txt`, p)

	p, ok = DetectPath("what is in /var/log/syslog?")
	require.True(t, ok)
	assert.Equal(t, "/var/log/syslog", p)

	_, ok = DetectPath("half a cup, 1/2")
	assert.False(t, ok)
}

func TestRouter_Gather(t *testing.T) {
	ctx := context.Background()
	sb, root := newTestSandbox(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	reg := NewRegistry(Options{Sandbox: sb, Web: NewWebSearch(srv.URL)})
	router := NewRouter(reg, nil)

	t.Run("plain chat gathers nothing", func(t *testing.T) {
		assert.Zero(t, router.Gather(ctx, "hello there").Len())
	})

	t.Run("path detection reads the file", func(t *testing.T) {
		res := router.Gather(ctx, "summarize "+filepath.Join(root, "A.md"))
		fs, ok := res.Map()[ServerFilesystem].(Result)
		require.True(t, ok)
		assert.Equal(t, "# A\n", fs["content"])
	})

	t.Run("keywords", func(t *testing.T) {
		res := router.Gather(ctx, "what tools do you have? search the web for go")
		assert.True(t, res.Has("available_tools"))
		assert.True(t, res.Has(ServerWebSearch))
		assert.True(t, res.Has(ServerFilesystem), "search is also a file keyword")
		assert.False(t, res.Has("n8n"))
	})

	t.Run("extension search", func(t *testing.T) {
		res := router.Gather(ctx, "find my .go files")
		fs := res.Map()[ServerFilesystem].(Result)
		assert.Equal(t, "*.go", fs["pattern"])
	})

	t.Run("structured call wins", func(t *testing.T) {
		res := router.Gather(ctx, `{"tool":"filesystem","action":"list"}`)
		fs := res.Map()[ServerFilesystem].(Result)
		assert.Equal(t, root, fs["path"])
	})
}

func TestRouter_SearchOrder(t *testing.T) {
	sb, _ := newTestSandbox(t)
	router := NewRouter(NewRegistry(Options{Sandbox: sb}), nil)

	res := router.Search(context.Background(), "workflow docs")
	assert.Equal(t, []string{ServerDeepWiki, "n8n"}, res.Keys())
}

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t, "hi", BuildPrompt("hi", NewResults()))

	res := NewResults()
	res.Set("available_tools", NewRegistry(Options{}).Tools())
	res.Set(ServerFilesystem, Result{"content": "abc", "path": "/x"})
	prompt := BuildPrompt("what is this?", res)

	assert.Contains(t, prompt, "Available MCP tools:\n")
	assert.Contains(t, prompt, "- read_file: Read the complete contents of a file from the filesystem")
	assert.Contains(t, prompt, "I successfully accessed the requested file. File content: {")
	assert.True(t, strings.HasSuffix(prompt, "User question: what is this?"))
}

func TestBuildMessages(t *testing.T) {
	plain := BuildMessages("hi", NewResults())
	require.Len(t, plain, 1)
	assert.Equal(t, "user", plain[0].Role)
	assert.Equal(t, "hi", plain[0].Content)

	res := NewResults()
	res.Set(ServerMemory, Result{"message": "nothing stored"})
	msgs := BuildMessages("what do you remember?", res)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.True(t, strings.HasPrefix(msgs[0].Content, "You are Charlie"))
	assert.Contains(t, msgs[0].Content, "Always mention which MCP tools you used")
	assert.Equal(t, "user", msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "Memory operations: {")
}
