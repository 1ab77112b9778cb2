// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServers(t *testing.T) {
	dir := t.TempDir()

	servers, err := LoadServers(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultServers(), servers)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"mcpServers":{}}`), 0644))
	servers, err = LoadServers(empty)
	require.NoError(t, err)
	assert.Len(t, servers, len(DefaultServers()))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0644))
	_, err = LoadServers(bad)
	assert.Error(t, err)
}

func TestRegistry_ToolsSkipsDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers":{
		"filesystem":{"command":"npx"},
		"deepwiki":{"command":"npx","disabled":true}
	}}`), 0644))

	reg := NewRegistry(Options{ConfigPath: path})
	tools := reg.Tools()
	assert.Contains(t, tools, ServerFilesystem)
	assert.NotContains(t, tools, ServerDeepWiki)
	assert.Len(t, tools[ServerFilesystem], 3)
}

func TestRegistry_ToolsFallsBackWhenAllDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers":{"memory":{"disabled":true}}}`), 0644))

	tools := NewRegistry(Options{ConfigPath: path}).Tools()
	assert.Len(t, tools, len(KnownServers()))
}

func TestRegistry_Call(t *testing.T) {
	ctx := context.Background()
	sb, root := newTestSandbox(t)
	store, err := OpenMemoryStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	reg := NewRegistry(Options{Sandbox: sb, Memory: store})

	res := reg.Call(ctx, ServerFilesystem, "list_directory", map[string]any{"path": root})
	assert.NotContains(t, res, "error")
	assert.Equal(t, root, res["path"])

	res = reg.Call(ctx, ServerFilesystem, "read_file", nil)
	assert.Equal(t, "Path parameter required", res["error"])

	res = reg.Call(ctx, ServerMemory, "store_memory", map[string]any{"key": "k", "value": "v"})
	assert.Equal(t, true, res["success"])
	res = reg.Call(ctx, ServerMemory, "retrieve_memory", map[string]any{"key": "k"})
	assert.Equal(t, "v", res["value"])
	res = reg.Call(ctx, ServerMemory, "retrieve_memory", map[string]any{"key": "nope"})
	assert.Equal(t, "Memory key not found: nope", res["error"])

	res = reg.Call(ctx, ServerN8N, "list_workflows", nil)
	assert.Equal(t, "n8n API is not configured", res["error"])

	res = reg.Call(ctx, "unknown", "x", nil)
	assert.Equal(t, "MCP server unknown not configured", res["error"])

	res = reg.Call(ctx, ServerDeepWiki, "search_wiki", map[string]any{"query": "bubbletea"})
	assert.Equal(t, "bubbletea", res["query"])
}

func TestRegistry_WatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers":{"memory":{}}}`), 0644))

	reg := NewRegistry(Options{ConfigPath: path})
	require.Len(t, reg.Servers(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- reg.Watch(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers":{"memory":{},"filesystem":{}}}`), 0644))

	assert.Eventually(t, func() bool { return len(reg.Servers()) == 2 }, 3*time.Second, 50*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
