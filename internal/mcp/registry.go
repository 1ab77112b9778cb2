// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/Seabass-up/Charlie-Chat/internal/model"
)

// Known server names.
const (
	ServerFilesystem = "filesystem"
	ServerMemory     = "memory"
	ServerDeepWiki   = "deepwiki"
	ServerN8N        = "n8n-mcp"
	ServerWebSearch  = "web_search"
)

// ServerConfig is one entry of mcp_config.json.
type ServerConfig struct {
	Command  string            `json:"command,omitempty"`
	Args     []string          `json:"args,omitempty"`
	Env      map[string]string `json:"env,omitempty"`
	Disabled bool              `json:"disabled,omitempty"`
}

type configFile struct {
	Servers map[string]ServerConfig `json:"mcpServers"`
}

// DefaultServers returns the servers used when no config file declares any.
func DefaultServers() map[string]ServerConfig {
	return map[string]ServerConfig{
		ServerFilesystem: {Command: "npx", Args: []string{"-y", "@modelcontextprotocol/server-filesystem"}},
		ServerMemory:     {Command: "npx", Args: []string{"-y", "@modelcontextprotocol/server-memory"}},
		ServerDeepWiki:   {Command: "npx", Args: []string{"-y", "mcp-remote", "https://mcp.deepwiki.com/sse"}},
		ServerN8N:        {Command: "npx", Args: []string{"n8n-mcp"}, Env: map[string]string{"MCP_MODE": "stdio"}},
		ServerWebSearch:  {Command: "builtin"},
	}
}

// LoadServers reads server declarations from path. A missing file or an
// empty mcpServers object yields DefaultServers.
func LoadServers(path string) (map[string]ServerConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultServers(), nil
	}
	if err != nil {
		return DefaultServers(), fmt.Errorf("read mcp config: %w", err)
	}
	var cfg configFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultServers(), fmt.Errorf("parse mcp config %s: %w", path, err)
	}
	if len(cfg.Servers) == 0 {
		return DefaultServers(), nil
	}
	return cfg.Servers, nil
}

// Result is the JSON object a tool call produces. Failures are reported
// in-band under "error".
type Result map[string]any

func errorResult(format string, args ...any) Result {
	return Result{"error": fmt.Sprintf(format, args...)}
}

// Options wires the tool backends into a Registry. Nil backends make the
// matching tools report an error.
type Options struct {
	ConfigPath string
	Sandbox    *Sandbox
	Memory     *MemoryStore
	Web        *WebSearch
	N8N        *N8NClient
	Logger     *log.Logger
}

// Registry holds the declared servers and dispatches tool calls.
type Registry struct {
	mu      sync.RWMutex
	servers map[string]ServerConfig

	path   string
	fs     *Sandbox
	memory *MemoryStore
	web    *WebSearch
	n8n    *N8NClient
	logger *log.Logger
}

// NewRegistry loads the server declarations and returns a registry. A bad
// config file is logged and the defaults are used.
func NewRegistry(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	r := &Registry{
		path:   opts.ConfigPath,
		fs:     opts.Sandbox,
		memory: opts.Memory,
		web:    opts.Web,
		n8n:    opts.N8N,
		logger: logger,
	}
	if err := r.Reload(); err != nil {
		logger.Warn("using default MCP servers", "err", err)
	}
	return r
}

// Reload re-reads the config file.
func (r *Registry) Reload() error {
	servers := DefaultServers()
	var err error
	if r.path != "" {
		servers, err = LoadServers(r.path)
	}
	r.mu.Lock()
	r.servers = servers
	r.mu.Unlock()
	r.logger.Info("loaded MCP configuration", "servers", len(servers))
	return err
}

// Servers returns a copy of the declared servers.
func (r *Registry) Servers() map[string]ServerConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]ServerConfig, len(r.servers))
	for k, v := range r.servers {
		out[k] = v
	}
	return out
}

// Tools returns the catalog of enabled servers. When nothing is enabled the
// built-in catalog is returned instead.
func (r *Registry) Tools() model.ToolCatalog {
	catalog := model.ToolCatalog{}
	for name, cfg := range r.Servers() {
		if cfg.Disabled {
			r.logger.Debug("skipping disabled MCP server", "server", name)
			continue
		}
		catalog[name] = Definitions(name)
	}
	if len(catalog) == 0 {
		r.logger.Warn("no MCP servers enabled, falling back to built-in tools")
		for _, name := range KnownServers() {
			catalog[name] = Definitions(name)
		}
	}
	return catalog
}

// Call runs one tool. It never returns a Go error; failures come back as
// {"error": "..."} so they can be shown next to successful results.
func (r *Registry) Call(ctx context.Context, server, tool string, params map[string]any) Result {
	r.mu.RLock()
	_, ok := r.servers[server]
	r.mu.RUnlock()
	if !ok {
		return errorResult("MCP server %s not configured", server)
	}
	if params == nil {
		params = map[string]any{}
	}

	start := time.Now()
	var res Result
	switch server {
	case ServerFilesystem:
		res = r.callFilesystem(tool, params)
	case ServerMemory:
		res = r.callMemory(ctx, tool, params)
	case ServerDeepWiki:
		res = callWiki(tool, params)
	case ServerN8N:
		res = r.callN8N(ctx, tool, params)
	case ServerWebSearch:
		res = r.callWebSearch(ctx, tool, params)
	default:
		res = errorResult("Unknown MCP server: %s", server)
	}

	if msg, failed := res["error"]; failed {
		r.logger.Warn("MCP tool failed", "server", server, "tool", tool, "err", msg)
	} else {
		r.logger.Debug("MCP tool call", "server", server, "tool", tool, "took", time.Since(start))
	}
	return res
}

// Watch reloads the config whenever the file changes, until ctx is done.
func (r *Registry) Watch(ctx context.Context) error {
	if r.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(r.path)
	if err != nil {
		return err
	}
	// Watch the directory: editors usually replace the file on save.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(200*time.Millisecond, func() {
				if err := r.Reload(); err != nil {
					r.logger.Error("reload MCP config", "err", err)
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("MCP config watcher", "err", err)
		}
	}
}

// KnownServers lists the servers with built-in tools, sorted.
func KnownServers() []string {
	names := make([]string, 0, len(definitions))
	for name := range definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
