// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Seabass-up/Charlie-Chat/internal/ollama"
)

// =============================================================================
// STRUCTURED TOOL CALLS
// =============================================================================

// ToolCall is a JSON tool request embedded in a chat message, e.g.
//
//	{"tool": "filesystem", "action": "list", "parameters": {"path": "/srv"}}
type ToolCall struct {
	Tool       string         `json:"tool,omitempty"`
	Server     string         `json:"server,omitempty"`
	Action     string         `json:"action,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

var (
	fencedBlockRe = regexp.MustCompile("```[a-zA-Z0-9_\\-]*\\n([\\s\\S]*?)```")
	jsonObjectRe  = regexp.MustCompile(`(?s)\{.*\}`)

	windowsPathRe = regexp.MustCompile(`([A-Za-z]:\\[^\n\r]*)`)
	unixPathRe    = regexp.MustCompile(`(?:^|\s)(/[^\s"'` + "`" + `]+)`)
	extensionRe   = regexp.MustCompile(`\.([a-z0-9]{2,5})\b`)
)

// ExtractToolCall finds a JSON tool call in free text, preferring the first
// fenced code block.
func ExtractToolCall(text string) (*ToolCall, bool) {
	candidate := strings.TrimSpace(text)
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		candidate = strings.TrimSpace(m[1])
	}
	obj := jsonObjectRe.FindString(candidate)
	if obj == "" {
		return nil, false
	}
	var call ToolCall
	if err := json.Unmarshal([]byte(obj), &call); err != nil {
		return nil, false
	}
	if call.Tool == "" && call.Server == "" && call.Action == "" {
		return nil, false
	}
	if call.Parameters == nil {
		call.Parameters = map[string]any{}
	}
	if sp, ok := call.Parameters["search_path"]; ok {
		if _, has := call.Parameters["path"]; !has {
			call.Parameters["path"] = sp
		}
	}
	return &call, true
}

func oneOf(s string, set ...string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

// MapAction resolves loose tool/action words onto a server and tool name.
func MapAction(tool, action string) (server, name string, ok bool) {
	t := strings.ToLower(strings.TrimSpace(tool))
	a := strings.ToLower(strings.TrimSpace(action))

	if t == "" {
		switch {
		case oneOf(a, "fs_search", "search", "find", "search_files"):
			return ServerFilesystem, "search_files", true
		case oneOf(a, "fs_list", "list", "ls", "dir", "list_directory"):
			return ServerFilesystem, "list_directory", true
		case oneOf(a, "fs_read", "read", "open", "cat", "read_file"):
			return ServerFilesystem, "read_file", true
		}
		return "", "", false
	}

	switch {
	case oneOf(t, "filesystem", "file", "fs"):
		switch {
		case oneOf(a, "read", "open", "cat", "read_file"):
			return ServerFilesystem, "read_file", true
		case oneOf(a, "search", "find", "search_files"):
			return ServerFilesystem, "search_files", true
		}
		return ServerFilesystem, "list_directory", true
	case oneOf(t, "memory", "mem"):
		if oneOf(a, "retrieve", "recall", "get", "retrieve_memory") {
			return ServerMemory, "retrieve_memory", true
		}
		return ServerMemory, "store_memory", true
	case oneOf(t, "web_search", "web", "internet", "search"):
		return ServerWebSearch, "search_web", true
	case oneOf(t, "deepwiki", "wiki"):
		return ServerDeepWiki, "search_wiki", true
	case oneOf(t, "n8n", "n8n-mcp", "workflow"):
		if oneOf(a, "list", "list_workflows") {
			return ServerN8N, "list_workflows", true
		}
		return ServerN8N, "create_workflow", true
	}
	return "", "", false
}

// DetectPath finds a Windows drive path or an absolute POSIX path in text.
func DetectPath(text string) (string, bool) {
	if m := windowsPathRe.FindStringSubmatch(text); m != nil {
		return strings.Trim(strings.TrimSpace(m[1]), `"'`), true
	}
	if m := unixPathRe.FindStringSubmatch(text); m != nil {
		return strings.TrimRight(m[1], ".,;:!?)"), true
	}
	return "", false
}

// =============================================================================
// ROUTER
// =============================================================================

// Results collects tool output keyed by source, remembering insertion order.
type Results struct {
	order  []string
	values map[string]any
}

// NewResults returns an empty collection.
func NewResults() *Results {
	return &Results{values: map[string]any{}}
}

// Set records v under key. Re-setting a key keeps its original position.
func (r *Results) Set(key string, v any) {
	if _, ok := r.values[key]; !ok {
		r.order = append(r.order, key)
	}
	r.values[key] = v
}

// Has reports whether key was set.
func (r *Results) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Keys returns keys in insertion order.
func (r *Results) Keys() []string {
	return append([]string{}, r.order...)
}

// Map returns the underlying values.
func (r *Results) Map() map[string]any {
	return r.values
}

// Len is the number of keys.
func (r *Results) Len() int {
	return len(r.order)
}

var (
	toolKeywords     = []string{"mcp", "tools", "what tools", "capabilities", "what can you", "use your mcp", "your mcp tools"}
	fileKeywords     = []string{"file", "read", "find", "search", "folder", "directory", "show me", "documents", "desktop"}
	memoryKeywords   = []string{"remember", "store", "save", "recall", "memory"}
	webChatKeywords  = []string{"search", "google", "find online", "internet", "web", "look up", "what is", "who is", "when did", "where is", "how to"}
	webQueryKeywords = []string{"search", "google", "internet", "web", "online", "find"}
	wikiKeywords     = []string{"help", "documentation", "docs", "wiki"}
	flowKeywords     = []string{"workflow", "automation", "n8n"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Router decides which tools a message or query should run.
type Router struct {
	reg    *Registry
	logger *log.Logger
}

// NewRouter returns a router over reg.
func NewRouter(reg *Registry, logger *log.Logger) *Router {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Router{reg: reg, logger: logger}
}

// Registry returns the underlying registry.
func (r *Router) Registry() *Registry {
	return r.reg
}

// Gather runs the tools a chat message asks for, explicitly or by keyword.
func (r *Router) Gather(ctx context.Context, message string) *Results {
	results := NewResults()
	lower := strings.ToLower(message)

	if call, ok := ExtractToolCall(message); ok {
		tool := call.Tool
		if tool == "" {
			tool = call.Server
		}
		if server, name, ok := MapAction(tool, call.Action); ok {
			if server == ServerFilesystem && name == "list_directory" {
				if _, has := call.Parameters["path"]; !has && r.reg.fs != nil {
					call.Parameters["path"] = r.reg.fs.DefaultPath()
				}
			}
			results.Set(server, r.reg.Call(ctx, server, name, call.Parameters))
		}
	}

	if !results.Has(ServerFilesystem) {
		if path, ok := DetectPath(message); ok {
			tool := "list_directory"
			if filepath.Ext(path) != "" {
				tool = "read_file"
			}
			results.Set(ServerFilesystem, r.reg.Call(ctx, ServerFilesystem, tool, map[string]any{"path": path}))
		}
	}

	if containsAny(lower, toolKeywords) {
		results.Set("available_tools", r.reg.Tools())
	}

	if !results.Has(ServerFilesystem) && containsAny(lower, fileKeywords) && r.reg.fs != nil {
		root := r.reg.fs.DefaultPath()
		if m := extensionRe.FindStringSubmatch(lower); m != nil {
			results.Set(ServerFilesystem, r.reg.Call(ctx, ServerFilesystem, "search_files",
				map[string]any{"path": root, "pattern": "*." + m[1]}))
		} else {
			results.Set(ServerFilesystem, r.reg.Call(ctx, ServerFilesystem, "list_directory",
				map[string]any{"path": root}))
		}
	}

	if !results.Has(ServerMemory) && containsAny(lower, memoryKeywords) {
		results.Set(ServerMemory, Result{"message": "I can help you with memory operations. What would you like me to remember?"})
	}

	if !results.Has(ServerWebSearch) && containsAny(lower, webChatKeywords) {
		results.Set(ServerWebSearch, r.reg.Call(ctx, ServerWebSearch, "search_web",
			map[string]any{"query": message, "num_results": 3}))
	}

	if !results.Has(ServerDeepWiki) && containsAny(lower, wikiKeywords) {
		results.Set(ServerDeepWiki, r.reg.Call(ctx, ServerDeepWiki, "search_wiki", map[string]any{"query": message}))
	}

	if containsAny(lower, flowKeywords) {
		results.Set("n8n", r.reg.Call(ctx, ServerN8N, "list_workflows", nil))
	}

	if results.Len() > 0 {
		r.logger.Debug("gathered tool context", "sources", results.Keys())
	}
	return results
}

// Search runs the tools matching a free-text query.
func (r *Router) Search(ctx context.Context, query string) *Results {
	results := NewResults()
	lower := strings.ToLower(query)

	if containsAny(lower, []string{"file", "read", "find", "search", "folder", "directory"}) && r.reg.fs != nil {
		results.Set(ServerFilesystem, r.reg.Call(ctx, ServerFilesystem, "list_directory",
			map[string]any{"path": r.reg.fs.DefaultPath()}))
	}
	if containsAny(lower, []string{"remember", "store", "save", "memory"}) {
		results.Set(ServerMemory, Result{"message": "Memory operations available through chat"})
	}
	if containsAny(lower, webQueryKeywords) {
		results.Set(ServerWebSearch, r.reg.Call(ctx, ServerWebSearch, "search_web",
			map[string]any{"query": query, "num_results": 5}))
	}
	if containsAny(lower, wikiKeywords) {
		results.Set(ServerDeepWiki, r.reg.Call(ctx, ServerDeepWiki, "search_wiki", map[string]any{"query": query}))
	}
	if containsAny(lower, flowKeywords) {
		results.Set("n8n", r.reg.Call(ctx, ServerN8N, "list_workflows", nil))
	}
	return results
}

// =============================================================================
// PROMPT
// =============================================================================

const assistantPreamble = "You are Charlie, an AI assistant with access to MCP (Model Context Protocol) tools. "

const assistantInstructions = "You are Charlie, an AI assistant with MCP (Model Context Protocol) capabilities. " +
	"You have access to filesystem tools, web search, memory storage, and workflow automation. " +
	"Always mention which MCP tools you used when responding. " +
	"Be specific about your capabilities and what information you found using your tools."

// BuildPrompt folds gathered tool output into the message sent to the
// model. Without results the message is returned unchanged.
func BuildPrompt(message string, results *Results) string {
	if results == nil || results.Len() == 0 {
		return message
	}
	var b strings.Builder
	b.WriteString(assistantPreamble)

	if v, ok := results.values["available_tools"]; ok {
		b.WriteString("Available MCP tools:\n")
		b.WriteString(formatCatalog(v))
		b.WriteString("\n\n")
	}

	for _, key := range results.order {
		if key == "available_tools" {
			continue
		}
		label := sectionLabel(key, results.values[key])
		fmt.Fprintf(&b, "%s: %s\n\n", label, indentJSON(results.values[key]))
	}

	fmt.Fprintf(&b, "User question: %s", message)
	return b.String()
}

// BuildMessages is the conversation sent to the model: the assistant
// instructions as a system message when tools contributed context, then the
// prompt from BuildPrompt.
func BuildMessages(message string, results *Results) []ollama.Message {
	prompt := ollama.NewUserMessage(BuildPrompt(message, results))
	if results == nil || results.Len() == 0 {
		return []ollama.Message{prompt}
	}
	return []ollama.Message{ollama.NewSystemMessage(assistantInstructions), prompt}
}

func sectionLabel(key string, v any) string {
	switch key {
	case ServerFilesystem:
		if res, ok := v.(Result); ok {
			if _, hasContent := res["content"]; hasContent {
				return "I successfully accessed the requested file. File content"
			}
		}
		return "File system results"
	case ServerWebSearch:
		return "Web search results"
	case ServerMemory:
		return "Memory operations"
	case ServerDeepWiki:
		return "Documentation results"
	case "n8n":
		return "Workflow results"
	}
	return key + " results"
}

func formatCatalog(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	var catalog map[string][]struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &catalog); err != nil {
		return ""
	}
	servers := make([]string, 0, len(catalog))
	for s := range catalog {
		servers = append(servers, s)
	}
	sort.Strings(servers)

	var lines []string
	for _, s := range servers {
		for _, t := range catalog[s] {
			lines = append(lines, fmt.Sprintf("- %s: %s", t.Name, t.Description))
		}
	}
	return strings.Join(lines, "\n")
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
