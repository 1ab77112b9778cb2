// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "encoding/json"

// =============================================================================
// CHAT
// =============================================================================

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// ChatReply is the response of POST /api/chat.
type ChatReply struct {
	Reply      string         `json:"reply,omitempty"`
	MCPResults map[string]any `json:"mcp_results,omitempty"`
}

// =============================================================================
// FILES
// =============================================================================

// EntryType distinguishes files from directories in a listing.
type EntryType string

const (
	EntryFile      EntryType = "file"
	EntryDirectory EntryType = "directory"
)

// Entry is one item of a DirectoryListing.
type Entry struct {
	Name     string    `json:"name"`
	Path     string    `json:"path,omitempty"`
	Type     EntryType `json:"type"`
	Size     *int64    `json:"size,omitempty"`
	Modified string    `json:"modified,omitempty"`
	Readable *bool     `json:"readable,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Type == EntryDirectory
}

// DirectoryListing is the response of GET /api/files.
type DirectoryListing struct {
	Path   string  `json:"path"`
	Parent string  `json:"parent,omitempty"`
	Items  []Entry `json:"items"`
}

// FileContent is the response of GET /api/files/read.
type FileContent struct {
	Path       string `json:"path"`
	Content    string `json:"content"`
	Truncated  bool   `json:"truncated,omitempty"`
	TotalLines int    `json:"total_lines,omitempty"`
	ShownLines int    `json:"shown_lines,omitempty"`
	Size       int64  `json:"size,omitempty"`
	Encoding   string `json:"encoding,omitempty"`
}

// =============================================================================
// TOOLS
// =============================================================================

// ToolInfo describes a single tool exposed by an MCP server.
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ToolCatalog maps server names to the tools they expose.
type ToolCatalog map[string][]ToolInfo

// Empty reports whether no server exposes any tool.
func (c ToolCatalog) Empty() bool {
	for _, tools := range c {
		if len(tools) > 0 {
			return false
		}
	}
	return true
}

// ToolsResponse is the response of GET /api/mcp/tools.
type ToolsResponse struct {
	Tools ToolCatalog `json:"tools"`
}

// SearchRequest is the body of POST /api/mcp/search.
type SearchRequest struct {
	Query    string `json:"query"`
	UseTools bool   `json:"use_tools"`
}

// SearchResponse is the response of POST /api/mcp/search. Results are kept
// raw because each tool returns its own shape.
type SearchResponse struct {
	Query     string                     `json:"query"`
	ToolsUsed []string                   `json:"tools_used"`
	Results   map[string]json.RawMessage `json:"results"`
}
