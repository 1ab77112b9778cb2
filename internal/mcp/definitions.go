// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcp

import "github.com/Seabass-up/Charlie-Chat/internal/model"

// =============================================================================
// TOOL DEFINITIONS
// =============================================================================

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

func schema(props map[string]any, required ...string) map[string]any {
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var definitions = map[string][]model.ToolInfo{
	ServerFilesystem: {
		{
			Name:        "read_file",
			Description: "Read the complete contents of a file from the filesystem",
			Parameters:  schema(map[string]any{"path": prop("string", "Path to the file to read")}, "path"),
		},
		{
			Name:        "list_directory",
			Description: "List contents of a directory",
			Parameters:  schema(map[string]any{"path": prop("string", "Path to the directory to list")}, "path"),
		},
		{
			Name:        "search_files",
			Description: "Search for files matching a pattern",
			Parameters: schema(map[string]any{
				"pattern": prop("string", "Search pattern"),
				"path":    prop("string", "Directory to search in"),
			}, "pattern", "path"),
		},
	},
	ServerMemory: {
		{
			Name:        "store_memory",
			Description: "Store information in memory for later retrieval",
			Parameters: schema(map[string]any{
				"key":   prop("string", "Memory key"),
				"value": prop("string", "Value to store"),
			}, "key", "value"),
		},
		{
			Name:        "retrieve_memory",
			Description: "Retrieve information from memory",
			Parameters:  schema(map[string]any{"key": prop("string", "Memory key to retrieve")}, "key"),
		},
	},
	ServerDeepWiki: {
		{
			Name:        "search_wiki",
			Description: "Search documentation and wiki pages",
			Parameters: schema(map[string]any{
				"query": prop("string", "Search query"),
				"repo":  prop("string", "Repository to search in (optional)"),
			}, "query"),
		},
	},
	ServerN8N: {
		{
			Name:        "create_workflow",
			Description: "Create a new n8n workflow",
			Parameters: schema(map[string]any{
				"name":        prop("string", "Workflow name"),
				"description": prop("string", "Workflow description"),
			}, "name"),
		},
		{
			Name:        "list_workflows",
			Description: "List available n8n workflows",
			Parameters:  schema(map[string]any{}),
		},
	},
	ServerWebSearch: {
		{
			Name:        "search_web",
			Description: "Search the internet for information",
			Parameters: schema(map[string]any{
				"query":       prop("string", "Search query"),
				"num_results": prop("integer", "Number of results to return (default: 5)"),
			}, "query"),
		},
	},
}

// Definitions returns the tools a server exposes. Unknown servers expose
// none.
func Definitions(server string) []model.ToolInfo {
	defs := definitions[server]
	out := make([]model.ToolInfo, len(defs))
	copy(out, defs)
	return out
}
