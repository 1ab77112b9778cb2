// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// =============================================================================
// FILESYSTEM
// =============================================================================

func (r *Registry) callFilesystem(tool string, params map[string]any) Result {
	if r.fs == nil {
		return errorResult("filesystem access is not configured")
	}
	switch tool {
	case "read_file":
		path := stringParam(params, "path", "")
		if path == "" {
			return errorResult("Path parameter required")
		}
		content, err := r.fs.Read(path, intParam(params, "lines", 0))
		if err != nil {
			return errorResult("Failed to read file: %v", err)
		}
		return Result{"content": content.Content, "path": content.Path, "size": content.Size, "truncated": content.Truncated}

	case "list_directory":
		listing, err := r.fs.List(stringParam(params, "path", r.fs.DefaultPath()))
		if err != nil {
			return errorResult("Failed to list directory: %v", err)
		}
		res := Result{"items": listing.Items, "path": listing.Path}
		if listing.Parent != "" {
			res["parent"] = listing.Parent
		}
		return res

	case "search_files":
		root := stringParam(params, "path", r.fs.DefaultPath())
		pattern := stringParam(params, "pattern", "*")
		matches, err := r.fs.Search(root, pattern, DefaultSearchLimit)
		if err != nil && len(matches) == 0 {
			if errors.Is(err, ErrAccessDenied) {
				return errorResult("Access denied to search path")
			}
			return errorResult("Failed to search files: %v", err)
		}
		if matches == nil {
			matches = []string{}
		}
		return Result{"matches": matches, "pattern": pattern, "search_path": root}
	}
	return errorResult("Unknown filesystem tool: %s", tool)
}

// =============================================================================
// MEMORY
// =============================================================================

func (r *Registry) callMemory(ctx context.Context, tool string, params map[string]any) Result {
	if r.memory == nil {
		return errorResult("memory store is not available")
	}
	key := stringParam(params, "key", "")
	if key == "" {
		return errorResult("Key parameter required")
	}
	switch tool {
	case "store_memory":
		value := stringParam(params, "value", "")
		if err := r.memory.Store(ctx, key, value); err != nil {
			return errorResult("Failed to store memory: %v", err)
		}
		return Result{"success": true, "key": key, "value": value}

	case "retrieve_memory":
		value, found, err := r.memory.Retrieve(ctx, key)
		if err != nil {
			return errorResult("Failed to retrieve memory: %v", err)
		}
		if !found {
			return errorResult("Memory key not found: %s", key)
		}
		return Result{"key": key, "value": value, "found": true}
	}
	return errorResult("Unknown memory tool: %s", tool)
}

// =============================================================================
// DEEPWIKI
// =============================================================================

// callWiki answers with a single pointer hit; no wiki backend is wired.
func callWiki(tool string, params map[string]any) Result {
	if tool != "search_wiki" {
		return errorResult("Unknown deepwiki tool: %s", tool)
	}
	query := stringParam(params, "query", "")
	if query == "" {
		return errorResult("Query parameter required")
	}
	doc := map[string]any{
		"title":   "Results for: " + query,
		"content": fmt.Sprintf("No wiki backend is connected. Try https://deepwiki.com for %q.", query),
		"url":     "https://deepwiki.com/search?q=" + url.QueryEscape(query),
	}
	if repo := stringParam(params, "repo", ""); repo != "" {
		doc["url"] = "https://deepwiki.com/" + repo
	}
	return Result{"query": query, "results": []map[string]any{doc}}
}

// =============================================================================
// N8N
// =============================================================================

func (r *Registry) callN8N(ctx context.Context, tool string, params map[string]any) Result {
	if r.n8n == nil || !r.n8n.Configured() {
		return errorResult("n8n API is not configured")
	}
	switch tool {
	case "list_workflows":
		workflows, err := r.n8n.ListWorkflows(ctx)
		if err != nil {
			return errorResult("Failed to list workflows: %v", err)
		}
		return Result{"workflows": workflows}

	case "create_workflow":
		name := stringParam(params, "name", "")
		if name == "" {
			return errorResult("Name parameter required")
		}
		wf, err := r.n8n.CreateWorkflow(ctx, name, stringParam(params, "description", ""))
		if err != nil {
			return errorResult("Failed to create workflow: %v", err)
		}
		return Result{"workflow_id": wf.ID, "name": wf.Name, "status": "created"}
	}
	return errorResult("Unknown n8n tool: %s", tool)
}

// =============================================================================
// WEB SEARCH
// =============================================================================

func (r *Registry) callWebSearch(ctx context.Context, tool string, params map[string]any) Result {
	if tool != "search_web" {
		return errorResult("Unknown web search tool: %s", tool)
	}
	if r.web == nil {
		return errorResult("web search is not configured")
	}
	query := stringParam(params, "query", "")
	if query == "" {
		return errorResult("Query parameter required")
	}
	n := intParam(params, "num_results", 5)

	hits, err := r.web.Search(ctx, query, n)
	if err != nil {
		return errorResult("Web search failed: %v", err)
	}
	results := make([]map[string]any, 0, len(hits))
	for _, h := range hits {
		results = append(results, map[string]any{"title": h.Title, "snippet": h.Snippet, "url": h.URL, "type": "web"})
	}
	if len(results) == 0 {
		results = append(results, map[string]any{
			"title":   "Search results for: " + query,
			"snippet": fmt.Sprintf("I searched for %q but couldn't find specific results.", query),
			"url":     "https://duckduckgo.com/?q=" + url.QueryEscape(query),
			"type":    "fallback",
		})
	}
	return Result{"query": query, "results": results, "total_results": len(hits)}
}
