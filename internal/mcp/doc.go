// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mcp implements the server-side tool registry behind the chat
// backend.
//
// Servers are declared in mcp_config.json using the usual MCP layout:
//
//	{"mcpServers": {"filesystem": {"command": "npx", "args": [...]}}}
//
// Only the declaration is read. The tools themselves run in-process:
//
//   - filesystem: list_directory, read_file, search_files (sandboxed)
//   - memory: store_memory, retrieve_memory (sqlite)
//   - web_search: search_web (DuckDuckGo HTML)
//   - deepwiki: search_wiki
//   - n8n-mcp: list_workflows, create_workflow (n8n REST API)
//
// A Router decides which tools to run for a chat message and folds their
// output into the prompt sent to the model.
package mcp
