// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools turns the backend's MCP tool catalog and search results
// into markdown for the conversation.
//
// Discovery fetches data through a Catalog (the transport client). Search
// results arrive as raw JSON per tool; Classify sorts each one into a typed
// Result (directory listing, matches, documents, workflows, memory,
// message or error) and Format renders it.
package tools
