// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and the
// JSON shapes exchanged with the Charlie backend.
//
// # Key Types
//
//   - Session: the in-memory conversation plus the send gate and browser path
//   - Turn: a single user or assistant entry in the conversation
//   - DirectoryListing, FileContent: file browser payloads
//   - ToolCatalog, SearchResponse: MCP tool discovery payloads
//
// # Usage
//
//	sess := model.NewSession("gpt-oss:120b")
//	sess.Append(model.NewTurn(model.RoleUser, "Hello!"))
//
// A Session is owned by exactly one goroutine (the UI event loop or the REPL)
// and is not safe for concurrent mutation.
package model
