// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the Charlie chat backend.
//
// # Endpoints
//
//   - POST /api/chat          - chat with tool-gathered context
//   - GET  /api/files         - list a directory inside the allowed roots
//   - GET  /api/files/read    - read a text file inside the allowed roots
//   - GET  /api/mcp/tools     - tool catalog per server
//   - GET  /api/mcp/config    - declared servers and their tools
//   - POST /api/mcp/search    - keyword-routed tool search
//   - GET  /api/debug         - status and counters
//   - GET  /                  - static web UI, when a directory is configured
//
// Errors are JSON objects of the form {"detail": "..."}.
//
// # Middleware
//
// Every request passes through panic recovery, security headers, request
// logging, CORS and a per-client token-bucket rate limit.
//
// # Usage
//
//	srv := server.New(server.Config{Port: 8000}, llm, router, sandbox, logger)
//	if err := srv.Run(ctx); err != nil {
//		logger.Fatal("server stopped", "err", err)
//	}
package server
