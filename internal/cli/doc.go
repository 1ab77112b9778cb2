// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the charlie command tree.
//
//	charlie            terminal UI (same as `charlie tui`)
//	charlie chat       line-oriented chat with history
//	charlie ask        one-shot question
//	charlie serve      HTTP backend
//	charlie tools      MCP tool discovery
//	charlie version    build information
//
// Every command except version loads the configuration first; see the
// persistent flags on the root command for overrides.
package cli
