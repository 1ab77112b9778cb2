// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea front-end for charlie.
//
// The Model translates key events and slash commands into calls on the
// controller layer (internal/chat, internal/browser, internal/tools,
// internal/voice) and draws the session they maintain. Network calls run
// as tea.Cmds using the controllers' split-phase methods: the Begin/Fetch
// half runs on the event loop, the Dispatch half in the command goroutine,
// and the Finish/Apply half back on the event loop when the result message
// arrives. Session state is therefore only ever mutated from Update.
//
// # Layout
//
//	┌ header: brand, model, backend ─────────────────────────┐
//	│ conversation viewport            │ file panel (toggle) │
//	├──────────────────────────────────┴─────────────────────┤
//	│ input textarea                                         │
//	└ status: idle / sending / listening, key hints ─────────┘
//
// # Slash Commands
//
//	/help               show commands
//	/model [name]       show or switch the model
//	/clear              clear the conversation
//	/copy               copy the last reply to the clipboard
//	/export [format]    write the transcript (txt, md, json, yaml, html)
//	/files [path]       open the file panel at path
//	/up                 go to the parent directory
//	/tools              list MCP tools
//	/search <query>     tool-assisted search
//	/voice              toggle voice input
//	/quit               exit
package chat
