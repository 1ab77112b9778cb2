// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the CLI, the TUI and the
// exporters.
//
// String Utilities:
//   - Truncate, Width, PadRight: display-width aware, so CJK and emoji
//     line up in terminal columns
//   - Wrap: word wrapping for REPL output and plain-text turns
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
//	err := util.AtomicWriteFile(path, data, 0644)
package util
