// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the visible conversation to disk.
//
// Supported formats:
//   - txt: one line per turn, "[15:04:05] You: text"
//   - md: Markdown document with a metadata header
//   - json, yaml: structured dump of the turns
//   - html: standalone page with highlighted code
//
// Files are named after the export date, for example
// charlie-chat-2025-03-14.txt.
//
// Usage:
//
//	t := export.NewTranscript(session, time.Now())
//	path, err := export.ExportToFile(t, export.NewTextExporter(), export.DefaultOptions())
package export
