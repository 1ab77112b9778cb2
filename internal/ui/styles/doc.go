// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the lipgloss palette and styles for the charlie
// terminal UI.
//
// Colors are lipgloss.AdaptiveColor values so one palette serves light and
// dark terminals. NewTheme picks the background from the configured theme
// ("dark", "light") or, for "auto", from termenv's background detection.
package styles
