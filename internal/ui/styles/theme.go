// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds every style the UI renders with.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// HEADER AND STATUS
	// ==========================================================================

	Header          lipgloss.Style
	HeaderModel     lipgloss.Style
	StatusBar       lipgloss.Style
	StatusIdle      lipgloss.Style
	StatusSending   lipgloss.Style
	StatusListening lipgloss.Style
	StatusNotice    lipgloss.Style

	// ==========================================================================
	// TURNS
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Timestamp      lipgloss.Style
	PendingText    lipgloss.Style
	TurnBody       lipgloss.Style

	// ==========================================================================
	// FILE PANEL
	// ==========================================================================

	Panel        lipgloss.Style
	PanelFocused lipgloss.Style
	PanelTitle   lipgloss.Style
	Directory    lipgloss.Style
	File         lipgloss.Style
	Selected     lipgloss.Style
	FileSize     lipgloss.Style

	// ==========================================================================
	// INPUT AND HELP
	// ==========================================================================

	Input        lipgloss.Style
	InputFocused lipgloss.Style
	Help         lipgloss.Style
	Error        lipgloss.Style
	Muted        lipgloss.Style
}

// NewTheme builds a theme for mode ("auto", "dark" or "light").
func NewTheme(mode string) *Theme {
	isDark := true
	switch strings.ToLower(mode) {
	case "light":
		isDark = false
	case "dark":
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderModel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusIdle = lipgloss.NewStyle().Foreground(Emerald).Background(SurfaceDim)
	t.StatusSending = lipgloss.NewStyle().Foreground(Amber).Background(SurfaceDim).Bold(true)
	t.StatusListening = lipgloss.NewStyle().Foreground(Rose).Background(SurfaceDim).Bold(true)
	t.StatusNotice = lipgloss.NewStyle().Foreground(TextPrimary).Background(SurfaceDim).Italic(true)

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.PendingText = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.TurnBody = lipgloss.NewStyle().Foreground(TextPrimary).PaddingLeft(2)

	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.PanelFocused = t.Panel.BorderForeground(Purple)
	t.PanelTitle = lipgloss.NewStyle().Bold(true).Foreground(TextSecondary)
	t.Directory = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.File = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Selected = lipgloss.NewStyle().Foreground(TextInverse).Background(Purple)
	t.FileSize = lipgloss.NewStyle().Foreground(TextMuted)

	t.Input = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)
	t.InputFocused = t.Input.BorderForeground(Cyan)
	t.Help = lipgloss.NewStyle().Foreground(TextMuted)
	t.Error = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// LayoutMode is the responsive layout chosen from the terminal width.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns, file panel hidden
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// PanelWidth is the file panel's outer width for the current layout.
func (t *Theme) PanelWidth() int {
	switch t.GetLayoutMode() {
	case LayoutNarrow:
		return 0
	case LayoutMedium:
		return 28
	}
	return 36
}
