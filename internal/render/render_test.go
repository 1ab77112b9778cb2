// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML_Bold(t *testing.T) {
	out, err := NewHTML().Render("**bold**")
	require.NoError(t, err)

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "**")
}

func TestHTML_FencedCodeIsHighlighted(t *testing.T) {
	out, err := NewHTML().Render("```go\nfunc main() {}\n```\n")
	require.NoError(t, err)

	assert.Contains(t, out, `class="chroma"`)
	assert.Contains(t, out, "main")
	assert.NotContains(t, out, "```")
}

func TestHTML_UnknownLanguageFallsBack(t *testing.T) {
	out, err := NewHTML().Render("```nosuchlang\n<b>x</b>\n```\n")
	require.NoError(t, err)

	assert.Contains(t, out, "&lt;b&gt;")
}

func TestHTML_StripsScripts(t *testing.T) {
	out, err := NewHTML().Render("hi <script>alert(1)</script> <a href=\"javascript:alert(1)\">x</a>")
	require.NoError(t, err)

	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:")
}

func TestHTML_Table(t *testing.T) {
	out, err := NewHTML().Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)

	assert.Contains(t, out, "<table>")
}

func TestHTML_WriteCSS(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewHTML().WriteCSS(&buf))
	assert.Contains(t, buf.String(), ".chroma")
}

func TestTerminal_RendersWithoutMarkers(t *testing.T) {
	r, err := NewTerminal("dark", 60)
	require.NoError(t, err)

	out, err := r.Render("# Title\n\nsome **bold** text")
	require.NoError(t, err)

	assert.Contains(t, out, "bold")
	assert.NotContains(t, out, "**")
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestResolveStyle(t *testing.T) {
	assert.Equal(t, "dark", ResolveStyle("dark"))
	assert.Equal(t, "light", ResolveStyle("light"))
	assert.Contains(t, []string{"dark", "light"}, ResolveStyle("auto"))
}

func TestPlainAndFunc(t *testing.T) {
	out, err := Plain{}.Render("  x  ")
	require.NoError(t, err)
	assert.Equal(t, "x", out)

	f := Func(func(s string) (string, error) { return strings.ToUpper(s), nil })
	out, err = f.Render("abc")
	require.NoError(t, err)
	assert.Equal(t, "ABC", out)
}
