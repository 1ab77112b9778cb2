// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Seabass-up/Charlie-Chat/internal/model"
)

var exportTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.Local)

func sampleSession() *model.Session {
	sess := model.NewSession("gpt-oss:120b")

	user := model.NewTurn(model.RoleUser, "Show me\na loop")
	user.Timestamp = time.Date(2025, 3, 14, 9, 0, 1, 0, time.Local)
	reply := model.NewTurn(model.RoleAssistant, "```go\nfor {}\n```")
	reply.Timestamp = time.Date(2025, 3, 14, 9, 0, 5, 0, time.Local)
	reply.Rendered = "<pre>for {}</pre>"

	sess.Append(user)
	sess.Append(reply)
	sess.Append(model.NewPendingTurn())
	return sess
}

func TestNewTranscript_SkipsPending(t *testing.T) {
	tr := NewTranscript(sampleSession(), exportTime)
	assert.Len(t, tr.Turns, 2)
	assert.Equal(t, "gpt-oss:120b", tr.Model)
}

func TestTextExporter_OneLinePerTurn(t *testing.T) {
	data, err := NewTextExporter().Export(NewTranscript(sampleSession(), exportTime))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[09:00:01] You: Show me a loop", lines[0])
	assert.Equal(t, "[09:00:05] Charlie: ```go for {} ```", lines[1])
}

func TestTextExporter_Empty(t *testing.T) {
	data, err := NewTextExporter().Export(NewTranscript(model.NewSession("m"), exportTime))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestExportToFile_DatedName(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportToFile(NewTranscript(sampleSession(), exportTime), NewTextExporter(), &Options{OutputDir: dir})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "charlie-chat-2025-03-14.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestMarkdownExporter(t *testing.T) {
	data, err := NewMarkdownExporter(nil).Export(NewTranscript(sampleSession(), exportTime))
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, "---\nmodel: gpt-oss:120b\n"))
	assert.Contains(t, out, "turns: 2")
	assert.Contains(t, out, "### You (09:00:01)\n\nShow me\na loop\n")
	assert.Contains(t, out, "```go\nfor {}\n```")

	bare, err := NewMarkdownExporter(&Options{}).Export(NewTranscript(sampleSession(), exportTime))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(bare), "# Charlie Chat, 2025-03-14"))
}

func TestJSONAndYAMLExporters(t *testing.T) {
	tr := NewTranscript(sampleSession(), exportTime)

	data, err := NewJSONExporter().Export(tr)
	require.NoError(t, err)
	var decoded struct {
		Model string `json:"model"`
		Turns []struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"turns"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "gpt-oss:120b", decoded.Model)
	require.Len(t, decoded.Turns, 2)
	assert.Equal(t, "assistant", decoded.Turns[1].Role)
	assert.NotContains(t, string(data), "<pre>", "rendered output is not exported")

	data, err = NewYAMLExporter().Export(tr)
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, yaml.Unmarshal(data, &generic))
	assert.Equal(t, "gpt-oss:120b", generic["model"])
	assert.Len(t, generic["turns"], 2)
}

func TestHTMLExporter(t *testing.T) {
	sess := sampleSession()
	sess.Append(model.NewTurn(model.RoleUser, "<script>x</script>"))

	data, err := NewHTMLExporter(nil).Export(NewTranscript(sess, exportTime))
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, `class="chroma"`)
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>")
}

func TestForFormat(t *testing.T) {
	for _, name := range append(Formats(), "", "markdown", ".yml", "TEXT") {
		e, err := ForFormat(name, nil)
		require.NoError(t, err, name)
		assert.NotEmpty(t, e.FileExtension())
		assert.NotEmpty(t, e.MimeType())
	}

	_, err := ForFormat("pdf", nil)
	assert.Error(t, err)
}
