// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Seabass-up/Charlie-Chat/internal/model"
	"github.com/Seabass-up/Charlie-Chat/internal/util"
)

// FilePrefix starts every exported file name.
const FilePrefix = "charlie-chat"

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is a snapshot of the visible conversation.
type Transcript struct {
	Model      string        `json:"model" yaml:"model"`
	ExportedAt time.Time     `json:"exported_at" yaml:"exported_at"`
	Turns      []*model.Turn `json:"turns" yaml:"turns"`
}

// NewTranscript snapshots sess, leaving out pending placeholders.
func NewTranscript(sess *model.Session, now time.Time) *Transcript {
	return &Transcript{
		Model:      sess.SelectedModel,
		ExportedAt: now,
		Turns:      sess.Visible(),
	}
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for transcript exporters.
type Exporter interface {
	// Export converts a transcript to the target format.
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the file extension, including the dot.
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	OutputDir string

	// IncludeMetadata adds a header block to formats that support one.
	IncludeMetadata bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		IncludeMetadata: true,
	}
}

// ForFormat returns the exporter for a format name.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "", "txt", "text":
		return NewTextExporter(), nil
	case "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(), nil
	case "yaml", "yml":
		return NewYAMLExporter(), nil
	case "html", "htm":
		return NewHTMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want txt, md, json, yaml or html)", format)
	}
}

// Formats lists the accepted format names.
func Formats() []string {
	return []string{"txt", "md", "json", "yaml", "html"}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// Filename returns the dated file name for an export.
func Filename(exporter Exporter, at time.Time) string {
	return FilePrefix + "-" + at.Format("2006-01-02") + exporter.FileExtension()
}

// ExportToFile writes t using exporter and returns the output path.
// An existing export from the same day is overwritten.
func ExportToFile(t *Transcript, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if t.ExportedAt.IsZero() {
		t.ExportedAt = time.Now()
	}

	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}

	outputPath := filepath.Join(dir, Filename(exporter, t.ExportedAt))
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// flatten collapses line breaks so a turn fits on one line.
func flatten(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\r\n", "\n")), " ")
}
