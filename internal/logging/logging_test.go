// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"bogus":   log.InfoLevel,
		"":        log.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_WriterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: "warn", Writer: &buf})
	require.NoError(t, err)
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("shown", "path", "/tmp")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "path=/tmp")
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "charlie.log")
	logger, closeFn, err := New(Options{Level: "debug", File: path, JSON: true})
	require.NoError(t, err)

	logger.Debug("started", "port", 8000)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"started"`)
	assert.Contains(t, string(data), `"port":8000`)
}
