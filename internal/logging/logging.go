// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the structured loggers used across charlie.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options controls logger construction.
type Options struct {
	// Level is one of debug, info, warn, error, fatal. Unknown values fall
	// back to info.
	Level string

	// File, when set, receives log output instead of Writer. The TUI uses
	// this so logs do not corrupt the screen.
	File string

	Writer io.Writer
	Prefix string
	JSON   bool
}

// ParseLevel maps a config level name onto a log.Level.
func ParseLevel(name string) log.Level {
	if strings.EqualFold(name, "warning") {
		return log.WarnLevel
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// New creates a logger. The returned closer releases the log file, if any,
// and is always safe to call.
func New(opts Options) (*log.Logger, func() error, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	closer := func() error { return nil }

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, closer, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, closer, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closer = f.Close
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opts.Level),
		Prefix:          opts.Prefix,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	if opts.JSON {
		logger.SetFormatter(log.JSONFormatter)
	}
	return logger, closer, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
