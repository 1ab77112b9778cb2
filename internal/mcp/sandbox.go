// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcp

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Seabass-up/Charlie-Chat/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrAccessDenied is returned for paths outside every allowed root.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound is returned when the path does not exist or has the wrong
	// kind (a file where a directory is expected, or the reverse).
	ErrNotFound = errors.New("not found")
)

// PathError records the operation and path that failed.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SANDBOX
// =============================================================================

// DefaultSearchLimit caps search_files results.
const DefaultSearchLimit = 50

// Sandbox gives read-only filesystem access below a set of allowed roots.
type Sandbox struct {
	roots       []string
	defaultPath string
	maxLines    int
	maxBytes    int64
}

// NewSandbox resolves the allowed roots. With no roots the user's home
// directory is allowed. An empty defaultPath means the first root.
func NewSandbox(roots []string, defaultPath string, maxLines int, maxBytes int64) (*Sandbox, error) {
	if len(roots) == 0 {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("no allowed paths configured and no home directory: %w", err)
		}
		roots = []string{home}
	}

	s := &Sandbox{maxLines: maxLines, maxBytes: maxBytes}
	if s.maxLines <= 0 {
		s.maxLines = 100
	}
	if s.maxBytes <= 0 {
		s.maxBytes = 1 << 20
	}
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("allowed path %q: %w", root, err)
		}
		if real, err := filepath.EvalSymlinks(abs); err == nil {
			abs = real
		}
		s.roots = append(s.roots, abs)
	}

	s.defaultPath = s.roots[0]
	if defaultPath != "" {
		abs, err := filepath.Abs(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("default path %q: %w", defaultPath, err)
		}
		s.defaultPath = abs
	}
	return s, nil
}

// Roots returns the resolved allowed roots.
func (s *Sandbox) Roots() []string {
	return append([]string(nil), s.roots...)
}

// DefaultPath is listed when a request names no path.
func (s *Sandbox) DefaultPath() string {
	return s.defaultPath
}

// MaxLines is the line cap applied when a read names none.
func (s *Sandbox) MaxLines() int {
	return s.maxLines
}

// Allowed reports whether path resolves inside an allowed root.
func (s *Sandbox) Allowed(path string) bool {
	_, _, err := s.resolve("check", path)
	return err == nil
}

// resolve returns the cleaned absolute path and its symlink-free form.
// Symlinks are resolved before the boundary check so a link cannot point
// out of the sandbox.
func (s *Sandbox) resolve(op, path string) (string, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", &PathError{Op: op, Path: path, Err: err}
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if parent, perr := filepath.EvalSymlinks(filepath.Dir(abs)); perr == nil {
			real = filepath.Join(parent, filepath.Base(abs))
		} else {
			real = abs
		}
	}
	for _, root := range s.roots {
		if isPathWithinDir(real, root) {
			return abs, real, nil
		}
	}
	return "", "", &PathError{Op: op, Path: path, Err: ErrAccessDenied}
}

func normalizePath(path string) string {
	cleaned := filepath.Clean(path)
	if runtime.GOOS == "windows" {
		return strings.ToLower(filepath.ToSlash(cleaned))
	}
	return cleaned
}

// isPathWithinDir rejects prefix tricks such as /home/userEVIL matching
// /home/user.
func isPathWithinDir(path, dir string) bool {
	p := normalizePath(path)
	d := normalizePath(dir)
	if p == d {
		return true
	}
	if !strings.HasSuffix(d, "/") && !strings.HasSuffix(d, string(filepath.Separator)) {
		d += string(filepath.Separator)
	}
	if runtime.GOOS == "windows" {
		d = filepath.ToSlash(d)
	}
	return strings.HasPrefix(p, d)
}

// List returns a directory listing with directories first, then files,
// each group ordered case-insensitively. Unreadable entries are skipped.
func (s *Sandbox) List(path string) (*model.DirectoryListing, error) {
	if strings.TrimSpace(path) == "" {
		path = s.defaultPath
	}
	abs, real, err := s.resolve("list", path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(real)
	if err != nil || !info.IsDir() {
		return nil, &PathError{Op: "list", Path: path, Err: ErrNotFound}
	}

	entries, err := os.ReadDir(real)
	if err != nil {
		return nil, &PathError{Op: "list", Path: path, Err: err}
	}

	items := make([]model.Entry, 0, len(entries))
	readable := true
	for _, e := range entries {
		fi, err := e.Info()
		if err != nil {
			continue
		}
		item := model.Entry{
			Name:     e.Name(),
			Path:     filepath.Join(abs, e.Name()),
			Type:     model.EntryFile,
			Modified: fi.ModTime().UTC().Format(time.RFC3339),
			Readable: &readable,
		}
		if fi.IsDir() {
			item.Type = model.EntryDirectory
		} else {
			size := fi.Size()
			item.Size = &size
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsDir() != items[j].IsDir() {
			return items[i].IsDir()
		}
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})

	listing := &model.DirectoryListing{Path: abs, Items: items}
	if parent := filepath.Dir(abs); parent != abs && s.Allowed(parent) {
		listing.Parent = parent
	}
	return listing, nil
}

// Read returns up to maxLines lines of a text file. A maxLines of zero or
// less uses the sandbox default. Oversized and non UTF-8 files are reported
// with a placeholder instead of their content.
func (s *Sandbox) Read(path string, maxLines int) (*model.FileContent, error) {
	if maxLines <= 0 {
		maxLines = s.maxLines
	}
	abs, real, err := s.resolve("read", path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(real)
	if err != nil || !info.Mode().IsRegular() {
		return nil, &PathError{Op: "read", Path: path, Err: ErrNotFound}
	}

	size := info.Size()
	if size > s.maxBytes {
		return &model.FileContent{
			Path:      abs,
			Content:   fmt.Sprintf("File too large (%d bytes). Maximum allowed size is %d bytes.", size, s.maxBytes),
			Truncated: true,
			Size:      size,
			Encoding:  "binary",
		}, nil
	}

	data, err := os.ReadFile(real)
	if err != nil {
		return nil, &PathError{Op: "read", Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return &model.FileContent{
			Path:     abs,
			Content:  fmt.Sprintf("Binary file (%d bytes). Cannot display content.", size),
			Size:     size,
			Encoding: "binary",
		}, nil
	}

	lines := strings.SplitAfter(string(data), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	shown := lines
	truncated := false
	if len(lines) > maxLines {
		shown = lines[:maxLines]
		truncated = true
	}

	return &model.FileContent{
		Path:       abs,
		Content:    strings.Join(shown, ""),
		Truncated:  truncated,
		TotalLines: len(lines),
		ShownLines: len(shown),
		Size:       size,
		Encoding:   "utf-8",
	}, nil
}

// Search walks root and returns paths whose base name matches the glob
// pattern, stopping after limit matches.
func (s *Sandbox) Search(root, pattern string, limit int) ([]string, error) {
	if strings.TrimSpace(root) == "" {
		root = s.defaultPath
	}
	if pattern == "" {
		pattern = "*"
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	abs, real, err := s.resolve("search", root)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(real); err != nil || !info.IsDir() {
		return nil, &PathError{Op: "search", Path: root, Err: ErrNotFound}
	}

	var matches []string
	err = filepath.WalkDir(real, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if p == real {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			rel, rerr := filepath.Rel(real, p)
			if rerr != nil {
				return nil
			}
			matches = append(matches, filepath.Join(abs, rel))
			if len(matches) >= limit {
				return fs.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return matches, &PathError{Op: "search", Path: root, Err: err}
	}
	return matches, nil
}
