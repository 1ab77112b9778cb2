// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package browser drives the remote file browser: listing directories,
// navigating, and opening files into the conversation.
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Seabass-up/Charlie-Chat/internal/chat"
	"github.com/Seabass-up/Charlie-Chat/internal/model"
)

// Files is the subset of the backend client the browser needs.
type Files interface {
	ListDirectory(ctx context.Context, path string) (*model.DirectoryListing, error)
	ReadFile(ctx context.Context, path string) (*model.FileContent, error)
}

// DirectoryResult carries a fetched listing back to the event loop.
type DirectoryResult struct {
	Path    string
	Listing *model.DirectoryListing
	Err     error
}

// FileResult carries fetched file content back to the event loop.
type FileResult struct {
	Entry   model.Entry
	Content *model.FileContent
	Err     error
}

// Browser holds the current listing. Errors are reported through the chat
// controller as assistant turns; the previous listing stays in place.
type Browser struct {
	chat    *chat.Controller
	files   Files
	listing *model.DirectoryListing
	logger  *log.Logger
}

// New creates a browser bound to a chat controller.
func New(ctrl *chat.Controller, files Files, logger *log.Logger) *Browser {
	if logger == nil {
		logger = log.Default()
	}
	return &Browser{chat: ctrl, files: files, logger: logger}
}

// Listing returns the current listing, or nil before the first load.
func (b *Browser) Listing() *model.DirectoryListing {
	return b.listing
}

// CurrentPath returns the directory currently shown.
func (b *Browser) CurrentPath() string {
	return b.chat.Session().CurrentPath
}

// =============================================================================
// DIRECTORIES
// =============================================================================

// FetchDirectory lists path without touching any state.
func (b *Browser) FetchDirectory(ctx context.Context, path string) DirectoryResult {
	listing, err := b.files.ListDirectory(ctx, path)
	return DirectoryResult{Path: path, Listing: listing, Err: err}
}

// ApplyDirectory installs a fetched listing. Reports whether it succeeded.
func (b *Browser) ApplyDirectory(r DirectoryResult) bool {
	if r.Err != nil {
		b.chat.Fail(fmt.Sprintf("open directory %q", r.Path), r.Err)
		return false
	}
	if r.Listing == nil {
		r.Listing = &model.DirectoryListing{Path: r.Path}
	}
	if r.Listing.Path == "" {
		r.Listing.Path = r.Path
	}

	b.listing = r.Listing
	b.chat.Session().CurrentPath = r.Listing.Path
	b.logger.Debug("directory loaded", "path", r.Listing.Path, "items", len(r.Listing.Items))
	return true
}

// LoadDirectory fetches and installs the listing for path.
func (b *Browser) LoadDirectory(ctx context.Context, path string) bool {
	return b.ApplyDirectory(b.FetchDirectory(ctx, path))
}

// GoUp loads the parent of the current directory. It does nothing at a root.
func (b *Browser) GoUp(ctx context.Context) bool {
	parent, ok := ParentPath(b.CurrentPath())
	if !ok {
		return false
	}
	return b.LoadDirectory(ctx, parent)
}

// =============================================================================
// FILES
// =============================================================================

// EntryPath returns the full path of an entry in the current listing.
func (b *Browser) EntryPath(e model.Entry) string {
	if e.Path != "" {
		return e.Path
	}
	return JoinPath(b.CurrentPath(), e.Name)
}

// FetchFile reads a file entry without touching any state.
func (b *Browser) FetchFile(ctx context.Context, e model.Entry) FileResult {
	e.Path = b.EntryPath(e)
	content, err := b.files.ReadFile(ctx, e.Path)
	return FileResult{Entry: e, Content: content, Err: err}
}

// ApplyFile posts the opened file to the conversation and starts a send of
// its contents. The returned Pending must be dispatched by the caller.
func (b *Browser) ApplyFile(r FileResult) (*chat.Pending, bool) {
	if r.Err != nil {
		b.chat.Fail(fmt.Sprintf("read %s", r.Entry.Name), r.Err)
		return nil, false
	}
	if b.chat.Session().IsSending {
		b.logger.Debug("file open ignored", "reason", "send in flight", "path", r.Entry.Path)
		return nil, false
	}
	if r.Content == nil {
		r.Content = &model.FileContent{Path: r.Entry.Path}
	}

	b.chat.AddUserTurn(fmt.Sprintf("Opened file: %s", r.Entry.Name))
	return b.chat.BeginText(FileMessage(r.Entry, r.Content))
}

// SelectEntry opens a directory or sends a file's contents, blocking until
// the whole exchange completes.
func (b *Browser) SelectEntry(ctx context.Context, e model.Entry) bool {
	if e.IsDir() {
		return b.LoadDirectory(ctx, b.EntryPath(e))
	}
	p, ok := b.ApplyFile(b.FetchFile(ctx, e))
	if !ok {
		return false
	}
	b.chat.Finish(b.chat.Dispatch(ctx, p))
	return true
}

// =============================================================================
// PATHS
// =============================================================================

// ParentPath trims the last segment of p. Both '/' and '\' separate
// segments. It reports false when p has no parent.
func ParentPath(p string) (string, bool) {
	trimmed := strings.TrimRight(p, `/\`)
	if trimmed == "" {
		return "", false
	}
	i := strings.LastIndexAny(trimmed, `/\`)
	if i < 0 {
		return "", false
	}

	parent := trimmed[:i]
	switch {
	case parent == "":
		return trimmed[:1], true
	case strings.HasSuffix(parent, ":"):
		return parent + trimmed[i:i+1], true
	}
	return parent, true
}

// JoinPath appends name to dir using the separator dir already uses.
func JoinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	sep := "/"
	if strings.Contains(dir, `\`) && !strings.Contains(dir, "/") {
		sep = `\`
	}
	if strings.HasSuffix(dir, sep) {
		return dir + name
	}
	return dir + sep + name
}
