// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSandbox(t *testing.T) (*Sandbox, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "deep"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("bee\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "A.md"), []byte("# A\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.go"), []byte("package main\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "deep", "util.go"), []byte("package deep\n"), 0644))

	sb, err := NewSandbox([]string{root}, "", 3, 64)
	require.NoError(t, err)
	return sb, sb.Roots()[0]
}

func TestSandbox_ListOrdersDirectoriesFirst(t *testing.T) {
	sb, root := newTestSandbox(t)

	listing, err := sb.List(root)
	require.NoError(t, err)

	var names []string
	for _, it := range listing.Items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"Docs", "src", "A.md", "b.txt"}, names)
	assert.Nil(t, listing.Items[0].Size)
	require.NotNil(t, listing.Items[3].Size)
	assert.EqualValues(t, 4, *listing.Items[3].Size)
	assert.Empty(t, listing.Parent, "parent of the root is outside the sandbox")
}

func TestSandbox_ListDefaultsAndParent(t *testing.T) {
	sb, root := newTestSandbox(t)

	listing, err := sb.List("")
	require.NoError(t, err)
	assert.Equal(t, root, listing.Path)

	sub, err := sb.List(filepath.Join(root, "src"))
	require.NoError(t, err)
	assert.Equal(t, root, sub.Parent)
}

func TestSandbox_Denied(t *testing.T) {
	sb, root := newTestSandbox(t)

	_, err := sb.List(filepath.Dir(root))
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = sb.Read(filepath.Join(root, "..", "escape.txt"), 0)
	assert.ErrorIs(t, err, ErrAccessDenied)

	assert.False(t, sb.Allowed(root+"EVIL"))
	assert.True(t, sb.Allowed(filepath.Join(root, "src")))
}

func TestSandbox_SymlinkEscape(t *testing.T) {
	sb, root := newTestSandbox(t)
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret"), []byte("x"), 0644))
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	_, err := sb.Read(filepath.Join(root, "link", "secret"), 0)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestSandbox_NotFound(t *testing.T) {
	sb, root := newTestSandbox(t)

	_, err := sb.List(filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = sb.List(filepath.Join(root, "b.txt"))
	assert.ErrorIs(t, err, ErrNotFound, "a file is not a directory")

	_, err = sb.Read(filepath.Join(root, "src"), 0)
	assert.ErrorIs(t, err, ErrNotFound, "a directory is not a file")
}

func TestSandbox_ReadTruncatesLines(t *testing.T) {
	sb, root := newTestSandbox(t)
	path := filepath.Join(root, "lines.txt")
	require.NoError(t, os.WriteFile(path, []byte("1\n2\n3\n4\n5\n"), 0644))

	fc, err := sb.Read(path, 0)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", fc.Content)
	assert.True(t, fc.Truncated)
	assert.Equal(t, 5, fc.TotalLines)
	assert.Equal(t, 3, fc.ShownLines)
	assert.Equal(t, "utf-8", fc.Encoding)

	fc, err = sb.Read(path, 10)
	require.NoError(t, err)
	assert.False(t, fc.Truncated)
	assert.Equal(t, 5, fc.ShownLines)
}

func TestSandbox_ReadPlaceholders(t *testing.T) {
	sb, root := newTestSandbox(t)

	big := filepath.Join(root, "big.txt")
	require.NoError(t, os.WriteFile(big, []byte(strings.Repeat("x", 65)), 0644))
	fc, err := sb.Read(big, 0)
	require.NoError(t, err)
	assert.True(t, fc.Truncated)
	assert.Equal(t, "binary", fc.Encoding)
	assert.Contains(t, fc.Content, "File too large (65 bytes)")

	bin := filepath.Join(root, "blob.bin")
	require.NoError(t, os.WriteFile(bin, []byte{0xff, 0xfe, 0x00, 0x01}, 0644))
	fc, err = sb.Read(bin, 0)
	require.NoError(t, err)
	assert.False(t, fc.Truncated)
	assert.Equal(t, "Binary file (4 bytes). Cannot display content.", fc.Content)
}

func TestSandbox_Search(t *testing.T) {
	sb, root := newTestSandbox(t)

	matches, err := sb.Search(root, "*.go", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "src", "main.go"),
		filepath.Join(root, "src", "deep", "util.go"),
	}, matches)

	limited, err := sb.Search(root, "*", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = sb.Search(root, "[", 0)
	assert.Error(t, err)
}
