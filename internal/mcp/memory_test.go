// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_StoreRetrieve(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "memory.db")
	store, err := OpenMemoryStore(path)
	require.NoError(t, err)

	_, found, err := store.Retrieve(ctx, "color")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Store(ctx, "color", "blue"))
	require.NoError(t, store.Store(ctx, "color", "green"))
	require.NoError(t, store.Store(ctx, "pet", "cat"))

	value, found, err := store.Retrieve(ctx, "color")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "green", value)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"color", "pet"}, keys)
	require.NoError(t, store.Close())

	// Values survive reopening.
	reopened, err := OpenMemoryStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	value, found, err = reopened.Retrieve(ctx, "pet")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "cat", value)
}
