// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Charlie"},
		{Role("other"), "other"},
	}

	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.role.DisplayName())
		})
	}
}

func TestNewTurn(t *testing.T) {
	turn := NewTurn(RoleUser, "hi")

	assert.NotEmpty(t, turn.ID)
	assert.Equal(t, RoleUser, turn.Role)
	assert.Equal(t, "hi", turn.Text)
	assert.False(t, turn.Timestamp.IsZero())
	assert.False(t, turn.Pending)
	assert.NotEqual(t, turn.ID, NewTurn(RoleUser, "hi").ID)
}

func TestTurn_Display(t *testing.T) {
	turn := NewTurn(RoleAssistant, "**x**")
	assert.Equal(t, "**x**", turn.Display())

	turn.Rendered = "<strong>x</strong>"
	assert.Equal(t, "<strong>x</strong>", turn.Display())
}

func TestSession_AppendRemove(t *testing.T) {
	s := NewSession("m")
	a := NewTurn(RoleUser, "a")
	p := NewPendingTurn()
	b := NewTurn(RoleAssistant, "b")

	s.Append(a)
	s.Append(p)
	s.Append(b)
	require.Len(t, s.Turns, 3)
	assert.Equal(t, 1, s.PendingCount())
	assert.Len(t, s.Visible(), 2)

	assert.True(t, s.Remove(p.ID))
	assert.False(t, s.Remove(p.ID))
	assert.Equal(t, []*Turn{a, b}, s.Turns)
	assert.Same(t, b, s.LastAssistant())

	s.Clear()
	assert.Empty(t, s.Turns)
	assert.Nil(t, s.LastAssistant())
}

func TestToolCatalog_Empty(t *testing.T) {
	assert.True(t, ToolCatalog{}.Empty())
	assert.True(t, ToolCatalog{"memory": nil}.Empty())
	assert.False(t, ToolCatalog{"memory": {{Name: "store_memory"}}}.Empty())
}

func TestEntry_IsDir(t *testing.T) {
	assert.True(t, Entry{Type: EntryDirectory}.IsDir())
	assert.False(t, Entry{Type: EntryFile}.IsDir())
}
