// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Session is the state of one chat window.
//
// IsSending is true from the moment a message is dispatched until its reply
// (or failure) has been handled. At most one send is outstanding.
type Session struct {
	Turns         []*Turn
	IsSending     bool
	SelectedModel string
	CurrentPath   string
}

// NewSession creates an empty session using the given model.
func NewSession(selectedModel string) *Session {
	return &Session{SelectedModel: selectedModel}
}

// Append adds a turn to the end of the conversation.
func (s *Session) Append(t *Turn) {
	s.Turns = append(s.Turns, t)
}

// Remove deletes the turn with the given ID. Returns false if it was not found.
func (s *Session) Remove(id string) bool {
	for i, t := range s.Turns {
		if t.ID == id {
			s.Turns = append(s.Turns[:i], s.Turns[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every turn.
func (s *Session) Clear() {
	s.Turns = nil
}

// Visible returns the turns that are not pending placeholders.
func (s *Session) Visible() []*Turn {
	out := make([]*Turn, 0, len(s.Turns))
	for _, t := range s.Turns {
		if !t.Pending {
			out = append(out, t)
		}
	}
	return out
}

// LastAssistant returns the most recent non-pending assistant turn, or nil.
func (s *Session) LastAssistant() *Turn {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		t := s.Turns[i]
		if t.Role == RoleAssistant && !t.Pending {
			return t
		}
	}
	return nil
}

// PendingCount returns the number of pending placeholders.
func (s *Session) PendingCount() int {
	n := 0
	for _, t := range s.Turns {
		if t.Pending {
			n++
		}
	}
	return n
}
