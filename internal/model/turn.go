// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Charlie"
	default:
		return string(r)
	}
}

// =============================================================================
// TURN TYPE
// =============================================================================

// ClockFormat is the layout used when a turn timestamp is shown or exported.
const ClockFormat = "15:04:05"

// Turn is one entry in the conversation.
type Turn struct {
	ID        string    `json:"id" yaml:"id"`
	Role      Role      `json:"role" yaml:"role"`
	Text      string    `json:"text" yaml:"text"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Rendered is the formatted form of Text produced by a render.Renderer.
	// Empty for plain turns.
	Rendered string `json:"-" yaml:"-"`

	// Pending marks the "typing" placeholder shown while a send is in flight.
	Pending bool `json:"-" yaml:"-"`
}

// NewTurn creates a turn stamped with the current time.
func NewTurn(role Role, text string) *Turn {
	return &Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewPendingTurn creates the assistant placeholder displayed during a send.
func NewPendingTurn() *Turn {
	t := NewTurn(RoleAssistant, "")
	t.Pending = true
	return t
}

// Display returns the text a view should show for the turn.
func (t *Turn) Display() string {
	if t.Rendered != "" {
		return t.Rendered
	}
	return t.Text
}

// Clock returns the timestamp formatted as wall-clock time.
func (t *Turn) Clock() string {
	return t.Timestamp.Format(ClockFormat)
}
