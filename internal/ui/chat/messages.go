// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	convo "github.com/Seabass-up/Charlie-Chat/internal/chat"
	"github.com/Seabass-up/Charlie-Chat/internal/browser"
	"github.com/Seabass-up/Charlie-Chat/internal/voice"
)

// =============================================================================
// RESULT MESSAGES
// =============================================================================

// ReplyMsg carries a dispatched chat send back to the event loop.
type ReplyMsg struct {
	Outcome convo.Outcome

	// Dictated marks the reply to a voice transcript.
	Dictated bool
}

// DirectoryMsg carries a fetched directory listing.
type DirectoryMsg struct {
	Result browser.DirectoryResult
}

// FileMsg carries fetched file content.
type FileMsg struct {
	Result browser.FileResult
}

// NoticeMsg carries the markdown produced by a tool listing or search, or
// the error that prevented it. Action describes the operation for errors.
type NoticeMsg struct {
	Action string
	Text   string
	Err    error
}

// VoiceMsg carries one recognition event.
type VoiceMsg struct {
	Event voice.Event
}

// =============================================================================
// UI STATE MESSAGES
// =============================================================================

// StatusMsg sets a transient status-line message.
type StatusMsg struct {
	Text string
}

// clearStatusMsg clears the status line if it still shows the message
// with the same sequence number.
type clearStatusMsg struct {
	seq int
}
