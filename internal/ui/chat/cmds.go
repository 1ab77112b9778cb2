// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Seabass-up/Charlie-Chat/internal/browser"
	convo "github.com/Seabass-up/Charlie-Chat/internal/chat"
	"github.com/Seabass-up/Charlie-Chat/internal/model"
	"github.com/Seabass-up/Charlie-Chat/internal/tools"
	"github.com/Seabass-up/Charlie-Chat/internal/voice"
)

// StatusTimeout is how long a transient status message stays visible.
const StatusTimeout = 4 * time.Second

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// dispatchCmd performs the network half of an accepted send.
func dispatchCmd(ctx context.Context, ctrl *convo.Controller, p *convo.Pending) tea.Cmd {
	return func() tea.Msg {
		return ReplyMsg{Outcome: ctrl.Dispatch(ctx, p)}
	}
}

// dictatedCmd is dispatchCmd for a voice transcript.
func dictatedCmd(ctx context.Context, ctrl *convo.Controller, p *convo.Pending) tea.Cmd {
	return func() tea.Msg {
		return ReplyMsg{Outcome: ctrl.Dispatch(ctx, p), Dictated: true}
	}
}

// speakCmd reads text aloud. Failures surface on the status line.
func speakCmd(ctx context.Context, s voice.Speaker, text string) tea.Cmd {
	return func() tea.Msg {
		if err := s.Speak(ctx, text); err != nil {
			return StatusMsg{Text: "Could not read the reply aloud: " + err.Error()}
		}
		return nil
	}
}

// fetchDirectoryCmd lists path.
func fetchDirectoryCmd(ctx context.Context, b *browser.Browser, path string) tea.Cmd {
	return func() tea.Msg {
		return DirectoryMsg{Result: b.FetchDirectory(ctx, path)}
	}
}

// fetchFileCmd reads a file entry.
func fetchFileCmd(ctx context.Context, b *browser.Browser, e model.Entry) tea.Cmd {
	return func() tea.Msg {
		return FileMsg{Result: b.FetchFile(ctx, e)}
	}
}

// listToolsCmd fetches the tool catalog as markdown.
func listToolsCmd(ctx context.Context, d *tools.Discovery) tea.Cmd {
	return func() tea.Msg {
		text, err := d.ListTools(ctx)
		return NoticeMsg{Action: "load the tool list", Text: text, Err: err}
	}
}

// searchToolsCmd runs a tool-assisted search.
func searchToolsCmd(ctx context.Context, d *tools.Discovery, query string) tea.Cmd {
	return func() tea.Msg {
		text, err := d.Search(ctx, query)
		return NoticeMsg{Action: "search with tools", Text: text, Err: err}
	}
}

// waitVoiceCmd blocks until the adapter emits its next event. It is
// re-issued after every VoiceMsg.
func waitVoiceCmd(a *voice.Adapter) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-a.Events()
		if !ok {
			return nil
		}
		return VoiceMsg{Event: ev}
	}
}

// clearStatusCmd expires status message seq after StatusTimeout.
func clearStatusCmd(seq int) tea.Cmd {
	return tea.Tick(StatusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
