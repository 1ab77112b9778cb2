// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"net/http"

	"github.com/Seabass-up/Charlie-Chat/internal/browser"
	"github.com/Seabass-up/Charlie-Chat/internal/chat"
	"github.com/Seabass-up/Charlie-Chat/internal/model"
	"github.com/Seabass-up/Charlie-Chat/internal/render"
	"github.com/Seabass-up/Charlie-Chat/internal/server"
	"github.com/Seabass-up/Charlie-Chat/internal/tools"
	"github.com/Seabass-up/Charlie-Chat/internal/transport"
	"github.com/Seabass-up/Charlie-Chat/internal/voice"
)

// frontend bundles the controllers shared by the TUI and the REPL.
type frontend struct {
	client    *transport.Client
	ctrl      *chat.Controller
	browser   *browser.Browser
	discovery *tools.Discovery
	voice     *voice.Adapter
	speaker   voice.Speaker // nil unless replies to dictation are read aloud
}

// newFrontend wires the controllers against the configured backend.
func (a *app) newFrontend(renderer render.Renderer) *frontend {
	client := transport.NewClientWithConfig(&transport.Config{
		BaseURL:    a.cfg.Client.BackendURL,
		HTTPClient: &http.Client{},
		UserAgent:  "charlie/" + server.Version,
	})

	session := model.NewSession(a.cfg.Client.DefaultModel)
	ctrl := chat.NewController(session, client, renderer, a.logger.WithPrefix("chat"))

	return &frontend{
		client:    client,
		ctrl:      ctrl,
		browser:   browser.New(ctrl, client, a.logger.WithPrefix("files")),
		discovery: tools.NewDiscovery(client),
		voice:     voice.NewAdapter(a.recognizer(), a.logger.WithPrefix("voice")),
		speaker:   a.speaker(),
	}
}

// recognizer returns the configured speech command, or nil when voice is
// disabled.
func (a *app) recognizer() voice.Recognizer {
	if !a.cfg.Voice.Enabled || a.cfg.Voice.Command == "" {
		return nil
	}
	return voice.NewCommandRecognizer(a.cfg.Voice.Command, a.cfg.Voice.Args...)
}

// speaker returns the command that reads replies aloud, or nil when voice
// replies are off.
func (a *app) speaker() voice.Speaker {
	vc := a.cfg.Voice
	if !vc.Enabled || !vc.SpeakReplies || vc.SpeakCommand == "" {
		return nil
	}
	return voice.NewCommandSpeaker(vc.SpeakCommand, vc.SpeakArgs...)
}
