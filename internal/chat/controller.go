// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Seabass-up/Charlie-Chat/internal/model"
	"github.com/Seabass-up/Charlie-Chat/internal/render"
	"github.com/Seabass-up/Charlie-Chat/internal/transport"
)

// NoResponseText is shown when the backend answers without a reply.
const NoResponseText = "No response received."

// =============================================================================
// COLLABORATORS
// =============================================================================

// Sender dispatches a chat message. *transport.Client satisfies it.
type Sender interface {
	Chat(ctx context.Context, message, modelName string) (*model.ChatReply, error)
}

// Input is the editable message buffer owned by the UI.
type Input interface {
	Value() string
	Reset()
	Focus()
}

// Origin records where an outgoing message came from.
type Origin int

const (
	// OriginInput means the text was taken from the input buffer.
	OriginInput Origin = iota
	// OriginSynthetic means the text was supplied by code (file open, voice).
	OriginSynthetic
)

// Pending is a send that has been accepted but not yet dispatched.
type Pending struct {
	Message string
	Model   string
	Origin  Origin

	placeholderID string
}

// Outcome is the result of dispatching a Pending send.
type Outcome struct {
	Pending *Pending
	Reply   *model.ChatReply
	Err     error
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the session's turn list and send gate.
// It must only be used from one goroutine, except Dispatch.
type Controller struct {
	session  *model.Session
	sender   Sender
	renderer render.Renderer
	input    Input
	logger   *log.Logger
}

// NewController creates a controller. A nil renderer means render.Plain and
// a nil logger means log.Default().
func NewController(session *model.Session, sender Sender, renderer render.Renderer, logger *log.Logger) *Controller {
	if renderer == nil {
		renderer = render.Plain{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		session:  session,
		sender:   sender,
		renderer: renderer,
		logger:   logger,
	}
}

// SetInput attaches the input buffer used by Send and BeginInput.
func (c *Controller) SetInput(in Input) {
	c.input = in
}

// SetRenderer swaps the renderer, e.g. after a terminal resize.
func (c *Controller) SetRenderer(r render.Renderer) {
	if r != nil {
		c.renderer = r
	}
}

// Session returns the session the controller mutates.
func (c *Controller) Session() *model.Session {
	return c.session
}

// SetModel changes the model used for subsequent sends.
func (c *Controller) SetModel(name string) {
	c.session.SelectedModel = strings.TrimSpace(name)
}

// Clear destroys every turn. It does not affect an outstanding send.
func (c *Controller) Clear() {
	c.session.Clear()
}

// =============================================================================
// SEND LIFECYCLE
// =============================================================================

// BeginInput accepts the input buffer contents as the next message.
func (c *Controller) BeginInput() (*Pending, bool) {
	if c.input == nil {
		return nil, false
	}
	return c.begin(c.input.Value(), OriginInput)
}

// BeginText accepts explicit text as the next message.
func (c *Controller) BeginText(text string) (*Pending, bool) {
	return c.begin(text, OriginSynthetic)
}

func (c *Controller) begin(text string, origin Origin) (*Pending, bool) {
	if c.session.IsSending {
		c.logger.Debug("send rejected", "reason", "in flight")
		return nil, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	if origin == OriginInput {
		c.input.Reset()
	}

	c.session.Append(model.NewTurn(model.RoleUser, text))
	c.session.IsSending = true

	placeholder := model.NewPendingTurn()
	c.session.Append(placeholder)

	return &Pending{
		Message:       text,
		Model:         c.session.SelectedModel,
		Origin:        origin,
		placeholderID: placeholder.ID,
	}, true
}

// Dispatch performs the network call for p. It does not touch the session.
func (c *Controller) Dispatch(ctx context.Context, p *Pending) Outcome {
	reply, err := c.sender.Chat(ctx, p.Message, p.Model)
	return Outcome{Pending: p, Reply: reply, Err: err}
}

// Finish applies the outcome of a dispatched send.
func (c *Controller) Finish(out Outcome) {
	p := out.Pending
	c.session.Remove(p.placeholderID)

	switch {
	case out.Err != nil:
		c.logger.Error("chat request failed", "model", p.Model, "err", out.Err)
		c.session.Append(model.NewTurn(model.RoleAssistant, "Sorry, something went wrong. "+transport.Summarize(out.Err)))
	case out.Reply == nil || strings.TrimSpace(out.Reply.Reply) == "":
		c.logger.Warn("chat reply was empty", "model", p.Model)
		c.session.Append(model.NewTurn(model.RoleAssistant, NoResponseText))
	default:
		c.session.Append(c.renderedTurn(out.Reply.Reply))
	}

	c.session.IsSending = false
	if p.Origin == OriginInput && c.input != nil {
		c.input.Focus()
	}
}

// Send reads the input buffer and runs a full send. Reports whether a send
// took place.
func (c *Controller) Send(ctx context.Context) bool {
	p, ok := c.BeginInput()
	if !ok {
		return false
	}
	c.Finish(c.Dispatch(ctx, p))
	return true
}

// SendText runs a full send of explicit text.
func (c *Controller) SendText(ctx context.Context, text string) bool {
	p, ok := c.BeginText(text)
	if !ok {
		return false
	}
	c.Finish(c.Dispatch(ctx, p))
	return true
}

// =============================================================================
// OUT-OF-BAND TURNS
// =============================================================================

// AddUserTurn appends a user turn without sending anything.
func (c *Controller) AddUserTurn(text string) {
	c.session.Append(model.NewTurn(model.RoleUser, text))
}

// Notify appends a rendered assistant turn without touching the send gate.
func (c *Controller) Notify(text string) {
	c.session.Append(c.renderedTurn(text))
}

// Fail logs err and appends a diagnostic assistant turn describing action.
func (c *Controller) Fail(action string, err error) {
	c.logger.Error(action+" failed", "err", err)
	c.session.Append(model.NewTurn(model.RoleAssistant, "Could not "+action+". "+transport.Summarize(err)))
}

func (c *Controller) renderedTurn(text string) *model.Turn {
	turn := model.NewTurn(model.RoleAssistant, text)
	rendered, err := c.renderer.Render(text)
	if err != nil {
		c.logger.Warn("render failed, showing plain text", "err", err)
		return turn
	}
	turn.Rendered = rendered
	return turn
}
