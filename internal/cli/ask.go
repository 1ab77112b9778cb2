// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Seabass-up/Charlie-Chat/internal/chat"
	"github.com/Seabass-up/Charlie-Chat/internal/render"
	"github.com/Seabass-up/Charlie-Chat/internal/transport"
)

// maxQuestionBytes bounds a question read from stdin.
const maxQuestionBytes = 1 << 20

// ErrEmptyQuestion is returned when ask has nothing to send.
var ErrEmptyQuestion = errors.New("no question given (pass it as arguments or on stdin)")

func newAskCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question and print the reply",
		Long: `Send one message to the backend and print the reply.

The question is taken from the arguments, or from stdin when no arguments
are given. Replies are rendered as markdown when stdout is a terminal.`,
		Example: `  charlie ask "what is in my Documents folder?"
  git diff | charlie ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			if question == "" && !IsTTY() {
				data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxQuestionBytes))
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				question = string(data)
			}
			return a.ask(cmd.Context(), cmd.OutOrStdout(), question)
		},
	}
}

func (a *app) ask(ctx context.Context, out io.Writer, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrEmptyQuestion
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := transport.NewClient(a.cfg.Client.BackendURL)
	a.logger.Debug("ask", "backend", client.BaseURL(), "model", a.cfg.Client.DefaultModel)

	reply, err := client.Chat(ctx, question, a.cfg.Client.DefaultModel)
	if err != nil {
		return fmt.Errorf("ask failed: %s", transport.Summarize(err))
	}

	text := strings.TrimSpace(reply.Reply)
	if text == "" {
		text = chat.NoResponseText
	}
	if isTerminalWriter(out) {
		if term, err := render.NewTerminal(a.cfg.UI.Theme, GetTerminalWidth()); err == nil {
			if rendered, err := term.Render(text); err == nil {
				text = rendered
			}
		}
	}
	_, err = fmt.Fprintln(out, text)
	return err
}
