// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Seabass-up/Charlie-Chat/internal/render"
	uichat "github.com/Seabass-up/Charlie-Chat/internal/ui/chat"
	"github.com/Seabass-up/Charlie-Chat/internal/ui/styles"
)

func newTUICommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal UI (default)",
		Long: `Start the full-screen chat interface.

Key bindings:
  Enter            Send message
  Alt+Enter        New line
  Ctrl+O           Toggle the file browser
  Tab              Switch between input and files
  F2               Toggle voice input
  Ctrl+T           List MCP tools
  Ctrl+Y           Copy last reply
  Ctrl+L           Clear the conversation
  F1               Help
  Ctrl+C           Quit

Type /help inside the UI for slash commands.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationLogToFile: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := RequiresTTY("the terminal UI"); err != nil {
				return err
			}
			return a.runTUI(cmd.Context())
		},
	}
}

func (a *app) runTUI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	theme := styles.NewTheme(a.cfg.UI.Theme)
	term, err := render.NewTerminal(a.cfg.UI.Theme, GetTerminalWidth())
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}

	fe := a.newFrontend(term)
	defer fe.voice.Stop()

	m := uichat.New(ctx, uichat.Options{
		Controller: fe.ctrl,
		Browser:    fe.browser,
		Discovery:  fe.discovery,
		Voice:      fe.voice,
		Speaker:    fe.speaker,
		Terminal:   term,
		Theme:      theme,
		BackendURL: a.cfg.Client.BackendURL,
		ExportDir:  a.cfg.Client.ExportDir,
		StartPath:  a.cfg.Client.StartPath,
		ShowFiles:  a.cfg.UI.ShowFiles,
		WordWrap:   a.cfg.UI.WordWrap,
		Logger:     a.logger.WithPrefix("tui"),
	})

	a.logger.Info("starting tui", "backend", a.cfg.Client.BackendURL, "model", a.cfg.Client.DefaultModel)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
