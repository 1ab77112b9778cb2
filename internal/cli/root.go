// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Seabass-up/Charlie-Chat/internal/config"
	"github.com/Seabass-up/Charlie-Chat/internal/logging"
	"github.com/Seabass-up/Charlie-Chat/internal/server"
)

// annotationLogToFile marks commands that own the terminal; their logs go
// to application.log_file instead of stderr.
const annotationLogToFile = "charlie/log-to-file"

// app carries the state shared by every subcommand.
type app struct {
	cfgPath  string
	backend  string
	model    string
	logLevel string
	verbose  bool

	cfg      *config.Config
	logger   *log.Logger
	closeLog func() error
}

// NewRootCommand builds the charlie command tree.
func NewRootCommand() *cobra.Command {
	a := &app{closeLog: func() error { return nil }}

	root := &cobra.Command{
		Use:   "charlie",
		Short: "Charlie - chat with local models and MCP tools",
		Long: `Charlie is a chat client for a local model backend. It can browse
files on the backend host, feed their contents into the conversation, and
call MCP tools such as web search, memory and n8n workflows.

Run without a subcommand to start the terminal UI.`,
		Version:       server.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{annotationLogToFile: "true"},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.closeLog()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "config file path (TOML or YAML)")
	flags.StringVar(&a.backend, "backend", "", "backend URL (overrides client.backend_url)")
	flags.StringVarP(&a.model, "model", "m", "", "model name (overrides client.default_model)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "shorthand for --log-level=debug")

	tui := newTUICommand(a)
	root.AddCommand(
		tui,
		newChatCommand(a),
		newAskCommand(a),
		newServeCommand(a),
		newToolsCommand(a),
		newVersionCommand(),
	)

	root.RunE = func(cmd *cobra.Command, args []string) error {
		return tui.RunE(cmd, args)
	}
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		return 1
	}
	return 0
}

// setup loads the configuration, applies flag overrides and builds the
// logger for cmd.
func (a *app) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if a.cfgPath != "" {
		cfg, err = config.LoadFromPath(a.cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if a.backend != "" {
		cfg.Client.BackendURL = a.backend
	}
	if a.model != "" {
		cfg.Client.DefaultModel = a.model
		cfg.Ollama.Model = a.model
	}
	if a.logLevel != "" {
		cfg.Application.LogLevel = a.logLevel
	}
	if a.verbose {
		cfg.Application.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	config.SetGlobal(cfg)
	a.cfg = cfg

	opts := logging.Options{
		Level:  cfg.Application.LogLevel,
		Writer: cmd.ErrOrStderr(),
		Prefix: "charlie",
	}
	if cmd.Annotations[annotationLogToFile] == "true" {
		opts.File = cfg.Application.LogFile
	}
	logger, closer, err := logging.New(opts)
	if err != nil {
		return err
	}
	a.logger = logger
	a.closeLog = closer
	return nil
}
