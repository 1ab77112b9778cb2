// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Seabass-up/Charlie-Chat/internal/mcp"
	"github.com/Seabass-up/Charlie-Chat/internal/ollama"
	"github.com/Seabass-up/Charlie-Chat/internal/server"
	"github.com/Seabass-up/Charlie-Chat/internal/voice"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat backend",
		Long: `Run the HTTP backend that the chat front-ends talk to.

The backend forwards chat messages to Ollama, serves the sandboxed file
browser and dispatches MCP tool calls (filesystem, memory, web search and
n8n). The MCP server list is reloaded when its config file changes.`,
		Example: `  charlie serve
  charlie serve --port 9000
  OLLAMA_API_ENDPOINT=http://gpu-box:11434 charlie serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if host != "" {
				a.cfg.Server.Host = host
			}
			if port != 0 {
				a.cfg.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen address (overrides server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

// serve builds the tool registry and model client and blocks until ctx is
// cancelled.
func (a *app) serve(ctx context.Context) error {
	sc := a.cfg.Server

	sandbox, err := mcp.NewSandbox(sc.AllowedPaths, sc.DefaultPath, sc.MaxFileLines, sc.MaxFileBytes)
	if err != nil {
		return fmt.Errorf("file sandbox: %w", err)
	}

	var memory *mcp.MemoryStore
	if a.cfg.MCP.MemoryDB != "" {
		memory, err = mcp.OpenMemoryStore(a.cfg.MCP.MemoryDB)
		if err != nil {
			a.logger.Warn("memory store unavailable", "path", a.cfg.MCP.MemoryDB, "err", err)
		} else {
			defer memory.Close()
		}
	}

	var n8n *mcp.N8NClient
	if a.cfg.MCP.N8NURL != "" {
		n8n = mcp.NewN8NClient(a.cfg.MCP.N8NURL, a.cfg.MCP.N8NAPIKey)
	}

	reg := mcp.NewRegistry(mcp.Options{
		ConfigPath: a.cfg.MCP.ConfigPath,
		Sandbox:    sandbox,
		Memory:     memory,
		Web:        mcp.NewWebSearch(a.cfg.MCP.SearchURL),
		N8N:        n8n,
		Logger:     a.logger.WithPrefix("mcp"),
	})
	go func() {
		if err := reg.Watch(ctx); err != nil {
			a.logger.Warn("mcp config watch stopped", "err", err)
		}
	}()

	llm := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      a.cfg.Ollama.URL,
		APIKey:       a.cfg.Ollama.APIKey,
		Timeout:      time.Duration(a.cfg.Ollama.TimeoutSecs) * time.Second,
		DefaultModel: a.cfg.Ollama.Model,
	})
	if err := llm.CheckRunning(ctx); err != nil {
		a.logger.Warn("ollama not reachable yet", "url", a.cfg.Ollama.URL, "err", err)
	}

	var tts voice.Synthesizer
	if vc := a.cfg.Voice; vc.TTSCommand != "" {
		speaker := voice.NewCommandSpeaker(vc.TTSCommand, vc.TTSArgs...)
		if !speaker.Available() {
			a.logger.Warn("tts command not found", "command", vc.TTSCommand)
		}
		tts = speaker
	}

	srv := server.New(server.Config{
		Host:          sc.Host,
		Port:          sc.Port,
		StaticDir:     sc.StaticDir,
		DefaultModel:  llm.DefaultModel(),
		RateLimit:     sc.RateLimit,
		Burst:         sc.Burst,
		CORSOrigins:   sc.CORSOrigins,
		TTS:           tts,
		VoiceDisabled: !a.cfg.Voice.Enabled,
	}, llm, mcp.NewRouter(reg, a.logger.WithPrefix("router")), sandbox, a.logger.WithPrefix("server"))

	fmt.Fprintln(os.Stderr, successStyle.Render("Charlie backend"), "listening on", "http://"+srv.Addr())
	return srv.Run(ctx)
}
