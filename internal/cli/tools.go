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

	"github.com/Seabass-up/Charlie-Chat/internal/tools"
	"github.com/Seabass-up/Charlie-Chat/internal/transport"
)

func newToolsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools the backend exposes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTools(cmd.Context(), cmd.OutOrStdout(), func(ctx context.Context, d *tools.Discovery) (string, error) {
				return d.ListTools(ctx)
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "search <query>",
		Short:   "Search using the backend's tools",
		Example: `  charlie tools search "latest go release"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return a.runTools(cmd.Context(), cmd.OutOrStdout(), func(ctx context.Context, d *tools.Discovery) (string, error) {
				return d.Search(ctx, query)
			})
		},
	})
	return cmd
}

// runTools runs one discovery call and prints its markdown.
func (a *app) runTools(ctx context.Context, out io.Writer, call func(context.Context, *tools.Discovery) (string, error)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	d := tools.NewDiscovery(transport.NewClient(a.cfg.Client.BackendURL))
	text, err := call(ctx, d)
	if err != nil {
		return errors.New(transport.Summarize(err))
	}
	_, err = fmt.Fprintln(out, text)
	return err
}
