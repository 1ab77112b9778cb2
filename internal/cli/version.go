// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Seabass-up/Charlie-Chat/internal/server"
)

// Build information, set with -ldflags at release time.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// Skip config loading so version works with a broken config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "charlie %s\n", server.Version)
			if GitCommit != "unknown" {
				fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Git commit:"), GitCommit)
			}
			if BuildDate != "unknown" {
				fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Build date:"), BuildDate)
			}
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Go version:"), runtime.Version())
			return nil
		},
	}
}
