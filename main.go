// Charlie - chat with local models, your files and MCP tools.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/Seabass-up/Charlie-Chat/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
