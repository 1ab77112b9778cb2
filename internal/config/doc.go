// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for charlie.
//
// Configuration file locations (first match wins):
//   - $CHARLIE_CONFIG
//   - ~/.charlie/config.toml
//   - ~/.charlie/config.yaml
//   - ./config/config.yaml
//   - ~/.charlie/config.json
//   - built-in defaults
//
// Environment variables are applied after the file, then missing values are
// filled from defaults and the result is validated.
//
// Example config.toml:
//
//	[client]
//	backend_url = "http://127.0.0.1:8000"
//	default_model = "gpt-oss:120b"
//
//	[server]
//	port = 8000
//	allowed_paths = ["/home/me/projects"]
//
//	[voice]
//	command = "whisper-listen"
package config
