// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client the charlie server uses to reach
// an Ollama inference endpoint.
//
// Only non-streaming chat is supported. When an API key is configured it is
// sent as a bearer token, which hosted Ollama deployments require.
//
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
//	    BaseURL: "http://127.0.0.1:11434",
//	    APIKey:  os.Getenv("OLLAMA_API_KEY"),
//	})
//	resp, err := client.Chat(ctx, "gpt-oss:120b", []ollama.Message{
//	    ollama.NewUserMessage("Hello"),
//	})
package ollama
