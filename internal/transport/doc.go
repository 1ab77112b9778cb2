// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport is the HTTP client for the Charlie backend API.
//
// Every call either decodes a JSON body or fails with a *TransportError.
// There are no retries and no client-side timeout; callers bound requests
// with their context.
//
// Example:
//
//	c := transport.NewClient("http://127.0.0.1:8000")
//	reply, err := c.Chat(ctx, "hello", "gpt-oss:120b")
//	if err != nil {
//	    fmt.Println(transport.Summarize(err))
//	}
package transport
