// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// DefaultBaseURL is where `charlie serve` listens by default.
const DefaultBaseURL = "http://127.0.0.1:8000"

// maxErrorBody bounds how much of a failed response is read for its detail.
const maxErrorBody = 4096

// Config holds configuration options for the backend client.
type Config struct {
	// BaseURL is the backend root (default: http://127.0.0.1:8000)
	BaseURL string

	// HTTPClient is used for every request. The zero-timeout default client
	// is used when nil.
	HTTPClient *http.Client

	// UserAgent is sent with every request when set.
	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{},
		UserAgent:  "charlie",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks JSON to the Charlie backend. Safe for concurrent use.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) *Client {
	cfg := DefaultConfig()
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{config: config, httpClient: httpClient}
}

// BaseURL returns the backend root the client is bound to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Request performs one JSON round trip.
//
// payload, when non-nil, is encoded as the request body. out, when non-nil,
// receives the decoded response. An empty 2xx body leaves out untouched.
func (c *Client) Request(ctx context.Context, method, endpoint string, query url.Values, payload, out any) error {
	fail := func(status int, detail string, cause error) error {
		return &TransportError{Method: method, Endpoint: endpoint, StatusCode: status, Detail: detail, Cause: cause}
	}

	target := c.config.BaseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fail(0, "", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fail(0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fail(resp.StatusCode, errorDetail(raw), nil)
	}

	if out == nil {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(0, "", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fail(resp.StatusCode, "malformed response body", err)
	}
	return nil
}

// errorDetail extracts a message from common error body shapes:
// {"detail": "..."}, {"error": "..."} and {"error": {"message": "..."}}.
func errorDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
		Error  json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	for _, field := range []json.RawMessage{body.Detail, body.Error} {
		if len(field) == 0 {
			continue
		}
		var s string
		if json.Unmarshal(field, &s) == nil {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(field, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return ""
}

// IsTransportError reports whether err is (or wraps) a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
