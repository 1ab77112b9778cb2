// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Workflow is an n8n workflow summary.
type Workflow struct {
	ID     WorkflowID `json:"id"`
	Name   string     `json:"name"`
	Active bool       `json:"active"`
}

// WorkflowID accepts both the numeric ids of older n8n releases and the
// string ids of newer ones.
type WorkflowID string

func (id *WorkflowID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = WorkflowID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("workflow id: %w", err)
	}
	*id = WorkflowID(n.String())
	return nil
}

// N8NClient talks to the n8n public REST API.
type N8NClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewN8NClient returns a client for baseURL. An empty baseURL leaves the
// client unconfigured.
func NewN8NClient(baseURL, apiKey string) *N8NClient {
	return &N8NClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether an endpoint is set.
func (c *N8NClient) Configured() bool {
	return c.BaseURL != ""
}

func (c *N8NClient) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("X-N8N-API-KEY", c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("n8n returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListWorkflows returns every workflow visible to the API key.
func (c *N8NClient) ListWorkflows(ctx context.Context) ([]Workflow, error) {
	var page struct {
		Data []Workflow `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/workflows", nil, &page); err != nil {
		return nil, err
	}
	if page.Data == nil {
		page.Data = []Workflow{}
	}
	return page.Data, nil
}

// CreateWorkflow creates an empty, inactive workflow. The description is
// stored as a sticky note so it shows up in the editor.
func (c *N8NClient) CreateWorkflow(ctx context.Context, name, description string) (*Workflow, error) {
	nodes := []map[string]any{}
	if description != "" {
		nodes = append(nodes, map[string]any{
			"name":        "Description",
			"type":        "n8n-nodes-base.stickyNote",
			"typeVersion": 1,
			"position":    []int{0, 0},
			"parameters":  map[string]any{"content": description},
		})
	}
	body := map[string]any{
		"name":        name,
		"nodes":       nodes,
		"connections": map[string]any{},
		"settings":    map[string]any{},
	}
	var wf Workflow
	if err := c.do(ctx, http.MethodPost, "/api/v1/workflows", body, &wf); err != nil {
		return nil, err
	}
	return &wf, nil
}
