// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Seabass-up/Charlie-Chat/internal/model"
)

// Backend endpoints.
const (
	EndpointChat      = "/api/chat"
	EndpointFiles     = "/api/files"
	EndpointFileRead  = "/api/files/read"
	EndpointTools     = "/api/mcp/tools"
	EndpointSearch    = "/api/mcp/search"
	EndpointMCPConfig = "/api/mcp/config"
	EndpointDebug     = "/api/debug"
)

// Chat sends one message and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, message, modelName string) (*model.ChatReply, error) {
	var reply model.ChatReply
	req := model.ChatRequest{Message: message, Model: modelName}
	if err := c.Request(ctx, http.MethodPost, EndpointChat, nil, req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// ListDirectory fetches the listing of path. An empty path asks the server
// for its default root.
func (c *Client) ListDirectory(ctx context.Context, path string) (*model.DirectoryListing, error) {
	var listing model.DirectoryListing
	if err := c.Request(ctx, http.MethodGet, EndpointFiles, pathQuery(path), nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// ReadFile fetches the (possibly truncated) contents of a file.
func (c *Client) ReadFile(ctx context.Context, path string) (*model.FileContent, error) {
	var content model.FileContent
	if err := c.Request(ctx, http.MethodGet, EndpointFileRead, pathQuery(path), nil, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// ListTools fetches the MCP tool catalog.
func (c *Client) ListTools(ctx context.Context) (model.ToolCatalog, error) {
	var resp model.ToolsResponse
	if err := c.Request(ctx, http.MethodGet, EndpointTools, nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Tools == nil {
		return model.ToolCatalog{}, nil
	}
	return resp.Tools, nil
}

// SearchTools runs a tool-assisted search.
func (c *Client) SearchTools(ctx context.Context, query string) (*model.SearchResponse, error) {
	var resp model.SearchResponse
	req := model.SearchRequest{Query: query, UseTools: true}
	if err := c.Request(ctx, http.MethodPost, EndpointSearch, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status fetches the backend's debug status document.
func (c *Client) Status(ctx context.Context) (map[string]any, error) {
	status := map[string]any{}
	if err := c.Request(ctx, http.MethodGet, EndpointDebug, nil, nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

func pathQuery(path string) url.Values {
	if path == "" {
		return nil
	}
	return url.Values{"path": {path}}
}
