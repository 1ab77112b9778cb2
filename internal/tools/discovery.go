// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Seabass-up/Charlie-Chat/internal/model"
)

// ErrEmptyQuery is returned by Search for a blank query.
var ErrEmptyQuery = errors.New("search query is empty")

// NoToolsMessage is shown when the backend exposes no tools.
const NoToolsMessage = "No MCP tools are available right now. Check `mcp_config.json` on the backend and make sure at least one server is enabled."

// Catalog is the subset of the backend client used for tool discovery.
type Catalog interface {
	ListTools(ctx context.Context) (model.ToolCatalog, error)
	SearchTools(ctx context.Context, query string) (*model.SearchResponse, error)
}

// Discovery fetches and formats tool information. It holds no session
// state; callers post the returned markdown as a turn.
type Discovery struct {
	client Catalog
}

// NewDiscovery creates a Discovery backed by client.
func NewDiscovery(client Catalog) *Discovery {
	return &Discovery{client: client}
}

// ListTools returns the tool catalog as markdown.
func (d *Discovery) ListTools(ctx context.Context) (string, error) {
	catalog, err := d.client.ListTools(ctx)
	if err != nil {
		return "", err
	}
	if catalog.Empty() {
		return NoToolsMessage, nil
	}
	return FormatCatalog(catalog), nil
}

// Search runs a tool-assisted search and returns the results as markdown.
func (d *Discovery) Search(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	resp, err := d.client.SearchTools(ctx, query)
	if err != nil {
		return "", err
	}
	if resp.Query == "" {
		resp.Query = query
	}
	return FormatSearch(resp), nil
}

// FormatCatalog renders a catalog grouped by server.
func FormatCatalog(c model.ToolCatalog) string {
	var b strings.Builder
	b.WriteString("**Available tools**\n")
	for _, server := range sortedKeys(c) {
		tools := c[server]
		if len(tools) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n**%s**\n", Label(server))
		for _, t := range tools {
			if t.Description == "" {
				fmt.Fprintf(&b, "- `%s`\n", t.Name)
				continue
			}
			fmt.Fprintf(&b, "- `%s` - %s\n", t.Name, t.Description)
		}
	}
	return b.String()
}

// FormatSearch renders every tool result of a search.
func FormatSearch(resp *model.SearchResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Tool results for \"%s\"**\n", resp.Query)

	if len(resp.Results) == 0 {
		b.WriteString("\nNo tools matched this query.\n")
		return b.String()
	}

	for _, name := range resultOrder(resp) {
		fmt.Fprintf(&b, "\n**%s**\n\n", Label(name))
		b.WriteString(Format(Classify(resp.Results[name])))
	}
	return b.String()
}

var titleCaser = cases.Title(language.English)

// Label turns a server name such as "web_search" into "Web Search".
func Label(name string) string {
	return titleCaser.String(strings.NewReplacer("_", " ", "-", " ").Replace(name))
}

// resultOrder lists tools in the order the backend used them, then any
// remaining result keys alphabetically.
func resultOrder(resp *model.SearchResponse) []string {
	seen := make(map[string]bool, len(resp.Results))
	order := make([]string, 0, len(resp.Results))
	for _, name := range resp.ToolsUsed {
		if _, ok := resp.Results[name]; ok && !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	rest := make([]string, 0)
	for name := range resp.Results {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func sortedKeys(c model.ToolCatalog) []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
