// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultSearchURL is the DuckDuckGo HTML endpoint, which needs no API key.
const DefaultSearchURL = "https://html.duckduckgo.com/html/"

// SearchHit is a single web search result.
type SearchHit struct {
	Title   string
	URL     string
	Snippet string
}

// WebSearch scrapes DuckDuckGo's HTML results page.
type WebSearch struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// NewWebSearch returns a searcher for baseURL, or DefaultSearchURL when
// empty.
func NewWebSearch(baseURL string) *WebSearch {
	if baseURL == "" {
		baseURL = DefaultSearchURL
	}
	return &WebSearch{
		BaseURL:   baseURL,
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
	}
}

// Search returns at most n hits (1 to 10).
func (w *WebSearch) Search(ctx context.Context, query string, n int) ([]SearchHit, error) {
	if n < 1 {
		n = 1
	}
	if n > 10 {
		n = 10
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.BaseURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", w.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return parseResults(doc, n), nil
}

// parseResults reads the 2024+ result layout:
//
//	<div class="result">
//	  <h2 class="result__title"><a class="result__a" href="//duckduckgo.com/l/?uddg=URL">Title</a></h2>
//	  <a class="result__snippet">Snippet</a>
//	</div>
func parseResults(doc *goquery.Document, n int) []SearchHit {
	var hits []SearchHit
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find("a.result__a").First()
		href, _ := link.Attr("href")
		target := extractActualURL(href)
		title := collapse(link.Text())
		if target == "" || title == "" {
			return true
		}
		hits = append(hits, SearchHit{
			Title:   title,
			URL:     target,
			Snippet: collapse(s.Find(".result__snippet").First().Text()),
		})
		return len(hits) < n
	})
	return hits
}

// extractActualURL unwraps DuckDuckGo's //duckduckgo.com/l/?uddg=... links.
func extractActualURL(ddgURL string) string {
	if strings.Contains(ddgURL, "uddg=") {
		if strings.HasPrefix(ddgURL, "//") {
			ddgURL = "https:" + ddgURL
		}
		parsed, err := url.Parse(ddgURL)
		if err != nil {
			return ""
		}
		if target := parsed.Query().Get("uddg"); target != "" {
			return target
		}
	}
	if strings.HasPrefix(ddgURL, "http://") || strings.HasPrefix(ddgURL, "https://") {
		return ddgURL
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
