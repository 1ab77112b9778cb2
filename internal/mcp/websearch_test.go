// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ddgPage = `<html><body>
<div class="result results_links web-result">
  <h2 class="result__title">
    <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F&amp;rut=abc">The Go
      Programming Language</a>
  </h2>
  <a class="result__snippet" href="#">Documentation for <b>Go</b>.</a>
</div>
<div class="result">
  <a class="result__a" href="https://pkg.go.dev/">Go Packages</a>
  <a class="result__snippet">Discover packages.</a>
</div>
<div class="result">
  <a class="result__a" href="javascript:void(0)">Ad</a>
</div>
<div class="result">
  <a class="result__a" href="https://third.example/">Third</a>
</div>
</body></html>`

func TestWebSearch_Search(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	ws := NewWebSearch(srv.URL + "/html/")
	hits, err := ws.Search(context.Background(), "golang docs", 2)
	require.NoError(t, err)

	assert.Equal(t, "golang docs", gotQuery)
	require.Len(t, hits, 2)
	assert.Equal(t, SearchHit{Title: "The Go Programming Language", URL: "https://go.dev/doc/", Snippet: "Documentation for Go."}, hits[0])
	assert.Equal(t, "https://pkg.go.dev/", hits[1].URL)
}

func TestWebSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewWebSearch(srv.URL).Search(context.Background(), "x", 5)
	assert.ErrorContains(t, err, "429")
}

func TestExtractActualURL(t *testing.T) {
	assert.Equal(t, "https://a.b/c", extractActualURL("//duckduckgo.com/l/?uddg=https%3A%2F%2Fa.b%2Fc"))
	assert.Equal(t, "http://x.y", extractActualURL("http://x.y"))
	assert.Empty(t, extractActualURL("/relative"))
}
