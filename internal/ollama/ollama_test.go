// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello")

	if msg.Role != "user" {
		t.Errorf("Role = %q, want 'user'", msg.Role)
	}
	if msg.Content != "Hello" {
		t.Errorf("Content = %q, want 'Hello'", msg.Content)
	}
}

func TestChatResponse_TokensPerSecond(t *testing.T) {
	tests := []struct {
		name         string
		evalCount    int
		evalDuration int64
		want         float64
	}{
		{"normal", 100, int64(time.Second), 100.0},
		{"zero duration", 100, 0, 0.0},
		{"fast", 1000, int64(100 * time.Millisecond), 10000.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &ChatResponse{EvalCount: tc.evalCount, EvalDuration: tc.evalDuration}
			if got := r.TokensPerSecond(); got != tc.want {
				t.Errorf("TokensPerSecond() = %v, want %v", got, tc.want)
			}
		})
	}
}

// =============================================================================
// CLIENT TESTS
// =============================================================================

func TestNewClientWithConfig_Defaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{BaseURL: "http://example.com:11434/"})

	if c.BaseURL() != "http://example.com:11434" {
		t.Errorf("BaseURL = %q, trailing slash not trimmed", c.BaseURL())
	}
	if c.DefaultModel() != "gpt-oss:120b" {
		t.Errorf("DefaultModel = %q", c.DefaultModel())
	}
}

func TestClient_Chat(t *testing.T) {
	var got ChatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(ChatResponse{
			Model:   got.Model,
			Message: Message{Role: "assistant", Content: "Hi there"},
			Done:    true,
		})
	}))
	defer srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, APIKey: "k123"})
	resp, err := c.Chat(context.Background(), "", []Message{NewUserMessage("Hello")})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if resp.Message.Content != "Hi there" {
		t.Errorf("Content = %q", resp.Message.Content)
	}
	if got.Model != "gpt-oss:120b" {
		t.Errorf("empty model should fall back to default, got %q", got.Model)
	}
	if got.Stream {
		t.Error("Stream should be false")
	}
	if auth != "Bearer k123" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestClient_ChatErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
		msg    string
	}{
		{"not found", http.StatusNotFound, "", IsModelNotFound, ""},
		{"unauthorized", http.StatusUnauthorized, "", func(err error) bool { return err == ErrUnauthorized }, ""},
		{"api error", http.StatusInternalServerError, `{"error":"out of memory"}`, func(err error) bool { return err != nil }, "out of memory"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
			_, err := c.Chat(context.Background(), "m", nil)
			if !tc.check(err) {
				t.Errorf("unexpected error %v", err)
			}
			if tc.msg != "" && (err == nil || err.Error() != tc.msg) {
				t.Errorf("error = %v, want %q", err, tc.msg)
			}
		})
	}
}

func TestClient_NotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: url, Timeout: time.Second})
	err := c.CheckRunning(context.Background())
	if !IsNotRunning(err) {
		t.Errorf("CheckRunning on closed server = %v, want not running", err)
	}
}

func TestClient_ListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"gpt-oss:120b"},{"name":"llama3:8b"}]}`))
	}))
	defer srv.Close()

	models, err := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL}).ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 || models[1].Name != "llama3:8b" {
		t.Errorf("models = %+v", models)
	}
}
