// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Seabass-up/Charlie-Chat/internal/mcp"
	"github.com/Seabass-up/Charlie-Chat/internal/model"
	"github.com/Seabass-up/Charlie-Chat/internal/ollama"
	"github.com/Seabass-up/Charlie-Chat/internal/voice"
)

// ============================================================================
// CHAT
// ============================================================================

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSON(w, http.StatusOK, model.ChatReply{Reply: "Please type a message."})
		return
	}
	s.stats.Chats.Add(1)

	modelName := req.Model
	if modelName == "" {
		modelName = s.cfg.DefaultModel
	}

	ctx := r.Context()
	results := mcp.NewResults()
	if s.router != nil {
		results = s.router.Gather(ctx, message)
		s.stats.ToolCalls.Add(int64(results.Len()))
	}

	reply := model.ChatReply{}
	if results.Len() > 0 {
		reply.MCPResults = results.Map()
	}

	if s.llm == nil {
		writeJSON(w, http.StatusInternalServerError, model.ChatReply{Reply: "Error: no model backend configured"})
		return
	}

	start := time.Now()
	resp, err := s.llm.Chat(ctx, modelName, mcp.BuildMessages(message, results))
	if err != nil {
		s.stats.LLMErrors.Add(1)
		s.logger.Error("model request failed", "model", modelName, "err", err)
		reply.Reply = "Sorry, I encountered an error: " + describeLLMError(err, modelName)
		writeJSON(w, http.StatusOK, reply)
		return
	}
	s.logger.Debug("model replied", "model", modelName, "took", time.Since(start).Round(time.Millisecond),
		"tokens_per_sec", resp.TokensPerSecond())

	reply.Reply = resp.Message.Content
	writeJSON(w, http.StatusOK, reply)
}

// describeLLMError turns the common Ollama failures into advice.
func describeLLMError(err error, modelName string) string {
	switch {
	case ollama.IsNotRunning(err):
		return "the model backend is not running. Start Ollama and try again."
	case ollama.IsModelNotFound(err):
		return fmt.Sprintf("model %q is not installed. Run `ollama pull %s` on the backend host.", modelName, modelName)
	case ollama.IsTimeout(err):
		return "the model took too long to answer. Try again or pick a smaller model."
	default:
		return err.Error()
	}
}

// ============================================================================
// FILES
// ============================================================================

func (s *Server) writeFSError(w http.ResponseWriter, err error, denied, missing, failed string) {
	switch {
	case errors.Is(err, mcp.ErrAccessDenied):
		writeError(w, http.StatusForbidden, denied)
	case errors.Is(err, mcp.ErrNotFound):
		writeError(w, http.StatusNotFound, missing)
	default:
		s.logger.Error("filesystem request failed", "err", err)
		writeError(w, http.StatusInternalServerError, failed+": "+err.Error())
	}
}

func (s *Server) handleListDirectory(w http.ResponseWriter, r *http.Request) {
	if s.fs == nil {
		writeError(w, http.StatusServiceUnavailable, "File browsing is disabled")
		return
	}
	listing, err := s.fs.List(r.URL.Query().Get("path"))
	if err != nil {
		s.writeFSError(w, err, "Access denied to this path", "Directory not found", "Error reading directory")
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleReadFile(w http.ResponseWriter, r *http.Request) {
	if s.fs == nil {
		writeError(w, http.StatusServiceUnavailable, "File browsing is disabled")
		return
	}
	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		writeError(w, http.StatusUnprocessableEntity, "Query parameter 'path' is required")
		return
	}
	lines := s.fs.MaxLines()
	if raw := q.Get("lines"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusUnprocessableEntity, "Query parameter 'lines' must be a positive integer")
			return
		}
		lines = n
	}

	content, err := s.fs.Read(path, lines)
	if err != nil {
		s.writeFSError(w, err, "Access denied to this file", "File not found", "Error reading file")
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// ============================================================================
// TOOLS
// ============================================================================

func (s *Server) catalog() model.ToolCatalog {
	if s.router == nil {
		return model.ToolCatalog{}
	}
	return s.router.Registry().Tools()
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.ToolsResponse{Tools: s.catalog()})
}

func (s *Server) handleMCPConfig(w http.ResponseWriter, r *http.Request) {
	servers := map[string]mcp.ServerConfig{}
	if s.router != nil {
		servers = s.router.Registry().Servers()
		// Keys and tokens stay on the server.
		for name, cfg := range servers {
			if len(cfg.Env) > 0 {
				redacted := make(map[string]string, len(cfg.Env))
				for k := range cfg.Env {
					redacted[k] = "***"
				}
				cfg.Env = redacted
				servers[name] = cfg
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"servers": servers,
		"tools":   s.catalog(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query    string `json:"query"`
		UseTools *bool  `json:"use_tools"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query must not be empty")
		return
	}

	results := mcp.NewResults()
	if s.router != nil && (req.UseTools == nil || *req.UseTools) {
		results = s.router.Search(r.Context(), query)
		s.stats.ToolCalls.Add(int64(results.Len()))
	}

	raw := make(map[string]json.RawMessage, results.Len())
	for _, key := range results.Keys() {
		data, err := json.Marshal(results.Map()[key])
		if err != nil {
			s.logger.Error("encode tool result", "tool", key, "err", err)
			continue
		}
		raw[key] = data
	}
	writeJSON(w, http.StatusOK, model.SearchResponse{
		Query:     req.Query,
		ToolsUsed: results.Keys(),
		Results:   raw,
	})
}

// ============================================================================
// SPEECH
// ============================================================================

// TTSRequest is the body of POST /api/tts.
type TTSRequest struct {
	Text       string `json:"text"`
	Speaker    string `json:"speaker,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	if s.cfg.VoiceDisabled {
		writeError(w, http.StatusBadRequest, "Voice is disabled by CHARLIE_DISABLE_VOICE")
		return
	}
	var req TTSRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusUnprocessableEntity, "Field 'text' is required")
		return
	}
	if s.cfg.TTS == nil || !s.cfg.TTS.Available() {
		writeError(w, http.StatusInternalServerError, "TTS engine not available")
		return
	}
	if req.SampleRate <= 0 {
		req.SampleRate = DefaultSampleRate
	}

	audio, err := s.cfg.TTS.Synthesize(r.Context(), voice.SynthesisRequest{
		Text:       req.Text,
		Voice:      req.Speaker,
		SampleRate: req.SampleRate,
	})
	if err != nil {
		s.logger.Error("speech synthesis failed", "err", err)
		writeError(w, http.StatusInternalServerError, "TTS synthesis failed: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

// ============================================================================
// DEBUG
// ============================================================================

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":    "API endpoints are working",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
		"stats":     s.stats.Snapshot(),
	}
	if hc, ok := s.llm.(healthChecker); ok {
		if err := hc.CheckRunning(r.Context()); err != nil {
			body["model_backend"] = "unreachable: " + err.Error()
		} else {
			body["model_backend"] = "ok"
		}
	}
	if ml, ok := s.llm.(modelLister); ok {
		if models, err := ml.ListModels(r.Context()); err == nil {
			names := make([]string, 0, len(models))
			for _, m := range models {
				names = append(names, m.Name)
			}
			body["models"] = names
		}
	}
	body["default_model"] = s.cfg.DefaultModel
	writeJSON(w, http.StatusOK, body)
}
