// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Seabass-up/Charlie-Chat/internal/mcp"
	"github.com/Seabass-up/Charlie-Chat/internal/ollama"
	"github.com/Seabass-up/Charlie-Chat/internal/voice"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultPort is the port the clients expect by default.
	DefaultPort = 8000

	// MaxRequestBodySize bounds JSON request bodies (1MB).
	MaxRequestBodySize = 1 << 20

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// PruneInterval is how often idle rate-limit buckets are dropped.
	PruneInterval = time.Minute

	// ClientIdleTTL is how long a client's bucket survives without requests.
	ClientIdleTTL = 10 * time.Minute

	// DefaultSampleRate is used by /api/tts when the request names none.
	DefaultSampleRate = 22050
)

// Version is reported by /api/debug and the CLI.
var Version = "0.1.0"

// ============================================================================
// SERVER STATS
// ============================================================================

// Stats counts requests served since start.
type Stats struct {
	Requests  atomic.Int64
	Chats     atomic.Int64
	ToolCalls atomic.Int64
	LLMErrors atomic.Int64
	StartTime time.Time
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Requests  int64  `json:"requests"`
	Chats     int64  `json:"chats"`
	ToolCalls int64  `json:"tool_calls"`
	LLMErrors int64  `json:"llm_errors"`
	Uptime    string `json:"uptime"`
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Requests:  s.Requests.Load(),
		Chats:     s.Chats.Load(),
		ToolCalls: s.ToolCalls.Load(),
		LLMErrors: s.LLMErrors.Load(),
		Uptime:    time.Since(s.StartTime).Round(time.Second).String(),
	}
}

// ============================================================================
// SERVER
// ============================================================================

// LLM is the part of the Ollama client the server needs.
type LLM interface {
	Chat(ctx context.Context, model string, messages []ollama.Message) (*ollama.ChatResponse, error)
}

// healthChecker is optionally implemented by an LLM.
type healthChecker interface {
	CheckRunning(ctx context.Context) error
}

// modelLister is optionally implemented by an LLM.
type modelLister interface {
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)
}

// Config controls the HTTP listener and request handling.
type Config struct {
	Host         string
	Port         int
	StaticDir    string
	DefaultModel string
	RateLimit    float64 // requests per second per client; 0 disables
	Burst        int
	CORSOrigins  []string

	// TTS synthesizes /api/tts audio. VoiceDisabled rejects speech requests
	// outright (CHARLIE_DISABLE_VOICE).
	TTS           voice.Synthesizer
	VoiceDisabled bool
}

// Server is the Charlie HTTP backend.
type Server struct {
	cfg    Config
	mux    *http.ServeMux
	server *http.Server

	limiter *RateLimiter

	llm    LLM
	router *mcp.Router
	fs     *mcp.Sandbox
	stats  *Stats
	logger *log.Logger
}

// New builds a server. A nil logger discards output.
func New(cfg Config, llm LLM, router *mcp.Router, fs *mcp.Sandbox, logger *log.Logger) *Server {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		cfg:    cfg,
		mux:    http.NewServeMux(),
		llm:    llm,
		router: router,
		fs:     fs,
		stats:  &Stats{StartTime: time.Now()},
		logger: logger,
	}
	if cfg.RateLimit > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit, cfg.Burst)
	}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Model replies can take minutes.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Addr returns host:port.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
}

// Stats returns the live counters.
func (s *Server) Stats() *Stats {
	return s.stats
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("GET /api/files", s.handleListDirectory)
	s.mux.HandleFunc("GET /api/files/read", s.handleReadFile)
	s.mux.HandleFunc("GET /api/mcp/tools", s.handleTools)
	s.mux.HandleFunc("GET /api/mcp/config", s.handleMCPConfig)
	s.mux.HandleFunc("POST /api/mcp/search", s.handleSearch)
	s.mux.HandleFunc("POST /api/tts", s.handleTTS)
	s.mux.HandleFunc("GET /api/debug", s.handleDebug)

	if s.cfg.StaticDir != "" {
		s.mux.Handle("GET /", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	cors := DefaultCORSConfig()
	if len(s.cfg.CORSOrigins) > 0 {
		cors.AllowedOrigins = s.cfg.CORSOrigins
	}

	middlewares := []func(http.Handler) http.Handler{
		RecoveryMiddleware(s.logger),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(s.logger),
		CORSMiddleware(cors),
		s.countRequests,
	}
	if s.limiter != nil {
		middlewares = append(middlewares, RateLimitMiddleware(s.limiter, s.logger))
	}
	return Chain(middlewares...)(s.mux)
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.stats.Requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start listens and serves until Shutdown. It returns http.ErrServerClosed
// after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", "http://"+s.Addr(), "version", Version)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down", "served", s.stats.Requests.Load())
	return s.server.Shutdown(ctx)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()
	if s.limiter != nil {
		go s.pruneLimiter(ctx, PruneInterval, ClientIdleTTL)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// pruneLimiter drops idle rate-limit buckets every interval until ctx ends.
func (s *Server) pruneLimiter(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.limiter.Prune(idle); n > 0 {
				s.logger.Debug("pruned idle rate-limit clients", "count", n)
			}
		}
	}
}

// ============================================================================
// HELPERS
// ============================================================================

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// decodeBody reads a size-limited JSON body into v and writes the error
// response itself when decoding fails.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", MaxRequestBodySize))
			return false
		}
		writeError(w, http.StatusUnprocessableEntity, "Invalid request format")
		return false
	}
	return true
}
