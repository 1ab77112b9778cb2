// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Seabass-up/Charlie-Chat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete charlie configuration.
type Config struct {
	Application ApplicationConfig `toml:"application" yaml:"application" json:"application"`
	Client      ClientConfig      `toml:"client" yaml:"client" json:"client"`
	Server      ServerConfig      `toml:"server" yaml:"server" json:"server"`
	Ollama      OllamaConfig      `toml:"ollama" yaml:"ollama" json:"ollama"`
	MCP         MCPConfig         `toml:"mcp" yaml:"mcp" json:"mcp"`
	Voice       VoiceConfig       `toml:"voice" yaml:"voice" json:"voice"`
	UI          UIConfig          `toml:"ui" yaml:"ui" json:"ui"`
}

// ApplicationConfig contains process-wide settings.
type ApplicationConfig struct {
	Name     string `toml:"name" yaml:"name" json:"name"`
	LogLevel string `toml:"log_level" yaml:"log_level" json:"log_level"`

	// LogFile receives logs while the TUI owns the terminal.
	LogFile string `toml:"log_file" yaml:"log_file" json:"log_file"`
}

// ClientConfig configures the chat front-ends.
type ClientConfig struct {
	BackendURL   string `toml:"backend_url" yaml:"backend_url" json:"backend_url"`
	DefaultModel string `toml:"default_model" yaml:"default_model" json:"default_model"`

	// StartPath is the directory shown when the file browser opens. Empty
	// means the server's default.
	StartPath   string `toml:"start_path" yaml:"start_path" json:"start_path"`
	HistoryFile string `toml:"history_file" yaml:"history_file" json:"history_file"`
	ExportDir   string `toml:"export_dir" yaml:"export_dir" json:"export_dir"`
}

// ServerConfig configures `charlie serve`.
type ServerConfig struct {
	Host      string `toml:"host" yaml:"host" json:"host"`
	Port      int    `toml:"port" yaml:"port" json:"port"`
	StaticDir string `toml:"static_dir" yaml:"static_dir" json:"static_dir"`

	// AllowedPaths bounds the file browser. Empty means the user's home.
	AllowedPaths []string `toml:"allowed_paths" yaml:"allowed_paths" json:"allowed_paths"`
	DefaultPath  string   `toml:"default_path" yaml:"default_path" json:"default_path"`

	MaxFileLines int   `toml:"max_file_lines" yaml:"max_file_lines" json:"max_file_lines"`
	MaxFileBytes int64 `toml:"max_file_bytes" yaml:"max_file_bytes" json:"max_file_bytes"`

	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit   float64  `toml:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
	Burst       int      `toml:"burst" yaml:"burst" json:"burst"`
	CORSOrigins []string `toml:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// OllamaConfig configures the inference backend used by the server.
type OllamaConfig struct {
	URL         string `toml:"url" yaml:"url" json:"url"`
	APIKey      string `toml:"api_key" yaml:"api_key" json:"api_key,omitempty"`
	Model       string `toml:"model" yaml:"model" json:"model"`
	TimeoutSecs int    `toml:"timeout_secs" yaml:"timeout_secs" json:"timeout_secs"`
}

// MCPConfig configures the server-side tool registry.
type MCPConfig struct {
	ConfigPath string `toml:"config_path" yaml:"config_path" json:"config_path"`
	MemoryDB   string `toml:"memory_db" yaml:"memory_db" json:"memory_db"`
	SearchURL  string `toml:"search_url" yaml:"search_url" json:"search_url"`
	N8NURL     string `toml:"n8n_url" yaml:"n8n_url" json:"n8n_url"`
	N8NAPIKey  string `toml:"n8n_api_key" yaml:"n8n_api_key" json:"n8n_api_key,omitempty"`
}

// VoiceConfig configures the external speech-to-text command.
type VoiceConfig struct {
	Enabled bool     `toml:"enabled" yaml:"enabled" json:"enabled"`
	Command string   `toml:"command" yaml:"command" json:"command"`
	Args    []string `toml:"args" yaml:"args" json:"args"`

	// SpeakCommand reads text from stdin aloud. SpeakReplies speaks the
	// reply to every dictated message.
	SpeakCommand string   `toml:"speak_command" yaml:"speak_command" json:"speak_command"`
	SpeakArgs    []string `toml:"speak_args" yaml:"speak_args" json:"speak_args"`
	SpeakReplies bool     `toml:"speak_replies" yaml:"speak_replies" json:"speak_replies"`

	// TTSCommand is used by `charlie serve` for /api/tts. It reads text from
	// stdin and writes WAV audio to stdout.
	TTSCommand string   `toml:"tts_command" yaml:"tts_command" json:"tts_command"`
	TTSArgs    []string `toml:"tts_args" yaml:"tts_args" json:"tts_args"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Theme     string `toml:"theme" yaml:"theme" json:"theme"`
	WordWrap  int    `toml:"word_wrap" yaml:"word_wrap" json:"word_wrap"`
	ShowFiles bool   `toml:"show_files" yaml:"show_files" json:"show_files"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	dir := configDirOrLocal()
	return &Config{
		Application: ApplicationConfig{
			Name:     "Charlie",
			LogLevel: "info",
			LogFile:  filepath.Join(dir, "charlie.log"),
		},
		Client: ClientConfig{
			BackendURL:   "http://127.0.0.1:8000",
			DefaultModel: "gpt-oss:120b",
			HistoryFile:  filepath.Join(dir, "history"),
			ExportDir:    ".",
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8000,
			MaxFileLines: 100,
			MaxFileBytes: 1 << 20,
			RateLimit:    10,
			Burst:        20,
			CORSOrigins:  []string{"http://localhost:8000", "http://127.0.0.1:8000"},
		},
		Ollama: OllamaConfig{
			URL:         "http://127.0.0.1:11434",
			Model:       "gpt-oss:120b",
			TimeoutSecs: 300,
		},
		MCP: MCPConfig{
			ConfigPath: "mcp_config.json",
			MemoryDB:   filepath.Join(dir, "memory.db"),
			SearchURL:  "https://html.duckduckgo.com/html/",
		},
		Voice: VoiceConfig{
			Enabled: true,
		},
		UI: UIConfig{
			Theme:    "auto",
			WordWrap: 100,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the charlie configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".charlie"), nil
}

func configDirOrLocal() string {
	dir, err := ConfigDir()
	if err != nil {
		return ".charlie"
	}
	return dir
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// candidatePaths lists config files in search order.
func candidatePaths() []string {
	var paths []string
	if explicit := os.Getenv("CHARLIE_CONFIG"); explicit != "" {
		paths = append(paths, explicit)
	}
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths,
			filepath.Join(dir, "config.toml"),
			filepath.Join(dir, "config.yaml"),
		)
	}
	paths = append(paths, filepath.Join("config", "config.yaml"))
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "config.json"))
	}
	return paths
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load finds and loads the first existing config file. When none exists the
// defaults are used. Environment overrides are applied last.
func Load() (*Config, error) {
	for _, path := range candidatePaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFromPath(path)
	}
	return finish(Default())
}

// LoadFromPath loads one file, choosing the decoder by extension
// (.toml, .yaml/.yml, .json).
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := decodeFile(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

func decodeFile(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return yaml.Unmarshal(data, cfg)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, cfg)
	default:
		_, err := toml.DecodeFile(path, cfg)
		return err
	}
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to ~/.charlie/config.toml.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML. The file may hold API keys, so it is
// created owner-only.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true, "fatal": true}
	validThemes    = map[string]bool{"auto": true, "dark": true, "light": true, "notty": true, "ascii": true}
)

// Validate checks the configuration and returns ValidationErrors if any
// field is invalid.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !validLogLevels[strings.ToLower(c.Application.LogLevel)] {
		add("application.log_level", "invalid level %q, must be one of: debug, info, warn, error", c.Application.LogLevel)
	}
	if err := validateURL(c.Client.BackendURL); err != nil {
		add("client.backend_url", "%v", err)
	}
	if err := validateURL(c.Ollama.URL); err != nil {
		add("ollama.url", "%v", err)
	}
	if c.MCP.SearchURL != "" {
		if err := validateURL(c.MCP.SearchURL); err != nil {
			add("mcp.search_url", "%v", err)
		}
	}
	if c.MCP.N8NURL != "" {
		if err := validateURL(c.MCP.N8NURL); err != nil {
			add("mcp.n8n_url", "%v", err)
		}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		add("server.port", "port %d out of range 1-65535", c.Server.Port)
	}
	if c.Server.MaxFileLines < 1 {
		add("server.max_file_lines", "must be positive, got %d", c.Server.MaxFileLines)
	}
	if c.Server.MaxFileBytes < 1 {
		add("server.max_file_bytes", "must be positive, got %d", c.Server.MaxFileBytes)
	}
	if c.Server.RateLimit < 0 {
		add("server.rate_limit", "must not be negative, got %g", c.Server.RateLimit)
	}
	if c.Ollama.TimeoutSecs < 0 {
		add("ollama.timeout_secs", "must not be negative, got %d", c.Ollama.TimeoutSecs)
	}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		add("ui.theme", "invalid theme %q, must be one of: auto, dark, light", c.UI.Theme)
	}
	if c.UI.WordWrap < 0 {
		add("ui.word_wrap", "must not be negative, got %d", c.UI.WordWrap)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero-valued fields from Default().
func (c *Config) SetDefaults() {
	d := Default()

	setString(&c.Application.Name, d.Application.Name)
	setString(&c.Application.LogLevel, d.Application.LogLevel)
	setString(&c.Client.BackendURL, d.Client.BackendURL)
	setString(&c.Client.DefaultModel, d.Client.DefaultModel)
	setString(&c.Client.HistoryFile, d.Client.HistoryFile)
	setString(&c.Client.ExportDir, d.Client.ExportDir)
	setString(&c.Server.Host, d.Server.Host)
	setString(&c.Ollama.URL, d.Ollama.URL)
	setString(&c.Ollama.Model, d.Ollama.Model)
	setString(&c.MCP.ConfigPath, d.MCP.ConfigPath)
	setString(&c.MCP.MemoryDB, d.MCP.MemoryDB)
	setString(&c.UI.Theme, d.UI.Theme)

	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.MaxFileLines == 0 {
		c.Server.MaxFileLines = d.Server.MaxFileLines
	}
	if c.Server.MaxFileBytes == 0 {
		c.Server.MaxFileBytes = d.Server.MaxFileBytes
	}
	if c.Server.Burst == 0 {
		c.Server.Burst = d.Server.Burst
	}
	if c.Ollama.TimeoutSecs == 0 {
		c.Ollama.TimeoutSecs = d.Ollama.TimeoutSecs
	}
	c.Application.LogLevel = strings.ToLower(c.Application.LogLevel)
	c.UI.Theme = strings.ToLower(c.UI.Theme)
}

func setString(dst *string, def string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = def
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - CHARLIE_BACKEND_URL: overrides client.backend_url
//   - CHARLIE_MODEL: overrides client.default_model
//   - CHARLIE_LOG_LEVEL: overrides application.log_level
//   - CHARLIE_DISABLE_VOICE: any value other than "0"/"false" disables voice
//   - OLLAMA_API_ENDPOINT: overrides ollama.url
//   - OLLAMA_API_KEY: overrides ollama.api_key
//   - N8N_API_URL, N8N_API_KEY: override the mcp n8n settings
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CHARLIE_BACKEND_URL"); v != "" {
		c.Client.BackendURL = v
	}
	if v := os.Getenv("CHARLIE_MODEL"); v != "" {
		c.Client.DefaultModel = v
	}
	if v := os.Getenv("CHARLIE_LOG_LEVEL"); v != "" {
		c.Application.LogLevel = v
	}
	if v := os.Getenv("CHARLIE_DISABLE_VOICE"); v != "" && v != "0" && !strings.EqualFold(v, "false") {
		c.Voice.Enabled = false
	}
	if v := os.Getenv("OLLAMA_API_ENDPOINT"); v != "" {
		c.Ollama.URL = v
	}
	if v := os.Getenv("OLLAMA_API_KEY"); v != "" {
		c.Ollama.APIKey = v
	}
	if v := os.Getenv("N8N_API_URL"); v != "" {
		c.MCP.N8NURL = v
	}
	if v := os.Getenv("N8N_API_KEY"); v != "" {
		c.MCP.N8NAPIKey = v
	}
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the process configuration, loading it on first use.
// Load failures fall back to defaults with a warning on stderr.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the process configuration.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting clears the process configuration.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}

// IsValidationError reports whether err carries ValidationErrors.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}
