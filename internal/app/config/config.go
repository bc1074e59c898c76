package config

import "time"

// Config provides read-only access to application configuration.
// This interface abstracts the configuration source (setting.json, defaults)
// and ensures the app layer doesn't depend on infrastructure details.
type Config interface {
	// Core settings
	Home() string // Base directory for devforge (DEVFORGE_HOME)

	// Completion backend
	Backend() string               // "ollama", "openai" or "claude-cli"
	Model() string                 // Model name passed to the backend
	OllamaURL() string             // Ollama server base URL
	OpenAIBaseURL() string         // OpenAI-compatible base URL (empty: api.openai.com)
	OpenAIAPIKeyEnv() string       // Environment variable holding the API key
	ClaudeBin() string             // claude CLI binary for the claude-cli backend
	Temperature() float64          // Sampling temperature
	RequestTimeout() time.Duration // Per-request timeout for the backend

	// Repair loop
	TimeoutSec() int        // Sandbox timeout in seconds
	Timeout() time.Duration // Sandbox timeout as Duration
	MaxAttempts() int       // Execution budget per session
	MatchStrategy() string  // "contains", "exact" or "normalized"
	OutputLimitBytes() int  // Tail kept per output stream

	// Paths; empty disables the sink
	LanguagesPath() string   // Language profile overrides (YAML)
	JournalPath() string     // NDJSON repair journal
	HistoryDB() string       // sqlite session ledger
	MetricsTextfile() string // Prometheus textfile export

	// Logging
	StderrLevel() string // Stderr log level

	// Metadata
	ConfigSource() string // Source of configuration: "json" or "default"
	SettingPath() string  // Path to setting.json if loaded from file
}

// Values carries every resolved setting into NewAppConfig
type Values struct {
	Home string

	Backend         string
	Model           string
	OllamaURL       string
	OpenAIBaseURL   string
	OpenAIAPIKeyEnv string
	ClaudeBin       string
	Temperature     float64
	RequestTimeout  int

	TimeoutSec       int
	MaxAttempts      int
	MatchStrategy    string
	OutputLimitBytes int

	LanguagesPath   string
	JournalPath     string
	HistoryDB       string
	MetricsTextfile string

	StderrLevel string
}

// AppConfig is the concrete implementation of Config interface.
// It holds all configuration values loaded from various sources.
type AppConfig struct {
	v Values

	configSource string
	settingPath  string
}

// NewAppConfig creates a new AppConfig instance
func NewAppConfig(v Values, configSource, settingPath string) *AppConfig {
	return &AppConfig{v: v, configSource: configSource, settingPath: settingPath}
}

// Home returns the base directory for devforge
func (c *AppConfig) Home() string {
	return c.v.Home
}

// Backend returns the completion backend name
func (c *AppConfig) Backend() string {
	return c.v.Backend
}

// Model returns the model name
func (c *AppConfig) Model() string {
	return c.v.Model
}

func (c *AppConfig) OllamaURL() string {
	return c.v.OllamaURL
}

func (c *AppConfig) OpenAIBaseURL() string {
	return c.v.OpenAIBaseURL
}

func (c *AppConfig) OpenAIAPIKeyEnv() string {
	return c.v.OpenAIAPIKeyEnv
}

func (c *AppConfig) ClaudeBin() string {
	return c.v.ClaudeBin
}

// Temperature returns the sampling temperature
func (c *AppConfig) Temperature() float64 {
	return c.v.Temperature
}

// RequestTimeout returns the backend request timeout
func (c *AppConfig) RequestTimeout() time.Duration {
	return time.Duration(c.v.RequestTimeout) * time.Second
}

// TimeoutSec returns the sandbox timeout in seconds
func (c *AppConfig) TimeoutSec() int {
	return c.v.TimeoutSec
}

// Timeout returns the sandbox timeout as a Duration
func (c *AppConfig) Timeout() time.Duration {
	return time.Duration(c.v.TimeoutSec) * time.Second
}

// MaxAttempts returns the execution budget per session
func (c *AppConfig) MaxAttempts() int {
	return c.v.MaxAttempts
}

func (c *AppConfig) MatchStrategy() string {
	return c.v.MatchStrategy
}

func (c *AppConfig) OutputLimitBytes() int {
	return c.v.OutputLimitBytes
}

func (c *AppConfig) LanguagesPath() string {
	return c.v.LanguagesPath
}

func (c *AppConfig) JournalPath() string {
	return c.v.JournalPath
}

func (c *AppConfig) HistoryDB() string {
	return c.v.HistoryDB
}

func (c *AppConfig) MetricsTextfile() string {
	return c.v.MetricsTextfile
}

// StderrLevel returns the stderr log level
func (c *AppConfig) StderrLevel() string {
	return c.v.StderrLevel
}

// ConfigSource returns the source of configuration
func (c *AppConfig) ConfigSource() string {
	return c.configSource
}

// SettingPath returns the path to setting.json if loaded from file
func (c *AppConfig) SettingPath() string {
	return c.settingPath
}
