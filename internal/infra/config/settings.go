package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/Ajay03299/DevForge/internal/app"
	"github.com/Ajay03299/DevForge/internal/app/config"
	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// SettingFile is the settings file name inside the home directory
const SettingFile = "setting.json"

// Disabled turns off an optional sink when used as its path
const Disabled = "off"

// Supported completion backends
const (
	BackendOllama    = "ollama"
	BackendOpenAI    = "openai"
	BackendClaudeCLI = "claude-cli"
)

// RawSettings represents the structure of setting.json file.
// JSON tags are used for marshaling/unmarshaling.
type RawSettings struct {
	// Completion backend
	Backend           *string  `json:"backend"`
	Model             *string  `json:"model"`
	OllamaURL         *string  `json:"ollama_url"`
	OpenAIBaseURL     *string  `json:"openai_base_url"`
	OpenAIAPIKeyEnv   *string  `json:"openai_api_key_env"`
	ClaudeBin         *string  `json:"claude_bin"`
	Temperature       *float64 `json:"temperature"`
	RequestTimeoutSec *int     `json:"request_timeout_sec"`

	// Repair loop
	TimeoutSec       *int    `json:"timeout_sec"`
	MaxAttempts      *int    `json:"max_attempts"`
	MatchStrategy    *string `json:"match_strategy"`
	OutputLimitBytes *int    `json:"output_limit_bytes"`

	// Paths; relative paths resolve against the home directory
	LanguagesPath   *string `json:"languages_path"`
	JournalPath     *string `json:"journal_path"`
	HistoryDB       *string `json:"history_db"`
	MetricsTextfile *string `json:"metrics_textfile"`

	// Logging
	StderrLevel *string `json:"stderr_level"`
}

// LoadSettings loads configuration from <home>/setting.json.
// Priority: setting.json > defaults
func LoadSettings(fsys afero.Fs, home string) (*config.AppConfig, error) {
	settings := &RawSettings{}
	configSource := "default"
	settingPath := ""

	jsonPath := filepath.Join(home, SettingFile)
	data, err := afero.ReadFile(fsys, jsonPath)
	switch {
	case err == nil:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(settings); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", jsonPath, err)
		}
		configSource = "json"
		settingPath = jsonPath
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", jsonPath, err)
	}

	applyDefaults(settings)

	if err := validate(settings); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", jsonPath, err)
	}

	return buildAppConfig(settings, home, configSource, settingPath), nil
}

// applyDefaults fills in default values for any nil fields
func applyDefaults(settings *RawSettings) {
	setString := func(p **string, v string) {
		if *p == nil {
			*p = &v
		}
	}
	setInt := func(p **int, v int) {
		if *p == nil {
			*p = &v
		}
	}

	setString(&settings.Backend, BackendOllama)
	setString(&settings.Model, "qwen2.5-coder:1.5b")
	setString(&settings.OllamaURL, "http://localhost:11434")
	setString(&settings.OpenAIBaseURL, "")
	setString(&settings.OpenAIAPIKeyEnv, "OPENAI_API_KEY")
	setString(&settings.ClaudeBin, "claude")
	if settings.Temperature == nil {
		v := 0.2
		settings.Temperature = &v
	}
	setInt(&settings.RequestTimeoutSec, 120)

	setInt(&settings.TimeoutSec, 5)
	setInt(&settings.MaxAttempts, repair.DefaultMaxAttempts)
	setString(&settings.MatchStrategy, string(repair.MatchContains))
	setInt(&settings.OutputLimitBytes, 1<<20)

	// Empty means the default location under home
	setString(&settings.LanguagesPath, "")
	setString(&settings.JournalPath, "")
	setString(&settings.HistoryDB, "")
	setString(&settings.MetricsTextfile, "")

	setString(&settings.StderrLevel, "warn") // Default to WARN level
}

func validate(settings *RawSettings) error {
	switch *settings.Backend {
	case BackendOllama, BackendOpenAI, BackendClaudeCLI:
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)",
			*settings.Backend, BackendOllama, BackendOpenAI, BackendClaudeCLI)
	}
	if _, err := repair.ParseMatchStrategy(*settings.MatchStrategy); err != nil {
		return err
	}
	if *settings.TimeoutSec <= 0 {
		return errors.New("timeout_sec must be positive")
	}
	if *settings.MaxAttempts <= 0 {
		return errors.New("max_attempts must be positive")
	}
	if *settings.Temperature < 0 || *settings.Temperature > 2 {
		return errors.New("temperature must be between 0 and 2")
	}
	if *settings.OutputLimitBytes <= 0 {
		return errors.New("output_limit_bytes must be positive")
	}
	return nil
}

// resolvePath maps a configured sink path onto its final location
func resolvePath(home, configured, def string) string {
	switch {
	case configured == Disabled:
		return ""
	case configured == "":
		return def
	case filepath.IsAbs(configured):
		return configured
	default:
		return filepath.Join(home, configured)
	}
}

// buildAppConfig converts RawSettings to AppConfig
func buildAppConfig(settings *RawSettings, home, configSource, settingPath string) *config.AppConfig {
	paths := app.PathsFor(home)
	return config.NewAppConfig(config.Values{
		Home: home,

		Backend:         *settings.Backend,
		Model:           *settings.Model,
		OllamaURL:       *settings.OllamaURL,
		OpenAIBaseURL:   *settings.OpenAIBaseURL,
		OpenAIAPIKeyEnv: *settings.OpenAIAPIKeyEnv,
		ClaudeBin:       *settings.ClaudeBin,
		Temperature:     *settings.Temperature,
		RequestTimeout:  *settings.RequestTimeoutSec,

		TimeoutSec:       *settings.TimeoutSec,
		MaxAttempts:      *settings.MaxAttempts,
		MatchStrategy:    strings.ToLower(*settings.MatchStrategy),
		OutputLimitBytes: *settings.OutputLimitBytes,

		LanguagesPath:   resolvePath(home, *settings.LanguagesPath, paths.Languages),
		JournalPath:     resolvePath(home, *settings.JournalPath, paths.Journal),
		HistoryDB:       resolvePath(home, *settings.HistoryDB, paths.HistoryDB),
		MetricsTextfile: resolvePath(home, *settings.MetricsTextfile, paths.Metrics),

		StderrLevel: *settings.StderrLevel,
	}, configSource, settingPath)
}

// CreateDefaultSettings creates a default setting.json content
func CreateDefaultSettings() []byte {
	settings := &RawSettings{}
	applyDefaults(settings)

	data, _ := json.MarshalIndent(settings, "", "  ")
	return append(data, '\n')
}
