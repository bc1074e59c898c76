package config

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, fsys afero.Fs, home string, settings map[string]interface{}) {
	t.Helper()
	data, err := json.MarshalIndent(settings, "", "  ")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fsys, filepath.Join(home, SettingFile), data, 0o644))
}

func TestLoadSettings_Defaults(t *testing.T) {
	cfg, err := LoadSettings(afero.NewMemMapFs(), ".devforge")
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.ConfigSource())
	assert.Empty(t, cfg.SettingPath())
	assert.Equal(t, ".devforge", cfg.Home())
	assert.Equal(t, BackendOllama, cfg.Backend())
	assert.Equal(t, "qwen2.5-coder:1.5b", cfg.Model())
	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL())
	assert.Equal(t, 0.2, cfg.Temperature())
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, 3, cfg.MaxAttempts())
	assert.Equal(t, "contains", cfg.MatchStrategy())
	assert.Equal(t, 1<<20, cfg.OutputLimitBytes())
	assert.Equal(t, filepath.Join(".devforge", "languages.yaml"), cfg.LanguagesPath())
	assert.Equal(t, filepath.Join(".devforge", "var", "journal.ndjson"), cfg.JournalPath())
	assert.Equal(t, filepath.Join(".devforge", "var", "history.db"), cfg.HistoryDB())
	assert.Equal(t, "warn", cfg.StderrLevel())
}

func TestLoadSettings_FromJSON(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeSettings(t, fsys, "/proj/.devforge", map[string]interface{}{
		"backend":          "openai",
		"model":            "gpt-4o-mini",
		"openai_base_url":  "http://localhost:8000/v1",
		"timeout_sec":      10,
		"max_attempts":     5,
		"match_strategy":   "Normalized",
		"journal_path":     "off",
		"history_db":       "ledger.db",
		"metrics_textfile": "/var/lib/node_exporter/devforge.prom",
	})

	cfg, err := LoadSettings(fsys, "/proj/.devforge")
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.ConfigSource())
	assert.Equal(t, "/proj/.devforge/setting.json", cfg.SettingPath())
	assert.Equal(t, BackendOpenAI, cfg.Backend())
	assert.Equal(t, "gpt-4o-mini", cfg.Model())
	assert.Equal(t, "http://localhost:8000/v1", cfg.OpenAIBaseURL())
	assert.Equal(t, 10, cfg.TimeoutSec())
	assert.Equal(t, 5, cfg.MaxAttempts())
	assert.Equal(t, "normalized", cfg.MatchStrategy())
	assert.Empty(t, cfg.JournalPath(), "off disables the journal")
	assert.Equal(t, "/proj/.devforge/ledger.db", cfg.HistoryDB())
	assert.Equal(t, "/var/lib/node_exporter/devforge.prom", cfg.MetricsTextfile())

	// Untouched keys keep their defaults
	assert.Equal(t, "OPENAI_API_KEY", cfg.OpenAIAPIKeyEnv())
	assert.Equal(t, 0.2, cfg.Temperature())
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]interface{}
	}{
		{"unknown backend", map[string]interface{}{"backend": "gemini"}},
		{"unknown match strategy", map[string]interface{}{"match_strategy": "regex"}},
		{"zero timeout", map[string]interface{}{"timeout_sec": 0}},
		{"negative attempts", map[string]interface{}{"max_attempts": -1}},
		{"temperature out of range", map[string]interface{}{"temperature": 3.5}},
		{"unknown key", map[string]interface{}{"agent_bin": "claude"}},
		{"wrong type", map[string]interface{}{"timeout_sec": "five"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			writeSettings(t, fsys, ".devforge", tt.settings)

			_, err := LoadSettings(fsys, ".devforge")
			assert.Error(t, err)
		})
	}
}

func TestCreateDefaultSettings_RoundTrips(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, ".devforge/setting.json", CreateDefaultSettings(), 0o644))

	fromFile, err := LoadSettings(fsys, ".devforge")
	require.NoError(t, err)
	defaults, err := LoadSettings(afero.NewMemMapFs(), ".devforge")
	require.NoError(t, err)

	assert.Equal(t, "json", fromFile.ConfigSource())
	assert.Equal(t, defaults.Backend(), fromFile.Backend())
	assert.Equal(t, defaults.Timeout(), fromFile.Timeout())
	assert.Equal(t, defaults.JournalPath(), fromFile.JournalPath())
}
