package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv,
		"LANGFLOW_BASE_URL",
		"LANGFLOW_FLOW_ID",
		"LANGFLOW_TIMEOUT_SECONDS",
		"SUPPORTCHAT_ADDR",
		"SUPPORTCHAT_TRANSCRIPT_BACKEND",
		"SUPPORTCHAT_SQLITE_DSN",
		"SUPPORTCHAT_SESSION_IDLE_MINUTES",
		"SUPPORTCHAT_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultFlowBaseURL, cfg.Flow.BaseURL)
	assert.Equal(t, PlaceholderFlowID, cfg.Flow.FlowID)
	assert.True(t, cfg.UsesPlaceholderFlow())
	assert.Equal(t, DefaultServerAddr, cfg.BasicConfig.ServerAddress)
	assert.Equal(t, BackendMemory, cfg.BasicConfig.TranscriptBackend)
	assert.Equal(t, DefaultIdleMinutes, cfg.BasicConfig.SessionIdleMinutes)
	assert.Empty(t, cfg.Flow.Tweaks)
	assert.Equal(t, "http://127.0.0.1:7861/api/v1/run/YOUR_FLOW_ID_HERE", cfg.FlowURL())
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{
		"basic_config": {"server_address": ":9000", "transcript_backend": "SQLite"},
		"flow": {"base_url": "http://flows.internal:7860/", "flow_id": "from-file", "tweaks": {"ChatInput-1": {"sender": "User"}}}
	}`)
	t.Setenv("LANGFLOW_FLOW_ID", "from-env")
	t.Setenv("SUPPORTCHAT_SESSION_IDLE_MINUTES", "15")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.BasicConfig.ServerAddress)
	assert.Equal(t, BackendSQLite, cfg.BasicConfig.TranscriptBackend)
	assert.Equal(t, "http://flows.internal:7860", cfg.Flow.BaseURL)
	assert.Equal(t, "from-env", cfg.Flow.FlowID)
	assert.Equal(t, 15, cfg.BasicConfig.SessionIdleMinutes)
	assert.Contains(t, cfg.Flow.Tweaks, "ChatInput-1")
	assert.Equal(t, "http://flows.internal:7860/api/v1/run/from-env", cfg.FlowURL())
}

func TestLoadConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{"flow": {"flow_id": "abc"}}`)
	t.Setenv(configPathEnv, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Flow.FlowID)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadIgnoresBadIntegers(t *testing.T) {
	clearEnv(t)
	t.Setenv("LANGFLOW_TIMEOUT_SECONDS", "soon")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Flow.TimeoutSeconds)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative base url", func(c *Config) { c.Flow.BaseURL = "127.0.0.1:7861" }},
		{"ftp base url", func(c *Config) { c.Flow.BaseURL = "ftp://example.com" }},
		{"blank flow id", func(c *Config) { c.Flow.FlowID = "  " }},
		{"negative timeout", func(c *Config) { c.Flow.TimeoutSeconds = -1 }},
		{"unknown backend", func(c *Config) { c.BasicConfig.TranscriptBackend = "redis" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			require.NoError(t, cfg.Validate())

			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
