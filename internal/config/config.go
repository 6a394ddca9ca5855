package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	DefaultConfigPath   = "config.json"
	DefaultFlowBaseURL  = "http://127.0.0.1:7861"
	PlaceholderFlowID   = "YOUR_FLOW_ID_HERE"
	DefaultServerAddr   = ":8501"
	DefaultSQLiteDSN    = "file:supportchat?mode=memory&cache=shared"
	DefaultIdleMinutes  = 120
	DefaultLogLevel     = "info"
	BackendMemory       = "memory"
	BackendSQLite       = "sqlite"
	configPathEnv       = "SUPPORTCHAT_CONFIG"
	defaultDotEnvFile   = ".env"
	supportedBackendMsg = "memory, sqlite"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig `json:"basic_config"`
	Flow        FlowConfig  `json:"flow"`
}

// FlowConfig locates the external flow the relay talks to.
type FlowConfig struct {
	BaseURL        string `json:"base_url"`
	FlowID         string `json:"flow_id"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// Tweaks is forwarded verbatim with every run request. Empty by default.
	Tweaks map[string]any `json:"tweaks"`
}

type BasicConfig struct {
	ServerAddress      string `json:"server_address"`
	TranscriptBackend  string `json:"transcript_backend"`
	SQLiteDSN          string `json:"sqlite_dsn"`
	SessionIdleMinutes int    `json:"session_idle_minutes"`
	LogLevel           string `json:"log_level"`
}

// Load builds the configuration from .env, an optional JSON file and the process environment,
// in that order of increasing precedence. An empty path falls back to SUPPORTCHAT_CONFIG and then
// config.json; only an explicitly requested file has to exist.
func Load(path string) (*Config, error) {
	// .env never overrides variables that are already set.
	if err := godotenv.Load(defaultDotEnvFile); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrap(err, "load .env")
	}

	explicit := path != ""
	if path == "" {
		path = os.Getenv(configPathEnv)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := &Config{}
	if err := readFile(path, cfg); err != nil {
		if explicit || !os.IsNotExist(errors.Cause(err)) {
			return nil, err
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "resolve config path")
	}

	file, err := os.Open(absPath)
	if err != nil {
		return errors.WithMessagef(err, "open config %s", absPath)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return errors.Wrap(err, "decode config")
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Flow.BaseURL, "LANGFLOW_BASE_URL")
	setString(&cfg.Flow.FlowID, "LANGFLOW_FLOW_ID")
	setInt(&cfg.Flow.TimeoutSeconds, "LANGFLOW_TIMEOUT_SECONDS")
	setString(&cfg.BasicConfig.ServerAddress, "SUPPORTCHAT_ADDR")
	setString(&cfg.BasicConfig.TranscriptBackend, "SUPPORTCHAT_TRANSCRIPT_BACKEND")
	setString(&cfg.BasicConfig.SQLiteDSN, "SUPPORTCHAT_SQLITE_DSN")
	setInt(&cfg.BasicConfig.SessionIdleMinutes, "SUPPORTCHAT_SESSION_IDLE_MINUTES")
	setString(&cfg.BasicConfig.LogLevel, "SUPPORTCHAT_LOG_LEVEL")
}

func applyDefaults(cfg *Config) {
	if cfg.Flow.BaseURL == "" {
		cfg.Flow.BaseURL = DefaultFlowBaseURL
	}
	cfg.Flow.BaseURL = strings.TrimRight(cfg.Flow.BaseURL, "/")
	if cfg.Flow.FlowID == "" {
		cfg.Flow.FlowID = PlaceholderFlowID
	}
	if cfg.BasicConfig.ServerAddress == "" {
		cfg.BasicConfig.ServerAddress = DefaultServerAddr
	}
	cfg.BasicConfig.TranscriptBackend = strings.ToLower(strings.TrimSpace(cfg.BasicConfig.TranscriptBackend))
	if cfg.BasicConfig.TranscriptBackend == "" {
		cfg.BasicConfig.TranscriptBackend = BackendMemory
	}
	if cfg.BasicConfig.SQLiteDSN == "" {
		cfg.BasicConfig.SQLiteDSN = DefaultSQLiteDSN
	}
	if cfg.BasicConfig.SessionIdleMinutes <= 0 {
		cfg.BasicConfig.SessionIdleMinutes = DefaultIdleMinutes
	}
	if cfg.BasicConfig.LogLevel == "" {
		cfg.BasicConfig.LogLevel = DefaultLogLevel
	}
}

// Validate checks the fields the relay and the session layer cannot work without.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Flow.BaseURL)
	if err != nil {
		return errors.Wrap(err, "flow base_url")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("flow base_url must be an absolute http(s) URL, got %q", c.Flow.BaseURL)
	}
	if strings.TrimSpace(c.Flow.FlowID) == "" {
		return errors.New("flow flow_id must be configured")
	}
	if c.Flow.TimeoutSeconds < 0 {
		return errors.New("flow timeout_seconds cannot be negative")
	}
	switch c.BasicConfig.TranscriptBackend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("unsupported transcript_backend %q (want one of: %s)", c.BasicConfig.TranscriptBackend, supportedBackendMsg)
	}
	return nil
}

// FlowURL is the run endpoint of the configured flow.
func (c *Config) FlowURL() string {
	return fmt.Sprintf("%s/api/v1/run/%s", c.Flow.BaseURL, url.PathEscape(c.Flow.FlowID))
}

// UsesPlaceholderFlow reports whether the flow ID was never configured.
func (c *Config) UsesPlaceholderFlow() bool {
	return c.Flow.FlowID == PlaceholderFlowID
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}
