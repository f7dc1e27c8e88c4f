// Package config loads assistdesk configuration from the environment and
// layered .env files. Priority, highest to lowest: OS environment variables,
// local .env in the working directory, .env in the user config directory,
// built-in defaults. godotenv never overrides variables that are already set,
// so loading local before config-dir preserves that order.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"assistdesk/internal/logger"
)

// Defaults used when neither environment nor .env files provide a value.
const (
	DefaultBackendURL  = "http://localhost:8000"
	DefaultUpstreamURL = "https://api.openai.com/v1"
	DefaultTimeout     = 30 * time.Second
)

// Config carries everything the orchestration layer needs at construction
// time. It is immutable once loaded.
type Config struct {
	// BackendURL is the base URL of the assistant backend service.
	BackendURL string
	// UpstreamURL is the base URL of the upstream model service, used only
	// by the capability probe. Overridable for tests.
	UpstreamURL string
	// FallbackAPIKey is the environment-provided upstream credential the
	// default project is synthesized from. May be empty.
	FallbackAPIKey string
	// SessionToken is the application bearer token, if already known.
	SessionToken string
	// DatabasePath is the SQLite file holding persisted projects.
	DatabasePath string
	// Timeout bounds every outbound request.
	Timeout time.Duration
}

// Load reads configuration from .env files and the environment.
func Load() (*Config, error) {
	// Local .env first so it wins over the config-dir .env.
	if err := godotenv.Load(".env"); err == nil {
		logger.Debug("Loaded local .env")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(dir, "assistdesk", ".env")
		if err := godotenv.Load(path); err == nil {
			logger.Debug("Loaded config .env", "path", path)
		}
	}

	cfg := &Config{
		BackendURL:   envOr("ADESK_BACKEND_URL", DefaultBackendURL),
		UpstreamURL:  envOr("ADESK_UPSTREAM_URL", DefaultUpstreamURL),
		SessionToken: os.Getenv("ADESK_SESSION_TOKEN"),
		Timeout:      DefaultTimeout,
	}

	// The fallback credential has two accepted spellings; the ADESK-prefixed
	// one wins.
	cfg.FallbackAPIKey = os.Getenv("ADESK_API_KEY")
	if cfg.FallbackAPIKey == "" {
		cfg.FallbackAPIKey = os.Getenv("OPENAI_API_KEY")
	}

	if raw := os.Getenv("ADESK_TIMEOUT"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.Timeout = time.Duration(secs) * time.Second
		} else {
			logger.Warn("Ignoring invalid ADESK_TIMEOUT", "value", raw)
		}
	}

	path, err := databasePath()
	if err != nil {
		return nil, err
	}
	cfg.DatabasePath = path

	logger.Debug("Configuration loaded",
		"backend_url", cfg.BackendURL,
		"database", cfg.DatabasePath,
		"timeout", cfg.Timeout.String(),
		"has_fallback_key", cfg.FallbackAPIKey != "")

	return cfg, nil
}

func databasePath() (string, error) {
	if path := os.Getenv("ADESK_DB"); path != "" {
		return path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	appDir := filepath.Join(dir, "assistdesk")
	if err := os.MkdirAll(appDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(appDir, "assistdesk.db"), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
