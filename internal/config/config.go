// Package config loads agent configuration from environment variables
// with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// DefaultDataDir is created under the user's home directory when no
	// explicit data dir is configured.
	DefaultDataDir = ".clipforge"

	// DBFilename is the SQLite database file inside the data dir.
	DBFilename = "clipforge.db"
)

// Config is the agent's runtime configuration.
type Config struct {
	Port     int    `env:"CLIPFORGE_PORT" envDefault:"8799"`
	LogLevel string `env:"CLIPFORGE_LOG_LEVEL" envDefault:"info"`
	DataDir  string `env:"CLIPFORGE_DATA_DIR"`

	// Render service; empty URL selects the stub client.
	RenderURL   string `env:"CLIPFORGE_RENDER_URL"`
	RenderToken string `env:"CLIPFORGE_RENDER_TOKEN"`

	AutosaveInterval time.Duration `env:"CLIPFORGE_AUTOSAVE_INTERVAL" envDefault:"5s"`

	// FrameInterval paces the playback engine's tick loop. 33ms ≈ 30fps.
	FrameInterval time.Duration `env:"CLIPFORGE_FRAME_INTERVAL" envDefault:"33ms"`

	// DisableTray runs the agent headless (no system tray icon).
	DisableTray bool `env:"CLIPFORGE_NO_TRAY"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid CLIPFORGE_PORT: port must be between 1 and 65535")
	}
	if cfg.AutosaveInterval <= 0 {
		return nil, fmt.Errorf("invalid CLIPFORGE_AUTOSAVE_INTERVAL: must be positive")
	}
	if cfg.FrameInterval <= 0 {
		return nil, fmt.Errorf("invalid CLIPFORGE_FRAME_INTERVAL: must be positive")
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	return cfg, nil
}

// DBPath returns the full path to the SQLite database file.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, DBFilename)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to a relative directory when home is unavailable.
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
