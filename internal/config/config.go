// Package config provides runtime configuration loaded from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const logPrefix = "config:LoadConfig"

// Config holds framehost configuration.
type Config struct {
	// Worker pool size; the launch option "workers" takes precedence.
	Workers int `envconfig:"FRAME_WORKERS" default:"4"`

	// Launch options file (.json or .toml) used when no argument is given.
	LaunchFile string `envconfig:"FRAME_LAUNCH_FILE"`

	// Headless selects the in-process window binding.
	Headless bool `envconfig:"FRAME_HEADLESS" default:"true"`

	// Control endpoint notified on shutdown at http://{host}:{port}{ShutdownPath}.
	ControlTimeout time.Duration `envconfig:"FRAME_CONTROL_TIMEOUT" default:"5s"`
	ShutdownPath   string        `envconfig:"FRAME_SHUTDOWN_PATH" default:"/server_shutdown"`

	// COMMS host bridge; empty COMMSURL disables it.
	COMMSURL      string `envconfig:"COMMS_URL"`
	COMMSName     string `envconfig:"SERVICE_NAME" default:"framehost"`
	SubjectPrefix string `envconfig:"FRAME_SUBJECT_PREFIX" default:"frame"`

	// WatchResources reloads every webview when the debug resource directory changes.
	WatchResources bool `envconfig:"FRAME_WATCH_RESOURCES" default:"false"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("%s - %w", logPrefix, err)
	}
	return &c, nil
}

// Validate checks values the runtime cannot start with.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%s - FRAME_WORKERS must be positive", logPrefix)
	}
	if c.ControlTimeout <= 0 {
		return fmt.Errorf("%s - FRAME_CONTROL_TIMEOUT must be positive", logPrefix)
	}
	if !strings.HasPrefix(c.ShutdownPath, "/") {
		return fmt.Errorf("%s - FRAME_SHUTDOWN_PATH must start with /", logPrefix)
	}
	return nil
}

// BridgeEnabled reports whether the COMMS host bridge should connect.
func (c *Config) BridgeEnabled() bool {
	return c.COMMSURL != ""
}

// SlogLevel maps LogLevel to a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
