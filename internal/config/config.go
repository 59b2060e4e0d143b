// Package config loads the server configuration from an optional TOML
// file, an optional environment-specific overlay and environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/ironsheep/image-edit-mcp/internal/logging"
)

const (
	// BaseConfigFile is read when no path is given.
	BaseConfigFile = "image-edit.toml"

	// OverlayConfigPattern names environment-specific overlays.
	OverlayConfigPattern = "image-edit.%s.toml"

	// EnvPrefix prefixes every override variable.
	EnvPrefix = "IMAGE_EDIT_"

	// EnvServiceEnv selects the overlay.
	EnvServiceEnv = EnvPrefix + "ENV"

	EnvLogLevel  = EnvPrefix + "LOG_LEVEL"
	EnvLogFormat = EnvPrefix + "LOG_FORMAT"
)

// Config is the root configuration.
type Config struct {
	Gemini  GeminiConfig   `toml:"gemini"`
	Display DisplayConfig  `toml:"display"`
	Limits  LimitsConfig   `toml:"limits"`
	Logging logging.Config `toml:"logging"`
}

// Load reads path, or BaseConfigFile when path is empty, and applies the
// overlay selected by IMAGE_EDIT_ENV. A missing default file yields an
// empty configuration; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = BaseConfigFile
	}

	cfg, err := load(path)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, fs.ErrNotExist):
		cfg = &Config{}
	default:
		return nil, err
	}

	if overlay := overlayPath(); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}
	return cfg, nil
}

// Finalize applies defaults and environment overrides, then validates.
func (c *Config) Finalize() error {
	if err := c.Gemini.Finalize(); err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	if err := c.Display.Finalize(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	if err := c.Limits.Finalize(); err != nil {
		return fmt.Errorf("limits: %w", err)
	}
	if err := c.Logging.Finalize(&logging.Env{Level: EnvLogLevel, Format: EnvLogFormat}); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Merge applies the non-zero values of overlay.
func (c *Config) Merge(overlay *Config) {
	c.Gemini.Merge(&overlay.Gemini)
	c.Display.Merge(&overlay.Display)
	c.Limits.Merge(&overlay.Limits)
	c.Logging.Merge(&overlay.Logging)
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvServiceEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
