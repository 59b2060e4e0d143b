package config

import (
	"fmt"
	"os"

	"github.com/docker/go-units"
)

const EnvMaxUploadSize = EnvPrefix + "MAX_UPLOAD_SIZE"

// LimitsConfig bounds what clients may send.
type LimitsConfig struct {
	MaxUploadSize    string `toml:"max_upload_size"`
	maxUploadSizeVal int64
}

// MaxUploadSizeBytes returns the parsed upload limit.
func (c *LimitsConfig) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

// Finalize applies defaults and environment overrides, then validates.
func (c *LimitsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies the non-zero values of overlay.
func (c *LimitsConfig) Merge(overlay *LimitsConfig) {
	if size, err := units.FromHumanSize(overlay.MaxUploadSize); err == nil {
		c.MaxUploadSize = overlay.MaxUploadSize
		c.maxUploadSizeVal = size
	}
}

func (c *LimitsConfig) loadDefaults() {
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "20MB"
	}
}

func (c *LimitsConfig) loadEnv() {
	if v := os.Getenv(EnvMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
}

func (c *LimitsConfig) validate() error {
	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = size
	return nil
}
