package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
)

const (
	EnvDisplayAddr    = EnvPrefix + "DISPLAY_ADDR"
	EnvDisplayBaseURL = EnvPrefix + "DISPLAY_BASE_URL"

	// DisplayOff as the address disables the artifact HTTP listener.
	DisplayOff = "off"
)

// DisplayConfig configures the HTTP listener that serves display handles.
type DisplayConfig struct {
	Addr    string `toml:"addr"`
	BaseURL string `toml:"base_url"`
}

// Enabled reports whether the listener should run.
func (c *DisplayConfig) Enabled() bool {
	return c.Addr != DisplayOff
}

// Finalize applies defaults and environment overrides, then validates.
func (c *DisplayConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	if c.Enabled() && c.BaseURL == "" {
		c.BaseURL = "http://" + c.Addr
	}
	return c.validate()
}

// Merge applies the non-zero values of overlay.
func (c *DisplayConfig) Merge(overlay *DisplayConfig) {
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
}

func (c *DisplayConfig) loadDefaults() {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:8787"
	}
}

func (c *DisplayConfig) loadEnv() {
	if v := os.Getenv(EnvDisplayAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvDisplayBaseURL); v != "" {
		c.BaseURL = v
	}
}

func (c *DisplayConfig) validate() error {
	if !c.Enabled() {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid addr: %w", err)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be http or https: %s", c.BaseURL)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}
