package config

import (
	"fmt"
	"os"
	"time"
)

// Gemini environment variables. The API key is also read from the
// unprefixed GEMINI_API_KEY and API_KEY.
const (
	EnvGeminiAPIKey  = EnvPrefix + "GEMINI_API_KEY"
	EnvGeminiModel   = EnvPrefix + "GEMINI_MODEL"
	EnvGeminiTimeout = EnvPrefix + "GEMINI_TIMEOUT"
	EnvGeminiBaseURL = EnvPrefix + "GEMINI_BASE_URL"
)

var apiKeyVars = []string{EnvGeminiAPIKey, "GEMINI_API_KEY", "API_KEY"}

// GeminiConfig configures the edit service.
type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
	BaseURL string `toml:"base_url"`

	timeout time.Duration
}

// TimeoutDuration returns the parsed call timeout.
func (c *GeminiConfig) TimeoutDuration() time.Duration {
	return c.timeout
}

// HasAPIKey reports whether generative requests can be made.
func (c *GeminiConfig) HasAPIKey() bool {
	return c.APIKey != ""
}

// Finalize applies defaults and environment overrides, then validates.
func (c *GeminiConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies the non-zero values of overlay.
func (c *GeminiConfig) Merge(overlay *GeminiConfig) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
}

func (c *GeminiConfig) loadDefaults() {
	if c.Model == "" {
		c.Model = "gemini-2.5-flash-image-preview"
	}
	if c.Timeout == "" {
		c.Timeout = "120s"
	}
}

func (c *GeminiConfig) loadEnv() {
	if c.APIKey == "" {
		for _, name := range apiKeyVars {
			if v := os.Getenv(name); v != "" {
				c.APIKey = v
				break
			}
		}
	} else if v := os.Getenv(EnvGeminiAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvGeminiModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvGeminiTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvGeminiBaseURL); v != "" {
		c.BaseURL = v
	}
}

func (c *GeminiConfig) validate() error {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	c.timeout = d
	return nil
}
