package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: LevelInfo, Format: FormatJSON}, &buf)

	logger.Debug("hidden")
	logger.Info("request submitted", "kind", "filter")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request submitted", entry["msg"])
	assert.Equal(t, "filter", entry["kind"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: LevelDebug, Format: FormatText}, &buf)

	logger.Debug("hotspot selected", "x", 10)
	assert.Contains(t, buf.String(), "msg=\"hotspot selected\"")
	assert.Contains(t, buf.String(), "x=10")
}

func TestLevel(t *testing.T) {
	tests := []struct {
		level   Level
		want    slog.Level
		wantErr bool
	}{
		{LevelDebug, slog.LevelDebug, false},
		{LevelInfo, slog.LevelInfo, false},
		{LevelWarn, slog.LevelWarn, false},
		{LevelError, slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.ToSlogLevel())
			if tt.wantErr {
				assert.Error(t, tt.level.Validate())
			} else {
				assert.NoError(t, tt.level.Validate())
			}
		})
	}
}

func TestConfig_Finalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg Config
		require.NoError(t, cfg.Finalize(nil))
		assert.Equal(t, LevelInfo, cfg.Level)
		assert.Equal(t, FormatText, cfg.Format)
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("TEST_LOG_LEVEL", "debug")
		t.Setenv("TEST_LOG_FORMAT", "json")

		cfg := Config{Level: LevelWarn}
		require.NoError(t, cfg.Finalize(&Env{Level: "TEST_LOG_LEVEL", Format: "TEST_LOG_FORMAT"}))
		assert.Equal(t, LevelDebug, cfg.Level)
		assert.Equal(t, FormatJSON, cfg.Format)
	})

	t.Run("invalid format", func(t *testing.T) {
		cfg := Config{Format: "xml"}
		assert.Error(t, cfg.Finalize(nil))
	})
}

func TestConfig_Merge(t *testing.T) {
	cfg := Config{Level: LevelInfo, Format: FormatText}
	cfg.Merge(&Config{Format: FormatJSON})

	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, FormatJSON, cfg.Format)
}
