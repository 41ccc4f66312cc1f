package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "http://localhost:8080", cfg.Sink.BaseURL)
	assert.Equal(t, 2.0, cfg.Sink.RequestsPerSec)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 3*time.Second, cfg.Fetch.Settle)
	assert.Equal(t, 10, cfg.Fetch.MaxPages)
	assert.Equal(t, 4, cfg.Runner.Parallelism)
	assert.Equal(t, "configs/venues", cfg.Runner.VenuesDir)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HARVESTER_SINK_URL", "https://api.gigcity.test")
	t.Setenv("HARVESTER_SINK_RPS", "0.5")
	t.Setenv("HARVESTER_FETCH_TIMEOUT_SEC", "45")
	t.Setenv("HARVESTER_PARALLELISM", "8")
	t.Setenv("HARVESTER_LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "https://api.gigcity.test", cfg.Sink.BaseURL)
	assert.Equal(t, 0.5, cfg.Sink.RequestsPerSec)
	assert.Equal(t, 45*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 8, cfg.Runner.Parallelism)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("HARVESTER_MAX_PAGES", "lots")
	t.Setenv("HARVESTER_SINK_RPS", "fast")

	cfg := Load()
	assert.Equal(t, 10, cfg.Fetch.MaxPages)
	assert.Equal(t, 2.0, cfg.Sink.RequestsPerSec)
}

func TestNewLoggerLevels(t *testing.T) {
	logger := NewLogger(LoggingConfig{Level: "warn", Format: "json"})
	assert.Equal(t, "warn", logger.GetLevel().String())

	// Unknown levels fall back to info.
	logger = NewLogger(LoggingConfig{Level: "loud", Format: "console"})
	assert.Equal(t, "info", logger.GetLevel().String())
}
