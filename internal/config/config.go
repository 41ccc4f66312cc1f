package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Sink    SinkConfig
	Fetch   FetchConfig
	Runner  RunnerConfig
	Logging LoggingConfig
}

type SinkConfig struct {
	BaseURL        string
	APIKey         string
	RequestsPerSec float64
}

type FetchConfig struct {
	Timeout      time.Duration
	Settle       time.Duration
	MaxPages     int
	Interactions int
}

type RunnerConfig struct {
	Parallelism int
	VenuesDir   string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables, applying defaults.
// Nothing is required: the harvester can run entirely in dry-run mode
// without a sink endpoint.
func Load() Config {
	return Config{
		Sink: SinkConfig{
			BaseURL:        getEnv("HARVESTER_SINK_URL", "http://localhost:8080"),
			APIKey:         getEnv("HARVESTER_SINK_KEY", ""),
			RequestsPerSec: getEnvFloat("HARVESTER_SINK_RPS", 2),
		},
		Fetch: FetchConfig{
			Timeout:      time.Duration(getEnvInt("HARVESTER_FETCH_TIMEOUT_SEC", 30)) * time.Second,
			Settle:       time.Duration(getEnvInt("HARVESTER_SETTLE_MS", 3000)) * time.Millisecond,
			MaxPages:     getEnvInt("HARVESTER_MAX_PAGES", 10),
			Interactions: getEnvInt("HARVESTER_INTERACTIONS", 10),
		},
		Runner: RunnerConfig{
			Parallelism: getEnvInt("HARVESTER_PARALLELISM", 4),
			VenuesDir:   getEnv("HARVESTER_VENUES_DIR", "configs/venues"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("HARVESTER_LOG_LEVEL", "info"),
			Format: getEnv("HARVESTER_LOG_FORMAT", "json"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
