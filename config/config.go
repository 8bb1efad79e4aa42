// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration of the assistant.
type Config struct {
	// HTTPAddr is the listen address of the API server.
	HTTPAddr string

	// StoragePath is the SQLite database file for durable session state.
	// Empty selects the in-memory blob store.
	StoragePath string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// LogFormat is "json" or "text".
	LogFormat string

	// OpenAIAPIKey enables the OpenAI speech/translation/inference provider.
	OpenAIAPIKey string

	// AnthropicAPIKey enables the Anthropic inference provider. When both
	// keys are set, Anthropic takes over inference.
	AnthropicAPIKey string

	// FailureThreshold is the consecutive failure count that opens a
	// circuit breaker.
	FailureThreshold int

	// OpenTimeout is how long an open breaker waits before admitting a
	// trial request.
	OpenTimeout time.Duration

	// MaxRetries bounds attempts per external service call.
	MaxRetries int

	// BackoffFactor is the exponential backoff base between retries.
	BackoffFactor float64
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; real environment variables win.
func Load() (Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:         envOr("AGRIMESH_HTTP_ADDR", ":8080"),
		StoragePath:      os.Getenv("AGRIMESH_STORAGE_PATH"),
		LogLevel:         envOr("AGRIMESH_LOG_LEVEL", "info"),
		LogFormat:        envOr("AGRIMESH_LOG_FORMAT", "json"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		FailureThreshold: 5,
		OpenTimeout:      60 * time.Second,
		MaxRetries:       3,
		BackoffFactor:    2.0,
	}

	var err error
	if cfg.FailureThreshold, err = envInt("AGRIMESH_FAILURE_THRESHOLD", cfg.FailureThreshold); err != nil {
		return Config{}, err
	}
	if cfg.MaxRetries, err = envInt("AGRIMESH_MAX_RETRIES", cfg.MaxRetries); err != nil {
		return Config{}, err
	}
	if cfg.OpenTimeout, err = envDuration("AGRIMESH_OPEN_TIMEOUT", cfg.OpenTimeout); err != nil {
		return Config{}, err
	}
	if cfg.BackoffFactor, err = envFloat("AGRIMESH_BACKOFF_FACTOR", cfg.BackoffFactor); err != nil {
		return Config{}, err
	}

	if cfg.FailureThreshold <= 0 {
		return Config{}, fmt.Errorf("AGRIMESH_FAILURE_THRESHOLD must be positive")
	}
	if cfg.MaxRetries <= 0 {
		return Config{}, fmt.Errorf("AGRIMESH_MAX_RETRIES must be positive")
	}
	if cfg.BackoffFactor < 1 {
		return Config{}, fmt.Errorf("AGRIMESH_BACKOFF_FACTOR must be at least 1")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
