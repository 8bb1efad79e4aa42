package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5, cfg.FailureThreshold)
	assert.Equal(t, 60*time.Second, cfg.OpenTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2.0, cfg.BackoffFactor)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AGRIMESH_HTTP_ADDR", ":9999")
	t.Setenv("AGRIMESH_FAILURE_THRESHOLD", "7")
	t.Setenv("AGRIMESH_OPEN_TIMEOUT", "30s")
	t.Setenv("AGRIMESH_BACKOFF_FACTOR", "1.5")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, 7, cfg.FailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.OpenTimeout)
	assert.Equal(t, 1.5, cfg.BackoffFactor)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("AGRIMESH_FAILURE_THRESHOLD", "not-a-number")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("AGRIMESH_FAILURE_THRESHOLD", "0")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("AGRIMESH_FAILURE_THRESHOLD", "5")
	t.Setenv("AGRIMESH_BACKOFF_FACTOR", "0.5")
	_, err = Load()
	assert.Error(t, err)
}
