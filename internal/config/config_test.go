package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "8080")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("GO_ENV", "dev")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3*time.Hour, cfg.AbandonAfter)
	assert.Equal(t, 7*24*time.Hour, cfg.RemoveAfter)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, 14*24*time.Hour, cfg.SessionTTL)
}

func TestLoad_TunablesFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CART_ABANDON_AFTER", "90m")
	t.Setenv("CART_REMOVE_AFTER", "48h")
	t.Setenv("CART_SWEEP_INTERVAL", "10m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, cfg.AbandonAfter)
	assert.Equal(t, 48*time.Hour, cfg.RemoveAfter)
	assert.Equal(t, 10*time.Minute, cfg.SweepInterval)
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CART_ABANDON_AFTER", "three hours")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_NonPositiveDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CART_SWEEP_INTERVAL", "-1h")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingPort(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("GO_ENV", "dev")

	_, err := Load()
	assert.ErrorContains(t, err, "PORT")
}
