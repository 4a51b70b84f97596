package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT_VALID", "42")
	t.Setenv("TEST_INT_GARBAGE", "fifteen")
	t.Setenv("TEST_INT_EMPTY", "")

	assert.Equal(t, 42, getEnvAsInt("TEST_INT_VALID", 7))
	assert.Equal(t, 7, getEnvAsInt("TEST_INT_GARBAGE", 7))
	assert.Equal(t, 7, getEnvAsInt("TEST_INT_EMPTY", 7))
	assert.Equal(t, 7, getEnvAsInt("TEST_INT_UNSET", 7))
}

func TestLoadMalformedDurationsFallBack(t *testing.T) {
	// A garbage interval must not produce a zero ticker period, and a
	// garbage TTL must not produce a lock that never expires.
	t.Setenv("SYNC_INTERVAL_MINUTES", "often")
	t.Setenv("SYNC_LOCK_TTL_MINUTES", "-")

	cfg := Load()

	assert.Equal(t, 15*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 10*time.Minute, cfg.Sync.LockTTL)
}
