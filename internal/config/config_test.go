package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 3, cfg.API.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2.0, cfg.API.BackoffFactor)
	assert.Equal(t, 5*time.Second, cfg.API.ServerErrWait)
	assert.Equal(t, 600*time.Second, cfg.API.MaxTotalWait)
	assert.Equal(t, 30*time.Second, cfg.API.TaskTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.API.SequentialGap)
	assert.Equal(t, 15*time.Minute, cfg.Interval)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.True(t, cfg.Features.Macroeconomic)
	assert.True(t, cfg.Features.Enhanced)
	assert.True(t, cfg.Ops.Enabled)
	assert.Equal(t, ":8090", cfg.Ops.Addr)
}

func TestLoadOverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
interval: 5m
api:
  max_retries: 5
  timeout: 20s
features:
  include_macroeconomic: false
cache:
  ttl: 45s
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.Interval)
	assert.Equal(t, 5, cfg.API.MaxRetries)
	assert.Equal(t, 20*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.Features.Macroeconomic)
	assert.True(t, cfg.Features.Commodities, "untouched flags keep their defaults")
	assert.Equal(t, 45*time.Second, cfg.Cache.TTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  max_retries: 99\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestKeysComeFromEnvironment(t *testing.T) {
	t.Setenv("FRED_API_KEY", "fred-secret")
	t.Setenv("COINGLASS_API_KEY", "cg-secret")
	t.Setenv("WHALE_ALERT_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "fred-secret", cfg.Keys.FRED)
	assert.Equal(t, "cg-secret", cfg.Keys.Coinglass)
	assert.Empty(t, cfg.Keys.WhaleAlert)
}
