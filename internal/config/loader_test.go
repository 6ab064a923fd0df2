package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTOML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Strategy, cfg.Strategy)
}

func TestLoad_TOMLOverridesDefaults(t *testing.T) {
	path := writeTOML(t, `
mode = "scan"

[strategy]
total_capital = 2500.0
p0_allocation = 800.0

[monitor]
interval = "90s"

[redis]
enabled = true
addr = "redis:6379"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "scan", cfg.Mode)
	assert.Equal(t, 2500.0, cfg.Strategy.TotalCapital)
	assert.Equal(t, 800.0, cfg.Strategy.P0Allocation)
	assert.Equal(t, 90*time.Second, cfg.Monitor.Interval.Duration)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)

	// Untouched sections keep their defaults.
	assert.Equal(t, 0.995, cfg.Strategy.P0MinCertainty)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := writeTOML(t, "mode = [broken")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeTOML(t, `
[strategy]
total_capital = 2500.0
`)
	t.Setenv("POLYTRIAGE_STRATEGY_TOTAL_CAPITAL", "5000")
	t.Setenv("POLYTRIAGE_MODE", "serve")
	t.Setenv("POLYTRIAGE_REDIS_ENABLED", "true")
	t.Setenv("POLYTRIAGE_MONITOR_INTERVAL", "30s")
	t.Setenv("POLYTRIAGE_STRATEGY_EXCLUDE_KEYWORDS", "nba, nfl ,")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5000.0, cfg.Strategy.TotalCapital)
	assert.Equal(t, "serve", cfg.Mode)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Interval.Duration)
	assert.Equal(t, []string{"nba", "nfl"}, cfg.Strategy.ExcludeKeywords)
}

func TestLoad_InvalidEnvValueIgnored(t *testing.T) {
	t.Setenv("POLYTRIAGE_GAMMA_FETCH_LIMIT", "lots")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Gamma.FetchLimit)
}
