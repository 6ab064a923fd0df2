package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_Validate(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestDefaults_Allocations(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 1000.0, cfg.Strategy.TotalCapital)
	assert.Equal(t, 300.0, cfg.Strategy.P0Allocation)
	assert.Equal(t, 500.0, cfg.Strategy.P1Allocation)
	assert.Equal(t, 200.0, cfg.Strategy.P2Allocation)
	assert.Equal(t, 5*time.Minute, cfg.Monitor.Interval.Duration)
	assert.Equal(t, "monitor", cfg.Mode)
}

func TestValidate_UnknownMode(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "replay"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, `unknown mode "replay"`)
}

func TestValidate_UnknownLogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_ServeRequiresRedis(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "serve"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "serve mode requires the result cache")

	cfg.Redis.Enabled = true
	assert.NoError(t, cfg.Validate())
}

func TestValidate_StrategyBounds(t *testing.T) {
	cfg := Defaults()
	cfg.Strategy.P0MinCertainty = 1.5
	cfg.Strategy.P1Allocation = -10
	cfg.Strategy.MaxCategoryConcentration = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "p0_min_certainty must be in (0, 1]")
	assert.ErrorContains(t, err, "p1_allocation must not be negative")
	assert.ErrorContains(t, err, "max_category_concentration")
}

func TestValidate_PostgresBackendChecks(t *testing.T) {
	cfg := Defaults()
	cfg.Ledger.Backend = "postgres"
	cfg.Postgres.Host = ""
	cfg.Postgres.Database = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "postgres: host must not be empty")
	assert.ErrorContains(t, err, "postgres: database must not be empty")

	// A full DSN replaces the discrete connection fields.
	cfg.Postgres.DSN = "postgres://u:p@db:5432/polytriage"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_TelegramPair(t *testing.T) {
	cfg := Defaults()
	cfg.Notify.TelegramToken = "123:abc"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "telegram_token and telegram_chat_id must be set together")

	cfg.Notify.TelegramChatID = "42"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MonitorBounds(t *testing.T) {
	cfg := Defaults()
	cfg.Monitor.Interval = duration{0}
	cfg.Monitor.DailyResetHourUTC = 24

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "interval must be positive")
	assert.ErrorContains(t, err, "daily_reset_hour_utc must be 0-23")
}
