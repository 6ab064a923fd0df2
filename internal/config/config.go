// Package config defines the top-level configuration for polytriage and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by POLYTRIAGE_* environment
// variables.
type Config struct {
	Gamma    GammaConfig    `toml:"gamma"`
	Strategy StrategyConfig `toml:"strategy"`
	Ledger   LedgerConfig   `toml:"ledger"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Monitor  MonitorConfig  `toml:"monitor"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// GammaConfig holds the Polymarket Gamma API endpoint and fetch window.
type GammaConfig struct {
	Host        string   `toml:"host"`
	FetchLimit  int      `toml:"fetch_limit"`
	HTTPTimeout duration `toml:"http_timeout"`
}

// StrategyConfig holds the tier thresholds, capital allocations, and risk
// limits the engine runs under. It is immutable for the duration of a run.
type StrategyConfig struct {
	TotalCapital float64 `toml:"total_capital"`

	// P0: effectively decided events.
	P0Allocation   float64 `toml:"p0_allocation"`
	P0MaxPerTrade  float64 `toml:"p0_max_per_trade"`
	P0MinCertainty float64 `toml:"p0_min_certainty"`
	P0MinLiquidity float64 `toml:"p0_min_liquidity"`

	// P1: high-certainty diversified positions.
	P1Allocation    float64 `toml:"p1_allocation"`
	P1MaxPerTrade   float64 `toml:"p1_max_per_trade"`
	P1MinPerTrade   float64 `toml:"p1_min_per_trade"`
	P1MinCertainty  float64 `toml:"p1_min_certainty"`
	P1MinLiquidity  float64 `toml:"p1_min_liquidity"`
	P1MaxDays       float64 `toml:"p1_max_days"`
	P1TargetMarkets int     `toml:"p1_target_markets"`

	// P2: short-dated endgame markets.
	P2Allocation   float64 `toml:"p2_allocation"`
	P2MaxPerTrade  float64 `toml:"p2_max_per_trade"`
	P2MinCertainty float64 `toml:"p2_min_certainty"`
	P2MinLiquidity float64 `toml:"p2_min_liquidity"`
	P2MaxHours     float64 `toml:"p2_max_hours"`

	// Risk controls.
	DailyLossLimit           float64 `toml:"daily_loss_limit"`
	CumulativeLossPause      float64 `toml:"cumulative_loss_pause"`
	MaxCategoryConcentration float64 `toml:"max_category_concentration"`

	// ExcludeKeywords drops markets whose question contains any of these
	// (case-insensitive). Used to keep sports out of the certainty play.
	ExcludeKeywords []string `toml:"exclude_keywords"`
}

// LedgerConfig selects and configures the portfolio ledger backend.
type LedgerConfig struct {
	// Backend is "file" (default) or "postgres".
	Backend string `toml:"backend"`
	// Path is the ledger file location for the file backend.
	Path string `toml:"path"`
}

// PostgresConfig holds PostgreSQL connection parameters for the optional
// database-backed ledger.
type PostgresConfig struct {
	DSN          string `toml:"dsn"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Database     string `toml:"database"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	SSLMode      string `toml:"ssl_mode"`
	PoolMaxConns int    `toml:"pool_max_conns"`
	PoolMinConns int    `toml:"pool_min_conns"`
}

// RedisConfig holds Redis connection parameters for the result cache.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for report
// archiving.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	Prefix         string `toml:"prefix"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// MonitorConfig holds the polling cadence and daily-reset schedule.
type MonitorConfig struct {
	Interval duration `toml:"interval"`
	// DailyResetHourUTC is the UTC hour at which the daily PnL counter is
	// zeroed. The ledger itself has no notion of calendar days.
	DailyResetHourUTC int    `toml:"daily_reset_hour_utc"`
	WriteReportFile   bool   `toml:"write_report_file"`
	ReportPath        string `toml:"report_path"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	APIKey      string   `toml:"api_key"`
	CORSOrigins []string `toml:"cors_origins"`
	// RateLimit caps requests per client IP per RateWindow. Zero disables
	// rate limiting; it also requires the Redis cache to be enabled.
	RateLimit  int      `toml:"rate_limit"`
	RateWindow duration `toml:"rate_window"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder
// can parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultExcludeKeywords is the stock sports exclusion list.
var DefaultExcludeKeywords = []string{
	"nba", "nfl", "mlb", "nhl", "super bowl", "finals",
	"mvp", "coach", "stanley cup", "world series",
	"premier league", "champions league", "ufc", "boxing",
	"tennis", "golf", "f1", "formula", "olympics",
	"grizzlies", "lakers", "celtics", "warriors", "knicks",
	"patriots", "seahawks", "chiefs", "eagles", "cowboys",
	"world cup", "fifa", "euro 2024", "copa america",
}

// Defaults returns a Config populated with the stock strategy parameters.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Gamma: GammaConfig{
			Host:        "https://gamma-api.polymarket.com",
			FetchLimit:  500,
			HTTPTimeout: duration{30 * time.Second},
		},
		Strategy: StrategyConfig{
			TotalCapital: 1000,

			P0Allocation:   300,
			P0MaxPerTrade:  100,
			P0MinCertainty: 0.995,
			P0MinLiquidity: 10_000,

			P1Allocation:    500,
			P1MaxPerTrade:   50,
			P1MinPerTrade:   25,
			P1MinCertainty:  0.98,
			P1MinLiquidity:  50_000,
			P1MaxDays:       365,
			P1TargetMarkets: 15,

			P2Allocation:   200,
			P2MaxPerTrade:  20,
			P2MinCertainty: 0.95,
			P2MinLiquidity: 5_000,
			P2MaxHours:     6,

			DailyLossLimit:           100,
			CumulativeLossPause:      200,
			MaxCategoryConcentration: 0.30,
			ExcludeKeywords:          DefaultExcludeKeywords,
		},
		Ledger: LedgerConfig{
			Backend: "file",
			Path:    "pm_portfolio.json",
		},
		Postgres: PostgresConfig{
			Host:         "localhost",
			Port:         5432,
			Database:     "polytriage",
			User:         "postgres",
			SSLMode:      "disable",
			PoolMaxConns: 10,
			PoolMinConns: 2,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "polytriage-reports",
			Prefix:         "reports",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Monitor: MonitorConfig{
			Interval:          duration{5 * time.Minute},
			DailyResetHourUTC: 0,
			WriteReportFile:   true,
			ReportPath:        "pm_opportunities.json",
		},
		Server: ServerConfig{
			Enabled:    true,
			Port:       8080,
			RateLimit:  120,
			RateWindow: duration{time.Minute},
		},
		Mode:     "monitor",
		LogLevel: "info",
	}
}

var validModes = map[string]bool{
	"monitor": true,
	"scan":    true,
	"serve":   true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLedgerBackends = map[string]bool{
	"file":     true,
	"postgres": true,
}

// Validate checks the configuration for inconsistencies and returns a
// combined error naming every failed check. The engine itself assumes a
// validated config, so this is the one place degenerate values are caught.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: monitor, scan, serve)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Gamma
	if c.Gamma.Host == "" {
		errs = append(errs, "gamma: host must not be empty")
	}
	if c.Gamma.FetchLimit <= 0 {
		errs = append(errs, "gamma: fetch_limit must be positive")
	}

	// Strategy thresholds. Zero allocations are legal (they simply yield
	// empty tiers); negative ones are not.
	s := c.Strategy
	for _, check := range []struct {
		name  string
		value float64
	}{
		{"p0_allocation", s.P0Allocation},
		{"p1_allocation", s.P1Allocation},
		{"p2_allocation", s.P2Allocation},
		{"p0_max_per_trade", s.P0MaxPerTrade},
		{"p1_max_per_trade", s.P1MaxPerTrade},
		{"p2_max_per_trade", s.P2MaxPerTrade},
		{"p0_min_liquidity", s.P0MinLiquidity},
		{"p1_min_liquidity", s.P1MinLiquidity},
		{"p2_min_liquidity", s.P2MinLiquidity},
		{"daily_loss_limit", s.DailyLossLimit},
		{"cumulative_loss_pause", s.CumulativeLossPause},
	} {
		if check.value < 0 {
			errs = append(errs, fmt.Sprintf("strategy: %s must not be negative", check.name))
		}
	}
	for _, check := range []struct {
		name  string
		value float64
	}{
		{"p0_min_certainty", s.P0MinCertainty},
		{"p1_min_certainty", s.P1MinCertainty},
		{"p2_min_certainty", s.P2MinCertainty},
	} {
		if check.value <= 0 || check.value > 1 {
			errs = append(errs, fmt.Sprintf("strategy: %s must be in (0, 1]", check.name))
		}
	}
	if s.MaxCategoryConcentration <= 0 || s.MaxCategoryConcentration > 1 {
		errs = append(errs, "strategy: max_category_concentration must be in (0, 1]")
	}
	if s.P1TargetMarkets < 1 {
		errs = append(errs, "strategy: p1_target_markets must be >= 1")
	}
	if s.P1MaxDays <= 0 {
		errs = append(errs, "strategy: p1_max_days must be positive")
	}
	if s.P2MaxHours <= 0 {
		errs = append(errs, "strategy: p2_max_hours must be positive")
	}

	// Ledger
	if !validLedgerBackends[strings.ToLower(c.Ledger.Backend)] {
		errs = append(errs, fmt.Sprintf("ledger: unknown backend %q (valid: file, postgres)", c.Ledger.Backend))
	}
	if strings.ToLower(c.Ledger.Backend) == "file" && c.Ledger.Path == "" {
		errs = append(errs, "ledger: path must not be empty for the file backend")
	}
	if strings.ToLower(c.Ledger.Backend) == "postgres" {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty when enabled")
	}
	if strings.ToLower(c.Mode) == "serve" && !c.Redis.Enabled {
		errs = append(errs, "redis: serve mode requires the result cache (set redis.enabled)")
	}

	// S3
	if c.S3.Enabled && c.S3.Bucket == "" {
		errs = append(errs, "s3: bucket must not be empty when enabled")
	}

	// Server
	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	// Notify: token and chat ID must come together.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	// Monitor
	if c.Monitor.Interval.Duration <= 0 {
		errs = append(errs, "monitor: interval must be positive")
	}
	if c.Monitor.DailyResetHourUTC < 0 || c.Monitor.DailyResetHourUTC > 23 {
		errs = append(errs, fmt.Sprintf("monitor: daily_reset_hour_utc must be 0-23, got %d", c.Monitor.DailyResetHourUTC))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
