package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYTRIAGE_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been
// validated; the caller should invoke Config.Validate() after Load.
//
// A missing file is not an error: the defaults plus environment overrides
// are returned, matching how the original monitor treated its optional
// config file.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYTRIAGE_* environment variables
// and overwrites the corresponding Config fields when a variable is set.
// This lets operators inject secrets at deploy time without touching the
// TOML file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Mode, "POLYTRIAGE_MODE")
	setStr(&cfg.LogLevel, "POLYTRIAGE_LOG_LEVEL")

	// --- Gamma ---
	setStr(&cfg.Gamma.Host, "POLYTRIAGE_GAMMA_HOST")
	setInt(&cfg.Gamma.FetchLimit, "POLYTRIAGE_GAMMA_FETCH_LIMIT")

	// --- Strategy ---
	setFloat64(&cfg.Strategy.TotalCapital, "POLYTRIAGE_STRATEGY_TOTAL_CAPITAL")
	setFloat64(&cfg.Strategy.P0Allocation, "POLYTRIAGE_STRATEGY_P0_ALLOCATION")
	setFloat64(&cfg.Strategy.P1Allocation, "POLYTRIAGE_STRATEGY_P1_ALLOCATION")
	setFloat64(&cfg.Strategy.P2Allocation, "POLYTRIAGE_STRATEGY_P2_ALLOCATION")
	setFloat64(&cfg.Strategy.DailyLossLimit, "POLYTRIAGE_STRATEGY_DAILY_LOSS_LIMIT")
	setFloat64(&cfg.Strategy.CumulativeLossPause, "POLYTRIAGE_STRATEGY_CUMULATIVE_LOSS_PAUSE")
	setStringSlice(&cfg.Strategy.ExcludeKeywords, "POLYTRIAGE_STRATEGY_EXCLUDE_KEYWORDS")

	// --- Ledger ---
	setStr(&cfg.Ledger.Backend, "POLYTRIAGE_LEDGER_BACKEND")
	setStr(&cfg.Ledger.Path, "POLYTRIAGE_LEDGER_PATH")

	// --- Postgres ---
	setStr(&cfg.Postgres.DSN, "POLYTRIAGE_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "POLYTRIAGE_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "POLYTRIAGE_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "POLYTRIAGE_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "POLYTRIAGE_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "POLYTRIAGE_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "POLYTRIAGE_POSTGRES_SSLMODE")

	// --- Redis ---
	setBool(&cfg.Redis.Enabled, "POLYTRIAGE_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "POLYTRIAGE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYTRIAGE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYTRIAGE_REDIS_DB")
	setBool(&cfg.Redis.TLSEnabled, "POLYTRIAGE_REDIS_TLS_ENABLED")

	// --- S3 ---
	setBool(&cfg.S3.Enabled, "POLYTRIAGE_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "POLYTRIAGE_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "POLYTRIAGE_S3_REGION")
	setStr(&cfg.S3.Bucket, "POLYTRIAGE_S3_BUCKET")
	setStr(&cfg.S3.Prefix, "POLYTRIAGE_S3_PREFIX")
	setStr(&cfg.S3.AccessKey, "POLYTRIAGE_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "POLYTRIAGE_S3_SECRET_KEY")

	// --- Monitor ---
	setDuration(&cfg.Monitor.Interval, "POLYTRIAGE_MONITOR_INTERVAL")
	setInt(&cfg.Monitor.DailyResetHourUTC, "POLYTRIAGE_MONITOR_DAILY_RESET_HOUR_UTC")

	// --- Server ---
	setBool(&cfg.Server.Enabled, "POLYTRIAGE_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "POLYTRIAGE_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "POLYTRIAGE_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "POLYTRIAGE_SERVER_CORS_ORIGINS")

	// --- Notify ---
	setStr(&cfg.Notify.TelegramToken, "POLYTRIAGE_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "POLYTRIAGE_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "POLYTRIAGE_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "POLYTRIAGE_NOTIFY_EVENTS")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
