package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/leowang-dev/polytriage/internal/blob/s3"
	"github.com/leowang-dev/polytriage/internal/cache/memory"
	"github.com/leowang-dev/polytriage/internal/cache/redis"
	"github.com/leowang-dev/polytriage/internal/config"
	"github.com/leowang-dev/polytriage/internal/domain"
	"github.com/leowang-dev/polytriage/internal/notify"
	"github.com/leowang-dev/polytriage/internal/platform/polymarket"
	"github.com/leowang-dev/polytriage/internal/store/file"
	"github.com/leowang-dev/polytriage/internal/store/postgres"
	"github.com/leowang-dev/polytriage/internal/strategy"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	Ledger   domain.PortfolioStore
	Cache    domain.ResultCache
	Limiter  domain.RateLimiter // nil without Redis
	Archiver domain.ReportArchiver
	Provider domain.SnapshotProvider
	Notifier *notify.Notifier
	Engine   *strategy.Engine
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Portfolio ledger ---
	switch strings.ToLower(cfg.Ledger.Backend) {
	case "postgres":
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if err := pgClient.Bootstrap(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres bootstrap: %w", err)
		}
		deps.Ledger = postgres.NewPortfolioStore(pgClient.Pool(), logger)
	default:
		deps.Ledger = file.NewPortfolioStore(cfg.Ledger.Path, logger)
	}

	// --- Result cache ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Cache = redis.NewResultCache(redisClient, 0)
		deps.Limiter = redis.NewRateLimiter(redisClient)
	} else {
		// In-process fallback so the API stays usable without Redis.
		deps.Cache = memory.NewResultCache()
	}

	// --- S3 report archive ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.Archiver = s3blob.NewArchiver(s3Client, cfg.S3.Prefix)
	}

	// --- Market data provider ---
	deps.Provider = polymarket.NewGammaClient(
		cfg.Gamma.Host,
		cfg.Gamma.FetchLimit,
		cfg.Gamma.HTTPTimeout.Duration,
		logger,
	)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Analysis engine ---
	engine, err := strategy.NewEngine(ctx, toStrategyConfig(cfg.Strategy), deps.Ledger, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: engine: %w", err)
	}
	deps.Engine = engine

	return deps, cleanup, nil
}

// toStrategyConfig maps the TOML-facing strategy section onto the engine's
// config type. The engine package stays free of decoding concerns.
func toStrategyConfig(s config.StrategyConfig) strategy.Config {
	return strategy.Config{
		TotalCapital: s.TotalCapital,

		P0Allocation:   s.P0Allocation,
		P0MaxPerTrade:  s.P0MaxPerTrade,
		P0MinCertainty: s.P0MinCertainty,
		P0MinLiquidity: s.P0MinLiquidity,

		P1Allocation:    s.P1Allocation,
		P1MaxPerTrade:   s.P1MaxPerTrade,
		P1MinPerTrade:   s.P1MinPerTrade,
		P1MinCertainty:  s.P1MinCertainty,
		P1MinLiquidity:  s.P1MinLiquidity,
		P1MaxDays:       s.P1MaxDays,
		P1TargetMarkets: s.P1TargetMarkets,

		P2Allocation:   s.P2Allocation,
		P2MaxPerTrade:  s.P2MaxPerTrade,
		P2MinCertainty: s.P2MinCertainty,
		P2MinLiquidity: s.P2MinLiquidity,
		P2MaxHours:     s.P2MaxHours,

		DailyLossLimit:           s.DailyLossLimit,
		CumulativeLossPause:      s.CumulativeLossPause,
		MaxCategoryConcentration: s.MaxCategoryConcentration,

		ExcludeKeywords: s.ExcludeKeywords,
	}
}
