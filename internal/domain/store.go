package domain

import (
	"context"
	"time"
)

// PortfolioStore persists the trading ledger. Implementations overwrite
// the full ledger on Save; there is no partial update.
type PortfolioStore interface {
	// Load returns the persisted ledger. A store with no ledger yet
	// returns a zeroed Portfolio and no error; an unreadable ledger is
	// also degraded to a zeroed Portfolio so the engine stays available.
	Load(ctx context.Context) (Portfolio, error)
	// Save writes the full ledger. Failures must be returned, never
	// swallowed: a lost trade record is unacceptable.
	Save(ctx context.Context, p Portfolio) error
}

// ResultCache holds the most recent analysis output for API consumers.
type ResultCache interface {
	SetResult(ctx context.Context, result StrategyResult) error
	GetResult(ctx context.Context) (StrategyResult, error)
	SetSnapshots(ctx context.Context, snaps []MarketSnapshot) error
	GetSnapshots(ctx context.Context) ([]MarketSnapshot, error)
}

// ReportArchiver stores full scan reports in long-term storage and
// returns the key the report was written under.
type ReportArchiver interface {
	Archive(ctx context.Context, report Report) (string, error)
}

// RateLimiter provides distributed rate limiting for the API surface.
type RateLimiter interface {
	// Allow reports whether a request for key is permitted under a
	// sliding window of the given limit, counting it if so.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SnapshotProvider supplies the current market snapshots to analyze.
// The engine itself never fetches; this is the seam to the data layer.
type SnapshotProvider interface {
	Snapshots(ctx context.Context) ([]MarketSnapshot, error)
}
