package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leowang-dev/polytriage/internal/domain"
)

// Engine is the orchestrator: it composes the tier filters, the
// diversifier, and the circuit breaker over a persisted portfolio
// ledger. The engine exclusively owns the in-memory Portfolio for the
// lifetime of the process; the injected store is only touched on load
// and on the explicit mutating operations.
//
// Analyze is read-only with respect to the portfolio. RecordTrade,
// RecordPnL, and ResetDailyPnL are invoked by the external execution
// layer once somebody acts on the returned opportunities; Analyze never
// calls them. The mutex serializes those read-modify-write operations
// when the surrounding shell runs them from multiple goroutines; the
// design still assumes no other process writes the same ledger.
type Engine struct {
	cfg    Config
	store  domain.PortfolioStore
	logger *slog.Logger

	mu        sync.Mutex
	portfolio domain.Portfolio
}

// NewEngine creates an Engine and loads the persisted ledger through the
// given store. A store with no ledger yet yields a zeroed portfolio.
func NewEngine(ctx context.Context, cfg Config, store domain.PortfolioStore, logger *slog.Logger) (*Engine, error) {
	portfolio, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("strategy: load portfolio: %w", err)
	}
	return &Engine{
		cfg:       cfg,
		store:     store,
		logger:    logger.With(slog.String("component", "strategy_engine")),
		portfolio: portfolio,
	}, nil
}

// Config returns the configuration the engine runs under.
func (e *Engine) Config() Config { return e.cfg }

// Portfolio returns a copy of the current ledger state.
func (e *Engine) Portfolio() domain.Portfolio {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.portfolio
}

// Analyze evaluates the snapshots and returns the three ranked tier
// lists under the current capital and risk constraints. When the circuit
// breaker is tripped the tier filters are skipped entirely and a paused
// result is returned; there is no third, ambiguous state.
func (e *Engine) Analyze(snapshots []domain.MarketSnapshot) domain.StrategyResult {
	e.mu.Lock()
	portfolio := e.portfolio
	e.mu.Unlock()

	result := domain.StrategyResult{
		RunID:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
		P0:        []domain.Opportunity{},
		P1:        []domain.Opportunity{},
		P2:        []domain.Opportunity{},
		Portfolio: portfolio,
		Config: domain.ConfigEcho{
			TotalCapital: e.cfg.TotalCapital,
			P0Allocation: e.cfg.P0Allocation,
			P1Allocation: e.cfg.P1Allocation,
			P2Allocation: e.cfg.P2Allocation,
		},
	}

	risk := EvaluateRisk(portfolio, e.cfg)
	result.RiskStatus = risk

	if risk.Paused {
		e.logger.Warn("analysis paused by circuit breaker",
			slog.String("reason", risk.Reason),
			slog.Float64("daily_pnl", portfolio.DailyPnL),
			slog.Float64("cumulative_pnl", portfolio.CumulativePnL),
		)
		result.Status = domain.StatusPaused
		result.Reason = risk.Reason
		return result
	}

	// The three tiers are independent: none consumes another's output or
	// capital.
	p0 := FindP0(snapshots, e.cfg, portfolio.P0Invested)
	p1 := Diversify(
		FindP1(snapshots, e.cfg, portfolio.P1Invested),
		e.cfg.P1TargetMarkets,
		e.cfg.MaxCategoryConcentration,
	)
	p2 := FindP2(snapshots, e.cfg, portfolio.P2Invested)

	if p0 != nil {
		result.P0 = p0
	}
	if p1 != nil {
		result.P1 = p1
	}
	if p2 != nil {
		result.P2 = p2
	}

	result.Status = domain.StatusActive
	result.Summary = summarize(result.P0, result.P1, result.P2)

	e.logger.Info("analysis complete",
		slog.String("run_id", result.RunID),
		slog.Int("snapshots", len(snapshots)),
		slog.Int("p0", len(result.P0)),
		slog.Int("p1", len(result.P1)),
		slog.Int("p2", len(result.P2)),
	)
	return result
}

// RecordTrade appends a committed trade to the ledger, updates the
// invested totals, and persists the full ledger. A save failure is
// returned to the caller: silently losing a trade record is worse than
// failing loudly.
func (e *Engine) RecordTrade(ctx context.Context, tier domain.Tier, marketID, outcome string, amount, price float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.portfolio.AddTrade(domain.TradeRecord{
		Tier:      tier,
		MarketID:  marketID,
		Outcome:   outcome,
		Amount:    amount,
		Price:     price,
		Timestamp: time.Now().UTC(),
	})

	if err := e.saveLocked(ctx); err != nil {
		return fmt.Errorf("strategy: record trade: %w", err)
	}

	e.logger.Info("trade recorded",
		slog.String("tier", string(tier)),
		slog.String("market_id", marketID),
		slog.String("outcome", outcome),
		slog.Float64("amount", amount),
		slog.Float64("price", price),
	)
	return nil
}

// RecordPnL adds a signed amount to both the daily and cumulative PnL
// counters and persists the ledger.
func (e *Engine) RecordPnL(ctx context.Context, amount float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.portfolio.DailyPnL += amount
	e.portfolio.CumulativePnL += amount

	if err := e.saveLocked(ctx); err != nil {
		return fmt.Errorf("strategy: record pnl: %w", err)
	}

	e.logger.Info("pnl recorded",
		slog.Float64("amount", amount),
		slog.Float64("daily_pnl", e.portfolio.DailyPnL),
		slog.Float64("cumulative_pnl", e.portfolio.CumulativePnL),
	)
	return nil
}

// ResetDailyPnL zeroes the daily PnL counter and persists the ledger.
// The ledger has no notion of calendar days; an external scheduler calls
// this once per trading day.
func (e *Engine) ResetDailyPnL(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.portfolio.DailyPnL = 0

	if err := e.saveLocked(ctx); err != nil {
		return fmt.Errorf("strategy: reset daily pnl: %w", err)
	}

	e.logger.Info("daily pnl reset")
	return nil
}

// saveLocked stamps and persists the portfolio. Callers must hold e.mu.
func (e *Engine) saveLocked(ctx context.Context) error {
	e.portfolio.LastUpdated = time.Now().UTC()
	return e.store.Save(ctx, e.portfolio)
}

func summarize(p0, p1, p2 []domain.Opportunity) domain.Summary {
	return domain.Summary{
		P0Count:          len(p0),
		P1Count:          len(p1),
		P2Count:          len(p2),
		P0TotalSuggested: totalSuggested(p0),
		P1TotalSuggested: totalSuggested(p1),
		P2TotalSuggested: totalSuggested(p2),
		P0AvgCertainty:   avgCertainty(p0),
		P1AvgCertainty:   avgCertainty(p1),
		P2AvgCertainty:   avgCertainty(p2),
	}
}

func totalSuggested(opps []domain.Opportunity) float64 {
	var sum float64
	for _, o := range opps {
		sum += o.SuggestedAmount
	}
	return sum
}

func avgCertainty(opps []domain.Opportunity) float64 {
	if len(opps) == 0 {
		return 0
	}
	var sum float64
	for _, o := range opps {
		sum += o.Certainty
	}
	return sum / float64(len(opps))
}
