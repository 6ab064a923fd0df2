package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leowang-dev/polytriage/internal/domain"
	"github.com/leowang-dev/polytriage/internal/notify"
	"github.com/leowang-dev/polytriage/internal/strategy"
)

// Options configures the monitor loop.
type Options struct {
	// Interval between scan cycles.
	Interval time.Duration
	// DailyResetHourUTC is the UTC hour at which the daily PnL counter
	// is zeroed.
	DailyResetHourUTC int
	// ReportPath, when non-empty, receives the latest report as JSON
	// after every cycle.
	ReportPath string
}

// Monitor drives the periodic scan cycle. The cache, archiver, and
// notifier are optional; a nil value disables that sink.
type Monitor struct {
	provider domain.SnapshotProvider
	engine   *strategy.Engine
	cache    domain.ResultCache
	archiver domain.ReportArchiver
	notifier *notify.Notifier
	opts     Options
	logger   *slog.Logger
	onResult func(domain.StrategyResult)

	lastReset time.Time
}

// OnResult registers a callback invoked with each cycle's result, after
// the sinks have been fed. Used to push results to WebSocket clients.
// Must be called before Run.
func (m *Monitor) OnResult(fn func(domain.StrategyResult)) {
	m.onResult = fn
}

// New creates a Monitor.
func New(
	provider domain.SnapshotProvider,
	engine *strategy.Engine,
	cache domain.ResultCache,
	archiver domain.ReportArchiver,
	notifier *notify.Notifier,
	opts Options,
	logger *slog.Logger,
) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	// A restart mid-day must not wipe the daily loss counter, so the
	// first reset can only fire on the following UTC day.
	now := time.Now().UTC()
	return &Monitor{
		provider: provider,
		engine:   engine,
		cache:    cache,
		archiver: archiver,
		notifier: notifier,
		opts:     opts,
		logger:   logger.With(slog.String("component", "monitor")),

		lastReset: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
}

// Run executes scan cycles until the context is cancelled. The first
// cycle runs immediately. Cycle errors are logged, never fatal: a failed
// fetch must not stop the loop.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.InfoContext(ctx, "monitor started",
		slog.Duration("interval", m.opts.Interval),
	)

	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		m.maybeResetDaily(ctx)

		if _, err := m.RunCycle(ctx); err != nil {
			m.logger.ErrorContext(ctx, "scan cycle failed",
				slog.String("error", err.Error()),
			)
		}

		select {
		case <-ctx.Done():
			m.logger.InfoContext(ctx, "monitor stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunCycle performs one fetch-analyze-report pass and fans the report out
// to the configured sinks. Sink failures are reported but do not abort
// the cycle; the report is already built.
func (m *Monitor) RunCycle(ctx context.Context) (domain.Report, error) {
	started := time.Now()

	snapshots, err := m.provider.Snapshots(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("monitor: fetch snapshots: %w", err)
	}

	result := m.engine.Analyze(snapshots)
	report := BuildReport(result, snapshots)

	m.logger.InfoContext(ctx, "scan cycle complete",
		slog.Int("markets", len(snapshots)),
		slog.Int("p0", report.Summary.P0Count),
		slog.Int("p1", report.Summary.P1Count),
		slog.Int("p2", report.Summary.P2Count),
		slog.String("status", string(result.Status)),
		slog.Duration("elapsed", time.Since(started)),
	)

	// Fan out to the sinks concurrently; each failure surfaces in the
	// combined error without blocking the others.
	g, gctx := errgroup.WithContext(ctx)

	if m.cache != nil {
		g.Go(func() error {
			if err := m.cache.SetResult(gctx, result); err != nil {
				return fmt.Errorf("cache result: %w", err)
			}
			if err := m.cache.SetSnapshots(gctx, snapshots); err != nil {
				return fmt.Errorf("cache snapshots: %w", err)
			}
			return nil
		})
	}

	if m.archiver != nil {
		g.Go(func() error {
			key, err := m.archiver.Archive(gctx, report)
			if err != nil {
				return fmt.Errorf("archive report: %w", err)
			}
			m.logger.DebugContext(gctx, "report archived", slog.String("key", key))
			return nil
		})
	}

	if m.opts.ReportPath != "" {
		g.Go(func() error {
			if err := writeReportFile(m.opts.ReportPath, report); err != nil {
				return fmt.Errorf("write report file: %w", err)
			}
			return nil
		})
	}

	if m.notifier != nil {
		g.Go(func() error {
			return m.sendAlerts(gctx, report)
		})
	}

	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("monitor: %w", err)
	}

	if m.onResult != nil {
		m.onResult(result)
	}
	return report, nil
}

// BuildReport assembles the full cycle report from an analysis result and
// the snapshot batch it was produced from.
func BuildReport(result domain.StrategyResult, snapshots []domain.MarketSnapshot) domain.Report {
	endgame := EndgameMarkets(snapshots)
	politics := HighCertaintyPolitics(snapshots)
	highLiq := HighLiquidityMarkets(snapshots)

	return domain.Report{
		Timestamp: result.Timestamp,
		Summary: domain.ReportSummary{
			EndgameCount:       len(endgame),
			HighLiquidityCount: len(highLiq),
			PoliticsCount:      len(politics),
			P0Count:            len(result.P0),
			P1Count:            len(result.P1),
			P2Count:            len(result.P2),
		},
		Strategy:      result,
		Endgame:       endgame,
		Politics:      politics,
		HighLiquidity: highLiq,
	}
}

// sendAlerts delivers the cycle's notifications. P0 findings and
// circuit-breaker trips go out as dedicated alerts; quiet cycles send a
// plain report so operators know the loop is alive.
func (m *Monitor) sendAlerts(ctx context.Context, report domain.Report) error {
	if report.Strategy.Status == domain.StatusPaused {
		title, msg := notify.FormatRiskPaused(report.Strategy.RiskStatus)
		return m.notifier.Notify(ctx, notify.EventRiskPaused, title, msg)
	}

	sent := false

	if len(report.Strategy.P0) > 0 {
		title, msg := notify.FormatTierAlert(domain.TierP0, report.Strategy.P0)
		if err := m.notifier.Notify(ctx, notify.EventP0Alert, title, msg); err != nil {
			return err
		}
		sent = true
	}

	if len(report.Strategy.P2) > 0 {
		title, msg := notify.FormatTierAlert(domain.TierP2, report.Strategy.P2)
		if err := m.notifier.Notify(ctx, notify.EventEndgame, title, msg); err != nil {
			return err
		}
		sent = true
	}

	if !sent {
		title, msg := notify.FormatCycleReport(report)
		return m.notifier.Notify(ctx, notify.EventCycleReport, title, msg)
	}
	return nil
}

// maybeResetDaily zeroes the engine's daily PnL counter once per UTC day,
// at or after the configured hour.
func (m *Monitor) maybeResetDaily(ctx context.Context) {
	now := time.Now().UTC()
	if now.Hour() < m.opts.DailyResetHourUTC {
		return
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !m.lastReset.Before(today) {
		return
	}

	if err := m.engine.ResetDailyPnL(ctx); err != nil {
		m.logger.ErrorContext(ctx, "daily reset failed",
			slog.String("error", err.Error()),
		)
		return
	}

	m.lastReset = today
	m.logger.InfoContext(ctx, "daily pnl reset")
}

func writeReportFile(path string, report domain.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
