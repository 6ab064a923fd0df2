package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leowang-dev/polytriage/internal/cache/memory"
	"github.com/leowang-dev/polytriage/internal/domain"
	"github.com/leowang-dev/polytriage/internal/strategy"
)

type fakeProvider struct {
	snapshots []domain.MarketSnapshot
	err       error
}

func (p *fakeProvider) Snapshots(context.Context) ([]domain.MarketSnapshot, error) {
	return p.snapshots, p.err
}

type fakeArchiver struct {
	reports []domain.Report
	err     error
}

func (a *fakeArchiver) Archive(_ context.Context, report domain.Report) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.reports = append(a.reports, report)
	return "reports/2026/03/01/report-test.json", nil
}

type memStore struct {
	portfolio domain.Portfolio
}

func (s *memStore) Load(context.Context) (domain.Portfolio, error) { return s.portfolio, nil }

func (s *memStore) Save(_ context.Context, p domain.Portfolio) error {
	s.portfolio = p
	return nil
}

func testEngine(t *testing.T) *strategy.Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng, err := strategy.NewEngine(context.Background(), strategy.Config{
		TotalCapital: 1000,
		P0Allocation: 300, P0MaxPerTrade: 100, P0MinCertainty: 0.995, P0MinLiquidity: 10_000,
		P1Allocation: 500, P1MaxPerTrade: 50, P1MinPerTrade: 25, P1MinCertainty: 0.98,
		P1MinLiquidity: 50_000, P1MaxDays: 365, P1TargetMarkets: 15,
		P2Allocation: 200, P2MaxPerTrade: 20, P2MinCertainty: 0.95, P2MinLiquidity: 5_000, P2MaxHours: 6,
		DailyLossLimit: 100, CumulativeLossPause: 200, MaxCategoryConcentration: 0.30,
	}, &memStore{}, logger)
	require.NoError(t, err)
	return eng
}

func testMonitor(t *testing.T, provider domain.SnapshotProvider, cache domain.ResultCache, archiver domain.ReportArchiver, opts Options) *Monitor {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(provider, testEngine(t), cache, archiver, nil, opts, logger)
}

func TestRunCycle_FansOutToSinks(t *testing.T) {
	provider := &fakeProvider{snapshots: []domain.MarketSnapshot{
		snap("m1", "Will the treaty be signed?", yesNo(0.997), []string{"Yes", "No"}, 50_000, 5),
	}}
	cache := memory.NewResultCache()
	archiver := &fakeArchiver{}
	reportPath := filepath.Join(t.TempDir(), "report.json")

	var pushed []domain.StrategyResult
	mon := testMonitor(t, provider, cache, archiver, Options{ReportPath: reportPath})
	mon.OnResult(func(r domain.StrategyResult) { pushed = append(pushed, r) })

	report, err := mon.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.P0Count)
	assert.Equal(t, domain.StatusActive, report.Strategy.Status)

	// Cache fed.
	cached, err := cache.GetResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.Strategy.RunID, cached.RunID)

	// Archive fed.
	require.Len(t, archiver.reports, 1)

	// Report file written.
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var written domain.Report
	require.NoError(t, json.Unmarshal(data, &written))
	assert.Equal(t, 1, written.Summary.P0Count)

	// WebSocket hook invoked after the sinks.
	require.Len(t, pushed, 1)
	assert.Equal(t, report.Strategy.RunID, pushed[0].RunID)
}

func TestRunCycle_FetchFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("gamma unreachable")}
	mon := testMonitor(t, provider, nil, nil, Options{})

	_, err := mon.RunCycle(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "fetch snapshots")
}

func TestRunCycle_SinkFailureStillReturnsReport(t *testing.T) {
	provider := &fakeProvider{snapshots: []domain.MarketSnapshot{
		snap("m1", "q", yesNo(0.6), []string{"Yes", "No"}, 50_000, 12),
	}}
	archiver := &fakeArchiver{err: errors.New("bucket gone")}
	mon := testMonitor(t, provider, nil, archiver, Options{})

	report, err := mon.RunCycle(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "archive report")
	assert.Equal(t, 1, report.Summary.EndgameCount)
}

func TestBuildReport(t *testing.T) {
	snaps := []domain.MarketSnapshot{
		snap("m1", "Will the senate confirm the nominee?", yesNo(0.99), []string{"Yes", "No"}, 20_000, 100),
		snap("m2", "q2", yesNo(0.55), []string{"Yes", "No"}, 150_000, 100),
		snap("m3", "q3", yesNo(0.6), []string{"Yes", "No"}, 50_000, 12),
	}
	result := domain.StrategyResult{
		P0: []domain.Opportunity{{MarketID: "m1"}},
	}

	report := BuildReport(result, snaps)

	assert.Equal(t, 1, report.Summary.P0Count)
	assert.Equal(t, 1, report.Summary.PoliticsCount)
	assert.Equal(t, 1, report.Summary.HighLiquidityCount)
	assert.Equal(t, 1, report.Summary.EndgameCount)
	require.Len(t, report.Politics, 1)
	assert.Equal(t, "m1", report.Politics[0].MarketID)
}
