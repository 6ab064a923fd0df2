package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leowang-dev/polytriage/internal/cache/memory"
	"github.com/leowang-dev/polytriage/internal/domain"
	"github.com/leowang-dev/polytriage/internal/strategy"
)

type memStore struct {
	portfolio domain.Portfolio
}

func (s *memStore) Load(context.Context) (domain.Portfolio, error) { return s.portfolio, nil }

func (s *memStore) Save(_ context.Context, p domain.Portfolio) error {
	s.portfolio = p
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEngine(t *testing.T) *strategy.Engine {
	t.Helper()
	eng, err := strategy.NewEngine(context.Background(), strategy.Config{
		TotalCapital: 1000,
		P0Allocation: 300,
		P1Allocation: 500,
		P2Allocation: 200,
	}, &memStore{}, testLogger())
	require.NoError(t, err)
	return eng
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// --- result ---

func TestGetResult_NoneYet(t *testing.T) {
	h := NewResultHandler(memory.NewResultCache(), testLogger())

	rec := httptest.NewRecorder()
	h.GetResult(rec, httptest.NewRequest(http.MethodGet, "/api/result", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetResult(t *testing.T) {
	cache := memory.NewResultCache()
	require.NoError(t, cache.SetResult(context.Background(), domain.StrategyResult{
		RunID:  "run-1",
		Status: domain.StatusActive,
	}))
	h := NewResultHandler(cache, testLogger())

	rec := httptest.NewRecorder()
	h.GetResult(rec, httptest.NewRequest(http.MethodGet, "/api/result", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.StrategyResult
	decodeBody(t, rec, &got)
	assert.Equal(t, "run-1", got.RunID)
}

func TestListOpportunities_TierFilter(t *testing.T) {
	cache := memory.NewResultCache()
	require.NoError(t, cache.SetResult(context.Background(), domain.StrategyResult{
		RunID: "run-1",
		P0:    []domain.Opportunity{{Tier: domain.TierP0, MarketID: "m0"}},
		P1:    []domain.Opportunity{{Tier: domain.TierP1, MarketID: "m1"}},
		P2:    []domain.Opportunity{{Tier: domain.TierP2, MarketID: "m2"}},
	}))
	h := NewResultHandler(cache, testLogger())

	rec := httptest.NewRecorder()
	h.ListOpportunities(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities?tier=P1_HIGH_CERTAINTY", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		RunID         string               `json:"run_id"`
		Opportunities []domain.Opportunity `json:"opportunities"`
	}
	decodeBody(t, rec, &got)
	assert.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Opportunities, 1)
	assert.Equal(t, "m1", got.Opportunities[0].MarketID)
}

func TestListOpportunities_AllTiers(t *testing.T) {
	cache := memory.NewResultCache()
	require.NoError(t, cache.SetResult(context.Background(), domain.StrategyResult{
		P0: []domain.Opportunity{{MarketID: "m0"}},
		P2: []domain.Opportunity{{MarketID: "m2"}},
	}))
	h := NewResultHandler(cache, testLogger())

	rec := httptest.NewRecorder()
	h.ListOpportunities(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Opportunities []domain.Opportunity `json:"opportunities"`
	}
	decodeBody(t, rec, &got)
	assert.Len(t, got.Opportunities, 2)
}

func TestListOpportunities_UnknownTier(t *testing.T) {
	cache := memory.NewResultCache()
	require.NoError(t, cache.SetResult(context.Background(), domain.StrategyResult{}))
	h := NewResultHandler(cache, testLogger())

	rec := httptest.NewRecorder()
	h.ListOpportunities(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities?tier=P9", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- portfolio ---

func TestRecordTrade(t *testing.T) {
	h := NewPortfolioHandler(testEngine(t), testLogger())

	body := `{"tier":"P0_DETERMINED","market_id":"m1","outcome":"Yes","amount":100,"price":0.997}`
	rec := httptest.NewRecorder()
	h.RecordTrade(rec, httptest.NewRequest(http.MethodPost, "/api/trades", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var got domain.Portfolio
	decodeBody(t, rec, &got)
	assert.Equal(t, 100.0, got.TotalInvested)
	assert.Equal(t, 100.0, got.P0Invested)
}

func TestRecordTrade_Invalid(t *testing.T) {
	h := NewPortfolioHandler(testEngine(t), testLogger())

	cases := []string{
		`{not json`,
		`{"tier":"P9","market_id":"m1","amount":100}`,
		`{"tier":"P0_DETERMINED","market_id":"","amount":100}`,
		`{"tier":"P0_DETERMINED","market_id":"m1","amount":0}`,
	}
	for _, body := range cases {
		rec := httptest.NewRecorder()
		h.RecordTrade(rec, httptest.NewRequest(http.MethodPost, "/api/trades", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestRecordPnL(t *testing.T) {
	h := NewPortfolioHandler(testEngine(t), testLogger())

	rec := httptest.NewRecorder()
	h.RecordPnL(rec, httptest.NewRequest(http.MethodPost, "/api/pnl", strings.NewReader(`{"amount":-40}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Portfolio
	decodeBody(t, rec, &got)
	assert.Equal(t, -40.0, got.DailyPnL)
	assert.Equal(t, -40.0, got.CumulativePnL)
}

func TestGetPortfolio(t *testing.T) {
	eng := testEngine(t)
	require.NoError(t, eng.RecordTrade(context.Background(), domain.TierP2, "m1", "Yes", 20, 0.96))
	h := NewPortfolioHandler(eng, testLogger())

	rec := httptest.NewRecorder()
	h.GetPortfolio(rec, httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Portfolio
	decodeBody(t, rec, &got)
	assert.Equal(t, 20.0, got.P2Invested)
}
