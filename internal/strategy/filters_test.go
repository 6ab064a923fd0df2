package strategy

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leowang-dev/polytriage/internal/domain"
)

func testConfig() Config {
	return Config{
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
		ExcludeKeywords:          []string{"nba", "nfl"},
	}
}

func snap(id, question string, prices map[string]float64, outcomes []string, liquidity, hoursLeft float64) domain.MarketSnapshot {
	return domain.MarketSnapshot{
		ID:            id,
		Question:      question,
		Outcomes:      outcomes,
		OutcomePrices: prices,
		Liquidity:     liquidity,
		HoursLeft:     hoursLeft,
		EndTime:       time.Now().UTC().Add(time.Duration(hoursLeft * float64(time.Hour))),
	}
}

func yesNo(yes float64) map[string]float64 {
	return map[string]float64{"Yes": yes, "No": 1 - yes}
}

// --- FindP0 ---

func TestFindP0_SingleQualifyingMarket(t *testing.T) {
	cfg := testConfig()
	snaps := []domain.MarketSnapshot{
		snap("m1", "Will the treaty be signed?", yesNo(0.997), []string{"Yes", "No"}, 50_000, 5),
	}

	opps := FindP0(snaps, cfg, 0)
	require.Len(t, opps, 1)

	opp := opps[0]
	assert.Equal(t, domain.TierP0, opp.Tier)
	assert.Equal(t, "m1", opp.MarketID)
	assert.Equal(t, "Yes", opp.Outcome)
	assert.Equal(t, 0.997, opp.Price)
	assert.Equal(t, 100.0, opp.SuggestedAmount)
	assert.InDelta(t, 0.3009, opp.ExpectedReturn, 0.001)
}

func TestFindP0_ExhaustedAllocation(t *testing.T) {
	cfg := testConfig()
	snaps := []domain.MarketSnapshot{
		snap("m1", "Will the treaty be signed?", yesNo(0.997), []string{"Yes", "No"}, 50_000, 5),
	}

	assert.Empty(t, FindP0(snaps, cfg, cfg.P0Allocation))
	assert.Empty(t, FindP0(snaps, cfg, cfg.P0Allocation+50))
}

func TestFindP0_BelowThresholds(t *testing.T) {
	cfg := testConfig()

	// Certainty below 0.995.
	low := snap("m1", "q", yesNo(0.99), []string{"Yes", "No"}, 50_000, 5)
	assert.Empty(t, FindP0([]domain.MarketSnapshot{low}, cfg, 0))

	// Liquidity below 10k.
	thin := snap("m2", "q", yesNo(0.997), []string{"Yes", "No"}, 9_999, 5)
	assert.Empty(t, FindP0([]domain.MarketSnapshot{thin}, cfg, 0))

	// Already ended.
	ended := snap("m3", "q", yesNo(0.997), []string{"Yes", "No"}, 50_000, 0)
	assert.Empty(t, FindP0([]domain.MarketSnapshot{ended}, cfg, 0))
}

func TestFindP0_ExclusionKeywords(t *testing.T) {
	cfg := testConfig()
	snaps := []domain.MarketSnapshot{
		snap("m1", "Will the NBA finals go to game seven?", yesNo(0.997), []string{"Yes", "No"}, 50_000, 5),
	}
	assert.Empty(t, FindP0(snaps, cfg, 0))
}

func TestFindP0_LiquidityParticipationCap(t *testing.T) {
	cfg := testConfig()
	// 5% of 10k liquidity is 500, well above the 100 per-trade cap, so the
	// cap wins; at 1k liquidity the market would fail the floor anyway.
	snaps := []domain.MarketSnapshot{
		snap("m1", "q", yesNo(0.996), []string{"Yes", "No"}, 10_000, 5),
	}
	opps := FindP0(snaps, cfg, 0)
	require.Len(t, opps, 1)
	assert.Equal(t, 100.0, opps[0].SuggestedAmount)

	// With only 15 of allocation remaining, available wins the min.
	opps = FindP0(snaps, cfg, cfg.P0Allocation-15)
	require.Len(t, opps, 1)
	assert.Equal(t, 15.0, opps[0].SuggestedAmount)

	// Below the floor the opportunity is dropped, not emitted tiny.
	assert.Empty(t, FindP0(snaps, cfg, cfg.P0Allocation-9))
}

func TestFindP0_RankedByRiskScoreAndCapped(t *testing.T) {
	cfg := testConfig()
	var snaps []domain.MarketSnapshot
	for i := 0; i < 15; i++ {
		// Increasing liquidity means decreasing risk score.
		snaps = append(snaps, snap(
			fmt.Sprintf("m%d", i), fmt.Sprintf("question %d", i),
			yesNo(0.996), []string{"Yes", "No"},
			10_000+float64(i)*5_000, 5,
		))
	}

	opps := FindP0(snaps, cfg, 0)
	require.Len(t, opps, 10)
	assert.Equal(t, "m14", opps[0].MarketID)
	for i := 1; i < len(opps); i++ {
		assert.LessOrEqual(t, opps[i-1].RiskScore, opps[i].RiskScore)
	}
}

// --- FindP1 ---

func TestFindP1_SizingWithinBounds(t *testing.T) {
	cfg := testConfig()
	snaps := []domain.MarketSnapshot{
		snap("m1", "Will the incumbent win the election?", yesNo(0.985), []string{"Yes", "No"}, 100_000, 24*30),
	}

	opps := FindP1(snaps, cfg, 0)
	require.Len(t, opps, 1)

	// available/target = 500/15 = 33.33, within [min, max] and under the
	// 2% liquidity share.
	assert.InDelta(t, 33.33, opps[0].SuggestedAmount, 0.01)
	assert.Equal(t, domain.TierP1, opps[0].Tier)
}

func TestFindP1_HorizonFilter(t *testing.T) {
	cfg := testConfig()
	cfg.P1MaxDays = 30

	within := snap("m1", "q", yesNo(0.985), []string{"Yes", "No"}, 100_000, 29*24)
	beyond := snap("m2", "q", yesNo(0.985), []string{"Yes", "No"}, 100_000, 31*24)

	opps := FindP1([]domain.MarketSnapshot{within, beyond}, cfg, 0)
	require.Len(t, opps, 1)
	assert.Equal(t, "m1", opps[0].MarketID)
}

func TestFindP1_RankedByCertaintyThenLiquidity(t *testing.T) {
	cfg := testConfig()
	snaps := []domain.MarketSnapshot{
		snap("m1", "a", yesNo(0.982), []string{"Yes", "No"}, 60_000, 100),
		snap("m2", "b", yesNo(0.99), []string{"Yes", "No"}, 60_000, 100),
		snap("m3", "c", yesNo(0.982), []string{"Yes", "No"}, 90_000, 100),
	}

	opps := FindP1(snaps, cfg, 0)
	require.Len(t, opps, 3)
	assert.Equal(t, "m2", opps[0].MarketID)
	assert.Equal(t, "m3", opps[1].MarketID)
	assert.Equal(t, "m1", opps[2].MarketID)
}

func TestFindP1_DropsBelowMinPerTrade(t *testing.T) {
	cfg := testConfig()
	cfg.P1MinLiquidity = 1_000
	// 2% of 1.2k liquidity is 24, below the 25 per-trade minimum.
	snaps := []domain.MarketSnapshot{
		snap("m1", "q", yesNo(0.985), []string{"Yes", "No"}, 1_200, 100),
	}
	assert.Empty(t, FindP1(snaps, cfg, 0))
}

// --- FindP2 ---

func TestFindP2_EndgameSizing(t *testing.T) {
	cfg := testConfig()
	snaps := []domain.MarketSnapshot{
		snap("m1", "Will the match finish today?", yesNo(0.96), []string{"Yes", "No"}, 5_000, 3),
	}

	opps := FindP2(snaps, cfg, 0)
	require.Len(t, opps, 1)

	// min(20, 200/10, 5000*0.02) = min(20, 20, 100) = 20.
	assert.Equal(t, 20.0, opps[0].SuggestedAmount)
	assert.Equal(t, domain.TierP2, opps[0].Tier)
}

func TestFindP2_HoursWindow(t *testing.T) {
	cfg := testConfig()
	tooFar := snap("m1", "q", yesNo(0.96), []string{"Yes", "No"}, 5_000, 7)
	ended := snap("m2", "q", yesNo(0.96), []string{"Yes", "No"}, 5_000, -1)
	ok := snap("m3", "q", yesNo(0.96), []string{"Yes", "No"}, 5_000, 5.9)

	opps := FindP2([]domain.MarketSnapshot{tooFar, ended, ok}, cfg, 0)
	require.Len(t, opps, 1)
	assert.Equal(t, "m3", opps[0].MarketID)
}

func TestFindP2_RankedByUrgency(t *testing.T) {
	cfg := testConfig()
	snaps := []domain.MarketSnapshot{
		snap("m1", "a", yesNo(0.96), []string{"Yes", "No"}, 5_000, 5),
		snap("m2", "b", yesNo(0.96), []string{"Yes", "No"}, 5_000, 1),
		snap("m3", "c", yesNo(0.96), []string{"Yes", "No"}, 5_000, 3),
	}

	opps := FindP2(snaps, cfg, 0)
	require.Len(t, opps, 3)
	assert.Equal(t, "m2", opps[0].MarketID)
	assert.Equal(t, "m3", opps[1].MarketID)
	assert.Equal(t, "m1", opps[2].MarketID)
}

// --- outcome selection ---

func TestBestQualifyingOutcome_MaxPrice(t *testing.T) {
	s := snap("m1", "q", map[string]float64{"A": 0.96, "B": 0.97, "C": 0.01}, []string{"A", "B", "C"}, 5_000, 3)
	outcome, price, ok := bestQualifyingOutcome(s, 0.95)
	require.True(t, ok)
	assert.Equal(t, "B", outcome)
	assert.Equal(t, 0.97, price)
}

func TestBestQualifyingOutcome_TieBreaksByDeclaredOrder(t *testing.T) {
	s := snap("m1", "q", map[string]float64{"A": 0.96, "B": 0.96}, []string{"B", "A"}, 5_000, 3)
	outcome, _, ok := bestQualifyingOutcome(s, 0.95)
	require.True(t, ok)
	assert.Equal(t, "B", outcome)
}

func TestBestQualifyingOutcome_NoneQualify(t *testing.T) {
	s := snap("m1", "q", yesNo(0.5), []string{"Yes", "No"}, 5_000, 3)
	_, _, ok := bestQualifyingOutcome(s, 0.95)
	assert.False(t, ok)
}

// --- scoring helpers ---

func TestExpectedReturn(t *testing.T) {
	assert.InDelta(t, 0.3009, expectedReturn(0.997), 0.001)
	assert.InDelta(t, 100.0, expectedReturn(0.5), 0.001)
	assert.Equal(t, 0.0, expectedReturn(0))
	assert.Equal(t, 0.0, expectedReturn(-0.1))
}

func TestRiskScore(t *testing.T) {
	// Perfect certainty, instant settlement, deep market: zero risk.
	assert.InDelta(t, 0.0, riskScore(1.0, 0, 100_000), 0.0001)

	// Time component saturates at 10.
	assert.InDelta(t, 10.0, riskScore(1.0, 24*20, 100_000), 0.0001)

	// Thin markets add up to 20.
	assert.InDelta(t, 20.0, riskScore(1.0, 0, 0), 0.0001)

	// Certainty term: (1-0.95)*50 = 2.5.
	assert.InDelta(t, 2.5, riskScore(0.95, 0, 100_000), 0.0001)
}
