package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolio_AddTrade(t *testing.T) {
	var p Portfolio

	p.AddTrade(TradeRecord{Tier: TierP0, MarketID: "m1", Amount: 100})
	p.AddTrade(TradeRecord{Tier: TierP1, MarketID: "m2", Amount: 30})
	p.AddTrade(TradeRecord{Tier: TierP1, MarketID: "m3", Amount: 40})

	assert.Equal(t, 170.0, p.TotalInvested)
	assert.Equal(t, 100.0, p.P0Invested)
	assert.Equal(t, 70.0, p.P1Invested)
	assert.Zero(t, p.P2Invested)
	assert.Len(t, p.Positions, 3)
}

func TestPortfolio_InvestedIn(t *testing.T) {
	p := Portfolio{P0Invested: 10, P1Invested: 20, P2Invested: 30}

	assert.Equal(t, 10.0, p.InvestedIn(TierP0))
	assert.Equal(t, 20.0, p.InvestedIn(TierP1))
	assert.Equal(t, 30.0, p.InvestedIn(TierP2))
	assert.Zero(t, p.InvestedIn(Tier("bogus")))
}

func TestStrategyResult_Opportunities(t *testing.T) {
	r := StrategyResult{
		P0: []Opportunity{{MarketID: "a"}},
		P1: []Opportunity{{MarketID: "b"}, {MarketID: "c"}},
		P2: []Opportunity{{MarketID: "d"}},
	}

	all := r.Opportunities()
	require.Len(t, all, 4)
	for i, id := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, id, all[i].MarketID)
	}
}

func TestMarketSnapshot_OutcomeOrder(t *testing.T) {
	s := MarketSnapshot{
		Outcomes:      []string{"B", "A"},
		OutcomePrices: map[string]float64{"A": 0.4, "B": 0.6},
	}
	assert.Equal(t, []string{"B", "A"}, s.OutcomeOrder())

	// Without declared outcomes, every priced outcome is still reachable.
	s.Outcomes = nil
	assert.ElementsMatch(t, []string{"A", "B"}, s.OutcomeOrder())
}
