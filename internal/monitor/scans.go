// Package monitor runs the periodic scan cycle: fetch markets, analyze
// them through the tier engine, attach reference scans, and fan the
// resulting report out to the cache, the archive, and the notifiers.
package monitor

import (
	"fmt"
	"sort"

	"github.com/leowang-dev/polytriage/internal/domain"
	"github.com/leowang-dev/polytriage/internal/strategy"
)

// Reference scan thresholds. These mirror the tier filters' reporting
// side: reference markets are informational only and never sized.
const (
	endgameHorizonHours  = 24.0
	endgameMinLiquidity  = 1000.0
	highLiqThreshold     = 100000.0
	politicsMinLiquidity = 5000.0
	politicsThreshold    = 0.98
)

// EndgameMarkets returns markets closing within the endgame horizon with
// meaningful liquidity, soonest first. Score rewards both urgency and
// depth so report consumers can sort either way.
func EndgameMarkets(snapshots []domain.MarketSnapshot) []domain.ReferenceMarket {
	var out []domain.ReferenceMarket
	for _, snap := range snapshots {
		if snap.HoursLeft <= 0 || snap.HoursLeft > endgameHorizonHours {
			continue
		}
		if snap.Liquidity <= endgameMinLiquidity {
			continue
		}

		timeScore := max(0, (endgameHorizonHours-snap.HoursLeft)/endgameHorizonHours) * 50
		liqScore := min(50, snap.Liquidity/10000)

		reason := "closing soon"
		if outcome, price, ok := leadingOutcome(snap); ok {
			reason = fmt.Sprintf("leading: %s @ %.1f%%", outcome, price*100)
		}

		out = append(out, domain.ReferenceMarket{
			MarketID:  snap.ID,
			Question:  snap.Question,
			Prices:    snap.OutcomePrices,
			Liquidity: snap.Liquidity,
			Volume:    snap.Volume,
			HoursLeft: snap.HoursLeft,
			Score:     timeScore + liqScore,
			Reason:    reason,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].HoursLeft < out[j].HoursLeft
	})
	return out
}

// HighLiquidityMarkets returns deep markets whose price is still genuinely
// contested, deepest first. Markets already priced near 0 or 1 are
// skipped; their spread carries no information.
func HighLiquidityMarkets(snapshots []domain.MarketSnapshot) []domain.ReferenceMarket {
	var out []domain.ReferenceMarket
	for _, snap := range snapshots {
		if snap.Liquidity < highLiqThreshold {
			continue
		}
		if len(snap.OutcomePrices) < 2 {
			continue
		}

		order := snap.OutcomeOrder()
		if len(order) < 2 {
			continue
		}
		first := snap.OutcomePrices[order[0]]
		second := snap.OutcomePrices[order[1]]
		spread := first - second
		if spread < 0 {
			spread = -spread
		}

		if min(first, second) <= 0.2 || min(first, second) >= 0.8 {
			continue
		}

		out = append(out, domain.ReferenceMarket{
			MarketID:  snap.ID,
			Question:  snap.Question,
			Prices:    snap.OutcomePrices,
			Liquidity: snap.Liquidity,
			Volume:    snap.Volume,
			HoursLeft: snap.HoursLeft,
			Score:     snap.Liquidity/10000 + spread*100,
			Reason:    fmt.Sprintf("spread: %.1f%% | liquidity: $%.0f", spread*100, snap.Liquidity),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Liquidity > out[j].Liquidity
	})
	return out
}

// HighCertaintyPolitics returns political markets with a near-settled
// outcome, most certain first. Classification reuses the strategy
// categorizer so the scan and the diversifier agree on what counts as
// politics.
func HighCertaintyPolitics(snapshots []domain.MarketSnapshot) []domain.ReferenceMarket {
	var out []domain.ReferenceMarket
	for _, snap := range snapshots {
		if snap.Liquidity < politicsMinLiquidity {
			continue
		}
		if strategy.Categorize(snap.Question) != domain.CategoryPolitics {
			continue
		}

		for _, outcome := range snap.OutcomeOrder() {
			price := snap.OutcomePrices[outcome]
			if price < politicsThreshold {
				continue
			}
			out = append(out, domain.ReferenceMarket{
				MarketID:  snap.ID,
				Question:  snap.Question,
				Prices:    snap.OutcomePrices,
				Liquidity: snap.Liquidity,
				Volume:    snap.Volume,
				HoursLeft: snap.HoursLeft,
				Score:     price * 100,
				Reason:    fmt.Sprintf("%s @ %.1f%% certainty", outcome, price*100),
			})
			break // one entry per market
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Liquidity > out[j].Liquidity
	})
	return out
}

// leadingOutcome returns the outcome with the highest price.
func leadingOutcome(snap domain.MarketSnapshot) (string, float64, bool) {
	var (
		best      string
		bestPrice float64
		found     bool
	)
	for _, outcome := range snap.OutcomeOrder() {
		price := snap.OutcomePrices[outcome]
		if !found || price > bestPrice {
			best, bestPrice, found = outcome, price, true
		}
	}
	return best, bestPrice, found
}
