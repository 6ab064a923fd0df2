package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leowang-dev/polytriage/internal/domain"
)

const (
	// tradeFloorUSD is the smallest position worth opening for the P0 and
	// P2 tiers. P1 uses its own configured per-trade minimum.
	tradeFloorUSD = 10.0

	// maxPerTier caps the ranked output of the P0 and P2 filters. The P1
	// list is truncated by the diversifier instead.
	maxPerTier = 10

	// Liquidity participation caps: a suggested position never takes more
	// than this fraction of the market's liquidity.
	p0LiquidityShare = 0.05
	p1LiquidityShare = 0.02
	p2LiquidityShare = 0.02

	// p2SplitWays spreads the remaining P2 allocation across roughly this
	// many positions.
	p2SplitWays = 10
)

// FindP0 scans for effectively decided markets: one outcome priced at or
// above the P0 certainty threshold with deep liquidity. Results are
// ranked by ascending risk score and capped at maxPerTier.
func FindP0(snapshots []domain.MarketSnapshot, cfg Config, invested float64) []domain.Opportunity {
	available := cfg.P0Allocation - invested
	if available <= 0 {
		return nil
	}

	var opps []domain.Opportunity
	for _, snap := range snapshots {
		if isExcluded(snap.Question, cfg.ExcludeKeywords) {
			continue
		}
		if snap.Liquidity < cfg.P0MinLiquidity {
			continue
		}
		if snap.HoursLeft <= 0 {
			continue
		}

		outcome, price, ok := bestQualifyingOutcome(snap, cfg.P0MinCertainty)
		if !ok {
			continue
		}

		suggested := min(cfg.P0MaxPerTrade, available, snap.Liquidity*p0LiquidityShare)
		if suggested < tradeFloorUSD {
			continue
		}

		opps = append(opps, domain.Opportunity{
			Tier:            domain.TierP0,
			MarketID:        snap.ID,
			Question:        snap.Question,
			Outcome:         outcome,
			Price:           price,
			Certainty:       price,
			Liquidity:       snap.Liquidity,
			HoursLeft:       snap.HoursLeft,
			SuggestedAmount: suggested,
			ExpectedReturn:  expectedReturn(price),
			Reason:          fmt.Sprintf("near certain: %s @ %.2f%%", outcome, price*100),
			Category:        Categorize(snap.Question),
			RiskScore:       riskScore(price, snap.HoursLeft, snap.Liquidity),
		})
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].RiskScore < opps[j].RiskScore
	})
	return truncate(opps, maxPerTier)
}

// FindP1 scans for high-certainty markets within the P1 time horizon and
// returns the full candidate list ranked by descending (certainty,
// liquidity). The caller feeds it into Diversify, which enforces the
// category cap and truncates to the target count.
func FindP1(snapshots []domain.MarketSnapshot, cfg Config, invested float64) []domain.Opportunity {
	available := cfg.P1Allocation - invested
	if available <= 0 {
		return nil
	}
	maxHours := cfg.P1MaxDays * 24

	var opps []domain.Opportunity
	for _, snap := range snapshots {
		if isExcluded(snap.Question, cfg.ExcludeKeywords) {
			continue
		}
		if snap.Liquidity < cfg.P1MinLiquidity {
			continue
		}
		if snap.HoursLeft <= 0 || snap.HoursLeft > maxHours {
			continue
		}

		outcome, price, ok := bestQualifyingOutcome(snap, cfg.P1MinCertainty)
		if !ok {
			continue
		}

		perMarket := available
		if cfg.P1TargetMarkets > 0 {
			perMarket = available / float64(cfg.P1TargetMarkets)
		}
		suggested := min(
			cfg.P1MaxPerTrade,
			max(cfg.P1MinPerTrade, perMarket),
			snap.Liquidity*p1LiquidityShare,
		)
		if suggested < cfg.P1MinPerTrade {
			continue
		}

		opps = append(opps, domain.Opportunity{
			Tier:            domain.TierP1,
			MarketID:        snap.ID,
			Question:        snap.Question,
			Outcome:         outcome,
			Price:           price,
			Certainty:       price,
			Liquidity:       snap.Liquidity,
			HoursLeft:       snap.HoursLeft,
			SuggestedAmount: suggested,
			ExpectedReturn:  expectedReturn(price),
			Reason:          fmt.Sprintf("high certainty: %s @ %.1f%%", outcome, price*100),
			Category:        Categorize(snap.Question),
			RiskScore:       riskScore(price, snap.HoursLeft, snap.Liquidity),
		})
	}

	sort.SliceStable(opps, func(i, j int) bool {
		if opps[i].Certainty != opps[j].Certainty {
			return opps[i].Certainty > opps[j].Certainty
		}
		return opps[i].Liquidity > opps[j].Liquidity
	})
	return opps
}

// FindP2 scans for short-dated endgame markets. Results are ranked by
// ascending hours left (most time-critical first) and capped at
// maxPerTier.
func FindP2(snapshots []domain.MarketSnapshot, cfg Config, invested float64) []domain.Opportunity {
	available := cfg.P2Allocation - invested
	if available <= 0 {
		return nil
	}

	var opps []domain.Opportunity
	for _, snap := range snapshots {
		if isExcluded(snap.Question, cfg.ExcludeKeywords) {
			continue
		}
		if snap.Liquidity < cfg.P2MinLiquidity {
			continue
		}
		if snap.HoursLeft <= 0 || snap.HoursLeft > cfg.P2MaxHours {
			continue
		}

		outcome, price, ok := bestQualifyingOutcome(snap, cfg.P2MinCertainty)
		if !ok {
			continue
		}

		suggested := min(cfg.P2MaxPerTrade, available/p2SplitWays, snap.Liquidity*p2LiquidityShare)
		if suggested < tradeFloorUSD {
			continue
		}

		opps = append(opps, domain.Opportunity{
			Tier:            domain.TierP2,
			MarketID:        snap.ID,
			Question:        snap.Question,
			Outcome:         outcome,
			Price:           price,
			Certainty:       price,
			Liquidity:       snap.Liquidity,
			HoursLeft:       snap.HoursLeft,
			SuggestedAmount: suggested,
			ExpectedReturn:  expectedReturn(price),
			Reason:          fmt.Sprintf("endgame: %.1fh left, %s @ %.1f%%", snap.HoursLeft, outcome, price*100),
			Category:        Categorize(snap.Question),
			RiskScore:       riskScore(price, snap.HoursLeft, snap.Liquidity),
		})
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].HoursLeft < opps[j].HoursLeft
	})
	return truncate(opps, maxPerTier)
}

// bestQualifyingOutcome selects, among the outcomes priced at or above
// threshold, the one with the maximum price. Ties are broken by the
// snapshot's declared outcome order, so selection is deterministic even
// for markets quoting several outcomes at the same price. A market
// contributes at most one opportunity per tier.
func bestQualifyingOutcome(snap domain.MarketSnapshot, threshold float64) (string, float64, bool) {
	var (
		bestOutcome string
		bestPrice   float64
		found       bool
	)
	for _, outcome := range snap.OutcomeOrder() {
		price, ok := snap.OutcomePrices[outcome]
		if !ok || price < threshold {
			continue
		}
		if !found || price > bestPrice {
			bestOutcome, bestPrice, found = outcome, price, true
		}
	}
	return bestOutcome, bestPrice, found
}

// isExcluded reports whether the question contains any exclusion keyword
// (case-insensitive substring match).
func isExcluded(question string, keywords []string) bool {
	q := strings.ToLower(question)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(q, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// expectedReturn converts a price to the percentage return of holding the
// position to resolution. A zero price yields 0, never a division blowup.
func expectedReturn(price float64) float64 {
	if price <= 0 {
		return 0
	}
	return (1/price - 1) * 100
}

// riskScore combines certainty, time, and liquidity risk into a 0-100
// figure; lower is better.
func riskScore(price, hoursLeft, liquidity float64) float64 {
	certaintyRisk := (1 - price) * 50

	timeRisk := 0.0
	if hoursLeft > 0 {
		timeRisk = min(10, hoursLeft/24)
	}

	liquidityRisk := max(0, (50_000-liquidity)/50_000*20)

	return certaintyRisk + timeRisk + liquidityRisk
}

func truncate(opps []domain.Opportunity, n int) []domain.Opportunity {
	if len(opps) > n {
		return opps[:n]
	}
	return opps
}
