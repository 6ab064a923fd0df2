package domain

import "time"

// Tier identifies one of the three independent risk buckets.
type Tier string

const (
	// TierP0 holds effectively decided events awaiting settlement.
	TierP0 Tier = "P0_DETERMINED"
	// TierP1 holds high-certainty markets spread across categories.
	TierP1 Tier = "P1_HIGH_CERTAINTY"
	// TierP2 holds short-dated endgame markets.
	TierP2 Tier = "P2_ENDGAME"
)

// Category labels a market by its subject, used for diversification
// and reporting.
type Category string

const (
	CategoryPolitics      Category = "politics"
	CategorySports        Category = "sports"
	CategoryCrypto        Category = "crypto"
	CategoryEconomy       Category = "economy"
	CategoryTech          Category = "tech"
	CategoryEntertainment Category = "entertainment"
	CategoryOther         Category = "other"
)

// Opportunity is a single tradable candidate emitted by a tier filter.
// Opportunities are produced fresh on every analysis and never persisted.
type Opportunity struct {
	Tier            Tier     `json:"tier"`
	MarketID        string   `json:"market_id"`
	Question        string   `json:"question"`
	Outcome         string   `json:"outcome"`
	Price           float64  `json:"price"`
	Certainty       float64  `json:"certainty"`
	Liquidity       float64  `json:"liquidity"`
	HoursLeft       float64  `json:"hours_left"`
	SuggestedAmount float64  `json:"suggested_amount"`
	ExpectedReturn  float64  `json:"expected_return"`
	Reason          string   `json:"reason"`
	Category        Category `json:"category"`
	RiskScore       float64  `json:"risk_score"`
}

// AnalysisStatus is the outcome of a strategy run: either a normal result
// or a circuit-breaker pause. There is no third state.
type AnalysisStatus string

const (
	StatusActive AnalysisStatus = "active"
	StatusPaused AnalysisStatus = "paused"
)

// RiskStatus is the circuit breaker's verdict, recomputed from the live
// portfolio on every analysis. It is a view, never stored.
type RiskStatus struct {
	Paused          bool    `json:"paused"`
	Reason          string  `json:"reason"`
	DailyLoss       float64 `json:"daily_loss"`
	CumulativeLoss  float64 `json:"cumulative_loss"`
	DailyLimit      float64 `json:"daily_limit"`
	CumulativeLimit float64 `json:"cumulative_limit"`
}

// Summary aggregates per-tier counts, suggested spend, and average
// certainty for one analysis run.
type Summary struct {
	P0Count          int     `json:"p0_count"`
	P1Count          int     `json:"p1_count"`
	P2Count          int     `json:"p2_count"`
	P0TotalSuggested float64 `json:"p0_total_suggested"`
	P1TotalSuggested float64 `json:"p1_total_suggested"`
	P2TotalSuggested float64 `json:"p2_total_suggested"`
	P0AvgCertainty   float64 `json:"p0_avg_certainty"`
	P1AvgCertainty   float64 `json:"p1_avg_certainty"`
	P2AvgCertainty   float64 `json:"p2_avg_certainty"`
}

// ConfigEcho repeats the capital allocations the run was computed under,
// so report consumers can interpret the suggested amounts.
type ConfigEcho struct {
	TotalCapital float64 `json:"total_capital"`
	P0Allocation float64 `json:"p0_allocation"`
	P1Allocation float64 `json:"p1_allocation"`
	P2Allocation float64 `json:"p2_allocation"`
}

// StrategyResult is the full output of one Analyze call.
type StrategyResult struct {
	RunID      string         `json:"run_id"`
	Status     AnalysisStatus `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Summary    Summary        `json:"summary"`
	P0         []Opportunity  `json:"p0"`
	P1         []Opportunity  `json:"p1"`
	P2         []Opportunity  `json:"p2"`
	Portfolio  Portfolio      `json:"portfolio"`
	RiskStatus RiskStatus     `json:"risk_status"`
	Config     ConfigEcho     `json:"config"`
}

// Opportunities returns all tiers concatenated in P0, P1, P2 order.
func (r StrategyResult) Opportunities() []Opportunity {
	out := make([]Opportunity, 0, len(r.P0)+len(r.P1)+len(r.P2))
	out = append(out, r.P0...)
	out = append(out, r.P1...)
	out = append(out, r.P2...)
	return out
}
