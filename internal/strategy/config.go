// Package strategy implements the tiered opportunity engine: three
// independent eligibility filters (P0 determined, P1 high-certainty
// diversified, P2 endgame), a category diversifier, a loss-triggered
// circuit breaker, and the orchestrating engine that composes them over
// a persisted portfolio ledger.
package strategy

// Config holds the tier thresholds, capital allocations, and risk limits
// the engine runs under. The engine assumes a caller-validated config; it
// tolerates degenerate values (a zero allocation yields an empty tier)
// but does not re-validate.
type Config struct {
	TotalCapital float64 `json:"total_capital"`

	P0Allocation   float64 `json:"p0_allocation"`
	P0MaxPerTrade  float64 `json:"p0_max_per_trade"`
	P0MinCertainty float64 `json:"p0_min_certainty"`
	P0MinLiquidity float64 `json:"p0_min_liquidity"`

	P1Allocation    float64 `json:"p1_allocation"`
	P1MaxPerTrade   float64 `json:"p1_max_per_trade"`
	P1MinPerTrade   float64 `json:"p1_min_per_trade"`
	P1MinCertainty  float64 `json:"p1_min_certainty"`
	P1MinLiquidity  float64 `json:"p1_min_liquidity"`
	P1MaxDays       float64 `json:"p1_max_days"`
	P1TargetMarkets int     `json:"p1_target_markets"`

	P2Allocation   float64 `json:"p2_allocation"`
	P2MaxPerTrade  float64 `json:"p2_max_per_trade"`
	P2MinCertainty float64 `json:"p2_min_certainty"`
	P2MinLiquidity float64 `json:"p2_min_liquidity"`
	P2MaxHours     float64 `json:"p2_max_hours"`

	DailyLossLimit           float64 `json:"daily_loss_limit"`
	CumulativeLossPause      float64 `json:"cumulative_loss_pause"`
	MaxCategoryConcentration float64 `json:"max_category_concentration"`

	ExcludeKeywords []string `json:"exclude_keywords"`
}
