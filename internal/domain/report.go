package domain

import "time"

// ReferenceMarket is an informational scan hit included in reports for
// operator context. Reference markets never touch the ledger and carry
// no suggested sizing.
type ReferenceMarket struct {
	MarketID  string             `json:"id"`
	Question  string             `json:"question"`
	Prices    map[string]float64 `json:"prices"`
	Liquidity float64            `json:"liquidity"`
	Volume    float64            `json:"volume,omitempty"`
	HoursLeft float64            `json:"hours_left"`
	Score     float64            `json:"score"`
	Reason    string             `json:"reason"`
}

// ReportSummary counts the sections of a report.
type ReportSummary struct {
	EndgameCount       int `json:"endgame_count"`
	HighLiquidityCount int `json:"high_liquidity_count"`
	PoliticsCount      int `json:"high_certainty_politics_count"`
	P0Count            int `json:"p0_count"`
	P1Count            int `json:"p1_count"`
	P2Count            int `json:"p2_count"`
}

// Report is the full output of one monitor cycle: the strategy result
// plus the reference scans that accompany it.
type Report struct {
	Timestamp     time.Time         `json:"timestamp"`
	Summary       ReportSummary     `json:"summary"`
	Strategy      StrategyResult    `json:"strategy"`
	Endgame       []ReferenceMarket `json:"endgame_markets"`
	Politics      []ReferenceMarket `json:"high_certainty_politics"`
	HighLiquidity []ReferenceMarket `json:"high_liquidity_markets"`
}
