package domain

import "time"

// TradeRecord is one committed trade in the ledger. Records are
// append-only; they are never edited or removed once written.
type TradeRecord struct {
	Tier      Tier      `json:"tier"`
	MarketID  string    `json:"market_id"`
	Outcome   string    `json:"outcome"`
	Amount    float64   `json:"amount"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Portfolio is the persisted ledger of committed trades and running PnL.
// Invariants: TotalInvested equals the sum of all position amounts, and
// each tier counter equals the sum of amounts tagged with that tier.
//
// The ledger assumes a single writing process. Two processes mutating the
// same ledger file will race; nothing in this package locks the file.
type Portfolio struct {
	Positions     []TradeRecord `json:"positions"`
	TotalInvested float64       `json:"total_invested"`
	P0Invested    float64       `json:"p0_invested"`
	P1Invested    float64       `json:"p1_invested"`
	P2Invested    float64       `json:"p2_invested"`
	DailyPnL      float64       `json:"daily_pnl"`
	CumulativePnL float64       `json:"cumulative_pnl"`
	LastUpdated   time.Time     `json:"last_updated"`
}

// InvestedIn returns the capital already committed to the given tier.
func (p Portfolio) InvestedIn(tier Tier) float64 {
	switch tier {
	case TierP0:
		return p.P0Invested
	case TierP1:
		return p.P1Invested
	case TierP2:
		return p.P2Invested
	default:
		return 0
	}
}

// AddTrade appends a trade record and updates the invested totals.
func (p *Portfolio) AddTrade(rec TradeRecord) {
	p.Positions = append(p.Positions, rec)
	p.TotalInvested += rec.Amount
	switch rec.Tier {
	case TierP0:
		p.P0Invested += rec.Amount
	case TierP1:
		p.P1Invested += rec.Amount
	case TierP2:
		p.P2Invested += rec.Amount
	}
}
