package domain

import "time"

// MarketSnapshot is one polled market quote. Snapshots are created fresh
// each poll cycle by the data layer and are never persisted.
type MarketSnapshot struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Slug     string `json:"slug,omitempty"`

	// Outcomes preserves the order the market declares its outcomes in.
	// Tier filters use it as the tie-break order when several outcomes
	// share the maximum qualifying price.
	Outcomes []string `json:"outcomes"`

	// OutcomePrices maps outcome name to its quoted probability in [0,1].
	// Multi-outcome markets may not sum to 1; the engine tolerates that.
	OutcomePrices map[string]float64 `json:"outcome_prices"`

	Liquidity float64   `json:"liquidity"`
	Volume    float64   `json:"volume"`
	EndTime   time.Time `json:"end_time"`

	// HoursLeft is signed; zero or negative means the market has already
	// resolved or expired and every tier filter must skip it.
	HoursLeft float64 `json:"hours_left"`
}

// PriceOf returns the quoted price for outcome, or 0 if the outcome is
// not present in the snapshot.
func (s MarketSnapshot) PriceOf(outcome string) float64 {
	return s.OutcomePrices[outcome]
}

// OutcomeOrder returns the declared outcome order, falling back to the
// price-map keys in unspecified order when the snapshot carries none.
func (s MarketSnapshot) OutcomeOrder() []string {
	if len(s.Outcomes) > 0 {
		return s.Outcomes
	}
	order := make([]string, 0, len(s.OutcomePrices))
	for name := range s.OutcomePrices {
		order = append(order, name)
	}
	return order
}
