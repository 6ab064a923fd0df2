package polymarket

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leowang-dev/polytriage/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma
// API responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexFloat unmarshals from a JSON number or a numeric string. Gamma sends
// liquidity and volume as strings on some endpoints and numbers on others.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse float %q: %w", s, err)
	}
	*f = flexFloat(n)
	return nil
}

// APIMarket represents a market as returned by the Polymarket Gamma API.
// Outcomes and OutcomePrices arrive as JSON-encoded arrays inside strings.
type APIMarket struct {
	ID            string    `json:"id"`
	Question      string    `json:"question"`
	Slug          string    `json:"slug"`
	Active        flexBool  `json:"active"` // API may send bool or "true"/"false" string
	Closed        bool      `json:"closed"`
	Outcomes      string    `json:"outcomes"`      // JSON-encoded: e.g. "[\"Yes\",\"No\"]"
	OutcomePrices string    `json:"outcomePrices"` // JSON-encoded: e.g. "[\"0.5\",\"0.5\"]"
	Liquidity     flexFloat `json:"liquidity"`
	Volume        flexFloat `json:"volume"`
	VolumeNum     flexFloat `json:"volumeNum"`
	EndDate       string    `json:"endDate"`
}

// fallbackHorizon stands in for a missing end date so open-ended markets
// still carry a finite hours-left value.
const fallbackHorizon = 365 * 24 * time.Hour

// ToSnapshot converts a Gamma APIMarket into a domain snapshot as of the
// given time. Closed or inactive markets and markets whose price data
// cannot be parsed are rejected with an error; callers skip those.
func (m *APIMarket) ToSnapshot(now time.Time) (domain.MarketSnapshot, error) {
	if m.Closed || !bool(m.Active) {
		return domain.MarketSnapshot{}, fmt.Errorf("market %s is closed or inactive", m.ID)
	}

	var outcomes []string
	if m.Outcomes != "" {
		if err := json.Unmarshal([]byte(m.Outcomes), &outcomes); err != nil {
			return domain.MarketSnapshot{}, fmt.Errorf("market %s: parse outcomes: %w", m.ID, err)
		}
	}

	var rawPrices []string
	if m.OutcomePrices != "" {
		if err := json.Unmarshal([]byte(m.OutcomePrices), &rawPrices); err != nil {
			return domain.MarketSnapshot{}, fmt.Errorf("market %s: parse outcome prices: %w", m.ID, err)
		}
	}

	prices := make(map[string]float64, len(outcomes))
	for i, outcome := range outcomes {
		if i >= len(rawPrices) {
			break
		}
		p, err := strconv.ParseFloat(rawPrices[i], 64)
		if err != nil {
			return domain.MarketSnapshot{}, fmt.Errorf("market %s: parse price %q: %w", m.ID, rawPrices[i], err)
		}
		prices[outcome] = p
	}

	endTime := now.Add(fallbackHorizon)
	if m.EndDate != "" {
		t, err := time.Parse(time.RFC3339, m.EndDate)
		if err != nil {
			return domain.MarketSnapshot{}, fmt.Errorf("market %s: parse end date: %w", m.ID, err)
		}
		endTime = t
	}

	volume := float64(m.VolumeNum)
	if volume == 0 {
		volume = float64(m.Volume)
	}

	return domain.MarketSnapshot{
		ID:            m.ID,
		Question:      m.Question,
		Slug:          m.Slug,
		Outcomes:      outcomes,
		OutcomePrices: prices,
		Liquidity:     float64(m.Liquidity),
		Volume:        volume,
		EndTime:       endTime,
		HoursLeft:     endTime.Sub(now).Hours(),
	}, nil
}
