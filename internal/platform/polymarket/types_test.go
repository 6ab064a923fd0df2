package polymarket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func activeMarket() APIMarket {
	return APIMarket{
		ID:            "m1",
		Question:      "Will it resolve yes?",
		Slug:          "will-it-resolve-yes",
		Active:        true,
		Outcomes:      `["Yes","No"]`,
		OutcomePrices: `["0.97","0.03"]`,
		Liquidity:     25_000,
		Volume:        90_000,
		EndDate:       testNow.Add(8 * time.Hour).Format(time.RFC3339),
	}
}

func TestToSnapshot(t *testing.T) {
	m := activeMarket()

	snap, err := m.ToSnapshot(testNow)
	require.NoError(t, err)

	assert.Equal(t, "m1", snap.ID)
	assert.Equal(t, []string{"Yes", "No"}, snap.Outcomes)
	assert.Equal(t, 0.97, snap.OutcomePrices["Yes"])
	assert.Equal(t, 0.03, snap.OutcomePrices["No"])
	assert.Equal(t, 25_000.0, snap.Liquidity)
	assert.InDelta(t, 8.0, snap.HoursLeft, 0.001)
}

func TestToSnapshot_RejectsClosedAndInactive(t *testing.T) {
	closed := activeMarket()
	closed.Closed = true
	_, err := closed.ToSnapshot(testNow)
	assert.Error(t, err)

	inactive := activeMarket()
	inactive.Active = false
	_, err = inactive.ToSnapshot(testNow)
	assert.Error(t, err)
}

func TestToSnapshot_MissingEndDate(t *testing.T) {
	m := activeMarket()
	m.EndDate = ""

	snap, err := m.ToSnapshot(testNow)
	require.NoError(t, err)
	assert.InDelta(t, 365*24.0, snap.HoursLeft, 0.001)
}

func TestToSnapshot_BadPayloads(t *testing.T) {
	bad := activeMarket()
	bad.OutcomePrices = `["not a number","0.03"]`
	_, err := bad.ToSnapshot(testNow)
	assert.Error(t, err)

	bad = activeMarket()
	bad.Outcomes = `{"Yes": 1}`
	_, err = bad.ToSnapshot(testNow)
	assert.Error(t, err)

	bad = activeMarket()
	bad.EndDate = "tomorrow"
	_, err = bad.ToSnapshot(testNow)
	assert.Error(t, err)
}

func TestToSnapshot_FewerPricesThanOutcomes(t *testing.T) {
	m := activeMarket()
	m.OutcomePrices = `["0.97"]`

	snap, err := m.ToSnapshot(testNow)
	require.NoError(t, err)
	assert.Len(t, snap.OutcomePrices, 1)
	assert.Equal(t, 0.97, snap.OutcomePrices["Yes"])
}

func TestToSnapshot_VolumeNumPreferred(t *testing.T) {
	m := activeMarket()
	m.Volume = 90_000
	m.VolumeNum = 95_000

	snap, err := m.ToSnapshot(testNow)
	require.NoError(t, err)
	assert.Equal(t, 95_000.0, snap.Volume)

	m.VolumeNum = 0
	snap, err = m.ToSnapshot(testNow)
	require.NoError(t, err)
	assert.Equal(t, 90_000.0, snap.Volume)
}

func TestAPIMarket_FlexibleFieldDecoding(t *testing.T) {
	payload := `{
		"id": "m2",
		"question": "q",
		"active": "true",
		"closed": false,
		"liquidity": "12345.6",
		"volume": 789,
		"outcomes": "[\"Yes\",\"No\"]",
		"outcomePrices": "[\"0.5\",\"0.5\"]"
	}`

	var m APIMarket
	require.NoError(t, json.Unmarshal([]byte(payload), &m))

	assert.True(t, bool(m.Active))
	assert.Equal(t, 12345.6, float64(m.Liquidity))
	assert.Equal(t, 789.0, float64(m.Volume))
}

func TestFlexBool_Variants(t *testing.T) {
	cases := map[string]bool{
		`true`:    true,
		`"true"`:  true,
		`"TRUE"`:  true,
		`"1"`:     true,
		`false`:   false,
		`"false"`: false,
		`"no"`:    false,
	}
	for raw, want := range cases {
		var f flexBool
		require.NoError(t, json.Unmarshal([]byte(raw), &f), raw)
		assert.Equal(t, want, bool(f), raw)
	}
}

func TestFlexFloat_EmptyString(t *testing.T) {
	var f flexFloat
	require.NoError(t, json.Unmarshal([]byte(`""`), &f))
	assert.Zero(t, float64(f))

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &f))
}
