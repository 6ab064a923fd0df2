package strategy

import (
	"math"

	"github.com/leowang-dev/polytriage/internal/domain"
)

// Diversify runs a greedy category-capped selection over an already
// ranked candidate list. Each category may contribute at most
// max(2, floor(targetCount * maxConcentration)) opportunities; selection
// stops once targetCount candidates are admitted or the list runs out.
//
// Input order is preserved: this is a stable filter, not a re-sort, so
// the upstream ranking decides which candidates within a category win
// the category's slots.
func Diversify(candidates []domain.Opportunity, targetCount int, maxConcentration float64) []domain.Opportunity {
	if len(candidates) == 0 || targetCount <= 0 {
		return nil
	}

	maxPerCategory := int(math.Max(2, math.Floor(float64(targetCount)*maxConcentration)))

	selected := make([]domain.Opportunity, 0, targetCount)
	counts := make(map[domain.Category]int)

	for _, opp := range candidates {
		if counts[opp.Category] < maxPerCategory {
			selected = append(selected, opp)
			counts[opp.Category]++
		}
		if len(selected) >= targetCount {
			break
		}
	}
	return selected
}
