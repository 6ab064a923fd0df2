package strategy

import (
	"strings"

	"github.com/leowang-dev/polytriage/internal/domain"
)

// Keyword tables are checked in priority order: politics pre-empts
// everything, then sports, then the remaining categories. Sports markets
// are usually excluded upstream by the keyword filter, but anything that
// slips through is still labeled correctly here.
var politicsKeywords = []string{
	"president", "presidential", "election", "prime minister",
	"trump", "biden", "congress", "senate", "democrat", "republican",
	"governor", "mayor", "nominee", "cabinet", "minister",
}

var sportsKeywords = []string{
	"world cup", "fifa", "nba", "nfl", "nhl", "mlb",
	"stanley cup", "super bowl", "champions league",
	"premier league", "finals", "playoff", "mvp",
}

var categoryKeywords = []struct {
	category domain.Category
	keywords []string
}{
	{domain.CategoryCrypto, []string{"bitcoin", "ethereum", "crypto", "btc", "eth", "solana"}},
	{domain.CategoryEconomy, []string{"fed", "inflation", "interest rate", "gdp", "recession", "unemployment"}},
	{domain.CategoryTech, []string{"ai", "openai", "google", "apple", "microsoft", "meta", "tesla"}},
	{domain.CategoryEntertainment, []string{"oscar", "grammy", "emmy", "movie", "album", "award"}},
}

// Categorize maps a market question to its category by ordered keyword
// match against the lower-cased text. It is the single classification
// function: both Opportunity.Category and the diversifier's buckets come
// from here, so the two can never disagree.
func Categorize(question string) domain.Category {
	q := strings.ToLower(question)

	if containsAny(q, politicsKeywords) {
		return domain.CategoryPolitics
	}
	if containsAny(q, sportsKeywords) {
		return domain.CategorySports
	}
	for _, entry := range categoryKeywords {
		if containsAny(q, entry.keywords) {
			return entry.category
		}
	}
	return domain.CategoryOther
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
