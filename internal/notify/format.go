package notify

import (
	"fmt"
	"strings"

	"github.com/leowang-dev/polytriage/internal/domain"
)

// maxAlertLines caps how many opportunities a single alert lists. Busy
// scan cycles can surface dozens; anything past the cap is summarized.
const maxAlertLines = 10

// tierTitles maps each tier to the alert title operators see.
var tierTitles = map[domain.Tier]string{
	domain.TierP0: "P0 settled-outcome opportunities",
	domain.TierP1: "P1 high-certainty opportunities",
	domain.TierP2: "P2 endgame opportunities",
}

// FormatTierAlert renders the opportunities of one tier as an alert body.
// Returns the title and message; message is empty when there is nothing
// to report.
func FormatTierAlert(tier domain.Tier, opps []domain.Opportunity) (string, string) {
	if len(opps) == 0 {
		return "", ""
	}

	var b strings.Builder
	for i, opp := range opps {
		if i >= maxAlertLines {
			fmt.Fprintf(&b, "... and %d more\n", len(opps)-maxAlertLines)
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, opp.Question)
		fmt.Fprintf(&b, "   %s @ %.1f%% | $%.0f liq | size $%.0f | +%.2f%%\n",
			opp.Outcome, opp.Price*100, opp.Liquidity, opp.SuggestedAmount, opp.ExpectedReturn)
	}
	return tierTitles[tier], b.String()
}

// FormatRiskPaused renders the alert sent when the circuit breaker trips.
func FormatRiskPaused(status domain.RiskStatus) (string, string) {
	var b strings.Builder
	b.WriteString("Analysis paused by circuit breaker.\n")
	if status.Reason != "" {
		fmt.Fprintf(&b, "- %s\n", status.Reason)
	}
	fmt.Fprintf(&b, "daily loss $%.2f of $%.2f | cumulative loss $%.2f of $%.2f\n",
		status.DailyLoss, status.DailyLimit, status.CumulativeLoss, status.CumulativeLimit)
	return "Trading paused", b.String()
}

// FormatCycleReport renders the end-of-cycle summary covering the tier
// engine output and the reference scans.
func FormatCycleReport(report domain.Report) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "P0: %d | P1: %d | P2: %d\n",
		report.Summary.P0Count, report.Summary.P1Count, report.Summary.P2Count)
	fmt.Fprintf(&b, "endgame: %d | politics: %d | high liquidity: %d\n",
		report.Summary.EndgameCount, report.Summary.PoliticsCount, report.Summary.HighLiquidityCount)
	fmt.Fprintf(&b, "invested $%.2f of $%.2f\n",
		report.Strategy.Portfolio.TotalInvested, report.Strategy.Config.TotalCapital)
	return "Scan cycle report", b.String()
}

// FormatEndgameAlert renders the reference endgame scan as an alert body.
func FormatEndgameAlert(markets []domain.ReferenceMarket) (string, string) {
	if len(markets) == 0 {
		return "", ""
	}

	var b strings.Builder
	for i, m := range markets {
		if i >= maxAlertLines {
			fmt.Fprintf(&b, "... and %d more\n", len(markets)-maxAlertLines)
			break
		}
		fmt.Fprintf(&b, "%.1fh | %s\n", m.HoursLeft, m.Question)
		fmt.Fprintf(&b, "   %s | $%.0f\n", m.Reason, m.Liquidity)
	}
	return "Markets closing soon", b.String()
}
