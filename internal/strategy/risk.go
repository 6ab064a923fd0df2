package strategy

import (
	"fmt"

	"github.com/leowang-dev/polytriage/internal/domain"
)

// EvaluateRisk applies the circuit breaker to the live portfolio
// figures. It is stateless: the verdict is recomputed on every analysis,
// so trading resumes automatically once the underlying PnL recovers
// (after a daily reset or a positive PnL record). There is deliberately
// no separate resume operation.
func EvaluateRisk(p domain.Portfolio, cfg Config) domain.RiskStatus {
	status := domain.RiskStatus{
		DailyLoss:       p.DailyPnL,
		CumulativeLoss:  p.CumulativePnL,
		DailyLimit:      cfg.DailyLossLimit,
		CumulativeLimit: cfg.CumulativeLossPause,
	}

	if p.DailyPnL < -cfg.DailyLossLimit {
		status.Paused = true
		status.Reason = fmt.Sprintf("daily loss limit exceeded: $%.0f", -p.DailyPnL)
	}
	if p.CumulativePnL < -cfg.CumulativeLossPause {
		status.Paused = true
		status.Reason = fmt.Sprintf("cumulative loss limit exceeded: $%.0f", -p.CumulativePnL)
	}

	return status
}
