package handler

import (
	"net/http"

	"github.com/leowang-dev/polytriage/internal/strategy"
)

// StrategyHandler exposes the strategy configuration the engine runs with.
type StrategyHandler struct {
	engine *strategy.Engine
}

// NewStrategyHandler creates a StrategyHandler bound to the engine.
func NewStrategyHandler(engine *strategy.Engine) *StrategyHandler {
	return &StrategyHandler{engine: engine}
}

// GetConfig responds with the active strategy configuration.
// GET /api/strategy/config
func (h *StrategyHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Config())
}
