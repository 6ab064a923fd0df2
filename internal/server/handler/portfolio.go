package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/leowang-dev/polytriage/internal/domain"
	"github.com/leowang-dev/polytriage/internal/strategy"
)

// PortfolioHandler serves the ledger view and accepts trade and PnL
// records. Writes go through the engine so the circuit-breaker inputs
// stay consistent with what Analyze sees.
type PortfolioHandler struct {
	engine *strategy.Engine
	logger *slog.Logger
}

// NewPortfolioHandler creates a PortfolioHandler bound to the engine.
func NewPortfolioHandler(engine *strategy.Engine, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		engine: engine,
		logger: logger.With(slog.String("handler", "portfolio")),
	}
}

// GetPortfolio responds with the current ledger state.
// GET /api/portfolio
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Portfolio())
}

// tradeRequest is the body of a record-trade call.
type tradeRequest struct {
	Tier     domain.Tier `json:"tier"`
	MarketID string      `json:"market_id"`
	Outcome  string      `json:"outcome"`
	Amount   float64     `json:"amount"`
	Price    float64     `json:"price"`
}

// RecordTrade appends a trade to the ledger.
// POST /api/trades
func (h *PortfolioHandler) RecordTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Tier {
	case domain.TierP0, domain.TierP1, domain.TierP2:
	default:
		writeError(w, http.StatusBadRequest, "unknown tier: "+string(req.Tier))
		return
	}
	if req.MarketID == "" || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "market_id and a positive amount are required")
		return
	}

	if err := h.engine.RecordTrade(r.Context(), req.Tier, req.MarketID, req.Outcome, req.Amount, req.Price); err != nil {
		h.logger.ErrorContext(r.Context(), "record trade failed",
			slog.String("market_id", req.MarketID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to record trade")
		return
	}

	writeJSON(w, http.StatusCreated, h.engine.Portfolio())
}

// pnlRequest is the body of a record-pnl call.
type pnlRequest struct {
	Amount float64 `json:"amount"`
}

// RecordPnL applies a realized profit or loss to the ledger.
// POST /api/pnl
func (h *PortfolioHandler) RecordPnL(w http.ResponseWriter, r *http.Request) {
	var req pnlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engine.RecordPnL(r.Context(), req.Amount); err != nil {
		h.logger.ErrorContext(r.Context(), "record pnl failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to record pnl")
		return
	}

	writeJSON(w, http.StatusOK, h.engine.Portfolio())
}
