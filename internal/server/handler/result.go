package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/leowang-dev/polytriage/internal/domain"
)

// ResultHandler serves the latest analysis result from the result cache.
type ResultHandler struct {
	cache  domain.ResultCache
	logger *slog.Logger
}

// NewResultHandler creates a ResultHandler backed by the given cache.
func NewResultHandler(cache domain.ResultCache, logger *slog.Logger) *ResultHandler {
	return &ResultHandler{
		cache:  cache,
		logger: logger.With(slog.String("handler", "result")),
	}
}

// GetResult responds with the most recent strategy result.
// GET /api/result
func (h *ResultHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.cache.GetResult(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoResult) {
			writeError(w, http.StatusNotFound, "no analysis result available yet")
			return
		}
		h.logger.ErrorContext(r.Context(), "get result failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load result")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListOpportunities responds with the opportunities from the most recent
// result, optionally filtered by tier.
// GET /api/opportunities?tier=P0_DETERMINED
func (h *ResultHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	result, err := h.cache.GetResult(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoResult) {
			writeError(w, http.StatusNotFound, "no analysis result available yet")
			return
		}
		h.logger.ErrorContext(r.Context(), "get result failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load result")
		return
	}

	opps := result.Opportunities()

	if tier := r.URL.Query().Get("tier"); tier != "" {
		switch domain.Tier(tier) {
		case domain.TierP0:
			opps = result.P0
		case domain.TierP1:
			opps = result.P1
		case domain.TierP2:
			opps = result.P2
		default:
			writeError(w, http.StatusBadRequest, "unknown tier: "+tier)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":        result.RunID,
		"timestamp":     result.Timestamp,
		"status":        result.Status,
		"opportunities": opps,
	})
}
