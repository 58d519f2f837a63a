package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/quantara/edgescan/internal/domain"
)

// ArbHandler serves the persisted-opportunity endpoints backed by the
// opportunity store.
type ArbHandler struct {
	opps   domain.OpportunityStore
	logger *slog.Logger
}

// NewArbHandler creates an ArbHandler.
func NewArbHandler(opps domain.OpportunityStore, logger *slog.Logger) *ArbHandler {
	return &ArbHandler{opps: opps, logger: logger}
}

// listOppsResponse wraps the opportunity list response.
type listOppsResponse struct {
	Opportunities []domain.ArbitrageOpportunity `json:"opportunities"`
}

// ListRecent returns the most recently detected opportunities.
// GET /api/arbitrage/recent?limit=20
func (h *ArbHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.opps == nil {
		writeError(w, http.StatusNotImplemented, "opportunity history not configured")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 200 {
		limit = 200
	}

	opps, err := h.opps.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list opportunities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}
	if opps == nil {
		opps = []domain.ArbitrageOpportunity{}
	}
	writeJSON(w, http.StatusOK, listOppsResponse{Opportunities: opps})
}

// GetByID returns one opportunity.
// GET /api/arbitrage/{id}
func (h *ArbHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	if h.opps == nil {
		writeError(w, http.StatusNotImplemented, "opportunity history not configured")
		return
	}

	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing opportunity id")
		return
	}

	opp, err := h.opps.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "opportunity not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get opportunity failed",
			slog.String("opp_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get opportunity")
		return
	}
	writeJSON(w, http.StatusOK, opp)
}

// ListByEvent returns opportunities for one event, paginated.
// GET /api/events/{id}/arbitrage?limit=50&offset=0
func (h *ArbHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	if h.opps == nil {
		writeError(w, http.StatusNotImplemented, "opportunity history not configured")
		return
	}

	eventID := pathParam(r, "id")
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "missing event id")
		return
	}

	opps, err := h.opps.ListByEvent(r.Context(), eventID, parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list event opportunities failed",
			slog.String("event_id", eventID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}
	if opps == nil {
		opps = []domain.ArbitrageOpportunity{}
	}
	writeJSON(w, http.StatusOK, listOppsResponse{Opportunities: opps})
}

// Stats reports how many opportunities were detected since a cutoff.
// GET /api/arbitrage/stats?since=2026-08-01
func (h *ArbHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.opps == nil {
		writeError(w, http.StatusNotImplemented, "opportunity history not configured")
		return
	}

	since := time.Now().UTC().Add(-24 * time.Hour)
	if v := r.URL.Query().Get("since"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, time.UTC); err == nil {
			since = t
		}
	}

	count, err := h.opps.CountSince(r.Context(), since)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: opportunity stats failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"since": since.Format(time.RFC3339),
		"count": count,
	})
}
