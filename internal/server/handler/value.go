package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/quantara/edgescan/internal/domain"
)

// ValueHandler serves persisted value-flag history.
type ValueHandler struct {
	flags  domain.ValueFlagStore
	logger *slog.Logger
}

// NewValueHandler creates a ValueHandler.
func NewValueHandler(flags domain.ValueFlagStore, logger *slog.Logger) *ValueHandler {
	return &ValueHandler{flags: flags, logger: logger}
}

// ListRecent returns the most recent value flags, optionally filtered by
// confidence.
// GET /api/value/recent?limit=50&confidence=high
func (h *ValueHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.flags == nil {
		writeError(w, http.StatusNotImplemented, "value flag history not configured")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 200 {
		limit = 200
	}

	var (
		flags []domain.ValueFlag
		err   error
	)
	if conf := r.URL.Query().Get("confidence"); conf != "" {
		switch domain.ValueConfidence(conf) {
		case domain.ConfidenceHigh, domain.ConfidenceMedium, domain.ConfidenceLow:
		default:
			writeError(w, http.StatusBadRequest, "confidence must be high, medium, or low")
			return
		}
		flags, err = h.flags.ListByConfidence(r.Context(), domain.ValueConfidence(conf), domain.ListOpts{Limit: limit})
	} else {
		flags, err = h.flags.ListRecent(r.Context(), limit)
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list value flags failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list value flags")
		return
	}
	if flags == nil {
		flags = []domain.ValueFlag{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"flags": flags})
}
