package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/quantara/edgescan/internal/analytics"
	"github.com/quantara/edgescan/internal/domain"
)

// AnalyticsHandler serves the pure-computation endpoints: quote
// normalization, efficiency analysis, arbitrage detection over a posted
// quote set, and value scanning. Nothing here touches storage.
type AnalyticsHandler struct {
	th     analytics.Thresholds
	logger *slog.Logger
}

// NewAnalyticsHandler creates an AnalyticsHandler with the given thresholds.
func NewAnalyticsHandler(th analytics.Thresholds, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{th: th, logger: logger}
}

// quotesRequest is the shared request shape for the analytics endpoints.
type quotesRequest struct {
	EventID    string                 `json:"event_id,omitempty"`
	Convention domain.PriceConvention `json:"convention"`
	Quotes     []domain.RawQuote      `json:"quotes"`
}

// decodeQuotes parses and sanity-checks the shared request shape.
func decodeQuotes(w http.ResponseWriter, r *http.Request) (quotesRequest, bool) {
	var req quotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	if len(req.Quotes) == 0 {
		writeError(w, http.StatusBadRequest, "quotes are required")
		return req, false
	}
	switch req.Convention {
	case domain.ConventionDecimalOdds, domain.ConventionDirectProbability:
	default:
		writeError(w, http.StatusBadRequest, "convention must be decimal_odds or direct_probability")
		return req, false
	}
	return req, true
}

// normalizeOrReject normalizes the posted quotes and writes a 422 when
// every quote was rejected, leaving nothing to analyze.
func normalizeOrReject(w http.ResponseWriter, req quotesRequest) ([]domain.Quote, bool) {
	quotes, rejected := analytics.NormalizeQuotes(req.Quotes, req.Convention)
	if len(quotes) == 0 {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("%s: all %d quotes rejected", domain.ErrInsufficientData, rejected))
		return nil, false
	}
	return quotes, true
}

// Normalize validates raw quotes and returns them with implied
// probabilities attached.
// POST /api/quotes/normalize
func (h *AnalyticsHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuotes(w, r)
	if !ok {
		return
	}

	quotes, rejected := analytics.NormalizeQuotes(req.Quotes, req.Convention)
	if quotes == nil {
		quotes = []domain.Quote{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"quotes":   quotes,
		"rejected": rejected,
	})
}

// Efficiency computes per-source vig and the cross-source consensus for a
// posted quote set.
// POST /api/efficiency
func (h *AnalyticsHandler) Efficiency(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuotes(w, r)
	if !ok {
		return
	}

	quotes, ok := normalizeOrReject(w, req)
	if !ok {
		return
	}
	summary := analytics.AnalyzeEfficiency(quotes, h.th)
	summary.EventID = req.EventID
	writeJSON(w, http.StatusOK, summary)
}

// arbDetectRequest extends the shared shape with an optional margin override.
type arbDetectRequest struct {
	quotesRequest
	MarginThreshold *float64 `json:"margin_threshold,omitempty"`
}

// DetectArbitrage checks the posted quotes for a riskless basket across
// sources and returns the opportunity with stake sizing, or the reason no
// opportunity exists.
// POST /api/arbitrage/detect
func (h *AnalyticsHandler) DetectArbitrage(w http.ResponseWriter, r *http.Request) {
	var req arbDetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Quotes) == 0 {
		writeError(w, http.StatusBadRequest, "quotes are required")
		return
	}
	switch req.Convention {
	case domain.ConventionDecimalOdds, domain.ConventionDirectProbability:
	default:
		writeError(w, http.StatusBadRequest, "convention must be decimal_odds or direct_probability")
		return
	}

	margin := h.th.MarginThreshold
	if req.MarginThreshold != nil && *req.MarginThreshold >= 0 {
		margin = *req.MarginThreshold
	}

	quotes, ok := normalizeOrReject(w, req.quotesRequest)
	if !ok {
		return
	}
	best := analytics.BestQuotes(quotes)

	var result domain.ArbScanResult
	if opp := analytics.DetectArbitrage(best, margin); opp != nil {
		opp.EventID = req.EventID
		result.Opportunities = []domain.ArbitrageOpportunity{*opp}
	} else {
		result.Opportunities = []domain.ArbitrageOpportunity{}
		result.Reason = "no riskless basket at current best prices"
	}
	writeJSON(w, http.StatusOK, result)
}

// valueScanRequest extends the shared shape with an optional edge override.
type valueScanRequest struct {
	quotesRequest
	MinEdgePercent *float64 `json:"min_edge_percent,omitempty"`
}

// ScanValue flags quotes priced favorably against the consensus.
// POST /api/value/scan
func (h *AnalyticsHandler) ScanValue(w http.ResponseWriter, r *http.Request) {
	var req valueScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Quotes) == 0 {
		writeError(w, http.StatusBadRequest, "quotes are required")
		return
	}
	switch req.Convention {
	case domain.ConventionDecimalOdds, domain.ConventionDirectProbability:
	default:
		writeError(w, http.StatusBadRequest, "convention must be decimal_odds or direct_probability")
		return
	}

	minEdge := h.th.MinEdgePercent
	if req.MinEdgePercent != nil && *req.MinEdgePercent > 0 {
		minEdge = *req.MinEdgePercent
	}

	quotes, ok := normalizeOrReject(w, req.quotesRequest)
	if !ok {
		return
	}
	summary := analytics.AnalyzeEfficiency(quotes, h.th)
	flags := analytics.ScanValue(quotes, summary.Consensus, minEdge)
	if flags == nil {
		flags = []domain.ValueFlag{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"flags": flags})
}
