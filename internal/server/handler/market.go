package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/quantara/edgescan/internal/domain"
)

// MarketHandler serves market discovery endpoints backed by the Gamma API.
type MarketHandler struct {
	markets MarketSource
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(markets MarketSource, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{markets: markets, logger: logger}
}

// ListMarkets returns a page of active markets.
// GET /api/markets?limit=50&offset=0
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	if h.markets == nil {
		writeError(w, http.StatusNotImplemented, "market retrieval not configured")
		return
	}

	opts := parseListOpts(r)
	markets, err := h.markets.GetMarkets(r.Context(), opts.Limit, opts.Offset)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list markets failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to list markets")
		return
	}
	if markets == nil {
		markets = []domain.Market{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"markets": markets})
}

// GetMarket returns a single market.
// GET /api/markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	if h.markets == nil {
		writeError(w, http.StatusNotImplemented, "market retrieval not configured")
		return
	}

	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	market, err := h.markets.GetMarket(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "market not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get market failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to get market")
		return
	}
	writeJSON(w, http.StatusOK, market)
}
