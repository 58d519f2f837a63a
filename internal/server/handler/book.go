package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/quantara/edgescan/internal/analytics"
	"github.com/quantara/edgescan/internal/domain"
)

// BookService defines what the book handler needs from the service layer.
type BookService interface {
	MergedBook(ctx context.Context, market domain.Market) (domain.MergedBook, error)
	SimulateImpact(ctx context.Context, market domain.Market, requestedUSD float64, side analytics.FillSide) (domain.FillSimulation, error)
	Liquidity(ctx context.Context, market domain.Market, probeUSD float64) (domain.LiquidityTier, error)
}

// MarketSource looks up markets for the by-ID endpoints.
type MarketSource interface {
	GetMarket(ctx context.Context, id string) (domain.Market, error)
	GetMarkets(ctx context.Context, limit, offset int) ([]domain.Market, error)
}

// BookHandler serves order-book merging, market-impact simulation, and
// liquidity classification. The POST endpoints accept inline books for
// ad-hoc analysis; the market endpoints go through the service, which
// fetches live books.
type BookHandler struct {
	books   BookService
	markets MarketSource
	th      analytics.Thresholds
	logger  *slog.Logger
}

// NewBookHandler creates a BookHandler. books and markets may be nil when
// the server runs without live retrieval; the inline endpoints still work.
func NewBookHandler(books BookService, markets MarketSource, th analytics.Thresholds, logger *slog.Logger) *BookHandler {
	return &BookHandler{books: books, markets: markets, th: th, logger: logger}
}

// rawBookPayload is the inline JSON shape of one raw book side pair.
type rawBookPayload struct {
	Bids []domain.PriceLevel `json:"bids"`
	Asks []domain.PriceLevel `json:"asks"`
}

func (p *rawBookPayload) toRaw() analytics.RawBook {
	return analytics.RawBook{Bids: p.Bids, Asks: p.Asks}
}

// mergeRequest asks for a synthetic merge of two inline books, or of the
// live books of a market.
type mergeRequest struct {
	MarketID   string          `json:"market_id,omitempty"`
	AssetID    string          `json:"asset_id,omitempty"`
	Primary    *rawBookPayload `json:"primary,omitempty"`
	Complement *rawBookPayload `json:"complement,omitempty"`
}

// Merge combines a primary book with complement-derived synthetic levels.
// POST /api/books/merge
func (h *BookHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.MarketID != "" {
		market, ok := h.lookupMarket(w, r, req.MarketID)
		if !ok {
			return
		}
		book, err := h.books.MergedBook(r.Context(), market)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "handler: merged book failed",
				slog.String("market_id", req.MarketID),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusBadGateway, "failed to fetch books")
			return
		}
		writeJSON(w, http.StatusOK, book)
		return
	}

	if req.Primary == nil {
		writeError(w, http.StatusBadRequest, "primary book or market_id is required")
		return
	}

	var complement *analytics.RawBook
	if req.Complement != nil {
		c := req.Complement.toRaw()
		complement = &c
	}
	book := analytics.MergeBooks(req.AssetID, req.Primary.toRaw(), complement)
	writeJSON(w, http.StatusOK, book)
}

// impactRequest asks for a fill simulation against inline or live books.
type impactRequest struct {
	mergeRequest
	AmountUSD float64 `json:"amount_usd"`
	Side      string  `json:"side"` // "buy" or "sell"
}

// Impact simulates filling a notional against the merged book and reports
// achieved price, slippage, and liquidity tier.
// POST /api/books/impact
func (h *BookHandler) Impact(w http.ResponseWriter, r *http.Request) {
	var req impactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var side analytics.FillSide
	switch req.Side {
	case "buy", "":
		side = analytics.FillSideBuy
	case "sell":
		side = analytics.FillSideSell
	default:
		writeError(w, http.StatusBadRequest, "side must be buy or sell")
		return
	}

	if req.MarketID != "" {
		market, ok := h.lookupMarket(w, r, req.MarketID)
		if !ok {
			return
		}
		sim, err := h.books.SimulateImpact(r.Context(), market, req.AmountUSD, side)
		if err != nil {
			if errors.Is(err, domain.ErrDegenerateBook) {
				writeError(w, http.StatusUnprocessableEntity, "book has no depth on the requested side")
				return
			}
			h.logger.ErrorContext(r.Context(), "handler: impact simulation failed",
				slog.String("market_id", req.MarketID),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusBadGateway, "failed to fetch books")
			return
		}
		writeJSON(w, http.StatusOK, sim)
		return
	}

	if req.Primary == nil {
		writeError(w, http.StatusBadRequest, "primary book or market_id is required")
		return
	}

	var complement *analytics.RawBook
	if req.Complement != nil {
		c := req.Complement.toRaw()
		complement = &c
	}
	book := analytics.MergeBooks(req.AssetID, req.Primary.toRaw(), complement)

	levels := book.Asks
	if side == analytics.FillSideSell {
		levels = book.Bids
	}
	sim := analytics.SimulateFill(levels, req.AmountUSD, analytics.MidPrice(book), side)
	sim.Liquidity = analytics.ClassifyLiquidity(book, h.th)
	writeJSON(w, http.StatusOK, sim)
}

// Liquidity classifies a live market's depth. An optional ?size= query
// overrides the standard probe notional.
// GET /api/markets/{id}/liquidity
func (h *BookHandler) Liquidity(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var probeUSD float64
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "size must be a positive number")
			return
		}
		probeUSD = v
	}

	market, ok := h.lookupMarket(w, r, id)
	if !ok {
		return
	}

	tier, err := h.books.Liquidity(r.Context(), market, probeUSD)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: liquidity failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to fetch books")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"market_id": id,
		"liquidity": tier,
	})
}

// lookupMarket resolves a market ID, writing the error response itself when
// the lookup fails.
func (h *BookHandler) lookupMarket(w http.ResponseWriter, r *http.Request, id string) (domain.Market, bool) {
	if h.books == nil || h.markets == nil {
		writeError(w, http.StatusNotImplemented, "live book retrieval not configured")
		return domain.Market{}, false
	}
	market, err := h.markets.GetMarket(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "market not found")
			return domain.Market{}, false
		}
		h.logger.ErrorContext(r.Context(), "handler: market lookup failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to look up market")
		return domain.Market{}, false
	}
	return market, true
}
