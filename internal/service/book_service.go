package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quantara/edgescan/internal/analytics"
	"github.com/quantara/edgescan/internal/domain"
)

// BookService serves merged order books, fill simulations, and liquidity
// ratings for prediction markets. Snapshots come from the cache when the
// feed keeps it warm, falling back to the REST book endpoint.
type BookService struct {
	books  BookSource
	cache  domain.BookCache
	th     analytics.Thresholds
	logger *slog.Logger
}

// NewBookService creates a BookService. cache may be nil, in which case
// every call fetches fresh.
func NewBookService(books BookSource, cache domain.BookCache, th analytics.Thresholds, logger *slog.Logger) *BookService {
	return &BookService{
		books:  books,
		cache:  cache,
		th:     th,
		logger: logger.With(slog.String("component", "book_service")),
	}
}

// MergedBook returns the merged book for a market's YES side: direct YES
// depth plus synthetic depth derived from the NO book. When the NO book is
// unavailable the result degrades to the raw view.
func (s *BookService) MergedBook(ctx context.Context, market domain.Market) (domain.MergedBook, error) {
	primary, err := s.snapshot(ctx, market.YesTokenID)
	if err != nil {
		return domain.MergedBook{}, fmt.Errorf("book_service: yes book for %s: %w", market.ID, err)
	}

	var complement *analytics.RawBook
	if market.NoTokenID != "" {
		if snap, err := s.snapshot(ctx, market.NoTokenID); err != nil {
			s.logger.DebugContext(ctx, "complement book unavailable, raw view",
				slog.String("market_id", market.ID),
				slog.String("error", err.Error()),
			)
		} else {
			complement = &analytics.RawBook{Bids: snap.Bids, Asks: snap.Asks}
		}
	}

	raw := analytics.RawBook{Bids: primary.Bids, Asks: primary.Asks}
	return analytics.MergeBooks(market.YesTokenID, raw, complement), nil
}

// SimulateImpact walks the merged book to fill requestedUSD on the given
// side and reports the achieved price and slippage against the mid.
func (s *BookService) SimulateImpact(ctx context.Context, market domain.Market, requestedUSD float64, side analytics.FillSide) (domain.FillSimulation, error) {
	book, err := s.MergedBook(ctx, market)
	if err != nil {
		return domain.FillSimulation{}, err
	}

	levels := book.Asks
	if side == analytics.FillSideSell {
		levels = book.Bids
	}
	if len(levels) == 0 {
		return domain.FillSimulation{}, fmt.Errorf("book_service: impact on %s, %s side: %w",
			market.ID, side, domain.ErrDegenerateBook)
	}
	sim := analytics.SimulateFill(levels, requestedUSD, analytics.MidPrice(book), side)
	sim.Liquidity = analytics.ClassifyLiquidity(book, s.th)
	return sim, nil
}

// Liquidity classifies how much size the market absorbs at acceptable cost.
// probeUSD overrides the standard probe notional when positive.
func (s *BookService) Liquidity(ctx context.Context, market domain.Market, probeUSD float64) (domain.LiquidityTier, error) {
	book, err := s.MergedBook(ctx, market)
	if err != nil {
		return "", err
	}
	th := s.th
	if probeUSD > 0 {
		th.ProbeNotionalUSD = probeUSD
	}
	return analytics.ClassifyLiquidity(book, th), nil
}

func (s *BookService) snapshot(ctx context.Context, tokenID string) (domain.OrderbookSnapshot, error) {
	if tokenID == "" {
		return domain.OrderbookSnapshot{}, domain.ErrNotFound
	}

	if s.cache != nil {
		snap, err := s.cache.GetSnapshot(ctx, tokenID)
		if err == nil && snap.AssetID != "" {
			return snap, nil
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.DebugContext(ctx, "book cache read failed",
				slog.String("token_id", tokenID),
				slog.String("error", err.Error()),
			)
		}
	}

	snap, err := s.books.GetOrderBook(ctx, tokenID)
	if err != nil {
		return domain.OrderbookSnapshot{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, tokenID, snap); err != nil {
			s.logger.DebugContext(ctx, "book cache write failed",
				slog.String("token_id", tokenID),
				slog.String("error", err.Error()),
			)
		}
	}
	return snap, nil
}
