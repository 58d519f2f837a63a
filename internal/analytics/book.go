package analytics

import (
	"sort"

	"github.com/quantara/edgescan/internal/domain"
)

// RawBook is one instrument's direct bid/ask depth as delivered by a venue.
type RawBook struct {
	Bids []domain.PriceLevel
	Asks []domain.PriceLevel
}

// MergeBooks builds the unified book for a primary instrument, folding in
// synthetic liquidity from its complementary instrument when available.
//
// In a complementary-outcome market price_A + price_B = 1 by construction,
// so a resting ask on B at p is an implicit bid on A at 1-p (selling "not-A"
// at p is buying A at 1-p), and a resting bid on B at p is an implicit ask
// on A at 1-p. Sizes carry through unchanged. Synthetic levels whose
// transformed price falls outside (0,1) are degenerate and discarded, as are
// direct levels priced outside (0,1).
//
// Bids sort descending and asks ascending; at equal prices direct levels
// stay ahead of synthetic ones, since native depth fills with less
// uncertainty. When complement is nil the result is the direct-only book
// with View set to "raw" so callers know true liquidity is likely
// understated.
func MergeBooks(assetID string, primary RawBook, complement *RawBook) domain.MergedBook {
	book := domain.MergedBook{
		AssetID: assetID,
		View:    domain.ViewRaw,
	}

	for _, lvl := range primary.Bids {
		book.Bids = appendLevel(book.Bids, lvl.Price, lvl.Size, domain.OriginDirect)
	}
	for _, lvl := range primary.Asks {
		book.Asks = appendLevel(book.Asks, lvl.Price, lvl.Size, domain.OriginDirect)
	}

	if complement != nil {
		book.View = domain.ViewMerged
		for _, lvl := range complement.Asks {
			book.Bids = appendLevel(book.Bids, 1-lvl.Price, lvl.Size, domain.OriginSynthetic)
		}
		for _, lvl := range complement.Bids {
			book.Asks = appendLevel(book.Asks, 1-lvl.Price, lvl.Size, domain.OriginSynthetic)
		}
	}

	// Stable sort keeps direct levels (appended first) ahead of synthetic
	// ones at equal prices.
	sort.SliceStable(book.Bids, func(i, j int) bool { return book.Bids[i].Price > book.Bids[j].Price })
	sort.SliceStable(book.Asks, func(i, j int) bool { return book.Asks[i].Price < book.Asks[j].Price })

	return book
}

func appendLevel(levels []domain.OrderLevel, price, size float64, origin domain.LevelOrigin) []domain.OrderLevel {
	if price <= 0 || price >= 1 || size <= 0 {
		return levels
	}
	return append(levels, domain.OrderLevel{Price: price, Size: size, Origin: origin})
}

// BestBid returns the top bid price, or 0 for an empty side.
func BestBid(book domain.MergedBook) float64 {
	if len(book.Bids) == 0 {
		return 0
	}
	return book.Bids[0].Price
}

// BestAsk returns the top ask price, or 0 for an empty side.
func BestAsk(book domain.MergedBook) float64 {
	if len(book.Asks) == 0 {
		return 0
	}
	return book.Asks[0].Price
}

// MidPrice returns the book midpoint, or 0 when either side is empty.
func MidPrice(book domain.MergedBook) float64 {
	bid, ask := BestBid(book), BestAsk(book)
	if bid <= 0 || ask <= 0 {
		return 0
	}
	return (bid + ask) / 2
}
