package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/quantara/edgescan/internal/analytics"
	"github.com/quantara/edgescan/internal/domain"
)

type memBookCache struct {
	snaps map[string]domain.OrderbookSnapshot
	gets  int
}

func (m *memBookCache) SetSnapshot(_ context.Context, assetID string, snap domain.OrderbookSnapshot) error {
	if m.snaps == nil {
		m.snaps = make(map[string]domain.OrderbookSnapshot)
	}
	m.snaps[assetID] = snap
	return nil
}

func (m *memBookCache) GetSnapshot(_ context.Context, assetID string) (domain.OrderbookSnapshot, error) {
	m.gets++
	snap, ok := m.snaps[assetID]
	if !ok {
		return domain.OrderbookSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

func (m *memBookCache) GetBBO(_ context.Context, assetID string) (float64, float64, error) {
	snap, ok := m.snaps[assetID]
	if !ok {
		return 0, 0, domain.ErrNotFound
	}
	return snap.BestBid, snap.BestAsk, nil
}

func testMarket() domain.Market {
	return domain.Market{ID: "m1", YesTokenID: "yes-1", NoTokenID: "no-1", Active: true}
}

func newBookService(books BookSource, cache domain.BookCache) *BookService {
	return NewBookService(books, cache, analytics.DefaultThresholds(), discardLogger())
}

func TestMergedBookCombinesComplement(t *testing.T) {
	books := &fakeBooks{snaps: map[string]domain.OrderbookSnapshot{
		"yes-1": {
			AssetID: "yes-1",
			Asks:    []domain.PriceLevel{{Price: 0.55, Size: 100}},
		},
		"no-1": {
			AssetID: "no-1",
			Bids:    []domain.PriceLevel{{Price: 0.40, Size: 200}},
		},
	}}
	svc := newBookService(books, nil)

	book, err := svc.MergedBook(context.Background(), testMarket())
	if err != nil {
		t.Fatalf("MergedBook: %v", err)
	}
	if book.View != domain.ViewMerged {
		t.Errorf("View = %q, want merged", book.View)
	}
	// NO bid 0.40 becomes a synthetic YES ask at 0.60.
	if len(book.Asks) != 2 {
		t.Fatalf("asks = %d, want 2", len(book.Asks))
	}
	if book.Asks[0].Price != 0.55 || book.Asks[0].Origin != domain.OriginDirect {
		t.Errorf("first ask = %+v", book.Asks[0])
	}
	if math.Abs(book.Asks[1].Price-0.60) > 1e-9 || book.Asks[1].Origin != domain.OriginSynthetic {
		t.Errorf("second ask = %+v", book.Asks[1])
	}
}

func TestMergedBookRawViewWhenComplementMissing(t *testing.T) {
	books := &fakeBooks{snaps: map[string]domain.OrderbookSnapshot{
		"yes-1": {AssetID: "yes-1", Asks: []domain.PriceLevel{{Price: 0.55, Size: 100}}},
	}}
	svc := newBookService(books, nil)

	book, err := svc.MergedBook(context.Background(), testMarket())
	if err != nil {
		t.Fatalf("MergedBook: %v", err)
	}
	if book.View != domain.ViewRaw {
		t.Errorf("View = %q, want raw", book.View)
	}
}

func TestMergedBookErrsWithoutPrimary(t *testing.T) {
	svc := newBookService(&fakeBooks{}, nil)
	_, err := svc.MergedBook(context.Background(), testMarket())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSnapshotPrefersCache(t *testing.T) {
	cache := &memBookCache{}
	cache.SetSnapshot(context.Background(), "yes-1", domain.OrderbookSnapshot{
		AssetID: "yes-1",
		Asks:    []domain.PriceLevel{{Price: 0.50, Size: 10}},
	})
	// The source would return a different book; the cached one must win.
	books := &fakeBooks{snaps: map[string]domain.OrderbookSnapshot{
		"yes-1": {AssetID: "yes-1", Asks: []domain.PriceLevel{{Price: 0.99, Size: 1}}},
	}}
	svc := newBookService(books, cache)

	snap, err := svc.snapshot(context.Background(), "yes-1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Asks[0].Price != 0.50 {
		t.Errorf("ask price = %v, want cached 0.50", snap.Asks[0].Price)
	}
}

func TestSnapshotBackfillsCache(t *testing.T) {
	cache := &memBookCache{}
	books := &fakeBooks{snaps: map[string]domain.OrderbookSnapshot{
		"yes-1": {AssetID: "yes-1", Asks: []domain.PriceLevel{{Price: 0.50, Size: 10}}},
	}}
	svc := newBookService(books, cache)

	if _, err := svc.snapshot(context.Background(), "yes-1"); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if _, ok := cache.snaps["yes-1"]; !ok {
		t.Error("expected fetched snapshot to be cached")
	}
}

func TestSimulateImpactPartialFill(t *testing.T) {
	// Total ask depth: 3000*0.50 + 4500*0.52 + 4000*0.55 = 6040 USD.
	books := &fakeBooks{snaps: map[string]domain.OrderbookSnapshot{
		"yes-1": {
			AssetID: "yes-1",
			Bids:    []domain.PriceLevel{{Price: 0.49, Size: 3000}},
			Asks: []domain.PriceLevel{
				{Price: 0.50, Size: 3000},
				{Price: 0.52, Size: 4500},
				{Price: 0.55, Size: 4000},
			},
		},
	}}
	svc := newBookService(books, nil)

	sim, err := svc.SimulateImpact(context.Background(), testMarket(), 10000, analytics.FillSideBuy)
	if err != nil {
		t.Fatalf("SimulateImpact: %v", err)
	}
	if sim.CanFill {
		t.Error("10k request against 6k book must not fill")
	}
	if math.Abs(sim.FilledUSD-6040) > 1e-6 {
		t.Errorf("FilledUSD = %v, want 6040", sim.FilledUSD)
	}
	if sim.LevelsConsumed != 3 {
		t.Errorf("LevelsConsumed = %d, want 3", sim.LevelsConsumed)
	}
	if sim.Liquidity == "" {
		t.Error("expected liquidity tier on simulation")
	}
}

func TestSimulateImpactRejectsEmptySide(t *testing.T) {
	books := &fakeBooks{snaps: map[string]domain.OrderbookSnapshot{
		"yes-tok": {
			AssetID: "yes-tok",
			Bids:    []domain.PriceLevel{{Price: 0.48, Size: 1000}},
		},
	}}
	svc := newBookService(books, nil)

	market := domain.Market{ID: "m1", YesTokenID: "yes-tok"}
	_, err := svc.SimulateImpact(context.Background(), market, 1000, analytics.FillSideBuy)
	if !errors.Is(err, domain.ErrDegenerateBook) {
		t.Fatalf("err = %v, want ErrDegenerateBook", err)
	}
}
