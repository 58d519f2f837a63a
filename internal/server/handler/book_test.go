package handler

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quantara/edgescan/internal/analytics"
	"github.com/quantara/edgescan/internal/domain"
)

type fakeBookService struct {
	book      domain.MergedBook
	sim       domain.FillSimulation
	tier      domain.LiquidityTier
	err       error
	lastProbe float64
}

func (f *fakeBookService) MergedBook(context.Context, domain.Market) (domain.MergedBook, error) {
	return f.book, f.err
}

func (f *fakeBookService) SimulateImpact(context.Context, domain.Market, float64, analytics.FillSide) (domain.FillSimulation, error) {
	return f.sim, f.err
}

func (f *fakeBookService) Liquidity(_ context.Context, _ domain.Market, probeUSD float64) (domain.LiquidityTier, error) {
	f.lastProbe = probeUSD
	return f.tier, f.err
}

type fakeMarketSource struct {
	markets map[string]domain.Market
}

func (f *fakeMarketSource) GetMarket(_ context.Context, id string) (domain.Market, error) {
	m, ok := f.markets[id]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeMarketSource) GetMarkets(context.Context, int, int) ([]domain.Market, error) {
	out := make([]domain.Market, 0, len(f.markets))
	for _, m := range f.markets {
		out = append(out, m)
	}
	return out, nil
}

func newBookHandler(svc BookService, markets MarketSource) *BookHandler {
	return NewBookHandler(svc, markets, analytics.DefaultThresholds(), discardLogger())
}

func TestMergeInlineBooks(t *testing.T) {
	h := newBookHandler(nil, nil)
	rec := postJSON(t, h.Merge, `{
		"asset_id": "yes-1",
		"primary": {"asks": [{"price": 0.55, "size": 100}]},
		"complement": {"bids": [{"price": 0.40, "size": 200}]}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var book domain.MergedBook
	if err := json.Unmarshal(rec.Body.Bytes(), &book); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if book.View != domain.ViewMerged {
		t.Errorf("View = %q, want merged", book.View)
	}
	if len(book.Asks) != 2 {
		t.Fatalf("asks = %d, want direct 0.55 plus synthetic 0.60", len(book.Asks))
	}
	if book.Asks[1].Origin != domain.OriginSynthetic || math.Abs(book.Asks[1].Price-0.60) > 1e-9 {
		t.Errorf("synthetic ask = %+v", book.Asks[1])
	}
}

func TestMergeRequiresPrimaryOrMarket(t *testing.T) {
	h := newBookHandler(nil, nil)
	rec := postJSON(t, h.Merge, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMergeByMarketID(t *testing.T) {
	svc := &fakeBookService{book: domain.MergedBook{AssetID: "yes-1", View: domain.ViewMerged}}
	markets := &fakeMarketSource{markets: map[string]domain.Market{
		"m1": {ID: "m1", YesTokenID: "yes-1", NoTokenID: "no-1"},
	}}
	h := newBookHandler(svc, markets)

	rec := postJSON(t, h.Merge, `{"market_id": "m1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, h.Merge, `{"market_id": "unknown"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestImpactInlinePartialFill(t *testing.T) {
	h := newBookHandler(nil, nil)
	rec := postJSON(t, h.Impact, `{
		"amount_usd": 10000,
		"side": "buy",
		"primary": {
			"bids": [{"price": 0.49, "size": 3000}],
			"asks": [
				{"price": 0.50, "size": 3000},
				{"price": 0.52, "size": 4500},
				{"price": 0.55, "size": 4000}
			]
		}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var sim domain.FillSimulation
	if err := json.Unmarshal(rec.Body.Bytes(), &sim); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sim.CanFill {
		t.Error("10k request against 6k book must not fill")
	}
	if math.Abs(sim.FilledUSD-6040) > 1e-6 {
		t.Errorf("FilledUSD = %v, want 6040", sim.FilledUSD)
	}
	if sim.Liquidity == "" {
		t.Error("expected a liquidity tier")
	}
}

func TestImpactRejectsBadSide(t *testing.T) {
	h := newBookHandler(nil, nil)
	rec := postJSON(t, h.Impact, `{"amount_usd": 100, "side": "short", "primary": {"asks": [{"price": 0.5, "size": 10}]}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestLiquidityEndpoint(t *testing.T) {
	svc := &fakeBookService{tier: domain.LiquidityGood}
	markets := &fakeMarketSource{markets: map[string]domain.Market{
		"m1": {ID: "m1", YesTokenID: "yes-1"},
	}}
	h := newBookHandler(svc, markets)

	req := httptest.NewRequest(http.MethodGet, "/api/markets/m1/liquidity", nil)
	req.SetPathValue("id", "m1")
	rec := httptest.NewRecorder()
	h.Liquidity(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		MarketID  string `json:"market_id"`
		Liquidity string `json:"liquidity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Liquidity != string(domain.LiquidityGood) {
		t.Errorf("liquidity = %q, want good", resp.Liquidity)
	}
}

func TestLiquidityNotConfigured(t *testing.T) {
	h := newBookHandler(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/markets/m1/liquidity", nil)
	req.SetPathValue("id", "m1")
	rec := httptest.NewRecorder()
	h.Liquidity(rec, req)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", rec.Code)
	}
}

func TestLiquidityProbeSizeOverride(t *testing.T) {
	svc := &fakeBookService{tier: domain.LiquidityModerate}
	markets := &fakeMarketSource{markets: map[string]domain.Market{
		"m1": {ID: "m1", YesTokenID: "yes-1"},
	}}
	h := newBookHandler(svc, markets)

	req := httptest.NewRequest(http.MethodGet, "/api/markets/m1/liquidity?size=25000", nil)
	req.SetPathValue("id", "m1")
	rec := httptest.NewRecorder()
	h.Liquidity(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.lastProbe != 25000 {
		t.Errorf("probe size = %v, want 25000", svc.lastProbe)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/markets/m1/liquidity?size=-5", nil)
	req.SetPathValue("id", "m1")
	rec = httptest.NewRecorder()
	h.Liquidity(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for negative size", rec.Code)
	}
}
