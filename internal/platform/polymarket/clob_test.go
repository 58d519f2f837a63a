package polymarket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quantara/edgescan/internal/domain"
)

func TestClobGetOrderBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/book" {
			t.Errorf("path = %q, want /book", r.URL.Path)
		}
		if got := r.URL.Query().Get("token_id"); got != "tok-9" {
			t.Errorf("token_id = %q, want tok-9", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"asset_id": "tok-9",
			"bids": [{"price": "0.48", "size": "1000"}],
			"asks": [{"price": "0.52", "size": "800"}]
		}`))
	}))
	defer srv.Close()

	client := NewClobClient(srv.URL)
	snap, err := client.GetOrderBook(context.Background(), "tok-9")
	if err != nil {
		t.Fatalf("GetOrderBook: %v", err)
	}
	if snap.AssetID != "tok-9" {
		t.Errorf("AssetID = %q", snap.AssetID)
	}
	if snap.BestBid != 0.48 || snap.BestAsk != 0.52 {
		t.Errorf("BBO = %v/%v, want 0.48/0.52", snap.BestBid, snap.BestAsk)
	}
}

func TestClobGetMidpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price": "0.505"}`))
	}))
	defer srv.Close()

	client := NewClobClient(srv.URL)
	mid, err := client.GetMidpoint(context.Background(), "tok-9")
	if err != nil {
		t.Fatalf("GetMidpoint: %v", err)
	}
	if mid != 0.505 {
		t.Errorf("midpoint = %v, want 0.505", mid)
	}
}

func TestClobRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClobClient(srv.URL)
	_, err := client.GetOrderBook(context.Background(), "tok-9")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestGammaGetMarketsSkipsTokenless(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": "m1", "question": "A?", "clobTokenIds": "[\"y1\", \"n1\"]", "active": true},
			{"id": "m2", "question": "B?", "clobTokenIds": "bad", "active": true}
		]`))
	}))
	defer srv.Close()

	client := NewGammaClient(srv.URL)
	markets, err := client.GetMarkets(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("GetMarkets: %v", err)
	}
	if len(markets) != 1 {
		t.Fatalf("markets = %d, want 1 after dropping tokenless entry", len(markets))
	}
	if markets[0].ID != "m1" {
		t.Errorf("ID = %q, want m1", markets[0].ID)
	}
}
