package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quantara/edgescan/internal/domain"
)

type fakeOppStore struct {
	opps []domain.ArbitrageOpportunity
}

func (f *fakeOppStore) Insert(_ context.Context, opp domain.ArbitrageOpportunity) error {
	f.opps = append(f.opps, opp)
	return nil
}

func (f *fakeOppStore) GetByID(_ context.Context, id string) (domain.ArbitrageOpportunity, error) {
	for _, opp := range f.opps {
		if opp.ID == id {
			return opp, nil
		}
	}
	return domain.ArbitrageOpportunity{}, domain.ErrNotFound
}

func (f *fakeOppStore) ListRecent(_ context.Context, limit int) ([]domain.ArbitrageOpportunity, error) {
	if limit > len(f.opps) {
		limit = len(f.opps)
	}
	return f.opps[:limit], nil
}

func (f *fakeOppStore) ListByEvent(_ context.Context, eventID string, _ domain.ListOpts) ([]domain.ArbitrageOpportunity, error) {
	var out []domain.ArbitrageOpportunity
	for _, opp := range f.opps {
		if opp.EventID == eventID {
			out = append(out, opp)
		}
	}
	return out, nil
}

func (f *fakeOppStore) CountSince(_ context.Context, since time.Time) (int, error) {
	var n int
	for _, opp := range f.opps {
		if opp.DetectedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func seededOppStore() *fakeOppStore {
	return &fakeOppStore{opps: []domain.ArbitrageOpportunity{
		{ID: "opp-1", EventID: "ev-1", ProfitPercent: 3.7, DetectedAt: time.Now().UTC()},
		{ID: "opp-2", EventID: "ev-2", ProfitPercent: 1.2, DetectedAt: time.Now().UTC().Add(-48 * time.Hour)},
	}}
}

func TestListRecentOpportunities(t *testing.T) {
	h := NewArbHandler(seededOppStore(), discardLogger())
	rec := httptest.NewRecorder()
	h.ListRecent(rec, httptest.NewRequest(http.MethodGet, "/api/arbitrage/recent?limit=1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp listOppsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Opportunities) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(resp.Opportunities))
	}
}

func TestGetOpportunityByID(t *testing.T) {
	h := NewArbHandler(seededOppStore(), discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/arbitrage/opp-1", nil)
	req.SetPathValue("id", "opp-1")
	rec := httptest.NewRecorder()
	h.GetByID(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/arbitrage/nope", nil)
	req.SetPathValue("id", "nope")
	rec = httptest.NewRecorder()
	h.GetByID(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestOpportunityStats(t *testing.T) {
	h := NewArbHandler(seededOppStore(), discardLogger())
	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/arbitrage/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// Only opp-1 falls inside the default 24h window.
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
}

func TestOpportunityEndpointsWithoutStore(t *testing.T) {
	h := NewArbHandler(nil, discardLogger())
	rec := httptest.NewRecorder()
	h.ListRecent(rec, httptest.NewRequest(http.MethodGet, "/api/arbitrage/recent", nil))
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", rec.Code)
	}
}

type fakeFlagStore struct {
	flags []domain.ValueFlag
}

func (f *fakeFlagStore) Insert(_ context.Context, flag domain.ValueFlag) error {
	f.flags = append(f.flags, flag)
	return nil
}

func (f *fakeFlagStore) ListRecent(_ context.Context, limit int) ([]domain.ValueFlag, error) {
	if limit > len(f.flags) {
		limit = len(f.flags)
	}
	return f.flags[:limit], nil
}

func (f *fakeFlagStore) ListByConfidence(_ context.Context, conf domain.ValueConfidence, _ domain.ListOpts) ([]domain.ValueFlag, error) {
	var out []domain.ValueFlag
	for _, flag := range f.flags {
		if flag.Confidence == conf {
			out = append(out, flag)
		}
	}
	return out, nil
}

func TestListRecentValueFlags(t *testing.T) {
	store := &fakeFlagStore{flags: []domain.ValueFlag{
		{ID: "f1", Confidence: domain.ConfidenceHigh},
		{ID: "f2", Confidence: domain.ConfidenceLow},
	}}
	h := NewValueHandler(store, discardLogger())

	rec := httptest.NewRecorder()
	h.ListRecent(rec, httptest.NewRequest(http.MethodGet, "/api/value/recent?confidence=high", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Flags []domain.ValueFlag `json:"flags"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Flags) != 1 || resp.Flags[0].ID != "f1" {
		t.Errorf("flags = %+v", resp.Flags)
	}

	rec = httptest.NewRecorder()
	h.ListRecent(rec, httptest.NewRequest(http.MethodGet, "/api/value/recent?confidence=wild", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for bad confidence", rec.Code)
	}
}
