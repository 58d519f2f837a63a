package polymarket

import (
	"encoding/json"
	"math"
	"testing"
)

func TestAPIMarketToDomainMarket(t *testing.T) {
	raw := `{
		"id": "0xabc",
		"question": "Will it rain tomorrow?",
		"clobTokenIds": "[\"111\", \"222\"]",
		"active": "true",
		"closed": false,
		"endDateIso": "2026-12-31T00:00:00Z"
	}`

	var api APIMarket
	if err := json.Unmarshal([]byte(raw), &api); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	m := api.ToDomainMarket()
	if m.ID != "0xabc" {
		t.Errorf("ID = %q, want 0xabc", m.ID)
	}
	if m.YesTokenID != "111" || m.NoTokenID != "222" {
		t.Errorf("token IDs = %q/%q, want 111/222", m.YesTokenID, m.NoTokenID)
	}
	if !m.Active {
		t.Error("expected active market")
	}
	if m.EndDate.IsZero() {
		t.Error("expected parsed end date")
	}
}

func TestAPIMarketBadTokenList(t *testing.T) {
	api := APIMarket{ID: "m1", ClobTokenIDs: `["only-one"]`}
	m := api.ToDomainMarket()
	if m.YesTokenID != "" || m.NoTokenID != "" {
		t.Errorf("expected empty token IDs for non-pair list, got %q/%q", m.YesTokenID, m.NoTokenID)
	}
}

func TestFlexBoolVariants(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`"true"`, true},
		{`"TRUE"`, true},
		{`"false"`, false},
		{`"1"`, true},
	}
	for _, tc := range cases {
		var f flexBool
		if err := json.Unmarshal([]byte(tc.raw), &f); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if bool(f) != tc.want {
			t.Errorf("flexBool(%s) = %v, want %v", tc.raw, bool(f), tc.want)
		}
	}
}

func TestAPIBookToSnapshot(t *testing.T) {
	book := APIBook{
		AssetID: "tok-1",
		Bids: []APIBookLevel{
			{Price: "0.52", Size: "100"},
			{Price: "0.50", Size: "250"},
		},
		Asks: []APIBookLevel{
			{Price: "0.55", Size: "80"},
			{Price: "0.57", Size: "400"},
		},
		Timestamp: "1756400000000",
	}

	snap := book.ToSnapshot()
	if snap.AssetID != "tok-1" {
		t.Errorf("AssetID = %q", snap.AssetID)
	}
	if len(snap.Bids) != 2 || len(snap.Asks) != 2 {
		t.Fatalf("levels = %d bids / %d asks, want 2/2", len(snap.Bids), len(snap.Asks))
	}
	if snap.BestBid != 0.52 {
		t.Errorf("BestBid = %v, want 0.52", snap.BestBid)
	}
	if snap.BestAsk != 0.55 {
		t.Errorf("BestAsk = %v, want 0.55", snap.BestAsk)
	}
	if math.Abs(snap.MidPrice-0.535) > 1e-9 {
		t.Errorf("MidPrice = %v, want 0.535", snap.MidPrice)
	}
	if snap.Timestamp.UnixMilli() != 1756400000000 {
		t.Errorf("Timestamp = %v, want from ms field", snap.Timestamp)
	}
}

func TestAPIBookDropsBadLevels(t *testing.T) {
	book := APIBook{
		AssetID: "tok-2",
		Bids: []APIBookLevel{
			{Price: "0.40", Size: "50"},
			{Price: "garbage", Size: "10"},
			{Price: "0.30", Size: "-5"},
			{Price: "0", Size: "10"},
		},
	}

	snap := book.ToSnapshot()
	if len(snap.Bids) != 1 {
		t.Fatalf("bids = %d, want 1 after filtering", len(snap.Bids))
	}
	if snap.Bids[0].Price != 0.40 || snap.Bids[0].Size != 50 {
		t.Errorf("surviving level = %+v", snap.Bids[0])
	}
	if snap.MidPrice != 0 {
		t.Errorf("MidPrice = %v, want 0 with one empty side", snap.MidPrice)
	}
}

func TestParseLevelsExactDecimals(t *testing.T) {
	levels := parseLevels([]APIBookLevel{{Price: "0.555", Size: "123.45"}})
	if len(levels) != 1 {
		t.Fatalf("levels = %d, want 1", len(levels))
	}
	if levels[0].Price != 0.555 {
		t.Errorf("Price = %v, want exactly 0.555", levels[0].Price)
	}
}
