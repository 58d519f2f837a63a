package analytics

import (
	"math"
	"testing"

	"github.com/quantara/edgescan/internal/domain"
)

func bidLevels(levels ...domain.OrderLevel) []domain.OrderLevel { return levels }

// Selling $10,000 into bids holding only $6,000 of value fills $6,000 and
// reports CanFill false.
func TestSimulateFillPartial(t *testing.T) {
	bids := bidLevels(
		domain.OrderLevel{Price: 0.50, Size: 8000, Origin: domain.OriginDirect},  // $4,000
		domain.OrderLevel{Price: 0.40, Size: 5000, Origin: domain.OriginDirect}, // $2,000
	)
	sim := SimulateFill(bids, 10000, 0.52, FillSideSell)
	if math.Abs(sim.FilledUSD-6000) > 1e-9 {
		t.Fatalf("filled = %v, want 6000", sim.FilledUSD)
	}
	if sim.CanFill {
		t.Fatalf("book holds $6k, cannot fill $10k")
	}
	if sim.WorstPrice != 0.40 {
		t.Fatalf("worst = %v, want 0.40", sim.WorstPrice)
	}
	if sim.LevelsConsumed != 2 {
		t.Fatalf("levels = %d", sim.LevelsConsumed)
	}
}

func TestSimulateFillComplete(t *testing.T) {
	bids := bidLevels(
		domain.OrderLevel{Price: 0.50, Size: 8000}, // $4,000 of value
		domain.OrderLevel{Price: 0.48, Size: 4000},
	)
	sim := SimulateFill(bids, 2500, 0.50, FillSideSell)
	if !sim.CanFill {
		t.Fatalf("expected full fill")
	}
	if math.Abs(sim.FilledUSD-2500) > 1e-9 {
		t.Fatalf("filled = %v", sim.FilledUSD)
	}
	// Entire fill at the top level: no slippage against a 0.50 reference.
	if sim.AvgPrice != 0.50 || sim.SlippagePercent != 0 {
		t.Fatalf("avg = %v slippage = %v", sim.AvgPrice, sim.SlippagePercent)
	}
}

// A request larger than the top level's notional spills into the next level
// and the average price reflects both.
func TestSimulateFillSpillsPastTopLevel(t *testing.T) {
	bids := bidLevels(
		domain.OrderLevel{Price: 0.50, Size: 4000}, // $2,000 of value
		domain.OrderLevel{Price: 0.48, Size: 4000},
	)
	sim := SimulateFill(bids, 2500, 0.50, FillSideSell)
	if !sim.CanFill {
		t.Fatalf("expected full fill")
	}
	if sim.LevelsConsumed != 2 {
		t.Fatalf("levels = %d, want 2", sim.LevelsConsumed)
	}
	// $2,000 at 0.50 (4,000 shares) + $500 at 0.48 (1041.67 shares).
	shares := 4000.0 + 500.0/0.48
	wantAvg := 2500.0 / shares
	if math.Abs(sim.AvgPrice-wantAvg) > 1e-9 {
		t.Fatalf("avg = %v, want %v", sim.AvgPrice, wantAvg)
	}
	wantSlip := (0.50 - wantAvg) / 0.50 * 100
	if math.Abs(sim.SlippagePercent-wantSlip) > 1e-9 {
		t.Fatalf("slippage = %v, want %v", sim.SlippagePercent, wantSlip)
	}
}

func TestSimulateFillSlippage(t *testing.T) {
	bids := bidLevels(
		domain.OrderLevel{Price: 0.50, Size: 2000}, // $1,000 of value
		domain.OrderLevel{Price: 0.40, Size: 5000},
	)
	sim := SimulateFill(bids, 2000, 0.50, FillSideSell)
	if !sim.CanFill {
		t.Fatalf("expected full fill")
	}
	// $1,000 at 0.50 (2,000 shares) + $1,000 at 0.40 (2,500 shares).
	wantAvg := 2000.0 / 4500.0
	if math.Abs(sim.AvgPrice-wantAvg) > 1e-9 {
		t.Fatalf("avg = %v, want %v", sim.AvgPrice, wantAvg)
	}
	wantSlip := (0.50 - wantAvg) / 0.50 * 100
	if math.Abs(sim.SlippagePercent-wantSlip) > 1e-9 {
		t.Fatalf("slippage = %v, want %v", sim.SlippagePercent, wantSlip)
	}
}

func TestSimulateFillBuySide(t *testing.T) {
	asks := bidLevels(
		domain.OrderLevel{Price: 0.55, Size: 1000},
		domain.OrderLevel{Price: 0.60, Size: 5000},
	)
	sim := SimulateFill(asks, 1000, 0.55, FillSideBuy)
	if !sim.CanFill {
		t.Fatalf("expected full fill")
	}
	if sim.AvgPrice <= 0.55 {
		t.Fatalf("buy walking up the asks must average above the top: %v", sim.AvgPrice)
	}
	if sim.SlippagePercent <= 0 {
		t.Fatalf("buy above reference must slip: %v", sim.SlippagePercent)
	}
}

func TestSimulateFillNeverOverfills(t *testing.T) {
	bids := bidLevels(
		domain.OrderLevel{Price: 0.52, Size: 1234},
		domain.OrderLevel{Price: 0.51, Size: 987},
		domain.OrderLevel{Price: 0.33, Size: 15000},
	)
	for _, usd := range []float64{1, 500, 5000, 50000} {
		sim := SimulateFill(bids, usd, 0.52, FillSideSell)
		if sim.FilledUSD > sim.RequestedUSD+1e-9 {
			t.Fatalf("requested %v: filled %v exceeds request", usd, sim.FilledUSD)
		}
		if sim.CanFill != (math.Abs(sim.FilledUSD-sim.RequestedUSD) < 1e-9) {
			t.Fatalf("requested %v: CanFill=%v inconsistent with filled %v", usd, sim.CanFill, sim.FilledUSD)
		}
	}
}

func TestSimulateFillDegenerate(t *testing.T) {
	cases := []struct {
		name   string
		levels []domain.OrderLevel
		usd    float64
		ref    float64
	}{
		{"empty book", nil, 1000, 0.5},
		{"zero reference", bidLevels(domain.OrderLevel{Price: 0.5, Size: 100}), 1000, 0},
		{"negative reference", bidLevels(domain.OrderLevel{Price: 0.5, Size: 100}), 1000, -1},
		{"zero notional", bidLevels(domain.OrderLevel{Price: 0.5, Size: 100}), 0, 0.5},
	}
	for _, tc := range cases {
		sim := SimulateFill(tc.levels, tc.usd, tc.ref, FillSideSell)
		if sim.FilledUSD != 0 || sim.CanFill || sim.SlippagePercent != 100 {
			t.Fatalf("%s: got %+v, want zero-liquidity result", tc.name, sim)
		}
	}
}

func TestClassifyLiquidity(t *testing.T) {
	th := DefaultThresholds()

	deep := domain.MergedBook{
		Bids: bidLevels(domain.OrderLevel{Price: 0.499, Size: 1e6}),
		Asks: bidLevels(domain.OrderLevel{Price: 0.501, Size: 1e6}),
	}
	if tier := ClassifyLiquidity(deep, th); tier != domain.LiquidityExcellent {
		t.Fatalf("deep tight book tier = %q", tier)
	}

	thin := domain.MergedBook{
		Bids: bidLevels(domain.OrderLevel{Price: 0.45, Size: 100}),
		Asks: bidLevels(domain.OrderLevel{Price: 0.55, Size: 100}),
	}
	if tier := ClassifyLiquidity(thin, th); tier != domain.LiquidityIlliquid {
		t.Fatalf("book that cannot absorb the probe tier = %q", tier)
	}

	if tier := ClassifyLiquidity(domain.MergedBook{}, th); tier != domain.LiquidityIlliquid {
		t.Fatalf("empty book tier = %q", tier)
	}
}
