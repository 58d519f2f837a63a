package analytics

import (
	"math"
	"testing"

	"github.com/quantara/edgescan/internal/domain"
)

func TestScanValueEdge(t *testing.T) {
	// Consensus says 0.55, bk2 sells at an implied 0.50: 10% edge.
	quotes := []domain.Quote{
		quote("home", "bk1", 0.58),
		quote("home", "bk2", 0.50),
	}
	consensus := map[string]float64{"home": 0.55}

	flags := ScanValue(quotes, consensus, 1.0)
	if len(flags) != 1 {
		t.Fatalf("flags = %d, want 1", len(flags))
	}
	f := flags[0]
	if f.SourceID != "bk2" {
		t.Fatalf("flagged source = %q", f.SourceID)
	}
	if math.Abs(f.EdgePercent-10.0) > 1e-9 {
		t.Fatalf("edge = %v, want 10.0", f.EdgePercent)
	}
}

func TestScanValueThreshold(t *testing.T) {
	quotes := []domain.Quote{quote("a", "s1", 0.50)}
	consensus := map[string]float64{"a": 0.51} // 2% edge

	if flags := ScanValue(quotes, consensus, 3.0); len(flags) != 0 {
		t.Fatalf("2%% edge must not pass a 3%% threshold, got %d flags", len(flags))
	}
	if flags := ScanValue(quotes, consensus, 1.0); len(flags) != 1 {
		t.Fatalf("2%% edge must pass a 1%% threshold")
	}
}

func TestScanValueConfidence(t *testing.T) {
	mkQuotes := func(n int, implied float64) []domain.Quote {
		var qs []domain.Quote
		for i := 0; i < n; i++ {
			qs = append(qs, quote("o", string(rune('a'+i)), 0.55))
		}
		qs[0].ImpliedProbability = implied
		return qs
	}

	// 12 sources, ~10% edge: high.
	flags := ScanValue(mkQuotes(12, 0.50), map[string]float64{"o": 0.55}, 1.0)
	if len(flags) == 0 || flags[0].Confidence != domain.ConfidenceHigh {
		t.Fatalf("expected high confidence, got %+v", flags)
	}

	// 6 sources, ~4% edge: medium.
	flags = ScanValue(mkQuotes(6, 0.53), map[string]float64{"o": 0.55}, 1.0)
	if len(flags) == 0 || flags[0].Confidence != domain.ConfidenceMedium {
		t.Fatalf("expected medium confidence, got %+v", flags)
	}

	// 3 sources: low regardless of edge.
	flags = ScanValue(mkQuotes(3, 0.45), map[string]float64{"o": 0.55}, 1.0)
	if len(flags) == 0 || flags[0].Confidence != domain.ConfidenceLow {
		t.Fatalf("expected low confidence, got %+v", flags)
	}
}

func TestScanValueSkipsUnknownOutcome(t *testing.T) {
	quotes := []domain.Quote{quote("mystery", "s1", 0.4)}
	if flags := ScanValue(quotes, map[string]float64{"other": 0.5}, 0.5); len(flags) != 0 {
		t.Fatalf("outcome without consensus must be skipped")
	}
}
