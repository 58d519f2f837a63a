package analytics

import (
	"math"
	"testing"

	"github.com/quantara/edgescan/internal/domain"
)

func quote(outcome, source string, implied float64) domain.Quote {
	return domain.Quote{
		OutcomeID:          outcome,
		SourceID:           source,
		ImpliedProbability: implied,
		RawPrice:           1 / implied,
	}
}

func TestAnalyzeEfficiencyVig(t *testing.T) {
	// A classic 1x2 book with 4% overround.
	quotes := []domain.Quote{
		quote("home", "bk1", 0.50),
		quote("draw", "bk1", 0.28),
		quote("away", "bk1", 0.26),
	}
	summary := AnalyzeEfficiency(quotes, DefaultThresholds())
	if len(summary.PerSource) != 1 {
		t.Fatalf("per-source entries = %d", len(summary.PerSource))
	}
	src := summary.PerSource[0]
	if math.Abs(src.TotalImpliedProbability-1.04) > 1e-9 {
		t.Fatalf("total implied = %v", src.TotalImpliedProbability)
	}
	if math.Abs(src.VigPercent-4.0) > 1e-9 {
		t.Fatalf("vig = %v, want 4.0", src.VigPercent)
	}
	if src.Tier != domain.TierFair {
		t.Fatalf("tier = %q, want fair", src.Tier)
	}
}

func TestConsensusSumsToOne(t *testing.T) {
	quotes := []domain.Quote{
		quote("home", "bk1", 0.52), quote("away", "bk1", 0.55),
		quote("home", "bk2", 0.49), quote("away", "bk2", 0.56),
		quote("home", "bk3", 0.51),
	}
	summary := AnalyzeEfficiency(quotes, DefaultThresholds())
	var sum float64
	for _, p := range summary.Consensus {
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Fatalf("consensus sum = %v, want 1.0", sum)
	}
}

func TestLowestVigSource(t *testing.T) {
	quotes := []domain.Quote{
		quote("a", "sharp", 0.49), quote("b", "sharp", 0.495),
		quote("a", "square", 0.53), quote("b", "square", 0.55),
	}
	summary := AnalyzeEfficiency(quotes, DefaultThresholds())
	if summary.LowestVigSourceID != "sharp" {
		t.Fatalf("lowest vig source = %q, want sharp", summary.LowestVigSourceID)
	}
}

func TestVigTiers(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		vig  float64
		want domain.EfficiencyTier
	}{
		{0.2, domain.TierExcellent},
		{-0.3, domain.TierExcellent},
		{1.5, domain.TierGood},
		{3.0, domain.TierFair},
		{7.0, domain.TierPoor},
		{-2.0, domain.TierExploitable},
	}
	for _, tc := range cases {
		if got := classifyVig(tc.vig, th); got != tc.want {
			t.Fatalf("vig %v: tier = %q, want %q", tc.vig, got, tc.want)
		}
	}
}

func TestAnalyzeOutcomeSetInsufficientData(t *testing.T) {
	set := domain.OutcomeSet{
		EventID: "evt-1",
		Outcomes: []domain.Outcome{
			{ID: "home", Quotes: []domain.Quote{quote("home", "bk1", 0.5)}},
			{ID: "away", Quotes: []domain.Quote{quote("away", "bk1", 0.52)}},
			{ID: "draw"}, // nobody quotes the draw
		},
	}
	summary := AnalyzeOutcomeSet(set, DefaultThresholds())
	if summary.EventID != "evt-1" {
		t.Fatalf("event id = %q", summary.EventID)
	}
	if len(summary.InsufficientData) != 1 || summary.InsufficientData[0] != "draw" {
		t.Fatalf("insufficient data = %v, want [draw]", summary.InsufficientData)
	}
	if _, ok := summary.Consensus["draw"]; ok {
		t.Fatalf("draw must be excluded from consensus")
	}
	var sum float64
	for _, p := range summary.Consensus {
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Fatalf("consensus sum = %v, want 1.0", sum)
	}
}

func TestAnalyzeEfficiencyEmpty(t *testing.T) {
	summary := AnalyzeEfficiency(nil, DefaultThresholds())
	if len(summary.PerSource) != 0 || len(summary.Consensus) != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}
