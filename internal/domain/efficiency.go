package domain

// EfficiencyTier buckets a source's vig into a qualitative rating.
type EfficiencyTier string

const (
	TierExcellent   EfficiencyTier = "excellent"   // |vig| < 0.5%
	TierGood        EfficiencyTier = "good"        // vig < 2%
	TierFair        EfficiencyTier = "fair"        // vig < 5%
	TierPoor        EfficiencyTier = "poor"        // vig >= 5%
	TierExploitable EfficiencyTier = "exploitable" // vig < 0: the book itself is arbitrageable
)

// SourceEfficiency is one source's overround across all outcomes it quotes.
type SourceEfficiency struct {
	SourceID                string         `json:"source_id"`
	TotalImpliedProbability float64        `json:"total_implied_probability"`
	VigPercent              float64        `json:"vig_percent"`
	Tier                    EfficiencyTier `json:"tier"`
	QuotedOutcomes          int            `json:"quoted_outcomes"`
}

// EfficiencySummary is the cross-source view of one event: per-source vig,
// the lowest-vig source, and the vig-adjusted consensus probabilities.
// Consensus values always sum to 1 over the outcomes that have data.
type EfficiencySummary struct {
	EventID           string             `json:"event_id,omitempty"`
	PerSource         []SourceEfficiency `json:"per_source"`
	Consensus         map[string]float64 `json:"consensus"`
	LowestVigSourceID string             `json:"lowest_vig_source_id,omitempty"`

	// InsufficientData lists outcomes quoted by zero sources; they are
	// excluded from the consensus rather than carried at zero.
	InsufficientData []string `json:"insufficient_data,omitempty"`
}
