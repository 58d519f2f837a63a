package domain

import "time"

// ArbLeg is one position in a riskless-arbitrage basket: back one outcome at
// one source with a fixed share of the total stake.
type ArbLeg struct {
	OutcomeID          string  `json:"outcome_id"`
	SourceID           string  `json:"source_id"`
	Price              float64 `json:"price"`
	ImpliedProbability float64 `json:"implied_probability"`
	StakePercent       float64 `json:"stake_percent"`
	SizeUSD            float64 `json:"size_usd,omitempty"`
}

// ArbitrageOpportunity is a basket of legs whose combined cost guarantees a
// profit regardless of which outcome occurs. stake_percent_i * price_i is
// constant across legs (equal-payout allocation) and stakes sum to 100.
type ArbitrageOpportunity struct {
	ID                      string    `json:"id"`
	EventID                 string    `json:"event_id,omitempty"`
	Legs                    []ArbLeg  `json:"legs"`
	TotalImpliedProbability float64   `json:"total_implied_probability"`
	ProfitPercent           float64   `json:"profit_percent"`
	DetectedAt              time.Time `json:"detected_at"`
}

// TotalSizeUSD returns the summed available size across legs, or 0 when any
// leg lacks size data (a partial sum would mislead ranking).
func (o ArbitrageOpportunity) TotalSizeUSD() float64 {
	var total float64
	for _, leg := range o.Legs {
		if leg.SizeUSD <= 0 {
			return 0
		}
		total += leg.SizeUSD
	}
	return total
}

// ArbScanResult reports the outcome of one arbitrage scan. An empty
// Opportunities slice is the expected result for an efficient market and is
// accompanied by a human-readable reason, never an error.
type ArbScanResult struct {
	Opportunities []ArbitrageOpportunity `json:"opportunities"`
	Reason        string                 `json:"reason,omitempty"`
}

// ValueConfidence grades how well-corroborated a value edge is.
type ValueConfidence string

const (
	ConfidenceHigh   ValueConfidence = "high"   // >=10 sources and edge >= 5%
	ConfidenceMedium ValueConfidence = "medium" // >=5 sources and edge >= 3%
	ConfidenceLow    ValueConfidence = "low"
)

// ValueFlag marks a single quote priced favorably against the consensus.
type ValueFlag struct {
	ID                   string          `json:"id"`
	OutcomeID            string          `json:"outcome_id"`
	SourceID             string          `json:"source_id"`
	QuotedProbability    float64         `json:"quoted_probability"`
	ConsensusProbability float64         `json:"consensus_probability"`
	EdgePercent          float64         `json:"edge_percent"`
	Confidence           ValueConfidence `json:"confidence"`
	Sources              int             `json:"sources"`
	DetectedAt           time.Time       `json:"detected_at"`
}
