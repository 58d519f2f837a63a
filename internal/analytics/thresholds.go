// Package analytics implements the quote-analytics engine: quote
// normalization, market-efficiency and consensus computation, riskless
// arbitrage detection with stake sizing, value scanning, synthetic order-book
// merging, and market-impact simulation. Every function is a pure computation
// over a point-in-time snapshot; nothing here performs I/O or holds state.
package analytics

// Thresholds collects the tunable cutoffs used across the engine. They are
// heuristic safety buffers and presentation bucket boundaries, not contract
// behavior; operators retune them through the [analytics] config section.
type Thresholds struct {
	// MarginThreshold is subtracted from 1 before declaring arbitrage, to
	// absorb quote staleness and fill slippage. Default 0.005: a basket
	// must cost under 0.995 to be flagged.
	MarginThreshold float64

	// MinEdgePercent is the default value-scan edge cutoff.
	MinEdgePercent float64

	// Efficiency tier boundaries, in vig percent.
	ExcellentVigPercent float64
	GoodVigPercent      float64
	FairVigPercent      float64

	// ProbeNotionalUSD is the standard order size used when classifying
	// liquidity.
	ProbeNotionalUSD float64

	// Liquidity tier boundaries. A tier requires both its spread and its
	// slippage bound to hold at the probe size.
	ExcellentSpreadPercent   float64
	GoodSpreadPercent        float64
	ModerateSpreadPercent    float64
	ExcellentSlippagePercent float64
	GoodSlippagePercent      float64
	ModerateSlippagePercent  float64
}

// DefaultThresholds returns the standard cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MarginThreshold:          0.005,
		MinEdgePercent:           1.0,
		ExcellentVigPercent:      0.5,
		GoodVigPercent:           2.0,
		FairVigPercent:           5.0,
		ProbeNotionalUSD:         5000,
		ExcellentSpreadPercent:   1.0,
		GoodSpreadPercent:        2.0,
		ModerateSpreadPercent:    5.0,
		ExcellentSlippagePercent: 0.5,
		GoodSlippagePercent:      1.0,
		ModerateSlippagePercent:  3.0,
	}
}

// Value-scan confidence requirements: an edge estimated from few sources is
// statistically weaker, so higher confidence demands broader corroboration.
const (
	highConfidenceSources     = 10
	highConfidenceEdgePercent = 5.0

	mediumConfidenceSources     = 5
	mediumConfidenceEdgePercent = 3.0
)
