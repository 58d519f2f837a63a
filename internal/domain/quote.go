// Package domain defines the core records shared across edgescan: quotes,
// efficiency summaries, arbitrage opportunities, order books, and the store,
// cache, and blob interfaces implemented by the infrastructure packages.
package domain

import "time"

// PriceConvention identifies how a raw price encodes probability.
type PriceConvention string

const (
	// ConventionDecimalOdds marks European decimal odds (payout per unit
	// staked, must be > 1). Implied probability is 1/odds.
	ConventionDecimalOdds PriceConvention = "decimal_odds"

	// ConventionDirectProbability marks prediction-market token prices in
	// (0,1). The price is the implied probability.
	ConventionDirectProbability PriceConvention = "direct_probability"
)

// RawQuote is an unvalidated price observation handed over by a retrieval
// client. It carries no guarantee beyond having been parsed to numbers.
type RawQuote struct {
	OutcomeID string  `json:"outcome_id"`
	SourceID  string  `json:"source_id"`
	Price     float64 `json:"price"`
	SizeUSD   float64 `json:"size_usd,omitempty"` // 0 when depth is unknown
}

// Quote is a validated, normalized price observation for one outcome from
// one source. ImpliedProbability is always derivable from RawPrice and the
// convention the quote was normalized under.
type Quote struct {
	OutcomeID          string  `json:"outcome_id"`
	SourceID           string  `json:"source_id"`
	ImpliedProbability float64 `json:"implied_probability"`
	RawPrice           float64 `json:"raw_price"`
	SizeUSD            float64 `json:"size_usd,omitempty"`
}

// Outcome groups every quote observed for a single outcome of an event.
type Outcome struct {
	ID     string  `json:"id"`
	Quotes []Quote `json:"quotes"`
}

// OutcomeSet is the ordered collection of outcomes for one event at one
// point in time. Outcome IDs are unique within a set; a binary prediction
// market always carries exactly two complementary outcomes.
type OutcomeSet struct {
	EventID    string    `json:"event_id"`
	Outcomes   []Outcome `json:"outcomes"`
	ObservedAt time.Time `json:"observed_at"`
}

// Outcome returns the outcome with the given ID, or false when the set does
// not contain it.
func (s OutcomeSet) Outcome(id string) (Outcome, bool) {
	for _, o := range s.Outcomes {
		if o.ID == id {
			return o, true
		}
	}
	return Outcome{}, false
}
