package domain

import "time"

// Market is a binary prediction market: one question with complementary
// YES/NO tokens whose prices sum to ~1 by construction.
type Market struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	YesTokenID string    `json:"yes_token_id"`
	NoTokenID  string    `json:"no_token_id"`
	Active     bool      `json:"active"`
	EndDate    time.Time `json:"end_date,omitempty"`
}

// Event is a bookmaker event with mutually exclusive outcomes (match winner,
// 1x2, etc.), quoted in decimal odds by multiple books.
type Event struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OutcomeIDs []string  `json:"outcome_ids"`
	StartTime  time.Time `json:"start_time,omitempty"`
}

// ScanReport bundles everything one full scan produced for an event, in the
// shape archived to blob storage and returned by the scan service.
type ScanReport struct {
	ID            string            `json:"id"`
	EventID       string            `json:"event_id"`
	Efficiency    EfficiencySummary `json:"efficiency"`
	Arbitrage     ArbScanResult     `json:"arbitrage"`
	ValueFlags    []ValueFlag       `json:"value_flags"`
	SourcesPolled int               `json:"sources_polled"`
	SourcesFailed int               `json:"sources_failed"`
	ScannedAt     time.Time         `json:"scanned_at"`
}

// ListOpts carries standard pagination parameters for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}
