package oddsapi

import (
	"time"

	"github.com/quantara/edgescan/internal/domain"
)

// APISport is one entry of the /sports listing.
type APISport struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// APIEvent is one event of the /odds response, carrying every bookmaker
// that quotes it.
type APIEvent struct {
	ID           string         `json:"id"`
	SportKey     string         `json:"sport_key"`
	CommenceTime string         `json:"commence_time"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	Bookmakers   []APIBookmaker `json:"bookmakers"`
}

// APIBookmaker is one bookmaker's markets for an event.
type APIBookmaker struct {
	Key     string      `json:"key"`
	Title   string      `json:"title"`
	Markets []APIMarket `json:"markets"`
}

// APIMarket is one market type (h2h, totals, ...) quoted by a bookmaker.
type APIMarket struct {
	Key      string       `json:"key"`
	Outcomes []APIOutcome `json:"outcomes"`
}

// APIOutcome is one selection with its decimal odds.
type APIOutcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ToEventQuotes flattens the event into a domain.Event plus one RawQuote per
// (bookmaker, outcome) pair from the h2h market. Outcome IDs are the
// bookmaker outcome names, which the API keeps consistent across books for
// the same event.
func (e *APIEvent) ToEventQuotes() EventQuotes {
	eq := EventQuotes{
		Event: domain.Event{
			ID:   e.ID,
			Name: e.HomeTeam + " vs " + e.AwayTeam,
		},
	}
	if t, err := time.Parse(time.RFC3339, e.CommenceTime); err == nil {
		eq.Event.StartTime = t
	}

	seen := make(map[string]bool)
	for _, bk := range e.Bookmakers {
		for _, mkt := range bk.Markets {
			if mkt.Key != "h2h" {
				continue
			}
			for _, out := range mkt.Outcomes {
				if !seen[out.Name] {
					seen[out.Name] = true
					eq.Event.OutcomeIDs = append(eq.Event.OutcomeIDs, out.Name)
				}
				eq.Quotes = append(eq.Quotes, domain.RawQuote{
					OutcomeID: out.Name,
					SourceID:  bk.Key,
					Price:     out.Price,
				})
			}
		}
	}
	return eq
}
