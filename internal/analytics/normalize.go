package analytics

import (
	"fmt"
	"math"

	"github.com/quantara/edgescan/internal/domain"
)

// NormalizeQuote converts a raw price observation into a validated Quote
// under the given price convention.
//
// Decimal odds must exceed 1.0: odds at or below even-money-per-unit imply a
// probability of 1 or more and mark a malformed feed entry. Direct
// probabilities must lie strictly inside (0,1); a token priced at exactly 0
// or 1 is a resolved market and is excluded from live analysis.
//
// Structurally invalid input (NaN/Inf price, negative size) is rejected here
// so it never reaches the aggregation functions.
func NormalizeQuote(raw domain.RawQuote, convention domain.PriceConvention) (domain.Quote, error) {
	if math.IsNaN(raw.Price) || math.IsInf(raw.Price, 0) {
		return domain.Quote{}, fmt.Errorf("%w: non-finite price for outcome %q from %q",
			domain.ErrInvalidQuote, raw.OutcomeID, raw.SourceID)
	}
	if raw.SizeUSD < 0 || math.IsNaN(raw.SizeUSD) || math.IsInf(raw.SizeUSD, 0) {
		return domain.Quote{}, fmt.Errorf("%w: invalid size %v for outcome %q from %q",
			domain.ErrInvalidQuote, raw.SizeUSD, raw.OutcomeID, raw.SourceID)
	}

	var implied float64
	switch convention {
	case domain.ConventionDecimalOdds:
		if raw.Price <= 1.0 {
			return domain.Quote{}, fmt.Errorf("%w: decimal odds %.4f must be > 1.0",
				domain.ErrInvalidQuote, raw.Price)
		}
		implied = 1.0 / raw.Price

	case domain.ConventionDirectProbability:
		if raw.Price <= 0 || raw.Price >= 1 {
			return domain.Quote{}, fmt.Errorf("%w: token price %.4f outside (0,1), market resolved or malformed",
				domain.ErrInvalidQuote, raw.Price)
		}
		implied = raw.Price

	default:
		return domain.Quote{}, fmt.Errorf("%w: unknown price convention %q",
			domain.ErrInvalidQuote, convention)
	}

	return domain.Quote{
		OutcomeID:          raw.OutcomeID,
		SourceID:           raw.SourceID,
		ImpliedProbability: implied,
		RawPrice:           raw.Price,
		SizeUSD:            raw.SizeUSD,
	}, nil
}

// NormalizeQuotes converts a batch of raw quotes under one convention,
// silently dropping invalid entries and reporting how many were rejected.
// Filtering at this boundary keeps the core functions free of coercion.
func NormalizeQuotes(raws []domain.RawQuote, convention domain.PriceConvention) (quotes []domain.Quote, rejected int) {
	quotes = make([]domain.Quote, 0, len(raws))
	for _, raw := range raws {
		q, err := NormalizeQuote(raw, convention)
		if err != nil {
			rejected++
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, rejected
}
