package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/quantara/edgescan/internal/domain"
)

// BestQuotes selects, per outcome, the cheapest quote to back: the one with
// the lowest implied probability (equivalently the highest decimal odds or
// the lowest token ask). The result is the candidate arbitrage basket,
// ordered by outcome ID for determinism.
func BestQuotes(quotes []domain.Quote) []domain.Quote {
	best := map[string]domain.Quote{}
	for _, q := range quotes {
		cur, ok := best[q.OutcomeID]
		if !ok || q.ImpliedProbability < cur.ImpliedProbability {
			best[q.OutcomeID] = q
		}
	}
	out := make([]domain.Quote, 0, len(best))
	for _, q := range best {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OutcomeID < out[j].OutcomeID })
	return out
}

// DetectArbitrage checks whether backing every outcome at its best quote
// locks in a profit. best must hold exactly one quote per outcome of the
// event; a basket covering fewer than two outcomes cannot be riskless and
// yields nil.
//
// An opportunity exists iff the summed implied probabilities fall below
// 1 - marginThreshold. Stakes are allocated proportionally to implied
// probability, which makes stake_i * price_i identical across legs: the
// payout is the same no matter which outcome occurs. Leg prices are the
// decimal-equivalent payout multiples 1/impliedProbability, so the equality
// holds for both odds and token quotes.
//
// A nil return means "efficiently priced" and is the expected result, not an
// error.
func DetectArbitrage(best []domain.Quote, marginThreshold float64) *domain.ArbitrageOpportunity {
	if len(best) < 2 {
		return nil
	}

	var total float64
	for _, q := range best {
		if q.ImpliedProbability <= 0 || q.ImpliedProbability >= 1 {
			return nil
		}
		total += q.ImpliedProbability
	}
	if total >= 1-marginThreshold {
		return nil
	}

	legs := make([]domain.ArbLeg, 0, len(best))
	for _, q := range best {
		legs = append(legs, domain.ArbLeg{
			OutcomeID:          q.OutcomeID,
			SourceID:           q.SourceID,
			Price:              1 / q.ImpliedProbability,
			ImpliedProbability: q.ImpliedProbability,
			StakePercent:       q.ImpliedProbability / total * 100,
			SizeUSD:            q.SizeUSD,
		})
	}

	return &domain.ArbitrageOpportunity{
		ID:                      uuid.New().String(),
		Legs:                    legs,
		TotalImpliedProbability: total,
		ProfitPercent:           (1/total - 1) * 100,
		DetectedAt:              time.Now().UTC(),
	}
}

// RankOpportunities orders opportunities across events: profit descending,
// then total available size descending when every leg carries size, then
// first-leg outcome ID ascending so equal baskets rank deterministically.
func RankOpportunities(opps []domain.ArbitrageOpportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		a, b := opps[i], opps[j]
		if a.ProfitPercent != b.ProfitPercent {
			return a.ProfitPercent > b.ProfitPercent
		}
		sa, sb := a.TotalSizeUSD(), b.TotalSizeUSD()
		if sa != sb {
			return sa > sb
		}
		return firstOutcomeID(a) < firstOutcomeID(b)
	})
}

func firstOutcomeID(opp domain.ArbitrageOpportunity) string {
	if len(opp.Legs) == 0 {
		return ""
	}
	return opp.Legs[0].OutcomeID
}
