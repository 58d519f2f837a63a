package analytics

import (
	"sort"

	"github.com/quantara/edgescan/internal/domain"
)

// AnalyzeEfficiency computes per-source vig, efficiency tiers, and the
// vig-adjusted consensus probability for every outcome present in quotes.
//
// The consensus is the cross-source average of each outcome's implied
// probability, normalized so the averages sum to 1. Normalization removes
// the aggregate overround, making the consensus usable as the reference
// "fair" probability for value scanning.
func AnalyzeEfficiency(quotes []domain.Quote, th Thresholds) domain.EfficiencySummary {
	return analyze(quotes, nil, th)
}

// AnalyzeOutcomeSet is AnalyzeEfficiency over a declared outcome set. Declared
// outcomes quoted by zero sources are reported under InsufficientData and
// excluded from the consensus rather than carried at zero probability.
func AnalyzeOutcomeSet(set domain.OutcomeSet, th Thresholds) domain.EfficiencySummary {
	var quotes []domain.Quote
	declared := make([]string, 0, len(set.Outcomes))
	for _, o := range set.Outcomes {
		declared = append(declared, o.ID)
		quotes = append(quotes, o.Quotes...)
	}
	summary := analyze(quotes, declared, th)
	summary.EventID = set.EventID
	return summary
}

func analyze(quotes []domain.Quote, declaredOutcomes []string, th Thresholds) domain.EfficiencySummary {
	summary := domain.EfficiencySummary{
		Consensus: map[string]float64{},
	}
	if len(quotes) == 0 {
		summary.InsufficientData = append(summary.InsufficientData, declaredOutcomes...)
		return summary
	}

	// Per-source totals.
	bySource := map[string][]domain.Quote{}
	sourceOrder := []string{}
	for _, q := range quotes {
		if _, seen := bySource[q.SourceID]; !seen {
			sourceOrder = append(sourceOrder, q.SourceID)
		}
		bySource[q.SourceID] = append(bySource[q.SourceID], q)
	}
	sort.Strings(sourceOrder)

	lowestVig := 0.0
	for i, sourceID := range sourceOrder {
		var total float64
		for _, q := range bySource[sourceID] {
			total += q.ImpliedProbability
		}
		vig := (total - 1) * 100
		summary.PerSource = append(summary.PerSource, domain.SourceEfficiency{
			SourceID:                sourceID,
			TotalImpliedProbability: total,
			VigPercent:              vig,
			Tier:                    classifyVig(vig, th),
			QuotedOutcomes:          len(bySource[sourceID]),
		})
		if i == 0 || vig < lowestVig {
			lowestVig = vig
			summary.LowestVigSourceID = sourceID
		}
	}

	// Consensus: average per outcome across quoting sources, then normalize.
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, q := range quotes {
		sums[q.OutcomeID] += q.ImpliedProbability
		counts[q.OutcomeID]++
	}

	var total float64
	averages := map[string]float64{}
	for outcomeID, sum := range sums {
		avg := sum / float64(counts[outcomeID])
		averages[outcomeID] = avg
		total += avg
	}
	if total > 0 {
		for outcomeID, avg := range averages {
			summary.Consensus[outcomeID] = avg / total
		}
	}

	for _, outcomeID := range declaredOutcomes {
		if counts[outcomeID] == 0 {
			summary.InsufficientData = append(summary.InsufficientData, outcomeID)
		}
	}
	sort.Strings(summary.InsufficientData)

	return summary
}

// classifyVig buckets a vig percentage. Negative vig means the source's own
// prices sum below 1 and the book itself is arbitrageable.
func classifyVig(vigPercent float64, th Thresholds) domain.EfficiencyTier {
	abs := vigPercent
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs < th.ExcellentVigPercent:
		return domain.TierExcellent
	case vigPercent < 0:
		return domain.TierExploitable
	case vigPercent < th.GoodVigPercent:
		return domain.TierGood
	case vigPercent < th.FairVigPercent:
		return domain.TierFair
	default:
		return domain.TierPoor
	}
}
