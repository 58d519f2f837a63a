package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/quantara/edgescan/internal/domain"
)

// ScanValue compares every individual quote to the consensus probability for
// its outcome and flags quotes priced more favorably than fair.
//
// The edge is ((consensus - quoted) / quoted) * 100: positive when a source
// lets you back the outcome cheaper than its consensus probability warrants.
// Quotes whose outcome has no consensus entry are skipped. Confidence grades
// by corroboration breadth: an edge computed against a consensus built from
// two sources means far less than one backed by a dozen.
func ScanValue(quotes []domain.Quote, consensus map[string]float64, minEdgePercent float64) []domain.ValueFlag {
	sourcesByOutcome := map[string]map[string]struct{}{}
	for _, q := range quotes {
		set, ok := sourcesByOutcome[q.OutcomeID]
		if !ok {
			set = map[string]struct{}{}
			sourcesByOutcome[q.OutcomeID] = set
		}
		set[q.SourceID] = struct{}{}
	}

	now := time.Now().UTC()
	var flags []domain.ValueFlag
	for _, q := range quotes {
		fair, ok := consensus[q.OutcomeID]
		if !ok || q.ImpliedProbability <= 0 {
			continue
		}
		edge := (fair - q.ImpliedProbability) / q.ImpliedProbability * 100
		if edge < minEdgePercent {
			continue
		}
		sources := len(sourcesByOutcome[q.OutcomeID])
		flags = append(flags, domain.ValueFlag{
			ID:                   uuid.New().String(),
			OutcomeID:            q.OutcomeID,
			SourceID:             q.SourceID,
			QuotedProbability:    q.ImpliedProbability,
			ConsensusProbability: fair,
			EdgePercent:          edge,
			Confidence:           classifyConfidence(edge, sources),
			Sources:              sources,
			DetectedAt:           now,
		})
	}

	sort.SliceStable(flags, func(i, j int) bool {
		if flags[i].EdgePercent != flags[j].EdgePercent {
			return flags[i].EdgePercent > flags[j].EdgePercent
		}
		if flags[i].OutcomeID != flags[j].OutcomeID {
			return flags[i].OutcomeID < flags[j].OutcomeID
		}
		return flags[i].SourceID < flags[j].SourceID
	})
	return flags
}

func classifyConfidence(edgePercent float64, sources int) domain.ValueConfidence {
	switch {
	case sources >= highConfidenceSources && edgePercent >= highConfidenceEdgePercent:
		return domain.ConfidenceHigh
	case sources >= mediumConfidenceSources && edgePercent >= mediumConfidenceEdgePercent:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
