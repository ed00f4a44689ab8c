package services

import (
	"sort"

	"github.com/vsinha/procure/pkg/domain/entities"
)

// WeightedScore applies the RFQ evaluation rule to one evaluator's criteria scores.
// Empty weights give every scored criterion an equal share. Weights are normalized
// to sum to 1 and a criterion without a score counts as 0.
func WeightedScore(scores, weights map[string]float64) float64 {
	if len(weights) == 0 {
		equal := 1.0 / float64(max(1, len(scores)))
		weights = make(map[string]float64, len(scores))
		for criterion := range scores {
			weights[criterion] = equal
		}
	}

	// Iterate in a fixed order so float sums are reproducible.
	criteria := make([]string, 0, len(weights))
	for criterion := range weights {
		criteria = append(criteria, criterion)
	}
	sort.Strings(criteria)

	var sum float64
	for _, c := range criteria {
		sum += weights[c]
	}
	if sum <= 0 {
		return 0
	}

	var total float64
	for _, c := range criteria {
		total += (weights[c] / sum) * scores[c]
	}
	return total
}

// MeanScore averages evaluation totals, returning nil when there are none.
func MeanScore(evaluations []*entities.RFQEvaluation) *float64 {
	if len(evaluations) == 0 {
		return nil
	}
	var sum float64
	for _, e := range evaluations {
		sum += e.TotalScore
	}
	mean := sum / float64(len(evaluations))
	return &mean
}

// RankResponses orders responses best first: higher total score, then lower
// quote, then earlier submission. Unscored responses sort after scored ones.
// The input slice is not modified.
func RankResponses(responses []*entities.RFQResponse) []*entities.RFQResponse {
	ranked := make([]*entities.RFQResponse, len(responses))
	copy(ranked, responses)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		switch {
		case a.TotalScore != nil && b.TotalScore == nil:
			return true
		case a.TotalScore == nil && b.TotalScore != nil:
			return false
		case a.TotalScore != nil && *a.TotalScore != *b.TotalScore:
			return *a.TotalScore > *b.TotalScore
		}
		if cmp := a.QuotedAmount.Cmp(b.QuotedAmount); cmp != 0 {
			return cmp < 0
		}
		return a.SubmittedAt.Before(b.SubmittedAt)
	})
	return ranked
}

// RecommendWinner returns the best ranked response still in contention, or nil.
func RecommendWinner(responses []*entities.RFQResponse) *entities.RFQResponse {
	for _, r := range RankResponses(responses) {
		if r.Status == entities.ResponseSubmitted || r.Status == entities.ResponseAccepted {
			return r
		}
	}
	return nil
}
