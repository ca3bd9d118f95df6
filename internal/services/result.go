package services

import (
	"fmt"
	"sort"

	"github.com/nahom-d/lookbook/internal/models"
)

// RankAlternatives orders alternatives by descending score. Scores is a
// parallel sequence: scores[i] belongs to alternatives[i]. Ties keep
// the original input order, so identical inputs always produce the
// identical ranking.
func RankAlternatives(alternatives []models.AlternativeSuggestion, scores []float64) ([]models.AlternativeSuggestion, error) {
	if len(alternatives) != len(scores) {
		return nil, &models.ValidationError{
			Field:  "scores",
			Reason: fmt.Sprintf("expected %d scores, got %d", len(alternatives), len(scores)),
		}
	}

	idx := make([]int, len(alternatives))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	ranked := make([]models.AlternativeSuggestion, len(alternatives))
	for i, j := range idx {
		ranked[i] = alternatives[j]
	}
	return ranked, nil
}

// Resolve picks between a primary recommendation and a fallback. The
// primary wins when its confidence reaches the threshold; an exact tie
// favors the primary. Models the low-confidence backstop policy: an
// uncertain engine result gives way to the rule-based baseline.
func Resolve(primary, fallback models.Recommendation, threshold float64) models.Recommendation {
	if primary.ConfidenceScore >= threshold {
		return primary
	}
	return fallback
}
