package models

import (
	"fmt"
	"strings"
)

// Recommendation is one completed recommendation computation: the
// primary verdict with its rationale, the wardrobe items to present,
// and the ranked alternatives. It is an immutable snapshot with no
// persisted identity; the engine builds it, the API renders it.
type Recommendation struct {
	Verdict            string `json:"verdict"`
	Why                string `json:"why"`
	DetailedSuggestion string `json:"detailed_suggestion,omitempty"`
	// SuggestedItemIDs is ordered by presentation priority. Duplicates
	// are preserved; it is a sequence, not a set.
	SuggestedItemIDs []string `json:"suggested_item_ids"`
	BestLookID       string   `json:"best_look_id,omitempty"`
	ConfidenceScore  float64  `json:"confidence_score"`
	StyleTags        []string `json:"style_tags,omitempty"`
	// StyleBreakdown holds per-aspect explanation lines in display order.
	StyleBreakdown         []string                `json:"style_breakdown,omitempty"`
	AlternativeSuggestions []AlternativeSuggestion `json:"alternative_suggestions,omitempty"`
}

// RecommendationInput carries the raw fields an engine produced for a
// recommendation, before validation.
type RecommendationInput struct {
	Verdict            string                  `json:"verdict"`
	Why                string                  `json:"why"`
	DetailedSuggestion string                  `json:"detailed_suggestion"`
	SuggestedItemIDs   []string                `json:"suggested_item_ids"`
	BestLookID         string                  `json:"best_look_id"`
	ConfidenceScore    float64                 `json:"confidence_score"`
	StyleTags          []string                `json:"style_tags"`
	StyleBreakdown     []string                `json:"style_breakdown"`
	Alternatives       []AlternativeSuggestion `json:"alternatives"`
}

// NewRecommendation validates engine output and assembles the result.
//
// Verdict and Why are required. A confidence score outside [0, 1] is
// clamped to the nearest bound rather than rejected, to tolerate
// upstream scoring drift. Alternatives that fail their own invariant
// are dropped while the surviving entries keep their relative order.
// Both tolerances are reported through the returned diagnostics, never
// as errors.
func NewRecommendation(in RecommendationInput) (Recommendation, []Diagnostic, error) {
	verdict := strings.TrimSpace(in.Verdict)
	if verdict == "" {
		return Recommendation{}, nil, &ValidationError{Field: "verdict", Reason: "must not be empty"}
	}
	why := strings.TrimSpace(in.Why)
	if why == "" {
		return Recommendation{}, nil, &ValidationError{Field: "why", Reason: "must not be empty"}
	}

	var diags []Diagnostic

	confidence := in.ConfidenceScore
	if confidence < 0 {
		diags = append(diags, Diagnostic{
			Kind:    DiagClampedConfidence,
			Details: fmt.Sprintf("confidence score %g clamped to 0", confidence),
		})
		confidence = 0
	} else if confidence > 1 {
		diags = append(diags, Diagnostic{
			Kind:    DiagClampedConfidence,
			Details: fmt.Sprintf("confidence score %g clamped to 1", confidence),
		})
		confidence = 1
	}

	var alternatives []AlternativeSuggestion
	for i, alt := range in.Alternatives {
		if !alt.Valid() {
			diags = append(diags, Diagnostic{
				Kind:    DiagDroppedAlternative,
				Details: fmt.Sprintf("alternative %d dropped: empty required field", i),
			})
			continue
		}
		alternatives = append(alternatives, alt)
	}

	return Recommendation{
		Verdict:                verdict,
		Why:                    why,
		DetailedSuggestion:     strings.TrimSpace(in.DetailedSuggestion),
		SuggestedItemIDs:       cloneStrings(in.SuggestedItemIDs),
		BestLookID:             strings.TrimSpace(in.BestLookID),
		ConfidenceScore:        confidence,
		StyleTags:              cloneStrings(in.StyleTags),
		StyleBreakdown:         cloneStrings(in.StyleBreakdown),
		AlternativeSuggestions: alternatives,
	}, diags, nil
}

// cloneStrings copies a slice so the result does not alias caller memory.
func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// StrategyWeights holds the weights for the suggestion strategies the
// hybrid engine combines.
type StrategyWeights struct {
	OccasionAffinity float64 `json:"occasion_affinity"`
	TagAffinity      float64 `json:"tag_affinity"`
	RecencyTrend     float64 `json:"recency_trend"`
}
