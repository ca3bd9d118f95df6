package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nahom-d/lookbook/internal/models"
)

// GraphReader is the slice of the wardrobe store the engine reads from.
type GraphReader interface {
	ExecuteRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

// SuggestionService generates outfit recommendations from the wardrobe
// graph by combining weighted scoring strategies.
type SuggestionService struct {
	store GraphReader
}

// NewSuggestionService creates a suggestion service over a wardrobe store.
func NewSuggestionService(store GraphReader) *SuggestionService {
	return &SuggestionService{store: store}
}

// scoredItem is one wardrobe item scored by a single strategy.
type scoredItem struct {
	ID       string
	Name     string
	Category string
	Score    float64
}

const (
	strategyOccasion = "OccasionAffinity"
	strategyTag      = "TagAffinity"
	strategyRecency  = "RecencyTrend"

	trendWindowDays = 30
	suggestionLimit = 6
)

// GetOccasionAffinityItems answers: "Which items has the user worn for
// occasions like this one?"
func (s *SuggestionService) GetOccasionAffinityItems(ctx context.Context, occasionTitle string) ([]scoredItem, error) {
	query := `
		MATCH (l:Look)-[:FEATURES]->(i:WardrobeItem)
		WHERE toLower(l.occasion) CONTAINS toLower($title)
		WITH i, count(l) AS worn
		RETURN i.id AS item_id,
			   i.name AS name,
			   i.category AS category,
			   worn
		ORDER BY worn DESC, item_id
	`

	params := map[string]any{
		"title": occasionTitle,
	}

	results, err := s.store.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get occasion affinity items: %w", err)
	}

	var items []scoredItem
	for _, result := range results {
		items = append(items, scoredItem{
			ID:       result["item_id"].(string),
			Name:     result["name"].(string),
			Category: result["category"].(string),
			Score:    float64(result["worn"].(int64)),
		})
	}

	return items, nil
}

// GetTagAffinityItems answers: "Which items carry the style tag the
// requested vibe asks for?" Featured counts break ties so the pieces
// the user actually wears surface first.
func (s *SuggestionService) GetTagAffinityItems(ctx context.Context, vibe string) ([]scoredItem, error) {
	query := `
		MATCH (i:WardrobeItem)-[:STYLED_WITH]->(t:StyleTag)
		WHERE toLower(t.name) = toLower($vibe)
		RETURN i.id AS item_id,
			   i.name AS name,
			   i.category AS category,
			   coalesce(i.featured, 0) + 1 AS weight
		ORDER BY weight DESC, item_id
	`

	params := map[string]any{
		"vibe": vibe,
	}

	results, err := s.store.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get tag affinity items: %w", err)
	}

	var items []scoredItem
	for _, result := range results {
		items = append(items, scoredItem{
			ID:       result["item_id"].(string),
			Name:     result["name"].(string),
			Category: result["category"].(string),
			Score:    float64(result["weight"].(int64)),
		})
	}

	return items, nil
}

// GetTrendingItems returns items featured in looks saved in the last N days.
func (s *SuggestionService) GetTrendingItems(ctx context.Context, days int) ([]scoredItem, error) {
	query := `
		MATCH (l:Look)-[:FEATURES]->(i:WardrobeItem)
		WHERE l.created_at > datetime() - duration({days: $days})
		WITH i, count(l) AS recent
		RETURN i.id AS item_id,
			   i.name AS name,
			   i.category AS category,
			   recent
		ORDER BY recent DESC, item_id
	`

	params := map[string]any{
		"days": days,
	}

	results, err := s.store.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get trending items: %w", err)
	}

	var items []scoredItem
	for _, result := range results {
		items = append(items, scoredItem{
			ID:       result["item_id"].(string),
			Name:     result["name"].(string),
			Category: result["category"].(string),
			Score:    float64(result["recent"].(int64)),
		})
	}

	return items, nil
}

// GetBestLook returns the most recent saved look matching the occasion,
// or empty when nothing matches.
func (s *SuggestionService) GetBestLook(ctx context.Context, occasionTitle string) (string, error) {
	query := `
		MATCH (l:Look)
		WHERE toLower(l.occasion) CONTAINS toLower($title)
		RETURN l.id AS look_id
		ORDER BY l.created_at DESC
		LIMIT 1
	`

	params := map[string]any{
		"title": occasionTitle,
	}

	results, err := s.store.ExecuteRead(ctx, query, params)
	if err != nil {
		return "", fmt.Errorf("failed to find best look: %w", err)
	}
	if len(results) == 0 {
		return "", nil
	}

	return results[0]["look_id"].(string), nil
}

// IsNewCloset reports whether the wardrobe has too few saved looks for
// history-based strategies to mean much.
func (s *SuggestionService) IsNewCloset(ctx context.Context) (bool, error) {
	query := `
		MATCH (l:Look)
		RETURN count(l) AS looks
	`

	results, err := s.store.ExecuteRead(ctx, query, nil)
	if err != nil {
		return true, fmt.Errorf("failed to check closet size: %w", err)
	}
	if len(results) == 0 {
		return true, nil
	}

	looks := results[0]["looks"].(int64)
	return looks < 3, nil
}

// GetDefaultWeights returns the default strategy weights.
func (s *SuggestionService) GetDefaultWeights() models.StrategyWeights {
	return models.StrategyWeights{
		OccasionAffinity: 0.5,
		TagAffinity:      0.3,
		RecencyTrend:     0.2,
	}
}

// GetWeightsForNewCloset returns weights for closets with little wear
// history: lean on tags, not on occasions that were never recorded.
func (s *SuggestionService) GetWeightsForNewCloset() models.StrategyWeights {
	return models.StrategyWeights{
		OccasionAffinity: 0.1,
		TagAffinity:      0.6,
		RecencyTrend:     0.3,
	}
}

// GetWeightsForEstablishedCloset returns weights for closets with rich
// wear history.
func (s *SuggestionService) GetWeightsForEstablishedCloset() models.StrategyWeights {
	return models.StrategyWeights{
		OccasionAffinity: 0.6,
		TagAffinity:      0.25,
		RecencyTrend:     0.15,
	}
}

// Suggest combines all strategies with the given weights and builds a
// validated recommendation for the occasion. A strategy that fails is
// logged and skipped so one bad query does not sink the whole
// suggestion.
func (s *SuggestionService) Suggest(ctx context.Context, occasion models.Occasion, weights models.StrategyWeights) (models.Recommendation, []models.Diagnostic, error) {
	itemScores := make(map[string]float64)
	itemDetails := make(map[string]scoredItem)
	strategyContributions := make(map[string]map[string]float64)

	accumulate := func(items []scoredItem, strategy string, weight float64) {
		for _, item := range items {
			score := item.Score * weight

			itemScores[item.ID] += score
			itemDetails[item.ID] = item

			if strategyContributions[item.ID] == nil {
				strategyContributions[item.ID] = make(map[string]float64)
			}
			strategyContributions[item.ID][strategy] += score
		}
	}

	occItems, err := s.GetOccasionAffinityItems(ctx, occasion.Title)
	if err != nil {
		log.Warn().Err(err).Str("occasion", occasion.Title).Msg("occasion affinity strategy failed")
	} else {
		accumulate(occItems, strategyOccasion, weights.OccasionAffinity)
	}

	if occasion.Vibe != "" {
		tagItems, err := s.GetTagAffinityItems(ctx, occasion.Vibe)
		if err != nil {
			log.Warn().Err(err).Str("vibe", occasion.Vibe).Msg("tag affinity strategy failed")
		} else {
			accumulate(tagItems, strategyTag, weights.TagAffinity)
		}
	}

	trendItems, err := s.GetTrendingItems(ctx, trendWindowDays)
	if err != nil {
		log.Warn().Err(err).Msg("recency trend strategy failed")
	} else {
		accumulate(trendItems, strategyRecency, weights.RecencyTrend)
	}

	// Deterministic ordering: score descending, item ID breaks ties.
	ranked := make([]scoredItem, 0, len(itemScores))
	for id, total := range itemScores {
		item := itemDetails[id]
		item.Score = total
		ranked = append(ranked, item)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})

	if len(ranked) > suggestionLimit {
		ranked = ranked[:suggestionLimit]
	}

	bestLookID, err := s.GetBestLook(ctx, occasion.Title)
	if err != nil {
		log.Warn().Err(err).Str("occasion", occasion.Title).Msg("best look lookup failed")
		bestLookID = ""
	}

	return models.NewRecommendation(buildSuggestionInput(occasion, ranked, strategyContributions, bestLookID))
}

// SuggestWithFallback runs the hybrid engine and falls back to the
// rule-based baseline when the hybrid confidence lands below the
// threshold. An exact tie keeps the hybrid result.
func (s *SuggestionService) SuggestWithFallback(ctx context.Context, occasion models.Occasion, weights models.StrategyWeights, threshold float64) (models.Recommendation, []models.Diagnostic, error) {
	hybrid, diags, err := s.Suggest(ctx, occasion, weights)
	if err != nil {
		return models.Recommendation{}, nil, err
	}

	baseline, baseDiags, err := BaselineRecommendation(occasion)
	if err != nil {
		return models.Recommendation{}, nil, err
	}

	resolved := Resolve(hybrid, baseline, threshold)
	if hybrid.ConfidenceScore < threshold {
		log.Info().
			Str("occasion", occasion.Title).
			Float64("confidence", hybrid.ConfidenceScore).
			Float64("threshold", threshold).
			Msg("hybrid confidence below threshold, using baseline")
		return resolved, baseDiags, nil
	}
	return resolved, diags, nil
}

// buildSuggestionInput turns the ranked items into the raw
// recommendation fields the constructor validates.
func buildSuggestionInput(occasion models.Occasion, ranked []scoredItem, contributions map[string]map[string]float64, bestLookID string) models.RecommendationInput {
	itemIDs := make([]string, 0, len(ranked))
	names := make([]string, 0, len(ranked))
	for _, item := range ranked {
		itemIDs = append(itemIDs, item.ID)
		names = append(names, item.Name)
	}

	var verdict, why string
	if len(ranked) > 0 {
		verdict = fmt.Sprintf("Build the look around your %s", ranked[0].Name)
		why = fmt.Sprintf("It scored highest across your wear history for %q", occasion.Title)
	} else {
		verdict = fmt.Sprintf("No strong match in your closet for %q yet", occasion.Title)
		why = "None of the scoring strategies found items worn for a similar occasion"
	}

	styleTags := suggestionStyleTags(occasion, ranked)
	breakdown := suggestionBreakdown(ranked, contributions)

	return models.RecommendationInput{
		Verdict:            verdict,
		Why:                why,
		DetailedSuggestion: detailLine(names),
		SuggestedItemIDs:   itemIDs,
		BestLookID:         bestLookID,
		ConfidenceScore:    suggestionConfidence(ranked),
		StyleTags:          styleTags,
		StyleBreakdown:     breakdown,
		Alternatives:       suggestionAlternatives(occasion, ranked),
	}
}

// suggestionConfidence squashes the top combined score into [0, 1).
// A closet with no matches scores zero.
func suggestionConfidence(ranked []scoredItem) float64 {
	if len(ranked) == 0 {
		return 0
	}
	top := ranked[0].Score
	return top / (top + 1)
}

func suggestionStyleTags(occasion models.Occasion, ranked []scoredItem) []string {
	var tags []string
	if occasion.Vibe != "" {
		tags = append(tags, occasion.Vibe)
	}
	seen := make(map[string]bool)
	for _, item := range ranked {
		if item.Category == "" || seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		tags = append(tags, item.Category)
	}
	return tags
}

func suggestionBreakdown(ranked []scoredItem, contributions map[string]map[string]float64) []string {
	var lines []string
	for _, item := range ranked {
		parts := make([]string, 0, 3)
		for _, strategy := range []string{strategyOccasion, strategyTag, strategyRecency} {
			if score, ok := contributions[item.ID][strategy]; ok && score > 0 {
				parts = append(parts, fmt.Sprintf("%s %.2f", strategy, score))
			}
		}
		if len(parts) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", item.Name, strings.Join(parts, ", ")))
	}
	return lines
}

// suggestionAlternatives proposes secondary directions from the items
// that ranked behind the leader. Entries that fail validation are
// skipped here; the constructor never sees them.
func suggestionAlternatives(occasion models.Occasion, ranked []scoredItem) []models.AlternativeSuggestion {
	var alts []models.AlternativeSuggestion
	for _, item := range ranked[min(1, len(ranked)):] {
		if len(alts) == 3 {
			break
		}
		alt, err := models.NewAlternativeSuggestion(
			fmt.Sprintf("Feature the %s instead", item.Name),
			fmt.Sprintf("Swap the lead piece for your %s and keep the rest of the look.", item.Name),
			alternativeStyleType(occasion, item),
		)
		if err != nil {
			continue
		}
		alts = append(alts, alt)
	}
	return alts
}

func alternativeStyleType(occasion models.Occasion, item scoredItem) string {
	if occasion.Vibe != "" {
		return occasion.Vibe
	}
	if item.Category != "" {
		return item.Category
	}
	return "versatile"
}

func detailLine(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return "Suggested pieces: " + strings.Join(names, ", ") + "."
}

// BaselineRecommendation is the rule-based backstop used when the
// hybrid engine has nothing confident to say. It proposes a neutral
// capsule outfit keyed off the occasion descriptors and carries a fixed
// mid-low confidence so any decent hybrid result outranks it.
func BaselineRecommendation(occasion models.Occasion) (models.Recommendation, []models.Diagnostic, error) {
	vibe := occasion.Vibe
	if vibe == "" {
		vibe = "casual"
	}

	detail := fmt.Sprintf("A neutral base layer, one %s statement piece, and your most comfortable shoes.", vibe)
	if occasion.Season != "" {
		detail += fmt.Sprintf(" Adjust layers for %s.", occasion.Season)
	}

	return models.NewRecommendation(models.RecommendationInput{
		Verdict:            fmt.Sprintf("Fall back to a %s capsule look", vibe),
		Why:                "Your closet has no recorded history close enough to this occasion",
		DetailedSuggestion: detail,
		ConfidenceScore:    0.3,
		StyleTags:          []string{vibe, "capsule"},
		StyleBreakdown:     []string{"Baseline: rule-based capsule, no wear history used"},
	})
}
