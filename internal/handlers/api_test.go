package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahom-d/lookbook/internal/database"
	"github.com/nahom-d/lookbook/internal/models"
)

type stubEngine struct {
	rec         models.Recommendation
	diags       []models.Diagnostic
	err         error
	newCloset   bool
	lastWeights models.StrategyWeights
}

func (s *stubEngine) SuggestWithFallback(_ context.Context, _ models.Occasion, weights models.StrategyWeights, _ float64) (models.Recommendation, []models.Diagnostic, error) {
	s.lastWeights = weights
	return s.rec, s.diags, s.err
}

func (s *stubEngine) IsNewCloset(context.Context) (bool, error) { return s.newCloset, nil }

func (s *stubEngine) GetDefaultWeights() models.StrategyWeights {
	return models.StrategyWeights{OccasionAffinity: 0.5, TagAffinity: 0.3, RecencyTrend: 0.2}
}

func (s *stubEngine) GetWeightsForNewCloset() models.StrategyWeights {
	return models.StrategyWeights{OccasionAffinity: 0.1, TagAffinity: 0.6, RecencyTrend: 0.3}
}

func (s *stubEngine) GetWeightsForEstablishedCloset() models.StrategyWeights {
	return models.StrategyWeights{OccasionAffinity: 0.6, TagAffinity: 0.25, RecencyTrend: 0.15}
}

type stubWardrobe struct {
	items    []models.WardrobeItem
	featured map[string][]string
}

func newStubWardrobe() *stubWardrobe {
	return &stubWardrobe{featured: make(map[string][]string)}
}

func (s *stubWardrobe) AddItem(_ context.Context, item models.WardrobeItem) error {
	s.items = append(s.items, item)
	return nil
}

func (s *stubWardrobe) FeatureItems(_ context.Context, lookID string, itemIDs []string) error {
	s.featured[lookID] = itemIDs
	return nil
}

func (s *stubWardrobe) GetStatus(context.Context) (map[string]int, error) {
	return map[string]int{"looks": 1, "items": len(s.items)}, nil
}

type testEnv struct {
	router   *gin.Engine
	engine   *stubEngine
	looks    *database.MemoryLookRepository
	wardrobe *stubWardrobe
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		engine:   &stubEngine{},
		looks:    database.NewMemoryLookRepository(),
		wardrobe: newStubWardrobe(),
	}

	env.router = gin.New()
	NewAPIHandler(env.engine, env.looks, env.wardrobe, 0.35).SetupRoutes(env.router)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestBuildRecommendation_OK(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/recommendations", models.RecommendationInput{
		Verdict:         "Wear the blazer",
		Why:             "Best occasion match",
		ConfidenceScore: 1.4,
		Alternatives: []models.AlternativeSuggestion{
			{Title: "ok", Description: "fine", StyleType: "casual"},
			{Title: "broken", Description: "", StyleType: "casual"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)

	var rec models.Recommendation
	require.NoError(t, json.Unmarshal(body["recommendation"], &rec))
	assert.Equal(t, 1.0, rec.ConfidenceScore)
	assert.Len(t, rec.AlternativeSuggestions, 1)

	var diags []models.Diagnostic
	require.NoError(t, json.Unmarshal(body["diagnostics"], &diags))
	assert.Len(t, diags, 2)
}

func TestBuildRecommendation_EmptyVerdict(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/recommendations", models.RecommendationInput{
		Verdict: "  ",
		Why:     "something",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "verdict")
}

func TestRankAlternatives_Endpoint(t *testing.T) {
	env := newTestEnv(t)

	alts := []models.AlternativeSuggestion{
		{Title: "A", Description: "a", StyleType: "casual"},
		{Title: "B", Description: "b", StyleType: "casual"},
		{Title: "C", Description: "c", StyleType: "casual"},
	}

	w := env.do(t, http.MethodPost, "/api/recommendations/rank", gin.H{
		"alternatives": alts,
		"scores":       []float64{0.5, 0.5, 0.9},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Ranked []models.AlternativeSuggestion `json:"ranked"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Ranked, 3)
	assert.Equal(t, "C", resp.Ranked[0].Title)
	assert.Equal(t, "A", resp.Ranked[1].Title)
	assert.Equal(t, "B", resp.Ranked[2].Title)
}

func TestRankAlternatives_ScoreMismatch(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/recommendations/rank", gin.H{
		"alternatives": []models.AlternativeSuggestion{{Title: "A", Description: "a", StyleType: "x"}},
		"scores":       []float64{0.5, 0.7},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveRecommendations_TieFavorsPrimary(t *testing.T) {
	env := newTestEnv(t)

	primary := models.RecommendationInput{Verdict: "primary", Why: "engine", ConfidenceScore: 0.6}
	fallback := models.RecommendationInput{Verdict: "fallback", Why: "rules", ConfidenceScore: 0.9}

	w := env.do(t, http.MethodPost, "/api/recommendations/resolve", gin.H{
		"primary":   primary,
		"fallback":  fallback,
		"threshold": 0.6,
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	var rec models.Recommendation
	require.NoError(t, json.Unmarshal(body["recommendation"], &rec))
	assert.Equal(t, "primary", rec.Verdict)
}

func TestResolveRecommendations_BelowThreshold(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/recommendations/resolve", gin.H{
		"primary":   models.RecommendationInput{Verdict: "primary", Why: "engine", ConfidenceScore: 0.59},
		"fallback":  models.RecommendationInput{Verdict: "fallback", Why: "rules", ConfidenceScore: 0.4},
		"threshold": 0.6,
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	var rec models.Recommendation
	require.NoError(t, json.Unmarshal(body["recommendation"], &rec))
	assert.Equal(t, "fallback", rec.Verdict)
}

func TestSuggest_RequiresTitle(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/suggest", gin.H{"vibe": "casual"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggest_PicksPresetWeights(t *testing.T) {
	env := newTestEnv(t)
	env.engine.newCloset = true
	env.engine.rec = models.Recommendation{Verdict: "ok", Why: "w", ConfidenceScore: 0.7}

	w := env.do(t, http.MethodPost, "/api/suggest", gin.H{"title": "Dinner"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, env.engine.GetWeightsForNewCloset(), env.engine.lastWeights)
}

func TestSuggest_WeightOverride(t *testing.T) {
	env := newTestEnv(t)
	env.engine.rec = models.Recommendation{Verdict: "ok", Why: "w", ConfidenceScore: 0.7}

	custom := models.StrategyWeights{OccasionAffinity: 1, TagAffinity: 0, RecencyTrend: 0}
	w := env.do(t, http.MethodPost, "/api/suggest", gin.H{"title": "Dinner", "weights": custom})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, custom, env.engine.lastWeights)
}

func TestLookLifecycle(t *testing.T) {
	env := newTestEnv(t)

	// Create with linked items.
	w := env.do(t, http.MethodPost, "/api/looks", gin.H{
		"occasion":    "Work meeting",
		"notes":       "quarterly review",
		"time_of_day": "morning",
		"item_ids":    []string{"item-1", "item-2"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Look models.Look `json:"look"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	lookID := created.Look.ID
	require.NotEmpty(t, lookID)
	assert.Equal(t, []string{"item-1", "item-2"}, env.wardrobe.featured[lookID])

	// Read back.
	w = env.do(t, http.MethodGet, "/api/looks/"+lookID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Draft exposes only the editable fields.
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/looks/%s/draft", lookID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var draftResp struct {
		Draft models.LookDraft `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &draftResp))
	assert.Equal(t, "Work meeting", draftResp.Draft.Occasion)

	// Commit an edit.
	w = env.do(t, http.MethodPatch, "/api/looks/"+lookID, models.LookDraft{
		Occasion: "Client dinner",
		Notes:    "updated",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var patched struct {
		Look models.Look `json:"look"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patched))
	assert.Equal(t, "Client dinner", patched.Look.Occasion)
	assert.Equal(t, created.Look.CreatedAt, patched.Look.CreatedAt)

	// Delete, then the look is gone.
	w = env.do(t, http.MethodDelete, "/api/looks/"+lookID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/looks/"+lookID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateLook_RequiresOccasion(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/looks", gin.H{"notes": "missing occasion"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddItem(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/items", gin.H{
		"name":     "navy blazer",
		"category": "outerwear",
		"tags":     []string{"smart casual", "classic"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, env.wardrobe.items, 1)
	item := env.wardrobe.items[0]
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "navy blazer", item.Name)
	assert.Equal(t, []string{"smart casual", "classic"}, item.Tags)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
