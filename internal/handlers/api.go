package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nahom-d/lookbook/internal/database"
	"github.com/nahom-d/lookbook/internal/models"
	"github.com/nahom-d/lookbook/internal/services"
)

// SuggestionEngine is the engine surface the API depends on.
type SuggestionEngine interface {
	SuggestWithFallback(ctx context.Context, occasion models.Occasion, weights models.StrategyWeights, threshold float64) (models.Recommendation, []models.Diagnostic, error)
	IsNewCloset(ctx context.Context) (bool, error)
	GetDefaultWeights() models.StrategyWeights
	GetWeightsForNewCloset() models.StrategyWeights
	GetWeightsForEstablishedCloset() models.StrategyWeights
}

// WardrobeCatalog is the item/graph maintenance surface the API uses.
type WardrobeCatalog interface {
	AddItem(ctx context.Context, item models.WardrobeItem) error
	FeatureItems(ctx context.Context, lookID string, itemIDs []string) error
	GetStatus(ctx context.Context) (map[string]int, error)
}

// APIHandler handles all API requests
type APIHandler struct {
	engine            SuggestionEngine
	looks             database.LookRepository
	wardrobe          WardrobeCatalog
	fallbackThreshold float64
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(engine SuggestionEngine, looks database.LookRepository, wardrobe WardrobeCatalog, fallbackThreshold float64) *APIHandler {
	return &APIHandler{
		engine:            engine,
		looks:             looks,
		wardrobe:          wardrobe,
		fallbackThreshold: fallbackThreshold,
	}
}

// SetupRoutes configures all API routes
func (h *APIHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/recommendations", h.BuildRecommendation)
		api.POST("/recommendations/rank", h.RankAlternatives)
		api.POST("/recommendations/resolve", h.ResolveRecommendations)
		api.POST("/suggest", h.Suggest)

		api.POST("/looks", h.CreateLook)
		api.GET("/looks/:id", h.GetLook)
		api.GET("/looks/:id/draft", h.GetLookDraft)
		api.PATCH("/looks/:id", h.CommitLookDraft)
		api.DELETE("/looks/:id", h.DeleteLook)

		api.POST("/items", h.AddItem)
	}
	router.GET("/health", h.Health)
}

// BuildRecommendation validates raw engine output and returns the
// assembled result with any tolerated-inconsistency diagnostics.
func (h *APIHandler) BuildRecommendation(c *gin.Context) {
	var in models.RecommendationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	rec, diags, err := models.NewRecommendation(in)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendation": rec,
		"diagnostics":    diags,
	})
}

type rankRequest struct {
	Alternatives []models.AlternativeSuggestion `json:"alternatives" binding:"required"`
	Scores       []float64                      `json:"scores" binding:"required"`
}

// RankAlternatives orders alternatives by their parallel scores.
func (h *APIHandler) RankAlternatives(c *gin.Context) {
	var req rankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ranked, err := services.RankAlternatives(req.Alternatives, req.Scores)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ranked": ranked})
}

type resolveRequest struct {
	Primary   models.RecommendationInput `json:"primary" binding:"required"`
	Fallback  models.RecommendationInput `json:"fallback" binding:"required"`
	Threshold float64                    `json:"threshold"`
}

// ResolveRecommendations builds both candidates and picks between them
// by the confidence threshold.
func (h *APIHandler) ResolveRecommendations(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	primary, primaryDiags, err := models.NewRecommendation(req.Primary)
	if err != nil {
		respondValidationError(c, err)
		return
	}
	fallback, fallbackDiags, err := models.NewRecommendation(req.Fallback)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	resolved := services.Resolve(primary, fallback, req.Threshold)
	usedPrimary := primary.ConfidenceScore >= req.Threshold

	diags := primaryDiags
	if !usedPrimary {
		diags = fallbackDiags
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendation": resolved,
		"used_primary":   usedPrimary,
		"diagnostics":    diags,
	})
}

type suggestRequest struct {
	Title     string                  `json:"title" binding:"required"`
	TimeOfDay string                  `json:"time_of_day"`
	Vibe      string                  `json:"vibe"`
	Season    string                  `json:"season"`
	Weights   *models.StrategyWeights `json:"weights"`
}

// Suggest runs the hybrid engine for an occasion. Weights default to
// the preset matching the closet's history unless the caller overrides
// them.
func (h *APIHandler) Suggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	occasion, err := models.NewOccasion(req.Title, req.TimeOfDay, req.Vibe, req.Season)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	var weights models.StrategyWeights
	switch {
	case req.Weights != nil:
		weights = *req.Weights
	default:
		isNew, err := h.engine.IsNewCloset(c.Request.Context())
		if err != nil {
			log.Warn().Err(err).Msg("closet size check failed, using default weights")
			weights = h.engine.GetDefaultWeights()
		} else if isNew {
			weights = h.engine.GetWeightsForNewCloset()
		} else {
			weights = h.engine.GetWeightsForEstablishedCloset()
		}
	}

	rec, diags, err := h.engine.SuggestWithFallback(c.Request.Context(), occasion, weights, h.fallbackThreshold)
	if err != nil {
		log.Error().Err(err).Str("occasion", occasion.Title).Msg("suggestion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate suggestion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"occasion":       occasion,
		"weights":        weights,
		"recommendation": rec,
		"diagnostics":    diags,
	})
}

type createLookRequest struct {
	Occasion  string   `json:"occasion" binding:"required"`
	Notes     string   `json:"notes"`
	TimeOfDay string   `json:"time_of_day"`
	ImageURL  string   `json:"image_url"`
	ItemIDs   []string `json:"item_ids"`
}

// CreateLook saves a new look and links the items worn in it.
func (h *APIHandler) CreateLook(c *gin.Context) {
	var req createLookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	look := models.Look{
		ID:        uuid.NewString(),
		ImageURL:  req.ImageURL,
		Occasion:  req.Occasion,
		Notes:     req.Notes,
		TimeOfDay: req.TimeOfDay,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.looks.Save(c.Request.Context(), look); err != nil {
		log.Error().Err(err).Msg("failed to save look")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save look"})
		return
	}

	if h.wardrobe != nil && len(req.ItemIDs) > 0 {
		if err := h.wardrobe.FeatureItems(c.Request.Context(), look.ID, req.ItemIDs); err != nil {
			log.Error().Err(err).Str("look_id", look.ID).Msg("failed to link look items")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link look items"})
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{"look": look})
}

// GetLook returns a saved look by ID.
func (h *APIHandler) GetLook(c *gin.Context) {
	look, err := h.looks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLookError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"look": look})
}

// GetLookDraft returns the editable fields of a look as a draft.
func (h *APIHandler) GetLookDraft(c *gin.Context) {
	look, err := h.looks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLookError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": models.ToEditableDraft(look)})
}

// CommitLookDraft applies an edited draft to a look and persists it.
// Occasion and notes are the only fields this path can change.
func (h *APIHandler) CommitLookDraft(c *gin.Context) {
	var draft models.LookDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	look, err := h.looks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLookError(c, err)
		return
	}

	updated := models.ApplyDraft(look, draft)
	if err := h.looks.Save(c.Request.Context(), updated); err != nil {
		log.Error().Err(err).Str("look_id", look.ID).Msg("failed to save edited look")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save look"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"look": updated})
}

// DeleteLook removes a saved look.
func (h *APIHandler) DeleteLook(c *gin.Context) {
	if err := h.looks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondLookError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addItemRequest struct {
	ID       string   `json:"id"`
	Name     string   `json:"name" binding:"required"`
	Category string   `json:"category" binding:"required"`
	Tags     []string `json:"tags"`
}

// AddItem stores a wardrobe item with its style tags.
func (h *APIHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	item := models.WardrobeItem{
		ID:       req.ID,
		Name:     req.Name,
		Category: req.Category,
		Tags:     req.Tags,
	}

	if h.wardrobe == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Wardrobe catalog unavailable"})
		return
	}
	if err := h.wardrobe.AddItem(c.Request.Context(), item); err != nil {
		log.Error().Err(err).Str("item_id", item.ID).Msg("failed to add wardrobe item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// Health reports store connectivity and graph counts.
func (h *APIHandler) Health(c *gin.Context) {
	if h.wardrobe == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": "memory"})
		return
	}

	status, err := h.wardrobe.GetStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "graph": status})
}

func respondValidationError(c *gin.Context, err error) {
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func respondLookError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrLookNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Look not found"})
		return
	}
	log.Error().Err(err).Msg("look storage error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage failure"})
}
