package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nahom-d/lookbook/internal/models"
)

// ErrLookNotFound is returned when no look exists for the requested ID.
var ErrLookNotFound = errors.New("look not found")

// LookRepository isolates look persistence from the rest of the
// service. Callers reference looks by ID and never touch the storage
// technology directly.
type LookRepository interface {
	Get(ctx context.Context, id string) (models.Look, error)
	Save(ctx context.Context, look models.Look) error
	Delete(ctx context.Context, id string) error
}

// Neo4jLookRepository stores looks as nodes in the wardrobe graph.
type Neo4jLookRepository struct {
	client *Neo4jClient
}

// NewNeo4jLookRepository creates a graph-backed look repository.
func NewNeo4jLookRepository(client *Neo4jClient) *Neo4jLookRepository {
	return &Neo4jLookRepository{client: client}
}

// Get fetches a look by ID.
func (r *Neo4jLookRepository) Get(ctx context.Context, id string) (models.Look, error) {
	query := `
		MATCH (l:Look {id: $id})
		RETURN l.id AS id,
			   l.image_url AS image_url,
			   l.occasion AS occasion,
			   l.notes AS notes,
			   l.time_of_day AS time_of_day,
			   l.created_at AS created_at
	`

	params := map[string]any{
		"id": id,
	}

	results, err := r.client.ExecuteRead(ctx, query, params)
	if err != nil {
		return models.Look{}, fmt.Errorf("failed to get look: %w", err)
	}
	if len(results) == 0 {
		return models.Look{}, ErrLookNotFound
	}

	return lookFromRecord(results[0]), nil
}

// Save upserts a look node.
func (r *Neo4jLookRepository) Save(ctx context.Context, look models.Look) error {
	query := `
		MERGE (l:Look {id: $id})
		SET l.image_url = $imageURL,
		    l.occasion = $occasion,
		    l.notes = $notes,
		    l.time_of_day = $timeOfDay,
		    l.created_at = datetime($createdAt)
	`

	params := map[string]any{
		"id":        look.ID,
		"imageURL":  look.ImageURL,
		"occasion":  look.Occasion,
		"notes":     look.Notes,
		"timeOfDay": look.TimeOfDay,
		"createdAt": look.CreatedAt.UTC().Format(time.RFC3339),
	}

	if err := r.client.ExecuteWrite(ctx, query, params); err != nil {
		return fmt.Errorf("failed to save look: %w", err)
	}

	log.Info().Str("look_id", look.ID).Str("occasion", look.Occasion).Msg("look saved")
	return nil
}

// Delete removes a look and its relationships.
func (r *Neo4jLookRepository) Delete(ctx context.Context, id string) error {
	query := `
		MATCH (l:Look {id: $id})
		DETACH DELETE l
		RETURN count(l) AS deleted
	`

	params := map[string]any{
		"id": id,
	}

	results, err := r.client.ExecuteWriteWithResult(ctx, query, params)
	if err != nil {
		return fmt.Errorf("failed to delete look: %w", err)
	}
	if len(results) == 0 || results[0]["deleted"].(int64) == 0 {
		return ErrLookNotFound
	}

	log.Info().Str("look_id", id).Msg("look deleted")
	return nil
}

func lookFromRecord(record map[string]any) models.Look {
	look := models.Look{
		ID: record["id"].(string),
	}
	if v, ok := record["image_url"].(string); ok {
		look.ImageURL = v
	}
	if v, ok := record["occasion"].(string); ok {
		look.Occasion = v
	}
	if v, ok := record["notes"].(string); ok {
		look.Notes = v
	}
	if v, ok := record["time_of_day"].(string); ok {
		look.TimeOfDay = v
	}
	if v, ok := record["created_at"].(time.Time); ok {
		look.CreatedAt = v
	}
	return look
}
