package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nahom-d/lookbook/internal/models"
)

// WardrobeStore maintains the wardrobe graph: Look, WardrobeItem and
// StyleTag nodes plus the FEATURES and STYLED_WITH relationships the
// suggestion engine scores against.
type WardrobeStore struct {
	client *Neo4jClient
}

// NewWardrobeStore creates a wardrobe store over a Neo4j client.
func NewWardrobeStore(client *Neo4jClient) *WardrobeStore {
	return &WardrobeStore{client: client}
}

// EnsureSchema creates the uniqueness constraints the graph relies on.
// Safe to run repeatedly.
func (s *WardrobeStore) EnsureSchema(ctx context.Context) error {
	constraints := []string{
		"CREATE CONSTRAINT look_id IF NOT EXISTS FOR (l:Look) REQUIRE l.id IS UNIQUE",
		"CREATE CONSTRAINT wardrobe_item_id IF NOT EXISTS FOR (i:WardrobeItem) REQUIRE i.id IS UNIQUE",
		"CREATE CONSTRAINT style_tag_name IF NOT EXISTS FOR (t:StyleTag) REQUIRE t.name IS UNIQUE",
	}

	for _, constraint := range constraints {
		if err := s.client.ExecuteWrite(ctx, constraint, nil); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	log.Info().Msg("wardrobe graph schema ensured")
	return nil
}

// AddItem stores a wardrobe item and links it to its style tags.
func (s *WardrobeStore) AddItem(ctx context.Context, item models.WardrobeItem) error {
	query := `
		MERGE (i:WardrobeItem {id: $id})
		SET i.name = $name,
		    i.category = $category
		WITH i
		UNWIND $tags AS tag
		MERGE (t:StyleTag {name: toLower(tag)})
		MERGE (i)-[:STYLED_WITH]->(t)
	`

	tags := make([]any, 0, len(item.Tags))
	for _, tag := range item.Tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		tags = append(tags, strings.TrimSpace(tag))
	}

	params := map[string]any{
		"id":       item.ID,
		"name":     item.Name,
		"category": item.Category,
		"tags":     tags,
	}

	if err := s.client.ExecuteWrite(ctx, query, params); err != nil {
		return fmt.Errorf("failed to add wardrobe item: %w", err)
	}

	log.Info().Str("item_id", item.ID).Str("category", item.Category).Msg("wardrobe item stored")
	return nil
}

// FeatureItems links a saved look to the items worn in it and bumps
// each item's featured count, keeping the aggregate the tag affinity
// strategy reads without a full rebuild.
func (s *WardrobeStore) FeatureItems(ctx context.Context, lookID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}

	query := `
		MATCH (l:Look {id: $lookID})
		UNWIND $itemIDs AS itemID
		MATCH (i:WardrobeItem {id: itemID})
		MERGE (l)-[f:FEATURES]->(i)
		ON CREATE SET i.featured = coalesce(i.featured, 0) + 1
	`

	ids := make([]any, len(itemIDs))
	for i, id := range itemIDs {
		ids[i] = id
	}

	params := map[string]any{
		"lookID":  lookID,
		"itemIDs": ids,
	}

	if err := s.client.ExecuteWrite(ctx, query, params); err != nil {
		return fmt.Errorf("failed to feature items in look: %w", err)
	}

	return nil
}

// RefreshAffinities rebuilds the featured aggregate from scratch.
// Used after bulk edits, when the incremental counts may have drifted.
func (s *WardrobeStore) RefreshAffinities(ctx context.Context) error {
	query := `
		MATCH (i:WardrobeItem)
		OPTIONAL MATCH (l:Look)-[:FEATURES]->(i)
		WITH i, count(l) AS featured
		SET i.featured = featured
		RETURN count(i) AS refreshed
	`

	results, err := s.client.ExecuteWriteWithResult(ctx, query, nil)
	if err != nil {
		return fmt.Errorf("failed to refresh affinities: %w", err)
	}

	if len(results) > 0 {
		log.Info().Interface("refreshed", results[0]["refreshed"]).Msg("item affinities refreshed")
	}

	return nil
}

// GetStatus returns node and relationship counts for the health surface.
func (s *WardrobeStore) GetStatus(ctx context.Context) (map[string]int, error) {
	query := `
		OPTIONAL MATCH (l:Look) WITH count(l) AS looks
		OPTIONAL MATCH (i:WardrobeItem) WITH looks, count(i) AS items
		OPTIONAL MATCH (t:StyleTag) WITH looks, items, count(t) AS tags
		OPTIONAL MATCH ()-[f:FEATURES]->() WITH looks, items, tags, count(f) AS features
		RETURN looks, items, tags, features
	`

	results, err := s.client.ExecuteRead(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return map[string]int{
			"looks":    0,
			"items":    0,
			"tags":     0,
			"features": 0,
		}, nil
	}

	result := results[0]
	status := map[string]int{
		"looks":    int(result["looks"].(int64)),
		"items":    int(result["items"].(int64)),
		"tags":     int(result["tags"].(int64)),
		"features": int(result["features"].(int64)),
	}

	return status, nil
}
