package database

import (
	"context"
	"sync"

	"github.com/nahom-d/lookbook/internal/models"
)

// MemoryLookRepository is an in-memory LookRepository. Used by tests
// and storage-free runs; values are copied in and out, so callers can
// never mutate stored state directly.
type MemoryLookRepository struct {
	mu    sync.RWMutex
	looks map[string]models.Look
}

// NewMemoryLookRepository creates an empty in-memory repository.
func NewMemoryLookRepository() *MemoryLookRepository {
	return &MemoryLookRepository{looks: make(map[string]models.Look)}
}

// Get returns the look stored under id.
func (r *MemoryLookRepository) Get(_ context.Context, id string) (models.Look, error) {
	r.mu.RLock()
	look, ok := r.looks[id]
	r.mu.RUnlock()
	if !ok {
		return models.Look{}, ErrLookNotFound
	}
	return look, nil
}

// Save stores a copy of the look, overwriting any previous version.
func (r *MemoryLookRepository) Save(_ context.Context, look models.Look) error {
	r.mu.Lock()
	r.looks[look.ID] = look
	r.mu.Unlock()
	return nil
}

// Delete removes the look stored under id.
func (r *MemoryLookRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.looks[id]; !ok {
		return ErrLookNotFound
	}
	delete(r.looks, id)
	return nil
}
