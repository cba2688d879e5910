// Package memory provides in-memory storage adapters. Useful for tests and
// for hosts that manage persistence themselves.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/core/ports/driven"
)

// Ensure WorkoutStore implements the interface.
var _ driven.WorkoutStore = (*WorkoutStore)(nil)

// WorkoutStore is an in-memory implementation of driven.WorkoutStore.
type WorkoutStore struct {
	mu       sync.RWMutex
	workouts map[string]domain.WorkoutDocument
}

// NewWorkoutStore creates a new in-memory workout store.
func NewWorkoutStore() *WorkoutStore {
	return &WorkoutStore{
		workouts: make(map[string]domain.WorkoutDocument),
	}
}

// ListWorkouts returns all stored workouts, ordered by title.
func (s *WorkoutStore) ListWorkouts(_ context.Context) ([]domain.WorkoutDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.WorkoutDocument, 0, len(s.workouts))
	for id := range s.workouts {
		result = append(result, s.workouts[id])
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Title) < strings.ToLower(result[j].Title)
	})
	return result, nil
}

// GetWorkout retrieves a workout by ID.
func (s *WorkoutStore) GetWorkout(_ context.Context, id string) (*domain.WorkoutDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.workouts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// SaveWorkout stores or replaces a workout.
func (s *WorkoutStore) SaveWorkout(_ context.Context, doc *domain.WorkoutDocument) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workouts[doc.ID] = *doc
	return nil
}

// Close releases resources.
func (s *WorkoutStore) Close() error {
	return nil
}
