package mcp

import (
	"context"

	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/core/ports/driving"
)

// mockDiscovery is a scriptable driving.DiscoveryService.
type mockDiscovery struct {
	searchFunc    func(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
	recommendFunc func(ctx context.Context, limit int) ([]domain.RankedWorkout, error)
	loadMoreFunc  func(ctx context.Context, query string, count int) (*domain.GenerationBatch, error)
}

var _ driving.DiscoveryService = (*mockDiscovery)(nil)

func (m *mockDiscovery) SetDocuments(context.Context, []domain.WorkoutDocument) error {
	return nil
}

func (m *mockDiscovery) AddDocuments(context.Context, []domain.WorkoutDocument) error {
	return nil
}

func (m *mockDiscovery) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockDiscovery) Recommend(ctx context.Context, limit int) ([]domain.RankedWorkout, error) {
	if m.recommendFunc != nil {
		return m.recommendFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockDiscovery) Discover(context.Context, string, int) (*driving.DiscoverOutcome, error) {
	return &driving.DiscoverOutcome{}, nil
}

func (m *mockDiscovery) LoadMore(ctx context.Context, query string, count int) (*domain.GenerationBatch, error) {
	if m.loadMoreFunc != nil {
		return m.loadMoreFunc(ctx, query, count)
	}
	return &domain.GenerationBatch{}, nil
}

func (m *mockDiscovery) GeneratedCandidates() []domain.GeneratedCandidate {
	return nil
}
