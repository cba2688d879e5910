// Package driving provides interfaces for application entry points
// (primary/inbound ports).
package driving

import (
	"context"

	"github.com/forgefit-labs/discovery/internal/core/domain"
)

// DiscoverOutcome is the result of one discovery pass: ranked retrieval
// results plus, when the policy decided to synthesize, a generation batch.
type DiscoverOutcome struct {
	// Results are the ranked retrieval results.
	Results []domain.RankedWorkout

	// Confidence is the retrieval confidence in [0,1] that fed the
	// generation decision.
	Confidence float64

	// Generated is the generation batch, nil when no generation ran.
	Generated *domain.GenerationBatch
}

// DiscoveryService is the engine's primary port: hybrid search, preference
// and history aware ranking, and policy-driven candidate generation.
type DiscoveryService interface {
	// SetDocuments replaces the document set and rebuilds the index.
	SetDocuments(ctx context.Context, docs []domain.WorkoutDocument) error

	// AddDocuments merges a batch into the document set and rebuilds
	// the index. Documents with a known ID replace the previous version.
	AddDocuments(ctx context.Context, docs []domain.WorkoutDocument) error

	// Search performs hybrid keyword+semantic search.
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)

	// Recommend ranks the document set against preferences and history.
	Recommend(ctx context.Context, limit int) ([]domain.RankedWorkout, error)

	// Discover runs the full pass: search, rank, and generate when the
	// policy calls for it. Accepted candidates join the document set.
	Discover(ctx context.Context, query string, limit int) (*DiscoverOutcome, error)

	// LoadMore generates additional candidates for an explicit "more"
	// request. Never blocked by retrieval confidence.
	LoadMore(ctx context.Context, query string, count int) (*domain.GenerationBatch, error)

	// GeneratedCandidates returns the candidates accepted this session.
	GeneratedCandidates() []domain.GeneratedCandidate
}
