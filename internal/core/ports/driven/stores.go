package driven

import (
	"context"

	"github.com/forgefit-labs/discovery/internal/core/domain"
)

// WorkoutStore supplies and persists workout documents. The engine treats
// the store as an external collaborator: documents may arrive in arbitrary
// batches and the engine rebuilds its index after each batch.
type WorkoutStore interface {
	// ListWorkouts returns all stored workouts.
	ListWorkouts(ctx context.Context) ([]domain.WorkoutDocument, error)

	// GetWorkout retrieves a workout by ID.
	GetWorkout(ctx context.Context, id string) (*domain.WorkoutDocument, error)

	// SaveWorkout stores or replaces a workout.
	SaveWorkout(ctx context.Context, doc *domain.WorkoutDocument) error

	// Close releases resources.
	Close() error
}

// HistoryStore supplies prior session records used by rest-day gating,
// the repeat penalty, and novelty scoring.
type HistoryStore interface {
	// ListSessions returns completed sessions, most recent first.
	ListSessions(ctx context.Context) ([]domain.Session, error)

	// AppendSession records a completed session.
	AppendSession(ctx context.Context, session domain.Session) error

	// Close releases resources.
	Close() error
}

// PreferenceStore supplies user preferences. The engine reads preferences;
// it never writes them.
type PreferenceStore interface {
	// Load returns the current preferences, falling back to defaults when
	// none have been saved.
	Load(ctx context.Context) (domain.DiscoveryPreferences, error)

	// Save persists preferences. Used by hosts, not by the engine.
	Save(ctx context.Context, prefs domain.DiscoveryPreferences) error
}
