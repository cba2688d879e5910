package memory

import (
	"context"
	"sync"

	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/core/ports/driven"
)

// Ensure PreferenceStore implements the interface.
var _ driven.PreferenceStore = (*PreferenceStore)(nil)

// PreferenceStore is an in-memory implementation of driven.PreferenceStore.
type PreferenceStore struct {
	mu    sync.RWMutex
	prefs *domain.DiscoveryPreferences
}

// NewPreferenceStore creates a new in-memory preference store.
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{}
}

// Load returns the saved preferences, or defaults when none were saved.
func (s *PreferenceStore) Load(_ context.Context) (domain.DiscoveryPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.prefs == nil {
		return domain.DefaultPreferences(), nil
	}
	return *s.prefs, nil
}

// Save persists preferences.
func (s *PreferenceStore) Save(_ context.Context, prefs domain.DiscoveryPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = &prefs
	return nil
}

// Close releases resources.
func (s *PreferenceStore) Close() error {
	return nil
}
