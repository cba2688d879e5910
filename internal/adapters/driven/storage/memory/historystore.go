package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu       sync.RWMutex
	sessions []domain.Session
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// ListSessions returns completed sessions, most recent first.
func (s *HistoryStore) ListSessions(_ context.Context) ([]domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := append([]domain.Session(nil), s.sessions...)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	return result, nil
}

// AppendSession records a completed session.
func (s *HistoryStore) AppendSession(_ context.Context, session domain.Session) error {
	if session.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, session)
	return nil
}

// Close releases resources.
func (s *HistoryStore) Close() error {
	return nil
}
