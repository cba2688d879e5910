package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgefit-labs/discovery/internal/core/domain"
)

func TestHistoryStore_AppendAndList(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC)

	// Append out of chronological order.
	require.NoError(t, store.AppendSession(ctx, domain.Session{ID: "old", StartedAt: base}))
	require.NoError(t, store.AppendSession(ctx, domain.Session{ID: "new", StartedAt: base.Add(48 * time.Hour)}))
	require.NoError(t, store.AppendSession(ctx, domain.Session{ID: "mid", StartedAt: base.Add(24 * time.Hour)}))

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, "mid", sessions[1].ID)
	assert.Equal(t, "old", sessions[2].ID)
}

func TestHistoryStore_AppendRequiresID(t *testing.T) {
	store := NewHistoryStore()
	err := store.AppendSession(context.Background(), domain.Session{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPreferenceStore_DefaultsThenSaved(t *testing.T) {
	store := NewPreferenceStore()
	ctx := context.Background()

	prefs, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPreferences(), prefs)

	prefs.FocusTags = []string{"strength"}
	require.NoError(t, store.Save(ctx, prefs))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"strength"}, loaded.FocusTags)
}
