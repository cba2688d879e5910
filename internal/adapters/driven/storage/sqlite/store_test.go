package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgefit-labs/discovery/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run applied migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestWorkoutStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	workouts := store.WorkoutStore()
	ctx := context.Background()

	doc := &domain.WorkoutDocument{
		ID:      "a",
		Source:  domain.SourceLibrary,
		Title:   "Leg Day",
		Summary: "Squats and lunges",
		Metadata: domain.WorkoutMetadata{
			DurationMinutes: 40,
			FocusTags:       []string{"strength"},
			EquipmentTags:   []string{"barbell"},
		},
		Content: domain.WorkoutContent{
			Markdown: "# Leg Day\n",
			Sections: []domain.WorkoutSection{
				{Title: "Main Set", Items: []domain.WorkoutItem{{Name: "Back squat", Prescription: "5 x 5"}}},
			},
		},
		VersionHash: domain.VersionHash("# Leg Day\n"),
	}
	require.NoError(t, workouts.SaveWorkout(ctx, doc))

	got, err := workouts.GetWorkout(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Metadata, got.Metadata)
	assert.Equal(t, doc.Content, got.Content)
	assert.Equal(t, doc.VersionHash, got.VersionHash)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestWorkoutStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.WorkoutStore().GetWorkout(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkoutStore_SaveReplacesByID(t *testing.T) {
	store := newTestStore(t)
	workouts := store.WorkoutStore()
	ctx := context.Background()

	require.NoError(t, workouts.SaveWorkout(ctx, &domain.WorkoutDocument{ID: "a", Source: domain.SourceLibrary, Title: "v1"}))
	require.NoError(t, workouts.SaveWorkout(ctx, &domain.WorkoutDocument{ID: "a", Source: domain.SourceLibrary, Title: "v2"}))

	docs, err := workouts.ListWorkouts(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "v2", docs[0].Title)
}

func TestWorkoutStore_SaveRequiresID(t *testing.T) {
	store := newTestStore(t)
	err := store.WorkoutStore().SaveWorkout(context.Background(), &domain.WorkoutDocument{Title: "no id"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistoryStore_RoundTripOrdered(t *testing.T) {
	store := newTestStore(t)
	history := store.HistoryStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC)

	require.NoError(t, history.AppendSession(ctx, domain.Session{
		ID: "old", WorkoutID: "a", Title: "Leg Day", Source: domain.SourceLibrary,
		StartedAt: base, EndedAt: base.Add(40 * time.Minute), DurationMinutes: 40,
		FocusTags: []string{"strength"},
	}))
	require.NoError(t, history.AppendSession(ctx, domain.Session{
		ID: "new", StartedAt: base.Add(48 * time.Hour),
	}))

	sessions, err := history.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, "old", sessions[1].ID)
	assert.Equal(t, []string{"strength"}, sessions[1].FocusTags)
	assert.Equal(t, 40, sessions[1].DurationMinutes)
	assert.True(t, sessions[0].EndedAt.IsZero())
}

func TestPreferenceStore_DefaultsThenSaved(t *testing.T) {
	store := newTestStore(t)
	prefStore := store.PreferenceStore()
	ctx := context.Background()

	prefs, err := prefStore.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPreferences(), prefs)

	prefs.FocusTags = []string{"mobility"}
	prefs.TargetDuration = domain.DurationShort
	require.NoError(t, prefStore.Save(ctx, prefs))

	loaded, err := prefStore.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"mobility"}, loaded.FocusTags)
	assert.Equal(t, domain.DurationShort, loaded.TargetDuration)
}
