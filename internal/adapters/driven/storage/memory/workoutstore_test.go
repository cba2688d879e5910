package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgefit-labs/discovery/internal/core/domain"
)

func TestWorkoutStore_SaveAndGet(t *testing.T) {
	store := NewWorkoutStore()
	ctx := context.Background()

	doc := &domain.WorkoutDocument{ID: "a", Title: "Leg Day"}
	require.NoError(t, store.SaveWorkout(ctx, doc))

	got, err := store.GetWorkout(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Leg Day", got.Title)

	// Mutating the caller's copy does not affect the stored version.
	doc.Title = "changed"
	got, err = store.GetWorkout(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Leg Day", got.Title)
}

func TestWorkoutStore_GetMissing(t *testing.T) {
	store := NewWorkoutStore()

	_, err := store.GetWorkout(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkoutStore_SaveReplacesByID(t *testing.T) {
	store := NewWorkoutStore()
	ctx := context.Background()

	require.NoError(t, store.SaveWorkout(ctx, &domain.WorkoutDocument{ID: "a", Title: "v1"}))
	require.NoError(t, store.SaveWorkout(ctx, &domain.WorkoutDocument{ID: "a", Title: "v2"}))

	docs, err := store.ListWorkouts(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "v2", docs[0].Title)
}

func TestWorkoutStore_SaveRequiresID(t *testing.T) {
	store := NewWorkoutStore()
	err := store.SaveWorkout(context.Background(), &domain.WorkoutDocument{Title: "no id"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWorkoutStore_ListOrderedByTitle(t *testing.T) {
	store := NewWorkoutStore()
	ctx := context.Background()

	require.NoError(t, store.SaveWorkout(ctx, &domain.WorkoutDocument{ID: "1", Title: "charlie"}))
	require.NoError(t, store.SaveWorkout(ctx, &domain.WorkoutDocument{ID: "2", Title: "Alpha"}))
	require.NoError(t, store.SaveWorkout(ctx, &domain.WorkoutDocument{ID: "3", Title: "bravo"}))

	docs, err := store.ListWorkouts(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "Alpha", docs[0].Title)
	assert.Equal(t, "bravo", docs[1].Title)
	assert.Equal(t, "charlie", docs[2].Title)
}
