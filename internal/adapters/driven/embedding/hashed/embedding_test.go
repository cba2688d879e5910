package hashed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestEmbedder_Deterministic(t *testing.T) {
	e := New(Config{})

	first, err := e.Embed(context.Background(), "kettlebell swings and goblet squats")
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), "kettlebell swings and goblet squats")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, DefaultDimensions)
}

func TestEmbedder_UnitNorm(t *testing.T) {
	e := New(Config{Dimensions: 64})

	vec, err := e.Embed(context.Background(), "tempo run with strides")
	require.NoError(t, err)
	require.Len(t, vec, 64)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestEmbedder_SharedVocabularyScoresHigher(t *testing.T) {
	e := New(Config{})

	squats, err := e.Embed(context.Background(), "back squat front squat goblet squat")
	require.NoError(t, err)
	moreSquats, err := e.Embed(context.Background(), "goblet squat and back squat work")
	require.NoError(t, err)
	rowing, err := e.Embed(context.Background(), "steady rowing erg intervals")
	require.NoError(t, err)

	assert.Greater(t, cosine(squats, moreSquats), cosine(squats, rowing))
}

func TestEmbedder_EmptyTextIsZeroVector(t *testing.T) {
	e := New(Config{})

	vec, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestEmbedder_Ping(t *testing.T) {
	e := New(Config{})
	assert.NoError(t, e.Ping(context.Background()))
	assert.NoError(t, e.Close())
	assert.Equal(t, "hashed-fnv64a", e.ModelName())
	assert.Equal(t, DefaultDimensions, e.Dimensions())
}
