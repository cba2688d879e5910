package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgefit-labs/discovery/internal/core/domain"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		query string
		want  QueryIntent
	}{
		{"create a leg workout", IntentGenerative},
		{"Generate something new for travel", IntentGenerative},
		{"build me a new plan", IntentGenerative},
		{"make me sweat", IntentGenerative},
		{"kettlebell circuit", IntentSearchlike},
		{"30 minute mobility", IntentSearchlike},
		{"", IntentSearchlike},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(tt.query))
		})
	}
}

func TestRetrievalConfidence(t *testing.T) {
	assert.Zero(t, RetrievalConfidence(nil))

	one := []domain.SearchResult{{Score: 0.9}}
	several := []domain.SearchResult{{Score: 0.9}, {Score: 0.5}, {Score: 0.4}, {Score: 0.3}, {Score: 0.2}}

	// Monotone in count.
	assert.Greater(t, RetrievalConfidence(several), RetrievalConfidence(one))

	// Monotone in top score.
	weak := []domain.SearchResult{{Score: 0.2}}
	assert.Greater(t, RetrievalConfidence(one), RetrievalConfidence(weak))

	// Bounded to [0,1].
	full := make([]domain.SearchResult, 20)
	for i := range full {
		full[i] = domain.SearchResult{Score: 1.0}
	}
	conf := RetrievalConfidence(full)
	assert.GreaterOrEqual(t, conf, 0.0)
	assert.LessOrEqual(t, conf, 1.0)
}

func TestPolicy_InitialDecision(t *testing.T) {
	policy := Policy{ConfidenceThreshold: 0.35}

	tests := []struct {
		name       string
		intent     QueryIntent
		confidence float64
		available  bool
		want       GenerationDecision
	}{
		{
			name:      "generative intent with capability",
			intent:    IntentGenerative,
			available: true,
			want:      GenerationDecision{ShouldGenerate: true, Trigger: domain.TriggerInitialQuery},
		},
		{
			name:       "generative intent beats high confidence",
			intent:     IntentGenerative,
			confidence: 0.99,
			available:  true,
			want:       GenerationDecision{ShouldGenerate: true, Trigger: domain.TriggerInitialQuery},
		},
		{
			name:       "low confidence with capability",
			intent:     IntentSearchlike,
			confidence: 0.1,
			available:  true,
			want:       GenerationDecision{ShouldGenerate: true, Trigger: domain.TriggerLowConfidence},
		},
		{
			name:       "confident retrieval declines",
			intent:     IntentSearchlike,
			confidence: 0.8,
			available:  true,
			want:       GenerationDecision{},
		},
		{
			name:      "capability unavailable blocks generative intent",
			intent:    IntentGenerative,
			available: false,
			want:      GenerationDecision{},
		},
		{
			name:       "capability unavailable blocks low confidence",
			intent:     IntentSearchlike,
			confidence: 0.0,
			available:  false,
			want:       GenerationDecision{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.InitialDecision(tt.intent, tt.confidence, tt.available))
		})
	}
}

func TestPolicy_LoadMoreDecision(t *testing.T) {
	policy := Policy{}

	got := policy.LoadMoreDecision(true)
	assert.True(t, got.ShouldGenerate)
	assert.Equal(t, domain.TriggerBottomDetent, got.Trigger)

	assert.False(t, policy.LoadMoreDecision(false).ShouldGenerate)
}
