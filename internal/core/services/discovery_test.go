package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/core/ports/driven"
)

// stubHistoryStore keeps sessions in memory, most recent first.
type stubHistoryStore struct {
	sessions []domain.Session
	listErr  error
}

func (s *stubHistoryStore) ListSessions(context.Context) ([]domain.Session, error) {
	return s.sessions, s.listErr
}

func (s *stubHistoryStore) AppendSession(_ context.Context, session domain.Session) error {
	s.sessions = append([]domain.Session{session}, s.sessions...)
	return nil
}

func (s *stubHistoryStore) Close() error { return nil }

var _ driven.HistoryStore = (*stubHistoryStore)(nil)

// stubPreferenceStore returns fixed preferences.
type stubPreferenceStore struct {
	prefs domain.DiscoveryPreferences
}

func (s *stubPreferenceStore) Load(context.Context) (domain.DiscoveryPreferences, error) {
	return s.prefs, nil
}

func (s *stubPreferenceStore) Save(_ context.Context, prefs domain.DiscoveryPreferences) error {
	s.prefs = prefs
	return nil
}

var _ driven.PreferenceStore = (*stubPreferenceStore)(nil)

func libraryFixture() []domain.WorkoutDocument {
	return []domain.WorkoutDocument{
		{
			ID:      "kb",
			Source:  domain.SourceLibrary,
			Title:   "Kettlebell Circuit",
			Summary: "Full body kettlebell flow",
			Metadata: domain.WorkoutMetadata{
				FocusTags:       []string{"strength"},
				EquipmentTags:   []string{"kettlebell"},
				DurationMinutes: 30,
			},
		},
		{
			ID:      "mob",
			Source:  domain.SourceLibrary,
			Title:   "Morning Mobility",
			Summary: "Gentle hip and shoulder mobility",
			Metadata: domain.WorkoutMetadata{
				FocusTags:       []string{"mobility"},
				DurationMinutes: 15,
			},
		},
	}
}

func TestEngine_SetDocumentsAndSearch(t *testing.T) {
	engine := NewEngine(EngineConfig{})
	require.NoError(t, engine.SetDocuments(context.Background(), libraryFixture()))

	results, err := engine.Search(context.Background(), "kettlebell", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kb", results[0].Document.ID)

	// No index at all behaves like an empty index.
	fresh := NewEngine(EngineConfig{})
	results, err = fresh.Search(context.Background(), "kettlebell", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngine_AddDocumentsReplacesByID(t *testing.T) {
	engine := NewEngine(EngineConfig{})
	require.NoError(t, engine.SetDocuments(context.Background(), libraryFixture()))

	updated := libraryFixture()[0]
	updated.Title = "Kettlebell Complex"
	updated.Summary = "Heavier kettlebell complex"
	require.NoError(t, engine.AddDocuments(context.Background(), []domain.WorkoutDocument{updated}))

	results, err := engine.Search(context.Background(), "complex", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kb", results[0].Document.ID)

	// The old version is gone, not shadowed.
	results, err = engine.Search(context.Background(), "circuit", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngine_RebuildSuperseded(t *testing.T) {
	engine := NewEngine(EngineConfig{})

	engine.mu.Lock()
	engine.revision = 7
	engine.mu.Unlock()

	err := engine.rebuildIndex(context.Background(), nil, 6)
	assert.ErrorIs(t, err, domain.ErrSuperseded)
}

func TestEngine_Recommend(t *testing.T) {
	prefs := domain.DefaultPreferences()
	prefs.FocusTags = []string{"strength"}

	engine := NewEngine(EngineConfig{
		Preferences: &stubPreferenceStore{prefs: prefs},
		History:     &stubHistoryStore{},
		Now:         func() time.Time { return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, engine.SetDocuments(context.Background(), libraryFixture()))

	ranked, err := engine.Recommend(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "kb", ranked[0].Document.ID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestEngine_Discover_ConfidentRetrievalSkipsGeneration(t *testing.T) {
	tools := &mockToolCaller{handler: happyHandler("never used")}
	engine := NewEngine(EngineConfig{ToolCaller: tools})
	require.NoError(t, engine.SetDocuments(context.Background(), libraryFixture()))

	// Keyword-only scoring gives the single hit 0.55, and confidence
	// 0.55 * 0.68 = 0.374 clears the default threshold.
	outcome, err := engine.Discover(context.Background(), "kettlebell", 10)
	require.NoError(t, err)

	require.Len(t, outcome.Results, 1)
	assert.Equal(t, "kb", outcome.Results[0].Document.ID)
	assert.InDelta(t, 0.55*0.68, outcome.Confidence, 1e-9)
	assert.Nil(t, outcome.Generated)
	assert.Empty(t, tools.callNames())
}

func TestEngine_Discover_GenerativeQueryProducesCandidates(t *testing.T) {
	tools := &mockToolCaller{handler: happyHandler("Garage Strength Builder")}
	engine := NewEngine(EngineConfig{ToolCaller: tools})
	require.NoError(t, engine.SetDocuments(context.Background(), libraryFixture()))

	outcome, err := engine.Discover(context.Background(), "create a garage strength plan", 10)
	require.NoError(t, err)

	require.NotNil(t, outcome.Generated)
	assert.Equal(t, domain.TriggerInitialQuery, outcome.Generated.Trigger)
	assert.Len(t, outcome.Generated.Candidates, defaultGenerationCount)
	assert.False(t, outcome.Generated.UsedFallback)

	// Accepted candidates join the searchable document set.
	assert.Len(t, engine.GeneratedCandidates(), defaultGenerationCount)
	results, err := engine.Search(context.Background(), "garage", 10)
	require.NoError(t, err)
	assert.Len(t, results, defaultGenerationCount)
	for _, r := range results {
		assert.Equal(t, domain.SourceGenerated, r.Document.Source)
	}
}

func TestEngine_Discover_LowConfidenceTriggersGeneration(t *testing.T) {
	tools := &mockToolCaller{handler: happyHandler("Rowing Intervals")}
	engine := NewEngine(EngineConfig{ToolCaller: tools})
	require.NoError(t, engine.SetDocuments(context.Background(), libraryFixture()))

	outcome, err := engine.Discover(context.Background(), "rowing", 10)
	require.NoError(t, err)

	assert.Empty(t, outcome.Results)
	assert.Zero(t, outcome.Confidence)
	require.NotNil(t, outcome.Generated)
	assert.Equal(t, domain.TriggerLowConfidence, outcome.Generated.Trigger)
}

func TestEngine_Discover_NoCapabilityNeverGenerates(t *testing.T) {
	engine := NewEngine(EngineConfig{}) // no tool caller, capability off
	require.NoError(t, engine.SetDocuments(context.Background(), libraryFixture()))

	outcome, err := engine.Discover(context.Background(), "create a rowing plan", 10)
	require.NoError(t, err)
	assert.Nil(t, outcome.Generated)
	assert.Empty(t, engine.GeneratedCandidates())
}

func TestEngine_LoadMore(t *testing.T) {
	tools := &mockToolCaller{handler: happyHandler("Hill Repeats")}
	engine := NewEngine(EngineConfig{ToolCaller: tools})
	require.NoError(t, engine.SetDocuments(context.Background(), libraryFixture()))

	batch, err := engine.LoadMore(context.Background(), "running", 2)
	require.NoError(t, err)
	assert.Len(t, batch.Candidates, 2)
	assert.Equal(t, domain.TriggerBottomDetent, batch.Trigger)
	assert.Len(t, engine.GeneratedCandidates(), 2)
}

func TestEngine_LoadMore_UnavailableCapability(t *testing.T) {
	engine := NewEngine(EngineConfig{})

	batch, err := engine.LoadMore(context.Background(), "running", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
	assert.Nil(t, batch)
}
