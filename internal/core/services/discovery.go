package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/core/ports/driven"
	"github.com/forgefit-labs/discovery/internal/core/ports/driving"
	"github.com/forgefit-labs/discovery/internal/logger"
)

// defaultGenerationCount is how many candidates a discovery pass asks for
// when the policy decides to generate.
const defaultGenerationCount = 3

// Engine is the discovery orchestrator: it owns the document set and its
// search index, and drives search, ranking, and policy-gated generation.
//
// Index rebuilds run outside the document lock because embedding can be
// slow. Each rebuild carries the revision observed when it started; a
// rebuild that finds a newer revision on completion discards its work.
type Engine struct {
	mu       sync.RWMutex
	docs     []domain.WorkoutDocument
	index    *SearchIndex
	revision uint64

	embedder   driven.Embedder
	pipeline   *GenerationPipeline
	policy     Policy
	capability driven.CapabilitySignal
	history    driven.HistoryStore
	prefs      driven.PreferenceStore

	genMu     sync.Mutex
	generated []domain.GeneratedCandidate

	now func() time.Time
}

var _ driving.DiscoveryService = (*Engine)(nil)

// EngineConfig carries the engine's collaborators. Embedder, ToolCaller,
// History, and Preferences may each be nil; the engine degrades to
// keyword-only search, fallback-only generation, empty history, and default
// preferences respectively.
type EngineConfig struct {
	Embedder   driven.Embedder
	ToolCaller driven.ToolCaller
	Capability driven.CapabilitySignal
	History    driven.HistoryStore
	Preferences driven.PreferenceStore

	// ConfidenceThreshold overrides the default policy threshold when >0.
	ConfidenceThreshold float64

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewEngine creates a discovery engine from its collaborators.
func NewEngine(cfg EngineConfig) *Engine {
	capability := cfg.Capability
	if capability == nil {
		available := cfg.ToolCaller != nil
		capability = driven.CapabilityFunc(func() bool { return available })
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		embedder:   cfg.Embedder,
		pipeline:   NewGenerationPipeline(cfg.ToolCaller, capability),
		policy:     Policy{ConfidenceThreshold: cfg.ConfidenceThreshold},
		capability: capability,
		history:    cfg.History,
		prefs:      cfg.Preferences,
		now:        now,
	}
}

// SetDocuments replaces the document set and rebuilds the index. Returns
// ErrSuperseded when a newer replacement started before this rebuild
// finished; the caller's documents were still installed, only the index
// belongs to the newer call.
func (e *Engine) SetDocuments(ctx context.Context, docs []domain.WorkoutDocument) error {
	e.mu.Lock()
	e.revision++
	rev := e.revision
	e.docs = append([]domain.WorkoutDocument(nil), docs...)
	snapshot := e.docs
	e.mu.Unlock()

	return e.rebuildIndex(ctx, snapshot, rev)
}

// AddDocuments merges a batch into the document set and rebuilds the index.
// Documents with a known ID replace the previous version.
func (e *Engine) AddDocuments(ctx context.Context, docs []domain.WorkoutDocument) error {
	if len(docs) == 0 {
		return nil
	}

	e.mu.Lock()
	e.revision++
	rev := e.revision
	byID := make(map[string]int, len(e.docs))
	for i := range e.docs {
		byID[e.docs[i].ID] = i
	}
	for _, doc := range docs {
		if i, ok := byID[doc.ID]; ok {
			e.docs[i] = doc
			continue
		}
		byID[doc.ID] = len(e.docs)
		e.docs = append(e.docs, doc)
	}
	snapshot := append([]domain.WorkoutDocument(nil), e.docs...)
	e.mu.Unlock()

	return e.rebuildIndex(ctx, snapshot, rev)
}

// rebuildIndex builds an index for snapshot outside the lock and installs
// it if revision rev is still current.
func (e *Engine) rebuildIndex(ctx context.Context, snapshot []domain.WorkoutDocument, rev uint64) error {
	idx := NewSearchIndex(ctx, snapshot, e.embedder)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.revision != rev {
		logger.Debug("Index rebuild for revision %d superseded by %d", rev, e.revision)
		return domain.ErrSuperseded
	}
	e.index = idx
	return nil
}

// Search performs hybrid keyword+semantic search over the current index.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	e.mu.RLock()
	idx := e.index
	e.mu.RUnlock()

	if idx == nil {
		return nil, nil
	}
	return idx.Search(ctx, query, limit), nil
}

// Recommend ranks the full document set against preferences and history.
func (e *Engine) Recommend(ctx context.Context, limit int) ([]domain.RankedWorkout, error) {
	e.mu.RLock()
	docs := append([]domain.WorkoutDocument(nil), e.docs...)
	e.mu.RUnlock()

	prefs, err := e.loadPreferences(ctx)
	if err != nil {
		return nil, err
	}
	history, err := e.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	return Rank(docs, history, prefs, e.now(), limit), nil
}

// Discover runs the full pass: search, rank the hits, then generate when
// the policy calls for it. Accepted candidates join the document set so
// follow-up searches can find them. Generation failure never takes down a
// successful retrieval; the outcome just carries no batch.
func (e *Engine) Discover(ctx context.Context, query string, limit int) (*driving.DiscoverOutcome, error) {
	hits, err := e.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	prefs, err := e.loadPreferences(ctx)
	if err != nil {
		return nil, err
	}
	history, err := e.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	hitDocs := make([]domain.WorkoutDocument, len(hits))
	for i := range hits {
		hitDocs[i] = hits[i].Document
	}

	outcome := &driving.DiscoverOutcome{
		Results:    Rank(hitDocs, history, prefs, e.now(), limit),
		Confidence: RetrievalConfidence(hits),
	}

	decision := e.policy.InitialDecision(ClassifyIntent(query), outcome.Confidence, e.capability.LiveGenerationAvailable())
	if !decision.ShouldGenerate {
		return outcome, nil
	}

	batch, err := e.pipeline.Generate(ctx, query, decision.Trigger, defaultGenerationCount, hitDocs)
	if err != nil {
		if len(outcome.Results) == 0 {
			return nil, fmt.Errorf("discover %q: %w", query, err)
		}
		logger.Warn("Generation failed, returning retrieval only: %v", err)
		return outcome, nil
	}

	e.acceptBatch(ctx, batch)
	outcome.Generated = batch
	return outcome, nil
}

// LoadMore generates additional candidates on explicit request. Blocked
// only by the live capability, never by retrieval confidence.
func (e *Engine) LoadMore(ctx context.Context, query string, count int) (*domain.GenerationBatch, error) {
	decision := e.policy.LoadMoreDecision(e.capability.LiveGenerationAvailable())
	if !decision.ShouldGenerate {
		return nil, fmt.Errorf("load more for %q: %w", query, domain.ErrGenerationUnavailable)
	}

	e.mu.RLock()
	docs := append([]domain.WorkoutDocument(nil), e.docs...)
	e.mu.RUnlock()

	batch, err := e.pipeline.Generate(ctx, query, decision.Trigger, count, docs)
	if err != nil {
		return nil, err
	}
	e.acceptBatch(ctx, batch)
	return batch, nil
}

// GeneratedCandidates returns the candidates accepted this session, in
// acceptance order.
func (e *Engine) GeneratedCandidates() []domain.GeneratedCandidate {
	e.genMu.Lock()
	defer e.genMu.Unlock()
	return append([]domain.GeneratedCandidate(nil), e.generated...)
}

// acceptBatch records a batch's candidates and merges them into the
// document set. A superseded index rebuild is fine here: the newer rebuild
// sees the merged documents.
func (e *Engine) acceptBatch(ctx context.Context, batch *domain.GenerationBatch) {
	e.genMu.Lock()
	e.generated = append(e.generated, batch.Candidates...)
	e.genMu.Unlock()

	docs := make([]domain.WorkoutDocument, len(batch.Candidates))
	for i := range batch.Candidates {
		docs[i] = batch.Candidates[i].Document()
	}
	if err := e.AddDocuments(ctx, docs); err != nil && err != domain.ErrSuperseded {
		logger.Warn("Merging generated candidates failed: %v", err)
	}
}

func (e *Engine) loadPreferences(ctx context.Context) (domain.DiscoveryPreferences, error) {
	if e.prefs == nil {
		return domain.DefaultPreferences(), nil
	}
	prefs, err := e.prefs.Load(ctx)
	if err != nil {
		return domain.DiscoveryPreferences{}, fmt.Errorf("load preferences: %w", err)
	}
	return prefs, nil
}

func (e *Engine) loadHistory(ctx context.Context) ([]domain.Session, error) {
	if e.history == nil {
		return nil, nil
	}
	sessions, err := e.history.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return sessions, nil
}
