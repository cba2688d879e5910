package services

import (
	"strings"

	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/logger"
)

// QueryIntent classifies what a query is asking for.
type QueryIntent string

// Query intents.
const (
	// IntentGenerative means the query asks for something new to be made.
	IntentGenerative QueryIntent = "generative"

	// IntentSearchlike means the query looks for existing workouts.
	IntentSearchlike QueryIntent = "searchlike"
)

// creationCues are the query fragments that mark generative intent.
var creationCues = []string{
	"create",
	"generate",
	"build",
	"make me",
	"design",
	"new plan",
	"new workout",
	"come up with",
}

// DefaultConfidenceThreshold is the retrieval confidence below which the
// policy triggers generation for searchlike queries.
const DefaultConfidenceThreshold = 0.35

// GenerationDecision says whether to synthesize candidates and why.
type GenerationDecision struct {
	ShouldGenerate bool
	Trigger        domain.GenerationTrigger
}

// Policy decides when retrieval should be supplemented by generation.
// It is pure decision logic: no state, no side effects.
type Policy struct {
	// ConfidenceThreshold gates low-confidence generation. Zero means
	// use the default.
	ConfidenceThreshold float64
}

// threshold returns the effective confidence threshold.
func (p Policy) threshold() float64 {
	if p.ConfidenceThreshold > 0 {
		return p.ConfidenceThreshold
	}
	return DefaultConfidenceThreshold
}

// ClassifyIntent decides whether a query is generative or searchlike.
func ClassifyIntent(query string) QueryIntent {
	lower := strings.ToLower(query)
	for _, cue := range creationCues {
		if strings.Contains(lower, cue) {
			return IntentGenerative
		}
	}
	return IntentSearchlike
}

// RetrievalConfidence scores how convincing a result set is, in [0,1].
// Monotone in both result count and top score: an empty set scores zero,
// and a single strong hit scores lower than several strong hits.
func RetrievalConfidence(results []domain.SearchResult) float64 {
	if len(results) == 0 {
		return 0
	}
	top := results[0].Score
	if top < 0 {
		top = 0
	}
	if top > 1 {
		top = 1
	}
	count := float64(len(results))
	if count > 5 {
		count = 5
	}
	return top * (0.6 + 0.4*count/5)
}

// InitialDecision decides whether the first pass over a query should
// generate candidates. Generative intent wins outright; otherwise low
// retrieval confidence triggers generation. Either way the live capability
// must be available.
func (p Policy) InitialDecision(intent QueryIntent, confidence float64, liveAvailable bool) GenerationDecision {
	if !liveAvailable {
		logger.Debug("Generation declined: capability unavailable")
		return GenerationDecision{}
	}
	if intent == IntentGenerative {
		return GenerationDecision{ShouldGenerate: true, Trigger: domain.TriggerInitialQuery}
	}
	if confidence < p.threshold() {
		logger.Debug("Generation triggered: confidence %.2f below %.2f", confidence, p.threshold())
		return GenerationDecision{ShouldGenerate: true, Trigger: domain.TriggerLowConfidence}
	}
	return GenerationDecision{}
}

// LoadMoreDecision decides whether an explicit "more" request may generate.
// Manual requests are never blocked by confidence, only by capability.
func (p Policy) LoadMoreDecision(liveAvailable bool) GenerationDecision {
	if !liveAvailable {
		return GenerationDecision{}
	}
	return GenerationDecision{ShouldGenerate: true, Trigger: domain.TriggerBottomDetent}
}
