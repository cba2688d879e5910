package domain

import "time"

// GenerationTrigger tags why a generation round started.
type GenerationTrigger string

// Generation triggers.
const (
	// TriggerInitialQuery means the query itself asked for a new workout.
	TriggerInitialQuery GenerationTrigger = "initial_query"

	// TriggerLowConfidence means retrieval found nothing convincing.
	TriggerLowConfidence GenerationTrigger = "low_retrieval_confidence"

	// TriggerBottomDetent means the user explicitly asked for more.
	TriggerBottomDetent GenerationTrigger = "bottom_detent"
)

// Provenance records how a generated candidate came to exist.
type Provenance struct {
	// OriginQuery is the query that started generation.
	OriginQuery string

	// BaseWorkoutID is the workout the candidate was derived from, if any.
	BaseWorkoutID string

	// ContextWorkoutIDs are the documents supplied as refinement context.
	ContextWorkoutIDs []string

	// GenerationRound is the generate/refine round that produced the
	// accepted draft.
	GenerationRound int

	// RepairAttempts is how many repair cycles the candidate needed.
	RepairAttempts int

	// CreatedAt is when the candidate was accepted.
	CreatedAt time.Time
}

// GeneratedCandidate is a synthesized workout produced by the generation
// pipeline. Candidates are never mutated after validation succeeds; repairs
// produce new in-flight drafts, not mutations of accepted candidates.
type GeneratedCandidate struct {
	// ID is the unique candidate identifier.
	ID string

	// Title is the workout title.
	Title string

	// Summary is a one-line description.
	Summary string

	// Content is the workout body (markdown plus parsed sections).
	Content WorkoutContent

	// Explanation says why this candidate fits the query.
	Explanation string

	// Saved reports whether the caller persisted the candidate.
	Saved bool

	// CreatedAt is when the candidate was accepted.
	CreatedAt time.Time

	// Provenance records the candidate's origin.
	Provenance Provenance
}

// Document converts an accepted candidate into a workout document so it can
// join the searchable document set.
func (c GeneratedCandidate) Document() WorkoutDocument {
	return WorkoutDocument{
		ID:          c.ID,
		Source:      SourceGenerated,
		Title:       c.Title,
		Summary:     c.Summary,
		Content:     c.Content,
		VersionHash: VersionHash(c.Content.Markdown),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.CreatedAt,
	}
}

// GenerationBatch is the outcome of one pipeline invocation.
type GenerationBatch struct {
	// Candidates are the validated candidates, possibly fewer than requested.
	Candidates []GeneratedCandidate

	// Trigger is why the batch was generated.
	Trigger GenerationTrigger

	// UsedFallback reports whether any candidate came from the
	// deterministic fallback path.
	UsedFallback bool

	// Note is a human-readable quality summary, e.g. "2/5 live".
	Note string
}
