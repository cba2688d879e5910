package domain

// SearchResult represents a single search hit.
// Results are ephemeral and recomputed per query.
type SearchResult struct {
	// Document is the matched workout.
	Document WorkoutDocument

	// Score is the combined relevance score in [0,1].
	Score float64

	// KeywordScore is the keyword sub-score that produced Score.
	KeywordScore float64

	// SemanticScore is the cosine-similarity sub-score that produced Score.
	SemanticScore float64
}

// RankReason is one human-readable scoring contribution.
type RankReason struct {
	// Text explains the contribution, e.g. "matches focus: strength".
	Text string

	// Contribution is the signed score delta.
	Contribution float64
}

// RankedWorkout is a workout scored against preferences and history.
type RankedWorkout struct {
	// Document is the ranked workout.
	Document WorkoutDocument

	// Score is the cumulative score. It starts at a 1.0 baseline and is
	// unbounded in either direction.
	Score float64

	// Reasons are the ordered contributions that produced Score.
	Reasons []RankReason
}

// TopReason returns the largest positive contribution, if any.
func (r RankedWorkout) TopReason() (RankReason, bool) {
	var best RankReason
	found := false
	for _, reason := range r.Reasons {
		if reason.Contribution > best.Contribution {
			best = reason
			found = true
		}
	}
	return best, found
}
