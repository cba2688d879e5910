package domain

import "time"

// Session is one completed workout session from the user's history.
type Session struct {
	// ID is the unique session identifier.
	ID string

	// WorkoutID references the workout that was performed.
	WorkoutID string

	// Title is the workout title at the time of the session.
	Title string

	// Source is the provenance of the performed workout.
	Source WorkoutSource

	// StartedAt is when the session began.
	StartedAt time.Time

	// EndedAt is when the session finished.
	EndedAt time.Time

	// DurationMinutes is the session length. Zero means unrecorded;
	// Finalize derives it from the timestamps.
	DurationMinutes int

	// FocusTags are the focus categories recorded at completion.
	// When empty, consumers fall back to the workout document or the title.
	FocusTags []string
}

// Finalize fills the duration from the timestamps when it was not recorded.
func (s Session) Finalize() Session {
	if s.DurationMinutes == 0 && !s.EndedAt.IsZero() && s.EndedAt.After(s.StartedAt) {
		s.DurationMinutes = int(s.EndedAt.Sub(s.StartedAt).Minutes())
	}
	return s
}
