package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// WorkoutSource identifies where a workout document came from.
type WorkoutSource string

// Workout sources.
const (
	SourceLibrary   WorkoutSource = "library"
	SourceTemplate  WorkoutSource = "template"
	SourceVariant   WorkoutSource = "variant"
	SourceExternal  WorkoutSource = "external"
	SourceGenerated WorkoutSource = "generated"
)

// WorkoutMetadata holds the structured facts attached to a workout.
type WorkoutMetadata struct {
	// DurationMinutes is the stated duration. Zero means unspecified;
	// the ranker falls back to inference from content.
	DurationMinutes int

	// FocusTags describe the training focus (e.g. "strength", "mobility").
	FocusTags []string

	// EquipmentTags list required equipment (e.g. "dumbbell", "band").
	EquipmentTags []string

	// LocationTag is where the workout is meant to happen ("home", "gym", "away").
	LocationTag string

	// OtherTags are free-form tags not covered above.
	OtherTags []string
}

// WorkoutItem is a single exercise line within a section.
type WorkoutItem struct {
	// Name is the exercise name.
	Name string

	// Prescription is the dose (sets/reps/time), e.g. "3x10" or "30 seconds".
	Prescription string

	// Notes holds optional coaching cues.
	Notes string
}

// WorkoutSection is one block of a workout (warmup, main set, cooldown, ...).
type WorkoutSection struct {
	// Title is the section heading. Headings are structural: they are
	// embedded for semantic similarity but never indexed as keyword content.
	Title string

	// Detail is free text describing the section.
	Detail string

	// Items are the exercises in this section.
	Items []WorkoutItem
}

// WorkoutContent is the body of a workout document.
type WorkoutContent struct {
	// Markdown is the raw source text.
	Markdown string

	// Sections is the parsed structure, when available.
	Sections []WorkoutSection

	// Notes holds optional free-form notes.
	Notes string
}

// WorkoutDocument is the canonical representation of one workout.
// Documents are immutable once constructed; a changed document is a new
// document with a new version hash.
type WorkoutDocument struct {
	// ID is the unique identifier.
	ID string

	// Source is the provenance category.
	Source WorkoutSource

	// SourceURI is the original location (file path, URL), if any.
	SourceURI string

	// Title is the human-readable title.
	Title string

	// Summary is an optional one-line description.
	Summary string

	// Metadata holds the structured facts.
	Metadata WorkoutMetadata

	// Content is the body.
	Content WorkoutContent

	// VersionHash is a content hash identifying this version.
	VersionHash string

	// CreatedAt is when the document was first seen.
	CreatedAt time.Time

	// UpdatedAt is when the document last changed.
	UpdatedAt time.Time
}

// VersionHash computes the content hash used for document versioning.
func VersionHash(markdown string) string {
	sum := sha256.Sum256([]byte(markdown))
	return hex.EncodeToString(sum[:])
}
