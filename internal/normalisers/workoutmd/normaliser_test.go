package workoutmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgefit-labs/discovery/internal/core/domain"
)

const fullWorkout = `---
duration: 40
focus: strength, legs
equipment: barbell
location: gym
summary: Heavy lower body session
---
# Leg Day

## Warmup
Easy movement before loading.
- Leg swings — 10 each side
- Air squats — 2 x 10

## Main Set
- Back squat — 5 x 5
- Romanian deadlift -- 3 x 8
- Walking lunges
`

func TestParse_FullDocument(t *testing.T) {
	doc, err := Parse([]byte(fullWorkout), "/lib/leg-day.md")
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, domain.SourceLibrary, doc.Source)
	assert.Equal(t, "/lib/leg-day.md", doc.SourceURI)
	assert.Equal(t, "Leg Day", doc.Title)
	assert.Equal(t, "Heavy lower body session", doc.Summary)

	assert.Equal(t, 40, doc.Metadata.DurationMinutes)
	assert.Equal(t, []string{"strength", "legs"}, doc.Metadata.FocusTags)
	assert.Equal(t, []string{"barbell"}, doc.Metadata.EquipmentTags)
	assert.Equal(t, domain.LocationGym, doc.Metadata.LocationTag)

	require.Len(t, doc.Content.Sections, 2)

	warmup := doc.Content.Sections[0]
	assert.Equal(t, "Warmup", warmup.Title)
	assert.Equal(t, "Easy movement before loading.", warmup.Detail)
	require.Len(t, warmup.Items, 2)
	assert.Equal(t, "Leg swings", warmup.Items[0].Name)
	assert.Equal(t, "10 each side", warmup.Items[0].Prescription)

	main := doc.Content.Sections[1]
	assert.Equal(t, "Main Set", main.Title)
	require.Len(t, main.Items, 3)
	assert.Equal(t, "Romanian deadlift", main.Items[1].Name)
	assert.Equal(t, "3 x 8", main.Items[1].Prescription)
	// Items without a separator keep the whole text as the name.
	assert.Equal(t, "Walking lunges", main.Items[2].Name)
	assert.Empty(t, main.Items[2].Prescription)

	// The full markdown, front matter included, feeds the version hash.
	assert.Equal(t, fullWorkout, doc.Content.Markdown)
	assert.Equal(t, domain.VersionHash(fullWorkout), doc.VersionHash)
}

func TestParse_NoFrontMatter(t *testing.T) {
	md := "# Quick Core\n\nShort core finisher.\n\n## Circuit\n- Plank — 60 seconds\n"

	doc, err := Parse([]byte(md), "/lib/core.md")
	require.NoError(t, err)

	assert.Equal(t, "Quick Core", doc.Title)
	assert.Equal(t, "Short core finisher.", doc.Summary)
	assert.Zero(t, doc.Metadata.DurationMinutes)
	require.Len(t, doc.Content.Sections, 1)
}

func TestParse_TitleFallsBackToFilename(t *testing.T) {
	doc, err := Parse([]byte("## Circuit\n- Burpees\n"), "/lib/morning_hill-sprints.md")
	require.NoError(t, err)
	assert.Equal(t, "morning hill sprints", doc.Title)
}

func TestParse_EmptyContent(t *testing.T) {
	_, err := Parse([]byte("   \n"), "/lib/empty.md")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParse_UnknownFrontMatterKeysBecomeTags(t *testing.T) {
	md := "---\nintensity: high\n---\n# Sprints\n"

	doc, err := Parse([]byte(md), "/lib/sprints.md")
	require.NoError(t, err)
	assert.Contains(t, doc.Metadata.OtherTags, "high")
}

func TestParse_SameContentSameHash(t *testing.T) {
	a, err := Parse([]byte(fullWorkout), "/lib/a.md")
	require.NoError(t, err)
	b, err := Parse([]byte(fullWorkout), "/lib/b.md")
	require.NoError(t, err)

	assert.Equal(t, a.VersionHash, b.VersionHash)
	assert.NotEqual(t, a.ID, b.ID)
}
