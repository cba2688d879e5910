package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/logger"
)

// recentSessionWindow is how many of the most recent sessions feed the
// novelty comparison.
const recentSessionWindow = 5

// repeatPenaltyFloor keeps the repeat penalty at 15% strength even after
// the week-long decay has run out.
const repeatPenaltyFloor = 0.15

// durationPattern extracts a stated duration from body text.
var durationPattern = regexp.MustCompile(`(\d+) ?(min|mins|minutes)\b`)

// Rank scores documents against preferences and session history and returns
// them ordered, best first. Gated or unscoreable documents are silently
// excluded; the ranker never fails.
func Rank(
	docs []domain.WorkoutDocument,
	history []domain.Session,
	prefs domain.DiscoveryPreferences,
	now time.Time,
	limit int,
) []domain.RankedWorkout {
	logger.Section("Ranking")
	logger.Debug("Ranking %d documents against %d sessions", len(docs), len(history))

	docsByID := make(map[string]domain.WorkoutDocument, len(docs))
	for _, doc := range docs {
		docsByID[doc.ID] = doc
	}
	recentFocus := recentFocusSet(history, docsByID, recentSessionWindow)

	ranked := make([]domain.RankedWorkout, 0, len(docs))
	for _, doc := range docs {
		if r := scoreWorkout(doc, history, docsByID, prefs, recentFocus, now); r != nil {
			ranked = append(ranked, *r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return strings.ToLower(ranked[i].Document.Title) < strings.ToLower(ranked[j].Document.Title)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	logger.Debug("Ranked results: %d", len(ranked))
	return ranked
}

// scoreWorkout applies the gates and additive scoring for one document.
// Returns nil when the document is gated out.
func scoreWorkout(
	doc domain.WorkoutDocument,
	history []domain.Session,
	docsByID map[string]domain.WorkoutDocument,
	prefs domain.DiscoveryPreferences,
	recentFocus map[string]struct{},
	now time.Time,
) *domain.RankedWorkout {
	// Source gate.
	if doc.Source == domain.SourceTemplate && !prefs.IncludeTemplates {
		return nil
	}
	if doc.Source == domain.SourceExternal && !prefs.IncludeExternal {
		return nil
	}

	// Exclusion gate.
	if tagsIntersect(allTags(doc), prefs.ExcludedTags) {
		return nil
	}

	focus := effectiveFocus(doc)

	// Rest-day gate: a hard filter, not a penalty.
	for category, minDays := range prefs.MinimumRestDays {
		if minDays <= 0 || !containsTag(focus, category) {
			continue
		}
		if last, ok := lastSessionWithFocus(history, docsByID, category); ok {
			if calendarDaysBetween(last.StartedAt, now) < minDays {
				return nil
			}
		}
	}

	w := prefs.Weights
	result := domain.RankedWorkout{Document: doc, Score: 1.0}
	addReason := func(text string, contribution float64) {
		result.Score += contribution
		result.Reasons = append(result.Reasons, domain.RankReason{Text: text, Contribution: contribution})
	}

	// Focus match.
	if len(prefs.FocusTags) > 0 {
		if overlap := tagOverlap(focus, prefs.FocusTags); len(overlap) > 0 {
			contribution := float64(len(overlap)) / float64(len(prefs.FocusTags)) * w.Focus
			addReason("matches focus: "+strings.Join(overlap, ", "), contribution)
		}
	}

	// Equipment match.
	if len(prefs.EquipmentTags) > 0 {
		if overlap := tagOverlap(doc.Metadata.EquipmentTags, prefs.EquipmentTags); len(overlap) > 0 {
			contribution := float64(len(overlap)) / float64(len(prefs.EquipmentTags)) * w.Equipment
			addReason("matches equipment: "+strings.Join(overlap, ", "), contribution)
		}
	}

	// Location match.
	if prefs.Location != "" {
		switch {
		case doc.Metadata.LocationTag == prefs.Location:
			addReason("at preferred location", w.Location)
		case doc.Metadata.LocationTag != "":
			addReason("different location", -0.5*w.Location)
		}
	}

	// Duration match. short and long are never adjacent.
	if prefs.TargetDuration != "" {
		bucket := domain.BucketForMinutes(effectiveDurationMinutes(doc))
		switch {
		case bucket == prefs.TargetDuration:
			addReason("matches preferred duration", w.Duration)
		case domain.AdjacentBuckets(bucket, prefs.TargetDuration):
			addReason("close to preferred duration", 0.35*w.Duration)
		default:
			addReason("outside preferred duration", -0.45*w.Duration)
		}
	}

	// Repeat penalty, decaying linearly over a week.
	if last, ok := lastSessionForWorkout(history, doc.ID); ok {
		days := calendarDaysBetween(last.StartedAt, now)
		strength := 1.0 - float64(days)/7.0
		if strength < repeatPenaltyFloor {
			strength = repeatPenaltyFloor
		}
		addReason(fmt.Sprintf("performed %d days ago", days), -w.RepeatPenalty*strength)
	}

	// Novelty boost against recent training.
	if len(focus) > 0 && disjointFrom(focus, recentFocus) {
		addReason("new focus vs recent training", w.Novelty)
	}

	return &result
}

// effectiveDurationMinutes resolves a document's duration through the
// explicit inference chain: stated metadata, then a duration mention in the
// body text, then an estimate from item count clamped to [12,60].
func effectiveDurationMinutes(doc domain.WorkoutDocument) int {
	if doc.Metadata.DurationMinutes > 0 {
		return doc.Metadata.DurationMinutes
	}

	if m := durationPattern.FindStringSubmatch(strings.ToLower(doc.Content.Markdown)); m != nil {
		var minutes int
		fmt.Sscanf(m[1], "%d", &minutes)
		if minutes > 0 {
			return minutes
		}
	}

	items := 0
	for _, section := range doc.Content.Sections {
		items += len(section.Items)
	}
	estimate := items * 2
	if estimate < 12 {
		estimate = 12
	}
	if estimate > 60 {
		estimate = 60
	}
	return estimate
}

// effectiveFocus resolves a document's focus tags, inferring from the title
// when metadata carries none.
func effectiveFocus(doc domain.WorkoutDocument) []string {
	if len(doc.Metadata.FocusTags) > 0 {
		return doc.Metadata.FocusTags
	}
	return inferFocusFromTitle(doc.Title)
}

// strengthWords are title keywords indicating a strength focus.
var strengthWords = []string{"strength", "squat", "deadlift", "press", "lift"}

// inferFocusFromTitle derives focus tags from title keywords.
func inferFocusFromTitle(title string) []string {
	lower := strings.ToLower(title)
	var focus []string
	for _, word := range strengthWords {
		if strings.Contains(lower, word) {
			focus = append(focus, "strength")
			break
		}
	}
	if strings.Contains(lower, "mobility") || strings.Contains(lower, "stretch") {
		focus = append(focus, "mobility")
	}
	if strings.Contains(lower, "recovery") {
		focus = append(focus, "recovery")
	}
	if strings.Contains(lower, "bodyweight") {
		focus = append(focus, "bodyweight")
	}
	return focus
}

// sessionFocus resolves the focus tags of a history session: the recorded
// tags, then the referenced document's tags, then title inference.
func sessionFocus(session domain.Session, docsByID map[string]domain.WorkoutDocument) []string {
	if len(session.FocusTags) > 0 {
		return session.FocusTags
	}
	if doc, ok := docsByID[session.WorkoutID]; ok {
		return effectiveFocus(doc)
	}
	return inferFocusFromTitle(session.Title)
}

// recentFocusSet collects the focus categories of the n most recent
// sessions. History is expected most recent first.
func recentFocusSet(history []domain.Session, docsByID map[string]domain.WorkoutDocument, n int) map[string]struct{} {
	set := make(map[string]struct{})
	for i, session := range history {
		if i >= n {
			break
		}
		for _, tag := range sessionFocus(session, docsByID) {
			set[strings.ToLower(tag)] = struct{}{}
		}
	}
	return set
}

// lastSessionWithFocus finds the most recent session whose focus includes
// the category. History is expected most recent first.
func lastSessionWithFocus(history []domain.Session, docsByID map[string]domain.WorkoutDocument, category string) (domain.Session, bool) {
	for _, session := range history {
		if containsTag(sessionFocus(session, docsByID), category) {
			return session, true
		}
	}
	return domain.Session{}, false
}

// lastSessionForWorkout finds the most recent session for the exact
// document. History is expected most recent first.
func lastSessionForWorkout(history []domain.Session, workoutID string) (domain.Session, bool) {
	for _, session := range history {
		if session.WorkoutID == workoutID {
			return session, true
		}
	}
	return domain.Session{}, false
}

// calendarDaysBetween returns the difference in calendar days between two
// instants, ignoring time of day.
func calendarDaysBetween(earlier, later time.Time) int {
	e := time.Date(earlier.Year(), earlier.Month(), earlier.Day(), 0, 0, 0, 0, time.UTC)
	l := time.Date(later.Year(), later.Month(), later.Day(), 0, 0, 0, 0, time.UTC)
	return int(l.Sub(e).Hours() / 24)
}

// allTags gathers every tag attached to a document.
func allTags(doc domain.WorkoutDocument) []string {
	tags := make([]string, 0, len(doc.Metadata.FocusTags)+len(doc.Metadata.EquipmentTags)+len(doc.Metadata.OtherTags))
	tags = append(tags, doc.Metadata.FocusTags...)
	tags = append(tags, doc.Metadata.EquipmentTags...)
	tags = append(tags, doc.Metadata.OtherTags...)
	return tags
}

// tagOverlap returns the case-insensitive intersection of two tag lists,
// preserving the order of the first.
func tagOverlap(tags, preferred []string) []string {
	set := make(map[string]struct{}, len(preferred))
	for _, tag := range preferred {
		set[strings.ToLower(tag)] = struct{}{}
	}
	var overlap []string
	for _, tag := range tags {
		if _, ok := set[strings.ToLower(tag)]; ok {
			overlap = append(overlap, tag)
		}
	}
	return overlap
}

// tagsIntersect reports whether two tag lists share any tag.
func tagsIntersect(a, b []string) bool {
	return len(tagOverlap(a, b)) > 0
}

// containsTag reports whether tags contains tag, case-insensitively.
func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// disjointFrom reports whether no tag appears in the set.
func disjointFrom(tags []string, set map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := set[strings.ToLower(tag)]; ok {
			return false
		}
	}
	return true
}
