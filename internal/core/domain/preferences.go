package domain

// DurationBucket groups workout lengths into coarse preference buckets.
type DurationBucket string

// Duration buckets.
const (
	DurationShort  DurationBucket = "short"  // up to 20 minutes
	DurationMedium DurationBucket = "medium" // up to 40 minutes
	DurationLong   DurationBucket = "long"   // over 40 minutes
)

// BucketForMinutes maps a duration in minutes to its bucket.
func BucketForMinutes(minutes int) DurationBucket {
	switch {
	case minutes <= 20:
		return DurationShort
	case minutes <= 40:
		return DurationMedium
	default:
		return DurationLong
	}
}

// AdjacentBuckets reports whether two buckets are ordinal neighbours.
// short and long are never adjacent.
func AdjacentBuckets(a, b DurationBucket) bool {
	switch {
	case a == DurationShort && b == DurationMedium,
		a == DurationMedium && b == DurationShort,
		a == DurationMedium && b == DurationLong,
		a == DurationLong && b == DurationMedium:
		return true
	default:
		return false
	}
}

// Workout locations.
const (
	LocationHome = "home"
	LocationGym  = "gym"
	LocationAway = "away"
)

// RankWeights holds the coefficients for recommendation scoring.
// All weights are non-negative; penalties are applied by the ranker itself.
type RankWeights struct {
	Focus         float64
	Duration      float64
	Equipment     float64
	Location      float64
	Novelty       float64
	RepeatPenalty float64
}

// DefaultRankWeights returns the baseline scoring coefficients.
func DefaultRankWeights() RankWeights {
	return RankWeights{
		Focus:         1.0,
		Duration:      0.8,
		Equipment:     0.6,
		Location:      0.5,
		Novelty:       0.4,
		RepeatPenalty: 0.7,
	}
}

// DiscoveryPreferences is the user's standing preference profile.
// The engine consumes preferences read-only; a preference store owns them.
type DiscoveryPreferences struct {
	// TargetDuration is the preferred bucket. Empty means no preference.
	TargetDuration DurationBucket

	// Location is the preferred workout location. Empty means no preference.
	Location string

	// FocusTags are preferred training focuses.
	FocusTags []string

	// EquipmentTags are preferred equipment.
	EquipmentTags []string

	// ExcludedTags hard-exclude any workout carrying one of these tags.
	ExcludedTags []string

	// IncludeTemplates allows user templates in results.
	IncludeTemplates bool

	// IncludeExternal allows externally sourced workouts in results.
	IncludeExternal bool

	// MinimumRestDays maps a focus category to the minimum number of
	// calendar days required since the last session with that focus.
	MinimumRestDays map[string]int

	// Weights are the scoring coefficients.
	Weights RankWeights
}

// DefaultPreferences returns a permissive preference profile with
// baseline weights.
func DefaultPreferences() DiscoveryPreferences {
	return DiscoveryPreferences{
		IncludeTemplates: true,
		IncludeExternal:  false,
		MinimumRestDays:  map[string]int{},
		Weights:          DefaultRankWeights(),
	}
}
