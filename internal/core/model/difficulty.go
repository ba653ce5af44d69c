package model

// Tier buckets a timeline's difficulty score.
type Tier string

const (
	TierGentle   Tier = "gentle"
	TierModerate Tier = "moderate"
	TierIntense  Tier = "intense"
	TierExtreme  Tier = "extreme"
)

// Difficulty is the result of scoring a timeline.
type Difficulty struct {
	Tier Tier
	XP   int
}

// DefaultFeatureWeights maps features to per-active-minute score weights.
// Unlisted features score defaultFeatureWeight. These are policy data, not
// engine logic; callers may supply their own table.
var DefaultFeatureWeights = map[FeatureID]int{
	"flash":      3,
	"subliminal": 4,
	"bubbles":    2,
	"corner_gif": 2,
	"tint":       1,
}

const (
	defaultFeatureWeight = 2
	xpPerMinute          = 2

	tierModerateAt = 60
	tierIntenseAt  = 180
	tierExtremeAt  = 420
)

// CalculateDifficulty scores a timeline. The result is deterministic for a
// given timeline and grows monotonically with duration and with each
// feature's active time.
func CalculateDifficulty(timeline *Timeline) Difficulty {
	return CalculateDifficultyWeighted(timeline, DefaultFeatureWeights)
}

// CalculateDifficultyWeighted scores a timeline against a custom weight table.
func CalculateDifficultyWeighted(timeline *Timeline, weights map[FeatureID]int) Difficulty {
	score := timeline.DurationMinutes * xpPerMinute
	for feature, minutes := range timeline.ActiveMinutes() {
		weight, ok := weights[feature]
		if !ok {
			weight = defaultFeatureWeight
		}
		score += weight * minutes
	}

	tier := TierGentle
	switch {
	case score >= tierExtremeAt:
		tier = TierExtreme
	case score >= tierIntenseAt:
		tier = TierIntense
	case score >= tierModerateAt:
		tier = TierModerate
	}

	return Difficulty{Tier: tier, XP: score}
}
