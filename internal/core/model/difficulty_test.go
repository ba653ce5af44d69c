package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDifficultyEmptyTimeline(t *testing.T) {
	timeline := NewTimeline("empty", 10)

	difficulty := CalculateDifficulty(timeline)
	assert.Equal(t, 20, difficulty.XP)
	assert.Equal(t, TierGentle, difficulty.Tier)
}

func TestCalculateDifficultyIsDeterministic(t *testing.T) {
	timeline := buildScoredTimeline(t)

	first := CalculateDifficulty(timeline)
	second := CalculateDifficulty(timeline)
	assert.Equal(t, first, second)
}

func TestCalculateDifficultyKnownScore(t *testing.T) {
	timeline := NewTimeline("scored", 20)
	start := timeline.AddStart("flash", 0)
	_, err := timeline.AddStop(start.ID, 10)
	require.NoError(t, err)
	timeline.AddStart("tint", 5) // unpaired, runs to minute 20

	// 20*2 base + flash 10*3 + tint 15*1.
	difficulty := CalculateDifficulty(timeline)
	assert.Equal(t, 85, difficulty.XP)
	assert.Equal(t, TierModerate, difficulty.Tier)
}

func TestCalculateDifficultyMonotonicInDuration(t *testing.T) {
	short := NewTimeline("short", 10)
	short.AddStart("flash", 0)

	long := short.Clone()
	long.SetDuration(30)

	assert.Greater(t, CalculateDifficulty(long).XP, CalculateDifficulty(short).XP)
}

func TestCalculateDifficultyMonotonicInFeatures(t *testing.T) {
	base := NewTimeline("base", 30)
	base.AddStart("flash", 0)

	richer := base.Clone()
	richer.AddStart("bubbles", 5)

	assert.Greater(t, CalculateDifficulty(richer).XP, CalculateDifficulty(base).XP)
}

func TestCalculateDifficultyUnknownFeatureUsesDefaultWeight(t *testing.T) {
	timeline := NewTimeline("custom", 10)
	timeline.AddStart("aurora", 0) // not in the weight table, runs 10 minutes

	difficulty := CalculateDifficulty(timeline)
	assert.Equal(t, 10*2+10*2, difficulty.XP)
}

func TestCalculateDifficultyTiers(t *testing.T) {
	cases := []struct {
		name            string
		durationMinutes int
		tier            Tier
	}{
		{"gentle", 10, TierGentle},
		{"moderate", 30, TierModerate},
		{"intense", 90, TierIntense},
		{"extreme", 210, TierExtreme},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			timeline := NewTimeline(testCase.name, testCase.durationMinutes)
			difficulty := CalculateDifficulty(timeline)
			assert.Equal(t, testCase.tier, difficulty.Tier)
		})
	}
}

func buildScoredTimeline(t *testing.T) *Timeline {
	t.Helper()
	timeline := NewTimeline("scored", 25)
	start := timeline.AddStart("flash", 2)
	_, err := timeline.AddStop(start.ID, 12)
	require.NoError(t, err)
	timeline.AddStart("subliminal", 8)
	timeline.AddStart("tint", 0)
	return timeline
}
