package confluence

import (
	"math"
	"testing"

	"github.com/aristath/signal-arbiter/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTimeframeWeights_SumToOne(t *testing.T) {
	weights := DefaultTimeframeWeights()

	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestNewScorer_MissingWeightFails(t *testing.T) {
	weights := map[domain.Timeframe]float64{
		domain.Timeframe3m: 0.5,
		domain.Timeframe1h: 0.5,
	}

	_, err := NewScorer(weights, []domain.Timeframe{domain.Timeframe3m, domain.Timeframe1d})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "1d")
}

func TestScorer_Score(t *testing.T) {
	scorer := NewDefaultScorer()

	tests := []struct {
		name    string
		signals map[domain.Timeframe]float64
		want    float64
	}{
		{
			name:    "empty input returns zero",
			signals: map[domain.Timeframe]float64{},
			want:    0.0,
		},
		{
			name: "full agreement scores one",
			signals: map[domain.Timeframe]float64{
				domain.Timeframe3m:  1.0,
				domain.Timeframe15m: 1.0,
				domain.Timeframe1h:  1.0,
				domain.Timeframe1d:  1.0,
			},
			want: 1.0,
		},
		{
			name: "absent timeframes contribute nothing",
			signals: map[domain.Timeframe]float64{
				domain.Timeframe1d: 1.0,
			},
			want: 0.4,
		},
		{
			name: "weighted blend",
			signals: map[domain.Timeframe]float64{
				domain.Timeframe3m:  0.5, // 0.05
				domain.Timeframe15m: 0.5, // 0.10
				domain.Timeframe1h:  1.0, // 0.30
				domain.Timeframe1d:  0.0, // 0.00
			},
			want: 0.45,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.signals, 0)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScorer_SqueezeDurationBoost(t *testing.T) {
	scorer := NewDefaultScorer()

	// Only the longer-horizon timeframes (1h, 1d) sit at/above the median
	// weight, so only they are boosted.
	signals := map[domain.Timeframe]float64{
		domain.Timeframe3m: 0.5,
		domain.Timeframe1h: 0.5,
	}

	base := scorer.Score(signals, 0)
	boosted := scorer.Score(signals, 10) // factor 1.2

	expected := 0.1*0.5 + 0.3*0.5*1.2
	assert.InDelta(t, expected, boosted, 1e-9)
	assert.Greater(t, boosted, base)
}

func TestScorer_ScoreMonotonicInDuration(t *testing.T) {
	scorer := NewDefaultScorer()
	signals := map[domain.Timeframe]float64{
		domain.Timeframe15m: 0.4,
		domain.Timeframe1h:  0.6,
		domain.Timeframe1d:  0.3,
	}

	prev := scorer.Score(signals, 0)
	for d := 1; d <= 40; d++ {
		cur := scorer.Score(signals, d)
		assert.GreaterOrEqual(t, cur, prev, "score must be non-decreasing in squeeze duration")
		prev = cur
	}

	// Saturates once the boost factor hits 1.5x
	assert.InDelta(t, scorer.Score(signals, 25), scorer.Score(signals, 100), 1e-12)
}

func TestScorer_ScoreAlwaysInUnitInterval(t *testing.T) {
	scorer := NewDefaultScorer()

	inputs := []map[domain.Timeframe]float64{
		{domain.Timeframe1d: 1.0, domain.Timeframe1h: 1.0},
		{domain.Timeframe1d: 5.0},  // out-of-range signal
		{domain.Timeframe3m: -2.0}, // negative signal
		{},
	}

	for _, signals := range inputs {
		for d := 0; d <= 60; d += 10 {
			score := scorer.Score(signals, d)
			assert.True(t, score >= 0 && score <= 1,
				"score %v out of [0,1] for signals %v duration %d", score, signals, d)
			assert.False(t, math.IsNaN(score))
		}
	}
}

func TestScorer_IsConfluenceMet(t *testing.T) {
	scorer := NewDefaultScorer()

	assert.True(t, scorer.IsConfluenceMet(0.75, 0.7))
	assert.True(t, scorer.IsConfluenceMet(0.7, 0.7))
	assert.False(t, scorer.IsConfluenceMet(0.69, 0.7))
}
