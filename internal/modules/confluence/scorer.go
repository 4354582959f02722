package confluence

import (
	"fmt"
	"math"
	"sort"

	"github.com/aristath/signal-arbiter/internal/domain"
)

// maxDurationBoost caps how much a persistent squeeze can amplify the
// longer-horizon timeframes
const maxDurationBoost = 1.5

// durationBoostStep is the per-period increment of the squeeze boost
const durationBoostStep = 0.02

// Scorer aggregates per-timeframe agreement into a single [0,1] score.
// Timeframe weights are fixed at construction; every timeframe the caller
// will ever supply must have a weight or construction fails.
type Scorer struct {
	weights      map[domain.Timeframe]float64
	medianWeight float64
}

// DefaultTimeframeWeights returns the stock shortest-to-longest weighting.
// The four values sum to exactly 1.0.
func DefaultTimeframeWeights() map[domain.Timeframe]float64 {
	return map[domain.Timeframe]float64{
		domain.Timeframe3m:  0.1,
		domain.Timeframe15m: 0.2,
		domain.Timeframe1h:  0.3,
		domain.Timeframe1d:  0.4,
	}
}

// NewScorer creates a scorer for the required timeframes. It fails when a
// required timeframe has no assigned weight.
func NewScorer(weights map[domain.Timeframe]float64, required []domain.Timeframe) (*Scorer, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("no timeframe weights supplied")
	}

	for _, tf := range required {
		if _, ok := weights[tf]; !ok {
			return nil, fmt.Errorf("timeframe %s has no assigned weight", tf)
		}
	}

	return &Scorer{
		weights:      weights,
		medianWeight: medianOf(weights),
	}, nil
}

// NewDefaultScorer creates a scorer over the default timeframe set
func NewDefaultScorer() *Scorer {
	weights := DefaultTimeframeWeights()
	s, _ := NewScorer(weights, []domain.Timeframe{
		domain.Timeframe3m, domain.Timeframe15m, domain.Timeframe1h, domain.Timeframe1d,
	})
	return s
}

// Score computes the weighted agreement across the supplied timeframes.
//
// Absent timeframes contribute nothing; weights are not renormalized.
// A persistent volatility squeeze boosts only the longer-horizon
// timeframes (those at/above the median weight) by min(1+0.02·d, 1.5).
// The result is clipped to [0,1]. Empty input returns 0.
func (s *Scorer) Score(signals map[domain.Timeframe]float64, squeezeDuration int) float64 {
	if len(signals) == 0 {
		return 0.0
	}

	boost := 1.0
	if squeezeDuration > 0 {
		boost = math.Min(1.0+durationBoostStep*float64(squeezeDuration), maxDurationBoost)
	}

	total := 0.0
	for tf, value := range signals {
		weight, ok := s.weights[tf]
		if !ok {
			continue
		}

		contribution := weight * clamp01(value)
		if weight >= s.medianWeight {
			contribution *= boost
		}
		total += contribution
	}

	return clamp01(total)
}

// IsConfluenceMet reports whether the score clears the threshold
func (s *Scorer) IsConfluenceMet(score, threshold float64) bool {
	return score >= threshold
}

func medianOf(weights map[domain.Timeframe]float64) float64 {
	values := make([]float64, 0, len(weights))
	for _, w := range weights {
		values = append(values, w)
	}
	sort.Float64s(values)

	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
