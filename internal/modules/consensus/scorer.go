package consensus

import (
	"github.com/rs/zerolog"

	"github.com/aristath/signal-arbiter/internal/domain"
	"github.com/aristath/signal-arbiter/internal/modules/performance"
	"github.com/aristath/signal-arbiter/internal/modules/regime"
	"github.com/aristath/signal-arbiter/pkg/formulas"
)

// coldStartWeight is the raw weight for a strategy without performance
// history
const coldStartWeight = 0.5

// defaultLookbackDays is the performance window consulted for weights
const defaultLookbackDays = 30

// Scorer blends per-strategy signal strengths into one agreement score,
// weighted by each strategy's historical reliability.
type Scorer struct {
	store        *WeightStore
	performance  performance.Store
	lookbackDays int
	log          zerolog.Logger
}

// NewScorer creates a consensus scorer over the given weight store
func NewScorer(store *WeightStore, perf performance.Store, log zerolog.Logger) *Scorer {
	return &Scorer{
		store:        store,
		performance:  perf,
		lookbackDays: defaultLookbackDays,
		log:          log.With().Str("component", "consensus").Logger(),
	}
}

// Score computes the consensus value for the supplied signals.
//
// The value is N · Σ(weight_i · signal_i) where N is the active strategy
// count: full agreement across N strategies approaches N, so a threshold
// of 2.0 separates "both strategies agree strongly" from "only one does"
// in a two-strategy set. The result is deliberately unbounded.
func (s *Scorer) Score(signals map[string]float64) float64 {
	if len(signals) == 0 {
		return 0.0
	}

	weights := s.store.Snapshot()
	n := float64(len(weights))
	if n == 0 {
		return 0.0
	}

	weighted := 0.0
	for strategy, strength := range signals {
		weighted += weights[strategy] * strength
	}

	return n * weighted
}

// IsConsensusReached reports whether the score clears the threshold
func (s *Scorer) IsConsensusReached(score, threshold float64) bool {
	return score >= threshold
}

// RecomputeWeights re-derives weights from the performance store and
// commits them. Each strategy's raw weight is its latest precision; a
// strategy without history gets the cold-start default. A store read
// failure also degrades to the cold-start default so the pipeline stays
// live.
func (s *Scorer) RecomputeWeights() error {
	raw := s.rawPerformanceWeights(s.store.Strategies())
	return s.store.Replace(formulas.NormalizeWeights(raw))
}

// RecomputeWeightsForRegime re-derives performance weights, scales each
// by the strategy's suitability for the given regime, renormalizes and
// commits.
func (s *Scorer) RecomputeWeightsForRegime(r domain.MarketRegime) error {
	raw := s.rawPerformanceWeights(s.store.Strategies())
	for strategy := range raw {
		raw[strategy] *= regime.Suitability(strategy, r)
	}
	return s.store.Replace(formulas.NormalizeWeights(raw))
}

func (s *Scorer) rawPerformanceWeights(strategies []string) map[string]float64 {
	raw := make(map[string]float64, len(strategies))
	for _, strategy := range strategies {
		rec, err := s.performance.Latest(strategy, s.lookbackDays)
		if err != nil {
			s.log.Warn().Err(err).Str("strategy", strategy).
				Msg("Performance read failed, using cold-start weight")
			raw[strategy] = coldStartWeight
			continue
		}
		if rec == nil {
			raw[strategy] = coldStartWeight
			continue
		}
		raw[strategy] = rec.Precision
	}
	return raw
}
