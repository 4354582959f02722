package adaptive

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/signal-arbiter/internal/domain"
	"github.com/aristath/signal-arbiter/internal/events"
	"github.com/aristath/signal-arbiter/internal/modules/consensus"
	"github.com/aristath/signal-arbiter/internal/modules/performance"
	"github.com/aristath/signal-arbiter/internal/modules/regime"
	"github.com/aristath/signal-arbiter/pkg/formulas"
)

// coldStartWeight is the raw weight for a strategy without history
const coldStartWeight = 0.5

// Config holds the rebalancing policy
type Config struct {
	// DriftThreshold is the max absolute per-strategy weight delta a
	// non-forced rebalance tolerates before committing
	DriftThreshold float64

	// MinInterval is the minimum time between non-forced rebalances;
	// once elapsed a rebalance commits even below the drift threshold
	MinInterval time.Duration

	// LookbackDays selects the performance window
	LookbackDays int
}

// DefaultConfig returns the documented defaults: 5% drift, 24h interval,
// 30-day lookback
func DefaultConfig() Config {
	return Config{
		DriftThreshold: 0.05,
		MinInterval:    24 * time.Hour,
		LookbackDays:   30,
	}
}

// Manager re-tunes strategy trust over time. It is the single
// steady-state writer of the weight store; every committed rebalance is
// recorded in an append-only history.
type Manager struct {
	cfg         Config
	store       *consensus.WeightStore
	performance performance.Store
	history     HistoryStore
	events      *events.Manager
	log         zerolog.Logger

	mu            sync.Mutex
	lastRebalance time.Time
	now           func() time.Time
}

// NewManager creates an adaptive weight manager
func NewManager(cfg Config, store *consensus.WeightStore, perf performance.Store, history HistoryStore, ev *events.Manager, log zerolog.Logger) *Manager {
	return &Manager{
		cfg:         cfg,
		store:       store,
		performance: perf,
		history:     history,
		events:      ev,
		log:         log.With().Str("component", "adaptive").Logger(),
		now:         time.Now,
	}
}

// PerformanceBasedWeights derives weights from each strategy's win rate
// (precision when no win rate is recorded). Strategies without any
// history get the cold-start default before normalization, so the result
// always covers the full requested set.
func (m *Manager) PerformanceBasedWeights(strategies []string) map[string]float64 {
	raw := make(map[string]float64, len(strategies))
	for _, strategy := range strategies {
		raw[strategy] = m.rawWeight(strategy)
	}
	return formulas.NormalizeWeights(raw)
}

// RegimeAdjustedWeights scales performance weights by each strategy's
// suitability for the given regime, then renormalizes.
func (m *Manager) RegimeAdjustedWeights(r domain.MarketRegime) map[string]float64 {
	strategies := m.store.Strategies()

	raw := make(map[string]float64, len(strategies))
	for _, strategy := range strategies {
		raw[strategy] = m.rawWeight(strategy) * regime.Suitability(strategy, r)
	}
	return formulas.NormalizeWeights(raw)
}

// Rebalance computes a regime-adjusted weight set and commits it to the
// weight store when warranted.
//
// Without force, the candidate only commits when it drifts beyond the
// configured threshold from the current weights or the minimum interval
// since the last rebalance has elapsed; otherwise it is a no-op.
func (m *Manager) Rebalance(r domain.MarketRegime, force bool) (bool, map[string]float64, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.store.Snapshot()
	candidate := m.RegimeAdjustedWeights(r)

	drift := maxWeightDelta(current, candidate)
	elapsed := m.now().Sub(m.lastRebalance)

	var reason string
	switch {
	case force:
		reason = "forced rebalance"
	case drift > m.cfg.DriftThreshold:
		reason = fmt.Sprintf("weight drift %.4f exceeds threshold %.4f", drift, m.cfg.DriftThreshold)
	case !m.lastRebalance.IsZero() && elapsed >= m.cfg.MinInterval:
		reason = fmt.Sprintf("min interval %s elapsed", m.cfg.MinInterval)
	case m.lastRebalance.IsZero():
		reason = "initial rebalance"
	default:
		m.log.Debug().
			Float64("drift", drift).
			Dur("since_last", elapsed).
			Msg("Rebalance skipped")
		if m.events != nil {
			m.events.Emit(events.RebalanceSkipped, "adaptive", map[string]interface{}{
				"regime": string(r),
				"drift":  drift,
			})
		}
		return false, current, fmt.Sprintf("drift %.4f within threshold, interval not elapsed", drift)
	}

	if err := m.store.Replace(candidate); err != nil {
		m.log.Error().Err(err).Msg("Rebalance commit rejected")
		return false, current, fmt.Sprintf("commit rejected: %v", err)
	}

	committedAt := m.now()
	m.lastRebalance = committedAt

	rec := RebalanceRecord{
		Timestamp:  committedAt,
		Regime:     string(r),
		OldWeights: current,
		NewWeights: candidate,
		Reason:     reason,
	}
	if err := m.history.Append(rec); err != nil {
		// The commit already happened; a history write failure is logged,
		// not rolled back
		m.log.Error().Err(err).Msg("Failed to append rebalance history")
	}

	if m.events != nil {
		m.events.Emit(events.RebalanceCommitted, "adaptive", map[string]interface{}{
			"regime": string(r),
			"reason": reason,
		})
	}

	m.log.Info().
		Str("regime", string(r)).
		Str("reason", reason).
		Float64("drift", drift).
		Msg("Weights rebalanced")

	return true, candidate, reason
}

// History returns the committed rebalances in chronological order
func (m *Manager) History() ([]RebalanceRecord, error) {
	return m.history.List()
}

func (m *Manager) rawWeight(strategy string) float64 {
	rec, err := m.performance.Latest(strategy, m.cfg.LookbackDays)
	if err != nil {
		m.log.Warn().Err(err).Str("strategy", strategy).
			Msg("Performance read failed, using cold-start weight")
		return coldStartWeight
	}
	if rec == nil {
		return coldStartWeight
	}
	if rec.WinRate > 0 {
		return rec.WinRate
	}
	return rec.Precision
}

func maxWeightDelta(a, b map[string]float64) float64 {
	maxDelta := 0.0
	for k, av := range a {
		maxDelta = math.Max(maxDelta, math.Abs(av-b[k]))
	}
	for k, bv := range b {
		if _, ok := a[k]; !ok {
			maxDelta = math.Max(maxDelta, math.Abs(bv))
		}
	}
	return maxDelta
}
