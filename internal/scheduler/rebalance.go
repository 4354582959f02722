package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/signal-arbiter/internal/domain"
	"github.com/aristath/signal-arbiter/internal/modules/adaptive"
)

// RebalanceJob re-derives strategy weights from recorded performance.
// The regime source supplies the market condition at run time so the
// weights get the per-regime suitability adjustment.
type RebalanceJob struct {
	log     zerolog.Logger
	manager *adaptive.Manager
	regime  func() domain.MarketRegime
}

// NewRebalanceJob creates a new rebalance job. A nil regime source
// defaults to SIDEWAYS.
func NewRebalanceJob(manager *adaptive.Manager, regime func() domain.MarketRegime, log zerolog.Logger) *RebalanceJob {
	if regime == nil {
		regime = func() domain.MarketRegime { return domain.RegimeSideways }
	}
	return &RebalanceJob{
		log:     log.With().Str("job", "rebalance").Logger(),
		manager: manager,
		regime:  regime,
	}
}

// Name returns the job name
func (j *RebalanceJob) Name() string {
	return "rebalance"
}

// Run executes one rebalance attempt
func (j *RebalanceJob) Run() error {
	regime := j.regime()
	committed, _, reason := j.manager.Rebalance(regime, false)

	j.log.Info().
		Str("regime", string(regime)).
		Bool("committed", committed).
		Str("reason", reason).
		Msg("Rebalance attempt finished")

	return nil
}
