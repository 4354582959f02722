package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/signal-arbiter/internal/modules/risk"
)

// RolloverJob touches the risk ledger so the day boundary is processed
// promptly. The ledger rolls on the first call of a new calendar day;
// without this job an idle system would archive yesterday's summary
// only when the next trade arrives.
type RolloverJob struct {
	log     zerolog.Logger
	manager *risk.Manager
}

// NewRolloverJob creates a new rollover job
func NewRolloverJob(manager *risk.Manager, log zerolog.Logger) *RolloverJob {
	return &RolloverJob{
		log:     log.With().Str("job", "rollover").Logger(),
		manager: manager,
	}
}

// Name returns the job name
func (j *RolloverJob) Name() string {
	return "rollover"
}

// Run checks the day boundary
func (j *RolloverJob) Run() error {
	state := j.manager.Snapshot()
	j.log.Debug().Str("day", state.Date).Msg("Ledger day checked")
	return nil
}
