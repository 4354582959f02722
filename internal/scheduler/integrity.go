package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/signal-arbiter/internal/database"
)

// IntegrityJob runs a sqlite integrity check against the operational
// database. Corruption surfaces as an error; the system keeps serving
// from the live connection either way.
type IntegrityJob struct {
	log zerolog.Logger
	db  *database.DB
}

// NewIntegrityJob creates a new integrity check job
func NewIntegrityJob(db *database.DB, log zerolog.Logger) *IntegrityJob {
	return &IntegrityJob{
		log: log.With().Str("job", "integrity_check").Logger(),
		db:  db,
	}
}

// Name returns the job name
func (j *IntegrityJob) Name() string {
	return "integrity_check"
}

// Run executes the integrity check
func (j *IntegrityJob) Run() error {
	var result string
	if err := j.db.Conn().QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed to run: %w", err)
	}

	if result != "ok" {
		j.log.Error().Str("result", result).Msg("Database integrity check failed")
		return fmt.Errorf("database integrity check failed: %s", result)
	}

	j.log.Debug().Msg("Database integrity check passed")
	return nil
}
