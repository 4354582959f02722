package performance

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/signal-arbiter/internal/database/repositories"
)

// Repository is the sqlite-backed performance record store
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new performance repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "performance").Logger(),
	}
}

// Latest returns the newest record for the strategy and lookback window,
// or nil when no record exists.
func (r *Repository) Latest(strategyID string, lookbackDays int) (*Record, error) {
	query := `
		SELECT strategy_id, lookback_days, precision, recall, f1, win_rate,
		       sharpe, total_signals, successful_signals, created_at
		FROM performance_records
		WHERE strategy_id = ? AND lookback_days = ?
		ORDER BY created_at DESC
		LIMIT 1
	`

	var rec Record
	var sharpe sql.NullFloat64
	var createdAt string

	err := r.db.QueryRow(query, strategyID, lookbackDays).Scan(
		&rec.StrategyID,
		&rec.LookbackDays,
		&rec.Precision,
		&rec.Recall,
		&rec.F1,
		&rec.WinRate,
		&sharpe,
		&rec.TotalSignals,
		&rec.SuccessfulSignals,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load performance record: %w", err)
	}

	rec.Sharpe = repositories.NullFloat(sharpe)
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = t
	}

	return &rec, nil
}

// Upsert inserts or replaces the record for its (strategy, lookback) key
func (r *Repository) Upsert(rec Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO performance_records
		(strategy_id, lookback_days, precision, recall, f1, win_rate,
		 sharpe, total_signals, successful_signals, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(strategy_id, lookback_days) DO UPDATE SET
			precision = excluded.precision,
			recall = excluded.recall,
			f1 = excluded.f1,
			win_rate = excluded.win_rate,
			sharpe = excluded.sharpe,
			total_signals = excluded.total_signals,
			successful_signals = excluded.successful_signals,
			created_at = excluded.created_at
	`

	_, err := r.db.Exec(query,
		rec.StrategyID,
		rec.LookbackDays,
		rec.Precision,
		rec.Recall,
		rec.F1,
		rec.WinRate,
		repositories.FloatOrNull(rec.Sharpe),
		rec.TotalSignals,
		rec.SuccessfulSignals,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert performance record: %w", err)
	}

	r.log.Debug().
		Str("strategy", rec.StrategyID).
		Int("lookback_days", rec.LookbackDays).
		Float64("win_rate", rec.WinRate).
		Msg("Performance record stored")

	return nil
}
