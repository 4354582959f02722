package adaptive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// HistoryRepository is the sqlite-backed append-only rebalance history
type HistoryRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, log zerolog.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:  db,
		log: log.With().Str("repo", "rebalance_history").Logger(),
	}
}

// Append stores a committed rebalance record
func (r *HistoryRepository) Append(rec RebalanceRecord) error {
	oldJSON, err := json.Marshal(rec.OldWeights)
	if err != nil {
		return fmt.Errorf("failed to encode old weights: %w", err)
	}
	newJSON, err := json.Marshal(rec.NewWeights)
	if err != nil {
		return fmt.Errorf("failed to encode new weights: %w", err)
	}

	query := `
		INSERT INTO rebalance_history (rebalanced_at, regime, old_weights, new_weights, reason)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		rec.Timestamp.Format(time.RFC3339Nano),
		rec.Regime,
		string(oldJSON),
		string(newJSON),
		rec.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to append rebalance record: %w", err)
	}

	r.log.Debug().Str("regime", rec.Regime).Str("reason", rec.Reason).Msg("Rebalance recorded")
	return nil
}

// List returns all records in chronological order
func (r *HistoryRepository) List() ([]RebalanceRecord, error) {
	query := `
		SELECT rebalanced_at, regime, old_weights, new_weights, reason
		FROM rebalance_history
		ORDER BY rebalanced_at ASC, id ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load rebalance history: %w", err)
	}
	defer rows.Close()

	var records []RebalanceRecord
	for rows.Next() {
		var rec RebalanceRecord
		var rebalancedAt, oldJSON, newJSON string

		if err := rows.Scan(&rebalancedAt, &rec.Regime, &oldJSON, &newJSON, &rec.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan rebalance record: %w", err)
		}

		if t, err := time.Parse(time.RFC3339Nano, rebalancedAt); err == nil {
			rec.Timestamp = t
		}
		if err := json.Unmarshal([]byte(oldJSON), &rec.OldWeights); err != nil {
			return nil, fmt.Errorf("failed to decode old weights: %w", err)
		}
		if err := json.Unmarshal([]byte(newJSON), &rec.NewWeights); err != nil {
			return nil, fmt.Errorf("failed to decode new weights: %w", err)
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}
