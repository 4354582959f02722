package risk

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SummaryRepository is the sqlite-backed daily summary archive
type SummaryRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSummaryRepository creates a new daily summary repository
func NewSummaryRepository(db *sql.DB, log zerolog.Logger) *SummaryRepository {
	return &SummaryRepository{
		db:  db,
		log: log.With().Str("repo", "daily_summary").Logger(),
	}
}

// Archive stores one completed trading day. Re-archiving the same day
// replaces the earlier row.
func (r *SummaryRepository) Archive(summary DailySummary) error {
	query := `
		INSERT INTO daily_summaries (day, realized_pnl, trades, end_capital, peak_capital, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			realized_pnl = excluded.realized_pnl,
			trades = excluded.trades,
			end_capital = excluded.end_capital,
			peak_capital = excluded.peak_capital
	`

	_, err := r.db.Exec(query,
		summary.Day,
		summary.RealizedPnL,
		summary.Trades,
		summary.EndCapital,
		summary.PeakCapital,
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to archive daily summary: %w", err)
	}

	r.log.Debug().Str("day", summary.Day).Float64("pnl", summary.RealizedPnL).Msg("Daily summary archived")
	return nil
}

// Recent returns the most recent archived days, newest first
func (r *SummaryRepository) Recent(limit int) ([]DailySummary, error) {
	query := `
		SELECT day, realized_pnl, trades, end_capital, peak_capital
		FROM daily_summaries
		ORDER BY day DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily summaries: %w", err)
	}
	defer rows.Close()

	var summaries []DailySummary
	for rows.Next() {
		var s DailySummary
		if err := rows.Scan(&s.Day, &s.RealizedPnL, &s.Trades, &s.EndCapital, &s.PeakCapital); err != nil {
			return nil, fmt.Errorf("failed to scan daily summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
