package backtest

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/signal-arbiter/internal/database/repositories"
)

// Repository records backtest run summaries in sqlite
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new backtest repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "backtest").Logger(),
	}
}

// RecordRun stores the run summary row pointing at its JSON snapshot
func (r *Repository) RecordRun(result *Result, resultPath string) error {
	query := `
		INSERT INTO backtest_runs
		(id, strategy_id, symbols, total_trades, win_rate, profit_factor,
		 max_drawdown, sharpe, result_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		result.ID,
		result.StrategyID,
		strings.Join(result.Symbols, ","),
		result.Metrics.TotalTrades,
		result.Metrics.WinRate,
		result.Metrics.ProfitFactor,
		result.Metrics.MaxDrawdown,
		repositories.FloatOrNull(result.Metrics.Sharpe),
		resultPath,
		result.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record backtest run: %w", err)
	}

	r.log.Debug().Str("run_id", result.ID).Str("strategy", result.StrategyID).Msg("Backtest run recorded")
	return nil
}

// RunSummary is one stored run row
type RunSummary struct {
	ID           string    `json:"id"`
	StrategyID   string    `json:"strategy_id"`
	Symbols      []string  `json:"symbols"`
	TotalTrades  int       `json:"total_trades"`
	WinRate      float64   `json:"win_rate"`
	ProfitFactor float64   `json:"profit_factor"`
	MaxDrawdown  float64   `json:"max_drawdown"`
	Sharpe       *float64  `json:"sharpe,omitempty"`
	ResultPath   string    `json:"result_path"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecentRuns returns the newest stored runs, most recent first
func (r *Repository) RecentRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, strategy_id, symbols, total_trades, win_rate, profit_factor,
		       max_drawdown, sharpe, result_path, created_at
		FROM backtest_runs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var symbols, createdAt string
		var sharpe sql.NullFloat64

		if err := rows.Scan(
			&run.ID,
			&run.StrategyID,
			&symbols,
			&run.TotalTrades,
			&run.WinRate,
			&run.ProfitFactor,
			&run.MaxDrawdown,
			&sharpe,
			&run.ResultPath,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan backtest run: %w", err)
		}

		if symbols != "" {
			run.Symbols = strings.Split(symbols, ",")
		}
		run.Sharpe = repositories.NullFloat(sharpe)
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			run.CreatedAt = t
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}
