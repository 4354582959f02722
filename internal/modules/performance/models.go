package performance

import "time"

// Record represents historical accuracy for one strategy over a lookback
// window. Records are written by the backtest validator or a live-trade
// outcome recorder; scorers only read them.
type Record struct {
	StrategyID        string    `json:"strategy_id"`
	LookbackDays      int       `json:"lookback_days"`
	Precision         float64   `json:"precision"`
	Recall            float64   `json:"recall"`
	F1                float64   `json:"f1"`
	WinRate           float64   `json:"win_rate"`
	Sharpe            *float64  `json:"sharpe,omitempty"`
	TotalSignals      int       `json:"total_signals"`
	SuccessfulSignals int       `json:"successful_signals"`
	CreatedAt         time.Time `json:"created_at"`
}

// Store reads and writes strategy performance records
type Store interface {
	// Latest returns the newest record for the strategy and lookback
	// window, or nil when none exists.
	Latest(strategyID string, lookbackDays int) (*Record, error)

	// Upsert inserts or replaces the record for its (strategy, lookback) key
	Upsert(rec Record) error
}
