package backtest

import (
	"errors"
	"time"
)

// ErrNoTrades is returned when metrics or results are requested over an
// empty trade set. Silently returning zero-valued metrics would be
// misleading for validation, so the empty case fails loudly.
var ErrNoTrades = errors.New("backtest produced no trades")

// Side is a signal direction
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Signal is one historical strategy signal to replay
type Signal struct {
	Date     time.Time `json:"date"`
	Symbol   string    `json:"symbol"`
	Strategy string    `json:"strategy"`
	Side     Side      `json:"side"`
}

// PricePoint is one bar of historical price data
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Trade is one simulated round-trip
type Trade struct {
	Symbol      string    `json:"symbol"`
	Strategy    string    `json:"strategy"`
	EntryDate   time.Time `json:"entry_date"`
	ExitDate    time.Time `json:"exit_date"`
	EntryPrice  float64   `json:"entry_price"`
	ExitPrice   float64   `json:"exit_price"`
	Shares      float64   `json:"shares"`
	PnL         float64   `json:"pnl"`
	PnLPct      float64   `json:"pnl_pct"`
	HoldingDays int       `json:"holding_days"`
	Win         bool      `json:"win"`
}

// Metrics is the aggregate performance of a trade set. Derived once,
// never mutated afterwards.
type Metrics struct {
	TotalTrades          int      `json:"total_trades"`
	WinningTrades        int      `json:"winning_trades"`
	LosingTrades         int      `json:"losing_trades"`
	WinRate              float64  `json:"win_rate"` // 0-1
	AvgWin               float64  `json:"avg_win"`
	AvgLoss              float64  `json:"avg_loss"` // negative
	ProfitFactor         float64  `json:"profit_factor"`
	Sharpe               *float64 `json:"sharpe,omitempty"`
	Sortino              *float64 `json:"sortino,omitempty"`
	Calmar               *float64 `json:"calmar,omitempty"`
	MaxDrawdown          float64  `json:"max_drawdown"`      // 0-1, from the equity curve
	CurrentDrawdown      float64  `json:"current_drawdown"`  // 0-1, final point vs peak
	PeriodsInDrawdown    int      `json:"periods_in_drawdown"`
	MaxConsecutiveWins   int      `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int      `json:"max_consecutive_losses"`
	AvgHoldingDays       float64  `json:"avg_holding_days"`
	TotalPnL             float64  `json:"total_pnl"`
	TotalReturnPct       float64  `json:"total_return_pct"`
}

// Result is one immutable backtest run record
type Result struct {
	ID             string    `json:"id"`
	StrategyID     string    `json:"strategy_id"`
	Symbols        []string  `json:"symbols"`
	InitialCapital float64   `json:"initial_capital"`
	FinalCapital   float64   `json:"final_capital"`
	Metrics        Metrics   `json:"metrics"`
	Trades         []Trade   `json:"trades"`
	EquityCurve    []float64 `json:"equity_curve"`
	DrawdownSeries []float64 `json:"drawdown_series"`
	CreatedAt      time.Time `json:"created_at"`
}

// ComparisonRow is one line of a cross-strategy ranking table
type ComparisonRow struct {
	Rank         int     `json:"rank"`
	StrategyID   string  `json:"strategy_id"`
	TotalTrades  int     `json:"total_trades"`
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	TotalReturn  float64 `json:"total_return_pct"`
	MaxDrawdown  float64 `json:"max_drawdown"`
}
