package risk

// State is the day-scoped capital ledger. It is owned exclusively by the
// Manager; other components only ever see copies.
type State struct {
	CurrentCapital    float64 `json:"current_capital"`
	PeakCapital       float64 `json:"peak_capital"`
	DailyRealizedPnL  float64 `json:"daily_realized_pnl"`
	TradesToday       int     `json:"trades_today"`
	ConsecutiveLosses int     `json:"consecutive_losses"`
	Date              string  `json:"date"` // YYYY-MM-DD
}

// Limits holds the hard capital-preservation limits
type Limits struct {
	RiskPerTradePct      float64 // % of capital risked per trade
	DailyMaxLossPct      float64 // daily loss limit as % of capital
	MaxDrawdownPct       float64 // max drawdown from peak as %
	MaxTradesPerDay      int
	MaxConsecutiveLosses int
}

// DefaultLimits returns conservative stock limits
func DefaultLimits() Limits {
	return Limits{
		RiskPerTradePct:      1.0,
		DailyMaxLossPct:      2.0,
		MaxDrawdownPct:       10.0,
		MaxTradesPerDay:      10,
		MaxConsecutiveLosses: 3,
	}
}

// DailySummary is the archived ledger of one completed trading day
type DailySummary struct {
	Day         string  `json:"day"`
	RealizedPnL float64 `json:"realized_pnl"`
	Trades      int     `json:"trades"`
	EndCapital  float64 `json:"end_capital"`
	PeakCapital float64 `json:"peak_capital"`
}

// SummaryStore archives completed trading days
type SummaryStore interface {
	Archive(summary DailySummary) error
}

// SummaryReader lists archived trading days
type SummaryReader interface {
	Recent(limit int) ([]DailySummary, error)
}
