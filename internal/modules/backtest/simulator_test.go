package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frictionlessConfig() SimulatorConfig {
	return SimulatorConfig{
		InitialCapital:  100_000,
		PositionSizePct: 0.10,
		CommissionRate:  0,
		SlippageRate:    0,
	}
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func series(closes ...float64) []PricePoint {
	points := make([]PricePoint, 0, len(closes))
	for i, c := range closes {
		points = append(points, PricePoint{Date: day(i + 1), Close: c})
	}
	return points
}

func TestSimulateTradesFIFOMatching(t *testing.T) {
	sim := NewSimulator(frictionlessConfig(), zerolog.Nop())

	signals := []Signal{
		{Date: day(1), Symbol: "AAPL", Strategy: "momentum", Side: SideBuy},
		{Date: day(2), Symbol: "AAPL", Strategy: "breakout", Side: SideBuy},
		{Date: day(3), Symbol: "AAPL", Strategy: "momentum", Side: SideSell},
	}
	prices := map[string][]PricePoint{
		"AAPL": series(100, 110, 120, 130),
	}

	trades := sim.SimulateTrades(signals, prices)
	require.Len(t, trades, 2)

	// The sell closes the oldest lot, the horizon closes the rest
	first := trades[0]
	assert.Equal(t, 100.0, first.EntryPrice)
	assert.Equal(t, "momentum", first.Strategy)
	assert.InDelta(t, 2000.0, first.PnL, 1e-9) // 100 shares, 100 -> 120
	assert.True(t, first.Win)

	second := trades[1]
	assert.Equal(t, 110.0, second.EntryPrice)
	assert.Equal(t, "breakout", second.Strategy)
	assert.Equal(t, day(4), second.ExitDate)
	assert.InDelta(t, 0.10*100_000/110*(130-110), second.PnL, 1e-9)
}

func TestSimulateTradesSkipsUnmatchedSignals(t *testing.T) {
	sim := NewSimulator(frictionlessConfig(), zerolog.Nop())

	signals := []Signal{
		{Date: day(9), Symbol: "AAPL", Strategy: "momentum", Side: SideBuy}, // no bar for this date
		{Date: day(1), Symbol: "AAPL", Strategy: "momentum", Side: SideSell}, // nothing open yet
		{Date: day(1), Symbol: "MSFT", Strategy: "momentum", Side: SideBuy}, // no price series at all
	}
	prices := map[string][]PricePoint{
		"AAPL": series(100, 105),
	}

	trades := sim.SimulateTrades(signals, prices)
	assert.Empty(t, trades)
}

func TestSimulateTradesCostsReduceProfit(t *testing.T) {
	cfg := frictionlessConfig()
	cfg.CommissionRate = 0.001
	cfg.SlippageRate = 0.0005
	sim := NewSimulator(cfg, zerolog.Nop())

	signals := []Signal{
		{Date: day(1), Symbol: "AAPL", Strategy: "momentum", Side: SideBuy},
		{Date: day(2), Symbol: "AAPL", Strategy: "momentum", Side: SideSell},
	}
	prices := map[string][]PricePoint{"AAPL": series(100, 110)}

	trades := sim.SimulateTrades(signals, prices)
	require.Len(t, trades, 1)

	frictionless := NewSimulator(frictionlessConfig(), zerolog.Nop()).SimulateTrades(signals, prices)
	require.Len(t, frictionless, 1)

	assert.Less(t, trades[0].PnL, frictionless[0].PnL)
	assert.Greater(t, trades[0].EntryPrice, 100.0)
	assert.Less(t, trades[0].ExitPrice, 110.0)
}

func TestCalculateMetricsRejectsEmptyTradeSet(t *testing.T) {
	_, err := CalculateMetrics(nil, 100_000)
	assert.ErrorIs(t, err, ErrNoTrades)
}

func TestCalculateMetrics(t *testing.T) {
	trades := []Trade{
		{EntryDate: day(1), ExitDate: day(2), PnL: 1000, PnLPct: 10, HoldingDays: 1, Win: true},
		{EntryDate: day(2), ExitDate: day(3), PnL: 500, PnLPct: 5, HoldingDays: 1, Win: true},
		{EntryDate: day(3), ExitDate: day(5), PnL: -300, PnLPct: -3, HoldingDays: 2, Win: false},
		{EntryDate: day(5), ExitDate: day(6), PnL: -200, PnLPct: -2, HoldingDays: 1, Win: false},
	}

	m, err := CalculateMetrics(trades, 100_000)
	require.NoError(t, err)

	assert.Equal(t, 4, m.TotalTrades)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 2, m.LosingTrades)
	assert.InDelta(t, 0.5, m.WinRate, 1e-9)
	assert.InDelta(t, 750.0, m.AvgWin, 1e-9)
	assert.InDelta(t, -250.0, m.AvgLoss, 1e-9)
	assert.InDelta(t, 3.0, m.ProfitFactor, 1e-9) // 1500 gained vs 500 lost
	assert.Equal(t, 2, m.MaxConsecutiveWins)
	assert.Equal(t, 2, m.MaxConsecutiveLosses)
	assert.InDelta(t, 1.25, m.AvgHoldingDays, 1e-9)
	assert.InDelta(t, 1000.0, m.TotalPnL, 1e-9)
	assert.InDelta(t, 1.0, m.TotalReturnPct, 1e-9)
}

// Pins the risk-adjusted ratio math against hand-computed values so the
// annualization constants cannot drift silently.
func TestCalculateMetricsRiskAdjustedRatios(t *testing.T) {
	trades := []Trade{
		{EntryDate: day(1), ExitDate: day(2), PnL: 1000, PnLPct: 10, HoldingDays: 1, Win: true},
		{EntryDate: day(2), ExitDate: day(3), PnL: 500, PnLPct: 5, HoldingDays: 1, Win: true},
		{EntryDate: day(3), ExitDate: day(5), PnL: -300, PnLPct: -3, HoldingDays: 2, Win: false},
		{EntryDate: day(5), ExitDate: day(6), PnL: -200, PnLPct: -2, HoldingDays: 1, Win: false},
	}

	m, err := CalculateMetrics(trades, 100_000)
	require.NoError(t, err)

	// Per-trade returns are 0.10, 0.05, -0.03, -0.02: mean 0.025,
	// sample variance 0.0113/3. Annualized with sqrt(252).
	require.NotNil(t, m.Sharpe)
	wantSharpe := 0.025 / math.Sqrt(0.0113/3) * math.Sqrt(252)
	assert.InDelta(t, wantSharpe, *m.Sharpe, 1e-9)

	// Downside deviation over the two returns below the zero MAR:
	// sqrt((0.03^2 + 0.02^2) / 2).
	require.NotNil(t, m.Sortino)
	wantSortino := 0.025 / math.Sqrt(0.0013/2) * math.Sqrt(252)
	assert.InDelta(t, wantSortino, *m.Sortino, 1e-9)

	// Equity curve peaks at 101500 after trade two and ends at 101000,
	// so both the max and the current drawdown are 500/101500 and the
	// tail spends two trades under water.
	assert.InDelta(t, 500.0/101_500.0, m.MaxDrawdown, 1e-9)
	assert.InDelta(t, 500.0/101_500.0, m.CurrentDrawdown, 1e-9)
	assert.Equal(t, 2, m.PeriodsInDrawdown)

	// 1% total return compounded over the five-day span, divided by
	// the max drawdown.
	require.NotNil(t, m.Calmar)
	wantCalmar := (math.Pow(1.01, 365.0/5.0) - 1) / (500.0 / 101_500.0)
	assert.InDelta(t, wantCalmar, *m.Calmar, 1e-9)
}

func TestCalculateMetricsProfitFactorWithoutLosses(t *testing.T) {
	trades := []Trade{
		{EntryDate: day(1), ExitDate: day(2), PnL: 100, PnLPct: 1, Win: true},
		{EntryDate: day(2), ExitDate: day(3), PnL: 200, PnLPct: 2, Win: true},
	}

	m, err := CalculateMetrics(trades, 100_000)
	require.NoError(t, err)
	assert.True(t, math.IsInf(m.ProfitFactor, 1))
}

func TestGenerateEquityCurve(t *testing.T) {
	trades := []Trade{
		{PnL: 1000},
		{PnL: -400},
	}

	curve := GenerateEquityCurve(trades, 100_000)
	assert.Equal(t, []float64{100_000, 101_000, 100_600}, curve)

	dd := GenerateDrawdownSeries(curve)
	assert.Equal(t, []float64{0, 0, 400}, dd)
}
