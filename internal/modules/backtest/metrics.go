package backtest

import (
	"math"

	"github.com/aristath/signal-arbiter/pkg/formulas"
)

// CalculateMetrics derives the aggregate performance of a trade set.
// An empty input returns ErrNoTrades.
func CalculateMetrics(trades []Trade, initialCapital float64) (Metrics, error) {
	if len(trades) == 0 {
		return Metrics{}, ErrNoTrades
	}

	var (
		grossGain, grossLoss float64
		totalPnL             float64
		totalHoldingDays     int
		wins, losses         int
		curWinStreak         int
		curLossStreak        int
		maxWinStreak         int
		maxLossStreak        int
	)

	returns := make([]float64, 0, len(trades))

	for _, t := range trades {
		totalPnL += t.PnL
		totalHoldingDays += t.HoldingDays
		returns = append(returns, t.PnLPct/100)

		if t.Win {
			wins++
			grossGain += t.PnL
			curWinStreak++
			curLossStreak = 0
			if curWinStreak > maxWinStreak {
				maxWinStreak = curWinStreak
			}
		} else {
			losses++
			grossLoss += -t.PnL
			curLossStreak++
			curWinStreak = 0
			if curLossStreak > maxLossStreak {
				maxLossStreak = curLossStreak
			}
		}
	}

	m := Metrics{
		TotalTrades:          len(trades),
		WinningTrades:        wins,
		LosingTrades:         losses,
		WinRate:              float64(wins) / float64(len(trades)),
		MaxConsecutiveWins:   maxWinStreak,
		MaxConsecutiveLosses: maxLossStreak,
		AvgHoldingDays:       float64(totalHoldingDays) / float64(len(trades)),
		TotalPnL:             totalPnL,
	}

	if wins > 0 {
		m.AvgWin = grossGain / float64(wins)
	}
	if losses > 0 {
		m.AvgLoss = -grossLoss / float64(losses)
	}

	if grossLoss > 0 {
		m.ProfitFactor = grossGain / grossLoss
	} else if grossGain > 0 {
		m.ProfitFactor = math.Inf(1)
	}

	if initialCapital > 0 {
		m.TotalReturnPct = totalPnL / initialCapital * 100
	}

	// Risk-adjusted ratios over the per-trade return distribution
	m.Sharpe = formulas.CalculateSharpeRatio(returns, 0, 252)
	m.Sortino = formulas.CalculateSortinoRatio(returns, 0, 0, 252)

	curve := GenerateEquityCurve(trades, initialCapital)
	if dd := formulas.CalculateDrawdownMetrics(curve); dd != nil {
		m.MaxDrawdown = dd.MaxDrawdown
		m.CurrentDrawdown = dd.CurrentDrawdown
		m.PeriodsInDrawdown = dd.PeriodsInDD
	}
	m.Calmar = calmarFromTrades(trades, initialCapital, totalPnL, m.MaxDrawdown)

	return m, nil
}

// GenerateEquityCurve returns the cumulative capital sequence starting
// from the initial capital. Its length is always trade count + 1.
func GenerateEquityCurve(trades []Trade, initialCapital float64) []float64 {
	curve := make([]float64, 0, len(trades)+1)
	curve = append(curve, initialCapital)

	capital := initialCapital
	for _, t := range trades {
		capital += t.PnL
		curve = append(curve, capital)
	}

	return curve
}

// GenerateDrawdownSeries returns the running-peak-minus-current value at
// each point of an equity curve. Every element is non-negative.
func GenerateDrawdownSeries(curve []float64) []float64 {
	return formulas.DrawdownSeries(curve)
}

// calmarFromTrades annualizes the total return over the traded span and
// divides by the max drawdown
func calmarFromTrades(trades []Trade, initialCapital, totalPnL, maxDrawdown float64) *float64 {
	if initialCapital <= 0 || maxDrawdown <= 0 {
		return nil
	}

	first := trades[0].EntryDate
	last := trades[len(trades)-1].ExitDate
	days := last.Sub(first).Hours() / 24
	if days < 1 {
		days = 1
	}

	totalReturn := totalPnL / initialCapital
	annualized := math.Pow(1+totalReturn, 365/days) - 1

	return formulas.CalculateCalmarRatio(annualized, maxDrawdown)
}
