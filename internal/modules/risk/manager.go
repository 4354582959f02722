package risk

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/signal-arbiter/internal/domain"
	"github.com/aristath/signal-arbiter/internal/events"
)

// notionalCapRatio caps how much of capital a single position may hold
const notionalCapRatio = 0.95

// Circuit breaker multipliers over the normal admission limits
const (
	breakerDailyLossFactor = 1.5
	breakerDrawdownFactor  = 1.2
	breakerCapitalFloor    = 0.80 // of initial capital
)

// Manager enforces hard daily/drawdown/trade-count limits and sizes
// positions against the capital ledger. It owns the day-scoped State;
// readers get immutable snapshots.
type Manager struct {
	mu             sync.Mutex
	limits         Limits
	initialCapital float64
	state          State

	dailyLoss domain.Threshold // checked against daily PnL (negative side)
	drawdown  domain.Threshold

	halted bool

	summaries SummaryStore
	events    *events.Manager
	log       zerolog.Logger
	now       func() time.Time
}

// NewManager creates a capital risk manager starting from the given capital
func NewManager(initialCapital float64, limits Limits, summaries SummaryStore, ev *events.Manager, log zerolog.Logger) *Manager {
	m := &Manager{
		limits:         limits,
		initialCapital: initialCapital,
		summaries:      summaries,
		events:         ev,
		log:            log.With().Str("component", "risk").Logger(),
		now:            time.Now,
	}

	m.dailyLoss = domain.Threshold{Name: "daily_loss_pct", Limit: limits.DailyMaxLossPct, Comparator: domain.Below}
	m.drawdown = domain.Threshold{Name: "drawdown_pct", Limit: limits.MaxDrawdownPct, Comparator: domain.Below}

	m.state = State{
		CurrentCapital: initialCapital,
		PeakCapital:    initialCapital,
		Date:           m.now().Format("2006-01-02"),
	}

	return m
}

// Snapshot returns a copy of the current ledger state
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()
	return m.state
}

// CanTrade reports whether a new trade is admissible. Conditions are
// checked in fixed priority: daily loss, drawdown, trade count, loss
// streak; the first failure supplies the reason.
func (m *Manager) CanTrade() (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()

	ok, reason := m.admissible()
	if ok {
		m.halted = false
		return true, ""
	}

	// Emit once per halt, not on every poll
	if !m.halted {
		m.halted = true
		if m.events != nil {
			m.events.Emit(events.TradingHalted, "risk", map[string]interface{}{
				"reason": reason,
			})
		}
		m.log.Warn().Str("reason", reason).Msg("Trading halted")
	}

	return false, reason
}

// admissible runs the admission checks in priority order.
// Callers must hold m.mu.
func (m *Manager) admissible() (bool, string) {
	if lossPct := m.dailyLossPct(); !m.dailyLoss.Check(lossPct) {
		return false, fmt.Sprintf("daily loss limit exceeded: %.2f%% of capital lost (limit %.2f%%)",
			lossPct, m.limits.DailyMaxLossPct)
	}

	if ddPct := m.drawdownPct(); !m.drawdown.Check(ddPct) {
		return false, fmt.Sprintf("max drawdown reached: %.2f%% from peak (limit %.2f%%)",
			ddPct, m.limits.MaxDrawdownPct)
	}

	if m.state.TradesToday >= m.limits.MaxTradesPerDay {
		return false, fmt.Sprintf("daily trade limit reached: %d trades (limit %d)",
			m.state.TradesToday, m.limits.MaxTradesPerDay)
	}

	if m.state.ConsecutiveLosses >= m.limits.MaxConsecutiveLosses {
		return false, fmt.Sprintf("consecutive loss limit reached: %d losses (limit %d)",
			m.state.ConsecutiveLosses, m.limits.MaxConsecutiveLosses)
	}

	return true, ""
}

// CalculatePositionSize sizes a trade from the stop-loss distance and the
// per-trade risk budget. Quantity is 0 with an explanatory message when
// the inputs are invalid or the reward/risk ratio is insufficient.
func (m *Manager) CalculatePositionSize(entry, stopLoss float64, takeProfit *float64, minRRRatio float64) (int64, float64, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()

	if entry <= 0 {
		return 0, 0, "entry price must be positive"
	}
	if entry <= stopLoss {
		return 0, 0, "stop loss must be below entry price"
	}

	riskPerShare := entry - stopLoss

	if takeProfit != nil {
		reward := *takeProfit - entry
		if reward <= 0 {
			return 0, 0, "take profit must be above entry price"
		}
		rr := reward / riskPerShare
		if rr < minRRRatio {
			return 0, 0, fmt.Sprintf("reward/risk %.2f below minimum %.2f", rr, minRRRatio)
		}
	}

	riskBudget := m.state.CurrentCapital * m.limits.RiskPerTradePct / 100
	quantity := int64(math.Floor(riskBudget / riskPerShare))
	if quantity <= 0 {
		return 0, 0, "risk budget too small for stop distance"
	}

	// Cap invested notional at 95% of capital
	maxNotional := m.state.CurrentCapital * notionalCapRatio
	if float64(quantity)*entry > maxNotional {
		quantity = int64(math.Floor(maxNotional / entry))
	}

	riskAmount := float64(quantity) * riskPerShare
	return quantity, riskAmount, ""
}

// UpdateTrade applies a realized trade result to the ledger
func (m *Manager) UpdateTrade(profit float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()

	m.state.CurrentCapital += profit
	m.state.DailyRealizedPnL += profit
	m.state.TradesToday++

	if m.state.CurrentCapital > m.state.PeakCapital {
		m.state.PeakCapital = m.state.CurrentCapital
	}

	if profit < 0 {
		m.state.ConsecutiveLosses++
	} else if profit > 0 {
		m.state.ConsecutiveLosses = 0
	}

	if m.events != nil {
		m.events.Emit(events.TradeRecorded, "risk", map[string]interface{}{
			"profit":  profit,
			"capital": m.state.CurrentCapital,
		})
	}

	m.log.Info().
		Float64("profit", profit).
		Float64("capital", m.state.CurrentCapital).
		Int("trades_today", m.state.TradesToday).
		Int("loss_streak", m.state.ConsecutiveLosses).
		Msg("Trade recorded")
}

// CheckCircuitBreaker checks the independent emergency stops. Any single
// trip is sufficient: daily loss beyond 1.5x the daily cap, drawdown
// beyond 1.2x the drawdown cap, or capital at/below 80% of initial.
func (m *Manager) CheckCircuitBreaker() (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()

	if lossPct := m.dailyLossPct(); lossPct >= m.limits.DailyMaxLossPct*breakerDailyLossFactor {
		return m.trip(fmt.Sprintf("daily loss %.2f%% breached %.1fx daily cap", lossPct, breakerDailyLossFactor))
	}

	if ddPct := m.drawdownPct(); ddPct >= m.limits.MaxDrawdownPct*breakerDrawdownFactor {
		return m.trip(fmt.Sprintf("drawdown %.2f%% breached %.1fx drawdown cap", ddPct, breakerDrawdownFactor))
	}

	if m.state.CurrentCapital <= m.initialCapital*breakerCapitalFloor {
		return m.trip(fmt.Sprintf("capital %.2f fell to <=%.0f%% of initial", m.state.CurrentCapital, breakerCapitalFloor*100))
	}

	return false, ""
}

func (m *Manager) trip(reason string) (bool, string) {
	if m.events != nil {
		m.events.Emit(events.CircuitBreakerTripped, "risk", map[string]interface{}{
			"reason": reason,
		})
	}
	m.log.Error().Str("reason", reason).Msg("Circuit breaker tripped")
	return true, reason
}

// dailyLossPct returns today's realized loss as a positive % of capital
func (m *Manager) dailyLossPct() float64 {
	if m.state.DailyRealizedPnL >= 0 || m.state.CurrentCapital <= 0 {
		return 0
	}
	return -m.state.DailyRealizedPnL / m.state.CurrentCapital * 100
}

// drawdownPct returns the decline from peak capital as a positive %
func (m *Manager) drawdownPct() float64 {
	if m.state.PeakCapital <= 0 {
		return 0
	}
	return (m.state.PeakCapital - m.state.CurrentCapital) / m.state.PeakCapital * 100
}

// rollover re-scopes the ledger when the calendar date has changed.
// The prior day is archived; daily counters reset; the consecutive-loss
// streak persists across the boundary (it only resets on a winning
// trade). Archive failures are logged and do not block trading.
//
// Callers must hold m.mu.
func (m *Manager) rollover() {
	today := m.now().Format("2006-01-02")
	if today == m.state.Date {
		return
	}

	if m.summaries != nil {
		summary := DailySummary{
			Day:         m.state.Date,
			RealizedPnL: m.state.DailyRealizedPnL,
			Trades:      m.state.TradesToday,
			EndCapital:  m.state.CurrentCapital,
			PeakCapital: m.state.PeakCapital,
		}
		if err := m.summaries.Archive(summary); err != nil {
			m.log.Error().Err(err).Str("day", summary.Day).
				Msg("Failed to archive daily summary, continuing")
		}
	}

	prior := m.state.Date
	m.state.DailyRealizedPnL = 0
	m.state.TradesToday = 0
	m.state.Date = today

	if m.events != nil {
		m.events.Emit(events.DayRolledOver, "risk", map[string]interface{}{
			"from": prior,
			"to":   today,
		})
	}

	m.log.Info().Str("from", prior).Str("to", today).Msg("Trading day rolled over")
}
