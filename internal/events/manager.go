package events

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	EvaluationCompleted EventType = "EVALUATION_COMPLETED"
	ErrorOccurred       EventType = "ERROR_OCCURRED"

	// Adaptive weight events
	RebalanceCommitted EventType = "REBALANCE_COMMITTED"
	RebalanceSkipped   EventType = "REBALANCE_SKIPPED"

	// Capital risk events
	TradeRecorded         EventType = "TRADE_RECORDED"
	DayRolledOver         EventType = "DAY_ROLLED_OVER"
	CircuitBreakerTripped EventType = "CIRCUIT_BREAKER_TRIPPED"
	TradingHalted         EventType = "TRADING_HALTED"

	// Backtest events
	BacktestCompleted EventType = "BACKTEST_COMPLETED"
	BacktestSaved     EventType = "BACKTEST_SAVED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// Manager handles event emission and logging
type Manager struct {
	log zerolog.Logger
}

// NewManager creates a new event manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log: log.With().Str("service", "events").Logger(),
	}
}

// Emit emits an event
func (m *Manager) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	// Log event
	eventJSON, _ := json.Marshal(event)
	m.log.Info().
		Str("event_type", string(eventType)).
		Str("module", module).
		RawJSON("event", eventJSON).
		Msg("Event emitted")
}

// EmitError emits an error event
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) {
	data := map[string]interface{}{
		"error":   err.Error(),
		"context": context,
	}
	m.Emit(ErrorOccurred, module, data)
}
