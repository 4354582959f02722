package adaptive

import "time"

// RebalanceRecord is one committed rebalance. Records are immutable once
// appended; the history only grows.
type RebalanceRecord struct {
	Timestamp  time.Time          `json:"timestamp"`
	Regime     string             `json:"regime"`
	OldWeights map[string]float64 `json:"old_weights"`
	NewWeights map[string]float64 `json:"new_weights"`
	Reason     string             `json:"reason"`
}

// HistoryStore persists the append-only rebalance history
type HistoryStore interface {
	// Append stores a committed rebalance record
	Append(rec RebalanceRecord) error

	// List returns all records in chronological order
	List() ([]RebalanceRecord, error)
}
