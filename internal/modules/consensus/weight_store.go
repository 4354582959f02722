package consensus

import (
	"fmt"
	"math"
	"sync"
)

// weightSumTolerance is how far a committed weight set may drift from 1.0
const weightSumTolerance = 1e-3

// WeightStore is the single owner of live strategy weights. Writers
// commit whole weight sets through Replace under single-writer
// discipline; readers always receive a copy, never the live map.
//
// The store is an explicit handle passed to its consumers, not a package
// singleton.
type WeightStore struct {
	mu      sync.RWMutex
	weights map[string]float64
}

// NewWeightStore creates a store seeded with equal weights across the
// given active strategy set.
func NewWeightStore(strategies []string) *WeightStore {
	weights := make(map[string]float64, len(strategies))
	if len(strategies) > 0 {
		equal := 1.0 / float64(len(strategies))
		for _, s := range strategies {
			weights[s] = equal
		}
	}

	return &WeightStore{weights: weights}
}

// Snapshot returns a copy of the current weight set
func (s *WeightStore) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]float64, len(s.weights))
	for k, v := range s.weights {
		out[k] = v
	}
	return out
}

// Strategies returns the active strategy identifiers
func (s *WeightStore) Strategies() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.weights))
	for k := range s.weights {
		out = append(out, k)
	}
	return out
}

// ActiveCount returns the number of active strategies
func (s *WeightStore) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.weights)
}

// Replace validates and commits a complete weight set. Every weight must
// be in [0,1] and the set must sum to 1.0 within tolerance.
func (s *WeightStore) Replace(weights map[string]float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("cannot commit an empty weight set")
	}

	sum := 0.0
	for strategy, w := range weights {
		if w < 0 || w > 1 {
			return fmt.Errorf("weight for %s out of range: %.4f", strategy, w)
		}
		sum += w
	}

	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights sum to %.4f, expected 1.0", sum)
	}

	committed := make(map[string]float64, len(weights))
	for k, v := range weights {
		committed[k] = v
	}

	s.mu.Lock()
	s.weights = committed
	s.mu.Unlock()

	return nil
}
