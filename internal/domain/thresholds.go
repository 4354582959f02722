package domain

import "fmt"

// Comparator defines which side of a threshold is acceptable
type Comparator int

const (
	// AtLeast passes when value >= limit
	AtLeast Comparator = iota
	// AtMost passes when value <= limit
	AtMost
	// Above passes when value > limit
	Above
	// Below passes when value < limit
	Below
)

// Threshold is a named limit with a comparator. The risk manager and both
// admission gates evaluate their limits through this one type so the
// comparison semantics cannot drift between them.
type Threshold struct {
	Name       string
	Limit      float64
	Comparator Comparator
}

// Check evaluates the value against the threshold
func (t Threshold) Check(value float64) bool {
	switch t.Comparator {
	case AtLeast:
		return value >= t.Limit
	case AtMost:
		return value <= t.Limit
	case Above:
		return value > t.Limit
	case Below:
		return value < t.Limit
	}
	return false
}

// Verdict evaluates the value and returns a GateVerdict with a formatted
// failure reason when the check does not pass.
func (t Threshold) Verdict(value float64) GateVerdict {
	if t.Check(value) {
		return Pass(t.Name)
	}
	return Fail(t.Name, t.FailReason(value))
}

// FailReason formats a human-readable description of a failed check
func (t Threshold) FailReason(value float64) string {
	return fmt.Sprintf("%s %.4f %s limit %.4f", t.Name, value, t.relation(), t.Limit)
}

func (t Threshold) relation() string {
	switch t.Comparator {
	case AtLeast, Above:
		return "below"
	default:
		return "above"
	}
}
