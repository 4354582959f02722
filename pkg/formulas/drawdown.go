package formulas

// DrawdownMetrics represents drawdown analysis results
type DrawdownMetrics struct {
	MaxDrawdown     float64 `json:"max_drawdown"`     // Maximum drawdown (as positive percentage, e.g., 0.25 = 25% drawdown)
	CurrentDrawdown float64 `json:"current_drawdown"` // Current drawdown from peak
	PeriodsInDD     int     `json:"periods_in_dd"`    // Periods since peak
	PeakValue       float64 `json:"peak_value"`       // Value at peak
	CurrentValue    float64 `json:"current_value"`    // Current value
}

// CalculateDrawdownMetrics calculates drawdown metrics from a value series
// (equity points or adjusted closes)
//
// Drawdown Formula:
//
//	Drawdown = (Peak Value - Current Value) / Peak Value
//	Max Drawdown = Maximum of all drawdowns
//
// Drawdowns are positive percentages (0.25 = 25% loss from peak).
// Returns nil when the series is too short to measure.
func CalculateDrawdownMetrics(values []float64) *DrawdownMetrics {
	if len(values) < 2 {
		return nil
	}

	maxDrawdown := 0.0
	peak := values[0]
	peakIndex := 0
	currentValue := values[len(values)-1]

	for i, v := range values {
		if v > peak {
			peak = v
			peakIndex = i
		}

		if peak > 0 {
			drawdown := (peak - v) / peak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	currentDrawdown := 0.0
	if peak > 0 {
		currentDrawdown = (peak - currentValue) / peak
	}

	periodsInDD := len(values) - 1 - peakIndex

	return &DrawdownMetrics{
		MaxDrawdown:     maxDrawdown,
		CurrentDrawdown: currentDrawdown,
		PeriodsInDD:     periodsInDD,
		PeakValue:       peak,
		CurrentValue:    currentValue,
	}
}

// DrawdownSeries returns the running-peak-minus-current value at each point.
// Every element is non-negative; the series has the same length as the input.
func DrawdownSeries(values []float64) []float64 {
	series := make([]float64, len(values))
	if len(values) == 0 {
		return series
	}

	peak := values[0]
	for i, v := range values {
		if v > peak {
			peak = v
		}
		series[i] = peak - v
	}

	return series
}
