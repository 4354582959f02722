package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateADX calculates the Average Directional Index
//
// ADX measures trend strength (not direction) on a 0-100 scale.
// Values above ~25 are conventionally treated as a trending market.
//
// Args:
//
//	highs, lows, closes: OHLC arrays of equal length
//	length: ADX period (typically 14)
//
// Returns:
//
//	Current ADX value or nil if insufficient data
func CalculateADX(highs, lows, closes []float64, length int) *float64 {
	// talib needs 2*length warmup for a stable ADX
	if len(closes) < 2*length+1 || len(highs) != len(closes) || len(lows) != len(closes) {
		return nil
	}

	adx := talib.Adx(highs, lows, closes, length)
	return lastValid(adx)
}

// CalculateSMA calculates the Simple Moving Average over the given period
//
// Returns:
//
//	Current SMA value or nil if insufficient data
func CalculateSMA(closes []float64, length int) *float64 {
	if len(closes) < length {
		return nil
	}

	sma := talib.Sma(closes, length)
	return lastValid(sma)
}

// CalculateATR calculates the Average True Range
//
// Returns:
//
//	Current ATR value or nil if insufficient data
func CalculateATR(highs, lows, closes []float64, length int) *float64 {
	if len(closes) < length+1 || len(highs) != len(closes) || len(lows) != len(closes) {
		return nil
	}

	atr := talib.Atr(highs, lows, closes, length)
	return lastValid(atr)
}

// lastValid returns a pointer to the last non-NaN value of a talib output
func lastValid(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}

	v := values[len(values)-1]
	if isNaN(v) {
		return nil
	}
	return &v
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
