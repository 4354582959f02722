package regime

import (
	"math"
	"testing"

	"github.com/aristath/signal-arbiter/internal/domain"
)

func TestClassifier_Detect(t *testing.T) {
	classifier := NewDefaultClassifier()

	tests := []struct {
		name       string
		adx        float64
		smaShort   float64
		smaLong    float64
		volatility float64
		want       domain.MarketRegime
	}{
		{
			name:       "strong uptrend",
			adx:        30,
			smaShort:   2500,
			smaLong:    2400,
			volatility: 20,
			want:       domain.RegimeTrendingUp,
		},
		{
			name:       "strong downtrend",
			adx:        32,
			smaShort:   2300,
			smaLong:    2400,
			volatility: 18,
			want:       domain.RegimeTrendingDown,
		},
		{
			name:       "weak trend is sideways",
			adx:        15,
			smaShort:   2500,
			smaLong:    2400,
			volatility: 20,
			want:       domain.RegimeSideways,
		},
		{
			name:       "volatility overrides trend",
			adx:        40,
			smaShort:   2500,
			smaLong:    2400,
			volatility: 45,
			want:       domain.RegimeVolatile,
		},
		{
			name:       "missing trend inputs default to sideways",
			adx:        math.NaN(),
			smaShort:   math.NaN(),
			smaLong:    math.NaN(),
			volatility: 10,
			want:       domain.RegimeSideways,
		},
		{
			name:       "zero SMAs are treated as missing",
			adx:        30,
			smaShort:   0,
			smaLong:    0,
			volatility: 10,
			want:       domain.RegimeSideways,
		},
		{
			name:       "ADX exactly at threshold trends",
			adx:        25,
			smaShort:   110,
			smaLong:    100,
			volatility: 10,
			want:       domain.RegimeTrendingUp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Detect(tt.adx, tt.smaShort, tt.smaLong, tt.volatility)
			if got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func trendSeries(start, step float64, n int) (highs, lows, closes []float64) {
	highs = make([]float64, n)
	lows = make([]float64, n)
	closes = make([]float64, n)
	for i := 0; i < n; i++ {
		c := start + step*float64(i)
		closes[i] = c
		highs[i] = c + 1
		lows[i] = c - 1
	}
	return highs, lows, closes
}

func TestClassifier_DetectFromSeries(t *testing.T) {
	classifier := NewDefaultClassifier()

	t.Run("steady uptrend", func(t *testing.T) {
		highs, lows, closes := trendSeries(100, 1, 60)
		got := classifier.DetectFromSeries(highs, lows, closes)
		if got != domain.RegimeTrendingUp {
			t.Errorf("DetectFromSeries() = %v, want %v", got, domain.RegimeTrendingUp)
		}
	})

	t.Run("steady downtrend", func(t *testing.T) {
		highs, lows, closes := trendSeries(200, -1, 60)
		got := classifier.DetectFromSeries(highs, lows, closes)
		if got != domain.RegimeTrendingDown {
			t.Errorf("DetectFromSeries() = %v, want %v", got, domain.RegimeTrendingDown)
		}
	})

	t.Run("series too short for indicators is sideways", func(t *testing.T) {
		highs, lows, closes := trendSeries(100, 1, 10)
		got := classifier.DetectFromSeries(highs, lows, closes)
		if got != domain.RegimeSideways {
			t.Errorf("DetectFromSeries() = %v, want %v", got, domain.RegimeSideways)
		}
	})

	t.Run("empty series is sideways", func(t *testing.T) {
		got := classifier.DetectFromSeries(nil, nil, nil)
		if got != domain.RegimeSideways {
			t.Errorf("DetectFromSeries() = %v, want %v", got, domain.RegimeSideways)
		}
	})
}

func TestSuitability(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		regime   domain.MarketRegime
		want     float64
	}{
		{
			name:     "breakout thrives in uptrend",
			strategy: "breakout",
			regime:   domain.RegimeTrendingUp,
			want:     1.0,
		},
		{
			name:     "breakout struggles sideways",
			strategy: "breakout",
			regime:   domain.RegimeSideways,
			want:     0.2,
		},
		{
			name:     "momentum unreliable in chop",
			strategy: "momentum",
			regime:   domain.RegimeVolatile,
			want:     0.1,
		},
		{
			name:     "unknown strategy gets per-regime default",
			strategy: "astrology",
			regime:   domain.RegimeTrendingUp,
			want:     0.6,
		},
		{
			name:     "unknown regime gets low constant",
			strategy: "momentum",
			regime:   domain.MarketRegime("LUNAR"),
			want:     0.1,
		},
		{
			name:     "unknown strategy and regime gets low constant",
			strategy: "astrology",
			regime:   domain.MarketRegime("LUNAR"),
			want:     0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suitability(tt.strategy, tt.regime)
			if got != tt.want {
				t.Errorf("Suitability(%q, %q) = %v, want %v", tt.strategy, tt.regime, got, tt.want)
			}
		})
	}
}

func TestSuitability_AlwaysInRange(t *testing.T) {
	regimes := []domain.MarketRegime{
		domain.RegimeTrendingUp, domain.RegimeTrendingDown,
		domain.RegimeSideways, domain.RegimeVolatile,
	}
	for strategy := range suitabilityTable {
		for _, r := range regimes {
			f := Suitability(strategy, r)
			if f < 0 || f > 1 {
				t.Errorf("Suitability(%q, %q) = %v, out of [0,1]", strategy, r, f)
			}
		}
	}
}
