package regime

import (
	"math"

	"github.com/aristath/signal-arbiter/internal/domain"
	"github.com/aristath/signal-arbiter/pkg/formulas"
)

// Classifier labels the current market condition from trend and
// volatility inputs. Volatility always takes priority: a volatile market
// is reported as VOLATILE even when a strong trend is present.
type Classifier struct {
	adxThreshold        float64
	volatilityThreshold float64
}

// NewClassifier creates a classifier with the given thresholds
func NewClassifier(adxThreshold, volatilityThreshold float64) *Classifier {
	return &Classifier{
		adxThreshold:        adxThreshold,
		volatilityThreshold: volatilityThreshold,
	}
}

// NewDefaultClassifier creates a classifier with conventional thresholds
// (ADX 25 for trend strength, annualized volatility 30 for chop)
func NewDefaultClassifier() *Classifier {
	return NewClassifier(25, 30)
}

// Detect classifies the market regime.
//
// Priority order:
//  1. volatility above threshold -> VOLATILE, regardless of trend
//  2. ADX at/above threshold -> TRENDING_UP or TRENDING_DOWN by SMA cross
//  3. otherwise -> SIDEWAYS
//
// Missing trend inputs (NaN or non-positive SMAs) default to SIDEWAYS.
func (c *Classifier) Detect(adx, smaShort, smaLong, volatility float64) domain.MarketRegime {
	if !math.IsNaN(volatility) && volatility > c.volatilityThreshold {
		return domain.RegimeVolatile
	}

	if math.IsNaN(adx) || math.IsNaN(smaShort) || math.IsNaN(smaLong) ||
		smaShort <= 0 || smaLong <= 0 {
		return domain.RegimeSideways
	}

	if adx >= c.adxThreshold {
		if smaShort > smaLong {
			return domain.RegimeTrendingUp
		}
		return domain.RegimeTrendingDown
	}

	return domain.RegimeSideways
}

// DetectFromSeries derives ADX, short/long SMAs and annualized volatility
// from raw OHLC series and classifies the regime. Series too short to
// produce the indicators classify as SIDEWAYS.
func (c *Classifier) DetectFromSeries(highs, lows, closes []float64) domain.MarketRegime {
	adx := formulas.CalculateADX(highs, lows, closes, 14)
	smaShort := formulas.CalculateSMA(closes, 20)
	smaLong := formulas.CalculateSMA(closes, 50)

	volatility := formulas.AnnualizedVolatility(formulas.CalculateReturns(closes)) * 100

	nan := math.NaN()
	adxV, shortV, longV := nan, nan, nan
	if adx != nil {
		adxV = *adx
	}
	if smaShort != nil {
		shortV = *smaShort
	}
	if smaLong != nil {
		longV = *smaLong
	}

	return c.Detect(adxV, shortV, longV, volatility)
}
