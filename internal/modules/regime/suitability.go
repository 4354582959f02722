package regime

import "github.com/aristath/signal-arbiter/internal/domain"

// suitabilityTable maps strategy class -> regime -> trust factor [0,1].
// Momentum-class strategies are considered unreliable in chop, so they
// score near zero during VOLATILE.
var suitabilityTable = map[string]map[domain.MarketRegime]float64{
	"breakout": {
		domain.RegimeTrendingUp:   1.0,
		domain.RegimeTrendingDown: 0.6,
		domain.RegimeSideways:     0.2,
		domain.RegimeVolatile:     0.3,
	},
	"momentum": {
		domain.RegimeTrendingUp:   0.9,
		domain.RegimeTrendingDown: 0.7,
		domain.RegimeSideways:     0.3,
		domain.RegimeVolatile:     0.1,
	},
	"squeeze": {
		domain.RegimeTrendingUp:   0.8,
		domain.RegimeTrendingDown: 0.5,
		domain.RegimeSideways:     0.7,
		domain.RegimeVolatile:     0.15,
	},
	"mean_reversion": {
		domain.RegimeTrendingUp:   0.3,
		domain.RegimeTrendingDown: 0.3,
		domain.RegimeSideways:     1.0,
		domain.RegimeVolatile:     0.4,
	},
}

// perRegimeDefault is the factor for a strategy the table does not know
var perRegimeDefault = map[domain.MarketRegime]float64{
	domain.RegimeTrendingUp:   0.6,
	domain.RegimeTrendingDown: 0.5,
	domain.RegimeSideways:     0.5,
	domain.RegimeVolatile:     0.2,
}

// unknownRegimeFactor covers a regime value the table has never seen
const unknownRegimeFactor = 0.1

// Suitability returns how much a strategy should be trusted in the given
// regime, in [0,1]. Unknown strategies fall back to a per-regime default;
// an unknown regime returns a low constant.
func Suitability(strategy string, regime domain.MarketRegime) float64 {
	if factors, ok := suitabilityTable[strategy]; ok {
		if f, ok := factors[regime]; ok {
			return f
		}
		return unknownRegimeFactor
	}

	if f, ok := perRegimeDefault[regime]; ok {
		return f
	}
	return unknownRegimeFactor
}
