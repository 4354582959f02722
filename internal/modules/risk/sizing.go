package risk

import (
	"fmt"
	"math"

	"github.com/aristath/signal-arbiter/internal/domain"
)

// SizingConfig bounds the adaptive position sizer
type SizingConfig struct {
	BaseRiskPerTrade float64 // base fraction of balance to deploy
	MinPositionRatio float64
	MaxPositionRatio float64
}

// DefaultSizingConfig returns the stock sizing bounds
func DefaultSizingConfig() SizingConfig {
	return SizingConfig{
		BaseRiskPerTrade: 0.05,
		MinPositionRatio: 0.01,
		MaxPositionRatio: 0.25,
	}
}

// SizingInputs carries everything one sizing decision needs
type SizingInputs struct {
	AccountBalance float64
	EntryPrice     float64
	StopLossPrice  float64
	SignalStrength float64 // 0-1
	Regime         domain.MarketRegime
	RiskTolerance  domain.RiskTolerance
}

// regimeSizeFactor scales the base ratio by market condition:
// bull trends size up, bear trends and chop size down
var regimeSizeFactor = map[domain.MarketRegime]float64{
	domain.RegimeTrendingUp:   1.2,
	domain.RegimeTrendingDown: 0.8,
	domain.RegimeSideways:     1.0,
	domain.RegimeVolatile:     0.6,
}

// toleranceFactor maps the discrete risk appetite to a multiplier
var toleranceFactor = map[domain.RiskTolerance]float64{
	domain.ToleranceLow:    0.5,
	domain.ToleranceMedium: 1.0,
	domain.ToleranceHigh:   1.5,
}

// AdaptivePositionSize computes a recommended position ratio from the
// base risk budget scaled by regime, signal strength and risk tolerance.
//
// The raw ratio is strictly increasing in signal strength and risk
// tolerance; the final value is clamped to [MinPositionRatio,
// MaxPositionRatio]. Invalid inputs produce a zeroed recommendation with
// a human-readable reason.
func AdaptivePositionSize(cfg SizingConfig, in SizingInputs) domain.PositionSizingRecommendation {
	if in.AccountBalance <= 0 {
		return invalidSizing("account balance must be positive")
	}
	if in.EntryPrice <= 0 {
		return invalidSizing("entry price must be positive")
	}
	if in.StopLossPrice >= in.EntryPrice {
		return invalidSizing("stop loss must be below entry price")
	}

	regimeFactor, ok := regimeSizeFactor[in.Regime]
	if !ok {
		regimeFactor = 1.0
	}

	// Signal strength scales the ratio within [0.5x, 1.5x]
	strength := math.Max(0, math.Min(1, in.SignalStrength))
	signalFactor := 0.5 + strength

	tolFactor, ok := toleranceFactor[in.RiskTolerance]
	if !ok {
		tolFactor = toleranceFactor[domain.ToleranceMedium]
	}

	ratio := cfg.BaseRiskPerTrade * regimeFactor * signalFactor * tolFactor
	ratio = math.Max(cfg.MinPositionRatio, math.Min(cfg.MaxPositionRatio, ratio))

	maxShares := int64(math.Floor(in.AccountBalance * ratio / in.EntryPrice))
	riskPerTrade := float64(maxShares) * (in.EntryPrice - in.StopLossPrice)

	reason := fmt.Sprintf("base %.3f x regime %.2f x signal %.2f x tolerance %.2f",
		cfg.BaseRiskPerTrade, regimeFactor, signalFactor, tolFactor)

	return domain.PositionSizingRecommendation{
		RecommendedSizeRatio: ratio,
		MaxShares:            maxShares,
		RiskPerTrade:         riskPerTrade,
		AdjustedByRegime:     regimeFactor != 1.0,
		Confidence:           strength,
		Reason:               reason,
	}
}

func invalidSizing(reason string) domain.PositionSizingRecommendation {
	return domain.PositionSizingRecommendation{
		RecommendedSizeRatio: 0.0,
		MaxShares:            0,
		Reason:               reason,
	}
}
