package domain

import "time"

// MarketRegime represents a classified market condition
type MarketRegime string

const (
	RegimeTrendingUp   MarketRegime = "TRENDING_UP"
	RegimeTrendingDown MarketRegime = "TRENDING_DOWN"
	RegimeSideways     MarketRegime = "SIDEWAYS"
	RegimeVolatile     MarketRegime = "VOLATILE"
)

// RiskLevel represents a categorical risk severity
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// QualityGrade represents the final categorical recommendation
type QualityGrade string

const (
	GradeStrongBuy  QualityGrade = "STRONG_BUY"
	GradeBuy        QualityGrade = "BUY"
	GradeHold       QualityGrade = "HOLD"
	GradeSell       QualityGrade = "SELL"
	GradeStrongSell QualityGrade = "STRONG_SELL"
)

// RiskTolerance represents a discrete sizing appetite
type RiskTolerance string

const (
	ToleranceLow    RiskTolerance = "LOW"
	ToleranceMedium RiskTolerance = "MEDIUM"
	ToleranceHigh   RiskTolerance = "HIGH"
)

// Timeframe represents a chart timeframe identifier
type Timeframe string

const (
	Timeframe3m  Timeframe = "3m"
	Timeframe15m Timeframe = "15m"
	Timeframe1h  Timeframe = "1h"
	Timeframe1d  Timeframe = "1d"
)

// StrategySignal represents one strategy's opinion at a point in time
type StrategySignal struct {
	Strategy  string    `json:"strategy"`
	Strength  float64   `json:"strength"` // bounded by the strategy's declared range
	Timeframe Timeframe `json:"timeframe,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// GateVerdict represents the pass/fail outcome of one admission check
type GateVerdict struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"` // non-empty when Passed is false
}

// Pass returns a passing verdict for the named gate.
func Pass(name string) GateVerdict {
	return GateVerdict{Name: name, Passed: true}
}

// Fail returns a failing verdict with the given reason.
func Fail(name, reason string) GateVerdict {
	return GateVerdict{Name: name, Passed: false, Reason: reason}
}

// QualityRiskResult is the final decision produced for one evaluation cycle
type QualityRiskResult struct {
	Symbol            string       `json:"symbol"`
	BaseScore         float64      `json:"base_score"` // 0-100
	RiskLevel         RiskLevel    `json:"risk_level"`
	RiskAdjustedScore float64      `json:"risk_adjusted_score"` // always <= BaseScore
	QualityGrade      QualityGrade `json:"quality_grade"`
	GatesPassed       int          `json:"gates_passed"`
	TotalGates        int          `json:"total_gates"`
	Regime            MarketRegime `json:"regime"`
	Timestamp         time.Time    `json:"timestamp"`
}

// NewsEvent represents one news/disclosure item supplied by a collaborator
type NewsEvent struct {
	Type      string    `json:"type"` // e.g. "disclosure", "article"
	Timestamp time.Time `json:"timestamp"`
	Sentiment float64   `json:"sentiment"` // negative values are bearish
	Content   string    `json:"content,omitempty"`
}

// MarketContext carries the collaborator-supplied market snapshot consumed
// by the admission gates and the regime classifier. All values are
// pre-fetched; nothing here triggers I/O.
type MarketContext struct {
	Symbol         string   `json:"symbol"`
	Price          float64  `json:"price"`
	ATR            float64  `json:"atr"`
	AvgTradedValue float64  `json:"avg_traded_value"`
	SpreadPct      float64  `json:"spread_pct"`
	MarketCap      *float64 `json:"market_cap,omitempty"` // optional
	ADX            float64  `json:"adx"`
	SMAShort       float64  `json:"sma_short"`
	SMALong        float64  `json:"sma_long"`
	Volatility     float64  `json:"volatility"`
	LiquidityScore float64  `json:"liquidity_score"` // 0-1
}

// PositionSizingRecommendation is the adaptive sizing output
type PositionSizingRecommendation struct {
	RecommendedSizeRatio float64 `json:"recommended_size_ratio"`
	MaxShares            int64   `json:"max_shares"`
	RiskPerTrade         float64 `json:"risk_per_trade"`
	AdjustedByRegime     bool    `json:"adjusted_by_regime"`
	Confidence           float64 `json:"confidence"`
	Reason               string  `json:"reason"`
}
