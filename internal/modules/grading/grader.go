package grading

import (
	"math"
	"time"

	"github.com/aristath/signal-arbiter/internal/domain"
)

// ScoreWeights defines how much each input contributes to the base score
type ScoreWeights struct {
	MTF       float64 `json:"mtf"`
	Consensus float64 `json:"consensus"`
	Gates     float64 `json:"gates"`
}

// DefaultScoreWeights emphasizes multi-timeframe confluence as the
// primary signal
var DefaultScoreWeights = ScoreWeights{
	MTF:       0.5,
	Consensus: 0.3,
	Gates:     0.2,
}

// riskPenalty maps a risk level to the multiplicative discount applied to
// the base score
var riskPenalty = map[domain.RiskLevel]float64{
	domain.RiskLow:      0.0,
	domain.RiskMedium:   0.10,
	domain.RiskHigh:     0.25,
	domain.RiskCritical: 0.50,
}

// Grader fuses confluence, consensus, gate outcomes and market risk into
// one actionable grade. It is stateless and safe for concurrent use.
type Grader struct {
	weights ScoreWeights
}

// NewGrader creates a grader with default weights
func NewGrader() *Grader {
	return &Grader{weights: DefaultScoreWeights}
}

// NewGraderWithWeights creates a grader with custom component weights
func NewGraderWithWeights(weights ScoreWeights) *Grader {
	return &Grader{weights: weights}
}

// Input carries everything one evaluation needs
type Input struct {
	Symbol           string
	MTFScore         float64 // confluence score, 0-1
	ConsensusScore   float64 // unbounded, expected max = active strategy count
	ActiveStrategies int
	GatesPassed      int
	TotalGates       int
	Volatility       float64
	LiquidityScore   float64 // 0-1
	Regime           domain.MarketRegime
}

// BaseScore combines the normalized inputs into a 0-100 score.
// The consensus term is normalized by its expected maximum, the active
// strategy count.
func (g *Grader) BaseScore(mtfScore, consensusScore float64, gatesPassed, totalGates, activeStrategies int) float64 {
	mtfTerm := clampUnit(mtfScore) * 100

	consensusTerm := 0.0
	if activeStrategies > 0 {
		consensusTerm = clampUnit(consensusScore/float64(activeStrategies)) * 100
	}

	gateTerm := 0.0
	if totalGates > 0 {
		gateTerm = float64(gatesPassed) / float64(totalGates) * 100
	}

	return g.weights.MTF*mtfTerm + g.weights.Consensus*consensusTerm + g.weights.Gates*gateTerm
}

// RiskLevel derives the categorical severity from volatility, liquidity
// and regime. A VOLATILE regime alone is enough for CRITICAL.
func (g *Grader) RiskLevel(volatility, liquidityScore float64, regime domain.MarketRegime) domain.RiskLevel {
	switch {
	case regime == domain.RegimeVolatile || volatility > 40 || liquidityScore < 0.2:
		return domain.RiskCritical
	case volatility > 30 || liquidityScore < 0.4:
		return domain.RiskHigh
	case volatility > 15 || liquidityScore < 0.7:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// RiskAdjustedScore applies the risk level's multiplicative penalty.
// The result never exceeds the base score; equality only at LOW risk.
func (g *Grader) RiskAdjustedScore(baseScore float64, level domain.RiskLevel) float64 {
	penalty, ok := riskPenalty[level]
	if !ok {
		// Unknown level: treat as the worst case rather than no penalty
		penalty = riskPenalty[domain.RiskCritical]
	}
	return baseScore * (1 - penalty)
}

// Grade maps the base score, risk level and gate outcomes onto the final
// recommendation. STRONG_BUY demands a high score, LOW risk and a clean
// gate sweep; no score can reach STRONG_BUY at HIGH or CRITICAL risk.
func (g *Grader) Grade(baseScore float64, level domain.RiskLevel, gatesPassed, totalGates int) domain.QualityGrade {
	allGatesPassed := totalGates > 0 && gatesPassed == totalGates

	switch {
	case baseScore >= 85 && level == domain.RiskLow && allGatesPassed:
		return domain.GradeStrongBuy
	case baseScore >= 70 && (level == domain.RiskLow || level == domain.RiskMedium):
		return domain.GradeBuy
	case level == domain.RiskCritical:
		return domain.GradeStrongSell
	case level == domain.RiskHigh:
		return domain.GradeSell
	case baseScore >= 45:
		return domain.GradeHold
	case baseScore >= 25:
		return domain.GradeSell
	default:
		return domain.GradeStrongSell
	}
}

// Evaluate produces the full decision record for one evaluation cycle
func (g *Grader) Evaluate(in Input) domain.QualityRiskResult {
	base := g.BaseScore(in.MTFScore, in.ConsensusScore, in.GatesPassed, in.TotalGates, in.ActiveStrategies)
	level := g.RiskLevel(in.Volatility, in.LiquidityScore, in.Regime)

	return domain.QualityRiskResult{
		Symbol:            in.Symbol,
		BaseScore:         base,
		RiskLevel:         level,
		RiskAdjustedScore: g.RiskAdjustedScore(base, level),
		QualityGrade:      g.Grade(base, level, in.GatesPassed, in.TotalGates),
		GatesPassed:       in.GatesPassed,
		TotalGates:        in.TotalGates,
		Regime:            in.Regime,
		Timestamp:         time.Now(),
	}
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
