package grading

import (
	"testing"

	"github.com/aristath/signal-arbiter/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestGrader_BaseScore(t *testing.T) {
	grader := NewGrader()

	tests := []struct {
		name             string
		mtf              float64
		consensus        float64
		gatesPassed      int
		totalGates       int
		activeStrategies int
		want             float64
	}{
		{
			name: "perfect inputs score 100",
			mtf:  1.0, consensus: 4.0, gatesPassed: 3, totalGates: 3, activeStrategies: 4,
			want: 100,
		},
		{
			name: "zero inputs score 0",
			mtf:  0, consensus: 0, gatesPassed: 0, totalGates: 3, activeStrategies: 4,
			want: 0,
		},
		{
			name: "mixed inputs",
			mtf:  0.9, consensus: 3.8, gatesPassed: 3, totalGates: 3, activeStrategies: 4,
			// 0.5*90 + 0.3*95 + 0.2*100
			want: 93.5,
		},
		{
			name: "no active strategies drops the consensus term",
			mtf:  1.0, consensus: 2.0, gatesPassed: 3, totalGates: 3, activeStrategies: 0,
			want: 70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := grader.BaseScore(tt.mtf, tt.consensus, tt.gatesPassed, tt.totalGates, tt.activeStrategies)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestGrader_RiskLevel(t *testing.T) {
	grader := NewGrader()

	tests := []struct {
		name       string
		volatility float64
		liquidity  float64
		regime     domain.MarketRegime
		want       domain.RiskLevel
	}{
		{name: "calm liquid trend", volatility: 10, liquidity: 0.95, regime: domain.RegimeTrendingUp, want: domain.RiskLow},
		{name: "moderate volatility", volatility: 20, liquidity: 0.9, regime: domain.RegimeSideways, want: domain.RiskMedium},
		{name: "thin book", volatility: 10, liquidity: 0.5, regime: domain.RegimeTrendingUp, want: domain.RiskMedium},
		{name: "high volatility", volatility: 35, liquidity: 0.9, regime: domain.RegimeTrendingUp, want: domain.RiskHigh},
		{name: "volatile regime is critical", volatility: 10, liquidity: 0.95, regime: domain.RegimeVolatile, want: domain.RiskCritical},
		{name: "extreme volatility is critical", volatility: 50, liquidity: 0.95, regime: domain.RegimeTrendingUp, want: domain.RiskCritical},
		{name: "illiquid is critical", volatility: 10, liquidity: 0.1, regime: domain.RegimeTrendingUp, want: domain.RiskCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := grader.RiskLevel(tt.volatility, tt.liquidity, tt.regime)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGrader_RiskAdjustedScore_NeverExceedsBase(t *testing.T) {
	grader := NewGrader()

	levels := []domain.RiskLevel{
		domain.RiskLow, domain.RiskMedium, domain.RiskHigh, domain.RiskCritical,
	}
	for _, level := range levels {
		for _, base := range []float64{0, 25, 50, 93.5, 100} {
			adjusted := grader.RiskAdjustedScore(base, level)
			assert.LessOrEqual(t, adjusted, base)
			if level == domain.RiskLow {
				assert.Equal(t, base, adjusted, "LOW risk applies no penalty")
			} else if base > 0 {
				assert.Less(t, adjusted, base, "non-LOW risk must discount a positive score")
			}
		}
	}

	assert.InDelta(t, 45.0, grader.RiskAdjustedScore(50, domain.RiskMedium), 1e-9)
	assert.InDelta(t, 37.5, grader.RiskAdjustedScore(50, domain.RiskHigh), 1e-9)
	assert.InDelta(t, 25.0, grader.RiskAdjustedScore(50, domain.RiskCritical), 1e-9)
}

func TestGrader_Grade(t *testing.T) {
	grader := NewGrader()

	tests := []struct {
		name        string
		base        float64
		level       domain.RiskLevel
		gatesPassed int
		totalGates  int
		want        domain.QualityGrade
	}{
		{name: "strong buy requires everything", base: 90, level: domain.RiskLow, gatesPassed: 3, totalGates: 3, want: domain.GradeStrongBuy},
		{name: "failed gate blocks strong buy", base: 90, level: domain.RiskLow, gatesPassed: 2, totalGates: 3, want: domain.GradeBuy},
		{name: "medium risk caps at buy", base: 90, level: domain.RiskMedium, gatesPassed: 3, totalGates: 3, want: domain.GradeBuy},
		{name: "high score cannot beat high risk", base: 95, level: domain.RiskHigh, gatesPassed: 3, totalGates: 3, want: domain.GradeSell},
		{name: "critical risk is a strong sell", base: 95, level: domain.RiskCritical, gatesPassed: 3, totalGates: 3, want: domain.GradeStrongSell},
		{name: "mid-range score holds", base: 55, level: domain.RiskLow, gatesPassed: 3, totalGates: 3, want: domain.GradeHold},
		{name: "low score sells", base: 30, level: domain.RiskLow, gatesPassed: 3, totalGates: 3, want: domain.GradeSell},
		{name: "very low score strong sells", base: 10, level: domain.RiskLow, gatesPassed: 3, totalGates: 3, want: domain.GradeStrongSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := grader.Grade(tt.base, tt.level, tt.gatesPassed, tt.totalGates)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGrader_Evaluate_StrongBuyScenario(t *testing.T) {
	grader := NewGrader()

	result := grader.Evaluate(Input{
		Symbol:           "ACME",
		MTFScore:         0.9,
		ConsensusScore:   3.8,
		ActiveStrategies: 4,
		GatesPassed:      3,
		TotalGates:       3,
		Volatility:       10,
		LiquidityScore:   0.95,
		Regime:           domain.RegimeTrendingUp,
	})

	assert.Equal(t, domain.GradeStrongBuy, result.QualityGrade)
	assert.Equal(t, domain.RiskLow, result.RiskLevel)
	assert.InDelta(t, 93.5, result.BaseScore, 1e-9)
	assert.Equal(t, result.BaseScore, result.RiskAdjustedScore)
	assert.LessOrEqual(t, result.RiskAdjustedScore, result.BaseScore)
}
