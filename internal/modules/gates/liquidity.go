package gates

import (
	"fmt"

	"github.com/aristath/signal-arbiter/internal/domain"
)

// LiquidityThresholds holds the limits the liquidity gate enforces
type LiquidityThresholds struct {
	MinATRPct         float64 // ATR as a fraction of price
	MinAvgTradedValue float64
	MaxSpreadPct      float64
	MinMarketCap      float64 // only enforced when market cap is supplied
}

// DefaultLiquidityThresholds returns the stock limits
func DefaultLiquidityThresholds() LiquidityThresholds {
	return LiquidityThresholds{
		MinATRPct:         0.005,      // 0.5% of price minimum range
		MinAvgTradedValue: 10_000_000, // minimum average traded value
		MaxSpreadPct:      0.5,        // 0.5% maximum bid/ask spread
		MinMarketCap:      5_000_000_000,
	}
}

// LiquidityGate is a pure admission filter over market liquidity inputs.
// All conditions are AND-ed; the first failing check wins the reason.
type LiquidityGate struct {
	atrPct      domain.Threshold
	tradedValue domain.Threshold
	spread      domain.Threshold
	marketCap   domain.Threshold
}

// NewLiquidityGate creates a gate with the given thresholds
func NewLiquidityGate(t LiquidityThresholds) *LiquidityGate {
	return &LiquidityGate{
		atrPct:      domain.Threshold{Name: "atr_pct", Limit: t.MinATRPct, Comparator: domain.AtLeast},
		tradedValue: domain.Threshold{Name: "avg_traded_value", Limit: t.MinAvgTradedValue, Comparator: domain.AtLeast},
		spread:      domain.Threshold{Name: "spread_pct", Limit: t.MaxSpreadPct, Comparator: domain.AtMost},
		marketCap:   domain.Threshold{Name: "market_cap", Limit: t.MinMarketCap, Comparator: domain.AtLeast},
	}
}

// Evaluate checks the market context against every liquidity condition
func (g *LiquidityGate) Evaluate(ctx domain.MarketContext) domain.GateVerdict {
	if ctx.Price <= 0 {
		return domain.Fail("liquidity", fmt.Sprintf("invalid price %.4f", ctx.Price))
	}

	if v := g.atrPct.Verdict(ctx.ATR / ctx.Price); !v.Passed {
		return domain.Fail("liquidity", v.Reason)
	}

	if v := g.tradedValue.Verdict(ctx.AvgTradedValue); !v.Passed {
		return domain.Fail("liquidity", v.Reason)
	}

	if v := g.spread.Verdict(ctx.SpreadPct); !v.Passed {
		return domain.Fail("liquidity", v.Reason)
	}

	// Market cap is optional input; only enforced when supplied
	if ctx.MarketCap != nil {
		if v := g.marketCap.Verdict(*ctx.MarketCap); !v.Passed {
			return domain.Fail("liquidity", v.Reason)
		}
	}

	return domain.Pass("liquidity")
}
