package gates

import (
	"fmt"
	"time"

	"github.com/aristath/signal-arbiter/internal/domain"
)

// EventTypeDisclosure marks regulatory/corporate disclosure events, which
// start a hard cooldown regardless of sentiment
const EventTypeDisclosure = "disclosure"

// NewsGateConfig holds the news gate's limits
type NewsGateConfig struct {
	Cooldown       time.Duration // no-trade window after a disclosure
	SentimentFloor float64       // most negative tolerable sentiment
	AllowEmpty     bool          // pass when no events are supplied
}

// DefaultNewsGateConfig returns the stock configuration
func DefaultNewsGateConfig() NewsGateConfig {
	return NewsGateConfig{
		Cooldown:       60 * time.Minute,
		SentimentFloor: -0.5,
		AllowEmpty:     false,
	}
}

// NewsGate is a pure admission filter over news events. The cooldown clock
// is derived from event timestamps against the supplied evaluation time,
// never from stored session state.
type NewsGate struct {
	cfg       NewsGateConfig
	sentiment domain.Threshold
}

// NewNewsGate creates a gate with the given configuration
func NewNewsGate(cfg NewsGateConfig) *NewsGate {
	return &NewsGate{
		cfg:       cfg,
		sentiment: domain.Threshold{Name: "sentiment", Limit: cfg.SentimentFloor, Comparator: domain.AtLeast},
	}
}

// Evaluate checks the event list as of the given time
func (g *NewsGate) Evaluate(events []domain.NewsEvent, asOf time.Time) domain.GateVerdict {
	if len(events) == 0 {
		if g.cfg.AllowEmpty {
			return domain.Pass("news")
		}
		return domain.Fail("news", "no news events supplied")
	}

	// Disclosure cooldown overrides sentiment entirely
	for _, ev := range events {
		if ev.Type != EventTypeDisclosure {
			continue
		}
		elapsed := asOf.Sub(ev.Timestamp)
		if elapsed >= 0 && elapsed < g.cfg.Cooldown {
			remaining := g.cfg.Cooldown - elapsed
			return domain.Fail("news", fmt.Sprintf(
				"disclosure cooldown active, %s remaining", remaining.Round(time.Second)))
		}
	}

	for _, ev := range events {
		if v := g.sentiment.Verdict(ev.Sentiment); !v.Passed {
			return domain.Fail("news", fmt.Sprintf(
				"sentiment %.2f below floor %.2f", ev.Sentiment, g.cfg.SentimentFloor))
		}
	}

	return domain.Pass("news")
}
