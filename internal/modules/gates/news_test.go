package gates

import (
	"testing"
	"time"

	"github.com/aristath/signal-arbiter/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewsGate_EmptyEvents(t *testing.T) {
	now := time.Now()

	strict := NewNewsGate(DefaultNewsGateConfig())
	verdict := strict.Evaluate(nil, now)
	assert.False(t, verdict.Passed)
	assert.NotEmpty(t, verdict.Reason)

	cfg := DefaultNewsGateConfig()
	cfg.AllowEmpty = true
	lenient := NewNewsGate(cfg)
	verdict = lenient.Evaluate(nil, now)
	assert.True(t, verdict.Passed)
}

func TestNewsGate_DisclosureCooldown(t *testing.T) {
	gate := NewNewsGate(DefaultNewsGateConfig())
	now := time.Now()

	// Positive sentiment does not matter during cooldown
	events := []domain.NewsEvent{
		{Type: EventTypeDisclosure, Timestamp: now.Add(-10 * time.Minute), Sentiment: 0.9},
	}
	verdict := gate.Evaluate(events, now)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "cooldown")

	// Cooldown expires after 60 minutes
	events[0].Timestamp = now.Add(-61 * time.Minute)
	verdict = gate.Evaluate(events, now)
	assert.True(t, verdict.Passed)
}

func TestNewsGate_SentimentFloor(t *testing.T) {
	gate := NewNewsGate(DefaultNewsGateConfig())
	now := time.Now()

	tests := []struct {
		name      string
		sentiment float64
		wantPass  bool
	}{
		{name: "mildly negative passes", sentiment: -0.3, wantPass: true},
		{name: "at the floor passes", sentiment: -0.5, wantPass: true},
		{name: "beyond the floor fails", sentiment: -0.8, wantPass: false},
		{name: "positive passes", sentiment: 0.6, wantPass: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []domain.NewsEvent{
				{Type: "article", Timestamp: now.Add(-2 * time.Hour), Sentiment: tt.sentiment},
			}
			verdict := gate.Evaluate(events, now)
			assert.Equal(t, tt.wantPass, verdict.Passed)
			if !tt.wantPass {
				assert.NotEmpty(t, verdict.Reason)
			}
		})
	}
}
