package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/signal-arbiter/internal/config"
	"github.com/aristath/signal-arbiter/internal/events"
	"github.com/aristath/signal-arbiter/internal/domain"
	"github.com/aristath/signal-arbiter/internal/modules/confluence"
	"github.com/aristath/signal-arbiter/internal/modules/consensus"
	"github.com/aristath/signal-arbiter/internal/modules/gates"
	"github.com/aristath/signal-arbiter/internal/modules/grading"
	"github.com/aristath/signal-arbiter/internal/modules/pipeline"
	"github.com/aristath/signal-arbiter/internal/modules/regime"
	"github.com/aristath/signal-arbiter/internal/modules/risk"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	weights := consensus.NewWeightStore([]string{"breakout", "momentum"})

	evaluator := pipeline.NewEvaluator(
		regime.NewDefaultClassifier(),
		gates.NewLiquidityGate(gates.DefaultLiquidityThresholds()),
		gates.NewNewsGate(gates.DefaultNewsGateConfig()),
		confluence.NewDefaultScorer(),
		consensus.NewScorer(weights, nil, zerolog.Nop()),
		weights,
		grading.NewGrader(),
		risk.DefaultSizingConfig(),
		pipeline.Thresholds{Consensus: 2.0, Confluence: 0.7},
		nil,
		zerolog.Nop(),
	)

	riskManager := risk.NewManager(100_000, risk.DefaultLimits(), nil, nil, zerolog.Nop())

	return New(Config{
		Port:        8001,
		Log:         zerolog.Nop(),
		Config:      &config.Config{Port: 8001, ResultsDir: t.TempDir()},
		DevMode:     true,
		Evaluator:   evaluator,
		RiskManager: riskManager,
		Weights:     weights,
	})
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHandleEvaluateRequiresSymbol(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/evaluate", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleEvaluate(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/evaluate", pipeline.Request{
		Symbol: "AAPL",
		Market: domain.MarketContext{
			Symbol:         "AAPL",
			Price:          100,
			ATR:            1.0,
			AvgTradedValue: 20_000_000,
			SpreadPct:      0.2,
			ADX:            30,
			SMAShort:       110,
			SMALong:        100,
			Volatility:     20,
			LiquidityScore: 0.9,
		},
		TimeframeSignals: map[domain.Timeframe]float64{domain.Timeframe1d: 1.0},
		StrategySignals:  map[string]float64{"breakout": 1.0},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, domain.RegimeTrendingUp, result.Regime)
	assert.Len(t, result.Gates, 2)
}

type fakeSummaryReader struct {
	summaries []risk.DailySummary
	err       error
}

func (f *fakeSummaryReader) Recent(limit int) ([]risk.DailySummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.summaries) {
		return f.summaries[:limit], nil
	}
	return f.summaries, nil
}

func TestHandleRiskSummaries(t *testing.T) {
	s := newTestServer(t)
	s.summaries = &fakeSummaryReader{summaries: []risk.DailySummary{
		{Day: "2026-08-28", RealizedPnL: 420, Trades: 3, EndCapital: 100_420, PeakCapital: 100_500},
		{Day: "2026-08-27", RealizedPnL: -150, Trades: 2, EndCapital: 100_000, PeakCapital: 100_200},
	}}

	rec := doRequest(t, s, http.MethodGet, "/api/risk/summaries", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Summaries []risk.DailySummary `json:"summaries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Summaries, 2)
	assert.Equal(t, "2026-08-28", body.Summaries[0].Day)
	assert.InDelta(t, 420.0, body.Summaries[0].RealizedPnL, 1e-9)
}

func TestHandleRiskSummariesFailureEmitsErrorEvent(t *testing.T) {
	s := newTestServer(t)

	var logBuf bytes.Buffer
	s.events = events.NewManager(zerolog.New(&logBuf))
	s.summaries = &fakeSummaryReader{err: errors.New("database is locked")}

	rec := doRequest(t, s, http.MethodGet, "/api/risk/summaries", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "database is locked")
	assert.Contains(t, logBuf.String(), string(events.ErrorOccurred))
}

func TestHandleRiskStatusAndTrade(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/risk/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, true, status["can_trade"])

	// A loss beyond the daily cap flips admission
	rec = doRequest(t, s, http.MethodPost, "/api/risk/trade", map[string]float64{"profit": -2500})
	require.Equal(t, http.StatusOK, rec.Code)

	var after map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	assert.Equal(t, false, after["can_trade"])
	assert.Contains(t, after["reason"], "daily loss limit exceeded")
}
