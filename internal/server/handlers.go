package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/signal-arbiter/internal/domain"
	"github.com/aristath/signal-arbiter/internal/modules/backtest"
	"github.com/aristath/signal-arbiter/internal/modules/pipeline"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "signal-arbiter",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleSystemStatus handles system status requests
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := map[string]interface{}{
		"status":         "running",
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"weights":        s.weights.Snapshot(),
		"memory": map[string]interface{}{
			"alloc_mb":       m.Alloc / 1024 / 1024,
			"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
			"sys_mb":         m.Sys / 1024 / 1024,
			"num_gc":         m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleEvaluate runs the full evaluation pipeline for one symbol
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	result := s.evaluator.Evaluate(req)
	s.writeJSON(w, http.StatusOK, result)
}

// handleRiskStatus reports the capital state, trade admission and
// circuit breaker status
func (s *Server) handleRiskStatus(w http.ResponseWriter, r *http.Request) {
	canTrade, reason := s.riskManager.CanTrade()
	tripped, breakerReason := s.riskManager.CheckCircuitBreaker()

	response := map[string]interface{}{
		"state":     s.riskManager.Snapshot(),
		"can_trade": canTrade,
		"circuit_breaker": map[string]interface{}{
			"tripped": tripped,
			"reason":  breakerReason,
		},
	}
	if reason != "" {
		response["reason"] = reason
	}

	s.writeJSON(w, http.StatusOK, response)
}

type tradeRequest struct {
	Profit float64 `json:"profit"`
}

// handleRiskTrade records one realized trade outcome
func (s *Server) handleRiskTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.riskManager.UpdateTrade(req.Profit)
	canTrade, reason := s.riskManager.CanTrade()

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"state":     s.riskManager.Snapshot(),
		"can_trade": canTrade,
		"reason":    reason,
	})
}

// handleRiskSummaries lists recent archived trading days
func (s *Server) handleRiskSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.summaries.Recent(30)
	if err != nil {
		s.emitError(err, map[string]interface{}{"handler": "risk_summaries"})
		s.writeError(w, http.StatusInternalServerError, "failed to load summaries: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"summaries": summaries})
}

// handleAdaptiveHistory returns the rebalance audit trail
func (s *Server) handleAdaptiveHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.adaptive.History()
	if err != nil {
		s.emitError(err, map[string]interface{}{"handler": "adaptive_history"})
		s.writeError(w, http.StatusInternalServerError, "failed to load history: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
		"current": s.weights.Snapshot(),
	})
}

type rebalanceRequest struct {
	Regime domain.MarketRegime `json:"regime"`
	Force  bool                `json:"force"`
}

// handleAdaptiveRebalance triggers a weight rebalance on demand
func (s *Server) handleAdaptiveRebalance(w http.ResponseWriter, r *http.Request) {
	var req rebalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Regime == "" {
		req.Regime = domain.RegimeSideways
	}

	committed, weights, reason := s.adaptive.Rebalance(req.Regime, req.Force)

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"committed": committed,
		"weights":   weights,
		"reason":    reason,
	})
}

type backtestRequest struct {
	StrategyID       string                           `json:"strategy_id"`
	Signals          []backtest.Signal                `json:"signals"`
	Prices           map[string][]backtest.PricePoint `json:"prices"`
	Save             bool                             `json:"save"`
	TrainLookback    int                              `json:"train_lookback_days"`
	IncludeAllTrades bool                             `json:"include_all_trades"`
}

// handleBacktestRun replays historical signals and returns the result.
// With save=true the full result is snapshotted to disk and a summary
// row recorded; with train_lookback_days>0 the run re-trains the
// performance store.
func (s *Server) handleBacktestRun(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.StrategyID == "" {
		s.writeError(w, http.StatusBadRequest, "strategy_id is required")
		return
	}
	if len(req.Signals) == 0 {
		s.writeError(w, http.StatusBadRequest, "signals are required")
		return
	}

	result, err := s.backtest.Run(req.StrategyID, req.Signals, req.Prices)
	if err != nil {
		if err == backtest.ErrNoTrades {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.emitError(err, map[string]interface{}{"handler": "backtest_run", "strategy_id": req.StrategyID})
		s.writeError(w, http.StatusInternalServerError, "backtest failed: "+err.Error())
		return
	}

	response := map[string]interface{}{
		"id":              result.ID,
		"strategy_id":     result.StrategyID,
		"symbols":         result.Symbols,
		"initial_capital": result.InitialCapital,
		"final_capital":   result.FinalCapital,
		"metrics":         result.Metrics,
		"equity_curve":    result.EquityCurve,
		"drawdown_series": result.DrawdownSeries,
		"created_at":      result.CreatedAt,
	}
	if req.IncludeAllTrades {
		response["trades"] = result.Trades
	}

	if req.Save {
		path, err := s.backtest.SaveResult(result, s.cfg.ResultsDir)
		if err != nil {
			s.emitError(err, map[string]interface{}{"handler": "backtest_run", "stage": "save"})
			s.writeError(w, http.StatusInternalServerError, "failed to save result: "+err.Error())
			return
		}
		if err := s.backtestRepo.RecordRun(result, path); err != nil {
			s.emitError(err, map[string]interface{}{"handler": "backtest_run", "stage": "record"})
			s.writeError(w, http.StatusInternalServerError, "failed to record run: "+err.Error())
			return
		}
		response["result_path"] = path
	}

	if req.TrainLookback > 0 {
		if err := s.backtest.TrainPerformanceStore(s.performance, result, req.TrainLookback); err != nil {
			s.emitError(err, map[string]interface{}{"handler": "backtest_run", "stage": "train"})
			s.writeError(w, http.StatusInternalServerError, "failed to train performance store: "+err.Error())
			return
		}
		response["trained"] = true
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleBacktestRuns lists recent stored backtest runs
func (s *Server) handleBacktestRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.backtestRepo.RecentRuns(20)
	if err != nil {
		s.emitError(err, map[string]interface{}{"handler": "backtest_runs"})
		s.writeError(w, http.StatusInternalServerError, "failed to load runs: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// emitError publishes a server failure to the event bus when one is wired
func (s *Server) emitError(err error, context map[string]interface{}) {
	if s.events == nil {
		return
	}
	s.events.EmitError("server", err, context)
}
