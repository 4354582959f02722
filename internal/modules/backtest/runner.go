package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/signal-arbiter/internal/events"
	"github.com/aristath/signal-arbiter/internal/modules/performance"
)

// Runner orchestrates simulation, metrics and result persistence
type Runner struct {
	simulator *Simulator
	cfg       SimulatorConfig
	events    *events.Manager
	log       zerolog.Logger
}

// NewRunner creates a backtest runner
func NewRunner(cfg SimulatorConfig, ev *events.Manager, log zerolog.Logger) *Runner {
	return &Runner{
		simulator: NewSimulator(cfg, log),
		cfg:       cfg,
		events:    ev,
		log:       log.With().Str("component", "backtest").Logger(),
	}
}

// Run replays the signals and assembles one immutable result record.
// It fails with ErrNoTrades when the simulation produces nothing.
func (r *Runner) Run(strategyID string, signals []Signal, prices map[string][]PricePoint) (*Result, error) {
	trades := r.simulator.SimulateTrades(signals, prices)
	if len(trades) == 0 {
		return nil, ErrNoTrades
	}

	metrics, err := CalculateMetrics(trades, r.cfg.InitialCapital)
	if err != nil {
		return nil, err
	}

	curve := GenerateEquityCurve(trades, r.cfg.InitialCapital)

	symbols := make([]string, 0, len(prices))
	for symbol := range prices {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	result := &Result{
		ID:             uuid.NewString(),
		StrategyID:     strategyID,
		Symbols:        symbols,
		InitialCapital: r.cfg.InitialCapital,
		FinalCapital:   curve[len(curve)-1],
		Metrics:        metrics,
		Trades:         trades,
		EquityCurve:    curve,
		DrawdownSeries: GenerateDrawdownSeries(curve),
		CreatedAt:      time.Now(),
	}

	if r.events != nil {
		r.events.Emit(events.BacktestCompleted, "backtest", map[string]interface{}{
			"strategy": strategyID,
			"trades":   metrics.TotalTrades,
			"win_rate": metrics.WinRate,
		})
	}

	r.log.Info().
		Str("strategy", strategyID).
		Int("trades", metrics.TotalTrades).
		Float64("win_rate", metrics.WinRate).
		Float64("profit_factor", metrics.ProfitFactor).
		Msg("Backtest completed")

	return result, nil
}

// CompareStrategies ranks multiple result records by total return
func CompareStrategies(results []*Result) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(results))
	for _, res := range results {
		rows = append(rows, ComparisonRow{
			StrategyID:   res.StrategyID,
			TotalTrades:  res.Metrics.TotalTrades,
			WinRate:      res.Metrics.WinRate,
			ProfitFactor: res.Metrics.ProfitFactor,
			TotalReturn:  res.Metrics.TotalReturnPct,
			MaxDrawdown:  res.Metrics.MaxDrawdown,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].TotalReturn > rows[j].TotalReturn
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return rows
}

// SaveResult writes a durable JSON snapshot of the result, one file per
// run, named by strategy and timestamp.
func (r *Runner) SaveResult(result *Result, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.json", result.StrategyID, result.CreatedAt.Format("20060102_150405"))
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write result file: %w", err)
	}

	if r.events != nil {
		r.events.Emit(events.BacktestSaved, "backtest", map[string]interface{}{
			"path": path,
		})
	}

	r.log.Info().Str("path", path).Msg("Backtest result saved")
	return path, nil
}

// TrainPerformanceStore writes the run's realized accuracy back into the
// performance store, re-tuning the weights the consensus scorer reads.
func (r *Runner) TrainPerformanceStore(store performance.Store, result *Result, lookbackDays int) error {
	byStrategy := make(map[string][]Trade)
	for _, t := range result.Trades {
		byStrategy[t.Strategy] = append(byStrategy[t.Strategy], t)
	}

	for strategy, trades := range byStrategy {
		wins := 0
		for _, t := range trades {
			if t.Win {
				wins++
			}
		}
		winRate := float64(wins) / float64(len(trades))

		metrics, err := CalculateMetrics(trades, r.cfg.InitialCapital)
		if err != nil {
			return err
		}

		rec := performance.Record{
			StrategyID:        strategy,
			LookbackDays:      lookbackDays,
			Precision:         winRate,
			Recall:            winRate,
			F1:                winRate,
			WinRate:           winRate,
			Sharpe:            metrics.Sharpe,
			TotalSignals:      len(trades),
			SuccessfulSignals: wins,
			CreatedAt:         result.CreatedAt,
		}
		if err := store.Upsert(rec); err != nil {
			return fmt.Errorf("failed to store performance for %s: %w", strategy, err)
		}
	}

	return nil
}
