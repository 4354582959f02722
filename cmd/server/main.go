package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/signal-arbiter/internal/config"
	"github.com/aristath/signal-arbiter/internal/database"
	"github.com/aristath/signal-arbiter/internal/events"
	"github.com/aristath/signal-arbiter/internal/modules/adaptive"
	"github.com/aristath/signal-arbiter/internal/modules/backtest"
	"github.com/aristath/signal-arbiter/internal/modules/confluence"
	"github.com/aristath/signal-arbiter/internal/modules/consensus"
	"github.com/aristath/signal-arbiter/internal/modules/gates"
	"github.com/aristath/signal-arbiter/internal/modules/grading"
	"github.com/aristath/signal-arbiter/internal/modules/performance"
	"github.com/aristath/signal-arbiter/internal/modules/pipeline"
	"github.com/aristath/signal-arbiter/internal/modules/regime"
	"github.com/aristath/signal-arbiter/internal/modules/risk"
	"github.com/aristath/signal-arbiter/internal/scheduler"
	"github.com/aristath/signal-arbiter/internal/server"
	"github.com/aristath/signal-arbiter/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Signal Arbiter")

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	eventManager := events.NewManager(log)

	// Stores
	perfStore := performance.NewRepository(db.Conn(), log)
	historyStore := adaptive.NewHistoryRepository(db.Conn(), log)
	summaryStore := risk.NewSummaryRepository(db.Conn(), log)
	backtestRepo := backtest.NewRepository(db.Conn(), log)

	// Scoring
	weights := consensus.NewWeightStore(cfg.Strategies)
	consensusScorer := consensus.NewScorer(weights, perfStore, log)
	confluenceScorer := confluence.NewDefaultScorer()
	classifier := regime.NewClassifier(cfg.ADXThreshold, cfg.VolatilityThreshold)

	// Admission gates
	liquidityGate := gates.NewLiquidityGate(gates.DefaultLiquidityThresholds())
	newsGate := gates.NewNewsGate(gates.NewsGateConfig{
		Cooldown:       time.Duration(cfg.NewsCooldownMinutes) * time.Minute,
		SentimentFloor: cfg.NewsSentimentFloor,
	})

	// Risk and adaptive management
	riskManager := risk.NewManager(cfg.InitialCapital, risk.Limits{
		RiskPerTradePct:      cfg.RiskPerTradePct,
		DailyMaxLossPct:      cfg.DailyMaxLossPct,
		MaxDrawdownPct:       cfg.MaxDrawdownPct,
		MaxTradesPerDay:      cfg.MaxTradesPerDay,
		MaxConsecutiveLosses: cfg.MaxConsecutiveLosses,
	}, summaryStore, eventManager, log)

	adaptiveManager := adaptive.NewManager(adaptive.Config{
		DriftThreshold: cfg.RebalanceDriftThreshold,
		MinInterval:    time.Duration(cfg.RebalanceMinHours) * time.Hour,
		LookbackDays:   30,
	}, weights, perfStore, historyStore, eventManager, log)

	evaluator := pipeline.NewEvaluator(
		classifier,
		liquidityGate,
		newsGate,
		confluenceScorer,
		consensusScorer,
		weights,
		grading.NewGrader(),
		risk.DefaultSizingConfig(),
		pipeline.Thresholds{
			Consensus:  cfg.ConsensusThreshold,
			Confluence: cfg.ConfluenceThreshold,
		},
		eventManager,
		log,
	)

	backtestRunner := backtest.NewRunner(backtest.SimulatorConfig{
		InitialCapital:  cfg.InitialCapital,
		PositionSizePct: 0.10,
		CommissionRate:  cfg.CommissionRate,
		SlippageRate:    cfg.SlippageRate,
	}, eventManager, log)

	// Background jobs
	sched := scheduler.New(log)
	integrityJob := scheduler.NewIntegrityJob(db, log)
	if err := registerJobs(sched, integrityJob, adaptiveManager, riskManager, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}
	// Verify the database before accepting traffic
	if err := sched.RunNow(integrityJob); err != nil {
		log.Fatal().Err(err).Msg("Database integrity check failed")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:         cfg.Port,
		Log:          log,
		Config:       cfg,
		DevMode:      cfg.DevMode,
		Evaluator:    evaluator,
		RiskManager:  riskManager,
		Adaptive:     adaptiveManager,
		Weights:      weights,
		Backtest:     backtestRunner,
		BacktestRepo: backtestRepo,
		Performance:  perfStore,
		Summaries:    summaryStore,
		Events:       eventManager,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerJobs(
	sched *scheduler.Scheduler,
	integrityJob *scheduler.IntegrityJob,
	adaptiveManager *adaptive.Manager,
	riskManager *risk.Manager,
	log zerolog.Logger,
) error {
	// Daily weight rebalance, shortly after midnight
	if err := sched.AddJob("0 15 0 * * *", scheduler.NewRebalanceJob(adaptiveManager, nil, log)); err != nil {
		return err
	}

	// Keep the risk ledger's day boundary fresh
	if err := sched.AddJob("@every 1m", scheduler.NewRolloverJob(riskManager, log)); err != nil {
		return err
	}

	// Periodic database integrity check
	if err := sched.AddJob("@every 6h", integrityJob); err != nil {
		return err
	}

	return nil
}
