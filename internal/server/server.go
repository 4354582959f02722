package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/signal-arbiter/internal/config"
	"github.com/aristath/signal-arbiter/internal/events"
	"github.com/aristath/signal-arbiter/internal/modules/adaptive"
	"github.com/aristath/signal-arbiter/internal/modules/backtest"
	"github.com/aristath/signal-arbiter/internal/modules/consensus"
	"github.com/aristath/signal-arbiter/internal/modules/performance"
	"github.com/aristath/signal-arbiter/internal/modules/pipeline"
	"github.com/aristath/signal-arbiter/internal/modules/risk"
)

// Config holds server configuration
type Config struct {
	Port    int
	Log     zerolog.Logger
	Config  *config.Config
	DevMode bool

	Evaluator    *pipeline.Evaluator
	RiskManager  *risk.Manager
	Adaptive     *adaptive.Manager
	Weights      *consensus.WeightStore
	Backtest     *backtest.Runner
	BacktestRepo *backtest.Repository
	Performance  performance.Store
	Summaries    risk.SummaryReader
	Events       *events.Manager
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    *config.Config

	evaluator    *pipeline.Evaluator
	riskManager  *risk.Manager
	adaptive     *adaptive.Manager
	weights      *consensus.WeightStore
	backtest     *backtest.Runner
	backtestRepo *backtest.Repository
	performance  performance.Store
	summaries    risk.SummaryReader
	events       *events.Manager

	startedAt time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		log:          cfg.Log.With().Str("component", "server").Logger(),
		cfg:          cfg.Config,
		evaluator:    cfg.Evaluator,
		riskManager:  cfg.RiskManager,
		adaptive:     cfg.Adaptive,
		weights:      cfg.Weights,
		backtest:     cfg.Backtest,
		backtestRepo: cfg.BacktestRepo,
		performance:  cfg.Performance,
		summaries:    cfg.Summaries,
		events:       cfg.Events,
		startedAt:    time.Now(),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		r.Post("/evaluate", s.handleEvaluate)

		r.Route("/risk", func(r chi.Router) {
			r.Get("/status", s.handleRiskStatus)
			r.Post("/trade", s.handleRiskTrade)
			r.Get("/summaries", s.handleRiskSummaries)
		})

		r.Route("/adaptive", func(r chi.Router) {
			r.Get("/history", s.handleAdaptiveHistory)
			r.Post("/rebalance", s.handleAdaptiveRebalance)
		})

		r.Route("/backtest", func(r chi.Router) {
			r.Post("/run", s.handleBacktestRun)
			r.Get("/runs", s.handleBacktestRuns)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
