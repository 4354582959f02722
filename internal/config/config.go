package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	ResultsDir   string
	LogLevel     string
	Port         int
	DevMode      bool

	// Capital risk limits
	InitialCapital       float64
	RiskPerTradePct      float64 // % of capital risked per trade
	DailyMaxLossPct      float64 // daily loss limit as % of capital
	MaxDrawdownPct       float64 // max drawdown from peak as %
	MaxTradesPerDay      int
	MaxConsecutiveLosses int

	// Scoring thresholds
	ConsensusThreshold  float64
	ConfluenceThreshold float64
	ADXThreshold        float64
	VolatilityThreshold float64
	NewsCooldownMinutes int
	NewsSentimentFloor  float64 // most negative tolerable sentiment

	// Strategy roster participating in consensus
	Strategies []string

	// Adaptive weight manager
	RebalanceDriftThreshold float64 // max abs weight delta before a rebalance commits
	RebalanceMinHours       int     // minimum hours between non-forced rebalances

	// Backtest
	CommissionRate float64
	SlippageRate   float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("GO_PORT", 8001),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		DatabasePath: getEnv("DATABASE_PATH", "./data/arbiter.db"),
		ResultsDir:   getEnv("RESULTS_DIR", "./data/backtests"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		InitialCapital:       getEnvAsFloat("INITIAL_CAPITAL", 100000),
		RiskPerTradePct:      getEnvAsFloat("RISK_PER_TRADE_PCT", 1.0),
		DailyMaxLossPct:      getEnvAsFloat("DAILY_MAX_LOSS_PCT", 2.0),
		MaxDrawdownPct:       getEnvAsFloat("MAX_DRAWDOWN_PCT", 10.0),
		MaxTradesPerDay:      getEnvAsInt("MAX_TRADES_PER_DAY", 10),
		MaxConsecutiveLosses: getEnvAsInt("MAX_CONSECUTIVE_LOSSES", 3),

		ConsensusThreshold:  getEnvAsFloat("CONSENSUS_THRESHOLD", 2.0),
		ConfluenceThreshold: getEnvAsFloat("CONFLUENCE_THRESHOLD", 0.7),
		ADXThreshold:        getEnvAsFloat("ADX_THRESHOLD", 25),
		VolatilityThreshold: getEnvAsFloat("VOLATILITY_THRESHOLD", 30),
		NewsCooldownMinutes: getEnvAsInt("NEWS_COOLDOWN_MINUTES", 60),
		NewsSentimentFloor:  getEnvAsFloat("NEWS_SENTIMENT_FLOOR", -0.5),

		Strategies: getEnvAsList("STRATEGIES", []string{"breakout", "momentum", "squeeze", "mean_reversion"}),

		RebalanceDriftThreshold: getEnvAsFloat("REBALANCE_DRIFT_THRESHOLD", 0.05),
		RebalanceMinHours:       getEnvAsInt("REBALANCE_MIN_HOURS", 24),

		CommissionRate: getEnvAsFloat("COMMISSION_RATE", 0.001),
		SlippageRate:   getEnvAsFloat("SLIPPAGE_RATE", 0.0005),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and sane
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}

	if c.InitialCapital <= 0 {
		return fmt.Errorf("INITIAL_CAPITAL must be positive")
	}

	if c.DailyMaxLossPct <= 0 || c.MaxDrawdownPct <= 0 {
		return fmt.Errorf("loss limits must be positive percentages")
	}

	if c.RiskPerTradePct <= 0 || c.RiskPerTradePct > 100 {
		return fmt.Errorf("RISK_PER_TRADE_PCT must be in (0, 100]")
	}

	if len(c.Strategies) == 0 {
		return fmt.Errorf("STRATEGIES must name at least one strategy")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var items []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		if len(items) > 0 {
			return items
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
