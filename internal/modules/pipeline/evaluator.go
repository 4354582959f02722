package pipeline

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/signal-arbiter/internal/domain"
	"github.com/aristath/signal-arbiter/internal/events"
	"github.com/aristath/signal-arbiter/internal/modules/confluence"
	"github.com/aristath/signal-arbiter/internal/modules/consensus"
	"github.com/aristath/signal-arbiter/internal/modules/gates"
	"github.com/aristath/signal-arbiter/internal/modules/grading"
	"github.com/aristath/signal-arbiter/internal/modules/regime"
	"github.com/aristath/signal-arbiter/internal/modules/risk"
	"github.com/aristath/signal-arbiter/pkg/formulas"
)

// Candles carries raw OHLC series for callers that have price history
// but no precomputed indicators
type Candles struct {
	Highs  []float64 `json:"highs"`
	Lows   []float64 `json:"lows"`
	Closes []float64 `json:"closes"`
}

// Request carries everything one evaluation cycle needs. All market data
// is supplied by the caller; the evaluator itself does no I/O.
type Request struct {
	Symbol           string                       `json:"symbol"`
	Market           domain.MarketContext         `json:"market"`
	News             []domain.NewsEvent           `json:"news"`
	TimeframeSignals map[domain.Timeframe]float64 `json:"timeframe_signals"`
	SqueezeDuration  int                          `json:"squeeze_duration"`
	StrategySignals  map[string]float64           `json:"strategy_signals"`

	// Optional raw series. When the scalar regime indicators (ADX, SMAs)
	// are absent, the regime and volatility derive from these instead.
	Candles *Candles `json:"candles,omitempty"`

	// Optional sizing inputs. Sizing is skipped when EntryPrice is zero.
	AccountBalance float64              `json:"account_balance,omitempty"`
	EntryPrice     float64              `json:"entry_price,omitempty"`
	StopLossPrice  float64              `json:"stop_loss_price,omitempty"`
	RiskTolerance  domain.RiskTolerance `json:"risk_tolerance,omitempty"`
}

// Result is the full decision record for one evaluation cycle
type Result struct {
	Symbol           string                               `json:"symbol"`
	Regime           domain.MarketRegime                  `json:"regime"`
	Gates            []domain.GateVerdict                 `json:"gates"`
	GatesPassed      int                                  `json:"gates_passed"`
	ConfluenceScore  float64                              `json:"confluence_score"`
	ConfluenceMet    bool                                 `json:"confluence_met"`
	ConsensusScore   float64                              `json:"consensus_score"`
	ConsensusReached bool                                 `json:"consensus_reached"`
	Quality          domain.QualityRiskResult             `json:"quality"`
	Sizing           *domain.PositionSizingRecommendation `json:"sizing,omitempty"`
	Admitted         bool                                 `json:"admitted"`
	Timestamp        time.Time                            `json:"timestamp"`
}

// Thresholds are the admission cutoffs applied to the two scores
type Thresholds struct {
	Consensus  float64
	Confluence float64
}

// Evaluator wires the classifier, gates, scorers and grader into one
// decision pipeline. Stages are ordered so the cheapest checks run
// first; every stage still executes so the result always carries the
// full picture.
type Evaluator struct {
	classifier *regime.Classifier
	liquidity  *gates.LiquidityGate
	news       *gates.NewsGate
	confluence *confluence.Scorer
	consensus  *consensus.Scorer
	weights    *consensus.WeightStore
	grader     *grading.Grader
	sizingCfg  risk.SizingConfig
	thresholds Thresholds
	events     *events.Manager
	log        zerolog.Logger
	now        func() time.Time
}

// NewEvaluator creates the evaluation pipeline
func NewEvaluator(
	classifier *regime.Classifier,
	liquidity *gates.LiquidityGate,
	news *gates.NewsGate,
	confluenceScorer *confluence.Scorer,
	consensusScorer *consensus.Scorer,
	weights *consensus.WeightStore,
	grader *grading.Grader,
	sizingCfg risk.SizingConfig,
	thresholds Thresholds,
	ev *events.Manager,
	log zerolog.Logger,
) *Evaluator {
	return &Evaluator{
		classifier: classifier,
		liquidity:  liquidity,
		news:       news,
		confluence: confluenceScorer,
		consensus:  consensusScorer,
		weights:    weights,
		grader:     grader,
		sizingCfg:  sizingCfg,
		thresholds: thresholds,
		events:     ev,
		log:        log.With().Str("component", "pipeline").Logger(),
		now:        time.Now,
	}
}

// Evaluate runs the full pipeline for one symbol
func (e *Evaluator) Evaluate(req Request) Result {
	now := e.now()
	market := req.Market

	var detected domain.MarketRegime
	if req.Candles != nil && market.ADX == 0 && market.SMAShort == 0 && market.SMALong == 0 {
		detected = e.classifier.DetectFromSeries(req.Candles.Highs, req.Candles.Lows, req.Candles.Closes)
		if market.Volatility == 0 {
			market.Volatility = formulas.AnnualizedVolatility(formulas.CalculateReturns(req.Candles.Closes)) * 100
		}
	} else {
		detected = e.classifier.Detect(market.ADX, market.SMAShort, market.SMALong, market.Volatility)
	}

	verdicts := []domain.GateVerdict{
		e.liquidity.Evaluate(market),
		e.news.Evaluate(req.News, now),
	}
	gatesPassed := 0
	for _, v := range verdicts {
		if v.Passed {
			gatesPassed++
		}
	}

	confluenceScore := e.confluence.Score(req.TimeframeSignals, req.SqueezeDuration)
	consensusScore := e.consensus.Score(req.StrategySignals)

	quality := e.grader.Evaluate(grading.Input{
		Symbol:           req.Symbol,
		MTFScore:         confluenceScore,
		ConsensusScore:   consensusScore,
		ActiveStrategies: e.weights.ActiveCount(),
		GatesPassed:      gatesPassed,
		TotalGates:       len(verdicts),
		Volatility:       market.Volatility,
		LiquidityScore:   market.LiquidityScore,
		Regime:           detected,
	})

	result := Result{
		Symbol:           req.Symbol,
		Regime:           detected,
		Gates:            verdicts,
		GatesPassed:      gatesPassed,
		ConfluenceScore:  confluenceScore,
		ConfluenceMet:    e.confluence.IsConfluenceMet(confluenceScore, e.thresholds.Confluence),
		ConsensusScore:   consensusScore,
		ConsensusReached: e.consensus.IsConsensusReached(consensusScore, e.thresholds.Consensus),
		Quality:          quality,
		Timestamp:        now,
	}
	result.Admitted = gatesPassed == len(verdicts) &&
		result.ConfluenceMet &&
		result.ConsensusReached &&
		(quality.QualityGrade == domain.GradeBuy || quality.QualityGrade == domain.GradeStrongBuy)

	if result.Admitted && req.EntryPrice > 0 {
		rec := risk.AdaptivePositionSize(e.sizingCfg, risk.SizingInputs{
			AccountBalance: req.AccountBalance,
			EntryPrice:     req.EntryPrice,
			StopLossPrice:  req.StopLossPrice,
			SignalStrength: confluenceScore,
			Regime:         detected,
			RiskTolerance:  req.RiskTolerance,
		})
		result.Sizing = &rec
	}

	if e.events != nil {
		e.events.Emit(events.EvaluationCompleted, "pipeline", map[string]interface{}{
			"symbol":   req.Symbol,
			"regime":   string(detected),
			"grade":    string(quality.QualityGrade),
			"admitted": result.Admitted,
		})
	}

	e.log.Info().
		Str("symbol", req.Symbol).
		Str("regime", string(detected)).
		Str("grade", string(quality.QualityGrade)).
		Float64("score", quality.RiskAdjustedScore).
		Bool("admitted", result.Admitted).
		Msg("Evaluation completed")

	return result
}
