package backtest

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SimulatorConfig holds the trade simulation parameters
type SimulatorConfig struct {
	InitialCapital  float64
	PositionSizePct float64 // fraction of capital per position, e.g. 0.1
	CommissionRate  float64 // per side, e.g. 0.001
	SlippageRate    float64 // per side, e.g. 0.0005
}

// DefaultSimulatorConfig returns the stock simulation parameters
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		InitialCapital:  100_000,
		PositionSizePct: 0.10,
		CommissionRate:  0.001,
		SlippageRate:    0.0005,
	}
}

// Simulator replays historical signals against price series
type Simulator struct {
	cfg SimulatorConfig
	log zerolog.Logger
}

// NewSimulator creates a simulator
func NewSimulator(cfg SimulatorConfig, log zerolog.Logger) *Simulator {
	return &Simulator{
		cfg: cfg,
		log: log.With().Str("component", "backtest").Logger(),
	}
}

// openLot is one open position unit awaiting a matching close
type openLot struct {
	entryDate  time.Time
	entryPrice float64
	shares     float64
	strategy   string
}

// SimulateTrades replays the signals against the price data and returns
// the realized round-trips.
//
// Open positions are kept in a per-symbol FIFO queue: each SELL closes
// the oldest open lot, and lots still open when the price data runs out
// are closed at the final bar (the horizon). Symbols simulate
// independently and in parallel; each symbol starts from the configured
// initial capital and the merged trade list is ordered by exit date.
func (s *Simulator) SimulateTrades(signals []Signal, prices map[string][]PricePoint) []Trade {
	bySymbol := make(map[string][]Signal)
	for _, sig := range signals {
		bySymbol[sig.Symbol] = append(bySymbol[sig.Symbol], sig)
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		merged []Trade
	)

	for symbol, symbolSignals := range bySymbol {
		series, ok := prices[symbol]
		if !ok || len(series) == 0 {
			s.log.Warn().Str("symbol", symbol).Msg("No price data for symbol, skipping")
			continue
		}

		wg.Add(1)
		go func(symbol string, symbolSignals []Signal, series []PricePoint) {
			defer wg.Done()

			trades := s.simulateSymbol(symbol, symbolSignals, series)

			mu.Lock()
			merged = append(merged, trades...)
			mu.Unlock()
		}(symbol, symbolSignals, series)
	}

	wg.Wait()

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].ExitDate.Before(merged[j].ExitDate)
	})

	return merged
}

func (s *Simulator) simulateSymbol(symbol string, signals []Signal, series []PricePoint) []Trade {
	sort.Slice(signals, func(i, j int) bool {
		return signals[i].Date.Before(signals[j].Date)
	})

	priceAt := make(map[string]float64, len(series))
	for _, p := range series {
		priceAt[p.Date.Format("2006-01-02")] = p.Close
	}

	capital := s.cfg.InitialCapital
	var lots []openLot
	var trades []Trade

	for _, sig := range signals {
		price, ok := priceAt[sig.Date.Format("2006-01-02")]
		if !ok || price <= 0 {
			continue
		}

		switch sig.Side {
		case SideBuy:
			entryPrice := price * (1 + s.cfg.SlippageRate)
			shares := s.cfg.PositionSizePct * capital / entryPrice
			if shares <= 0 {
				continue
			}
			lots = append(lots, openLot{
				entryDate:  sig.Date,
				entryPrice: entryPrice,
				shares:     shares,
				strategy:   sig.Strategy,
			})

		case SideSell:
			if len(lots) == 0 {
				continue
			}
			// FIFO: the oldest open lot matches this close
			lot := lots[0]
			lots = lots[1:]

			trade := s.closeLot(symbol, lot, sig.Date, price)
			capital += trade.PnL
			trades = append(trades, trade)
		}
	}

	// Horizon close: whatever is still open exits at the final bar
	last := series[len(series)-1]
	for _, lot := range lots {
		if last.Close <= 0 || last.Date.Before(lot.entryDate) {
			continue
		}
		trade := s.closeLot(symbol, lot, last.Date, last.Close)
		capital += trade.PnL
		trades = append(trades, trade)
	}

	return trades
}

func (s *Simulator) closeLot(symbol string, lot openLot, exitDate time.Time, rawExit float64) Trade {
	exitPrice := rawExit * (1 - s.cfg.SlippageRate)

	gross := lot.shares * (exitPrice - lot.entryPrice)
	commission := s.cfg.CommissionRate * lot.shares * (lot.entryPrice + exitPrice)
	pnl := gross - commission

	cost := lot.shares * lot.entryPrice
	pnlPct := 0.0
	if cost > 0 {
		pnlPct = pnl / cost * 100
	}

	return Trade{
		Symbol:      symbol,
		Strategy:    lot.strategy,
		EntryDate:   lot.entryDate,
		ExitDate:    exitDate,
		EntryPrice:  lot.entryPrice,
		ExitPrice:   exitPrice,
		Shares:      lot.shares,
		PnL:         pnl,
		PnLPct:      pnlPct,
		HoldingDays: int(exitDate.Sub(lot.entryDate).Hours() / 24),
		Win:         pnl > 0,
	}
}
