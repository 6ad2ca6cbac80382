package backtest

import (
	"errors"
	"fmt"
	"time"

	"SignalForge/internal/domain/models"
	domsvc "SignalForge/internal/domain/service"

	"github.com/google/uuid"
)

// ErrInsufficientHistory is returned when the provider hands back fewer
// candles than the warm-up window. The simulator never trades a short window.
var ErrInsufficientHistory = errors.New("insufficient candle history")

const (
	defaultWarmUp     = 200
	defaultMaxCandles = 1000
	defaultMinScore   = 60
	collateralShare   = 0.10 // fixed fraction of balance risked per trade
	exitStopLoss      = "Stop Loss"
	exitTakeProfit    = "Take Profit"
	exitEndOfRun      = "End of Backtest"
)

// Config parameterizes one run. Zero values fall back to the defaults above.
type Config struct {
	InitialCapital float64
	Mode           string
	WarmUp         int
	MaxCandles     int
	MinScore       float64
}

func (c *Config) applyDefaults() {
	if c.WarmUp <= 0 {
		c.WarmUp = defaultWarmUp
	}
	if c.MaxCandles <= 0 {
		c.MaxCandles = defaultMaxCandles
	}
	if c.MinScore == 0 {
		c.MinScore = defaultMinScore
	}
	if c.Mode == "" {
		c.Mode = "BALANCED"
	}
}

// Simulator replays history bar by bar through the analyzer and generator.
// Each run owns its whole state; independent runs may execute in parallel.
type Simulator struct {
	analyzer  domsvc.Analyzer
	generator domsvc.SignalGenerator
	newRunID  func() string
}

// NewSimulator wires the simulator to an analyzer and a generator.
func NewSimulator(analyzer domsvc.Analyzer, generator domsvc.SignalGenerator) *Simulator {
	return &Simulator{analyzer: analyzer, generator: generator, newRunID: uuid.NewString}
}

// runState is the only mutable state of a run, owned by exactly one call.
type runState struct {
	balance    float64
	position   *models.Position
	entryScore float64
	trades     []models.Trade
	equity     []models.EquityPoint
}

// Run replays up to MaxCandles bars, discarding the first WarmUp as indicator
// warm-up. The full indicator and signal pipeline is recomputed over the
// growing window at every bar; at n <= 1000 the quadratic cost is accepted in
// exchange for exact parity with live evaluation.
func (s *Simulator) Run(candles []models.Candle, symbol, interval string, cfg Config) (*models.BacktestResult, error) {
	cfg.applyDefaults()
	if len(candles) < cfg.WarmUp {
		return nil, fmt.Errorf("run backtest %s: need %d candles, got %d: %w",
			symbol, cfg.WarmUp, len(candles), ErrInsufficientHistory)
	}
	if len(candles) > cfg.MaxCandles {
		candles = candles[len(candles)-cfg.MaxCandles:]
	}

	st := &runState{balance: cfg.InitialCapital}
	for i := cfg.WarmUp; i < len(candles); i++ {
		cur := candles[i]
		if st.position != nil {
			s.checkExit(st, cur)
		}
		if st.position == nil {
			if err := s.checkEntry(st, candles[:i+1], symbol, interval, cfg); err != nil {
				return nil, err
			}
		}
		st.equity = append(st.equity, models.EquityPoint{
			Time:  closeTimeOf(cur),
			Value: equityAt(st, cur.Close),
		})
	}
	if st.position != nil {
		last := candles[len(candles)-1]
		closePosition(st, last.Close, closeTimeOf(last), exitEndOfRun)
	}

	reverseTrades(st.trades)
	return &models.BacktestResult{
		RunID:       s.newRunID(),
		Symbol:      symbol,
		Interval:    interval,
		Mode:        cfg.Mode,
		Stats:       computeStats(cfg.InitialCapital, st.balance, st.trades, st.equity),
		Trades:      st.trades,
		EquityCurve: st.equity,
	}, nil
}

// checkExit tests the open position against the current bar, stop before
// target. When both could trigger within one bar the stop wins, a deliberately
// conservative worst-case ordering.
func (s *Simulator) checkExit(st *runState, cur models.Candle) {
	pos := st.position
	when := closeTimeOf(cur)
	if pos.Direction == models.DirectionBuy {
		switch {
		case cur.Low <= pos.StopLoss:
			closePosition(st, pos.StopLoss, when, exitStopLoss)
		case cur.High >= pos.TakeProfit1:
			closePosition(st, pos.TakeProfit1, when, exitTakeProfit)
		}
		return
	}
	switch {
	case cur.High >= pos.StopLoss:
		closePosition(st, pos.StopLoss, when, exitStopLoss)
	case cur.Low <= pos.TakeProfit1:
		closePosition(st, pos.TakeProfit1, when, exitTakeProfit)
	}
}

// checkEntry runs the full pipeline over the window ending at the current bar
// and opens a position when the emitted score clears the configured floor.
// The higher-timeframe context is mocked with the run's single interval.
func (s *Simulator) checkEntry(st *runState, window []models.Candle, symbol, interval string, cfg Config) error {
	a, err := s.analyzer.Analyze(window, false)
	if err != nil {
		return fmt.Errorf("analyze window: %w", err)
	}
	snap := a.Snapshot
	mtf := models.MultiTimeframeContext{
		interval: {Regime: snap.Regime, Indicators: &snap},
	}
	sig, err := s.generator.Generate(&snap, symbol, mtf, cfg.Mode)
	if err != nil {
		return fmt.Errorf("generate signal: %w", err)
	}
	if sig == nil || sig.Score < cfg.MinScore {
		return nil
	}

	collateral := st.balance * collateralShare
	if collateral <= 0 {
		return nil
	}
	cur := window[len(window)-1]
	st.balance -= collateral
	st.entryScore = sig.Score
	st.position = &models.Position{
		Direction:   sig.Direction,
		EntryPrice:  cur.Close,
		Quantity:    collateral / cur.Close,
		Collateral:  collateral,
		StopLoss:    sig.Levels.StopLoss,
		TakeProfit1: sig.Levels.TakeProfit1,
		EntryTime:   closeTimeOf(cur),
	}
	return nil
}

// closePosition realizes PnL, releases collateral back to the balance and
// appends the trade record.
func closePosition(st *runState, exitPrice float64, when time.Time, reason string) {
	pos := st.position
	pnl := (exitPrice - pos.EntryPrice) * pos.Quantity
	if pos.Direction == models.DirectionSell {
		pnl = -pnl
	}
	st.balance += pos.Collateral + pnl
	st.trades = append(st.trades, models.Trade{
		Direction:  pos.Direction,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		Quantity:   pos.Quantity,
		PnL:        pnl,
		EntryTime:  pos.EntryTime,
		ExitTime:   when,
		ExitReason: reason,
		Score:      st.entryScore,
	})
	st.position = nil
	st.entryScore = 0
}

// equityAt marks the open position to the bar close.
func equityAt(st *runState, close float64) float64 {
	if st.position == nil {
		return st.balance
	}
	pos := st.position
	unrealized := (close - pos.EntryPrice) * pos.Quantity
	if pos.Direction == models.DirectionSell {
		unrealized = -unrealized
	}
	return st.balance + pos.Collateral + unrealized
}

func closeTimeOf(c models.Candle) time.Time {
	return time.UnixMilli(c.CloseTime).UTC()
}

// reverseTrades orders the trade list newest first.
func reverseTrades(trades []models.Trade) {
	for i, j := 0, len(trades)-1; i < j; i, j = i+1, j-1 {
		trades[i], trades[j] = trades[j], trades[i]
	}
}
