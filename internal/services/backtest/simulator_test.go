package backtest

import (
	"errors"
	"math"
	"testing"
	"time"

	"SignalForge/internal/domain/models"
	"SignalForge/internal/services/indicator"
	"SignalForge/internal/services/signal"
)

// trendCandles builds an oscillating uptrend with periodic volume spikes and
// bullish taker-buy flow, enough for the pipeline to emit long entries.
func trendCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	f := func(i int) float64 { return 100 + 0.3*float64(i) + 5*math.Sin(float64(i)/2.5) }
	for i := 0; i < n; i++ {
		c := f(i)
		o := c
		if i > 0 {
			o = f(i - 1)
		}
		hi, lo := c, o
		if o > c {
			hi, lo = o, c
		}
		vol := 1000.0
		if i%10 == 0 {
			vol = 2500
		}
		out[i] = models.Candle{
			OpenTime:     int64(i) * 3_600_000,
			Open:         o,
			High:         hi * 1.002,
			Low:          lo * 0.998,
			Close:        c,
			Volume:       vol,
			CloseTime:    int64(i+1)*3_600_000 - 1,
			TakerBuyBase: vol * 0.62,
		}
	}
	return out
}

func newTestSimulator() *Simulator {
	s := NewSimulator(indicator.NewService(), signal.NewGenerator())
	s.newRunID = func() string { return "test-run" }
	return s
}

func TestRunInsufficientHistory(t *testing.T) {
	s := newTestSimulator()
	_, err := s.Run(trendCandles(150), "BTCUSDT", "1h", Config{InitialCapital: 10_000})
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestRunNeverEnters(t *testing.T) {
	s := newTestSimulator()
	res, err := s.Run(trendCandles(1000), "BTCUSDT", "1h", Config{
		InitialCapital: 10_000,
		MinScore:       101, // impossible, scores cap at 100
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Stats.TotalTrades != 0 {
		t.Fatalf("expected no trades, got %d", res.Stats.TotalTrades)
	}
	if res.Stats.NetProfit != 0 || res.Stats.FinalBalance != 10_000 {
		t.Fatalf("capital moved without trades: %+v", res.Stats)
	}
	if len(res.EquityCurve) != 800 {
		t.Fatalf("expected 800 equity samples, got %d", len(res.EquityCurve))
	}
	for _, p := range res.EquityCurve {
		if p.Value != 10_000 {
			t.Fatalf("equity moved without trades at %v: %v", p.Time, p.Value)
		}
	}
	if res.Stats.ProfitFactor.Infinite || res.Stats.ProfitFactor.Value != 0 {
		t.Fatalf("profit factor should be zero with no trades: %+v", res.Stats.ProfitFactor)
	}
	if res.Stats.MaxDrawdownPct != 0 {
		t.Fatalf("flat curve has no drawdown, got %v", res.Stats.MaxDrawdownPct)
	}
}

func TestRunCapsHistory(t *testing.T) {
	s := newTestSimulator()
	res, err := s.Run(trendCandles(1400), "BTCUSDT", "1h", Config{
		InitialCapital: 10_000,
		MinScore:       101,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.EquityCurve) != 800 {
		t.Fatalf("cap at 1000 candles should leave 800 samples, got %d", len(res.EquityCurve))
	}
}

func TestRunConservationAndOrdering(t *testing.T) {
	s := newTestSimulator()
	res, err := s.Run(trendCandles(400), "BTCUSDT", "1h", Config{InitialCapital: 10_000, Mode: "BALANCED"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Stats.TotalTrades == 0 {
		t.Fatalf("uptrend run opened no trades")
	}

	// No capital created or destroyed outside realized PnL.
	var sumPnL float64
	for _, tr := range res.Trades {
		sumPnL += tr.PnL
	}
	if diff := math.Abs(res.Stats.FinalBalance - (10_000 + sumPnL)); diff > 1e-6 {
		t.Fatalf("conservation violated by %v: final=%v pnl=%v", diff, res.Stats.FinalBalance, sumPnL)
	}

	// Newest first, and chronologically non-overlapping (never more than one
	// open position).
	for i := 1; i < len(res.Trades); i++ {
		if res.Trades[i].ExitTime.After(res.Trades[i-1].ExitTime) {
			t.Fatalf("trades not newest-first at %d", i)
		}
	}
	chron := make([]models.Trade, len(res.Trades))
	copy(chron, res.Trades)
	for i, j := 0, len(chron)-1; i < j; i, j = i+1, j-1 {
		chron[i], chron[j] = chron[j], chron[i]
	}
	for i := 1; i < len(chron); i++ {
		if chron[i].EntryTime.Before(chron[i-1].ExitTime) {
			t.Fatalf("trade %d entered before trade %d exited", i, i-1)
		}
	}

	for _, tr := range res.Trades {
		switch tr.ExitReason {
		case exitStopLoss, exitTakeProfit, exitEndOfRun:
		default:
			t.Fatalf("unknown exit reason %q", tr.ExitReason)
		}
		if tr.Score <= 55 {
			t.Fatalf("entered at or below the BALANCED score floor: %v", tr.Score)
		}
	}

	if len(res.EquityCurve) != 200 {
		t.Fatalf("expected 200 equity samples, got %d", len(res.EquityCurve))
	}
	if res.Stats.NetProfit != res.Stats.FinalBalance-res.Stats.InitialCapital {
		t.Fatalf("net profit inconsistent: %+v", res.Stats)
	}
}

func TestComputeStats(t *testing.T) {
	at := func(i int) time.Time { return time.Unix(int64(i)*3600, 0) }
	trades := []models.Trade{
		{PnL: 100, ExitTime: at(2)},
		{PnL: -50, ExitTime: at(1)},
		{PnL: 0, ExitTime: at(0)},
	}
	equity := []models.EquityPoint{
		{Time: at(0), Value: 100},
		{Time: at(1), Value: 120},
		{Time: at(2), Value: 90},
		{Time: at(3), Value: 130},
	}
	stats := computeStats(10_000, 10_050, trades, equity)

	if stats.Wins != 1 || stats.Losses != 1 {
		t.Fatalf("flat trade miscounted: %+v", stats)
	}
	if stats.WinRate != 50 {
		t.Fatalf("win rate = %v, want 50", stats.WinRate)
	}
	if stats.ProfitFactor.Infinite || stats.ProfitFactor.Value != 2 {
		t.Fatalf("profit factor = %+v, want 2", stats.ProfitFactor)
	}
	if want := 25.0; math.Abs(stats.MaxDrawdownPct-want) > 1e-9 {
		t.Fatalf("max drawdown = %v, want %v", stats.MaxDrawdownPct, want)
	}
	if stats.NetProfit != 50 || stats.NetProfitPct != 0.5 {
		t.Fatalf("net profit wrong: %+v", stats)
	}
}

func TestProfitFactorInfinite(t *testing.T) {
	pf := profitFactor(120, 0)
	if !pf.Infinite {
		t.Fatalf("wins without losses should be infinite, got %+v", pf)
	}
	b, err := pf.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"inf"` {
		t.Fatalf("infinite profit factor marshals as %s", b)
	}
}
