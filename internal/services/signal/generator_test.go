package signal

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"SignalForge/internal/domain/models"
	"SignalForge/internal/services/indicator"
)

// trendCandles builds an oscillating uptrend: a steady drift with pullbacks
// so RSI settles in a tradable zone instead of pinning at 100. Every tenth
// bar carries a volume spike and taker-buy flow leans bullish throughout.
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

// chopCandles builds pure sideways oscillation with no drift.
func chopCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	f := func(i int) float64 { return 100 + 3*math.Sin(2.7*float64(i)) }
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
		out[i] = models.Candle{
			OpenTime:     int64(i) * 3_600_000,
			Open:         o,
			High:         hi * 1.003,
			Low:          lo * 0.997,
			Close:        c,
			Volume:       1000,
			CloseTime:    int64(i+1)*3_600_000 - 1,
			TakerBuyBase: 500,
		}
	}
	return out
}

// buySetup is a hand-built snapshot with every category favoring a long.
func buySetup() *models.IndicatorSnapshot {
	return &models.IndicatorSnapshot{
		Price:         100,
		RSI:           60,
		RSIPrev:       55,
		MACD:          models.MACDValue{Value: 0.5, Signal: 0, Histogram: 0.5},
		EMA9:          99.5,
		EMA20:         98,
		EMA50:         95,
		SMA200:        90,
		ATR:           1.5,
		ADX:           models.ADXValue{ADX: 30, PlusDI: 25, MinusDI: 10},
		Stochastic:    models.StochasticValue{K: 60, D: 50, Histogram: 10},
		Support:       99,
		Resistance:    110,
		Patterns:      models.PatternFlags{BullishEngulfing: true},
		VolumeStats:   models.VolumeStats{Current: 2500, Average: 1000, Spike: true},
		BuyerPressure: models.BuyerPressure{Ratio: 0.6, Label: "BULLISH"},
		Accumulation:  models.AccumulationResult{Detected: true, Strength: 0.8},
		Choppiness:    30,
		Regime:        models.RegimeTrendingBull,
	}
}

func fixedGenerator() *Generator {
	return &Generator{
		now:   func() time.Time { return time.Unix(1_700_000_000, 0) },
		newID: func() string { return "test-id" },
	}
}

func TestGenerateUnknownMode(t *testing.T) {
	g := NewGenerator()
	if _, err := g.Generate(buySetup(), "BTCUSDT", nil, "YOLO"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestParseModeNormalizes(t *testing.T) {
	m, err := ParseMode(" balanced ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m != ModeBalanced {
		t.Fatalf("expected BALANCED, got %s", m)
	}
}

func TestUptrendBalancedEmitsBuy(t *testing.T) {
	candles := trendCandles(250)
	svc := indicator.NewService()
	g := fixedGenerator()

	var emitted []*models.Signal
	for i := 210; i <= len(candles); i++ {
		a, err := svc.Analyze(candles[:i], false)
		if err != nil {
			t.Fatalf("analyze at %d: %v", i, err)
		}
		sig, err := g.Generate(&a.Snapshot, "BTCUSDT", nil, "BALANCED")
		if err != nil {
			t.Fatalf("generate at %d: %v", i, err)
		}
		if sig != nil {
			emitted = append(emitted, sig)
		}
	}
	if len(emitted) == 0 {
		t.Fatalf("clean uptrend emitted no signals")
	}
	var best float64
	for _, sig := range emitted {
		if sig.Direction != models.DirectionBuy {
			t.Fatalf("uptrend emitted %s", sig.Direction)
		}
		if sig.Score <= 55 {
			t.Fatalf("emitted score %.2f at or below the BALANCED floor", sig.Score)
		}
		if sig.Score > best {
			best = sig.Score
		}
		if !(sig.Levels.StopLoss < sig.Entry && sig.Entry < sig.Levels.TakeProfit1) {
			t.Fatalf("bad levels for BUY: %+v", sig.Levels)
		}
		if sig.RiskReward <= 0 {
			t.Fatalf("risk:reward not set: %v", sig.RiskReward)
		}
	}
	if best < 60 {
		t.Fatalf("no emission reached score 60, best %.2f", best)
	}
}

func TestSidewaysConservativeNeverEmits(t *testing.T) {
	candles := chopCandles(250)
	svc := indicator.NewService()
	g := fixedGenerator()

	for i := 200; i <= len(candles); i++ {
		a, err := svc.Analyze(candles[:i], false)
		if err != nil {
			t.Fatalf("analyze at %d: %v", i, err)
		}
		sig, err := g.Generate(&a.Snapshot, "BTCUSDT", nil, "CONSERVATIVE")
		if err != nil {
			t.Fatalf("generate at %d: %v", i, err)
		}
		if sig != nil {
			t.Fatalf("sideways noise emitted a signal at %d: %+v", i, sig)
		}
	}
}

func TestThresholdMonotonicity(t *testing.T) {
	candles := trendCandles(250)
	svc := indicator.NewService()
	g := fixedGenerator()
	thresholds := []float64{0.5, 0.6, 0.7, 0.8, 0.9}

	emittedAt := make([]map[int]bool, len(thresholds))
	for ti, th := range thresholds {
		cfg := ConfigFor(ModeBalanced)
		cfg.ScoreToEmit = th
		emittedAt[ti] = make(map[int]bool)
		for i := 210; i <= len(candles); i++ {
			a, err := svc.Analyze(candles[:i], false)
			if err != nil {
				t.Fatalf("analyze at %d: %v", i, err)
			}
			if g.run(&a.Snapshot, "BTCUSDT", nil, ModeBalanced, cfg) != nil {
				emittedAt[ti][i] = true
			}
		}
	}
	for ti := 1; ti < len(thresholds); ti++ {
		for i := range emittedAt[ti] {
			if !emittedAt[ti-1][i] {
				t.Fatalf("tick %d emits at threshold %.2f but not at %.2f",
					i, thresholds[ti], thresholds[ti-1])
			}
		}
	}
}

func TestRiskyMomentumFloor(t *testing.T) {
	snap := buySetup()
	// Everything still favors a long except momentum itself.
	snap.RSI = 80
	snap.RSIPrev = 85
	snap.Stochastic = models.StochasticValue{K: 40, D: 50, Histogram: -10}
	snap.MACD = models.MACDValue{Value: -0.2, Signal: 0, Histogram: -0.2}
	g := fixedGenerator()

	sig, err := g.Generate(snap, "BTCUSDT", nil, "RISKY")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig != nil {
		t.Fatalf("RISKY should reject momentum below its floor, got %+v", sig)
	}

	sig, err = g.Generate(snap, "BTCUSDT", nil, "BALANCED")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig == nil {
		t.Fatalf("BALANCED carries no momentum floor, expected a signal")
	}
}

func TestConservativeRegimeGate(t *testing.T) {
	g := fixedGenerator()

	choppy := buySetup()
	choppy.Choppiness = 70
	sig, err := g.Generate(choppy, "BTCUSDT", nil, "CONSERVATIVE")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig != nil {
		t.Fatalf("CONSERVATIVE should abort above the chop ceiling")
	}

	sig, err = g.Generate(choppy, "BTCUSDT", nil, "BALANCED")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig == nil {
		t.Fatalf("BALANCED should only warn on chop")
	}
	found := false
	for _, w := range sig.Warnings {
		if w == "choppy market, sideways conditions disfavor trend entries" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing chop warning, got %v", sig.Warnings)
	}
}

func TestConservativeRejectsCounterTrend(t *testing.T) {
	snap := buySetup()
	snap.Regime = models.RegimeTrendingBear // bias still reads bullish off SMA200
	g := fixedGenerator()

	sig, err := g.Generate(snap, "BTCUSDT", nil, "CONSERVATIVE")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig != nil {
		t.Fatalf("counter-trend long should be rejected in CONSERVATIVE")
	}
}

func TestDailyRegimeOverridesPriceBias(t *testing.T) {
	snap := buySetup()
	snap.SMA200 = 105 // price below the long average
	g := fixedGenerator()

	sig, err := g.Generate(snap, "BTCUSDT", nil, "BALANCED")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig != nil {
		t.Fatalf("bearish price bias with a long setup should not emit, got %+v", sig)
	}

	mtf := models.MultiTimeframeContext{"1d": {Regime: models.RegimeTrendingBull}}
	sig, err = g.Generate(snap, "BTCUSDT", mtf, "BALANCED")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig == nil {
		t.Fatalf("daily bull regime should flip the bias long")
	}
	if sig.Direction != models.DirectionBuy {
		t.Fatalf("expected BUY, got %s", sig.Direction)
	}
	found := false
	for _, w := range sig.Warnings {
		if w == "price on the wrong side of SMA200 for this direction" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing SMA200 warning, got %v", sig.Warnings)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	g := fixedGenerator()
	snap := buySetup()

	s1, err := g.Generate(snap, "BTCUSDT", nil, "BALANCED")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	s2, err := g.Generate(snap, "BTCUSDT", nil, "BALANCED")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if s1 == nil || s2 == nil {
		t.Fatalf("expected signals, got %v and %v", s1, s2)
	}
	if !reflect.DeepEqual(s1, s2) {
		t.Fatalf("repeated evaluation differs:\n%+v\n%+v", s1, s2)
	}
}

func TestBuildLevelsRiskReward(t *testing.T) {
	snap := buySetup()
	snap.Support = 50 // structure far away, the ATR stop stands
	levels, rr := buildLevels(snap, models.DirectionBuy, ModeBalanced)

	wantStop := snap.Price - snap.ATR*1.5
	if math.Abs(levels.StopLoss-wantStop) > 1e-9 {
		t.Fatalf("stop = %v, want %v", levels.StopLoss, wantStop)
	}
	if math.Abs(rr-1.5) > 1e-9 {
		t.Fatalf("risk:reward = %v, want 1.5", rr)
	}

	snap.Support = 99 // tight structure drags the stop under it
	levels, _ = buildLevels(snap, models.DirectionBuy, ModeBalanced)
	if want := 99 * 0.98; math.Abs(levels.StopLoss-want) > 1e-9 {
		t.Fatalf("clamped stop = %v, want %v", levels.StopLoss, want)
	}
}

func TestBuildLevelsSellStructure(t *testing.T) {
	snap := buySetup()
	snap.Resistance = 150 // structure far away, the ATR stop stands
	levels, _ := buildLevels(snap, models.DirectionSell, ModeBalanced)

	wantStop := snap.Price + snap.ATR*1.5
	if math.Abs(levels.StopLoss-wantStop) > 1e-9 {
		t.Fatalf("stop = %v, want %v", levels.StopLoss, wantStop)
	}

	snap.Resistance = 101 // tight structure drags the stop over it
	levels, _ = buildLevels(snap, models.DirectionSell, ModeBalanced)
	if want := 101 * 1.02; math.Abs(levels.StopLoss-want) > 1e-9 {
		t.Fatalf("clamped stop = %v, want %v", levels.StopLoss, want)
	}
}

func TestScalpingBoosters(t *testing.T) {
	snap := buySetup()
	snap.EMA9 = 99 // above EMA20, fast alignment fires
	g := fixedGenerator()

	sig, err := g.Generate(snap, "BTCUSDT", nil, "SCALPING")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sig == nil {
		t.Fatalf("expected a SCALPING signal")
	}
	var surge, fast bool
	for _, r := range sig.Reasons {
		switch r.Text {
		case "momentum surge":
			surge = true
		case "fast EMA alignment":
			fast = true
		}
	}
	if !surge || !fast {
		t.Fatalf("expected both scalping boosters, got %+v", sig.Reasons)
	}
}
