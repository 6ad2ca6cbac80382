package signal

import (
	"math"
	"time"

	"SignalForge/internal/domain/models"
	domsvc "SignalForge/internal/domain/service"
	"SignalForge/internal/services/indicator"

	"github.com/google/uuid"
)

// Generator is the stateless scoring engine. Every evaluation is a pure
// function of the snapshot, the timeframe context and the mode preset; only
// the signal envelope (ID, timestamp) comes from the injected clock.
type Generator struct {
	now   func() time.Time
	newID func() string
}

// NewGenerator creates the generator with the real clock.
func NewGenerator() *Generator {
	return &Generator{now: time.Now, newID: uuid.NewString}
}

// Generate runs one tick of the gated state machine. A (nil, nil) return is
// the common outcome of a tick with no qualifying setup.
func (g *Generator) Generate(snap *models.IndicatorSnapshot, symbol string, mtf models.MultiTimeframeContext, mode string) (*models.Signal, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	return g.run(snap, symbol, mtf, m, ConfigFor(m)), nil
}

type bias int

const (
	biasNeutral bias = iota
	biasBullish
	biasBearish
)

// run executes the gates in order: regime, bias, scoring, emission, levels.
// Any gate may short-circuit to nil.
func (g *Generator) run(snap *models.IndicatorSnapshot, symbol string, mtf models.MultiTimeframeContext, mode Mode, cfg ModeConfig) *models.Signal {
	var warnings []string

	// Regime gate.
	if snap.Choppiness > chopCeiling {
		if cfg.AbortOnChop {
			return nil
		}
		if cfg.WarnOnChop {
			warnings = append(warnings, "choppy market, sideways conditions disfavor trend entries")
		}
	}
	if indicator.Defined(snap.ADX.ADX) && snap.ADX.ADX < weakADXFloor {
		if cfg.AbortOnWeakADX {
			return nil
		}
		warnings = append(warnings, "weak trend, ADX below 20")
	}

	// Bias gate.
	b := deriveBias(snap, mtf)
	if b == biasNeutral && cfg.RejectNeutral {
		return nil
	}
	dir := directionFor(b, snap)
	if cfg.RejectCounter {
		if dir == models.DirectionBuy && snap.Regime == models.RegimeTrendingBear {
			return nil
		}
		if dir == models.DirectionSell && snap.Regime == models.RegimeTrendingBull {
			return nil
		}
	}
	if indicator.Defined(snap.SMA200) {
		wrongSide := (dir == models.DirectionBuy && snap.Price < snap.SMA200) ||
			(dir == models.DirectionSell && snap.Price > snap.SMA200)
		if wrongSide {
			if cfg.AbortWrongSMA {
				return nil
			}
			warnings = append(warnings, "price on the wrong side of SMA200 for this direction")
		}
	}

	// Scoring gate.
	momentum := scoreMomentum(snap, dir, mode, cfg.MomentumDivisor)
	levelScore, roomWarnings := scoreLevels(snap, dir)
	warnings = append(warnings, roomWarnings...)

	cats := []struct {
		name   string
		score  float64
		weight float64
	}{
		{"momentum", momentum, cfg.Weights.Momentum},
		{"trend", scoreTrend(snap, dir), cfg.Weights.Trend},
		{"trendStrength", scoreTrendStrength(snap), cfg.Weights.TrendStrength},
		{"levels", levelScore, cfg.Weights.Levels},
		{"volume", scoreVolume(snap, dir), cfg.Weights.Volume},
		{"patterns", scorePatterns(snap, dir), cfg.Weights.Patterns},
		{"divergence", scoreDivergence(snap, dir), cfg.Weights.Divergence},
		{"accumulation", scoreAccumulation(snap, dir), cfg.Weights.Accumulation},
	}

	agg := 0.0
	converging := 0
	subscores := make(map[string]float64, len(cats))
	var reasons []models.Reason
	for _, c := range cats {
		subscores[c.name] = c.score
		agg += c.score * c.weight
		if c.weight == 0 {
			continue
		}
		if c.score >= cfg.ConvergeFloor {
			converging++
			reasons = append(reasons, models.Reason{Text: reasonText[c.name], Weight: c.score * c.weight})
		}
	}
	in := boosterInput{snap: snap, direction: dir, momentum: momentum}
	for _, bst := range boosters {
		if bst.appliesTo(mode) && bst.fires(in) {
			agg += bst.boost
			reasons = append(reasons, models.Reason{Text: bst.name, Weight: bst.boost})
		}
	}
	agg = clamp01(agg)

	// Emission gate.
	if agg <= cfg.ScoreToEmit {
		return nil
	}
	if cfg.MinMomentum > 0 && momentum < cfg.MinMomentum {
		return nil
	}
	if converging < cfg.MinConverging {
		return nil
	}

	levels, rr := buildLevels(snap, dir, mode)
	score := agg * 100

	return &models.Signal{
		ID:         g.newID(),
		Symbol:     symbol,
		Direction:  dir,
		Timestamp:  g.now().UTC(),
		Entry:      snap.Price,
		Score:      score,
		Confidence: models.ConfidenceForScore(score),
		Subscores:  subscores,
		Reasons:    reasons,
		Warnings:   warnings,
		Levels:     levels,
		RiskReward: rr,
		Indicators: *snap,
		Regime:     snap.Regime,
		Mode:       string(mode),
	}
}

var reasonText = map[string]string{
	"momentum":      "momentum aligned with the entry direction",
	"trend":         "EMA structure supports the direction",
	"trendStrength": "ADX confirms an established trend",
	"levels":        "entry sits near a structural level",
	"volume":        "volume behavior backs the move",
	"patterns":      "candlestick pattern in the signal direction",
	"divergence":    "oscillator divergence supports the entry",
	"accumulation":  "volume accumulating under a flat price",
}

// deriveBias prefers the daily regime, falls back to 4h, then to price
// versus SMA200. A nil context degrades to the single-timeframe fallback.
func deriveBias(snap *models.IndicatorSnapshot, mtf models.MultiTimeframeContext) bias {
	for _, tf := range []string{"1d", "4h"} {
		ctx, ok := mtf[tf]
		if !ok {
			continue
		}
		switch ctx.Regime {
		case models.RegimeTrendingBull:
			return biasBullish
		case models.RegimeTrendingBear:
			return biasBearish
		}
	}
	if indicator.Defined(snap.SMA200) {
		if snap.Price > snap.SMA200 {
			return biasBullish
		}
		if snap.Price < snap.SMA200 {
			return biasBearish
		}
	}
	return biasNeutral
}

// directionFor maps bias to the initial direction. A neutral bias sides with
// the short trend, a recovery above EMA20 reads as BUY.
func directionFor(b bias, snap *models.IndicatorSnapshot) models.Direction {
	switch b {
	case biasBullish:
		return models.DirectionBuy
	case biasBearish:
		return models.DirectionSell
	default:
		if indicator.Defined(snap.EMA20) && snap.Price < snap.EMA20 {
			return models.DirectionSell
		}
		return models.DirectionBuy
	}
}

func scoreMomentum(snap *models.IndicatorSnapshot, dir models.Direction, mode Mode, divisor float64) float64 {
	var sum float64
	if indicator.Defined(snap.RSI) {
		sum += rsiZone(snap.RSI, dir)
		if indicator.Defined(snap.RSIPrev) {
			rising := snap.RSI > snap.RSIPrev
			if (dir == models.DirectionBuy && rising) || (dir == models.DirectionSell && !rising) {
				sum += 0.5
			}
		}
	}
	st := snap.Stochastic
	if indicator.Defined(st.K) && indicator.Defined(st.D) {
		if (dir == models.DirectionBuy && st.K > st.D) || (dir == models.DirectionSell && st.K < st.D) {
			sum += 0.5
		}
	}
	if indicator.Defined(snap.MACD.Histogram) {
		if (dir == models.DirectionBuy && snap.MACD.Histogram > 0) ||
			(dir == models.DirectionSell && snap.MACD.Histogram < 0) {
			sum += 1
		}
	}
	if mode == ModeScalping && indicator.Defined(snap.EMA9) {
		if (dir == models.DirectionBuy && snap.Price > snap.EMA9) ||
			(dir == models.DirectionSell && snap.Price < snap.EMA9) {
			sum += 0.5
		}
	}
	return clamp01(sum / divisor)
}

// rsiZone scores the RSI against the healthy entry band for the direction.
// SELL mirrors the reading so one table serves both sides.
func rsiZone(rsi float64, dir models.Direction) float64 {
	if dir == models.DirectionSell {
		rsi = 100 - rsi
	}
	switch {
	case rsi >= 45 && rsi <= 70:
		return 1
	case rsi < 30:
		return 0.8
	case rsi < 45:
		return 0.5
	default:
		return 0.3
	}
}

func scoreTrend(snap *models.IndicatorSnapshot, dir models.Direction) float64 {
	if !indicator.Defined(snap.EMA20) || !indicator.Defined(snap.EMA50) {
		return 0
	}
	var s float64
	aligned := snap.EMA20 > snap.EMA50
	if dir == models.DirectionSell {
		aligned = snap.EMA20 < snap.EMA50
	}
	if aligned {
		s += 0.7
	}
	// Continuation on the right side of EMA20, or a pullback within 1% of it.
	onSide := snap.Price > snap.EMA20
	if dir == models.DirectionSell {
		onSide = snap.Price < snap.EMA20
	}
	if onSide || math.Abs(snap.Price-snap.EMA20)/snap.EMA20 < 0.01 {
		s += 0.3
	}
	return clamp01(s)
}

// scoreTrendStrength scales ADX linearly above 25 into [0,1].
func scoreTrendStrength(snap *models.IndicatorSnapshot) float64 {
	if !indicator.Defined(snap.ADX.ADX) {
		return 0
	}
	return clamp01((snap.ADX.ADX - 25) / 25)
}

// scoreLevels scores proximity to the structural level behind the entry and
// warns when there is too little room toward the level in front of it.
func scoreLevels(snap *models.IndicatorSnapshot, dir models.Direction) (float64, []string) {
	var score float64
	var warns []string
	price := snap.Price
	if dir == models.DirectionBuy {
		if snap.Support > 0 {
			prox := (price - snap.Support) / price
			switch {
			case prox < 0:
				score = 0
			case prox <= 0.02:
				score = 1
			case prox <= 0.05:
				score = 0.5
			default:
				score = 0.2
			}
		}
		if snap.Resistance > price {
			room := (snap.Resistance - price) / price
			if room < 0.01 {
				warns = append(warns, "resistance less than 1% above entry")
			} else if room < 0.04 {
				warns = append(warns, "under 4% of room to resistance")
			}
		}
	} else {
		if snap.Resistance > 0 {
			prox := (snap.Resistance - price) / price
			switch {
			case prox < 0:
				score = 0
			case prox <= 0.02:
				score = 1
			case prox <= 0.05:
				score = 0.5
			default:
				score = 0.2
			}
		}
		if snap.Support > 0 && snap.Support < price {
			room := (price - snap.Support) / price
			if room < 0.01 {
				warns = append(warns, "support less than 1% below entry")
			} else if room < 0.04 {
				warns = append(warns, "under 4% of room to support")
			}
		}
	}
	return score, warns
}

func scoreVolume(snap *models.IndicatorSnapshot, dir models.Direction) float64 {
	var s float64
	if snap.VolumeStats.Spike {
		s += 0.5
	}
	r := snap.BuyerPressure.Ratio
	if (dir == models.DirectionBuy && r > 0.55) || (dir == models.DirectionSell && r < 0.45) {
		s += 0.5
	}
	return s
}

func scorePatterns(snap *models.IndicatorSnapshot, dir models.Direction) float64 {
	if dir == models.DirectionBuy && indicator.BullishReversal(snap.Patterns) {
		return 1
	}
	if dir == models.DirectionSell && indicator.BearishReversal(snap.Patterns) {
		return 1
	}
	if snap.Patterns.Doji {
		return 0.2
	}
	return 0
}

func scoreDivergence(snap *models.IndicatorSnapshot, dir models.Direction) float64 {
	var s float64
	if dir == models.DirectionBuy {
		if snap.RSIDivergence.Bullish {
			s = snap.RSIDivergence.Strength
		}
		if snap.MACDDivergence.Bullish && snap.MACDDivergence.Strength > s {
			s = snap.MACDDivergence.Strength
		}
		return s
	}
	if snap.RSIDivergence.Bearish {
		s = snap.RSIDivergence.Strength
	}
	if snap.MACDDivergence.Bearish && snap.MACDDivergence.Strength > s {
		s = snap.MACDDivergence.Strength
	}
	return s
}

func scoreAccumulation(snap *models.IndicatorSnapshot, dir models.Direction) float64 {
	if dir != models.DirectionBuy || !snap.Accumulation.Detected {
		return 0
	}
	return snap.Accumulation.Strength
}

// buildLevels constructs ATR-based stop and take-profit levels, clamping the
// stop to sit past nearby structure with a 2% buffer. The take-profit targets
// a fixed 1.5 risk:reward from the final stop.
func buildLevels(snap *models.IndicatorSnapshot, dir models.Direction, mode Mode) (models.Levels, float64) {
	entry := snap.Price
	dist := snap.ATR * atrMultiplier(mode, snap.Choppiness)
	if !indicator.Defined(dist) || dist <= 0 {
		dist = entry * 0.02
	}

	var stop, tp float64
	if dir == models.DirectionBuy {
		stop = entry - dist
		// only nearby structure tightens the stop: support between the raw
		// ATR stop and entry pulls the stop just under it
		if snap.Support > stop && snap.Support < entry {
			stop = snap.Support * 0.98
		}
		tp = entry + 1.5*(entry-stop)
	} else {
		stop = entry + dist
		if snap.Resistance < stop && snap.Resistance > entry {
			stop = snap.Resistance * 1.02
		}
		tp = entry - 1.5*(stop-entry)
	}

	risk := math.Abs(entry - stop)
	var rr float64
	if risk > 0 {
		rr = math.Abs(tp-entry) / risk
	}
	return models.Levels{
		Entry:       entry,
		StopLoss:    stop,
		TakeProfit1: tp,
		Support:     snap.Support,
		Resistance:  snap.Resistance,
	}, rr
}

// atrMultiplier widens the stop with choppiness. SCALPING runs much tighter
// stops than the swing modes.
func atrMultiplier(mode Mode, chop float64) float64 {
	if mode == ModeScalping {
		if chop < 38.2 {
			return 0.8
		}
		return 1.2
	}
	switch {
	case chop > 50:
		return 2.5
	case chop > 38.2:
		return 2.0
	default:
		return 1.5
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var _ domsvc.SignalGenerator = (*Generator)(nil)
