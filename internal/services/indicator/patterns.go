package indicator

import (
	"math"

	"SignalForge/internal/domain/models"
)

// Candlestick predicates. Each is a pure boolean check over 1-3 trailing
// candles using fixed ratio thresholds.

// IsHammer checks for a long lower wick with a small body near the top.
func IsHammer(c models.Candle) bool {
	r := c.Range()
	if r == 0 {
		return false
	}
	body := c.Body()
	return c.LowerWick() > 2*body && c.UpperWick() < 0.5*body && body/r < 0.3
}

// IsInvertedHammer is the mirrored hammer: long upper wick, body near the low.
func IsInvertedHammer(c models.Candle) bool {
	r := c.Range()
	if r == 0 {
		return false
	}
	body := c.Body()
	return c.UpperWick() > 2*body && c.LowerWick() < 0.5*body && body/r < 0.3
}

// IsDoji checks for a near-zero body relative to the range.
func IsDoji(c models.Candle) bool {
	r := c.Range()
	if r == 0 {
		return false
	}
	return c.Body()/r < 0.1
}

// IsBullishEngulfing checks a bullish body fully engulfing the prior bearish body.
func IsBullishEngulfing(prev, cur models.Candle) bool {
	return !prev.IsBullish() && cur.IsBullish() &&
		cur.Open <= prev.Close && cur.Close >= prev.Open
}

// IsBearishEngulfing is the mirrored engulfing.
func IsBearishEngulfing(prev, cur models.Candle) bool {
	return prev.IsBullish() && !cur.IsBullish() &&
		cur.Open >= prev.Close && cur.Close <= prev.Open
}

// IsThreeWhiteSoldiers checks three consecutive bullish candles with rising
// opens and closes.
func IsThreeWhiteSoldiers(c1, c2, c3 models.Candle) bool {
	return c1.IsBullish() && c2.IsBullish() && c3.IsBullish() &&
		c2.Close > c1.Close && c3.Close > c2.Close &&
		c2.Open > c1.Open && c3.Open > c2.Open
}

// IsThreeBlackCrows checks three consecutive bearish candles with falling
// opens and closes.
func IsThreeBlackCrows(c1, c2, c3 models.Candle) bool {
	return !c1.IsBullish() && !c2.IsBullish() && !c3.IsBullish() &&
		c2.Close < c1.Close && c3.Close < c2.Close &&
		c2.Open < c1.Open && c3.Open < c2.Open
}

// IsMorningStar checks a strong bearish bar, a small-bodied pause, and a
// bullish bar reclaiming past the midpoint of the first body.
func IsMorningStar(c1, c2, c3 models.Candle) bool {
	if c1.IsBullish() || c1.Range() == 0 || c1.Body()/c1.Range() < 0.5 {
		return false
	}
	if c2.Body() > 0.3*c1.Body() {
		return false
	}
	mid := (c1.Open + c1.Close) / 2
	return c3.IsBullish() && c3.Close > mid
}

// IsEveningStar is the mirrored morning star.
func IsEveningStar(c1, c2, c3 models.Candle) bool {
	if !c1.IsBullish() || c1.Range() == 0 || c1.Body()/c1.Range() < 0.5 {
		return false
	}
	if c2.Body() > 0.3*c1.Body() {
		return false
	}
	mid := (c1.Open + c1.Close) / 2
	return !c3.IsBullish() && c3.Close < mid
}

// DetectDoubleTop scans the trailing lookback for two highs within 0.5% of
// each other at least three bars apart, with the current close below both.
func DetectDoubleTop(candles []models.Candle, lookback int) bool {
	peak1, peak2, ok := twinExtremes(candles, lookback, true)
	if !ok {
		return false
	}
	cur := candles[len(candles)-1].Close
	return cur < peak1 && cur < peak2
}

// DetectDoubleBottom is the mirrored double top against the lows.
func DetectDoubleBottom(candles []models.Candle, lookback int) bool {
	trough1, trough2, ok := twinExtremes(candles, lookback, false)
	if !ok {
		return false
	}
	cur := candles[len(candles)-1].Close
	return cur > trough1 && cur > trough2
}

// twinExtremes finds the extreme bar in the window and a second extreme at
// least three bars away within 0.5% of the first.
func twinExtremes(candles []models.Candle, lookback int, highs bool) (float64, float64, bool) {
	n := len(candles)
	if n < lookback {
		return 0, 0, false
	}
	window := candles[n-lookback:]

	val := func(c models.Candle) float64 {
		if highs {
			return c.High
		}
		return c.Low
	}
	better := func(a, b float64) bool {
		if highs {
			return a > b
		}
		return a < b
	}

	best := 0
	for i := range window {
		if better(val(window[i]), val(window[best])) {
			best = i
		}
	}
	first := val(window[best])

	second := math.NaN()
	for i := range window {
		if i >= best-2 && i <= best+2 {
			continue
		}
		v := val(window[i])
		if math.IsNaN(second) || better(v, second) {
			second = v
		}
	}
	if math.IsNaN(second) || first == 0 {
		return 0, 0, false
	}
	if math.Abs(first-second)/math.Abs(first) > 0.005 {
		return 0, 0, false
	}
	return first, second, true
}

// DetectPatterns evaluates all pattern predicates on the tail of the window.
func DetectPatterns(candles []models.Candle) models.PatternFlags {
	n := len(candles)
	var f models.PatternFlags
	if n == 0 {
		return f
	}
	cur := candles[n-1]
	f.Hammer = IsHammer(cur)
	f.InvertedHammer = IsInvertedHammer(cur)
	f.Doji = IsDoji(cur)
	if n >= 2 {
		prev := candles[n-2]
		f.BullishEngulfing = IsBullishEngulfing(prev, cur)
		f.BearishEngulfing = IsBearishEngulfing(prev, cur)
	}
	if n >= 3 {
		c1, c2, c3 := candles[n-3], candles[n-2], candles[n-1]
		f.ThreeWhiteSoldiers = IsThreeWhiteSoldiers(c1, c2, c3)
		f.ThreeBlackCrows = IsThreeBlackCrows(c1, c2, c3)
		f.MorningStar = IsMorningStar(c1, c2, c3)
		f.EveningStar = IsEveningStar(c1, c2, c3)
	}
	if n >= 20 {
		f.DoubleTop = DetectDoubleTop(candles, 20)
		f.DoubleBottom = DetectDoubleBottom(candles, 20)
	}
	return f
}

// BullishReversal reports whether any bullish reversal pattern is flagged.
func BullishReversal(f models.PatternFlags) bool {
	return f.Hammer || f.BullishEngulfing || f.MorningStar || f.ThreeWhiteSoldiers || f.DoubleBottom
}

// BearishReversal reports whether any bearish reversal pattern is flagged.
func BearishReversal(f models.PatternFlags) bool {
	return f.InvertedHammer || f.BearishEngulfing || f.EveningStar || f.ThreeBlackCrows || f.DoubleTop
}
