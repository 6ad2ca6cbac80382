package indicator

import (
	"testing"

	"SignalForge/internal/domain/models"
)

func candle(o, h, l, c float64) models.Candle {
	return models.Candle{Open: o, High: h, Low: l, Close: c, Volume: 1}
}

func TestIsHammer(t *testing.T) {
	cases := []struct {
		name string
		c    models.Candle
		want bool
	}{
		{"hammer", candle(100, 101, 96, 100.9), true},
		{"no lower wick", candle(100, 104, 99.9, 101), false},
		{"big body", candle(100, 106, 99, 105), false},
	}
	for _, tc := range cases {
		if got := IsHammer(tc.c); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestIsDoji(t *testing.T) {
	if !IsDoji(candle(100, 102, 98, 100.1)) {
		t.Fatalf("tiny body should be doji")
	}
	if IsDoji(candle(100, 102, 98, 101.5)) {
		t.Fatalf("substantial body should not be doji")
	}
}

func TestEngulfing(t *testing.T) {
	prev := candle(102, 102.5, 99.5, 100)
	cur := candle(99.8, 103.2, 99.6, 102.8)
	if !IsBullishEngulfing(prev, cur) {
		t.Fatalf("expected bullish engulfing")
	}
	if IsBearishEngulfing(prev, cur) {
		t.Fatalf("unexpected bearish engulfing")
	}
	if !IsBearishEngulfing(cur, candle(103, 103.5, 99.5, 99.7)) {
		t.Fatalf("expected bearish engulfing")
	}
}

func TestThreeWhiteSoldiers(t *testing.T) {
	c1 := candle(100, 102.2, 99.8, 102)
	c2 := candle(101, 104.2, 100.8, 104)
	c3 := candle(103, 106.2, 102.8, 106)
	if !IsThreeWhiteSoldiers(c1, c2, c3) {
		t.Fatalf("expected three white soldiers")
	}
	if IsThreeBlackCrows(c1, c2, c3) {
		t.Fatalf("unexpected three black crows")
	}
}

func TestMorningStar(t *testing.T) {
	c1 := candle(105, 105.2, 99.8, 100) // strong bearish
	c2 := candle(99.9, 100.5, 99.3, 100.1)
	c3 := candle(100.2, 104.5, 100, 104)
	if !IsMorningStar(c1, c2, c3) {
		t.Fatalf("expected morning star")
	}
	if IsEveningStar(c1, c2, c3) {
		t.Fatalf("unexpected evening star")
	}
}

func TestDetectDoubleTop(t *testing.T) {
	// two peaks at ~110 five bars apart, tail closing below both
	closes := []float64{100, 102, 106, 110, 106, 103, 105, 109.9, 105, 101,
		100, 99, 98.5, 99, 98, 97.5, 98, 97, 96.5, 96}
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = candle(c, c+0.2, c-0.2, c)
	}
	if !DetectDoubleTop(candles, 20) {
		t.Fatalf("expected double top")
	}
	if DetectDoubleBottom(candles, 20) {
		t.Fatalf("unexpected double bottom")
	}
}

func TestDetectPatternsShortWindow(t *testing.T) {
	f := DetectPatterns([]models.Candle{candle(100, 101, 96, 100.9)})
	if !f.Hammer {
		t.Fatalf("single-candle patterns should still evaluate")
	}
	if f.DoubleTop || f.DoubleBottom {
		t.Fatalf("multi-bar structure patterns need a longer window")
	}
}
