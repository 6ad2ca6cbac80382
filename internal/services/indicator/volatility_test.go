package indicator

import (
	"math"
	"testing"
)

func TestBollingerContainment(t *testing.T) {
	candles := noisyCandles(120, 100, 7)
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	upper, middle, lower := BollingerSeries(closes, 20, 2)
	for i := range closes {
		if math.IsNaN(middle[i]) {
			continue
		}
		if !(lower[i] <= middle[i] && middle[i] <= upper[i]) {
			t.Fatalf("index %d: band ordering violated: %v %v %v", i, lower[i], middle[i], upper[i])
		}
	}
}

func TestATRSeedIsSMAOfTrueRange(t *testing.T) {
	candles := noisyCandles(40, 100, 11)
	tr := TrueRange(candles)
	atr := ATRSeries(candles, 14)
	var want float64
	for i := 0; i < 14; i++ {
		want += tr[i]
	}
	want /= 14
	if math.Abs(atr[13]-want) > 1e-12 {
		t.Fatalf("ATR seed: expected %v, got %v", want, atr[13])
	}
}

func TestATRUsesEMASmoothingConstant(t *testing.T) {
	candles := noisyCandles(40, 100, 13)
	tr := TrueRange(candles)
	atr := ATRSeries(candles, 14)
	k := 2.0 / 15.0
	for i := 14; i < len(candles); i++ {
		want := (tr[i]-atr[i-1])*k + atr[i-1]
		if math.Abs(atr[i]-want) > 1e-12 {
			t.Fatalf("index %d: ATR recurrence mismatch", i)
		}
	}
}

func TestChoppinessHighInSideways(t *testing.T) {
	candles := noisyCandles(100, 100, 21)
	chop := Choppiness(candles, 14)
	if math.IsNaN(chop) {
		t.Fatalf("expected defined choppiness")
	}
	if chop < 50 {
		t.Fatalf("sideways noise should read choppy, got %v", chop)
	}
}

func TestChoppinessLowInTrend(t *testing.T) {
	candles := syntheticCandles(100, func(i int) float64 { return 100 + 3*float64(i) })
	chop := Choppiness(candles, 14)
	if chop > 50 {
		t.Fatalf("clean trend should read non-choppy, got %v", chop)
	}
}
