package indicator

import (
	"math"
	"testing"

	"SignalForge/internal/domain/models"
)

func TestADXRange(t *testing.T) {
	for _, seed := range []int64{1, 5, 42} {
		candles := noisyCandles(200, 100, seed)
		adx := ADX(candles, 14)
		if math.IsNaN(adx.ADX) {
			t.Fatalf("seed %d: expected defined ADX", seed)
		}
		if adx.ADX < 0 || adx.ADX > 100 {
			t.Fatalf("seed %d: ADX %v out of [0,100]", seed, adx.ADX)
		}
		if adx.PlusDI < 0 || adx.MinusDI < 0 {
			t.Fatalf("seed %d: negative DI", seed)
		}
	}
}

func TestADXStrongInTrend(t *testing.T) {
	candles := syntheticCandles(120, func(i int) float64 { return 100 + 2*float64(i) })
	adx := ADX(candles, 14)
	if adx.ADX < 25 {
		t.Fatalf("clean uptrend should produce ADX >= 25, got %v", adx.ADX)
	}
	if adx.PlusDI <= adx.MinusDI {
		t.Fatalf("uptrend should have +DI > -DI: %+v", adx)
	}
}

func TestADXInsufficientData(t *testing.T) {
	candles := noisyCandles(20, 100, 3)
	if adx := ADX(candles, 14); !math.IsNaN(adx.ADX) {
		t.Fatalf("short window should yield NaN, got %v", adx.ADX)
	}
}

func TestClassifyRegime(t *testing.T) {
	cases := []struct {
		name                     string
		chop, adx, ema20, ema50  float64
		want                     models.Regime
	}{
		{"choppy by chop", 70, 40, 110, 100, models.RegimeChoppy},
		{"choppy by adx", 30, 15, 110, 100, models.RegimeChoppy},
		{"bull", 30, 30, 110, 100, models.RegimeTrendingBull},
		{"bear", 30, 30, 100, 110, models.RegimeTrendingBear},
	}
	for _, tc := range cases {
		if got := ClassifyRegime(tc.chop, tc.adx, tc.ema20, tc.ema50); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}
