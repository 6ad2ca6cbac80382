package indicator

import (
	"math"
	"testing"
)

func TestRSIMonotonicRiseIs100(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	out := RSISeries(values, 14)
	if got := Last(out); got != 100 {
		t.Fatalf("monotonic rise: expected RSI 100 exactly, got %v", got)
	}
}

func TestRSIMonotonicFallNearZero(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 100 - float64(i)
	}
	if got := Last(RSISeries(values, 14)); got != 0 {
		t.Fatalf("monotonic fall: expected RSI 0, got %v", got)
	}
}

func TestRSIRange(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 100 + 10*math.Sin(float64(i)/3)
	}
	for i, v := range RSISeries(values, 14) {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || v > 100 {
			t.Fatalf("index %d: RSI %v out of [0,100]", i, v)
		}
	}
}

func TestMACDHistogramIsLineMinusSignal(t *testing.T) {
	values := make([]float64, 120)
	for i := range values {
		values[i] = 50 + 5*math.Sin(float64(i)/7) + 0.1*float64(i)
	}
	line, signal, hist := MACDSeries(values, 12, 26, 9)
	for i := range values {
		if math.IsNaN(hist[i]) {
			continue
		}
		if math.Abs(hist[i]-(line[i]-signal[i])) > 1e-12 {
			t.Fatalf("index %d: histogram mismatch", i)
		}
	}
	if math.IsNaN(Last(hist)) {
		t.Fatalf("expected defined histogram at tail")
	}
}

func TestStochasticBounds(t *testing.T) {
	candles := syntheticCandles(80, func(i int) float64 {
		return 100 + 8*math.Sin(float64(i)/5)
	})
	st := Stochastic(candles, 14, 3, 3)
	if st.K < 0 || st.K > 100 || st.D < 0 || st.D > 100 {
		t.Fatalf("stochastic out of range: %+v", st)
	}
	if math.Abs(st.Histogram-(st.K-st.D)) > 1e-12 {
		t.Fatalf("histogram should be K-D")
	}
}
