package indicator

import (
	"math"
	"testing"
)

func TestSMAWarmupAndValue(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := SMA(values, 3)
	for i := 0; i < 2; i++ {
		if !math.IsNaN(out[i]) {
			t.Fatalf("index %d: expected NaN warm-up, got %v", i, out[i])
		}
	}
	if out[2] != 2 || out[3] != 3 || out[4] != 4 {
		t.Fatalf("unexpected SMA values: %v", out)
	}
}

func TestEMASeedEqualsSMA(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = float64(i + 1)
	}
	out := EMA(values, 20)
	if out[19] != 10.5 {
		t.Fatalf("EMA seed: expected 10.5, got %v", out[19])
	}
	for i := 0; i < 19; i++ {
		if !math.IsNaN(out[i]) {
			t.Fatalf("index %d: expected NaN before seed", i)
		}
	}
}

func TestEMARecurrence(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	out := EMA(values, 3)
	k := 2.0 / 4.0
	want := 2.0 // seed = mean(1,2,3)
	for i := 3; i < len(values); i++ {
		want = (values[i]-want)*k + want
		if math.Abs(out[i]-want) > 1e-12 {
			t.Fatalf("index %d: expected %v, got %v", i, want, out[i])
		}
	}
}

func TestStdDevPopulation(t *testing.T) {
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(got-2) > 1e-12 {
		t.Fatalf("expected population stddev 2, got %v", got)
	}
}
