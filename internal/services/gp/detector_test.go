package gp

import (
	"testing"

	"SignalForge/internal/domain/models"
)

func flatSeries(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestEvaluateInsufficientData(t *testing.T) {
	d := NewDetector(DefaultConfig())
	res, err := d.Evaluate(flatSeries(20, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != nil {
		t.Fatalf("short series should yield no result")
	}
}

func TestEvaluateFlatSeriesNoSignal(t *testing.T) {
	d := NewDetector(DefaultConfig())
	res, err := d.Evaluate(flatSeries(40, 100))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if res == nil {
		t.Fatalf("expected a result")
	}
	if res.Signal != models.ExtremityNone || res.State != models.ExtremityNone {
		t.Fatalf("flat series should not fire: %+v", res)
	}
}

func TestEvaluateSpikeFiresUpperExactlyOnce(t *testing.T) {
	d := NewDetector(DefaultConfig())

	series := flatSeries(45, 100)
	spike := 40
	series[spike] = 110

	// Replaying prefixes bar by bar, only the prefix ending at the spike
	// bar may fire, and it must fire UPPER_EXTREMITY.
	for end := DefaultConfig().Window + 2; end <= len(series); end++ {
		res, err := d.Evaluate(series[:end])
		if err != nil {
			t.Fatalf("end=%d: evaluate: %v", end, err)
		}
		if res == nil {
			t.Fatalf("end=%d: expected a result", end)
		}
		if end-1 == spike {
			if res.Signal != models.ExtremityUpper {
				t.Fatalf("spike bar should fire UPPER_EXTREMITY, got %q (state %q)", res.Signal, res.State)
			}
			if res.Out <= 100 {
				t.Fatalf("smoothed value should rise with the spike, got %v", res.Out)
			}
			if res.Score < 50 {
				t.Fatalf("fired extremity should carry a base score, got %v", res.Score)
			}
			// A vertical spike pins windowed RSI at 100 and sits above
			// SMA20, so both confirmations apply.
			if !res.RSIConfirmed {
				t.Fatalf("spike should be RSI-confirmed, rsi=%v", res.RSI)
			}
			if !res.TrendAligned {
				t.Fatalf("spike above SMA20 should be trend-aligned")
			}
			if res.Quality != models.QualityStrong {
				t.Fatalf("expected STRONG quality, got %s (score %v)", res.Quality, res.Score)
			}
		} else if res.Signal != models.ExtremityNone {
			t.Fatalf("end=%d: unexpected signal %q", end, res.Signal)
		}
	}
}

func TestEvaluateMirrorSpikeFiresLower(t *testing.T) {
	d := NewDetector(DefaultConfig())
	series := flatSeries(40, 100)
	series[len(series)-1] = 90
	res, err := d.Evaluate(series)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if res.Signal != models.ExtremityLower {
		t.Fatalf("expected LOWER_EXTREMITY, got %q", res.Signal)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	d := NewDetector(DefaultConfig())
	series := flatSeries(50, 100)
	for i := range series {
		series[i] += float64(i%7) * 0.3
	}
	r1, err := d.Evaluate(series)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	r2, err := d.Evaluate(series)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if *r1 != *r2 {
		t.Fatalf("repeated evaluation differs: %+v vs %+v", r1, r2)
	}
}
