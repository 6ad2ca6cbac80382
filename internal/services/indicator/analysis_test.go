package indicator

import (
	"errors"
	"fmt"
	"testing"
)

func TestAnalyzeInsufficientData(t *testing.T) {
	s := NewService()
	_, err := s.Analyze(noisyCandles(150, 100, 1), false)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	s := NewService()
	candles := noisyCandles(300, 100, 99)

	a1, err := s.Analyze(candles, true)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	a2, err := s.Analyze(candles, true)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	// series carry NaN warm-up values, which never compare equal to
	// themselves, so compare the formatted forms instead
	if fmt.Sprintf("%+v", a1.Snapshot) != fmt.Sprintf("%+v", a2.Snapshot) {
		t.Fatalf("repeated analysis produced different snapshots")
	}
	if a1.FullData == nil || a2.FullData == nil {
		t.Fatalf("series requested but missing")
	}
	if fmt.Sprintf("%+v", *a1.FullData) != fmt.Sprintf("%+v", *a2.FullData) {
		t.Fatalf("repeated analysis produced different series")
	}
}

func TestAnalyzeDoesNotMutateInput(t *testing.T) {
	s := NewService()
	candles := noisyCandles(250, 100, 5)
	before := make([]float64, len(candles))
	for i, c := range candles {
		before[i] = c.Close
	}
	if _, err := s.Analyze(candles, true); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for i, c := range candles {
		if c.Close != before[i] {
			t.Fatalf("input mutated at index %d", i)
		}
	}
}

func TestAnalyzeUptrendSnapshot(t *testing.T) {
	s := NewService()
	candles := syntheticCandles(250, func(i int) float64 { return 100 + float64(i) })
	a, err := s.Analyze(candles, false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	snap := a.Snapshot
	if snap.EMA20 <= snap.EMA50 {
		t.Fatalf("uptrend should have EMA20 > EMA50: %v vs %v", snap.EMA20, snap.EMA50)
	}
	if snap.Price <= snap.SMA200 {
		t.Fatalf("uptrend close should sit above SMA200")
	}
	if snap.RSI != 100 {
		t.Fatalf("strictly rising closes should pin RSI at 100, got %v", snap.RSI)
	}
	if snap.Regime != "TRENDING_BULL" {
		t.Fatalf("expected TRENDING_BULL regime, got %s", snap.Regime)
	}
	if snap.Support >= snap.Resistance {
		t.Fatalf("support should sit below resistance")
	}
}

func TestAnalyzeSeriesLengths(t *testing.T) {
	s := NewService()
	candles := noisyCandles(260, 100, 17)
	a, err := s.Analyze(candles, true)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	fd := a.FullData
	if fd == nil {
		t.Fatalf("expected series when requested")
	}
	for name, series := range map[string][]float64{
		"ema20": fd.EMA20, "ema50": fd.EMA50, "sma200": fd.SMA200,
		"rsi": fd.RSI, "macd": fd.MACD, "bbUpper": fd.BBUpper, "obv": fd.OBV,
	} {
		if len(series) != len(candles) {
			t.Fatalf("%s: expected len %d, got %d", name, len(candles), len(series))
		}
	}
}
