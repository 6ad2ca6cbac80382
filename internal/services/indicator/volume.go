package indicator

import (
	"math"

	"SignalForge/internal/domain/models"
)

// OBVSeries computes on-balance volume cumulatively over the window.
func OBVSeries(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i := 1; i < len(candles); i++ {
		switch {
		case candles[i].Close > candles[i-1].Close:
			out[i] = out[i-1] + candles[i].Volume
		case candles[i].Close < candles[i-1].Close:
			out[i] = out[i-1] - candles[i].Volume
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// VWAP computes the volume-weighted average price cumulatively over the
// whole supplied window (the engine has no session boundary concept).
func VWAP(candles []models.Candle) float64 {
	var pv, vol float64
	for _, c := range candles {
		typical := (c.High + c.Low + c.Close) / 3
		pv += typical * c.Volume
		vol += c.Volume
	}
	if vol == 0 {
		return math.NaN()
	}
	return pv / vol
}

// VolumeStatsFor summarizes the current bar's volume against a trailing
// average (current bar excluded). A spike is 2x the average.
func VolumeStatsFor(candles []models.Candle, lookback int) models.VolumeStats {
	n := len(candles)
	if n == 0 {
		return models.VolumeStats{}
	}
	current := candles[n-1].Volume
	if n < lookback+1 {
		return models.VolumeStats{Current: current}
	}
	var sum float64
	for i := n - lookback - 1; i < n-1; i++ {
		sum += candles[i].Volume
	}
	avg := sum / float64(lookback)
	return models.VolumeStats{
		Current: current,
		Average: avg,
		Spike:   avg > 0 && current > 2*avg,
	}
}

// BuyerPressureFor averages the taker-buy share of volume over the trailing
// lookback. Above 60% reads BULLISH, below 40% BEARISH.
func BuyerPressureFor(candles []models.Candle, lookback int) models.BuyerPressure {
	n := len(candles)
	if n == 0 {
		return models.BuyerPressure{Label: "NEUTRAL"}
	}
	if lookback > n {
		lookback = n
	}
	var sum float64
	var counted int
	for _, c := range candles[n-lookback:] {
		if c.Volume <= 0 {
			continue
		}
		sum += c.TakerBuyBase / c.Volume
		counted++
	}
	if counted == 0 {
		return models.BuyerPressure{Ratio: 0.5, Label: "NEUTRAL"}
	}
	ratio := sum / float64(counted)
	label := "NEUTRAL"
	switch {
	case ratio > 0.6:
		label = "BULLISH"
	case ratio < 0.4:
		label = "BEARISH"
	}
	return models.BuyerPressure{Ratio: ratio, Label: label}
}

// DetectAccumulation flags rising on-balance volume under a flat-to-down
// price over the trailing lookback: buyers absorbing supply without moving
// price. Strength scales with the taker-buy dominance in the same window.
func DetectAccumulation(candles []models.Candle, lookback int) models.AccumulationResult {
	n := len(candles)
	if n < lookback+1 {
		return models.AccumulationResult{}
	}
	obv := OBVSeries(candles)
	obvChange := obv[n-1] - obv[n-1-lookback]
	base := candles[n-1-lookback].Close
	if base == 0 {
		return models.AccumulationResult{}
	}
	priceChangePct := (candles[n-1].Close - base) / base

	if obvChange <= 0 || priceChangePct > 0.02 {
		return models.AccumulationResult{}
	}
	pressure := BuyerPressureFor(candles, lookback)
	strength := clamp01((pressure.Ratio - 0.5) * 4)
	if strength == 0 {
		return models.AccumulationResult{}
	}
	return models.AccumulationResult{Detected: true, Strength: strength}
}
