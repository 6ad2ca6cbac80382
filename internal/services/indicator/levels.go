package indicator

import (
	"math"

	"SignalForge/internal/domain/models"
)

// SupportResistance returns the lowest low and highest high over the
// trailing lookback.
func SupportResistance(candles []models.Candle, lookback int) (support, resistance float64) {
	n := len(candles)
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	if lookback > n {
		lookback = n
	}
	window := candles[n-lookback:]
	support = window[0].Low
	resistance = window[0].High
	for _, c := range window[1:] {
		if c.Low < support {
			support = c.Low
		}
		if c.High > resistance {
			resistance = c.High
		}
	}
	return support, resistance
}

// Pivots computes classic floor-trader pivot points from the last closed bar.
func Pivots(c models.Candle) models.PivotPoints {
	p := (c.High + c.Low + c.Close) / 3
	return models.PivotPoints{
		Pivot: p,
		R1:    2*p - c.Low,
		R2:    p + (c.High - c.Low),
		R3:    c.High + 2*(p-c.Low),
		S1:    2*p - c.High,
		S2:    p - (c.High - c.Low),
		S3:    c.Low - 2*(c.High-p),
	}
}
