package indicator

import (
	"math"

	"SignalForge/internal/domain/models"
)

// ADX computes the average directional index and the current +DI/-DI using
// Wilder-style cumulative smoothing of directional movement, with the final
// ADX taken as an SMA of DX over the period. Outputs are aligned to the tail
// of the candle window; NaN is returned when the window is too short.
func ADX(candles []models.Candle, period int) models.ADXValue {
	nan := models.ADXValue{ADX: math.NaN(), PlusDI: math.NaN(), MinusDI: math.NaN()}
	n := len(candles)
	if period <= 0 || n < 2*period+1 {
		return nan
	}

	tr := TrueRange(candles)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := candles[i].High - candles[i-1].High
		down := candles[i-1].Low - candles[i].Low
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	// Wilder cumulative smoothing: seed with the sum of the first period
	// values, then smoothed = prev - prev/period + current.
	var smTR, smPlus, smMinus float64
	for i := 1; i <= period; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := make([]float64, 0, n-period)
	var plusDI, minusDI float64
	appendDX := func() {
		if smTR == 0 {
			dx = append(dx, 0)
			return
		}
		plusDI = 100 * smPlus / smTR
		minusDI = 100 * smMinus / smTR
		sum := plusDI + minusDI
		if sum == 0 {
			dx = append(dx, 0)
			return
		}
		dx = append(dx, 100*math.Abs(plusDI-minusDI)/sum)
	}
	appendDX()

	for i := period + 1; i < n; i++ {
		smTR = smTR - smTR/float64(period) + tr[i]
		smPlus = smPlus - smPlus/float64(period) + plusDM[i]
		smMinus = smMinus - smMinus/float64(period) + minusDM[i]
		appendDX()
	}

	if len(dx) < period {
		return nan
	}
	var sum float64
	for _, v := range dx[len(dx)-period:] {
		sum += v
	}
	return models.ADXValue{ADX: sum / float64(period), PlusDI: plusDI, MinusDI: minusDI}
}

// ClassifyRegime labels recent behavior from choppiness, trend strength, and
// EMA alignment. High choppiness dominates every other input.
func ClassifyRegime(choppiness, adx, ema20, ema50 float64) models.Regime {
	if Defined(choppiness) && choppiness > 61.8 {
		return models.RegimeChoppy
	}
	if !Defined(adx) || adx < 20 || !Defined(ema20) || !Defined(ema50) {
		return models.RegimeChoppy
	}
	switch {
	case ema20 > ema50:
		return models.RegimeTrendingBull
	case ema20 < ema50:
		return models.RegimeTrendingBear
	default:
		return models.RegimeChoppy
	}
}
