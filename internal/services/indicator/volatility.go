package indicator

import (
	"math"

	"SignalForge/internal/domain/models"
)

// BollingerSeries computes middle (SMA), upper, and lower bands with a
// population-stddev multiple k over the same window.
func BollingerSeries(values []float64, period int, k float64) (upper, middle, lower []float64) {
	n := len(values)
	upper = nanSlice(n)
	middle = SMA(values, period)
	lower = nanSlice(n)
	for i := period - 1; i < n; i++ {
		sd := StdDev(values[i-period+1 : i+1])
		upper[i] = middle[i] + k*sd
		lower[i] = middle[i] - k*sd
	}
	return upper, middle, lower
}

// Bollinger returns the current 20-period, 2-sigma band reading.
func Bollinger(values []float64) models.BollingerValue {
	upper, middle, lower := BollingerSeries(values, 20, 2)
	return models.BollingerValue{Upper: Last(upper), Middle: Last(middle), Lower: Last(lower)}
}

// TrueRange returns the true-range series. tr[0] falls back to high-low.
func TrueRange(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		if i == 0 {
			out[i] = c.High - c.Low
			continue
		}
		prevClose := candles[i-1].Close
		tr := c.High - c.Low
		if d := math.Abs(c.High - prevClose); d > tr {
			tr = d
		}
		if d := math.Abs(c.Low - prevClose); d > tr {
			tr = d
		}
		out[i] = tr
	}
	return out
}

// ATRSeries computes average true range seeded with an SMA of the first
// period true ranges, then smoothed with the EMA constant 2/(period+1).
// This deliberately diverges from textbook Wilder smoothing; downstream
// level construction is tuned against this recurrence.
func ATRSeries(candles []models.Candle, period int) []float64 {
	out := nanSlice(len(candles))
	if period <= 0 || len(candles) < period {
		return out
	}
	tr := TrueRange(candles)
	var seed float64
	for i := 0; i < period; i++ {
		seed += tr[i]
	}
	out[period-1] = seed / float64(period)

	k := 2.0 / float64(period+1)
	for i := period; i < len(candles); i++ {
		out[i] = (tr[i]-out[i-1])*k + out[i-1]
	}
	return out
}

// ATR returns the current 14-period reading.
func ATR(candles []models.Candle) float64 {
	return Last(ATRSeries(candles, 14))
}

// Choppiness computes the choppiness index over the trailing period:
// 100*log10(sum(TR)/(maxHigh-minLow))/log10(period). Values above 61.8
// indicate sideways conditions.
func Choppiness(candles []models.Candle, period int) float64 {
	if period <= 1 || len(candles) < period+1 {
		return math.NaN()
	}
	tr := TrueRange(candles)
	window := candles[len(candles)-period:]
	hi := window[0].High
	lo := window[0].Low
	var sumTR float64
	for i, c := range window {
		if c.High > hi {
			hi = c.High
		}
		if c.Low < lo {
			lo = c.Low
		}
		sumTR += tr[len(candles)-period+i]
	}
	if hi == lo || sumTR == 0 {
		return 100
	}
	return 100 * math.Log10(sumTR/(hi-lo)) / math.Log10(float64(period))
}
