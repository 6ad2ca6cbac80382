package indicator

import (
	"math"

	"SignalForge/internal/domain/models"
)

// RSISeries computes the relative strength index with a plain trailing-window
// average of gains and losses (not Wilder's smoothed average; downstream
// score thresholds are tuned against this variant). RSI is 100 exactly when
// the window holds no losses.
func RSISeries(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period+1 {
		return out
	}
	for i := period; i < len(values); i++ {
		var gains, losses float64
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - values[j-1]
			if d > 0 {
				gains += d
			} else {
				losses -= d
			}
		}
		avgGain := gains / float64(period)
		avgLoss := losses / float64(period)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// MACDSeries computes the MACD line, signal line, and histogram.
// signal is an EMA(signalPeriod) of the MACD line over its defined region.
func MACDSeries(values []float64, fast, slow, signalPeriod int) (line, signal, hist []float64) {
	n := len(values)
	line = nanSlice(n)
	signal = nanSlice(n)
	hist = nanSlice(n)
	if n < slow {
		return line, signal, hist
	}

	emaFast := EMA(values, fast)
	emaSlow := EMA(values, slow)
	for i := slow - 1; i < n; i++ {
		line[i] = emaFast[i] - emaSlow[i]
	}

	defined := line[slow-1:]
	sigDefined := EMA(defined, signalPeriod)
	for i, v := range sigDefined {
		if !math.IsNaN(v) {
			signal[slow-1+i] = v
			hist[slow-1+i] = line[slow-1+i] - v
		}
	}
	return line, signal, hist
}

// MACD returns the current MACD reading with the default 12/26/9 setup.
func MACD(values []float64) models.MACDValue {
	line, signal, hist := MACDSeries(values, 12, 26, 9)
	return models.MACDValue{
		Value:     Last(line),
		Signal:    Last(signal),
		Histogram: Last(hist),
	}
}

// Stochastic computes the double-smoothed stochastic oscillator.
// %K raw = 100*(close-lowestLow)/(highestHigh-lowestLow) over the window,
// smoothed twice with simple averages to produce %K and %D.
func Stochastic(candles []models.Candle, period, smoothK, smoothD int) models.StochasticValue {
	n := len(candles)
	need := period + smoothK + smoothD - 2
	if n < need {
		return models.StochasticValue{K: math.NaN(), D: math.NaN(), Histogram: math.NaN()}
	}

	raw := nanSlice(n)
	for i := period - 1; i < n; i++ {
		lo := candles[i].Low
		hi := candles[i].High
		for j := i - period + 1; j <= i; j++ {
			if candles[j].Low < lo {
				lo = candles[j].Low
			}
			if candles[j].High > hi {
				hi = candles[j].High
			}
		}
		if hi == lo {
			raw[i] = 50
			continue
		}
		raw[i] = 100 * (candles[i].Close - lo) / (hi - lo)
	}

	kSeries := SMA(raw[period-1:], smoothK)
	dSeries := SMA(kSeries[smoothK-1:], smoothD)
	k := Last(kSeries)
	d := Last(dSeries)
	return models.StochasticValue{K: k, D: d, Histogram: k - d}
}
