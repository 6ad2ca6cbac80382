package indicator

import (
	"math/rand"

	"SignalForge/internal/domain/models"
)

// syntheticCandles builds n candles whose closes follow f, with a small
// deterministic wiggle for highs/lows and constant volume.
func syntheticCandles(n int, f func(i int) float64) []models.Candle {
	out := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		c := f(i)
		var o float64
		if i == 0 {
			o = c
		} else {
			o = f(i - 1)
		}
		hi, lo := c, o
		if o > c {
			hi, lo = o, c
		}
		out[i] = models.Candle{
			OpenTime:     int64(i) * 3_600_000,
			Open:         o,
			High:         hi * 1.002,
			Low:          lo * 0.998,
			Close:        c,
			Volume:       1000,
			CloseTime:    int64(i+1)*3_600_000 - 1,
			TakerBuyBase: 500,
		}
	}
	return out
}

// noisyCandles builds sideways noise around base with a seeded RNG so runs
// are reproducible.
func noisyCandles(n int, base float64, seed int64) []models.Candle {
	rng := rand.New(rand.NewSource(seed))
	out := make([]models.Candle, n)
	prev := base
	for i := 0; i < n; i++ {
		c := base * (1 + (rng.Float64()-0.5)*0.01)
		hi, lo := c, prev
		if prev > c {
			hi, lo = prev, c
		}
		out[i] = models.Candle{
			OpenTime:     int64(i) * 3_600_000,
			Open:         prev,
			High:         hi * 1.003,
			Low:          lo * 0.997,
			Close:        c,
			Volume:       1000 + rng.Float64()*100,
			CloseTime:    int64(i+1)*3_600_000 - 1,
			TakerBuyBase: 500,
		}
		prev = c
	}
	return out
}
