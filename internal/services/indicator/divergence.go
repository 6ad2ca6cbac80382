package indicator

import (
	"math"

	"SignalForge/internal/domain/models"
)

// Divergence compares the direction of price change against indicator change
// over a short lookback. Bullish when price falls while the indicator rises;
// bearish on the inverse. Strength averages the normalized magnitude of both
// changes. Both series must be aligned to the same tail.
func Divergence(prices, indicator []float64, lookback int) models.DivergenceResult {
	np, ni := len(prices), len(indicator)
	if lookback <= 0 || np < lookback+1 || ni < lookback+1 {
		return models.DivergenceResult{}
	}

	p0 := prices[np-1-lookback]
	p1 := prices[np-1]
	i0 := indicator[ni-1-lookback]
	i1 := indicator[ni-1]
	if !Defined(i0) || !Defined(i1) || p0 == 0 {
		return models.DivergenceResult{}
	}

	priceChange := p1 - p0
	indChange := i1 - i0

	var res models.DivergenceResult
	switch {
	case priceChange < 0 && indChange > 0:
		res.Bullish = true
	case priceChange > 0 && indChange < 0:
		res.Bearish = true
	default:
		return res
	}

	indBase := math.Abs(i0)
	if indBase < 1e-9 {
		indBase = 1e-9
	}
	res.Strength = clamp01((math.Abs(priceChange)/math.Abs(p0) + math.Abs(indChange)/indBase) / 2)
	return res
}
