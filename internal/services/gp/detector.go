package gp

import (
	"fmt"
	"math"

	"SignalForge/internal/domain/models"
	domsvc "SignalForge/internal/domain/service"
	"SignalForge/internal/services/indicator"
)

// Config holds the detector parameters.
type Config struct {
	Window   int     // regression window, also the RBF length scale
	Forecast int     // bars projected past the window
	Sigma    float64 // observation noise added to the kernel diagonal
	Mult     float64 // band width as a multiple of window MAE
}

// DefaultConfig mirrors the tuned production parameters.
func DefaultConfig() Config {
	return Config{Window: 30, Forecast: 2, Sigma: 0.125, Mult: 1.75}
}

// Detector runs RBF-kernel Gaussian-Process regression over a close series
// and flags statistical extremities. It holds no state between calls; state
// transitions are detected by evaluating the two most recent bars.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector with the given config, falling back to
// defaults for unset fields.
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Forecast <= 0 {
		cfg.Forecast = def.Forecast
	}
	if cfg.Sigma <= 0 {
		cfg.Sigma = def.Sigma
	}
	if cfg.Mult <= 0 {
		cfg.Mult = def.Mult
	}
	return &Detector{cfg: cfg}
}

// rbf is the radial basis function kernel with length scale l.
func rbf(x1, x2, l float64) float64 {
	d := x1 - x2
	return math.Exp(-d * d / (2 * l * l))
}

// forecastWeights builds the projection row that maps a centered window of
// prices to the GP forecast: the last row of Ktest * (Ktrain + sigma^2*I)^-1.
func (d *Detector) forecastWeights() ([]float64, error) {
	w := d.cfg.Window
	l := float64(w)

	ktrain := NewMatrix(w, w)
	for i := 0; i < w; i++ {
		for j := 0; j < w; j++ {
			v := rbf(float64(i), float64(j), l)
			if i == j {
				v += d.cfg.Sigma * d.cfg.Sigma
			}
			ktrain.Set(i, j, v)
		}
	}

	inv, err := ktrain.Inverse()
	if err != nil {
		return nil, fmt.Errorf("invert training kernel: %w", err)
	}

	rows := w + d.cfg.Forecast
	ktest := NewMatrix(rows, w)
	for i := 0; i < rows; i++ {
		for j := 0; j < w; j++ {
			ktest.Set(i, j, rbf(float64(i), float64(j), l))
		}
	}

	proj, err := ktest.Mul(inv)
	if err != nil {
		return nil, err
	}
	weights := make([]float64, w)
	for j := 0; j < w; j++ {
		weights[j] = proj.At(rows-1, j)
	}
	return weights, nil
}

// smoothAt computes the GP smoothed value and band half-width for the bar at
// index t, using the trailing window centered on its mean.
func (d *Detector) smoothAt(closes []float64, t int, weights []float64) (out, band float64) {
	w := d.cfg.Window
	window := closes[t-w+1 : t+1]

	var mean float64
	for _, v := range window {
		mean += v
	}
	mean /= float64(w)

	var dot float64
	for j, v := range window {
		dot += weights[j] * (v - mean)
	}
	out = mean + dot

	var mae float64
	for _, v := range window {
		mae += math.Abs(v - out)
	}
	mae /= float64(w)
	return out, mae * d.cfg.Mult
}

func (d *Detector) stateAt(close, out, prevOut, band float64) models.ExtremityState {
	switch {
	case close > out+band && out > prevOut:
		return models.ExtremityUpper
	case close < out-band && out < prevOut:
		return models.ExtremityLower
	default:
		return models.ExtremityNone
	}
}

// Evaluate runs the detector over the close series and returns the result
// for the most recent bar, or (nil, nil) when the series is shorter than the
// window plus the two bars needed to detect a state transition. A singular
// kernel surfaces as an error; callers treat it as "no signal" for this
// symbol only.
func (d *Detector) Evaluate(closes []float64) (*models.GPResult, error) {
	w := d.cfg.Window
	n := len(closes)
	if n < w+2 {
		return nil, nil
	}

	weights, err := d.forecastWeights()
	if err != nil {
		return nil, err
	}

	outPrev2, _ := d.smoothAt(closes, n-3, weights)
	outPrev, bandPrev := d.smoothAt(closes, n-2, weights)
	out, band := d.smoothAt(closes, n-1, weights)

	prevState := d.stateAt(closes[n-2], outPrev, outPrev2, bandPrev)
	state := d.stateAt(closes[n-1], out, outPrev, band)

	res := &models.GPResult{
		Out:   out,
		Upper: out + band,
		Lower: out - band,
		State: state,
	}
	if state != models.ExtremityNone && state != prevState {
		res.Signal = state
	}

	if outPrev != 0 {
		res.Velocity = (out - outPrev) / outPrev * 100
	}
	if out != 0 {
		res.BandWidthPct = 2 * band / out * 100
		res.DeviationPct = (closes[n-1] - out) / out * 100
	}
	if band > 0 && out != 0 {
		res.Confidence = math.Min(100, math.Abs(res.DeviationPct)/(res.BandWidthPct/2)*100)
	}

	d.scoreResult(res, closes)
	return res, nil
}

// scoreResult fills the RSI cross-check, trend alignment, composite score,
// and quality tier using fixed rule thresholds.
func (d *Detector) scoreResult(res *models.GPResult, closes []float64) {
	n := len(closes)
	res.RSI = indicator.Last(indicator.RSISeries(closes, 14))

	sma20 := indicator.Last(indicator.SMA(closes, 20))
	if indicator.Defined(sma20) {
		switch res.State {
		case models.ExtremityUpper:
			res.TrendAligned = closes[n-1] > sma20
		case models.ExtremityLower:
			res.TrendAligned = closes[n-1] < sma20
		}
	}

	if res.State == models.ExtremityNone {
		res.Quality = models.QualityWeak
		return
	}

	score := 50.0
	if indicator.Defined(res.RSI) {
		if res.State == models.ExtremityUpper && res.RSI > 70 {
			res.RSIConfirmed = true
		}
		if res.State == models.ExtremityLower && res.RSI < 30 {
			res.RSIConfirmed = true
		}
	}
	if res.RSIConfirmed {
		score += 25
	}
	if res.TrendAligned {
		score += 15
	}
	if math.Abs(res.Velocity) > 0.5 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	res.Score = score

	switch {
	case score >= 80:
		res.Quality = models.QualityStrong
	case score >= 60:
		res.Quality = models.QualityModerate
	default:
		res.Quality = models.QualityWeak
	}
}

var _ domsvc.ExtremityDetector = (*Detector)(nil)
