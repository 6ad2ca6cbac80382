package service

import (
	"SignalForge/internal/domain/models"
)

// Analyzer computes the full indicator snapshot from a candle window.
type Analyzer interface {
	Analyze(candles []models.Candle, withSeries bool) (*models.Analysis, error)
}

// SignalGenerator evaluates one tick of the scoring state machine.
// A (nil, nil) return is the common no-setup outcome, not an error.
type SignalGenerator interface {
	Generate(snapshot *models.IndicatorSnapshot, symbol string, mtf models.MultiTimeframeContext, mode string) (*models.Signal, error)
}

// ExtremityDetector runs Gaussian-Process regression over a close series.
// A (nil, nil) return means insufficient data for the configured window.
type ExtremityDetector interface {
	Evaluate(closes []float64) (*models.GPResult, error)
}
