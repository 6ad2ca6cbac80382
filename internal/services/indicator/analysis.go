package indicator

import (
	"fmt"

	"SignalForge/internal/domain/models"
	domsvc "SignalForge/internal/domain/service"
)

// MinAnalysisWindow is the smallest candle window Analyze accepts; SMA200 is
// the longest lookback in the snapshot.
const MinAnalysisWindow = 200

// Service is the stateless indicator aggregate. Every call recomputes the
// snapshot from scratch; nothing is cached between calls.
type Service struct{}

// NewService creates the indicator service.
func NewService() *Service { return &Service{} }

// Analyze computes the full IndicatorSnapshot for the latest bar of the
// window, plus chartable series when withSeries is set. The input is never
// mutated. Fails fast with ErrInsufficientData below MinAnalysisWindow.
func (s *Service) Analyze(candles []models.Candle, withSeries bool) (*models.Analysis, error) {
	if len(candles) < MinAnalysisWindow {
		return nil, fmt.Errorf("analyze: need %d candles, got %d: %w",
			MinAnalysisWindow, len(candles), ErrInsufficientData)
	}

	closes := models.Closes(candles)
	n := len(closes)

	rsiSeries := RSISeries(closes, 14)
	macdLine, macdSig, macdHist := MACDSeries(closes, 12, 26, 9)
	bbUpper, bbMiddle, bbLower := BollingerSeries(closes, 20, 2)
	ema9 := EMA(closes, 9)
	ema20 := EMA(closes, 20)
	ema50 := EMA(closes, 50)
	sma200 := SMA(closes, 200)
	obv := OBVSeries(candles)
	adx := ADX(candles, 14)
	chop := Choppiness(candles, 14)
	support, resistance := SupportResistance(candles, 20)

	snap := models.IndicatorSnapshot{
		Price:   closes[n-1],
		RSI:     Last(rsiSeries),
		RSIPrev: rsiSeries[n-2],
		MACD: models.MACDValue{
			Value:     Last(macdLine),
			Signal:    Last(macdSig),
			Histogram: Last(macdHist),
		},
		Bollinger: models.BollingerValue{
			Upper:  Last(bbUpper),
			Middle: Last(bbMiddle),
			Lower:  Last(bbLower),
		},
		EMA9:           Last(ema9),
		EMA20:          Last(ema20),
		EMA50:          Last(ema50),
		SMA200:         Last(sma200),
		ATR:            ATR(candles),
		ADX:            adx,
		Stochastic:     Stochastic(candles, 14, 3, 3),
		OBV:            Last(obv),
		VWAP:           VWAP(candles),
		Support:        support,
		Resistance:     resistance,
		Pivots:         Pivots(candles[n-2]),
		Patterns:       DetectPatterns(candles),
		VolumeStats:    VolumeStatsFor(candles, 20),
		BuyerPressure:  BuyerPressureFor(candles, 20),
		RSIDivergence:  Divergence(closes, rsiSeries, 5),
		MACDDivergence: Divergence(closes, macdLine, 5),
		Accumulation:   DetectAccumulation(candles, 20),
		Choppiness:     chop,
	}
	snap.Regime = ClassifyRegime(chop, adx.ADX, snap.EMA20, snap.EMA50)

	analysis := &models.Analysis{Snapshot: snap}
	if withSeries {
		closeTimes := make([]int64, n)
		for i, c := range candles {
			closeTimes[i] = c.CloseTime
		}
		analysis.FullData = &models.IndicatorSeries{
			EMA20:     ema20,
			EMA50:     ema50,
			SMA200:    sma200,
			RSI:       rsiSeries,
			MACD:      macdLine,
			MACDSig:   macdSig,
			MACDHist:  macdHist,
			BBUpper:   bbUpper,
			BBMiddle:  bbMiddle,
			BBLower:   bbLower,
			OBV:       obv,
			CloseTime: closeTimes,
		}
	}
	return analysis, nil
}

var _ domsvc.Analyzer = (*Service)(nil)
