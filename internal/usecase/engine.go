package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
	domsvc "SignalForge/internal/domain/service"
	"SignalForge/internal/services/backtest"
	"SignalForge/internal/services/gp"
	"SignalForge/internal/services/indicator"
	"SignalForge/internal/services/signal"
	"SignalForge/pkg/cache"
	applogger "SignalForge/pkg/logger"
)

// CacheTTLs controls how long engine results stay cached. Zero disables
// caching for that result type.
type CacheTTLs struct {
	Analysis time.Duration
	Signal   time.Duration
	Candles  time.Duration
}

// EngineUseCase fronts the analysis engine: indicator snapshots, signal
// generation, extremity detection, and backtests, with read-through caching
// and signal fan-out.
type EngineUseCase struct {
	analyzer  domsvc.Analyzer
	generator domsvc.SignalGenerator
	simulator *backtest.Simulator
	provider  domrepo.CandleProvider
	store     domrepo.CandleStore
	cache     cache.Service
	signalPub domrepo.SignalPublisher
	metrics   domrepo.Metrics
	log       *applogger.Logger
	ttl       CacheTTLs
}

// NewEngineUseCase wires the engine. store, cache, and signalPub may be nil;
// the engine degrades to provider-only fetches without fan-out.
func NewEngineUseCase(
	analyzer domsvc.Analyzer,
	generator domsvc.SignalGenerator,
	simulator *backtest.Simulator,
	provider domrepo.CandleProvider,
	store domrepo.CandleStore,
	cacheSvc cache.Service,
	signalPub domrepo.SignalPublisher,
	metrics domrepo.Metrics,
	log *applogger.Logger,
	ttl CacheTTLs,
) *EngineUseCase {
	return &EngineUseCase{
		analyzer:  analyzer,
		generator: generator,
		simulator: simulator,
		provider:  provider,
		store:     store,
		cache:     cacheSvc,
		signalPub: signalPub,
		metrics:   metrics,
		log:       log,
		ttl:       ttl,
	}
}

// fetchWindow returns the latest limit candles for symbol/interval, oldest
// first. The store is preferred when it holds a full window; the REST
// provider covers cold starts and intervals the collector does not track.
func (uc *EngineUseCase) fetchWindow(ctx context.Context, symbol string, interval domrepo.Interval, limit int) ([]models.Candle, error) {
	if uc.store != nil {
		candles, err := uc.store.GetLatestNCandles(ctx, symbol, interval, limit)
		if err == nil && len(candles) >= limit {
			return candles, nil
		}
	}
	candles, err := uc.provider.Klines(ctx, symbol, interval, limit)
	if err != nil {
		uc.metrics.RecordError("fetch_window")
		return nil, fmt.Errorf("fetch window: %w", err)
	}
	return candles, nil
}

// GetAnalysis computes the indicator snapshot for the requested window.
func (uc *EngineUseCase) GetAnalysis(ctx context.Context, req models.AnalysisRequest) (*models.Analysis, error) {
	key := fmt.Sprintf("analysis:%s:%s:%d:%t", req.Symbol, req.Interval, req.Limit, req.Series)
	if cached, ok := cacheGet[models.Analysis](ctx, uc.cache, key); ok {
		return cached, nil
	}

	start := time.Now()
	candles, err := uc.fetchWindow(ctx, req.Symbol, domrepo.NormalizeInterval(req.Interval), req.Limit)
	if err != nil {
		return nil, err
	}
	analysis, err := uc.analyzer.Analyze(candles, req.Series)
	if err != nil {
		uc.metrics.RecordError("analyze")
		return nil, err
	}
	uc.metrics.RecordLatency("analysis", time.Since(start).Seconds())

	uc.cacheSet(ctx, key, analysis, uc.ttl.Analysis)
	return analysis, nil
}

// GetSignal runs the full signal pipeline: snapshot, higher-timeframe
// context, scoring, and fan-out of any emission. A nil signal with nil error
// means no setup qualified.
func (uc *EngineUseCase) GetSignal(ctx context.Context, req models.SignalRequest) (*models.Signal, error) {
	mode, err := signal.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("signal:%s:%s:%s", req.Symbol, req.Interval, mode)
	if cached, ok := cacheGet[models.Signal](ctx, uc.cache, key); ok {
		return cached, nil
	}

	start := time.Now()
	interval := domrepo.NormalizeInterval(req.Interval)
	candles, err := uc.fetchWindow(ctx, req.Symbol, interval, req.Limit)
	if err != nil {
		return nil, err
	}
	analysis, err := uc.analyzer.Analyze(candles, false)
	if err != nil {
		uc.metrics.RecordError("analyze")
		return nil, err
	}

	mtf := uc.higherTimeframes(ctx, req.Symbol, interval, req.Limit)

	sig, err := uc.generator.Generate(&analysis.Snapshot, req.Symbol, mtf, string(mode))
	if err != nil {
		uc.metrics.RecordError("generate")
		return nil, err
	}
	uc.metrics.RecordLatency("signal", time.Since(start).Seconds())
	if sig == nil {
		uc.metrics.RecordGateRejection(string(mode), "no_setup")
		return nil, nil
	}

	uc.metrics.RecordSignalEmitted(sig.Symbol, sig.Mode, string(sig.Direction))
	uc.publish(ctx, sig)
	uc.cacheSet(ctx, key, sig, uc.ttl.Signal)
	return sig, nil
}

// higherTimeframes builds the multi-timeframe context for the bias gate.
// Fetch or analysis failures on a higher timeframe degrade the context, they
// never fail the request.
func (uc *EngineUseCase) higherTimeframes(ctx context.Context, symbol string, base domrepo.Interval, limit int) models.MultiTimeframeContext {
	mtf := make(models.MultiTimeframeContext)
	for _, iv := range domrepo.HigherIntervals() {
		if iv == base {
			continue
		}
		candles, err := uc.fetchWindow(ctx, symbol, iv, limit)
		if err != nil {
			continue
		}
		analysis, err := uc.analyzer.Analyze(candles, false)
		if err != nil {
			continue
		}
		snap := analysis.Snapshot
		mtf[string(iv)] = models.TimeframeContext{
			Regime:     snap.Regime,
			Indicators: &snap,
		}
	}
	if len(mtf) == 0 {
		return nil
	}
	return mtf
}

// publish fans the signal out to downstream consumers. Failures are logged
// and counted but never surfaced: emission is already decided.
func (uc *EngineUseCase) publish(ctx context.Context, sig *models.Signal) {
	if uc.signalPub == nil {
		return
	}
	if err := uc.signalPub.Publish(ctx, sig); err != nil {
		uc.metrics.RecordError("signal_publish")
		if uc.log != nil {
			uc.log.Warn("signal publish failed",
				applogger.String("symbol", sig.Symbol),
				applogger.Error(err),
			)
		}
	}
}

// GetGP runs Gaussian-Process extremity detection over the close series.
func (uc *EngineUseCase) GetGP(ctx context.Context, req models.GPRequest) (*models.GPResult, error) {
	start := time.Now()
	limit := req.Window + 250
	if limit < indicator.MinAnalysisWindow {
		limit = indicator.MinAnalysisWindow
	}
	candles, err := uc.fetchWindow(ctx, req.Symbol, domrepo.NormalizeInterval(req.Interval), limit)
	if err != nil {
		return nil, err
	}
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	detector := gp.NewDetector(gp.Config{
		Window:   req.Window,
		Forecast: req.Forecast,
		Sigma:    req.Sigma,
		Mult:     req.Mult,
	})
	res, err := detector.Evaluate(closes)
	if err != nil {
		if errors.Is(err, gp.ErrSingularMatrix) {
			uc.metrics.RecordError("gp_singular")
		} else {
			uc.metrics.RecordError("gp")
		}
		return nil, err
	}
	uc.metrics.RecordLatency("gp", time.Since(start).Seconds())
	if res != nil && res.Signal != "" {
		uc.metrics.RecordExtremity(req.Symbol, string(res.Signal))
	}
	return res, nil
}

// RunBacktest replays history bar by bar under the requested mode.
func (uc *EngineUseCase) RunBacktest(ctx context.Context, req models.BacktestRequest) (*models.BacktestResult, error) {
	start := time.Now()
	interval := domrepo.NormalizeInterval(req.Interval)
	// the simulator caps input at 1000 bars and burns the first 200 as warm-up
	candles, err := uc.fetchWindow(ctx, req.Symbol, interval, 1000)
	if err != nil {
		return nil, err
	}
	res, err := uc.simulator.Run(candles, req.Symbol, string(interval), backtest.Config{
		InitialCapital: req.InitialCapital,
		Mode:           req.Mode,
	})
	if err != nil {
		uc.metrics.RecordError("backtest")
		return nil, err
	}
	uc.metrics.RecordBacktestRun(req.Symbol, req.Mode)
	uc.metrics.RecordLatency("backtest", time.Since(start).Seconds())
	return res, nil
}

func cacheGet[T any](ctx context.Context, c cache.Service, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	var out T
	if err := c.Get(ctx, key, &out); err != nil {
		return nil, false
	}
	return &out, true
}

func (uc *EngineUseCase) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if uc.cache == nil || ttl <= 0 {
		return
	}
	if err := uc.cache.Set(ctx, key, value, ttl); err != nil && uc.log != nil {
		uc.log.Warn("cache set failed", applogger.String("key", key), applogger.Error(err))
	}
}
