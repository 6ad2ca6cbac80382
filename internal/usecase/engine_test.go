package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
	"SignalForge/internal/services/backtest"
	"SignalForge/internal/services/indicator"
	"SignalForge/internal/services/signal"
	"SignalForge/pkg/cache"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls map[domrepo.Interval]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{calls: make(map[domrepo.Interval]int)}
}

func (p *fakeProvider) Klines(ctx context.Context, symbol string, interval domrepo.Interval, limit int) ([]models.Candle, error) {
	p.mu.Lock()
	p.calls[interval]++
	p.mu.Unlock()
	return syntheticCandles(limit), nil
}

func (p *fakeProvider) callCount(iv domrepo.Interval) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[iv]
}

// syntheticCandles builds an oscillating uptrend long enough for analysis.
func syntheticCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		c := 100 + 0.3*float64(i) + 5*math.Sin(float64(i)/2.5)
		out[i] = models.Candle{
			OpenTime:     int64(i) * 3600000,
			CloseTime:    int64(i)*3600000 + 3599999,
			Open:         c - 0.2,
			High:         c + 1,
			Low:          c - 1,
			Close:        c,
			Volume:       1000,
			QuoteVolume:  1000 * c,
			TradeCount:   500,
			TakerBuyBase: 620,
		}
	}
	return out
}

type recordingMetrics struct {
	mu       sync.Mutex
	emitted  int
	errors   map[string]int
	backtest int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{errors: make(map[string]int)}
}

func (m *recordingMetrics) RecordSignalEmitted(symbol, mode, direction string) {
	m.mu.Lock()
	m.emitted++
	m.mu.Unlock()
}
func (m *recordingMetrics) RecordGateRejection(mode, gate string) {}
func (m *recordingMetrics) RecordExtremity(symbol, state string)  {}
func (m *recordingMetrics) RecordBacktestRun(symbol, mode string) {
	m.mu.Lock()
	m.backtest++
	m.mu.Unlock()
}
func (m *recordingMetrics) RecordCandleStored(symbol string) {}
func (m *recordingMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}
func (m *recordingMetrics) RecordLastPrice(symbol string, price float64) {}
func (m *recordingMetrics) RecordLatency(op string, seconds float64)     {}

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(ctx context.Context, s *models.Signal) error {
	p.calls++
	return errors.New("broker unavailable")
}
func (p *failingPublisher) Close() error { return nil }

type stubGenerator struct{ sig *models.Signal }

func (g *stubGenerator) Generate(snap *models.IndicatorSnapshot, symbol string, mtf models.MultiTimeframeContext, mode string) (*models.Signal, error) {
	return g.sig, nil
}

func newEngine(provider domrepo.CandleProvider, gen *stubGenerator, metrics *recordingMetrics, pub domrepo.SignalPublisher, ttl CacheTTLs) *EngineUseCase {
	analyzer := indicator.NewService()
	var generator = signal.NewGenerator()
	uc := NewEngineUseCase(
		analyzer,
		generator,
		backtest.NewSimulator(analyzer, generator),
		provider, nil,
		cache.NewMemoryCache(),
		pub, metrics, nil, ttl,
	)
	if gen != nil {
		uc.generator = gen
	}
	return uc
}

func TestGetAnalysisCaches(t *testing.T) {
	provider := newFakeProvider()
	uc := newEngine(provider, nil, newRecordingMetrics(), nil, CacheTTLs{Analysis: time.Minute})

	req := models.AnalysisRequest{Symbol: "BTCUSDT", Interval: "1h", Limit: 300}
	first, err := uc.GetAnalysis(context.Background(), req)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.Snapshot.Price <= 0 {
		t.Fatalf("snapshot price = %v", first.Snapshot.Price)
	}

	second, err := uc.GetAnalysis(context.Background(), req)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if provider.callCount("1h") != 1 {
		t.Fatalf("expected cache hit, provider called %d times", provider.callCount("1h"))
	}
	if second.Snapshot.Price != first.Snapshot.Price {
		t.Fatalf("cached snapshot differs: %v vs %v", second.Snapshot.Price, first.Snapshot.Price)
	}
}

func TestGetSignalPublishFailureTolerated(t *testing.T) {
	provider := newFakeProvider()
	metrics := newRecordingMetrics()
	pub := &failingPublisher{}
	gen := &stubGenerator{sig: &models.Signal{
		ID: "sig-1", Symbol: "BTCUSDT", Direction: models.DirectionBuy,
		Score: 72, Mode: "BALANCED",
	}}
	uc := newEngine(provider, gen, metrics, pub, CacheTTLs{})

	sig, err := uc.GetSignal(context.Background(), models.SignalRequest{
		Symbol: "BTCUSDT", Interval: "1h", Mode: "balanced", Limit: 300,
	})
	if err != nil {
		t.Fatalf("publish failure must not fail the request: %v", err)
	}
	if sig == nil || sig.ID != "sig-1" {
		t.Fatalf("expected stub signal back, got %+v", sig)
	}
	if pub.calls != 1 {
		t.Fatalf("expected 1 publish attempt, got %d", pub.calls)
	}
	if metrics.emitted != 1 {
		t.Fatalf("expected emission recorded")
	}
	if metrics.errors["signal_publish"] != 1 {
		t.Fatalf("expected publish error recorded")
	}
}

func TestGetSignalUnknownMode(t *testing.T) {
	uc := newEngine(newFakeProvider(), nil, newRecordingMetrics(), nil, CacheTTLs{})
	if _, err := uc.GetSignal(context.Background(), models.SignalRequest{
		Symbol: "BTCUSDT", Interval: "1h", Mode: "YOLO", Limit: 300,
	}); !errors.Is(err, signal.ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestGetSignalFetchesHigherTimeframes(t *testing.T) {
	provider := newFakeProvider()
	gen := &stubGenerator{sig: nil}
	uc := newEngine(provider, gen, newRecordingMetrics(), nil, CacheTTLs{})

	sig, err := uc.GetSignal(context.Background(), models.SignalRequest{
		Symbol: "BTCUSDT", Interval: "1h", Mode: "BALANCED", Limit: 300,
	})
	if err != nil {
		t.Fatalf("get signal: %v", err)
	}
	if sig != nil {
		t.Fatalf("stub generator returns no signal")
	}
	for _, iv := range []domrepo.Interval{"4h", "1d"} {
		if provider.callCount(iv) != 1 {
			t.Fatalf("expected higher timeframe %s fetched once, got %d", iv, provider.callCount(iv))
		}
	}
}

func TestGetGP(t *testing.T) {
	uc := newEngine(newFakeProvider(), nil, newRecordingMetrics(), nil, CacheTTLs{})

	res, err := uc.GetGP(context.Background(), models.GPRequest{
		Symbol: "BTCUSDT", Interval: "1h", Window: 30, Forecast: 2, Sigma: 0.125, Mult: 1.75,
	})
	if err != nil {
		t.Fatalf("gp: %v", err)
	}
	if res == nil {
		t.Fatalf("expected result for sufficient history")
	}
	if res.Upper <= res.Lower {
		t.Fatalf("band inverted: [%v, %v]", res.Lower, res.Upper)
	}
}

func TestRunBacktest(t *testing.T) {
	metrics := newRecordingMetrics()
	uc := newEngine(newFakeProvider(), nil, metrics, nil, CacheTTLs{})

	res, err := uc.RunBacktest(context.Background(), models.BacktestRequest{
		Symbol: "BTCUSDT", Interval: "1h", Mode: "BALANCED", InitialCapital: 10000,
	})
	if err != nil {
		t.Fatalf("backtest: %v", err)
	}
	if res.Symbol != "BTCUSDT" || res.Mode != "BALANCED" {
		t.Fatalf("result header = %s %s", res.Symbol, res.Mode)
	}
	if len(res.EquityCurve) != 800 {
		t.Fatalf("expected 800 equity samples, got %d", len(res.EquityCurve))
	}
	if metrics.backtest != 1 {
		t.Fatalf("expected backtest run recorded")
	}
}
