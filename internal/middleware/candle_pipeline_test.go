package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"SignalForge/internal/domain/models"
)

type stubProc struct {
	mu   sync.Mutex
	got  []*models.CandleEvent
	fail bool
}

func (p *stubProc) Process(ctx context.Context, ev *models.CandleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("downstream down")
	}
	p.got = append(p.got, ev)
	return nil
}

type stubMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newStubMetrics() *stubMetrics { return &stubMetrics{errors: make(map[string]int)} }

func (m *stubMetrics) RecordSignalEmitted(symbol, mode, direction string) {}
func (m *stubMetrics) RecordGateRejection(mode, gate string)             {}
func (m *stubMetrics) RecordExtremity(symbol, state string)              {}
func (m *stubMetrics) RecordBacktestRun(symbol, mode string)             {}
func (m *stubMetrics) RecordCandleStored(symbol string)                  {}
func (m *stubMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}
func (m *stubMetrics) RecordLastPrice(symbol string, price float64) {}
func (m *stubMetrics) RecordLatency(op string, seconds float64)     {}

func (m *stubMetrics) errCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

func event(symbol string, openTime int64) *models.CandleEvent {
	return &models.CandleEvent{
		Symbol:   symbol,
		Interval: "1h",
		Candle: models.Candle{
			OpenTime:  openTime,
			CloseTime: openTime + 3599999,
			Open:      100, High: 101, Low: 99, Close: 100.5,
			Volume: 1000,
		},
	}
}

func TestPipelineForwardsValidCandles(t *testing.T) {
	proc := &stubProc{}
	p := NewCandlePipeline(proc, newStubMetrics())

	for i := int64(1); i <= 3; i++ {
		if err := p.Process(context.Background(), event("BTCUSDT", i*3600000)); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	if len(proc.got) != 3 {
		t.Fatalf("expected 3 forwarded, got %d", len(proc.got))
	}
}

func TestPipelineRejectsInvalid(t *testing.T) {
	proc := &stubProc{}
	m := newStubMetrics()
	p := NewCandlePipeline(proc, m)

	cases := []*models.CandleEvent{
		nil,
		{Symbol: "", Candle: models.Candle{OpenTime: 1, CloseTime: 2, High: 1, Low: 0}},
		{Symbol: "BTCUSDT", Candle: models.Candle{OpenTime: 2, CloseTime: 1, High: 1, Low: 0}},
		{Symbol: "BTCUSDT", Candle: models.Candle{OpenTime: 1, CloseTime: 2, High: 1, Low: 5}},
	}
	for i, ev := range cases {
		if err := p.Process(context.Background(), ev); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if len(proc.got) != 0 {
		t.Fatalf("invalid events must not reach the processor")
	}
	if m.errCount("pipeline_validate") != len(cases) {
		t.Fatalf("expected %d validate errors, got %d", len(cases), m.errCount("pipeline_validate"))
	}
}

func TestPipelineDropsDuplicates(t *testing.T) {
	proc := &stubProc{}
	m := newStubMetrics()
	p := NewCandlePipeline(proc, m)

	ev := event("ETHUSDT", 3600000)
	if err := p.Process(context.Background(), ev); err != nil {
		t.Fatalf("first process: %v", err)
	}
	// same bar again, and an older bar
	if err := p.Process(context.Background(), event("ETHUSDT", 3600000)); err != nil {
		t.Fatalf("duplicate should be dropped silently: %v", err)
	}
	// Candle event with valid times but older open
	old := event("ETHUSDT", 3600000)
	old.Candle.OpenTime = 1800000
	old.Candle.CloseTime = 3599999
	if err := p.Process(context.Background(), old); err != nil {
		t.Fatalf("stale bar should be dropped silently: %v", err)
	}
	if len(proc.got) != 1 {
		t.Fatalf("expected 1 forwarded, got %d", len(proc.got))
	}
	if m.errCount("pipeline_duplicate") != 2 {
		t.Fatalf("expected 2 duplicate drops, got %d", m.errCount("pipeline_duplicate"))
	}

	// different symbol with the same open time passes
	if err := p.Process(context.Background(), event("BTCUSDT", 3600000)); err != nil {
		t.Fatalf("other symbol: %v", err)
	}
	if len(proc.got) != 2 {
		t.Fatalf("expected 2 forwarded, got %d", len(proc.got))
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &stubProc{fail: true}
	m := newStubMetrics()
	p := NewCandlePipeline(proc, m, WithBufferSize(8))

	if err := p.Process(context.Background(), event("BTCUSDT", 3600000)); err == nil {
		t.Fatalf("expected downstream error")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("expected event buffered, got %d", len(p.bufCh))
	}
	if m.errCount("pipeline_process") != 1 {
		t.Fatalf("expected process error recorded")
	}
}
