package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, ev *models.CandleEvent) error
}

// CandlePipeline sits between the market stream and the processor.
// It validates, drops duplicate bars, and buffers when downstream is
// unavailable.
type CandlePipeline struct {
	proc    Proc
	metrics domrepo.Metrics
	bufSize int
	bufCh   chan *models.CandleEvent
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
	// last accepted open_time per symbol+interval, to drop replays
	lastOpen map[string]int64
}

type PipelineOption func(*CandlePipeline)

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *CandlePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewCandlePipeline creates a new pipeline.
func NewCandlePipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *CandlePipeline {
	p := &CandlePipeline{
		proc:     proc,
		metrics:  metrics,
		bufSize:  1000,
		bufCh:    make(chan *models.CandleEvent, 1000),
		stopCh:   make(chan struct{}),
		lastOpen: make(map[string]int64),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.CandleEvent, p.bufSize)
	}
	return p
}

// Start launches background flushing of buffered candles.
func (p *CandlePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case ev := <-p.bufCh:
				if ev == nil {
					continue
				}
				if err := p.proc.Process(ctx, ev); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- ev:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *CandlePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, de-duplicates, and forwards a candle downstream,
// buffering on errors.
func (p *CandlePipeline) Process(ctx context.Context, ev *models.CandleEvent) error {
	start := time.Now()
	if err := validateEvent(ev); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.duplicate(ev) {
		p.metrics.RecordError("pipeline_duplicate")
		return nil
	}

	if err := p.proc.Process(ctx, ev); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- ev:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateEvent(ev *models.CandleEvent) error {
	if ev == nil {
		return fmt.Errorf("candle event nil")
	}
	if ev.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if ev.Candle.OpenTime <= 0 || ev.Candle.CloseTime <= ev.Candle.OpenTime {
		return fmt.Errorf("candle times invalid")
	}
	if ev.Candle.High < ev.Candle.Low {
		return fmt.Errorf("high below low")
	}
	if ev.Candle.Open < 0 || ev.Candle.Close < 0 || ev.Candle.Volume < 0 {
		return fmt.Errorf("negative price/volume")
	}
	return nil
}

func (p *CandlePipeline) duplicate(ev *models.CandleEvent) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := ev.Symbol + "/" + ev.Interval
	if last, ok := p.lastOpen[key]; ok && ev.Candle.OpenTime <= last {
		return true
	}
	p.lastOpen[key] = ev.Candle.OpenTime
	return false
}
