package usecase

import (
	"context"
	"fmt"
	"time"

	"SignalForge/internal/domain/models"
	drepo "SignalForge/internal/domain/repository"
)

// CandleProcessor routes closed candles to the configured backend: the Kafka
// topic for the consumer group to persist, or ClickHouse directly.
type CandleProcessor struct {
	pub     drepo.CandlePublisher
	store   drepo.CandleStore
	metrics drepo.Metrics
	backend string
}

// NewCandleProcessor creates a new CandleProcessor instance.
func NewCandleProcessor(
	pub drepo.CandlePublisher,
	store drepo.CandleStore,
	metrics drepo.Metrics,
	backend string,
) *CandleProcessor {
	return &CandleProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
	}
}

// Process routes a single candle to the configured backend.
func (p *CandleProcessor) Process(ctx context.Context, ev *models.CandleEvent) error {
	if ev == nil {
		return fmt.Errorf("candle event is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, ev)
	case "clickhouse":
		err = p.store.Store(ctx, ev.Symbol, drepo.NormalizeInterval(ev.Interval), &ev.Candle)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process candle: %w", err)
	}

	p.metrics.RecordCandleStored(ev.Symbol)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// ProcessBatch routes multiple candles in one pass, used on backfill.
func (p *CandleProcessor) ProcessBatch(ctx context.Context, evs []*models.CandleEvent) error {
	if len(evs) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, evs)
	case "clickhouse":
		err = p.storeBatch(ctx, evs)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, ev := range evs {
		p.metrics.RecordCandleStored(ev.Symbol)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// storeBatch groups by symbol and interval before hitting the store.
func (p *CandleProcessor) storeBatch(ctx context.Context, evs []*models.CandleEvent) error {
	type key struct {
		symbol   string
		interval drepo.Interval
	}
	groups := make(map[key][]*models.Candle)
	for _, ev := range evs {
		if ev == nil {
			continue
		}
		k := key{ev.Symbol, drepo.NormalizeInterval(ev.Interval)}
		c := ev.Candle
		groups[k] = append(groups[k], &c)
	}
	for k, candles := range groups {
		if err := p.store.StoreBatch(ctx, k.symbol, k.interval, candles); err != nil {
			return err
		}
	}
	return nil
}

// Close closes underlying resources if available.
func (p *CandleProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
