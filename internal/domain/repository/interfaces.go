package repository

import (
	"context"
	"time"

	"SignalForge/internal/domain/models"
)

// CandleProvider supplies ordered, gap-free candle history for a
// (symbol, interval, limit) triple. Implementations own all network I/O;
// the engine never fetches.
type CandleProvider interface {
	Klines(ctx context.Context, symbol string, interval Interval, limit int) ([]models.Candle, error)
}

// CandleStream delivers closed candles from a live market connection.
type CandleStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.CandleEvent, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// CandleStore persists candles and serves historical windows.
type CandleStore interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, symbol string, interval Interval, c *models.Candle) error
	StoreBatch(ctx context.Context, symbol string, interval Interval, candles []*models.Candle) error
	GetCandles(ctx context.Context, symbol string, interval Interval, from, to time.Time, limit int) ([]models.Candle, error)
	GetLatestNCandles(ctx context.Context, symbol string, interval Interval, n int) ([]models.Candle, error)
	Health(ctx context.Context) error
	Close() error
}

// CandlePublisher forwards closed candles to a message broker for
// downstream persistence.
type CandlePublisher interface {
	Publish(ctx context.Context, ev *models.CandleEvent) error
	PublishBatch(ctx context.Context, evs []*models.CandleEvent) error
	Close() error
}

// SignalPublisher pushes emitted signals to downstream consumers. Publishing
// is strictly additive: failures never alter the emission decision.
type SignalPublisher interface {
	Publish(ctx context.Context, s *models.Signal) error
	Close() error
}

// Metrics records operational metrics for the engine and its plumbing.
type Metrics interface {
	RecordSignalEmitted(symbol, mode, direction string)
	RecordGateRejection(mode, gate string)
	RecordExtremity(symbol, state string)
	RecordBacktestRun(symbol, mode string)
	RecordCandleStored(symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
