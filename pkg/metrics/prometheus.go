package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signalsEmitted *prometheus.CounterVec
	gateRejections *prometheus.CounterVec
	extremities    *prometheus.CounterVec
	backtestRuns   *prometheus.CounterVec
	candlesStored  *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastPrice      *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		signalsEmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalforge_signals_emitted_total",
				Help: "Signals that passed every gate",
			},
			[]string{"symbol", "mode", "direction"},
		),
		gateRejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalforge_gate_rejections_total",
				Help: "Evaluations short-circuited by a generator gate",
			},
			[]string{"mode", "gate"},
		),
		extremities: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalforge_gp_extremities_total",
				Help: "Gaussian-process extremity state changes",
			},
			[]string{"symbol", "state"},
		),
		backtestRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalforge_backtest_runs_total",
				Help: "Completed backtest runs",
			},
			[]string{"symbol", "mode"},
		),
		candlesStored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalforge_candles_stored_total",
				Help: "Candles persisted to the store",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalforge_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signalforge_last_price",
				Help: "Last recorded close for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalforge_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSignalEmitted counts an emitted signal.
func (r *Recorder) RecordSignalEmitted(symbol, mode, direction string) {
	r.signalsEmitted.WithLabelValues(symbol, mode, direction).Inc()
}

// RecordGateRejection counts a gate short-circuit.
func (r *Recorder) RecordGateRejection(mode, gate string) {
	r.gateRejections.WithLabelValues(mode, gate).Inc()
}

// RecordExtremity counts a GP state change.
func (r *Recorder) RecordExtremity(symbol, state string) {
	r.extremities.WithLabelValues(symbol, state).Inc()
}

// RecordBacktestRun counts a completed backtest.
func (r *Recorder) RecordBacktestRun(symbol, mode string) {
	r.backtestRuns.WithLabelValues(symbol, mode).Inc()
}

// RecordCandleStored counts a persisted candle.
func (r *Recorder) RecordCandleStored(symbol string) {
	r.candlesStored.WithLabelValues(symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last close for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
