package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"SignalForge/internal/domain/models"
	drepo "SignalForge/internal/domain/repository"

	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
)

const defaultStreamURL = "wss://stream.binance.com:9443/stream"

// Stream implements CandleStream over the Binance combined kline WebSocket.
// The connection is an owned resource: Reconnect closes the old socket before
// dialing a new one, never leaking the previous connection.
type Stream struct {
	url          string
	symbols      []string
	interval     drepo.Interval
	pingInterval time.Duration
	retry        *backoff.Backoff

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// NewStream creates a kline stream for the given symbols and interval.
func NewStream(url string, symbols []string, interval drepo.Interval, reconnectDelay, pingInterval time.Duration) *Stream {
	if url == "" {
		url = defaultStreamURL
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	minDelay := reconnectDelay
	if minDelay <= 0 {
		minDelay = time.Second
	}
	return &Stream{
		url:          url,
		symbols:      symbols,
		interval:     interval,
		pingInterval: pingInterval,
		retry: &backoff.Backoff{
			Min:    minDelay,
			Max:    time.Minute,
			Factor: 2,
			Jitter: true,
		},
	}
}

// Connect dials the combined stream carrying every subscribed symbol.
func (s *Stream) Connect(ctx context.Context) error {
	streams := make([]string, len(s.symbols))
	for i, sym := range s.symbols {
		streams[i] = fmt.Sprintf("%s@kline_%s", strings.ToLower(sym), s.interval)
	}
	u := s.url + "?streams=" + strings.Join(streams, "/")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}

	s.mu.Lock()
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	s.retry.Reset()
	return nil
}

// Subscribe is a no-op: the combined-stream URL carries the subscriptions.
func (s *Stream) Subscribe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || !s.connected {
		return fmt.Errorf("binance stream not connected")
	}
	return nil
}

type wsKline struct {
	OpenTime      int64  `json:"t"`
	CloseTime     int64  `json:"T"`
	Symbol        string `json:"s"`
	Interval      string `json:"i"`
	Open          string `json:"o"`
	Close         string `json:"c"`
	High          string `json:"h"`
	Low           string `json:"l"`
	Volume        string `json:"v"`
	TradeCount    int64  `json:"n"`
	Closed        bool   `json:"x"`
	QuoteVolume   string `json:"q"`
	TakerBuyBase  string `json:"V"`
	TakerBuyQuote string `json:"Q"`
}

type wsEnvelope struct {
	Stream string `json:"stream"`
	Data   struct {
		EventType string  `json:"e"`
		Symbol    string  `json:"s"`
		Kline     wsKline `json:"k"`
	} `json:"data"`
}

// Read streams closed candles and errors. In-progress bars are skipped; the
// engine only ever sees finished candles.
func (s *Stream) Read(ctx context.Context) (<-chan *models.CandleEvent, <-chan error) {
	events := make(chan *models.CandleEvent, 256)
	errs := make(chan error, 1)

	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.conn != nil {
					_ = s.conn.WriteMessage(websocket.PingMessage, nil)
				}
				s.mu.Unlock()
			}
		}
	}()

	go func() {
		defer close(events)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				s.mu.Lock()
				conn := s.conn
				s.mu.Unlock()
				if conn == nil {
					errs <- fmt.Errorf("binance stream conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance read: %w", err)
					return
				}
				var env wsEnvelope
				if err := json.Unmarshal(b, &env); err != nil {
					// ignore non-kline frames
					continue
				}
				if env.Data.EventType != "kline" || !env.Data.Kline.Closed {
					continue
				}
				ev, err := klineToEvent(env.Data.Kline)
				if err != nil {
					continue
				}
				select {
				case events <- ev:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return events, errs
}

func klineToEvent(k wsKline) (*models.CandleEvent, error) {
	c := models.Candle{
		OpenTime:   k.OpenTime,
		CloseTime:  k.CloseTime,
		TradeCount: k.TradeCount,
	}
	fields := []struct {
		raw  string
		dest *float64
	}{
		{k.Open, &c.Open}, {k.High, &c.High}, {k.Low, &c.Low}, {k.Close, &c.Close},
		{k.Volume, &c.Volume}, {k.QuoteVolume, &c.QuoteVolume},
		{k.TakerBuyBase, &c.TakerBuyBase}, {k.TakerBuyQuote, &c.TakerBuyQuote},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse kline field: %w", err)
		}
		*f.dest = v
	}
	return &models.CandleEvent{Symbol: k.Symbol, Interval: k.Interval, Candle: c}, nil
}

// Reconnect closes the connection and dials again with capped exponential
// backoff between attempts.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.retry.Duration()):
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

var _ drepo.CandleStream = (*Stream)(nil)
