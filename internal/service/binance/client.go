package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"SignalForge/internal/domain/models"
	drepo "SignalForge/internal/domain/repository"
	"SignalForge/internal/service/ratelimit"
	xhttp "SignalForge/pkg/http"
)

const defaultRESTBaseURL = "https://api.binance.com"

// Client implements CandleProvider against the Binance klines REST API.
type Client struct {
	baseURL string
	http    *xhttp.Client
	limiter *ratelimit.Limiter
}

// NewClient creates a REST candle provider.
func NewClient(baseURL string, timeout time.Duration, limiter *ratelimit.Limiter) *Client {
	if baseURL == "" {
		baseURL = defaultRESTBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter: limiter,
	}
}

// Klines fetches up to limit closed candles, oldest first, as the exchange
// returns them. The response is the positional-array format Binance uses.
func (c *Client) Klines(ctx context.Context, symbol string, interval drepo.Interval, limit int) ([]models.Candle, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	if err := c.waitForToken(ctx); err != nil {
		return nil, err
	}

	var raw []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"interval": {string(interval)},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s %s: %w", symbol, interval, err)
	}

	var rows [][]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("binance klines decode: %w", err)
	}

	out := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		cndl, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("binance kline row: %w", err)
		}
		out = append(out, cndl)
	}
	return out, nil
}

// waitForToken blocks on the shared token bucket so bursts of backtest and
// chart requests stay inside the exchange weight limits.
func (c *Client) waitForToken(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	for !c.limiter.Allow("binance_klines", 20, 10) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}

// parseKline converts one positional row. Binance sends prices as strings
// and times as integer milliseconds.
func parseKline(row []json.RawMessage) (models.Candle, error) {
	var c models.Candle
	if len(row) < 11 {
		return c, fmt.Errorf("short row: %d fields", len(row))
	}
	if err := json.Unmarshal(row[0], &c.OpenTime); err != nil {
		return c, fmt.Errorf("open time: %w", err)
	}
	if err := json.Unmarshal(row[6], &c.CloseTime); err != nil {
		return c, fmt.Errorf("close time: %w", err)
	}
	if err := json.Unmarshal(row[8], &c.TradeCount); err != nil {
		return c, fmt.Errorf("trade count: %w", err)
	}
	fields := []struct {
		idx  int
		dest *float64
	}{
		{1, &c.Open}, {2, &c.High}, {3, &c.Low}, {4, &c.Close}, {5, &c.Volume},
		{7, &c.QuoteVolume}, {9, &c.TakerBuyBase}, {10, &c.TakerBuyQuote},
	}
	for _, f := range fields {
		v, err := parsePriceString(row[f.idx])
		if err != nil {
			return c, fmt.Errorf("field %d: %w", f.idx, err)
		}
		*f.dest = v
	}
	return c, nil
}

func parsePriceString(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

var _ drepo.CandleProvider = (*Client)(nil)
