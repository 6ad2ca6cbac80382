package models

import "time"

// Candle is one OHLCV bar for a fixed interval, in the shape Binance klines
// arrive. Times are unix milliseconds. Sequences handed to the engine are
// expected to be gap-free and strictly ascending by OpenTime; the indicator
// math does not validate this.
type Candle struct {
	OpenTime      int64   `json:"openTime"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	Volume        float64 `json:"volume"`
	CloseTime     int64   `json:"closeTime"`
	QuoteVolume   float64 `json:"quoteVolume"`
	TradeCount    int64   `json:"tradeCount"`
	TakerBuyBase  float64 `json:"takerBuyBase"`
	TakerBuyQuote float64 `json:"takerBuyQuote"`
}

// OpenedAt returns the bar open time as time.Time.
func (c Candle) OpenedAt() time.Time { return time.UnixMilli(c.OpenTime) }

// Range returns high-low.
func (c Candle) Range() float64 { return c.High - c.Low }

// Body returns the absolute open-close distance.
func (c Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// IsBullish reports close above open.
func (c Candle) IsBullish() bool { return c.Close > c.Open }

// UpperWick returns the distance from the body top to the high.
func (c Candle) UpperWick() float64 {
	if c.Close >= c.Open {
		return c.High - c.Close
	}
	return c.High - c.Open
}

// LowerWick returns the distance from the body bottom to the low.
func (c Candle) LowerWick() float64 {
	if c.Close >= c.Open {
		return c.Open - c.Low
	}
	return c.Close - c.Low
}

// CandleEvent is one closed candle from the live stream, tagged with the
// market it belongs to.
type CandleEvent struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Candle   Candle `json:"candle"`
}

// Closes extracts the close series from candles.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
