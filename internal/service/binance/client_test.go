package binance

import (
	"encoding/json"
	"testing"
)

// one row of the Binance klines response, as documented
const sampleKlineRow = `[
  1672531200000,
  "16541.77000000",
  "16628.00000000",
  "16499.01000000",
  "16616.75000000",
  "12147.59439000",
  1672534799999,
  "201292549.78542610",
  312497,
  "6121.82011000",
  "101440740.55552430",
  "0"
]`

func TestParseKline(t *testing.T) {
	var row []json.RawMessage
	if err := json.Unmarshal([]byte(sampleKlineRow), &row); err != nil {
		t.Fatalf("unmarshal row: %v", err)
	}

	c, err := parseKline(row)
	if err != nil {
		t.Fatalf("parseKline: %v", err)
	}

	if c.OpenTime != 1672531200000 {
		t.Errorf("open time = %d", c.OpenTime)
	}
	if c.CloseTime != 1672534799999 {
		t.Errorf("close time = %d", c.CloseTime)
	}
	if c.Open != 16541.77 || c.High != 16628 || c.Low != 16499.01 || c.Close != 16616.75 {
		t.Errorf("ohlc = %v %v %v %v", c.Open, c.High, c.Low, c.Close)
	}
	if c.Volume != 12147.59439 {
		t.Errorf("volume = %v", c.Volume)
	}
	if c.QuoteVolume != 201292549.7854261 {
		t.Errorf("quote volume = %v", c.QuoteVolume)
	}
	if c.TradeCount != 312497 {
		t.Errorf("trade count = %d", c.TradeCount)
	}
	if c.TakerBuyBase != 6121.82011 || c.TakerBuyQuote != 101440740.5555243 {
		t.Errorf("taker buy = %v %v", c.TakerBuyBase, c.TakerBuyQuote)
	}
}

func TestParseKlineShortRow(t *testing.T) {
	row := make([]json.RawMessage, 5)
	if _, err := parseKline(row); err == nil {
		t.Fatalf("expected error on short row")
	}
}

func TestKlineToEvent(t *testing.T) {
	k := wsKline{
		OpenTime:      1672531200000,
		CloseTime:     1672534799999,
		Symbol:        "BTCUSDT",
		Interval:      "1h",
		Open:          "16541.77",
		Close:         "16616.75",
		High:          "16628.00",
		Low:           "16499.01",
		Volume:        "12147.59439",
		TradeCount:    312497,
		Closed:        true,
		QuoteVolume:   "201292549.78",
		TakerBuyBase:  "6121.82011",
		TakerBuyQuote: "101440740.55",
	}

	ev, err := klineToEvent(k)
	if err != nil {
		t.Fatalf("klineToEvent: %v", err)
	}
	if ev.Symbol != "BTCUSDT" || ev.Interval != "1h" {
		t.Errorf("event key = %s %s", ev.Symbol, ev.Interval)
	}
	if ev.Candle.Close != 16616.75 || ev.Candle.TradeCount != 312497 {
		t.Errorf("candle = %+v", ev.Candle)
	}
}

func TestKlineToEventBadPrice(t *testing.T) {
	k := wsKline{Open: "not a number", Close: "1", High: "1", Low: "1", Volume: "1", QuoteVolume: "1", TakerBuyBase: "1", TakerBuyQuote: "1"}
	if _, err := klineToEvent(k); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestStreamEnvelopeDecoding(t *testing.T) {
	payload := `{
	  "stream": "btcusdt@kline_1h",
	  "data": {
	    "e": "kline",
	    "s": "BTCUSDT",
	    "k": {
	      "t": 1672531200000, "T": 1672534799999,
	      "s": "BTCUSDT", "i": "1h",
	      "o": "16541.77", "c": "16616.75", "h": "16628.00", "l": "16499.01",
	      "v": "12147.59", "n": 312497, "x": true,
	      "q": "201292549.78", "V": "6121.82", "Q": "101440740.55"
	    }
	  }
	}`
	var env wsEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Data.EventType != "kline" {
		t.Errorf("event type = %q", env.Data.EventType)
	}
	if !env.Data.Kline.Closed {
		t.Errorf("expected closed bar")
	}
	if env.Data.Kline.Interval != "1h" || env.Data.Kline.Symbol != "BTCUSDT" {
		t.Errorf("kline key = %s %s", env.Data.Kline.Symbol, env.Data.Kline.Interval)
	}
}
