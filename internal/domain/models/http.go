package models

// Requests for engine HTTP endpoints. Defined in domain for consistency and reuse.

type AnalysisRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Interval string `query:"interval" json:"interval" default:"1h" validate:"oneof=1m 5m 15m 1h 4h 1d"`
	Limit    int    `query:"limit" json:"limit" default:"500" validate:"gte=200,lte=1000"`
	Series   bool   `query:"series" json:"series"`
}

type SignalRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Interval string `query:"interval" json:"interval" default:"1h" validate:"oneof=1m 5m 15m 1h 4h 1d"`
	Mode     string `query:"mode" json:"mode" default:"BALANCED" validate:"oneof=CONSERVATIVE BALANCED RISKY SCALPING"`
	Limit    int    `query:"limit" json:"limit" default:"500" validate:"gte=200,lte=1000"`
}

type GPRequest struct {
	Symbol   string  `query:"symbol" json:"symbol" validate:"required"`
	Interval string  `query:"interval" json:"interval" default:"1h" validate:"oneof=1m 5m 15m 1h 4h 1d"`
	Window   int     `query:"window" json:"window" default:"30" validate:"gte=10,lte=100"`
	Forecast int     `query:"forecast" json:"forecast" default:"2" validate:"gte=1,lte=10"`
	Sigma    float64 `query:"sigma" json:"sigma" default:"0.125" validate:"gt=0"`
	Mult     float64 `query:"mult" json:"mult" default:"1.75" validate:"gt=0"`
}

type BacktestRequest struct {
	Symbol         string  `query:"symbol" json:"symbol" validate:"required"`
	Interval       string  `query:"interval" json:"interval" default:"1h" validate:"oneof=1m 5m 15m 1h 4h 1d"`
	Mode           string  `query:"mode" json:"mode" default:"BALANCED" validate:"oneof=CONSERVATIVE BALANCED RISKY SCALPING"`
	InitialCapital float64 `query:"initialCapital" json:"initialCapital" default:"10000" validate:"gt=0"`
}

type CandlesRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Interval string `query:"interval" json:"interval" default:"1h" validate:"oneof=1m 5m 15m 1h 4h 1d"`
	From     string `query:"from" json:"from"`
	To       string `query:"to" json:"to"`
	Limit    int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=5000"`
}
