package models

// Regime labels coarse market behavior.
type Regime string

const (
	RegimeTrendingBull Regime = "TRENDING_BULL"
	RegimeTrendingBear Regime = "TRENDING_BEAR"
	RegimeChoppy       Regime = "CHOPPY"
)

// MACDValue is the current MACD reading.
type MACDValue struct {
	Value     float64 `json:"value"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// BollingerValue is the current Bollinger band reading.
type BollingerValue struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// StochasticValue is the current smoothed stochastic reading.
type StochasticValue struct {
	K         float64 `json:"k"`
	D         float64 `json:"d"`
	Histogram float64 `json:"histogram"`
}

// ADXValue is the current directional-movement reading.
type ADXValue struct {
	ADX     float64 `json:"adx"`
	PlusDI  float64 `json:"plusDI"`
	MinusDI float64 `json:"minusDI"`
}

// PivotPoints are classic floor-trader pivots from the previous bar.
type PivotPoints struct {
	Pivot float64 `json:"pivot"`
	R1    float64 `json:"r1"`
	R2    float64 `json:"r2"`
	R3    float64 `json:"r3"`
	S1    float64 `json:"s1"`
	S2    float64 `json:"s2"`
	S3    float64 `json:"s3"`
}

// PatternFlags marks candlestick patterns detected on the tail of the window.
type PatternFlags struct {
	Hammer             bool `json:"hammer"`
	InvertedHammer     bool `json:"invertedHammer"`
	BullishEngulfing   bool `json:"bullishEngulfing"`
	BearishEngulfing   bool `json:"bearishEngulfing"`
	Doji               bool `json:"doji"`
	ThreeWhiteSoldiers bool `json:"threeWhiteSoldiers"`
	ThreeBlackCrows    bool `json:"threeBlackCrows"`
	MorningStar        bool `json:"morningStar"`
	EveningStar        bool `json:"eveningStar"`
	DoubleTop          bool `json:"doubleTop"`
	DoubleBottom       bool `json:"doubleBottom"`
}

// VolumeStats summarizes recent volume behavior.
type VolumeStats struct {
	Current float64 `json:"current"`
	Average float64 `json:"average"`
	Spike   bool    `json:"spike"`
}

// BuyerPressure is the taker-buy share of volume averaged over the window.
type BuyerPressure struct {
	Ratio float64 `json:"ratio"` // 0..1
	Label string  `json:"label"` // BULLISH / BEARISH / NEUTRAL
}

// DivergenceResult flags price/indicator divergence over a short lookback.
type DivergenceResult struct {
	Bullish  bool    `json:"bullish"`
	Bearish  bool    `json:"bearish"`
	Strength float64 `json:"strength"` // 0..1
}

// AccumulationResult flags volume accumulation under flat price.
type AccumulationResult struct {
	Detected bool    `json:"detected"`
	Strength float64 `json:"strength"` // 0..1
}

// IndicatorSnapshot is the full derived state for the latest bar of a window.
// Recomputed fresh on every evaluation and never mutated.
type IndicatorSnapshot struct {
	Price          float64            `json:"price"`
	RSI            float64            `json:"rsi"`
	RSIPrev        float64            `json:"rsiPrev"`
	MACD           MACDValue          `json:"macd"`
	Bollinger      BollingerValue     `json:"bollinger"`
	EMA9           float64            `json:"ema9"`
	EMA20          float64            `json:"ema20"`
	EMA50          float64            `json:"ema50"`
	SMA200         float64            `json:"sma200"`
	ATR            float64            `json:"atr"`
	ADX            ADXValue           `json:"adx"`
	Stochastic     StochasticValue    `json:"stochastic"`
	OBV            float64            `json:"obv"`
	VWAP           float64            `json:"vwap"`
	Support        float64            `json:"support"`
	Resistance     float64            `json:"resistance"`
	Pivots         PivotPoints        `json:"pivots"`
	Patterns       PatternFlags       `json:"patterns"`
	VolumeStats    VolumeStats        `json:"volumeStats"`
	BuyerPressure  BuyerPressure      `json:"buyerPressure"`
	RSIDivergence  DivergenceResult   `json:"rsiDivergence"`
	MACDDivergence DivergenceResult   `json:"macdDivergence"`
	Accumulation   AccumulationResult `json:"accumulation"`
	Choppiness     float64            `json:"choppiness"`
	Regime         Regime             `json:"regime"`
}

// IndicatorSeries carries full historical series for charting.
// Warm-up indices hold NaN.
type IndicatorSeries struct {
	EMA20     []float64 `json:"ema20"`
	EMA50     []float64 `json:"ema50"`
	SMA200    []float64 `json:"sma200"`
	RSI       []float64 `json:"rsi"`
	MACD      []float64 `json:"macd"`
	MACDSig   []float64 `json:"macdSignal"`
	MACDHist  []float64 `json:"macdHistogram"`
	BBUpper   []float64 `json:"bbUpper"`
	BBMiddle  []float64 `json:"bbMiddle"`
	BBLower   []float64 `json:"bbLower"`
	OBV       []float64 `json:"obv"`
	CloseTime []int64   `json:"closeTime"`
}

// Analysis bundles the snapshot with chartable series.
type Analysis struct {
	Snapshot IndicatorSnapshot `json:"snapshot"`
	FullData *IndicatorSeries  `json:"fullData,omitempty"`
}

// TimeframeContext is what one higher timeframe contributes to the bias gate.
type TimeframeContext struct {
	Regime     Regime
	Indicators *IndicatorSnapshot
}

// MultiTimeframeContext maps interval label ("4h", "1d") to its context.
// A nil map degrades the bias gate to single-timeframe logic.
type MultiTimeframeContext map[string]TimeframeContext
