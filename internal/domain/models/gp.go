package models

// ExtremityState is the GP detector's discrete per-bar state.
type ExtremityState string

const (
	ExtremityNone  ExtremityState = ""
	ExtremityUpper ExtremityState = "UPPER_EXTREMITY"
	ExtremityLower ExtremityState = "LOWER_EXTREMITY"
)

// SignalQuality tiers a GP extremity by its composite score.
type SignalQuality string

const (
	QualityWeak     SignalQuality = "WEAK"
	QualityModerate SignalQuality = "MODERATE"
	QualityStrong   SignalQuality = "STRONG"
)

// GPResult is the Gaussian-Process extremity detector output for the most
// recent bar. Signal is set only on the bar where the state changed; a bar
// that merely stays outside the band does not re-fire.
type GPResult struct {
	Out          float64        `json:"out"`   // smoothed value
	Upper        float64        `json:"upper"` // out + mult*MAE
	Lower        float64        `json:"lower"` // out - mult*MAE
	Signal       ExtremityState `json:"signal,omitempty"`
	State        ExtremityState `json:"state,omitempty"`
	Velocity     float64        `json:"velocity"`     // % change of out vs previous bar
	BandWidthPct float64        `json:"bandWidthPct"` // band width relative to out
	DeviationPct float64        `json:"deviationPct"` // close distance from out
	Confidence   float64        `json:"confidence"`   // 0-100
	Quality      SignalQuality  `json:"quality"`
	RSI          float64        `json:"rsi"`
	RSIConfirmed bool           `json:"rsiConfirmed"`
	TrendAligned bool           `json:"trendAligned"`
	Score        float64        `json:"score"` // 0-100
}
