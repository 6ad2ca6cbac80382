package models

import "time"

// Direction of a trade signal.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Confidence tier derived from the aggregate score.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// ConfidenceForScore maps a 0-100 score to a tier. HIGH >= 80, MEDIUM >= 60.
func ConfidenceForScore(score float64) Confidence {
	switch {
	case score >= 80:
		return ConfidenceHigh
	case score >= 60:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Reason is one scored contribution to an emitted signal.
type Reason struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

// Levels holds the constructed trade levels for a signal.
type Levels struct {
	Entry       float64 `json:"entry"`
	StopLoss    float64 `json:"stopLoss"`
	TakeProfit1 float64 `json:"takeProfit1"`
	Support     float64 `json:"support"`
	Resistance  float64 `json:"resistance"`
}

// Signal is the immutable output of one generator evaluation that passed
// every gate. A rejected evaluation yields no Signal at all.
type Signal struct {
	ID         string             `json:"id"`
	Symbol     string             `json:"symbol"`
	Direction  Direction          `json:"direction"`
	Timestamp  time.Time          `json:"timestamp"`
	Entry      float64            `json:"entry"`
	Score      float64            `json:"score"` // 0-100
	Confidence Confidence         `json:"confidence"`
	Subscores  map[string]float64 `json:"subscores"` // category -> 0..1
	Reasons    []Reason           `json:"reasons"`
	Warnings   []string           `json:"warnings"`
	Levels     Levels             `json:"levels"`
	RiskReward float64            `json:"riskReward"`
	Indicators IndicatorSnapshot  `json:"indicators"`
	Regime     Regime             `json:"regime"`
	Mode       string             `json:"mode"`
}
