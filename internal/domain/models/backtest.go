package models

import (
	"encoding/json"
	"time"
)

// Position is the single open position a backtest run may hold.
type Position struct {
	Direction   Direction `json:"direction"`
	EntryPrice  float64   `json:"entryPrice"`
	Quantity    float64   `json:"quantity"`
	Collateral  float64   `json:"collateral"`
	StopLoss    float64   `json:"stopLoss"`
	TakeProfit1 float64   `json:"takeProfit1"`
	EntryTime   time.Time `json:"entryTime"`
}

// Trade is one closed round trip in a backtest.
type Trade struct {
	Direction  Direction `json:"direction"`
	EntryPrice float64   `json:"entryPrice"`
	ExitPrice  float64   `json:"exitPrice"`
	Quantity   float64   `json:"quantity"`
	PnL        float64   `json:"pnl"`
	EntryTime  time.Time `json:"entryTime"`
	ExitTime   time.Time `json:"exitTime"`
	ExitReason string    `json:"exitReason"` // Stop Loss / Take Profit / End of Backtest
	Score      float64   `json:"score"`
}

// EquityPoint is one sample of the equity curve.
type EquityPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// ProfitFactor is gross wins over gross losses. When a run has wins and no
// losses the ratio is infinite; that case is carried explicitly instead of
// as a string sentinel.
type ProfitFactor struct {
	Value    float64
	Infinite bool
}

// MarshalJSON renders "inf" for the infinite case and the number otherwise.
func (p ProfitFactor) MarshalJSON() ([]byte, error) {
	if p.Infinite {
		return json.Marshal("inf")
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON accepts either the "inf" sentinel or a number.
func (p *ProfitFactor) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s == "inf" {
			p.Infinite = true
			p.Value = 0
			return nil
		}
	}
	p.Infinite = false
	return json.Unmarshal(b, &p.Value)
}

// BacktestStats summarizes a completed run.
type BacktestStats struct {
	InitialCapital float64      `json:"initialCapital"`
	FinalBalance   float64      `json:"finalBalance"`
	NetProfit      float64      `json:"netProfit"`
	NetProfitPct   float64      `json:"netProfitPct"`
	TotalTrades    int          `json:"totalTrades"`
	Wins           int          `json:"wins"`
	Losses         int          `json:"losses"`
	WinRate        float64      `json:"winRate"` // %
	MaxDrawdownPct float64      `json:"maxDrawdownPct"`
	ProfitFactor   ProfitFactor `json:"profitFactor"`
}

// BacktestResult is the full output of one simulator run.
type BacktestResult struct {
	RunID       string        `json:"runId"`
	Symbol      string        `json:"symbol"`
	Interval    string        `json:"interval"`
	Mode        string        `json:"mode"`
	Stats       BacktestStats `json:"stats"`
	Trades      []Trade       `json:"trades"` // newest first
	EquityCurve []EquityPoint `json:"equityCurve"`
}
