package signal

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects one of the fixed scoring presets. The table below is built
// once and never mutated at runtime.
type Mode string

const (
	ModeConservative Mode = "CONSERVATIVE"
	ModeBalanced     Mode = "BALANCED"
	ModeRisky        Mode = "RISKY"
	ModeScalping     Mode = "SCALPING"
)

var ErrUnknownMode = errors.New("unknown signal mode")

// ParseMode normalizes and validates a mode label.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := modeConfigs[m]; !ok {
		return "", fmt.Errorf("parse mode %q: %w", s, ErrUnknownMode)
	}
	return m, nil
}

// Weights are the per-category multipliers of the aggregate score.
// Each mode's weights sum to 1.0 so the pre-boost aggregate stays in [0,1].
type Weights struct {
	Momentum      float64
	Trend         float64
	TrendStrength float64
	Levels        float64
	Volume        float64
	Patterns      float64
	Divergence    float64
	Accumulation  float64
}

// ModeConfig is one immutable scoring preset.
type ModeConfig struct {
	Weights         Weights
	MomentumDivisor float64 // normalizes the raw momentum sum into [0,1]
	ScoreToEmit     float64 // aggregate must exceed this to emit
	ConvergeFloor   float64 // subscore level that counts as "converging"
	MinConverging   int     // categories at or above the floor required
	MinMomentum     float64 // hard momentum floor, 0 disables

	AbortOnChop     bool // regime gate hard-fails above chopCeiling
	WarnOnChop      bool // SCALPING is exempt from the chop warning
	AbortOnWeakADX  bool
	RejectNeutral   bool // neutral bias short-circuits to no signal
	RejectCounter   bool // direction against the local regime short-circuits
	AbortWrongSMA   bool // price on the wrong side of SMA200 short-circuits
}

const (
	chopCeiling  = 61.8
	weakADXFloor = 20.0
)

var modeConfigs = map[Mode]ModeConfig{
	ModeConservative: {
		Weights: Weights{
			Momentum: 0.15, Trend: 0.25, TrendStrength: 0.15, Levels: 0.15,
			Volume: 0.10, Patterns: 0.05, Divergence: 0.10, Accumulation: 0.05,
		},
		MomentumDivisor: 3.5,
		ScoreToEmit:     0.62,
		ConvergeFloor:   0.5,
		MinConverging:   4,
		AbortOnChop:     true,
		WarnOnChop:      true,
		AbortOnWeakADX:  true,
		RejectNeutral:   true,
		RejectCounter:   true,
		AbortWrongSMA:   true,
	},
	ModeBalanced: {
		Weights: Weights{
			Momentum: 0.20, Trend: 0.20, TrendStrength: 0.10, Levels: 0.15,
			Volume: 0.10, Patterns: 0.10, Divergence: 0.10, Accumulation: 0.05,
		},
		MomentumDivisor: 3.0,
		ScoreToEmit:     0.55,
		ConvergeFloor:   0.45,
		MinConverging:   3,
		WarnOnChop:      true,
	},
	ModeRisky: {
		Weights: Weights{
			Momentum: 0.30, Trend: 0.10, TrendStrength: 0.05, Levels: 0.10,
			Volume: 0.15, Patterns: 0.15, Divergence: 0.10, Accumulation: 0.05,
		},
		MomentumDivisor: 2.5,
		ScoreToEmit:     0.50,
		ConvergeFloor:   0.4,
		MinConverging:   2,
		MinMomentum:     0.4,
		WarnOnChop:      true,
	},
	ModeScalping: {
		Weights: Weights{
			Momentum: 0.35, Trend: 0.15, TrendStrength: 0.05, Levels: 0.15,
			Volume: 0.20, Patterns: 0.05, Divergence: 0.05, Accumulation: 0,
		},
		MomentumDivisor: 3.5,
		ScoreToEmit:     0.50,
		ConvergeFloor:   0.4,
		MinConverging:   2,
	},
}

// ConfigFor returns the preset for a parsed mode.
func ConfigFor(mode Mode) ModeConfig { return modeConfigs[mode] }

// Modes lists the supported presets in a stable order.
func Modes() []Mode {
	return []Mode{ModeConservative, ModeBalanced, ModeRisky, ModeScalping}
}
