package signal

import (
	"SignalForge/internal/domain/models"
	"SignalForge/internal/services/indicator"
)

// boosterInput is everything a booster rule may inspect.
type boosterInput struct {
	snap      *models.IndicatorSnapshot
	direction models.Direction
	momentum  float64
}

// booster is one named additive rule tagged with the modes it applies to.
type booster struct {
	name  string
	boost float64
	modes []Mode
	fires func(boosterInput) bool
}

func (b booster) appliesTo(mode Mode) bool {
	for _, m := range b.modes {
		if m == mode {
			return true
		}
	}
	return false
}

var boosters = []booster{
	{
		name:  "trend confluence",
		boost: 0.15,
		modes: []Mode{ModeConservative, ModeBalanced},
		fires: func(in boosterInput) bool {
			s := in.snap
			if s.ADX.ADX <= 25 {
				return false
			}
			if in.direction == models.DirectionBuy {
				return s.EMA20 > s.EMA50 && indicator.Defined(s.SMA200) && s.Price > s.SMA200
			}
			return s.EMA20 < s.EMA50 && indicator.Defined(s.SMA200) && s.Price < s.SMA200
		},
	},
	{
		name:  "triple alignment",
		boost: 0.20,
		modes: []Mode{ModeConservative},
		fires: func(in boosterInput) bool {
			s := in.snap
			if !indicator.Defined(s.SMA200) {
				return false
			}
			if in.direction == models.DirectionBuy {
				return s.EMA20 > s.EMA50 && s.EMA50 > s.SMA200 && s.Price > s.SMA200
			}
			return s.EMA20 < s.EMA50 && s.EMA50 < s.SMA200 && s.Price < s.SMA200
		},
	},
	{
		name:  "strong ADX",
		boost: 0.15,
		modes: []Mode{ModeConservative},
		fires: func(in boosterInput) bool { return in.snap.ADX.ADX > 30 },
	},
	{
		name:  "reversal pattern",
		boost: 0.20,
		modes: []Mode{ModeRisky},
		fires: func(in boosterInput) bool {
			if in.direction == models.DirectionBuy {
				return indicator.BullishReversal(in.snap.Patterns)
			}
			return indicator.BearishReversal(in.snap.Patterns)
		},
	},
	{
		name:  "momentum surge",
		boost: 0.20,
		modes: []Mode{ModeScalping},
		fires: func(in boosterInput) bool { return in.momentum >= 0.6 },
	},
	{
		name:  "fast EMA alignment",
		boost: 0.15,
		modes: []Mode{ModeScalping},
		fires: func(in boosterInput) bool {
			if in.direction == models.DirectionBuy {
				return in.snap.EMA9 > in.snap.EMA20
			}
			return in.snap.EMA9 < in.snap.EMA20
		},
	},
}
