package repository

// Interval represents a candle resolution.
type Interval string

const (
	I1m  Interval = "1m"
	I5m  Interval = "5m"
	I15m Interval = "15m"
	I1h  Interval = "1h"
	I4h  Interval = "4h"
	I1d  Interval = "1d"
)

// IsValidInterval returns true if iv is a supported interval.
func IsValidInterval(iv Interval) bool {
	switch iv {
	case I1m, I5m, I15m, I1h, I4h, I1d:
		return true
	default:
		return false
	}
}

// DefaultInterval returns the default interval.
func DefaultInterval() Interval { return I1h }

// NormalizeInterval converts a raw string to a valid interval (or default).
func NormalizeInterval(s string) Interval {
	if s == "" {
		return DefaultInterval()
	}
	iv := Interval(s)
	if IsValidInterval(iv) {
		return iv
	}
	return DefaultInterval()
}

// HigherIntervals lists the timeframes the bias gate prefers, strongest first.
func HigherIntervals() []Interval { return []Interval{I1d, I4h} }
