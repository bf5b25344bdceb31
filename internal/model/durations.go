package model

import (
	"math"
	"strconv"
	"strings"
)

const (
	MinFocusMinutes = 1
	MaxFocusMinutes = 180
	MinBreakMinutes = 1
	MaxBreakMinutes = 60

	DefaultFocusMinutes = 25
	DefaultBreakMinutes = 5
)

// Durations holds the configured length of each phase in whole minutes.
type Durations struct {
	FocusMinutes int
	BreakMinutes int
}

func DefaultDurations() Durations {
	return Durations{FocusMinutes: DefaultFocusMinutes, BreakMinutes: DefaultBreakMinutes}
}

// Clamp forces both durations into their valid ranges.
func (d Durations) Clamp() Durations {
	return Durations{
		FocusMinutes: ClampInt(d.FocusMinutes, MinFocusMinutes, MaxFocusMinutes),
		BreakMinutes: ClampInt(d.BreakMinutes, MinBreakMinutes, MaxBreakMinutes),
	}
}

// Seconds returns the length of phase p in seconds.
func (d Durations) Seconds(p Phase) int {
	if p == PhaseBreak {
		return d.BreakMinutes * 60
	}
	return d.FocusMinutes * 60
}

func ClampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ParseMinutes coerces free-form input into [min, max]. Input that is not a
// number maps to min; fractional values are floored.
func ParseMinutes(raw string, min, max int) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) {
		return min
	}
	if math.IsInf(f, 1) || f >= float64(max) {
		return max
	}
	if math.IsInf(f, -1) || f <= float64(min) {
		return min
	}
	return ClampInt(int(math.Floor(f)), min, max)
}
