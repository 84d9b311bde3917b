package domain

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze time via SetClock.
// Production code uses the real clock; tests inject a fake for deterministic
// historical/predicted classification.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Clock returns the active time source.
func Clock() clockwork.Clock {
	return clock
}

// ClassifyDataType reports whether a range describes the past or a
// forecast: ranges starting after the current instant are predicted.
func ClassifyDataType(r TimeRange) DataType {
	if r.From.After(clock.Now()) {
		return DataPredicted
	}
	return DataHistorical
}
