package v0_2

import "math"

// --- monotonic-clock types ---
type Instant = uint64
type Duration = uint64

// --- wall-clock types ---
type Datetime struct {
	Seconds     uint64
	Nanoseconds uint32
}

// datetimeOf splits a clamped reading into whole seconds and nanoseconds.
// Readings before the epoch are reported as the epoch.
func datetimeOf(seconds float64) Datetime {
	if !(seconds > 0) {
		return Datetime{}
	}
	whole := math.Floor(seconds)
	nanos := math.Round((seconds - whole) * 1e9)
	if nanos >= 1e9 {
		whole++
		nanos -= 1e9
	}
	return Datetime{Seconds: uint64(whole), Nanoseconds: uint32(nanos)}
}

// nanosOf converts seconds to nanoseconds, never below floor.
func nanosOf(seconds float64, floor uint64) uint64 {
	ns := math.Round(seconds * 1e9)
	if !(ns > float64(floor)) {
		return floor
	}
	if ns >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(ns)
}

// resolutionOf reports a policy resolution, at least one nanosecond.
func resolutionOf(seconds float64) Datetime {
	d := datetimeOf(seconds)
	if d == (Datetime{}) {
		d.Nanoseconds = 1
	}
	return d
}
