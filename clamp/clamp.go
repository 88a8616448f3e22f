// Package clamp reduces timestamp precision to a fixed grid and jitters the
// reported value at each grid boundary.
//
// Every timestamp in the grid cell [floor, floor+resolution) is compared against
// a threshold that is derived only from floor. Readings at or past the threshold
// are reported as floor+resolution, the others as floor. Because the threshold
// is a pure function of the cell, repeated sampling inside one cell cannot be
// averaged to recover the sub-resolution position of the boundary.
package clamp

import (
	"errors"
	"math"
)

// Secret is xored into the clamped time before hashing.
const Secret uint64 = 0x7CAD93BF4A120ED1

const (
	mantissaMask uint64 = 0x000FFFFFFFFFFFFF
	exponentBits uint64 = 0x3FF0000000000000
)

const (
	DefaultResolution = 1e-4
	DefaultJitter     = true
)

// ErrInvalidResolution is returned by Validate for resolutions that are not
// finite and strictly positive.
var ErrInvalidResolution = errors.New("clamp: resolution must be a finite number greater than zero")

// Config is a clamp policy. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// Resolution is the grid spacing in seconds.
	Resolution float64 `yaml:"resolution"`
	// Jitter enables the randomized round up at grid boundaries.
	Jitter bool `yaml:"jitter"`
}

// DefaultConfig returns a 100µs grid with jitter enabled.
func DefaultConfig() Config {
	return Config{Resolution: DefaultResolution, Jitter: DefaultJitter}
}

// Validate reports whether c.Resolution can produce a meaningful grid.
// Clamp itself accepts any resolution.
func (c Config) Validate() error {
	r := c.Resolution
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return ErrInvalidResolution
	}
	return nil
}

// Fraction maps a clamped time to a pseudorandom value in [0, 1).
//
// The low 52 bits of the hash become the mantissa of a float64 in [1, 2).
func Fraction(clamped float64) float64 {
	h := Mix(BitsOfDouble(clamped) ^ Secret)
	return DoubleOfBits((h&mantissaMask)|exponentBits) - 1
}

// Floor snaps t down to the grid. The divide, floor, multiply order is kept
// as is so results stay bit-identical across implementations.
func (c Config) Floor(t float64) float64 {
	return math.Floor(t/c.Resolution) * c.Resolution
}

// Threshold returns the point in the cell starting at clamped from which
// readings are rounded up.
func (c Config) Threshold(clamped float64) float64 {
	// The explicit conversion keeps the compiler from fusing into an FMA.
	return clamped + float64(c.Resolution*Fraction(clamped))
}

// Decide clamps t and reports whether it was moved up to the next grid step.
func (c Config) Decide(t float64) (float64, bool) {
	clamped := c.Floor(t)
	if !c.Jitter {
		return clamped, false
	}
	if t >= c.Threshold(clamped) {
		return clamped + c.Resolution, true
	}
	return clamped, false
}

// Clamp returns the reported time for t.
func (c Config) Clamp(t float64) float64 {
	v, _ := c.Decide(t)
	return v
}
