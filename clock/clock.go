// Package clock reads a raw time source and reports it through a clamp policy.
package clock

import (
	"time"

	"github.com/pkg/errors"

	"github.com/foxxorcat/wazero-clampclock/clamp"
)

// Source supplies raw time as seconds with a sub-second fraction.
type Source interface {
	Seconds() (float64, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (float64, error)

func (f SourceFunc) Seconds() (float64, error) { return f() }

// Realtime reads the system realtime clock.
type Realtime struct{}

// Monotonic counts seconds since the process started.
type Monotonic struct{}

var programStart = time.Now()

func (Monotonic) Seconds() (float64, error) {
	return time.Since(programStart).Seconds(), nil
}

// Clock reports clamped readings of a Source.
type Clock struct {
	clamper *clamp.Clamper
	source  Source
}

// NewClock returns a Clock. A nil clamper uses clamp.Default(), a nil source
// uses Realtime.
func NewClock(c *clamp.Clamper, src Source) *Clock {
	if c == nil {
		c = clamp.Default()
	}
	if src == nil {
		src = Realtime{}
	}
	return &Clock{clamper: c, source: src}
}

// Clamper returns the policy used by c.
func (c *Clock) Clamper() *clamp.Clamper { return c.clamper }

// Now reads the source and clamps the reading.
func (c *Clock) Now() (float64, error) {
	s, err := c.source.Seconds()
	if err != nil {
		return 0, errors.Wrap(err, "read clock source")
	}
	return c.clamper.ClampTime(s), nil
}

// Seconds implements Source with clamped readings.
func (c *Clock) Seconds() (float64, error) { return c.Now() }

var std = NewClock(nil, nil)

// Timer reads the realtime clock through the process-wide policy.
func Timer() (float64, error) {
	return std.Now()
}

// Configure overwrites the process-wide policy.
func Configure(resolution float64, useJitter bool) {
	clamp.Configure(resolution, useJitter)
}
