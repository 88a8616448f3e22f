// Package trace records counter traces: how many clock reads fit into a fixed
// period, sampled once per millisecond of elapsed time. Against a clamped
// clock the counts collapse, which is how the countermeasure is evaluated.
package trace

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/foxxorcat/wazero-clampclock/clock"
)

// Missing marks a slot that no sample landed in.
const Missing = -1

type Options struct {
	// Length is the total trace duration, one slot per millisecond.
	Length time.Duration
	// Period is how long each sample keeps counting.
	Period time.Duration
}

func DefaultOptions() Options {
	return Options{Length: time.Second, Period: 5 * time.Millisecond}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Length <= 0 {
		o.Length = def.Length
	}
	if o.Period <= 0 {
		o.Period = def.Period
	}
	return o
}

// Record samples src until Length has elapsed on src's own time line.
func Record(ctx context.Context, src clock.Source, opts Options) ([]int, error) {
	opts = opts.withDefaults()
	trace := make([]int, opts.Length/time.Millisecond)
	for i := range trace {
		trace[i] = Missing
	}
	periodMs := float64(opts.Period) / float64(time.Millisecond)

	start, err := readMs(src)
	if err != nil {
		return nil, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return trace, err
		}
		datum, err := readMs(src)
		if err != nil {
			return trace, err
		}
		idx := int(math.Floor(datum - start))
		if idx >= len(trace) {
			return trace, nil
		}

		count := 0
		for {
			now, err := readMs(src)
			if err != nil {
				return trace, err
			}
			if now-datum >= periodMs {
				break
			}
			count++
			if count&0x3ff == 0 && ctx.Err() != nil {
				return trace, ctx.Err()
			}
		}
		if idx >= 0 {
			trace[idx] = count
		}
	}
}

func readMs(src clock.Source) (float64, error) {
	s, err := src.Seconds()
	if err != nil {
		return 0, errors.Wrap(err, "trace: read clock")
	}
	return s * 1000, nil
}

// Fill returns a copy of trace with Missing slots replaced by the previous
// recorded value, or 0 before the first one.
func Fill(trace []int) []int {
	out := make([]int, len(trace))
	last := 0
	for i, v := range trace {
		if v == Missing {
			out[i] = last
			continue
		}
		out[i] = v
		last = v
	}
	return out
}
