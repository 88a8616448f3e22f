package v0_2

import (
	"math"

	"github.com/tetratelabs/wazero/sys"

	"github.com/foxxorcat/wazero-clampclock/clamp"
	"github.com/foxxorcat/wazero-clampclock/internal/metrics"
	manager_clocks "github.com/foxxorcat/wazero-clampclock/manager/clocks"
)

// NewWalltime returns a wazero walltime hook for the guest name. WASI
// preview1 clock_time_get(realtime) is served from it. The policy is looked
// up in policies on every read, like wasi:clocks/wall-clock does.
func NewWalltime(policies *manager_clocks.Manager, m *metrics.Metrics, name string) sys.Walltime {
	impl := newWallClockImpl(policies, m)
	return func() (int64, int32) {
		d := impl.read(name)
		return int64(d.Seconds), int32(d.Nanoseconds)
	}
}

// NewNanotime returns a wazero nanotime hook for clock_time_get(monotonic).
func NewNanotime(policies *manager_clocks.Manager, m *metrics.Metrics, name string) sys.Nanotime {
	impl := newMonotonicClockImpl(policies, m)
	return func() int64 {
		return int64(impl.read(name))
	}
}

// ClockResolution converts a policy resolution for wazero. wazero takes the
// value once per module config, so later Set calls change the readings but
// not the resolution guests are told.
func ClockResolution(c *clamp.Clamper) sys.ClockResolution {
	ns := nanosOf(c.Config().Resolution, 1)
	if ns > math.MaxUint32 {
		ns = math.MaxUint32
	}
	return sys.ClockResolution(ns)
}
