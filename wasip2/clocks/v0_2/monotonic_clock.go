package v0_2

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/foxxorcat/wazero-clampclock/clock"
	"github.com/foxxorcat/wazero-clampclock/internal/metrics"
	manager_clocks "github.com/foxxorcat/wazero-clampclock/manager/clocks"
)

const monotonicClockLabel = "monotonic-clock"

type monotonicClockImpl struct {
	policies *manager_clocks.Manager
	metrics  *metrics.Metrics
	source   clock.Source
}

func newMonotonicClockImpl(policies *manager_clocks.Manager, m *metrics.Metrics) *monotonicClockImpl {
	return &monotonicClockImpl{policies: policies, metrics: m, source: clock.Monotonic{}}
}

func (i *monotonicClockImpl) read(guest string) Instant {
	s, err := i.source.Seconds()
	if err != nil {
		panic(fmt.Errorf("monotonic-clock: %w", err))
	}
	v, up := i.policies.For(guest).Decide(s)
	i.metrics.Observe(monotonicClockLabel, up)
	return nanosOf(v, 0)
}

// Now returns the clamped time since host start in nanoseconds.
func (i *monotonicClockImpl) Now(_ context.Context, m api.Module) Instant {
	return i.read(m.Name())
}

// Resolution returns the caller's grid spacing in nanoseconds.
func (i *monotonicClockImpl) Resolution(_ context.Context, m api.Module) Duration {
	return nanosOf(i.policies.For(m.Name()).Config().Resolution, 1)
}
