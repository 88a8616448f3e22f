package v0_2

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/foxxorcat/wazero-clampclock/clock"
	"github.com/foxxorcat/wazero-clampclock/internal/metrics"
	manager_clocks "github.com/foxxorcat/wazero-clampclock/manager/clocks"
)

const wallClockLabel = "wall-clock"

type wallClockImpl struct {
	policies *manager_clocks.Manager
	metrics  *metrics.Metrics
	source   clock.Source
}

func newWallClockImpl(policies *manager_clocks.Manager, m *metrics.Metrics) *wallClockImpl {
	return &wallClockImpl{policies: policies, metrics: m, source: clock.Realtime{}}
}

// read returns the clamped wall-clock time for the named guest.
func (i *wallClockImpl) read(guest string) Datetime {
	s, err := i.source.Seconds()
	if err != nil {
		// now 在 WIT 中不允许失败，只能让 guest 陷入 trap。
		panic(fmt.Errorf("wall-clock: %w", err))
	}
	v, up := i.policies.For(guest).Decide(s)
	i.metrics.Observe(wallClockLabel, up)
	return datetimeOf(v)
}

// Now returns the clamped wall-clock time. The datetime record does not fit
// in a flat result, so it is stored at retptr in the caller's memory.
func (i *wallClockImpl) Now(_ context.Context, m api.Module, retptr uint32) {
	writeDatetime(m, retptr, i.read(m.Name()))
}

// Resolution returns the grid spacing of the caller's policy.
func (i *wallClockImpl) Resolution(_ context.Context, m api.Module, retptr uint32) {
	res := i.policies.For(m.Name()).Config().Resolution
	writeDatetime(m, retptr, resolutionOf(res))
}

func writeDatetime(m api.Module, ptr uint32, d Datetime) {
	mem := m.Memory()
	if mem == nil || !mem.WriteUint64Le(ptr, d.Seconds) || !mem.WriteUint32Le(ptr+8, d.Nanoseconds) {
		panic(fmt.Errorf("wall-clock: datetime at %#x out of range", ptr))
	}
}
