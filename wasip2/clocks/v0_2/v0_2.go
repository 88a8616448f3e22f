package v0_2

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/foxxorcat/wazero-clampclock/wasip2"
)

// --- wasi:clocks/monotonic-clock@0.2.x implementation ---

type wasiMonotonicClock struct{}

func NewMonotonicClock() wasip2.Implementation {
	return &wasiMonotonicClock{}
}

func (i *wasiMonotonicClock) Name() string { return "wasi:clocks/monotonic-clock" }
func (i *wasiMonotonicClock) Versions() []string {
	return []string{"0.2.0", "0.2.1", "0.2.2", "0.2.3", "0.2.4", "0.2.5", "0.2.6", "0.2.7"}
}

// Instantiate exports now and resolution. subscribe-instant and
// subscribe-duration need wasi:io pollables and are not provided.
func (i *wasiMonotonicClock) Instantiate(_ context.Context, h *wasip2.Host, b wazero.HostModuleBuilder) error {
	handler := newMonotonicClockImpl(h.ClockManager(), h.Metrics())
	b.NewFunctionBuilder().WithFunc(handler.Now).Export("now")
	b.NewFunctionBuilder().WithFunc(handler.Resolution).Export("resolution")
	return nil
}

// --- wasi:clocks/wall-clock@0.2.x implementation ---

type wasiWallClock struct{}

func NewWallClock() wasip2.Implementation {
	return &wasiWallClock{}
}

func (i *wasiWallClock) Name() string { return "wasi:clocks/wall-clock" }
func (i *wasiWallClock) Versions() []string {
	return []string{"0.2.0", "0.2.1", "0.2.2", "0.2.3", "0.2.4", "0.2.5"}
}

func (i *wasiWallClock) Instantiate(_ context.Context, h *wasip2.Host, b wazero.HostModuleBuilder) error {
	handler := newWallClockImpl(h.ClockManager(), h.Metrics())
	b.NewFunctionBuilder().WithFunc(handler.Now).WithParameterNames("retptr").Export("now")
	b.NewFunctionBuilder().WithFunc(handler.Resolution).WithParameterNames("retptr").Export("resolution")
	return nil
}
