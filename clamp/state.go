package clamp

import "sync/atomic"

// Clamper holds a mutable Config. Configure replaces the whole Config at once,
// so concurrent readers always see a matching resolution and jitter pair.
// The zero value uses DefaultConfig until a Config is stored.
type Clamper struct {
	cfg atomic.Pointer[Config]
}

// NewClamper returns a Clamper using cfg.
func NewClamper(cfg Config) *Clamper {
	c := &Clamper{}
	c.Store(cfg)
	return c
}

// Store replaces the current Config.
func (c *Clamper) Store(cfg Config) {
	c.cfg.Store(&cfg)
}

// Configure overwrites the policy. resolution is not validated.
func (c *Clamper) Configure(resolution float64, useJitter bool) {
	c.Store(Config{Resolution: resolution, Jitter: useJitter})
}

// Config returns a snapshot of the current policy.
func (c *Clamper) Config() Config {
	if cfg := c.cfg.Load(); cfg != nil {
		return *cfg
	}
	return DefaultConfig()
}

func (c *Clamper) ClampTime(t float64) float64 {
	return c.Config().Clamp(t)
}

func (c *Clamper) Decide(t float64) (float64, bool) {
	return c.Config().Decide(t)
}

var std = NewClamper(DefaultConfig())

// Default returns the process-wide Clamper used by Configure and ClampTime.
func Default() *Clamper { return std }

// Configure overwrites the process-wide policy.
func Configure(resolution float64, useJitter bool) {
	std.Configure(resolution, useJitter)
}

// ClampTime clamps t with the process-wide policy.
func ClampTime(t float64) float64 {
	return std.ClampTime(t)
}
