package clamp

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitsRoundTrip(t *testing.T) {
	t.Run("bit patterns", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		patterns := []uint64{
			0,
			1 << 63,            // -0
			0x7FF0000000000000, // +Inf
			0xFFF0000000000000, // -Inf
			0x7FF8000000000001, // quiet NaN with payload
			0x7FF0000000000001, // signalling NaN
			0x0000000000000001, // smallest subnormal
			math.MaxUint64,
		}
		for i := 0; i < 10000; i++ {
			patterns = append(patterns, rng.Uint64())
		}
		for _, b := range patterns {
			require.Equal(t, b, BitsOfDouble(DoubleOfBits(b)), "%#x", b)
		}
	})

	t.Run("doubles", func(t *testing.T) {
		values := []float64{0, 1, -1, 1e-4, 1000.000456, math.MaxFloat64, math.SmallestNonzeroFloat64, math.Inf(1)}
		for _, x := range values {
			require.Equal(t, x, DoubleOfBits(BitsOfDouble(x)))
		}
		negZero := math.Copysign(0, -1)
		require.True(t, math.Signbit(DoubleOfBits(BitsOfDouble(negZero))))
	})

	t.Run("known patterns", func(t *testing.T) {
		assert.Equal(t, uint64(0x3FF0000000000000), BitsOfDouble(1.0))
		assert.Equal(t, uint64(0x408F4000D1B71759), BitsOfDouble(1000.0004))
		assert.Equal(t, 2.0, DoubleOfBits(0x4000000000000000))
	})
}

func TestMix(t *testing.T) {
	assert.Equal(t, uint64(0), Mix(0))
	assert.Equal(t, uint64(0xB456BCFC34C2CB2C), Mix(1))
	assert.Equal(t, uint64(0x95DC9830504F3EA4), Mix(Secret))
	assert.Equal(t, Mix(12345), Mix(12345))
}

func TestFraction(t *testing.T) {
	t.Run("known values", func(t *testing.T) {
		// clamped 1.0
		assert.Equal(t, uint64(0xD30BE9CA4A2521A5), Mix(BitsOfDouble(1.0)^Secret))
		assert.Equal(t, 0.7445776840487295, Fraction(1.0))

		// clamped 1000.0004
		assert.Equal(t, uint64(0xB7136B715DD83408), Mix(BitsOfDouble(1000.0004)^Secret))
		assert.Equal(t, 0.213731161670923, Fraction(1000.0004))

		assert.Equal(t, 0.7871554505435734, Fraction(0))
	})

	t.Run("range", func(t *testing.T) {
		for i := 0; i < 10000; i++ {
			f := Fraction(float64(i) * 0.25)
			require.GreaterOrEqual(t, f, 0.0)
			require.Less(t, f, 1.0)
		}
	})

	t.Run("uniform", func(t *testing.T) {
		const n, bins = 10000, 10
		var counts [bins]int
		for i := 0; i < n; i++ {
			counts[int(Fraction(float64(i))*bins)]++
		}
		expected := float64(n) / bins
		var chi2 float64
		for _, c := range counts {
			d := float64(c) - expected
			chi2 += d * d / expected
		}
		// 9 degrees of freedom, p = 0.001
		assert.Less(t, chi2, 27.88, "counts %v", counts)
	})
}

func TestClamp(t *testing.T) {
	t.Run("no jitter passthrough", func(t *testing.T) {
		cfg := Config{Resolution: 1e-4, Jitter: false}
		assert.Equal(t, 1000.0004, cfg.Clamp(1000.000456))
		assert.Equal(t, math.Floor(1000.000456/1e-4)*1e-4, cfg.Clamp(1000.000456))

		rng := rand.New(rand.NewSource(3))
		for i := 0; i < 1000; i++ {
			v := rng.Float64()*2e6 - 1e6
			require.Equal(t, math.Floor(v/1e-4)*1e-4, cfg.Clamp(v))
		}
	})

	t.Run("negative inputs floor", func(t *testing.T) {
		cfg := Config{Resolution: 1, Jitter: false}
		assert.Equal(t, -2.0, cfg.Clamp(-1.5))
		assert.Equal(t, -1.0, cfg.Clamp(-1))
		assert.Equal(t, 1.0, cfg.Clamp(1.5))
	})

	t.Run("grid alignment", func(t *testing.T) {
		rng := rand.New(rand.NewSource(5))
		for _, res := range []float64{1e-4, 1e-3, 0.5, 3} {
			cfg := Config{Resolution: res, Jitter: true}
			for i := 0; i < 2000; i++ {
				v := rng.Float64() * 1e5
				floor := math.Floor(v/res) * res
				got := cfg.Clamp(v)
				require.Contains(t, []float64{floor, floor + res}, got, "t=%v res=%v", v, res)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		cfg := DefaultConfig()
		for _, v := range []float64{0, 1.23456789, 1000.000456, 1.7e9 + 0.123456} {
			a, b := cfg.Clamp(v), cfg.Clamp(v)
			require.Equal(t, BitsOfDouble(a), BitsOfDouble(b))
		}
	})

	t.Run("threshold shared within a cell", func(t *testing.T) {
		cfg := Config{Resolution: 1e-4, Jitter: true}
		floor := cfg.Floor(1000.000456)
		threshold := cfg.Threshold(floor)
		for _, v := range []float64{1000.0004, 1000.00041, 1000.000456, 1000.000499} {
			require.Equal(t, floor, cfg.Floor(v))
			require.Equal(t, threshold, cfg.Threshold(cfg.Floor(v)))
		}
	})

	t.Run("decision around a known threshold", func(t *testing.T) {
		cfg := Config{Resolution: 0.5, Jitter: true}
		threshold := cfg.Threshold(1.0)
		require.Equal(t, 1.3722888420243646, threshold)

		v, up := cfg.Decide(math.Nextafter(threshold, math.Inf(-1)))
		assert.False(t, up)
		assert.Equal(t, 1.0, v)

		v, up = cfg.Decide(threshold)
		assert.True(t, up)
		assert.Equal(t, 1.5, v)

		// a boundary input still goes through the jitter decision
		v, up = cfg.Decide(1.0)
		assert.False(t, up)
		assert.Equal(t, 1.0, v)
	})

	t.Run("decision at 1000.000456", func(t *testing.T) {
		cfg := Config{Resolution: 1e-4, Jitter: true}
		threshold := cfg.Threshold(1000.0004)
		require.Equal(t, 1000.0004213731162, threshold)
		// 1000.000456 lies past the threshold of its cell
		assert.Equal(t, 1000.0005, cfg.Clamp(1000.000456))
		assert.Equal(t, 1000.0004, cfg.Clamp(math.Nextafter(threshold, math.Inf(-1))))
	})

	t.Run("round up rate at cell midpoints", func(t *testing.T) {
		cfg := Config{Resolution: 1e-4, Jitter: true}
		const n = 10000
		ups := 0
		for i := 0; i < n; i++ {
			floor := cfg.Floor(1000 + float64(float64(i)*1e-4))
			if _, up := cfg.Decide(floor + 0.5e-4); up {
				ups++
			}
		}
		rate := float64(ups) / n
		assert.InDelta(t, 0.5, rate, 0.03)
	})

	t.Run("non finite passthrough", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.True(t, math.IsNaN(cfg.Clamp(math.NaN())))
		assert.True(t, math.IsInf(cfg.Clamp(math.Inf(1)), 1))
		assert.True(t, math.IsInf(cfg.Clamp(math.Inf(-1)), -1))
	})

	t.Run("zero resolution is not rejected", func(t *testing.T) {
		cfg := Config{Resolution: 0, Jitter: false}
		assert.True(t, math.IsNaN(cfg.Clamp(1)))
	})
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, Config{Resolution: 3}.Validate())
	for _, r := range []float64{0, -1e-4, math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.ErrorIs(t, Config{Resolution: r}.Validate(), ErrInvalidResolution, "%v", r)
	}
}

func TestClamper(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		assert.Equal(t, Config{Resolution: 1e-4, Jitter: true}, Default().Config())
	})

	t.Run("zero value uses defaults", func(t *testing.T) {
		var c Clamper
		assert.Equal(t, DefaultConfig(), c.Config())
		assert.Equal(t, DefaultConfig().Clamp(1000.000456), c.ClampTime(1000.000456))

		c.Configure(0.5, false)
		assert.Equal(t, 1.0, c.ClampTime(1.49))
	})

	t.Run("configure overwrites", func(t *testing.T) {
		c := NewClamper(DefaultConfig())
		c.Configure(0.5, false)
		assert.Equal(t, Config{Resolution: 0.5, Jitter: false}, c.Config())
		assert.Equal(t, 1.0, c.ClampTime(1.49))

		c.Configure(-1, true)
		assert.Equal(t, -1.0, c.Config().Resolution)
	})

	t.Run("concurrent configure and clamp", func(t *testing.T) {
		a := Config{Resolution: 1e-3, Jitter: true}
		b := Config{Resolution: 0.5, Jitter: false}
		const v = 10.3
		allowed := []float64{a.Clamp(v), b.Clamp(v)}

		c := NewClamper(a)
		var wg sync.WaitGroup
		stop := make(chan struct{})
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				if i%2 == 0 {
					c.Store(b)
				} else {
					c.Configure(a.Resolution, a.Jitter)
				}
			}
		}()

		var readers sync.WaitGroup
		for r := 0; r < 4; r++ {
			readers.Add(1)
			go func() {
				defer readers.Done()
				for i := 0; i < 5000; i++ {
					got := c.ClampTime(v)
					if got != allowed[0] && got != allowed[1] {
						t.Errorf("torn read: %v", got)
						return
					}
				}
			}()
		}
		readers.Wait()
		close(stop)
		wg.Wait()
	})
}
