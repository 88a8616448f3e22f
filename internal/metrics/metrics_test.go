package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.Observe("wall-clock", false)
	m.Observe("wall-clock", true)
	m.Observe("monotonic-clock", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reads.WithLabelValues("wall-clock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.roundUps.WithLabelValues("wall-clock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.roundUps.WithLabelValues("monotonic-clock")))

	n, err := testutil.GatherAndCount(reg, "clampclock_reads_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.Observe("wall-clock", true) })
	assert.NotPanics(t, func() {
		m, err := New(nil)
		require.NoError(t, err)
		m.Observe("wall-clock", true)
	})
}

func TestNewSharesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	require.NoError(t, err)

	var second *Metrics
	require.NotPanics(t, func() { second, err = New(reg) })
	require.NoError(t, err)

	second.Observe("wall-clock", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(first.reads.WithLabelValues("wall-clock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.roundUps.WithLabelValues("wall-clock")))
}

func TestNewConflictingCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	// same fully-qualified name, different label set
	reg.MustRegister(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reads_total",
		Help:      "Clamped clock reads served, by clock.",
	}, []string{"guest"}))

	m, err := New(reg)
	assert.Error(t, err)
	require.NotNil(t, m)
	assert.NotPanics(t, func() { m.Observe("wall-clock", false) })
}
