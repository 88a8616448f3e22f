package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clampclock"

// Metrics counts clamped clock reads served to guests.
type Metrics struct {
	reads    *prometheus.CounterVec
	roundUps *prometheus.CounterVec
}

// New creates the collectors and registers them with reg, if reg is not nil.
// Collectors already registered with reg, for example by another host, are
// reused so both share the same counters. On any other registration error
// the returned Metrics still counts but is not exported through reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reads_total",
			Help:      "Clamped clock reads served, by clock.",
		}, []string{"clock"}),
		roundUps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "round_ups_total",
			Help:      "Clamped clock reads moved up to the next grid step by jitter, by clock.",
		}, []string{"clock"}),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.reads, err = register(reg, m.reads); err != nil {
		return m, err
	}
	if m.roundUps, err = register(reg, m.roundUps); err != nil {
		return m, err
	}
	return m, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing, nil
		}
	}
	return c, errors.Wrap(err, "register clock metrics")
}

// Observe records one read. It is a no-op on a nil *Metrics.
func (m *Metrics) Observe(clock string, up bool) {
	if m == nil {
		return
	}
	m.reads.WithLabelValues(clock).Inc()
	if up {
		m.roundUps.WithLabelValues(clock).Inc()
	}
}
