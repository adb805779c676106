package arena

import (
	"github.com/prometheus/client_golang/prometheus"
)

// arenaMetrics is the Prometheus view of one arena. A nil *arenaMetrics is
// valid and records nothing.
type arenaMetrics struct {
	reg         prometheus.Registerer
	capacity    prometheus.Gauge
	used        prometheus.Gauge
	allocations prometheus.Counter
	failures    *prometheus.CounterVec
}

func newArenaMetrics(reg prometheus.Registerer, name string, capacity int) (*arenaMetrics, error) {
	labels := prometheus.Labels{"arena": name}
	m := &arenaMetrics{
		reg: reg,
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "arena_capacity_bytes",
			Help:        "Fixed capacity of the arena buffer in bytes.",
			ConstLabels: labels,
		}),
		used: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "arena_used_bytes",
			Help:        "Bytes reserved by allocations, including alignment padding.",
			ConstLabels: labels,
		}),
		allocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "arena_allocations_total",
			Help:        "Total number of successful non-empty allocations.",
			ConstLabels: labels,
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "arena_allocation_failures_total",
			Help:        "Total number of failed allocations by reason.",
			ConstLabels: labels,
		}, []string{"reason"}),
	}

	// Names are not unique across arenas, so registration can fail.
	// Roll back whatever was registered before the failure.
	collectors := m.collectors()
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			for _, done := range collectors[:i] {
				reg.Unregister(done)
			}
			return nil, metricsError(name, err)
		}
	}
	m.capacity.Set(float64(capacity))
	return m, nil
}

func (m *arenaMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.capacity, m.used, m.allocations, m.failures}
}

func (m *arenaMetrics) allocated(offset int) {
	if m == nil {
		return
	}
	m.allocations.Inc()
	m.used.Set(float64(offset))
}

func (m *arenaMetrics) failed(reason Kind) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(string(reason)).Inc()
}

func (m *arenaMetrics) unregister() {
	if m == nil {
		return
	}
	for _, c := range m.collectors() {
		m.reg.Unregister(c)
	}
}
