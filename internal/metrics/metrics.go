package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ingest"

// Metrics owns a private registry so tests and multiple daemons in one
// process never collide on the global one.
type Metrics struct {
	registry   *prometheus.Registry
	collectors []prometheus.Collector

	completed  prometheus.Counter
	pollErrors *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completed_total",
			Help:      "Number of transfers seen completing since start",
		}),
		pollErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_errors_total",
			Help:      "Number of failed reads per source",
		}, []string{"source"}),
	}

	m.registry.MustRegister(m.completed, m.pollErrors)

	return m
}

func (m *Metrics) Register(cs prometheus.Collector) error {
	if err := m.registry.Register(cs); err != nil {
		return err
	}

	m.collectors = append(m.collectors, cs)

	return nil
}

func (m *Metrics) UnregisterAll() {
	for _, cs := range m.collectors {
		m.registry.Unregister(cs)
	}

	m.collectors = nil
}

func (m *Metrics) Completed(n int) {
	if n > 0 {
		m.completed.Add(float64(n))
	}
}

func (m *Metrics) PollError(source string) {
	m.pollErrors.WithLabelValues(source).Inc()
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.InstrumentMetricHandler(m.registry, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
