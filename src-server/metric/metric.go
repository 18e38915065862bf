package metric

import (
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics satisfies store.Observer and suggest.Observer.
type Metrics struct {
	PersistLatency  prometheus.Gauge
	PersistFailures prometheus.Counter
	Events          prometheus.Gauge
	Suggestions     *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PersistLatency: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eventhorizon_persist_latency_microsec",
			Help: "The latency of the last event store write in microseconds",
		}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventhorizon_persist_failures_total",
			Help: "Event store writes that didn't reach the persisted slot",
		}),
		Events: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eventhorizon_events",
			Help: "Number of events currently in the store",
		}),
		Suggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhorizon_suggestions_total",
			Help: "AI suggestion requests by outcome",
		}, []string{"outcome"}),
	}

	m.PersistLatency = register(reg, "eventhorizon_persist_latency_microsec", m.PersistLatency)
	m.PersistFailures = register(reg, "eventhorizon_persist_failures_total", m.PersistFailures)
	m.Events = register(reg, "eventhorizon_events", m.Events)
	m.Suggestions = register(reg, "eventhorizon_suggestions_total", m.Suggestions)
	return m
}

// register reuses an already registered collector of the same name
func register[T prometheus.Collector](reg prometheus.Registerer, name string, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		slog.Error("can't register "+name+" metric", "error", err)
		return c
	}
	slog.Debug(name + " metric registered")
	return c
}

func (m *Metrics) ObservePersist(latency time.Duration, err error) {
	m.PersistLatency.Set(float64(latency.Microseconds()))
	if err != nil {
		m.PersistFailures.Inc()
	}
}

func (m *Metrics) SetEventCount(n int) {
	m.Events.Set(float64(n))
}

func (m *Metrics) SuggestionOutcome(outcome string) {
	m.Suggestions.WithLabelValues(outcome).Inc()
}
