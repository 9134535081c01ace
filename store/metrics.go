package store

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "fleeting_state"

// Metrics exposes registry and dispatch counters. A nil *Metrics records nothing.
type Metrics struct {
	Slots          prometheus.Gauge
	SlotRejections prometheus.Counter
	Dispatches     *prometheus.CounterVec
	EffectRuns     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Slots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "slots",
			Help:      "Number of live state slots.",
		}),
		SlotRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "slot_rejections_total",
			Help:      "Slot creations refused because the registry was full.",
		}),
		Dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dispatches_total",
			Help:      "Dispatched actions by state type, action kind and outcome.",
		}, []string{"type", "kind", "outcome"}),
		EffectRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "effect_runs_total",
			Help:      "Effect invocations by effect name and outcome.",
		}, []string{"effect", "outcome"}),
	}
	for _, c := range []prometheus.Collector{m.Slots, m.SlotRejections, m.Dispatches, m.EffectRuns} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) slotAdded() {
	if m != nil {
		m.Slots.Inc()
	}
}

func (m *Metrics) slotRemoved() {
	if m != nil {
		m.Slots.Dec()
	}
}

func (m *Metrics) slotRejected() {
	if m != nil {
		m.SlotRejections.Inc()
	}
}

func (m *Metrics) dispatched(stateType string, kind ActionKind, outcome string) {
	if m != nil {
		m.Dispatches.WithLabelValues(stateType, string(kind), outcome).Inc()
	}
}

func (m *Metrics) effectRan(name, outcome string) {
	if m != nil {
		m.EffectRuns.WithLabelValues(name, outcome).Inc()
	}
}
