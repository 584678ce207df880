package telemetry

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mynameisdaniil/yaff/pkg/yaff/core"
)

const namespace = "yaff"

// Metrics counts what the engines it is attached to do. One Metrics may be
// shared by any number of chains.
type Metrics struct {
	Dispatched  *prometheus.CounterVec
	Settled     *prometheus.CounterVec
	Deferred    prometheus.Counter
	Discarded   *prometheus.CounterVec
	Duplicates  prometheus.Counter
	Unhandled   prometheus.Counter
	Finalized   *prometheus.CounterVec
	InFlight    prometheus.Gauge
	MaxInFlight prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_dispatched_total",
			Help:      "Work items started, by kind.",
		}, []string{"kind"}),
		Settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_settled_total",
			Help:      "Work items completed, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		Deferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_deferred_total",
			Help:      "Parallel items held back by their concurrency limit.",
		}),
		Discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_discarded_total",
			Help:      "Work items skipped or whose results were dropped by error propagation.",
		}, []string{"kind"}),
		Duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_completions_total",
			Help:      "Completion calls after the first one.",
		}),
		Unhandled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unhandled_errors_total",
			Help:      "Errors that met neither a catcher nor a finalizer.",
		}),
		Finalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chains_finalized_total",
			Help:      "Finalizer runs, by outcome.",
		}, []string{"outcome"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items_in_flight",
			Help:      "Invocations currently running.",
		}),
		MaxInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items_in_flight_max",
			Help:      "Peak running count of the chain that last raised its own peak.",
		}),
	}

	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Dispatched, m.Settled, m.Deferred, m.Discarded,
		m.Duplicates, m.Unhandled, m.Finalized, m.InFlight, m.MaxInFlight,
	}
}

// Hooks returns engine hooks feeding m. Call it once per chain; chains
// spawned from it share its peak.
func (m *Metrics) Hooks() core.Hooks {
	var peak atomic.Int64
	return core.Hooks{
		OnDispatch: func(it *core.Item, running int) {
			m.Dispatched.WithLabelValues(it.Kind.String()).Inc()
			m.InFlight.Inc()
			for {
				p := peak.Load()
				if int64(running) <= p {
					break
				}
				if peak.CompareAndSwap(p, int64(running)) {
					m.MaxInFlight.Set(float64(running))
					break
				}
			}
		},
		OnDefer: func(*core.Item) {
			m.Deferred.Inc()
		},
		OnSettle: func(it *core.Item, err error, _ int) {
			m.InFlight.Dec()
			m.Settled.WithLabelValues(it.Kind.String(), outcome(err)).Inc()
		},
		OnDuplicate: func(*core.Item) {
			m.Duplicates.Inc()
		},
		OnDiscard: func(it *core.Item) {
			m.Discarded.WithLabelValues(it.Kind.String()).Inc()
		},
		OnUnhandled: func(error) {
			m.Unhandled.Inc()
		},
		OnFinalize: func(err error) {
			m.Finalized.WithLabelValues(outcome(err)).Inc()
		},
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
