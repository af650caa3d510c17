package debugreport

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vyrodovalexey/layerlog/internal/flags"
)

// DefaultMetricsNamespace is used when NewMetrics gets an empty namespace.
const DefaultMetricsNamespace = "layerlog"

// Metrics contains reporter metrics. A nil *Metrics records nothing.
type Metrics struct {
	messagesTotal    *prometheus.CounterVec
	invocationsTotal *prometheus.CounterVec
	abortsTotal      prometheus.Counter
	callbacks        *prometheus.GaugeVec
	dispatchDuration prometheus.Histogram
}

// NewMetrics creates reporter metrics registered with the default
// registerer.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates reporter metrics registered with
// registerer. Collectors already registered under the same names are
// reused, so several reporters may share one registry.
func NewMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = DefaultMetricsNamespace
	}
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		messagesTotal: register(registerer, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "debug_report",
				Name:      "messages_total",
				Help:      "Total number of diagnostic messages dispatched",
			},
			[]string{"severity"},
		)),
		invocationsTotal: register(registerer, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "debug_report",
				Name:      "callback_invocations_total",
				Help:      "Total number of observer callback invocations",
			},
			[]string{"scheme", "scope"},
		)),
		abortsTotal: register(registerer, prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "debug_report",
				Name:      "abort_requests_total",
				Help:      "Total number of dispatches where an observer requested abort",
			},
		)),
		callbacks: register(registerer, prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "debug_report",
				Name:      "callbacks",
				Help:      "Number of registered observer callbacks",
			},
			[]string{"scope"},
		)),
		dispatchDuration: register(registerer, prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "debug_report",
				Name:      "dispatch_duration_seconds",
				Help:      "Time spent delivering one message to all matching observers",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
		)),
	}

	m.Init()

	return m
}

// register registers c, or returns the collector already registered under
// the same descriptor.
func register[C prometheus.Collector](registerer prometheus.Registerer, c C) C {
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// Init pre-populates label combinations with zero values so the Vec
// metrics are exported before the first message.
func (m *Metrics) Init() {
	if m == nil {
		return
	}
	for _, sev := range []string{"verbose", "info", "warning", "error"} {
		m.messagesTotal.WithLabelValues(sev)
	}
	for _, scheme := range []Scheme{SchemeReport, SchemeMessenger} {
		for _, scope := range []Scope{0, ScopeDefault, ScopeInstance} {
			m.invocationsTotal.WithLabelValues(scheme.String(), scope.String())
		}
	}
}

// severityLabel returns the name of the highest severity bit set.
func severityLabel(sev flags.Severity) string {
	switch {
	case sev&flags.SeverityError != 0:
		return "error"
	case sev&flags.SeverityWarning != 0:
		return "warning"
	case sev&flags.SeverityInfo != 0:
		return "info"
	case sev&flags.SeverityVerbose != 0:
		return "verbose"
	default:
		return "none"
	}
}

func (m *Metrics) recordMessage(sev flags.Severity) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(severityLabel(sev)).Inc()
}

func (m *Metrics) recordInvocation(scheme Scheme, scope Scope) {
	if m == nil {
		return
	}
	m.invocationsTotal.WithLabelValues(scheme.String(), scope.String()).Inc()
}

func (m *Metrics) recordDispatch(duration time.Duration, aborted bool) {
	if m == nil {
		return
	}
	m.dispatchDuration.Observe(duration.Seconds())
	if aborted {
		m.abortsTotal.Inc()
	}
}

func (m *Metrics) setCallbacks(g *registry) {
	if m == nil {
		return
	}
	for scope, n := range g.countByScope() {
		m.callbacks.WithLabelValues(scope).Set(float64(n))
	}
}
