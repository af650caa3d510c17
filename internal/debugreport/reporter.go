package debugreport

import (
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/layerlog/internal/observability"
)

const tracerName = "github.com/vyrodovalexey/layerlog/internal/debugreport"

// Reporter is the diagnostic routing instance. It owns the callback
// registry, the object name tables, the label stacks and the stored
// instance chain, all guarded by one mutex.
type Reporter struct {
	id string

	mu            sync.Mutex
	registry      *registry
	names         nameDirectory
	queueLabels   labelStore
	cmdBufLabels  labelStore
	instanceChain []ChainEntry
	specText      SpecText

	logger  observability.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// Option is a functional option for NewReporter.
type Option func(*Reporter)

// WithLogger sets the logger used for registration lifecycle events.
func WithLogger(l observability.Logger) Option {
	return func(r *Reporter) {
		r.logger = l
	}
}

// WithMetrics sets the metrics the reporter records into.
func WithMetrics(m *Metrics) Option {
	return func(r *Reporter) {
		r.metrics = m
	}
}

// WithRegisterer creates reporter metrics registered with registerer.
func WithRegisterer(namespace string, registerer prometheus.Registerer) Option {
	return func(r *Reporter) {
		r.metrics = NewMetricsWithRegisterer(namespace, registerer)
	}
}

// WithTracer sets the tracer used for dispatch spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Reporter) {
		r.tracer = t
	}
}

// WithSpecText sets the table LogMsg appends specification text from.
func WithSpecText(t SpecText) Option {
	return func(r *Reporter) {
		r.specText = t
	}
}

// WithID sets the reporter id instead of a generated one. An empty id is
// ignored.
func WithID(id string) Option {
	return func(r *Reporter) {
		if id != "" {
			r.id = id
		}
	}
}

// NewReporter creates a Reporter with no registered observers.
func NewReporter(opts ...Option) *Reporter {
	r := &Reporter{
		id:           uuid.NewString(),
		registry:     &registry{},
		names:        newNameDirectory(),
		queueLabels:  newLabelStore(),
		cmdBufLabels: newLabelStore(),
		logger:       observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}
	r.logger = r.logger.With(observability.String("reporter", r.id))
	r.metrics.setCallbacks(r.registry)

	return r
}

// ID returns the unique id of the reporter, used to correlate its logs.
func (r *Reporter) ID() string {
	return r.id
}

// SetSpecText replaces the specification text table.
func (r *Reporter) SetSpecText(t SpecText) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specText = t
}

// KnownMessageID reports whether LogMsg accepts id under the current spec
// text table.
func (r *Reporter) KnownMessageID(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.specText.Has(id)
}

// Destroy removes every registered observer. It is meant for teardown of
// the owning object; the reporter should not be used afterwards.
func (r *Reporter) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.registry.len()
	r.registry.removeAll()
	r.instanceChain = nil
	r.metrics.setCallbacks(r.registry)
	r.logger.Debug("reporter destroyed", observability.Int("callbacks", n))
}

func handleField(key string, h Handle) observability.Field {
	return observability.Uint64(key, uint64(h))
}

func schemeField(s Scheme) observability.Field {
	return observability.String("scheme", s.String())
}

func scopeField(s Scope) observability.Field {
	return observability.String("scope", s.String())
}
