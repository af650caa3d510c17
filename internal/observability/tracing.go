package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"
)

// OTLP export defaults.
const (
	DefaultOTLPTimeout            = 10 * time.Second
	DefaultOTLPReconnectionPeriod = 10 * time.Second

	DefaultOTLPRetryInitialInterval = 1 * time.Second
	DefaultOTLPRetryMaxInterval     = 30 * time.Second
	DefaultOTLPRetryMaxElapsedTime  = 1 * time.Minute
)

// TracerConfig describes the process that emits dispatch spans and where
// they are exported.
type TracerConfig struct {
	Enabled bool

	// ServiceName, ServiceVersion and InstanceID identify the layer in the
	// exported resource. InstanceID is the reporter id, so spans can be
	// matched with the reporter's log lines.
	ServiceName    string
	ServiceVersion string
	InstanceID     string

	// Attributes are added to the resource as-is, e.g. the active debug
	// actions.
	Attributes map[string]string

	// OTLPEndpoint is a host:port of an OTLP gRPC collector. Spans are
	// sampled but not exported when it is empty.
	OTLPEndpoint string
	SamplingRate float64

	// RetryConfig tunes exporter retries. Defaults are used when nil.
	RetryConfig *OTLPRetryConfig
}

// OTLPRetryConfig tunes OTLP exporter retries. Zero intervals take the
// package defaults.
type OTLPRetryConfig struct {
	Enabled         bool
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// Tracer owns the tracer provider installed for the layer.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	config   TracerConfig
}

// NewTracer builds a tracer from cfg. When tracing is disabled the global
// (no-op by default) provider is used and nothing is installed.
func NewTracer(cfg TracerConfig) (*Tracer, error) {
	if !cfg.Enabled {
		return &Tracer{config: cfg, tracer: otel.Tracer(cfg.ServiceName)}, nil
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(createSampler(cfg.SamplingRate)),
	}
	if cfg.OTLPEndpoint != "" {
		exporter, err := otlptracegrpc.New(context.Background(), buildOTLPExporterOptions(cfg)...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter for %s: %w", cfg.OTLPEndpoint, err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracer{
		provider: provider,
		tracer:   provider.Tracer(cfg.ServiceName),
		config:   cfg,
	}, nil
}

// resourceAttributes lists the identity of the layer process.
func resourceAttributes(cfg TracerConfig) []attribute.KeyValue {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}
	if cfg.InstanceID != "" {
		attrs = append(attrs, semconv.ServiceInstanceID(cfg.InstanceID))
	}
	for k, v := range cfg.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}

func newResource(cfg TracerConfig) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, resourceAttributes(cfg)...),
	)
}

// createSampler maps a sampling rate to a sampler; rates outside (0, 1)
// mean never or always.
func createSampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

func buildOTLPExporterOptions(cfg TracerConfig) []otlptracegrpc.Option {
	return []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithTimeout(DefaultOTLPTimeout),
		otlptracegrpc.WithReconnectionPeriod(DefaultOTLPReconnectionPeriod),
		otlptracegrpc.WithRetry(buildRetryConfig(cfg.RetryConfig)),
	}
}

func buildRetryConfig(cfg *OTLPRetryConfig) otlptracegrpc.RetryConfig {
	rc := otlptracegrpc.RetryConfig{
		Enabled:         true,
		InitialInterval: DefaultOTLPRetryInitialInterval,
		MaxInterval:     DefaultOTLPRetryMaxInterval,
		MaxElapsedTime:  DefaultOTLPRetryMaxElapsedTime,
	}
	if cfg == nil {
		return rc
	}

	rc.Enabled = cfg.Enabled
	if cfg.InitialInterval > 0 {
		rc.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		rc.MaxInterval = cfg.MaxInterval
	}
	if cfg.MaxElapsedTime > 0 {
		rc.MaxElapsedTime = cfg.MaxElapsedTime
	}
	return rc
}

// Tracer returns the tracer handed to the reporter.
func (t *Tracer) Tracer() trace.Tracer {
	return t.tracer
}

// Shutdown flushes pending spans. It is a no-op for a disabled tracer.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
