// Package observability provides logging, metrics, and tracing
// functionality for the diagnostic layer.
//
// # Logging
//
// The Logger interface provides structured logging backed by zap:
//
//	logger, err := observability.NewLogger(observability.DefaultLogConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("callback registered",
//	    observability.Uint64("handle", 7),
//	)
//
// # Metrics
//
// MetricsServer exposes a Prometheus registry over HTTP:
//
//	srv := observability.NewMetricsServer(":9464", "/metrics", registry, logger)
//	go srv.Start()
//	defer srv.Shutdown(ctx)
//
// # Tracing
//
// OpenTelemetry tracing with OTLP export:
//
//	tracer, err := observability.NewTracer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(ctx)
package observability
