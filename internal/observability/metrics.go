package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics server defaults.
const (
	DefaultMetricsPath         = "/metrics"
	DefaultMetricsReadTimeout  = 5 * time.Second
	DefaultMetricsWriteTimeout = 10 * time.Second
)

// NewRegistry returns a Prometheus registry preloaded with the Go runtime
// and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(
		collectors.NewProcessCollector(
			collectors.ProcessCollectorOpts{},
		),
	)
	return registry
}

// MetricsServer serves a Prometheus registry over HTTP.
type MetricsServer struct {
	address  string
	path     string
	registry *prometheus.Registry
	logger   Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	stopped  bool
	stopOnce sync.Once
}

// NewMetricsServer creates a new metrics server. An empty path defaults to
// DefaultMetricsPath.
func NewMetricsServer(address, path string, registry *prometheus.Registry, logger Logger) *MetricsServer {
	if path == "" {
		path = DefaultMetricsPath
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = NopLogger()
	}

	return &MetricsServer{
		address:  address,
		path:     path,
		registry: registry,
		logger:   logger,
	}
}

// Handler returns the HTTP handler serving the registry.
func (s *MetricsServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog:            &promErrorLogger{logger: s.logger},
		ErrorHandling:       promhttp.ContinueOnError,
		MaxRequestsInFlight: 10,
		Timeout:             DefaultMetricsWriteTimeout,
		EnableOpenMetrics:   true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			s.logger.Debug("failed to write health response", Error(err))
		}
	})
	return mux
}

// Start binds the listener and serves until Shutdown is called. It returns
// nil after a clean shutdown.
func (s *MetricsServer) Start() error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  DefaultMetricsReadTimeout,
		WriteTimeout: DefaultMetricsWriteTimeout,
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ln.Close()
	}
	s.server = srv
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("starting metrics server",
		String("address", ln.Addr().String()),
		String("path", s.path),
	)

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *MetricsServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops the server gracefully.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		srv := s.server
		s.mu.Unlock()

		s.logger.Info("stopping metrics server")
		if srv != nil {
			err = srv.Shutdown(ctx)
		}
	})
	return err
}

// promErrorLogger adapts Logger to the promhttp.Logger interface.
type promErrorLogger struct {
	logger Logger
}

// Println implements promhttp.Logger.
func (l *promErrorLogger) Println(v ...interface{}) {
	l.logger.Error(fmt.Sprint(v...))
}
