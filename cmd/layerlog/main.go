// Package main is the entry point for layerlog, which replays recorded
// diagnostics through a reporter configured from layer settings.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vyrodovalexey/layerlog/internal/config"
	"github.com/vyrodovalexey/layerlog/internal/debugreport"
	"github.com/vyrodovalexey/layerlog/internal/layer"
	"github.com/vyrodovalexey/layerlog/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	// exitAbort reports that an observer asked for an API call to be aborted.
	exitAbort = 2
)

const (
	metricsNamespace = "layerlog"
	shutdownTimeout  = 5 * time.Second
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	inputPath   string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(exitError)
	}

	if f.showVersion {
		printVersion(os.Stdout)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, f, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// parseFlags parses command line flags.
func parseFlags(args []string) (cliFlags, error) {
	fs := flag.NewFlagSet("layerlog", flag.ContinueOnError)

	var f cliFlags
	fs.StringVar(&f.configPath, "config", getEnvOrDefault("LAYERLOG_CONFIG_PATH", ""),
		"Path to settings file (defaults are used when empty)")
	fs.StringVar(&f.inputPath, "input", getEnvOrDefault("LAYERLOG_INPUT", "-"),
		"JSON lines file to replay, - for stdin")
	fs.StringVar(&f.logLevel, "log-level", getEnvOrDefault("LAYERLOG_LOG_LEVEL", ""),
		"Log level (debug, info, warn, error), overrides settings")
	fs.StringVar(&f.logFormat, "log-format", getEnvOrDefault("LAYERLOG_LOG_FORMAT", ""),
		"Log format (json, console), overrides settings")
	fs.BoolVar(&f.showVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return cliFlags{}, err
	}
	return f, nil
}

// printVersion prints version information.
func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, "layerlog version %s\n", version)
	_, _ = fmt.Fprintf(w, "  Build time: %s\n", buildTime)
	_, _ = fmt.Fprintf(w, "  Git commit: %s\n", gitCommit)
}

// run replays the input and returns the process exit code.
func run(ctx context.Context, f cliFlags, stdin io.Reader, stdout, stderr io.Writer) int {
	settings, err := loadSettings(f.configPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "failed to load settings: %v\n", err)
		return exitError
	}

	logger, err := initLogger(f, settings, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return exitError
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting layerlog",
		observability.String("version", version),
		observability.String("config", f.configPath),
	)

	instanceID := uuid.NewString()
	tracer, err := observability.NewTracer(tracerConfig(settings, instanceID))
	if err != nil {
		logger.Error("failed to initialize tracer", observability.Error(err))
		return exitError
	}

	registry := observability.NewRegistry()
	metricsServer := startMetricsServerIfEnabled(settings, registry, logger)

	l, err := layer.New(settings,
		layer.WithLogger(logger),
		layer.WithStdout(stdout),
		layer.WithStderr(stderr),
		layer.WithReporterOptions(
			debugreport.WithID(instanceID),
			debugreport.WithRegisterer(metricsNamespace, registry),
			debugreport.WithTracer(tracer.Tracer()),
		),
	)
	if err != nil {
		logger.Error("failed to create layer", observability.Error(err))
		shutdown(metricsServer, tracer, logger)
		return exitError
	}

	watcher := startSettingsWatcher(ctx, f.configPath, settings, l, logger)

	stats, replayErr := replayInput(ctx, l.Reporter(), f.inputPath, stdin)

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			logger.Warn("failed to stop settings watcher", observability.Error(err))
		}
	}
	if err := l.Close(); err != nil {
		logger.Warn("failed to close layer", observability.Error(err))
	}
	shutdown(metricsServer, tracer, logger)

	if replayErr != nil {
		logger.Error("replay failed",
			observability.Error(replayErr),
			observability.Int("lines", stats.Lines),
		)
		return exitError
	}

	logger.Info("replay finished",
		observability.Int("lines", stats.Lines),
		observability.Int("messages", stats.Messages),
		observability.Int("aborts", stats.Aborts),
	)

	if stats.Aborts > 0 {
		return exitAbort
	}
	return exitOK
}

// loadSettings loads and validates the settings file, or returns the
// defaults when path is empty.
func loadSettings(path string) (*config.Settings, error) {
	if path == "" {
		return config.DefaultSettings(), nil
	}

	settings, err := config.LoadSettings(path)
	if err != nil {
		return nil, err
	}
	if err := config.ValidateSettings(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// initLogger initializes the logger. Command line flags take precedence
// over settings.
func initLogger(f cliFlags, settings *config.Settings, w io.Writer) (observability.Logger, error) {
	cfg := observability.LogConfig{
		Level:  settings.Logging.Level,
		Format: settings.Logging.Format,
		Writer: w,
	}
	if f.logLevel != "" {
		cfg.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Format = f.logFormat
	}
	return observability.NewLogger(cfg)
}

// tracerConfig maps tracing settings to the tracer configuration. The
// resource carries the reporter id and the active debug settings.
func tracerConfig(settings *config.Settings, instanceID string) observability.TracerConfig {
	cfg := observability.TracerConfig{
		ServiceName:    "layerlog",
		ServiceVersion: version,
		InstanceID:     instanceID,
		Enabled:        settings.Tracing.Enabled,
		OTLPEndpoint:   settings.Tracing.Endpoint,
		SamplingRate:   settings.Tracing.SamplingRate,
		Attributes: map[string]string{
			"layerlog.debug_action": strings.Join(settings.DebugAction, ","),
			"layerlog.report_flags": strings.Join(settings.ReportFlags, ","),
			"layerlog.log_filename": settings.LogFilename,
		},
	}
	if settings.Tracing.ServiceName != "" {
		cfg.ServiceName = settings.Tracing.ServiceName
	}
	return cfg
}

// startMetricsServerIfEnabled starts the metrics endpoint in the
// background when settings enable it.
func startMetricsServerIfEnabled(
	settings *config.Settings,
	registry *prometheus.Registry,
	logger observability.Logger,
) *observability.MetricsServer {
	if !settings.Metrics.Enabled {
		return nil
	}

	server := observability.NewMetricsServer(settings.Metrics.Address, settings.Metrics.Path, registry, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("metrics server error", observability.Error(err))
		}
	}()
	return server
}

// startSettingsWatcher reapplies the settings file to the layer when it
// changes. It returns nil when there is no file to watch.
func startSettingsWatcher(
	ctx context.Context,
	path string,
	settings *config.Settings,
	l *layer.Layer,
	logger observability.Logger,
) *config.Watcher {
	if path == "" {
		return nil
	}

	watcher, err := config.NewWatcher(path,
		func(s *config.Settings) {
			if err := l.Apply(s); err != nil {
				logger.Error("failed to apply reloaded settings", observability.Error(err))
			}
		},
		config.WithLogger(logger),
		config.WithDebounceDelay(settings.ReloadDebounce.Duration()),
	)
	if err != nil {
		logger.Warn("settings hot reload disabled", observability.Error(err))
		return nil
	}

	if err := watcher.Start(ctx); err != nil {
		logger.Warn("settings hot reload disabled", observability.Error(err))
		_ = watcher.Stop()
		return nil
	}
	return watcher
}

// replayInput opens the input and replays it.
func replayInput(ctx context.Context, r *debugreport.Reporter, path string, stdin io.Reader) (replayStats, error) {
	if path == "" || path == "-" {
		return replay(ctx, r, stdin)
	}

	file, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return replayStats{}, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() { _ = file.Close() }()

	return replay(ctx, r, file)
}

// shutdown stops the metrics server and flushes the tracer.
func shutdown(server *observability.MetricsServer, tracer *observability.Tracer, logger observability.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("failed to stop metrics server", observability.Error(err))
		}
	}
	if err := tracer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
