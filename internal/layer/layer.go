// Package layer wires layer settings to a diagnostic Reporter: it opens the
// log output, loads the spec text table and keeps the default observers
// in line with the current settings.
package layer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/vyrodovalexey/layerlog/internal/config"
	"github.com/vyrodovalexey/layerlog/internal/debugreport"
	"github.com/vyrodovalexey/layerlog/internal/observability"
)

// ErrClosed is returned by Apply after Close.
var ErrClosed = errors.New("layer is closed")

// Layer owns a Reporter and the default observers created from settings.
type Layer struct {
	mu       sync.Mutex
	reporter *debugreport.Reporter
	logger   observability.Logger
	stdout   io.Writer
	stderr   io.Writer

	settings *config.Settings
	defaults []debugreport.Handle
	output   io.Closer
	closed   bool

	reporterOpts []debugreport.Option
}

// Option is a functional option for New.
type Option func(*Layer)

// WithLogger sets the logger for the layer and its reporter.
func WithLogger(logger observability.Logger) Option {
	return func(l *Layer) {
		l.logger = logger
	}
}

// WithReporterOptions passes options to the Reporter.
func WithReporterOptions(opts ...debugreport.Option) Option {
	return func(l *Layer) {
		l.reporterOpts = append(l.reporterOpts, opts...)
	}
}

// WithStdout replaces the writer used for logFilename "stdout".
func WithStdout(w io.Writer) Option {
	return func(l *Layer) {
		l.stdout = w
	}
}

// WithStderr replaces the writer used for logFilename "stderr".
func WithStderr(w io.Writer) Option {
	return func(l *Layer) {
		l.stderr = w
	}
}

// New creates a Layer and registers the default observers described by
// settings. A nil settings uses config.DefaultSettings.
func New(settings *config.Settings, opts ...Option) (*Layer, error) {
	l := &Layer{
		logger: observability.NopLogger(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}

	reporterOpts := append([]debugreport.Option{debugreport.WithLogger(l.logger)}, l.reporterOpts...)
	l.reporter = debugreport.NewReporter(reporterOpts...)

	if settings == nil {
		settings = config.DefaultSettings()
	}
	if err := l.Apply(settings); err != nil {
		l.reporter.Destroy()
		return nil, err
	}

	return l, nil
}

// Reporter returns the layer's reporter.
func (l *Layer) Reporter() *debugreport.Reporter {
	return l.reporter
}

// Settings returns the settings last applied.
func (l *Layer) Settings() *config.Settings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.settings
}

// Apply replaces the default observers with ones built from settings.
// On error the previous observers stay registered.
func (l *Layer) Apply(settings *config.Settings) error {
	if err := config.ValidateSettings(settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	rf, err := settings.Flags()
	if err != nil {
		return fmt.Errorf("invalid report flags: %w", err)
	}

	var specText debugreport.SpecText
	if settings.SpecTextFile != "" {
		specText, err = debugreport.LoadSpecText(settings.SpecTextFile)
		if err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	var (
		out    io.Writer
		closer io.Closer
	)
	if settings.HasAction(config.ActionLog) {
		out, closer, err = l.openOutput(settings.LogFilename)
		if err != nil {
			return err
		}
	}

	for _, h := range l.defaults {
		l.reporter.DestroyReportCallback(h)
	}
	l.defaults = l.defaults[:0]

	if out != nil {
		sink := &debugreport.LogSink{
			Writer: out,
			Color:  useColor(settings.Color, out),
		}
		l.defaults = append(l.defaults, l.reporter.CreateReportCallback(&debugreport.ReportCallbackCreateInfo{
			Flags:    rf,
			Callback: debugreport.ReportLogCallback,
			UserData: sink,
		}, debugreport.AsDefault()))
	}
	if settings.HasAction(config.ActionBreak) {
		l.defaults = append(l.defaults, l.reporter.CreateReportCallback(&debugreport.ReportCallbackCreateInfo{
			Flags:    rf,
			Callback: debugreport.ReportBreakCallback,
		}, debugreport.AsDefault()))
	}
	l.reporter.SetSpecText(specText)

	if l.output != nil {
		if err := l.output.Close(); err != nil {
			l.logger.Warn("failed to close previous log output", observability.Error(err))
		}
	}
	l.output = closer
	l.settings = settings

	l.logger.Info("layer settings applied",
		observability.String("debug_action", strings.Join(settings.DebugAction, ",")),
		observability.String("report_flags", rf.String()),
		observability.String("log_filename", settings.LogFilename),
		observability.Int("default_callbacks", len(l.defaults)),
	)

	return nil
}

// openOutput resolves logFilename to a writer. Files are opened for
// append and returned with their closer.
func (l *Layer) openOutput(name string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case config.LogStdout:
		return l.stdout, nil, nil
	case config.LogStderr:
		return l.stderr, nil, nil
	}

	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // path comes from trusted settings
	if err != nil {
		l.logger.Warn("failed to open log file, falling back to stdout",
			observability.String("path", name),
			observability.Error(err),
		)
		return l.stdout, nil, nil
	}
	return f, f, nil
}

// useColor resolves the color mode. Auto colors the output only when it is
// a terminal and NO_COLOR is unset.
func useColor(mode string, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return autoColor(out, os.Getenv("NO_COLOR"), isTerminal)
	}
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// autoColor checks the writer the sink actually uses, not os.Stdout.
func autoColor(out io.Writer, noColor string, terminal func(fd uintptr) bool) bool {
	if noColor != "" {
		return false
	}
	f, ok := out.(*os.File)
	return ok && terminal(f.Fd())
}

// Close destroys the reporter and closes the log file, if any.
func (l *Layer) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	l.reporter.Destroy()
	l.defaults = nil

	if l.output != nil {
		err := l.output.Close()
		l.output = nil
		if err != nil {
			return fmt.Errorf("failed to close log output: %w", err)
		}
	}
	return nil
}
