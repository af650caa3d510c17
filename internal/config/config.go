package config

import (
	"strings"

	"github.com/vyrodovalexey/layerlog/internal/flags"
)

// Debug actions.
const (
	ActionLog    = "log"
	ActionBreak  = "break"
	ActionIgnore = "ignore"
)

// Color modes for the default log sink.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Special log file names.
const (
	LogStdout = "stdout"
	LogStderr = "stderr"
)

// Settings is the layer settings document.
type Settings struct {
	// DebugAction lists what the default observers do: log, break or ignore.
	DebugAction []string `yaml:"debugAction"`
	// ReportFlags lists the legacy flags the default observers accept.
	ReportFlags []string `yaml:"reportFlags"`
	// LogFilename is stdout, stderr or a file path.
	LogFilename string `yaml:"logFilename"`
	// Color is auto, always or never.
	Color string `yaml:"color"`
	// SpecTextFile optionally points at the message id to text table.
	// Relative paths are resolved against the settings file.
	SpecTextFile string `yaml:"specTextFile,omitempty"`
	// ReloadDebounce delays reloads after the settings file changes.
	ReloadDebounce Duration `yaml:"reloadDebounce,omitempty"`

	Logging LoggingSettings `yaml:"logging"`
	Metrics MetricsSettings `yaml:"metrics"`
	Tracing TracingSettings `yaml:"tracing"`
}

// LoggingSettings configures the layer's own structured log.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsSettings configures the Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// TracingSettings configures OpenTelemetry tracing.
type TracingSettings struct {
	Enabled      bool    `yaml:"enabled"`
	Endpoint     string  `yaml:"endpoint,omitempty"`
	ServiceName  string  `yaml:"serviceName,omitempty"`
	SamplingRate float64 `yaml:"samplingRate,omitempty"`
}

// DefaultSettings returns settings that log errors to stdout.
func DefaultSettings() *Settings {
	return &Settings{
		DebugAction: []string{ActionLog},
		ReportFlags: []string{"error"},
		LogFilename: LogStdout,
		Color:       ColorAuto,
		Logging: LoggingSettings{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsSettings{
			Address: ":9464",
			Path:    "/metrics",
		},
		Tracing: TracingSettings{
			ServiceName:  "layerlog",
			SamplingRate: 1.0,
		},
	}
}

// HasAction reports whether action is listed in DebugAction.
func (s *Settings) HasAction(action string) bool {
	for _, a := range s.DebugAction {
		if strings.EqualFold(strings.TrimSpace(a), action) {
			return true
		}
	}
	return false
}

// Flags parses ReportFlags.
func (s *Settings) Flags() (flags.ReportFlags, error) {
	return flags.ParseReportFlags(s.ReportFlags)
}
