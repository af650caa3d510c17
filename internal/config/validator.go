package config

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/layerlog/internal/flags"
)

// ValidationError represents a settings validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates layer settings.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new settings validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// ValidateSettings validates layer settings.
func ValidateSettings(settings *Settings) error {
	return NewValidator().Validate(settings)
}

// Validate validates the settings and returns any errors.
func (v *Validator) Validate(settings *Settings) error {
	v.errors = make(ValidationErrors, 0)

	if settings == nil {
		v.addError("", "settings are nil")
		return v.errors
	}

	v.validateActions(settings.DebugAction)
	v.validateReportFlags(settings.ReportFlags)
	v.validateOutput(settings)
	v.validateLogging(&settings.Logging)
	v.validateMetrics(&settings.Metrics)
	v.validateTracing(&settings.Tracing)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

func (v *Validator) validateActions(actions []string) {
	for i, a := range actions {
		switch strings.ToLower(strings.TrimSpace(a)) {
		case ActionLog, ActionBreak, ActionIgnore:
		default:
			v.addError(fmt.Sprintf("debugAction[%d]", i),
				fmt.Sprintf("unknown action %q, must be one of log, break, ignore", a))
		}
	}
}

func (v *Validator) validateReportFlags(tokens []string) {
	if _, err := flags.ParseReportFlags(tokens); err != nil {
		v.addError("reportFlags", err.Error())
	}
}

func (v *Validator) validateOutput(settings *Settings) {
	if strings.TrimSpace(settings.LogFilename) == "" {
		v.addError("logFilename", "logFilename is required")
	}

	switch settings.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		v.addError("color", fmt.Sprintf("color must be one of auto, always, never, got %q", settings.Color))
	}

	if settings.ReloadDebounce < 0 {
		v.addError("reloadDebounce", "reloadDebounce must not be negative")
	}
}

func (v *Validator) validateLogging(logging *LoggingSettings) {
	switch strings.ToLower(logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		v.addError("logging.level", fmt.Sprintf("invalid log level %q", logging.Level))
	}

	switch logging.Format {
	case "json", "console":
	default:
		v.addError("logging.format", fmt.Sprintf("log format must be json or console, got %q", logging.Format))
	}
}

func (v *Validator) validateMetrics(metrics *MetricsSettings) {
	if !metrics.Enabled {
		return
	}
	if metrics.Address == "" {
		v.addError("metrics.address", "address is required when metrics are enabled")
	}
	if !strings.HasPrefix(metrics.Path, "/") {
		v.addError("metrics.path", "path must start with '/'")
	}
}

func (v *Validator) validateTracing(tracing *TracingSettings) {
	if !tracing.Enabled {
		return
	}
	if tracing.ServiceName == "" {
		v.addError("tracing.serviceName", "serviceName is required when tracing is enabled")
	}
	if tracing.SamplingRate < 0 || tracing.SamplingRate > 1 {
		v.addError("tracing.samplingRate", "samplingRate must be between 0 and 1")
	}
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}
