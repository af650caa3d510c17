package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// Loader reads settings files.
type Loader struct {
	basePath string
}

// NewLoader creates a new settings loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadSettings loads settings from a file path.
func LoadSettings(path string) (*Settings, error) {
	return NewLoader().Load(path)
}

// LoadSettingsFromReader loads settings from an io.Reader.
func LoadSettingsFromReader(r io.Reader) (*Settings, error) {
	return NewLoader().LoadFromReader(r)
}

// Load loads settings from a file path. Relative file references inside
// the document are resolved against the directory of path.
func (l *Loader) Load(path string) (*Settings, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	l.basePath = filepath.Dir(absPath)

	data, err := os.ReadFile(absPath) //nolint:gosec // path is validated via filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	return l.parse(data)
}

// LoadFromReader loads settings from an io.Reader.
func (l *Loader) LoadFromReader(r io.Reader) (*Settings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	return l.parse(data)
}

// parse decodes YAML data on top of DefaultSettings.
func (l *Loader) parse(data []byte) (*Settings, error) {
	content := l.substituteEnvVars(string(data))

	settings := DefaultSettings()
	if err := yaml.Unmarshal([]byte(content), settings); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if l.basePath != "" && settings.SpecTextFile != "" && !filepath.IsAbs(settings.SpecTextFile) {
		settings.SpecTextFile = filepath.Join(l.basePath, settings.SpecTextFile)
	}

	return settings, nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment variable values.
func (l *Loader) substituteEnvVars(content string) string {
	content = strings.ReplaceAll(content, "$$", "\x00ESCAPED_DOLLAR\x00")

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""
		if len(submatches) >= 3 {
			defaultValue = submatches[2]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return defaultValue
	})

	return strings.ReplaceAll(result, "\x00ESCAPED_DOLLAR\x00", "$")
}
