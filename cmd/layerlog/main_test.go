package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/layerlog/internal/config"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	f, err := parseFlags([]string{"-config", "s.yaml", "-input", "in.jsonl", "-log-level", "debug", "-log-format", "console"})
	require.NoError(t, err)
	assert.Equal(t, cliFlags{
		configPath: "s.yaml",
		inputPath:  "in.jsonl",
		logLevel:   "debug",
		logFormat:  "console",
	}, f)

	_, err = parseFlags([]string{"-nope"})
	assert.Error(t, err)
}

func TestPrintVersion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printVersion(&buf)
	assert.Contains(t, buf.String(), "layerlog version dev")
}

func TestRun_ReplaysToStdout(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	input := strings.NewReader(`{"flags":["error"],"objectType":"Buffer","handle":"0x2a","id":"VUID-b","message":"bad buffer"}` + "\n")

	code := run(context.Background(), cliFlags{inputPath: "-", logLevel: "error"}, input, &stdout, &stderr)

	assert.Equal(t, exitOK, code)
	assert.Equal(t,
		"Validation(ERROR): msg_code: 0:  [ VUID-b ] Object: 0x2a (Type = 9) | bad buffer\n",
		stdout.String())
}

func TestRun_SettingsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")
	settingsPath := filepath.Join(dir, "layerlog.yaml")
	require.NoError(t, os.WriteFile(settingsPath, []byte(
		"debugAction: [log]\nreportFlags: [warn]\ncolor: never\nlogFilename: "+logPath+"\n"), 0o600))

	inputPath := filepath.Join(dir, "events.jsonl")
	require.NoError(t, os.WriteFile(inputPath, []byte(strings.Join([]string{
		`{"flags":["error"],"message":"dropped"}`,
		`{"flags":["warn"],"message":"kept"}`,
	}, "\n")), 0o600))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), cliFlags{configPath: settingsPath, inputPath: inputPath, logLevel: "error"},
		strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "Validation(WARN): msg_code: 0: Object: VK_NULL_HANDLE (Type = 0) | kept\n", string(data))
	assert.Empty(t, stdout.String())
}

func TestRun_InvalidSettings(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "layerlog.yaml")
	require.NoError(t, os.WriteFile(settingsPath, []byte("color: rainbow\n"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), cliFlags{configPath: settingsPath}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr.String(), "failed to load settings")
}

func TestRun_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), cliFlags{logLevel: "shout"}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr.String(), "failed to initialize logger")
}

func TestRun_BadInput(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), cliFlags{inputPath: "-"}, strings.NewReader("not json\n"), &stdout, &stderr)

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr.String(), "replay failed")
}

func TestRun_MissingInputFile(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), cliFlags{inputPath: filepath.Join(t.TempDir(), "missing.jsonl")},
		strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr.String(), "failed to open input")
}

func TestLoadSettings_Default(t *testing.T) {
	t.Parallel()

	s, err := loadSettings("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSettings(), s)
}

func TestTracerConfig(t *testing.T) {
	t.Parallel()

	s := config.DefaultSettings()
	s.Tracing.Enabled = true
	s.Tracing.Endpoint = "collector:4317"
	s.Tracing.ServiceName = ""

	cfg := tracerConfig(s, "reporter-1")
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
	assert.Equal(t, "layerlog", cfg.ServiceName)
	assert.Equal(t, version, cfg.ServiceVersion)
	assert.Equal(t, "reporter-1", cfg.InstanceID)
	assert.Equal(t, "log", cfg.Attributes["layerlog.debug_action"])
	assert.Equal(t, "error", cfg.Attributes["layerlog.report_flags"])
	assert.Equal(t, config.LogStdout, cfg.Attributes["layerlog.log_filename"])
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("LAYERLOG_TEST_ENV", "value")

	assert.Equal(t, "value", getEnvOrDefault("LAYERLOG_TEST_ENV", "default"))
	assert.Equal(t, "default", getEnvOrDefault("LAYERLOG_TEST_ENV_UNSET", "default"))
}
