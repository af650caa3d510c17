package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/layerlog/internal/flags"
)

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	assert.Equal(t, []string{ActionLog}, s.DebugAction)
	assert.Equal(t, LogStdout, s.LogFilename)
	assert.Equal(t, ColorAuto, s.Color)
	assert.False(t, s.Metrics.Enabled)
	assert.False(t, s.Tracing.Enabled)
	assert.NoError(t, ValidateSettings(s))

	rf, err := s.Flags()
	require.NoError(t, err)
	assert.Equal(t, flags.ReportError, rf)
}

func TestSettings_HasAction(t *testing.T) {
	t.Parallel()

	s := &Settings{DebugAction: []string{" LOG ", "break"}}
	assert.True(t, s.HasAction(ActionLog))
	assert.True(t, s.HasAction(ActionBreak))
	assert.False(t, s.HasAction(ActionIgnore))
}

func TestSettings_Flags(t *testing.T) {
	t.Parallel()

	s := &Settings{ReportFlags: []string{"error", "warn", "perf"}}
	rf, err := s.Flags()
	require.NoError(t, err)
	assert.Equal(t, flags.ReportError|flags.ReportWarning|flags.ReportPerformanceWarning, rf)

	s.ReportFlags = []string{"noise"}
	_, err = s.Flags()
	assert.Error(t, err)
}
