package debugreport

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/layerlog/internal/flags"
)

// gather returns the metric families of reg by name.
func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

// sample returns the value of the series in f whose labels include want.
func sample(f *dto.MetricFamily, want map[string]string) float64 {
	for _, m := range f.GetMetric() {
		matched := 0
		for _, lp := range m.GetLabel() {
			if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
				matched++
			}
		}
		if matched != len(want) {
			continue
		}
		switch {
		case m.GetCounter() != nil:
			return m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			return m.GetGauge().GetValue()
		case m.GetHistogram() != nil:
			return float64(m.GetHistogram().GetSampleCount())
		}
	}
	return -1
}

func TestMetrics_Recorded(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r := NewReporter(WithRegisterer("test", reg))

	families := gather(t, reg)
	require.Contains(t, families, "test_debug_report_messages_total")
	assert.Equal(t, float64(0), sample(families["test_debug_report_messages_total"], map[string]string{"severity": "error"}))

	user := &messengerRecorder{abort: true}
	r.CreateMessenger(user.info(flags.SeverityError, flags.TypeValidation))
	def := &reportRecorder{}
	r.CreateReportCallback(def.info(flags.ReportAll), AsDefault())

	r.Dispatch(context.Background(), NewReportEvent(flags.ReportError, ObjectTypeDevice, 1, "", "m"))

	families = gather(t, reg)
	assert.Equal(t, float64(1), sample(families["test_debug_report_messages_total"], map[string]string{"severity": "error"}))
	assert.Equal(t, float64(1), sample(families["test_debug_report_callback_invocations_total"],
		map[string]string{"scheme": "messenger", "scope": "user"}))
	assert.Equal(t, float64(0), sample(families["test_debug_report_callback_invocations_total"],
		map[string]string{"scheme": "report", "scope": "default"}))
	assert.Equal(t, float64(1), sample(families["test_debug_report_abort_requests_total"], nil))
	assert.Equal(t, float64(1), sample(families["test_debug_report_dispatch_duration_seconds"], nil))
	assert.Equal(t, float64(1), sample(families["test_debug_report_callbacks"], map[string]string{"scope": "user"}))
	assert.Equal(t, float64(1), sample(families["test_debug_report_callbacks"], map[string]string{"scope": "default"}))

	r.Destroy()
	families = gather(t, reg)
	assert.Equal(t, float64(0), sample(families["test_debug_report_callbacks"], map[string]string{"scope": "user"}))
}

func TestMetrics_SharedRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	a := NewMetricsWithRegisterer("shared", reg)
	b := NewMetricsWithRegisterer("shared", reg)

	a.recordMessage(flags.SeverityWarning)
	b.recordMessage(flags.SeverityWarning)

	families := gather(t, reg)
	assert.Equal(t, float64(2), sample(families["shared_debug_report_messages_total"], map[string]string{"severity": "warning"}))
}

func TestMetrics_Nil(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.Init()
		m.recordMessage(flags.SeverityError)
		m.recordInvocation(SchemeReport, ScopeDefault)
		m.recordDispatch(0, true)
		m.setCallbacks(&registry{})
	})
}

func TestSeverityLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "error", severityLabel(flags.SeverityAll))
	assert.Equal(t, "warning", severityLabel(flags.SeverityWarning|flags.SeverityInfo))
	assert.Equal(t, "info", severityLabel(flags.SeverityInfo))
	assert.Equal(t, "verbose", severityLabel(flags.SeverityVerbose))
	assert.Equal(t, "none", severityLabel(0))
}

func TestNewMetrics_DefaultRegisterer(t *testing.T) {
	t.Parallel()

	m := NewMetrics("")
	require.NotNil(t, m)
	assert.Same(t, m.messagesTotal, NewMetrics(DefaultMetricsNamespace).messagesTotal)

	r := NewReporter(WithMetrics(m))
	rec := &reportRecorder{}
	r.CreateReportCallback(rec.info(flags.ReportWarning))
	r.Dispatch(context.Background(), NewReportEvent(flags.ReportWarning, ObjectTypeQueue, 2, "", "m"))

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var found *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "layerlog_debug_report_messages_total" {
			found = f
		}
	}
	require.NotNil(t, found)
	assert.GreaterOrEqual(t, sample(found, map[string]string{"severity": "warning"}), float64(1))
}
