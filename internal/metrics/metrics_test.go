package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Document("scan")
	m.Document("scan")
	m.Document("structured")
	m.ToolFailure("tesseract", KindTimeout)
	m.MatchTimeout("AmountGross")
	m.Learned("InvoiceNumber", OutcomeLearned)
	m.Learned("InvoiceNumber", OutcomeNotFound)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.documents.WithLabelValues("scan")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documents.WithLabelValues("structured")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolFailures.WithLabelValues("tesseract", KindTimeout)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.matchTimeouts.WithLabelValues("AmountGross")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.learned.WithLabelValues("InvoiceNumber", OutcomeNotFound)))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"intake_documents_total",
		"intake_tool_failures_total",
		"intake_match_timeouts_total",
		"intake_patterns_learned_total",
	}, names)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Document("scan")
		m.ToolFailure("pdftoppm", KindExit)
		m.MatchTimeout("Iban")
		m.Learned("Iban", OutcomeFailed)
	})
}
