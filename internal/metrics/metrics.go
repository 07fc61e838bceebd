// Package metrics exposes the intake counters. A nil *Metrics is valid and
// records nothing, so components can be built without a registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "intake"

// Tool failure kinds.
const (
	KindTimeout = "timeout"
	KindExit    = "exit"
)

// Learn outcomes.
const (
	OutcomeLearned  = "learned"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
)

type Metrics struct {
	documents     *prometheus.CounterVec
	toolFailures  *prometheus.CounterVec
	matchTimeouts *prometheus.CounterVec
	learned       *prometheus.CounterVec
}

// New registers the intake counters with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		documents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents taken in, by detected source.",
		}, []string{"source"}),
		toolFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_failures_total",
			Help:      "Failed external OCR tool invocations.",
		}, []string{"tool", "kind"}),
		matchTimeouts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_timeouts_total",
			Help:      "Field matches abandoned after the per-match deadline.",
		}, []string{"field"}),
		learned: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patterns_learned_total",
			Help:      "Pattern learning attempts by outcome.",
		}, []string{"field", "outcome"}),
	}
}

func (m *Metrics) Document(source string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(source).Inc()
}

func (m *Metrics) ToolFailure(tool, kind string) {
	if m == nil {
		return
	}
	m.toolFailures.WithLabelValues(tool, kind).Inc()
}

func (m *Metrics) MatchTimeout(field string) {
	if m == nil {
		return
	}
	m.matchTimeouts.WithLabelValues(field).Inc()
}

func (m *Metrics) Learned(field, outcome string) {
	if m == nil {
		return
	}
	m.learned.WithLabelValues(field, outcome).Inc()
}
