// Package metrics provides Prometheus counters for an import run.
//
// Each Metrics owns a private registry and counts from zero. The CLI writes it
// out in the node_exporter textfile format after the run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Lookup results.
const (
	ResultHit         = "hit"
	ResultMiss        = "miss"
	ResultPassthrough = "passthrough"
	ResultFound       = "found"
	ResultDefault     = "default"
)

// Metrics holds the counters for one import run. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	// VocabularyLookupsTotal tracks vocabulary lookups by category and result
	VocabularyLookupsTotal *prometheus.CounterVec

	// RemoteLookupsTotal tracks knowledge base identifier lookups by property and result
	RemoteLookupsTotal *prometheus.CounterVec

	// StatementsTotal tracks emitted statements by property
	StatementsTotal *prometheus.CounterVec
}

// New creates the counters and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		VocabularyLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "orcidator",
				Subsystem: "vocabulary",
				Name:      "lookups_total",
				Help:      "Total number of vocabulary lookups by category and result",
			},
			[]string{"category", "result"},
		),
		RemoteLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "orcidator",
				Subsystem: "wikidata",
				Name:      "lookups_total",
				Help:      "Total number of external identifier lookups by property and result",
			},
			[]string{"property", "result"},
		),
		StatementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "orcidator",
				Subsystem: "quickstatements",
				Name:      "statements_total",
				Help:      "Total number of statements emitted by property",
			},
			[]string{"property"},
		),
	}
	reg.MustRegister(m.VocabularyLookupsTotal, m.RemoteLookupsTotal, m.StatementsTotal)
	return m
}

// VocabularyLookup records one vocabulary lookup.
func (m *Metrics) VocabularyLookup(category, result string) {
	if m == nil {
		return
	}
	m.VocabularyLookupsTotal.WithLabelValues(category, result).Inc()
}

// RemoteLookup records one knowledge base identifier lookup.
func (m *Metrics) RemoteLookup(property, result string) {
	if m == nil {
		return
	}
	m.RemoteLookupsTotal.WithLabelValues(property, result).Inc()
}

// Statement records one emitted statement.
func (m *Metrics) Statement(property string) {
	if m == nil {
		return
	}
	m.StatementsTotal.WithLabelValues(property).Inc()
}

// WriteTextfile writes all counters to path in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
