// Package metrics counts searches, suggestions and renames for one run and
// can dump them in the Prometheus text format for the node_exporter
// textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	imgnamer "github.com/anatolykoptev/go-imgnamer"
)

// Metrics holds the counters of a run on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	Searches      *prometheus.CounterVec
	SearchResults *prometheus.CounterVec
	Suggestions   *prometheus.CounterVec
	Renames       *prometheus.CounterVec
}

// New creates the counters and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imgnamer_searches_total",
				Help: "Reverse-image searches by provider and status.",
			},
			[]string{"provider", "status"}, // status: ok, error
		),
		SearchResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imgnamer_search_results_total",
				Help: "Search results returned by provider.",
			},
			[]string{"provider"},
		),
		Suggestions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imgnamer_suggestions_total",
				Help: "Name suggestions by outcome.",
			},
			[]string{"outcome"}, // named, cached, empty, error
		),
		Renames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imgnamer_renames_total",
				Help: "File renames by status.",
			},
			[]string{"status"}, // renamed, dry_run, unchanged, skipped, failed
		),
	}
	m.Registry.MustRegister(m.Searches, m.SearchResults, m.Suggestions, m.Renames)
	return m
}

// OnSearch matches imgnamer.Config.OnSearch.
func (m *Metrics) OnSearch(provider string, results int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Searches.WithLabelValues(provider, status).Inc()
	m.SearchResults.WithLabelValues(provider).Add(float64(results))
}

// OnSuggestion matches imgnamer.Config.OnSuggestion.
func (m *Metrics) OnSuggestion(ev imgnamer.SuggestionEvent) {
	var outcome string
	switch {
	case ev.Err != nil:
		outcome = "error"
	case ev.Cached:
		outcome = "cached"
	case ev.Name == "":
		outcome = "empty"
	default:
		outcome = "named"
	}
	m.Suggestions.WithLabelValues(outcome).Inc()
}

// Rename matches batch.Runner.OnRename.
func (m *Metrics) Rename(status string) {
	m.Renames.WithLabelValues(status).Inc()
}

// WriteTextfile atomically writes every metric to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
