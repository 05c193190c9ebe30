// Package metrics holds the Prometheus instruments for analysis runs and
// the HTTP server that exposes them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FilesParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tangle_files_parsed_total",
		Help: "Total number of source files loaded and parsed.",
	})

	ParseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tangle_parse_failures_total",
		Help: "Total number of source files that could not be read or parsed.",
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tangle_analysis_seconds",
		Help:    "Time spent on analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	Findings = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tangle_deadcode_findings",
		Help: "Dead-code findings of the last run, by category.",
	}, []string{"category"})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tangle_graph_nodes",
		Help: "Number of files in the last dependency graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tangle_graph_edges",
		Help: "Number of import edges in the last dependency graph.",
	})

	WatcherEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tangle_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tangle_results_cache_total",
		Help: "Results cache lookups by outcome.",
	}, []string{"outcome"})
)

// ObserveDuration records the time since start for task.
func ObserveDuration(task string, start time.Time) {
	AnalysisDuration.WithLabelValues(task).Observe(time.Since(start).Seconds())
}
