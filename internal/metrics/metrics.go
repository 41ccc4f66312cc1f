package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all harvester metrics
const namespace = "harvester"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AppInfo is a gauge that exposes application version information as labels
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// CandidatesFound counts raw candidates produced by extraction per venue.
var CandidatesFound = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "candidates_found_total",
		Help:      "Total raw event candidates extracted, before normalization",
	},
	[]string{"venue", "strategy"},
)

// EventsAccepted counts normalized events that passed validation per venue.
var EventsAccepted = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_accepted_total",
		Help:      "Total events that survived normalization and filtering",
	},
	[]string{"venue"},
)

// CandidatesRejected counts dropped candidates by rejection reason.
var CandidatesRejected = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "candidates_rejected_total",
		Help:      "Total candidates dropped during normalization, by reason",
	},
	[]string{"venue", "reason"},
)

// FetchFailures counts per-venue fetch failures by error kind.
var FetchFailures = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_failures_total",
		Help:      "Total fetch failures, by error kind (network, blocked, timeout)",
	},
	[]string{"venue", "kind"},
)

// PipelineDuration tracks end-to-end per-venue pipeline run duration.
var PipelineDuration = promauto.With(Registry).NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of one venue pipeline run (fetch through filter)",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	},
	[]string{"venue", "mode"},
)

// SinkSubmissions counts batch submissions to the backing API by outcome.
var SinkSubmissions = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sink_submissions_total",
		Help:      "Total batch submissions to the sink, by outcome",
	},
	[]string{"outcome"}, // ok | error | dry_run
)

// Init initializes the metrics registry and sets version information
func Init(version, commit, buildDate string) {
	// Register default Go metrics (memory, goroutines, GC, etc.)
	Registry.MustRegister(collectors.NewGoCollector())

	// Register process metrics (CPU, memory, file descriptors)
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Set application version info (value is always 1, info is in labels)
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
