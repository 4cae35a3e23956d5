package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Ask outcomes used as the "outcome" label.
const (
	OutcomeSuccess        = "success"
	OutcomeSchemaError    = "schema_error"
	OutcomeCompletion     = "completion_error"
	OutcomeRejected       = "rejected"
	OutcomeExecutionError = "execution_error"
)

var (
	askRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asksql_ask_requests_total",
			Help: "Total number of ask calls by outcome.",
		},
		[]string{"outcome"},
	)
	askDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asksql_ask_duration_seconds",
			Help:    "End-to-end ask latency: introspection, completion and execution.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
	)
	completionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asksql_completion_duration_seconds",
			Help:    "Latency of chat completion calls.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
	)
	schemaIntrospectionSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asksql_schema_introspection_duration_seconds",
			Help:    "Latency of a full schema introspection pass.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
	)
	schemaTablesDescribed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "asksql_schema_tables",
			Help: "Number of user tables in the last introspected schema.",
		},
	)
	foreignKeyLookupFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asksql_schema_foreign_key_lookup_failures_total",
			Help: "Foreign key catalog lookups that failed and were treated as no foreign keys.",
		},
	)
	schemaCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asksql_schema_cache_hits_total",
			Help: "Schema descriptions served from the time-bounded cache.",
		},
	)
	archiveFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asksql_archive_failures_total",
			Help: "Ask records that could not be written to the archive.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		askRequestsTotal,
		askDurationSeconds,
		completionDurationSeconds,
		schemaIntrospectionSeconds,
		schemaTablesDescribed,
		foreignKeyLookupFailuresTotal,
		schemaCacheHitsTotal,
		archiveFailuresTotal,
	)
}

func ObserveAsk(outcome string, elapsed time.Duration) {
	askRequestsTotal.WithLabelValues(outcome).Inc()
	askDurationSeconds.Observe(elapsed.Seconds())
}

func ObserveCompletion(elapsed time.Duration) {
	completionDurationSeconds.Observe(elapsed.Seconds())
}

func ObserveSchemaIntrospection(tables int, elapsed time.Duration) {
	schemaTablesDescribed.Set(float64(tables))
	schemaIntrospectionSeconds.Observe(elapsed.Seconds())
}

func IncrementForeignKeyLookupFailure() {
	foreignKeyLookupFailuresTotal.Inc()
}

func IncrementSchemaCacheHit() {
	schemaCacheHitsTotal.Inc()
}

func IncrementArchiveFailure() {
	archiveFailuresTotal.Inc()
}
