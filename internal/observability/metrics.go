// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Collection pipeline metrics
	CollectionsTotal    *prometheus.CounterVec
	CollectionDuration  prometheus.Histogram
	StageTransitions    *prometheus.CounterVec
	TradesReconstructed prometheus.Counter
	RiskLevels          *prometheus.CounterVec

	// Workflow metrics
	WorkflowRunsTotal *prometheus.CounterVec
	ToolFailures      *prometheus.CounterVec
	ToolDuration      *prometheus.HistogramVec

	// External collaborator metrics
	ProviderLatency  *prometheus.HistogramVec
	ProviderErrors   *prometheus.CounterVec
	AdvisoryOutcomes *prometheus.CounterVec

	// Delivery metrics
	AlertsPublished *prometheus.CounterVec
	MonitorEvents   prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "chain_risk_lab"
	}

	return &Metrics{
		CollectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "runs_total",
			Help:      "Total number of wallet collection runs by outcome",
		}, []string{"status"}),
		CollectionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "run_duration_seconds",
			Help:      "Duration of wallet collection runs",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		StageTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "stage_transitions_total",
			Help:      "Collection pipeline state transitions by target state",
		}, []string{"state"}),
		TradesReconstructed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "trades_reconstructed_total",
			Help:      "Total number of DEX trades reconstructed from transactions",
		}),
		RiskLevels: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "risk_levels_total",
			Help:      "Scam analysis outcomes by risk level",
		}, []string{"level"}),

		WorkflowRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "runs_total",
			Help:      "Total number of multi-tool workflow runs by outcome",
		}, []string{"status"}),
		ToolFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "tool_failures_total",
			Help:      "Analysis tool failures by tool name",
		}, []string{"tool"}),
		ToolDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "tool_duration_seconds",
			Help:      "Analysis tool duration including the provider fetch",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),

		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Data provider request latency by operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "errors_total",
			Help:      "Data provider errors by operation",
		}, []string{"operation"}),
		AdvisoryOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "advisory",
			Name:      "outcomes_total",
			Help:      "Advisory text-analysis outcomes (ok, degraded)",
		}, []string{"outcome"}),

		AlertsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "published_total",
			Help:      "Alerts published by type and status",
		}, []string{"type", "status"}),
		MonitorEvents: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "events_total",
			Help:      "Transaction events received from the live feed",
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCollection records a finished collection run.
func RecordCollection(status string, durationSeconds float64) {
	DefaultMetrics.CollectionsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.CollectionDuration.Observe(durationSeconds)
}

// RecordStage records a collection pipeline state transition.
func RecordStage(state string) {
	DefaultMetrics.StageTransitions.WithLabelValues(state).Inc()
}

// RecordTrades adds reconstructed trades to the counter.
func RecordTrades(n int) {
	DefaultMetrics.TradesReconstructed.Add(float64(n))
}

// RecordRiskLevel records the basic risk level of a finished analysis.
func RecordRiskLevel(level string) {
	DefaultMetrics.RiskLevels.WithLabelValues(level).Inc()
}

// RecordWorkflowRun records a workflow run outcome.
func RecordWorkflowRun(status string) {
	DefaultMetrics.WorkflowRunsTotal.WithLabelValues(status).Inc()
}

// RecordTool records one tool call.
func RecordTool(tool string, seconds float64, failed bool) {
	DefaultMetrics.ToolDuration.WithLabelValues(tool).Observe(seconds)
	if failed {
		DefaultMetrics.ToolFailures.WithLabelValues(tool).Inc()
	}
}

// RecordProviderCall records data provider latency.
func RecordProviderCall(operation string, seconds float64, err error) {
	DefaultMetrics.ProviderLatency.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.ProviderErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAdvisory records whether the advisory signal was usable.
func RecordAdvisory(outcome string) {
	DefaultMetrics.AdvisoryOutcomes.WithLabelValues(outcome).Inc()
}

// RecordAlert records an alert publish attempt.
func RecordAlert(alertType string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.AlertsPublished.WithLabelValues(alertType, status).Inc()
}

// RecordMonitorEvent increments the live feed event counter.
func RecordMonitorEvent() {
	DefaultMetrics.MonitorEvents.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
