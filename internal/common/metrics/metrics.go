// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AgentRunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_agent_runs_completed_total",
			Help: "Total number of agent runs completed, per task type",
		},
		[]string{"task_type"},
	)

	AgentRunsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_agent_runs_failed_total",
			Help: "Total number of agent runs failed, per task type and error code",
		},
		[]string{"task_type", "error_code"},
	)

	AgentRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "career_agent_run_duration_seconds",
			Help:    "Duration of agent runs in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"task_type"},
	)

	AgentRunsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "career_agent_runs_active",
			Help: "Number of in-flight agent runs per task type",
		},
		[]string{"task_type"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_http_requests_total",
			Help: "Total HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "career_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveAgentRun records one finished agent run. errorCode is empty on success.
func ObserveAgentRun(taskType string, seconds float64, errorCode string) {
	AgentRunDuration.WithLabelValues(taskType).Observe(seconds)
	if errorCode == "" {
		AgentRunsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	AgentRunsFailed.WithLabelValues(taskType, errorCode).Inc()
}
