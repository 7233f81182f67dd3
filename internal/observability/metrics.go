package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	apiRequestsTotal   *prometheus.CounterVec
	apiLatencySeconds  *prometheus.HistogramVec
	evaluationRunsT    *prometheus.CounterVec
	evaluationResultsT *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "judge_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "judge_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		evaluationRunsT = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "judge_evaluation_runs_total",
			Help: "Total number of evaluation runs started.",
		}, []string{"outcome"})

		evaluationResultsT = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "judge_evaluation_results_total",
			Help: "Per-assignment terminal states across all runs.",
		}, []string{"state"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, evaluationRunsT, evaluationResultsT)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// EvaluationRuns exposes the counter for started evaluation runs.
func EvaluationRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationRunsT
}

// EvaluationResults exposes the per-assignment terminal state counter.
func EvaluationResults() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationResultsT
}
