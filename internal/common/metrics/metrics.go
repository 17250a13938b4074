package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Worker job metrics
var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Copilot core metrics
var (
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_llm_requests_total",
			Help: "Provider calls by provider, purpose and outcome",
		},
		[]string{"provider", "purpose", "outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copilot_llm_request_duration_seconds",
			Help:    "Provider call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "purpose"},
	)

	IntentClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_intent_classifications_total",
			Help: "Intent classification results",
		},
		[]string{"result"},
	)

	CommandExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_command_executions_total",
			Help: "Command dispatch outcomes by action and entity",
		},
		[]string{"action", "entity", "outcome"},
	)
)
