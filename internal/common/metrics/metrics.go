// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IntakeSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Total number of intake submissions by outcome",
		},
		[]string{"outcome"},
	)

	PipelineTasksCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_tasks_completed_total",
			Help: "Total number of background tasks completed by kind",
		},
		[]string{"kind"},
	)

	PipelineTasksFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_tasks_failed_total",
			Help: "Total number of background tasks failed by kind and error code",
		},
		[]string{"kind", "error_code"},
	)

	PipelineTaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_task_duration_seconds",
			Help: "Duration of background task processing in seconds",
		},
		[]string{"kind"},
	)

	ScoringCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_calls_total",
			Help: "Total number of scoring engine calls by outcome",
		},
		[]string{"outcome"},
	)

	EvaluationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluation_runs_total",
			Help: "Total number of evaluation runs by role",
		},
		[]string{"role_id"},
	)
)
