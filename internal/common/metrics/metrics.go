package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

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

	PricingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_cache_lookups_total",
			Help: "Regional pricing cache lookups by outcome (redis_hit, history_hit, miss)",
		},
		[]string{"outcome"},
	)

	PricingLiveFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_live_fetches_total",
			Help: "Live regional pricing fetches by outcome (success, timeout, error, skipped)",
		},
		[]string{"outcome"},
	)

	ScopeEnhancements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scope_enhancements_total",
			Help: "Scope enhancement calls by outcome (success, failure)",
		},
		[]string{"outcome"},
	)

	DraftConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "draft_confidence_score",
			Help:    "Confidence score distribution of generated drafts",
			Buckets: prometheus.LinearBuckets(0, 10, 10),
		},
	)
)
