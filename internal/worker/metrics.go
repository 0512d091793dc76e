package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentforge_worker_jobs_processed_total",
			Help: "Jobs driven to a terminal state, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
	claimConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contentforge_worker_claim_conflicts_total",
			Help: "Claim attempts that lost to a concurrent or duplicate invocation.",
		},
	)
	settlementFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contentforge_worker_settlement_failures_total",
			Help: "Completed generations whose wallet debit failed. Revenue-integrity fault.",
		},
	)
	reclaimedJobs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contentforge_worker_reclaimed_jobs_total",
			Help: "Stale processing jobs swept back to pending.",
		},
	)
	generateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contentforge_worker_generate_duration_seconds",
			Help:    "External generation call durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
)

const (
	outcomeCompleted           = "completed"
	outcomeGenerationFailed    = "generation_failed"
	outcomeInsufficientCredits = "insufficient_credits"
	outcomeNoProvider          = "no_provider"
	outcomeInvalidRequest      = "invalid_request"
)
