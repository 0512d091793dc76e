package worker

import (
	"context"
	"time"

	"contentforge/internal/domain"
	"contentforge/internal/infra"
)

// Reclaimer sweeps jobs stuck in processing (worker crash mid-call) back to
// pending so a later invocation can retry them. The threshold must exceed
// the generation timeout, otherwise live jobs would be stolen.
type Reclaimer struct {
	jobs   domain.JobStore
	after  time.Duration
	logger infra.Logger
}

func NewReclaimer(jobs domain.JobStore, after time.Duration, logger infra.Logger) *Reclaimer {
	return &Reclaimer{jobs: jobs, after: after, logger: logger}
}

// Sweep runs one pass. Invoked on a cron schedule by the worker binary.
func (r *Reclaimer) Sweep(ctx context.Context) {
	ids, err := r.jobs.ReclaimStale(ctx, r.after)
	if err != nil {
		r.logger.Error().Err(err).Msg("reclaim: sweep failed")
		return
	}
	if len(ids) == 0 {
		return
	}
	reclaimedJobs.Add(float64(len(ids)))
	r.logger.Warn().Strs("job_ids", ids).Msg("reclaim: reset stale processing jobs")
}
