package scheduler

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/edkuperman/cronzimus/internal/job"
	"github.com/edkuperman/cronzimus/internal/metrics"
)

// runner adapts a record to cron.Job. A firing that arrives while the
// previous run of the same job is still going is skipped.
type runner struct {
	s    *Scheduler
	rec  job.Record
	busy chan struct{}
}

func newRunner(s *Scheduler, rec job.Record) *runner {
	return &runner{s: s, rec: rec, busy: make(chan struct{}, 1)}
}

func (r *runner) Run() {
	select {
	case r.busy <- struct{}{}:
	default:
		r.s.log.Warn().Str("job_id", r.rec.ID).Msg("job still running, skipping tick")
		r.s.metrics.Skipped(r.rec.ID)
		return
	}
	defer func() { <-r.busy }()

	log := r.s.log.With().
		Str("job_id", r.rec.ID).
		Str("run_id", uuid.NewString()).
		Logger()
	ctx := log.WithContext(r.s.runCtx)

	start := time.Now()
	status := metrics.StatusSuccess
	r.s.metrics.Started(r.rec.ID)
	defer func() {
		if p := recover(); p != nil {
			status = metrics.StatusPanic
			log.Error().
				Str("panic", fmt.Sprint(p)).
				Str("stack", string(debug.Stack())).
				Msg("job panicked")
		}
		r.s.metrics.Finished(r.rec.ID, status, time.Since(start))
	}()

	log.Debug().Msg("job started")
	if err := r.rec.Run(ctx); err != nil {
		status = metrics.StatusFailure
		log.Error().Err(err).Dur("took", time.Since(start)).Msg("job failed")
		return
	}
	log.Debug().Dur("took", time.Since(start)).Msg("job completed")
}
