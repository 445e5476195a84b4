// Package scheduler binds job records to a robfig/cron engine and owns the
// engine's lifecycle. Engine types never leave this package.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/edkuperman/cronzimus/internal/job"
	"github.com/edkuperman/cronzimus/internal/metrics"
	"github.com/edkuperman/cronzimus/internal/trigger"
)

// Source supplies the records to register, in registration order.
type Source interface {
	Jobs() []job.Record
}

// Scheduler is a running engine. It is created by Start and stays usable
// for inspection after Stop.
type Scheduler struct {
	mu      sync.Mutex
	running bool

	cron    *cron.Cron
	parser  cron.Parser
	loc     *time.Location
	log     zerolog.Logger
	metrics *metrics.Metrics

	records []job.Record
	entries map[string]cron.EntryID

	// runCtx is handed to every task invocation; Stop cancels it.
	runCtx context.Context
	cancel context.CancelFunc
}

type Option func(*Scheduler)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// WithLocation sets the engine's default time zone for cron triggers
// without an explicit timezone.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// Start registers every record from src and starts the engine. Either all
// records are registered and the engine runs, or Start returns a
// *RegistrationError and nothing was started.
func Start(ctx context.Context, src Source, opts ...Option) (*Scheduler, error) {
	if src == nil {
		return nil, errors.New("scheduler: nil job source")
	}

	s := &Scheduler{
		parser:  cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		loc:     time.Local,
		log:     zerolog.Nop(),
		entries: make(map[string]cron.EntryID),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "scheduler").Logger()

	s.cron = cron.New(
		cron.WithParser(s.parser),
		cron.WithLocation(s.loc),
		cron.WithLogger(cronLogger{log: s.log}),
	)
	s.runCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))

	now := time.Now().In(s.loc)
	for _, rec := range src.Jobs() {
		if err := s.register(rec, now); err != nil {
			s.cancel()
			return nil, err
		}
	}

	s.mu.Lock()
	s.cron.Start()
	s.running = true
	s.mu.Unlock()

	s.metrics.SetRegistered(len(s.records))
	s.log.Info().Int("jobs", len(s.records)).Str("tz", s.loc.String()).Msg("scheduler started")
	return s, nil
}

func (s *Scheduler) register(rec job.Record, now time.Time) error {
	if _, dup := s.entries[rec.ID]; dup {
		return &RegistrationError{JobID: rec.ID, Err: ErrDuplicateJob}
	}
	if rec.Func == nil {
		return &RegistrationError{JobID: rec.ID, Err: ErrNilFunc}
	}

	sched, err := s.nativeSchedule(rec.Trigger, now)
	if err != nil {
		return &RegistrationError{JobID: rec.ID, Err: err}
	}

	id := s.cron.Schedule(sched, newRunner(s, rec))
	s.entries[rec.ID] = id
	s.records = append(s.records, rec)

	if next := sched.Next(now); next.IsZero() {
		s.log.Warn().Str("job_id", rec.ID).Str("trigger", rec.Trigger.String()).
			Msg("job registered but will never fire")
	} else {
		s.log.Debug().Str("job_id", rec.ID).Str("trigger", rec.Trigger.String()).
			Time("next", next).Msg("job registered")
	}
	return nil
}

// nativeSchedule translates a trigger into the engine's schedule type.
func (s *Scheduler) nativeSchedule(t trigger.Trigger, now time.Time) (cron.Schedule, error) {
	switch t := t.(type) {
	case trigger.Interval:
		return newIntervalSchedule(t, now)
	case trigger.Date:
		return onceSchedule{at: t.RunAt}, nil
	case trigger.Cron:
		sched, err := s.parser.Parse(t.Expression())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
		}
		return sched, nil
	case nil:
		return nil, ErrNilTrigger
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedTrigger, t)
	}
}

// Stop halts the engine and waits for in-flight runs until ctx expires, at
// which point their context is cancelled and ctx.Err() is returned.
// Calling Stop again is a no-op.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	defer s.cancel()

	select {
	case <-s.cron.Stop().Done():
		s.log.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.log.Warn().Err(ctx.Err()).Msg("scheduler stop timed out, abandoning running jobs")
		return ctx.Err()
	}
}

// Running reports whether the engine is started and not yet stopped.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
