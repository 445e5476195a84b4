// Package app wires the process together: database, job registry,
// scheduler and HTTP server, and tears them down in reverse order.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edkuperman/cronzimus/internal/api"
	"github.com/edkuperman/cronzimus/internal/config"
	"github.com/edkuperman/cronzimus/internal/db"
	"github.com/edkuperman/cronzimus/internal/metrics"
	"github.com/edkuperman/cronzimus/internal/schedule"
	"github.com/edkuperman/cronzimus/internal/scheduler"
)

// App is one configured process instance.
type App struct {
	cfg     config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics

	// connect is swapped in tests to avoid a real database.
	connect func(context.Context, db.Config, zerolog.Logger) (*db.Database, error)
	// ready, when set, receives the bound HTTP address once listening.
	ready func(addr string)
}

type Option func(*App)

// WithConnector replaces the database connector.
func WithConnector(fn func(context.Context, db.Config, zerolog.Logger) (*db.Database, error)) Option {
	return func(a *App) { a.connect = fn }
}

// WithReady registers a callback invoked with the listen address.
func WithReady(fn func(addr string)) Option {
	return func(a *App) { a.ready = fn }
}

func New(cfg config.Config, log zerolog.Logger, opts ...Option) *App {
	a := &App{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
		connect: db.Connect,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run blocks until SIGINT/SIGTERM, ctx cancellation or a component failure.
// A nil return means a clean shutdown.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = a.log.WithContext(ctx)

	database, err := a.connect(ctx, a.cfg.Database, a.log)
	if err != nil {
		return fmt.Errorf("app: database: %w", err)
	}
	defer database.Close()

	registry, err := schedule.New(schedule.Deps{DB: database})
	if err != nil {
		return fmt.Errorf("app: job registry: %w", err)
	}
	a.log.Debug().Int("jobs", registry.Len()).Msg("job registry built")

	sched, err := scheduler.Start(ctx, registry,
		scheduler.WithLogger(a.log),
		scheduler.WithLocation(a.cfg.Location()),
		scheduler.WithMetrics(a.metrics),
	)
	if err != nil {
		return fmt.Errorf("app: scheduler: %w", err)
	}

	router := api.NewRouter(api.NewHandlers(sched), a.log,
		api.WithMetricsHandler(a.metrics.Handler()),
		api.WithReadiness(db.Healthcheck(database)),
		api.WithSchedulerAPI(a.cfg.Scheduler.APIEnabled),
	)
	srv := &http.Server{
		Handler:      router,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", a.cfg.HTTP.Addr)
	if err != nil {
		stopErr := a.stopScheduler(sched)
		return errors.Join(fmt.Errorf("app: listen %s: %w", a.cfg.HTTP.Addr, err), stopErr)
	}
	a.log.Info().Str("addr", ln.Addr().String()).Str("env", a.cfg.Environment).Msg("http server listening")
	if a.ready != nil {
		a.ready(ln.Addr().String())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		httpErr := srv.Shutdown(shutdownCtx)
		if httpErr != nil {
			httpErr = fmt.Errorf("app: http shutdown: %w", httpErr)
		}
		return errors.Join(httpErr, a.stopScheduler(sched))
	})

	if err := g.Wait(); err != nil {
		a.log.Error().Err(err).Msg("stopped with error")
		return err
	}
	a.log.Info().Msg("stopped")
	return nil
}

func (a *App) stopScheduler(sched *scheduler.Scheduler) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Scheduler.StopTimeout)
	defer cancel()
	if err := sched.Stop(ctx); err != nil {
		return fmt.Errorf("app: scheduler stop: %w", err)
	}
	return nil
}
