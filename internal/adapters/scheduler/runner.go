// Package scheduler provides adapters for running the trigger scheduler loop.
package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/target/fatal-log-mailer/internal/core"
	"github.com/target/fatal-log-mailer/internal/data"
	"github.com/target/fatal-log-mailer/internal/observability/metrics"
	"github.com/target/fatal-log-mailer/internal/observability/statsd"
	"github.com/target/fatal-log-mailer/internal/service"
)

// Runner calls JobScheduler.Tick at a fixed interval until its context is cancelled.
type Runner struct {
	scheduler core.JobScheduler
	interval  time.Duration
	logger    *slog.Logger
	metrics   statsd.Sink
	now       func() time.Time
}

// RunnerOptions holds the dependencies for creating a Runner.
// Either Scheduler or DB must be set; with only DB the runner wires the Postgres-backed
// scheduler service and registers Handlers on it.
type RunnerOptions struct {
	Scheduler core.JobScheduler
	DB        *sql.DB
	Handlers  map[string]core.ActionHandler
	Config    *core.SchedulerConfig
	Interval  time.Duration
	Logger    *slog.Logger
	Metrics   statsd.Sink
}

// NewRunner creates a new scheduler runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if err := validateRunnerOptions(&opts); err != nil {
		return nil, err
	}

	sched := opts.Scheduler
	if sched == nil {
		sched = wireSchedulerService(opts)
	}

	return &Runner{
		scheduler: sched,
		interval:  opts.Interval,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		now:       time.Now,
	}, nil
}

func validateRunnerOptions(opts *RunnerOptions) error {
	if opts.Scheduler == nil && opts.DB == nil {
		return errors.New("scheduler or database connection is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "scheduler_runner")
	}
	if opts.Metrics == nil {
		opts.Metrics = statsd.Discard
	}
	return nil
}

func wireSchedulerService(opts RunnerOptions) *service.SchedulerService {
	svc := service.NewSchedulerService(service.SchedulerServiceOptions{
		Repo:   data.NewScheduledJobsRepo(opts.DB),
		Config: opts.Config,
		Logger: opts.Logger,
	})
	for action, h := range opts.Handlers {
		svc.Register(action, h)
	}
	return svc
}

// Run ticks once immediately, then at every interval. Tick errors are logged and the
// loop keeps going. A cancelled context ends the loop with a nil error.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting scheduler runner", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx, r.now())
	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "scheduler runner stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case now := <-ticker.C:
			r.tick(ctx, now)
		}
	}
}

func (r *Runner) tick(ctx context.Context, now time.Time) {
	start := time.Now()
	fired, err := r.scheduler.Tick(ctx, now)
	elapsed := time.Since(start)

	metrics.EmitSchedulerTick(r.metrics, metrics.SchedulerTick{Fired: fired, Duration: elapsed, Err: err})
	if err == nil {
		r.metrics.Gauge("scheduler.last_success_epoch", float64(time.Now().Unix()), nil)
	}

	switch {
	case err != nil && ctx.Err() != nil:
		// Shutting down; the interrupted tick is not an error worth reporting.
	case err != nil:
		r.logger.ErrorContext(ctx, "scheduler tick error", "error", err, "fired", fired)
	case fired > 0:
		r.logger.InfoContext(ctx, "scheduler fired actions", "fired", fired, "duration", elapsed)
	}
}
