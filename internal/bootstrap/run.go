package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/target/fatal-log-mailer/config"
	schedrunner "github.com/target/fatal-log-mailer/internal/adapters/scheduler"
	"github.com/target/fatal-log-mailer/internal/core"
	"github.com/target/fatal-log-mailer/internal/domain"
)

// SchedulerConfig contains configuration for the scheduler runner.
type SchedulerConfig struct {
	DB        *sql.DB
	Services  *ServiceContainer
	Scheduler config.SchedulerConfig
	Logger    *slog.Logger
}

// RunScheduler ticks the trigger store until ctx is cancelled, firing the harvest job
// whenever its trigger comes due.
func RunScheduler(ctx context.Context, cfg SchedulerConfig) error {
	if cfg.Services == nil || cfg.Services.Harvest == nil {
		return errors.New("scheduler requires a harvest job")
	}

	runnerOpts := schedrunner.RunnerOptions{
		DB: cfg.DB,
		Handlers: map[string]core.ActionHandler{
			domain.HarvestActionName: cfg.Services.Harvest,
		},
		Config:   &core.SchedulerConfig{BatchSize: cfg.Scheduler.BatchSize},
		Interval: cfg.Scheduler.Interval,
		Logger:   cfg.Logger,
	}
	if sink := cfg.Services.Observability.MetricsSink; sink != nil {
		runnerOpts.Metrics = sink
	}

	runner, err := schedrunner.NewRunner(runnerOpts)
	if err != nil {
		return fmt.Errorf("create scheduler runner: %w", err)
	}
	return runner.Run(ctx)
}

// ServiceOrchestrationConfig contains configuration for running the daemon.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
}

// RunServicesWithShutdown ensures the harvest trigger exists and then runs the scheduler,
// plus the ops HTTP server when enabled, until SIGINT or SIGTERM arrives or the runner fails.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil || cfg.Services == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := cfg.Services.Schedule.EnsureScheduled(ctx); err != nil {
		return fmt.Errorf("ensure harvest trigger: %w", err)
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var server *http.Server
	if cfg.Config.HTTP.Enabled {
		server = StartHTTPServer(&HTTPServerConfig{
			HTTP:     cfg.Config.HTTP,
			DB:       cfg.DB,
			Services: cfg.Services,
			Logger:   logger.With("component", "http"),
		})
	}

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		return RunScheduler(gctx, SchedulerConfig{
			DB:        cfg.DB,
			Services:  cfg.Services,
			Scheduler: cfg.Config.Scheduler,
			Logger:    logger.With("component", "scheduler_runner"),
		})
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down services...")
		// The parent context is already done; shutdown gets its own deadline.
		return ShutdownHTTPServer(context.WithoutCancel(gctx), server, logger)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
		return err
	}
	logger.Info("scheduler stopped")
	return nil
}
