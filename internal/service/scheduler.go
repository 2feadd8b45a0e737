package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/fatal-log-mailer/internal/core"
	"github.com/target/fatal-log-mailer/internal/domain"
	domainscheduler "github.com/target/fatal-log-mailer/internal/domain/scheduler"
)

// SchedulerServiceOptions holds the dependencies for creating a SchedulerService.
type SchedulerServiceOptions struct {
	Repo   core.ScheduledJobsRepository // Required
	Config *core.SchedulerConfig
	Logger *slog.Logger
}

// SchedulerService implements core.JobScheduler. It fires due recurring triggers through
// the handler registered for their action name. Safe under concurrent replicas: each
// trigger is processed under a per-action advisory lock and advanced with a
// compare-and-swap on its slot, so a slot fires at most once.
type SchedulerService struct {
	repo     core.ScheduledJobsRepository
	cfg      core.SchedulerConfig
	logger   *slog.Logger
	handlers map[string]core.ActionHandler

	taskProcessor *domainscheduler.TaskProcessor
}

var _ core.JobScheduler = (*SchedulerService)(nil)

// NewSchedulerService creates a new SchedulerService with the given dependencies.
func NewSchedulerService(opts SchedulerServiceOptions) *SchedulerService {
	if opts.Repo == nil {
		panic("SchedulerService requires a scheduled jobs repository")
	}
	if opts.Config == nil {
		defaultCfg := core.DefaultSchedulerConfig()
		opts.Config = &defaultCfg
	}
	if opts.Config.BatchSize <= 0 {
		opts.Config.BatchSize = core.DefaultSchedulerConfig().BatchSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "scheduler")
	}

	return &SchedulerService{
		repo:          opts.Repo,
		cfg:           *opts.Config,
		logger:        opts.Logger,
		handlers:      map[string]core.ActionHandler{},
		taskProcessor: domainscheduler.NewTaskProcessor(),
	}
}

// Register binds handler to actionName. Registering twice replaces the previous handler.
// Register must not be called concurrently with Tick.
func (s *SchedulerService) Register(actionName string, handler core.ActionHandler) {
	s.handlers[actionName] = handler
}

// Tick fires every due trigger and returns how many handlers ran.
//
// Per trigger: take the advisory lock for its action (skip if another replica holds it),
// advance next_run_at past now guarded by the slot FindDue returned (skip if that slot
// has already moved on), then run the handler unless this slot was already fired.
// Handler errors are collected and returned after the batch; the trigger stays advanced.
func (s *SchedulerService) Tick(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.FindDue(ctx, now, s.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("find due tasks: %w", err)
	}

	fired := 0
	var handlerErrs []error
	for _, task := range due {
		var result *domainscheduler.ProcessResult
		lockOK, lockErr := s.repo.TryWithTaskLock(ctx, task.ActionName, func(ctx context.Context, tx *sql.Tx) error {
			r, processErr := s.processTask(ctx, tx, task, now)
			result = r
			return processErr
		})
		if lockErr != nil {
			return fired, errors.Join(append(handlerErrs, fmt.Errorf("process task %s: %w", task.ActionName, lockErr))...)
		}
		if !lockOK || result == nil {
			// Another replica is handling this action.
			continue
		}
		if result.Stale {
			s.logger.DebugContext(ctx, "trigger already advanced by another runner; skipping",
				"action", task.ActionName,
				"task_id", task.ID,
			)
			continue
		}
		if result.Fired {
			fired++
		}
		if result.HandlerErr != nil {
			s.logger.ErrorContext(ctx, "scheduled action failed",
				"action", task.ActionName,
				"task_id", task.ID,
				"fire_key", result.FireKey,
				"next_run_at", result.NextRunAt,
				"error", result.HandlerErr,
			)
			handlerErrs = append(handlerErrs, fmt.Errorf("action %s: %w", task.ActionName, result.HandlerErr))
		}
	}

	return fired, errors.Join(handlerErrs...)
}

// processTask handles a single trigger inside the lock transaction.
func (s *SchedulerService) processTask(
	ctx context.Context,
	tx *sql.Tx,
	task domain.ScheduledTask,
	now time.Time,
) (*domainscheduler.ProcessResult, error) {
	var handler domainscheduler.FireHandler
	if h, ok := s.handlers[task.ActionName]; ok && h != nil {
		handler = h
	} else {
		s.logger.WarnContext(ctx, "no handler registered for scheduled action; advancing",
			"action", task.ActionName,
			"task_id", task.ID,
		)
	}

	return s.taskProcessor.Process(ctx, domainscheduler.ProcessParams{
		Task:    task,
		Now:     now,
		Store:   taskStoreAdapter{repo: s.repo, tx: tx},
		Handler: handler,
	})
}

type taskStoreAdapter struct {
	repo core.ScheduledJobsRepository
	tx   *sql.Tx
}

func (a taskStoreAdapter) Advance(ctx context.Context, params domain.AdvanceParams) error {
	return a.repo.AdvanceTx(ctx, a.tx, params)
}
