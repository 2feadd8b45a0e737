package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/fatal-log-mailer/internal/core"
	"github.com/target/fatal-log-mailer/internal/domain"
	"github.com/target/fatal-log-mailer/internal/domain/model"
	apperrors "github.com/target/fatal-log-mailer/internal/errors"
)

// ErrSchedulerUnavailable is returned when no scheduler is wired or it fails its probe.
var ErrSchedulerUnavailable = errors.New("scheduler unavailable")

// ScheduleConfig sets the daily run time of the harvest trigger.
type ScheduleConfig struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// DefaultScheduleConfig fires at 05:00 local time.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{Hour: 5, Minute: 0, Location: time.Local}
}

// ScheduleControllerOptions groups dependencies for ScheduleController.
type ScheduleControllerOptions struct {
	Scheduler core.Scheduler     // Optional: nil reads as unavailable
	Settings  core.SettingsStore // Required
	Schedule  ScheduleConfig
	Logger    *slog.Logger
	Now       func() time.Time
}

// ScheduleController installs and removes the daily harvest trigger.
type ScheduleController struct {
	scheduler core.Scheduler
	settings  core.SettingsStore
	schedule  ScheduleConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewScheduleController constructs a ScheduleController.
func NewScheduleController(opts ScheduleControllerOptions) *ScheduleController {
	if opts.Settings == nil {
		panic("ScheduleController requires a settings store")
	}
	if opts.Schedule.Location == nil {
		opts.Schedule.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "schedule_controller")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ScheduleController{
		scheduler: opts.Scheduler,
		settings:  opts.Settings,
		schedule:  opts.Schedule,
		logger:    opts.Logger,
		now:       opts.Now,
	}
}

// EnsureScheduled registers the harvest trigger unless one already exists. Losing an
// insert race to another replica counts as success.
func (c *ScheduleController) EnsureScheduled(ctx context.Context) error {
	if err := c.available(ctx); err != nil {
		return err
	}

	scheduled, err := c.scheduler.IsScheduled(ctx, domain.HarvestActionName)
	if err != nil {
		return fmt.Errorf("check harvest schedule: %w", err)
	}
	if scheduled {
		c.logger.DebugContext(ctx, "harvest trigger already scheduled", "action", domain.HarvestActionName)
		return nil
	}

	first := c.FirstRunAt()
	task, err := c.scheduler.ScheduleRecurring(ctx, domain.ScheduleRecurringParams{
		ActionName: domain.HarvestActionName,
		FirstRunAt: first,
		Interval:   domain.DailyInterval,
	})
	if apperrors.IsConflict(err) {
		c.logger.InfoContext(ctx, "harvest trigger scheduled concurrently", "action", domain.HarvestActionName)
		return nil
	}
	if err != nil {
		return fmt.Errorf("schedule harvest: %w", err)
	}

	c.logger.InfoContext(ctx, "scheduled harvest trigger",
		"action", domain.HarvestActionName,
		"task_id", task.ID,
		"first_run_at", first,
		"interval", domain.DailyInterval,
	)
	return nil
}

// Teardown removes every harvest trigger when the scheduler is reachable and always
// clears the stored recipient configuration.
func (c *ScheduleController) Teardown(ctx context.Context) error {
	var errs []error
	if err := c.available(ctx); err != nil {
		c.logger.DebugContext(ctx, "scheduler unavailable; skipping unschedule", "error", err)
	} else {
		n, unErr := c.scheduler.UnscheduleAll(ctx, domain.HarvestActionName)
		if unErr != nil {
			errs = append(errs, fmt.Errorf("unschedule harvest: %w", unErr))
		} else {
			c.logger.InfoContext(ctx, "unscheduled harvest triggers", "action", domain.HarvestActionName, "removed", n)
		}
	}

	if _, err := c.settings.Delete(ctx, model.SettingsKeyLogEmail); err != nil {
		errs = append(errs, fmt.Errorf("clear recipient settings: %w", err))
	}
	return errors.Join(errs...)
}

// FirstRunAt is the next configured run time after now.
func (c *ScheduleController) FirstRunAt() time.Time {
	return domain.NextDailyOccurrence(c.now(), c.schedule.Hour, c.schedule.Minute, c.schedule.Location)
}

func (c *ScheduleController) available(ctx context.Context) error {
	if c.scheduler == nil {
		return ErrSchedulerUnavailable
	}
	prober, ok := c.scheduler.(core.AvailabilityProber)
	if !ok {
		return nil
	}
	if err := prober.Available(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSchedulerUnavailable, err)
	}
	return nil
}
