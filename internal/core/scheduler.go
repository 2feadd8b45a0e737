// Package core defines the ports the fatal-log-mailer services depend on.
package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/target/fatal-log-mailer/internal/domain"
)

// Scheduler is the recurring-trigger capability the schedule controller drives.
type Scheduler interface {
	// IsScheduled reports whether a trigger exists for actionName.
	IsScheduled(ctx context.Context, actionName string) (bool, error)

	// ScheduleRecurring registers a new trigger. Registering an action name that
	// already has a trigger returns a conflict error (see internal/errors.IsConflict).
	ScheduleRecurring(ctx context.Context, params domain.ScheduleRecurringParams) (*domain.ScheduledTask, error)

	// UnscheduleAll removes every trigger registered for actionName and returns how many were removed.
	// Removing nothing is not an error.
	UnscheduleAll(ctx context.Context, actionName string) (int, error)
}

// AvailabilityProber is implemented by schedulers that can report whether the
// scheduling capability is usable right now (e.g. the backing table exists).
type AvailabilityProber interface {
	Available(ctx context.Context) error
}

// ScheduledJobsRepository defines the tick-loop operations on stored triggers.
type ScheduledJobsRepository interface {
	// FindDue returns triggers whose next_run_at is at or before now.
	FindDue(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledTask, error)

	// AdvanceTx records a firing and moves the trigger to its next slot within tx.
	AdvanceTx(ctx context.Context, tx *sql.Tx, p domain.AdvanceParams) error

	// TryWithTaskLock attempts to acquire an advisory lock for the given action name.
	// If the lock is acquired, executes fn within the same transaction.
	// Return semantics:
	//   - (false, nil): lock not acquired; fn was not executed
	//   - (true, nil): lock acquired; fn executed and succeeded
	//   - (true, err): lock acquired; fn executed and failed with err
	TryWithTaskLock(
		ctx context.Context,
		actionName string,
		fn func(context.Context, *sql.Tx) error,
	) (bool, error)
}

// ActionHandler runs the work behind a fired trigger.
type ActionHandler interface {
	Handle(ctx context.Context, fire domain.Fire) error
}

// JobScheduler defines the interface for the scheduler service.
type JobScheduler interface {
	// Tick fires due triggers. Returns the number of triggers fired.
	Tick(ctx context.Context, now time.Time) (int, error)
}

// SchedulerConfig holds configuration for the scheduler service.
type SchedulerConfig struct {
	BatchSize int `json:"batch_size"`
}

// DefaultSchedulerConfig returns a SchedulerConfig with sensible defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{BatchSize: 10}
}
