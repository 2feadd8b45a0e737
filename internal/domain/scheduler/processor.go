package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/target/fatal-log-mailer/internal/domain"
)

// TaskStore executes scheduler persistence operations within the ambient transaction.
type TaskStore interface {
	Advance(ctx context.Context, params domain.AdvanceParams) error
}

// FireHandler runs the action behind a trigger.
type FireHandler interface {
	Handle(ctx context.Context, fire domain.Fire) error
}

// FireHandlerFunc adapts a function to FireHandler.
type FireHandlerFunc func(ctx context.Context, fire domain.Fire) error

// Handle implements FireHandler.
func (f FireHandlerFunc) Handle(ctx context.Context, fire domain.Fire) error {
	if f == nil {
		return nil
	}
	return f(ctx, fire)
}

// TaskProcessor owns the fire/advance flow for recurring triggers.
type TaskProcessor struct{}

// NewTaskProcessor constructs a TaskProcessor.
func NewTaskProcessor() *TaskProcessor {
	return &TaskProcessor{}
}

// ProcessParams supplies the per-invocation collaborators for Process.
type ProcessParams struct {
	Task    domain.ScheduledTask
	Now     time.Time
	Store   TaskStore
	Handler FireHandler
}

// ProcessResult captures the outcome of processing a trigger.
type ProcessResult struct {
	// Fired is true when the handler was invoked.
	Fired bool
	// Advanced is true when the trigger was moved to its next slot.
	Advanced bool
	// Stale is true when another runner moved or removed the trigger first; nothing ran.
	Stale      bool
	FireKey    string
	NextRunAt  time.Time
	HandlerErr error
}

// Process evaluates a trigger. A due trigger is advanced to its next slot and, unless
// its current slot was already dispatched, its handler is invoked. The advance is a
// compare-and-swap on the slot Task was read at, so a stale snapshot never fires.
// Handler failures are reported in the result and do not prevent the advance.
func (p *TaskProcessor) Process(ctx context.Context, params ProcessParams) (*ProcessResult, error) {
	if params.Store == nil {
		return nil, errors.New("task store is required")
	}

	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}

	task := params.Task
	result := &ProcessResult{}

	if !task.IsDue(now) {
		return result, nil
	}

	fireKey := ComputeFireKey(task, task.NextRunAt)
	next := NextSlotAfter(task.NextRunAt, task.Interval, now)
	result.FireKey = fireKey
	result.NextRunAt = next

	if err := params.Store.Advance(ctx, domain.AdvanceParams{
		ID:                task.ID,
		ExpectedNextRunAt: task.NextRunAt,
		LastRunAt:         now,
		NextRunAt:         next,
		FireKey:           fireKey,
	}); err != nil {
		if errors.Is(err, domain.ErrTaskStale) {
			result.Stale = true
			return result, nil
		}
		return nil, fmt.Errorf("advance task: %w", err)
	}
	result.Advanced = true

	if alreadyFired(task, fireKey) {
		return result, nil
	}
	if params.Handler == nil {
		return result, nil
	}

	result.Fired = true
	result.HandlerErr = params.Handler.Handle(ctx, domain.Fire{
		TaskID:      task.ID,
		ActionName:  task.ActionName,
		FireKey:     fireKey,
		ScheduledAt: task.NextRunAt,
		FiredAt:     now,
	})
	return result, nil
}

func alreadyFired(task domain.ScheduledTask, fireKey string) bool {
	return task.ActiveFireKey != nil && *task.ActiveFireKey != "" && *task.ActiveFireKey == fireKey
}

// NextSlotAfter returns the first slot scheduled+k*interval strictly after now.
// Missed slots are skipped rather than replayed.
func NextSlotAfter(scheduled time.Time, interval time.Duration, now time.Time) time.Time {
	if interval <= 0 {
		interval = domain.DailyInterval
	}
	if scheduled.After(now) {
		return scheduled
	}
	elapsed := now.Sub(scheduled)
	steps := int64(elapsed/interval) + 1
	return scheduled.Add(time.Duration(steps) * interval)
}

// ComputeFireKey derives an idempotent fire key for the provided task at the given slot time.
func ComputeFireKey(task domain.ScheduledTask, slot time.Time) string {
	intervalSec := int64(task.Interval / time.Second)
	if intervalSec <= 0 {
		return fmt.Sprintf("%s:%d", task.ID, slot.Unix())
	}
	return fmt.Sprintf("%s:%d", task.ID, slot.Unix()/intervalSec)
}
