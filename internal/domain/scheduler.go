// Package domain contains domain entities for the fatal-log-mailer scheduler.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// HarvestActionName identifies the recurring trigger that runs the daily log harvest.
// The value matches the action hook the platform plugin registered, so triggers
// created by either side stay recognisable.
const HarvestActionName = "rs_elew_wc_daily_error_log_emailer_send_log"

// DailyInterval is the fixed recurrence of the harvest trigger.
const DailyInterval = 24 * time.Hour

// ScheduledTask is a recurring trigger registered under an action name.
// At most one task exists per action name.
type ScheduledTask struct {
	ID         string `json:"id"`
	ActionName string `json:"action_name"`
	// Interval is the recurrence cadence.
	// Note: encoding/json marshals time.Duration as a number of nanoseconds.
	Interval  time.Duration `json:"interval"`
	NextRunAt time.Time     `json:"next_run_at"`
	LastRunAt *time.Time    `json:"last_run_at,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	// ActiveFireKey is the fire key of the most recent slot that was dispatched.
	ActiveFireKey *string `json:"active_fire_key,omitempty"`
}

// IsDue reports whether the task should fire at now.
func (t ScheduledTask) IsDue(now time.Time) bool {
	return !t.NextRunAt.After(now)
}

// ScheduleRecurringParams registers a new recurring trigger.
type ScheduleRecurringParams struct {
	ActionName string
	FirstRunAt time.Time
	Interval   time.Duration
}

// Validate checks the params for obviously unusable values.
func (p ScheduleRecurringParams) Validate() error {
	if p.ActionName == "" {
		return fmt.Errorf("action name is required")
	}
	if p.Interval < time.Second {
		return fmt.Errorf("interval must be at least one second, got %v", p.Interval)
	}
	if p.FirstRunAt.IsZero() {
		return fmt.Errorf("first run time is required")
	}
	return nil
}

// ErrTaskStale is returned by an advance whose task no longer sits at the expected slot:
// another runner already advanced it, or it was removed.
var ErrTaskStale = errors.New("scheduled task was advanced or removed by another runner")

// AdvanceParams moves a task to its next slot after a firing.
// The advance applies only while the stored next_run_at still equals ExpectedNextRunAt.
type AdvanceParams struct {
	ID                string
	ExpectedNextRunAt time.Time
	LastRunAt         time.Time
	NextRunAt         time.Time
	FireKey           string
}

// Fire describes one firing of a recurring trigger, handed to the action handler.
type Fire struct {
	TaskID      string
	ActionName  string
	FireKey     string
	ScheduledAt time.Time
	FiredAt     time.Time
}

// NextDailyOccurrence returns the next wall-clock hour:minute in loc strictly after now.
// If now is before today's hour:minute it returns today's, otherwise tomorrow's.
func NextDailyOccurrence(now time.Time, hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if local.Before(candidate) {
		return candidate
	}
	return time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
}

// PreviousDay returns the calendar day before now's date in loc, at midnight.
func PreviousDay(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()-1, 0, 0, 0, 0, loc)
}

// DateStamp formats t as YYYY-MM-DD.
func DateStamp(t time.Time) string {
	return t.Format(time.DateOnly)
}
