package testutil

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/target/fatal-log-mailer/internal/domain"
)

// TaskBuilder provides a fluent interface for building ScheduledTask values for testing.
type TaskBuilder struct {
	task domain.ScheduledTask
}

// NewTask creates a TaskBuilder for the harvest action, due at TestTime.
func NewTask() *TaskBuilder {
	now := TestTime()
	return &TaskBuilder{task: domain.ScheduledTask{
		ID:         uuid.NewString(),
		ActionName: domain.HarvestActionName,
		Interval:   domain.DailyInterval,
		NextRunAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}}
}

// WithID sets the task ID.
func (b *TaskBuilder) WithID(id string) *TaskBuilder {
	b.task.ID = id
	return b
}

// WithAction sets the action name.
func (b *TaskBuilder) WithAction(name string) *TaskBuilder {
	b.task.ActionName = name
	return b
}

// WithNextRunAt sets the next slot.
func (b *TaskBuilder) WithNextRunAt(t time.Time) *TaskBuilder {
	b.task.NextRunAt = t
	return b
}

// WithActiveFireKey marks a slot as already dispatched.
func (b *TaskBuilder) WithActiveFireKey(key string) *TaskBuilder {
	b.task.ActiveFireKey = &key
	return b
}

// Build returns the task.
func (b *TaskBuilder) Build() domain.ScheduledTask {
	return b.task
}

// TestTime returns a fixed time for testing.
func TestTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

// WriteFile writes content to dir/name and returns the full path; the test fails on error.
func WriteFile(t TestingTB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
