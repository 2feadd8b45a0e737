// Package fakes contains simple hand-written test doubles for the core ports.
// These are in-memory and suitable for unit tests without codegen.
package fakes

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/target/fatal-log-mailer/internal/core"
	"github.com/target/fatal-log-mailer/internal/domain"
	"github.com/target/fatal-log-mailer/internal/domain/model"
	apperrors "github.com/target/fatal-log-mailer/internal/errors"
)

// Ensure compile-time conformance to core ports.
var (
	_ core.SettingsStore      = (*MemorySettingsStore)(nil)
	_ core.Mailer             = (*RecordingMailer)(nil)
	_ core.Scheduler          = (*MemoryScheduler)(nil)
	_ core.AvailabilityProber = (*MemoryScheduler)(nil)
)

// MemorySettingsStore is a map-backed SettingsStore.
type MemorySettingsStore struct {
	mu     sync.Mutex
	values map[string]json.RawMessage

	// GetErr, when set, is returned by every Get.
	GetErr error
}

// NewMemorySettingsStore creates an empty store.
func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{values: map[string]json.RawMessage{}}
}

// Get returns a copy of the stored value or nil.
func (s *MemorySettingsStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	v, ok := s.values[key]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage(nil), v...), nil
}

// Set stores value under key.
func (s *MemorySettingsStore) Set(_ context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return apperrors.ValidationField("value", "setting value must be valid JSON")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append(json.RawMessage(nil), value...)
	return nil
}

// Delete removes key.
func (s *MemorySettingsStore) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	delete(s.values, key)
	return ok, nil
}

// Has reports whether key is stored.
func (s *MemorySettingsStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

// RecordingMailer records every message. FailFor makes sends to the given
// recipients fail with ErrSendFailed.
type RecordingMailer struct {
	mu      sync.Mutex
	Sent    []model.EmailMessage
	FailFor map[string]bool
}

// ErrSendFailed is returned by RecordingMailer for recipients in FailFor.
var ErrSendFailed = errors.New("fake send failure")

// Send records msg.
func (m *RecordingMailer) Send(_ context.Context, msg model.EmailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFor[msg.To] {
		return ErrSendFailed
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (m *RecordingMailer) Messages() []model.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.EmailMessage(nil), m.Sent...)
}

// MemoryScheduler keeps triggers in memory and enforces one trigger per action name.
type MemoryScheduler struct {
	mu    sync.Mutex
	tasks map[string]domain.ScheduledTask

	// Unavailable, when set, is returned by Available.
	Unavailable error
}

// NewMemoryScheduler creates an empty scheduler.
func NewMemoryScheduler() *MemoryScheduler {
	return &MemoryScheduler{tasks: map[string]domain.ScheduledTask{}}
}

// Available reports the configured availability.
func (s *MemoryScheduler) Available(context.Context) error {
	return s.Unavailable
}

// IsScheduled reports whether actionName has a trigger.
func (s *MemoryScheduler) IsScheduled(_ context.Context, actionName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[actionName]
	return ok, nil
}

// ScheduleRecurring stores a trigger; a duplicate is a Conflict.
func (s *MemoryScheduler) ScheduleRecurring(
	_ context.Context,
	params domain.ScheduleRecurringParams,
) (*domain.ScheduledTask, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[params.ActionName]; ok {
		return nil, apperrors.Conflictf("action %s already scheduled", params.ActionName)
	}
	task := domain.ScheduledTask{
		ID:         params.ActionName,
		ActionName: params.ActionName,
		Interval:   params.Interval,
		NextRunAt:  params.FirstRunAt,
	}
	s.tasks[params.ActionName] = task
	return &task, nil
}

// UnscheduleAll removes the trigger for actionName.
func (s *MemoryScheduler) UnscheduleAll(_ context.Context, actionName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[actionName]; !ok {
		return 0, nil
	}
	delete(s.tasks, actionName)
	return 1, nil
}

// Task returns the stored trigger for actionName.
func (s *MemoryScheduler) Task(actionName string) (domain.ScheduledTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[actionName]
	return t, ok
}
