// Package mocks provides gomock implementations of the fatal-log-mailer core ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockSettingsStore(ctrl)
//	store.EXPECT().Get(gomock.Any(), model.SettingsKeyAdminEmail).Return(json.RawMessage(`"a@example.com"`), nil)
package mocks

// Scheduler, AvailabilityProber: the recurring-trigger capability driven by the schedule controller.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=scheduler_mock.go github.com/target/fatal-log-mailer/internal/core Scheduler,AvailabilityProber

// ScheduledJobsRepository, ActionHandler: FindDue, AdvanceTx, TryWithTaskLock and the fired action.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=scheduled_jobs_repository_mock.go github.com/target/fatal-log-mailer/internal/core ScheduledJobsRepository,ActionHandler

// SettingsStore, Mailer: Get, Set, Delete and Send.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=settings_store_mock.go github.com/target/fatal-log-mailer/internal/core SettingsStore,Mailer

// CacheRepository: Set, Get, Delete, Health.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/target/fatal-log-mailer/internal/core CacheRepository
