package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/fatal-log-mailer/internal/data"
	"github.com/target/fatal-log-mailer/internal/domain"
	"github.com/target/fatal-log-mailer/internal/mocks/fakes"
	"github.com/target/fatal-log-mailer/internal/testutil"
)

// TestHarvestLifecycle_Integration drives schedule, tick and teardown against Postgres.
func TestHarvestLifecycle_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	now := time.Date(2024, 3, 15, 4, 0, 0, 0, time.UTC)
	clock := data.NewFixedTimeProvider(now)
	repo := data.NewScheduledJobsRepoWithTimeProvider(db, clock)
	settings := data.NewSettingsRepo(db)
	require.NoError(t, SaveRecipientConfig(ctx, settings, "ops@example.com, dev@example.com"))

	controller := NewScheduleController(ScheduleControllerOptions{
		Scheduler: repo,
		Settings:  settings,
		Schedule:  ScheduleConfig{Hour: 5, Location: time.UTC},
		Now:       clock.Now,
	})
	require.NoError(t, controller.EnsureScheduled(ctx))
	require.NoError(t, controller.EnsureScheduled(ctx))

	dir := t.TempDir()
	testutil.WriteFile(t, dir, "fatal-errors-2024-03-14-a.log", "PHP Fatal error: boom")

	mailer := &fakes.RecordingMailer{}
	job := NewHarvestJob(HarvestJobOptions{
		Resolver:   NewRecipientResolver(RecipientResolverOptions{Settings: settings}),
		Locator:    NewLogLocator(LogLocatorOptions{Dir: dir}),
		Dispatcher: NewNotificationDispatcher(NotificationDispatcherOptions{Mailer: mailer}),
		Config:     HarvestJobConfig{SiteName: "Shop"},
	})
	scheduler := NewSchedulerService(SchedulerServiceOptions{Repo: repo})
	scheduler.Register(domain.HarvestActionName, job)

	fired, err := scheduler.Tick(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, fired, "not due before 05:00")

	due := time.Date(2024, 3, 15, 5, 0, 1, 0, time.UTC)
	clock.Set(due)
	fired, err = scheduler.Tick(ctx, due)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Len(t, mailer.Messages(), 2)

	// Same instant again: the trigger has moved to tomorrow.
	fired, err = scheduler.Tick(ctx, due)
	require.NoError(t, err)
	assert.Zero(t, fired)

	task, err := repo.GetByAction(ctx, domain.HarvestActionName)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.True(t, task.NextRunAt.Equal(time.Date(2024, 3, 16, 5, 0, 0, 0, time.UTC)))

	require.NoError(t, controller.Teardown(ctx))
	task, err = repo.GetByAction(ctx, domain.HarvestActionName)
	require.NoError(t, err)
	assert.Nil(t, task)

	cfg, err := LoadRecipientConfig(ctx, settings)
	require.NoError(t, err)
	assert.False(t, cfg.Set)
}
