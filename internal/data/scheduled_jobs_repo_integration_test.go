package data

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/fatal-log-mailer/internal/domain"
	apperrors "github.com/target/fatal-log-mailer/internal/errors"
	"github.com/target/fatal-log-mailer/internal/testutil"
)

func TestScheduledJobsRepo_Integration_ScheduleLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	clock := NewFixedTimeProvider(time.Date(2024, 5, 1, 4, 0, 0, 0, time.UTC))
	repo := NewScheduledJobsRepoWithTimeProvider(db, clock)

	require.NoError(t, repo.Available(ctx))

	scheduled, err := repo.IsScheduled(ctx, domain.HarvestActionName)
	require.NoError(t, err)
	assert.False(t, scheduled)

	first := time.Date(2024, 5, 1, 5, 0, 0, 0, time.UTC)
	task, err := repo.ScheduleRecurring(ctx, domain.ScheduleRecurringParams{
		ActionName: domain.HarvestActionName,
		FirstRunAt: first,
		Interval:   domain.DailyInterval,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, domain.DailyInterval, task.Interval)
	assert.True(t, first.Equal(task.NextRunAt))

	scheduled, err = repo.IsScheduled(ctx, domain.HarvestActionName)
	require.NoError(t, err)
	assert.True(t, scheduled)

	t.Run("duplicate schedule is a conflict", func(t *testing.T) {
		_, dupErr := repo.ScheduleRecurring(ctx, domain.ScheduleRecurringParams{
			ActionName: domain.HarvestActionName,
			FirstRunAt: first,
			Interval:   domain.DailyInterval,
		})
		require.Error(t, dupErr)
		assert.True(t, apperrors.IsConflict(dupErr))
	})

	t.Run("get by action", func(t *testing.T) {
		got, getErr := repo.GetByAction(ctx, domain.HarvestActionName)
		require.NoError(t, getErr)
		require.NotNil(t, got)
		assert.Equal(t, task.ID, got.ID)

		missing, getErr := repo.GetByAction(ctx, "nope")
		require.NoError(t, getErr)
		assert.Nil(t, missing)
	})

	t.Run("find due respects next_run_at", func(t *testing.T) {
		due, findErr := repo.FindDue(ctx, first.Add(-time.Minute), 10)
		require.NoError(t, findErr)
		assert.Empty(t, due)

		due, findErr = repo.FindDue(ctx, first, 10)
		require.NoError(t, findErr)
		require.Len(t, due, 1)
		assert.Equal(t, task.ID, due[0].ID)
	})

	t.Run("advance moves the slot", func(t *testing.T) {
		next := first.Add(domain.DailyInterval)
		ok, lockErr := repo.TryWithTaskLock(ctx, domain.HarvestActionName, func(ctx context.Context, tx *sql.Tx) error {
			return repo.AdvanceTx(ctx, tx, domain.AdvanceParams{
				ID:                task.ID,
				ExpectedNextRunAt: first,
				LastRunAt:         first,
				NextRunAt:         next,
				FireKey:           "k1",
			})
		})
		require.NoError(t, lockErr)
		assert.True(t, ok)

		got, getErr := repo.GetByAction(ctx, domain.HarvestActionName)
		require.NoError(t, getErr)
		assert.True(t, next.Equal(got.NextRunAt))
		require.NotNil(t, got.ActiveFireKey)
		assert.Equal(t, "k1", *got.ActiveFireKey)
		require.NotNil(t, got.LastRunAt)
	})

	t.Run("advance from a stale slot is rejected", func(t *testing.T) {
		_, lockErr := repo.TryWithTaskLock(ctx, domain.HarvestActionName, func(ctx context.Context, tx *sql.Tx) error {
			return repo.AdvanceTx(ctx, tx, domain.AdvanceParams{
				ID:                task.ID,
				ExpectedNextRunAt: first,
				LastRunAt:         first.Add(time.Minute),
				NextRunAt:         first.Add(2 * domain.DailyInterval),
				FireKey:           "k2",
			})
		})
		require.ErrorIs(t, lockErr, domain.ErrTaskStale)

		got, getErr := repo.GetByAction(ctx, domain.HarvestActionName)
		require.NoError(t, getErr)
		assert.True(t, first.Add(domain.DailyInterval).Equal(got.NextRunAt))
		require.NotNil(t, got.ActiveFireKey)
		assert.Equal(t, "k1", *got.ActiveFireKey)
	})

	t.Run("advance unknown id", func(t *testing.T) {
		_, lockErr := repo.TryWithTaskLock(ctx, domain.HarvestActionName, func(ctx context.Context, tx *sql.Tx) error {
			return repo.AdvanceTx(ctx, tx, domain.AdvanceParams{
				ID:                "00000000-0000-0000-0000-000000000000",
				ExpectedNextRunAt: first,
				NextRunAt:         first,
				LastRunAt:         first,
			})
		})
		require.ErrorIs(t, lockErr, domain.ErrTaskStale)
	})

	t.Run("unschedule all", func(t *testing.T) {
		n, unErr := repo.UnscheduleAll(ctx, domain.HarvestActionName)
		require.NoError(t, unErr)
		assert.Equal(t, 1, n)

		n, unErr = repo.UnscheduleAll(ctx, domain.HarvestActionName)
		require.NoError(t, unErr)
		assert.Equal(t, 0, n)
	})
}

func TestScheduledJobsRepo_Integration_TryWithTaskLockExclusive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewScheduledJobsRepo(db)
	ctx := context.Background()

	release := make(chan struct{})
	entered := make(chan struct{})
	var ran atomic.Int32

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = repo.TryWithTaskLock(ctx, "exclusive", func(context.Context, *sql.Tx) error {
			ran.Add(1)
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	ok, err := repo.TryWithTaskLock(ctx, "exclusive", func(context.Context, *sql.Tx) error {
		ran.Add(1)
		return nil
	})
	require.NoError(t, err)
	assert.False(t, ok)

	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), ran.Load())
}
