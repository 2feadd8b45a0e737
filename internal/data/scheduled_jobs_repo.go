package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/target/fatal-log-mailer/internal/data/pgxutil"
	"github.com/target/fatal-log-mailer/internal/domain"
	apperrors "github.com/target/fatal-log-mailer/internal/errors"
)

// ErrScheduledJobsMissing is returned by Available when the scheduled_jobs table does not exist.
var ErrScheduledJobsMissing = errors.New("scheduled_jobs table is missing; run migrations")

// ScheduledJobsRepo stores recurring triggers in Postgres. It implements core.Scheduler,
// core.AvailabilityProber and core.ScheduledJobsRepository.
type ScheduledJobsRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewScheduledJobsRepo creates a new ScheduledJobsRepo instance with the given database connection.
func NewScheduledJobsRepo(db *sql.DB) *ScheduledJobsRepo {
	return &ScheduledJobsRepo{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

// NewScheduledJobsRepoWithTimeProvider creates a ScheduledJobsRepo with a custom TimeProvider (useful for testing).
func NewScheduledJobsRepoWithTimeProvider(db *sql.DB, timeProvider TimeProvider) *ScheduledJobsRepo {
	return &ScheduledJobsRepo{
		DB:           db,
		timeProvider: timeProvider,
	}
}

// fnvHash computes FNV-1a 64-bit hash of the given string for use as advisory lock key.
func fnvHash(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	// Advisory locks accept BIGINT; constrain the unsigned hash into int64 range before casting.
	u := h.Sum64()
	if u > uint64(math.MaxInt64) {
		u %= uint64(math.MaxInt64)
	}
	return int64(u) // #nosec G115 -- value is explicitly bounded to <= MaxInt64 before casting to int64.
}

const scheduledJobColumns = `
  id::text AS id,
  action_name,
  EXTRACT(EPOCH FROM scheduled_interval)::bigint AS interval_seconds,
  next_run_at,
  last_run_at,
  active_fire_key,
  created_at,
  updated_at
`

// Available reports whether the scheduler table is reachable.
func (r *ScheduledJobsRepo) Available(ctx context.Context) error {
	if r == nil || r.DB == nil {
		return errors.New("scheduled jobs repository has no database")
	}
	var reg sql.NullString
	if err := r.DB.QueryRowContext(ctx, `SELECT to_regclass('scheduled_jobs')::text`).Scan(&reg); err != nil {
		return fmt.Errorf("probe scheduled_jobs: %w", err)
	}
	if !reg.Valid {
		return ErrScheduledJobsMissing
	}
	return nil
}

// IsScheduled reports whether a trigger exists for actionName.
func (r *ScheduledJobsRepo) IsScheduled(ctx context.Context, actionName string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM scheduled_jobs WHERE action_name = $1)`, actionName,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check scheduled action %s: %w", actionName, apperrors.MapDBError(err))
	}
	return exists, nil
}

// ScheduleRecurring inserts a new trigger. A second trigger for the same action name
// violates the unique index and surfaces as an apperrors Conflict.
func (r *ScheduledJobsRepo) ScheduleRecurring(
	ctx context.Context,
	params domain.ScheduleRecurringParams,
) (*domain.ScheduledTask, error) {
	if err := params.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid schedule")
	}

	now := r.timeProvider.Now().UTC()
	query := `
		INSERT INTO scheduled_jobs (action_name, scheduled_interval, next_run_at, created_at, updated_at)
		VALUES ($1, make_interval(secs => $2), $3, $4, $4)
		RETURNING ` + scheduledJobColumns

	var task domain.ScheduledTask
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, query,
			params.ActionName,
			params.Interval.Seconds(),
			params.FirstRunAt.UTC(),
			now,
		)
		if qErr != nil {
			return qErr
		}
		collected, cErr := pgx.CollectExactlyOneRow(rows, rowToScheduledTask)
		if cErr != nil {
			return cErr
		}
		task = collected
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &task, nil
}

// UnscheduleAll removes every trigger for actionName.
func (r *ScheduledJobsRepo) UnscheduleAll(ctx context.Context, actionName string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM scheduled_jobs WHERE action_name = $1`, actionName)
	if err != nil {
		return 0, fmt.Errorf("unschedule %s: %w", actionName, apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return int(n), nil
}

// GetByAction returns the trigger for actionName, or nil when none exists.
func (r *ScheduledJobsRepo) GetByAction(ctx context.Context, actionName string) (*domain.ScheduledTask, error) {
	query := `SELECT ` + scheduledJobColumns + ` FROM scheduled_jobs WHERE action_name = $1`

	var task *domain.ScheduledTask
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, query, actionName)
		if qErr != nil {
			return qErr
		}
		collected, cErr := pgx.CollectExactlyOneRow(rows, rowToScheduledTask)
		if cErr != nil {
			return cErr
		}
		task = &collected
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scheduled action %s: %w", actionName, apperrors.MapDBError(err))
	}
	return task, nil
}

// FindDue finds triggers whose next_run_at is at or before now, oldest slot first.
func (r *ScheduledJobsRepo) FindDue(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledTask, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	query := `
		SELECT ` + scheduledJobColumns + `
		FROM scheduled_jobs
		WHERE next_run_at <= $1
		ORDER BY next_run_at ASC, created_at ASC
		LIMIT $2
	`

	var tasks []domain.ScheduledTask
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, query, now.UTC(), limit)
		if qErr != nil {
			return qErr
		}
		collected, cErr := pgx.CollectRows(rows, rowToScheduledTask)
		if cErr != nil {
			return cErr
		}
		tasks = collected
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query due scheduled tasks: %w", err)
	}
	return tasks, nil
}

// AdvanceTx records a firing and moves the trigger to its next slot within tx.
// The update is guarded by the expected next_run_at; when no row matches (the trigger was
// advanced by another runner or removed) it returns domain.ErrTaskStale.
func (r *ScheduledJobsRepo) AdvanceTx(ctx context.Context, tx *sql.Tx, p domain.AdvanceParams) error {
	if tx == nil {
		return errors.New("transaction is required")
	}
	if p.ExpectedNextRunAt.IsZero() {
		return errors.New("expected next_run_at is required")
	}

	var fireKey any
	if key := strings.TrimSpace(p.FireKey); key != "" {
		fireKey = key
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE scheduled_jobs
		SET next_run_at = $2, last_run_at = $3, active_fire_key = $4, updated_at = $5
		WHERE id = $1 AND next_run_at = $6
	`, p.ID, p.NextRunAt.UTC(), p.LastRunAt.UTC(), fireKey, r.timeProvider.Now().UTC(), p.ExpectedNextRunAt.UTC())
	if err != nil {
		return fmt.Errorf("advance scheduled task (tx): %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected (tx): %w", err)
	}
	if n == 0 {
		return fmt.Errorf("advance scheduled task %s: %w", p.ID, domain.ErrTaskStale)
	}
	return nil
}

// TryWithTaskLock attempts to acquire an advisory lock for the given action name.
// Uses FNV-1a 64-bit hash of action_name for the lock key.
// If the lock is acquired, executes fn within the same transaction.
// Return semantics:
//   - (false, nil): lock not acquired; fn was not executed
//   - (true, nil): lock acquired; fn executed and succeeded
//   - (true, err): lock acquired; fn executed and failed with err
func (r *ScheduledJobsRepo) TryWithTaskLock(
	ctx context.Context,
	actionName string,
	fn func(context.Context, *sql.Tx) error,
) (bool, error) {
	lockKey := fnvHash(actionName)

	var locked bool
	var fnErr error

	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			if err := tx.QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock($1)", lockKey).Scan(&locked); err != nil {
				return fmt.Errorf("acquire advisory lock for action %s: %w", actionName, err)
			}
			if !locked {
				return nil
			}

			// Commit regardless of fn's outcome; the error is returned separately.
			fnErr = fn(ctx, tx)
			return nil
		},
	})
	if err != nil {
		return false, err
	}

	return locked, fnErr
}

// scheduledTaskRow matches the selected columns so pgx.RowToStructByName can scan it.
type scheduledTaskRow struct {
	ID              string         `db:"id"`
	ActionName      string         `db:"action_name"`
	IntervalSeconds sql.NullInt64  `db:"interval_seconds"`
	NextRunAt       time.Time      `db:"next_run_at"`
	LastRunAt       sql.NullTime   `db:"last_run_at"`
	ActiveFireKey   sql.NullString `db:"active_fire_key"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (r *scheduledTaskRow) toDomainScheduledTask() domain.ScheduledTask {
	if r == nil {
		return domain.ScheduledTask{}
	}

	task := domain.ScheduledTask{
		ID:         r.ID,
		ActionName: r.ActionName,
		NextRunAt:  r.NextRunAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.IntervalSeconds.Valid {
		task.Interval = time.Duration(r.IntervalSeconds.Int64) * time.Second
	}
	if r.LastRunAt.Valid {
		t := r.LastRunAt.Time
		task.LastRunAt = &t
	}
	if r.ActiveFireKey.Valid {
		key := strings.TrimSpace(r.ActiveFireKey.String)
		if key != "" {
			task.ActiveFireKey = &key
		}
	}
	return task
}

// rowToScheduledTask maps a pgx row to domain.ScheduledTask using pgx v5 generics.
func rowToScheduledTask(row pgx.CollectableRow) (domain.ScheduledTask, error) {
	dbRow, err := pgx.RowToStructByName[scheduledTaskRow](row)
	if err != nil {
		return domain.ScheduledTask{}, fmt.Errorf("scan scheduled task row: %w", err)
	}
	return dbRow.toDomainScheduledTask(), nil
}
