package errors

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// reKeyField extracts field name from unique violation detail: "Key (field)=(value) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)

// MapDBError maps database errors to AppError instances:
//   - context deadline / cancellation -> Timeout / Canceled
//   - pgx.ErrNoRows, sql.ErrNoRows -> NotFound
//   - unique violation -> Conflict (Field set when derivable)
//   - not-null and check violations -> Validation
//   - undefined table, connection exceptions -> Unavailable
//
// Unrecognised errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: ErrCodeTimeout, Message: "database operation timed out", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: "database operation canceled", Cause: err}
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return &AppError{Code: ErrCodeNotFound, Message: "resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}
	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch {
	case pgErr.Code == pgerrcode.UniqueViolation:
		return &AppError{
			Code:    ErrCodeConflict,
			Message: "value already exists",
			Field:   uniqueViolationField(pgErr),
			Cause:   pgErr,
		}
	case pgErr.Code == pgerrcode.NotNullViolation:
		return &AppError{Code: ErrCodeValidation, Message: "required field is missing", Field: pgErr.ColumnName, Cause: pgErr}
	case pgErr.Code == pgerrcode.CheckViolation:
		return &AppError{Code: ErrCodeValidation, Message: "field has an invalid value", Field: pgErr.ColumnName, Cause: pgErr}
	case pgErr.Code == pgerrcode.UndefinedTable:
		return &AppError{Code: ErrCodeUnavailable, Message: "required table is missing", Cause: pgErr}
	case pgerrcode.IsConnectionException(pgErr.Code):
		return &AppError{Code: ErrCodeUnavailable, Message: "database connection failed", Cause: pgErr}
	default:
		return &AppError{Code: ErrCodeInternal, Message: "database error", Cause: pgErr}
	}
}

// uniqueViolationField prefers column metadata, then the detail message, then the constraint name.
func uniqueViolationField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return m[1]
	}
	return inferFieldFromConstraint(pgErr.TableName, pgErr.ConstraintName)
}

// inferFieldFromConstraint strips the _key/_unique/_idx suffix and the table prefix from a
// constraint name: "scheduled_jobs_action_name_key" on table scheduled_jobs -> "action_name".
func inferFieldFromConstraint(table, constraint string) string {
	var name string
	var ok bool
	for _, suffix := range []string{"_pkey", "_key", "_unique", "_idx"} {
		if name, ok = strings.CutSuffix(constraint, suffix); ok {
			break
		}
	}
	if !ok || name == "" || name == table {
		return ""
	}
	if table != "" {
		name = strings.TrimPrefix(name, table+"_")
	}
	return name
}
