package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapDBError_NilError(t *testing.T) {
	assert.NoError(t, MapDBError(nil))
}

func TestMapDBError_Mapping(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  ErrorCode
		wantField string
	}{
		{name: "deadline", err: context.DeadlineExceeded, wantCode: ErrCodeTimeout},
		{name: "canceled", err: fmt.Errorf("query: %w", context.Canceled), wantCode: ErrCodeCanceled},
		{name: "pgx no rows", err: pgx.ErrNoRows, wantCode: ErrCodeNotFound},
		{name: "sql no rows", err: sql.ErrNoRows, wantCode: ErrCodeNotFound},
		{
			name:      "unique with column",
			err:       &pgconn.PgError{Code: pgerrcode.UniqueViolation, ColumnName: "action_name"},
			wantCode:  ErrCodeConflict,
			wantField: "action_name",
		},
		{
			name:      "unique from detail",
			err:       &pgconn.PgError{Code: pgerrcode.UniqueViolation, Detail: "Key (action_name)=(x) already exists."},
			wantCode:  ErrCodeConflict,
			wantField: "action_name",
		},
		{
			name: "unique from constraint",
			err: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				TableName:      "scheduled_jobs",
				ConstraintName: "scheduled_jobs_action_name_key",
			},
			wantCode:  ErrCodeConflict,
			wantField: "action_name",
		},
		{
			name:      "not null",
			err:       &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "value"},
			wantCode:  ErrCodeValidation,
			wantField: "value",
		},
		{name: "check", err: &pgconn.PgError{Code: pgerrcode.CheckViolation}, wantCode: ErrCodeValidation},
		{name: "undefined table", err: &pgconn.PgError{Code: pgerrcode.UndefinedTable}, wantCode: ErrCodeUnavailable},
		{name: "connection failure", err: &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, wantCode: ErrCodeUnavailable},
		{name: "other pg error", err: &pgconn.PgError{Code: pgerrcode.DivisionByZero}, wantCode: ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapDBError(tt.err)
			assert.Equal(t, tt.wantCode, GetCode(mapped))
			assert.Equal(t, tt.wantField, GetField(mapped))
			assert.ErrorIs(t, mapped, tt.err)
		})
	}
}

func TestMapDBError_StandardError(t *testing.T) {
	plain := errors.New("plain")
	assert.Equal(t, plain, MapDBError(plain))
}

func TestInferFieldFromConstraint(t *testing.T) {
	tests := []struct {
		table, constraint, want string
	}{
		{"scheduled_jobs", "scheduled_jobs_action_name_key", "action_name"},
		{"settings", "settings_pkey", ""},
		{"", "sites_name_unique", "sites_name"},
		{"settings", "", ""},
		{"settings", "weird", ""},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			assert.Equal(t, tt.want, inferFieldFromConstraint(tt.table, tt.constraint))
		})
	}
}
