package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/target/fatal-log-mailer/internal/errors"
)

// ErrSettingKeyRequired is returned when a settings operation receives a blank key.
var ErrSettingKeyRequired = errors.New("setting key is required")

// SettingsRepo is a Postgres-backed key-value store of JSON documents.
type SettingsRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewSettingsRepo creates a new SettingsRepo.
func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Get returns the stored JSON value for key, or nil when it does not exist.
func (r *SettingsRepo) Get(ctx context.Context, key string) (json.RawMessage, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrSettingKeyRequired
	}

	var raw []byte
	err := r.DB.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get setting %s: %w", key, apperrors.MapDBError(err))
	}
	return json.RawMessage(raw), nil
}

// Set creates or replaces the value for key. The value must be valid JSON.
func (r *SettingsRepo) Set(ctx context.Context, key string, value json.RawMessage) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrSettingKeyRequired
	}
	if !json.Valid(value) {
		return apperrors.ValidationField("value", "setting value must be valid JSON")
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, string(value), r.timeProvider.Now().UTC())
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, apperrors.MapDBError(err))
	}
	return nil
}

// Delete removes key. It returns true if a row was removed.
func (r *SettingsRepo) Delete(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, ErrSettingKeyRequired
	}

	res, err := r.DB.ExecContext(ctx, `DELETE FROM settings WHERE key = $1`, key)
	if err != nil {
		return false, fmt.Errorf("delete setting %s: %w", key, apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return n > 0, nil
}
