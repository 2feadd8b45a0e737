package core

import (
	"context"
	"encoding/json"

	"github.com/target/fatal-log-mailer/internal/domain/model"
)

// SettingsStore is the key-value store holding recipient configuration and the site admin email.
// Values are JSON documents.
type SettingsStore interface {
	// Get returns the stored value, or nil when the key does not exist.
	Get(ctx context.Context, key string) (json.RawMessage, error)
	// Set creates or replaces the value for key.
	Set(ctx context.Context, key string, value json.RawMessage) error
	// Delete removes the key. Returns true if it existed.
	Delete(ctx context.Context, key string) (bool, error)
}

// Mailer delivers a single email.
type Mailer interface {
	Send(ctx context.Context, msg model.EmailMessage) error
}
