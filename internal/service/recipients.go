// Package service holds the harvest job's business logic: recipient resolution, log
// discovery, dispatch, schedule control and the scheduler tick.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/target/fatal-log-mailer/internal/core"
	"github.com/target/fatal-log-mailer/internal/domain/model"
)

// RecipientResolverOptions groups dependencies for RecipientResolver.
type RecipientResolverOptions struct {
	Settings core.SettingsStore // Required
	// RecoveryEmail is the environment-level override (RECOVERY_MODE_EMAIL).
	RecoveryEmail string
	Logger        *slog.Logger
}

// RecipientResolver computes the destination addresses for a harvest run from the
// configured string, the recovery email, and the site admin email, in that order.
type RecipientResolver struct {
	settings core.SettingsStore
	recovery string
	validate *validator.Validate
	logger   *slog.Logger
}

// NewRecipientResolver constructs a RecipientResolver.
func NewRecipientResolver(opts RecipientResolverOptions) *RecipientResolver {
	if opts.Settings == nil {
		panic("RecipientResolver requires a settings store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "recipient_resolver")
	}
	return &RecipientResolver{
		settings: opts.Settings,
		recovery: opts.RecoveryEmail,
		validate: validator.New(),
		logger:   logger,
	}
}

// Resolve reads both settings keys and applies the precedence chain.
// An empty list is a valid result. Only settings read failures are errors.
func (r *RecipientResolver) Resolve(ctx context.Context) (model.RecipientList, error) {
	cfg, err := LoadRecipientConfig(ctx, r.settings)
	if err != nil {
		return model.RecipientList{}, err
	}
	admin, err := LoadAdminEmail(ctx, r.settings)
	if err != nil {
		return model.RecipientList{}, err
	}

	list := r.ResolveFrom(cfg, r.recovery, admin)
	if len(list.Rejected) > 0 {
		r.logger.DebugContext(ctx, "dropped invalid recipients",
			"source", list.Source,
			"rejected", len(list.Rejected),
		)
	}
	return list, nil
}

// ResolveFrom applies the precedence chain to already-loaded values. The first tier with
// a non-blank value supplies the whole source string; tiers are never merged.
func (r *RecipientResolver) ResolveFrom(cfg model.RecipientConfig, recovery, admin string) model.RecipientList {
	source, tier := pickSource(cfg, recovery, admin)
	list := model.RecipientList{Source: tier}
	if tier == model.RecipientTierNone {
		return list
	}

	for _, part := range strings.Split(source, ",") {
		addr := strings.TrimSpace(part)
		if addr == "" {
			continue
		}
		if !r.validAddress(addr) {
			list.Rejected = append(list.Rejected, addr)
			continue
		}
		list.Addresses = append(list.Addresses, addr)
	}
	return list
}

func (r *RecipientResolver) validAddress(addr string) bool {
	return r.validate.Var(addr, "required,email") == nil
}

func pickSource(cfg model.RecipientConfig, recovery, admin string) (string, model.RecipientTier) {
	if cfg.Set && strings.TrimSpace(cfg.Raw) != "" {
		return cfg.Raw, model.RecipientTierConfigured
	}
	if strings.TrimSpace(recovery) != "" {
		return recovery, model.RecipientTierRecovery
	}
	if strings.TrimSpace(admin) != "" {
		return admin, model.RecipientTierAdmin
	}
	return "", model.RecipientTierNone
}

// LoadRecipientConfig reads the configured recipient string. A missing key, a missing
// field, or a non-string field all read as unset.
func LoadRecipientConfig(ctx context.Context, store core.SettingsStore) (model.RecipientConfig, error) {
	raw, err := store.Get(ctx, model.SettingsKeyLogEmail)
	if err != nil {
		return model.RecipientConfig{}, fmt.Errorf("read %s: %w", model.SettingsKeyLogEmail, err)
	}
	if len(raw) == 0 {
		return model.RecipientConfig{}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.RecipientConfig{}, nil
	}
	var value string
	field, ok := fields[model.SettingsFieldLogEmail]
	if !ok || json.Unmarshal(field, &value) != nil {
		return model.RecipientConfig{}, nil
	}
	return model.RecipientConfig{Raw: value, Set: true}, nil
}

// SaveRecipientConfig writes the configured recipient string, preserving any other
// fields stored under the same settings key.
func SaveRecipientConfig(ctx context.Context, store core.SettingsStore, value string) error {
	fields := map[string]any{}
	raw, err := store.Get(ctx, model.SettingsKeyLogEmail)
	if err != nil {
		return fmt.Errorf("read %s: %w", model.SettingsKeyLogEmail, err)
	}
	if len(raw) > 0 {
		// A malformed value is replaced wholesale.
		_ = json.Unmarshal(raw, &fields)
		if fields == nil {
			fields = map[string]any{}
		}
	}
	fields[model.SettingsFieldLogEmail] = value

	b, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s: %w", model.SettingsKeyLogEmail, err)
	}
	if err := store.Set(ctx, model.SettingsKeyLogEmail, b); err != nil {
		return fmt.Errorf("write %s: %w", model.SettingsKeyLogEmail, err)
	}
	return nil
}

// LoadAdminEmail reads the site admin address. Non-string values read as empty.
func LoadAdminEmail(ctx context.Context, store core.SettingsStore) (string, error) {
	raw, err := store.Get(ctx, model.SettingsKeyAdminEmail)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", model.SettingsKeyAdminEmail, err)
	}
	if len(raw) == 0 {
		return "", nil
	}
	var value string
	if json.Unmarshal(raw, &value) != nil {
		return "", nil
	}
	return value, nil
}

// SaveAdminEmail writes the site admin address as a JSON string.
func SaveAdminEmail(ctx context.Context, store core.SettingsStore, value string) error {
	b, err := json.Marshal(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("encode %s: %w", model.SettingsKeyAdminEmail, err)
	}
	if err := store.Set(ctx, model.SettingsKeyAdminEmail, b); err != nil {
		return fmt.Errorf("write %s: %w", model.SettingsKeyAdminEmail, err)
	}
	return nil
}
