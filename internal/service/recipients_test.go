package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/fatal-log-mailer/internal/domain/model"
	"github.com/target/fatal-log-mailer/internal/mocks/fakes"
)

func newTestResolver(t *testing.T, store *fakes.MemorySettingsStore, recovery string) *RecipientResolver {
	t.Helper()
	return NewRecipientResolver(RecipientResolverOptions{Settings: store, RecoveryEmail: recovery})
}

func setRaw(t *testing.T, store *fakes.MemorySettingsStore, key, value string) {
	t.Helper()
	require.NoError(t, store.Set(context.Background(), key, json.RawMessage(value)))
}

func TestRecipientResolver_ResolveFrom(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, fakes.NewMemorySettingsStore(), "")

	tests := []struct {
		name         string
		cfg          model.RecipientConfig
		recovery     string
		admin        string
		wantAddrs    []string
		wantSource   model.RecipientTier
		wantRejected []string
	}{
		{
			name:       "configured wins over every other tier",
			cfg:        model.RecipientConfig{Raw: "a@x.com, b@x.com", Set: true},
			recovery:   "r@x.com",
			admin:      "admin@x.com",
			wantAddrs:  []string{"a@x.com", "b@x.com"},
			wantSource: model.RecipientTierConfigured,
		},
		{
			name:       "blank configured falls through to recovery",
			cfg:        model.RecipientConfig{Raw: "   ", Set: true},
			recovery:   "r@x.com",
			admin:      "admin@x.com",
			wantAddrs:  []string{"r@x.com"},
			wantSource: model.RecipientTierRecovery,
		},
		{
			name:       "admin used when nothing else is set",
			admin:      "admin@x.com",
			wantAddrs:  []string{"admin@x.com"},
			wantSource: model.RecipientTierAdmin,
		},
		{
			name:         "invalid entries are dropped",
			cfg:          model.RecipientConfig{Raw: "not-an-email, ok@x.com", Set: true},
			wantAddrs:    []string{"ok@x.com"},
			wantSource:   model.RecipientTierConfigured,
			wantRejected: []string{"not-an-email"},
		},
		{
			name:       "duplicates are kept",
			cfg:        model.RecipientConfig{Raw: "a@x.com,a@x.com", Set: true},
			wantAddrs:  []string{"a@x.com", "a@x.com"},
			wantSource: model.RecipientTierConfigured,
		},
		{
			name:         "tiers are not merged when the chosen tier is all invalid",
			cfg:          model.RecipientConfig{Raw: "nope", Set: true},
			admin:        "admin@x.com",
			wantSource:   model.RecipientTierConfigured,
			wantRejected: []string{"nope"},
		},
		{
			name:       "empty pieces are skipped silently",
			cfg:        model.RecipientConfig{Raw: " , a@x.com ,, ", Set: true},
			wantAddrs:  []string{"a@x.com"},
			wantSource: model.RecipientTierConfigured,
		},
		{
			name:       "nothing set yields empty list",
			wantSource: model.RecipientTierNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := r.ResolveFrom(tt.cfg, tt.recovery, tt.admin)
			assert.Equal(t, tt.wantAddrs, got.Addresses)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.wantRejected, got.Rejected)
		})
	}
}

func TestRecipientResolver_Resolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reads configured field", func(t *testing.T) {
		t.Parallel()
		store := fakes.NewMemorySettingsStore()
		setRaw(t, store, model.SettingsKeyLogEmail, `{"rs_elew_wc_log_email":"ops@x.com"}`)
		setRaw(t, store, model.SettingsKeyAdminEmail, `"admin@x.com"`)

		got, err := newTestResolver(t, store, "r@x.com").Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"ops@x.com"}, got.Addresses)
	})

	t.Run("recovery beats admin", func(t *testing.T) {
		t.Parallel()
		store := fakes.NewMemorySettingsStore()
		setRaw(t, store, model.SettingsKeyAdminEmail, `"admin@x.com"`)

		got, err := newTestResolver(t, store, "r@x.com").Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"r@x.com"}, got.Addresses)
		assert.Equal(t, model.RecipientTierRecovery, got.Source)
	})

	t.Run("malformed settings read as unset", func(t *testing.T) {
		t.Parallel()
		store := fakes.NewMemorySettingsStore()
		setRaw(t, store, model.SettingsKeyLogEmail, `{"rs_elew_wc_log_email":42}`)
		setRaw(t, store, model.SettingsKeyAdminEmail, `"admin@x.com"`)

		got, err := newTestResolver(t, store, "").Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"admin@x.com"}, got.Addresses)
	})

	t.Run("all empty is not an error", func(t *testing.T) {
		t.Parallel()
		store := fakes.NewMemorySettingsStore()
		setRaw(t, store, model.SettingsKeyLogEmail, `{"rs_elew_wc_log_email":""}`)
		setRaw(t, store, model.SettingsKeyAdminEmail, `""`)

		got, err := newTestResolver(t, store, "").Resolve(ctx)
		require.NoError(t, err)
		assert.True(t, got.Empty())
	})

	t.Run("store errors propagate", func(t *testing.T) {
		t.Parallel()
		store := fakes.NewMemorySettingsStore()
		store.GetErr = errors.New("db down")

		_, err := newTestResolver(t, store, "").Resolve(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), model.SettingsKeyLogEmail)
	})
}

func TestSaveRecipientConfig_PreservesOtherFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := fakes.NewMemorySettingsStore()
	setRaw(t, store, model.SettingsKeyLogEmail, `{"other":"keep"}`)

	require.NoError(t, SaveRecipientConfig(ctx, store, "a@x.com, b@x.com"))

	raw, err := store.Get(ctx, model.SettingsKeyLogEmail)
	require.NoError(t, err)
	assert.JSONEq(t, `{"other":"keep","rs_elew_wc_log_email":"a@x.com, b@x.com"}`, string(raw))

	cfg, err := LoadRecipientConfig(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, model.RecipientConfig{Raw: "a@x.com, b@x.com", Set: true}, cfg)
}

func TestSaveAdminEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := fakes.NewMemorySettingsStore()

	require.NoError(t, SaveAdminEmail(ctx, store, " admin@x.com "))
	got, err := LoadAdminEmail(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "admin@x.com", got)
}
