package data

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/target/fatal-log-mailer/internal/core"
)

// absentMarker is cached for keys that do not exist so misses are not re-queried every run.
var absentMarker = []byte("\x00absent")

// CachedSettingsStoreOptions configures a CachedSettingsStore.
type CachedSettingsStoreOptions struct {
	Store     core.SettingsStore
	Cache     core.CacheRepository
	TTL       time.Duration
	KeyPrefix string
	Logger    *slog.Logger
}

// CachedSettingsStore is a read-through cache in front of a SettingsStore.
// Writes go to the store first and then invalidate the cached entry.
// Cache failures are logged and fall through to the store.
type CachedSettingsStore struct {
	store  core.SettingsStore
	cache  core.CacheRepository
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// NewCachedSettingsStore wraps opts.Store with opts.Cache.
func NewCachedSettingsStore(opts CachedSettingsStoreOptions) *CachedSettingsStore {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSettingsStore{
		store:  opts.Store,
		cache:  opts.Cache,
		ttl:    opts.TTL,
		prefix: opts.KeyPrefix,
		logger: logger.With("component", "settings_cache"),
	}
}

func (s *CachedSettingsStore) cacheKey(key string) string {
	return s.prefix + key
}

// Get returns the cached value when present, otherwise reads the store and populates the cache.
func (s *CachedSettingsStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	ck := s.cacheKey(key)
	cached, err := s.cache.Get(ctx, ck)
	if err != nil {
		s.logger.WarnContext(ctx, "settings cache read failed", "key", key, "error", err)
	} else if cached != nil {
		if string(cached) == string(absentMarker) {
			return nil, nil
		}
		return json.RawMessage(cached), nil
	}

	value, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	toCache := []byte(value)
	if value == nil {
		toCache = absentMarker
	}
	if setErr := s.cache.Set(ctx, ck, toCache, s.ttl); setErr != nil {
		s.logger.WarnContext(ctx, "settings cache write failed", "key", key, "error", setErr)
	}
	return value, nil
}

// Set writes through to the store and invalidates the cached entry.
func (s *CachedSettingsStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := s.store.Set(ctx, key, value); err != nil {
		return err
	}
	s.invalidate(ctx, key)
	return nil
}

// Delete removes the key from the store and the cache.
func (s *CachedSettingsStore) Delete(ctx context.Context, key string) (bool, error) {
	deleted, err := s.store.Delete(ctx, key)
	if err != nil {
		return false, err
	}
	s.invalidate(ctx, key)
	return deleted, nil
}

func (s *CachedSettingsStore) invalidate(ctx context.Context, key string) {
	if _, err := s.cache.Delete(ctx, s.cacheKey(key)); err != nil {
		s.logger.WarnContext(ctx, "settings cache invalidation failed", "key", key, "error", err)
	}
}
