package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/fatal-log-mailer/internal/bootstrap"
)

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = 2 * time.Minute
)

// withDatabase runs f with a connected database and a signal-aware timeout context.
func withDatabase(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *sql.DB) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()

	return f(ctx, db)
}

// withServices runs f with the fully wired service container. Redis is connected only
// when the settings cache is enabled so admin writes invalidate cached values.
func withServices(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *bootstrap.ServiceContainer) error,
) error {
	return withDatabase(cmdCtx, timeout, func(ctx context.Context, db *sql.DB) error {
		redisClient, err := maybeConnectRedis(cmdCtx)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := closeRedis(redisClient); cerr != nil {
				cmdCtx.Logger.Warn("redis close failed", "error", cerr)
			}
		}()

		svcs, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
			Config:      &cmdCtx.Config,
			DB:          db,
			RedisClient: redisClient,
			Logger:      cmdCtx.Logger,
		})
		if err != nil {
			return fmt.Errorf("build services: %w", err)
		}
		defer func() {
			if cerr := svcs.Close(); cerr != nil {
				cmdCtx.Logger.Warn("services close failed", "error", cerr)
			}
		}()

		return f(ctx, svcs)
	})
}

//nolint:ireturn // returning redis.UniversalClient keeps sentinel support flexible.
func maybeConnectRedis(cmdCtx *commandContext) (redis.UniversalClient, error) {
	if !cmdCtx.Config.SettingsCache.Enabled {
		return nil, nil
	}
	client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

func closeRedis(client redis.UniversalClient) error {
	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
