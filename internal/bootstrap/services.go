package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/fatal-log-mailer/config"
	"github.com/target/fatal-log-mailer/internal/adapters/mailer"
	"github.com/target/fatal-log-mailer/internal/core"
	"github.com/target/fatal-log-mailer/internal/data"
	"github.com/target/fatal-log-mailer/internal/observability/notify/pagerduty"
	"github.com/target/fatal-log-mailer/internal/observability/notify/slack"
	"github.com/target/fatal-log-mailer/internal/observability/statsd"
	"github.com/target/fatal-log-mailer/internal/service"
	"github.com/target/fatal-log-mailer/internal/service/diagnostics"
)

// ServiceContainer holds the wired harvest services.
type ServiceContainer struct {
	Settings      core.SettingsStore
	Recipients    *service.RecipientResolver
	Scheduler     *data.ScheduledJobsRepo
	Schedule      *service.ScheduleController
	Harvest       *service.HarvestJob
	Mailer        *mailer.Router
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink *statsd.Client
	Diagnostics *diagnostics.Service
}

// Close releases the metrics connection.
func (c *ServiceContainer) Close() error {
	if c == nil || c.Observability.MetricsSink == nil {
		return nil
	}
	return c.Observability.MetricsSink.Close()
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient // Optional: enables the settings cache
	Logger      *slog.Logger
}

// NewServices wires the settings store, mail routes, observability and harvest services.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil {
		return nil, errors.New("service deps require config and database")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router, err := buildMailer(cfg.Mail, logger)
	if err != nil {
		return nil, err
	}

	settings := buildSettingsStore(deps.DB, deps.RedisClient, cfg.SettingsCache, logger)
	scheduler := data.NewScheduledJobsRepo(deps.DB)
	obs := buildObservability(logger, cfg.Observability)

	hour, minute := cfg.Scheduler.RunAtClock()
	schedule := service.NewScheduleController(service.ScheduleControllerOptions{
		Scheduler: scheduler,
		Settings:  settings,
		Schedule: service.ScheduleConfig{
			Hour:     hour,
			Minute:   minute,
			Location: cfg.Scheduler.Location(),
		},
		Logger: logger.With("component", "schedule_controller"),
	})

	recipients := service.NewRecipientResolver(service.RecipientResolverOptions{
		Settings:      settings,
		RecoveryEmail: cfg.Harvest.RecoveryModeEmail,
		Logger:        logger.With("component", "recipient_resolver"),
	})

	return &ServiceContainer{
		Settings:      settings,
		Recipients:    recipients,
		Scheduler:     scheduler,
		Schedule:      schedule,
		Harvest:       buildHarvestJob(cfg, settings, recipients, router, obs, logger),
		Mailer:        router,
		Observability: obs,
	}, nil
}

func buildHarvestJob(
	cfg *config.AppConfig,
	settings core.SettingsStore,
	recipients *service.RecipientResolver,
	m core.Mailer,
	obs ObservabilityContainer,
	logger *slog.Logger,
) *service.HarvestJob {
	hopts := service.HarvestJobOptions{
		Resolver: recipients,
		Locator: service.NewLogLocator(service.LogLocatorOptions{
			Dir:    cfg.Harvest.LogDir,
			Logger: logger.With("component", "log_locator"),
		}),
		Dispatcher: service.NewNotificationDispatcher(service.NotificationDispatcherOptions{
			Mailer:   m,
			Platform: cfg.Harvest.PlatformName,
			Logger:   logger.With("component", "dispatcher"),
		}),
		Settings: settings,
		Config: service.HarvestJobConfig{
			SiteName:         cfg.Harvest.SiteName,
			Location:         cfg.Harvest.Location(),
			NotifyNoLogFiles: cfg.Observability.Diagnostics.NotifyNoLogFiles,
		},
		Logger: logger.With("component", "harvest_job"),
	}
	if obs.MetricsSink != nil {
		hopts.Metrics = obs.MetricsSink
	}
	// A nil *diagnostics.Service in the interface would not read as nil to the job.
	if obs.Diagnostics.Enabled() {
		hopts.Diagnostics = obs.Diagnostics
	}
	return service.NewHarvestJob(hopts)
}

// buildSettingsStore returns the Postgres settings repo, fronted by the Redis cache when enabled.
//
//nolint:ireturn // callers only need the port; the concrete type depends on cache config.
func buildSettingsStore(
	db *sql.DB,
	redisClient redis.UniversalClient,
	cfg config.SettingsCacheConfig,
	logger *slog.Logger,
) core.SettingsStore {
	repo := data.NewSettingsRepo(db)
	if !cfg.Enabled || redisClient == nil {
		return repo
	}
	return data.NewCachedSettingsStore(data.CachedSettingsStoreOptions{
		Store:     repo,
		Cache:     data.NewRedisCacheRepo(redisClient),
		TTL:       cfg.TTL,
		KeyPrefix: cfg.KeyPrefix,
		Logger:    logger,
	})
}

// buildMailer assembles the primary route and, when configured, the fallback route.
func buildMailer(cfg config.MailConfig, logger *slog.Logger) (*mailer.Router, error) {
	providers := []config.MailProvider{cfg.Provider}
	if cfg.Fallback != "" {
		providers = append(providers, cfg.Fallback)
	}

	from := mailer.Sender{Address: cfg.FromAddress, Name: cfg.FromName}
	routes := make([]mailer.Route, 0, len(providers))
	for _, p := range providers {
		m, err := newProviderMailer(p, cfg, from, logger)
		if err != nil {
			return nil, fmt.Errorf("build %s mailer: %w", p, err)
		}
		routes = append(routes, mailer.Route{Name: string(p), Mailer: m})
	}

	router, err := mailer.NewRouter(logger.With("component", "mail_router"), routes...)
	if err != nil {
		return nil, fmt.Errorf("build mail router: %w", err)
	}
	logger.Info("mail routes configured", "routes", router.Routes())
	return router, nil
}

//nolint:ireturn // the router only needs the port.
func newProviderMailer(
	p config.MailProvider,
	cfg config.MailConfig,
	from mailer.Sender,
	logger *slog.Logger,
) (core.Mailer, error) {
	switch p {
	case config.MailProviderResend:
		return mailer.NewResendMailer(mailer.ResendConfig{
			APIKey: cfg.Resend.APIKey,
			From:   from,
			Logger: logger.With("component", "resend_mailer"),
		})
	case config.MailProviderSMTP:
		return mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			User:               cfg.SMTP.User,
			Password:           cfg.SMTP.Password,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
			From:               from,
			Logger:             logger.With("component", "smtp_mailer"),
		})
	default:
		return nil, fmt.Errorf("unknown mail provider %q", p)
	}
}

// buildObservability configures metrics and diagnostics adapters.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  obsLogger.With("component", "statsd"),
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink: metricsSink,
		Diagnostics: buildDiagnostics(obsLogger, cfg.Diagnostics),
	}
}

func buildDiagnostics(logger *slog.Logger, cfg config.ObservabilityDiagnosticsConfig) *diagnostics.Service {
	diagLogger := logger.With("component", "diagnostics")
	if !cfg.HasSinks() {
		return diagnostics.NewService(diagnostics.Options{Logger: diagLogger})
	}

	sinks := make([]diagnostics.SinkRegistration, 0, 2)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Channel:    cfg.Slack.Channel,
			Username:   cfg.Slack.Username,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, diagnostics.SinkRegistration{Name: "slack", Sink: client})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, diagnostics.SinkRegistration{Name: "pagerduty", Sink: client})
		}
	}

	return diagnostics.NewService(diagnostics.Options{Logger: diagLogger, Sinks: sinks})
}
