package config

import (
	"strings"
	"time"
)

const defaultObservabilityName = "fatal-log-mailer"

// ObservabilityConfig groups configuration that controls metrics and diagnostics fan-out.
type ObservabilityConfig struct {
	Metrics     ObservabilityMetricsConfig
	Diagnostics ObservabilityDiagnosticsConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
	c.Diagnostics.Sanitize()
}

// ObservabilityMetricsConfig controls emission of metrics to StatsD.
type ObservabilityMetricsConfig struct {
	Enabled       bool   `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"OBSERVABILITY_METRICS_PREFIX"         envDefault:"logmailer"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.StatsdAddress == "" {
		c.Enabled = false
	}
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}

// ObservabilityDiagnosticsConfig controls the optional hook fired when a harvest
// run delivers nothing (no recipients, or every log file unreadable).
// Disabled by default: the job stays silent unless asked otherwise.
type ObservabilityDiagnosticsConfig struct {
	Enabled    bool          `env:"OBSERVABILITY_DIAGNOSTICS_ENABLED"     envDefault:"false"`
	Timeout    time.Duration `env:"OBSERVABILITY_DIAGNOSTICS_TIMEOUT"     envDefault:"5s"`
	RetryLimit int           `env:"OBSERVABILITY_DIAGNOSTICS_RETRY_LIMIT" envDefault:"2"`
	// NotifyNoLogFiles also reports days without any log file. Off by default since an
	// empty day is the healthy case.
	NotifyNoLogFiles bool                       `env:"OBSERVABILITY_DIAGNOSTICS_NOTIFY_NO_LOG_FILES" envDefault:"false"`
	Slack            SlackDiagnosticsConfig     `envPrefix:"OBSERVABILITY_DIAGNOSTICS_SLACK_"`
	PagerDuty        PagerDutyDiagnosticsConfig `envPrefix:"OBSERVABILITY_DIAGNOSTICS_PAGERDUTY_"`
}

// Sanitize normalises diagnostics configuration values.
func (c *ObservabilityDiagnosticsConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.RetryLimit < 0 {
		c.RetryLimit = 0
	}

	c.Slack.sanitize()
	c.PagerDuty.sanitize()

	if !c.Enabled {
		c.Slack.Enabled = false
		c.PagerDuty.Enabled = false
		return
	}
	if c.Slack.Enabled && c.Slack.WebhookURL == "" {
		c.Slack.Enabled = false
	}
	if c.PagerDuty.Enabled && c.PagerDuty.RoutingKey == "" {
		c.PagerDuty.Enabled = false
	}
}

// HasSinks reports whether any diagnostics sink survives sanitisation.
func (c *ObservabilityDiagnosticsConfig) HasSinks() bool {
	return c.Enabled && (c.Slack.Enabled || c.PagerDuty.Enabled)
}

// SlackDiagnosticsConfig controls Slack webhook fan-out.
type SlackDiagnosticsConfig struct {
	Enabled    bool   `env:"ENABLED"     envDefault:"false"`
	WebhookURL string `env:"WEBHOOK_URL"`
	Channel    string `env:"CHANNEL"`
	Username   string `env:"USERNAME"    envDefault:"fatal-log-mailer"`
}

func (c *SlackDiagnosticsConfig) sanitize() {
	c.WebhookURL = strings.TrimSpace(c.WebhookURL)
	c.Channel = strings.TrimSpace(c.Channel)
	if c.Username = strings.TrimSpace(c.Username); c.Username == "" {
		c.Username = defaultObservabilityName
	}
}

// PagerDutyDiagnosticsConfig controls PagerDuty Events API fan-out.
type PagerDutyDiagnosticsConfig struct {
	Enabled    bool   `env:"ENABLED"     envDefault:"false"`
	RoutingKey string `env:"ROUTING_KEY"`
	Source     string `env:"SOURCE"      envDefault:"fatal-log-mailer"`
	Component  string `env:"COMPONENT"   envDefault:"harvest"`
}

func (c *PagerDutyDiagnosticsConfig) sanitize() {
	c.RoutingKey = strings.TrimSpace(c.RoutingKey)
	if c.Source = strings.TrimSpace(c.Source); c.Source == "" {
		c.Source = defaultObservabilityName
	}
	c.Component = strings.TrimSpace(c.Component)
}
