package config

import (
	"log/slog"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_ParseHarvestEnv(t *testing.T) {
	t.Setenv("HARVEST_LOG_DIR", "/srv/logs")
	t.Setenv("HARVEST_SITE_NAME", "Shop")
	t.Setenv("RECOVERY_MODE_EMAIL", "recovery@example.com")
	t.Setenv("MAIL_PROVIDER", "resend")
	t.Setenv("MAIL_RESEND_API_KEY", "re_test")
	t.Setenv("MAIL_SMTP_PORT", "2525")
	t.Setenv("SCHEDULER_RUN_AT", "06:30")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Harvest.LogDir != "/srv/logs" {
		t.Fatalf("unexpected log dir %q", cfg.Harvest.LogDir)
	}
	if cfg.Harvest.SiteName != "Shop" {
		t.Fatalf("unexpected site name %q", cfg.Harvest.SiteName)
	}
	if cfg.Harvest.PlatformName != "WooCommerce" {
		t.Fatalf("expected platform default, got %q", cfg.Harvest.PlatformName)
	}
	if cfg.Harvest.RecoveryModeEmail != "recovery@example.com" {
		t.Fatalf("unexpected recovery email %q", cfg.Harvest.RecoveryModeEmail)
	}
	if cfg.Mail.Provider != MailProviderResend {
		t.Fatalf("expected resend provider, got %q", cfg.Mail.Provider)
	}
	if cfg.Mail.SMTP.Port != 2525 {
		t.Fatalf("unexpected smtp port %d", cfg.Mail.SMTP.Port)
	}
	h, m := cfg.Scheduler.RunAtClock()
	if h != 6 || m != 30 {
		t.Fatalf("unexpected run-at clock %02d:%02d", h, m)
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	h, m := cfg.Scheduler.RunAtClock()
	if h != 5 || m != 0 {
		t.Fatalf("expected 05:00 default, got %02d:%02d", h, m)
	}
	if cfg.Harvest.Location() != time.UTC {
		t.Fatalf("expected UTC harvest location, got %v", cfg.Harvest.Location())
	}
	if cfg.Mail.Provider != MailProviderSMTP {
		t.Fatalf("expected smtp provider, got %q", cfg.Mail.Provider)
	}
	if cfg.SettingsCache.Enabled {
		t.Fatal("expected settings cache to be disabled by default")
	}
}

func TestMailConfig_SanitizeFallsBackToSMTP(t *testing.T) {
	cfg := MailConfig{Provider: " RESEND "}
	cfg.Sanitize()
	if cfg.Provider != MailProviderSMTP {
		t.Fatalf("expected smtp fallback without api key, got %q", cfg.Provider)
	}

	cfg = MailConfig{Provider: "carrier-pigeon"}
	cfg.Sanitize()
	if cfg.Provider != MailProviderSMTP {
		t.Fatalf("expected smtp for unknown provider, got %q", cfg.Provider)
	}
	if cfg.SMTP.Port != 25 {
		t.Fatalf("expected port default, got %d", cfg.SMTP.Port)
	}
}

func TestMailConfig_SanitizeFallback(t *testing.T) {
	cfg := MailConfig{Provider: "resend", Fallback: " SMTP ", Resend: ResendConfig{APIKey: "re_123"}}
	cfg.Sanitize()
	if cfg.Provider != MailProviderResend || cfg.Fallback != MailProviderSMTP {
		t.Fatalf("unexpected providers %q/%q", cfg.Provider, cfg.Fallback)
	}

	cfg = MailConfig{Provider: "smtp", Fallback: "smtp"}
	cfg.Sanitize()
	if cfg.Fallback != "" {
		t.Fatalf("fallback equal to primary should be dropped, got %q", cfg.Fallback)
	}

	cfg = MailConfig{Provider: "smtp", Fallback: "resend"}
	cfg.Sanitize()
	if cfg.Fallback != "" {
		t.Fatalf("resend fallback without api key should be dropped, got %q", cfg.Fallback)
	}
}

func TestSchedulerConfig_Sanitize(t *testing.T) {
	cfg := SchedulerConfig{
		BatchSize: 0,
		Interval:  0,
		RunAt:     "25:99",
		Timezone:  "Nowhere/Special",
	}
	cfg.Sanitize()

	if cfg.BatchSize != 1 {
		t.Fatalf("expected batch size clamp, got %d", cfg.BatchSize)
	}
	if cfg.Interval != time.Second {
		t.Fatalf("expected interval clamp, got %v", cfg.Interval)
	}
	if cfg.RunAt != "05:00" {
		t.Fatalf("expected run-at fallback, got %q", cfg.RunAt)
	}
	if cfg.Timezone != "Local" {
		t.Fatalf("expected timezone fallback, got %q", cfg.Timezone)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		hour    int
		minute  int
		wantErr bool
	}{
		{in: "05:00", hour: 5},
		{in: " 23:59 ", hour: 23, minute: 59},
		{in: "5am", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		h, m, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if h != tt.hour || m != tt.minute {
			t.Errorf("ParseClock(%q) = %d:%d, want %d:%d", tt.in, h, m, tt.hour, tt.minute)
		}
	}
}

func TestAppConfig_SlogLevel(t *testing.T) {
	cfg := AppConfig{LogLevel: "DEBUG"}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.SlogLevel())
	}
	cfg.LogLevel = "bogus"
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("expected info fallback, got %v", cfg.SlogLevel())
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:1234 ",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
}

func TestObservabilityDiagnosticsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityDiagnosticsConfig{
		Enabled:    true,
		Timeout:    0,
		RetryLimit: -1,
		Slack: SlackDiagnosticsConfig{
			Enabled:    true,
			WebhookURL: " ",
			Username:   "",
		},
	}

	cfg.Sanitize()

	if cfg.Timeout <= 0 {
		t.Fatalf("expected timeout to fall back to default, got %v", cfg.Timeout)
	}
	if cfg.RetryLimit < 0 {
		t.Fatalf("expected retry limit to be clamped to >= 0, got %d", cfg.RetryLimit)
	}
	if cfg.Slack.Enabled {
		t.Fatal("expected slack to be disabled without a webhook url")
	}
	if cfg.Slack.Username != "fatal-log-mailer" {
		t.Fatalf("expected slack username default, got %q", cfg.Slack.Username)
	}

	// Disabled top-level should disable child sinks.
	cfg = ObservabilityDiagnosticsConfig{
		Enabled: false,
		Slack: SlackDiagnosticsConfig{
			Enabled:    true,
			WebhookURL: "https://hooks.slack.com/services/test",
		},
	}
	cfg.Sanitize()
	if cfg.Slack.Enabled {
		t.Fatal("expected slack to be disabled when diagnostics are disabled")
	}
}

func TestObservabilityDiagnosticsConfig_PagerDuty(t *testing.T) {
	cfg := ObservabilityDiagnosticsConfig{
		Enabled:   true,
		PagerDuty: PagerDutyDiagnosticsConfig{Enabled: true, RoutingKey: "  "},
	}
	cfg.Sanitize()
	if cfg.PagerDuty.Enabled {
		t.Fatal("expected pagerduty to be disabled without a routing key")
	}
	if cfg.HasSinks() {
		t.Fatal("expected no sinks")
	}

	cfg = ObservabilityDiagnosticsConfig{
		Enabled:   true,
		PagerDuty: PagerDutyDiagnosticsConfig{Enabled: true, RoutingKey: " rk "},
	}
	cfg.Sanitize()
	if !cfg.PagerDuty.Enabled || cfg.PagerDuty.RoutingKey != "rk" {
		t.Fatalf("expected pagerduty enabled with trimmed key, got %+v", cfg.PagerDuty)
	}
	if cfg.PagerDuty.Source != "fatal-log-mailer" {
		t.Fatalf("expected default source, got %q", cfg.PagerDuty.Source)
	}
	if !cfg.HasSinks() {
		t.Fatal("expected sinks")
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	cfg := HTTPConfig{Addr: "  "}
	cfg.Sanitize()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.Enabled {
		t.Fatal("expected http endpoint to stay disabled")
	}

	cfg = HTTPConfig{Addr: " 127.0.0.1:9090 ", Enabled: true}
	cfg.Sanitize()
	if cfg.Addr != "127.0.0.1:9090" {
		t.Fatalf("expected trimmed addr, got %q", cfg.Addr)
	}
}
