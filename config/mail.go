package config

import "strings"

// MailProvider selects the transport used to deliver log emails.
type MailProvider string

const (
	// MailProviderSMTP delivers through an SMTP relay.
	MailProviderSMTP MailProvider = "smtp"
	// MailProviderResend delivers through the Resend HTTP API.
	MailProviderResend MailProvider = "resend"
)

// MailConfig contains mail transport configuration.
type MailConfig struct {
	Provider MailProvider `env:"MAIL_PROVIDER" envDefault:"smtp"`
	// Fallback is tried when Provider fails. Empty disables fallback.
	Fallback MailProvider `env:"MAIL_FALLBACK_PROVIDER"`

	// FromAddress is the envelope and header sender.
	FromAddress string `env:"MAIL_FROM_ADDRESS" envDefault:"noreply@localhost"`
	FromName    string `env:"MAIL_FROM_NAME"    envDefault:"Fatal Log Mailer"`

	SMTP   SMTPConfig   `envPrefix:"MAIL_SMTP_"`
	Resend ResendConfig `envPrefix:"MAIL_RESEND_"`
}

// SMTPConfig configures the SMTP relay.
type SMTPConfig struct {
	Host               string `env:"HOST"                 envDefault:"localhost"`
	Port               int    `env:"PORT"                 envDefault:"25"`
	User               string `env:"USER"`
	Password           string `env:"PASSWORD"`
	InsecureSkipVerify bool   `env:"INSECURE_SKIP_VERIFY" envDefault:"false"`
}

// ResendConfig configures the Resend API client.
type ResendConfig struct {
	APIKey string `env:"API_KEY"`
}

// Sanitize normalises mail configuration values.
func (m *MailConfig) Sanitize() {
	m.Provider = normalizeProvider(m.Provider)
	if m.Provider == "" {
		m.Provider = MailProviderSMTP
	}
	m.Fallback = normalizeProvider(m.Fallback)
	m.FromAddress = strings.TrimSpace(m.FromAddress)
	m.SMTP.Host = strings.TrimSpace(m.SMTP.Host)
	if m.SMTP.Port <= 0 || m.SMTP.Port > 65535 {
		m.SMTP.Port = 25
	}
	m.Resend.APIKey = strings.TrimSpace(m.Resend.APIKey)
	if m.Provider == MailProviderResend && m.Resend.APIKey == "" {
		m.Provider = MailProviderSMTP
	}
	if m.Fallback == m.Provider || (m.Fallback == MailProviderResend && m.Resend.APIKey == "") {
		m.Fallback = ""
	}
}

func normalizeProvider(p MailProvider) MailProvider {
	p = MailProvider(strings.ToLower(strings.TrimSpace(string(p))))
	switch p {
	case MailProviderSMTP, MailProviderResend:
		return p
	default:
		return ""
	}
}
