// Package mailer delivers log emails through SMTP or the Resend API.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/target/fatal-log-mailer/internal/core"
	"github.com/target/fatal-log-mailer/internal/domain/model"
)

// Sender identifies who log emails come from.
type Sender struct {
	Address string
	Name    string
}

// SMTPConfig configures SMTPMailer.
type SMTPConfig struct {
	Host               string
	Port               int
	User               string
	Password           string
	InsecureSkipVerify bool
	From               Sender
	Logger             *slog.Logger
}

// dialer is the part of gomail.Dialer SMTPMailer needs.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends each message over a fresh SMTP session. gomail does not take a
// context, so cancellation is only observed before the dial.
type SMTPMailer struct {
	dialer dialer
	host   string
	from   Sender
	logger *slog.Logger
}

var _ core.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer builds an SMTP mailer.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.From.Address == "" {
		return nil, errors.New("sender address is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "smtp_mailer")
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	if cfg.InsecureSkipVerify {
		logger.Warn("smtp TLS verification disabled", "host", cfg.Host)
		// #nosec G402 -- opt-in for relays with self-signed certificates.
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: cfg.Host}
	}

	return &SMTPMailer{dialer: d, host: cfg.Host, from: cfg.From, logger: logger}, nil
}

// Send delivers msg as a plain-text email.
func (m *SMTPMailer) Send(ctx context.Context, msg model.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	started := time.Now()
	if err := m.dialer.DialAndSend(m.buildMessage(msg)); err != nil {
		return fmt.Errorf("smtp send via %s: %w", m.host, err)
	}
	m.logger.DebugContext(ctx, "smtp mail sent", "to", msg.To, "duration", time.Since(started))
	return nil
}

func (m *SMTPMailer) buildMessage(msg model.EmailMessage) *gomail.Message {
	gm := gomail.NewMessage()
	if m.from.Name != "" {
		gm.SetAddressHeader("From", m.from.Address, m.from.Name)
	} else {
		gm.SetHeader("From", m.from.Address)
	}
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	return gm
}
