package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/resend/resend-go/v2"

	"github.com/target/fatal-log-mailer/internal/core"
	"github.com/target/fatal-log-mailer/internal/domain/model"
)

// ResendConfig configures ResendMailer.
type ResendConfig struct {
	APIKey string
	From   Sender
	// BaseURL overrides the API endpoint (tests, regional endpoints).
	BaseURL string
	Logger  *slog.Logger
}

// ResendMailer sends email via the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
	logger *slog.Logger
}

var _ core.Mailer = (*ResendMailer)(nil)

// NewResendMailer builds a Resend mailer.
func NewResendMailer(cfg ResendConfig) (*ResendMailer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("resend api key is required")
	}
	if cfg.From.Address == "" {
		return nil, errors.New("sender address is required")
	}

	client := resend.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse resend base url: %w", err)
		}
		client.BaseURL = u
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "resend_mailer")
	}

	from := cfg.From.Address
	if cfg.From.Name != "" {
		from = fmt.Sprintf("%s <%s>", cfg.From.Name, cfg.From.Address)
	}
	return &ResendMailer{client: client, from: from, logger: logger}, nil
}

// Send delivers msg as a plain-text email.
func (m *ResendMailer) Send(ctx context.Context, msg model.EmailMessage) error {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Body,
	})
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	m.logger.DebugContext(ctx, "resend mail sent", "message_id", sent.Id, "to", msg.To)
	return nil
}
