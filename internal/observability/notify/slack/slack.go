// Package slack posts harvest diagnostics to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/target/fatal-log-mailer/internal/observability/notify"
)

// maxWarningLines bounds how many warning lines are copied into a single message.
const maxWarningLines = 10

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client delivers harvest diagnostics to a Slack webhook.
type Client struct {
	webhookURL string
	channel    string
	username   string
	retryLimit int
	client     *http.Client
}

// NewClient builds a Slack webhook client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		webhookURL: webhookURL,
		channel:    strings.TrimSpace(cfg.Channel),
		username:   fallbackString(strings.TrimSpace(cfg.Username), "fatal-log-mailer"),
		retryLimit: max(cfg.RetryLimit, 0),
		client:     hc,
	}, nil
}

// SendDiagnostic posts a formatted message to Slack.
func (c *Client) SendDiagnostic(ctx context.Context, payload notify.HarvestDiagnostic) error {
	body, err := json.Marshal(c.formatMessage(payload))
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}

	attempts := c.retryLimit + 1
	var lastErr error
	for attempt := range attempts {
		err = c.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < attempts-1 {
			// Linear backoff.
			timer := time.NewTimer(time.Duration(attempt+1) * 200 * time.Millisecond)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return lastErr
}

func (c *Client) formatMessage(payload notify.HarvestDiagnostic) map[string]any {
	timestamp := payload.OccurredAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	text := strings.Builder{}
	text.WriteString("*Fatal error log harvest: ")
	text.WriteString(headline(payload.Kind))
	text.WriteString("*")
	if payload.Date != "" {
		text.WriteString(" for `")
		text.WriteString(payload.Date)
		text.WriteByte('`')
	}
	text.WriteByte('\n')

	fields := []struct {
		label string
		value string
	}{
		{"Severity", fallbackString(payload.Severity, notify.SeverityWarning)},
		{"Site", escapeSlackText(payload.SiteName)},
		{"Run", payload.RunID},
		{"Recipients", strconv.Itoa(payload.Recipients)},
		{"Log files", strconv.Itoa(payload.Files)},
		{"Sent", strconv.Itoa(payload.Sent)},
		{"Error class", payload.ErrorClass},
		{"Error", escapeSlackText(payload.Error)},
	}
	for _, field := range fields {
		appendSlackField(&text, field.label, field.value)
	}
	appendSlackWarnings(&text, payload.Warnings)
	text.WriteString("• Timestamp: ")
	text.WriteString(timestamp.UTC().Format(time.RFC3339))

	msg := map[string]any{
		"text":     text.String(),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

func headline(kind notify.DiagnosticKind) string {
	switch kind {
	case notify.DiagnosticNoRecipients:
		return "no valid recipients"
	case notify.DiagnosticNoLogFiles:
		return "no log files"
	case notify.DiagnosticAllFilesUnreadable:
		return "log files unreadable"
	case notify.DiagnosticRunFailed:
		return "run failed"
	default:
		return "nothing delivered"
	}
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("slack webhook %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	if _, err = io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("drain slack response body: %w", err)
	}
	return nil
}

func fallbackString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func escapeSlackText(value string) string {
	if value == "" {
		return ""
	}
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	).Replace(value)
}

func appendSlackField(text *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	text.WriteString("• ")
	text.WriteString(label)
	text.WriteString(": ")
	text.WriteString(value)
	text.WriteByte('\n')
}

func appendSlackWarnings(text *strings.Builder, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	text.WriteString("• Warnings:\n")
	for i, w := range warnings {
		if i == maxWarningLines {
			fmt.Fprintf(text, "    • … %d more\n", len(warnings)-maxWarningLines)
			break
		}
		text.WriteString("    • ")
		text.WriteString(escapeSlackText(w))
		text.WriteByte('\n')
	}
}
