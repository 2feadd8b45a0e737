package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/target/fatal-log-mailer/internal/core"
	"github.com/target/fatal-log-mailer/internal/domain/model"
)

// DefaultPlatformName appears in the email subject when no platform name is configured.
const DefaultPlatformName = "WooCommerce"

// NotificationDispatcherOptions groups dependencies for NotificationDispatcher.
type NotificationDispatcherOptions struct {
	Mailer   core.Mailer // Required
	Platform string
	Logger   *slog.Logger
}

// NotificationDispatcher sends one email per (recipient, log file) pair.
type NotificationDispatcher struct {
	mailer   core.Mailer
	platform string
	logger   *slog.Logger
	now      func() time.Time
}

// NewNotificationDispatcher constructs a NotificationDispatcher.
func NewNotificationDispatcher(opts NotificationDispatcherOptions) *NotificationDispatcher {
	if opts.Mailer == nil {
		panic("NotificationDispatcher requires a mailer")
	}
	platform := opts.Platform
	if platform == "" {
		platform = DefaultPlatformName
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "dispatcher")
	}
	return &NotificationDispatcher{
		mailer:   opts.Mailer,
		platform: platform,
		logger:   logger,
		now:      time.Now,
	}
}

// DispatchRequest is the input to a single dispatch.
type DispatchRequest struct {
	RunID      string
	Date       string
	SiteName   string
	Recipients []string
	Files      []model.LogFile
}

// Dispatch fans every file out to every recipient. Recoverable problems become warnings on
// the report and never stop the remaining sends. Cancelling ctx stops the loop; the partial
// report is returned together with ctx.Err().
func (d *NotificationDispatcher) Dispatch(ctx context.Context, req DispatchRequest) (*model.DispatchReport, error) {
	report := &model.DispatchReport{
		RunID:      req.RunID,
		Date:       req.Date,
		Recipients: len(req.Recipients),
		Files:      len(req.Files),
		StartedAt:  d.now(),
	}
	defer func() { report.FinishedAt = d.now() }()

	subject := model.LogEmailSubject(req.SiteName, d.platform, req.Date)

	for _, to := range req.Recipients {
		for _, file := range req.Files {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			d.sendOne(ctx, report, to, subject, file)
		}
	}
	return report, nil
}

func (d *NotificationDispatcher) sendOne(
	ctx context.Context,
	report *model.DispatchReport,
	to, subject string,
	file model.LogFile,
) {
	body, warn := readLogFile(file)
	if warn != nil {
		warn.Recipient = to
		report.Warn(*warn)
		d.logger.WarnContext(ctx, "skipping log file", "kind", warn.Kind, "path", file.Path, "error", warn.Err)
		return
	}

	report.Attempted++
	err := d.mailer.Send(ctx, model.EmailMessage{To: to, Subject: subject, Body: body})
	if err != nil {
		report.Warn(model.Warning{Kind: model.WarningMailFailed, Recipient: to, Path: file.Path, Err: err})
		d.logger.WarnContext(ctx, "log email not sent", "to", to, "path", file.Path, "error", err)
		return
	}
	report.Sent++
}

// readLogFile re-checks the file before reading, since it may have been removed
// after discovery. The content is returned unmodified.
func readLogFile(file model.LogFile) (string, *model.Warning) {
	info, err := os.Stat(file.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &model.Warning{Kind: model.WarningFileDisappeared, Path: file.Path, Err: err}
	}
	if err != nil {
		return "", &model.Warning{Kind: model.WarningFileUnreadable, Path: file.Path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return "", &model.Warning{
			Kind: model.WarningFileUnreadable,
			Path: file.Path,
			Err:  fmt.Errorf("%s is not a regular file", file.Path),
		}
	}

	b, err := os.ReadFile(file.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &model.Warning{Kind: model.WarningFileDisappeared, Path: file.Path, Err: err}
	}
	if err != nil {
		return "", &model.Warning{Kind: model.WarningFileUnreadable, Path: file.Path, Err: err}
	}
	return string(b), nil
}
