package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/target/fatal-log-mailer/internal/core"
	"github.com/target/fatal-log-mailer/internal/domain"
	"github.com/target/fatal-log-mailer/internal/domain/model"
	obserrors "github.com/target/fatal-log-mailer/internal/observability/errors"
	"github.com/target/fatal-log-mailer/internal/observability/metrics"
	"github.com/target/fatal-log-mailer/internal/observability/notify"
	"github.com/target/fatal-log-mailer/internal/observability/statsd"
)

// Trigger labels for harvest runs.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// DiagnosticsNotifier receives a diagnostic when a run delivers nothing or fails.
type DiagnosticsNotifier interface {
	Notify(ctx context.Context, payload notify.HarvestDiagnostic)
}

// HarvestJobConfig carries per-deployment knobs for HarvestJob.
type HarvestJobConfig struct {
	// SiteName is used in subjects. When blank the site title setting is read per run.
	SiteName string
	// Location decides which calendar day "yesterday" is.
	Location *time.Location
	// NotifyNoLogFiles also reports days on which no log file was found.
	NotifyNoLogFiles bool
}

// HarvestJobOptions groups dependencies for HarvestJob.
type HarvestJobOptions struct {
	Resolver    *RecipientResolver      // Required
	Locator     *LogLocator             // Required
	Dispatcher  *NotificationDispatcher // Required
	Settings    core.SettingsStore      // Optional: site title lookup
	Diagnostics DiagnosticsNotifier     // Optional
	Metrics     statsd.Sink             // Optional
	Config      HarvestJobConfig
	Logger      *slog.Logger
}

// HarvestJob mails yesterday's fatal-error logs. It is the handler for the harvest trigger.
type HarvestJob struct {
	resolver    *RecipientResolver
	locator     *LogLocator
	dispatcher  *NotificationDispatcher
	settings    core.SettingsStore
	diagnostics DiagnosticsNotifier
	metrics     statsd.Sink
	cfg         HarvestJobConfig
	logger      *slog.Logger
	newRunID    func() string
}

var _ core.ActionHandler = (*HarvestJob)(nil)

// NewHarvestJob constructs a HarvestJob.
func NewHarvestJob(opts HarvestJobOptions) *HarvestJob {
	if opts.Resolver == nil || opts.Locator == nil || opts.Dispatcher == nil {
		panic("HarvestJob requires a resolver, locator and dispatcher")
	}
	if opts.Config.Location == nil {
		opts.Config.Location = time.UTC
	}
	if opts.Metrics == nil {
		opts.Metrics = statsd.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "harvest_job")
	}
	return &HarvestJob{
		resolver:    opts.Resolver,
		locator:     opts.Locator,
		dispatcher:  opts.Dispatcher,
		settings:    opts.Settings,
		diagnostics: opts.Diagnostics,
		metrics:     opts.Metrics,
		cfg:         opts.Config,
		logger:      opts.Logger,
		newRunID:    uuid.NewString,
	}
}

// Handle runs the harvest for a scheduler firing.
func (j *HarvestJob) Handle(ctx context.Context, fire domain.Fire) error {
	now := fire.FiredAt
	if now.IsZero() {
		now = time.Now()
	}
	_, err := j.run(ctx, j.dateFor(now), TriggerSchedule)
	return err
}

// Run harvests the logs for the day before now.
func (j *HarvestJob) Run(ctx context.Context, now time.Time) (*model.DispatchReport, error) {
	return j.run(ctx, j.dateFor(now), TriggerManual)
}

// RunDate harvests the logs for an explicit YYYY-MM-DD date.
func (j *HarvestJob) RunDate(ctx context.Context, date string) (*model.DispatchReport, error) {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
	}
	return j.run(ctx, date, TriggerManual)
}

func (j *HarvestJob) dateFor(now time.Time) string {
	return domain.DateStamp(domain.PreviousDay(now, j.cfg.Location))
}

func (j *HarvestJob) run(ctx context.Context, date, trigger string) (*model.DispatchReport, error) {
	runID := j.newRunID()
	logger := j.logger.With("run_id", runID, "date", date, "trigger", trigger)
	started := time.Now()

	site := j.siteName(ctx, logger)

	files, err := j.locator.Find(ctx, date)
	if err != nil {
		return j.fail(ctx, logger, runID, date, site, started, trigger, fmt.Errorf("locate logs: %w", err))
	}
	recipients, err := j.resolver.Resolve(ctx)
	if err != nil {
		return j.fail(ctx, logger, runID, date, site, started, trigger, fmt.Errorf("resolve recipients: %w", err))
	}

	report, dispatchErr := j.dispatcher.Dispatch(ctx, DispatchRequest{
		RunID:      runID,
		Date:       date,
		SiteName:   site,
		Recipients: recipients.Addresses,
		Files:      files,
	})
	report.StartedAt = started
	prependRunWarnings(report, recipients, files)

	logger.InfoContext(ctx, "harvest run finished",
		"recipient_source", recipients.Source,
		"recipients", report.Recipients,
		"files", report.Files,
		"attempted", report.Attempted,
		"sent", report.Sent,
		"warnings", len(report.Warnings),
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	for _, w := range report.Warnings {
		logger.DebugContext(ctx, "harvest warning", "warning", w.Message())
	}

	metrics.EmitHarvestRun(j.metrics, metrics.HarvestRun{Report: report, Err: dispatchErr, Trigger: trigger})

	if dispatchErr != nil {
		j.notify(ctx, diagnosticFor(report, site, notify.DiagnosticRunFailed, dispatchErr))
		return report, fmt.Errorf("dispatch: %w", dispatchErr)
	}
	if kind, ok := j.silentKind(report); ok {
		j.notify(ctx, diagnosticFor(report, site, kind, nil))
	}
	return report, nil
}

func (j *HarvestJob) fail(
	ctx context.Context,
	logger *slog.Logger,
	runID, date, site string,
	started time.Time,
	trigger string,
	err error,
) (*model.DispatchReport, error) {
	report := &model.DispatchReport{RunID: runID, Date: date, StartedAt: started, FinishedAt: time.Now()}
	logger.ErrorContext(ctx, "harvest run failed", "error", err)
	metrics.EmitHarvestRun(j.metrics, metrics.HarvestRun{Report: report, Err: err, Trigger: trigger})
	j.notify(ctx, diagnosticFor(report, site, notify.DiagnosticRunFailed, err))
	return report, err
}

// silentKind picks the diagnostic for a run that delivered nothing.
func (j *HarvestJob) silentKind(r *model.DispatchReport) (notify.DiagnosticKind, bool) {
	switch {
	case r.Recipients == 0:
		return notify.DiagnosticNoRecipients, true
	case r.Files == 0:
		return notify.DiagnosticNoLogFiles, j.cfg.NotifyNoLogFiles
	case r.AllFilesUnreadable():
		return notify.DiagnosticAllFilesUnreadable, true
	default:
		return "", false
	}
}

func (j *HarvestJob) notify(ctx context.Context, payload notify.HarvestDiagnostic) {
	if j.diagnostics == nil {
		return
	}
	j.diagnostics.Notify(ctx, payload)
}

func (j *HarvestJob) siteName(ctx context.Context, logger *slog.Logger) string {
	if j.cfg.SiteName != "" || j.settings == nil {
		return j.cfg.SiteName
	}
	raw, err := j.settings.Get(ctx, model.SettingsKeySiteName)
	if err != nil {
		logger.WarnContext(ctx, "read site title failed", "error", err)
		return ""
	}
	var name string
	if len(raw) > 0 && json.Unmarshal(raw, &name) == nil {
		return strings.TrimSpace(name)
	}
	return ""
}

// prependRunWarnings records resolution-level conditions ahead of the per-pair warnings.
func prependRunWarnings(report *model.DispatchReport, recipients model.RecipientList, files []model.LogFile) {
	var pre []model.Warning
	for _, addr := range recipients.Rejected {
		pre = append(pre, model.Warning{Kind: model.WarningInvalidRecipient, Recipient: addr})
	}
	if recipients.Empty() {
		pre = append(pre, model.Warning{Kind: model.WarningNoRecipients})
	}
	if len(files) == 0 {
		pre = append(pre, model.Warning{Kind: model.WarningNoLogFiles})
	}
	if len(pre) > 0 {
		report.Warnings = append(pre, report.Warnings...)
	}
}

func diagnosticFor(r *model.DispatchReport, site string, kind notify.DiagnosticKind, err error) notify.HarvestDiagnostic {
	d := notify.HarvestDiagnostic{
		RunID:      r.RunID,
		Kind:       kind,
		Date:       r.Date,
		SiteName:   site,
		Recipients: r.Recipients,
		Files:      r.Files,
		Sent:       r.Sent,
		OccurredAt: r.FinishedAt,
	}
	if err != nil {
		d.Error = err.Error()
		d.ErrorClass = obserrors.Classify(err)
	}
	for _, w := range r.Warnings {
		d.Warnings = append(d.Warnings, w.Message())
	}
	return d
}
