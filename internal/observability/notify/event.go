// Package notify defines the diagnostics payload emitted when a harvest run delivers nothing,
// and the Sink contract that Slack and PagerDuty clients implement.
package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// DiagnosticKind classifies why a harvest run produced a diagnostic.
type DiagnosticKind string

const (
	DiagnosticNoRecipients       DiagnosticKind = "no_recipients"
	DiagnosticNoLogFiles         DiagnosticKind = "no_log_files"
	DiagnosticAllFilesUnreadable DiagnosticKind = "all_files_unreadable"
	DiagnosticRunFailed          DiagnosticKind = "run_failed"
)

// HarvestDiagnostic captures the canonical data we emit for a silent or failed harvest run.
type HarvestDiagnostic struct {
	RunID      string
	Kind       DiagnosticKind
	Date       string
	SiteName   string
	Severity   string
	Recipients int
	Files      int
	Sent       int
	Error      string
	ErrorClass string
	// Warnings holds human-readable warning lines collected during the run.
	Warnings   []string
	OccurredAt time.Time
	Metadata   map[string]string
}

// Sink describes a destination capable of consuming harvest diagnostics.
type Sink interface {
	SendDiagnostic(ctx context.Context, payload HarvestDiagnostic) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload HarvestDiagnostic) error

// SendDiagnostic implements the Sink interface.
func (f SinkFunc) SendDiagnostic(ctx context.Context, payload HarvestDiagnostic) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}
