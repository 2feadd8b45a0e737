//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// WarningKind classifies a recovered condition observed during a harvest run.
type WarningKind string

const (
	WarningNoRecipients     WarningKind = "no_recipients"
	WarningInvalidRecipient WarningKind = "invalid_recipient"
	WarningNoLogFiles       WarningKind = "no_log_files"
	WarningFileDisappeared  WarningKind = "file_disappeared"
	WarningFileUnreadable   WarningKind = "file_unreadable"
	WarningMailFailed       WarningKind = "mail_failed"
)

// Warning is a non-fatal condition. Delivery semantics do not change because of it.
type Warning struct {
	Kind      WarningKind
	Recipient string
	Path      string
	Err       error
}

// Message returns a printable description of the warning.
func (w Warning) Message() string {
	msg := string(w.Kind)
	if w.Recipient != "" {
		msg += " recipient=" + w.Recipient
	}
	if w.Path != "" {
		msg += " path=" + w.Path
	}
	if w.Err != nil {
		msg += ": " + w.Err.Error()
	}
	return msg
}

// DispatchReport summarises a harvest run.
type DispatchReport struct {
	RunID      string
	Date       string
	Recipients int
	Files      int
	// Attempted counts (recipient, file) pairs that reached the mailer.
	Attempted  int
	Sent       int
	Warnings   []Warning
	StartedAt  time.Time
	FinishedAt time.Time
}

// Warn appends a warning.
func (r *DispatchReport) Warn(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// Count returns the number of warnings of kind.
func (r *DispatchReport) Count(kind WarningKind) int {
	n := 0
	for _, w := range r.Warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// AllFilesUnreadable is true when files were matched but none could be read for any pair.
func (r *DispatchReport) AllFilesUnreadable() bool {
	if r.Files == 0 || r.Recipients == 0 {
		return false
	}
	return r.Attempted == 0
}

// DeliveredNothing reports whether the run produced no sent email.
func (r *DispatchReport) DeliveredNothing() bool {
	return r.Sent == 0
}
