// Package diagnostics fans harvest diagnostics out to the configured notification sinks.
package diagnostics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/target/fatal-log-mailer/internal/observability/notify"
)

// SinkRegistration pairs a sink implementation with a human-readable name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures the diagnostics notifier.
type Options struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration
}

// Service dispatches harvest diagnostics to all registered sinks.
type Service struct {
	logger *slog.Logger
	sinks  []SinkRegistration
}

// NewService constructs a diagnostics notifier. Nil sinks are dropped.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "diagnostics")
	}

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		name := entry.Name
		if name == "" {
			name = "sink"
		}
		sinks = append(sinks, SinkRegistration{Name: name, Sink: entry.Sink})
	}

	return &Service{logger: logger, sinks: sinks}
}

// Notify delivers payload to every sink concurrently and waits for all of them.
// Sink failures are logged; they never affect the harvest run.
func (s *Service) Notify(ctx context.Context, payload notify.HarvestDiagnostic) {
	if s == nil || len(s.sinks) == 0 {
		return
	}

	if payload.Severity == "" {
		payload.Severity = defaultSeverity(payload.Kind)
	}

	var wg sync.WaitGroup
	for _, entry := range s.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := entry.Sink.SendDiagnostic(ctx, payload); err != nil {
				s.logger.ErrorContext(ctx, "diagnostics delivery error",
					"sink", entry.Name,
					"run_id", payload.RunID,
					"kind", payload.Kind,
					"error", err,
				)
			}
		}()
	}
	wg.Wait()
}

// Enabled reports whether the notifier has any active sinks.
func (s *Service) Enabled() bool {
	return s != nil && len(s.sinks) > 0
}

func defaultSeverity(kind notify.DiagnosticKind) string {
	switch kind {
	case notify.DiagnosticRunFailed, notify.DiagnosticAllFilesUnreadable:
		return notify.SeverityCritical
	default:
		return notify.SeverityWarning
	}
}
