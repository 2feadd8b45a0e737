package diagnostics

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/fatal-log-mailer/internal/observability/notify"
)

func TestServiceNotify(t *testing.T) {
	ctx := context.Background()

	var (
		mu       sync.Mutex
		received []notify.HarvestDiagnostic
	)
	capture := notify.SinkFunc(func(_ context.Context, payload notify.HarvestDiagnostic) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, payload)
		return nil
	})

	svc := NewService(Options{
		Sinks: []SinkRegistration{
			{Name: "a", Sink: capture},
			{Name: "b", Sink: capture},
			{Name: "nil"},
		},
	})
	require.True(t, svc.Enabled())

	svc.Notify(ctx, notify.HarvestDiagnostic{RunID: "run-1", Kind: notify.DiagnosticNoRecipients})

	require.Len(t, received, 2)
	assert.Equal(t, notify.SeverityWarning, received[0].Severity)
	assert.Equal(t, "run-1", received[1].RunID)
}

func TestServiceDefaultSeverity(t *testing.T) {
	var got notify.HarvestDiagnostic
	svc := NewService(Options{Sinks: []SinkRegistration{{
		Sink: notify.SinkFunc(func(_ context.Context, payload notify.HarvestDiagnostic) error {
			got = payload
			return nil
		}),
	}}})

	svc.Notify(context.Background(), notify.HarvestDiagnostic{Kind: notify.DiagnosticAllFilesUnreadable})
	assert.Equal(t, notify.SeverityCritical, got.Severity)

	svc.Notify(context.Background(), notify.HarvestDiagnostic{
		Kind:     notify.DiagnosticRunFailed,
		Severity: notify.SeverityWarning,
	})
	assert.Equal(t, notify.SeverityWarning, got.Severity, "explicit severity is kept")
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(Options{})
	assert.False(t, svc.Enabled())
	svc.Notify(context.Background(), notify.HarvestDiagnostic{})

	var nilSvc *Service
	assert.False(t, nilSvc.Enabled())
	nilSvc.Notify(context.Background(), notify.HarvestDiagnostic{})
}

func TestServiceLogsErrors(t *testing.T) {
	svc := NewService(Options{Sinks: []SinkRegistration{{
		Name: "fail",
		Sink: notify.SinkFunc(func(context.Context, notify.HarvestDiagnostic) error {
			return errors.New("boom")
		}),
	}}})

	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), notify.HarvestDiagnostic{RunID: "run-1"})
	})
}
