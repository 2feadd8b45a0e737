package pagerduty

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/target/fatal-log-mailer/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when routing key missing")
	}
}

func TestBuildEventDefaults(t *testing.T) {
	client, err := NewClient(Config{RoutingKey: "key", Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	event := client.buildEvent(notify.HarvestDiagnostic{
		RunID:    "run-1",
		Kind:     notify.DiagnosticAllFilesUnreadable,
		Date:     "2024-03-09",
		SiteName: "Shop",
		Files:    3,
	})

	section, ok := event["payload"].(map[string]any)
	if !ok {
		t.Fatalf("expected payload section")
	}
	if section["severity"] != notify.SeverityWarning {
		t.Fatalf("expected default severity, got %v", section["severity"])
	}
	if section["source"] != "fatal-log-mailer" {
		t.Fatalf("expected default source, got %v", section["source"])
	}

	custom, ok := section["custom_details"].(map[string]any)
	if !ok {
		t.Fatalf("expected custom details")
	}
	for _, key := range []string{"run_id", "kind", "date", "site", "files"} {
		if _, exists := custom[key]; !exists {
			t.Fatalf("expected key %s in custom details", key)
		}
	}
	if _, exists := custom["error"]; exists {
		t.Fatalf("error should be omitted when empty")
	}

	if dedup := event["dedup_key"]; dedup != "Shop:2024-03-09:all_files_unreadable" {
		t.Fatalf("unexpected dedup key %v", dedup)
	}
}

func TestSendDiagnosticPostsEvent(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(Config{RoutingKey: "key", Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.SendDiagnostic(context.Background(), notify.HarvestDiagnostic{Kind: notify.DiagnosticRunFailed}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["routing_key"] != "key" || got["event_action"] != "trigger" {
		t.Fatalf("unexpected body %v", got)
	}
}
