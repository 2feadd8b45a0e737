package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/fatal-log-mailer/internal/domain/model"
)

func TestResendMailer_Send(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_123"}`))
	}))
	defer srv.Close()

	m, err := NewResendMailer(ResendConfig{
		APIKey:  "re_test",
		From:    Sender{Address: "noreply@example.com", Name: "Log Mailer"},
		BaseURL: srv.URL + "/",
	})
	require.NoError(t, err)

	err = m.Send(context.Background(), model.EmailMessage{
		To:      "ops@example.com",
		Subject: "subject",
		Body:    "raw body",
	})
	require.NoError(t, err)

	assert.Equal(t, "Log Mailer <noreply@example.com>", got["from"])
	assert.Equal(t, []any{"ops@example.com"}, got["to"])
	assert.Equal(t, "subject", got["subject"])
	assert.Equal(t, "raw body", got["text"])
}

func TestResendMailer_SendError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"invalid from"}`))
	}))
	defer srv.Close()

	m, err := NewResendMailer(ResendConfig{
		APIKey:  "re_test",
		From:    Sender{Address: "noreply@example.com"},
		BaseURL: srv.URL + "/",
	})
	require.NoError(t, err)

	err = m.Send(context.Background(), model.EmailMessage{To: "ops@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resend send failed")
}

func TestNewResendMailer_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewResendMailer(ResendConfig{From: Sender{Address: "a@example.com"}})
	require.Error(t, err)
	_, err = NewResendMailer(ResendConfig{APIKey: "re_test"})
	require.Error(t, err)
	_, err = NewResendMailer(ResendConfig{APIKey: "re_test", From: Sender{Address: "a@example.com"}, BaseURL: "://bad"})
	require.Error(t, err)
}
