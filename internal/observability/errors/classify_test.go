package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/target/fatal-log-mailer/internal/errors"
)

type smtpRejected struct{}

func (smtpRejected) Error() string { return "550 mailbox unavailable" }

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), "timeout"},
		{"canceled", context.Canceled, "canceled"},
		{"missing file", &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrNotExist}, "file_not_found"},
		{"permission", fmt.Errorf("read: %w", fs.ErrPermission), "file_permission"},
		{"app conflict", apperrors.Conflict("dup"), "app_conflict"},
		{"wrapped app error", fmt.Errorf("store: %w", apperrors.Unavailable("down")), "app_unavailable"},
		{"concrete type", fmt.Errorf("smtp: %w", smtpRejected{}), "errors_smtprejected"},
		{"plain", goerrors.New("boom"), "errors_errorstring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
