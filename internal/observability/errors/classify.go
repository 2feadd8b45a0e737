// Package errors turns arbitrary errors into short, bounded labels for metric tags and diagnostics.
package errors

import (
	"context"
	goerrors "errors"
	"io/fs"
	"net"
	"reflect"
	"strings"

	apperrors "github.com/target/fatal-log-mailer/internal/errors"
)

// Classify returns a low-cardinality label for err, or "" when err is nil.
// Well-known conditions get stable names; anything else falls back to the
// innermost concrete type in snake_case.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	case goerrors.Is(err, fs.ErrNotExist):
		return "file_not_found"
	case goerrors.Is(err, fs.ErrPermission):
		return "file_permission"
	}

	if code := apperrors.GetCode(err); code != "" {
		return "app_" + string(code)
	}

	var netErr net.Error
	if goerrors.As(err, &netErr) {
		if netErr.Timeout() {
			return "net_timeout"
		}
		return "net_error"
	}

	return typeName(innermost(err))
}

func innermost(err error) error {
	for {
		next := goerrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func typeName(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	name := strings.ToLower(strings.ReplaceAll(t.String(), ".", "_"))
	if name == "" {
		return "unknown"
	}
	return name
}
