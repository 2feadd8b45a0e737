package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/fatal-log-mailer/internal/core"
	"github.com/target/fatal-log-mailer/internal/domain/model"
)

// Route is a named mail transport.
type Route struct {
	Name   string
	Mailer core.Mailer
}

// Router sends through the first route and falls back to the next ones on failure.
// Each message is delivered at most once: the first success stops the chain.
type Router struct {
	routes []Route
	logger *slog.Logger
}

var _ core.Mailer = (*Router)(nil)

// NewRouter builds a Router. Routes with a nil mailer are dropped.
func NewRouter(logger *slog.Logger, routes ...Route) (*Router, error) {
	var kept []Route
	for _, r := range routes {
		if r.Mailer != nil {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return nil, errors.New("at least one mail route is required")
	}
	if logger == nil {
		logger = slog.Default().With("component", "mail_router")
	}
	return &Router{routes: kept, logger: logger}, nil
}

// Routes returns the route names in order.
func (r *Router) Routes() []string {
	names := make([]string, len(r.routes))
	for i, route := range r.routes {
		names[i] = route.Name
	}
	return names
}

// Send tries each route in order.
func (r *Router) Send(ctx context.Context, msg model.EmailMessage) error {
	var errs []error
	for i, route := range r.routes {
		err := route.Mailer.Send(ctx, msg)
		if err == nil {
			if i > 0 {
				r.logger.InfoContext(ctx, "mail delivered by fallback route", "route", route.Name, "to", msg.To)
			}
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", route.Name, err))
		if ctx.Err() != nil {
			break
		}
		if i < len(r.routes)-1 {
			r.logger.WarnContext(ctx, "mail route failed; trying next", "route", route.Name, "error", err)
		}
	}
	return errors.Join(errs...)
}
