package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/fatal-log-mailer/config"
	httpx "github.com/target/fatal-log-mailer/internal/http"
)

// HTTPServerConfig contains configuration for the ops HTTP server.
type HTTPServerConfig struct {
	HTTP     config.HTTPConfig
	DB       *sql.DB
	Services *ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler := buildHTTPHandler(logger, routerServices(cfg))
	return startServer(logger, handler, cfg.HTTP.Addr)
}

func routerServices(cfg *HTTPServerConfig) httpx.RouterServices {
	var services httpx.RouterServices
	if cfg.DB != nil {
		services.Readiness = append(services.Readiness, httpx.ReadinessCheck{
			Name:  "database",
			Probe: cfg.DB.PingContext,
		})
	}
	if cfg.Services != nil && cfg.Services.Scheduler != nil {
		services.Readiness = append(services.Readiness, httpx.ReadinessCheck{
			Name:  "scheduler",
			Probe: cfg.Services.Scheduler.Available,
		})
		services.Triggers = cfg.Services.Scheduler
	}
	return services
}

func buildHTTPHandler(logger *slog.Logger, services httpx.RouterServices) http.Handler {
	// Order: Recover -> Logging -> Router
	var h http.Handler = httpx.NewRouter(services)
	h = httpx.Logging(logger)(h)
	h = httpx.Recover(logger)(h)
	return h
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
