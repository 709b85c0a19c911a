// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services without embedding business logic so transport concerns remain
// isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"opsgate/internal/platform/health"
	"opsgate/internal/platform/metrics"
	"opsgate/internal/platform/middleware"
)

// RouterConfig carries the dependencies the router wires together.
type RouterConfig struct {
	Auth      AuthService
	LoginLogs LoginLogService

	TokenValidator middleware.TokenValidator
	Revocation     middleware.RevocationChecker

	Health  *health.Handler
	Metrics *metrics.Metrics

	// MaintenanceToken guards DELETE /auth/login-logs. Empty disables the
	// endpoint entirely.
	MaintenanceToken string

	Logger *slog.Logger
}

// NewRouter wires all endpoints with the middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authHandler := NewAuthHandler(cfg.Auth, logger)
	logHandler := NewLoginLogHandler(cfg.LoginLogs, logger)

	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	if cfg.Metrics != nil {
		r.Use(middleware.Latency(cfg.Metrics))
	}
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.ClientMetadata)

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Login is the only unauthenticated business endpoint. Logout and
	// refresh carry a bearer token but deliberately bypass RequireAuth:
	// both must accept tokens the middleware would reject (expired ones,
	// within limits the service enforces).
	r.Post("/auth/login", authHandler.HandleLogin)
	r.Post("/auth/logout", authHandler.HandleLogout)
	r.Post("/auth/refresh", authHandler.HandleRefresh)

	var authMetrics middleware.AuthMetrics
	if cfg.Metrics != nil {
		authMetrics = cfg.Metrics
	}
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.TokenValidator, cfg.Revocation, logger, authMetrics))

		r.Get("/auth/info", authHandler.HandleUserInfo)
		r.Put("/auth/profile", authHandler.HandleUpdateProfile)
		r.Put("/auth/password", authHandler.HandleChangePassword)

		r.Get("/auth/login-logs", logHandler.HandleList)
		r.Get("/auth/login-logs/{id}", logHandler.HandleGet)
		r.With(middleware.RequireMaintenanceToken(cfg.MaintenanceToken, logger)).
			Delete("/auth/login-logs", logHandler.HandleClear)
	})

	return r
}
