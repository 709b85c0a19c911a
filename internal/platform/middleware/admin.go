package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// RequireMaintenanceToken guards destructive maintenance endpoints with a
// shared secret carried in X-Maintenance-Token. It layers on top of
// RequireAuth: a valid admin session alone is not enough to, say, wipe the
// login logs.
func RequireMaintenanceToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Maintenance-Token")
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "maintenance token mismatch",
					"request_id", GetRequestID(ctx),
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"code":403,"message":"maintenance token required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
