package middleware

import (
	"context"
	"log/slog"
	"net/http"

	jwttoken "opsgate/internal/jwt_token"
	dErrors "opsgate/pkg/domain-errors"
)

// TokenValidator verifies access token signature and registered claims.
type TokenValidator interface {
	Validate(tokenString string) (*jwttoken.AccessTokenClaims, error)
}

// RevocationChecker reports whether a token JTI has been blacklisted.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMetrics counts rejected requests. Optional.
type AuthMetrics interface {
	CountAuthFailure()
}

// Context keys for authenticated request state.
type contextKeyAdminID struct{}
type contextKeyUsername struct{}
type contextKeyClaims struct{}
type contextKeyToken struct{}

// GetAdminID retrieves the authenticated admin ID from the context.
func GetAdminID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyAdminID{}).(string)
	return id
}

// GetUsername retrieves the authenticated username from the context.
func GetUsername(ctx context.Context) string {
	name, _ := ctx.Value(contextKeyUsername{}).(string)
	return name
}

// GetClaims retrieves the validated token claims from the context.
func GetClaims(ctx context.Context) *jwttoken.AccessTokenClaims {
	claims, _ := ctx.Value(contextKeyClaims{}).(*jwttoken.AccessTokenClaims)
	return claims
}

// GetToken retrieves the raw bearer token from the context.
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(contextKeyToken{}).(string)
	return token
}

// RequireAuth rejects requests without a valid, unrevoked bearer token.
// Validation runs in two phases: the stateless signature and expiry check
// first, then the stateful blacklist lookup. The validated claims and raw
// token are placed on the request context for handlers.
func RequireAuth(validator TokenValidator, revocation RevocationChecker, logger *slog.Logger, metrics AuthMetrics) func(http.Handler) http.Handler {
	reject := func(w http.ResponseWriter, body string) {
		if metrics != nil {
			metrics.CountAuthFailure()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(body))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := jwttoken.FromAuthHeader(r.Header.Get("Authorization"))
			if !ok {
				logger.WarnContext(ctx, "unauthorized access, missing bearer token",
					"request_id", GetRequestID(ctx),
					"path", r.URL.Path,
				)
				reject(w, `{"code":701,"message":"missing or malformed Authorization header"}`)
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access, invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				if dErrors.HasCode(err, dErrors.CodeTokenExpired) {
					reject(w, `{"code":702,"message":"token expired"}`)
				} else {
					reject(w, `{"code":701,"message":"token invalid"}`)
				}
				return
			}

			revoked, err := revocation.IsRevoked(ctx, claims.ID)
			if err != nil {
				logger.ErrorContext(ctx, "revocation check failed",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"code":500,"message":"failed to validate token"}`))
				return
			}
			if revoked {
				logger.WarnContext(ctx, "unauthorized access, token revoked",
					"jti", claims.ID,
					"request_id", GetRequestID(ctx),
				)
				reject(w, `{"code":701,"message":"token has been revoked"}`)
				return
			}

			ctx = context.WithValue(ctx, contextKeyAdminID{}, claims.AdminID)
			ctx = context.WithValue(ctx, contextKeyUsername{}, claims.Username)
			ctx = context.WithValue(ctx, contextKeyClaims{}, claims)
			ctx = context.WithValue(ctx, contextKeyToken{}, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
