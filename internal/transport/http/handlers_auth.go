package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	adminModels "opsgate/internal/admin/models"
	authModels "opsgate/internal/auth/models"
	jwttoken "opsgate/internal/jwt_token"
	"opsgate/internal/platform/middleware"
	dErrors "opsgate/pkg/domain-errors"
	"opsgate/pkg/httputil"
)

// AuthService is the domain surface the auth handlers depend on.
//
//go:generate mockgen -source=handlers_auth.go -destination=mocks/mock_auth_service.go -package=mocks
type AuthService interface {
	Login(ctx context.Context, req *adminModels.LoginRequest, clientIP, userAgent string) (*authModels.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Refresh(ctx context.Context, token string) (string, error)
	UserInfo(ctx context.Context, jti string) (*authModels.UserInfoResult, error)
	UpdateProfile(ctx context.Context, jti string, req *adminModels.UpdateProfileRequest) (*authModels.CachedAdmin, error)
	ChangePassword(ctx context.Context, claims *jwttoken.AccessTokenClaims, req *adminModels.ChangePasswordRequest) error
}

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// loginResponse shapes the login payload: the token metadata at the top
// level, the admin snapshot nested.
type loginResponse struct {
	Token     string                  `json:"token"`
	TokenType string                  `json:"token_type"`
	ExpiresIn int64                   `json:"expires_in"`
	Admin     *authModels.CachedAdmin `json:"admin"`
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[adminModels.LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.auth.Login(ctx, req, middleware.GetClientIP(ctx), middleware.GetUserAgent(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteOK(w, loginResponse{
		Token:     result.Token,
		TokenType: result.TokenType,
		ExpiresIn: int64(result.ExpiresIn.Seconds()),
		Admin:     result.Admin,
	})
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := jwttoken.FromAuthHeader(r.Header.Get("Authorization"))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeTokenInvalid, "missing bearer token"))
		return
	}

	if err := h.auth.Logout(ctx, token); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, nil)
}

// refreshResponse carries the replacement token.
type refreshResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := jwttoken.FromAuthHeader(r.Header.Get("Authorization"))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeTokenInvalid, "missing bearer token"))
		return
	}

	fresh, err := h.auth.Refresh(ctx, token)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, refreshResponse{Token: fresh, TokenType: "Bearer"})
}

func (h *AuthHandler) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims := middleware.GetClaims(ctx)
	if claims == nil {
		h.missingClaims(w, ctx)
		return
	}

	info, err := h.auth.UserInfo(ctx, claims.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, info)
}

func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	claims := middleware.GetClaims(ctx)
	if claims == nil {
		h.missingClaims(w, ctx)
		return
	}

	req, ok := httputil.DecodeJSON[adminModels.UpdateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	snapshot, err := h.auth.UpdateProfile(ctx, claims.ID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, snapshot)
}

func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	claims := middleware.GetClaims(ctx)
	if claims == nil {
		h.missingClaims(w, ctx)
		return
	}

	req, ok := httputil.DecodeJSON[adminModels.ChangePasswordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.auth.ChangePassword(ctx, claims, req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, nil)
}

func (h *AuthHandler) missingClaims(w http.ResponseWriter, ctx context.Context) {
	h.logger.ErrorContext(ctx, "claims missing from context despite auth middleware",
		"request_id", middleware.GetRequestID(ctx),
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
}
