package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	authModels "opsgate/internal/auth/models"
	"opsgate/internal/auth/store/revocation"
	jwttoken "opsgate/internal/jwt_token"
	"opsgate/internal/loginlog"
	"opsgate/internal/transport/http/mocks"
	dErrors "opsgate/pkg/domain-errors"
	"opsgate/pkg/httputil"
)

const testMaintenanceToken = "maintenance-secret"

type RouterSuite struct {
	suite.Suite

	ctrl      *gomock.Controller
	auth      *mocks.MockAuthService
	logs      *mocks.MockLoginLogService
	tokens    *jwttoken.Service
	blacklist *revocation.InMemoryBlacklist
	router    http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.auth = mocks.NewMockAuthService(s.ctrl)
	s.logs = mocks.NewMockLoginLogService(s.ctrl)
	s.tokens = jwttoken.NewService("test-signing-key", "opsgate", "opsgate-admin", time.Hour)
	s.blacklist = revocation.NewMemory()

	s.router = NewRouter(RouterConfig{
		Auth:             s.auth,
		LoginLogs:        s.logs,
		TokenValidator:   s.tokens,
		Revocation:       s.blacklist,
		MaintenanceToken: testMaintenanceToken,
	})
}

func (s *RouterSuite) do(method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) decode(rec *httptest.ResponseRecorder) httputil.Envelope {
	var env httputil.Envelope
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func (s *RouterSuite) bearer(username string) (string, *jwttoken.AccessTokenClaims) {
	token, _, err := s.tokens.Generate(uuid.New(), username)
	s.Require().NoError(err)
	claims, err := s.tokens.Validate(token)
	s.Require().NoError(err)
	return token, claims
}

func (s *RouterSuite) TestLoginSuccess() {
	result := &authModels.LoginResult{
		Token:     "signed.jwt.token",
		TokenType: "Bearer",
		ExpiresIn: 30 * time.Minute,
		Admin: &authModels.CachedAdmin{
			AdminID:  uuid.New(),
			Username: "alice",
			Roles:    []string{"auditor"},
		},
	}
	s.auth.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(result, nil)

	rec := s.do(http.MethodPost, "/auth/login", `{"username":"alice","password":"secret123"}`, nil)

	s.Equal(http.StatusOK, rec.Code)
	env := s.decode(rec)
	s.Equal(httputil.BizOK, env.Code)

	data, ok := env.Data.(map[string]any)
	s.Require().True(ok)
	s.Equal("signed.jwt.token", data["token"])
	s.Equal("Bearer", data["token_type"])
	s.Equal(float64(1800), data["expires_in"])
	s.NotNil(data["admin"])
}

func (s *RouterSuite) TestLoginBadCredentials() {
	s.auth.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeBadCredentials, "invalid username or password"))

	rec := s.do(http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong1234"}`, nil)

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(httputil.BizBadCredentials, s.decode(rec).Code)
}

func (s *RouterSuite) TestLoginLockedAccount() {
	s.auth.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeAccountLocked, "too many failed attempts"))

	rec := s.do(http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong1234"}`, nil)

	s.Equal(http.StatusLocked, rec.Code)
	s.Equal(httputil.BizLocked, s.decode(rec).Code)
}

func (s *RouterSuite) TestLoginDisabledAccount() {
	s.auth.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeAccountDisabled, "account disabled"))

	rec := s.do(http.MethodPost, "/auth/login", `{"username":"alice","password":"secret123"}`, nil)

	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal(httputil.BizAccountDisabled, s.decode(rec).Code)
}

func (s *RouterSuite) TestLoginMalformedBody() {
	rec := s.do(http.MethodPost, "/auth/login", `{"username":`, nil)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(httputil.BizBadRequest, s.decode(rec).Code)
}

func (s *RouterSuite) TestLoginWrongContentType() {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("username=alice"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusUnsupportedMediaType, rec.Code)
}

func (s *RouterSuite) TestLogout() {
	token, _ := s.bearer("alice")
	s.auth.EXPECT().Logout(gomock.Any(), token).Return(nil)

	rec := s.do(http.MethodPost, "/auth/logout", "", map[string]string{
		"Authorization": "Bearer " + token,
	})

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(httputil.BizOK, s.decode(rec).Code)
}

func (s *RouterSuite) TestLogoutMissingToken() {
	rec := s.do(http.MethodPost, "/auth/logout", "", nil)

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(httputil.BizTokenInvalid, s.decode(rec).Code)
}

func (s *RouterSuite) TestRefresh() {
	token, _ := s.bearer("alice")
	s.auth.EXPECT().Refresh(gomock.Any(), token).Return("fresh.jwt.token", nil)

	rec := s.do(http.MethodPost, "/auth/refresh", "", map[string]string{
		"Authorization": "Bearer " + token,
	})

	s.Equal(http.StatusOK, rec.Code)
	env := s.decode(rec)
	s.Equal(httputil.BizOK, env.Code)

	data, ok := env.Data.(map[string]any)
	s.Require().True(ok)
	s.Equal("fresh.jwt.token", data["token"])
	s.Equal("Bearer", data["token_type"])
}

func (s *RouterSuite) TestRefreshBeyondGrace() {
	token, _ := s.bearer("alice")
	s.auth.EXPECT().Refresh(gomock.Any(), token).
		Return("", dErrors.New(dErrors.CodeTokenExpired, "token expired, log in again"))

	rec := s.do(http.MethodPost, "/auth/refresh", "", map[string]string{
		"Authorization": "Bearer " + token,
	})

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(httputil.BizTokenExpired, s.decode(rec).Code)
}

func (s *RouterSuite) TestUserInfo() {
	token, claims := s.bearer("alice")
	s.auth.EXPECT().UserInfo(gomock.Any(), claims.ID).
		Return(&authModels.UserInfoResult{Username: "alice"}, nil)

	rec := s.do(http.MethodGet, "/auth/info", "", map[string]string{
		"Authorization": "Bearer " + token,
	})

	s.Equal(http.StatusOK, rec.Code)
	env := s.decode(rec)
	s.Equal(httputil.BizOK, env.Code)

	data, ok := env.Data.(map[string]any)
	s.Require().True(ok)
	s.Equal("alice", data["username"])
}

func (s *RouterSuite) TestUserInfoRequiresAuth() {
	rec := s.do(http.MethodGet, "/auth/info", "", nil)

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(httputil.BizTokenInvalid, s.decode(rec).Code)
}

func (s *RouterSuite) TestUserInfoRejectsRevokedToken() {
	token, claims := s.bearer("alice")
	s.Require().NoError(s.blacklist.Revoke(context.Background(), claims.ID, time.Hour))

	rec := s.do(http.MethodGet, "/auth/info", "", map[string]string{
		"Authorization": "Bearer " + token,
	})

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(httputil.BizTokenInvalid, s.decode(rec).Code)
}

func (s *RouterSuite) TestUpdateProfileConflict() {
	token, claims := s.bearer("alice")
	s.auth.EXPECT().UpdateProfile(gomock.Any(), claims.ID, gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeConflict, "email already in use"))

	rec := s.do(http.MethodPut, "/auth/profile", `{"email":"taken@example.com"}`, map[string]string{
		"Authorization": "Bearer " + token,
	})

	s.Equal(http.StatusConflict, rec.Code)
	s.Equal(httputil.BizConflict, s.decode(rec).Code)
}

func (s *RouterSuite) TestChangePassword() {
	token, _ := s.bearer("alice")
	s.auth.EXPECT().ChangePassword(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	body := `{"old_password":"old-secret","new_password":"new-secret-1","confirm_password":"new-secret-1"}`
	rec := s.do(http.MethodPut, "/auth/password", body, map[string]string{
		"Authorization": "Bearer " + token,
	})

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(httputil.BizOK, s.decode(rec).Code)
}

func (s *RouterSuite) TestListLoginLogsForwardsFilters() {
	token, _ := s.bearer("alice")

	var captured loginlog.Query
	s.logs.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, q loginlog.Query) (*loginlog.Page, error) {
			captured = q
			return &loginlog.Page{Page: 2, Size: 10, Items: []*loginlog.Record{}}, nil
		})

	rec := s.do(http.MethodGet,
		"/auth/login-logs?username=alice&status=failed&page=2&size=10&from=2026-03-01T00:00:00Z",
		"", map[string]string{"Authorization": "Bearer " + token})

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("alice", captured.Username)
	s.Equal(loginlog.StatusFailed, captured.Status)
	s.Equal(2, captured.Page)
	s.Equal(10, captured.Size)
	s.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), captured.From.UTC())
}

func (s *RouterSuite) TestListLoginLogsRejectsBadPage() {
	token, _ := s.bearer("alice")

	rec := s.do(http.MethodGet, "/auth/login-logs?page=abc", "", map[string]string{
		"Authorization": "Bearer " + token,
	})

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(httputil.BizBadRequest, s.decode(rec).Code)
}

func (s *RouterSuite) TestListLoginLogsRejectsBadTimestamp() {
	token, _ := s.bearer("alice")

	rec := s.do(http.MethodGet, "/auth/login-logs?from=yesterday", "", map[string]string{
		"Authorization": "Bearer " + token,
	})

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(httputil.BizBadRequest, s.decode(rec).Code)
}

func (s *RouterSuite) TestGetLoginLog() {
	token, _ := s.bearer("alice")
	id := uuid.New()
	s.logs.EXPECT().Get(gomock.Any(), id).
		Return(&loginlog.Record{ID: id, Username: "alice"}, nil)

	rec := s.do(http.MethodGet, "/auth/login-logs/"+id.String(), "", map[string]string{
		"Authorization": "Bearer " + token,
	})

	s.Equal(http.StatusOK, rec.Code)
	env := s.decode(rec)
	s.Equal(httputil.BizOK, env.Code)
}

func (s *RouterSuite) TestGetLoginLogRejectsBadID() {
	token, _ := s.bearer("alice")

	rec := s.do(http.MethodGet, "/auth/login-logs/not-a-uuid", "", map[string]string{
		"Authorization": "Bearer " + token,
	})

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(httputil.BizBadRequest, s.decode(rec).Code)
}

func (s *RouterSuite) TestGetLoginLogNotFound() {
	token, _ := s.bearer("alice")
	id := uuid.New()
	s.logs.EXPECT().Get(gomock.Any(), id).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "login record not found"))

	rec := s.do(http.MethodGet, "/auth/login-logs/"+id.String(), "", map[string]string{
		"Authorization": "Bearer " + token,
	})

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(httputil.BizNotFound, s.decode(rec).Code)
}

func (s *RouterSuite) TestClearLoginLogs() {
	token, _ := s.bearer("alice")
	s.logs.EXPECT().Clear(gomock.Any()).Return(int64(42), nil)

	rec := s.do(http.MethodDelete, "/auth/login-logs", "", map[string]string{
		"Authorization":       "Bearer " + token,
		"X-Maintenance-Token": testMaintenanceToken,
	})

	s.Equal(http.StatusOK, rec.Code)
	env := s.decode(rec)
	s.Equal(httputil.BizOK, env.Code)

	data, ok := env.Data.(map[string]any)
	s.Require().True(ok)
	s.Equal(float64(42), data["removed"])
}

func (s *RouterSuite) TestClearLoginLogsRequiresMaintenanceToken() {
	token, _ := s.bearer("alice")

	rec := s.do(http.MethodDelete, "/auth/login-logs", "", map[string]string{
		"Authorization": "Bearer " + token,
	})

	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal(httputil.BizForbidden, s.decode(rec).Code)
}

func TestParseLoginLogQueryDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/auth/login-logs", nil)
	q, err := parseLoginLogQuery(req)
	require.NoError(t, err)
	require.Empty(t, q.Username)
	require.Zero(t, q.Page)
	require.True(t, q.From.IsZero())
}
