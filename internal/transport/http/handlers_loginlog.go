package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"opsgate/internal/loginlog"
	dErrors "opsgate/pkg/domain-errors"
	"opsgate/pkg/httputil"
)

// LoginLogService is the domain surface the login log handlers depend on.
//
//go:generate mockgen -source=handlers_loginlog.go -destination=mocks/mock_loginlog_service.go -package=mocks
type LoginLogService interface {
	List(ctx context.Context, q loginlog.Query) (*loginlog.Page, error)
	Get(ctx context.Context, id uuid.UUID) (*loginlog.Record, error)
	Clear(ctx context.Context) (int64, error)
}

// LoginLogHandler serves the /auth/login-logs endpoints.
type LoginLogHandler struct {
	logs   LoginLogService
	logger *slog.Logger
}

func NewLoginLogHandler(logs LoginLogService, logger *slog.Logger) *LoginLogHandler {
	return &LoginLogHandler{logs: logs, logger: logger}
}

func (h *LoginLogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q, err := parseLoginLogQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.logs.List(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, page)
}

func (h *LoginLogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "id must be a UUID"))
		return
	}

	record, err := h.logs.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, record)
}

type clearResponse struct {
	Removed int64 `json:"removed"`
}

func (h *LoginLogHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	removed, err := h.logs.Clear(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, clearResponse{Removed: removed})
}

// parseLoginLogQuery maps URL query parameters onto a loginlog.Query.
// Unknown parameters are ignored; malformed ones are rejected.
func parseLoginLogQuery(r *http.Request) (loginlog.Query, error) {
	values := r.URL.Query()
	q := loginlog.Query{
		Username: values.Get("username"),
		IP:       values.Get("ip"),
		Status:   loginlog.Status(values.Get("status")),
	}

	var err error
	if q.Page, err = intParam(values.Get("page")); err != nil {
		return q, dErrors.New(dErrors.CodeValidation, "page must be an integer")
	}
	if q.Size, err = intParam(values.Get("size")); err != nil {
		return q, dErrors.New(dErrors.CodeValidation, "size must be an integer")
	}
	if q.From, err = timeParam(values.Get("from")); err != nil {
		return q, dErrors.New(dErrors.CodeValidation, "from must be RFC 3339")
	}
	if q.To, err = timeParam(values.Get("to")); err != nil {
		return q, dErrors.New(dErrors.CodeValidation, "to must be RFC 3339")
	}
	return q, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func timeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
