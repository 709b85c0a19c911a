// Package httputil centralizes the response envelope used by every JSON
// endpoint. Responses carry a business code alongside the HTTP status so
// console clients built against the legacy numeric codes keep working:
//
//	{"code": 200, "message": "ok", "data": {...}}
//
// The business code is derived from the domain error code, the HTTP status
// from the business code.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "opsgate/pkg/domain-errors"
)

// Envelope is the uniform JSON response body.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Business codes carried in the envelope. 200-599 mirror HTTP semantics;
// the 7xx range distinguishes token and credential outcomes that all map to
// 401/403 at the HTTP layer.
const (
	BizOK              = 200
	BizBadRequest      = 400
	BizForbidden       = 403
	BizNotFound        = 404
	BizConflict        = 409
	BizLocked          = 423
	BizInternal        = 500
	BizTokenInvalid    = 701
	BizTokenExpired    = 702
	BizAccountDisabled = 704
	BizBadCredentials  = 705
)

// WriteJSON writes an arbitrary JSON response body.
func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so encoding
	// errors are ignored.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteOK writes a success envelope with the given payload.
func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Code: BizOK, Message: "ok", Data: data})
}

// WriteError translates a domain error into the envelope and HTTP status.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		biz := BusinessCode(domainErr.Code)
		message := domainErr.Message
		if message == "" {
			message = string(domainErr.Code)
		}
		WriteJSON(w, HTTPStatus(biz), Envelope{Code: biz, Message: message})
		return
	}

	WriteJSON(w, http.StatusInternalServerError, Envelope{
		Code:    BizInternal,
		Message: "internal error",
	})
}

// BusinessCode translates a domain error code to the envelope business code.
func BusinessCode(code dErrors.Code) int {
	switch code {
	case dErrors.CodeTokenInvalid:
		return BizTokenInvalid
	case dErrors.CodeTokenExpired:
		return BizTokenExpired
	case dErrors.CodeAccountDisabled:
		return BizAccountDisabled
	case dErrors.CodeBadCredentials:
		return BizBadCredentials
	case dErrors.CodeAccountLocked:
		return BizLocked
	case dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return BizBadRequest
	case dErrors.CodeNotFound:
		return BizNotFound
	case dErrors.CodeConflict:
		return BizConflict
	case dErrors.CodeForbidden:
		return BizForbidden
	case dErrors.CodeUnauthorized:
		return BizTokenInvalid
	default:
		return BizInternal
	}
}

// HTTPStatus translates an envelope business code to the HTTP status code.
func HTTPStatus(biz int) int {
	switch biz {
	case BizOK:
		return http.StatusOK
	case BizBadRequest:
		return http.StatusBadRequest
	case BizForbidden, BizAccountDisabled:
		return http.StatusForbidden
	case BizNotFound:
		return http.StatusNotFound
	case BizConflict:
		return http.StatusConflict
	case BizLocked:
		return http.StatusLocked
	case BizTokenInvalid, BizTokenExpired, BizBadCredentials:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
