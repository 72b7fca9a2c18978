package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// APIError is the body of every failed response.
type APIError struct {
	Code    string `json:"error_code"`
	Message string `json:"error_message"`
}

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// Checked in order; the first match wins.
var errorMappings = []errorMapping{
	{common.ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR", ""},
	{common.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN", "invalid token"},
	{common.ErrRefreshTokenMissing, http.StatusUnauthorized, "REFRESH_TOKEN_MISSING", "refresh token was not provided"},
	{common.ErrUserNotActivated, http.StatusUnauthorized, "USER_NOT_ACTIVATED", "user is not activated"},
	{common.ErrWrongCredentials, http.StatusUnauthorized, "WRONG_CREDENTIALS", "wrong login or password"},
	{common.ErrUserAlreadyExists, http.StatusConflict, "USER_ALREADY_EXISTS", "user already exists"},
	{common.ErrUserNotExists, http.StatusNotFound, "USER_NOT_EXISTS", "user does not exist"},
	{common.ErrUserCreationFailed, http.StatusBadRequest, "USER_CREATION_FAILED", "user creation failed"},
}

// statusFor maps a service error to an HTTP status and a public body. An
// empty mapping message means the error text itself is safe to show.
func statusFor(err error) (int, APIError) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			return m.status, APIError{Code: m.code, Message: msg}
		}
	}
	return http.StatusInternalServerError, APIError{Code: "INTERNAL_ERROR", Message: "internal error"}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIError{Code: code, Message: message})
}

// fail writes err as a response; server-side failures are logged.
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, body)
}
