package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/session"
	"github.com/dmitrijs2005/gophauth/internal/server/validation"
)

const maxBodyBytes = 1 << 20

// ProfilePath is where a confirmed user is redirected.
const ProfilePath = "/profile"

type signInRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// refreshRequest distinguishes an absent token (nil) from an empty one.
type refreshRequest struct {
	RefreshToken *string `json:"refresh_token"`
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// decodeJSON reads a JSON body into v. An empty body yields io.EOF.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return fmt.Errorf("%w: malformed request body", common.ErrValidation)
	}
	return nil
}

func decodeRequired(w http.ResponseWriter, r *http.Request, v any) error {
	err := decodeJSON(w, r, v)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: request body is empty", common.ErrValidation)
	}
	return err
}

// isHTTPS reports the scheme the client used. X-Forwarded-Proto is only
// consulted when the server runs behind a trusted proxy.
func (s *HTTPServer) isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return s.trustProxy && strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// baseURL is the configured public URL or, failing that, the URL the request
// was addressed to, always ending with a slash.
func (s *HTTPServer) baseURL(r *http.Request) string {
	if s.publicBaseURL != "" {
		return session.NormalizeBaseURL(s.publicBaseURL)
	}
	scheme := "http"
	if s.isHTTPS(r) {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in validation.SignUpInput
	if err := decodeRequired(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}

	coll, err := s.users.SignUp(r.Context(), in, s.baseURL(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	http.SetCookie(w, s.sessions.BuildRefreshCookie(coll.RefreshToken, s.isHTTPS(r)))
	writeJSON(w, http.StatusOK, coll)
}

func (s *HTTPServer) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var in signInRequest
	if err := decodeRequired(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}

	login, err := validation.ParseLoginIdentifier(in.Login)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	coll, err := s.users.SignIn(r.Context(), login, in.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	http.SetCookie(w, s.sessions.BuildRefreshCookie(coll.RefreshToken, s.isHTTPS(r)))
	writeJSON(w, http.StatusOK, coll)
}

func (s *HTTPServer) handleCurrent(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		s.fail(w, r, common.ErrInvalidToken)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// handleRefresh takes the refresh token from the body when one is given,
// otherwise from the cookie.
func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := decodeJSON(w, r, &in); err != nil && !errors.Is(err, io.EOF) {
		s.fail(w, r, err)
		return
	}

	var token string
	if in.RefreshToken != nil {
		token = *in.RefreshToken
	} else if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil && c.Value != "" {
		token = c.Value
	} else {
		s.fail(w, r, common.ErrRefreshTokenMissing)
		return
	}

	access, err := s.sessions.RefreshAccessToken(r.Context(), token)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: access.Token})
}

func (s *HTTPServer) handleConfirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		s.fail(w, r, common.ErrInvalidToken)
		return
	}

	if err := s.sessions.ActivateByToken(r.Context(), token); err != nil {
		s.fail(w, r, err)
		return
	}

	http.Redirect(w, r, ProfilePath, http.StatusSeeOther)
}

func (s *HTTPServer) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in forgotPasswordRequest
	if err := decodeRequired(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.users.RequestPasswordReset(r.Context(), strings.TrimSpace(in.Email), s.baseURL(r)); err != nil {
		s.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (s *HTTPServer) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var in resetPasswordRequest
	if err := decodeRequired(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if in.Token == "" {
		s.fail(w, r, common.ErrInvalidToken)
		return
	}

	if err := s.sessions.ResetPasswordByToken(r.Context(), in.Token, in.Password); err != nil {
		s.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
