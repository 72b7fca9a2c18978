// Package session turns tokens into authenticated users and back: it
// resolves access tokens, mints new access tokens from refresh tokens,
// activates accounts and sends the e-mails carrying single-purpose tokens.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
	"github.com/dmitrijs2005/gophauth/internal/server/tasks"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
	"github.com/dmitrijs2005/gophauth/internal/server/validation"
)

// E-mail subjects.
const (
	SubjectEmailConfirm  = "Account confirmation"
	SubjectPasswordReset = "Password reset"
)

const (
	confirmPath = "api/auth/confirm"
	resetPath   = "reset-password"
)

// Scheduler runs work after the current request has been answered.
type Scheduler interface {
	Go(ctx context.Context, name string, fn tasks.Func)
}

// PasswordHasher produces the stored form of a password.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Manager struct {
	tokens    *auth.Factory
	users     users.Repository
	notifier  mailer.Notifier
	scheduler Scheduler
	hasher    PasswordHasher
	log       logging.Logger
}

func NewManager(
	tokens *auth.Factory,
	repo users.Repository,
	notifier mailer.Notifier,
	scheduler Scheduler,
	hasher PasswordHasher,
	log logging.Logger,
) *Manager {
	return &Manager{
		tokens:    tokens,
		users:     repo,
		notifier:  notifier,
		scheduler: scheduler,
		hasher:    hasher,
		log:       log.With("module", "session"),
	}
}

// Tokens exposes the factory the manager mints with.
func (m *Manager) Tokens() *auth.Factory {
	return m.tokens
}

// DecodeAndVerify decodes token and requires it to be of the expected type.
// All failures match common.ErrInvalidToken; the concrete reason is only
// logged.
func (m *Manager) DecodeAndVerify(ctx context.Context, token string, expected auth.TokenType) (*auth.Claims, error) {
	claims, err := m.tokens.Codec().Decode(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			m.log.Debug(ctx, "token expired", "expected_type", expected)
		} else {
			m.log.Debug(ctx, "token rejected", "expected_type", expected, "error", err)
		}
		return nil, err
	}

	if claims.Type != expected {
		m.log.Debug(ctx, "token of wrong type", "expected_type", expected, "type", claims.Type)
		return nil, fmt.Errorf("%w: expected %s token, got %s", common.ErrInvalidToken, expected, claims.Type)
	}

	return claims, nil
}

func (m *Manager) decodeUserID(ctx context.Context, token string, expected auth.TokenType) (*auth.Claims, int64, error) {
	claims, err := m.DecodeAndVerify(ctx, token, expected)
	if err != nil {
		return nil, 0, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return claims, id, nil
}

// ResolveAccessToken returns the activated user an access token belongs to.
// An unknown subject is reported as common.ErrInvalidToken, an inactive
// user as common.ErrUserNotActivated.
func (m *Manager) ResolveAccessToken(ctx context.Context, token string) (*users.User, error) {
	_, id, err := m.decodeUserID(ctx, token, auth.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	user, err := m.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			m.log.Debug(ctx, "access token subject not found", "user_id", id)
			return nil, fmt.Errorf("%w: unknown subject", common.ErrInvalidToken)
		}
		return nil, err
	}

	if !user.Activated {
		return nil, common.ErrUserNotActivated
	}

	return user, nil
}

// RefreshAccessToken mints a new access token chained to the presented
// refresh token. The refresh token itself is neither rotated nor revoked and
// the user's activation is not checked.
func (m *Manager) RefreshAccessToken(ctx context.Context, token string) (*auth.Token, error) {
	claims, id, err := m.decodeUserID(ctx, token, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	exists, err := m.users.ExistsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.ErrUserNotExists
	}

	return m.tokens.CreateAccessToken(id, claims.ID)
}

// ActivateByToken activates the user an e-mail confirmation token was issued
// for. Repeating it with the same unexpired token succeeds again.
func (m *Manager) ActivateByToken(ctx context.Context, token string) error {
	_, id, err := m.decodeUserID(ctx, token, auth.TokenTypeEmailConfirm)
	if err != nil {
		return err
	}

	if err := m.users.Activate(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotExists
		}
		return err
	}

	m.log.Info(ctx, "user activated", "user_id", id)
	return nil
}

// IssueConfirmationEmail mints an e-mail confirmation token and sends the
// confirmation link to email.
func (m *Manager) IssueConfirmationEmail(ctx context.Context, userID int64, email, baseURL string) error {
	tok, err := m.tokens.CreateEmailConfirmToken(userID)
	if err != nil {
		return err
	}

	base := NormalizeBaseURL(baseURL)
	return m.notifier.SendEmail(ctx, email, SubjectEmailConfirm, mailer.TemplateEmailConfirm, map[string]any{
		"base_url": base,
		"url":      linkWithToken(base, confirmPath, tok.Token),
	})
}

// ScheduleConfirmationEmail runs IssueConfirmationEmail in the background.
// Its outcome never reaches the caller.
func (m *Manager) ScheduleConfirmationEmail(ctx context.Context, userID int64, email, baseURL string) {
	m.scheduler.Go(ctx, "confirmation_email", func(ctx context.Context) error {
		return m.IssueConfirmationEmail(ctx, userID, email, baseURL)
	})
}

// IssuePasswordResetEmail mints a password reset token and sends the reset
// link to email.
func (m *Manager) IssuePasswordResetEmail(ctx context.Context, userID int64, email, baseURL string) error {
	tok, err := m.tokens.CreatePasswordResetToken(userID)
	if err != nil {
		return err
	}

	base := NormalizeBaseURL(baseURL)
	return m.notifier.SendEmail(ctx, email, SubjectPasswordReset, mailer.TemplatePasswordReset, map[string]any{
		"base_url": base,
		"url":      linkWithToken(base, resetPath, tok.Token),
	})
}

// SchedulePasswordResetEmail runs IssuePasswordResetEmail in the background.
func (m *Manager) SchedulePasswordResetEmail(ctx context.Context, userID int64, email, baseURL string) {
	m.scheduler.Go(ctx, "password_reset_email", func(ctx context.Context) error {
		return m.IssuePasswordResetEmail(ctx, userID, email, baseURL)
	})
}

// ResetPasswordByToken stores a new password for the user a reset token was
// issued for.
func (m *Manager) ResetPasswordByToken(ctx context.Context, token, newPassword string) error {
	_, id, err := m.decodeUserID(ctx, token, auth.TokenTypeResetPassword)
	if err != nil {
		return err
	}

	exists, err := m.users.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return common.ErrUserNotExists
	}

	if err := validation.Password(newPassword); err != nil {
		return err
	}

	hash, err := m.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if err := m.users.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotExists
		}
		return err
	}

	m.log.Info(ctx, "password reset", "user_id", id)
	return nil
}

// BuildRefreshCookie returns the cookie carrying a refresh token. Secure is
// set only when the request came over https; Max-Age is the refresh TTL.
func (m *Manager) BuildRefreshCookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.tokens.TTL().Refresh.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// NormalizeBaseURL makes sure base ends with a slash.
func NormalizeBaseURL(base string) string {
	if !strings.HasSuffix(base, "/") {
		return base + "/"
	}
	return base
}

func linkWithToken(base, path, token string) string {
	return base + path + "?token=" + url.QueryEscape(token)
}
