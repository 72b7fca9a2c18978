// Package auth issues and verifies the signed, typed tokens used by the
// server: access, refresh, email confirmation and password reset.
//
// Tokens are stateless JWTs signed with an asymmetric key pair. Validity is
// purely a function of the signature, the pinned algorithm and the "exp"
// claim; nothing is stored server side.
package auth

import (
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType is the "typ" claim.
type TokenType string

const (
	TokenTypeAccess        TokenType = "access"
	TokenTypeRefresh       TokenType = "refresh"
	TokenTypeEmailConfirm  TokenType = "email_confirm"
	TokenTypeResetPassword TokenType = "reset_password"
)

// Valid reports whether t is one of the known token types.
func (t TokenType) Valid() bool {
	switch t {
	case TokenTypeAccess, TokenTypeRefresh, TokenTypeEmailConfirm, TokenTypeResetPassword:
		return true
	}
	return false
}

// Claims is the token payload. The registered claims carry jti, iat, exp and
// sub; Type and RefreshID are private claims.
type Claims struct {
	Type TokenType `json:"typ"`
	// RefreshID links an access token to the refresh token that authorized
	// it. Empty for every other token.
	RefreshID string `json:"rjti,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject. It only succeeds for positive integers.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("subject is not a positive integer")
	}
	return id, nil
}

// validate checks the claims the JWT library does not know about.
// It is called after signature and time checks succeeded.
func (c *Claims) validate() error {
	if !c.Type.Valid() {
		return errors.New("unknown token type")
	}
	if c.ID == "" {
		return errors.New("missing jti")
	}
	if c.IssuedAt == nil || c.ExpiresAt == nil {
		return errors.New("missing iat or exp")
	}
	if !c.ExpiresAt.After(c.IssuedAt.Time) {
		return errors.New("exp must be after iat")
	}
	if _, err := c.UserID(); err != nil {
		return err
	}
	return nil
}

// Token is a signed token together with its identifier.
type Token struct {
	Token string
	ID    string
}

// TokenCollection is what a successful sign-up or sign-in returns. The
// access token's RefreshID always equals the refresh token's ID.
type TokenCollection struct {
	Type         string `json:"type"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
