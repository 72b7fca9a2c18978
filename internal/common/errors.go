// Package common defines shared constants and sentinel errors used across
// the gophauth server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Token errors. An expired token matches both ErrInvalidToken and
	// ErrTokenExpired; transports only ever report the former.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenMissing = errors.New("refresh token not provided")

	// Account errors.
	ErrUserNotActivated   = errors.New("user is not activated")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotExists      = errors.New("user does not exist")
	ErrWrongCredentials   = errors.New("wrong login or password")
	ErrUserCreationFailed = errors.New("user creation failed")
)
