// Package services contains server-side business logic. This file implements
// UserService, which signs users up and in and starts the password reset
// flow. Token verification lives in package session.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/session"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
	"github.com/dmitrijs2005/gophauth/internal/server/validation"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

// UserService provides the credential operations:
//   - SignUp: create a user, send the confirmation e-mail, mint tokens
//   - SignIn: verify credentials and mint tokens
//   - RequestPasswordReset: e-mail a reset link to a known address
type UserService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	sessions    *session.Manager
	hasher      PasswordHasher
	log         logging.Logger

	// dummyHash is compared against when the login is unknown so both
	// failure paths cost one hash verification.
	dummyHash string
}

// NewUserService constructs a UserService on top of the repositories vended
// by m for db. It fails when hasher cannot produce the dummy hash.
func NewUserService(db dbx.DBTX, m repomanager.RepositoryManager, sessions *session.Manager, hasher PasswordHasher, log logging.Logger) (*UserService, error) {
	dummy, err := hasher.Hash("not-a-real-password-0")
	if err != nil {
		return nil, fmt.Errorf("dummy password hash: %w", err)
	}
	return &UserService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		hasher:      hasher,
		log:         log.With("module", "user_service"),
		dummyHash:   dummy,
	}, nil
}

func (s *UserService) users() users.Repository {
	return s.repomanager.Users(s.db)
}

// SignUp validates the credentials, rejects a taken e-mail or username
// before inserting, creates the user and returns a fresh token collection.
// The confirmation e-mail is sent in the background.
func (s *UserService) SignUp(ctx context.Context, in validation.SignUpInput, baseURL string) (*auth.TokenCollection, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	repo := s.users()

	taken, err := repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if !taken {
		taken, err = repo.ExistsByUsername(ctx, in.Username)
		if err != nil {
			return nil, fmt.Errorf("error checking username: %w", err)
		}
	}
	if taken {
		return nil, common.ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUserCreationFailed, err)
	}

	user := &users.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
	id, err := repo.Create(ctx, user)
	if err != nil {
		// a concurrent sign-up won the race past the existence checks
		if errors.Is(err, common.ErrUserAlreadyExists) {
			return nil, common.ErrUserAlreadyExists
		}
		s.log.Error(ctx, "user creation failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrUserCreationFailed, err)
	}

	s.log.Info(ctx, "user signed up", "user_id", id)
	s.sessions.ScheduleConfirmationEmail(ctx, id, user.Email, baseURL)

	return s.sessions.Tokens().CreateTokenCollection(id)
}

// SignIn looks the user up by e-mail or username and checks the password.
// Every mismatch is reported as common.ErrWrongCredentials.
func (s *UserService) SignIn(ctx context.Context, login validation.LoginIdentifier, password string) (*auth.TokenCollection, error) {
	user, err := s.lookup(ctx, login)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
		_, _ = s.hasher.Verify(s.dummyHash, password)
		return nil, common.ErrWrongCredentials
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		s.log.Error(ctx, "stored password hash is unusable", "user_id", user.ID, "error", err)
	}
	if !ok {
		return nil, common.ErrWrongCredentials
	}

	return s.sessions.Tokens().CreateTokenCollection(user.ID)
}

func (s *UserService) lookup(ctx context.Context, login validation.LoginIdentifier) (*users.User, error) {
	repo := s.users()
	switch login.Kind() {
	case validation.KindEmail:
		return repo.GetByEmail(ctx, login.Value())
	case validation.KindUsername:
		return repo.GetByUsername(ctx, login.Value())
	default:
		return nil, common.ErrorNotFound
	}
}

// RequestPasswordReset e-mails a reset link when email belongs to a user.
// The result does not depend on whether it does.
func (s *UserService) RequestPasswordReset(ctx context.Context, email, baseURL string) error {
	if err := validation.Email(email); err != nil {
		return err
	}

	user, err := s.users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Debug(ctx, "password reset for unknown email")
			return nil
		}
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.sessions.SchedulePasswordResetEmail(ctx, user.ID, user.Email, baseURL)
	return nil
}
