package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/validation"
)

func (s *GRPCServer) SignUp(ctx context.Context, req *SignUpRequest) (*auth.TokenCollection, error) {

	in := validation.SignUpInput{Username: req.Username, Email: req.Email, Password: req.Password}
	coll, err := s.users.SignUp(ctx, in, s.baseURL)
	if err != nil {
		return nil, s.fail(ctx, "SignUp", err)
	}

	s.logger.Info(ctx, "Registered", "username", in.Normalize().Username)
	return coll, nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *SignInRequest) (*auth.TokenCollection, error) {

	login, err := validation.ParseLoginIdentifier(req.Login)
	if err != nil {
		return nil, s.fail(ctx, "SignIn", err)
	}

	coll, err := s.users.SignIn(ctx, login, req.Password)
	if err != nil {
		return nil, s.fail(ctx, "SignIn", err)
	}

	return coll, nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *RefreshRequest) (*AccessTokenResponse, error) {

	token := req.RefreshToken
	if token == "" {
		token = metadataValue(ctx, common.RefreshTokenCookieName)
	}
	if token == "" {
		return nil, s.fail(ctx, "Refresh", common.ErrRefreshTokenMissing)
	}

	access, err := s.sessions.RefreshAccessToken(ctx, token)
	if err != nil {
		return nil, s.fail(ctx, "Refresh", err)
	}

	return &AccessTokenResponse{AccessToken: access.Token}, nil
}

func (s *GRPCServer) Current(ctx context.Context, req *CurrentRequest) (*UserResponse, error) {

	user, ok := userFromContext(ctx)
	if !ok {
		return nil, toStatus(common.ErrInvalidToken)
	}

	return &UserResponse{Username: user.Public().Username}, nil
}

func (s *GRPCServer) Confirm(ctx context.Context, req *ConfirmRequest) (*Empty, error) {

	if req.Token == "" {
		return nil, s.fail(ctx, "Confirm", common.ErrInvalidToken)
	}

	if err := s.sessions.ActivateByToken(ctx, req.Token); err != nil {
		return nil, s.fail(ctx, "Confirm", err)
	}

	return &Empty{}, nil
}

func (s *GRPCServer) RequestPasswordReset(ctx context.Context, req *RequestPasswordResetRequest) (*Empty, error) {

	if err := s.users.RequestPasswordReset(ctx, strings.TrimSpace(req.Email), s.baseURL); err != nil {
		return nil, s.fail(ctx, "RequestPasswordReset", err)
	}

	return &Empty{}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *ResetPasswordRequest) (*Empty, error) {

	if req.Token == "" {
		return nil, s.fail(ctx, "ResetPassword", common.ErrInvalidToken)
	}

	if err := s.sessions.ResetPasswordByToken(ctx, req.Token, req.Password); err != nil {
		return nil, s.fail(ctx, "ResetPassword", err)
	}

	return &Empty{}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {

	return &PingResponse{Status: "OK"}, nil

}
