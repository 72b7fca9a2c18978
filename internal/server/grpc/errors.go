package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type codeMapping struct {
	err     error
	code    codes.Code
	message string
}

var codeMappings = []codeMapping{
	{common.ErrValidation, codes.InvalidArgument, ""},
	{common.ErrInvalidToken, codes.Unauthenticated, "invalid token"},
	{common.ErrRefreshTokenMissing, codes.Unauthenticated, "refresh token was not provided"},
	{common.ErrUserNotActivated, codes.Unauthenticated, "user is not activated"},
	{common.ErrWrongCredentials, codes.Unauthenticated, "wrong login or password"},
	{common.ErrUserAlreadyExists, codes.AlreadyExists, "user already exists"},
	{common.ErrUserNotExists, codes.NotFound, "user does not exist"},
	{common.ErrUserCreationFailed, codes.InvalidArgument, "user creation failed"},
}

// toStatus converts a service error into a gRPC status error.
func toStatus(err error) error {
	for _, m := range codeMappings {
		if errors.Is(err, m.err) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			return status.Error(m.code, msg)
		}
	}
	return status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) fail(ctx context.Context, method string, err error) error {
	st := toStatus(err)
	if status.Code(st) == codes.Internal {
		s.logger.Error(ctx, "request failed", "method", method, "error", err)
	} else {
		s.logger.Debug(ctx, "request rejected", "method", method, "error", err)
	}
	return st
}
