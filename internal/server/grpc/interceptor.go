package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userKey ctxKey = "user"

// protectedMethods need an activated user behind a valid access token.
var protectedMethods = map[string]bool{
	FullMethod("Current"): true,
}

func metadataValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

// accessToken reads "access_token" metadata, falling back to an
// "authorization: Bearer" entry.
func accessToken(ctx context.Context) string {
	if t := metadataValue(ctx, common.AccessTokenHeaderName); t != "" {
		return t
	}
	scheme, token, ok := strings.Cut(metadataValue(ctx, "authorization"), " ")
	if ok && strings.EqualFold(scheme, common.TokenTypeBearer) {
		return strings.TrimSpace(token)
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if protectedMethods[info.FullMethod] {

		token := accessToken(ctx)
		if len(token) == 0 {
			return nil, toStatus(common.ErrInvalidToken)
		}

		user, err := s.sessions.ResolveAccessToken(ctx, token)
		if err != nil {
			return nil, s.fail(ctx, info.FullMethod, err)
		}

		ctx = context.WithValue(ctx, userKey, user)

	}

	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info(ctx, "grpc request",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}

func userFromContext(ctx context.Context) (*users.User, bool) {
	u, ok := ctx.Value(userKey).(*users.User)
	return u, ok && u != nil
}
