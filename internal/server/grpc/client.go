package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"google.golang.org/grpc"
)

// AuthClient calls the service over an existing connection using the JSON
// codec.
type AuthClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthClient(cc grpc.ClientConnInterface) *AuthClient {
	return &AuthClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *AuthClient, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*auth.TokenCollection, error) {
	return invoke[auth.TokenCollection](ctx, c, "SignUp", in, opts)
}

func (c *AuthClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*auth.TokenCollection, error) {
	return invoke[auth.TokenCollection](ctx, c, "SignIn", in, opts)
}

func (c *AuthClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*AccessTokenResponse, error) {
	return invoke[AccessTokenResponse](ctx, c, "Refresh", in, opts)
}

func (c *AuthClient) Current(ctx context.Context, in *CurrentRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, "Current", in, opts)
}

func (c *AuthClient) Confirm(ctx context.Context, in *ConfirmRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "Confirm", in, opts)
}

func (c *AuthClient) RequestPasswordReset(ctx context.Context, in *RequestPasswordResetRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "RequestPasswordReset", in, opts)
}

func (c *AuthClient) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "ResetPassword", in, opts)
}

func (c *AuthClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c, "Ping", in, opts)
}
