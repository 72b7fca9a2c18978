package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"google.golang.org/grpc"
)

const ServiceName = "gophauth.v1.AuthService"

type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// RefreshRequest may leave RefreshToken empty and send it as
// "refresh_token" metadata instead.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type CurrentRequest struct{}

type UserResponse struct {
	Username string `json:"username"`
}

type ConfirmRequest struct {
	Token string `json:"token"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type Empty struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// AuthServiceServer is implemented by GRPCServer.
type AuthServiceServer interface {
	SignUp(context.Context, *SignUpRequest) (*auth.TokenCollection, error)
	SignIn(context.Context, *SignInRequest) (*auth.TokenCollection, error)
	Refresh(context.Context, *RefreshRequest) (*AccessTokenResponse, error)
	Current(context.Context, *CurrentRequest) (*UserResponse, error)
	Confirm(context.Context, *ConfirmRequest) (*Empty, error)
	RequestPasswordReset(context.Context, *RequestPasswordResetRequest) (*Empty, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*Empty, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// FullMethod returns the "/service/method" path of a method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary[Req any, Resp any](method string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(AuthServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

// AuthServiceDesc describes the service for grpc.Server.RegisterService.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SignUp", AuthServiceServer.SignUp),
		unary("SignIn", AuthServiceServer.SignIn),
		unary("Refresh", AuthServiceServer.Refresh),
		unary("Current", AuthServiceServer.Current),
		unary("Confirm", AuthServiceServer.Confirm),
		unary("RequestPasswordReset", AuthServiceServer.RequestPasswordReset),
		unary("ResetPassword", AuthServiceServer.ResetPassword),
		unary("Ping", AuthServiceServer.Ping),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterAuthServiceServer registers srv on s.
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}
