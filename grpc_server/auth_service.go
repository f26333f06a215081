package grpcserver

import (
	"context"
	"errors"

	"recipe-api/auth"
	"recipe-api/services"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	AuthServiceName         = "receita.AuthService"
	AuthLoginMethod         = "/receita.AuthService/Login"
	AuthValidateTokenMethod = "/receita.AuthService/ValidateToken"
)

// AuthServiceServer is the server API for receita.AuthService.
type AuthServiceServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	ValidateToken(context.Context, *ValidateTokenRequest) (*ValidateTokenResponse, error)
}

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unary(AuthLoginMethod, AuthServiceServer.Login)},
		{MethodName: "ValidateToken", Handler: unary(AuthValidateTokenMethod, AuthServiceServer.ValidateToken)},
	},
	Streams: []grpc.StreamDesc{},
}

type authServiceServer struct {
	users         services.UserService
	authenticator *auth.Authenticator
}

func NewAuthServiceServer(users services.UserService, authenticator *auth.Authenticator) AuthServiceServer {
	return &authServiceServer{users: users, authenticator: authenticator}
}

func (s *authServiceServer) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			// Unsuccessful response, not an error.
			return &LoginResponse{Success: false, Message: "Invalid credentials"}, nil
		}
		return nil, status.Errorf(codes.Internal, "Database error: %v", err)
	}

	token, err := s.authenticator.Tokens().GenerateToken(user)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Could not generate token: %v", err)
	}
	return &LoginResponse{Success: true, Token: token}, nil
}

func (s *authServiceServer) ValidateToken(ctx context.Context, req *ValidateTokenRequest) (*ValidateTokenResponse, error) {
	claims, err := s.authenticator.Authenticate(ctx, req.Token)
	if err != nil {
		return &ValidateTokenResponse{Valid: false, Error: err.Error()}, nil
	}

	return &ValidateTokenResponse{
		Valid:  true,
		UserID: uint64(claims.UserID),
		Email:  claims.Email,
	}, nil
}

// AuthClient is the client API for receita.AuthService.
type AuthClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthClient(cc grpc.ClientConnInterface) *AuthClient {
	return &AuthClient{cc: cc}
}

func (c *AuthClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	out := new(LoginResponse)
	if err := invoke(ctx, c.cc, AuthLoginMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthClient) ValidateToken(ctx context.Context, in *ValidateTokenRequest, opts ...grpc.CallOption) (*ValidateTokenResponse, error) {
	out := new(ValidateTokenResponse)
	if err := invoke(ctx, c.cc, AuthValidateTokenMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
