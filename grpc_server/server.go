package grpcserver

import (
	"recipe-api/auth"
	"recipe-api/interceptors"
	reg "recipe-api/registry"
	"recipe-api/services"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Deps wires the gRPC services to the application layer. Registry is
// optional; without it RegistryService is not served.
type Deps struct {
	Authenticator *auth.Authenticator
	Users         services.UserService
	Recipes       services.RecipeService
	Registry      reg.ServiceRegistry
	Logger        *zap.Logger
}

// publicMethods bypass the auth interceptor.
var publicMethods = []string{
	AuthLoginMethod,
	AuthValidateTokenMethod,
	RegistryDiscoverMethod,
	healthpb.Health_Check_FullMethodName,
	healthpb.Health_List_FullMethodName,
}

// Server is a grpc.Server with the receita services and the standard
// health service registered.
type Server struct {
	*grpc.Server
	health *health.Server
}

func NewServer(deps Deps, opts ...grpc.ServerOption) *Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		interceptors.ZapLoggingInterceptor(deps.Logger),
		interceptors.RecoveryInterceptor(deps.Logger),
		interceptors.AuthInterceptor(deps.Authenticator, publicMethods...),
	))
	s := &Server{
		Server: grpc.NewServer(opts...),
		health: health.NewServer(),
	}

	s.RegisterService(&AuthServiceDesc, NewAuthServiceServer(deps.Users, deps.Authenticator))
	s.RegisterService(&RecipeServiceDesc, NewRecipeServiceServer(deps.Recipes))
	names := []string{AuthServiceName, RecipeServiceName}
	if deps.Registry != nil {
		s.RegisterService(&RegistryServiceDesc, NewRegistryServiceServer(deps.Registry))
		names = append(names, RegistryServiceName)
	}

	healthpb.RegisterHealthServer(s.Server, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	for _, name := range names {
		s.health.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	return s
}

// GracefulStop reports NOT_SERVING to health watchers before draining.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.Server.GracefulStop()
}
