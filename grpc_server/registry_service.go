package grpcserver

import (
	"context"
	"errors"

	reg "recipe-api/registry"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	RegistryServiceName    = "receita.RegistryService"
	RegistryDiscoverMethod = "/receita.RegistryService/Discover"
)

// RegistryServiceServer is the server API for receita.RegistryService.
type RegistryServiceServer interface {
	Discover(context.Context, *DiscoverRequest) (*DiscoverResponse, error)
}

var RegistryServiceDesc = grpc.ServiceDesc{
	ServiceName: RegistryServiceName,
	HandlerType: (*RegistryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Discover", Handler: unary(RegistryDiscoverMethod, RegistryServiceServer.Discover)},
	},
	Streams: []grpc.StreamDesc{},
}

type registryServiceServer struct {
	registry reg.ServiceRegistry
}

func NewRegistryServiceServer(r reg.ServiceRegistry) RegistryServiceServer {
	return &registryServiceServer{registry: r}
}

// Discover returns the first healthy address of the named service.
func (s *registryServiceServer) Discover(ctx context.Context, req *DiscoverRequest) (*DiscoverResponse, error) {
	if req.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "Service name required")
	}

	addrs, err := s.registry.Discover(ctx, req.Name, "")
	if err != nil {
		if errors.Is(err, reg.ErrNoInstances) {
			return &DiscoverResponse{Found: false, Error: err.Error()}, nil
		}
		return nil, status.Errorf(codes.Internal, "Error discovering service '%s': %v", req.Name, err)
	}

	return &DiscoverResponse{Found: true, Address: addrs[0]}, nil
}

// RegistryClient is the client API for receita.RegistryService.
type RegistryClient struct {
	cc grpc.ClientConnInterface
}

func NewRegistryClient(cc grpc.ClientConnInterface) *RegistryClient {
	return &RegistryClient{cc: cc}
}

func (c *RegistryClient) Discover(ctx context.Context, in *DiscoverRequest, opts ...grpc.CallOption) (*DiscoverResponse, error) {
	out := new(DiscoverResponse)
	if err := invoke(ctx, c.cc, RegistryDiscoverMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
