package registry

import (
	"context"
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

type consulRegistry struct {
	client *consulapi.Client
	logger *zap.SugaredLogger
}

// Ensure consulRegistry implements ServiceRegistry
var _ ServiceRegistry = (*consulRegistry)(nil)

// NewConsulRegistry creates a new registry backed by the Consul agent at
// address and checks the agent answers.
func NewConsulRegistry(address string, logger *zap.SugaredLogger) (ServiceRegistry, error) {
	consulConfig := consulapi.DefaultConfig()
	consulConfig.Address = address

	client, err := consulapi.NewClient(consulConfig)
	if err != nil {
		logger.Errorw("Failed to create Consul client", "address", address, "error", err)
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	node, err := client.Agent().NodeName()
	if err != nil {
		logger.Errorw("Failed to connect to Consul agent", "address", address, "error", err)
		return nil, fmt.Errorf("cannot connect to consul agent at %s: %w", address, err)
	}
	logger.Infow("Successfully connected to Consul agent", "address", address, "node", node)

	return &consulRegistry{
		client: client,
		logger: logger.Named("consul"),
	}, nil
}

// Register registers a service instance with Consul, including a health check.
func (r *consulRegistry) Register(ctx context.Context, id, name, address string, port int, tags []string, check *consulapi.AgentServiceCheck) error {
	reg := &consulapi.AgentServiceRegistration{
		ID:      id,
		Name:    name,
		Tags:    tags,
		Port:    port,
		Address: address,
		Check:   check,
	}
	if check != nil {
		reg.Meta = map[string]string{"protocol": checkProtocol(check)}
	}

	err := r.client.Agent().ServiceRegisterOpts(reg, consulapi.ServiceRegisterOpts{ReplaceExistingChecks: true}.WithContext(ctx))
	if err != nil {
		r.logger.Errorw("Failed to register service with Consul", "service_id", id, "service_name", name, "address", address, "port", port, "error", err)
		return fmt.Errorf("failed to register service '%s': %w", name, err)
	}
	r.logger.Infow("Successfully registered service with Consul", "service_id", id, "service_name", name, "address", address, "port", port)
	return nil
}

// Deregister removes a service instance from Consul.
func (r *consulRegistry) Deregister(ctx context.Context, id string) error {
	err := r.client.Agent().ServiceDeregisterOpts(id, (&consulapi.QueryOptions{}).WithContext(ctx))
	if err != nil {
		r.logger.Errorw("Failed to deregister service from Consul", "service_id", id, "error", err)
		return fmt.Errorf("failed to deregister service '%s': %w", id, err)
	}
	r.logger.Infow("Successfully deregistered service from Consul", "service_id", id)
	return nil
}

// Discover finds healthy instances of a service in Consul.
func (r *consulRegistry) Discover(ctx context.Context, name, tag string) ([]string, error) {
	instances, _, err := r.client.Health().Service(name, tag, true, (&consulapi.QueryOptions{}).WithContext(ctx))
	if err != nil {
		r.logger.Warnw("Failed to discover service from Consul", "service_name", name, "tag", tag, "error", err)
		return nil, fmt.Errorf("failed to discover service '%s': %w", name, err)
	}

	if len(instances) == 0 {
		r.logger.Warnw("No healthy instances found for service", "service_name", name, "tag", tag)
		return nil, fmt.Errorf("%w for service '%s'", ErrNoInstances, name)
	}

	addrs := make([]string, 0, len(instances))
	for _, inst := range instances {
		// Prefer Service.Address, fallback to Node.Address
		addr := inst.Service.Address
		if addr == "" && inst.Node != nil {
			addr = inst.Node.Address
		}
		addrs = append(addrs, fmt.Sprintf("%s:%d", addr, inst.Service.Port))
	}
	r.logger.Debugw("Discovered healthy service instances", "service_name", name, "tag", tag, "count", len(addrs), "addresses", addrs)
	return addrs, nil
}

func checkProtocol(check *consulapi.AgentServiceCheck) string {
	if check.GRPC != "" {
		return "grpc"
	}
	return "http"
}

// --- Helper functions to define specific Health Checks ---

// CreateHTTPCheck creates a Consul HTTP health check against
// http://serviceHost:servicePort/checkPath.
func CreateHTTPCheck(serviceID, serviceHost string, servicePort int, checkPath string, interval, timeout string) *consulapi.AgentServiceCheck {
	return &consulapi.AgentServiceCheck{
		CheckID:                        fmt.Sprintf("check_%s_http", serviceID),
		Name:                           fmt.Sprintf("HTTP Check for %s", serviceID),
		HTTP:                           fmt.Sprintf("http://%s:%d%s", serviceHost, servicePort, checkPath),
		Method:                         "GET",
		Interval:                       interval,
		Timeout:                        timeout,
		DeregisterCriticalServiceAfter: "1m",
	}
}

// CreateGRPCCheck creates a Consul check that calls the standard gRPC
// health service at grpcTarget.
func CreateGRPCCheck(serviceID, grpcTarget string, interval, timeout string, useTLS bool) *consulapi.AgentServiceCheck {
	return &consulapi.AgentServiceCheck{
		CheckID:                        fmt.Sprintf("check_%s_grpc", serviceID),
		Name:                           fmt.Sprintf("gRPC Check for %s", serviceID),
		GRPC:                           grpcTarget,
		GRPCUseTLS:                     useTLS,
		Interval:                       interval,
		Timeout:                        timeout,
		DeregisterCriticalServiceAfter: "1m",
	}
}
