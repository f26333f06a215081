package registry

import (
	"context"
	"errors"

	consulapi "github.com/hashicorp/consul/api"
)

// ErrNoInstances is returned by Discover when no healthy instance is known.
var ErrNoInstances = errors.New("no healthy instances")

// ServiceRegistry defines the interface for service registration and discovery.
type ServiceRegistry interface {
	// Register announces a service instance together with its health check.
	// id must be unique per instance, name is the logical service name.
	Register(ctx context.Context, id, name, address string, port int, tags []string, check *consulapi.AgentServiceCheck) error

	// Deregister removes a service instance using its unique ID.
	Deregister(ctx context.Context, id string) error

	// Discover finds healthy instances of a service by name and optional tag.
	// Returns a list of "host:port" strings.
	Discover(ctx context.Context, name, tag string) ([]string, error)
}
