package registry

import (
	"context"
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
)

// Instance describes one listener of this process.
type Instance struct {
	ID      string
	Name    string
	Address string
	Port    int
	Tags    []string
	Check   *consulapi.AgentServiceCheck
}

// InstanceID builds the conventional "<name>-<host>-<port>" instance id.
func InstanceID(name, host string, port int) string {
	return fmt.Sprintf("%s-%s-%d", name, host, port)
}

// Announce registers every instance and returns a func that deregisters
// them again. When one registration fails the ones already made are undone.
func Announce(ctx context.Context, r ServiceRegistry, instances ...Instance) (func(context.Context), error) {
	registered := make([]string, 0, len(instances))
	withdraw := func(ctx context.Context) {
		for _, id := range registered {
			// Deregister logs its own failures.
			_ = r.Deregister(ctx, id)
		}
	}

	for _, inst := range instances {
		if err := r.Register(ctx, inst.ID, inst.Name, inst.Address, inst.Port, inst.Tags, inst.Check); err != nil {
			withdraw(ctx)
			return nil, err
		}
		registered = append(registered, inst.ID)
	}
	return withdraw, nil
}
