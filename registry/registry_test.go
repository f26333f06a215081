package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAgent serves the handful of Consul agent endpoints the registry uses.
type fakeAgent struct {
	mu          sync.Mutex
	services    map[string]consulapi.AgentServiceRegistration
	failService string
}

func newFakeAgent(t *testing.T) (*fakeAgent, string) {
	t.Helper()
	agent := &fakeAgent{services: map[string]consulapi.AgentServiceRegistration{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/agent/self", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"Config": map[string]any{"NodeName": "test-node"}})
	})
	mux.HandleFunc("/v1/agent/service/register", func(w http.ResponseWriter, r *http.Request) {
		var reg consulapi.AgentServiceRegistration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		agent.mu.Lock()
		defer agent.mu.Unlock()
		if reg.Name == agent.failService {
			http.Error(w, "rejected", http.StatusInternalServerError)
			return
		}
		agent.services[reg.ID] = reg
	})
	mux.HandleFunc("/v1/agent/service/deregister/", func(w http.ResponseWriter, r *http.Request) {
		agent.mu.Lock()
		defer agent.mu.Unlock()
		delete(agent.services, strings.TrimPrefix(r.URL.Path, "/v1/agent/service/deregister/"))
	})
	mux.HandleFunc("/v1/health/service/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/v1/health/service/")
		agent.mu.Lock()
		defer agent.mu.Unlock()
		entries := []*consulapi.ServiceEntry{}
		for _, reg := range agent.services {
			if reg.Name != name {
				continue
			}
			entries = append(entries, &consulapi.ServiceEntry{
				Node:    &consulapi.Node{Address: "10.0.0.9"},
				Service: &consulapi.AgentService{ID: reg.ID, Service: reg.Name, Address: reg.Address, Port: reg.Port},
			})
		}
		w.Header().Set("X-Consul-LastContact", "0")
		_ = json.NewEncoder(w).Encode(entries)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return agent, strings.TrimPrefix(srv.URL, "http://")
}

func (a *fakeAgent) ids() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]string, 0, len(a.services))
	for id := range a.services {
		ids = append(ids, id)
	}
	return ids
}

func newTestRegistry(t *testing.T) (ServiceRegistry, *fakeAgent) {
	t.Helper()
	agent, addr := newFakeAgent(t)
	r, err := NewConsulRegistry(addr, zap.NewNop().Sugar())
	require.NoError(t, err)
	return r, agent
}

func TestNewConsulRegistryUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	_, err := NewConsulRegistry(addr, zap.NewNop().Sugar())
	assert.Error(t, err)
}

func TestRegisterDiscoverDeregister(t *testing.T) {
	r, agent := newTestRegistry(t)
	ctx := context.Background()

	check := CreateHTTPCheck("receita-api-1", "127.0.0.1", 8000, "/healthz", "10s", "1s")
	require.NoError(t, r.Register(ctx, "receita-api-1", "receita-api", "127.0.0.1", 8000, []string{"http"}, check))

	agent.mu.Lock()
	reg := agent.services["receita-api-1"]
	agent.mu.Unlock()
	assert.Equal(t, "http", reg.Meta["protocol"])
	require.NotNil(t, reg.Check)
	assert.Equal(t, "http://127.0.0.1:8000/healthz", reg.Check.HTTP)

	addrs, err := r.Discover(ctx, "receita-api", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1:8000"}, addrs)

	require.NoError(t, r.Deregister(ctx, "receita-api-1"))
	_, err = r.Discover(ctx, "receita-api", "")
	assert.ErrorIs(t, err, ErrNoInstances)
}

func TestDiscoverFallsBackToNodeAddress(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "grpc-1", "receita-api-grpc", "", 50051, nil, nil))

	addrs, err := r.Discover(ctx, "receita-api-grpc", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.9:50051"}, addrs)
}

func TestAnnounce(t *testing.T) {
	r, agent := newTestRegistry(t)
	ctx := context.Background()

	httpID := InstanceID("receita-api", "127.0.0.1", 8000)
	grpcID := InstanceID("receita-api-grpc", "127.0.0.1", 50051)
	assert.Equal(t, "receita-api-127.0.0.1-8000", httpID)

	withdraw, err := Announce(ctx, r,
		Instance{ID: httpID, Name: "receita-api", Address: "127.0.0.1", Port: 8000,
			Check: CreateHTTPCheck(httpID, "127.0.0.1", 8000, "/healthz", "10s", "1s")},
		Instance{ID: grpcID, Name: "receita-api-grpc", Address: "127.0.0.1", Port: 50051,
			Check: CreateGRPCCheck(grpcID, "127.0.0.1:50051", "10s", "1s", false)},
	)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{httpID, grpcID}, agent.ids())

	withdraw(ctx)
	assert.Empty(t, agent.ids())
}

func TestAnnounceRollsBackOnFailure(t *testing.T) {
	r, agent := newTestRegistry(t)
	agent.failService = "receita-api-grpc"

	_, err := Announce(context.Background(), r,
		Instance{ID: "http-1", Name: "receita-api", Address: "127.0.0.1", Port: 8000},
		Instance{ID: "grpc-1", Name: "receita-api-grpc", Address: "127.0.0.1", Port: 50051},
	)
	require.Error(t, err)
	assert.Empty(t, agent.ids())
}

func TestCreateGRPCCheck(t *testing.T) {
	check := CreateGRPCCheck("svc", "127.0.0.1:50051", "5s", "1s", true)
	assert.Equal(t, "check_svc_grpc", check.CheckID)
	assert.Equal(t, "127.0.0.1:50051", check.GRPC)
	assert.True(t, check.GRPCUseTLS)
	assert.Equal(t, "1m", check.DeregisterCriticalServiceAfter)
}
