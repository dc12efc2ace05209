package transport

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// factories is a name-indexed set of constructors
type factories[F any] struct {
	kind string

	mu sync.RWMutex
	m  map[string]F
}

func newFactories[F any](kind string) *factories[F] {
	return &factories[F]{kind: kind, m: make(map[string]F)}
}

func (f *factories[F]) set(name string, factory F) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[name] = factory
}

func (f *factories[F]) get(name string) (F, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	factory, ok := f.m[name]
	if !ok {
		return factory, fmt.Errorf("%w: %s %q (available: %v)",
			ErrUnknownTransport, f.kind, name, slices.Sorted(maps.Keys(f.m)))
	}
	return factory, nil
}

func (f *factories[F]) names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Collect(maps.Keys(f.m))
}

type registry struct {
	clients *factories[ClientFactory]
	servers *factories[ServerFactory]
}

// NewRegistry creates an empty transport registry
func NewRegistry() Registry {
	return &registry{
		clients: newFactories[ClientFactory]("client"),
		servers: newFactories[ServerFactory]("server"),
	}
}

// DefaultRegistry holds the transports registered by package init functions
var DefaultRegistry = NewRegistry()

func (r *registry) RegisterClient(name string, factory ClientFactory) {
	r.clients.set(name, factory)
}

func (r *registry) RegisterServer(name string, factory ServerFactory) {
	r.servers.set(name, factory)
}

func (r *registry) CreateClient(name, endpoint string, options TransportOptions) (Client, error) {
	factory, err := r.clients.get(name)
	if err != nil {
		return nil, err
	}
	return factory(endpoint, options)
}

func (r *registry) CreateServer(name, address string, options TransportOptions) (Server, error) {
	factory, err := r.servers.get(name)
	if err != nil {
		return nil, err
	}
	return factory(address, options)
}

// ListTransports returns the sorted names known as client or server
func (r *registry) ListTransports() []string {
	names := append(r.clients.names(), r.servers.names()...)
	slices.Sort(names)
	return slices.Compact(names)
}

// RegisterClientTransport registers a client transport with the default registry
func RegisterClientTransport(name string, factory ClientFactory) {
	DefaultRegistry.RegisterClient(name, factory)
}

// RegisterServerTransport registers a server transport with the default registry
func RegisterServerTransport(name string, factory ServerFactory) {
	DefaultRegistry.RegisterServer(name, factory)
}

// GetClient creates a client using the default registry
func GetClient(name, endpoint string, options TransportOptions) (Client, error) {
	return DefaultRegistry.CreateClient(name, endpoint, options)
}

// GetServer creates a server using the default registry
func GetServer(name, address string, options TransportOptions) (Server, error) {
	return DefaultRegistry.CreateServer(name, address, options)
}

// AvailableTransports lists the transports in the default registry
func AvailableTransports() []string {
	return DefaultRegistry.ListTransports()
}
