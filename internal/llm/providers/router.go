package providers

import (
	"fmt"

	"github.com/ahrav/go-ragcheck/internal/llm/transport"
)

// Router selects provider adapters by name.
type Router interface {
	Pick(provider, model string) (transport.ProviderAdapter, error)
}

// registryRouter routes requests to registered adapters by provider name.
// The registry is populated at construction and read-only afterwards, so
// concurrent turns share it without locks.
type registryRouter struct {
	adapters map[string]transport.ProviderAdapter
}

// NewRouter creates a router over the given adapters.
func NewRouter(adapters ...transport.ProviderAdapter) Router {
	registry := make(map[string]transport.ProviderAdapter, len(adapters))
	for _, a := range adapters {
		registry[a.Name()] = a
	}
	return &registryRouter{adapters: registry}
}

// Pick returns the adapter registered for the provider.
func (r *registryRouter) Pick(provider, _ string) (transport.ProviderAdapter, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return adapter, nil
}
