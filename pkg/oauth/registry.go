package oauth

import (
	"fmt"
	"slices"
	"sync"
)

// Registry maps provider names to their flow clients.
type Registry struct {
	clients map[string]*Client
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Register adds a client under its provider name.
func (r *Registry) Register(c *Client) error {
	if c == nil {
		return ErrNilProvider
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.clients[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, name)
	}
	r.clients[name] = c
	return nil
}

// Get returns the client registered under name.
func (r *Registry) Get(name string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[name]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return c, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
