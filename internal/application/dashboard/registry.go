package dashboard

import (
	"sync"

	"grindset/internal/adapters/metrics"
)

// Registry keeps one Controller per auth session token.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*Controller
	metrics     *metrics.Metrics
}

// NewRegistry creates an empty registry. m may be nil.
func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{controllers: map[string]*Controller{}, metrics: m}
}

// Put stores c for token, signing out any controller it replaces.
func (r *Registry) Put(token string, c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.controllers[token]; ok && old != c {
		old.SignOut()
	}
	r.controllers[token] = c
	r.metrics.SetActiveDashboards(len(r.controllers))
}

// Get returns the controller for token.
func (r *Registry) Get(token string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[token]
	return c, ok
}

// Remove signs out and forgets the controller for token.
func (r *Registry) Remove(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.controllers[token]; ok {
		c.SignOut()
		delete(r.controllers, token)
	}
	r.metrics.SetActiveDashboards(len(r.controllers))
}

// Len returns the number of live controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}
