package publishing

import "sync"

// Registry keeps one Publisher per admin session token.
type Registry struct {
	mu         sync.Mutex
	publishers map[string]*Publisher
	deps       Deps
}

// NewRegistry creates a registry whose publishers share deps.
func NewRegistry(deps Deps) *Registry {
	return &Registry{publishers: map[string]*Publisher{}, deps: deps}
}

// For returns the Publisher for token, creating it on first use.
func (r *Registry) For(token string) *Publisher {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.publishers[token]
	if !ok {
		p = New(r.deps)
		r.publishers[token] = p
	}
	return p
}

// Remove forgets the Publisher for token.
func (r *Registry) Remove(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.publishers, token)
}

// Len returns the number of live publishers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.publishers)
}
