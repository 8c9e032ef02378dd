package ai

import (
	"fmt"
	"sync"
)

// Registry indexes Planners by domain ID.
//
// Invariant: each domain ID is registered at most once; the default domain
// is always present.
type Registry struct {
	mu       sync.RWMutex
	planners map[string]*Planner
	fallback *Planner
}

// NewRegistry returns a Registry holding only the default domain.
func NewRegistry() *Registry {
	return &Registry{
		planners: make(map[string]*Planner),
		fallback: NewPlanner(DefaultDomain(), nil),
	}
}

// Register creates and stores a Planner for domain.
//
// Precondition: domain must not be nil.
// Postcondition: returns error on domain ID collision or invalid domain.
func (r *Registry) Register(domain *Domain, caller ScriptCaller) error {
	if err := domain.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.planners[domain.ID]; exists {
		return fmt.Errorf("ai.Registry: domain %q already registered", domain.ID)
	}
	r.planners[domain.ID] = NewPlanner(domain, caller)
	return nil
}

// PlannerFor returns the Planner for domainID, or false if not registered.
func (r *Registry) PlannerFor(domainID string) (*Planner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.planners[domainID]
	return p, ok
}

// Intent plans for state with the domain named domainID, using the default
// domain when domainID is empty or unregistered.
//
// Precondition: state, state.Enemy, and state.Player must not be nil.
func (r *Registry) Intent(domainID string, state *WorldState) (PlannedAction, error) {
	p, ok := r.PlannerFor(domainID)
	if !ok {
		p = r.fallback
	}
	return p.Intent(state)
}
