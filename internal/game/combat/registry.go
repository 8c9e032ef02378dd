package combat

import (
	"fmt"
	"sync"
)

// Registry holds the active sessions, keyed by player. Each session is
// independent; all Registry methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Start registers s for key.
//
// Precondition: key must be non-empty; s must not be nil.
// Postcondition: returns an error if key already has an active session.
func (r *Registry) Start(key string, s *Session) error {
	if key == "" || s == nil {
		return fmt.Errorf("combat.Registry.Start: key and session required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[key]; exists {
		return fmt.Errorf("encounter already active for %q", key)
	}
	r.sessions[key] = s
	return nil
}

// Get returns the session registered for key.
func (r *Registry) Get(key string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[key]
	return s, ok
}

// End removes the session for key. Ending an unknown key is a no-op.
func (r *Registry) End(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key)
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
