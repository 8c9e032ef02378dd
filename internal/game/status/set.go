package status

// Active tracks one applied effect on a combatant.
type Active struct {
	Kind          Kind
	Duration      int // turns remaining
	Magnitude     int
	SourceID      string
	InflictedTurn int
}

// Set is the ordered list of effects on one combatant.
// Invariant: at most one Active per Kind.
// It is not safe for concurrent use; the caller must serialise access.
type Set struct {
	effects []Active
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{}
}

func (s *Set) index(k Kind) int {
	for i := range s.effects {
		if s.effects[i].Kind == k {
			return i
		}
	}
	return -1
}

// Get returns a copy of the effect of kind k.
func (s *Set) Get(k Kind) (Active, bool) {
	if i := s.index(k); i >= 0 {
		return s.effects[i], true
	}
	return Active{}, false
}

// Has reports whether an effect of kind k is active.
func (s *Set) Has(k Kind) bool {
	return s.index(k) >= 0
}

// Magnitude returns the magnitude of the effect of kind k, or 0.
func (s *Set) Magnitude(k Kind) int {
	if i := s.index(k); i >= 0 {
		return s.effects[i].Magnitude
	}
	return 0
}

// Remove deletes the effect of kind k. Removing an absent kind is a no-op.
//
// Postcondition: Has(k) is false. Returns true if an effect was removed.
func (s *Set) Remove(k Kind) bool {
	i := s.index(k)
	if i < 0 {
		return false
	}
	s.effects = append(s.effects[:i], s.effects[i+1:]...)
	return true
}

// All returns a copy of the active effects in application order.
func (s *Set) All() []Active {
	out := make([]Active, len(s.effects))
	copy(out, s.effects)
	return out
}

// Len returns the number of active effects.
func (s *Set) Len() int { return len(s.effects) }

// put inserts a or replaces the entry of the same kind in place.
func (s *Set) put(a Active) {
	if i := s.index(a.Kind); i >= 0 {
		s.effects[i] = a
		return
	}
	s.effects = append(s.effects, a)
}
