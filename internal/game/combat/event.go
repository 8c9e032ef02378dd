package combat

import "fmt"

// ActorKind identifies who produced an event.
type ActorKind int

const (
	ActorSystem ActorKind = iota
	ActorPlayer
	ActorEnemy
)

// String returns "system", "player" or "enemy".
func (a ActorKind) String() string {
	switch a {
	case ActorPlayer:
		return "player"
	case ActorEnemy:
		return "enemy"
	default:
		return "system"
	}
}

// Category classifies an event for rendering.
type Category int

const (
	CategoryInfo Category = iota
	CategoryAction
	CategoryDamage
	CategoryHeal
	CategoryStatus
	CategoryReward
	CategoryWarning
	CategoryOutcome
)

var categoryNames = [...]string{"info", "action", "damage", "heal", "status", "reward", "warning", "outcome"}

// String returns the lowercase category name.
func (c Category) String() string {
	if int(c) < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// Event is one entry of the append-only encounter log.
type Event struct {
	Turn      int
	Actor     ActorKind
	ActorName string
	Message   string
	Category  Category
}

// Sink receives every event as it is appended. The engine never reads it back.
type Sink interface {
	Append(e Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Append calls f(e).
func (f SinkFunc) Append(e Event) { f(e) }

// MultiSink fans events out to several sinks in order.
type MultiSink []Sink

// Append forwards e to every sink.
func (m MultiSink) Append(e Event) {
	for _, s := range m {
		s.Append(e)
	}
}
