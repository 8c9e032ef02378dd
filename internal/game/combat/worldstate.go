package combat

import (
	"github.com/cory-johannsen/arcanum/internal/game/ai"
	"github.com/cory-johannsen/arcanum/internal/game/combatant"
	"github.com/cory-johannsen/arcanum/internal/game/status"
)

// BuildWorldState snapshots s from the point of view of enemy for the planner.
//
// Precondition: enemy belongs to s.
func BuildWorldState(s *Session, enemy *combatant.Combatant, flags TurnFlags) *ai.WorldState {
	es := &ai.EnemyState{
		CombatantState: snapshot(enemy),
		Level:          enemy.Level,
	}
	es.Silenced = flags.Silenced
	if t := enemy.Enemy; t != nil {
		es.Elite = t.Elite
		if t.Special != nil {
			es.SpecialName = t.Special.Name
			es.SpecialReady = t.SpecialCooldown == 0
		}
	}
	player := snapshot(s.Player)
	ws := &ai.WorldState{Turn: s.Turn, Enemy: es, Player: &player}
	for _, other := range s.Enemies {
		if other.ID == enemy.ID {
			continue
		}
		ally := snapshot(other)
		ws.Allies = append(ws.Allies, &ally)
	}
	return ws
}

func snapshot(c *combatant.Combatant) ai.CombatantState {
	set := c.Effects()
	cs := ai.CombatantState{
		ID:        c.ID,
		Name:      c.Name,
		HP:        c.HP,
		MaxHP:     c.Stats().MaxHP,
		Defending: set.Has(status.Defending),
		Stunned:   set.Has(status.Stun) || set.Has(status.Freeze),
		Silenced:  set.Has(status.Silence),
	}
	for _, a := range set.All() {
		cs.Effects = append(cs.Effects, a.Kind.String())
	}
	return cs
}
