package combat

import (
	"github.com/cory-johannsen/arcanum/internal/game/combatant"
	"github.com/cory-johannsen/arcanum/internal/game/dice"
)

// Initiative is the once-per-encounter roll deciding which side acts first.
type Initiative struct {
	PlayerRoll  int
	EnemyRoll   float64
	PlayerFirst bool
}

// RollInitiative rolls the player's speed + 1d<die> against the mean enemy
// speed + 1d<die>. Ties go to the player.
//
// Precondition: enemies must be non-empty; die >= 1.
func RollInitiative(player *combatant.Combatant, enemies []*combatant.Combatant, roller *dice.Roller, die int) Initiative {
	total := 0
	for _, e := range enemies {
		total += e.Stats().Speed
	}
	mean := float64(total) / float64(len(enemies))

	in := Initiative{
		PlayerRoll: player.Stats().Speed + roller.Roll(die, 0).Total(),
		EnemyRoll:  mean + float64(roller.Roll(die, 0).Total()),
	}
	in.PlayerFirst = float64(in.PlayerRoll) >= in.EnemyRoll
	return in
}
