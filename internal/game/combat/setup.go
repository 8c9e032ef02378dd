package combat

import (
	"fmt"

	"github.com/cory-johannsen/arcanum/internal/content"
	"github.com/cory-johannsen/arcanum/internal/game/character"
	"github.com/cory-johannsen/arcanum/internal/game/combatant"
)

// PlayerID is the combatant id of the player in every session.
const PlayerID = "player"

// PlayerFromCharacter builds the player combatant from persisted state.
// A fresh character starts at full pools; otherwise the saved pools are
// restored with HP of at least 1.
func PlayerFromCharacter(rules combatant.Rules, ch *character.Character) *combatant.Combatant {
	p := combatant.New(rules, combatant.Spec{
		ID:         PlayerID,
		Name:       ch.Name,
		Kind:       combatant.KindPlayer,
		Level:      ch.Level,
		Attributes: ch.Attributes,
		Base:       rules.Base,
		Bonuses:    ch.EquipmentBonuses(),
		Inventory:  ch.Inventory,
	})
	if !ch.Fresh() {
		p.SetPools(max(1, ch.CurrentHP), ch.CurrentMP, ch.CurrentEP)
	}
	return p
}

// EnemyFromDescriptor builds the enemy at position index of an encounter.
// Enemies named only by special_ability_name get a generic special scaled by
// level.
func EnemyFromDescriptor(rules combatant.Rules, d content.Enemy, index, defaultCooldown int) (*combatant.Combatant, error) {
	traits := &combatant.EnemyTraits{
		Weakness:    d.Weakness,
		Resistance:  d.Resistance,
		LootTableID: d.LootTableID,
		Drops:       append([]combatant.ResourceDrop(nil), d.DroppedResources...),
		Elite:       d.Elite,
		AIDomain:    d.AIDomain,
	}
	switch {
	case d.Special != nil:
		payload, err := StatusFrom(d.Special.StatusEffectInflict)
		if err != nil {
			return nil, fmt.Errorf("enemy %q special: %w", d.Name, err)
		}
		sp := &combatant.Special{
			Name:       d.Special.Name,
			Damage:     d.Special.Damage,
			DamageType: d.Special.DamageType,
			Cooldown:   d.Special.Cooldown,
		}
		if sp.Name == "" {
			sp.Name = d.SpecialAbilityName
		}
		if sp.Cooldown == 0 {
			sp.Cooldown = defaultCooldown
		}
		if payload != nil {
			app := payload.application()
			sp.Status = &app
		}
		traits.Special = sp
	case d.SpecialAbilityName != "":
		traits.Special = &combatant.Special{
			Name:     d.SpecialAbilityName,
			Damage:   4 + 2*d.Level,
			Cooldown: defaultCooldown,
		}
	}

	id := fmt.Sprintf("enemy-%d", index+1)
	return combatant.New(rules, combatant.Spec{
		ID:         id,
		Name:       d.Name,
		Kind:       combatant.KindEnemy,
		Level:      d.Level,
		Attributes: d.Attributes,
		Base:       rules.Base,
		Enemy:      traits,
	}), nil
}

// NewEncounter builds a session for ch against the described enemies. The
// session works on a clone of ch.
//
// Precondition: enemies must be non-empty.
func NewEncounter(cfg Config, id string, ch *character.Character, enemies []content.Enemy, sink Sink) (*Session, error) {
	working := ch.Clone()
	player := PlayerFromCharacter(cfg.PlayerRules, working)
	foes := make([]*combatant.Combatant, 0, len(enemies))
	for i, d := range enemies {
		c, err := EnemyFromDescriptor(cfg.EnemyRules, d, i, cfg.DefaultSpecialCooldown)
		if err != nil {
			return nil, err
		}
		foes = append(foes, c)
	}
	return NewSession(id, player, foes, working, sink)
}

// FoldBack writes the player's end-of-encounter state into the session's
// working character: pools and inventory. Rewards were credited as they
// were earned. After a defeat the character keeps 1 HP.
//
// Precondition: s.Over().
func FoldBack(s *Session) *character.Character {
	ch := s.Character
	p := s.Player
	ch.CurrentHP = p.HP
	if s.Phase == PhaseDefeat || ch.CurrentHP < 1 {
		ch.CurrentHP = 1
	}
	ch.CurrentMP = p.MP
	ch.CurrentEP = p.EP
	ch.Inventory = make(map[string]int, len(p.Inventory))
	for id, n := range p.Inventory {
		ch.Inventory[id] = n
	}
	return ch
}
