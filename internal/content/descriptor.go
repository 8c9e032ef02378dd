// Package content defines the descriptors produced by content generators and
// the generators themselves.
package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/cory-johannsen/arcanum/internal/game/combatant"
)

// Kind names the descriptor variant a generator is asked to produce.
type Kind string

const (
	KindSpell      Kind = "spell"
	KindEnemy      Kind = "enemy"
	KindAbility    Kind = "ability"
	KindConsumable Kind = "consumable"
	KindEquipment  Kind = "equipment"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSpell, KindEnemy, KindAbility, KindConsumable, KindEquipment:
		return true
	}
	return false
}

// ErrUnsupportedKind is returned by generators asked for a kind they cannot produce.
var ErrUnsupportedKind = errors.New("content: unsupported descriptor kind")

// Generator produces content descriptors for a player level and free-text concept.
type Generator interface {
	Generate(ctx context.Context, level int, kind Kind, prompt string) (Descriptor, error)
}

// StatusInflict is a status-effect payload carried by an action.
type StatusInflict struct {
	Name      string  `json:"name" yaml:"name"`
	Chance    float64 `json:"chance" yaml:"chance"`
	Duration  int     `json:"duration,omitempty" yaml:"duration"`
	Magnitude int     `json:"magnitude,omitempty" yaml:"magnitude"`
}

// ResourceCost is an inventory item consumed when casting.
type ResourceCost struct {
	ItemID   string `json:"itemId" yaml:"item_id"`
	Quantity int    `json:"quantity" yaml:"quantity"`
}

// Spell is a mana-costed action.
type Spell struct {
	ID                  string         `json:"id" yaml:"id"`
	Name                string         `json:"name" yaml:"name"`
	Description         string         `json:"description,omitempty" yaml:"description"`
	ManaCost            int            `json:"manaCost" yaml:"mana_cost"`
	Damage              int            `json:"damage" yaml:"damage"`
	DamageType          string         `json:"damageType" yaml:"damage_type"`
	ScalesWith          string         `json:"scalesWith,omitempty" yaml:"scales_with"`
	StatusEffectInflict *StatusInflict `json:"statusEffectInflict,omitempty" yaml:"status_effect_inflict"`
	SelfTargeted        bool           `json:"selfTargeted,omitempty" yaml:"self_targeted"`
	ResourceCost        []ResourceCost `json:"resourceCost,omitempty" yaml:"resource_cost"`
}

// Ability is an energy-costed action.
type Ability struct {
	ID                 string         `json:"id" yaml:"id"`
	Name               string         `json:"name" yaml:"name"`
	Description        string         `json:"description,omitempty" yaml:"description"`
	EPCost             int            `json:"epCost" yaml:"ep_cost"`
	EffectType         string         `json:"effectType" yaml:"effect_type"`
	Magnitude          int            `json:"magnitude,omitempty" yaml:"magnitude"`
	DamageType         string         `json:"damageType,omitempty" yaml:"damage_type"`
	TargetStatusEffect *StatusInflict `json:"targetStatusEffect,omitempty" yaml:"target_status_effect"`
	// Voice marks abilities that silence blocks.
	Voice bool `json:"voice,omitempty" yaml:"voice"`
}

// Consumable is a usable inventory item.
type Consumable struct {
	ID           string         `json:"id" yaml:"id"`
	Name         string         `json:"name" yaml:"name"`
	Description  string         `json:"description,omitempty" yaml:"description"`
	EffectType   string         `json:"effectType" yaml:"effect_type"`
	Magnitude    int            `json:"magnitude,omitempty" yaml:"magnitude"`
	StatusToCure string         `json:"statusToCure,omitempty" yaml:"status_to_cure"`
	BuffToApply  *StatusInflict `json:"buffToApply,omitempty" yaml:"buff_to_apply"`
}

// Equipment contributes stat bonuses while equipped.
type Equipment struct {
	ID      string            `json:"id" yaml:"id"`
	Name    string            `json:"name" yaml:"name"`
	Slot    string            `json:"slot" yaml:"slot"`
	Bonuses combatant.Bonuses `json:"bonuses" yaml:"bonuses"`
}

// SpecialAbility is an enemy's signature move.
type SpecialAbility struct {
	Name                string         `json:"name" yaml:"name"`
	Damage              int            `json:"damage" yaml:"damage"`
	DamageType          string         `json:"damageType,omitempty" yaml:"damage_type"`
	StatusEffectInflict *StatusInflict `json:"statusEffectInflict,omitempty" yaml:"status_effect_inflict"`
	Cooldown            int            `json:"cooldown,omitempty" yaml:"cooldown"`
}

// Enemy describes a freshly generated opponent.
type Enemy struct {
	ID                 string                   `json:"id" yaml:"id"`
	Name               string                   `json:"name" yaml:"name"`
	Description        string                   `json:"description,omitempty" yaml:"description"`
	Level              int                      `json:"level" yaml:"level"`
	Attributes         combatant.Attributes     `json:"attributes" yaml:"attributes"`
	Weakness           string                   `json:"weakness,omitempty" yaml:"weakness"`
	Resistance         string                   `json:"resistance,omitempty" yaml:"resistance"`
	SpecialAbilityName string                   `json:"specialAbilityName,omitempty" yaml:"special_ability_name"`
	Special            *SpecialAbility          `json:"special,omitempty" yaml:"special"`
	LootTableID        string                   `json:"lootTableId,omitempty" yaml:"loot_table_id"`
	DroppedResources   []combatant.ResourceDrop `json:"droppedResources,omitempty" yaml:"dropped_resources"`
	Elite              bool                     `json:"elite,omitempty" yaml:"elite"`
	AIDomain           string                   `json:"aiDomain,omitempty" yaml:"ai_domain"`
}

// Descriptor is the tagged union returned by a Generator. Exactly the field
// matching Kind is set.
type Descriptor struct {
	Kind       Kind        `json:"kind" yaml:"kind"`
	Spell      *Spell      `json:"spell,omitempty" yaml:"spell"`
	Enemy      *Enemy      `json:"enemy,omitempty" yaml:"enemy"`
	Ability    *Ability    `json:"ability,omitempty" yaml:"ability"`
	Consumable *Consumable `json:"consumable,omitempty" yaml:"consumable"`
	Equipment  *Equipment  `json:"equipment,omitempty" yaml:"equipment"`
}

// Validate checks that the payload matching Kind is present and well formed.
func (d Descriptor) Validate() error {
	switch d.Kind {
	case KindSpell:
		if d.Spell == nil {
			return errors.New("content: spell descriptor missing spell")
		}
		if d.Spell.Name == "" {
			return errors.New("content: spell name must not be empty")
		}
		if d.Spell.ManaCost < 0 || d.Spell.Damage < 0 {
			return fmt.Errorf("content: spell %q has negative cost or damage", d.Spell.Name)
		}
		for _, rc := range d.Spell.ResourceCost {
			if rc.ItemID == "" || rc.Quantity <= 0 {
				return fmt.Errorf("content: spell %q has invalid resource cost", d.Spell.Name)
			}
		}
	case KindEnemy:
		if d.Enemy == nil {
			return errors.New("content: enemy descriptor missing enemy")
		}
		if d.Enemy.Name == "" {
			return errors.New("content: enemy name must not be empty")
		}
		if d.Enemy.Level < 1 {
			return fmt.Errorf("content: enemy %q level must be >= 1, got %d", d.Enemy.Name, d.Enemy.Level)
		}
	case KindAbility:
		if d.Ability == nil {
			return errors.New("content: ability descriptor missing ability")
		}
		if d.Ability.Name == "" {
			return errors.New("content: ability name must not be empty")
		}
		if d.Ability.EPCost < 0 {
			return fmt.Errorf("content: ability %q has negative cost", d.Ability.Name)
		}
	case KindConsumable:
		if d.Consumable == nil {
			return errors.New("content: consumable descriptor missing consumable")
		}
		if d.Consumable.ID == "" {
			return errors.New("content: consumable id must not be empty")
		}
	case KindEquipment:
		if d.Equipment == nil {
			return errors.New("content: equipment descriptor missing equipment")
		}
		if d.Equipment.Name == "" {
			return errors.New("content: equipment name must not be empty")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedKind, d.Kind)
	}
	return nil
}

// Name returns the display name of the payload.
func (d Descriptor) Name() string {
	switch {
	case d.Spell != nil:
		return d.Spell.Name
	case d.Enemy != nil:
		return d.Enemy.Name
	case d.Ability != nil:
		return d.Ability.Name
	case d.Consumable != nil:
		if d.Consumable.Name != "" {
			return d.Consumable.Name
		}
		return d.Consumable.ID
	case d.Equipment != nil:
		return d.Equipment.Name
	}
	return ""
}

func (d Descriptor) description() string {
	switch {
	case d.Spell != nil:
		return d.Spell.Description
	case d.Enemy != nil:
		return d.Enemy.Description
	case d.Ability != nil:
		return d.Ability.Description
	case d.Consumable != nil:
		return d.Consumable.Description
	}
	return ""
}

// clone copies the payload struct so callers can adjust it freely.
func (d Descriptor) clone() Descriptor {
	out := Descriptor{Kind: d.Kind}
	if d.Spell != nil {
		s := *d.Spell
		s.ResourceCost = append([]ResourceCost(nil), d.Spell.ResourceCost...)
		out.Spell = &s
	}
	if d.Enemy != nil {
		e := *d.Enemy
		e.DroppedResources = append(e.DroppedResources[:0:0], d.Enemy.DroppedResources...)
		if d.Enemy.Special != nil {
			sp := *d.Enemy.Special
			e.Special = &sp
		}
		out.Enemy = &e
	}
	if d.Ability != nil {
		a := *d.Ability
		out.Ability = &a
	}
	if d.Consumable != nil {
		c := *d.Consumable
		out.Consumable = &c
	}
	if d.Equipment != nil {
		e := *d.Equipment
		out.Equipment = &e
	}
	return out
}
