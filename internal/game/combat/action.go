package combat

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/arcanum/internal/content"
	"github.com/cory-johannsen/arcanum/internal/game/combatant"
	"github.com/cory-johannsen/arcanum/internal/game/status"
)

// Action is a player's chosen action. The set of implementations is closed.
type Action interface {
	// Target returns the explicit target id; empty means the session's current target.
	Target() string
	// Label is a short human-readable name used in the log.
	Label() string
	sealed()
}

// StatusPayload is a status effect carried by an action.
type StatusPayload struct {
	Kind      status.Kind
	Chance    float64
	Duration  int
	Magnitude int
}

func (p *StatusPayload) application() status.Application {
	return status.Application{Kind: p.Kind, Chance: p.Chance, Duration: p.Duration, Magnitude: p.Magnitude}
}

// ItemCost is an inventory item consumed by an action.
type ItemCost struct {
	ItemID   string
	Quantity int
}

// Spell costs mana and deals scaled magic damage. A self-targeted spell heals
// the caster instead.
type Spell struct {
	ID           string
	Name         string
	ManaCost     int
	Damage       int
	DamageType   string
	ScalesWith   combatant.Attribute
	StatusEffect *StatusPayload
	SelfTargeted bool
	ResourceCost []ItemCost
	TargetID     string
}

// AbilityEffect is the closed set of ability effects.
type AbilityEffect int

const (
	AbilityDamage AbilityEffect = iota + 1
	AbilityHeal
	AbilityBuff
	AbilityDebuff
)

var abilityEffectNames = map[string]AbilityEffect{
	"damage": AbilityDamage,
	"attack": AbilityDamage,
	"heal":   AbilityHeal,
	"buff":   AbilityBuff,
	"debuff": AbilityDebuff,
}

// ParseAbilityEffect resolves a case-insensitive effect name.
func ParseAbilityEffect(s string) (AbilityEffect, error) {
	if e, ok := abilityEffectNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return e, nil
	}
	return 0, fmt.Errorf("combat: unknown ability effect %q", s)
}

// Ability costs energy.
type Ability struct {
	ID                 string
	Name               string
	EPCost             int
	Effect             AbilityEffect
	Magnitude          int
	DamageType         string
	TargetStatusEffect *StatusPayload
	// Voice abilities are blocked by silence.
	Voice    bool
	TargetID string
}

// ConsumableEffect is the closed set of consumable effects.
type ConsumableEffect int

const (
	ConsumableRestoreHP ConsumableEffect = iota + 1
	ConsumableRestoreMP
	ConsumableRestoreEP
	ConsumableCure
	ConsumableBuff
	ConsumableDamage
)

var consumableEffectNames = map[string]ConsumableEffect{
	"restorehp": ConsumableRestoreHP,
	"heal":      ConsumableRestoreHP,
	"restoremp": ConsumableRestoreMP,
	"mana":      ConsumableRestoreMP,
	"restoreep": ConsumableRestoreEP,
	"energy":    ConsumableRestoreEP,
	"cure":      ConsumableCure,
	"buff":      ConsumableBuff,
	"damage":    ConsumableDamage,
}

// ParseConsumableEffect resolves an effect name; case, underscores and spaces are ignored.
func ParseConsumableEffect(s string) (ConsumableEffect, error) {
	norm := strings.NewReplacer("_", "", " ", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	if e, ok := consumableEffectNames[norm]; ok {
		return e, nil
	}
	return 0, fmt.Errorf("combat: unknown consumable effect %q", s)
}

// Consumable uses up one inventory item.
type Consumable struct {
	ItemID       string
	Name         string
	Effect       ConsumableEffect
	Magnitude    int
	StatusToCure status.Kind
	BuffToApply  *StatusPayload
	TargetID     string
}

// BasicAttack is the free physical attack.
type BasicAttack struct{ TargetID string }

// Defend braces for one turn.
type Defend struct{}

// Flee attempts to leave the encounter.
type Flee struct{}

// Freestyle is a free-text action resolved by a FreestyleResolver.
type Freestyle struct {
	Text     string
	TargetID string
}

func (a Spell) Target() string       { return a.TargetID }
func (a Ability) Target() string     { return a.TargetID }
func (a Consumable) Target() string  { return a.TargetID }
func (a BasicAttack) Target() string { return a.TargetID }
func (Defend) Target() string        { return "" }
func (Flee) Target() string          { return "" }
func (a Freestyle) Target() string   { return a.TargetID }

func (a Spell) Label() string      { return a.Name }
func (a Ability) Label() string    { return a.Name }
func (a Consumable) Label() string { return a.Name }
func (BasicAttack) Label() string  { return "Attack" }
func (Defend) Label() string       { return "Defend" }
func (Flee) Label() string         { return "Flee" }
func (Freestyle) Label() string    { return "Freestyle" }

func (Spell) sealed()       {}
func (Ability) sealed()     {}
func (Consumable) sealed()  {}
func (BasicAttack) sealed() {}
func (Defend) sealed()      {}
func (Flee) sealed()        {}
func (Freestyle) sealed()   {}

// StatusFrom converts a descriptor status payload. A nil input yields nil.
func StatusFrom(in *content.StatusInflict) (*StatusPayload, error) {
	if in == nil || in.Name == "" {
		return nil, nil
	}
	k, err := status.ParseKind(in.Name)
	if err != nil {
		return nil, err
	}
	return &StatusPayload{Kind: k, Chance: in.Chance, Duration: in.Duration, Magnitude: in.Magnitude}, nil
}

// SpellFrom converts a spell descriptor into an action.
func SpellFrom(s content.Spell) (Spell, error) {
	scales, err := combatant.ParseAttribute(s.ScalesWith)
	if err != nil {
		return Spell{}, fmt.Errorf("spell %q: %w", s.Name, err)
	}
	payload, err := StatusFrom(s.StatusEffectInflict)
	if err != nil {
		return Spell{}, fmt.Errorf("spell %q: %w", s.Name, err)
	}
	out := Spell{
		ID:           s.ID,
		Name:         s.Name,
		ManaCost:     s.ManaCost,
		Damage:       s.Damage,
		DamageType:   s.DamageType,
		ScalesWith:   scales,
		StatusEffect: payload,
		SelfTargeted: s.SelfTargeted,
	}
	for _, rc := range s.ResourceCost {
		out.ResourceCost = append(out.ResourceCost, ItemCost{ItemID: rc.ItemID, Quantity: rc.Quantity})
	}
	return out, nil
}

// AbilityFrom converts an ability descriptor into an action.
func AbilityFrom(a content.Ability) (Ability, error) {
	effect, err := ParseAbilityEffect(a.EffectType)
	if err != nil {
		return Ability{}, fmt.Errorf("ability %q: %w", a.Name, err)
	}
	payload, err := StatusFrom(a.TargetStatusEffect)
	if err != nil {
		return Ability{}, fmt.Errorf("ability %q: %w", a.Name, err)
	}
	return Ability{
		ID:                 a.ID,
		Name:               a.Name,
		EPCost:             a.EPCost,
		Effect:             effect,
		Magnitude:          a.Magnitude,
		DamageType:         a.DamageType,
		TargetStatusEffect: payload,
		Voice:              a.Voice,
	}, nil
}

// ConsumableFrom converts a consumable descriptor into an action.
func ConsumableFrom(c content.Consumable) (Consumable, error) {
	effect, err := ParseConsumableEffect(c.EffectType)
	if err != nil {
		return Consumable{}, fmt.Errorf("consumable %q: %w", c.ID, err)
	}
	out := Consumable{ItemID: c.ID, Name: c.Name, Effect: effect, Magnitude: c.Magnitude}
	if out.Name == "" {
		out.Name = c.ID
	}
	if effect == ConsumableCure {
		k, err := status.ParseKind(c.StatusToCure)
		if err != nil {
			return Consumable{}, fmt.Errorf("consumable %q: %w", c.ID, err)
		}
		out.StatusToCure = k
	}
	if out.BuffToApply, err = StatusFrom(c.BuffToApply); err != nil {
		return Consumable{}, fmt.Errorf("consumable %q: %w", c.ID, err)
	}
	if effect == ConsumableBuff && out.BuffToApply == nil {
		return Consumable{}, fmt.Errorf("consumable %q: buff effect without buff_to_apply", c.ID)
	}
	return out, nil
}
