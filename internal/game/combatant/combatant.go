package combatant

import (
	"github.com/cory-johannsen/arcanum/internal/game/status"
)

// Kind distinguishes the player from enemies.
type Kind int

const (
	KindPlayer Kind = iota
	KindEnemy
)

// String returns "player" or "enemy".
func (k Kind) String() string {
	if k == KindPlayer {
		return "player"
	}
	return "enemy"
}

// Special is an enemy's optional special ability. It is spell-like: silence
// blocks it, and it cannot be used again until Cooldown enemy turns have passed.
type Special struct {
	Name       string
	Damage     int
	DamageType string
	Status     *status.Application
	Cooldown   int
}

// ResourceDrop is an item the enemy carries into the player's inventory on defeat.
type ResourceDrop struct {
	ItemID   string `json:"item_id" yaml:"item_id"`
	Quantity int    `json:"quantity" yaml:"quantity"`
}

// EnemyTraits holds the enemy-only fields.
type EnemyTraits struct {
	Weakness    string
	Resistance  string
	Special     *Special
	LootTableID string
	Drops       []ResourceDrop
	Elite       bool
	// AIDomain names the planner domain choosing this enemy's actions; empty
	// means the built-in default.
	AIDomain string
	// SpecialCooldown is the number of this enemy's turns until Special is ready.
	SpecialCooldown int
}

// Spec describes a combatant to construct.
type Spec struct {
	ID         string
	Name       string
	Kind       Kind
	Level      int
	Attributes Attributes
	Base       Base
	Bonuses    Bonuses
	Enemy      *EnemyTraits
	Inventory  map[string]int
}

// Combatant is one participant of an encounter. It is mutated in place by the
// resolver and the status engine and is not safe for concurrent use.
type Combatant struct {
	ID         string
	Name       string
	Kind       Kind
	Level      int
	HP         int
	MP         int
	EP         int
	Attributes Attributes
	Base       Base
	Bonuses    Bonuses
	// Enemy is non-nil iff Kind == KindEnemy.
	Enemy *EnemyTraits
	// Inventory maps item id to count; only players carry one.
	Inventory map[string]int

	rules   Rules
	effects *status.Set
	stats   Stats
}

// New builds a combatant at full HP, MP and EP.
//
// Postcondition: Stats() reflects s under r; HP == Stats().MaxHP.
func New(r Rules, s Spec) *Combatant {
	c := &Combatant{
		ID:         s.ID,
		Name:       s.Name,
		Kind:       s.Kind,
		Level:      s.Level,
		Attributes: s.Attributes,
		Base:       s.Base,
		Bonuses:    s.Bonuses,
		Enemy:      s.Enemy,
		Inventory:  make(map[string]int, len(s.Inventory)),
		rules:      r,
		effects:    status.NewSet(),
	}
	for id, n := range s.Inventory {
		if n > 0 {
			c.Inventory[id] = n
		}
	}
	if c.Kind == KindEnemy && c.Enemy == nil {
		c.Enemy = &EnemyTraits{}
	}
	c.stats = c.calculate()
	c.HP, c.MP, c.EP = c.stats.MaxHP, c.stats.MaxMP, c.stats.MaxEP
	return c
}

func (c *Combatant) calculate() Stats {
	return Calculate(c.rules, Input{
		Level:      c.Level,
		Attributes: c.Attributes,
		Base:       c.Base,
		Bonuses:    c.Bonuses,
		Effects:    c.effects.All(),
	})
}

// Stats returns the cached effective stats.
func (c *Combatant) Stats() Stats { return c.stats }

// Rules returns the coefficients this combatant's stats are derived with.
func (c *Combatant) Rules() Rules { return c.rules }

// Recompute refreshes the cached stats and re-clamps HP, MP and EP to the new caps.
//
// Postcondition: 0 <= HP <= MaxHP, 0 <= MP <= MaxMP, 0 <= EP <= MaxEP.
func (c *Combatant) Recompute() {
	c.stats = c.calculate()
	c.HP = clamp(c.HP, 0, c.stats.MaxHP)
	c.MP = clamp(c.MP, 0, c.stats.MaxMP)
	c.EP = clamp(c.EP, 0, c.stats.MaxEP)
}

// SetPools sets current HP, MP and EP, clamped to the current caps.
func (c *Combatant) SetPools(hp, mp, ep int) {
	c.HP, c.MP, c.EP = hp, mp, ep
	c.Recompute()
}

// IsPlayer reports whether this combatant is the player.
func (c *Combatant) IsPlayer() bool { return c.Kind == KindPlayer }

// Effects returns the active status effects.
func (c *Combatant) Effects() *status.Set { return c.effects }

// EffectsChanged recomputes stats after the effect set changed.
func (c *Combatant) EffectsChanged() { c.Recompute() }

// IsDefeated reports whether HP is at or below 0.
func (c *Combatant) IsDefeated() bool { return c.HP <= 0 }

// TakeDamage reduces HP by n, flooring at 0.
//
// Precondition: n >= 0.
// Postcondition: returns the HP actually lost.
func (c *Combatant) TakeDamage(n int) int {
	lost := min(max(n, 0), c.HP)
	c.HP -= lost
	return lost
}

// Restore increases HP by n, capped at MaxHP.
//
// Postcondition: returns the HP actually gained.
func (c *Combatant) Restore(n int) int {
	gained := clamp(n, 0, c.stats.MaxHP-c.HP)
	c.HP += gained
	return gained
}

// RestoreMP increases MP by n, capped at MaxMP, and returns the MP gained.
func (c *Combatant) RestoreMP(n int) int {
	gained := clamp(n, 0, c.stats.MaxMP-c.MP)
	c.MP += gained
	return gained
}

// RestoreEP increases EP by n, capped at MaxEP, and returns the EP gained.
func (c *Combatant) RestoreEP(n int) int {
	gained := clamp(n, 0, c.stats.MaxEP-c.EP)
	c.EP += gained
	return gained
}

// ItemCount returns how many of itemID the combatant carries.
func (c *Combatant) ItemCount(itemID string) int { return c.Inventory[itemID] }

// AddItem adds n of itemID to the inventory. Non-positive n is ignored.
func (c *Combatant) AddItem(itemID string, n int) {
	if n <= 0 {
		return
	}
	if c.Inventory == nil {
		c.Inventory = make(map[string]int)
	}
	c.Inventory[itemID] += n
}

// RemoveItem removes n of itemID.
//
// Postcondition: returns false and leaves the inventory unchanged if fewer than n are held.
func (c *Combatant) RemoveItem(itemID string, n int) bool {
	have := c.Inventory[itemID]
	if n <= 0 || have < n {
		return n <= 0
	}
	if have == n {
		delete(c.Inventory, itemID)
		return true
	}
	c.Inventory[itemID] = have - n
	return true
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
