// Package character defines the persisted player model, its construction and
// level progression.
package character

import (
	"time"

	"github.com/cory-johannsen/arcanum/internal/content"
	"github.com/cory-johannsen/arcanum/internal/game/combatant"
)

// LootChest is an unopened chest awarded for a defeated enemy.
type LootChest struct {
	ID     string `json:"id"`
	Tier   string `json:"tier"`
	Source string `json:"source"`
	Elite  bool   `json:"elite,omitempty"`
}

// BestiaryEntry records encounters with one enemy kind.
type BestiaryEntry struct {
	Name        string    `json:"name"`
	Kills       int       `json:"kills"`
	FirstKilled time.Time `json:"first_killed"`
}

// Character represents a player's persistent state between encounters.
//
// ID is set by the persistence layer; a zero value indicates an unsaved character.
type Character struct {
	ID int64

	Name          string
	Level         int
	Experience    int
	XPToNextLevel int
	PassiveSlots  int

	Attributes combatant.Attributes
	CurrentHP  int
	CurrentMP  int
	CurrentEP  int

	Gold       int
	Essence    int
	LootChests []LootChest

	// Inventory maps item id to count.
	Inventory   map[string]int
	Equipment   []content.Equipment
	Spells      []content.Spell
	Abilities   []content.Ability
	Consumables []content.Consumable
	// Bestiary is keyed by enemy name.
	Bestiary map[string]BestiaryEntry

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EquipmentBonuses sums the bonuses of every equipped item.
func (c *Character) EquipmentBonuses() combatant.Bonuses {
	var b combatant.Bonuses
	for _, e := range c.Equipment {
		b = b.Add(e.Bonuses)
	}
	return b
}

// Spell returns the known spell with the given id.
func (c *Character) Spell(id string) (content.Spell, bool) {
	for _, s := range c.Spells {
		if s.ID == id {
			return s, true
		}
	}
	return content.Spell{}, false
}

// Ability returns the known ability with the given id.
func (c *Character) Ability(id string) (content.Ability, bool) {
	for _, a := range c.Abilities {
		if a.ID == id {
			return a, true
		}
	}
	return content.Ability{}, false
}

// Consumable returns the consumable definition for item id.
func (c *Character) Consumable(id string) (content.Consumable, bool) {
	for _, it := range c.Consumables {
		if it.ID == id {
			return it, true
		}
	}
	return content.Consumable{}, false
}

// RecordKill increments the bestiary kill counter for name, creating the entry
// on first kill.
//
// Postcondition: Bestiary[name].Kills is one greater than before.
func (c *Character) RecordKill(name string, at time.Time) {
	if c.Bestiary == nil {
		c.Bestiary = make(map[string]BestiaryEntry)
	}
	e, ok := c.Bestiary[name]
	if !ok {
		e = BestiaryEntry{Name: name, FirstKilled: at}
	}
	e.Kills++
	c.Bestiary[name] = e
}

// Clone returns a deep copy of c. Encounters mutate a clone so that an
// abandoned encounter never leaks into persisted state.
func (c *Character) Clone() *Character {
	out := *c
	out.LootChests = append([]LootChest(nil), c.LootChests...)
	out.Inventory = make(map[string]int, len(c.Inventory))
	for k, v := range c.Inventory {
		out.Inventory[k] = v
	}
	out.Equipment = append([]content.Equipment(nil), c.Equipment...)
	out.Spells = append([]content.Spell(nil), c.Spells...)
	out.Abilities = append([]content.Ability(nil), c.Abilities...)
	out.Consumables = append([]content.Consumable(nil), c.Consumables...)
	out.Bestiary = make(map[string]BestiaryEntry, len(c.Bestiary))
	for k, v := range c.Bestiary {
		out.Bestiary[k] = v
	}
	return &out
}
