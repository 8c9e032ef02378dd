// Package storage holds what the character persistence backends share: the
// sentinel errors callers compare against and the JSON encoding of a
// character's collection columns.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cory-johannsen/arcanum/internal/game/character"
)

var (
	// ErrCharacterNotFound is returned when no character matches the lookup.
	ErrCharacterNotFound = errors.New("character not found")
	// ErrCharacterNameTaken is returned when a character name is already in use.
	ErrCharacterNameTaken = errors.New("character name already taken")
)

// Documents is the JSON form of the collection fields of a character, one
// document per column.
type Documents struct {
	Inventory   []byte
	Equipment   []byte
	Spells      []byte
	Abilities   []byte
	Consumables []byte
	Bestiary    []byte
	LootChests  []byte
}

// EncodeDocuments marshals the collection fields of c.
//
// Postcondition: nil maps encode as {} and nil slices as [].
func EncodeDocuments(c *character.Character) (Documents, error) {
	var d Documents
	var err error
	inventory := c.Inventory
	if inventory == nil {
		inventory = map[string]int{}
	}
	bestiary := c.Bestiary
	if bestiary == nil {
		bestiary = map[string]character.BestiaryEntry{}
	}
	fields := []struct {
		name string
		dst  *[]byte
		v    any
	}{
		{"inventory", &d.Inventory, inventory},
		{"equipment", &d.Equipment, nonNil(c.Equipment)},
		{"spells", &d.Spells, nonNil(c.Spells)},
		{"abilities", &d.Abilities, nonNil(c.Abilities)},
		{"consumables", &d.Consumables, nonNil(c.Consumables)},
		{"bestiary", &d.Bestiary, bestiary},
		{"loot_chests", &d.LootChests, nonNil(c.LootChests)},
	}
	for _, f := range fields {
		if *f.dst, err = json.Marshal(f.v); err != nil {
			return Documents{}, fmt.Errorf("encoding %s: %w", f.name, err)
		}
	}
	return d, nil
}

// Decode unmarshals every document into the matching field of c.
//
// Postcondition: on success Inventory and Bestiary are non-nil.
func (d Documents) Decode(c *character.Character) error {
	fields := []struct {
		name string
		src  []byte
		dst  any
	}{
		{"inventory", d.Inventory, &c.Inventory},
		{"equipment", d.Equipment, &c.Equipment},
		{"spells", d.Spells, &c.Spells},
		{"abilities", d.Abilities, &c.Abilities},
		{"consumables", d.Consumables, &c.Consumables},
		{"bestiary", d.Bestiary, &c.Bestiary},
		{"loot_chests", d.LootChests, &c.LootChests},
	}
	for _, f := range fields {
		if len(f.src) == 0 {
			continue
		}
		if err := json.Unmarshal(f.src, f.dst); err != nil {
			return fmt.Errorf("decoding %s: %w", f.name, err)
		}
	}
	if c.Inventory == nil {
		c.Inventory = map[string]int{}
	}
	if c.Bestiary == nil {
		c.Bestiary = map[string]character.BestiaryEntry{}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
