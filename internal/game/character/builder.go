package character

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/arcanum/internal/game/combatant"
)

// Build constructs a new level-1 Character.
//
// Precondition: name must be non-empty; every attribute must be >= 1;
// xpToNext must be >= 1.
// Postcondition: Returns a Character ready for persistence with empty
// inventory and bestiary, or a non-nil error. Current pools are left at 0 and
// are filled to their maxima the first time the character enters an encounter.
func Build(name string, attrs combatant.Attributes, xpToNext int) (*Character, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if attrs.Body < 1 || attrs.Mind < 1 || attrs.Reflex < 1 {
		return nil, fmt.Errorf("character attributes must be >= 1, got %+v", attrs)
	}
	if xpToNext < 1 {
		return nil, fmt.Errorf("xp to next level must be >= 1, got %d", xpToNext)
	}
	return &Character{
		Name:          name,
		Level:         1,
		XPToNextLevel: xpToNext,
		Attributes:    attrs,
		Inventory:     make(map[string]int),
		Bestiary:      make(map[string]BestiaryEntry),
	}, nil
}

// Fresh reports whether the character has never been in an encounter.
func (c *Character) Fresh() bool {
	return c.CurrentHP == 0 && c.CurrentMP == 0 && c.CurrentEP == 0 && c.Experience == 0 && len(c.Bestiary) == 0
}
