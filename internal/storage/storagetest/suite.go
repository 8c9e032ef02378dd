// Package storagetest holds the behavioural suite every character store must
// pass.
package storagetest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arcanum/internal/content"
	"github.com/cory-johannsen/arcanum/internal/game/character"
	"github.com/cory-johannsen/arcanum/internal/game/combatant"
	"github.com/cory-johannsen/arcanum/internal/storage"
)

// Store is the method set shared by the character persistence backends.
type Store interface {
	Create(ctx context.Context, c *character.Character) (*character.Character, error)
	GetByID(ctx context.Context, id int64) (*character.Character, error)
	GetByName(ctx context.Context, name string) (*character.Character, error)
	List(ctx context.Context) ([]*character.Character, error)
	Save(ctx context.Context, c *character.Character) error
}

var seq atomic.Int64

// UniqueName returns a character name that has not been used in this process.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixNano(), seq.Add(1))
}

// NewCharacter builds a level-1 character with a stocked inventory.
func NewCharacter(t *testing.T, name string) *character.Character {
	t.Helper()
	c, err := character.Build(name, combatant.Attributes{Body: 6, Mind: 4, Reflex: 3}, 100)
	require.NoError(t, err)
	c.Inventory["minor_potion"] = 2
	c.Spells = []content.Spell{{ID: "fire_bolt", Name: "Fire Bolt", ManaCost: 5, Damage: 10, DamageType: "fire", ScalesWith: "mind"}}
	return c
}

// Run exercises store against the full suite. newStore is called once per
// subtest.
func Run(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("CreateAssignsIDAndTimestamps", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Create(ctx, NewCharacter(t, UniqueName("zara")))
		require.NoError(t, err)
		assert.Greater(t, created.ID, int64(0))
		assert.Equal(t, 1, created.Level)
		assert.Equal(t, 100, created.XPToNextLevel)
		assert.Equal(t, combatant.Attributes{Body: 6, Mind: 4, Reflex: 3}, created.Attributes)
		assert.Equal(t, 2, created.Inventory["minor_potion"])
		require.Len(t, created.Spells, 1)
		assert.Equal(t, "fire_bolt", created.Spells[0].ID)
		assert.False(t, created.CreatedAt.IsZero())
		assert.True(t, created.Fresh())
	})

	t.Run("DuplicateName", func(t *testing.T) {
		s := newStore(t)
		name := UniqueName("dup")
		_, err := s.Create(ctx, NewCharacter(t, name))
		require.NoError(t, err)
		_, err = s.Create(ctx, NewCharacter(t, name))
		assert.ErrorIs(t, err, storage.ErrCharacterNameTaken)
	})

	t.Run("EmptyNameRejected", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Create(ctx, &character.Character{})
		assert.Error(t, err)
	})

	t.Run("GetByName", func(t *testing.T) {
		s := newStore(t)
		name := UniqueName("byname")
		created, err := s.Create(ctx, NewCharacter(t, name))
		require.NoError(t, err)
		got, err := s.GetByName(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetByID(ctx, 999999)
		assert.ErrorIs(t, err, storage.ErrCharacterNotFound)
		_, err = s.GetByName(ctx, UniqueName("nobody"))
		assert.ErrorIs(t, err, storage.ErrCharacterNotFound)
		err = s.Save(ctx, &character.Character{ID: 999999, Name: "ghost", XPToNextLevel: 1})
		assert.ErrorIs(t, err, storage.ErrCharacterNotFound)
	})

	t.Run("SaveRejectsUnsaved", func(t *testing.T) {
		s := newStore(t)
		err := s.Save(ctx, NewCharacter(t, UniqueName("unsaved")))
		assert.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrCharacterNotFound)
	})

	t.Run("SaveRoundTripsProgress", func(t *testing.T) {
		s := newStore(t)
		c, err := s.Create(ctx, NewCharacter(t, UniqueName("hero")))
		require.NoError(t, err)

		killed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		c.Level = 2
		c.Experience = 10
		c.XPToNextLevel = 150
		c.PassiveSlots = 1
		c.CurrentHP, c.CurrentMP, c.CurrentEP = 40, 12, 30
		c.Gold, c.Essence = 17, 3
		c.Inventory["minor_potion"] = 1
		c.Inventory["ember_mote"] = 4
		c.Equipment = []content.Equipment{{ID: "leather_cap", Name: "Leather Cap", Slot: "head", Bonuses: combatant.Bonuses{HP: 5, Defense: 1}}}
		c.Abilities = []content.Ability{{ID: "cleave", Name: "Cleave", EPCost: 10}}
		c.Consumables = []content.Consumable{{ID: "minor_potion", Name: "Minor Potion", EffectType: "RestoreHP", Magnitude: 20}}
		c.LootChests = []character.LootChest{{ID: "chest-1", Tier: "easy", Source: "Ghoul", Elite: true}}
		c.RecordKill("Ghoul", killed)
		require.NoError(t, s.Save(ctx, c))

		got, err := s.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Level)
		assert.Equal(t, 10, got.Experience)
		assert.Equal(t, 150, got.XPToNextLevel)
		assert.Equal(t, 1, got.PassiveSlots)
		assert.Equal(t, [3]int{40, 12, 30}, [3]int{got.CurrentHP, got.CurrentMP, got.CurrentEP})
		assert.Equal(t, 17, got.Gold)
		assert.Equal(t, 3, got.Essence)
		assert.Equal(t, map[string]int{"minor_potion": 1, "ember_mote": 4}, got.Inventory)
		assert.Equal(t, c.Equipment, got.Equipment)
		assert.Equal(t, c.Abilities, got.Abilities)
		assert.Equal(t, c.Consumables, got.Consumables)
		assert.Equal(t, c.LootChests, got.LootChests)
		require.Contains(t, got.Bestiary, "Ghoul")
		assert.Equal(t, 1, got.Bestiary["Ghoul"].Kills)
		assert.True(t, killed.Equal(got.Bestiary["Ghoul"].FirstKilled))
		assert.False(t, got.Fresh())
		assert.False(t, c.UpdatedAt.Before(c.CreatedAt))
	})

	t.Run("List", func(t *testing.T) {
		s := newStore(t)
		a, err := s.Create(ctx, NewCharacter(t, UniqueName("list_a")))
		require.NoError(t, err)
		b, err := s.Create(ctx, NewCharacter(t, UniqueName("list_b")))
		require.NoError(t, err)
		all, err := s.List(ctx)
		require.NoError(t, err)
		ids := make([]int64, len(all))
		for i, c := range all {
			ids[i] = c.ID
		}
		assert.Contains(t, ids, a.ID)
		assert.Contains(t, ids, b.ID)
		assert.IsIncreasing(t, ids)
	})

	t.Run("Property_CreateThenGet", func(t *testing.T) {
		s := newStore(t)
		rapid.Check(t, func(rt *rapid.T) {
			attrs := combatant.Attributes{
				Body:   rapid.IntRange(1, 20).Draw(rt, "body"),
				Mind:   rapid.IntRange(1, 20).Draw(rt, "mind"),
				Reflex: rapid.IntRange(1, 20).Draw(rt, "reflex"),
			}
			gold := rapid.IntRange(0, 10000).Draw(rt, "gold")
			c, err := character.Build(UniqueName("prop"), attrs, 100)
			require.NoError(rt, err)
			c.Gold = gold

			created, err := s.Create(ctx, c)
			require.NoError(rt, err)
			got, err := s.GetByID(ctx, created.ID)
			require.NoError(rt, err)
			assert.Equal(rt, attrs, got.Attributes)
			assert.Equal(rt, gold, got.Gold)
			assert.NotNil(rt, got.Inventory)
			assert.NotNil(rt, got.Bestiary)
		})
	})
}
