package character_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arcanum/internal/content"
	"github.com/cory-johannsen/arcanum/internal/game/character"
	"github.com/cory-johannsen/arcanum/internal/game/combatant"
)

func makeAttrs() combatant.Attributes {
	return combatant.Attributes{Body: 5, Mind: 4, Reflex: 3}
}

func TestBuild_Defaults(t *testing.T) {
	c, err := character.Build("Wren", makeAttrs(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 100, c.XPToNextLevel)
	assert.NotNil(t, c.Inventory)
	assert.True(t, c.Fresh())
}

func TestBuild_Validation(t *testing.T) {
	_, err := character.Build("", makeAttrs(), 100)
	assert.Error(t, err)
	_, err = character.Build("Wren", combatant.Attributes{Body: 0, Mind: 1, Reflex: 1}, 100)
	assert.Error(t, err)
	_, err = character.Build("Wren", makeAttrs(), 0)
	assert.Error(t, err)
}

func TestCheckLevelUp_ExactThreshold(t *testing.T) {
	c, err := character.Build("Wren", makeAttrs(), 100)
	require.NoError(t, err)
	c.Experience = 100

	got := c.CheckLevelUp(5)
	assert.True(t, got.Leveled)
	assert.Equal(t, 2, c.Level)
	assert.Equal(t, 150, c.XPToNextLevel)
	assert.Equal(t, 0, c.Experience)

	again := c.CheckLevelUp(5)
	assert.False(t, again.Leveled)
	assert.Equal(t, 2, c.Level)
}

func TestCheckLevelUp_OneLevelPerCheck(t *testing.T) {
	c, err := character.Build("Wren", makeAttrs(), 100)
	require.NoError(t, err)
	c.Experience = 10000
	c.CheckLevelUp(5)
	assert.Equal(t, 2, c.Level)
}

func TestCheckLevelUp_PassiveSlot(t *testing.T) {
	c, err := character.Build("Wren", makeAttrs(), 100)
	require.NoError(t, err)
	c.Level = 4
	c.Experience = 100
	got := c.CheckLevelUp(5)
	assert.True(t, got.PassiveSlotUnlocked)
	assert.Equal(t, 1, c.PassiveSlots)
}

func TestCheckLevelUp_Property_ThresholdGrows(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		threshold := rapid.IntRange(1, 100000).Draw(rt, "threshold")
		c := &character.Character{Level: 1, XPToNextLevel: threshold, Experience: threshold}
		got := c.CheckLevelUp(5)
		assert.True(rt, got.Leveled)
		assert.Equal(rt, threshold*3/2, c.XPToNextLevel)
	})
}

func TestRecordKill(t *testing.T) {
	c := &character.Character{}
	now := time.Unix(1700000000, 0)
	c.RecordKill("Ghoul", now)
	c.RecordKill("Ghoul", now.Add(time.Hour))
	e := c.Bestiary["Ghoul"]
	assert.Equal(t, 2, e.Kills)
	assert.Equal(t, now, e.FirstKilled)
}

func TestClone_IsDeep(t *testing.T) {
	c, err := character.Build("Wren", makeAttrs(), 100)
	require.NoError(t, err)
	c.Inventory["potion"] = 2
	c.Spells = []content.Spell{{ID: "fireball", Name: "Fireball"}}
	cp := c.Clone()
	cp.Inventory["potion"] = 0
	cp.Spells[0].Name = "changed"
	cp.RecordKill("Rat", time.Now())
	assert.Equal(t, 2, c.Inventory["potion"])
	assert.Equal(t, "Fireball", c.Spells[0].Name)
	assert.Empty(t, c.Bestiary)
}

func TestEquipmentBonuses(t *testing.T) {
	c := &character.Character{Equipment: []content.Equipment{
		{ID: "ring", Bonuses: combatant.Bonuses{HP: 5, ReflectionPercent: 10}},
		{ID: "helm", Bonuses: combatant.Bonuses{Defense: 2, HP: 3}},
	}}
	b := c.EquipmentBonuses()
	assert.Equal(t, 8, b.HP)
	assert.Equal(t, 2, b.Defense)
	assert.Equal(t, 10, b.ReflectionPercent)
}

func TestLookups(t *testing.T) {
	c := &character.Character{
		Spells:      []content.Spell{{ID: "s"}},
		Abilities:   []content.Ability{{ID: "a"}},
		Consumables: []content.Consumable{{ID: "c"}},
	}
	_, ok := c.Spell("s")
	assert.True(t, ok)
	_, ok = c.Ability("a")
	assert.True(t, ok)
	_, ok = c.Consumable("c")
	assert.True(t, ok)
	_, ok = c.Spell("missing")
	assert.False(t, ok)
}
