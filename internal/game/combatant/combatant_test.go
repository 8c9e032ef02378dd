package combatant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arcanum/internal/game/combatant"
	"github.com/cory-johannsen/arcanum/internal/game/status"
)

type zeroSrc struct{}

func (zeroSrc) Intn(int) int { return 0 }

func nopLogger() *zap.Logger { return zap.NewNop() }

func playerRules() combatant.Rules {
	return combatant.Rules{
		Base:                  combatant.Base{HP: 50, MP: 20, EP: 20, Speed: 5},
		HPPerLevel:            10,
		HPPerBody:             5,
		MPPerLevel:            5,
		MPPerMind:             4,
		EPPerLevel:            5,
		EPPerReflex:           4,
		SpeedPerLevel:         0,
		SpeedPerReflex:        1,
		PhysicalPowerPerBody:  1.5,
		MagicPowerPerMind:     1.5,
		DefensePerBody:        0.5,
		DefensePerReflex:      0.3,
		DefendingBonusPercent: 50,
	}
}

func baseInput() combatant.Input {
	return combatant.Input{
		Level:      2,
		Attributes: combatant.Attributes{Body: 5, Mind: 3, Reflex: 4},
		Base:       playerRules().Base,
	}
}

func TestCalculate_Formulas(t *testing.T) {
	s := combatant.Calculate(playerRules(), baseInput())
	assert.Equal(t, 50+20+25, s.MaxHP)
	assert.Equal(t, 20+10+12, s.MaxMP)
	assert.Equal(t, 20+10+16, s.MaxEP)
	assert.Equal(t, 5+4, s.Speed)
	assert.Equal(t, 7, s.PhysicalPower) // floor(7.5)
	assert.Equal(t, 4, s.MagicPower)    // floor(4.5)
	assert.Equal(t, 3, s.Defense)       // floor(2.5 + 1.2)
	assert.Equal(t, 0.0, s.Reflection)
}

func TestCalculate_BonusesAdd(t *testing.T) {
	in := baseInput()
	in.Bonuses = combatant.Bonuses{HP: 7, Body: 1, Defense: 2, Speed: 3}
	s := combatant.Calculate(playerRules(), in)
	assert.Equal(t, 6, s.Body)
	assert.Equal(t, 50+20+30+7, s.MaxHP)
	assert.Equal(t, 6, s.Defense) // floor(3.0 + 1.2) + 2
	assert.Equal(t, 12, s.Speed)
}

func TestCalculate_StrengthenBeforeFormulas(t *testing.T) {
	in := baseInput()
	in.Effects = []status.Active{{Kind: status.StrengthenBody, Duration: 2, Magnitude: 3}}
	s := combatant.Calculate(playerRules(), in)
	assert.Equal(t, 8, s.Body)
	assert.Equal(t, 12, s.PhysicalPower)
	assert.Equal(t, 50+20+40, s.MaxHP)
}

func TestCalculate_WeakenFloorsAtOne(t *testing.T) {
	in := baseInput()
	in.Effects = []status.Active{{Kind: status.WeakenMind, Duration: 2, Magnitude: 50}}
	s := combatant.Calculate(playerRules(), in)
	assert.Equal(t, 1, s.Mind)
	assert.Equal(t, 1, s.MagicPower)
}

func TestCalculate_BuffAndDebuffOrderIndependent(t *testing.T) {
	weaken := status.Active{Kind: status.WeakenBody, Duration: 2, Magnitude: 5}
	strengthen := status.Active{Kind: status.StrengthenBody, Duration: 2, Magnitude: 4}
	in := baseInput()
	in.Attributes.Body = 3

	in.Effects = []status.Active{weaken, strengthen}
	first := combatant.Calculate(playerRules(), in)
	in.Effects = []status.Active{strengthen, weaken}
	second := combatant.Calculate(playerRules(), in)

	assert.Equal(t, 2, first.Body)
	assert.Equal(t, first, second)
}

func TestCalculate_EffectOrderIrrelevant_Property(t *testing.T) {
	kinds := []status.Kind{
		status.StrengthenBody, status.StrengthenMind, status.StrengthenReflex,
		status.WeakenBody, status.WeakenMind, status.WeakenReflex,
	}
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(rt, "n")
		effects := make([]status.Active, n)
		for i := range effects {
			effects[i] = status.Active{
				Kind:      rapid.SampledFrom(kinds).Draw(rt, "kind"),
				Duration:  2,
				Magnitude: rapid.IntRange(1, 10).Draw(rt, "magnitude"),
			}
		}
		reversed := make([]status.Active, n)
		for i, e := range effects {
			reversed[n-1-i] = e
		}
		in := baseInput()
		in.Effects = effects
		forward := combatant.Calculate(playerRules(), in)
		in.Effects = reversed
		backward := combatant.Calculate(playerRules(), in)
		if forward != backward {
			rt.Fatalf("order changed stats: %+v vs %+v", forward, backward)
		}
		if forward.Body < 1 || forward.Mind < 1 || forward.Reflex < 1 {
			rt.Fatalf("attribute below 1: %+v", forward)
		}
	})
}

func TestCalculate_DerivedBuffsAddedAfter(t *testing.T) {
	in := baseInput()
	in.Effects = []status.Active{
		{Kind: status.TempSpeedUp, Duration: 2, Magnitude: 4},
		{Kind: status.TempMaxHPUp, Duration: 2, Magnitude: 15},
	}
	s := combatant.Calculate(playerRules(), in)
	assert.Equal(t, 13, s.Speed)
	assert.Equal(t, 110, s.MaxHP)
}

func TestCalculate_DefendingRaisesDefense(t *testing.T) {
	in := baseInput()
	in.Bonuses.Defense = 3
	in.Effects = []status.Active{{Kind: status.Defending, Duration: 1}}
	s := combatant.Calculate(playerRules(), in)
	assert.Equal(t, 9, s.Defense) // floor(6 * 1.5)
}

func TestCalculate_ReflectionClamped(t *testing.T) {
	in := baseInput()
	in.Bonuses.ReflectionPercent = 80
	in.Effects = []status.Active{{Kind: status.DamageReflection, Duration: 2, Magnitude: 40}}
	s := combatant.Calculate(playerRules(), in)
	assert.Equal(t, 1.0, s.Reflection)

	in.Bonuses.ReflectionPercent = 10
	in.Effects[0].Magnitude = 15
	assert.InDelta(t, 0.25, combatant.Calculate(playerRules(), in).Reflection, 1e-9)
}

func TestParseAttribute(t *testing.T) {
	for in, want := range map[string]combatant.Attribute{
		"":       combatant.AttributeNone,
		"Body":   combatant.Body,
		"MIND":   combatant.Mind,
		"reflex": combatant.Reflex,
	} {
		got, err := combatant.ParseAttribute(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := combatant.ParseAttribute("luck")
	assert.Error(t, err)
}

func newPlayer() *combatant.Combatant {
	in := baseInput()
	return combatant.New(playerRules(), combatant.Spec{
		ID:         "p1",
		Name:       "Wren",
		Kind:       combatant.KindPlayer,
		Level:      in.Level,
		Attributes: in.Attributes,
		Base:       in.Base,
		Inventory:  map[string]int{"potion": 2, "empty": 0},
	})
}

func TestNew_StartsFull(t *testing.T) {
	c := newPlayer()
	assert.Equal(t, c.Stats().MaxHP, c.HP)
	assert.Equal(t, c.Stats().MaxMP, c.MP)
	assert.Equal(t, c.Stats().MaxEP, c.EP)
	assert.Equal(t, 0, c.ItemCount("empty"))
	_, present := c.Inventory["empty"]
	assert.False(t, present)
}

func TestNew_EnemyGetsTraits(t *testing.T) {
	c := combatant.New(playerRules(), combatant.Spec{ID: "e1", Kind: combatant.KindEnemy, Level: 1})
	require.NotNil(t, c.Enemy)
	assert.False(t, c.IsPlayer())
}

func TestRecompute_ClampsOnExpiry(t *testing.T) {
	c := newPlayer()
	engine := status.NewEngine(status.DefaultCatalog(), zeroSrc{}, nopLogger())
	engine.Apply(c, status.Application{Kind: status.TempMaxHPUp, Chance: 100, Duration: 1, Magnitude: 20}, "x", 1)
	c.Restore(100)
	assert.Equal(t, 115, c.HP)
	engine.Tick(c, 2)
	assert.Equal(t, 95, c.Stats().MaxHP)
	assert.Equal(t, 95, c.HP)
}

func TestDamageAndRestore(t *testing.T) {
	c := newPlayer()
	assert.Equal(t, 10, c.TakeDamage(10))
	assert.Equal(t, 10, c.Restore(50))
	hp := c.HP
	assert.Equal(t, hp, c.TakeDamage(1000))
	assert.True(t, c.IsDefeated())
	assert.Equal(t, 0, c.TakeDamage(-3))
}

func TestItems(t *testing.T) {
	c := newPlayer()
	assert.False(t, c.RemoveItem("potion", 3))
	assert.Equal(t, 2, c.ItemCount("potion"))
	assert.True(t, c.RemoveItem("potion", 2))
	_, present := c.Inventory["potion"]
	assert.False(t, present)
	c.AddItem("herb", 3)
	c.AddItem("herb", -1)
	assert.Equal(t, 3, c.ItemCount("herb"))
}

func TestProperty_HPStaysInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := newPlayer()
		engine := status.NewEngine(status.DefaultCatalog(), zeroSrc{}, nopLogger())
		kinds := status.AllKinds()
		n := rapid.IntRange(1, 20).Draw(rt, "steps")
		for i := 0; i < n; i++ {
			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0:
				c.TakeDamage(rapid.IntRange(0, 200).Draw(rt, "dmg"))
			case 1:
				c.Restore(rapid.IntRange(0, 200).Draw(rt, "heal"))
			case 2:
				k := kinds[rapid.IntRange(0, len(kinds)-1).Draw(rt, "kind")]
				engine.Apply(c, status.Application{
					Kind:      k,
					Chance:    100,
					Duration:  rapid.IntRange(1, 3).Draw(rt, "dur"),
					Magnitude: rapid.IntRange(1, 40).Draw(rt, "mag"),
				}, "src", i)
			case 3:
				engine.Tick(c, i)
			}
			assert.GreaterOrEqual(rt, c.HP, 0)
			assert.LessOrEqual(rt, c.HP, c.Stats().MaxHP)
		}
	})
}
