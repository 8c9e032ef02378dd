package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arcanum/internal/game/dice"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{Expression: "1d6+3", Dice: []int{4}, Modifier: 3}
	assert.Equal(t, 7, r.Total())
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "1d6+12", Dice: []int{4}, Modifier: 12}
	assert.Equal(t, "1d6+12 → [4] +12 = 16", r.String())
}

func TestExpression(t *testing.T) {
	assert.Equal(t, "1d6", dice.Expression(6, 0))
	assert.Equal(t, "1d6+3", dice.Expression(6, 3))
	assert.Equal(t, "1d20-1", dice.Expression(20, -1))
}

func TestPercent_UsesTenThousandBuckets(t *testing.T) {
	assert.Equal(t, 0.0, dice.Percent(fixedSrc{val: 0}))
	assert.Equal(t, 75.5, dice.Percent(fixedSrc{val: 7550}))
	assert.Equal(t, 99.99, dice.Percent(fixedSrc{val: 1 << 30}))
}

func TestBetween_DegenerateRange(t *testing.T) {
	assert.Equal(t, 5, dice.Between(fixedSrc{val: 3}, 5, 5))
	assert.Equal(t, 9, dice.Between(fixedSrc{val: 3}, 9, 2))
}

func TestRoller_Roll_LogsAtDebug(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewLoggedRoller(fixedSrc{val: 3}, zap.New(core))
	res := r.Roll(6, 10)
	assert.Equal(t, []int{4}, res.Dice)
	assert.Equal(t, 14, res.Total())
	assert.Equal(t, 1, logs.FilterMessage("dice roll").Len())
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestPropertyBetween_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-50, 50).Draw(rt, "lo")
		hi := rapid.IntRange(lo, lo+100).Draw(rt, "hi")
		v := dice.Between(src, lo, hi)
		assert.GreaterOrEqual(rt, v, lo)
		assert.LessOrEqual(rt, v, hi)
	})
}

func TestPropertyRoll_InRange(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	rapid.Check(t, func(rt *rapid.T) {
		sides := rapid.IntRange(1, 100).Draw(rt, "sides")
		res := r.Roll(sides, 0)
		assert.GreaterOrEqual(rt, res.Total(), 1)
		assert.LessOrEqual(rt, res.Total(), sides)
	})
}
