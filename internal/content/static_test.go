package content_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arcanum/internal/content"
	"github.com/cory-johannsen/arcanum/internal/game/dice"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int { return min(f.val, n-1) }

const libraryDir = "../../content/library"

func loadLibrary(t testing.TB) *content.Library {
	t.Helper()
	lib, err := content.LoadLibrary(libraryDir)
	require.NoError(t, err)
	return lib
}

func TestLoadLibrary_Bundled(t *testing.T) {
	lib := loadLibrary(t)
	assert.NotEmpty(t, lib.Enemies)
	assert.NotEmpty(t, lib.Spells)
	assert.NotEmpty(t, lib.Abilities)
	assert.NotEmpty(t, lib.Consumables)
	assert.NotEmpty(t, lib.Equipment)

	ghoul := lib.Descriptors(content.KindEnemy)[0].Enemy
	assert.Equal(t, "Ghoul", ghoul.Name)
	require.NotNil(t, ghoul.Special)
	assert.Equal(t, 3, ghoul.Special.Cooldown)
	assert.Equal(t, "undead", ghoul.AIDomain)
}

func TestLoadLibrary_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("enemies:\n  - name: X\n    level: 1\n    colour: red\n"), 0o644))
	_, err := content.LoadLibrary(dir)
	assert.Error(t, err)
}

func TestLoadLibrary_RejectsInvalidEntry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("enemies:\n  - name: X\n    level: 0\n"), 0o644))
	_, err := content.LoadLibrary(dir)
	assert.Error(t, err)
}

func TestLoadLibrary_MissingDir(t *testing.T) {
	_, err := content.LoadLibrary(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestStaticGenerator_PromptNarrowsChoice(t *testing.T) {
	g := content.NewStaticGenerator(loadLibrary(t), fixedSrc{val: 0}, zap.NewNop())
	d, err := g.Generate(context.Background(), 3, content.KindEnemy, "a burning wisp")
	require.NoError(t, err)
	require.NotNil(t, d.Enemy)
	assert.Equal(t, "Ember Wisp", d.Enemy.Name)
	assert.Equal(t, 3, d.Enemy.Level, "scaled to the requested level")
}

func TestStaticGenerator_ReturnsCopies(t *testing.T) {
	lib := loadLibrary(t)
	g := content.NewStaticGenerator(lib, fixedSrc{val: 0}, zap.NewNop())
	d, err := g.Generate(context.Background(), 7, content.KindEnemy, "ghoul")
	require.NoError(t, err)
	d.Enemy.Special.Damage = 999
	assert.Equal(t, 1, lib.Enemies[0].Level)
	assert.Equal(t, 4, lib.Enemies[0].Special.Damage)
}

func TestStaticGenerator_Errors(t *testing.T) {
	g := content.NewStaticGenerator(&content.Library{}, fixedSrc{}, zap.NewNop())
	_, err := g.Generate(context.Background(), 1, content.KindSpell, "")
	assert.ErrorIs(t, err, content.ErrNoContent)
	_, err = g.Generate(context.Background(), 1, content.Kind("quest"), "")
	assert.ErrorIs(t, err, content.ErrUnsupportedKind)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, 1, content.KindSpell, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProperty_StaticGenerator_AlwaysValid(t *testing.T) {
	lib := loadLibrary(t)
	kinds := []content.Kind{content.KindEnemy, content.KindSpell, content.KindAbility, content.KindConsumable, content.KindEquipment}
	g := content.NewStaticGenerator(lib, dice.NewCryptoSource(), zap.NewNop())
	rapid.Check(t, func(rt *rapid.T) {
		kind := rapid.SampledFrom(kinds).Draw(rt, "kind")
		level := rapid.IntRange(1, 20).Draw(rt, "level")
		prompt := rapid.SampledFrom([]string{"", "fire", "poison cure", "zzz"}).Draw(rt, "prompt")
		d, err := g.Generate(context.Background(), level, kind, prompt)
		if err != nil {
			rt.Fatalf("generate: %v", err)
		}
		if err := d.Validate(); err != nil {
			rt.Fatalf("invalid descriptor: %v", err)
		}
		if d.Kind != kind {
			rt.Fatalf("kind %q, want %q", d.Kind, kind)
		}
	})
}
