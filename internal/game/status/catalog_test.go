package status_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arcanum/internal/game/status"
)

func TestParseKind_Variants(t *testing.T) {
	for in, want := range map[string]status.Kind{
		"Burn":          status.Burn,
		"poisoned":      status.Poison,
		"weaken_body":   status.WeakenBody,
		"Weaken Body":   status.WeakenBody,
		"TEMP_SPEED_UP": status.TempSpeedUp,
		"frozen":        status.Freeze,
		"Silence":       status.Silence,
	} {
		got, err := status.ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseKind_Unknown(t *testing.T) {
	_, err := status.ParseKind("Petrify")
	assert.Error(t, err)
}

func TestLoadCatalog_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "root.yaml"), []byte(`
kind: Root
name: Entangled
description: "Vines hold you fast."
default_duration: 4
default_magnitude: 0
`), 0644))

	cat, err := status.LoadCatalog(dir)
	require.NoError(t, err)
	def, ok := cat.Get(status.Root)
	require.True(t, ok)
	assert.Equal(t, "Entangled", def.Name)
	assert.Equal(t, 4, def.DefaultDuration)
	_, ok = cat.Get(status.Burn)
	assert.True(t, ok, "defaults are retained for kinds not overridden")
}

func TestLoadCatalog_UnknownField_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("kind: Burn\nfoo: 1\ndefault_duration: 1\n"), 0644))
	_, err := status.LoadCatalog(dir)
	assert.Error(t, err)
}

func TestLoadCatalog_InvalidDuration_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("kind: Burn\ndefault_duration: 0\n"), 0644))
	_, err := status.LoadCatalog(dir)
	assert.Error(t, err)
}

func TestLoadCatalog_NonexistentDir_ReturnsError(t *testing.T) {
	_, err := status.LoadCatalog("/nonexistent/path/that/does/not/exist")
	assert.Error(t, err)
}

func TestLoadCatalog_RealContent(t *testing.T) {
	cat, err := status.LoadCatalog("../../../content/status")
	require.NoError(t, err)
	for _, k := range status.AllKinds() {
		_, ok := cat.Get(k)
		assert.True(t, ok, "kind %s must be present", k)
	}
}

func TestSet_RemoveAbsent_NoOp(t *testing.T) {
	s := status.NewSet()
	assert.False(t, s.Remove(status.Stun))
	assert.Equal(t, 0, s.Magnitude(status.Stun))
}

func TestPropertyKind_TextRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		kinds := status.AllKinds()
		k := kinds[rapid.IntRange(0, len(kinds)-1).Draw(rt, "kind")]
		b, err := k.MarshalText()
		require.NoError(rt, err)
		var back status.Kind
		require.NoError(rt, back.UnmarshalText(b))
		assert.Equal(rt, k, back)
	})
}
