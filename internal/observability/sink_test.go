package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/arcanum/internal/game/combat"
)

func TestZapSink_Append(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewZapSink(zap.New(core))

	sink.Append(combat.Event{Turn: 3, Actor: combat.ActorEnemy, ActorName: "Ghoul", Message: "Ghoul attacks", Category: combat.CategoryDamage})
	sink.Append(combat.Event{Turn: 3, Actor: combat.ActorSystem, Message: "target unavailable", Category: combat.CategoryWarning})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "Ghoul attacks", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, int64(3), ctx["turn"])
	assert.Equal(t, "enemy", ctx["actor"])
	assert.Equal(t, "Ghoul", ctx["actor_name"])
	assert.Equal(t, "damage", ctx["category"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestZapSink_IsSink(t *testing.T) {
	var _ combat.Sink = NewZapSink(zap.NewNop())
}

func TestNewZapSink_NilPanics(t *testing.T) {
	assert.Panics(t, func() { NewZapSink(nil) })
}
