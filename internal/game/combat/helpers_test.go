package combat_test

import (
	"strings"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/arcanum/internal/game/character"
	"github.com/cory-johannsen/arcanum/internal/game/combat"
	"github.com/cory-johannsen/arcanum/internal/game/combatant"
	"github.com/cory-johannsen/arcanum/internal/game/dice"
	"github.com/cory-johannsen/arcanum/internal/game/reward"
	"github.com/cory-johannsen/arcanum/internal/game/status"
)

// fixedSrc returns val for every Intn call, clamped to [0, n).
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int { return min(f.val, n-1) }

// lowSrc makes every chance check succeed and every die roll 1.
var lowSrc = fixedSrc{val: 0}

// highSrc makes every percent roll 99.99 and every die roll its maximum.
var highSrc = fixedSrc{val: 1 << 30}

var testPlayerRules = combatant.Rules{
	Base:                  combatant.Base{HP: 100, MP: 50, EP: 50, Speed: 10},
	PhysicalPowerPerBody:  1,
	MagicPowerPerMind:     1,
	DefendingBonusPercent: 50,
}

var testEnemyRules = combatant.Rules{
	Base:                  combatant.Base{HP: 30, Speed: 1},
	PhysicalPowerPerBody:  1,
	MagicPowerPerMind:     1,
	DefendingBonusPercent: 50,
}

// tb is satisfied by *testing.T and *rapid.T.
type tb interface {
	require.TestingT
	Helper()
}

type fixture struct {
	eng    *combat.Engine
	status *status.Engine
	logs   *observer.ObservedLogs
	cfg    combat.Config
}

func newFixture(t tb, src dice.Source, opts ...func(*fixtureOpts)) *fixture {
	t.Helper()
	o := fixtureOpts{cfg: combat.DefaultConfig()}
	o.cfg.PlayerRules = testPlayerRules
	o.cfg.EnemyRules = testEnemyRules
	for _, fn := range opts {
		fn(&o)
	}
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	st := status.NewEngine(status.DefaultCatalog(), src, logger)
	dist := reward.NewDistributor(reward.DefaultTable(), nil, src, logger)
	eng := combat.NewEngine(o.cfg, st, dist, o.planner, o.freestyle, dice.NewLoggedRoller(src, logger), logger)
	return &fixture{eng: eng, status: st, logs: logs, cfg: o.cfg}
}

type fixtureOpts struct {
	cfg       combat.Config
	planner   combat.IntentPlanner
	freestyle combat.FreestyleResolver
}

func withPlanner(p combat.IntentPlanner) func(*fixtureOpts) {
	return func(o *fixtureOpts) { o.planner = p }
}

func withFreestyle(f combat.FreestyleResolver) func(*fixtureOpts) {
	return func(o *fixtureOpts) { o.freestyle = f }
}

func newPlayer(inv map[string]int) *combatant.Combatant {
	return combatant.New(testPlayerRules, combatant.Spec{
		ID:         combat.PlayerID,
		Name:       "Hero",
		Kind:       combatant.KindPlayer,
		Level:      1,
		Attributes: combatant.Attributes{Body: 5, Mind: 5, Reflex: 5},
		Base:       testPlayerRules.Base,
		Inventory:  inv,
	})
}

func newEnemy(id, name string, traits *combatant.EnemyTraits) *combatant.Combatant {
	return combatant.New(testEnemyRules, combatant.Spec{
		ID:         id,
		Name:       name,
		Kind:       combatant.KindEnemy,
		Level:      1,
		Attributes: combatant.Attributes{Body: 2, Mind: 2, Reflex: 2},
		Base:       testEnemyRules.Base,
		Enemy:      traits,
	})
}

func newSession(t tb, player *combatant.Combatant, enemies ...*combatant.Combatant) *combat.Session {
	t.Helper()
	ch, err := character.Build("Hero", combatant.Attributes{Body: 5, Mind: 5, Reflex: 5}, 100)
	require.NoError(t, err)
	s, err := combat.NewSession("s1", player, enemies, ch, nil)
	require.NoError(t, err)
	return s
}

// begun returns a session with one enemy where the player acts first.
func (f *fixture) begun(t tb, player *combatant.Combatant, enemies ...*combatant.Combatant) *combat.Session {
	t.Helper()
	if len(enemies) == 0 {
		enemies = []*combatant.Combatant{newEnemy("e1", "Ghoul", nil)}
	}
	s := newSession(t, player, enemies...)
	in, err := f.eng.Begin(s)
	require.NoError(t, err)
	require.True(t, in.PlayerFirst)
	require.Equal(t, combat.PhasePlayerTurn, s.Phase)
	return s
}

func (f *fixture) inflict(t tb, target *combatant.Combatant, k status.Kind, duration, magnitude int) {
	t.Helper()
	res := f.status.Apply(target, status.Application{Kind: k, Chance: 100, Duration: duration, Magnitude: magnitude}, "test", 1)
	require.True(t, res.Applied)
}

func logContains(s *combat.Session, substr string) bool {
	for _, e := range s.Log() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
