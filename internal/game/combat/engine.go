// Package combat resolves turn-based encounters between one player and one or
// more enemies.
package combat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arcanum/internal/game/ai"
	"github.com/cory-johannsen/arcanum/internal/game/combatant"
	"github.com/cory-johannsen/arcanum/internal/game/dice"
	"github.com/cory-johannsen/arcanum/internal/game/reward"
	"github.com/cory-johannsen/arcanum/internal/game/status"
)

// Config holds the combat rules.
type Config struct {
	PlayerRules combatant.Rules
	EnemyRules  combatant.Rules
	// BasicAttackBase is the base damage of a basic attack.
	BasicAttackBase int
	// BasicAttackType is the damage type tag of a basic attack.
	BasicAttackType string
	// FleeChance is the flee success chance in percent.
	FleeChance float64
	// InitiativeDie is the number of sides of the initiative die.
	InitiativeDie int
	// SpellScalingFactor multiplies a spell's scaling attribute.
	SpellScalingFactor float64
	// DefaultSpecialCooldown applies to specials generated without one.
	DefaultSpecialCooldown int
}

// DefaultConfig returns the standard rules.
func DefaultConfig() Config {
	return Config{
		PlayerRules: combatant.Rules{
			Base:                  combatant.Base{HP: 50, MP: 20, EP: 20, Speed: 5},
			HPPerLevel:            10,
			HPPerBody:             5,
			MPPerLevel:            5,
			MPPerMind:             4,
			EPPerLevel:            5,
			EPPerReflex:           4,
			SpeedPerReflex:        1,
			PhysicalPowerPerBody:  1.5,
			MagicPowerPerMind:     1.5,
			DefensePerBody:        0.5,
			DefensePerReflex:      0.3,
			DefendingBonusPercent: 50,
		},
		EnemyRules: combatant.Rules{
			Base:                  combatant.Base{HP: 20, Speed: 3},
			HPPerLevel:            8,
			HPPerBody:             4,
			SpeedPerReflex:        1,
			PhysicalPowerPerBody:  1.2,
			MagicPowerPerMind:     1.2,
			DefensePerBody:        0.4,
			DefensePerReflex:      0.2,
			DefendingBonusPercent: 50,
		},
		BasicAttackBase:        5,
		BasicAttackType:        "physical",
		FleeChance:             75,
		InitiativeDie:          6,
		SpellScalingFactor:     0.5,
		DefaultSpecialCooldown: 2,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.BasicAttackBase < 0:
		return fmt.Errorf("combat config: basic_attack_base must be >= 0, got %d", c.BasicAttackBase)
	case c.FleeChance < 0 || c.FleeChance > 100:
		return fmt.Errorf("combat config: flee_chance must be in [0, 100], got %v", c.FleeChance)
	case c.InitiativeDie < 1:
		return fmt.Errorf("combat config: initiative_die must be >= 1, got %d", c.InitiativeDie)
	case c.SpellScalingFactor < 0:
		return fmt.Errorf("combat config: spell_scaling_factor must be >= 0, got %v", c.SpellScalingFactor)
	case c.DefaultSpecialCooldown < 0:
		return fmt.Errorf("combat config: default_special_cooldown must be >= 0, got %d", c.DefaultSpecialCooldown)
	}
	return nil
}

// IntentPlanner chooses an enemy's action; *ai.Registry satisfies it.
type IntentPlanner interface {
	Intent(domainID string, state *ai.WorldState) (ai.PlannedAction, error)
}

// Engine drives sessions. It holds no per-encounter state, so one Engine
// serves any number of sessions; each session must be driven by one caller
// at a time.
type Engine struct {
	cfg       Config
	status    *status.Engine
	rewards   *reward.Distributor
	planner   IntentPlanner
	freestyle FreestyleResolver
	roller    *dice.Roller
	logger    *zap.Logger
}

// NewEngine creates an Engine. A nil planner uses the default AI domain; a nil
// freestyle resolver uses the d6 outcome table.
//
// Precondition: st, rewards, roller and logger must not be nil.
func NewEngine(cfg Config, st *status.Engine, rewards *reward.Distributor, planner IntentPlanner, freestyle FreestyleResolver, roller *dice.Roller, logger *zap.Logger) *Engine {
	if st == nil || rewards == nil || roller == nil || logger == nil {
		panic("combat.NewEngine: status engine, distributor, roller and logger must not be nil")
	}
	if planner == nil {
		planner = ai.NewRegistry()
	}
	if freestyle == nil {
		freestyle = NewTableFreestyle(roller)
	}
	return &Engine{cfg: cfg, status: st, rewards: rewards, planner: planner, freestyle: freestyle, roller: roller, logger: logger}
}

// Config returns the engine's rules.
func (e *Engine) Config() Config { return e.cfg }

// Begin rolls initiative once and hands the first turn to the winning side.
//
// Precondition: s.Phase == PhaseStart.
// Postcondition: s.Phase is PlayerTurn, EnemyTurn, or terminal if a
// turn-start tick ended the encounter.
func (e *Engine) Begin(s *Session) (Initiative, error) {
	if s.Phase != PhaseStart {
		return Initiative{}, fmt.Errorf("begin in phase %s: %w", s.Phase, ErrWrongPhase)
	}
	s.Phase = PhaseInitiative
	in := RollInitiative(s.Player, s.LivingEnemies(), e.roller, e.cfg.InitiativeDie)
	s.PlayerFirst = in.PlayerFirst
	first := "the enemy acts"
	if in.PlayerFirst {
		first = "you act"
	}
	s.emit(nil, CategoryInfo, "Initiative: you %d, enemies %.1f. %s first.", in.PlayerRoll, in.EnemyRoll, first)
	e.logger.Info("encounter started",
		zap.String("session", s.ID),
		zap.Int("enemies", len(s.Enemies)),
		zap.Bool("player_first", in.PlayerFirst),
	)
	if in.PlayerFirst {
		e.startPlayerTurn(s)
	} else {
		e.startEnemyPhase(s)
	}
	return in, nil
}

// AdvanceEnemy runs the current enemy's turn: turn-start tick, then its
// planned action unless the tick defeated or stunned it. Control then passes
// to the next living enemy, or, after the last one, the turn counter
// increments and the player's turn starts.
//
// Precondition: s.Phase == PhaseEnemyTurn.
func (e *Engine) AdvanceEnemy(ctx context.Context, s *Session) error {
	if s.Phase != PhaseEnemyTurn {
		return fmt.Errorf("advance enemy in phase %s: %w", s.Phase, ErrNotEnemyTurn)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	enemy := s.Enemies[s.EnemyIndex]
	if !enemy.IsDefeated() {
		e.enemyTurn(s, enemy)
	}
	if s.Over() {
		return nil
	}
	if next := s.nextLivingEnemy(s.EnemyIndex + 1); next >= 0 {
		s.EnemyIndex = next
		return nil
	}
	s.Turn++
	e.startPlayerTurn(s)
	return nil
}

func (e *Engine) enemyTurn(s *Session, enemy *combatant.Combatant) {
	tick := e.status.Tick(enemy, s.Turn)
	e.reportTick(s, enemy, tick)
	if s.Over() || enemy.IsDefeated() {
		return
	}
	if enemy.Enemy.SpecialCooldown > 0 {
		enemy.Enemy.SpecialCooldown--
	}
	flags := flagsOf(tick)
	if flags.Stunned {
		s.emit(enemy, CategoryStatus, "%s is stunned and loses the turn.", enemy.Name)
		return
	}

	intent, err := e.planner.Intent(enemy.Enemy.AIDomain, BuildWorldState(s, enemy, flags))
	if err != nil {
		e.logger.Warn("enemy planning failed", zap.String("enemy", enemy.Name), zap.Error(err))
		intent = ai.PlannedAction{Action: ai.ActionAttack, Target: s.Player.ID}
	}
	e.logger.Debug("enemy intent",
		zap.String("enemy", enemy.Name),
		zap.String("action", intent.Action),
		zap.String("target", intent.Target),
	)

	switch intent.Action {
	case ai.ActionDefend:
		s.emit(enemy, CategoryAction, "%s braces for impact.", enemy.Name)
		e.applyStatus(s, enemy, enemy, &StatusPayload{Kind: status.Defending, Chance: 100, Duration: 1})
	case ai.ActionSpecial:
		sp := enemy.Enemy.Special
		switch {
		case sp == nil || enemy.Enemy.SpecialCooldown > 0:
			e.basicAttack(s, enemy, s.Player)
		case flags.Silenced:
			s.emit(enemy, CategoryStatus, "%s is silenced and cannot use %s.", enemy.Name, sp.Name)
			e.basicAttack(s, enemy, s.Player)
		default:
			e.enemySpecial(s, enemy, sp)
		}
	default:
		e.basicAttack(s, enemy, s.Player)
	}
}

func (e *Engine) startPlayerTurn(s *Session) {
	s.Phase = PhasePlayerTurn
	tick := e.status.Tick(s.Player, s.Turn)
	s.playerFlags = flagsOf(tick)
	e.reportTick(s, s.Player, tick)
	if s.Over() {
		return
	}
	if s.playerFlags.Stunned {
		s.emit(s.Player, CategoryStatus, "%s is stunned and loses the turn.", s.Player.Name)
		e.startEnemyPhase(s)
	}
}

func (e *Engine) startEnemyPhase(s *Session) {
	i := s.nextLivingEnemy(0)
	if i < 0 {
		e.checkTerminal(s)
		return
	}
	s.Phase = PhaseEnemyTurn
	s.EnemyIndex = i
}

// reportTick logs a turn-start tick and routes a tick defeat.
func (e *Engine) reportTick(s *Session, c *combatant.Combatant, t status.TickResult) {
	cat := e.status.Catalog()
	for _, d := range t.Details {
		if d.Damage > 0 {
			s.emit(c, CategoryDamage, "%s takes %d damage from %s.", c.Name, d.Damage, cat.Name(d.Kind))
		}
		if d.Healed > 0 {
			s.emit(c, CategoryHeal, "%s recovers %d HP from %s.", c.Name, d.Healed, cat.Name(d.Kind))
		}
	}
	for _, k := range t.Expired {
		s.emit(c, CategoryStatus, "%s is no longer %s.", c.Name, cat.Name(k))
	}
	if t.Defeated {
		e.onDefeated(s, c)
		e.checkTerminal(s)
	}
}

// checkTerminal moves s to Defeat or Victory. Defeat is checked first.
//
// Postcondition: returns true iff s is in a terminal phase.
func (e *Engine) checkTerminal(s *Session) bool {
	if s.Over() {
		return true
	}
	switch {
	case s.Player.IsDefeated():
		s.Phase = PhaseDefeat
		s.emit(nil, CategoryOutcome, "Defeat. %s has fallen.", s.Player.Name)
	case len(s.LivingEnemies()) == 0:
		s.Phase = PhaseVictory
		s.emit(nil, CategoryOutcome, "Victory! Earned %d XP, %d gold, %d essence.", s.Spoils.XP, s.Spoils.Gold, s.Spoils.Essence)
	default:
		return false
	}
	e.logger.Info("encounter ended",
		zap.String("session", s.ID),
		zap.Stringer("phase", s.Phase),
		zap.Int("turn", s.Turn),
	)
	return true
}

// onDefeated handles a combatant reaching 0 HP. Enemies are rewarded once.
func (e *Engine) onDefeated(s *Session, c *combatant.Combatant) {
	if c.IsPlayer() {
		s.emit(c, CategoryOutcome, "%s collapses.", c.Name)
		return
	}
	if s.rewarded[c.ID] {
		return
	}
	s.rewarded[c.ID] = true
	s.emit(c, CategoryOutcome, "%s is defeated.", c.Name)
	g := e.rewards.Distribute(c, s.Player, s.Character)
	s.Spoils.Add(g)
	msg := fmt.Sprintf("Gained %d XP, %d gold, %d essence", g.XP, g.Gold, g.Essence)
	if n := len(g.Items); n > 0 {
		msg += fmt.Sprintf(", %d item stacks", n)
	}
	if n := len(g.Chests); n > 0 {
		msg += fmt.Sprintf(", %d loot chests", n)
	}
	s.emit(nil, CategoryReward, "%s.", msg)
	s.retarget()
}
