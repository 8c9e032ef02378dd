package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arcanum/internal/config"
	"github.com/cory-johannsen/arcanum/internal/content"
	"github.com/cory-johannsen/arcanum/internal/game/character"
	"github.com/cory-johannsen/arcanum/internal/game/combat"
	"github.com/cory-johannsen/arcanum/internal/game/combatant"
	"github.com/cory-johannsen/arcanum/internal/gameserver"
	"github.com/cory-johannsen/arcanum/internal/observability"
	"github.com/cory-johannsen/arcanum/internal/storage"
)

// errStalemate is returned when an encounter outlasts Options.MaxTurns.
var errStalemate = errors.New("encounter did not finish")

// starterPotions is the number of starter consumables a new character carries.
const starterPotions = 3

// starterKit lists the generated items a new character starts with and the
// concept each is generated from.
var starterKit = []struct {
	kind   content.Kind
	prompt string
}{
	{content.KindSpell, "bolt"},
	{content.KindAbility, "swing"},
	{content.KindConsumable, "potion"},
	{content.KindEquipment, "leather"},
}

// Options describes one simulated encounter.
type Options struct {
	Character  string
	Attributes combatant.Attributes
	Prompt     string
	Enemies    int
	Level      int
	MaxTurns   int
}

// simulator plays encounters on the player's behalf.
type simulator struct {
	cfg       config.Config
	handler   *gameserver.EncounterHandler
	store     characterStore
	generator content.Generator
	out       io.Writer
	logger    *zap.Logger
}

func newSimulator(
	cfg config.Config,
	handler *gameserver.EncounterHandler,
	store characterStore,
	generator content.Generator,
	out io.Writer,
	logger *zap.Logger,
) *simulator {
	return &simulator{cfg: cfg, handler: handler, store: store, generator: generator, out: out, logger: logger}
}

// Run plays one encounter to completion and persists the result.
func (sim *simulator) Run(ctx context.Context, opts Options) (gameserver.Outcome, error) {
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = 100
	}
	ch, err := sim.loadOrCreate(ctx, opts)
	if err != nil {
		return gameserver.Outcome{}, err
	}

	printer := combat.SinkFunc(func(e combat.Event) {
		fmt.Fprintf(sim.out, "[%2d] %-7s %s\n", e.Turn, e.Category, e.Message)
	})
	sink := combat.MultiSink{printer, observability.NewZapSink(observability.ForCharacter(sim.logger.Named("encounter"), ch))}

	s, _, err := sim.handler.Start(ctx, gameserver.StartRequest{
		CharacterID: ch.ID,
		Level:       opts.Level,
		Count:       opts.Enemies,
		Prompt:      opts.Prompt,
		Sink:        sink,
	})
	if err != nil {
		return gameserver.Outcome{}, err
	}

	for !s.Over() {
		if s.Turn > opts.MaxTurns {
			sim.handler.Abandon(ch.ID)
			return gameserver.Outcome{}, fmt.Errorf("%w after %d turns", errStalemate, opts.MaxTurns)
		}
		switch s.Next() {
		case combat.StepAwaitPlayer:
			if err := sim.act(ctx, ch.ID, s); err != nil {
				sim.handler.Abandon(ch.ID)
				return gameserver.Outcome{}, err
			}
		case combat.StepAwaitEnemy:
			if err := sim.handler.RunEnemyTurns(ctx, ch.ID); err != nil {
				sim.handler.Abandon(ch.ID)
				return gameserver.Outcome{}, err
			}
		}
	}

	out, err := sim.handler.Finish(ctx, ch.ID)
	if err != nil {
		return gameserver.Outcome{}, err
	}
	c := out.Character
	fmt.Fprintf(sim.out, "\n%s: %s after %d turns. Level %d, XP %d/%d, HP %d, gold %d, essence %d, chests %d.\n",
		c.Name, out.Phase, s.Turn, c.Level, c.Experience, c.XPToNextLevel, c.CurrentHP, c.Gold, c.Essence, len(c.LootChests))
	if out.LevelUp.Leveled {
		fmt.Fprintf(sim.out, "Level up! Now level %d.\n", out.LevelUp.NewLevel)
	}
	return out, nil
}

// act submits the auto-play choice, falling back to a basic attack when the
// choice is rejected.
func (sim *simulator) act(ctx context.Context, characterID int64, s *combat.Session) error {
	cmd := chooseCommand(s)
	err := sim.handler.Act(ctx, characterID, cmd)
	if err == nil || cmd.Kind == gameserver.CommandAttack || !rejected(err) {
		return err
	}
	sim.logger.Debug("auto-play choice rejected", zap.String("kind", cmd.Kind), zap.String("id", cmd.ID), zap.Error(err))
	return sim.handler.Act(ctx, characterID, gameserver.Command{Kind: gameserver.CommandAttack})
}

func rejected(err error) bool {
	for _, target := range []error{
		combat.ErrSilenced,
		combat.ErrRooted,
		combat.ErrInsufficientMana,
		combat.ErrInsufficientEnergy,
		combat.ErrInsufficientItems,
		combat.ErrTargetUnavailable,
		combat.ErrUnknownAction,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// chooseCommand heals below 40% HP when a potion is at hand, otherwise uses
// the strongest affordable damage spell, then a damage ability, then attacks.
func chooseCommand(s *combat.Session) gameserver.Command {
	p := s.Player
	ch := s.Character
	if p.HP*100 < p.Stats().MaxHP*40 {
		for _, c := range ch.Consumables {
			if effect, err := combat.ParseConsumableEffect(c.EffectType); err == nil && effect == combat.ConsumableRestoreHP && p.ItemCount(c.ID) > 0 {
				return gameserver.Command{Kind: gameserver.CommandItem, ID: c.ID}
			}
		}
	}

	var target *combatant.Combatant
	if t, ok := s.Enemy(s.TargetID); ok {
		target = t
	}
	best, bestScore := "", 0
	for _, sp := range ch.Spells {
		if sp.SelfTargeted || sp.Damage <= 0 || sp.ManaCost > p.MP || !hasReagents(p, sp.ResourceCost) {
			continue
		}
		score := sp.Damage
		if target != nil && target.Enemy != nil && sp.DamageType != "" && sp.DamageType == target.Enemy.Weakness {
			score *= 2
		}
		if score > bestScore {
			best, bestScore = sp.ID, score
		}
	}
	if best != "" {
		return gameserver.Command{Kind: gameserver.CommandSpell, ID: best}
	}
	for _, a := range ch.Abilities {
		if effect, err := combat.ParseAbilityEffect(a.EffectType); err == nil && effect == combat.AbilityDamage && a.EPCost <= p.EP {
			return gameserver.Command{Kind: gameserver.CommandAbility, ID: a.ID}
		}
	}
	return gameserver.Command{Kind: gameserver.CommandAttack}
}

func hasReagents(p *combatant.Combatant, costs []content.ResourceCost) bool {
	for _, c := range costs {
		if p.ItemCount(c.ItemID) < c.Quantity {
			return false
		}
	}
	return true
}

// loadOrCreate returns the named character, creating it with a generated
// starter kit on first use.
func (sim *simulator) loadOrCreate(ctx context.Context, opts Options) (*character.Character, error) {
	ch, err := sim.store.GetByName(ctx, opts.Character)
	if err == nil {
		return ch, nil
	}
	if !errors.Is(err, storage.ErrCharacterNotFound) {
		return nil, err
	}

	ch, err = character.Build(opts.Character, opts.Attributes, sim.cfg.Rewards.StartingXPToNextLevel)
	if err != nil {
		return nil, err
	}
	if err := sim.equipStarterKit(ctx, ch); err != nil {
		return nil, fmt.Errorf("starter kit: %w", err)
	}
	created, err := sim.store.Create(ctx, ch)
	if err != nil {
		return nil, err
	}
	sim.logger.Info("character created", zap.String("name", created.Name), zap.Int64("id", created.ID))
	return created, nil
}

func (sim *simulator) equipStarterKit(ctx context.Context, ch *character.Character) error {
	for _, item := range starterKit {
		d, err := sim.generator.Generate(ctx, ch.Level, item.kind, item.prompt)
		if err != nil {
			return fmt.Errorf("generating %s: %w", item.kind, err)
		}
		switch item.kind {
		case content.KindSpell:
			ch.Spells = append(ch.Spells, *d.Spell)
		case content.KindAbility:
			ch.Abilities = append(ch.Abilities, *d.Ability)
		case content.KindConsumable:
			ch.Consumables = append(ch.Consumables, *d.Consumable)
			ch.Inventory[d.Consumable.ID] += starterPotions
		case content.KindEquipment:
			ch.Equipment = append(ch.Equipment, *d.Equipment)
		}
	}
	return nil
}
