// Package gameserver hosts encounters for persisted characters: it loads the
// character, generates the enemies, drives the combat engine on the player's
// behalf, paces enemy turns and persists the outcome.
package gameserver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arcanum/internal/content"
	"github.com/cory-johannsen/arcanum/internal/game/character"
	"github.com/cory-johannsen/arcanum/internal/game/combat"
)

// ErrSetup wraps every failure to start an encounter. No session is
// registered when Start returns it.
var ErrSetup = errors.New("encounter setup failed")

// ErrNoEncounter is returned when the character has no active encounter.
var ErrNoEncounter = errors.New("no active encounter")

// ErrEncounterActive is returned by Finish while the encounter is still running.
var ErrEncounterActive = errors.New("encounter still in progress")

// CharacterStore loads and saves characters between encounters.
type CharacterStore interface {
	GetByID(ctx context.Context, id int64) (*character.Character, error)
	Save(ctx context.Context, c *character.Character) error
}

// EncounterConfig holds the handler's tunables.
type EncounterConfig struct {
	// EnemyDelay paces consecutive enemy turns; zero disables pacing.
	EnemyDelay time.Duration
	// PassiveSlotInterval is passed to character.CheckLevelUp.
	PassiveSlotInterval int
	// MaxEnemies caps StartRequest.Count.
	MaxEnemies int
}

// StartRequest describes an encounter to start.
type StartRequest struct {
	CharacterID int64
	// Level is the enemy level; zero means the character's level.
	Level int
	// Count is the number of enemies; zero means one.
	Count int
	// Prompt is the free-text concept passed to the generator.
	Prompt string
	// Sink optionally receives every event of the encounter.
	Sink combat.Sink
}

// Command kinds accepted by Act.
const (
	CommandAttack    = "attack"
	CommandDefend    = "defend"
	CommandFlee      = "flee"
	CommandSpell     = "spell"
	CommandAbility   = "ability"
	CommandItem      = "item"
	CommandFreestyle = "freestyle"
)

// Command is a player's choice as submitted by a host.
type Command struct {
	Kind string
	// ID names the spell, ability or item for those kinds.
	ID     string
	Target string
	// Text is the free-text description of a freestyle action.
	Text string
}

// Outcome summarises a finished encounter.
type Outcome struct {
	Phase     combat.Phase
	Character *character.Character
	LevelUp   character.LevelUp
}

// EncounterHandler runs encounters for persisted characters. All methods are
// safe for concurrent use; calls for the same character are serialised.
type EncounterHandler struct {
	engine    *combat.Engine
	registry  *combat.Registry
	generator content.Generator
	store     CharacterStore
	cfg       EncounterConfig
	logger    *zap.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewEncounterHandler creates an EncounterHandler.
//
// Precondition: all pointer and interface arguments must be non-nil.
// Postcondition: Returns a non-nil EncounterHandler.
func NewEncounterHandler(
	engine *combat.Engine,
	registry *combat.Registry,
	generator content.Generator,
	store CharacterStore,
	cfg EncounterConfig,
	logger *zap.Logger,
) *EncounterHandler {
	if engine == nil || registry == nil || generator == nil || store == nil || logger == nil {
		panic("gameserver.NewEncounterHandler: all dependencies must be non-nil")
	}
	if cfg.PassiveSlotInterval < 1 {
		cfg.PassiveSlotInterval = 1
	}
	if cfg.MaxEnemies < 1 {
		cfg.MaxEnemies = 4
	}
	return &EncounterHandler{
		engine:    engine,
		registry:  registry,
		generator: generator,
		store:     store,
		cfg:       cfg,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

func sessionKey(characterID int64) string {
	return strconv.FormatInt(characterID, 10)
}

func (h *EncounterHandler) lock(key string) func() {
	h.locksMu.Lock()
	mu, ok := h.locks[key]
	if !ok {
		mu = &sync.Mutex{}
		h.locks[key] = mu
	}
	h.locksMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

// Start loads the character, generates the enemies, registers the session
// and rolls initiative.
//
// Postcondition: on error the result wraps ErrSetup and nothing is registered.
func (h *EncounterHandler) Start(ctx context.Context, req StartRequest) (*combat.Session, combat.Initiative, error) {
	key := sessionKey(req.CharacterID)
	defer h.lock(key)()

	if _, active := h.registry.Get(key); active {
		return nil, combat.Initiative{}, fmt.Errorf("%w: character %d already in an encounter", ErrSetup, req.CharacterID)
	}
	count := req.Count
	if count == 0 {
		count = 1
	}
	if count < 0 || count > h.cfg.MaxEnemies {
		return nil, combat.Initiative{}, fmt.Errorf("%w: enemy count must be in [1, %d], got %d", ErrSetup, h.cfg.MaxEnemies, req.Count)
	}

	ch, err := h.store.GetByID(ctx, req.CharacterID)
	if err != nil {
		return nil, combat.Initiative{}, fmt.Errorf("%w: loading character %d: %w", ErrSetup, req.CharacterID, err)
	}
	level := req.Level
	if level <= 0 {
		level = ch.Level
	}

	enemies := make([]content.Enemy, 0, count)
	for i := 0; i < count; i++ {
		d, err := h.generator.Generate(ctx, level, content.KindEnemy, req.Prompt)
		if err != nil {
			return nil, combat.Initiative{}, fmt.Errorf("%w: generating enemy %d: %w", ErrSetup, i+1, err)
		}
		if d.Kind != content.KindEnemy || d.Enemy == nil {
			return nil, combat.Initiative{}, fmt.Errorf("%w: generator returned %q instead of an enemy", ErrSetup, d.Kind)
		}
		enemies = append(enemies, *d.Enemy)
	}

	s, err := combat.NewEncounter(h.engine.Config(), uuid.NewString(), ch, enemies, req.Sink)
	if err != nil {
		return nil, combat.Initiative{}, fmt.Errorf("%w: %w", ErrSetup, err)
	}
	if err := h.registry.Start(key, s); err != nil {
		return nil, combat.Initiative{}, fmt.Errorf("%w: %w", ErrSetup, err)
	}
	in, err := h.engine.Begin(s)
	if err != nil {
		h.registry.End(key)
		return nil, combat.Initiative{}, fmt.Errorf("%w: %w", ErrSetup, err)
	}
	h.logger.Info("encounter registered",
		zap.Int64("character_id", req.CharacterID),
		zap.String("session", s.ID),
		zap.Int("level", level),
		zap.Int("enemies", count),
	)
	return s, in, nil
}

// Session returns the active session for the character.
func (h *EncounterHandler) Session(characterID int64) (*combat.Session, bool) {
	return h.registry.Get(sessionKey(characterID))
}

// Act resolves the player's command. Rejected commands leave the session
// unchanged and may be retried.
//
// Precondition: the session is awaiting the player.
func (h *EncounterHandler) Act(ctx context.Context, characterID int64, cmd Command) error {
	key := sessionKey(characterID)
	defer h.lock(key)()

	s, ok := h.registry.Get(key)
	if !ok {
		return fmt.Errorf("character %d: %w", characterID, ErrNoEncounter)
	}
	action, err := ResolveCommand(s.Character, cmd)
	if err != nil {
		return err
	}
	return h.engine.SubmitPlayerAction(ctx, s, action)
}

// RunEnemyTurns advances every pending enemy turn, waiting EnemyDelay before
// each one. It returns when the player is up again or the encounter is over.
//
// Postcondition: returns ctx.Err() if ctx is cancelled while waiting; the
// session is then left between enemy turns and may be resumed.
func (h *EncounterHandler) RunEnemyTurns(ctx context.Context, characterID int64) error {
	key := sessionKey(characterID)
	defer h.lock(key)()

	s, ok := h.registry.Get(key)
	if !ok {
		return fmt.Errorf("character %d: %w", characterID, ErrNoEncounter)
	}
	for s.Next() == combat.StepAwaitEnemy {
		if err := pace(ctx, h.cfg.EnemyDelay); err != nil {
			return err
		}
		if err := h.engine.AdvanceEnemy(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func pace(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Finish folds the encounter back into the character, applies at most one
// level-up, saves it and unregisters the session.
//
// Precondition: the session is over.
// Postcondition: on a save error the session stays registered so Finish may be retried.
func (h *EncounterHandler) Finish(ctx context.Context, characterID int64) (Outcome, error) {
	key := sessionKey(characterID)
	defer h.lock(key)()

	s, ok := h.registry.Get(key)
	if !ok {
		return Outcome{}, fmt.Errorf("character %d: %w", characterID, ErrNoEncounter)
	}
	if !s.Over() {
		return Outcome{}, fmt.Errorf("character %d in phase %s: %w", characterID, s.Phase, ErrEncounterActive)
	}
	ch := combat.FoldBack(s).Clone()
	lvl := ch.CheckLevelUp(h.cfg.PassiveSlotInterval)
	if err := h.store.Save(ctx, ch); err != nil {
		return Outcome{}, fmt.Errorf("saving character %d: %w", characterID, err)
	}
	h.registry.End(key)
	h.logger.Info("encounter finished",
		zap.Int64("character_id", characterID),
		zap.String("session", s.ID),
		zap.Stringer("phase", s.Phase),
		zap.Int("turns", s.Turn),
		zap.Bool("leveled", lvl.Leveled),
	)
	return Outcome{Phase: s.Phase, Character: ch, LevelUp: lvl}, nil
}

// Abandon drops the character's encounter without saving anything.
func (h *EncounterHandler) Abandon(characterID int64) {
	key := sessionKey(characterID)
	defer h.lock(key)()
	h.registry.End(key)
}

// ResolveCommand converts cmd into an engine action, looking spells,
// abilities and consumables up on ch.
func ResolveCommand(ch *character.Character, cmd Command) (combat.Action, error) {
	switch cmd.Kind {
	case CommandAttack:
		return combat.BasicAttack{TargetID: cmd.Target}, nil
	case CommandDefend:
		return combat.Defend{}, nil
	case CommandFlee:
		return combat.Flee{}, nil
	case CommandFreestyle:
		if cmd.Text == "" {
			return nil, fmt.Errorf("freestyle requires a description: %w", combat.ErrUnknownAction)
		}
		return combat.Freestyle{Text: cmd.Text, TargetID: cmd.Target}, nil
	case CommandSpell:
		d, ok := ch.Spell(cmd.ID)
		if !ok {
			return nil, fmt.Errorf("spell %q is not known: %w", cmd.ID, combat.ErrUnknownAction)
		}
		a, err := combat.SpellFrom(d)
		if err != nil {
			return nil, err
		}
		a.TargetID = cmd.Target
		return a, nil
	case CommandAbility:
		d, ok := ch.Ability(cmd.ID)
		if !ok {
			return nil, fmt.Errorf("ability %q is not known: %w", cmd.ID, combat.ErrUnknownAction)
		}
		a, err := combat.AbilityFrom(d)
		if err != nil {
			return nil, err
		}
		a.TargetID = cmd.Target
		return a, nil
	case CommandItem:
		d, ok := ch.Consumable(cmd.ID)
		if !ok {
			return nil, fmt.Errorf("item %q is not usable: %w", cmd.ID, combat.ErrUnknownAction)
		}
		a, err := combat.ConsumableFrom(d)
		if err != nil {
			return nil, err
		}
		a.TargetID = cmd.Target
		return a, nil
	default:
		return nil, fmt.Errorf("command %q: %w", cmd.Kind, combat.ErrUnknownAction)
	}
}
