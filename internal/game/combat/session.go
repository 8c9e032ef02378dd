package combat

import (
	"fmt"

	"github.com/cory-johannsen/arcanum/internal/game/character"
	"github.com/cory-johannsen/arcanum/internal/game/combatant"
	"github.com/cory-johannsen/arcanum/internal/game/reward"
	"github.com/cory-johannsen/arcanum/internal/game/status"
)

// Phase is the encounter state.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseInitiative
	PhasePlayerTurn
	PhaseEnemyTurn
	PhaseVictory
	PhaseDefeat
	PhaseFled
)

var phaseNames = [...]string{"start", "initiative", "player_turn", "enemy_turn", "victory", "defeat", "fled"}

// String returns the snake_case phase name.
func (p Phase) String() string {
	if int(p) < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Terminal reports whether p ends the encounter.
func (p Phase) Terminal() bool {
	return p == PhaseVictory || p == PhaseDefeat || p == PhaseFled
}

// Step tells the host what the session is waiting for.
type Step int

const (
	// StepBegin means Engine.Begin has not run yet.
	StepBegin Step = iota
	// StepAwaitPlayer means the player must submit an action.
	StepAwaitPlayer
	// StepAwaitEnemy means the host should pace and then call Engine.AdvanceEnemy.
	StepAwaitEnemy
	// StepOver means the encounter reached a terminal phase.
	StepOver
)

// TurnFlags are the crowd-control flags from a combatant's turn-start tick.
type TurnFlags struct {
	Stunned  bool
	Silenced bool
	Rooted   bool
}

// Session is one encounter. It is owned by a single caller at a time and is
// not safe for concurrent use.
//
// Invariant: Turn >= 1 and never decreases; Log is append-only.
type Session struct {
	ID      string
	Player  *combatant.Combatant
	Enemies []*combatant.Combatant
	// TargetID is the enemy targeted when an action names none.
	TargetID string
	Turn     int
	Phase    Phase
	// EnemyIndex is the index of the enemy whose turn it is during PhaseEnemyTurn.
	EnemyIndex  int
	PlayerFirst bool
	// Character is the working copy of the persisted player, credited with
	// rewards during the encounter and folded back on a terminal phase.
	Character *character.Character
	// Spoils accumulates every grant of the encounter.
	Spoils reward.Grant

	playerFlags TurnFlags
	rewarded    map[string]bool
	log         []Event
	sink        Sink
}

// NewSession creates a session in PhaseStart.
//
// Precondition: player is a player combatant; enemies is non-empty; ch is the
// working character (callers pass a clone).
// Postcondition: Turn == 1, TargetID is the first enemy.
func NewSession(id string, player *combatant.Combatant, enemies []*combatant.Combatant, ch *character.Character, sink Sink) (*Session, error) {
	if player == nil || !player.IsPlayer() {
		return nil, fmt.Errorf("combat.NewSession: player combatant required")
	}
	if len(enemies) == 0 {
		return nil, fmt.Errorf("combat.NewSession: at least one enemy required")
	}
	seen := map[string]bool{player.ID: true}
	for _, e := range enemies {
		if e == nil || e.Kind != combatant.KindEnemy {
			return nil, fmt.Errorf("combat.NewSession: enemy combatant required")
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("combat.NewSession: duplicate combatant id %q", e.ID)
		}
		seen[e.ID] = true
	}
	if ch == nil {
		return nil, fmt.Errorf("combat.NewSession: character required")
	}
	return &Session{
		ID:        id,
		Player:    player,
		Enemies:   enemies,
		TargetID:  enemies[0].ID,
		Turn:      1,
		Phase:     PhaseStart,
		Character: ch,
		rewarded:  make(map[string]bool),
		sink:      sink,
	}, nil
}

// Next reports what the session is waiting for.
func (s *Session) Next() Step {
	switch s.Phase {
	case PhaseStart, PhaseInitiative:
		return StepBegin
	case PhasePlayerTurn:
		return StepAwaitPlayer
	case PhaseEnemyTurn:
		return StepAwaitEnemy
	default:
		return StepOver
	}
}

// Over reports whether the encounter has ended.
func (s *Session) Over() bool { return s.Phase.Terminal() }

// Log returns a copy of the event log.
func (s *Session) Log() []Event {
	out := make([]Event, len(s.log))
	copy(out, s.log)
	return out
}

// PlayerFlags returns the flags from the player's latest turn-start tick.
func (s *Session) PlayerFlags() TurnFlags { return s.playerFlags }

// Enemy returns the enemy with the given id.
func (s *Session) Enemy(id string) (*combatant.Combatant, bool) {
	for _, e := range s.Enemies {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Combatant returns the player or enemy with the given id.
func (s *Session) Combatant(id string) (*combatant.Combatant, bool) {
	if s.Player.ID == id {
		return s.Player, true
	}
	return s.Enemy(id)
}

// LivingEnemies returns enemies with HP > 0 in encounter order.
func (s *Session) LivingEnemies() []*combatant.Combatant {
	var out []*combatant.Combatant
	for _, e := range s.Enemies {
		if !e.IsDefeated() {
			out = append(out, e)
		}
	}
	return out
}

// CurrentEnemy returns the enemy whose turn it is, or nil outside PhaseEnemyTurn.
func (s *Session) CurrentEnemy() *combatant.Combatant {
	if s.Phase != PhaseEnemyTurn || s.EnemyIndex < 0 || s.EnemyIndex >= len(s.Enemies) {
		return nil
	}
	return s.Enemies[s.EnemyIndex]
}

// nextLivingEnemy returns the index of the first living enemy at or after from, or -1.
func (s *Session) nextLivingEnemy(from int) int {
	for i := max(from, 0); i < len(s.Enemies); i++ {
		if !s.Enemies[i].IsDefeated() {
			return i
		}
	}
	return -1
}

// defaultTargetID returns TargetID while that enemy lives, otherwise the
// first living enemy. It does not modify the session.
func (s *Session) defaultTargetID() string {
	if t, ok := s.Enemy(s.TargetID); ok && !t.IsDefeated() {
		return s.TargetID
	}
	if i := s.nextLivingEnemy(0); i >= 0 {
		return s.Enemies[i].ID
	}
	return s.TargetID
}

// retarget moves TargetID to the first living enemy when the current one is gone.
func (s *Session) retarget() {
	s.TargetID = s.defaultTargetID()
}

func (s *Session) emit(actor *combatant.Combatant, cat Category, format string, args ...any) {
	e := Event{Turn: s.Turn, Actor: ActorSystem, Message: fmt.Sprintf(format, args...), Category: cat}
	if actor != nil {
		e.ActorName = actor.Name
		e.Actor = ActorEnemy
		if actor.IsPlayer() {
			e.Actor = ActorPlayer
		}
	}
	s.log = append(s.log, e)
	if s.sink != nil {
		s.sink.Append(e)
	}
}

func flagsOf(t status.TickResult) TurnFlags {
	return TurnFlags{Stunned: t.Stunned, Silenced: t.Silenced, Rooted: t.Rooted}
}
