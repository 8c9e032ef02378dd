package ai

import (
	"errors"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// ScriptCaller is the interface required by the Planner to evaluate Lua preconditions.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given scope's VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(scope, hook string, args ...any) (lua.LValue, error)
}

// LowHealthPercent is the HP percentage below which low_health holds.
const LowHealthPercent = 30.0

// PlannedAction is one primitive action produced by the planner.
type PlannedAction struct {
	Action string // "attack", "special", "defend"
	Target string // resolved combatant ID
}

// Predicate is a built-in precondition over the world state.
type Predicate func(ws *WorldState) bool

var builtins = map[string]Predicate{
	"special_ready":     func(ws *WorldState) bool { return ws.Enemy.SpecialReady && !ws.Enemy.Silenced },
	"low_health":        func(ws *WorldState) bool { return ws.Enemy.HPPercent() < LowHealthPercent },
	"player_low_health": func(ws *WorldState) bool { return ws.Player.HPPercent() < LowHealthPercent },
	"player_defending":  func(ws *WorldState) bool { return ws.Player.Defending },
	"player_stunned":    func(ws *WorldState) bool { return ws.Player.Stunned },
	"has_allies":        func(ws *WorldState) bool { return len(ws.LivingAllies()) > 0 },
	"silenced":          func(ws *WorldState) bool { return ws.Enemy.Silenced },
	"elite":             func(ws *WorldState) bool { return ws.Enemy.Elite },
}

// IsBuiltin reports whether name is a built-in precondition.
func IsBuiltin(name string) bool {
	_, ok := builtins[strings.TrimPrefix(name, "!")]
	return ok
}

// Planner evaluates an HTN domain for a single enemy and produces an ordered
// action plan for its turn.
//
// Invariant: domain must not be nil. caller may be nil, in which case every
// non-builtin precondition evaluates false.
type Planner struct {
	domain *Domain
	caller ScriptCaller
}

// NewPlanner constructs a Planner.
//
// Precondition: domain must not be nil.
func NewPlanner(domain *Domain, caller ScriptCaller) *Planner {
	if domain == nil {
		panic("ai.NewPlanner: domain must not be nil")
	}
	return &Planner{domain: domain, caller: caller}
}

// Domain returns the planner's domain.
func (p *Planner) Domain() *Domain { return p.domain }

// Plan evaluates the HTN domain against state and returns an ordered plan.
//
// Precondition: state, state.Enemy, and state.Player must not be nil.
// Postcondition: returns non-nil slice (may be empty); Lua failures are
// treated as precondition-false.
func (p *Planner) Plan(state *WorldState) ([]PlannedAction, error) {
	if state == nil || state.Enemy == nil || state.Player == nil {
		return nil, errors.New("ai.Planner.Plan: state, state.Enemy, and state.Player must not be nil")
	}

	taskQueue := []string{RootTask}
	result := []PlannedAction{}

	const maxDepth = 32
	steps := 0

	for len(taskQueue) > 0 && steps < maxDepth {
		steps++
		current := taskQueue[0]
		taskQueue = taskQueue[1:]

		if op, ok := p.domain.OperatorByID(current); ok {
			result = append(result, PlannedAction{Action: op.Action, Target: state.ResolveTarget(op.Target)})
			continue
		}

		method := p.findApplicableMethod(current, state)
		if method == nil {
			continue
		}
		next := make([]string, 0, len(method.Subtasks)+len(taskQueue))
		next = append(next, method.Subtasks...)
		taskQueue = append(next, taskQueue...)
	}
	return result, nil
}

// Intent returns the first planned action, falling back to attacking the
// player when the plan is empty.
//
// Precondition: state, state.Enemy, and state.Player must not be nil.
func (p *Planner) Intent(state *WorldState) (PlannedAction, error) {
	plan, err := p.Plan(state)
	if err != nil {
		return PlannedAction{}, err
	}
	if len(plan) == 0 {
		return PlannedAction{Action: ActionAttack, Target: state.Player.ID}, nil
	}
	return plan[0], nil
}

// findApplicableMethod returns the first Method for taskID whose precondition
// passes, or nil if none applies. Methods are tried in declaration order.
func (p *Planner) findApplicableMethod(taskID string, state *WorldState) *Method {
	for _, m := range p.domain.MethodsForTask(taskID) {
		if p.holds(m.Precondition, state) {
			return m
		}
	}
	return nil
}

func (p *Planner) holds(cond string, state *WorldState) bool {
	if cond == "" {
		return true
	}
	if strings.HasPrefix(cond, "!") {
		return !p.holds(cond[1:], state)
	}
	if pred, ok := builtins[cond]; ok {
		return pred(state)
	}
	if p.caller == nil {
		return false
	}
	val, err := p.caller.CallHook(p.domain.ScriptScope(), cond, state.ToMap())
	if err != nil {
		return false
	}
	return val == lua.LTrue
}
