package combat

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arcanum/internal/game/combatant"
	"github.com/cory-johannsen/arcanum/internal/game/dice"
	"github.com/cory-johannsen/arcanum/internal/game/status"
	"github.com/cory-johannsen/arcanum/internal/scripting"
)

// FreestyleRequest is a free-text action awaiting an outcome.
type FreestyleRequest struct {
	Text   string
	Turn   int
	Actor  *combatant.Combatant
	Target *combatant.Combatant
}

// FreestyleOutcome is what a freestyle action does. Damage is dealt to the
// target as-is; Heal restores the actor; Status goes to the actor when
// beneficial, otherwise to the target.
type FreestyleOutcome struct {
	Message string
	Damage  int
	Heal    int
	Status  *StatusPayload
}

// FreestyleResolver decides freestyle outcomes.
type FreestyleResolver interface {
	Resolve(ctx context.Context, req FreestyleRequest) (FreestyleOutcome, error)
}

// TableFreestyle resolves freestyle actions from a fixed d6 outcome table.
type TableFreestyle struct {
	roller *dice.Roller
}

// NewTableFreestyle creates a TableFreestyle.
//
// Precondition: roller must not be nil.
func NewTableFreestyle(roller *dice.Roller) *TableFreestyle {
	return &TableFreestyle{roller: roller}
}

// Resolve rolls 1d6 on the outcome table.
//
// Postcondition: Damage and Heal are >= 0.
func (t *TableFreestyle) Resolve(ctx context.Context, req FreestyleRequest) (FreestyleOutcome, error) {
	if err := ctx.Err(); err != nil {
		return FreestyleOutcome{}, err
	}
	power := req.Actor.Stats().PhysicalPower
	switch t.roller.Roll(6, 0).Total() {
	case 1:
		return FreestyleOutcome{Message: "The attempt falls flat."}, nil
	case 2, 3:
		return FreestyleOutcome{Message: "A scrappy blow lands.", Damage: 3 + power/2}, nil
	case 4:
		return FreestyleOutcome{Message: "A moment of respite steadies you.", Heal: 5}, nil
	case 5:
		return FreestyleOutcome{
			Message: "The foe is caught off guard.",
			Status:  &StatusPayload{Kind: status.Stun, Chance: 50, Duration: 1},
		}, nil
	default:
		return FreestyleOutcome{Message: "An inspired move strikes hard.", Damage: 6 + power}, nil
	}
}

// HookCaller calls a Lua hook; *scripting.Manager satisfies it.
type HookCaller interface {
	CallHook(scope, hook string, args ...any) (lua.LValue, error)
}

// FreestyleHook is the Lua function ScriptedFreestyle calls.
const FreestyleHook = "freestyle"

// ScriptedFreestyle resolves freestyle actions with a Lua hook, falling back
// to another resolver when the hook is missing, fails, or returns nil.
type ScriptedFreestyle struct {
	caller   HookCaller
	scope    string
	fallback FreestyleResolver
	logger   *zap.Logger
}

// NewScriptedFreestyle creates a ScriptedFreestyle.
//
// Precondition: caller, fallback and logger must not be nil.
func NewScriptedFreestyle(caller HookCaller, scope string, fallback FreestyleResolver, logger *zap.Logger) *ScriptedFreestyle {
	return &ScriptedFreestyle{caller: caller, scope: scope, fallback: fallback, logger: logger}
}

// Resolve calls freestyle(ctx) in the configured scope. The hook receives
// {text, turn, modifier, actor_hp, actor_max_hp, target_name} and returns
// {message, damage, heal, status} or nil.
func (f *ScriptedFreestyle) Resolve(ctx context.Context, req FreestyleRequest) (FreestyleOutcome, error) {
	if err := ctx.Err(); err != nil {
		return FreestyleOutcome{}, err
	}
	arg := map[string]any{
		"text":         req.Text,
		"turn":         req.Turn,
		"modifier":     req.Actor.Stats().Reflex / 2,
		"actor_hp":     req.Actor.HP,
		"actor_max_hp": req.Actor.Stats().MaxHP,
		"target_name":  "",
	}
	if req.Target != nil {
		arg["target_name"] = req.Target.Name
	}
	ret, err := f.caller.CallHook(f.scope, FreestyleHook, arg)
	if err != nil || ret == lua.LNil {
		if err != nil {
			f.logger.Warn("freestyle hook failed", zap.Error(err))
		}
		return f.fallback.Resolve(ctx, req)
	}
	if _, ok := ret.(*lua.LTable); !ok {
		f.logger.Warn("freestyle hook returned non-table", zap.String("type", ret.Type().String()))
		return f.fallback.Resolve(ctx, req)
	}

	out := FreestyleOutcome{
		Message: scripting.TableString(ret, "message"),
		Damage:  max(0, scripting.TableInt(ret, "damage")),
		Heal:    max(0, scripting.TableInt(ret, "heal")),
	}
	if name := scripting.TableString(ret, "status"); name != "" {
		k, err := status.ParseKind(name)
		if err != nil {
			return FreestyleOutcome{}, fmt.Errorf("freestyle hook: %w", err)
		}
		out.Status = &StatusPayload{Kind: k, Chance: 100}
	}
	if out.Message == "" {
		out.Message = "Something happens."
	}
	return out, nil
}
