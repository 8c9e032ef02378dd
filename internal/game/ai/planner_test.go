package ai_test

import (
	"errors"
	"testing"

	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arcanum/internal/game/ai"
)

// mockScriptCaller returns the given value for any hook call and records calls.
type mockScriptCaller struct {
	returnVal lua.LValue
	err       error
	scopes    []string
	hooks     []string
	args      [][]any
}

func (m *mockScriptCaller) CallHook(scope, hook string, args ...any) (lua.LValue, error) {
	m.scopes = append(m.scopes, scope)
	m.hooks = append(m.hooks, hook)
	m.args = append(m.args, args)
	if m.err != nil {
		return lua.LNil, m.err
	}
	if m.returnVal == nil {
		return lua.LNil, nil
	}
	return m.returnVal, nil
}

func brawlerDomain() *ai.Domain {
	return &ai.Domain{
		ID: "brawler",
		Tasks: []*ai.Task{
			{ID: "behave"},
			{ID: "fight"},
		},
		Methods: []*ai.Method{
			{TaskID: "behave", ID: "hurt", Precondition: "low_health", Subtasks: []string{"guard"}},
			{TaskID: "behave", ID: "engage", Subtasks: []string{"fight"}},
			{TaskID: "fight", ID: "finisher", Precondition: "wants_finisher", Subtasks: []string{"big_hit"}},
			{TaskID: "fight", ID: "basic", Subtasks: []string{"hit"}},
		},
		Operators: []*ai.Operator{
			{ID: "guard", Action: "defend", Target: "self"},
			{ID: "big_hit", Action: "special", Target: "player"},
			{ID: "hit", Action: "attack", Target: "player"},
		},
	}
}

func TestPlanner_Plan_LowHealthDefends(t *testing.T) {
	ws := baseState()
	ws.Enemy.HP = 5
	p := ai.NewPlanner(brawlerDomain(), nil)
	actions, err := p.Plan(ws)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(actions) != 1 || actions[0].Action != ai.ActionDefend || actions[0].Target != "e1" {
		t.Fatalf("expected defend on self, got %+v", actions)
	}
}

func TestPlanner_Plan_LuaPreconditionTrue(t *testing.T) {
	caller := &mockScriptCaller{returnVal: lua.LTrue}
	p := ai.NewPlanner(brawlerDomain(), caller)
	actions, err := p.Plan(baseState())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if actions[0].Action != ai.ActionSpecial {
		t.Fatalf("expected special, got %q", actions[0].Action)
	}
	if len(caller.hooks) != 1 || caller.hooks[0] != "wants_finisher" || caller.scopes[0] != "brawler" {
		t.Fatalf("unexpected hook calls: %v in %v", caller.hooks, caller.scopes)
	}
	if _, ok := caller.args[0][0].(map[string]any); !ok {
		t.Fatalf("expected world-state map argument, got %T", caller.args[0][0])
	}
}

func TestPlanner_Plan_LuaFalseOrErrorFallsThrough(t *testing.T) {
	for _, caller := range []*mockScriptCaller{
		{returnVal: lua.LFalse},
		{err: errors.New("boom")},
	} {
		p := ai.NewPlanner(brawlerDomain(), caller)
		actions, err := p.Plan(baseState())
		if err != nil {
			t.Fatalf("Plan: %v", err)
		}
		if actions[0].Action != ai.ActionAttack || actions[0].Target != "p1" {
			t.Fatalf("expected attack on player, got %+v", actions[0])
		}
	}
}

func TestPlanner_Plan_NilCallerTreatsScriptsAsFalse(t *testing.T) {
	p := ai.NewPlanner(brawlerDomain(), nil)
	intent, err := p.Intent(baseState())
	if err != nil {
		t.Fatalf("Intent: %v", err)
	}
	if intent.Action != ai.ActionAttack {
		t.Fatalf("expected attack, got %q", intent.Action)
	}
}

func TestPlanner_Plan_NegatedPrecondition(t *testing.T) {
	d := brawlerDomain()
	d.Methods[0].Precondition = "!low_health"
	p := ai.NewPlanner(d, nil)
	actions, _ := p.Plan(baseState())
	if actions[0].Action != ai.ActionDefend {
		t.Fatalf("expected defend when not low health, got %q", actions[0].Action)
	}
}

func TestPlanner_Plan_NilStateErrors(t *testing.T) {
	p := ai.NewPlanner(brawlerDomain(), nil)
	if _, err := p.Plan(nil); err == nil {
		t.Fatal("expected error for nil state")
	}
	if _, err := p.Plan(&ai.WorldState{Enemy: &ai.EnemyState{}}); err == nil {
		t.Fatal("expected error for nil player")
	}
}

func TestPlanner_Intent_EmptyPlanAttacksPlayer(t *testing.T) {
	d := &ai.Domain{
		ID:    "picky",
		Tasks: []*ai.Task{{ID: "behave"}},
		Methods: []*ai.Method{
			{TaskID: "behave", ID: "only_stunned", Precondition: "player_stunned", Subtasks: []string{"hit"}},
		},
		Operators: []*ai.Operator{{ID: "hit", Action: "special", Target: "player"}},
	}
	intent, err := ai.NewPlanner(d, nil).Intent(baseState())
	if err != nil {
		t.Fatalf("Intent: %v", err)
	}
	if intent.Action != ai.ActionAttack || intent.Target != "p1" {
		t.Fatalf("expected fallback attack, got %+v", intent)
	}
}

func TestPlanner_DefaultDomain_SpecialReady(t *testing.T) {
	ws := baseState()
	ws.Enemy.SpecialReady = true
	p := ai.NewPlanner(ai.DefaultDomain(), nil)
	intent, _ := p.Intent(ws)
	if intent.Action != ai.ActionSpecial {
		t.Fatalf("expected special, got %q", intent.Action)
	}
	ws.Enemy.Silenced = true
	intent, _ = p.Intent(ws)
	if intent.Action != ai.ActionAttack {
		t.Fatalf("silenced enemy must attack, got %q", intent.Action)
	}
}

func TestIsBuiltin(t *testing.T) {
	for _, name := range []string{"special_ready", "!low_health", "has_allies"} {
		if !ai.IsBuiltin(name) {
			t.Fatalf("expected %q builtin", name)
		}
	}
	if ai.IsBuiltin("wants_finisher") {
		t.Fatal("script hook reported as builtin")
	}
}

func TestNewPlanner_PanicsOnNilDomain(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	ai.NewPlanner(nil, nil)
}

func TestProperty_Planner_RecursiveDomainTerminates(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(rt, "ops")
		d := &ai.Domain{
			ID:    "loop",
			Tasks: []*ai.Task{{ID: "behave"}},
		}
		subtasks := []string{}
		for i := 0; i < n; i++ {
			id := string(rune('a' + i))
			d.Operators = append(d.Operators, &ai.Operator{ID: id, Action: "attack"})
			subtasks = append(subtasks, id)
		}
		subtasks = append(subtasks, "behave")
		d.Methods = []*ai.Method{{TaskID: "behave", ID: "again", Subtasks: subtasks}}
		actions, err := ai.NewPlanner(d, nil).Plan(baseState())
		if err != nil {
			rt.Fatalf("Plan: %v", err)
		}
		if len(actions) == 0 || len(actions) > 32 {
			rt.Fatalf("expected bounded non-empty plan, got %d", len(actions))
		}
	})
}
