package ai_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/cory-johannsen/arcanum/internal/game/ai"
)

func baseState() *ai.WorldState {
	return &ai.WorldState{
		Turn: 3,
		Enemy: &ai.EnemyState{
			CombatantState: ai.CombatantState{ID: "e1", Name: "Ghoul", HP: 20, MaxHP: 40},
			Level:          2,
			SpecialName:    "Rot Bite",
		},
		Player: &ai.CombatantState{ID: "p1", Name: "Hero", HP: 50, MaxHP: 100},
	}
}

func TestCombatantState_HPPercent(t *testing.T) {
	c := ai.CombatantState{HP: 25, MaxHP: 100}
	if c.HPPercent() != 25 {
		t.Fatalf("expected 25, got %v", c.HPPercent())
	}
	zero := ai.CombatantState{HP: 5}
	if zero.HPPercent() != 0 {
		t.Fatal("expected 0 when MaxHP is 0")
	}
}

func TestWorldState_ResolveTarget(t *testing.T) {
	ws := baseState()
	ws.Allies = []*ai.CombatantState{
		{ID: "e2", HP: 30, MaxHP: 40},
		{ID: "e3", HP: 5, MaxHP: 40},
		{ID: "e4", HP: 0, MaxHP: 40},
	}
	cases := map[string]string{
		"":             "p1",
		"player":       "p1",
		"self":         "e1",
		"weakest_ally": "e3",
		"e2":           "e2",
	}
	for token, want := range cases {
		if got := ws.ResolveTarget(token); got != want {
			t.Fatalf("ResolveTarget(%q) = %q, want %q", token, got, want)
		}
	}
}

func TestWorldState_WeakestAlly_NoneFallsBackToSelf(t *testing.T) {
	ws := baseState()
	ws.Allies = []*ai.CombatantState{{ID: "e2", HP: 0, MaxHP: 10}}
	if ws.WeakestAlly() != nil {
		t.Fatal("defeated allies must be ignored")
	}
	if got := ws.ResolveTarget("weakest_ally"); got != "e1" {
		t.Fatalf("expected self, got %q", got)
	}
}

func TestWorldState_ToMap(t *testing.T) {
	ws := baseState()
	ws.Player.Effects = []string{"Poison"}
	m := ws.ToMap()
	enemy := m["enemy"].(map[string]any)
	if enemy["special_name"] != "Rot Bite" || enemy["hp_percent"] != 50.0 {
		t.Fatalf("unexpected enemy map: %v", enemy)
	}
	player := m["player"].(map[string]any)
	if effects := player["effects"].([]any); len(effects) != 1 || effects[0] != "Poison" {
		t.Fatalf("unexpected player effects: %v", player["effects"])
	}
	if m["turn"] != 3 {
		t.Fatalf("expected turn 3, got %v", m["turn"])
	}
}

func TestProperty_ResolveTarget_AlwaysKnownID(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ws := baseState()
		n := rapid.IntRange(0, 5).Draw(rt, "allies")
		known := map[string]bool{"e1": true, "p1": true}
		for i := 0; i < n; i++ {
			id := string(rune('a' + i))
			known[id] = true
			ws.Allies = append(ws.Allies, &ai.CombatantState{
				ID:    id,
				HP:    rapid.IntRange(0, 10).Draw(rt, "hp"),
				MaxHP: 10,
			})
		}
		token := rapid.SampledFrom([]string{"player", "self", "weakest_ally"}).Draw(rt, "token")
		if got := ws.ResolveTarget(token); !known[got] {
			rt.Fatalf("ResolveTarget(%q) returned unknown ID %q", token, got)
		}
	})
}
