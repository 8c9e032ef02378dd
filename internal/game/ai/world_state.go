package ai

// CombatantState captures a combatant's planning-relevant state.
type CombatantState struct {
	ID        string
	Name      string
	HP        int
	MaxHP     int
	Defending bool
	Stunned   bool
	Silenced  bool
	Effects   []string
}

// HPPercent returns current HP as a percentage of MaxHP; 0 if MaxHP == 0.
func (c *CombatantState) HPPercent() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP) * 100
}

// Alive reports whether HP > 0.
func (c *CombatantState) Alive() bool { return c.HP > 0 }

func (c *CombatantState) toMap() map[string]any {
	effects := make([]any, len(c.Effects))
	for i, e := range c.Effects {
		effects[i] = e
	}
	return map[string]any{
		"id":         c.ID,
		"name":       c.Name,
		"hp":         c.HP,
		"max_hp":     c.MaxHP,
		"hp_percent": c.HPPercent(),
		"defending":  c.Defending,
		"stunned":    c.Stunned,
		"silenced":   c.Silenced,
		"effects":    effects,
	}
}

// EnemyState is the planning enemy's own state.
type EnemyState struct {
	CombatantState
	Level        int
	Elite        bool
	SpecialName  string
	SpecialReady bool
}

// WorldState is the snapshot passed to the planner for one enemy turn.
//
// Invariant: Enemy and Player must not be nil.
type WorldState struct {
	Turn   int
	Enemy  *EnemyState
	Player *CombatantState
	// Allies are the other enemies in the encounter, including defeated ones.
	Allies []*CombatantState
}

// LivingAllies returns the allies with HP > 0.
func (ws *WorldState) LivingAllies() []*CombatantState {
	var out []*CombatantState
	for _, a := range ws.Allies {
		if a.Alive() {
			out = append(out, a)
		}
	}
	return out
}

// WeakestAlly returns the living ally with the lowest HP percentage, or nil.
// Ties are broken by order in Allies.
func (ws *WorldState) WeakestAlly() *CombatantState {
	var weakest *CombatantState
	for _, a := range ws.LivingAllies() {
		if weakest == nil || a.HPPercent() < weakest.HPPercent() {
			weakest = a
		}
	}
	return weakest
}

// ResolveTarget maps an operator target token to a combatant ID.
//
// Postcondition: "player" and "" resolve to the player, "self" to the enemy,
// "weakest_ally" to the weakest living ally (or self when none); unknown
// tokens are returned as-is.
func (ws *WorldState) ResolveTarget(token string) string {
	switch token {
	case "", "player":
		return ws.Player.ID
	case "self":
		return ws.Enemy.ID
	case "weakest_ally":
		if a := ws.WeakestAlly(); a != nil {
			return a.ID
		}
		return ws.Enemy.ID
	default:
		return token
	}
}

// ToMap renders the snapshot as nested maps for Lua preconditions.
func (ws *WorldState) ToMap() map[string]any {
	enemy := ws.Enemy.toMap()
	enemy["level"] = ws.Enemy.Level
	enemy["elite"] = ws.Enemy.Elite
	enemy["special_name"] = ws.Enemy.SpecialName
	enemy["special_ready"] = ws.Enemy.SpecialReady

	allies := make([]any, 0, len(ws.Allies))
	for _, a := range ws.Allies {
		allies = append(allies, a.toMap())
	}
	return map[string]any{
		"turn":   ws.Turn,
		"enemy":  enemy,
		"player": ws.Player.toMap(),
		"allies": allies,
	}
}
