package status

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/arcanum/internal/game/dice"
)

// Target is anything that can bear status effects.
type Target interface {
	// Effects returns the bearer's effect set.
	Effects() *Set
	// TakeDamage reduces HP by n, clamped at 0, and returns the HP actually lost.
	TakeDamage(n int) int
	// Restore increases HP by n, clamped at max HP, and returns the HP actually gained.
	Restore(n int) int
	// IsDefeated reports whether HP is at or below 0.
	IsDefeated() bool
	// EffectsChanged is called after the set is mutated so derived stats can be recomputed.
	EffectsChanged()
}

// Application describes an effect to inflict.
type Application struct {
	Kind Kind
	// Chance is the success chance in percent. The roll fails when percent > Chance.
	Chance float64
	// Duration in turns; 0 uses the catalog default.
	Duration int
	// Magnitude; 0 uses the catalog default.
	Magnitude int
}

// ApplyResult reports the outcome of Engine.Apply.
type ApplyResult struct {
	Kind      Kind
	Roll      float64
	Applied   bool
	Merged    bool
	Duration  int
	Magnitude int
}

// TickDetail records what one effect did during a tick.
type TickDetail struct {
	Kind   Kind
	Damage int
	Healed int
}

// TickResult reports the outcome of Engine.Tick.
type TickResult struct {
	Details  []TickDetail
	Expired  []Kind
	Damage   int
	Healed   int
	Stunned  bool
	Silenced bool
	Rooted   bool
	Defeated bool
}

// Engine owns the lifecycle of effects on any Target.
type Engine struct {
	catalog *Catalog
	src     dice.Source
	logger  *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: catalog, src and logger must be non-nil.
func NewEngine(catalog *Catalog, src dice.Source, logger *zap.Logger) *Engine {
	return &Engine{catalog: catalog, src: src, logger: logger}
}

// Catalog returns the engine's definitions.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Apply rolls app.Chance and, on success, attaches the effect to target.
// If an effect of the same kind is already present it is replaced, keeping the
// larger of the two durations and the larger of the two magnitudes.
//
// Precondition: app.Kind must be valid.
// Postcondition: on a failed roll target is not mutated; on success
// target.Effects().Has(app.Kind) is true and neither duration nor magnitude
// decreased relative to any previous entry.
func (e *Engine) Apply(target Target, app Application, sourceID string, turn int) ApplyResult {
	res := ApplyResult{Kind: app.Kind, Roll: dice.Percent(e.src)}
	if res.Roll > app.Chance {
		e.logger.Debug("status resisted",
			zap.Stringer("kind", app.Kind),
			zap.Float64("roll", res.Roll),
			zap.Float64("chance", app.Chance),
		)
		return res
	}

	duration, magnitude := app.Duration, app.Magnitude
	if def, ok := e.catalog.Get(app.Kind); ok {
		if duration <= 0 {
			duration = def.DefaultDuration
		}
		if magnitude <= 0 {
			magnitude = def.DefaultMagnitude
		}
	}
	if duration <= 0 {
		duration = 1
	}

	set := target.Effects()
	if existing, ok := set.Get(app.Kind); ok {
		res.Merged = true
		duration = max(existing.Duration, duration)
		magnitude = max(existing.Magnitude, magnitude)
	}
	set.put(Active{
		Kind:          app.Kind,
		Duration:      duration,
		Magnitude:     magnitude,
		SourceID:      sourceID,
		InflictedTurn: turn,
	})
	target.EffectsChanged()

	res.Applied = true
	res.Duration = duration
	res.Magnitude = magnitude
	e.logger.Debug("status applied",
		zap.Stringer("kind", app.Kind),
		zap.Int("duration", duration),
		zap.Int("magnitude", magnitude),
		zap.Bool("merged", res.Merged),
	)
	return res
}

// Tick advances every effect on target by one turn, in application order:
// damage-over-time effects deal their magnitude, Regeneration heals its
// magnitude, then the duration is decremented and effects reaching 0 expire.
// Crowd-control flags reflect the effects present when the tick began.
//
// Postcondition: if target is defeated during the tick, Defeated is true and
// no later effect is processed.
func (e *Engine) Tick(target Target, turn int) TickResult {
	set := target.Effects()
	var res TickResult
	for _, a := range set.effects {
		switch a.Kind {
		case Stun, Freeze:
			res.Stunned = true
		case Silence:
			res.Silenced = true
		case Root:
			res.Rooted = true
		}
	}

	kept := set.effects[:0]
	pending := set.All()
	changed := false
	for i, a := range pending {
		detail := TickDetail{Kind: a.Kind}
		switch a.Kind.Category() {
		case CategoryDamageOverTime:
			detail.Damage = target.TakeDamage(a.Magnitude)
			res.Damage += detail.Damage
		case CategoryRegeneration:
			detail.Healed = target.Restore(a.Magnitude)
			res.Healed += detail.Healed
		case CategoryCrowdControl, CategoryAttributeBuff, CategoryAttributeDebuff,
			CategoryDerivedBuff, CategoryDefending, CategoryReflection:
			// passive while active
		default:
			e.logger.Warn("status tick: unhandled kind", zap.Stringer("kind", a.Kind))
		}
		if detail.Damage > 0 || detail.Healed > 0 {
			res.Details = append(res.Details, detail)
		}

		a.Duration--
		if a.Duration <= 0 {
			res.Expired = append(res.Expired, a.Kind)
			changed = true
		} else {
			kept = append(kept, a)
		}

		if target.IsDefeated() {
			res.Defeated = true
			// effects not yet reached are left untouched
			kept = append(kept, pending[i+1:]...)
			break
		}
	}
	set.effects = kept
	if changed {
		target.EffectsChanged()
	}

	e.logger.Debug("status tick",
		zap.Int("turn", turn),
		zap.Int("damage", res.Damage),
		zap.Int("healed", res.Healed),
		zap.Int("expired", len(res.Expired)),
		zap.Bool("defeated", res.Defeated),
	)
	return res
}

// Cure removes the effect of kind k from target.
//
// Postcondition: target.Effects().Has(k) is false. Returns true if removed.
func (e *Engine) Cure(target Target, k Kind) bool {
	if !target.Effects().Remove(k) {
		return false
	}
	target.EffectsChanged()
	return true
}
