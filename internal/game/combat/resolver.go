package combat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arcanum/internal/game/combatant"
	"github.com/cory-johannsen/arcanum/internal/game/damage"
	"github.com/cory-johannsen/arcanum/internal/game/status"
)

// SubmitPlayerAction resolves the player's action and, unless the encounter
// ended, hands control to the enemies.
//
// Rejected actions (silenced, rooted, insufficient resources, unavailable
// target) return an error wrapping the matching sentinel, log a warning
// event, and leave the session unchanged: the player may choose again.
//
// Precondition: s.Phase == PhasePlayerTurn.
// Postcondition: on nil error the player's turn is over.
func (e *Engine) SubmitPlayerAction(ctx context.Context, s *Session, a Action) error {
	if s.Phase != PhasePlayerTurn {
		return fmt.Errorf("submit %s in phase %s: %w", actionLabel(a), s.Phase, ErrNotPlayerTurn)
	}
	var err error
	switch a := a.(type) {
	case BasicAttack:
		err = e.playerBasicAttack(s, a)
	case Defend:
		s.emit(s.Player, CategoryAction, "%s takes a defensive stance.", s.Player.Name)
		e.applyStatus(s, s.Player, s.Player, &StatusPayload{Kind: status.Defending, Chance: 100, Duration: 1})
	case Flee:
		err = e.flee(s)
	case Spell:
		err = e.castSpell(s, a)
	case Ability:
		err = e.useAbility(s, a)
	case Consumable:
		err = e.useConsumable(s, a)
	case Freestyle:
		err = e.freestyleAction(ctx, s, a)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}
	if err != nil {
		s.emit(s.Player, CategoryWarning, "%s", rejection(err))
		e.logger.Debug("player action rejected", zap.String("session", s.ID), zap.Error(err))
		return err
	}
	if e.checkTerminal(s) {
		return nil
	}
	e.startEnemyPhase(s)
	return nil
}

func actionLabel(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return a.Label()
}

func rejection(err error) string {
	return fmt.Sprintf("Action failed: %v.", err)
}

// target returns the living enemy named by id, or the current target when id
// is empty. A valid explicit id becomes the current target.
func (e *Engine) target(s *Session, id string) (*combatant.Combatant, error) {
	if id == "" {
		id = s.defaultTargetID()
	}
	t, ok := s.Enemy(id)
	if !ok || t.IsDefeated() {
		e.logger.Warn("target unavailable", zap.String("session", s.ID), zap.String("target", id))
		return nil, fmt.Errorf("%w: %q", ErrTargetUnavailable, id)
	}
	return t, nil
}

// commitTarget makes t the session's current target once the action's costs
// are paid. A nil t leaves the target unchanged.
func commitTarget(s *Session, t *combatant.Combatant) {
	if t != nil {
		s.TargetID = t.ID
	}
}

func (e *Engine) playerBasicAttack(s *Session, a BasicAttack) error {
	t, err := e.target(s, a.TargetID)
	if err != nil {
		return err
	}
	commitTarget(s, t)
	e.basicAttack(s, s.Player, t)
	return nil
}

// basicAttack uses the defender's effective Body as defense.
func (e *Engine) basicAttack(s *Session, attacker, defender *combatant.Combatant) {
	n := damage.Calculate(damage.Input{
		Base:            e.cfg.BasicAttackBase,
		AttackerPower:   attacker.Stats().PhysicalPower,
		DefenderDefense: defender.Stats().Body,
		Effectiveness:   effectiveness(e.cfg.BasicAttackType, defender),
	})
	s.emit(attacker, CategoryAction, "%s attacks %s.", attacker.Name, defender.Name)
	e.dealDamage(s, attacker, defender, n)
}

func (e *Engine) enemySpecial(s *Session, enemy *combatant.Combatant, sp *combatant.Special) {
	s.emit(enemy, CategoryAction, "%s uses %s!", enemy.Name, sp.Name)
	enemy.Enemy.SpecialCooldown = sp.Cooldown
	if sp.Damage > 0 {
		n := damage.Calculate(damage.Input{
			Base:            sp.Damage,
			AttackerPower:   enemy.Stats().MagicPower,
			DefenderDefense: s.Player.Stats().Defense,
			Effectiveness:   effectiveness(sp.DamageType, s.Player),
		})
		e.dealDamage(s, enemy, s.Player, n)
	}
	if sp.Status != nil && !s.Player.IsDefeated() && !enemy.IsDefeated() {
		app := *sp.Status
		e.applyStatus(s, enemy, s.Player, &StatusPayload{Kind: app.Kind, Chance: app.Chance, Duration: app.Duration, Magnitude: app.Magnitude})
	}
}

func effectiveness(damageType string, defender *combatant.Combatant) damage.Effectiveness {
	if defender.Enemy == nil {
		return damage.Normal
	}
	return damage.EffectivenessFor(damageType, defender.Enemy.Weakness, defender.Enemy.Resistance)
}

func (e *Engine) flee(s *Session) error {
	if s.playerFlags.Rooted {
		return ErrRooted
	}
	roll := e.roller.Percent()
	if roll < e.cfg.FleeChance {
		s.Phase = PhaseFled
		s.emit(s.Player, CategoryOutcome, "%s escapes.", s.Player.Name)
		e.logger.Info("encounter ended", zap.String("session", s.ID), zap.Stringer("phase", s.Phase), zap.Int("turn", s.Turn))
		return nil
	}
	s.emit(s.Player, CategoryAction, "%s tries to flee but fails.", s.Player.Name)
	return nil
}

func (e *Engine) castSpell(s *Session, a Spell) error {
	p := s.Player
	if s.playerFlags.Silenced {
		return fmt.Errorf("cannot cast %s: %w", a.Name, ErrSilenced)
	}
	var t *combatant.Combatant
	if !a.SelfTargeted {
		var err error
		if t, err = e.target(s, a.TargetID); err != nil {
			return err
		}
	}
	if p.MP < a.ManaCost {
		return fmt.Errorf("%s needs %d MP, have %d: %w", a.Name, a.ManaCost, p.MP, ErrInsufficientMana)
	}
	for _, c := range a.ResourceCost {
		if p.ItemCount(c.ItemID) < c.Quantity {
			return fmt.Errorf("%s needs %d %s: %w", a.Name, c.Quantity, c.ItemID, ErrInsufficientItems)
		}
	}

	p.MP -= a.ManaCost
	for _, c := range a.ResourceCost {
		p.RemoveItem(c.ItemID, c.Quantity)
	}
	commitTarget(s, t)
	in := damage.Input{
		Base:          a.Damage,
		AttackerPower: p.Stats().MagicPower,
		ScalingFactor: e.cfg.SpellScalingFactor,
		ScalingStat:   p.Stats().Attribute(a.ScalesWith),
	}

	if a.SelfTargeted {
		s.emit(p, CategoryAction, "%s casts %s.", p.Name, a.Name)
		if a.Damage > 0 {
			healed := p.Restore(damage.Heal(in, p.HP, p.Stats().MaxHP))
			s.emit(p, CategoryHeal, "%s recovers %d HP.", p.Name, healed)
		}
		if a.StatusEffect != nil {
			e.applyStatus(s, p, p, a.StatusEffect)
		}
		return nil
	}

	s.emit(p, CategoryAction, "%s casts %s at %s.", p.Name, a.Name, t.Name)
	if a.Damage > 0 {
		in.DefenderDefense = t.Stats().Defense
		in.Effectiveness = effectiveness(a.DamageType, t)
		e.reportEffectiveness(s, in.Effectiveness)
		e.dealDamage(s, p, t, damage.Calculate(in))
	}
	if a.StatusEffect != nil {
		e.applyStatus(s, p, e.payloadTarget(a.StatusEffect, p, t), a.StatusEffect)
	}
	return nil
}

func (e *Engine) useAbility(s *Session, a Ability) error {
	p := s.Player
	if a.Voice && s.playerFlags.Silenced {
		return fmt.Errorf("cannot use %s: %w", a.Name, ErrSilenced)
	}
	var t *combatant.Combatant
	if a.Effect == AbilityDamage || a.Effect == AbilityDebuff {
		var err error
		if t, err = e.target(s, a.TargetID); err != nil {
			return err
		}
	}
	if p.EP < a.EPCost {
		return fmt.Errorf("%s needs %d EP, have %d: %w", a.Name, a.EPCost, p.EP, ErrInsufficientEnergy)
	}
	p.EP -= a.EPCost
	commitTarget(s, t)

	switch a.Effect {
	case AbilityDamage:
		s.emit(p, CategoryAction, "%s uses %s on %s.", p.Name, a.Name, t.Name)
		in := damage.Input{
			Base:            a.Magnitude,
			AttackerPower:   p.Stats().PhysicalPower,
			DefenderDefense: t.Stats().Defense,
			Effectiveness:   effectiveness(a.DamageType, t),
		}
		e.reportEffectiveness(s, in.Effectiveness)
		e.dealDamage(s, p, t, damage.Calculate(in))
	case AbilityHeal:
		s.emit(p, CategoryAction, "%s uses %s.", p.Name, a.Name)
		healed := p.Restore(damage.Heal(damage.Input{Base: a.Magnitude, AttackerPower: p.Stats().MagicPower}, p.HP, p.Stats().MaxHP))
		s.emit(p, CategoryHeal, "%s recovers %d HP.", p.Name, healed)
	case AbilityBuff:
		s.emit(p, CategoryAction, "%s uses %s.", p.Name, a.Name)
	case AbilityDebuff:
		s.emit(p, CategoryAction, "%s uses %s on %s.", p.Name, a.Name, t.Name)
	default:
		return fmt.Errorf("%w: ability effect %d", ErrUnknownAction, a.Effect)
	}
	if a.TargetStatusEffect != nil {
		e.applyStatus(s, p, e.payloadTarget(a.TargetStatusEffect, p, t), a.TargetStatusEffect)
	}
	return nil
}

func (e *Engine) useConsumable(s *Session, a Consumable) error {
	p := s.Player
	var t *combatant.Combatant
	if a.Effect == ConsumableDamage {
		var err error
		if t, err = e.target(s, a.TargetID); err != nil {
			return err
		}
	}
	if p.ItemCount(a.ItemID) < 1 {
		return fmt.Errorf("no %s left: %w", a.Name, ErrInsufficientItems)
	}
	p.RemoveItem(a.ItemID, 1)
	commitTarget(s, t)
	s.emit(p, CategoryAction, "%s uses %s.", p.Name, a.Name)

	switch a.Effect {
	case ConsumableRestoreHP:
		s.emit(p, CategoryHeal, "%s recovers %d HP.", p.Name, p.Restore(a.Magnitude))
	case ConsumableRestoreMP:
		s.emit(p, CategoryHeal, "%s recovers %d MP.", p.Name, p.RestoreMP(a.Magnitude))
	case ConsumableRestoreEP:
		s.emit(p, CategoryHeal, "%s recovers %d EP.", p.Name, p.RestoreEP(a.Magnitude))
	case ConsumableCure:
		if e.status.Cure(p, a.StatusToCure) {
			s.emit(p, CategoryStatus, "%s is no longer %s.", p.Name, e.status.Catalog().Name(a.StatusToCure))
		} else {
			s.emit(p, CategoryInfo, "Nothing to cure.")
		}
	case ConsumableBuff:
	case ConsumableDamage:
		e.dealDamage(s, p, t, damage.Calculate(damage.Input{Base: a.Magnitude, DefenderDefense: t.Stats().Defense}))
	default:
		return fmt.Errorf("%w: consumable effect %d", ErrUnknownAction, a.Effect)
	}
	if a.BuffToApply != nil {
		e.applyStatus(s, p, e.payloadTarget(a.BuffToApply, p, t), a.BuffToApply)
	}
	return nil
}

func (e *Engine) freestyleAction(ctx context.Context, s *Session, a Freestyle) error {
	p := s.Player
	t, err := e.target(s, a.TargetID)
	if err != nil {
		return err
	}
	out, err := e.freestyle.Resolve(ctx, FreestyleRequest{Text: a.Text, Turn: s.Turn, Actor: p, Target: t})
	if err != nil {
		return fmt.Errorf("freestyle: %w", err)
	}
	commitTarget(s, t)
	s.emit(p, CategoryAction, "%s: %q. %s", p.Name, a.Text, out.Message)
	if out.Damage > 0 {
		e.dealDamage(s, p, t, out.Damage)
	}
	if out.Heal > 0 && !p.IsDefeated() {
		s.emit(p, CategoryHeal, "%s recovers %d HP.", p.Name, p.Restore(out.Heal))
	}
	if out.Status != nil {
		e.applyStatus(s, p, e.payloadTarget(out.Status, p, t), out.Status)
	}
	return nil
}

// payloadTarget sends beneficial effects to self and harmful ones to target,
// falling back to self when there is no target.
func (e *Engine) payloadTarget(p *StatusPayload, self, target *combatant.Combatant) *combatant.Combatant {
	if p.Kind.Beneficial() || target == nil {
		return self
	}
	return target
}

func (e *Engine) reportEffectiveness(s *Session, eff damage.Effectiveness) {
	switch eff {
	case damage.Weak:
		s.emit(nil, CategoryInfo, "It's super effective!")
	case damage.Resistant:
		s.emit(nil, CategoryInfo, "It's not very effective.")
	}
}

// applyStatus applies p to target unless target is already defeated.
func (e *Engine) applyStatus(s *Session, source, target *combatant.Combatant, p *StatusPayload) {
	if target.IsDefeated() {
		return
	}
	if !p.Kind.Valid() {
		e.logger.Warn("invalid status payload", zap.Int("kind", int(p.Kind)))
		return
	}
	res := e.status.Apply(target, p.application(), source.ID, s.Turn)
	name := e.status.Catalog().Name(p.Kind)
	if !res.Applied {
		s.emit(target, CategoryStatus, "%s resists %s.", target.Name, name)
		return
	}
	s.emit(target, CategoryStatus, "%s is %s for %d turns.", target.Name, name, res.Duration)
}

// dealDamage applies n to target, reflects a share of n back to the attacker,
// and routes any defeat. The reflected share is taken from the full amount,
// even when n exceeds the target's remaining HP. Reflected damage does not
// reflect again.
func (e *Engine) dealDamage(s *Session, attacker, target *combatant.Combatant, n int) {
	reflection := target.Stats().Reflection
	actual := target.TakeDamage(n)
	s.emit(target, CategoryDamage, "%s takes %d damage.", target.Name, actual)
	if attacker != nil && attacker != target {
		if back := damage.Reflected(n, reflection); back > 0 {
			lost := attacker.TakeDamage(back)
			s.emit(attacker, CategoryDamage, "%s takes %d reflected damage.", attacker.Name, lost)
		}
	}
	if target.IsDefeated() {
		e.onDefeated(s, target)
	}
	if attacker != nil && attacker.IsDefeated() {
		e.onDefeated(s, attacker)
	}
	e.checkTerminal(s)
}
