// Package damage holds the pure damage, healing and reflection formulas.
package damage

import "math"

// Effectiveness is the elemental matchup of a damage type against a defender.
type Effectiveness int

const (
	Normal Effectiveness = iota
	Weak
	Resistant
)

// String returns the effectiveness label.
func (e Effectiveness) String() string {
	switch e {
	case Weak:
		return "weak"
	case Resistant:
		return "resistant"
	default:
		return "normal"
	}
}

// Multiplier returns 1.5 for Weak, 0.5 for Resistant and 1 otherwise.
func (e Effectiveness) Multiplier() float64 {
	switch e {
	case Weak:
		return 1.5
	case Resistant:
		return 0.5
	default:
		return 1
	}
}

// EffectivenessFor matches damageType exactly against the defender's weakness
// and resistance tags. An empty damage type is always Normal; weakness wins
// when both tags match.
func EffectivenessFor(damageType, weakness, resistance string) Effectiveness {
	switch {
	case damageType == "":
		return Normal
	case damageType == weakness:
		return Weak
	case damageType == resistance:
		return Resistant
	default:
		return Normal
	}
}

// Input carries the operands of Calculate and Heal.
type Input struct {
	Base            int
	AttackerPower   int
	DefenderDefense int
	Effectiveness   Effectiveness
	ScalingFactor   float64
	// ScalingStat is the attacker's value of the attribute the action scales with.
	ScalingStat int
}

func raw(in Input) float64 {
	r := float64(in.Base) + float64(in.AttackerPower) + float64(in.ScalingStat)*in.ScalingFactor
	return r * in.Effectiveness.Multiplier()
}

// Calculate returns outgoing damage:
// max(1, floor((base + power + stat·factor)·multiplier − defense)).
//
// Postcondition: result >= 1.
func Calculate(in Input) int {
	return max(1, int(math.Floor(raw(in)-float64(in.DefenderDefense))))
}

// Heal applies the damage formula with no defense and caps the result at the
// HP missing from the target.
//
// Postcondition: 0 <= result <= maxHP - currentHP.
func Heal(in Input, currentHP, maxHP int) int {
	amount := max(1, int(math.Floor(raw(in))))
	return max(0, min(amount, maxHP-currentHP))
}

// Reflected returns floor(actual·fraction), the damage bounced back to an attacker.
//
// Precondition: fraction is in [0, 1].
func Reflected(actual int, fraction float64) int {
	if actual <= 0 || fraction <= 0 {
		return 0
	}
	return int(math.Floor(float64(actual) * fraction))
}
