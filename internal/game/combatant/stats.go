// Package combatant models encounter participants and derives their
// effective stats from attributes, equipment bonuses and active effects.
package combatant

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/arcanum/internal/game/status"
)

// Attribute names one of the three base attributes.
type Attribute int

const (
	AttributeNone Attribute = iota
	Body
	Mind
	Reflex
)

// String returns the lowercase attribute name.
func (a Attribute) String() string {
	switch a {
	case Body:
		return "body"
	case Mind:
		return "mind"
	case Reflex:
		return "reflex"
	default:
		return "none"
	}
}

// ParseAttribute resolves a case-insensitive attribute name. The empty string
// and "none" map to AttributeNone.
func ParseAttribute(s string) (Attribute, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return AttributeNone, nil
	case "body", "strength":
		return Body, nil
	case "mind", "intellect":
		return Mind, nil
	case "reflex", "agility":
		return Reflex, nil
	default:
		return AttributeNone, fmt.Errorf("combatant: unknown attribute %q", s)
	}
}

// Attributes holds the three base attributes.
type Attributes struct {
	Body   int `json:"body" yaml:"body"`
	Mind   int `json:"mind" yaml:"mind"`
	Reflex int `json:"reflex" yaml:"reflex"`
}

// Base holds the flat starting pools before level and attribute scaling.
type Base struct {
	HP    int
	MP    int
	EP    int
	Speed int
}

// Bonuses are summed equipment bonuses.
type Bonuses struct {
	HP                int `json:"hp,omitempty" yaml:"hp"`
	MP                int `json:"mp,omitempty" yaml:"mp"`
	EP                int `json:"ep,omitempty" yaml:"ep"`
	Speed             int `json:"speed,omitempty" yaml:"speed"`
	Body              int `json:"body,omitempty" yaml:"body"`
	Mind              int `json:"mind,omitempty" yaml:"mind"`
	Reflex            int `json:"reflex,omitempty" yaml:"reflex"`
	Defense           int `json:"defense,omitempty" yaml:"defense"`
	ReflectionPercent int `json:"reflection_percent,omitempty" yaml:"reflection_percent"`
}

// Add returns the element-wise sum of b and o.
func (b Bonuses) Add(o Bonuses) Bonuses {
	return Bonuses{
		HP:                b.HP + o.HP,
		MP:                b.MP + o.MP,
		EP:                b.EP + o.EP,
		Speed:             b.Speed + o.Speed,
		Body:              b.Body + o.Body,
		Mind:              b.Mind + o.Mind,
		Reflex:            b.Reflex + o.Reflex,
		Defense:           b.Defense + o.Defense,
		ReflectionPercent: b.ReflectionPercent + o.ReflectionPercent,
	}
}

// Rules are the scaling coefficients of the stat formulas.
type Rules struct {
	Base                  Base
	HPPerLevel            int
	HPPerBody             int
	MPPerLevel            int
	MPPerMind             int
	EPPerLevel            int
	EPPerReflex           int
	SpeedPerLevel         int
	SpeedPerReflex        int
	PhysicalPowerPerBody  float64
	MagicPowerPerMind     float64
	DefensePerBody        float64
	DefensePerReflex      float64
	DefendingBonusPercent int
}

// Input is everything the calculator reads.
type Input struct {
	Level      int
	Attributes Attributes
	Base       Base
	Bonuses    Bonuses
	Effects    []status.Active
}

// Stats is an immutable effective-stats snapshot.
type Stats struct {
	Body          int
	Mind          int
	Reflex        int
	MaxHP         int
	MaxMP         int
	MaxEP         int
	Speed         int
	PhysicalPower int
	MagicPower    int
	Defense       int
	// Reflection is the fraction of damage taken returned to the attacker, in [0, 1].
	Reflection float64
}

// Attribute returns the effective value of a, or 0 for AttributeNone.
func (s Stats) Attribute(a Attribute) int {
	switch a {
	case Body:
		return s.Body
	case Mind:
		return s.Mind
	case Reflex:
		return s.Reflex
	default:
		return 0
	}
}

// Calculate derives effective stats.
//
// Attribute buffs and debuffs are summed per attribute and applied to the
// base attribute before any formula runs, so their order does not matter;
// Weaken effects never push an attribute below 1. Speed and max HP
// buffs are added after the formulas. Defending raises final defense by
// Rules.DefendingBonusPercent. Reflection is clamped to [0, 1].
//
// Postcondition: the result depends only on r and in.
func Calculate(r Rules, in Input) Stats {
	var strengthen, weaken [3]int
	speedUp, maxHPUp, reflectPct := 0, 0, in.Bonuses.ReflectionPercent
	defending := false
	for _, e := range in.Effects {
		switch e.Kind {
		case status.StrengthenBody:
			strengthen[0] += e.Magnitude
		case status.StrengthenMind:
			strengthen[1] += e.Magnitude
		case status.StrengthenReflex:
			strengthen[2] += e.Magnitude
		case status.WeakenBody:
			weaken[0] += e.Magnitude
		case status.WeakenMind:
			weaken[1] += e.Magnitude
		case status.WeakenReflex:
			weaken[2] += e.Magnitude
		case status.TempSpeedUp:
			speedUp += e.Magnitude
		case status.TempMaxHPUp:
			maxHPUp += e.Magnitude
		case status.Defending:
			defending = true
		case status.DamageReflection:
			reflectPct += e.Magnitude
		}
	}
	body := effectiveAttribute(in.Attributes.Body+in.Bonuses.Body, strengthen[0], weaken[0])
	mind := effectiveAttribute(in.Attributes.Mind+in.Bonuses.Mind, strengthen[1], weaken[1])
	reflex := effectiveAttribute(in.Attributes.Reflex+in.Bonuses.Reflex, strengthen[2], weaken[2])

	s := Stats{
		Body:   body,
		Mind:   mind,
		Reflex: reflex,
		MaxHP:  in.Base.HP + in.Level*r.HPPerLevel + body*r.HPPerBody + in.Bonuses.HP + maxHPUp,
		MaxMP:  in.Base.MP + in.Level*r.MPPerLevel + mind*r.MPPerMind + in.Bonuses.MP,
		MaxEP:  in.Base.EP + in.Level*r.EPPerLevel + reflex*r.EPPerReflex + in.Bonuses.EP,
		Speed:  in.Base.Speed + in.Level*r.SpeedPerLevel + reflex*r.SpeedPerReflex + in.Bonuses.Speed + speedUp,

		PhysicalPower: int(math.Floor(float64(body) * r.PhysicalPowerPerBody)),
		MagicPower:    int(math.Floor(float64(mind) * r.MagicPowerPerMind)),
	}
	s.Defense = int(math.Floor(float64(body)*r.DefensePerBody+float64(reflex)*r.DefensePerReflex)) + in.Bonuses.Defense
	if defending {
		s.Defense = int(math.Floor(float64(s.Defense) * (1 + float64(r.DefendingBonusPercent)/100)))
	}
	s.Reflection = math.Min(1, math.Max(0, float64(reflectPct)/100))
	s.MaxHP = max(1, s.MaxHP)
	s.MaxMP = max(0, s.MaxMP)
	s.MaxEP = max(0, s.MaxEP)
	return s
}

// effectiveAttribute nets buffs against debuffs. A weakened attribute never
// drops below 1.
func effectiveAttribute(base, strengthen, weaken int) int {
	v := base + strengthen - weaken
	if weaken > 0 {
		v = max(1, v)
	}
	return v
}
