// Package status implements timed status effects: application with a chance
// roll, merge-on-reapply, per-turn ticking and expiry.
package status

import (
	"fmt"
	"strings"
)

// Kind identifies a status effect. The set of kinds is closed; every kind must
// be handled by Category, the default catalog, Engine.Apply and Engine.Tick.
type Kind int

const (
	KindUnknown Kind = iota // zero value; intentionally invalid
	Burn
	Poison
	Bleed
	Stun
	Freeze
	Silence
	Root
	StrengthenBody
	StrengthenMind
	StrengthenReflex
	WeakenBody
	WeakenMind
	WeakenReflex
	TempSpeedUp
	TempMaxHPUp
	Regeneration
	Defending
	DamageReflection
	kindSentinel
)

var kindNames = map[Kind]string{
	Burn:             "Burn",
	Poison:           "Poison",
	Bleed:            "Bleed",
	Stun:             "Stun",
	Freeze:           "Freeze",
	Silence:          "Silence",
	Root:             "Root",
	StrengthenBody:   "StrengthenBody",
	StrengthenMind:   "StrengthenMind",
	StrengthenReflex: "StrengthenReflex",
	WeakenBody:       "WeakenBody",
	WeakenMind:       "WeakenMind",
	WeakenReflex:     "WeakenReflex",
	TempSpeedUp:      "TempSpeedUp",
	TempMaxHPUp:      "TempMaxHPUp",
	Regeneration:     "Regeneration",
	Defending:        "Defending",
	DamageReflection: "DamageReflection",
}

// aliases maps alternative spellings produced by content generators onto kinds.
var aliases = map[string]Kind{
	"burning":        Burn,
	"poisoned":       Poison,
	"bleeding":       Bleed,
	"stunned":        Stun,
	"frozen":         Freeze,
	"silenced":       Silence,
	"rooted":         Root,
	"temp_speed_up":  TempSpeedUp,
	"temp_max_hp_up": TempMaxHPUp,
	"regen":          Regeneration,
	"reflect":        DamageReflection,
}

// AllKinds returns every valid Kind in declaration order.
func AllKinds() []Kind {
	out := make([]Kind, 0, int(kindSentinel)-1)
	for k := KindUnknown + 1; k < kindSentinel; k++ {
		out = append(out, k)
	}
	return out
}

// String returns the canonical name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k > KindUnknown && k < kindSentinel
}

// ParseKind resolves a case-insensitive effect name. Underscores, spaces and
// hyphens are ignored so "weaken_body" and "Weaken Body" both match.
//
// Postcondition: returns a valid Kind or a non-nil error.
func ParseKind(name string) (Kind, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if k, ok := aliases[lower]; ok {
		return k, nil
	}
	norm := strings.NewReplacer("_", "", " ", "", "-", "").Replace(lower)
	for k, n := range kindNames {
		if strings.ToLower(n) == norm {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("status: unknown effect %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("status: cannot marshal invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Category groups kinds by how the engine treats them.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryDamageOverTime
	CategoryCrowdControl
	CategoryAttributeBuff
	CategoryAttributeDebuff
	CategoryDerivedBuff
	CategoryRegeneration
	CategoryDefending
	CategoryReflection
)

// Category returns the handling category of k.
//
// Postcondition: returns CategoryUnknown only for invalid kinds.
func (k Kind) Category() Category {
	switch k {
	case Burn, Poison, Bleed:
		return CategoryDamageOverTime
	case Stun, Freeze, Silence, Root:
		return CategoryCrowdControl
	case StrengthenBody, StrengthenMind, StrengthenReflex:
		return CategoryAttributeBuff
	case WeakenBody, WeakenMind, WeakenReflex:
		return CategoryAttributeDebuff
	case TempSpeedUp, TempMaxHPUp:
		return CategoryDerivedBuff
	case Regeneration:
		return CategoryRegeneration
	case Defending:
		return CategoryDefending
	case DamageReflection:
		return CategoryReflection
	default:
		return CategoryUnknown
	}
}

// Beneficial reports whether the effect helps its bearer. Used for choosing
// the target of ability and consumable payloads.
func (k Kind) Beneficial() bool {
	switch k.Category() {
	case CategoryAttributeBuff, CategoryDerivedBuff, CategoryRegeneration, CategoryDefending, CategoryReflection:
		return true
	default:
		return false
	}
}
