// Package reward converts defeated enemies into experience, currency, items,
// loot chests and bestiary updates.
package reward

import (
	"errors"
	"fmt"
)

// Range is an inclusive integer range.
type Range struct {
	Min int `mapstructure:"min" yaml:"min"`
	Max int `mapstructure:"max" yaml:"max"`
}

// Validate checks 0 <= Min <= Max.
func (r Range) Validate() error {
	if r.Min < 0 {
		return fmt.Errorf("min must be >= 0, got %d", r.Min)
	}
	if r.Min > r.Max {
		return fmt.Errorf("min (%d) must be <= max (%d)", r.Min, r.Max)
	}
	return nil
}

// Tier is one enemy-level reward bracket.
type Tier struct {
	Name string `mapstructure:"name" yaml:"name"`
	// MaxLevel is the highest enemy level in this tier; 0 means unbounded.
	MaxLevel int   `mapstructure:"max_level" yaml:"max_level"`
	XP       int   `mapstructure:"xp" yaml:"xp"`
	Gold     Range `mapstructure:"gold" yaml:"gold"`
	Essence  Range `mapstructure:"essence" yaml:"essence"`
}

// Table holds the tiers and the elite and chest rules.
type Table struct {
	// Tiers are ordered by ascending MaxLevel; the last tier should be unbounded.
	Tiers                  []Tier  `mapstructure:"tiers" yaml:"tiers"`
	EliteXPMultiplier      float64 `mapstructure:"elite_xp_multiplier" yaml:"elite_xp_multiplier"`
	EliteGoldMultiplier    float64 `mapstructure:"elite_gold_multiplier" yaml:"elite_gold_multiplier"`
	EliteEssenceMultiplier float64 `mapstructure:"elite_essence_multiplier" yaml:"elite_essence_multiplier"`
	// ChestChance is the percent chance that a non-elite enemy drops one chest.
	ChestChance float64 `mapstructure:"chest_chance" yaml:"chest_chance"`
	EliteChests int     `mapstructure:"elite_chests" yaml:"elite_chests"`
}

// DefaultTable returns the stock easy/medium/hard/boss tiers.
func DefaultTable() Table {
	return Table{
		Tiers: []Tier{
			{Name: "easy", MaxLevel: 3, XP: 25, Gold: Range{5, 15}, Essence: Range{1, 3}},
			{Name: "medium", MaxLevel: 6, XP: 60, Gold: Range{15, 40}, Essence: Range{2, 6}},
			{Name: "hard", MaxLevel: 9, XP: 120, Gold: Range{40, 90}, Essence: Range{5, 10}},
			{Name: "boss", XP: 300, Gold: Range{100, 250}, Essence: Range{10, 25}},
		},
		EliteXPMultiplier:      1.5,
		EliteGoldMultiplier:    2,
		EliteEssenceMultiplier: 2,
		ChestChance:            25,
		EliteChests:            2,
	}
}

// TierFor returns the first tier whose MaxLevel is >= level, or the last tier.
//
// Precondition: t must have passed Validate.
func (t Table) TierFor(level int) Tier {
	for _, tier := range t.Tiers {
		if tier.MaxLevel == 0 || level <= tier.MaxLevel {
			return tier
		}
	}
	return t.Tiers[len(t.Tiers)-1]
}

// Validate checks that t is usable, collecting every violation.
func (t Table) Validate() error {
	var errs []error
	if len(t.Tiers) == 0 {
		errs = append(errs, errors.New("rewards: at least one tier is required"))
	}
	prev := 0
	for i, tier := range t.Tiers {
		if tier.Name == "" {
			errs = append(errs, fmt.Errorf("rewards: tier[%d] name must not be empty", i))
		}
		if tier.XP < 0 {
			errs = append(errs, fmt.Errorf("rewards: tier %q xp must be >= 0", tier.Name))
		}
		if err := tier.Gold.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("rewards: tier %q gold: %w", tier.Name, err))
		}
		if err := tier.Essence.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("rewards: tier %q essence: %w", tier.Name, err))
		}
		if tier.MaxLevel != 0 && tier.MaxLevel <= prev {
			errs = append(errs, fmt.Errorf("rewards: tier %q max_level must exceed %d", tier.Name, prev))
		}
		if tier.MaxLevel == 0 && i != len(t.Tiers)-1 {
			errs = append(errs, fmt.Errorf("rewards: only the last tier may be unbounded, tier %q is not last", tier.Name))
		}
		prev = tier.MaxLevel
	}
	if t.EliteXPMultiplier < 1 || t.EliteGoldMultiplier < 1 || t.EliteEssenceMultiplier < 1 {
		errs = append(errs, errors.New("rewards: elite multipliers must be >= 1"))
	}
	if t.ChestChance < 0 || t.ChestChance > 100 {
		errs = append(errs, fmt.Errorf("rewards: chest_chance must be in [0, 100], got %v", t.ChestChance))
	}
	if t.EliteChests < 0 {
		errs = append(errs, fmt.Errorf("rewards: elite_chests must be >= 0, got %d", t.EliteChests))
	}
	return errors.Join(errs...)
}
