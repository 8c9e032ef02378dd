package reward

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arcanum/internal/game/combatant"
	"github.com/cory-johannsen/arcanum/internal/game/dice"
)

// ItemDrop is one loot table entry with its drop chance.
type ItemDrop struct {
	ItemID string `yaml:"item"`
	// Chance is the drop probability in percent, in (0, 100].
	Chance float64 `yaml:"chance"`
	MinQty int     `yaml:"min_qty"`
	MaxQty int     `yaml:"max_qty"`
}

// LootTable is a named list of possible item drops, referenced by an enemy's
// loot table id.
type LootTable struct {
	ID    string     `yaml:"id"`
	Items []ItemDrop `yaml:"items"`
}

// Validate checks the loot table invariants. An empty table is valid.
//
// Postcondition: Returns nil iff every item has a non-empty id, a chance in
// (0, 100] and 1 <= min_qty <= max_qty.
func (lt *LootTable) Validate() error {
	if lt.ID == "" {
		return fmt.Errorf("loot table: id must not be empty")
	}
	for i, item := range lt.Items {
		if item.ItemID == "" {
			return fmt.Errorf("loot table %q: item[%d] must have a non-empty item id", lt.ID, i)
		}
		if item.Chance <= 0 || item.Chance > 100 {
			return fmt.Errorf("loot table %q: item[%d] chance must be in (0, 100], got %v", lt.ID, i, item.Chance)
		}
		if item.MinQty < 1 {
			return fmt.Errorf("loot table %q: item[%d] min_qty must be >= 1, got %d", lt.ID, i, item.MinQty)
		}
		if item.MinQty > item.MaxQty {
			return fmt.Errorf("loot table %q: item[%d] min_qty (%d) must be <= max_qty (%d)", lt.ID, i, item.MinQty, item.MaxQty)
		}
	}
	return nil
}

// Roll draws items from lt.
//
// Precondition: lt must have passed Validate.
// Postcondition: each returned quantity is within [MinQty, MaxQty] of its entry.
func (lt LootTable) Roll(src dice.Source) []combatant.ResourceDrop {
	var out []combatant.ResourceDrop
	for _, item := range lt.Items {
		if dice.Percent(src) >= item.Chance {
			continue
		}
		out = append(out, combatant.ResourceDrop{
			ItemID:   item.ItemID,
			Quantity: dice.Between(src, item.MinQty, item.MaxQty),
		})
	}
	return out
}

// LoadLootTables reads every .yaml file in dir as a LootTable.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns tables keyed by id, or an error naming the first
// invalid or duplicate table.
func LoadLootTables(dir string) (map[string]LootTable, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading loot dir %q: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	tables := make(map[string]LootTable, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", name, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		var lt LootTable
		if err := dec.Decode(&lt); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", name, err)
		}
		if err := lt.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", name, err)
		}
		if _, dup := tables[lt.ID]; dup {
			return nil, fmt.Errorf("duplicate loot table id %q in %q", lt.ID, name)
		}
		tables[lt.ID] = lt
	}
	return tables, nil
}
