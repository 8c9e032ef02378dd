package status

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is the static description of one effect kind. Defaults are used
// when an application leaves duration or magnitude unset.
type Definition struct {
	Kind             Kind   `yaml:"kind"`
	Name             string `yaml:"name"`
	Description      string `yaml:"description"`
	DefaultDuration  int    `yaml:"default_duration"`
	DefaultMagnitude int    `yaml:"default_magnitude"`
}

// Validate checks that the definition satisfies basic invariants.
func (d *Definition) Validate() error {
	if !d.Kind.Valid() {
		return fmt.Errorf("status definition %q: invalid kind", d.Name)
	}
	if d.DefaultDuration < 1 {
		return fmt.Errorf("status definition %s: default_duration must be >= 1, got %d", d.Kind, d.DefaultDuration)
	}
	if d.DefaultMagnitude < 0 {
		return fmt.Errorf("status definition %s: default_magnitude must be >= 0, got %d", d.Kind, d.DefaultMagnitude)
	}
	return nil
}

// Catalog holds one Definition per Kind.
type Catalog struct {
	defs map[Kind]*Definition
}

// DefaultCatalog returns the built-in definitions for every kind.
//
// Postcondition: Get(k) succeeds for every k in AllKinds().
func DefaultCatalog() *Catalog {
	c := &Catalog{defs: make(map[Kind]*Definition)}
	for _, d := range []Definition{
		{Kind: Burn, Name: "Burning", Description: "Takes fire damage at the start of each turn.", DefaultDuration: 3, DefaultMagnitude: 4},
		{Kind: Poison, Name: "Poisoned", Description: "Takes poison damage at the start of each turn.", DefaultDuration: 4, DefaultMagnitude: 3},
		{Kind: Bleed, Name: "Bleeding", Description: "Loses blood at the start of each turn.", DefaultDuration: 3, DefaultMagnitude: 3},
		{Kind: Stun, Name: "Stunned", Description: "Cannot act.", DefaultDuration: 1},
		{Kind: Freeze, Name: "Frozen", Description: "Encased in ice and cannot act.", DefaultDuration: 1},
		{Kind: Silence, Name: "Silenced", Description: "Cannot cast spells or use voiced abilities.", DefaultDuration: 2},
		{Kind: Root, Name: "Rooted", Description: "Cannot flee.", DefaultDuration: 2},
		{Kind: StrengthenBody, Name: "Strengthened Body", DefaultDuration: 3, DefaultMagnitude: 2},
		{Kind: StrengthenMind, Name: "Strengthened Mind", DefaultDuration: 3, DefaultMagnitude: 2},
		{Kind: StrengthenReflex, Name: "Strengthened Reflex", DefaultDuration: 3, DefaultMagnitude: 2},
		{Kind: WeakenBody, Name: "Weakened Body", DefaultDuration: 3, DefaultMagnitude: 2},
		{Kind: WeakenMind, Name: "Weakened Mind", DefaultDuration: 3, DefaultMagnitude: 2},
		{Kind: WeakenReflex, Name: "Weakened Reflex", DefaultDuration: 3, DefaultMagnitude: 2},
		{Kind: TempSpeedUp, Name: "Hasted", DefaultDuration: 3, DefaultMagnitude: 3},
		{Kind: TempMaxHPUp, Name: "Fortified", DefaultDuration: 3, DefaultMagnitude: 10},
		{Kind: Regeneration, Name: "Regenerating", Description: "Recovers health at the start of each turn.", DefaultDuration: 3, DefaultMagnitude: 4},
		{Kind: Defending, Name: "Defending", Description: "Braced against incoming blows.", DefaultDuration: 1},
		{Kind: DamageReflection, Name: "Reflecting", Description: "Returns a share of damage taken.", DefaultDuration: 3, DefaultMagnitude: 25},
	} {
		def := d
		c.defs[def.Kind] = &def
	}
	return c
}

// Register adds or overwrites the definition for def.Kind.
//
// Precondition: def must not be nil and must pass Validate.
func (c *Catalog) Register(def *Definition) {
	c.defs[def.Kind] = def
}

// Get returns the definition for k, or (nil, false) if none is registered.
func (c *Catalog) Get(k Kind) (*Definition, bool) {
	d, ok := c.defs[k]
	return d, ok
}

// Name returns the display name for k, falling back to k.String().
func (c *Catalog) Name(k Kind) string {
	if d, ok := c.defs[k]; ok && d.Name != "" {
		return d.Name
	}
	return k.String()
}

// LoadCatalog starts from DefaultCatalog and overlays every *.yaml file in dir.
// Each file holds a single Definition.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a catalog covering every kind, or an error if any file
// fails to parse or validate.
func LoadCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading status dir %q: %w", dir, err)
	}
	cat := DefaultCatalog()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Definition
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		cat.Register(&def)
	}
	return cat, nil
}
