package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arcanum/internal/game/dice"
)

// ErrNoContent is returned when a generator has nothing of the requested kind.
var ErrNoContent = errors.New("content: no entries for kind")

// Library is the authored content pool behind StaticGenerator.
type Library struct {
	Enemies     []Enemy      `yaml:"enemies"`
	Spells      []Spell      `yaml:"spells"`
	Abilities   []Ability    `yaml:"abilities"`
	Consumables []Consumable `yaml:"consumables"`
	Equipment   []Equipment  `yaml:"equipment"`
}

// Descriptors returns every entry of kind k wrapped as a Descriptor.
func (l *Library) Descriptors(k Kind) []Descriptor {
	var out []Descriptor
	switch k {
	case KindEnemy:
		for i := range l.Enemies {
			out = append(out, Descriptor{Kind: k, Enemy: &l.Enemies[i]})
		}
	case KindSpell:
		for i := range l.Spells {
			out = append(out, Descriptor{Kind: k, Spell: &l.Spells[i]})
		}
	case KindAbility:
		for i := range l.Abilities {
			out = append(out, Descriptor{Kind: k, Ability: &l.Abilities[i]})
		}
	case KindConsumable:
		for i := range l.Consumables {
			out = append(out, Descriptor{Kind: k, Consumable: &l.Consumables[i]})
		}
	case KindEquipment:
		for i := range l.Equipment {
			out = append(out, Descriptor{Kind: k, Equipment: &l.Equipment[i]})
		}
	}
	return out
}

func (l *Library) merge(o *Library) {
	l.Enemies = append(l.Enemies, o.Enemies...)
	l.Spells = append(l.Spells, o.Spells...)
	l.Abilities = append(l.Abilities, o.Abilities...)
	l.Consumables = append(l.Consumables, o.Consumables...)
	l.Equipment = append(l.Equipment, o.Equipment...)
}

// Validate checks every entry.
func (l *Library) Validate() error {
	for _, k := range []Kind{KindEnemy, KindSpell, KindAbility, KindConsumable, KindEquipment} {
		for _, d := range l.Descriptors(k) {
			if err := d.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadLibrary reads every *.yaml file in dir in name order and merges them.
//
// Precondition: dir must be a readable directory.
// Postcondition: unknown YAML fields are rejected; every entry passes Descriptor.Validate.
func LoadLibrary(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("content.LoadLibrary: reading %q: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && (strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml")) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	lib := &Library{}
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("content.LoadLibrary: reading %s: %w", name, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		var part Library
		if err := dec.Decode(&part); err != nil {
			return nil, fmt.Errorf("content.LoadLibrary: parsing %s: %w", name, err)
		}
		lib.merge(&part)
	}
	if err := lib.Validate(); err != nil {
		return nil, fmt.Errorf("content.LoadLibrary: %w", err)
	}
	return lib, nil
}

// StaticGenerator serves authored content. It needs no network and is used
// offline and in tests.
type StaticGenerator struct {
	lib    *Library
	src    dice.Source
	logger *zap.Logger
}

// NewStaticGenerator creates a StaticGenerator.
//
// Precondition: lib, src and logger must not be nil.
func NewStaticGenerator(lib *Library, src dice.Source, logger *zap.Logger) *StaticGenerator {
	if lib == nil || src == nil || logger == nil {
		panic("content.NewStaticGenerator: library, source and logger must not be nil")
	}
	return &StaticGenerator{lib: lib, src: src, logger: logger}
}

// Generate picks an entry of kind at random, preferring entries whose name or
// description shares a word with prompt. Enemies are returned at level.
//
// Postcondition: the returned descriptor is a copy; mutating it does not
// change the library.
func (g *StaticGenerator) Generate(ctx context.Context, level int, kind Kind, prompt string) (Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return Descriptor{}, err
	}
	if !kind.Valid() {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
	pool := g.lib.Descriptors(kind)
	if len(pool) == 0 {
		return Descriptor{}, fmt.Errorf("%w %q", ErrNoContent, kind)
	}
	if matched := matching(pool, prompt); len(matched) > 0 {
		pool = matched
	}
	picked := pool[dice.Between(g.src, 0, len(pool)-1)].clone()
	if picked.Enemy != nil && level >= 1 {
		picked.Enemy.Level = level
	}
	g.logger.Debug("static content generated",
		zap.String("kind", string(kind)),
		zap.String("name", picked.Name()),
		zap.Int("level", level),
	)
	return picked, nil
}

func matching(pool []Descriptor, prompt string) []Descriptor {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(prompt)) {
		if len(w) >= 3 {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil
	}
	var out []Descriptor
	for _, d := range pool {
		text := strings.ToLower(d.Name() + " " + d.description())
		for _, w := range words {
			if strings.Contains(text, w) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}
