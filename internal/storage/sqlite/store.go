// Package sqlite provides an embedded SQLite character store for single-player
// hosts and the simulator.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/cory-johannsen/arcanum/internal/game/character"
	"github.com/cory-johannsen/arcanum/internal/storage"
)

//go:embed schema.sql
var schema string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const characterColumns = `id, name, level, experience, xp_to_next_level, passive_slots,
	body, mind, reflex, current_hp, current_mp, current_ep, gold, essence,
	inventory, equipment, spells, abilities, consumables, bestiary, loot_chests,
	created_at, updated_at`

// CharacterStore persists characters in SQLite.
type CharacterStore struct {
	db  *sql.DB
	now func() time.Time
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens the database at path, creating the schema if needed.
//
// Precondition: path must be non-empty; MemoryPath selects an in-memory database.
// Postcondition: Returns a ready store or a non-nil error.
func Open(path string) (*CharacterStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite: storage path is required")
	}
	dsn := MemoryPath
	if path != MemoryPath {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &CharacterStore{db: db, now: time.Now}, nil
}

// Close closes the database handle.
func (s *CharacterStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts a new character and returns it with ID and timestamps set.
//
// Postcondition: Returns the created character or storage.ErrCharacterNameTaken.
func (s *CharacterStore) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	if c.Name == "" {
		return nil, errors.New("create character: name must not be empty")
	}
	docs, err := storage.EncodeDocuments(c)
	if err != nil {
		return nil, fmt.Errorf("create character: %w", err)
	}
	now := toMillis(s.now())
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO characters
			(name, level, experience, xp_to_next_level, passive_slots,
			 body, mind, reflex, current_hp, current_mp, current_ep, gold, essence,
			 inventory, equipment, spells, abilities, consumables, bestiary, loot_chests,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Level, c.Experience, c.XPToNextLevel, c.PassiveSlots,
		c.Attributes.Body, c.Attributes.Mind, c.Attributes.Reflex,
		c.CurrentHP, c.CurrentMP, c.CurrentEP, c.Gold, c.Essence,
		string(docs.Inventory), string(docs.Equipment), string(docs.Spells),
		string(docs.Abilities), string(docs.Consumables), string(docs.Bestiary),
		string(docs.LootChests), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("create character: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create character: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID returns the character with the given ID or storage.ErrCharacterNotFound.
func (s *CharacterStore) GetByID(ctx context.Context, id int64) (*character.Character, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = ?`, id)
	c, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrCharacterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get character %d: %w", id, err)
	}
	return c, nil
}

// GetByName returns the character with the given name or storage.ErrCharacterNotFound.
func (s *CharacterStore) GetByName(ctx context.Context, name string) (*character.Character, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE name = ?`, name)
	c, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrCharacterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get character %q: %w", name, err)
	}
	return c, nil
}

// List returns every character ordered by ID.
func (s *CharacterStore) List(ctx context.Context) ([]*character.Character, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+characterColumns+` FROM characters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var out []*character.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate characters: %w", err)
	}
	return out, nil
}

// Save writes the mutable progress of c back to its row.
//
// Precondition: c.ID must be > 0.
// Postcondition: Returns storage.ErrCharacterNotFound if no row was updated.
func (s *CharacterStore) Save(ctx context.Context, c *character.Character) error {
	if c.ID <= 0 {
		return fmt.Errorf("save character: ID must be > 0, got %d", c.ID)
	}
	docs, err := storage.EncodeDocuments(c)
	if err != nil {
		return fmt.Errorf("save character %d: %w", c.ID, err)
	}
	updated := s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE characters SET
			level = ?, experience = ?, xp_to_next_level = ?, passive_slots = ?,
			body = ?, mind = ?, reflex = ?,
			current_hp = ?, current_mp = ?, current_ep = ?,
			gold = ?, essence = ?,
			inventory = ?, equipment = ?, spells = ?, abilities = ?,
			consumables = ?, bestiary = ?, loot_chests = ?,
			updated_at = ?
		WHERE id = ?`,
		c.Level, c.Experience, c.XPToNextLevel, c.PassiveSlots,
		c.Attributes.Body, c.Attributes.Mind, c.Attributes.Reflex,
		c.CurrentHP, c.CurrentMP, c.CurrentEP, c.Gold, c.Essence,
		string(docs.Inventory), string(docs.Equipment), string(docs.Spells),
		string(docs.Abilities), string(docs.Consumables), string(docs.Bestiary),
		string(docs.LootChests), toMillis(updated), c.ID,
	)
	if err != nil {
		return fmt.Errorf("save character %d: %w", c.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save character %d: %w", c.ID, err)
	}
	if n == 0 {
		return storage.ErrCharacterNotFound
	}
	c.UpdatedAt = fromMillis(toMillis(updated))
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row scanner) (*character.Character, error) {
	var c character.Character
	var inventory, equipment, spells, abilities, consumables, bestiary, chests string
	var created, updated int64
	err := row.Scan(
		&c.ID, &c.Name, &c.Level, &c.Experience, &c.XPToNextLevel, &c.PassiveSlots,
		&c.Attributes.Body, &c.Attributes.Mind, &c.Attributes.Reflex,
		&c.CurrentHP, &c.CurrentMP, &c.CurrentEP, &c.Gold, &c.Essence,
		&inventory, &equipment, &spells, &abilities, &consumables, &bestiary, &chests,
		&created, &updated,
	)
	if err != nil {
		return nil, err
	}
	docs := storage.Documents{
		Inventory:   []byte(inventory),
		Equipment:   []byte(equipment),
		Spells:      []byte(spells),
		Abilities:   []byte(abilities),
		Consumables: []byte(consumables),
		Bestiary:    []byte(bestiary),
		LootChests:  []byte(chests),
	}
	if err := docs.Decode(&c); err != nil {
		return nil, err
	}
	c.CreatedAt = fromMillis(created)
	c.UpdatedAt = fromMillis(updated)
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
