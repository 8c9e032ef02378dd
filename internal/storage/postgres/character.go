package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arcanum/internal/game/character"
	"github.com/cory-johannsen/arcanum/internal/storage"
)

const characterColumns = `id, name, level, experience, xp_to_next_level, passive_slots,
	body, mind, reflex, current_hp, current_mp, current_ep, gold, essence,
	inventory, equipment, spells, abilities, consumables, bestiary, loot_chests,
	created_at, updated_at`

// CharacterRepository provides character persistence operations.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: pool must not be nil.
func NewCharacterRepository(pool *Pool) *CharacterRepository {
	if pool == nil {
		panic("postgres.NewCharacterRepository: pool must not be nil")
	}
	return &CharacterRepository{db: pool.DB()}
}

// Create inserts a new character and returns it with ID and timestamps set.
//
// Precondition: c.Name must be non-empty.
// Postcondition: Returns the created character or storage.ErrCharacterNameTaken.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	if c.Name == "" {
		return nil, errors.New("creating character: name must not be empty")
	}
	docs, err := storage.EncodeDocuments(c)
	if err != nil {
		return nil, fmt.Errorf("creating character: %w", err)
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO characters
			(name, level, experience, xp_to_next_level, passive_slots,
			 body, mind, reflex, current_hp, current_mp, current_ep, gold, essence,
			 inventory, equipment, spells, abilities, consumables, bestiary, loot_chests)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20)
		RETURNING `+characterColumns,
		c.Name, c.Level, c.Experience, c.XPToNextLevel, c.PassiveSlots,
		c.Attributes.Body, c.Attributes.Mind, c.Attributes.Reflex,
		c.CurrentHP, c.CurrentMP, c.CurrentEP, c.Gold, c.Essence,
		string(docs.Inventory), string(docs.Equipment), string(docs.Spells),
		string(docs.Abilities), string(docs.Consumables), string(docs.Bestiary),
		string(docs.LootChests),
	)
	out, err := scanCharacter(row)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, storage.ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("creating character: %w", err)
	}
	return out, nil
}

// GetByID retrieves a character by its primary key.
//
// Postcondition: Returns the character or storage.ErrCharacterNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*character.Character, error) {
	row := r.db.QueryRow(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = $1`, id)
	c, err := scanCharacter(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrCharacterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting character %d: %w", id, err)
	}
	return c, nil
}

// GetByName retrieves a character by its unique name.
//
// Postcondition: Returns the character or storage.ErrCharacterNotFound.
func (r *CharacterRepository) GetByName(ctx context.Context, name string) (*character.Character, error) {
	row := r.db.QueryRow(ctx, `SELECT `+characterColumns+` FROM characters WHERE name = $1`, name)
	c, err := scanCharacter(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrCharacterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting character %q: %w", name, err)
	}
	return c, nil
}

// List returns every character ordered by ID.
func (r *CharacterRepository) List(ctx context.Context) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx, `SELECT `+characterColumns+` FROM characters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	var chars []*character.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character: %w", err)
		}
		chars = append(chars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating characters: %w", err)
	}
	return chars, nil
}

// Save writes the mutable progress of c back to its row and refreshes
// c.UpdatedAt.
//
// Precondition: c.ID must be > 0.
// Postcondition: Returns storage.ErrCharacterNotFound if no row was updated.
func (r *CharacterRepository) Save(ctx context.Context, c *character.Character) error {
	if c.ID <= 0 {
		return fmt.Errorf("saving character: ID must be > 0, got %d", c.ID)
	}
	docs, err := storage.EncodeDocuments(c)
	if err != nil {
		return fmt.Errorf("saving character %d: %w", c.ID, err)
	}
	var updated time.Time
	err = r.db.QueryRow(ctx, `
		UPDATE characters SET
			level = $2, experience = $3, xp_to_next_level = $4, passive_slots = $5,
			body = $6, mind = $7, reflex = $8,
			current_hp = $9, current_mp = $10, current_ep = $11,
			gold = $12, essence = $13,
			inventory = $14, equipment = $15, spells = $16, abilities = $17,
			consumables = $18, bestiary = $19, loot_chests = $20,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.Level, c.Experience, c.XPToNextLevel, c.PassiveSlots,
		c.Attributes.Body, c.Attributes.Mind, c.Attributes.Reflex,
		c.CurrentHP, c.CurrentMP, c.CurrentEP, c.Gold, c.Essence,
		string(docs.Inventory), string(docs.Equipment), string(docs.Spells),
		string(docs.Abilities), string(docs.Consumables), string(docs.Bestiary),
		string(docs.LootChests),
	).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrCharacterNotFound
	}
	if err != nil {
		return fmt.Errorf("saving character %d: %w", c.ID, err)
	}
	c.UpdatedAt = updated
	return nil
}

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var c character.Character
	var docs storage.Documents
	err := row.Scan(
		&c.ID, &c.Name, &c.Level, &c.Experience, &c.XPToNextLevel, &c.PassiveSlots,
		&c.Attributes.Body, &c.Attributes.Mind, &c.Attributes.Reflex,
		&c.CurrentHP, &c.CurrentMP, &c.CurrentEP, &c.Gold, &c.Essence,
		&docs.Inventory, &docs.Equipment, &docs.Spells, &docs.Abilities,
		&docs.Consumables, &docs.Bestiary, &docs.LootChests,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := docs.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
