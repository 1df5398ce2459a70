package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberfell/skirmish/internal/game/character"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// ErrCharacterNameTaken is returned when creating a character with a name that
// already exists.
var ErrCharacterNameTaken = errors.New("character name already taken")

// CharacterRepository provides character persistence operations.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Create inserts a new character and returns it with ID and timestamps set.
//
// Precondition: c.CharUID and c.CharName must be non-empty.
// Postcondition: Returns the created character with ID set, or
// ErrCharacterNameTaken on a duplicate uid or name.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	var out character.Character
	err := r.db.QueryRow(ctx, `
		INSERT INTO characters
			(account_id, uid, name, location,
			 str, dex, con, intl, wis, cha,
			 max_hp, current_hp)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, account_id, uid, name, location,
		          str, dex, con, intl, wis, cha,
		          max_hp, current_hp, created_at, updated_at`,
		c.AccountID, c.CharUID, c.CharName, c.Location,
		c.Bonuses.Strength, c.Bonuses.Dexterity, c.Bonuses.Constitution,
		c.Bonuses.Intelligence, c.Bonuses.Wisdom, c.Bonuses.Charisma,
		c.HPMax, c.HPCurrent,
	).Scan(
		&out.ID, &out.AccountID, &out.CharUID, &out.CharName, &out.Location,
		&out.Bonuses.Strength, &out.Bonuses.Dexterity, &out.Bonuses.Constitution,
		&out.Bonuses.Intelligence, &out.Bonuses.Wisdom, &out.Bonuses.Charisma,
		&out.HPMax, &out.HPCurrent, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return &out, nil
}

// GetByUID retrieves a character by its stable identity string.
//
// Precondition: uid must be non-empty.
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByUID(ctx context.Context, uid string) (*character.Character, error) {
	return r.getWhere(ctx, "uid = $1", uid)
}

// GetByName retrieves a character by its display name. Names are unique,
// matched case-insensitively.
//
// Precondition: name must be non-empty.
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByName(ctx context.Context, name string) (*character.Character, error) {
	return r.getWhere(ctx, "LOWER(name) = LOWER($1)", name)
}

func (r *CharacterRepository) getWhere(ctx context.Context, where string, arg any) (*character.Character, error) {
	var c character.Character
	err := r.db.QueryRow(ctx, `
		SELECT id, account_id, uid, name, location,
		       str, dex, con, intl, wis, cha,
		       max_hp, current_hp, created_at, updated_at
		FROM characters WHERE `+where,
		arg,
	).Scan(
		&c.ID, &c.AccountID, &c.CharUID, &c.CharName, &c.Location,
		&c.Bonuses.Strength, &c.Bonuses.Dexterity, &c.Bonuses.Constitution,
		&c.Bonuses.Intelligence, &c.Bonuses.Wisdom, &c.Bonuses.Charisma,
		&c.HPMax, &c.HPCurrent, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return &c, nil
}

// SaveState persists a character's location and hit points after a session.
//
// Precondition: uid must identify an existing character.
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row updated.
func (r *CharacterRepository) SaveState(ctx context.Context, uid string, location string, currentHP int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE characters SET location = $2, current_hp = $3, updated_at = NOW()
		WHERE uid = $1`,
		uid, location, currentHP,
	)
	if err != nil {
		return fmt.Errorf("saving character state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
