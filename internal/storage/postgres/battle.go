package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberfell/skirmish/internal/game/combat"
)

// ErrBattleNotFound is returned when no snapshot exists for an arena.
var ErrBattleNotFound = errors.New("battle snapshot not found")

// BattleRepository persists combat session snapshots, one per arena.
// The game server saves a snapshot after every resolved turn and deletes
// it when the session ends cleanly, so a surviving row means a crash.
type BattleRepository struct {
	pool *pgxpool.Pool
}

// NewBattleRepository creates a battle repository backed by the given pool.
//
// Precondition: pool must be a connected pgx pool.
func NewBattleRepository(pool *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{pool: pool}
}

// Save upserts the snapshot for its arena. Repeated saves for the same
// arena overwrite the previous snapshot.
//
// Precondition: snap.ArenaID must be non-empty.
// Postcondition: A subsequent Load for the same arena returns snap.
func (r *BattleRepository) Save(ctx context.Context, snap combat.Snapshot) error {
	if snap.ArenaID == "" {
		return fmt.Errorf("saving battle snapshot: arena id is empty")
	}

	state, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding battle snapshot: %w", err)
	}

	query := `
		INSERT INTO battle_snapshots (id, arena_id, turn, state, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (arena_id) DO UPDATE
		SET turn = EXCLUDED.turn, state = EXCLUDED.state, updated_at = NOW()
	`
	_, err = r.pool.Exec(ctx, query, uuid.NewString(), snap.ArenaID, snap.Turn, state)
	if err != nil {
		return fmt.Errorf("saving battle snapshot: %w", err)
	}
	return nil
}

// Load retrieves the snapshot for an arena.
//
// Postcondition: Returns the snapshot, or ErrBattleNotFound when no row
// exists for the arena.
func (r *BattleRepository) Load(ctx context.Context, arenaID string) (combat.Snapshot, error) {
	query := `SELECT state FROM battle_snapshots WHERE arena_id = $1`

	var state []byte
	err := r.pool.QueryRow(ctx, query, arenaID).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return combat.Snapshot{}, ErrBattleNotFound
		}
		return combat.Snapshot{}, fmt.Errorf("loading battle snapshot: %w", err)
	}

	var snap combat.Snapshot
	if err := json.Unmarshal(state, &snap); err != nil {
		return combat.Snapshot{}, fmt.Errorf("decoding battle snapshot: %w", err)
	}
	return snap, nil
}

// Delete removes the snapshot for an arena. Deleting a missing snapshot
// is not an error.
//
// Postcondition: No snapshot exists for the arena.
func (r *BattleRepository) Delete(ctx context.Context, arenaID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM battle_snapshots WHERE arena_id = $1`, arenaID)
	if err != nil {
		return fmt.Errorf("deleting battle snapshot: %w", err)
	}
	return nil
}

// List returns the arena IDs that have a saved snapshot, ordered by arena.
// The game server uses this at startup to find sessions to restore.
func (r *BattleRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT arena_id FROM battle_snapshots ORDER BY arena_id`)
	if err != nil {
		return nil, fmt.Errorf("listing battle snapshots: %w", err)
	}
	defer rows.Close()

	var arenas []string
	for rows.Next() {
		var arenaID string
		if err := rows.Scan(&arenaID); err != nil {
			return nil, fmt.Errorf("scanning battle snapshot row: %w", err)
		}
		arenas = append(arenas, arenaID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battle snapshot rows: %w", err)
	}
	return arenas, nil
}
