package character

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emberfell/skirmish/internal/game/ruleset"
)

// New creates an unsaved character with a fresh UID and full health.
//
// Precondition: name must be non-empty; bonuses must pass Validate;
// maxHP > 0.
// Postcondition: the character is ready for battle but has no ID until
// persisted.
func New(name string, bonuses ruleset.Abilities, maxHP int) (*Character, error) {
	if name == "" {
		return nil, fmt.Errorf("character: name must not be empty")
	}
	if err := bonuses.Validate(); err != nil {
		return nil, fmt.Errorf("character: %w", err)
	}
	if maxHP <= 0 {
		return nil, fmt.Errorf("character: max HP must be > 0, got %d", maxHP)
	}
	now := time.Now().UTC()
	return &Character{
		CharUID:   uuid.NewString(),
		CharName:  name,
		Bonuses:   bonuses,
		HPMax:     maxHP,
		HPCurrent: maxHP,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
