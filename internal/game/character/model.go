// Package character defines the player-character domain model.
package character

import (
	"time"

	"github.com/emberfell/skirmish/internal/game/combat"
	"github.com/emberfell/skirmish/internal/game/ruleset"
)

// Character represents a player character's persistent state plus its live
// battle state. It implements the combatant contract used by the combat
// engine.
//
// ID and AccountID are set by the persistence layer; zero values indicate
// an unsaved character.
type Character struct {
	ID        int64
	AccountID int64

	CharUID string // server-wide unique identifier
	CharName string

	Location string // current arena ID

	Bonuses   ruleset.Abilities
	HPMax     int
	HPCurrent int

	wielded combat.Item
	carried []combat.Item

	// DefeatHook, when set, runs when the character drops in battle.
	// The game server wires the death-save roll here.
	DefeatHook func(c *Character)

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Character) UID() string                  { return c.CharUID }
func (c *Character) Name() string                 { return c.CharName }
func (c *Character) HP() int                      { return c.HPCurrent }
func (c *Character) SetHP(hp int)                 { c.HPCurrent = hp }
func (c *Character) MaxHP() int                   { return c.HPMax }
func (c *Character) IsPlayer() bool               { return true }
func (c *Character) Abilities() ruleset.Abilities { return c.Bonuses }

// Wielded returns the equipped item, or nil when unarmed.
func (c *Character) Wielded() combat.Item { return c.wielded }

// SetWielded equips item. The previously wielded item goes back into the
// carried list.
func (c *Character) SetWielded(item combat.Item) {
	if c.wielded != nil {
		c.carried = append(c.carried, c.wielded)
	}
	c.wielded = item
	c.removeCarried(item)
}

// OnDefeat runs the configured defeat hook.
func (c *Character) OnDefeat() {
	if c.DefeatHook != nil {
		c.DefeatHook(c)
	}
}

// Carry adds item to the character's carried items.
func (c *Character) Carry(item combat.Item) {
	c.carried = append(c.carried, item)
}

// Carried returns the carried items in acquisition order, excluding the
// wielded one.
func (c *Character) Carried() []combat.Item {
	cp := make([]combat.Item, len(c.carried))
	copy(cp, c.carried)
	return cp
}

// FindItem returns the first carried or wielded item whose ID or name
// matches name, or nil.
func (c *Character) FindItem(name string) combat.Item {
	if c.wielded != nil && matches(c.wielded, name) {
		return c.wielded
	}
	for _, item := range c.carried {
		if matches(item, name) {
			return item
		}
	}
	return nil
}

// RemoveItem discards item from the character entirely.
func (c *Character) RemoveItem(item combat.Item) {
	if c.wielded == item {
		c.wielded = nil
		return
	}
	c.removeCarried(item)
}

func (c *Character) removeCarried(item combat.Item) {
	for i, carried := range c.carried {
		if carried == item {
			c.carried = append(c.carried[:i], c.carried[i+1:]...)
			return
		}
	}
}

func matches(item combat.Item, name string) bool {
	return item.ID() == name || item.Name() == name
}
