// Package combat implements the simultaneous-resolution battle engine for
// Emberfell. Every combatant queues one action during an open decision
// window; when the window closes (timer expiry or everyone having committed)
// the session resolves all queued actions in a single randomized-order pass.
//
// Resolution is simultaneous in intent but sequential with a random
// permutation in implementation: a later-ordered combatant observes the
// results of earlier ones in the same turn. This is a deliberate
// approximation and part of the expected combat pacing; do not replace it
// with true parallel resolution.
package combat

import (
	"errors"

	"github.com/emberfell/skirmish/internal/game/ruleset"
)

// Sentinel errors for session operations.
var (
	// ErrUnknownCombatant is returned when an operation references a
	// combatant that is not registered in the session.
	ErrUnknownCombatant = errors.New("combat: unknown combatant")
	// ErrInvalidActionRequest is returned when a request is malformed or
	// missing required fields for its kind. Rejected at submission, never
	// during resolution.
	ErrInvalidActionRequest = errors.New("combat: invalid action request")
	// ErrNoArena is returned when a session is requested without an arena.
	ErrNoArena = errors.New("combat: no arena")
	// ErrCombatNotAllowed is returned when the arena forbids combat.
	ErrCombatNotAllowed = errors.New("combat: combat not allowed here")
	// ErrSessionOver is returned when submitting to a stopped session.
	ErrSessionOver = errors.New("combat: session is over")
)

// Combatant is one participant in a battle. The engine never creates or
// destroys combatants; it only references entities owned elsewhere
// (character.Character, npc.Instance).
//
// Invariant: a combatant registered in a session has HP() > 0 until the
// defeat sweep of the turn that removes it.
type Combatant interface {
	// UID uniquely identifies the combatant across the whole server.
	UID() string
	// Name is the display name used in narration.
	Name() string
	HP() int
	SetHP(hp int)
	MaxHP() int
	// IsPlayer is the side classifier: players versus everything else.
	IsPlayer() bool
	// Abilities returns the combatant's ability bonuses for opposed checks.
	Abilities() ruleset.Abilities
	// Wielded returns the equipped offensive means, or nil if unarmed.
	Wielded() Item
	SetWielded(item Item)
	// OnDefeat is invoked exactly once when the combatant drops to 0 HP or
	// below, before removal from the session. Player characters may roll a
	// death save here and be restored to positive HP; they are removed from
	// the battle either way.
	OnDefeat()
}

// Item is the contract for anything a combatant can attack with or use:
// wielded weapons, spell foci, and consumables alike.
type Item interface {
	// ID is the content-registry identifier, used for snapshots.
	ID() string
	Name() string
	// AtPreUse reports whether the item accepts being used right now.
	AtPreUse(user, target Combatant) bool
	// Use applies the item's effect and returns narration for broadcast.
	// Advantage and disadvantage reflect the user's ledger state against
	// target at the moment of use.
	Use(user, target Combatant, advantage, disadvantage bool) (string, error)
	// AtPostUse runs after a successful Use (ammo, charges, removal).
	AtPostUse(user, target Combatant)
}

// Oracle resolves opposed ability checks. Implemented by dice.OpposedRoller.
type Oracle interface {
	// OpposedCheck rolls actor (with actorBonus) against defender (with
	// defenderBonus). Advantage and disadvantage apply to the actor's roll
	// and cancel each other out. Margin is actor total minus defender
	// total; narration describes the rolls for broadcast.
	OpposedCheck(actorName, defenderName string, actorBonus, defenderBonus int, advantage, disadvantage bool) (success bool, margin int, narration string)
}

// Notifier delivers combat narration to observers. The engine only composes
// templated messages with a focal combatant; rendering is a front-end
// concern.
type Notifier interface {
	// Broadcast sends message to everyone watching the battle. When
	// focalOnly is true only the focal combatant sees it. Focal may be nil
	// for messages with no subject.
	Broadcast(message string, focal Combatant, focalOnly bool)
}

// Arena is the battle-location contract.
type Arena interface {
	ID() string
	CombatAllowed() bool
	// FreeForAll disables the player/non-player partition: every other
	// combatant is an enemy.
	FreeForAll() bool
}

// Source is the randomness provider used for turn-order shuffling. A local
// mirror of dice.Source, keeping this package free of a dice dependency.
type Source interface {
	// Intn returns a random int in [0, n). Precondition: n > 0.
	Intn(n int) int
}
