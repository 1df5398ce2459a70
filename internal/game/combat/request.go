package combat

import (
	"fmt"

	"github.com/emberfell/skirmish/internal/game/ruleset"
)

// ActionKind is the closed set of action variants. The zero value is
// KindHold so an empty Request is the harmless fallback.
type ActionKind int

const (
	KindHold ActionKind = iota
	KindAttack
	KindStunt
	KindUseItem
	KindWield
	KindFlee
)

// String returns the action keyword used in commands and battle reports.
func (k ActionKind) String() string {
	switch k {
	case KindHold:
		return "hold"
	case KindAttack:
		return "attack"
	case KindStunt:
		return "stunt"
	case KindUseItem:
		return "use"
	case KindWield:
		return "wield"
	case KindFlee:
		return "flee"
	default:
		return "unknown"
	}
}

// ParseActionKind resolves an action keyword back to its ActionKind.
//
// Postcondition: Returns (kind, true) for a recognized keyword, or
// (KindHold, false) otherwise.
func ParseActionKind(s string) (ActionKind, bool) {
	switch s {
	case "hold":
		return KindHold, true
	case "attack":
		return KindAttack, true
	case "stunt":
		return KindStunt, true
	case "use":
		return KindUseItem, true
	case "wield":
		return KindWield, true
	case "flee":
		return KindFlee, true
	default:
		return KindHold, false
	}
}

// Request is a single submitted intention for the next turn. It is
// immutable once queued: the session consumes it, never mutates it.
// Only the fields relevant to Kind are set; Validate enforces that the
// required ones are present before the request enters a queue.
type Request struct {
	Kind ActionKind
	// Target is the UID of the combatant the action is aimed at
	// (attack, stunt, use).
	Target string
	// Recipient is the UID of the combatant receiving a stunt's effect.
	Recipient string
	// Item is the item to use or wield. Resolved by the front end from the
	// actor's inventory before submission.
	Item Item
	// Advantage selects whether a stunt grants advantage (true) to the
	// recipient or disadvantage (false) to the target.
	Advantage bool
	// StuntAbility is the ability the actor performs the stunt with.
	StuntAbility ruleset.Ability
	// DefenseAbility is the ability the defender resists with.
	DefenseAbility ruleset.Ability
}

// HoldRequest is the fallback action used when a combatant's queue is empty
// and when an action forces the actor's next turn to hold.
func HoldRequest() Request { return Request{Kind: KindHold} }

// Validate checks the kind-specific required fields. Called at submission
// time; a request that passes Validate never fails field checks during
// resolution.
//
// Postcondition: Returns nil or an error wrapping ErrInvalidActionRequest.
func (r Request) Validate() error {
	switch r.Kind {
	case KindHold, KindFlee:
		return nil
	case KindAttack:
		if r.Target == "" {
			return fmt.Errorf("%w: attack requires a target", ErrInvalidActionRequest)
		}
		return nil
	case KindStunt:
		if r.Recipient == "" || r.Target == "" {
			return fmt.Errorf("%w: stunt requires recipient and target", ErrInvalidActionRequest)
		}
		if !r.StuntAbility.IsValid() {
			return fmt.Errorf("%w: stunt ability %q", ErrInvalidActionRequest, r.StuntAbility)
		}
		if !r.DefenseAbility.IsValid() {
			return fmt.Errorf("%w: defense ability %q", ErrInvalidActionRequest, r.DefenseAbility)
		}
		return nil
	case KindUseItem:
		if r.Item == nil {
			return fmt.Errorf("%w: use requires an item", ErrInvalidActionRequest)
		}
		return nil
	case KindWield:
		if r.Item == nil {
			return fmt.Errorf("%w: wield requires an item", ErrInvalidActionRequest)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidActionRequest, r.Kind)
	}
}
