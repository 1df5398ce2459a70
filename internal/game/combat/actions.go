package combat

import (
	"fmt"

	"go.uber.org/zap"
)

// action is one executable combat-action variant. Variants are built from a
// validated Request by an exhaustive switch in runAction; no unknown kind
// can reach execution.
//
// The protocol is: canUse gates execute; postExecute runs unconditionally
// afterwards. The default postExecute clears the actor from the fleeing
// set, because any action other than a renewed flee cancels disengagement
// in progress. Flee overrides it to keep its entry.
type action interface {
	canUse() bool
	// execute applies the variant's effect. An error aborts only this
	// combatant's action for the turn (effective Hold); it never aborts
	// the resolution pass.
	execute() error
	postExecute()
}

// runAction resolves one combatant's queued request. Caller holds s.mu.
// Failures inside a single action are isolated: logged at Warn and the
// actor effectively holds.
func (s *Session) runAction(actor Combatant, req Request) {
	var act action
	base := baseAction{s: s, actor: actor}
	switch req.Kind {
	case KindHold:
		act = holdAction{base}
	case KindAttack:
		act = attackAction{baseAction: base, req: req}
	case KindStunt:
		act = stuntAction{baseAction: base, req: req}
	case KindUseItem:
		act = useItemAction{baseAction: base, req: req}
	case KindWield:
		act = wieldAction{baseAction: base, req: req}
	case KindFlee:
		act = fleeAction{base}
	default:
		// Unreachable for requests that passed Validate.
		act = holdAction{base}
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("action panicked",
				zap.String("arena", s.arena.ID()),
				zap.String("combatant", actor.UID()),
				zap.String("kind", req.Kind.String()),
				zap.Any("panic", r),
			)
		}
	}()
	defer act.postExecute()

	if !act.canUse() {
		return
	}
	if err := act.execute(); err != nil {
		s.logger.Warn("action failed",
			zap.String("arena", s.arena.ID()),
			zap.String("combatant", actor.UID()),
			zap.String("kind", req.Kind.String()),
			zap.Error(err),
		)
	}
}

type baseAction struct {
	s     *Session
	actor Combatant
}

func (a baseAction) canUse() bool { return true }

// postExecute cancels any disengagement in progress.
func (a baseAction) postExecute() {
	delete(a.s.fleeing, a.actor.UID())
}

// lookup resolves a combatant UID against the live registry. Empty UIDs
// and combatants removed earlier in the pass yield nil.
func (a baseAction) lookup(uid string) Combatant {
	if uid == "" {
		return nil
	}
	return a.s.byUID[uid]
}

// holdAction does nothing: the explicit fallback.
type holdAction struct{ baseAction }

func (holdAction) execute() error { return nil }

// attackAction strikes the target with the wielded means. Offense is
// delegated to the item contract; the engine only supplies the consumed
// advantage state.
type attackAction struct {
	baseAction
	req Request
}

func (a attackAction) execute() error {
	target := a.lookup(a.req.Target)
	if target == nil || target.HP() <= 0 {
		a.s.notifier.Broadcast(fmt.Sprintf("%s attacks, but the target is already down.", a.actor.Name()), a.actor, false)
		return nil
	}
	weapon := a.actor.Wielded()
	if weapon == nil {
		a.s.notifier.Broadcast(fmt.Sprintf("%s flails around with nothing to attack with!", a.actor.Name()), a.actor, false)
		return nil
	}
	if !weapon.AtPreUse(a.actor, target) {
		return nil
	}
	advantage := a.s.ledger.ConsumeAdvantage(a.actor.UID(), target.UID())
	narration, err := weapon.Use(a.actor, target, advantage, false)
	if err != nil {
		return fmt.Errorf("attacking with %s: %w", weapon.Name(), err)
	}
	if narration != "" {
		a.s.notifier.Broadcast(narration, a.actor, false)
	}
	weapon.AtPostUse(a.actor, target)
	return nil
}

// stuntAction attempts to grant advantage or impose disadvantage via an
// opposed check. Whoever stands to lose from the grant gets to resist:
// when recipient and target are the same entity, that entity defends;
// otherwise the target defends an advantage grant and the recipient
// defends a disadvantage grant.
type stuntAction struct {
	baseAction
	req Request
}

func (a stuntAction) execute() error {
	recipient := a.lookup(a.req.Recipient)
	target := a.lookup(a.req.Target)
	if recipient == nil || target == nil {
		a.s.notifier.Broadcast(fmt.Sprintf("%s sets up a maneuver, but the moment has passed.", a.actor.Name()), a.actor, false)
		return nil
	}

	defender := target
	if recipient.UID() != target.UID() && !a.req.Advantage {
		defender = recipient
	}

	success := true
	if defender.UID() != a.actor.UID() {
		if a.s.oracle == nil {
			return fmt.Errorf("stunt by %s: no oracle configured", a.actor.UID())
		}
		advantage := a.s.ledger.ConsumeAdvantage(a.actor.UID(), defender.UID())
		disadvantage := a.s.ledger.ConsumeDisadvantage(a.actor.UID(), defender.UID())
		var narration string
		success, _, narration = a.s.oracle.OpposedCheck(
			a.actor.Name(), defender.Name(),
			a.actor.Abilities().Bonus(a.req.StuntAbility),
			defender.Abilities().Bonus(a.req.DefenseAbility),
			advantage, disadvantage,
		)
		a.s.notifier.Broadcast(fmt.Sprintf("%s attempts a stunt on %s. %s", a.actor.Name(), defender.Name(), narration), a.actor, false)
	}

	if !success {
		a.s.notifier.Broadcast(fmt.Sprintf("%s resists! %s fails the stunt.", defender.Name(), a.actor.Name()), a.actor, false)
		return nil
	}

	kind := "disadvantage"
	if a.req.Advantage {
		a.s.ledger.GrantAdvantage(recipient.UID(), target.UID())
		kind = "advantage"
	} else {
		a.s.ledger.GrantDisadvantage(recipient.UID(), target.UID())
	}
	if recipient.UID() == a.actor.UID() {
		a.s.notifier.Broadcast(fmt.Sprintf("%s gains %s against %s!", a.actor.Name(), kind, target.Name()), a.actor, false)
	} else {
		a.s.notifier.Broadcast(fmt.Sprintf("%s causes %s to gain %s against %s!", a.actor.Name(), recipient.Name(), kind, target.Name()), a.actor, false)
	}

	// A stunt consumes the rest of the turn.
	a.s.notifier.Broadcast("Having succeeded, you hold back to plan your next move.", a.actor, true)
	a.s.forceHoldLocked(a.actor)
	return nil
}

// useItemAction consumes a one-off item (potion, bomb) on a target, or on
// the actor when no target was named.
type useItemAction struct {
	baseAction
	req Request
}

func (a useItemAction) execute() error {
	target := a.lookup(a.req.Target)
	if target == nil {
		target = a.actor
	}
	item := a.req.Item
	if item.AtPreUse(a.actor, target) {
		advantage := a.s.ledger.ConsumeAdvantage(a.actor.UID(), target.UID())
		disadvantage := a.s.ledger.ConsumeDisadvantage(a.actor.UID(), target.UID())
		narration, err := item.Use(a.actor, target, advantage, disadvantage)
		if err != nil {
			return fmt.Errorf("using %s: %w", item.Name(), err)
		}
		if narration != "" {
			a.s.notifier.Broadcast(narration, a.actor, false)
		}
		item.AtPostUse(a.actor, target)
	}
	a.s.forceHoldLocked(a.actor)
	return nil
}

// wieldAction swaps the equipped means for the requested item.
type wieldAction struct {
	baseAction
	req Request
}

func (a wieldAction) execute() error {
	a.actor.SetWielded(a.req.Item)
	a.s.notifier.Broadcast(fmt.Sprintf("%s wields %s.", a.actor.Name(), a.req.Item.Name()), a.actor, false)
	a.s.forceHoldLocked(a.actor)
	return nil
}

// fleeAction starts or continues disengagement. It must be chosen every
// turn: the default postExecute of every other action resets progress.
type fleeAction struct{ baseAction }

func (a fleeAction) execute() error {
	uid := a.actor.UID()
	if _, ok := a.s.fleeing[uid]; !ok {
		a.s.fleeing[uid] = a.s.turn
	}
	timeLeft := a.s.fleeTimeout - (a.s.turn - a.s.fleeing[uid])
	if timeLeft > 0 {
		plural := "turns"
		if timeLeft == 1 {
			plural = "turn"
		}
		a.s.notifier.Broadcast(fmt.Sprintf("%s retreats, exposed to attack while doing so (will escape in %d %s).", a.actor.Name(), timeLeft, plural), a.actor, false)
	}
	return nil
}

// postExecute keeps the fleeing entry: only a non-flee action cancels it.
func (a fleeAction) postExecute() {}
