package combat

// Ledger tracks one-shot advantage and disadvantage grants between
// combatant pairs as two sparse relations keyed
// [recipient UID][target UID]. Reading an entry clears it: a grant is
// consumed by exactly one opposed check.
//
// The ledger is coupled to the fleeing set on purpose: a fleeing combatant
// is always attacked at advantage and always acts at disadvantage.
// Disengaging trades defense for escape.
//
// Ledger is not safe for concurrent use; the owning Session serializes
// access under its lock.
type Ledger struct {
	advantage    map[string]map[string]bool
	disadvantage map[string]map[string]bool
	// isFleeing reports whether the combatant with the given UID is
	// currently in the session's fleeing set.
	isFleeing func(uid string) bool
}

// NewLedger creates an empty ledger. isFleeing must not be nil; the session
// wires in its fleeing-set membership test.
func NewLedger(isFleeing func(uid string) bool) *Ledger {
	return &Ledger{
		advantage:    make(map[string]map[string]bool),
		disadvantage: make(map[string]map[string]bool),
		isFleeing:    isFleeing,
	}
}

// GrantAdvantage records that recipient has advantage on their next opposed
// check against target. Idempotent; grants do not stack.
func (l *Ledger) GrantAdvantage(recipient, target string) {
	grant(l.advantage, recipient, target)
}

// GrantDisadvantage records that recipient has disadvantage on their next
// opposed check against target. Idempotent; grants do not stack.
func (l *Ledger) GrantDisadvantage(recipient, target string) {
	grant(l.disadvantage, recipient, target)
}

// ConsumeAdvantage reads and clears the advantage entry for
// (recipient, target). Returns true unconditionally when target is fleeing,
// whether or not an entry existed.
//
// Postcondition: the (recipient, target) advantage entry is absent.
func (l *Ledger) ConsumeAdvantage(recipient, target string) bool {
	granted := consume(l.advantage, recipient, target)
	return granted || l.isFleeing(target)
}

// ConsumeDisadvantage reads and clears the disadvantage entry for
// (recipient, target). Returns true unconditionally when recipient is
// fleeing, whether or not an entry existed.
//
// Postcondition: the (recipient, target) disadvantage entry is absent.
func (l *Ledger) ConsumeDisadvantage(recipient, target string) bool {
	granted := consume(l.disadvantage, recipient, target)
	return granted || l.isFleeing(recipient)
}

// RevokeAdvantage clears the advantage entry without consuming it. Used
// when a later action invalidates a previously granted effect.
func (l *Ledger) RevokeAdvantage(recipient, target string) {
	consume(l.advantage, recipient, target)
}

// RevokeDisadvantage clears the disadvantage entry without consuming it.
func (l *Ledger) RevokeDisadvantage(recipient, target string) {
	consume(l.disadvantage, recipient, target)
}

// Drop removes every relation entry involving uid, as recipient or target.
// Called when a combatant leaves the battle for any reason.
func (l *Ledger) Drop(uid string) {
	for _, rel := range []map[string]map[string]bool{l.advantage, l.disadvantage} {
		delete(rel, uid)
		for recipient, targets := range rel {
			delete(targets, uid)
			if len(targets) == 0 {
				delete(rel, recipient)
			}
		}
	}
}

// grants returns copies of both relations, advantage first. Used for
// snapshots.
func (l *Ledger) grants() (adv, disadv map[string][]string) {
	return relationPairs(l.advantage), relationPairs(l.disadvantage)
}

func relationPairs(rel map[string]map[string]bool) map[string][]string {
	out := make(map[string][]string, len(rel))
	for recipient, targets := range rel {
		for target, set := range targets {
			if set {
				out[recipient] = append(out[recipient], target)
			}
		}
	}
	return out
}

func grant(rel map[string]map[string]bool, recipient, target string) {
	targets, ok := rel[recipient]
	if !ok {
		targets = make(map[string]bool)
		rel[recipient] = targets
	}
	targets[target] = true
}

// consume reads and clears the (recipient, target) entry in one step.
func consume(rel map[string]map[string]bool, recipient, target string) bool {
	targets, ok := rel[recipient]
	if !ok {
		return false
	}
	granted := targets[target]
	delete(targets, target)
	if len(targets) == 0 {
		delete(rel, recipient)
	}
	return granted
}
