package combat

import (
	"go.uber.org/zap"

	"github.com/emberfell/skirmish/internal/game/ruleset"
)

// Snapshot is the persistable shape of a session: integers, identities and
// booleans only, no derived state. The storage layer serializes it; the
// game server saves one after every resolution for crash hand-off.
type Snapshot struct {
	ArenaID string `json:"arena_id"`
	Turn    int    `json:"turn"`
	// Queues maps combatant UID to pending requests, front first.
	Queues map[string][]RequestSnapshot `json:"queues"`
	// Advantage and Disadvantage map recipient UID to target UIDs with an
	// unconsumed grant.
	Advantage    map[string][]string `json:"advantage,omitempty"`
	Disadvantage map[string][]string `json:"disadvantage,omitempty"`
	// Fleeing maps combatant UID to the turn flight began.
	Fleeing map[string]int `json:"fleeing,omitempty"`
	// Defeated lists removed combatants with the health recorded at
	// snapshot time, preserving the knocked-out/killed distinction.
	Defeated []DefeatedSnapshot `json:"defeated,omitempty"`
}

// RequestSnapshot is a Request flattened to identities.
type RequestSnapshot struct {
	Kind           string `json:"kind"`
	Target         string `json:"target,omitempty"`
	Recipient      string `json:"recipient,omitempty"`
	ItemID         string `json:"item_id,omitempty"`
	Advantage      bool   `json:"advantage,omitempty"`
	StuntAbility   string `json:"stunt_ability,omitempty"`
	DefenseAbility string `json:"defense_ability,omitempty"`
}

// DefeatedSnapshot records one defeated combatant.
type DefeatedSnapshot struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
	HP   int    `json:"hp"`
}

// Snapshot captures the session state under the session lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ArenaID: s.arena.ID(),
		Turn:    s.turn,
		Queues:  make(map[string][]RequestSnapshot, len(s.queues)),
		Fleeing: make(map[string]int, len(s.fleeing)),
	}
	for uid, q := range s.queues {
		entries := q.Entries()
		reqs := make([]RequestSnapshot, 0, len(entries))
		for _, r := range entries {
			reqs = append(reqs, snapshotRequest(r))
		}
		snap.Queues[uid] = reqs
	}
	snap.Advantage, snap.Disadvantage = s.ledger.grants()
	for uid, started := range s.fleeing {
		snap.Fleeing[uid] = started
	}
	for _, c := range s.defeated {
		snap.Defeated = append(snap.Defeated, DefeatedSnapshot{UID: c.UID(), Name: c.Name(), HP: c.HP()})
	}
	return snap
}

func snapshotRequest(r Request) RequestSnapshot {
	rs := RequestSnapshot{
		Kind:           r.Kind.String(),
		Target:         r.Target,
		Recipient:      r.Recipient,
		Advantage:      r.Advantage,
		StuntAbility:   string(r.StuntAbility),
		DefenseAbility: string(r.DefenseAbility),
	}
	if r.Item != nil {
		rs.ItemID = r.Item.ID()
	}
	return rs
}

// Resolver maps persisted identities back to live entities when restoring
// a snapshot.
type Resolver interface {
	// ResolveCombatant returns the live combatant for uid, or nil when it
	// no longer exists.
	ResolveCombatant(uid string) Combatant
	// ResolveItem returns the live item for id, or nil.
	ResolveItem(id string) Item
}

// ApplySnapshot rebuilds queues, ledger and fleeing state from snap.
// Combatants named in the snapshot are re-registered through the resolver;
// references that no longer resolve are dropped with a warning rather than
// failing the whole restore.
//
// Precondition: the session must not have started yet.
func (s *Session) ApplySnapshot(snap Snapshot, resolver Resolver) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turn = snap.Turn

	for uid, reqs := range snap.Queues {
		c := resolver.ResolveCombatant(uid)
		if c == nil {
			s.logger.Warn("snapshot combatant no longer exists",
				zap.String("arena", snap.ArenaID),
				zap.String("uid", uid),
			)
			continue
		}
		if _, ok := s.byUID[uid]; !ok {
			s.byUID[uid] = c
			s.order = append(s.order, c)
			s.queues[uid] = NewQueue(s.queueCap)
		}
		for _, rs := range reqs {
			r, ok := restoreRequest(rs, resolver)
			if !ok {
				s.logger.Warn("snapshot request dropped",
					zap.String("arena", snap.ArenaID),
					zap.String("uid", uid),
					zap.String("kind", rs.Kind),
				)
				continue
			}
			s.queues[uid].Push(r)
		}
	}

	restoreGrants := func(entries map[string][]string, grant func(recipient, target string)) {
		for recipient, targets := range entries {
			for _, target := range targets {
				if _, ok := s.byUID[recipient]; !ok {
					continue
				}
				if _, ok := s.byUID[target]; !ok {
					continue
				}
				grant(recipient, target)
			}
		}
	}
	restoreGrants(snap.Advantage, s.ledger.GrantAdvantage)
	restoreGrants(snap.Disadvantage, s.ledger.GrantDisadvantage)

	for uid, started := range snap.Fleeing {
		if _, ok := s.byUID[uid]; ok {
			s.fleeing[uid] = started
		}
	}
}

func restoreRequest(rs RequestSnapshot, resolver Resolver) (Request, bool) {
	kind, ok := ParseActionKind(rs.Kind)
	if !ok {
		return Request{}, false
	}
	r := Request{
		Kind:      kind,
		Target:    rs.Target,
		Recipient: rs.Recipient,
		Advantage: rs.Advantage,
	}
	if rs.StuntAbility != "" {
		if a, ok := ruleset.ParseAbility(rs.StuntAbility); ok {
			r.StuntAbility = a
		}
	}
	if rs.DefenseAbility != "" {
		if a, ok := ruleset.ParseAbility(rs.DefenseAbility); ok {
			r.DefenseAbility = a
		}
	}
	if rs.ItemID != "" {
		r.Item = resolver.ResolveItem(rs.ItemID)
		if r.Item == nil {
			return Request{}, false
		}
	}
	return r, r.Validate() == nil
}
