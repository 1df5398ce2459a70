package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberfell/skirmish/internal/game/combat"
	"github.com/emberfell/skirmish/internal/game/ruleset"
)

// fakeResolver restores live references from identities.
type fakeResolver struct {
	combatants map[string]combat.Combatant
	items      map[string]combat.Item
}

func (r fakeResolver) ResolveCombatant(uid string) combat.Combatant { return r.combatants[uid] }
func (r fakeResolver) ResolveItem(id string) combat.Item            { return r.items[id] }

func TestSession_Snapshot_CapturesState(t *testing.T) {
	weapon := &fakeWeapon{id: "sword", name: "a sword", damage: 3}
	a := newFighter("a", "Alice", 20, true)
	a.wielded = weapon
	b := newFighter("b", "Grak", 20, false)

	s := newTestSession(t, testArena, combat.Options{})
	s.AddCombatant(a)
	s.AddCombatant(b)
	require.NoError(t, s.QueueAction("a", attackReq("b")))
	require.NoError(t, s.QueueAction("b", combat.Request{Kind: combat.KindWield, Item: weapon}))

	snap := s.Snapshot()
	assert.Equal(t, "arena-1", snap.ArenaID)
	assert.Equal(t, 0, snap.Turn)

	require.Len(t, snap.Queues["a"], 1)
	assert.Equal(t, "attack", snap.Queues["a"][0].Kind)
	assert.Equal(t, "b", snap.Queues["a"][0].Target)

	require.Len(t, snap.Queues["b"], 1)
	assert.Equal(t, "wield", snap.Queues["b"][0].Kind)
	assert.Equal(t, "sword", snap.Queues["b"][0].ItemID)
}

func TestSession_ApplySnapshot_RoundTrip(t *testing.T) {
	weapon := &fakeWeapon{id: "sword", name: "a sword", damage: 3}
	a := newFighter("a", "Alice", 20, true)
	a.wielded = weapon
	b := newFighter("b", "Grak", 20, false)
	resolver := fakeResolver{
		combatants: map[string]combat.Combatant{"a": a, "b": b},
		items:      map[string]combat.Item{"sword": weapon},
	}

	snap := combat.Snapshot{
		ArenaID: "arena-1",
		Turn:    4,
		Queues: map[string][]combat.RequestSnapshot{
			"a": {{Kind: "attack", Target: "b"}},
			"b": {{
				Kind: "stunt", Recipient: "b", Target: "a", Advantage: true,
				StuntAbility: "dex", DefenseAbility: "str",
			}},
		},
		Advantage: map[string][]string{"a": {"b"}},
		Fleeing:   map[string]int{"b": 3},
	}

	restored := newTestSession(t, testArena, combat.Options{})
	restored.ApplySnapshot(snap, resolver)

	assert.Equal(t, 4, restored.Turn())
	assert.Len(t, restored.Combatants(), 2)

	next, err := restored.NextAction("a")
	require.NoError(t, err)
	assert.Equal(t, combat.KindAttack, next.Kind)
	assert.Equal(t, "b", next.Target)

	next, err = restored.NextAction("b")
	require.NoError(t, err)
	assert.Equal(t, combat.KindStunt, next.Kind)
	assert.Equal(t, ruleset.Dexterity, next.StuntAbility)

	// State reproduces on a second snapshot.
	again := restored.Snapshot()
	assert.Equal(t, snap.Advantage, again.Advantage)
	assert.Equal(t, snap.Fleeing, again.Fleeing)
}

func TestSession_ApplySnapshot_DropsUnresolvableReferences(t *testing.T) {
	a := newFighter("a", "Alice", 20, true)
	resolver := fakeResolver{combatants: map[string]combat.Combatant{"a": a}}

	snap := combat.Snapshot{
		ArenaID: "arena-1",
		Turn:    2,
		Queues: map[string][]combat.RequestSnapshot{
			"a":     {{Kind: "use", ItemID: "vanished-potion"}},
			"ghost": {{Kind: "hold"}},
		},
		Advantage: map[string][]string{"a": {"ghost"}},
		Fleeing:   map[string]int{"ghost": 1},
	}

	restored := newTestSession(t, testArena, combat.Options{})
	restored.ApplySnapshot(snap, resolver)

	assert.Len(t, restored.Combatants(), 1)
	assert.Equal(t, 2, restored.Turn())

	// The unresolvable item left Alice's queue empty, falling back to Hold.
	next, err := restored.NextAction("a")
	require.NoError(t, err)
	assert.Equal(t, combat.KindHold, next.Kind)

	again := restored.Snapshot()
	assert.Empty(t, again.Advantage)
	assert.Empty(t, again.Fleeing)
}

func TestSession_Snapshot_RecordsDefeatedWithFinalHealth(t *testing.T) {
	weapon := &fakeWeapon{id: "sword", name: "a sword", damage: 5}
	a := newFighter("a", "Alice", 20, true)
	a.wielded = weapon
	b := newFighter("b", "Grak", 3, false)
	c := newFighter("c", "Urzog", 20, false)

	s := newTestSession(t, testArena, combat.Options{})
	s.AddCombatant(a)
	s.AddCombatant(b)
	s.AddCombatant(c)
	s.Start()

	require.NoError(t, s.QueueAction("a", attackReq("b")))
	require.NoError(t, s.QueueAction("b", combat.HoldRequest()))
	require.NoError(t, s.QueueAction("c", combat.HoldRequest()))

	snap := s.Snapshot()
	require.Len(t, snap.Defeated, 1)
	assert.Equal(t, "b", snap.Defeated[0].UID)
	assert.Equal(t, -2, snap.Defeated[0].HP)
}
