package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/emberfell/skirmish/internal/game/combat"
)

func never(string) bool { return false }

func TestLedger_GrantIsOneShot(t *testing.T) {
	l := combat.NewLedger(never)
	l.GrantAdvantage("a", "b")

	assert.True(t, l.ConsumeAdvantage("a", "b"))
	assert.False(t, l.ConsumeAdvantage("a", "b"))
}

func TestLedger_GrantsDoNotStack(t *testing.T) {
	l := combat.NewLedger(never)
	l.GrantDisadvantage("a", "b")
	l.GrantDisadvantage("a", "b")

	assert.True(t, l.ConsumeDisadvantage("a", "b"))
	assert.False(t, l.ConsumeDisadvantage("a", "b"))
}

func TestLedger_PairsAreIndependent(t *testing.T) {
	l := combat.NewLedger(never)
	l.GrantAdvantage("a", "b")

	assert.False(t, l.ConsumeAdvantage("b", "a"))
	assert.False(t, l.ConsumeAdvantage("a", "c"))
	assert.True(t, l.ConsumeAdvantage("a", "b"))
}

func TestLedger_FleeingTargetGrantsAdvantage(t *testing.T) {
	fleeing := map[string]bool{"b": true}
	l := combat.NewLedger(func(uid string) bool { return fleeing[uid] })

	// No entry exists, but the target is fleeing.
	assert.True(t, l.ConsumeAdvantage("a", "b"))
	// The override is not consumable state; it holds as long as the
	// target keeps fleeing.
	assert.True(t, l.ConsumeAdvantage("a", "b"))

	delete(fleeing, "b")
	assert.False(t, l.ConsumeAdvantage("a", "b"))
}

func TestLedger_FleeingRecipientActsAtDisadvantage(t *testing.T) {
	fleeing := map[string]bool{"a": true}
	l := combat.NewLedger(func(uid string) bool { return fleeing[uid] })

	assert.True(t, l.ConsumeDisadvantage("a", "b"))
	assert.False(t, l.ConsumeDisadvantage("b", "a"))
}

func TestLedger_ConsumeClearsEntryEvenWhenFleeing(t *testing.T) {
	fleeing := map[string]bool{"b": true}
	l := combat.NewLedger(func(uid string) bool { return fleeing[uid] })
	l.GrantAdvantage("a", "b")

	assert.True(t, l.ConsumeAdvantage("a", "b"))
	delete(fleeing, "b")
	// The stored entry was consumed by the first read.
	assert.False(t, l.ConsumeAdvantage("a", "b"))
}

func TestLedger_RevokeClearsWithoutFleeingOverride(t *testing.T) {
	l := combat.NewLedger(never)
	l.GrantAdvantage("a", "b")
	l.RevokeAdvantage("a", "b")
	assert.False(t, l.ConsumeAdvantage("a", "b"))

	l.GrantDisadvantage("a", "b")
	l.RevokeDisadvantage("a", "b")
	assert.False(t, l.ConsumeDisadvantage("a", "b"))
}

func TestLedger_DropRemovesBothDirections(t *testing.T) {
	l := combat.NewLedger(never)
	l.GrantAdvantage("a", "b")
	l.GrantAdvantage("b", "a")
	l.GrantDisadvantage("c", "b")

	l.Drop("b")

	assert.False(t, l.ConsumeAdvantage("a", "b"))
	assert.False(t, l.ConsumeAdvantage("b", "a"))
	assert.False(t, l.ConsumeDisadvantage("c", "b"))
}

func TestLedger_Property_ConsumeAtMostOncePerGrant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		uids := []string{"a", "b", "c"}
		l := combat.NewLedger(never)
		granted := map[[2]string]bool{}

		ops := rapid.IntRange(1, 40).Draw(rt, "ops")
		for i := 0; i < ops; i++ {
			recipient := rapid.SampledFrom(uids).Draw(rt, "recipient")
			target := rapid.SampledFrom(uids).Draw(rt, "target")
			if rapid.Bool().Draw(rt, "grant") {
				l.GrantAdvantage(recipient, target)
				granted[[2]string{recipient, target}] = true
			} else {
				got := l.ConsumeAdvantage(recipient, target)
				want := granted[[2]string{recipient, target}]
				assert.Equal(rt, want, got)
				delete(granted, [2]string{recipient, target})
			}
		}
	})
}
