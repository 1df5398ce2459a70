package combat_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/emberfell/skirmish/internal/game/combat"
	"github.com/emberfell/skirmish/internal/game/ruleset"
)

// fakeArena is a minimal battle location.
type fakeArena struct {
	id      string
	allowed bool
	ffa     bool
}

func (a fakeArena) ID() string          { return a.id }
func (a fakeArena) CombatAllowed() bool { return a.allowed }
func (a fakeArena) FreeForAll() bool    { return a.ffa }

// fakeCombatant implements combat.Combatant with observable state.
type fakeCombatant struct {
	uid, name string
	hp, maxHP int
	player    bool
	abilities ruleset.Abilities
	wielded   combat.Item
	defeats   int
	// onDefeat, when set, runs inside OnDefeat after the counter bumps.
	// Used to simulate a successful death save restoring health.
	onDefeat func(c *fakeCombatant)
}

func newFighter(uid, name string, hp int, player bool) *fakeCombatant {
	return &fakeCombatant{uid: uid, name: name, hp: hp, maxHP: hp, player: player}
}

func (c *fakeCombatant) UID() string                  { return c.uid }
func (c *fakeCombatant) Name() string                 { return c.name }
func (c *fakeCombatant) HP() int                      { return c.hp }
func (c *fakeCombatant) SetHP(hp int)                 { c.hp = hp }
func (c *fakeCombatant) MaxHP() int                   { return c.maxHP }
func (c *fakeCombatant) IsPlayer() bool               { return c.player }
func (c *fakeCombatant) Abilities() ruleset.Abilities { return c.abilities }
func (c *fakeCombatant) Wielded() combat.Item         { return c.wielded }
func (c *fakeCombatant) SetWielded(i combat.Item)     { c.wielded = i }
func (c *fakeCombatant) OnDefeat() {
	c.defeats++
	if c.onDefeat != nil {
		c.onDefeat(c)
	}
}

// fakeWeapon deals a fixed amount of damage and records how it was used.
type fakeWeapon struct {
	id, name      string
	damage        int
	uses          int
	lastAdvantage bool
}

func (w *fakeWeapon) ID() string                                 { return w.id }
func (w *fakeWeapon) Name() string                               { return w.name }
func (w *fakeWeapon) AtPreUse(_, _ combat.Combatant) bool        { return true }
func (w *fakeWeapon) AtPostUse(_, _ combat.Combatant)            {}
func (w *fakeWeapon) Use(user, target combat.Combatant, advantage, _ bool) (string, error) {
	w.uses++
	w.lastAdvantage = advantage
	target.SetHP(target.HP() - w.damage)
	return fmt.Sprintf("%s hits %s.", user.Name(), target.Name()), nil
}

// fakeOracle resolves every opposed check with a fixed outcome.
type fakeOracle struct {
	succeed bool
	calls   int
}

func (o *fakeOracle) OpposedCheck(actor, defender string, _, _ int, _, _ bool) (bool, int, string) {
	o.calls++
	return o.succeed, 1, fmt.Sprintf("%s and %s clash.", actor, defender)
}

// recordingNotifier captures broadcast narration for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Broadcast(message string, _ combat.Combatant, _ bool) {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	n.mu.Unlock()
}

func (n *recordingNotifier) factory() func(combat.Arena) combat.Notifier {
	return func(combat.Arena) combat.Notifier { return n }
}

func (n *recordingNotifier) contains(sub string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, m := range n.messages {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

// lastSource always returns n-1, making the turn-order shuffle a no-op and
// the survivor pick deterministic (last in insertion order).
type lastSource struct{}

func (lastSource) Intn(n int) int { return n - 1 }

// newTestSession builds a session with deterministic defaults and a timer
// horizon long enough that only explicit submissions drive resolution.
func newTestSession(t *testing.T, arena combat.Arena, opts combat.Options) *combat.Session {
	t.Helper()
	if opts.TurnDuration == 0 {
		opts.TurnDuration = time.Hour
	}
	if opts.Source == nil {
		opts.Source = lastSource{}
	}
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}
	return combat.NewSession(arena, opts)
}

func attackReq(target string) combat.Request {
	return combat.Request{Kind: combat.KindAttack, Target: target}
}
