package combat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/emberfell/skirmish/internal/game/combat"
)

func newTestEngine(t *testing.T) *combat.Engine {
	t.Helper()
	return combat.NewEngine(combat.Options{
		TurnDuration: time.Hour,
		Source:       lastSource{},
		Logger:       zaptest.NewLogger(t),
	})
}

func TestEngine_GetOrCreate_RequiresArena(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.GetOrCreate(nil)
	assert.ErrorIs(t, err, combat.ErrNoArena)
}

func TestEngine_GetOrCreate_RespectsArenaRules(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.GetOrCreate(fakeArena{id: "sanctuary", allowed: false})
	assert.ErrorIs(t, err, combat.ErrCombatNotAllowed)
}

func TestEngine_GetOrCreate_ReturnsSameSession(t *testing.T) {
	e := newTestEngine(t)
	arena := fakeArena{id: "arena-1", allowed: true}

	s1, err := e.GetOrCreate(arena)
	require.NoError(t, err)
	s2, err := e.GetOrCreate(arena)
	require.NoError(t, err)
	assert.Same(t, s1, s2)
	assert.Same(t, s1, e.Get("arena-1"))
}

func TestEngine_SessionsAreIndependentPerArena(t *testing.T) {
	e := newTestEngine(t)
	s1, err := e.GetOrCreate(fakeArena{id: "arena-1", allowed: true})
	require.NoError(t, err)
	s2, err := e.GetOrCreate(fakeArena{id: "arena-2", allowed: true})
	require.NoError(t, err)
	assert.NotSame(t, s1, s2)
	assert.Len(t, e.Sessions(), 2)
}

func TestEngine_StoppedSessionLeavesRegistry(t *testing.T) {
	e := newTestEngine(t)
	arena := fakeArena{id: "arena-1", allowed: true}

	s, err := e.GetOrCreate(arena)
	require.NoError(t, err)
	s.Stop()

	assert.Nil(t, e.Get("arena-1"))

	// The next battle in the same arena gets a fresh session.
	s2, err := e.GetOrCreate(arena)
	require.NoError(t, err)
	assert.NotSame(t, s, s2)
}

func TestEngine_Release_StopsSession(t *testing.T) {
	e := newTestEngine(t)
	s, err := e.GetOrCreate(fakeArena{id: "arena-1", allowed: true})
	require.NoError(t, err)
	s.AddCombatant(newFighter("a", "Alice", 20, true))
	s.Start()

	e.Release("arena-1")

	assert.False(t, s.Active())
	assert.Nil(t, e.Get("arena-1"))
	// Releasing an arena with no battle is a no-op.
	e.Release("arena-1")
}

func TestEngine_StopAll(t *testing.T) {
	e := newTestEngine(t)
	for _, id := range []string{"arena-1", "arena-2", "arena-3"} {
		s, err := e.GetOrCreate(fakeArena{id: id, allowed: true})
		require.NoError(t, err)
		s.Start()
	}

	e.StopAll()
	assert.Empty(t, e.Sessions())
}

func TestEngine_ChainsUserOnStop(t *testing.T) {
	stops := 0
	e := combat.NewEngine(combat.Options{
		TurnDuration: time.Hour,
		OnStop:       func(*combat.Session) { stops++ },
	})
	s, err := e.GetOrCreate(fakeArena{id: "arena-1", allowed: true})
	require.NoError(t, err)
	s.Stop()

	assert.Equal(t, 1, stops)
	assert.Nil(t, e.Get("arena-1"))
}
