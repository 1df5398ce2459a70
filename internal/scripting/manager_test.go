package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap/zaptest"

	"github.com/emberfell/skirmish/internal/game/dice"
)

// fixedSource always yields the same face, making engine.roll deterministic.
type fixedSource struct{ n int }

func (s fixedSource) Intn(n int) int {
	if s.n >= n {
		return n - 1
	}
	return s.n
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	roller := dice.NewRoller(fixedSource{n: 3}, zaptest.NewLogger(t))
	return NewManager(roller, zaptest.NewLogger(t))
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arena.lua")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestManagerLoadArenaAndCallHook(t *testing.T) {
	m := newTestManager(t)
	defer m.Close()

	path := writeScript(t, `
		function greet(name)
			return "hello " .. name
		end
	`)
	require.NoError(t, m.LoadArena("cave", path, 0))
	assert.True(t, m.HasArena("cave"))

	ret, ran := m.CallHook("cave", "greet", lua.LString("Grak"))
	require.True(t, ran)
	assert.Equal(t, lua.LString("hello Grak"), ret)
}

func TestManagerCallHook_MissingVMOrHook(t *testing.T) {
	m := newTestManager(t)
	defer m.Close()

	_, ran := m.CallHook("nowhere", "greet")
	assert.False(t, ran)

	require.NoError(t, m.LoadArena("cave", writeScript(t, `x = 1`), 0))
	_, ran = m.CallHook("cave", "greet")
	assert.False(t, ran)
}

func TestManagerCallHook_RuntimeErrorIsSwallowed(t *testing.T) {
	m := newTestManager(t)
	defer m.Close()

	path := writeScript(t, `
		function explode()
			error("boom")
		end
	`)
	require.NoError(t, m.LoadArena("cave", path, 0))

	ret, ran := m.CallHook("cave", "explode")
	assert.False(t, ran)
	assert.Equal(t, lua.LNil, ret)
}

func TestManagerLoadArena_BadScript(t *testing.T) {
	m := newTestManager(t)
	defer m.Close()

	err := m.LoadArena("cave", writeScript(t, `function broken(`), 0)
	assert.Error(t, err)
	assert.False(t, m.HasArena("cave"))
}

func TestManagerOnDefeat(t *testing.T) {
	m := newTestManager(t)
	defer m.Close()

	path := writeScript(t, `
		function on_defeat(victim)
			if victim.is_player then
				return "survive"
			end
			return "die"
		end
	`)
	require.NoError(t, m.LoadArena("cave", path, 0))

	verdict, ok := m.OnDefeat("cave", CombatantInfo{UID: "p1", Name: "Alice", HP: -2, MaxHP: 10, IsPlayer: true})
	require.True(t, ok)
	assert.Equal(t, VerdictSurvive, verdict)

	verdict, ok = m.OnDefeat("cave", CombatantInfo{UID: "n1", Name: "Grak", HP: 0, MaxHP: 12})
	require.True(t, ok)
	assert.Equal(t, VerdictDie, verdict)
}

func TestManagerOnDefeat_NoHookOrBadVerdict(t *testing.T) {
	m := newTestManager(t)
	defer m.Close()

	_, ok := m.OnDefeat("nowhere", CombatantInfo{UID: "p1"})
	assert.False(t, ok)

	require.NoError(t, m.LoadArena("cave", writeScript(t, `
		function on_defeat(victim)
			return 42
		end
	`), 0))
	_, ok = m.OnDefeat("cave", CombatantInfo{UID: "p1"})
	assert.False(t, ok, "non-string verdicts fall back to the engine outcome")
}

func TestEngineModule(t *testing.T) {
	m := newTestManager(t)
	defer m.Close()

	var broadcasts []string
	m.Broadcast = func(arenaID, msg string) {
		broadcasts = append(broadcasts, arenaID+": "+msg)
	}
	m.GetCombatant = func(uid string) *CombatantInfo {
		if uid == "n1" {
			return &CombatantInfo{UID: "n1", Name: "Grak", HP: 7, MaxHP: 12}
		}
		return nil
	}
	hp := map[string]int{"n1": 7}
	m.SetHP = func(uid string, v int) error {
		hp[uid] = v
		return nil
	}

	path := writeScript(t, `
		function check()
			local c = engine.get_combatant("n1")
			engine.broadcast(c.name .. " stirs")
			engine.set_hp(c.uid, c.hp - 2)
			return engine.roll("1d6")
		end
	`)
	require.NoError(t, m.LoadArena("cave", path, 0))

	ret, ran := m.CallHook("cave", "check")
	require.True(t, ran)
	// fixedSource{n: 3} yields face 4 on a d6.
	assert.Equal(t, lua.LNumber(4), ret)
	assert.Equal(t, []string{"cave: Grak stirs"}, broadcasts)
	assert.Equal(t, 5, hp["n1"])
}

func TestEngineModule_NilCallbacksAreNoOps(t *testing.T) {
	m := newTestManager(t)
	defer m.Close()

	path := writeScript(t, `
		function check()
			engine.broadcast("into the void")
			local c = engine.get_combatant("n1")
			local ok = engine.set_hp("n1", 1)
			return c == nil and ok == false
		end
	`)
	require.NoError(t, m.LoadArena("cave", path, 0))

	ret, ran := m.CallHook("cave", "check")
	require.True(t, ran)
	assert.Equal(t, lua.LTrue, ret)
}
