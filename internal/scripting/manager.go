package scripting

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/emberfell/skirmish/internal/game/dice"
)

// CombatantInfo is a snapshot of a combatant's state passed to Lua hooks.
type CombatantInfo struct {
	UID      string
	Name     string
	HP       int
	MaxHP    int
	IsPlayer bool
}

// Defeat hook verdicts. Any other return value leaves the engine's own
// death-save outcome in place.
const (
	VerdictSurvive = "survive"
	VerdictDie     = "die"
)

// Manager owns one sandboxed LState per arena and exposes hook dispatch.
//
// Manager is safe for concurrent CallHook after all LoadArena calls
// complete. Each arena's LState is single-threaded; the mutex serializes
// all hook calls.
type Manager struct {
	mu      sync.Mutex
	states  map[string]*lua.LState
	cancels map[string]func()
	roller  *dice.Roller
	logger  *zap.Logger

	// Injected after construction. nil = no-op in the engine.* module.
	GetCombatant func(uid string) *CombatantInfo
	SetHP        func(uid string, hp int) error
	Broadcast    func(arenaID, msg string)
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with an empty arena map.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	return &Manager{
		states:  make(map[string]*lua.LState),
		cancels: make(map[string]func()),
		roller:  roller,
		logger:  logger,
	}
}

// LoadArena creates a sandboxed VM for arenaID, registers the engine.*
// module, then executes the arena's script file.
//
// Precondition: arenaID must be non-empty; path must be a readable Lua file.
// Postcondition: Arena VM is registered, replacing any previous one;
// returns an error on Lua load failure.
func (m *Manager) LoadArena(arenaID, path string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.registerModules(L, arenaID)

	if err := L.DoFile(path); err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: loading %q for arena %q: %w", path, arenaID, err)
	}

	m.mu.Lock()
	if old, ok := m.states[arenaID]; ok {
		if oldCancel := m.cancels[arenaID]; oldCancel != nil {
			oldCancel()
		}
		old.Close()
	}
	m.states[arenaID] = L
	m.cancels[arenaID] = cancel
	m.mu.Unlock()
	return nil
}

// HasArena reports whether a VM is loaded for arenaID.
func (m *Manager) HasArena(arenaID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.states[arenaID]
	return ok
}

// Close tears down all arena VMs.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, L := range m.states {
		if cancel := m.cancels[id]; cancel != nil {
			cancel()
		}
		L.Close()
		delete(m.states, id)
		delete(m.cancels, id)
	}
}

// CallHook calls the named Lua global function in arenaID's VM. Returns
// (LNil, false) if no VM exists or the hook is not defined. Lua runtime
// errors are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the hook's first return value and whether the
// hook ran.
func (m *Manager) CallHook(arenaID, hook string, args ...lua.LValue) (lua.LValue, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	L, ok := m.states[arenaID]
	if !ok {
		return lua.LNil, false
	}

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, false
	}

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("arena", arenaID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, false
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, true
}

// OnDefeat invokes the arena's on_defeat hook with the victim's state.
//
// Postcondition: Returns VerdictSurvive or VerdictDie when the hook ran
// and returned one, or ("", false) when there is no hook or the hook
// returned anything else.
func (m *Manager) OnDefeat(arenaID string, victim CombatantInfo) (string, bool) {
	m.mu.Lock()
	L, ok := m.states[arenaID]
	m.mu.Unlock()
	if !ok {
		return "", false
	}

	tbl := L.NewTable()
	L.SetField(tbl, "uid", lua.LString(victim.UID))
	L.SetField(tbl, "name", lua.LString(victim.Name))
	L.SetField(tbl, "hp", lua.LNumber(victim.HP))
	L.SetField(tbl, "max_hp", lua.LNumber(victim.MaxHP))
	L.SetField(tbl, "is_player", lua.LBool(victim.IsPlayer))

	ret, ran := m.CallHook(arenaID, "on_defeat", tbl)
	if !ran {
		return "", false
	}
	if s, ok := ret.(lua.LString); ok {
		verdict := string(s)
		if verdict == VerdictSurvive || verdict == VerdictDie {
			return verdict, true
		}
	}
	return "", false
}
