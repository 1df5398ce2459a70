package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerModules registers the engine.* Lua table into L, bound to the
// given arena. Callbacks left nil on the Manager turn into no-ops.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: The engine global is defined in L.
func (m *Manager) registerModules(L *lua.LState, arenaID string) {
	engine := L.NewTable()

	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		msg := L.CheckString(1)
		m.logger.Info("lua",
			zap.String("arena", arenaID),
			zap.String("msg", msg),
		)
		return 0
	}))

	L.SetField(engine, "roll", L.NewFunction(func(L *lua.LState) int {
		expr := L.CheckString(1)
		result, err := m.roller.RollExpr(expr)
		if err != nil {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(result.Total()))
		return 1
	}))

	L.SetField(engine, "broadcast", L.NewFunction(func(L *lua.LState) int {
		msg := L.CheckString(1)
		if m.Broadcast != nil {
			m.Broadcast(arenaID, msg)
		}
		return 0
	}))

	L.SetField(engine, "get_combatant", L.NewFunction(func(L *lua.LState) int {
		uid := L.CheckString(1)
		if m.GetCombatant == nil {
			L.Push(lua.LNil)
			return 1
		}
		info := m.GetCombatant(uid)
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		tbl := L.NewTable()
		L.SetField(tbl, "uid", lua.LString(info.UID))
		L.SetField(tbl, "name", lua.LString(info.Name))
		L.SetField(tbl, "hp", lua.LNumber(info.HP))
		L.SetField(tbl, "max_hp", lua.LNumber(info.MaxHP))
		L.SetField(tbl, "is_player", lua.LBool(info.IsPlayer))
		L.Push(tbl)
		return 1
	}))

	L.SetField(engine, "set_hp", L.NewFunction(func(L *lua.LState) int {
		uid := L.CheckString(1)
		hp := L.CheckInt(2)
		if m.SetHP == nil {
			L.Push(lua.LFalse)
			return 1
		}
		if err := m.SetHP(uid, hp); err != nil {
			m.logger.Warn("lua set_hp failed",
				zap.String("arena", arenaID),
				zap.String("uid", uid),
				zap.Error(err),
			)
			L.Push(lua.LFalse)
			return 1
		}
		L.Push(lua.LTrue)
		return 1
	}))

	L.SetGlobal("engine", engine)
}
