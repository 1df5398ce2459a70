package gameserver

import (
	"github.com/emberfell/skirmish/internal/game/combat"
	"github.com/emberfell/skirmish/internal/game/inventory"
	"github.com/emberfell/skirmish/internal/game/npc"
	"github.com/emberfell/skirmish/internal/game/session"
)

// liveResolver maps snapshot identities back to the live entities the
// server currently knows about: connected players, spawned NPC instances
// and registered items.
type liveResolver struct {
	players *session.Manager
	npcs    *npc.Manager
	items   *inventory.Registry
}

func (r *liveResolver) ResolveCombatant(uid string) combat.Combatant {
	if ps, ok := r.players.GetPlayer(uid); ok {
		return ps.Character
	}
	if inst, ok := r.npcs.Get(uid); ok {
		return inst
	}
	return nil
}

func (r *liveResolver) ResolveItem(id string) combat.Item {
	return r.items.Resolve(id)
}
