package gameserver

import (
	"go.uber.org/zap"

	"github.com/emberfell/skirmish/internal/game/combat"
)

// feedNotifier fans combat narration out to the feeds of every player in
// the battle's arena. Narration to a slow client is dropped by the feed
// rather than blocking the resolution pass.
type feedNotifier struct {
	server  *Server
	arenaID string
}

func (s *Server) newNotifier(arena combat.Arena) combat.Notifier {
	return &feedNotifier{server: s, arenaID: arena.ID()}
}

// Broadcast delivers message to the arena's players. When focalOnly is
// set only the focal combatant sees it; NPC-focal private messages are
// discarded.
func (n *feedNotifier) Broadcast(message string, focal combat.Combatant, focalOnly bool) {
	if focalOnly {
		if focal == nil || !focal.IsPlayer() {
			return
		}
		n.server.pushToPlayer(focal.UID(), message)
		return
	}
	for _, ps := range n.server.players.PlayersInArena(n.arenaID) {
		if err := ps.Feed.Push(message); err != nil {
			n.server.logger.Debug("dropping narration",
				zap.String("player", ps.UID),
				zap.Error(err),
			)
		}
	}
}
