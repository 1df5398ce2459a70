package gameserver

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/emberfell/skirmish/internal/game/ai"
	"github.com/emberfell/skirmish/internal/game/combat"
	"github.com/emberfell/skirmish/internal/game/command"
	"github.com/emberfell/skirmish/internal/game/npc"
	"github.com/emberfell/skirmish/internal/game/session"
	"github.com/emberfell/skirmish/internal/game/world"
)

// SubmitIntent turns a parsed combat intent into an action request and
// queues it in the actor's arena battle, creating and starting the battle
// when the intent opens hostilities.
//
// Precondition: ps must be a connected player.
// Postcondition: On success the request is queued; newly drawn-in NPCs
// have their first action queued as well.
func (s *Server) SubmitIntent(ps *session.PlayerSession, intent command.Intent) error {
	arena, ok := s.world.Arena(ps.ArenaID)
	if !ok {
		return fmt.Errorf("you are nowhere combat can happen")
	}

	// Hold and flee only make sense inside a running battle.
	if intent.Kind == combat.KindHold || intent.Kind == combat.KindFlee {
		battle := s.engine.Get(ps.ArenaID)
		if battle == nil || !inBattle(battle, ps.UID) {
			return fmt.Errorf("you are not in battle")
		}
		return battle.QueueAction(ps.UID, combat.Request{Kind: intent.Kind})
	}

	battle, err := s.engine.GetOrCreate(arena)
	if err != nil {
		return err
	}

	req, joined, err := s.resolveRequest(ps, intent, arena)
	if err != nil {
		return err
	}

	battle.AddCombatant(ps.Character)
	for _, c := range joined {
		if !battle.AddCombatant(c) {
			continue
		}
		if inst, ok := c.(*npc.Instance); ok {
			first := s.planner.Decide(battle, inst, ai.Profile{
				Courage:     inst.Courage,
				StuntChance: inst.StuntChance,
			})
			if qerr := battle.QueueAction(inst.UID(), first); qerr != nil {
				s.logger.Warn("queueing joining npc action",
					zap.String("npc", inst.UID()),
					zap.Error(qerr),
				)
			}
		}
	}

	// Start before the actor's submission so the everyone-committed
	// trigger can resolve the turn immediately.
	battle.Start()
	return battle.QueueAction(ps.UID, req)
}

// resolveRequest maps the intent's display names onto live combatants and
// inventory items. It returns the validated-shape request plus the
// combatants the action draws into the battle.
func (s *Server) resolveRequest(ps *session.PlayerSession, intent command.Intent, arena *world.Arena) (combat.Request, []combat.Combatant, error) {
	req := combat.Request{
		Kind:           intent.Kind,
		Advantage:      intent.Advantage,
		StuntAbility:   intent.StuntAbility,
		DefenseAbility: intent.DefenseAbility,
	}
	var joined []combat.Combatant

	resolveEnemy := func(name string) (combat.Combatant, error) {
		c, err := s.findCombatant(ps.ArenaID, name)
		if err != nil {
			return nil, err
		}
		if c.UID() == ps.UID {
			return nil, fmt.Errorf("you cannot target yourself with that")
		}
		if c.IsPlayer() && !arena.FreeForAll() {
			return nil, fmt.Errorf("you cannot attack %s here", c.Name())
		}
		joined = append(joined, c)
		return c, nil
	}

	switch intent.Kind {
	case combat.KindAttack:
		target, err := resolveEnemy(intent.TargetName)
		if err != nil {
			return combat.Request{}, nil, err
		}
		req.Target = target.UID()

	case combat.KindStunt:
		if intent.Advantage {
			// Boost: the enemy defends, an ally (or the actor) gains
			// advantage against it.
			target, err := resolveEnemy(intent.TargetName)
			if err != nil {
				return combat.Request{}, nil, err
			}
			req.Target = target.UID()
			req.Recipient = ps.UID
			if intent.RecipientName != "" {
				ally, err := s.findCombatant(ps.ArenaID, intent.RecipientName)
				if err != nil {
					return combat.Request{}, nil, err
				}
				joined = append(joined, ally)
				req.Recipient = ally.UID()
			}
		} else {
			// Foil: the enemy both defends and receives disadvantage.
			recipient, err := resolveEnemy(intent.RecipientName)
			if err != nil {
				return combat.Request{}, nil, err
			}
			req.Recipient = recipient.UID()
			req.Target = ps.UID
		}

	case combat.KindUseItem:
		item := ps.Character.FindItem(intent.ItemName)
		if item == nil {
			return combat.Request{}, nil, fmt.Errorf("you are not carrying %q", intent.ItemName)
		}
		req.Item = item
		req.Target = ps.UID
		// Items may be aimed at allies (healing) as well as enemies, so
		// no hostility check here.
		if intent.TargetName != "" {
			target, err := s.findCombatant(ps.ArenaID, intent.TargetName)
			if err != nil {
				return combat.Request{}, nil, err
			}
			if target.UID() != ps.UID {
				joined = append(joined, target)
			}
			req.Target = target.UID()
		}

	case combat.KindWield:
		item := ps.Character.FindItem(intent.ItemName)
		if item == nil {
			return combat.Request{}, nil, fmt.Errorf("you are not carrying %q", intent.ItemName)
		}
		req.Item = item

	default:
		return combat.Request{}, nil, fmt.Errorf("that is not something you can do in battle")
	}

	return req, joined, nil
}

// findCombatant locates a combatant in the arena by name prefix, NPCs
// before players.
func (s *Server) findCombatant(arenaID, name string) (combat.Combatant, error) {
	if name == "" {
		return nil, fmt.Errorf("who do you mean?")
	}
	if inst := s.npcs.FindInArena(arenaID, name); inst != nil {
		return inst, nil
	}
	if ps, ok := s.players.FindInArena(arenaID, name); ok {
		return ps.Character, nil
	}
	return nil, fmt.Errorf("you see no %q here", name)
}

// inBattle reports whether uid is registered in battle.
func inBattle(battle *combat.Session, uid string) bool {
	for _, c := range battle.Combatants() {
		if c.UID() == uid {
			return true
		}
	}
	return false
}
