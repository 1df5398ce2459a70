// Package gameserver wires the combat engine, the world, the NPC
// population and the player sessions into the Telnet-facing game service.
package gameserver

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/emberfell/skirmish/internal/config"
	"github.com/emberfell/skirmish/internal/game/ai"
	"github.com/emberfell/skirmish/internal/game/character"
	"github.com/emberfell/skirmish/internal/game/combat"
	"github.com/emberfell/skirmish/internal/game/dice"
	"github.com/emberfell/skirmish/internal/game/inventory"
	"github.com/emberfell/skirmish/internal/game/npc"
	"github.com/emberfell/skirmish/internal/game/ruleset"
	"github.com/emberfell/skirmish/internal/game/session"
	"github.com/emberfell/skirmish/internal/game/world"
	"github.com/emberfell/skirmish/internal/scripting"
)

// persistTimeout bounds every background database write issued from
// combat callbacks.
const persistTimeout = 5 * time.Second

// CharacterStore is the persistence surface the server needs for player
// characters. Implemented by postgres.CharacterRepository.
type CharacterStore interface {
	Create(ctx context.Context, c *character.Character) (*character.Character, error)
	GetByName(ctx context.Context, name string) (*character.Character, error)
	SaveState(ctx context.Context, uid, location string, currentHP int) error
}

// BattleStore persists combat snapshots for crash hand-off. Implemented by
// postgres.BattleRepository.
type BattleStore interface {
	Save(ctx context.Context, snap combat.Snapshot) error
	Load(ctx context.Context, arenaID string) (combat.Snapshot, error)
	Delete(ctx context.Context, arenaID string) error
	List(ctx context.Context) ([]string, error)
}

// Deps collects the collaborators a Server is built from. World, Items,
// NPCs, Players, Roller and Oracle are required; Characters, Battles and
// Scripts may be nil, disabling persistence and scripted deaths
// respectively.
type Deps struct {
	Config     config.Config
	Logger     *zap.Logger
	World      *world.Manager
	Items      *inventory.Registry
	NPCs       *npc.Manager
	Players    *session.Manager
	Scripts    *scripting.Manager
	Characters CharacterStore
	Battles    BattleStore
	Roller     *dice.Roller
	Oracle     *dice.OpposedRoller
	// Source provides randomness for combat resolution ordering and the
	// NPC planner. Nil falls back to the engine default.
	Source combat.Source
}

// Server is the game service: it owns the combat engine and handles every
// Telnet session from login to disconnect.
type Server struct {
	cfg     config.Config
	logger  *zap.Logger
	world   *world.Manager
	items   *inventory.Registry
	npcs    *npc.Manager
	players *session.Manager
	scripts *scripting.Manager
	chars   CharacterStore
	battles BattleStore
	roller  *dice.Roller
	oracle  *dice.OpposedRoller
	engine  *combat.Engine
	planner *ai.Planner
}

// NewServer constructs a Server and its combat engine.
//
// Precondition: the required Deps fields must be non-nil.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:     deps.Config,
		logger:  logger,
		world:   deps.World,
		items:   deps.Items,
		npcs:    deps.NPCs,
		players: deps.Players,
		scripts: deps.Scripts,
		chars:   deps.Characters,
		battles: deps.Battles,
		roller:  deps.Roller,
		oracle:  deps.Oracle,
	}

	src := deps.Source
	if src == nil {
		src = dice.NewCryptoSource()
	}
	s.planner = ai.NewPlanner(src)
	s.engine = combat.NewEngine(combat.Options{
		TurnDuration:  deps.Config.Combat.TurnDuration,
		FleeTimeout:   deps.Config.Combat.FleeTimeout,
		QueueCapacity: deps.Config.Combat.QueueCapacity,
		Source:        src,
		Oracle:        deps.Oracle,
		NewNotifier:   s.newNotifier,
		AfterTurn:     s.afterTurn,
		OnLeave:       s.onLeave,
		OnStop:        s.onBattleStop,
		Logger:        logger,
	})
	return s
}

// Engine exposes the combat engine, mainly for tests.
func (s *Server) Engine() *combat.Engine { return s.engine }

// SpawnWorld populates every arena's NPCs from its spawn table and loads
// its script, if any.
//
// Precondition: the NPC templates and item definitions must already be
// registered.
// Postcondition: Each arena holds the instances its spawn table names, or
// an error is returned on the first unknown template.
func (s *Server) SpawnWorld() error {
	for _, arena := range s.world.All() {
		for _, spawn := range arena.Spawns() {
			for i := 0; i < spawn.Count; i++ {
				if err := s.spawnNPC(spawn.Template, arena.ID()); err != nil {
					return err
				}
			}
		}
		if script := arena.Script(); script != "" && s.scripts != nil {
			path := filepath.Join(s.cfg.Content.ScriptDir, script)
			if err := s.scripts.LoadArena(arena.ID(), path, scripting.DefaultInstructionLimit); err != nil {
				return fmt.Errorf("loading script for arena %s: %w", arena.ID(), err)
			}
		}
	}
	return nil
}

// spawnNPC creates one live instance and wires its scripted death hook.
func (s *Server) spawnNPC(templateID, arenaID string) error {
	tmpl, ok := s.npcs.Template(templateID)
	if !ok {
		return fmt.Errorf("spawning into %s: unknown npc template %q", arenaID, templateID)
	}
	var weapon combat.Item
	if tmpl.Weapon != "" {
		weapon = s.items.Weapon(tmpl.Weapon)
		if weapon == nil {
			return fmt.Errorf("npc template %s: unknown weapon %q", templateID, tmpl.Weapon)
		}
	}
	inst, err := s.npcs.Spawn(templateID, arenaID, weapon)
	if err != nil {
		return err
	}
	inst.DefeatHook = s.npcDefeated
	return nil
}

// npcDefeated consults the arena script for a verdict when an NPC drops.
// A "survive" verdict leaves it at 1 HP so the defeat sweep classifies it
// as knocked out rather than killed.
func (s *Server) npcDefeated(inst *npc.Instance) {
	if s.scripts == nil {
		return
	}
	verdict, ok := s.scripts.OnDefeat(inst.ArenaID, scripting.CombatantInfo{
		UID:      inst.UID(),
		Name:     inst.Name(),
		HP:       inst.HP(),
		MaxHP:    inst.MaxHP(),
		IsPlayer: false,
	})
	if ok && verdict == scripting.VerdictSurvive {
		inst.SetHP(1)
	}
}

// playerDefeated rolls the character's death save. Success restores 1 HP,
// leaving them knocked out instead of killed; either way the engine
// removes them from the battle.
func (s *Server) playerDefeated(c *character.Character) {
	roll := s.oracle.DeathSave()
	if ruleset.DeathSaveSucceeds(roll, c.Bonuses.Bonus(ruleset.Constitution)) {
		c.SetHP(1)
		s.pushToPlayer(c.UID(), "Everything goes dark... but you cling to life.")
		return
	}
	s.pushToPlayer(c.UID(), "Everything goes dark.")
}

// afterTurn re-queues every NPC still fighting and persists the snapshot.
// Runs outside the session lock after each resolution that leaves the
// battle running.
func (s *Server) afterTurn(battle *combat.Session) {
	for _, c := range battle.Combatants() {
		inst, ok := c.(*npc.Instance)
		if !ok {
			continue
		}
		req := s.planner.Decide(battle, inst, ai.Profile{
			Courage:     inst.Courage,
			StuntChance: inst.StuntChance,
		})
		if err := battle.QueueAction(inst.UID(), req); err != nil {
			s.logger.Warn("queueing npc action",
				zap.String("npc", inst.UID()),
				zap.Error(err),
			)
		}
	}

	if s.battles == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.battles.Save(ctx, battle.Snapshot()); err != nil {
		s.logger.Error("saving battle snapshot",
			zap.String("arena", battle.ArenaID()),
			zap.Error(err),
		)
	}
}

// onLeave runs under the session lock whenever a combatant leaves a
// battle. It must not call back into the session.
func (s *Server) onLeave(battle *combat.Session, c combat.Combatant) {
	if inst, ok := c.(*npc.Instance); ok && inst.IsDead() {
		if err := s.npcs.Remove(inst.UID()); err != nil {
			s.logger.Warn("removing dead npc", zap.String("npc", inst.UID()), zap.Error(err))
		}
		return
	}
	if char, ok := c.(*character.Character); ok {
		s.persistCharacterAsync(char)
	}
}

// onBattleStop clears the arena's persisted snapshot once the battle has
// ended cleanly.
func (s *Server) onBattleStop(battle *combat.Session) {
	if s.battles == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.battles.Delete(ctx, battle.ArenaID()); err != nil {
		s.logger.Error("deleting battle snapshot",
			zap.String("arena", battle.ArenaID()),
			zap.Error(err),
		)
	}
}

// RestoreBattles loads any snapshot left behind by a crash and rebuilds
// the sessions it can. Snapshots whose combatants no longer resolve are
// dropped.
//
// Precondition: the world must be spawned; no battles may be running.
func (s *Server) RestoreBattles(ctx context.Context) error {
	if s.battles == nil {
		return nil
	}
	arenas, err := s.battles.List(ctx)
	if err != nil {
		return fmt.Errorf("listing battle snapshots: %w", err)
	}
	resolver := &liveResolver{players: s.players, npcs: s.npcs, items: s.items}
	for _, arenaID := range arenas {
		snap, err := s.battles.Load(ctx, arenaID)
		if err != nil {
			return fmt.Errorf("loading battle snapshot for %s: %w", arenaID, err)
		}
		arena, ok := s.world.Arena(arenaID)
		if !ok {
			s.logger.Warn("snapshot for unknown arena", zap.String("arena", arenaID))
			_ = s.battles.Delete(ctx, arenaID)
			continue
		}
		battle, err := s.engine.GetOrCreate(arena)
		if err != nil {
			return fmt.Errorf("restoring battle in %s: %w", arenaID, err)
		}
		battle.ApplySnapshot(snap, resolver)
		if len(battle.Combatants()) == 0 {
			s.logger.Info("snapshot had no restorable combatants", zap.String("arena", arenaID))
			s.engine.Release(arenaID)
			continue
		}
		battle.Start()
		s.logger.Info("battle restored",
			zap.String("arena", arenaID),
			zap.Int("turn", battle.Turn()),
			zap.Int("combatants", len(battle.Combatants())),
		)
	}
	return nil
}

// Shutdown stops every battle and persists the connected characters.
func (s *Server) Shutdown(ctx context.Context) {
	s.engine.StopAll()
	if s.scripts != nil {
		s.scripts.Close()
	}
	if s.chars == nil {
		return
	}
	for _, arena := range s.world.All() {
		for _, ps := range s.players.PlayersInArena(arena.ID()) {
			if err := s.chars.SaveState(ctx, ps.UID, ps.ArenaID, ps.Character.HP()); err != nil {
				s.logger.Error("persisting character on shutdown",
					zap.String("character", ps.UID),
					zap.Error(err),
				)
			}
		}
	}
}

// persistCharacterAsync writes the character's state without blocking the
// caller; combat callbacks run under the session lock.
func (s *Server) persistCharacterAsync(char *character.Character) {
	if s.chars == nil {
		return
	}
	uid, location, hp := char.UID(), char.Location, char.HP()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.chars.SaveState(ctx, uid, location, hp); err != nil {
			s.logger.Error("persisting character", zap.String("character", uid), zap.Error(err))
		}
	}()
}

// pushToPlayer delivers one line to a connected player's feed, if any.
func (s *Server) pushToPlayer(uid, line string) {
	ps, ok := s.players.GetPlayer(uid)
	if !ok {
		return
	}
	if err := ps.Feed.Push(line); err != nil {
		s.logger.Debug("dropping feed line", zap.String("player", uid), zap.Error(err))
	}
}
