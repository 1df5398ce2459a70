// Package main provides the game server binary: the Telnet endpoint, the
// world, and the combat engine behind it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/emberfell/skirmish/internal/config"
	"github.com/emberfell/skirmish/internal/frontend/telnet"
	"github.com/emberfell/skirmish/internal/game/dice"
	"github.com/emberfell/skirmish/internal/game/inventory"
	"github.com/emberfell/skirmish/internal/game/npc"
	"github.com/emberfell/skirmish/internal/game/session"
	"github.com/emberfell/skirmish/internal/game/world"
	"github.com/emberfell/skirmish/internal/gameserver"
	"github.com/emberfell/skirmish/internal/observability"
	"github.com/emberfell/skirmish/internal/scripting"
	"github.com/emberfell/skirmish/internal/server"
	"github.com/emberfell/skirmish/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	cryptoSrc := dice.NewCryptoSource()
	roller := dice.NewRoller(cryptoSrc, logger)
	oracle := dice.NewOpposedRoller(cryptoSrc, logger)

	// Load world content.
	worldStart := time.Now()
	arenas, err := world.LoadArenas(filepath.Join(cfg.Content.Dir, "arenas"))
	if err != nil {
		logger.Fatal("loading arenas", zap.Error(err))
	}
	worldMgr, err := world.NewManager(arenas, cfg.Content.StartArena)
	if err != nil {
		logger.Fatal("creating world manager", zap.Error(err))
	}
	if err := worldMgr.ValidateExits(); err != nil {
		logger.Fatal("validating arena exits", zap.Error(err))
	}
	logger.Info("world loaded",
		zap.Int("arenas", len(arenas)),
		zap.Duration("elapsed", time.Since(worldStart)),
	)

	// Load item definitions.
	itemRegistry := inventory.NewRegistry(roller)
	if err := itemRegistry.LoadDir(filepath.Join(cfg.Content.Dir, "items")); err != nil {
		logger.Fatal("loading item definitions", zap.Error(err))
	}
	logger.Info("item definitions loaded", zap.Int("weapons", len(itemRegistry.AllWeapons())))

	// Load NPC templates.
	npcMgr := npc.NewManager()
	templates, err := npc.LoadTemplates(filepath.Join(cfg.Content.Dir, "npcs"))
	if err != nil {
		logger.Fatal("loading npc templates", zap.Error(err))
	}
	for _, tmpl := range templates {
		if err := npcMgr.RegisterTemplate(tmpl); err != nil {
			logger.Fatal("registering npc template", zap.String("id", tmpl.ID), zap.Error(err))
		}
	}
	logger.Info("npc templates loaded", zap.Int("count", len(templates)))

	// Connect to PostgreSQL for character and battle persistence.
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	scriptMgr := scripting.NewManager(roller, logger)
	players := session.NewManager()

	srv := gameserver.NewServer(gameserver.Deps{
		Config:     cfg,
		Logger:     logger,
		World:      worldMgr,
		Items:      itemRegistry,
		NPCs:       npcMgr,
		Players:    players,
		Scripts:    scriptMgr,
		Characters: postgres.NewCharacterRepository(pool.DB()),
		Battles:    postgres.NewBattleRepository(pool.DB()),
		Roller:     roller,
		Oracle:     oracle,
		Source:     cryptoSrc,
	})

	// Wire the script engine's world callbacks.
	scriptMgr.GetCombatant = func(uid string) *scripting.CombatantInfo {
		if inst, ok := npcMgr.Get(uid); ok {
			return &scripting.CombatantInfo{
				UID: inst.UID(), Name: inst.Name(),
				HP: inst.HP(), MaxHP: inst.MaxHP(),
			}
		}
		if ps, ok := players.GetPlayer(uid); ok {
			c := ps.Character
			return &scripting.CombatantInfo{
				UID: c.UID(), Name: c.Name(),
				HP: c.HP(), MaxHP: c.MaxHP(), IsPlayer: true,
			}
		}
		return nil
	}
	scriptMgr.SetHP = func(uid string, hp int) error {
		if inst, ok := npcMgr.Get(uid); ok {
			inst.SetHP(hp)
			return nil
		}
		if ps, ok := players.GetPlayer(uid); ok {
			ps.Character.SetHP(hp)
			return nil
		}
		return fmt.Errorf("no combatant with uid %q", uid)
	}
	scriptMgr.Broadcast = func(arenaID, msg string) {
		for _, ps := range players.PlayersInArena(arenaID) {
			_ = ps.Feed.Push(msg)
		}
	}

	// Spawn the NPC population and load arena scripts.
	if err := srv.SpawnWorld(); err != nil {
		logger.Fatal("spawning world", zap.Error(err))
	}

	// Pick up any battle left behind by a crash.
	if err := srv.RestoreBattles(ctx); err != nil {
		logger.Fatal("restoring battles", zap.Error(err))
	}

	acceptor := telnet.NewAcceptor(cfg.Telnet, srv, logger)

	// Shutdown runs in reverse order: stop accepting clients, wind down
	// the game state, then close the pool it persists into.
	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			for {
				time.Sleep(30 * time.Second)
				if err := pool.Health(ctx, 5*time.Second); err != nil {
					logger.Warn("database health check failed", zap.Error(err))
				}
			}
		},
		StopFn: func() {
			pool.Close()
		},
	})
	lifecycle.Add("gameserver", &server.FuncService{
		StartFn: func() error {
			select {}
		},
		StopFn: func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		},
	})
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: func() error {
			return acceptor.ListenAndServe()
		},
		StopFn: func() {
			acceptor.Stop()
		},
	})

	logger.Info("game server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
