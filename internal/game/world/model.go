// Package world provides the game world model: arenas, the passages
// between them, and their NPC spawn tables.
package world

import "fmt"

// SpawnConfig defines how many instances of an NPC template an arena
// holds when the world comes up.
type SpawnConfig struct {
	// Template is the NPC template ID to spawn.
	Template string
	// Count is the number of live instances of this template in the arena.
	Count int
}

// ArenaConfig is the construction input for an Arena, usually produced by
// the YAML loader.
type ArenaConfig struct {
	ID          string
	Name        string
	Description string
	// CombatAllowed gates whether battles may start here.
	CombatAllowed bool
	// FreeForAll disables the player/non-player side partition: every
	// combatant fights alone.
	FreeForAll bool
	// Exits maps direction names to destination arena IDs.
	Exits map[string]string
	// Spawns lists the NPC population of this arena.
	Spawns []SpawnConfig
	// Script is the arena's Lua script file, relative to the content
	// script directory. Empty means no scripted behavior.
	Script string
}

// Arena is a location in the game world. It satisfies the combat engine's
// battle-location contract, so it is handed to sessions directly.
//
// Arenas are immutable after construction and safe to share.
type Arena struct {
	id            string
	name          string
	description   string
	combatAllowed bool
	freeForAll    bool
	exits         map[string]string
	spawns        []SpawnConfig
	script        string
}

// NewArena validates cfg and builds an immutable Arena.
//
// Postcondition: Returns an error iff the config violates an invariant:
// empty ID or Name, an exit with an empty direction or target, or a spawn
// with an empty template or non-positive count.
func NewArena(cfg ArenaConfig) (*Arena, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("arena: id must not be empty")
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("arena %q: name must not be empty", cfg.ID)
	}
	for direction, target := range cfg.Exits {
		if direction == "" || target == "" {
			return nil, fmt.Errorf("arena %q: exit %q -> %q must name both direction and target", cfg.ID, direction, target)
		}
	}
	for _, spawn := range cfg.Spawns {
		if spawn.Template == "" {
			return nil, fmt.Errorf("arena %q: spawn template must not be empty", cfg.ID)
		}
		if spawn.Count < 1 {
			return nil, fmt.Errorf("arena %q: spawn count for %q must be >= 1", cfg.ID, spawn.Template)
		}
	}

	exits := make(map[string]string, len(cfg.Exits))
	for direction, target := range cfg.Exits {
		exits[direction] = target
	}
	spawns := make([]SpawnConfig, len(cfg.Spawns))
	copy(spawns, cfg.Spawns)

	return &Arena{
		id:            cfg.ID,
		name:          cfg.Name,
		description:   cfg.Description,
		combatAllowed: cfg.CombatAllowed,
		freeForAll:    cfg.FreeForAll,
		exits:         exits,
		spawns:        spawns,
		script:        cfg.Script,
	}, nil
}

func (a *Arena) ID() string          { return a.id }
func (a *Arena) Name() string        { return a.name }
func (a *Arena) Description() string { return a.description }

// CombatAllowed reports whether battles may start in this arena.
func (a *Arena) CombatAllowed() bool { return a.combatAllowed }

// FreeForAll reports whether every combatant here fights alone.
func (a *Arena) FreeForAll() bool { return a.freeForAll }

// Exit returns the destination arena ID for direction.
//
// Postcondition: Returns (target, true) if the exit exists, ("", false)
// otherwise.
func (a *Arena) Exit(direction string) (string, bool) {
	target, ok := a.exits[direction]
	return target, ok
}

// Exits returns a copy of the exit table.
func (a *Arena) Exits() map[string]string {
	cp := make(map[string]string, len(a.exits))
	for direction, target := range a.exits {
		cp[direction] = target
	}
	return cp
}

// Spawns returns a copy of the spawn table.
func (a *Arena) Spawns() []SpawnConfig {
	cp := make([]SpawnConfig, len(a.spawns))
	copy(cp, a.spawns)
	return cp
}

// Script returns the arena's Lua script file, or "".
func (a *Arena) Script() string { return a.script }
