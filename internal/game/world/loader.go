package world

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// yamlArenaFile is the top-level YAML structure for arena files.
type yamlArenaFile struct {
	Arena yamlArena `yaml:"arena"`
}

// yamlArena is the YAML representation of an arena.
type yamlArena struct {
	ID            string            `yaml:"id"`
	Name          string            `yaml:"name"`
	Description   string            `yaml:"description"`
	CombatAllowed bool              `yaml:"combat_allowed"`
	FreeForAll    bool              `yaml:"free_for_all"`
	Exits         map[string]string `yaml:"exits"`
	Spawns        []yamlSpawn       `yaml:"spawns"`
	Script        string            `yaml:"script"`
}

// yamlSpawn is the YAML representation of a spawn entry.
type yamlSpawn struct {
	Template string `yaml:"template"`
	Count    int    `yaml:"count"`
}

// LoadArenaFromBytes parses and validates an arena from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the arena schema.
// Postcondition: Returns a validated Arena or a non-nil error.
func LoadArenaFromBytes(data []byte) (*Arena, error) {
	var file yamlArenaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing arena YAML: %w", err)
	}

	cfg := ArenaConfig{
		ID:            file.Arena.ID,
		Name:          file.Arena.Name,
		Description:   file.Arena.Description,
		CombatAllowed: file.Arena.CombatAllowed,
		FreeForAll:    file.Arena.FreeForAll,
		Exits:         file.Arena.Exits,
		Script:        file.Arena.Script,
	}
	for _, spawn := range file.Arena.Spawns {
		cfg.Spawns = append(cfg.Spawns, SpawnConfig{Template: spawn.Template, Count: spawn.Count})
	}
	return NewArena(cfg)
}

// LoadArenaFromFile reads and validates a single arena YAML file.
//
// Precondition: path must point to a valid YAML arena file.
// Postcondition: Returns a validated Arena or a non-nil error.
func LoadArenaFromFile(path string) (*Arena, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading arena file %s: %w", path, err)
	}
	arena, err := LoadArenaFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return arena, nil
}

// LoadArenas reads all *.yaml and *.yml files in dir and returns the
// parsed arenas.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all arenas or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadArenas(dir string) ([]*Arena, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading arena dir %q: %w", dir, err)
	}

	var arenas []*Arena
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		arena, err := LoadArenaFromFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		arenas = append(arenas, arena)
	}
	return arenas, nil
}
