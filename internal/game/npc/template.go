// Package npc provides NPC template definitions and live instance
// management for the Emberfell arenas.
package npc

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/emberfell/skirmish/internal/game/ruleset"
)

// Template defines a reusable NPC archetype loaded from YAML.
type Template struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	MaxHP       int               `yaml:"max_hp"`
	Abilities   ruleset.Abilities `yaml:"abilities"`
	// Weapon is the inventory ID of the weapon the NPC spawns wielding.
	// Empty means it fights unarmed.
	Weapon string `yaml:"weapon"`
	// Courage is in [0, 1]: the NPC starts fleeing once its health
	// fraction drops below 1 - Courage. 1 means it never flees.
	Courage float64 `yaml:"courage"`
	// StuntChance is in [0, 1]: the per-turn probability of opening with
	// a stunt instead of attacking while the NPC is healthy.
	StuntChance float64 `yaml:"stunt_chance"`
	// OnDefeatScript is the arena-script function invoked when the NPC
	// drops. Empty means no scripted death behavior.
	OnDefeatScript string `yaml:"on_defeat_script"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, MaxHP >= 1,
// the abilities are within range, and the behavior knobs are in [0, 1];
// returns an error on the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("npc template %q: max_hp must be >= 1", t.ID)
	}
	if err := t.Abilities.Validate(); err != nil {
		return fmt.Errorf("npc template %q: %w", t.ID, err)
	}
	if t.Courage < 0 || t.Courage > 1 {
		return fmt.Errorf("npc template %q: courage must be in [0, 1], got %v", t.ID, t.Courage)
	}
	if t.StuntChance < 0 || t.StuntChance > 1 {
		return fmt.Errorf("npc template %q: stunt_chance must be in [0, 1], got %v", t.ID, t.StuntChance)
	}
	return nil
}

// LoadTemplateFromBytes parses a single NPC template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml and *.yml files in dir and returns the
// parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
