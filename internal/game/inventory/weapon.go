// Package inventory provides the YAML item definitions, the runtime item
// types used in battle, and the registry that indexes them for the
// Emberfell game engine.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/emberfell/skirmish/internal/game/combat"
	"github.com/emberfell/skirmish/internal/game/dice"
	"github.com/emberfell/skirmish/internal/game/ruleset"
)

// DefenseBase is the flat defense target before the defender's dexterity
// bonus. An attack hits when d20 + attack bonus meets or beats it.
const DefenseBase = 11

// Attack roll expressions. Advantage keeps the best of two d20,
// disadvantage the worst; both together cancel to a straight roll.
var (
	attackStraight     = dice.MustParse("d20")
	attackAdvantage    = dice.MustParse("2d20kh1")
	attackDisadvantage = dice.MustParse("2d20kl1")
)

// WeaponDef defines the static properties of a weapon loaded from YAML.
type WeaponDef struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	DamageDice    string   `yaml:"damage_dice"`
	AttackAbility string   `yaml:"attack_ability"`
	Traits        []string `yaml:"traits"`
}

// Validate checks that the WeaponDef satisfies its invariants.
//
// Precondition: w is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (w *WeaponDef) Validate() error {
	var errs []error
	if w.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if w.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if _, err := dice.Parse(w.DamageDice); err != nil {
		errs = append(errs, fmt.Errorf("DamageDice: %w", err))
	}
	if _, ok := ruleset.ParseAbility(w.AttackAbility); !ok {
		errs = append(errs, fmt.Errorf("AttackAbility must name an ability; got %q", w.AttackAbility))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon validation failed: %v", errs)
	}
	return nil
}

// LoadWeapons reads all *.yaml and *.yml files from dir, parses each as a
// WeaponDef, validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid WeaponDefs or the first encountered error.
func LoadWeapons(dir string) ([]*WeaponDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadWeapons: cannot read directory %q: %w", dir, err)
	}

	var weapons []*WeaponDef
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadWeapons: cannot read file %q: %w", path, err)
		}
		var w WeaponDef
		if err := yaml.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("LoadWeapons: cannot parse file %q: %w", path, err)
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("LoadWeapons: invalid weapon in %q: %w", path, err)
		}
		weapons = append(weapons, &w)
	}
	return weapons, nil
}

// Weapon is the runtime form of a WeaponDef: a stateless attacker usable
// from any number of hands at once.
type Weapon struct {
	def    *WeaponDef
	attack ruleset.Ability
	damage dice.Expression
	roller *dice.Roller
}

// NewWeapon compiles def into a usable Weapon.
//
// Precondition: def must pass Validate; roller must be non-nil.
func NewWeapon(def *WeaponDef, roller *dice.Roller) (*Weapon, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	attack, _ := ruleset.ParseAbility(def.AttackAbility)
	damage, err := dice.Parse(def.DamageDice)
	if err != nil {
		return nil, err
	}
	return &Weapon{def: def, attack: attack, damage: damage, roller: roller}, nil
}

func (w *Weapon) ID() string   { return w.def.ID }
func (w *Weapon) Name() string { return w.def.Name }

// AtPreUse always permits an attack; a weapon in hand is always ready.
func (w *Weapon) AtPreUse(_, _ combat.Combatant) bool { return true }

// Use rolls the attack against the target's defense and applies damage on
// a hit. The returned narration covers both outcomes.
//
// Postcondition: target health only decreases, never below the damage roll
// floor of zero applied.
func (w *Weapon) Use(user, target combat.Combatant, advantage, disadvantage bool) (string, error) {
	expr := attackStraight
	switch {
	case advantage && !disadvantage:
		expr = attackAdvantage
	case disadvantage && !advantage:
		expr = attackDisadvantage
	}

	attackTotal := w.roller.Roll(expr).Total() + user.Abilities().Bonus(w.attack)
	defense := DefenseBase + target.Abilities().Bonus(ruleset.Dexterity)
	if attackTotal < defense {
		return fmt.Sprintf("%s attacks %s with %s, but misses.", user.Name(), target.Name(), w.def.Name), nil
	}

	damage := w.roller.Roll(w.damage).Total()
	if damage < 0 {
		damage = 0
	}
	target.SetHP(target.HP() - damage)
	return fmt.Sprintf("%s hits %s with %s for %d damage!", user.Name(), target.Name(), w.def.Name, damage), nil
}

// AtPostUse is a no-op; weapons carry no expendable state.
func (w *Weapon) AtPostUse(_, _ combat.Combatant) {}
