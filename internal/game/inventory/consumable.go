package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/emberfell/skirmish/internal/game/combat"
	"github.com/emberfell/skirmish/internal/game/dice"
)

// Effect constants for ConsumableDef.Effect.
const (
	EffectHeal = "heal"
	EffectHarm = "harm"
)

// validEffects is the set of valid consumable effects.
var validEffects = map[string]bool{
	EffectHeal: true,
	EffectHarm: true,
}

// ConsumableDef defines the static properties of a consumable item loaded
// from YAML.
type ConsumableDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Effect      string `yaml:"effect"`
	EffectDice  string `yaml:"effect_dice"`
	Uses        int    `yaml:"uses"`
}

// Validate checks that the ConsumableDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ConsumableDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validEffects[d.Effect] {
		errs = append(errs, fmt.Errorf("Effect must be one of heal, harm; got %q", d.Effect))
	}
	if _, err := dice.Parse(d.EffectDice); err != nil {
		errs = append(errs, fmt.Errorf("EffectDice: %w", err))
	}
	if d.Uses < 1 {
		errs = append(errs, errors.New("Uses must be >= 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("consumable validation failed: %v", errs)
	}
	return nil
}

// LoadConsumables reads all *.yaml and *.yml files from dir, parses each
// as a ConsumableDef, validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ConsumableDefs or the first encountered
// error.
func LoadConsumables(dir string) ([]*ConsumableDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadConsumables: cannot read directory %q: %w", dir, err)
	}

	var consumables []*ConsumableDef
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadConsumables: cannot read file %q: %w", path, err)
		}
		var d ConsumableDef
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadConsumables: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadConsumables: invalid consumable in %q: %w", path, err)
		}
		consumables = append(consumables, &d)
	}
	return consumables, nil
}

// Consumable is one owned instance of a ConsumableDef with its remaining
// uses. Instances are not shared: each owner spawns their own.
type Consumable struct {
	def       *ConsumableDef
	effect    dice.Expression
	roller    *dice.Roller
	remaining int
}

// NewConsumable spawns a fresh instance of def with full uses.
//
// Precondition: def must pass Validate; roller must be non-nil.
func NewConsumable(def *ConsumableDef, roller *dice.Roller) (*Consumable, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	effect, err := dice.Parse(def.EffectDice)
	if err != nil {
		return nil, err
	}
	return &Consumable{def: def, effect: effect, roller: roller, remaining: def.Uses}, nil
}

func (c *Consumable) ID() string   { return c.def.ID }
func (c *Consumable) Name() string { return c.def.Name }

// Remaining returns how many uses are left.
func (c *Consumable) Remaining() int { return c.remaining }

// AtPreUse permits use while charges remain.
func (c *Consumable) AtPreUse(_, _ combat.Combatant) bool { return c.remaining > 0 }

// Use applies the consumable's effect to the target.
//
// Postcondition: healing never raises health above the target's maximum.
func (c *Consumable) Use(user, target combat.Combatant, _, _ bool) (string, error) {
	amount := c.roller.Roll(c.effect).Total()
	if amount < 0 {
		amount = 0
	}

	switch c.def.Effect {
	case EffectHeal:
		hp := target.HP() + amount
		if hp > target.MaxHP() {
			hp = target.MaxHP()
		}
		target.SetHP(hp)
		if user.UID() == target.UID() {
			return fmt.Sprintf("%s uses %s, restoring %d health.", user.Name(), c.def.Name, amount), nil
		}
		return fmt.Sprintf("%s uses %s on %s, restoring %d health.", user.Name(), c.def.Name, target.Name(), amount), nil
	case EffectHarm:
		target.SetHP(target.HP() - amount)
		return fmt.Sprintf("%s uses %s on %s for %d damage!", user.Name(), c.def.Name, target.Name(), amount), nil
	default:
		return "", fmt.Errorf("inventory: consumable %q has unknown effect %q", c.def.ID, c.def.Effect)
	}
}

// AtPostUse expends one charge.
func (c *Consumable) AtPostUse(_, _ combat.Combatant) {
	if c.remaining > 0 {
		c.remaining--
	}
}
