package inventory

import (
	"fmt"
	"path/filepath"

	"github.com/emberfell/skirmish/internal/game/combat"
	"github.com/emberfell/skirmish/internal/game/dice"
)

// Registry holds all loaded weapon and consumable definitions indexed by
// ID, plus the roller the runtime items use. Weapons are compiled once at
// registration and shared; consumables are spawned per owner.
type Registry struct {
	weapons     map[string]*Weapon
	consumables map[string]*ConsumableDef
	roller      *dice.Roller
}

// NewRegistry returns an empty Registry rolling with roller.
//
// Precondition: roller must be non-nil.
// Postcondition: all internal maps are initialised.
func NewRegistry(roller *dice.Roller) *Registry {
	return &Registry{
		weapons:     make(map[string]*Weapon),
		consumables: make(map[string]*ConsumableDef),
		roller:      roller,
	}
}

// RegisterWeapon compiles and adds w to the registry.
//
// Precondition: w must not be nil.
// Postcondition: Weapon(w.ID) succeeds; returns error if w.ID is already
// registered or w fails validation.
func (r *Registry) RegisterWeapon(w *WeaponDef) error {
	if _, exists := r.weapons[w.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterWeapon: weapon ID %q already registered", w.ID)
	}
	weapon, err := NewWeapon(w, r.roller)
	if err != nil {
		return fmt.Errorf("inventory: Registry.RegisterWeapon: %w", err)
	}
	r.weapons[w.ID] = weapon
	return nil
}

// RegisterConsumable adds d to the registry.
//
// Precondition: d must not be nil and must pass Validate.
// Postcondition: SpawnConsumable(d.ID) succeeds; returns error if d.ID is
// already registered.
func (r *Registry) RegisterConsumable(d *ConsumableDef) error {
	if _, exists := r.consumables[d.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterConsumable: consumable ID %q already registered", d.ID)
	}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("inventory: Registry.RegisterConsumable: %w", err)
	}
	r.consumables[d.ID] = d
	return nil
}

// LoadDir loads weapon and consumable definitions from the conventional
// content layout: dir/weapons and dir/consumables.
func (r *Registry) LoadDir(dir string) error {
	weapons, err := LoadWeapons(filepath.Join(dir, "weapons"))
	if err != nil {
		return err
	}
	for _, w := range weapons {
		if err := r.RegisterWeapon(w); err != nil {
			return err
		}
	}
	consumables, err := LoadConsumables(filepath.Join(dir, "consumables"))
	if err != nil {
		return err
	}
	for _, d := range consumables {
		if err := r.RegisterConsumable(d); err != nil {
			return err
		}
	}
	return nil
}

// Weapon returns the compiled weapon for the given id, or nil if not
// registered. The returned weapon is shared; it carries no mutable state.
func (r *Registry) Weapon(id string) *Weapon {
	return r.weapons[id]
}

// SpawnConsumable creates a fresh instance of the consumable with the
// given id, or nil if not registered.
func (r *Registry) SpawnConsumable(id string) *Consumable {
	def, ok := r.consumables[id]
	if !ok {
		return nil
	}
	c, err := NewConsumable(def, r.roller)
	if err != nil {
		// Unreachable: defs are validated at registration.
		return nil
	}
	return c
}

// Resolve returns a usable item for the given id, weapons first. Used when
// restoring persisted battle state.
//
// Postcondition: returns nil (not a typed nil) when the id is unknown.
func (r *Registry) Resolve(id string) combat.Item {
	if w := r.Weapon(id); w != nil {
		return w
	}
	if c := r.SpawnConsumable(id); c != nil {
		return c
	}
	return nil
}

// AllWeapons returns all registered weapons in unspecified order.
func (r *Registry) AllWeapons() []*Weapon {
	out := make([]*Weapon, 0, len(r.weapons))
	for _, w := range r.weapons {
		out = append(out, w)
	}
	return out
}
