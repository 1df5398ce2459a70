package npc

import (
	"github.com/google/uuid"

	"github.com/emberfell/skirmish/internal/game/combat"
	"github.com/emberfell/skirmish/internal/game/ruleset"
)

// Instance is a live NPC entity occupying an arena. It implements the
// combatant contract used by the combat engine.
type Instance struct {
	// ID uniquely identifies this runtime instance.
	ID string
	// TemplateID is the source template's ID.
	TemplateID string
	// DisplayName is copied from the template.
	DisplayName string
	// Description is copied from the template.
	Description string
	// ArenaID is the arena this instance currently occupies.
	ArenaID string
	// CurrentHP is the instance's current hit points.
	CurrentHP int
	// HPMax is the instance's maximum hit points.
	HPMax int
	// Bonuses are the ability bonuses copied from the template.
	Bonuses ruleset.Abilities
	// Courage and StuntChance are the behavior knobs copied from the
	// template; the planner reads them each turn.
	Courage     float64
	StuntChance float64
	// OnDefeatScript is the arena-script hook copied from the template.
	OnDefeatScript string

	wielded combat.Item

	// DefeatHook, when set, runs when the instance drops in battle. The
	// game server wires scripted death behavior here.
	DefeatHook func(i *Instance)
}

// NewInstance creates a live NPC instance from a template, placed in
// arenaID and wielding weapon (which may be nil).
//
// Precondition: tmpl must be non-nil and valid; arenaID must be non-empty.
// Postcondition: CurrentHP equals tmpl.MaxHP and the ID is unique.
func NewInstance(tmpl *Template, arenaID string, weapon combat.Item) *Instance {
	return &Instance{
		ID:             uuid.NewString(),
		TemplateID:     tmpl.ID,
		DisplayName:    tmpl.Name,
		Description:    tmpl.Description,
		ArenaID:        arenaID,
		CurrentHP:      tmpl.MaxHP,
		HPMax:          tmpl.MaxHP,
		Bonuses:        tmpl.Abilities,
		Courage:        tmpl.Courage,
		StuntChance:    tmpl.StuntChance,
		OnDefeatScript: tmpl.OnDefeatScript,
		wielded:        weapon,
	}
}

func (i *Instance) UID() string                  { return i.ID }
func (i *Instance) Name() string                 { return i.DisplayName }
func (i *Instance) HP() int                      { return i.CurrentHP }
func (i *Instance) SetHP(hp int)                 { i.CurrentHP = hp }
func (i *Instance) MaxHP() int                   { return i.HPMax }
func (i *Instance) IsPlayer() bool               { return false }
func (i *Instance) Abilities() ruleset.Abilities { return i.Bonuses }
func (i *Instance) Wielded() combat.Item         { return i.wielded }
func (i *Instance) SetWielded(item combat.Item)  { i.wielded = item }

// OnDefeat runs the configured defeat hook. NPCs get no death save.
func (i *Instance) OnDefeat() {
	if i.DefeatHook != nil {
		i.DefeatHook(i)
	}
}

// IsDead reports whether the instance has zero or fewer hit points.
func (i *Instance) IsDead() bool {
	return i.CurrentHP <= 0
}

// HealthDescription returns a visible health state string suitable for
// examine output.
func (i *Instance) HealthDescription() string {
	return ruleset.HurtDescription(i.CurrentHP, i.HPMax)
}
