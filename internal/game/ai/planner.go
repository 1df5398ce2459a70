// Package ai selects combat actions for NPC combatants. The planner runs
// once per NPC per decision window and produces an ordinary action
// request; NPCs go through the same submission path as players.
package ai

import (
	"github.com/emberfell/skirmish/internal/game/combat"
	"github.com/emberfell/skirmish/internal/game/ruleset"
)

// Profile holds the behavior knobs the planner reads, usually copied from
// an NPC template.
type Profile struct {
	// Courage is in [0, 1]: the combatant starts fleeing once its health
	// fraction drops below 1 - Courage.
	Courage float64
	// StuntChance is in [0, 1]: the per-turn probability of opening with
	// a stunt while unhurt.
	StuntChance float64
}

// Planner decides the next action for an NPC each turn.
type Planner struct {
	src combat.Source
}

// NewPlanner creates a planner drawing randomness from src.
//
// Precondition: src must be non-nil.
func NewPlanner(src combat.Source) *Planner {
	return &Planner{src: src}
}

// Decide returns the action request self should queue this turn.
//
// The policy, in priority order: hold when there is nothing to fight;
// flee when hurt past the courage threshold; occasionally set up an
// advantage stunt while unhurt; otherwise attack the weakest enemy.
//
// Postcondition: the returned request passes Validate against the
// session's current membership.
func (p *Planner) Decide(s *combat.Session, self combat.Combatant, profile Profile) combat.Request {
	_, enemies := s.Sides(self)
	if len(enemies) == 0 {
		return combat.HoldRequest()
	}

	if self.MaxHP() > 0 {
		frac := float64(self.HP()) / float64(self.MaxHP())
		if frac < 1-profile.Courage {
			return combat.Request{Kind: combat.KindFlee}
		}

		target := weakest(enemies)
		if frac >= 1 && p.chance(profile.StuntChance) {
			return combat.Request{
				Kind:           combat.KindStunt,
				Recipient:      self.UID(),
				Target:         target.UID(),
				Advantage:      true,
				StuntAbility:   ruleset.Strength,
				DefenseAbility: ruleset.Dexterity,
			}
		}
		return combat.Request{Kind: combat.KindAttack, Target: target.UID()}
	}

	return combat.Request{Kind: combat.KindAttack, Target: weakest(enemies).UID()}
}

// weakest returns the enemy with the lowest health, first wins ties.
func weakest(enemies []combat.Combatant) combat.Combatant {
	best := enemies[0]
	for _, e := range enemies[1:] {
		if e.HP() < best.HP() {
			best = e
		}
	}
	return best
}

// chance draws a percentile roll against probability p01.
func (p *Planner) chance(p01 float64) bool {
	if p01 <= 0 {
		return false
	}
	if p01 >= 1 {
		return true
	}
	return p.src.Intn(100) < int(p01*100)
}
