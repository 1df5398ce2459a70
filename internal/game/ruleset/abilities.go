// Package ruleset defines the Emberfell table rules shared across the game:
// the six abilities, hurt levels, and death saves.
package ruleset

import (
	"fmt"
	"strings"
)

// Ability identifies one of the six core abilities. Ability values are the
// short forms used in content YAML and player commands.
type Ability string

// The six core abilities.
const (
	Strength     Ability = "str"
	Dexterity    Ability = "dex"
	Constitution Ability = "con"
	Intelligence Ability = "int"
	Wisdom       Ability = "wis"
	Charisma     Ability = "cha"
)

// AllAbilities lists every ability in display order.
var AllAbilities = []Ability{
	Strength, Dexterity, Constitution,
	Intelligence, Wisdom, Charisma,
}

// longForms maps spelled-out ability names to their short form.
var longForms = map[string]Ability{
	"strength":     Strength,
	"dexterity":    Dexterity,
	"constitution": Constitution,
	"intelligence": Intelligence,
	"wisdom":       Wisdom,
	"charisma":     Charisma,
}

// IsValid reports whether a is one of the six core abilities.
func (a Ability) IsValid() bool {
	switch a {
	case Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma:
		return true
	default:
		return false
	}
}

// String returns the short form ("str", "dex", ...).
func (a Ability) String() string {
	return string(a)
}

// ParseAbility resolves a short or long ability name, case-insensitively.
//
// Postcondition: Returns (ability, true) on a recognized name, or ("", false).
func ParseAbility(s string) (Ability, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	if a := Ability(lower); a.IsValid() {
		return a, true
	}
	if a, ok := longForms[lower]; ok {
		return a, true
	}
	return "", false
}

// Abilities holds a combatant's six ability bonuses. Bonuses are added
// directly to d20 rolls; they are not scores.
type Abilities struct {
	Strength     int `yaml:"str"`
	Dexterity    int `yaml:"dex"`
	Constitution int `yaml:"con"`
	Intelligence int `yaml:"int"`
	Wisdom       int `yaml:"wis"`
	Charisma     int `yaml:"cha"`
}

// Bonus returns the bonus for the given ability. Unrecognized abilities
// contribute no bonus.
func (ab Abilities) Bonus(a Ability) int {
	switch a {
	case Strength:
		return ab.Strength
	case Dexterity:
		return ab.Dexterity
	case Constitution:
		return ab.Constitution
	case Intelligence:
		return ab.Intelligence
	case Wisdom:
		return ab.Wisdom
	case Charisma:
		return ab.Charisma
	default:
		return 0
	}
}

// Validate checks that every bonus is within the playable range.
//
// Postcondition: Returns nil iff all bonuses are within [MinBonus, MaxBonus].
func (ab Abilities) Validate() error {
	for _, a := range AllAbilities {
		b := ab.Bonus(a)
		if b < MinBonus || b > MaxBonus {
			return fmt.Errorf("ability %s bonus %d out of range [%d, %d]", a, b, MinBonus, MaxBonus)
		}
	}
	return nil
}

// Bonus range for any ability.
const (
	MinBonus = -2
	MaxBonus = 10
)
