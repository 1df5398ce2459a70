package ruleset

// Death save parameters. A defeated player rolls d20 + constitution bonus
// against DeathSaveDC; success means they are knocked out instead of killed.
const (
	DeathSaveDC  = 13
	DeathSaveDie = 20
)

// DeathSaveSucceeds reports whether a death save roll keeps the combatant
// alive.
//
// Precondition: roll is the raw d20 result, 1..20.
func DeathSaveSucceeds(roll, conBonus int) bool {
	if roll == 1 {
		return false
	}
	if roll == DeathSaveDie {
		return true
	}
	return roll+conBonus >= DeathSaveDC
}

// HurtDescription returns a visible health state string for display in
// battle reports and examine output.
//
// Postcondition: Returns a non-empty string.
func HurtDescription(hp, maxHP int) string {
	if hp <= 0 {
		return "down"
	}
	if maxHP <= 0 {
		return "unharmed"
	}
	pct := float64(hp) / float64(maxHP)
	switch {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.85:
		return "barely scratched"
	case pct >= 0.60:
		return "lightly wounded"
	case pct >= 0.40:
		return "moderately wounded"
	case pct >= 0.20:
		return "heavily wounded"
	default:
		return "critically wounded"
	}
}
