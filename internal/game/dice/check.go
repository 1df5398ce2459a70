package dice

import (
	"fmt"

	"go.uber.org/zap"
)

// Check expressions. Advantage rolls two d20 and keeps the best;
// disadvantage keeps the worst.
var (
	d20             = MustParse("d20")
	d20Advantage    = MustParse("2d20kh1")
	d20Disadvantage = MustParse("2d20kl1")
)

// OpposedRoller resolves opposed ability checks with d20 rolls. It is the
// oracle behind combat stunts.
type OpposedRoller struct {
	roller *Roller
}

// NewOpposedRoller creates an opposed-check roller over src.
//
// Precondition: src and logger must be non-nil.
func NewOpposedRoller(src Source, logger *zap.Logger) *OpposedRoller {
	return &OpposedRoller{roller: NewRoller(src, logger)}
}

// OpposedCheck rolls actor against defender. Both roll d20 plus their
// bonus; advantage and disadvantage apply to the actor's roll and cancel
// each other out. The defender wins ties, so margin > 0 iff success.
//
// Postcondition: margin == actor total - defender total.
func (o *OpposedRoller) OpposedCheck(actorName, defenderName string, actorBonus, defenderBonus int, advantage, disadvantage bool) (success bool, margin int, narration string) {
	expr := d20
	switch {
	case advantage && !disadvantage:
		expr = d20Advantage
	case disadvantage && !advantage:
		expr = d20Disadvantage
	}

	actorRoll := o.roller.Roll(expr)
	defenderRoll := o.roller.Roll(d20)

	actorTotal := actorRoll.Total() + actorBonus
	defenderTotal := defenderRoll.Total() + defenderBonus
	margin = actorTotal - defenderTotal
	success = margin > 0

	o.roller.logger.Debug("opposed check",
		zap.String("actor", actorName),
		zap.String("defender", defenderName),
		zap.Int("actor_total", actorTotal),
		zap.Int("defender_total", defenderTotal),
		zap.Bool("advantage", advantage),
		zap.Bool("disadvantage", disadvantage),
		zap.Bool("success", success),
	)

	narration = fmt.Sprintf("%s rolls %d (%+d) against %s's %d (%+d).",
		actorName, actorTotal, actorBonus, defenderName, defenderTotal, defenderBonus)
	return success, margin, narration
}

// DeathSave rolls the raw d20 for a defeated player's death save. The
// caller adds bonuses and compares against the DC.
//
// Postcondition: result is in [1, 20].
func (o *OpposedRoller) DeathSave() int {
	return o.roller.Roll(d20).Total()
}
