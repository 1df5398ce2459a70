package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/emberfell/skirmish/internal/game/dice"
)

func TestOpposedCheck_StraightRolls(t *testing.T) {
	// Actor rolls 15, defender rolls 10.
	o := dice.NewOpposedRoller(&seqSource{faces: []int{15, 10}}, zaptest.NewLogger(t))
	success, margin, narration := o.OpposedCheck("Alice", "Grak", 2, 1, false, false)

	assert.True(t, success)
	assert.Equal(t, 6, margin) // (15+2) - (10+1)
	assert.Contains(t, narration, "Alice rolls 17")
	assert.Contains(t, narration, "Grak's 11")
}

func TestOpposedCheck_DefenderWinsTies(t *testing.T) {
	o := dice.NewOpposedRoller(&seqSource{faces: []int{10, 10}}, zaptest.NewLogger(t))
	success, margin, _ := o.OpposedCheck("Alice", "Grak", 0, 0, false, false)

	assert.False(t, success)
	assert.Equal(t, 0, margin)
}

func TestOpposedCheck_AdvantageKeepsBestOfTwo(t *testing.T) {
	// Actor draws 3 then 18, keeps 18; defender rolls 10.
	o := dice.NewOpposedRoller(&seqSource{faces: []int{3, 18, 10}}, zaptest.NewLogger(t))
	success, margin, _ := o.OpposedCheck("Alice", "Grak", 0, 0, true, false)

	assert.True(t, success)
	assert.Equal(t, 8, margin)
}

func TestOpposedCheck_DisadvantageKeepsWorstOfTwo(t *testing.T) {
	o := dice.NewOpposedRoller(&seqSource{faces: []int{3, 18, 10}}, zaptest.NewLogger(t))
	success, margin, _ := o.OpposedCheck("Alice", "Grak", 0, 0, false, true)

	assert.False(t, success)
	assert.Equal(t, -7, margin)
}

func TestOpposedCheck_AdvantageAndDisadvantageCancel(t *testing.T) {
	// A single actor die means the keep expressions were not used.
	o := dice.NewOpposedRoller(&seqSource{faces: []int{15, 10}}, zaptest.NewLogger(t))
	success, margin, _ := o.OpposedCheck("Alice", "Grak", 0, 0, true, true)

	assert.True(t, success)
	assert.Equal(t, 5, margin)
}

func TestOpposedCheck_Property_SuccessIffPositiveMargin(t *testing.T) {
	logger := zaptest.NewLogger(t)
	rapid.Check(t, func(rt *rapid.T) {
		actorBonus := rapid.IntRange(-2, 10).Draw(rt, "actor_bonus")
		defenderBonus := rapid.IntRange(-2, 10).Draw(rt, "defender_bonus")
		advantage := rapid.Bool().Draw(rt, "advantage")
		disadvantage := rapid.Bool().Draw(rt, "disadvantage")

		o := dice.NewOpposedRoller(dice.NewCryptoSource(), logger)
		success, margin, narration := o.OpposedCheck("A", "D", actorBonus, defenderBonus, advantage, disadvantage)

		assert.Equal(rt, margin > 0, success)
		assert.NotEmpty(rt, narration)
	})
}

func TestDeathSave_InRange(t *testing.T) {
	o := dice.NewOpposedRoller(dice.NewCryptoSource(), zaptest.NewLogger(t))
	for i := 0; i < 100; i++ {
		roll := o.DeathSave()
		assert.GreaterOrEqual(t, roll, 1)
		assert.LessOrEqual(t, roll, 20)
	}
}
