package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/emberfell/skirmish/internal/game/dice"
	"github.com/emberfell/skirmish/internal/game/inventory"
)

func potionDef() *inventory.ConsumableDef {
	return &inventory.ConsumableDef{
		ID:         "healing-draught",
		Name:       "a healing draught",
		Effect:     inventory.EffectHeal,
		EffectDice: "1d8",
		Uses:       1,
	}
}

func bombDef() *inventory.ConsumableDef {
	return &inventory.ConsumableDef{
		ID:         "firebomb",
		Name:       "a firebomb",
		Effect:     inventory.EffectHarm,
		EffectDice: "2d6",
		Uses:       1,
	}
}

func newConsumable(t *testing.T, def *inventory.ConsumableDef, faces ...int) *inventory.Consumable {
	t.Helper()
	roller := dice.NewRoller(&seqSource{faces: faces}, zaptest.NewLogger(t))
	c, err := inventory.NewConsumable(def, roller)
	require.NoError(t, err)
	return c
}

func TestConsumableDef_Validate(t *testing.T) {
	assert.NoError(t, potionDef().Validate())

	bad := potionDef()
	bad.Effect = "explode"
	assert.Error(t, bad.Validate())

	bad = potionDef()
	bad.Uses = 0
	assert.Error(t, bad.Validate())

	bad = potionDef()
	bad.EffectDice = ""
	assert.Error(t, bad.Validate())
}

func TestConsumable_Heal_CapsAtMaxHealth(t *testing.T) {
	c := newConsumable(t, potionDef(), 8)
	drinker := &testFighter{uid: "a", name: "Alice", hp: 17, maxHP: 20}

	narration, err := c.Use(drinker, drinker, false, false)
	require.NoError(t, err)
	assert.Equal(t, 20, drinker.HP())
	assert.Contains(t, narration, "restoring 8 health")
}

func TestConsumable_Heal_OnAnotherCombatant(t *testing.T) {
	c := newConsumable(t, potionDef(), 5)
	healer := &testFighter{uid: "a", name: "Alice", hp: 20, maxHP: 20}
	patient := &testFighter{uid: "b", name: "Bert", hp: 4, maxHP: 20}

	narration, err := c.Use(healer, patient, false, false)
	require.NoError(t, err)
	assert.Equal(t, 9, patient.HP())
	assert.Contains(t, narration, "on Bert")
}

func TestConsumable_Harm_AppliesDamage(t *testing.T) {
	c := newConsumable(t, bombDef(), 4, 5)
	user := &testFighter{uid: "a", name: "Alice", hp: 20, maxHP: 20}
	target := &testFighter{uid: "b", name: "Grak", hp: 20, maxHP: 20}

	narration, err := c.Use(user, target, false, false)
	require.NoError(t, err)
	assert.Equal(t, 11, target.HP())
	assert.Contains(t, narration, "for 9 damage!")
}

func TestConsumable_ChargesExpire(t *testing.T) {
	c := newConsumable(t, potionDef(), 3)
	drinker := &testFighter{uid: "a", name: "Alice", hp: 10, maxHP: 20}

	require.True(t, c.AtPreUse(drinker, drinker))
	_, err := c.Use(drinker, drinker, false, false)
	require.NoError(t, err)
	c.AtPostUse(drinker, drinker)

	assert.Equal(t, 0, c.Remaining())
	assert.False(t, c.AtPreUse(drinker, drinker))
}
