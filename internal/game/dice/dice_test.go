package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/emberfell/skirmish/internal/game/dice"
)

// seqSource replays a fixed sequence of die faces (1-based values).
type seqSource struct {
	faces []int
	i     int
}

func (s *seqSource) Intn(n int) int {
	v := s.faces[s.i%len(s.faces)]
	s.i++
	return (v - 1) % n
}

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{
		Expression: "2d6+3",
		Kept:       []int{4, 5},
		Modifier:   3,
	}
	assert.Equal(t, 12, r.Total())
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{
		Expression: "2d6+3",
		Kept:       []int{4, 5},
		Modifier:   3,
	}
	s := r.String()
	require.Contains(t, s, "2d6+3")
	require.Contains(t, s, "[4 5]")
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", s)
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Kept: []int{4}}
	assert.Panics(t, func() { _ = r.String() })
}

func TestRoll_SimpleExpression(t *testing.T) {
	src := &seqSource{faces: []int{4, 5}}
	r := dice.Roll(dice.MustParse("2d6+3"), src)
	assert.Equal(t, []int{4, 5}, r.Kept)
	assert.Empty(t, r.Dropped)
	assert.Equal(t, 12, r.Total())
}

func TestRoll_KeepHighest(t *testing.T) {
	src := &seqSource{faces: []int{3, 17}}
	r := dice.Roll(dice.MustParse("2d20kh1"), src)
	assert.Equal(t, []int{17}, r.Kept)
	assert.Equal(t, []int{3}, r.Dropped)
	assert.Equal(t, 17, r.Total())
}

func TestRoll_KeepLowest(t *testing.T) {
	src := &seqSource{faces: []int{3, 17}}
	r := dice.Roll(dice.MustParse("2d20kl1"), src)
	assert.Equal(t, []int{3}, r.Kept)
	assert.Equal(t, 3, r.Total())
}

func TestRollExpr_ParseError(t *testing.T) {
	_, err := dice.RollExpr("banana", dice.NewCryptoSource())
	assert.Error(t, err)
}

func TestRoller_RollExpr(t *testing.T) {
	r := dice.NewRoller(&seqSource{faces: []int{6}}, zaptest.NewLogger(t))
	result, err := r.RollExpr("d6")
	require.NoError(t, err)
	assert.Equal(t, 6, result.Total())
}

func TestRoll_Property_TotalWithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 8).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		mod := rapid.IntRange(-5, 5).Draw(rt, "mod")

		expr := dice.MustParse(fmt.Sprintf("%dd%d%+d", count, sides, mod))
		r := dice.Roll(expr, dice.NewCryptoSource())

		assert.GreaterOrEqual(rt, r.Total(), count+mod)
		assert.LessOrEqual(rt, r.Total(), count*sides+mod)
		assert.Len(rt, r.Kept, count)
	})
}

func TestRoll_Property_KeepHighestNeverLowersTotal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		faces := rapid.SliceOfN(rapid.IntRange(1, 20), 2, 2).Draw(rt, "faces")

		high := dice.Roll(dice.MustParse("2d20kh1"), &seqSource{faces: faces})
		low := dice.Roll(dice.MustParse("2d20kl1"), &seqSource{faces: faces})
		assert.GreaterOrEqual(rt, high.Total(), low.Total())
	})
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestParse(t *testing.T) {
	tests := []struct {
		expr    string
		want    dice.Expression
		wantErr bool
	}{
		{expr: "d20", want: dice.Expression{Raw: "d20", Count: 1, Sides: 20}},
		{expr: "2d6", want: dice.Expression{Raw: "2d6", Count: 2, Sides: 6}},
		{expr: "2d6+3", want: dice.Expression{Raw: "2d6+3", Count: 2, Sides: 6, Modifier: 3}},
		{expr: "4d8-2", want: dice.Expression{Raw: "4d8-2", Count: 4, Sides: 8, Modifier: -2}},
		{expr: "2d20kh1", want: dice.Expression{Raw: "2d20kh1", Count: 2, Sides: 20, KeepHighest: 1}},
		{expr: "2d20kl1+4", want: dice.Expression{Raw: "2d20kl1+4", Count: 2, Sides: 20, KeepLowest: 1, Modifier: 4}},
		{expr: "4d6kh3", want: dice.Expression{Raw: "4d6kh3", Count: 4, Sides: 6, KeepHighest: 3}},
		{expr: "", wantErr: true},
		{expr: "20", wantErr: true},
		{expr: "0d6", wantErr: true},
		{expr: "2d1", wantErr: true},
		{expr: "2d20kh2", wantErr: true}, // keep must be < count
		{expr: "2d20kl0", wantErr: true},
		{expr: "2dbanana", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := dice.Parse(tc.expr)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Property_RoundTripSimpleForms(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 20).Draw(rt, "count")
		sides := rapid.IntRange(2, 100).Draw(rt, "sides")
		mod := rapid.IntRange(-20, 20).Draw(rt, "mod")

		expr := fmt.Sprintf("%dd%d", count, sides)
		if mod != 0 {
			expr = fmt.Sprintf("%s%+d", expr, mod)
		}
		got, err := dice.Parse(expr)
		require.NoError(rt, err)
		assert.Equal(rt, count, got.Count)
		assert.Equal(rt, sides, got.Sides)
		assert.Equal(rt, mod, got.Modifier)
	})
}

func TestMustParse_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("not dice") })
	assert.NotPanics(t, func() { dice.MustParse("3d8+1") })
}

func TestRollResult_String_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		expr := rapid.StringMatching(`[0-9]+d[0-9]+[+-][0-9]+`).Draw(rt, "expression")
		kept := rapid.SliceOfN(rapid.IntRange(1, 20), 1, 10).Draw(rt, "kept")
		modifier := rapid.IntRange(-100, 100).Draw(rt, "modifier")

		r := dice.RollResult{Expression: expr, Kept: kept, Modifier: modifier}
		s := r.String()
		assert.True(rt, strings.Contains(s, expr))
		assert.Contains(rt, s, fmt.Sprintf("%d", r.Total()))
	})
}
