package dice

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// RollResult holds the full audit trail for a single roll evaluation.
//
// Postcondition: Total() == sum(Kept) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "2d6+3"
	Kept       []int  // die results that count toward the total
	Dropped    []int  // die results discarded by a keep suffix
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of the kept die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Kept {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Kept, r.Modifier, r.Total())
}

// Roll evaluates an Expression using the given Source.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: len(result.Kept) equals the keep value when a keep suffix
// is present, expr.Count otherwise.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}

	kept, dropped := rolled, []int(nil)
	switch {
	case expr.KeepHighest > 0:
		sorted := sortedCopy(rolled, true)
		kept, dropped = sorted[:expr.KeepHighest], sorted[expr.KeepHighest:]
	case expr.KeepLowest > 0:
		sorted := sortedCopy(rolled, false)
		kept, dropped = sorted[:expr.KeepLowest], sorted[expr.KeepLowest:]
	}

	return RollResult{
		Expression: expr.Raw,
		Kept:       kept,
		Dropped:    dropped,
		Modifier:   expr.Modifier,
	}
}

func sortedCopy(dice []int, descending bool) []int {
	cp := make([]int, len(dice))
	copy(cp, dice)
	if descending {
		sort.Sort(sort.Reverse(sort.IntSlice(cp)))
	} else {
		sort.Ints(cp)
	}
	return cp
}

// RollExpr parses expr and rolls it using src in a single call.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}

// Roller pairs a Source with a logger so every roll leaves a debug-level
// audit record with expression, kept dice, modifier, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a logged roller.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll evaluates expr and logs the result.
//
// Precondition: expr must come from Parse.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("kept", result.Kept),
		zap.Ints("dropped", result.Dropped),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr and rolls it, logging the result.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// Source exposes the roller's randomness provider for callers that need a
// raw Intn (turn-order shuffles).
func (r *Roller) Source() Source { return r.src }
