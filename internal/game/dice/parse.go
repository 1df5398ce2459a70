package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is a parsed dice expression ready to be rolled.
//
// Invariant: Count >= 1 and Sides >= 2 after a successful Parse; at most
// one of KeepHighest and KeepLowest is non-zero.
type Expression struct {
	Raw         string // original input string
	Count       int    // number of dice
	Sides       int    // faces per die
	Modifier    int    // flat modifier (may be negative)
	KeepHighest int    // if > 0, keep only the N highest dice (e.g. 2d20kh1)
	KeepLowest  int    // if > 0, keep only the N lowest dice (e.g. 2d20kl1)
}

// Parse parses a dice expression string into an Expression.
// Supported forms: "d20", "2d6", "2d6+3", "4d8-2", "2d20kh1", "2d20kl1+4".
//
// Precondition: expr must be non-empty.
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	if expr == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}

	raw := expr
	s := strings.ToLower(expr)

	dIdx := strings.Index(s, "d")
	if dIdx < 0 {
		return Expression{}, fmt.Errorf("dice: missing 'd' in expression %q", raw)
	}

	// Count before 'd'; omitted means one die.
	count := 1
	if countStr := s[:dIdx]; countStr != "" {
		var err error
		count, err = strconv.Atoi(countStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: %w", raw, err)
		}
		if count <= 0 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: must be >= 1", raw)
		}
	}

	rest := s[dIdx+1:]

	// Extract a keep suffix ("kh<N>" or "kl<N>") before the modifier.
	keepHighest, keepLowest := 0, 0
	for _, suffix := range []string{"kh", "kl"} {
		kIdx := strings.Index(rest, suffix)
		if kIdx < 0 {
			continue
		}
		keepPart := rest[kIdx+2:]
		rest = rest[:kIdx]

		// The keep number may carry a trailing modifier; split it off and
		// re-attach it to rest.
		if modOffset := modifierOffset(keepPart); modOffset >= 0 {
			rest += keepPart[modOffset:]
			keepPart = keepPart[:modOffset]
		}

		keep, err := strconv.Atoi(keepPart)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid %s value in %q: %w", suffix, raw, err)
		}
		if keep <= 0 || keep >= count {
			return Expression{}, fmt.Errorf("dice: %s value %d must be > 0 and < count %d in %q", suffix, keep, count, raw)
		}
		if suffix == "kh" {
			keepHighest = keep
		} else {
			keepLowest = keep
		}
		break
	}

	// Sides and optional modifier.
	sidesStr, modStr := rest, ""
	if modOffset := modifierOffset(rest); modOffset >= 0 {
		sidesStr, modStr = rest[:modOffset], rest[modOffset:]
	}

	sides, err := strconv.Atoi(sidesStr)
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: %w", raw, err)
	}
	if sides < 2 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: must be >= 2", raw)
	}

	modifier := 0
	if modStr != "" {
		modifier, err = strconv.Atoi(modStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
		}
	}

	return Expression{
		Raw:         raw,
		Count:       count,
		Sides:       sides,
		Modifier:    modifier,
		KeepHighest: keepHighest,
		KeepLowest:  keepLowest,
	}, nil
}

// modifierOffset returns the index of the first '+' or '-' past position 0,
// or -1. Position 0 is skipped so a leading sign is not mistaken for a
// modifier separator.
func modifierOffset(s string) int {
	for i := 1; i < len(s); i++ {
		if s[i] == '+' || s[i] == '-' {
			return i
		}
	}
	return -1
}

// MustParse parses expr and panics on error. Useful for package-level
// constants.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}
