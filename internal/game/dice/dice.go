// Package dice provides the randomness abstraction and roll-result types
// for the Arcanum combat engine.
package dice

import "fmt"

// RollResult holds the audit trail for a single die roll plus a flat modifier.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // e.g. "1d6+12"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"1d6+12 → [4] +12 = 16"
func (r RollResult) String() string {
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Source is the randomness provider for every roll in the engine.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Percent returns a uniform value in [0, 100) with a resolution of 0.01.
// It stands in for random()*100 in chance checks.
//
// Postcondition: 0 <= result < 100.
func Percent(src Source) float64 {
	return float64(src.Intn(10000)) / 100
}

// Between returns a uniform int in [lo, hi]. When hi <= lo, lo is returned
// without consuming randomness.
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Expression formats a single-die expression with a modifier, e.g. "1d6+3".
func Expression(sides, modifier int) string {
	if modifier == 0 {
		return fmt.Sprintf("1d%d", sides)
	}
	return fmt.Sprintf("1d%d%+d", sides, modifier)
}
