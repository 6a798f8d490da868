// Package simtest provides utility functions for testing icsim simulations.
package simtest

import "math"

// floatTolerance is the default absolute tolerance AlmostEqual uses; it is
// deliberately looser than the interpreter's own approxEqual so tests don't
// become sensitive to the last bit of floating-point drift across a
// sequence of gas-mixture operations.
const floatTolerance = 1e-6

// AlmostEqual reports whether a and b differ by no more than tolerance.
func AlmostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// Close is AlmostEqual with the package's default tolerance.
func Close(a, b float64) bool {
	return AlmostEqual(a, b, floatTolerance)
}
