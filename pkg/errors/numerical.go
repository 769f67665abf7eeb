package errors

import (
	"math"
)

// SafeDivide returns numerator/denominator, or 0 when the denominator is zero.
// Tiny non-zero denominators are divided by as usual.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CheckFinite returns a ModelError when any value is NaN or infinite.
// The solver uses it to reject matrices it cannot optimise over.
func CheckFinite(op string, values []float64) error {
	for i, v := range values {
		if !IsFinite(v) {
			return NewModelError(op, "non-finite input", Newf("value %v at flat index %d", v, i))
		}
	}
	return nil
}
