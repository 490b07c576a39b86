package vecadd

import (
	"fmt"
	"math"
)

// DefaultTolerance is the maximum absolute error accepted when Params does
// not override it.
const DefaultTolerance = 1e-6

// Verification is the reduction of an element-wise comparison to its
// worst-case absolute error.
type Verification struct {
	N         int     // elements compared
	MaxAbsErr float64 // worst absolute difference
	ArgMax    int     // index of the worst element, -1 when N == 0
}

// Verify compares the device result against the host reference element by
// element. got and want must be the same length. Differences are measured
// in float64 so float32 results near the type's limits do not overflow.
func Verify(got, want []float32) Verification {
	v := Verification{N: len(want), ArgMax: -1}

	for i := range want {
		diff := math.Abs(float64(got[i]) - float64(want[i]))
		if v.ArgMax < 0 || diff > v.MaxAbsErr {
			v.MaxAbsErr = diff
			v.ArgMax = i
		}
	}

	return v
}

// Within reports whether the worst-case error is inside the tolerance.
func (v Verification) Within(tol float64) bool {
	return v.MaxAbsErr <= tol
}

// String formats the verification outcome for diagnostics.
func (v Verification) String() string {
	if v.ArgMax < 0 {
		return "no elements verified"
	}
	return fmt.Sprintf("max abs err %e at index %d of %d", v.MaxAbsErr, v.ArgMax, v.N)
}
