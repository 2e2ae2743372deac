// Package verify compares device results against host-computed references.
//
// The verifier is the pipeline's correctness backstop. The compiler only
// catches syntactic mistakes; the classic kernel bugs (an index computed
// from threadIdx alone, a missing bounds guard) compile cleanly and produce
// wrong numbers at runtime. Comparing against a host-side reference within
// a tolerance is what actually catches them.
//
// A failed comparison is a normal outcome, not a fault: floating-point
// mismatches are expected operational occurrences, reported as data for the
// kernel author to act on. Nothing in this package returns an error for a
// wrong answer.
package verify

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/orneryd/culaunch/pkg/pool"
)

// Result reports the outcome of one device-vs-reference comparison.
type Result struct {
	// Passed is true when MaxAbsError is below the tolerance.
	Passed bool

	// MaxAbsError is the largest elementwise absolute difference.
	MaxAbsError float64
}

func (r Result) String() string {
	if r.Passed {
		return fmt.Sprintf("PASSED (max abs error %.3g)", r.MaxAbsError)
	}
	return fmt.Sprintf("FAILED (max abs error %.3g)", r.MaxAbsError)
}

// Compare checks got against want within tol. It never fails exceptionally:
//   - empty inputs trivially pass with zero error
//   - mismatched lengths never pass (MaxAbsError is +Inf)
func Compare(got, want []float32, tol float64) Result {
	if len(got) != len(want) {
		return Result{Passed: false, MaxAbsError: math.Inf(1)}
	}
	if len(got) == 0 {
		return Result{Passed: true}
	}

	diff := pool.GetFloat64(len(got))
	defer pool.PutFloat64(diff)
	for i := range got {
		diff[i] = math.Abs(float64(got[i]) - float64(want[i]))
	}
	maxErr := floats.Max(diff)

	return Result{Passed: maxErr < tol, MaxAbsError: maxErr}
}
