// Package gradcheck compares hand-derived gradients with central finite
// differences.
package gradcheck

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
)

// DefaultStep is the finite-difference step used when none is given.
const DefaultStep = 1e-6

// Numerical returns ∂f/∂x at x using the central difference formula.
// f must not modify its argument.
func Numerical(f func(x []float64) float64, x []float64, step float64) []float64 {
	if step <= 0 {
		step = DefaultStep
	}
	return fd.Gradient(nil, f, x, &fd.Settings{
		Formula: fd.Central,
		Step:    step,
	})
}

// RelativeError returns max_i |a_i - n_i| / max(1, |a_i| + |n_i|).
func RelativeError(analytic, numeric []float64) float64 {
	if len(analytic) != len(numeric) {
		panic(fmt.Sprintf("gradcheck: length mismatch %d != %d", len(analytic), len(numeric)))
	}
	worst := 0.0
	for i := range analytic {
		diff := math.Abs(analytic[i] - numeric[i])
		scale := math.Max(1, math.Abs(analytic[i])+math.Abs(numeric[i]))
		worst = math.Max(worst, diff/scale)
	}
	return worst
}

// Result is the outcome of checking one gradient.
type Result struct {
	Name      string
	MaxRelErr float64
	Tolerance float64
}

// Passed reports whether the error is within tolerance.
func (r Result) Passed() bool {
	return r.MaxRelErr <= r.Tolerance
}

// String formats the result as a single report line.
func (r Result) String() string {
	status := "ok"
	if !r.Passed() {
		status = "FAIL"
	}
	return fmt.Sprintf("%-24s max rel err %.3e (tol %.0e) %s", r.Name, r.MaxRelErr, r.Tolerance, status)
}

// Check compares analytic with the numerical gradient of f at x.
func Check(name string, f func(x []float64) float64, x, analytic []float64, step, tol float64) Result {
	return Result{
		Name:      name,
		MaxRelErr: RelativeError(analytic, Numerical(f, x, step)),
		Tolerance: tol,
	}
}
