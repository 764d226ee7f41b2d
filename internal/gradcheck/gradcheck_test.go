package gradcheck

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/brainforge/internal/ops"
)

func TestNumerical_Quadratic(t *testing.T) {
	// f(x, y) = x² + 3xy, ∇f = (2x + 3y, 3x)
	f := func(v []float64) float64 { return v[0]*v[0] + 3*v[0]*v[1] }
	grad := Numerical(f, []float64{2, -1}, 0)

	require.Len(t, grad, 2)
	assert.InDelta(t, 1.0, grad[0], 1e-6)
	assert.InDelta(t, 6.0, grad[1], 1e-6)
}

func TestRelativeError(t *testing.T) {
	assert.Equal(t, 0.0, RelativeError([]float64{1, 2}, []float64{1, 2}))
	// Small magnitudes are compared absolutely.
	assert.InDelta(t, 1e-3, RelativeError([]float64{0}, []float64{1e-3}), 1e-15)
	// Large magnitudes are compared relatively.
	assert.InDelta(t, 1.0/201, RelativeError([]float64{100}, []float64{101}), 1e-12)
	assert.Panics(t, func() { RelativeError([]float64{1}, nil) })
}

func TestResult(t *testing.T) {
	ok := Result{Name: "x", MaxRelErr: 1e-9, Tolerance: 1e-5}
	bad := Result{Name: "y", MaxRelErr: 1e-2, Tolerance: 1e-5}

	assert.True(t, ok.Passed())
	assert.False(t, bad.Passed())
	assert.Contains(t, ok.String(), "ok")
	assert.Contains(t, bad.String(), "FAIL")
	assert.False(t, math.IsNaN(ok.MaxRelErr))
}

func TestSuite_AllOperationsPass(t *testing.T) {
	for _, act := range []string{"tanh", "sigmoid", "linear"} {
		t.Run(act, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Activation = act
			opts.Config = ops.Config{}

			results, err := Suite(opts)
			require.NoError(t, err)
			require.NotEmpty(t, results)
			for _, r := range results {
				assert.True(t, r.Passed(), r.String())
			}
		})
	}
}

func TestSuite_UnknownActivation(t *testing.T) {
	opts := DefaultOptions()
	opts.Activation = "nope"
	_, err := Suite(opts)
	require.Error(t, err)
}
