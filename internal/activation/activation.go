// Package activation provides the elementwise nonlinearities used by the
// recurrent and LSTM operations.
//
// Every activation exposes its local derivative as a function of the
// activated value y = f(x), not of x. For tanh that is 1 - y², for the
// logistic sigmoid y(1 - y). Callers cache activated outputs and feed them
// back into Backward.
package activation

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUnknownActivation is returned by Get for names not in the catalog.
var ErrUnknownActivation = errors.New("unknown activation")

// Activation is an elementwise function with a derivative expressed in
// terms of its output. dst and src may be the same slice.
type Activation interface {
	// Name returns the catalog key.
	Name() string
	// Forward writes f(src[i]) into dst[i].
	Forward(dst, src []float64)
	// Backward writes f'(x[i]) into dst[i] given activated[i] = f(x[i]).
	Backward(dst, activated []float64)
}

var catalog = map[string]func() Activation{
	"linear":   func() Activation { return Linear{} },
	"sigmoid":  func() Activation { return Sigmoid{} },
	"tanh":     func() Activation { return Tanh{} },
	"relu":     func() Activation { return ReLU{} },
	"softplus": func() Activation { return Softplus{} },
}

// Get returns the activation registered under name.
func Get(name string) (Activation, error) {
	ctor, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownActivation, name, Names())
	}
	return ctor(), nil
}

// Names returns the catalog keys in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Linear is the identity function.
type Linear struct{}

// Name returns "linear".
func (Linear) Name() string { return "linear" }

// Forward copies src into dst.
func (Linear) Forward(dst, src []float64) {
	copy(dst, src)
}

// Backward fills dst with ones.
func (Linear) Backward(dst, activated []float64) {
	for i := range activated {
		dst[i] = 1
	}
}

// Sigmoid is the logistic function σ(x) = 1 / (1 + exp(-x)).
// It is the fixed gate nonlinearity of the LSTM.
type Sigmoid struct{}

// Name returns "sigmoid".
func (Sigmoid) Name() string { return "sigmoid" }

// Forward applies σ elementwise.
func (Sigmoid) Forward(dst, src []float64) {
	for i, x := range src {
		if x >= 0 {
			dst[i] = 1 / (1 + math.Exp(-x))
		} else {
			// Same value, no overflow for large negative x.
			e := math.Exp(x)
			dst[i] = e / (1 + e)
		}
	}
}

// Backward computes σ'(x) = y(1 - y).
func (Sigmoid) Backward(dst, activated []float64) {
	for i, y := range activated {
		dst[i] = y * (1 - y)
	}
}

// Tanh is the hyperbolic tangent.
type Tanh struct{}

// Name returns "tanh".
func (Tanh) Name() string { return "tanh" }

// Forward applies tanh elementwise.
func (Tanh) Forward(dst, src []float64) {
	for i, x := range src {
		dst[i] = math.Tanh(x)
	}
}

// Backward computes tanh'(x) = 1 - y².
func (Tanh) Backward(dst, activated []float64) {
	for i, y := range activated {
		dst[i] = 1 - y*y
	}
}

// ReLU is max(0, x).
type ReLU struct{}

// Name returns "relu".
func (ReLU) Name() string { return "relu" }

// Forward applies max(0, x) elementwise.
func (ReLU) Forward(dst, src []float64) {
	for i, x := range src {
		if x > 0 {
			dst[i] = x
		} else {
			dst[i] = 0
		}
	}
}

// Backward is 1 where the output is positive and 0 elsewhere.
func (ReLU) Backward(dst, activated []float64) {
	for i, y := range activated {
		if y > 0 {
			dst[i] = 1
		} else {
			dst[i] = 0
		}
	}
}

// Softplus is log(1 + exp(x)).
type Softplus struct{}

// Name returns "softplus".
func (Softplus) Name() string { return "softplus" }

// Forward applies softplus elementwise.
func (Softplus) Forward(dst, src []float64) {
	for i, x := range src {
		// log1p(exp(x)) overflows for large x; softplus(x) = x + log1p(exp(-x)).
		if x > 0 {
			dst[i] = x + math.Log1p(math.Exp(-x))
		} else {
			dst[i] = math.Log1p(math.Exp(x))
		}
	}
}

// Backward computes softplus'(x) = σ(x) = 1 - exp(-y).
func (Softplus) Backward(dst, activated []float64) {
	for i, y := range activated {
		dst[i] = -math.Expm1(-y)
	}
}
