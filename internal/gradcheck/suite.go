package gradcheck

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/brainforge/internal/activation"
	"github.com/born-ml/brainforge/internal/ops"
	"github.com/born-ml/brainforge/internal/tensor"
)

// Options configures Suite.
type Options struct {
	Seed       int64
	Step       float64
	Tolerance  float64
	Activation string
	Config     ops.Config
}

// DefaultOptions returns the settings used by the test suite.
func DefaultOptions() Options {
	return Options{
		Seed:       1,
		Step:       DefaultStep,
		Tolerance:  1e-5,
		Activation: "tanh",
		Config:     ops.DefaultConfig(),
	}
}

// Suite checks the backward pass of every operation against finite
// differences of a random linear loss L = Σ output·G on small shapes.
func Suite(opts Options) ([]Result, error) {
	act, err := activation.Get(opts.Activation)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(opts.Seed)) //nolint:gosec // reproducible test data

	var results []Result
	for _, check := range []func(*rand.Rand, activation.Activation, Options) ([]Result, error){
		checkConvolution,
		checkMaxPool,
		checkDense,
		checkRecurrent,
		checkLSTM,
	} {
		rs, err := check(rng, act, opts)
		if err != nil {
			return results, err
		}
		results = append(results, rs...)
	}
	return results, nil
}

// lossOf builds the scalar loss Σ out·g.
func lossOf(out, g *tensor.RawTensor) float64 {
	return floats.Dot(out.AsFloat64(), g.AsFloat64())
}

// withData returns a float64 tensor with like's shape holding v.
func withData(v []float64, like *tensor.RawTensor) *tensor.RawTensor {
	t, err := tensor.FromFloat64(v, like.Shape())
	if err != nil {
		panic(err)
	}
	return t
}

func checkConvolution(rng *rand.Rand, _ activation.Activation, opts Options) ([]Result, error) {
	conv := ops.NewConvolution(opts.Config)
	a := tensor.Randn(tensor.Shape{2, 2, 5, 4}, rng)
	f := tensor.Randn(tensor.Shape{3, 2, 3, 2}, rng)

	var results []Result
	for _, mode := range []ops.Mode{ops.ModeValid, ops.ModeFull} {
		out, err := conv.Apply(a, f, mode)
		if err != nil {
			return nil, err
		}
		g := tensor.Randn(out.Shape(), rng)
		dA, dF, err := conv.Backward(a, f, g, mode)
		if err != nil {
			return nil, err
		}

		lossA := func(v []float64) float64 {
			o, err := conv.Apply(withData(v, a), f, mode)
			if err != nil {
				panic(err)
			}
			return lossOf(o, g)
		}
		lossF := func(v []float64) float64 {
			o, err := conv.Apply(a, withData(v, f), mode)
			if err != nil {
				panic(err)
			}
			return lossOf(o, g)
		}
		results = append(results,
			Check("conv "+string(mode)+" dA", lossA, a.AsFloat64(), dA.AsFloat64(), opts.Step, opts.Tolerance),
			Check("conv "+string(mode)+" dF", lossF, f.AsFloat64(), dF.AsFloat64(), opts.Step, opts.Tolerance),
		)
	}
	return results, nil
}

func checkMaxPool(rng *rand.Rand, _ activation.Activation, opts Options) ([]Result, error) {
	pool := ops.NewMaxPool(opts.Config)
	a := tensor.Randn(tensor.Shape{2, 2, 4, 4}, rng)

	out, mask, err := pool.Apply(a, 2)
	if err != nil {
		return nil, err
	}
	g := tensor.Randn(out.Shape(), rng)
	dA, err := pool.Backward(g, mask)
	if err != nil {
		return nil, err
	}

	loss := func(v []float64) float64 {
		o, _, err := pool.Apply(withData(v, a), 2)
		if err != nil {
			panic(err)
		}
		return lossOf(o, g)
	}
	return []Result{Check("maxpool dA", loss, a.AsFloat64(), dA.AsFloat64(), opts.Step, opts.Tolerance)}, nil
}

func checkDense(rng *rand.Rand, _ activation.Activation, opts Options) ([]Result, error) {
	var dense ops.Dense
	x := tensor.Randn(tensor.Shape{4, 5}, rng)
	w := tensor.Randn(tensor.Shape{5, 3}, rng)
	b := tensor.Randn(tensor.Shape{3}, rng)

	out, err := dense.Forward(x, w, b)
	if err != nil {
		return nil, err
	}
	g := tensor.Randn(out.Shape(), rng)
	dX, dW, db, err := dense.Backward(x, g, w)
	if err != nil {
		return nil, err
	}

	loss := func(x, w, b *tensor.RawTensor) float64 {
		o, err := dense.Forward(x, w, b)
		if err != nil {
			panic(err)
		}
		return lossOf(o, g)
	}
	return []Result{
		Check("dense dX", func(v []float64) float64 { return loss(withData(v, x), w, b) }, x.AsFloat64(), dX.AsFloat64(), opts.Step, opts.Tolerance),
		Check("dense dW", func(v []float64) float64 { return loss(x, withData(v, w), b) }, w.AsFloat64(), dW.AsFloat64(), opts.Step, opts.Tolerance),
		Check("dense db", func(v []float64) float64 { return loss(x, w, withData(v, b)) }, b.AsFloat64(), db.AsFloat64(), opts.Step, opts.Tolerance),
	}, nil
}

func checkRecurrent(rng *rand.Rand, act activation.Activation, opts Options) ([]Result, error) {
	const time, batch, in, out = 4, 3, 3, 2
	cell := ops.NewRecurrent(act)
	x := tensor.Randn(tensor.Shape{time, batch, in}, rng)
	w := tensor.RandUniform(tensor.Shape{in + out, out}, -0.5, 0.5, rng)
	b := tensor.RandUniform(tensor.Shape{out}, -0.1, 0.1, rng)

	o, z, err := cell.Forward(x, w, b)
	if err != nil {
		return nil, err
	}
	g := tensor.Randn(o.Shape(), rng)
	dX, dW, db, err := cell.Backward(z, o, g.Copy(), w)
	if err != nil {
		return nil, errors.Wrap(err, "recurrent")
	}

	loss := func(x, w, b *tensor.RawTensor) float64 {
		o, _, err := cell.Forward(x, w, b)
		if err != nil {
			panic(err)
		}
		return lossOf(o, g)
	}
	return []Result{
		Check("recurrent dX", func(v []float64) float64 { return loss(withData(v, x), w, b) }, x.AsFloat64(), dX.AsFloat64(), opts.Step, opts.Tolerance),
		Check("recurrent dW", func(v []float64) float64 { return loss(x, withData(v, w), b) }, w.AsFloat64(), dW.AsFloat64(), opts.Step, opts.Tolerance),
		Check("recurrent db", func(v []float64) float64 { return loss(x, w, withData(v, b)) }, b.AsFloat64(), db.AsFloat64(), opts.Step, opts.Tolerance),
	}, nil
}

func checkLSTM(rng *rand.Rand, act activation.Activation, opts Options) ([]Result, error) {
	const time, batch, in, units = 4, 2, 3, 2
	cell := ops.NewLSTM(act)
	x := tensor.Randn(tensor.Shape{time, batch, in}, rng)
	w := tensor.RandUniform(tensor.Shape{in + units, 4 * units}, -0.5, 0.5, rng)
	b := tensor.RandUniform(tensor.Shape{4 * units}, -0.1, 0.1, rng)

	o, z, cache, err := cell.Forward(x, w, b)
	if err != nil {
		return nil, err
	}
	g := tensor.Randn(o.Shape(), rng)
	dX, dW, db, err := cell.Backward(z, o, g.Copy(), w, cache)
	if err != nil {
		return nil, errors.Wrap(err, "lstm")
	}

	loss := func(x, w, b *tensor.RawTensor) float64 {
		o, _, _, err := cell.Forward(x, w, b)
		if err != nil {
			panic(err)
		}
		return lossOf(o, g)
	}
	return []Result{
		Check("lstm dX", func(v []float64) float64 { return loss(withData(v, x), w, b) }, x.AsFloat64(), dX.AsFloat64(), opts.Step, opts.Tolerance),
		Check("lstm dW", func(v []float64) float64 { return loss(x, withData(v, w), b) }, w.AsFloat64(), dW.AsFloat64(), opts.Step, opts.Tolerance),
		Check("lstm db", func(v []float64) float64 { return loss(x, w, withData(v, b)) }, b.AsFloat64(), db.AsFloat64(), opts.Step, opts.Tolerance),
	}, nil
}
