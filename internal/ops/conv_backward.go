package ops

import (
	"github.com/pkg/errors"

	"github.com/born-ml/brainforge/internal/tensor"
)

// Backward computes the gradients of a convolution given the upstream
// error e, which has the shape Apply(a, f, mode) returned.
//
// Returns (dA, dF):
//   - dA: input gradient, shaped like a. For valid mode it is the full
//     convolution of e with the filter bank rotated by 180 degrees and with
//     its filter and channel axes swapped; for full mode it is the valid
//     convolution of e with that same bank.
//   - dF: filter gradient, shaped like f. Per filter k it is
//     Σ_batch e[n,k] · rfields[n], i.e. the valid convolution of the
//     (padded, in full mode) input with the upstream error.
func (c *Convolution) Backward(a, f, e *tensor.RawTensor, mode Mode) (dA, dF *tensor.RawTensor, err error) {
	if err := mode.validate(); err != nil {
		return nil, nil, err
	}
	g, err := convGeometry(a, f)
	if err != nil {
		return nil, nil, err
	}
	if err := requireFloat64("conv backward", e); err != nil {
		return nil, nil, err
	}

	src := a
	if mode == ModeFull {
		if src, err = tensor.Pad2D(a, g.fy-1, g.fx-1); err != nil {
			return nil, nil, malformed("conv backward: %v", err)
		}
	}
	ss := src.Shape()
	oy, ox := ss[2]-g.fy+1, ss[3]-g.fx+1
	want := tensor.Shape{g.n, g.nf, oy, ox}
	if !e.Shape().Equal(want) {
		return nil, nil, malformed("conv backward: error shape %v, want %v", e.Shape(), want)
	}

	flipped, err := adjointFilter(f)
	if err != nil {
		return nil, nil, err
	}
	if mode == ModeValid {
		dA, err = c.Full(e, flipped)
	} else {
		dA, err = c.Valid(e, flipped)
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "conv backward: input gradient")
	}

	dF, err = c.filterGradient(src, e, f.Shape())
	if err != nil {
		return nil, nil, err
	}
	return dA, dF, nil
}

// adjointFilter maps [nf, C, fh, fw] to [C, nf, fh, fw] with each plane
// rotated by 180 degrees.
func adjointFilter(f *tensor.RawTensor) (*tensor.RawTensor, error) {
	swapped, err := tensor.SwapLeadingAxes(f)
	if err != nil {
		return nil, malformed("conv backward: %v", err)
	}
	rotated, err := tensor.Rot180(swapped)
	if err != nil {
		return nil, malformed("conv backward: %v", err)
	}
	return rotated, nil
}

// filterGradient accumulates [nf, P] @ [P, C*fh*fw] over the batch.
// Samples are summed in order so the result does not depend on scheduling.
func (c *Convolution) filterGradient(src, e *tensor.RawTensor, fshape tensor.Shape) (*tensor.RawTensor, error) {
	nf, fy, fx := fshape[0], fshape[2], fshape[3]
	rfields, err := c.ReceptiveFields(src, fy, fx)
	if err != nil {
		return nil, err
	}

	rs := rfields.Shape()
	n, positions, field := rs[0], rs[1], rs[2]
	dF := tensor.Zeros(fshape)
	dFData := dF.AsFloat64()
	eData := e.AsFloat64()
	rfData := rfields.AsFloat64()

	for m := 0; m < n; m++ {
		em := eData[m*nf*positions : (m+1)*nf*positions]
		rf := rfData[m*positions*field : (m+1)*positions*field]
		gemm(false, false, em, nf, positions, rf, positions, field, 1, dFData)
	}
	return dF, nil
}
