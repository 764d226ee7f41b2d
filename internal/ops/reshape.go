package ops

import "github.com/born-ml/brainforge/internal/tensor"

// Reshape reinterprets every sample of a batch under a new per-sample
// shape. The result shares the input's buffer.
type Reshape struct{}

// Forward returns x viewed as (batch, outshape...).
func (Reshape) Forward(x *tensor.RawTensor, outshape tensor.Shape) (*tensor.RawTensor, error) {
	return reshapeBatch(x, outshape)
}

// Backward returns the upstream error viewed as (batch, inshape...).
func (Reshape) Backward(e *tensor.RawTensor, inshape tensor.Shape) (*tensor.RawTensor, error) {
	return reshapeBatch(e, inshape)
}

func reshapeBatch(x *tensor.RawTensor, shape tensor.Shape) (*tensor.RawTensor, error) {
	if x == nil || len(x.Shape()) == 0 {
		return nil, malformed("reshape: input needs a batch dimension")
	}
	full := append(tensor.Shape{x.Shape()[0]}, shape...)
	out, err := tensor.Reshape(x, full)
	if err != nil {
		return nil, malformed("reshape: %v", err)
	}
	return out, nil
}
