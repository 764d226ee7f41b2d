package ops

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/brainforge/internal/tensor"
)

// Dense is the affine map X·W + b.
//
// X: [batch, in], W: [in, out], b: [out] -> [batch, out].
type Dense struct{}

// Forward computes X·W + b.
func (Dense) Forward(x, w, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	batch, in, out, err := denseDims(x, w, b)
	if err != nil {
		return nil, err
	}

	result := tensor.Zeros(tensor.Shape{batch, out})
	dst := mat.NewDense(batch, out, result.AsFloat64())
	dst.Mul(mat.NewDense(batch, in, x.AsFloat64()), mat.NewDense(in, out, w.AsFloat64()))

	bias := b.AsFloat64()
	data := result.AsFloat64()
	for r := 0; r < batch; r++ {
		floats.Add(data[r*out:(r+1)*out], bias)
	}
	return result, nil
}

// Backward returns (dX, dW, db) for upstream error e of shape [batch, out].
func (Dense) Backward(x, e, w *tensor.RawTensor) (dX, dW, db *tensor.RawTensor, err error) {
	if err := requireFloat64("dense backward", x, e, w); err != nil {
		return nil, nil, nil, err
	}
	xs, es, ws := x.Shape(), e.Shape(), w.Shape()
	if len(xs) != 2 || len(es) != 2 || len(ws) != 2 || xs[0] != es[0] || xs[1] != ws[0] || es[1] != ws[1] {
		return nil, nil, nil, malformed("dense backward: x %v, e %v, w %v", xs, es, ws)
	}
	batch, in, out := xs[0], xs[1], ws[1]

	xm := mat.NewDense(batch, in, x.AsFloat64())
	em := mat.NewDense(batch, out, e.AsFloat64())
	wm := mat.NewDense(in, out, w.AsFloat64())

	dX = tensor.Zeros(tensor.Shape{batch, in})
	mat.NewDense(batch, in, dX.AsFloat64()).Mul(em, wm.T())

	dW = tensor.Zeros(tensor.Shape{in, out})
	mat.NewDense(in, out, dW.AsFloat64()).Mul(xm.T(), em)

	db = tensor.Zeros(tensor.Shape{out})
	dbData := db.AsFloat64()
	eData := e.AsFloat64()
	for r := 0; r < batch; r++ {
		floats.Add(dbData, eData[r*out:(r+1)*out])
	}
	return dX, dW, db, nil
}

func denseDims(x, w, b *tensor.RawTensor) (batch, in, out int, err error) {
	if err := requireFloat64("dense", x, w, b); err != nil {
		return 0, 0, 0, err
	}
	xs, ws, bs := x.Shape(), w.Shape(), b.Shape()
	if len(xs) != 2 || len(ws) != 2 || len(bs) != 1 {
		return 0, 0, 0, malformed("dense: want x [batch,in], w [in,out], b [out], got %v %v %v", xs, ws, bs)
	}
	if xs[1] != ws[0] || ws[1] != bs[0] {
		return 0, 0, 0, malformed("dense: x %v, w %v and b %v do not chain", xs, ws, bs)
	}
	return xs[0], xs[1], ws[1], nil
}
