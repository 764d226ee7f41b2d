package ops

import (
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/brainforge/internal/activation"
	"github.com/born-ml/brainforge/internal/tensor"
)

// Recurrent is a plain (single-gate) recurrent cell:
//
//	Z[t] = concat(X[t], O[t-1])      O[-1] = 0
//	O[t] = act(Z[t]·W + b)
//
// Shapes: X [time, batch, in], W [in+out, out], b [out],
// O [time, batch, out], Z [time, batch, in+out].
//
// The time loops in Forward and Backward are sequential by construction.
type Recurrent struct {
	act activation.Activation
}

// NewRecurrent creates a recurrent cell with the given output activation.
func NewRecurrent(act activation.Activation) *Recurrent {
	return &Recurrent{act: act}
}

// Activation returns the configured output activation.
func (r *Recurrent) Activation() activation.Activation {
	return r.act
}

// Forward runs the cell over the whole sequence and returns (O, Z).
func (r *Recurrent) Forward(x, w, b *tensor.RawTensor) (o, z *tensor.RawTensor, err error) {
	d, err := sequenceDims("recurrent", x, w, b, 1)
	if err != nil {
		return nil, nil, err
	}

	z = tensor.Zeros(tensor.Shape{d.time, d.batch, d.zdim})
	o = tensor.Zeros(tensor.Shape{d.time, d.batch, d.out})
	xData, zData, oData := x.AsFloat64(), z.AsFloat64(), o.AsFloat64()
	wData, bias := w.AsFloat64(), b.AsFloat64()

	for t := 0; t < d.time; t++ {
		zt := step(zData, t, d.batch*d.zdim)
		var prev []float64
		if t > 0 {
			prev = step(oData, t-1, d.batch*d.out)
		}
		concatStep(zt, step(xData, t, d.batch*d.in), prev, d.batch, d.in, d.out)

		ot := step(oData, t, d.batch*d.out)
		gemm(false, false, zt, d.batch, d.zdim, wData, d.zdim, d.out, 0, ot)
		addRows(ot, bias, d.batch)
		r.act.Forward(ot, ot)
	}
	return o, z, nil
}

// Backward propagates e back through time and returns (dX, dW, db).
//
// e has O's shape and is consumed: it is scaled by the local derivative and
// receives the carried recurrent error in place.
//
// For t = time-1 down to 0:
//
//	E[t]   *= act'(O[t])
//	dZ[t]   = E[t]·Wᵀ
//	E[t-1] += dZ[t][:, in:]      (t > 0)
//
// then dX = dZ[:, :, :in], dW = Σ_t Z[t]ᵀ·E[t], db = Σ_{t,batch} E.
func (r *Recurrent) Backward(z, o, e, w *tensor.RawTensor) (dX, dW, db *tensor.RawTensor, err error) {
	d, err := backwardDims("recurrent backward", z, o, e, w, 1)
	if err != nil {
		return nil, nil, nil, err
	}

	zData, oData, eData, wData := z.AsFloat64(), o.AsFloat64(), e.AsFloat64(), w.AsFloat64()
	bwO := make([]float64, len(oData))
	r.act.Backward(bwO, oData)

	deltaZ := tensor.Zeros(tensor.Shape{d.time, d.batch, d.zdim})
	dzData := deltaZ.AsFloat64()
	outStep := d.batch * d.out

	for t := d.time - 1; t >= 0; t-- {
		et := step(eData, t, outStep)
		floats.Mul(et, step(bwO, t, outStep))

		dzt := step(dzData, t, d.batch*d.zdim)
		gemm(false, true, et, d.batch, d.out, wData, d.zdim, d.out, 0, dzt)
		if t > 0 {
			addRecurrentSlice(step(eData, t-1, outStep), dzt, d.batch, d.in, d.out)
		}
	}

	dW = tensor.Zeros(w.Shape())
	dWData := dW.AsFloat64()
	for t := 0; t < d.time; t++ {
		gemm(true, false, step(zData, t, d.batch*d.zdim), d.batch, d.zdim, step(eData, t, outStep), d.batch, d.out, 1, dWData)
	}

	db = tensor.Zeros(tensor.Shape{d.out})
	sumRows(db.AsFloat64(), eData, d.time*d.batch)

	dX = inputSlice(dzData, d.time, d.batch, d.in, d.zdim)
	return dX, dW, db, nil
}

// seqDims describes the [time, batch, feature] layout shared by the
// recurrent operations.
type seqDims struct {
	time, batch int
	in, out     int
	zdim        int
	gates       int
}

// sequenceDims validates forward arguments; gates is the number of
// out-wide slices in W's columns (1 for a plain cell, 4 for an LSTM).
func sequenceDims(op string, x, w, b *tensor.RawTensor, gates int) (seqDims, error) {
	if err := requireFloat64(op, x, w, b); err != nil {
		return seqDims{}, err
	}
	xs, ws, bs := x.Shape(), w.Shape(), b.Shape()
	if len(xs) != 3 {
		return seqDims{}, malformed("%s: X must be [time, batch, in], got %v", op, xs)
	}
	if len(ws) != 2 || ws[1]%gates != 0 {
		return seqDims{}, malformed("%s: W must be [in+out, %d*out], got %v", op, gates, ws)
	}
	d := seqDims{time: xs[0], batch: xs[1], in: xs[2], out: ws[1] / gates, gates: gates}
	d.zdim = d.in + d.out
	if ws[0] != d.zdim {
		return seqDims{}, malformed("%s: W has %d rows, want in+out = %d+%d", op, ws[0], d.in, d.out)
	}
	if len(bs) != 1 || bs[0] != ws[1] {
		return seqDims{}, malformed("%s: b must be [%d], got %v", op, ws[1], bs)
	}
	return d, nil
}

// backwardDims validates the cached Z, O and upstream E against W.
func backwardDims(op string, z, o, e, w *tensor.RawTensor, gates int) (seqDims, error) {
	if err := requireFloat64(op, z, o, e, w); err != nil {
		return seqDims{}, err
	}
	zs, oshape, es, ws := z.Shape(), o.Shape(), e.Shape(), w.Shape()
	if len(zs) != 3 || len(ws) != 2 || ws[1]%gates != 0 {
		return seqDims{}, malformed("%s: Z %v, W %v", op, zs, ws)
	}
	d := seqDims{time: zs[0], batch: zs[1], zdim: zs[2], out: ws[1] / gates, gates: gates}
	d.in = d.zdim - d.out
	if d.in <= 0 || ws[0] != d.zdim {
		return seqDims{}, malformed("%s: Z %v does not match W %v", op, zs, ws)
	}
	want := tensor.Shape{d.time, d.batch, d.out}
	if !oshape.Equal(want) || !es.Equal(want) {
		return seqDims{}, malformed("%s: O %v and E %v, want %v", op, oshape, es, want)
	}
	return d, nil
}

// step returns the contiguous slice of time step t.
func step(data []float64, t, size int) []float64 {
	return data[t*size : (t+1)*size]
}

// concatStep fills zt[r] = concat(xt[r], prev[r]); a nil prev is zeros.
func concatStep(zt, xt, prev []float64, batch, in, out int) {
	zdim := in + out
	for r := 0; r < batch; r++ {
		row := zt[r*zdim : (r+1)*zdim]
		copy(row[:in], xt[r*in:(r+1)*in])
		if prev != nil {
			copy(row[in:], prev[r*out:(r+1)*out])
		} else {
			for i := in; i < zdim; i++ {
				row[i] = 0
			}
		}
	}
}

// addRows adds bias to each of the rows of m.
func addRows(m, bias []float64, rows int) {
	width := len(bias)
	for r := 0; r < rows; r++ {
		floats.Add(m[r*width:(r+1)*width], bias)
	}
}

// sumRows accumulates the rows of m into dst.
func sumRows(dst, m []float64, rows int) {
	width := len(dst)
	for r := 0; r < rows; r++ {
		floats.Add(dst, m[r*width:(r+1)*width])
	}
}

// addRecurrentSlice adds the trailing out columns of each dz row into dst.
func addRecurrentSlice(dst, dz []float64, batch, in, out int) {
	zdim := in + out
	for r := 0; r < batch; r++ {
		floats.Add(dst[r*out:(r+1)*out], dz[r*zdim+in:(r+1)*zdim])
	}
}

// inputSlice copies dz[:, :, :in] into a new [time, batch, in] tensor.
func inputSlice(dz []float64, time, batch, in, zdim int) *tensor.RawTensor {
	dX := tensor.Zeros(tensor.Shape{time, batch, in})
	dst := dX.AsFloat64()
	for row := 0; row < time*batch; row++ {
		copy(dst[row*in:(row+1)*in], dz[row*zdim:row*zdim+in])
	}
	return dX
}
