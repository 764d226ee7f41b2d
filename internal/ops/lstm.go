package ops

import (
	"github.com/born-ml/brainforge/internal/activation"
	"github.com/born-ml/brainforge/internal/tensor"
)

// LSTMSlot names one of the per-step tensors kept in an LSTMCache.
type LSTMSlot int

// Cache slots, in the order they are stacked.
const (
	CellState LSTMSlot = iota
	ActivatedCell
	Candidate
	ForgetGate
	InputGate
	OutputGate

	numLSTMSlots
)

var slotNames = [...]string{"C", "Ca", "candidate", "forget", "input", "output"}

// String returns the short slot name.
func (s LSTMSlot) String() string {
	if s < 0 || s >= numLSTMSlots {
		return "unknown"
	}
	return slotNames[s]
}

// LSTMCache holds every per-step intermediate an LSTM forward pass produces
// for its backward pass, in one contiguous [6, time, batch, units] arena.
type LSTMCache struct {
	stacked *tensor.RawTensor
	time    int
	batch   int
	units   int
}

func newLSTMCache(time, batch, units int) *LSTMCache {
	return &LSTMCache{
		stacked: tensor.Zeros(tensor.Shape{int(numLSTMSlots), time, batch, units}),
		time:    time,
		batch:   batch,
		units:   units,
	}
}

// LSTMCacheFromStacked wraps a [6, time, batch, units] tensor previously
// obtained from Stacked.
func LSTMCacheFromStacked(stacked *tensor.RawTensor) (*LSTMCache, error) {
	if err := requireFloat64("lstm cache", stacked); err != nil {
		return nil, err
	}
	s := stacked.Shape()
	if len(s) != 4 || s[0] != int(numLSTMSlots) {
		return nil, malformed("lstm cache: want [%d, time, batch, units], got %v", numLSTMSlots, s)
	}
	return &LSTMCache{stacked: stacked, time: s[1], batch: s[2], units: s[3]}, nil
}

// Stacked returns the whole cache as a [6, time, batch, units] tensor in
// slot order C, Ca, candidate, forget, input, output.
func (c *LSTMCache) Stacked() *tensor.RawTensor {
	return c.stacked
}

// Slot returns the [time, batch, units] data of one slot as a view.
func (c *LSTMCache) Slot(s LSTMSlot) []float64 {
	size := c.time * c.batch * c.units
	return c.stacked.AsFloat64()[int(s)*size : (int(s)+1)*size]
}

// LSTM is a four-gate long short-term memory cell.
//
// A single projection p = Z[t]·W + b of width 4·units is split, in this
// fixed order, into candidate, forget, input and output slices. The
// candidate goes through the configured activation, the other three through
// the logistic sigmoid:
//
//	C[t]  = C[t-1]·forget[t] + candidate[t]·input[t]     C[-1] = 0
//	Ca[t] = act(C[t])
//	O[t]  = Ca[t]·output[t]
//
// Shapes: X [time, batch, in], W [in+units, 4·units], b [4·units].
type LSTM struct {
	act  activation.Activation
	gate activation.Activation
}

// NewLSTM creates an LSTM cell whose candidate and cell-state path use act.
func NewLSTM(act activation.Activation) *LSTM {
	return &LSTM{act: act, gate: activation.Sigmoid{}}
}

// Activation returns the configured cell activation.
func (l *LSTM) Activation() activation.Activation {
	return l.act
}

// Forward runs the cell over the whole sequence and returns (O, Z, cache).
func (l *LSTM) Forward(x, w, b *tensor.RawTensor) (o, z *tensor.RawTensor, cache *LSTMCache, err error) {
	d, err := sequenceDims("lstm", x, w, b, 4)
	if err != nil {
		return nil, nil, nil, err
	}

	z = tensor.Zeros(tensor.Shape{d.time, d.batch, d.zdim})
	o = tensor.Zeros(tensor.Shape{d.time, d.batch, d.out})
	cache = newLSTMCache(d.time, d.batch, d.out)

	xData, zData, oData := x.AsFloat64(), z.AsFloat64(), o.AsFloat64()
	wData, bias := w.AsFloat64(), b.AsFloat64()
	C, Ca := cache.Slot(CellState), cache.Slot(ActivatedCell)
	cand, fg, ig, og := cache.Slot(Candidate), cache.Slot(ForgetGate), cache.Slot(InputGate), cache.Slot(OutputGate)

	units := d.out
	width := 4 * units
	stepSize := d.batch * units
	p := make([]float64, d.batch*width)

	for t := 0; t < d.time; t++ {
		zt := step(zData, t, d.batch*d.zdim)
		var prev []float64
		if t > 0 {
			prev = step(oData, t-1, stepSize)
		}
		concatStep(zt, step(xData, t, d.batch*d.in), prev, d.batch, d.in, units)

		gemm(false, false, zt, d.batch, d.zdim, wData, d.zdim, width, 0, p)
		addRows(p, bias, d.batch)

		candT, fT, iT, oT := step(cand, t, stepSize), step(fg, t, stepSize), step(ig, t, stepSize), step(og, t, stepSize)
		for r := 0; r < d.batch; r++ {
			row := p[r*width : (r+1)*width]
			dst := r * units
			l.act.Forward(candT[dst:dst+units], row[:units])
			l.gate.Forward(fT[dst:dst+units], row[units:2*units])
			l.gate.Forward(iT[dst:dst+units], row[2*units:3*units])
			l.gate.Forward(oT[dst:dst+units], row[3*units:])
		}

		cT := step(C, t, stepSize)
		for k := range cT {
			cT[k] = candT[k] * iT[k]
			if t > 0 {
				cT[k] += C[(t-1)*stepSize+k] * fT[k]
			}
		}

		caT := step(Ca, t, stepSize)
		l.act.Forward(caT, cT)

		ot := step(oData, t, stepSize)
		for k := range ot {
			ot[k] = caT[k] * oT[k]
		}
	}
	return o, z, cache, nil
}

// Backward propagates e back through time and returns (dX, dW, db).
//
// e has O's shape and is consumed: it receives the carried recurrent error
// in place. A running cell-state gradient deltaC collects, at every step,
// the contribution of the current output and the forget-gated contribution
// of the next step:
//
//	deltaC   += E[t]·output[t]·act'(Ca[t])
//	dcand     = deltaC·input[t]
//	dforget   = deltaC·C[t-1]                 (0 at t = 0)
//	dinput    = deltaC·candidate[t]
//	doutput   = Ca[t]·E[t]
//	dgates[t] = concat(dcand, dforget, dinput, doutput) · local derivatives
//	deltaC   *= forget[t]
//	dZ[t]     = dgates[t]·Wᵀ;  E[t-1] += dZ[t][:, in:]
//
// then dW = Σ_t Z[t]ᵀ·dgates[t], db = Σ_{t,batch} dgates, dX = dZ[:, :, :in].
// Gate gradients are concatenated in the forward split order.
func (l *LSTM) Backward(z, o, e, w *tensor.RawTensor, cache *LSTMCache) (dX, dW, db *tensor.RawTensor, err error) {
	d, err := backwardDims("lstm backward", z, o, e, w, 4)
	if err != nil {
		return nil, nil, nil, err
	}
	if cache == nil || cache.time != d.time || cache.batch != d.batch || cache.units != d.out {
		return nil, nil, nil, malformed("lstm backward: cache does not match [%d, %d, %d]", d.time, d.batch, d.out)
	}

	units := d.out
	width := 4 * units
	stepSize := d.batch * units
	zData, eData, wData := z.AsFloat64(), e.AsFloat64(), w.AsFloat64()
	C, Ca := cache.Slot(CellState), cache.Slot(ActivatedCell)
	cand, fg, ig, og := cache.Slot(Candidate), cache.Slot(ForgetGate), cache.Slot(InputGate), cache.Slot(OutputGate)

	// Local derivatives, evaluated at the cached activated values.
	bwCand := make([]float64, len(cand))
	bwF := make([]float64, len(fg))
	bwI := make([]float64, len(ig))
	bwO := make([]float64, len(og))
	bwCa := make([]float64, len(Ca))
	l.act.Backward(bwCand, cand)
	l.gate.Backward(bwF, fg)
	l.gate.Backward(bwI, ig)
	l.gate.Backward(bwO, og)
	l.act.Backward(bwCa, Ca)

	deltaC := make([]float64, stepSize)
	deltaZ := tensor.Zeros(tensor.Shape{d.time, d.batch, d.zdim})
	dzData := deltaZ.AsFloat64()
	dgates := make([]float64, d.time*d.batch*width)

	for t := d.time - 1; t >= 0; t-- {
		base := t * stepSize
		et := step(eData, t, stepSize)
		dg := step(dgates, t, d.batch*width)

		for k := 0; k < stepSize; k++ {
			idx := base + k
			deltaC[k] += et[k] * og[idx] * bwCa[idx]

			prevC := 0.0
			if t > 0 {
				prevC = C[idx-stepSize]
			}

			r, u := k/units, k%units
			row := dg[r*width : (r+1)*width]
			row[u] = deltaC[k] * ig[idx] * bwCand[idx]
			row[units+u] = deltaC[k] * prevC * bwF[idx]
			row[2*units+u] = deltaC[k] * cand[idx] * bwI[idx]
			row[3*units+u] = Ca[idx] * et[k] * bwO[idx]

			deltaC[k] *= fg[idx]
		}

		dzt := step(dzData, t, d.batch*d.zdim)
		gemm(false, true, dg, d.batch, width, wData, d.zdim, width, 0, dzt)
		if t > 0 {
			addRecurrentSlice(step(eData, t-1, stepSize), dzt, d.batch, d.in, units)
		}
	}

	dW = tensor.Zeros(w.Shape())
	dWData := dW.AsFloat64()
	for t := 0; t < d.time; t++ {
		gemm(true, false, step(zData, t, d.batch*d.zdim), d.batch, d.zdim, step(dgates, t, d.batch*width), d.batch, width, 1, dWData)
	}

	db = tensor.Zeros(tensor.Shape{width})
	sumRows(db.AsFloat64(), dgates, d.time*d.batch)

	dX = inputSlice(dzData, d.time, d.batch, d.in, d.zdim)
	return dX, dW, db, nil
}
