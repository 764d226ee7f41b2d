package ops

import (
	"github.com/pkg/errors"

	"github.com/born-ml/brainforge/internal/parallel"
	"github.com/born-ml/brainforge/internal/tensor"
)

// Convolution computes 2D cross-correlation of a batch of images with a
// filter bank through receptive-field extraction (im2col) and matrix
// multiplication.
//
// Input shape:  [batch, channels, height, width]
// Filter shape: [numFilters, channels, fh, fw]
// Output shape: [batch, numFilters, oh, ow]
//
// A Convolution holds only its Config and is safe for concurrent use with
// disjoint tensors.
type Convolution struct {
	cfg Config
}

// NewConvolution creates a convolution operation.
func NewConvolution(cfg Config) *Convolution {
	return &Convolution{cfg: cfg}
}

// Apply convolves a with f in the given mode.
func (c *Convolution) Apply(a, f *tensor.RawTensor, mode Mode) (*tensor.RawTensor, error) {
	switch mode {
	case ModeValid:
		return c.Valid(a, f)
	case ModeFull:
		return c.Full(a, f)
	default:
		return nil, errors.WithStack(&UnsupportedModeError{Mode: mode})
	}
}

// Valid convolves a with f visiting only positions where the filter lies
// entirely inside the input: oh = h-fh+1, ow = w-fw+1.
//
// Algorithm:
//  1. Extract receptive fields: [N, C, H, W] -> [N, oh*ow, C*fh*fw]
//  2. View the filter bank as [nf, C*fh*fw]
//  3. Per sample: [nf, C*fh*fw] @ [C*fh*fw, oh*ow] -> [nf, oh*ow]
//
// Step 3 writes straight into the [N, nf, oh, ow] output layout.
func (c *Convolution) Valid(a, f *tensor.RawTensor) (*tensor.RawTensor, error) {
	g, err := convGeometry(a, f)
	if err != nil {
		return nil, err
	}

	rfields, err := c.ReceptiveFields(a, g.fy, g.fx)
	if err != nil {
		return nil, err
	}

	output := tensor.Zeros(tensor.Shape{g.n, g.nf, g.oy, g.ox})
	outData := output.AsFloat64()
	rfData := rfields.AsFloat64()
	fData := f.AsFloat64()

	positions := g.oy * g.ox
	parallel.For(g.n, func(m int) {
		rf := rfData[m*positions*g.field : (m+1)*positions*g.field]
		out := outData[m*g.nf*positions : (m+1)*g.nf*positions]
		gemm(false, true, fData, g.nf, g.field, rf, positions, g.field, 0, out)
	}, c.cfg.Parallel)

	return output, nil
}

// Full zero-pads a by (fh-1, fw-1) on each side of both spatial axes and
// then performs a valid convolution: oh = h+fh-1, ow = w+fw-1.
func (c *Convolution) Full(a, f *tensor.RawTensor) (*tensor.RawTensor, error) {
	g, err := convGeometry(a, f)
	if err != nil {
		return nil, err
	}
	padded, err := tensor.Pad2D(a, g.fy-1, g.fx-1)
	if err != nil {
		return nil, malformed("conv: %v", err)
	}
	return c.Valid(padded, f)
}

// ReceptiveFields extracts every fh x fw patch of a into a matrix of shape
// [batch, oh*ow, channels*fh*fw]. Row sy*ow+sx of sample m holds the patch
// a[m, :, sy:sy+fh, sx:sx+fw] flattened in channel, row, column order.
func (c *Convolution) ReceptiveFields(a *tensor.RawTensor, fy, fx int) (*tensor.RawTensor, error) {
	if err := requireFloat64("conv", a); err != nil {
		return nil, err
	}
	s := a.Shape()
	if len(s) != 4 {
		return nil, malformed("conv: input must be 4D [N,C,H,W], got %v", s)
	}
	n, ch, iy, ix := s[0], s[1], s[2], s[3]
	oy, ox := iy-fy+1, ix-fx+1
	if fy <= 0 || fx <= 0 || oy <= 0 || ox <= 0 {
		return nil, malformed("conv: filter %dx%d does not fit input %dx%d", fy, fx, iy, ix)
	}

	field := ch * fy * fx
	rfields := tensor.Zeros(tensor.Shape{n, oy * ox, field})
	src := a.AsFloat64()
	dst := rfields.AsFloat64()

	parallel.For(n, func(m int) {
		im2col(dst[m*oy*ox*field:(m+1)*oy*ox*field], src[m*ch*iy*ix:(m+1)*ch*iy*ix], ch, iy, ix, fy, fx, oy, ox)
	}, c.cfg.Parallel)

	return rfields, nil
}

// im2col transforms one sample [C, H, W] into [oh*ow, C*fh*fw].
func im2col(colBuf, img []float64, C, H, W, KH, KW, HOut, WOut int) {
	colWidth := C * KH * KW
	for outH := 0; outH < HOut; outH++ {
		for outW := 0; outW < WOut; outW++ {
			bufIdx := (outH*WOut + outW) * colWidth
			for ch := 0; ch < C; ch++ {
				plane := img[ch*H*W : (ch+1)*H*W]
				for kh := 0; kh < KH; kh++ {
					row := plane[(outH+kh)*W : (outH+kh)*W+W]
					copy(colBuf[bufIdx:bufIdx+KW], row[outW:outW+KW])
					bufIdx += KW
				}
			}
		}
	}
}

type convDims struct {
	n, ch, iy, ix int
	nf, fy, fx    int
	oy, ox        int
	field         int
}

// convGeometry validates a and f and derives the valid-mode dimensions.
func convGeometry(a, f *tensor.RawTensor) (convDims, error) {
	if err := requireFloat64("conv", a, f); err != nil {
		return convDims{}, err
	}
	as, fs := a.Shape(), f.Shape()
	if len(as) != 4 {
		return convDims{}, malformed("conv: input must be 4D [N,C,H,W], got %v", as)
	}
	if len(fs) != 4 {
		return convDims{}, malformed("conv: filter must be 4D [nf,C,fh,fw], got %v", fs)
	}

	g := convDims{
		n: as[0], ch: as[1], iy: as[2], ix: as[3],
		nf: fs[0], fy: fs[2], fx: fs[3],
	}
	if fs[1] != g.ch {
		return convDims{}, errors.WithStack(&IncompatibleInputError{InputChannels: g.ch, FilterChannels: fs[1]})
	}
	g.oy, g.ox = g.iy-g.fy+1, g.ix-g.fx+1
	g.field = g.ch * g.fy * g.fx
	return g, nil
}
