package ops

import (
	"github.com/pkg/errors"

	"github.com/born-ml/brainforge/internal/tensor"
)

// Mode selects the convolution border policy.
type Mode string

// Supported convolution modes.
const (
	// ModeValid only visits filter positions fully inside the input.
	ModeValid Mode = "valid"
	// ModeFull zero-pads the input by (fh-1, fw-1) on every side first.
	ModeFull Mode = "full"
)

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if err := m.validate(); err != nil {
		return "", err
	}
	return m, nil
}

func (m Mode) validate() error {
	switch m {
	case ModeValid, ModeFull:
		return nil
	default:
		return errors.WithStack(&UnsupportedModeError{Mode: m})
	}
}

// ConvOutShape infers the output shape of a convolution.
//
// inshape may be (channels, h, w) or (batch, channels, h, w); fshape is
// (numFilters, channels, fh, fw). The result is (numFilters, oh, ow) with
// the batch dimension kept in front when inshape has one. Channel depth is
// not checked here; Apply reports that mismatch.
func ConvOutShape(inshape, fshape tensor.Shape, mode Mode) (tensor.Shape, error) {
	if err := mode.validate(); err != nil {
		return nil, err
	}
	if len(inshape) < 3 || len(inshape) > 4 {
		return nil, malformed("conv: input shape %v must be (c, h, w) or (n, c, h, w)", inshape)
	}
	if len(fshape) != 4 {
		return nil, malformed("conv: filter shape %v must be (nf, c, fh, fw)", fshape)
	}

	iy, ix := inshape[len(inshape)-2], inshape[len(inshape)-1]
	nf, fy, fx := fshape[0], fshape[2], fshape[3]

	var oy, ox int
	if mode == ModeValid {
		oy, ox = iy-fy+1, ix-fx+1
	} else {
		oy, ox = iy+fy-1, ix+fx-1
	}
	if oy <= 0 || ox <= 0 {
		return nil, malformed("conv: filter %dx%d larger than input %dx%d in %s mode", fy, fx, iy, ix, mode)
	}

	if len(inshape) == 4 {
		return tensor.Shape{inshape[0], nf, oy, ox}, nil
	}
	return tensor.Shape{nf, oy, ox}, nil
}

// PoolOutShape divides the two trailing dimensions of inshape by window.
// Accepted forms are (h, w), (c, h, w) and (n, c, h, w).
func PoolOutShape(inshape tensor.Shape, window int) (tensor.Shape, error) {
	if window <= 0 {
		return nil, malformed("pool: window size %d must be positive", window)
	}
	if len(inshape) < 2 || len(inshape) > 4 {
		return nil, malformed("pool: unsupported input shape %v", inshape)
	}
	out := inshape.Clone()
	out[len(out)-2] /= window
	out[len(out)-1] /= window
	return out, nil
}
