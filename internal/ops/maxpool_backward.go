package ops

import (
	"github.com/born-ml/brainforge/internal/parallel"
	"github.com/born-ml/brainforge/internal/tensor"
)

// Backward routes the pooled-resolution error e back to input resolution.
//
// Every window of the mask is multiplied in place by the single upstream
// value of its output position, so each tied maximum receives the whole
// upstream gradient (it is not split between them). The window size is
// derived as maskHeight / errorHeight.
//
// The mask is consumed: the returned tensor is the mask itself, now holding
// the input gradient.
func (p *MaxPool) Backward(e, mask *tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := requireFloat64("maxpool backward", e, mask); err != nil {
		return nil, err
	}
	es, ms := e.Shape(), mask.Shape()
	if len(es) != 4 || len(ms) != 4 {
		return nil, malformed("maxpool backward: expected 4D error and mask, got %v and %v", es, ms)
	}
	N, C, HOut, WOut := es[0], es[1], es[2], es[3]
	H, W := ms[2], ms[3]
	if ms[0] != N || ms[1] != C {
		return nil, malformed("maxpool backward: error %v and mask %v disagree on batch/channels", es, ms)
	}
	window := H / HOut
	if window == 0 || HOut*window != H || WOut*window != W {
		return nil, malformed("maxpool backward: mask %v is not an integer multiple of error %v", ms, es)
	}

	gradData := e.AsFloat64()
	maskData := mask.AsFloat64()

	parallel.ForBatch(N, C, func(n, c int) {
		plane := (n*C + c) * H * W
		channelMask := maskData[plane : plane+H*W]
		gradBase := (n*C + c) * HOut * WOut

		for outH := 0; outH < HOut; outH++ {
			for outW := 0; outW < WOut; outW++ {
				gradVal := gradData[gradBase+outH*WOut+outW]
				for kh := 0; kh < window; kh++ {
					rowStart := (outH*window + kh) * W
					for kw := 0; kw < window; kw++ {
						channelMask[rowStart+outW*window+kw] *= gradVal
					}
				}
			}
		}
	}, p.cfg.Parallel)

	return mask, nil
}
