package ops

import (
	"github.com/born-ml/brainforge/internal/parallel"
	"github.com/born-ml/brainforge/internal/tensor"
)

// MaxPool reduces non-overlapping window x window blocks to their maximum.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, height/window, width/window]
//
// Alongside the output it returns a mask shaped like the input that holds,
// for every input position, how many times it attained its window maximum.
// Tied maxima all receive a count; the mask is not one-hot.
//
// Example (2x2 window):
//
//	Input: [[1,2,3,4],    Output: [[6,8],     Mask: [[0,0,0,0],
//	        [5,6,7,8],             [14,16]]          [0,1,0,1],
//	        [9,10,11,12],                            [0,0,0,0],
//	        [13,14,15,16]]                           [0,1,0,1]]
type MaxPool struct {
	cfg Config
}

// NewMaxPool creates a max-pooling operation.
func NewMaxPool(cfg Config) *MaxPool {
	return &MaxPool{cfg: cfg}
}

// Apply pools a with the given window size and returns (output, mask).
func (p *MaxPool) Apply(a *tensor.RawTensor, window int) (output, mask *tensor.RawTensor, err error) {
	if err := requireFloat64("maxpool", a); err != nil {
		return nil, nil, err
	}
	s := a.Shape()
	if len(s) != 4 {
		return nil, nil, malformed("maxpool: expected 4D input [N,C,H,W], got %v", s)
	}
	N, C, H, W := s[0], s[1], s[2], s[3]
	if window <= 0 || window > H || window > W {
		return nil, nil, malformed("maxpool: window %d invalid for %dx%d input", window, H, W)
	}
	if H%window != 0 || W%window != 0 {
		return nil, nil, malformed("maxpool: window %d does not divide %dx%d input", window, H, W)
	}

	HOut, WOut := H/window, W/window
	output = tensor.Zeros(tensor.Shape{N, C, HOut, WOut})
	mask = tensor.Zeros(s)

	inputData := a.AsFloat64()
	outputData := output.AsFloat64()
	maskData := mask.AsFloat64()

	parallel.ForBatch(N, C, func(n, c int) {
		plane := (n*C + c) * H * W
		channelData := inputData[plane : plane+H*W]
		channelMask := maskData[plane : plane+H*W]
		outBase := (n*C + c) * HOut * WOut

		for outH := 0; outH < HOut; outH++ {
			hStart := outH * window
			for outW := 0; outW < WOut; outW++ {
				wStart := outW * window

				maxVal := channelData[hStart*W+wStart]
				for kh := 0; kh < window; kh++ {
					row := channelData[(hStart+kh)*W : (hStart+kh+1)*W]
					for kw := 0; kw < window; kw++ {
						if v := row[wStart+kw]; v > maxVal {
							maxVal = v
						}
					}
				}
				outputData[outBase+outH*WOut+outW] = maxVal

				for kh := 0; kh < window; kh++ {
					rowStart := (hStart + kh) * W
					for kw := 0; kw < window; kw++ {
						if channelData[rowStart+wStart+kw] == maxVal {
							channelMask[rowStart+wStart+kw]++
						}
					}
				}
			}
		}
	}, p.cfg.Parallel)

	return output, mask, nil
}
