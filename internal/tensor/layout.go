package tensor

import "fmt"

// Reshape returns a view of x with a new shape. One dimension may be -1,
// in which case it is inferred from the element count.
func Reshape(x *RawTensor, newShape Shape) (*RawTensor, error) {
	if x == nil {
		return nil, fmt.Errorf("Reshape: input tensor is nil")
	}

	totalElements := x.NumElements()
	inferIdx := -1
	product := 1
	for i, dim := range newShape {
		switch {
		case dim == -1:
			if inferIdx >= 0 {
				return nil, fmt.Errorf("Reshape: can only have one -1 dimension")
			}
			inferIdx = i
		case dim <= 0:
			return nil, fmt.Errorf("Reshape: dimensions must be positive, got %d", dim)
		default:
			product *= dim
		}
	}

	actualShape := newShape.Clone()
	if inferIdx >= 0 {
		if totalElements%product != 0 {
			return nil, fmt.Errorf("Reshape: cannot infer dimension for shape %v from %d elements", newShape, totalElements)
		}
		actualShape[inferIdx] = totalElements / product
	}

	if actualShape.NumElements() != totalElements {
		return nil, fmt.Errorf("Reshape: cannot reshape %d elements to shape %v", totalElements, actualShape)
	}

	result := x.Clone()
	result.shape = actualShape
	result.stride = actualShape.ComputeStrides()
	return result, nil
}

// Pad2D zero-pads the two trailing axes of a 4-D float64 tensor by py rows
// and px columns on each side.
func Pad2D(x *RawTensor, py, px int) (*RawTensor, error) {
	s := x.Shape()
	if len(s) != 4 {
		return nil, fmt.Errorf("Pad2D: expected 4D tensor, got shape %v", s)
	}
	if py < 0 || px < 0 {
		return nil, fmt.Errorf("Pad2D: negative padding (%d, %d)", py, px)
	}

	n, c, h, w := s[0], s[1], s[2], s[3]
	ph, pw := h+2*py, w+2*px
	out := Zeros(Shape{n, c, ph, pw})

	src := x.AsFloat64()
	dst := out.AsFloat64()
	for plane := 0; plane < n*c; plane++ {
		srcPlane := src[plane*h*w : (plane+1)*h*w]
		dstPlane := dst[plane*ph*pw : (plane+1)*ph*pw]
		for y := 0; y < h; y++ {
			copy(dstPlane[(y+py)*pw+px:(y+py)*pw+px+w], srcPlane[y*w:(y+1)*w])
		}
	}
	return out, nil
}

// Rot180 rotates every plane of a 4-D float64 tensor by 180 degrees
// (flips both trailing axes).
func Rot180(x *RawTensor) (*RawTensor, error) {
	s := x.Shape()
	if len(s) != 4 {
		return nil, fmt.Errorf("Rot180: expected 4D tensor, got shape %v", s)
	}

	h, w := s[2], s[3]
	planeSize := h * w
	out := Zeros(s)
	src := x.AsFloat64()
	dst := out.AsFloat64()
	for base := 0; base < len(src); base += planeSize {
		for i := 0; i < planeSize; i++ {
			dst[base+planeSize-1-i] = src[base+i]
		}
	}
	return out, nil
}

// SwapLeadingAxes transposes the first two axes of a 4-D float64 tensor:
// (a, b, h, w) -> (b, a, h, w).
func SwapLeadingAxes(x *RawTensor) (*RawTensor, error) {
	s := x.Shape()
	if len(s) != 4 {
		return nil, fmt.Errorf("SwapLeadingAxes: expected 4D tensor, got shape %v", s)
	}

	a, b, planeSize := s[0], s[1], s[2]*s[3]
	out := Zeros(Shape{b, a, s[2], s[3]})
	src := x.AsFloat64()
	dst := out.AsFloat64()
	for i := 0; i < a; i++ {
		for j := 0; j < b; j++ {
			copy(dst[(j*a+i)*planeSize:(j*a+i+1)*planeSize], src[(i*b+j)*planeSize:(i*b+j+1)*planeSize])
		}
	}
	return out, nil
}
