// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/brainforge/internal/tensor"
)

// Type aliases for public API

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// Zeros creates a float64 tensor filled with zeros. Panics on an invalid shape.
func Zeros(shape Shape) *RawTensor {
	return tensor.Zeros(shape)
}

// Ones creates a float64 tensor filled with ones.
func Ones(shape Shape) *RawTensor {
	return tensor.Ones(shape)
}

// Full creates a float64 tensor filled with value.
func Full(shape Shape, value float64) *RawTensor {
	return tensor.Full(shape, value)
}

// FromFloat64 creates a tensor holding a copy of data.
func FromFloat64(data []float64, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat64(data, shape)
}

// RandUniform creates a tensor with values drawn uniformly from [lo, hi).
func RandUniform(shape Shape, lo, hi float64, rng *rand.Rand) *RawTensor {
	return tensor.RandUniform(shape, lo, hi, rng)
}

// Randn creates a tensor with standard normal values.
func Randn(shape Shape, rng *rand.Rand) *RawTensor {
	return tensor.Randn(shape, rng)
}

// ToFloat64 returns x as a float64 tensor.
func ToFloat64(x *RawTensor) *RawTensor {
	return tensor.ToFloat64(x)
}

// Reshape returns a view of x with a new shape; one dimension may be -1.
func Reshape(x *RawTensor, shape Shape) (*RawTensor, error) {
	return tensor.Reshape(x, shape)
}

// Pad2D zero-pads the two trailing axes of a 4-D tensor.
func Pad2D(x *RawTensor, py, px int) (*RawTensor, error) {
	return tensor.Pad2D(x, py, px)
}

// Rot180 flips both trailing axes of a 4-D tensor.
func Rot180(x *RawTensor) (*RawTensor, error) {
	return tensor.Rot180(x)
}

// SwapLeadingAxes transposes the first two axes of a 4-D tensor.
func SwapLeadingAxes(x *RawTensor) (*RawTensor, error) {
	return tensor.SwapLeadingAxes(x)
}
