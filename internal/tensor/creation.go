package tensor

import (
	"fmt"
	"math/rand"
)

// Zeros creates a float64 tensor filled with zeros.
// Panics if the shape is invalid.
func Zeros(shape Shape) *RawTensor {
	raw, err := NewRaw(shape, Float64)
	if err != nil {
		panic(err)
	}
	return raw
}

// Full creates a float64 tensor filled with value.
func Full(shape Shape, value float64) *RawTensor {
	t := Zeros(shape)
	data := t.AsFloat64()
	for i := range data {
		data[i] = value
	}
	return t
}

// Ones creates a float64 tensor filled with ones.
func Ones(shape Shape) *RawTensor {
	return Full(shape, 1)
}

// FromFloat64 creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromFloat64(data []float64, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	raw, err := NewRaw(shape, Float64)
	if err != nil {
		return nil, err
	}
	copy(raw.AsFloat64(), data)
	return raw, nil
}

// RandUniform creates a float64 tensor with values drawn uniformly from [lo, hi).
func RandUniform(shape Shape, lo, hi float64, rng *rand.Rand) *RawTensor {
	t := Zeros(shape)
	data := t.AsFloat64()
	for i := range data {
		data[i] = lo + (hi-lo)*rng.Float64()
	}
	return t
}

// Randn creates a float64 tensor with standard normal values.
func Randn(shape Shape, rng *rand.Rand) *RawTensor {
	t := Zeros(shape)
	data := t.AsFloat64()
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return t
}

// ToFloat64 returns x as a float64 tensor. Float64 input is returned as a
// shared view; float32 input is widened into a new buffer.
func ToFloat64(x *RawTensor) *RawTensor {
	if x.DType() == Float64 {
		return x.Clone()
	}
	out := Zeros(x.Shape())
	dst := out.AsFloat64()
	for i, v := range x.AsFloat32() {
		dst[i] = float64(v)
	}
	return out
}
