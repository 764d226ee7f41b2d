// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/brainforge/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType()
//   - Zero-copy data access via AsFloat64(), AsFloat32()
//   - Element access via At() and Set()
//   - Reference counting for shared views
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float64)
//	data := raw.AsFloat64()  // Zero-copy access
//	view := raw.Clone()      // Shares buffer via reference counting
type RawTensor = tensor.RawTensor

// NewRaw creates a zero-filled tensor with the given shape and data type.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}
