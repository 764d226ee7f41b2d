// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/born-ml/brainforge/tensor"
)

// TestRawTensorAPI verifies RawTensor type alias exposes expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float64)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want (2, 3)", raw.Shape())
	}
	if raw.DType() != tensor.Float64 {
		t.Errorf("DType() = %v, want Float64", raw.DType())
	}

	data := raw.AsFloat64()
	if len(data) != 6 {
		t.Errorf("AsFloat64() length = %d, want 6", len(data))
	}
}

// TestConstructors verifies the public constructors forward correctly.
func TestConstructors(t *testing.T) {
	x, err := tensor.FromFloat64([]float64{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	if err != nil {
		t.Fatalf("FromFloat64 failed: %v", err)
	}

	rot, err := tensor.Rot180(x)
	if err != nil {
		t.Fatalf("Rot180 failed: %v", err)
	}
	if rot.At(0, 0, 0, 0) != 4 {
		t.Errorf("Rot180 first element = %v, want 4", rot.At(0, 0, 0, 0))
	}

	flat, err := tensor.Reshape(x, tensor.Shape{-1})
	if err != nil {
		t.Fatalf("Reshape failed: %v", err)
	}
	if !flat.Shape().Equal(tensor.Shape{4}) {
		t.Errorf("Reshape shape = %v, want (4)", flat.Shape())
	}

	if tensor.Ones(tensor.Shape{2}).At(1) != 1 {
		t.Error("Ones should fill with 1")
	}
}
