// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense row-major arrays that brainforge
// operations consume and produce.
//
// # Overview
//
// A RawTensor is a contiguous n-dimensional array of float64 (or float32)
// values with a reference-counted buffer. Views created with Clone or
// Reshape share the buffer; Copy makes an independent one.
//
// # Basic Usage
//
//	import "github.com/born-ml/brainforge/tensor"
//
//	func main() {
//	    x := tensor.Zeros(tensor.Shape{2, 3})
//	    x.Set(1.5, 0, 2)
//
//	    y, err := tensor.FromFloat64([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    data := y.AsFloat64() // zero-copy view
//	}
//
// # Layout Helpers
//
// Pad2D, Rot180 and SwapLeadingAxes work on 4-D (batch, channels, height,
// width) tensors and always return new tensors. Reshape returns a view.
//
// # Memory Management
//
// The buffer is shared by all views of a tensor and freed when the last
// view calls Release. Forgetting to Release is safe; the garbage collector
// reclaims the buffer as usual.
package tensor
