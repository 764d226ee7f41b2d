// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ops provides the forward and backward passes of the brainforge
// network operations.
//
// # Overview
//
// Every operation is a small value holding only configuration. Forward
// calls return new tensors and, where the backward pass needs them, the
// intermediates it consumes. The caller owns weights, inputs and caches.
//
//   - Convolution: im2col cross-correlation in valid and full mode
//   - MaxPool: non-overlapping max reduction with an argmax-count mask
//   - Dense: affine X·W + b
//   - Recurrent: plain recurrent cell with backward-through-time
//   - LSTM: four-gate LSTM cell with backward-through-time
//   - Reshape: per-sample shape reinterpretation
//
// # Basic Usage
//
//	conv := ops.NewConvolution(ops.DefaultConfig())
//	out, err := conv.Apply(images, filters, ops.ModeValid)
//	if err != nil {
//	    return err
//	}
//	dImages, dFilters, err := conv.Backward(images, filters, upstream, ops.ModeValid)
//
//	act, _ := ops.Activation("tanh")
//	cell := ops.NewLSTM(act)
//	o, z, cache, err := cell.Forward(x, w, b)
//	dX, dW, db, err := cell.Backward(z, o, upstream, w, cache)
//
// # Errors
//
// Errors match ErrInputIncompatible, ErrUnsupportedMode or
// ErrMalformedShape through errors.Is. IncompatibleInputError and
// UnsupportedModeError carry the details for errors.As.
package ops
