// Package ops implements the forward and hand-derived backward passes of
// the network operations: convolution, max pooling, dense, plain recurrent
// and LSTM cells, and batch reshaping.
//
// Every operation holds only immutable configuration. Forward methods
// return fresh output tensors plus whatever cache the matching Backward
// needs; the caller owns both. Backward methods document which of their
// arguments they consume in place.
//
// All operations work on float64 tensors. Shape problems are reported as
// errors matching ErrMalformedShape, ErrInputIncompatible or
// ErrUnsupportedMode through errors.Is.
package ops
