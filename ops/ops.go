// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ops

import (
	"github.com/born-ml/brainforge/internal/activation"
	internalops "github.com/born-ml/brainforge/internal/ops"
	"github.com/born-ml/brainforge/internal/parallel"
	"github.com/born-ml/brainforge/tensor"
)

// Operation types.
type (
	// Convolution computes 2D cross-correlation through im2col.
	Convolution = internalops.Convolution
	// MaxPool reduces non-overlapping windows to their maximum.
	MaxPool = internalops.MaxPool
	// Dense is the affine map X·W + b.
	Dense = internalops.Dense
	// Recurrent is a plain recurrent cell.
	Recurrent = internalops.Recurrent
	// LSTM is a four-gate long short-term memory cell.
	LSTM = internalops.LSTM
	// LSTMCache holds the per-step intermediates of an LSTM forward pass.
	LSTMCache = internalops.LSTMCache
	// LSTMSlot names one tensor in an LSTMCache.
	LSTMSlot = internalops.LSTMSlot
	// Reshape reinterprets every sample of a batch under a new shape.
	Reshape = internalops.Reshape
)

// LSTM cache slots.
const (
	CellState     = internalops.CellState
	ActivatedCell = internalops.ActivatedCell
	Candidate     = internalops.Candidate
	ForgetGate    = internalops.ForgetGate
	InputGate     = internalops.InputGate
	OutputGate    = internalops.OutputGate
)

// Mode selects the convolution border policy.
type Mode = internalops.Mode

// Convolution modes.
const (
	ModeValid = internalops.ModeValid
	ModeFull  = internalops.ModeFull
)

// Config holds execution settings for the spatial operations.
type Config = internalops.Config

// ParallelConfig controls how batch work is split across goroutines.
type ParallelConfig = parallel.Config

// ActivationFunc is an elementwise nonlinearity with its derivative
// expressed in terms of the activated output.
type ActivationFunc = activation.Activation

// Errors.
var (
	ErrInputIncompatible = internalops.ErrInputIncompatible
	ErrUnsupportedMode   = internalops.ErrUnsupportedMode
	ErrMalformedShape    = internalops.ErrMalformedShape
	ErrUnsupportedDType  = internalops.ErrUnsupportedDType
	ErrUnknownActivation = activation.ErrUnknownActivation
)

// Error types with details.
type (
	IncompatibleInputError = internalops.IncompatibleInputError
	UnsupportedModeError   = internalops.UnsupportedModeError
)

// DefaultConfig returns a Config that parallelises over the batch.
func DefaultConfig() Config {
	return internalops.DefaultConfig()
}

// NewConvolution creates a convolution operation.
func NewConvolution(cfg Config) *Convolution {
	return internalops.NewConvolution(cfg)
}

// NewMaxPool creates a max-pooling operation.
func NewMaxPool(cfg Config) *MaxPool {
	return internalops.NewMaxPool(cfg)
}

// NewRecurrent creates a recurrent cell with the given output activation.
func NewRecurrent(act ActivationFunc) *Recurrent {
	return internalops.NewRecurrent(act)
}

// NewLSTM creates an LSTM cell with the given cell activation.
func NewLSTM(act ActivationFunc) *LSTM {
	return internalops.NewLSTM(act)
}

// LSTMCacheFromStacked wraps a (6, time, batch, units) tensor obtained from
// LSTMCache.Stacked.
func LSTMCacheFromStacked(stacked *tensor.RawTensor) (*LSTMCache, error) {
	return internalops.LSTMCacheFromStacked(stacked)
}

// ParseMode converts "valid" or "full" into a Mode.
func ParseMode(s string) (Mode, error) {
	return internalops.ParseMode(s)
}

// ConvOutShape infers the output shape of a convolution.
func ConvOutShape(inshape, fshape tensor.Shape, mode Mode) (tensor.Shape, error) {
	return internalops.ConvOutShape(inshape, fshape, mode)
}

// PoolOutShape infers the output shape of max pooling.
func PoolOutShape(inshape tensor.Shape, window int) (tensor.Shape, error) {
	return internalops.PoolOutShape(inshape, window)
}

// Activation returns the named activation: linear, sigmoid, tanh, relu or
// softplus.
func Activation(name string) (ActivationFunc, error) {
	return activation.Get(name)
}

// Activations lists the available activation names.
func Activations() []string {
	return activation.Names()
}
