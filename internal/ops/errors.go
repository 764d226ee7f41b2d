package ops

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors. Concrete errors returned by this package match one of
// these through errors.Is.
var (
	ErrInputIncompatible = errors.New("input incompatible with filter")
	ErrUnsupportedMode   = errors.New("unsupported convolution mode")
	ErrMalformedShape    = errors.New("malformed shape")
	ErrUnsupportedDType  = errors.New("unsupported dtype")
)

// IncompatibleInputError reports a filter bank whose channel depth differs
// from the input's.
type IncompatibleInputError struct {
	InputChannels  int
	FilterChannels int
}

// Error implements the error interface.
func (e *IncompatibleInputError) Error() string {
	return fmt.Sprintf("supplied filter is incompatible with supplied input: input depth %d != %d filter depth",
		e.InputChannels, e.FilterChannels)
}

// Is reports whether target is ErrInputIncompatible.
func (e *IncompatibleInputError) Is(target error) bool {
	return target == ErrInputIncompatible
}

// UnsupportedModeError reports a convolution mode other than valid or full.
type UnsupportedModeError struct {
	Mode Mode
}

// Error implements the error interface.
func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("unsupported convolution mode %q (want %q or %q)", string(e.Mode), ModeValid, ModeFull)
}

// Is reports whether target is ErrUnsupportedMode.
func (e *UnsupportedModeError) Is(target error) bool {
	return target == ErrUnsupportedMode
}

func malformed(format string, args ...any) error {
	return errors.Wrapf(ErrMalformedShape, format, args...)
}
