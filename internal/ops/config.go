package ops

import "github.com/born-ml/brainforge/internal/parallel"

// Config holds the execution settings shared by the spatial operations.
// The zero value runs everything on the calling goroutine.
type Config struct {
	// Parallel controls how batch samples and pooling planes are split
	// across goroutines.
	Parallel parallel.Config
}

// DefaultConfig returns a Config that parallelises over the batch using
// every CPU.
func DefaultConfig() Config {
	return Config{Parallel: parallel.DefaultConfig()}
}
