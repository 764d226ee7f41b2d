package ops

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/brainforge/internal/tensor"
)

func TestConvolution_ValidAllOnes(t *testing.T) {
	conv := NewConvolution(DefaultConfig())
	a := tensor.Ones(tensor.Shape{1, 1, 4, 4})
	f := tensor.Ones(tensor.Shape{1, 1, 2, 2})

	out, err := conv.Apply(a, f, ModeValid)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 1, 3, 3}, out.Shape())
	for i, v := range out.AsFloat64() {
		assert.Equal(t, 4.0, v, "position %d", i)
	}
}

func TestConvolution_ValidKnownValues(t *testing.T) {
	conv := NewConvolution(Config{})

	// Two channels, two filters: filter 0 picks channel 0's top-left,
	// filter 1 sums channel 1's window.
	a, err := tensor.FromFloat64([]float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,

		1, 1, 1,
		1, 2, 1,
		1, 1, 1,
	}, tensor.Shape{1, 2, 3, 3})
	require.NoError(t, err)
	f, err := tensor.FromFloat64([]float64{
		1, 0, 0, 0, // filter 0, channel 0
		0, 0, 0, 0, // filter 0, channel 1
		0, 0, 0, 0, // filter 1, channel 0
		1, 1, 1, 1, // filter 1, channel 1
	}, tensor.Shape{2, 2, 2, 2})
	require.NoError(t, err)

	out, err := conv.Valid(a, f)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 2, 2, 2}, out.Shape())
	assert.Equal(t, []float64{1, 2, 4, 5, 5, 5, 5, 5}, out.AsFloat64())
}

func TestConvolution_OutputShapeMatchesConvOutShape(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	conv := NewConvolution(DefaultConfig())

	cases := []struct {
		a, f tensor.Shape
	}{
		{tensor.Shape{1, 1, 4, 4}, tensor.Shape{1, 1, 2, 2}},
		{tensor.Shape{3, 2, 6, 5}, tensor.Shape{4, 2, 3, 2}},
		{tensor.Shape{2, 3, 3, 3}, tensor.Shape{1, 3, 3, 3}},
		{tensor.Shape{5, 1, 7, 2}, tensor.Shape{2, 1, 1, 1}},
	}
	for _, tc := range cases {
		for _, mode := range []Mode{ModeValid, ModeFull} {
			a := tensor.Randn(tc.a, rng)
			f := tensor.Randn(tc.f, rng)
			out, err := conv.Apply(a, f, mode)
			require.NoError(t, err)

			want, err := ConvOutShape(tc.a, tc.f, mode)
			require.NoError(t, err)
			assert.Equal(t, want, out.Shape(), "%v * %v (%s)", tc.a, tc.f, mode)
		}
	}
}

func TestConvolution_FullEqualsValidOfPadded(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	conv := NewConvolution(DefaultConfig())
	a := tensor.Randn(tensor.Shape{2, 3, 5, 4}, rng)
	f := tensor.Randn(tensor.Shape{2, 3, 3, 2}, rng)

	full, err := conv.Full(a, f)
	require.NoError(t, err)

	padded, err := tensor.Pad2D(a, 2, 1)
	require.NoError(t, err)
	valid, err := conv.Valid(padded, f)
	require.NoError(t, err)

	assert.Equal(t, valid.Shape(), full.Shape())
	assert.Equal(t, valid.AsFloat64(), full.AsFloat64())
}

func TestConvolution_ChannelMismatch(t *testing.T) {
	conv := NewConvolution(DefaultConfig())
	a := tensor.Ones(tensor.Shape{1, 3, 4, 4})
	f := tensor.Ones(tensor.Shape{2, 2, 2, 2})

	for _, mode := range []Mode{ModeValid, ModeFull} {
		out, err := conv.Apply(a, f, mode)
		require.Error(t, err)
		assert.Nil(t, out)
		assert.True(t, errors.Is(err, ErrInputIncompatible))

		var incompatible *IncompatibleInputError
		require.True(t, errors.As(err, &incompatible))
		assert.Equal(t, 3, incompatible.InputChannels)
		assert.Equal(t, 2, incompatible.FilterChannels)
	}
}

func TestConvolution_UnsupportedMode(t *testing.T) {
	conv := NewConvolution(DefaultConfig())
	a := tensor.Ones(tensor.Shape{1, 1, 4, 4})
	f := tensor.Ones(tensor.Shape{1, 1, 2, 2})

	_, err := conv.Apply(a, f, Mode("same"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedMode))

	var unsupported *UnsupportedModeError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, Mode("same"), unsupported.Mode)

	_, _, err = conv.Backward(a, f, tensor.Ones(tensor.Shape{1, 1, 3, 3}), Mode("same"))
	assert.True(t, errors.Is(err, ErrUnsupportedMode))
}

func TestConvolution_ReceptiveFields(t *testing.T) {
	conv := NewConvolution(Config{})
	a, err := tensor.FromFloat64([]float64{
		1, 2, 3,
		4, 5, 6,
	}, tensor.Shape{1, 1, 2, 3})
	require.NoError(t, err)

	rf, err := conv.ReceptiveFields(a, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 2, 4}, rf.Shape())
	assert.Equal(t, []float64{1, 2, 4, 5, 2, 3, 5, 6}, rf.AsFloat64())
}

func TestConvolution_RejectsMalformedInput(t *testing.T) {
	conv := NewConvolution(DefaultConfig())

	_, err := conv.Valid(tensor.Ones(tensor.Shape{4, 4}), tensor.Ones(tensor.Shape{1, 1, 2, 2}))
	assert.True(t, errors.Is(err, ErrMalformedShape))

	_, err = conv.Valid(tensor.Ones(tensor.Shape{1, 1, 2, 2}), tensor.Ones(tensor.Shape{1, 1, 3, 3}))
	assert.True(t, errors.Is(err, ErrMalformedShape))

	f32, err := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float32)
	require.NoError(t, err)
	_, err = conv.Valid(f32, tensor.Ones(tensor.Shape{1, 1, 2, 2}))
	assert.True(t, errors.Is(err, ErrUnsupportedDType))
}

func TestConvolution_BackwardShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	conv := NewConvolution(DefaultConfig())
	a := tensor.Randn(tensor.Shape{2, 3, 5, 5}, rng)
	f := tensor.Randn(tensor.Shape{4, 3, 2, 3}, rng)

	for _, mode := range []Mode{ModeValid, ModeFull} {
		oshape, err := ConvOutShape(a.Shape(), f.Shape(), mode)
		require.NoError(t, err)

		dA, dF, err := conv.Backward(a, f, tensor.Randn(oshape, rng), mode)
		require.NoError(t, err)
		assert.Equal(t, a.Shape(), dA.Shape(), string(mode))
		assert.Equal(t, f.Shape(), dF.Shape(), string(mode))
	}
}

func TestConvolution_BackwardZeroError(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	conv := NewConvolution(DefaultConfig())
	a := tensor.Randn(tensor.Shape{1, 2, 4, 4}, rng)
	f := tensor.Randn(tensor.Shape{3, 2, 2, 2}, rng)

	dA, dF, err := conv.Backward(a, f, tensor.Zeros(tensor.Shape{1, 3, 3, 3}), ModeValid)
	require.NoError(t, err)
	for _, v := range dA.AsFloat64() {
		assert.Zero(t, v)
	}
	for _, v := range dF.AsFloat64() {
		assert.Zero(t, v)
	}
}

func TestConvolution_SequentialMatchesParallel(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	a := tensor.Randn(tensor.Shape{16, 2, 6, 6}, rng)
	f := tensor.Randn(tensor.Shape{3, 2, 3, 3}, rng)

	seq, err := NewConvolution(Config{}).Valid(a, f)
	require.NoError(t, err)
	par, err := NewConvolution(DefaultConfig()).Valid(a, f)
	require.NoError(t, err)

	assert.InDeltaSlice(t, seq.AsFloat64(), par.AsFloat64(), 1e-12)
}

func TestConvOutShape(t *testing.T) {
	tests := []struct {
		name    string
		in, f   tensor.Shape
		mode    Mode
		want    tensor.Shape
		wantErr error
	}{
		{"valid 3D", tensor.Shape{1, 4, 4}, tensor.Shape{2, 1, 2, 2}, ModeValid, tensor.Shape{2, 3, 3}, nil},
		{"full 3D", tensor.Shape{1, 4, 4}, tensor.Shape{2, 1, 2, 2}, ModeFull, tensor.Shape{2, 5, 5}, nil},
		{"valid batched", tensor.Shape{8, 3, 10, 7}, tensor.Shape{5, 3, 3, 2}, ModeValid, tensor.Shape{8, 5, 8, 6}, nil},
		{"full batched", tensor.Shape{8, 3, 10, 7}, tensor.Shape{5, 3, 3, 2}, ModeFull, tensor.Shape{8, 5, 12, 8}, nil},
		{"unknown mode", tensor.Shape{1, 4, 4}, tensor.Shape{1, 1, 2, 2}, Mode("same"), nil, ErrUnsupportedMode},
		{"2D input", tensor.Shape{4, 4}, tensor.Shape{1, 1, 2, 2}, ModeValid, nil, ErrMalformedShape},
		{"3D filter", tensor.Shape{1, 4, 4}, tensor.Shape{1, 2, 2}, ModeValid, nil, ErrMalformedShape},
		{"filter too large", tensor.Shape{1, 2, 2}, tensor.Shape{1, 1, 3, 3}, ModeValid, nil, ErrMalformedShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvOutShape(tt.in, tt.f, tt.mode)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("valid")
	require.NoError(t, err)
	assert.Equal(t, ModeValid, m)

	m, err = ParseMode("full")
	require.NoError(t, err)
	assert.Equal(t, ModeFull, m)

	_, err = ParseMode("same")
	assert.True(t, errors.Is(err, ErrUnsupportedMode))
	assert.Contains(t, err.Error(), "same")
}
