package ops

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/brainforge/internal/tensor"
)

func TestReshape_ForwardBackward(t *testing.T) {
	data := make([]float64, 2*3*4)
	for i := range data {
		data[i] = float64(i)
	}
	x, err := tensor.FromFloat64(data, tensor.Shape{2, 3, 4})
	require.NoError(t, err)

	var r Reshape
	flat, err := r.Forward(x, tensor.Shape{12})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 12}, flat.Shape())
	assert.Equal(t, data, flat.AsFloat64())

	back, err := r.Backward(flat, tensor.Shape{3, 4})
	require.NoError(t, err)
	assert.Equal(t, x.Shape(), back.Shape())
	assert.Equal(t, x.At(1, 2, 3), back.At(1, 2, 3))
}

func TestReshape_SharesData(t *testing.T) {
	x := tensor.Zeros(tensor.Shape{1, 2, 2})
	view, err := Reshape{}.Forward(x, tensor.Shape{4})
	require.NoError(t, err)

	view.Set(7, 0, 3)
	assert.Equal(t, 7.0, x.At(0, 1, 1))
}

func TestReshape_Malformed(t *testing.T) {
	x := tensor.Zeros(tensor.Shape{2, 3, 4})

	_, err := Reshape{}.Forward(x, tensor.Shape{5})
	assert.True(t, errors.Is(err, ErrMalformedShape))

	_, err = Reshape{}.Forward(nil, tensor.Shape{5})
	assert.True(t, errors.Is(err, ErrMalformedShape))
}
