package ops

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/born-ml/brainforge/internal/tensor"
)

// general wraps a row-major slice as a BLAS matrix without copying.
func general(data []float64, rows, cols int) blas64.General {
	return blas64.General{Rows: rows, Cols: cols, Stride: cols, Data: data}
}

// gemm computes c = op(a)·op(b) + beta·c, where op transposes its argument
// when the matching flag is set. Dimensions describe a and b as stored.
func gemm(transA, transB bool, a []float64, aRows, aCols int, b []float64, bRows, bCols int, beta float64, c []float64) {
	ta, tb := blas.NoTrans, blas.NoTrans
	m := aRows
	if transA {
		ta = blas.Trans
		m = aCols
	}
	n := bCols
	if transB {
		tb = blas.Trans
		n = bRows
	}
	blas64.Gemm(ta, tb, 1,
		general(a, aRows, aCols),
		general(b, bRows, bCols),
		beta,
		general(c, m, n))
}

func requireFloat64(op string, ts ...*tensor.RawTensor) error {
	for i, t := range ts {
		if t == nil {
			return malformed("%s: argument %d is nil", op, i)
		}
		if t.DType() != tensor.Float64 {
			return errors.Wrapf(ErrUnsupportedDType, "%s: argument %d is %s, want float64", op, i, t.DType())
		}
	}
	return nil
}
