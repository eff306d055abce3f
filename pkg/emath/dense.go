package emath

// Helpers over gonum's dense matrices. The calibration code keeps all its
// matrices as *mat.Dense, laid out [row][col] exactly as the maths reads.

import(
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// rcond below which singular values count as zero when solving
const svdRcond = 1e-12

var ErrRankDeficient = errors.New("matrix has no usable rank")

// MulPinv computes b * pinv(a), where pinv is the Moore-Penrose pseudo
// inverse. It is the least squares solution X of X*a ~= b, found as
// aᵀ Xᵀ = bᵀ through an SVD of aᵀ.
func MulPinv(b, a mat.Matrix) (*mat.Dense, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if bc != ac {
		return nil, fmt.Errorf("MulPinv: b is %dx%d, a is %dx%d", br, bc, ar, ac)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a.T(), mat.SVDThin); !ok {
		return nil, errors.Wrap(ErrRankDeficient, "svd factorization failed")
	}
	rank := svd.Rank(svdRcond)
	if rank < 1 {
		return nil, ErrRankDeficient
	}

	var xt mat.Dense
	svd.SolveTo(&xt, b.T(), rank)

	return mat.DenseCopyOf(xt.T()), nil
}

func RowMax(m mat.Matrix, row int) float64 {
	_, c := m.Dims()
	max := math.Inf(-1)
	for j:=0; j<c; j++ {
		if v := m.At(row, j); v > max { max = v }
	}
	return max
}

func RowMin(m mat.Matrix, row int) float64 {
	_, c := m.Dims()
	min := math.Inf(1)
	for j:=0; j<c; j++ {
		if v := m.At(row, j); v < min { min = v }
	}
	return min
}

// RMSE is the root of the mean squared elementwise difference.
func RMSE(a, b mat.Matrix) float64 {
	r, c := a.Dims()
	sum := 0.0
	for i:=0; i<r; i++ {
		for j:=0; j<c; j++ {
			d := a.At(i, j) - b.At(i, j)
			sum += d*d
		}
	}
	return math.Sqrt(sum / float64(r*c))
}

// AllFinite is false if any element is NaN or +/-Inf
func AllFinite(m mat.Matrix) bool {
	r, c := m.Dims()
	for i:=0; i<r; i++ {
		for j:=0; j<c; j++ {
			if !IsFinite(m.At(i, j)) {
				return false
			}
		}
	}
	return true
}

// Rows copies the matrix out into [][]float64, which marshals nicely into yaml
func Rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	ret := make([][]float64, r)
	for i:=0; i<r; i++ {
		ret[i] = make([]float64, c)
		for j:=0; j<c; j++ {
			ret[i][j] = m.At(i, j)
		}
	}
	return ret
}

func MatString(name string, m mat.Matrix) string {
	return fmt.Sprintf("%s =\n%v\n", name, mat.Formatted(m, mat.Prefix(""), mat.Squeeze()))
}
