package refdata

import(
	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/btrgb/pkg/ecolor"
)

// All the matrices have one column per patch, in PatchIndex order:
//
//   A1, B1, C1, ..., K1,
//   A2, B2, C2, ..., K2,
//   ...

func (rd *RefData)perPatch(nRows int, fill func(cp *ColorPatch, dst []float64)) *mat.Dense {
	m := mat.NewDense(nRows, rd.PatchCount(), nil)
	col := make([]float64, nRows)
	for row:=0; row<rd.rows; row++ {
		for c:=0; c<rd.cols; c++ {
			fill(rd.patch(row, c), col)
			m.SetCol(rd.PatchIndex(row, c), col)
		}
	}
	return m
}

// AsMatrix is the reflectance data, one row per wavelength (36 x P).
func (rd *RefData)AsMatrix() *mat.Dense {
	return rd.perPatch(ecolor.WavelengthCount, func(cp *ColorPatch, dst []float64) {
		copy(dst, cp.refl)
	})
}

// XYZMatrix is 3 x P.
func (rd *RefData)XYZMatrix() *mat.Dense {
	return rd.perPatch(3, func(cp *ColorPatch, dst []float64) {
		dst[0], dst[1], dst[2] = cp.xyz.X, cp.xyz.Y, cp.xyz.Z
	})
}

// LabMatrix is 3 x P.
func (rd *RefData)LabMatrix() *mat.Dense {
	return rd.perPatch(3, func(cp *ColorPatch, dst []float64) {
		dst[0], dst[1], dst[2] = cp.lab.L, cp.lab.A, cp.lab.B
	})
}

// Labs is the reference Lab of each patch, in PatchIndex order.
func (rd *RefData)Labs() []ecolor.Lab {
	ret := make([]ecolor.Lab, rd.PatchCount())
	for row:=0; row<rd.rows; row++ {
		for col:=0; col<rd.cols; col++ {
			ret[rd.PatchIndex(row, col)] = rd.patch(row, col).lab
		}
	}
	return ret
}
