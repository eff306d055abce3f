package calib

import(
	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/btrgb/pkg/eimage"
	"github.com/abworrall/btrgb/pkg/emath"
)

// ColorManagedResult is the outcome of color managed calibration. The
// yaml keys are the ones the report has always used. Per-patch grids are
// [row][col]; the matrices have a column per patch, in refdata order.
type ColorManagedResult struct {
	DeltaEAvg   float64      `yaml:"CM_DELTA_E_AVG"`
	M           [][]float64  `yaml:"CM_M"`
	Offsets     []float64    `yaml:"CM_OFFSETS"`
	DeltaE      [][]float64  `yaml:"CM_DELTA_E_VALUES"`
	CameraSigs  [][]float64  `yaml:"CM_CAMERA_SIGS"`
	XYZ         [][]float64  `yaml:"CM_XYZ"`
	LCamera     [][]float64  `yaml:"L_camera"`
	ACamera     [][]float64  `yaml:"a_camera"`
	BCamera     [][]float64  `yaml:"b_camera"`
	LRef        [][]float64  `yaml:"L_ref"`
	ARef        [][]float64  `yaml:"a_ref"`
	BRef        [][]float64  `yaml:"b_ref"`

	Iterations  int          `yaml:"CM_ITERATIONS"`
	Status      string       `yaml:"CM_STATUS"`
	ColorSpace  string       `yaml:"CM_COLOR_SPACE"`
	Conversion  [][]float64  `yaml:"CM_CONVERSION_MATRIX"`  // XYZ(0-100) to linear working space RGB
	ImageRows   int          `yaml:"GI_IMG_ROWS"`
	ImageCols   int          `yaml:"GI_IMG_COLS"`

	// The artifacts, which don't go in the report
	Params      *Params             `yaml:"-"`
	Image       *eimage.FloatImage  `yaml:"-"`  // gamma encoded, in ColorSpace
	XYZImage    *eimage.FloatImage  `yaml:"-"`  // XYZ, 0-100 scale
	DeltaEGrid  emath.FloatGrid     `yaml:"-"`
}

// SpectralResult is the outcome of spectral calibration.
type SpectralResult struct {
	RReference  [][]float64  `yaml:"SP_R_reference"`
	RCamera     [][]float64  `yaml:"SP_R_camera"`
	MRefl       [][]float64  `yaml:"SP_M_refl"`
	RMSE        float64      `yaml:"SP_RMSE"`
	Z           float64      `yaml:"SP_Z"`
	E1          float64      `yaml:"SP_E1"`
	E2          float64      `yaml:"SP_E2"`
	E3          float64      `yaml:"SP_E3"`

	Iterations  int          `yaml:"SP_ITERATIONS"`
	Status      string       `yaml:"SP_STATUS"`

	Params      *Params        `yaml:"-"`
	Image       *SpectralImage `yaml:"-"`
}

// patchGrid lays per-patch values (in refdata order) out as [row][col]
func patchGrid(vals []float64, rows, cols int) [][]float64 {
	g := make([][]float64, rows)
	for r:=0; r<rows; r++ {
		g[r] = make([]float64, cols)
		copy(g[r], vals[r*cols:(r+1)*cols])
	}
	return g
}

func matRowGrid(m mat.Matrix, row, rows, cols int) [][]float64 {
	_, n := m.Dims()
	vals := make([]float64, n)
	mat.Row(vals, row, m)
	return patchGrid(vals, rows, cols)
}

func floatGrid(vals []float64, rows, cols int) emath.FloatGrid {
	fg := emath.NewFloatGrid(cols, rows)
	for r:=0; r<rows; r++ {
		for c:=0; c<cols; c++ {
			fg.Set(c, r, vals[c+r*cols])
		}
	}
	return fg
}
