package calib

import(
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/btrgb/pkg/ecolor"
	"github.com/abworrall/btrgb/pkg/emath"
)

// Weights of the peak and trough terms; these favour getting the shape
// of each curve's extremes right over the overall fit.
const(
	PeakWeight   = 10.0
	TroughWeight = 50.0
)

// SpectralObjective scores a candidate M_refl (36x6) by how well it
// recovers the reference reflectances from the camera signals.
type SpectralObjective struct {
	rRef    *mat.Dense  // 36 x P
	signals *mat.Dense  // 6 x P
}

type SpectralEval struct {
	Z          float64
	E1, E2, E3 float64
	RCamera    *mat.Dense  // 36 x P
}

const SpectralDim = ecolor.WavelengthCount * Channels

func NewSpectralObjective(rRef, signals *mat.Dense) (*SpectralObjective, error) {
	if rRef == nil || signals == nil {
		return nil, errors.Wrap(ErrInput, "spectral objective needs reference reflectances and signals")
	}
	rr, rc := rRef.Dims()
	sr, sc := signals.Dims()
	if rr != ecolor.WavelengthCount || sr != Channels || rc != sc {
		return nil, errors.Wrapf(ErrDimension, "reference is %dx%d, signals are %dx%d", rr, rc, sr, sc)
	}
	return &SpectralObjective{rRef: rRef, signals: signals}, nil
}

func (o *SpectralObjective)Dim() int { return SpectralDim }

func (o *SpectralObjective)Evaluate(x []float64) (SpectralEval, error) {
	p, err := ParamsOver(x, ecolor.WavelengthCount, false)
	if err != nil {
		return SpectralEval{}, err
	}

	ev := SpectralEval{}
	ev.RCamera = &mat.Dense{}
	ev.RCamera.Mul(p.M(), o.signals)
	ev.E1, ev.E2, ev.E3, ev.Z = SpectralError(o.rRef, ev.RCamera)
	return ev, nil
}

func (o *SpectralObjective)Value(x []float64) float64 {
	ev, err := o.Evaluate(x)
	if err != nil {
		return math.NaN()
	}
	return ev.Z
}

// SpectralError compares two sets of reflectance curves (one per column):
//
//   e1 = Frobenius norm of rRef - rCam
//   e2 = sum over wavelengths of (max of rRef's row - max of rCam's row)^2
//   e3 = the same, for row minima
//   z  = e1 + 10*e2 + 50*e3
//
// Nothing is normalised by the number of patches.
func SpectralError(rRef, rCam mat.Matrix) (e1, e2, e3, z float64) {
	var diff mat.Dense
	diff.Sub(rRef, rCam)
	e1 = mat.Norm(&diff, 2)

	rows, _ := rRef.Dims()
	for i:=0; i<rows; i++ {
		dMax := emath.RowMax(rRef, i) - emath.RowMax(rCam, i)
		dMin := emath.RowMin(rRef, i) - emath.RowMin(rCam, i)
		e2 += dMax * dMax
		e3 += dMin * dMin
	}

	return e1, e2, e3, SpectralScore(e1, e2, e3)
}

func SpectralScore(e1, e2, e3 float64) float64 {
	return e1 + PeakWeight*e2 + TroughWeight*e3
}
