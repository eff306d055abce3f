package calib

import(
	"math"

	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/btrgb/pkg/ecolor"
	"github.com/abworrall/btrgb/pkg/refdata"
)

// DeltaEObjective scores a candidate M (3x6) and offset (6) by how far
// the colors they produce for the target patches are from the reference
// colors. It holds no mutable state, so it's safe to call concurrently.
type DeltaEObjective struct {
	signals *mat.Dense   // 6 x P, camera signal per patch
	refLab  []ecolor.Lab
	wp      ecolor.WhitePoint
}

// DeltaEEval is everything worked out along the way to the mean deltaE.
type DeltaEEval struct {
	Mean   float64
	XYZ    *mat.Dense  // 3 x P
	Lab    *mat.Dense  // 3 x P
	DeltaE []float64   // per patch
}

// DeltaEDim is the size of the parameter vector: M then offset
const DeltaEDim = 3*Channels + Channels

func NewDeltaEObjective(signals *mat.Dense, ref *refdata.RefData) (*DeltaEObjective, error) {
	if signals == nil || ref == nil {
		return nil, errors.Wrap(ErrInput, "deltaE objective needs signals and reference data")
	}
	r, c := signals.Dims()
	if r != Channels || c != ref.PatchCount() {
		return nil, errors.Wrapf(ErrDimension, "signals are %dx%d, want %dx%d", r, c, Channels, ref.PatchCount())
	}
	return &DeltaEObjective{signals: signals, refLab: ref.Labs(), wp: ref.WhitePoint}, nil
}

func (o *DeltaEObjective)Dim() int { return DeltaEDim }

func (o *DeltaEObjective)Evaluate(x []float64) (DeltaEEval, error) {
	p, err := ParamsOver(x, 3, true)
	if err != nil {
		return DeltaEEval{}, err
	}

	// corrected = signals - offset, broadcast along each channel's row
	offset := p.Offset()
	_, nPatch := o.signals.Dims()
	corrected := mat.NewDense(Channels, nPatch, nil)
	corrected.Apply(func(i, j int, v float64) float64 { return v - offset[i] }, o.signals)

	ev := DeltaEEval{
		XYZ:    mat.NewDense(3, nPatch, nil),
		Lab:    mat.NewDense(3, nPatch, nil),
		DeltaE: make([]float64, nPatch),
	}
	ev.XYZ.Mul(p.M(), corrected)

	sum := 0.0
	for j:=0; j<nPatch; j++ {
		xyz := hdrcolor.XYZ{X: ev.XYZ.At(0,j), Y: ev.XYZ.At(1,j), Z: ev.XYZ.At(2,j)}
		lab := ecolor.XYZToLab(xyz, o.wp)
		ev.Lab.SetCol(j, []float64{lab.L, lab.A, lab.B})
		ev.DeltaE[j] = ecolor.DeltaE76(lab, o.refLab[j])
		sum += ev.DeltaE[j]
	}
	ev.Mean = sum / float64(nPatch)

	return ev, nil
}

// Value is the simplex.Func form; a malformed x scores NaN.
func (o *DeltaEObjective)Value(x []float64) float64 {
	ev, err := o.Evaluate(x)
	if err != nil {
		return math.NaN()
	}
	return ev.Mean
}
