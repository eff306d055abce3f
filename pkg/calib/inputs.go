package calib

import(
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/btrgb/pkg/eimage"
	"github.com/abworrall/btrgb/pkg/refdata"
	"github.com/abworrall/btrgb/pkg/target"
)

// Inputs is what both calibration stages work from. The images are the
// two exposures, already flat-fielded and registered, three channels each.
type Inputs struct {
	Art1, Art2 eimage.Image
	Target     target.Geometry
	Ref        *refdata.RefData
	Progress   ProgressFunc
}

func (in Inputs)validate() error {
	switch {
	case in.Art1 == nil || in.Art2 == nil:
		return errors.Wrap(ErrInput, "need both art images")
	case in.Ref == nil:
		return errors.Wrap(ErrInput, "need reference data")
	case in.Target.Rows == 0 && in.Target.Cols == 0:
		return errors.Wrap(ErrInput, "need a located color target")
	}

	if in.Art1.Channels() + in.Art2.Channels() != Channels {
		return errors.Wrapf(ErrDimension, "art images have %d+%d channels, want %d",
			in.Art1.Channels(), in.Art2.Channels(), Channels)
	}
	if in.Art1.Width() != in.Art2.Width() || in.Art1.Height() != in.Art2.Height() {
		return errors.Wrapf(ErrDimension, "art images are %dx%d and %dx%d",
			in.Art1.Width(), in.Art1.Height(), in.Art2.Width(), in.Art2.Height())
	}
	if in.Target.Rows != in.Ref.RowCount() || in.Target.Cols != in.Ref.ColCount() {
		return errors.Wrapf(ErrDimension, "target is %dx%d, reference data is %dx%d",
			in.Target.Rows, in.Target.Cols, in.Ref.RowCount(), in.Ref.ColCount())
	}
	return nil
}

func (in Inputs)images() []eimage.Image { return []eimage.Image{in.Art1, in.Art2} }

// targetSignals averages each patch in both exposures, giving the 6 x P
// camera signal matrix.
func (in Inputs)targetSignals() (*mat.Dense, error) {
	t1, err := target.New(in.Art1, in.Target)
	if err != nil {
		return nil, errors.Wrap(err, "art1 target")
	}
	t2, err := target.New(in.Art2, in.Target)
	if err != nil {
		return nil, errors.Wrap(err, "art2 target")
	}
	return target.BuildTargetAvgMatrix(t1, t2)
}
