package calib

import(
	"context"
	"fmt"
	"log"

	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/btrgb/pkg/ecolor"
	"github.com/abworrall/btrgb/pkg/eimage"
	"github.com/abworrall/btrgb/pkg/emath"
	"github.com/abworrall/btrgb/pkg/simplex"
	"github.com/abworrall/btrgb/pkg/target"
)

const spectralStep = 0.75

// SpectralCalibrator fits M_refl (36x6), which maps camera signals
// straight onto reflectance curves.
type SpectralCalibrator struct {
	simplex.Settings
}

func NewSpectralCalibrator() *SpectralCalibrator {
	return &SpectralCalibrator{
		Settings: simplex.Settings{MaxIterations: 5000, Tolerance: 1e-10},
	}
}

// SpectralSeed is the least squares M_refl, rRef * pinv(signals).
func SpectralSeed(rRef, signals mat.Matrix) (*Params, error) {
	m, err := emath.MulPinv(rRef, signals)
	if err != nil {
		return nil, errors.Wrapf(ErrNumericDegeneracy, "spectral seed: %v", err)
	}
	if !emath.AllFinite(m) {
		return nil, errors.Wrap(ErrNumericDegeneracy, "spectral seed")
	}
	p := NewParams(ecolor.WavelengthCount, false)
	p.M().Copy(m)
	return p, nil
}

func (c *SpectralCalibrator)Run(ctx context.Context, in Inputs) (*SpectralResult, error) {
	if err := in.validate(); err != nil {
		return nil, errors.Wrap(err, "spectral calibration")
	}
	in.Progress.report(0.0, "Spectral Calibration")

	signals, err := in.targetSignals()
	if err != nil {
		return nil, errors.Wrap(err, "spectral calibration")
	}
	if !emath.AllFinite(signals) {
		return nil, errors.Wrap(ErrNumericDegeneracy, "spectral calibration: target averages")
	}
	rRef := in.Ref.AsMatrix()
	obj, err := NewSpectralObjective(rRef, signals)
	if err != nil {
		return nil, err
	}
	in.Progress.report(0.2, "Seeding M_refl")

	seed, err := SpectralSeed(rRef, signals)
	if err != nil {
		return nil, err
	}
	step := make([]float64, SpectralDim)
	for i := range step {
		step[i] = spectralStep
	}
	in.Progress.report(0.4, "Finding M_refl")

	log.Printf("spectral: fitting %d params against %d patches\n", SpectralDim, in.Ref.PatchCount())
	res, err := simplex.Minimize(ctx, obj.Value, seed.Vector(), step, c.Settings)
	if err := optimizerError(err, "spectral calibration", res); err != nil {
		return nil, err
	}
	log.Printf("spectral: %s\n", res)
	in.Progress.report(0.5, "Evaluating M_refl")

	params, err := ParamsOver(res.X, ecolor.WavelengthCount, false)
	if err != nil {
		return nil, err
	}
	ev, err := obj.Evaluate(params.Vector())
	if err != nil {
		return nil, err
	}
	if !emath.AllFinite(ev.RCamera) {
		return nil, errors.Wrap(ErrNumericDegeneracy, "spectral calibration: camera reflectances")
	}
	log.Printf("spectral: %s", emath.MatString("M_refl", params.M()))

	img, err := NewSpectralImage(in.images(), params.M())
	if err != nil {
		return nil, errors.Wrap(err, "spectral calibration")
	}
	in.Progress.report(0.9, "Reporting")

	result := &SpectralResult{
		RReference: emath.Rows(rRef),
		RCamera:    emath.Rows(ev.RCamera),
		MRefl:      emath.Rows(params.M()),
		RMSE:       emath.RMSE(rRef, ev.RCamera),
		Z:          ev.Z,
		E1:         ev.E1,
		E2:         ev.E2,
		E3:         ev.E3,
		Iterations: res.Iterations,
		Status:     res.Status.String(),
		Params:     params,
		Image:      img,
	}

	in.Progress.report(1.0, "Spectral Calibration done")
	return result, nil
}

// SpectralImage holds the six camera channels of every pixel, and the
// M_refl that turns them into reflectance. Curves are worked out on
// demand.
type SpectralImage struct {
	W, H    int
	Signals *mat.Dense  // 6 x (W*H), pixel y*W + x
	MRefl   *mat.Dense  // 36 x 6
}

func NewSpectralImage(images []eimage.Image, mRefl mat.Matrix) (*SpectralImage, error) {
	signals, err := target.BuildCameraSignals(images, nil)
	if err != nil {
		return nil, err
	}
	if !emath.AllFinite(signals) {
		return nil, errors.Wrap(ErrNumericDegeneracy, "spectral image signals")
	}
	if r, c := mRefl.Dims(); r != ecolor.WavelengthCount || c != Channels {
		return nil, errors.Wrapf(ErrDimension, "M_refl is %dx%d", r, c)
	}
	if r, _ := signals.Dims(); r != Channels {
		return nil, errors.Wrapf(ErrDimension, "images have %d channels, want %d", r, Channels)
	}

	return &SpectralImage{
		W:       images[0].Width(),
		H:       images[0].Height(),
		Signals: signals,
		MRefl:   mat.DenseCopyOf(mRefl),
	}, nil
}

func (si *SpectralImage)String() string {
	return fmt.Sprintf("SpectralImage[%dx%d, %d bands]", si.W, si.H, ecolor.WavelengthCount)
}

// ReflectanceAt is the 36 sample curve for one pixel.
func (si *SpectralImage)ReflectanceAt(x, y int) []float64 {
	var r mat.VecDense
	r.MulVec(si.MRefl, si.Signals.ColView(x + y*si.W))
	return r.RawVector().Data
}

// XYZAt integrates the pixel's curve under the given observer and illuminant.
func (si *SpectralImage)XYZAt(x, y int, obs ecolor.ObserverType, illum ecolor.IlluminantType) hdrcolor.XYZ {
	X, Y, Z := ecolor.SpectrumToXYZ(si.ReflectanceAt(x, y), obs, illum)
	return hdrcolor.XYZ{X: X, Y: Y, Z: Z}
}

// Band renders one wavelength sample of every pixel as a single channel image.
func (si *SpectralImage)Band(i int) (*eimage.FloatImage, error) {
	if i < 0 || i >= ecolor.WavelengthCount {
		return nil, errors.Wrapf(ErrDimension, "band %d", i)
	}
	img := eimage.NewFloatImage(si.W, si.H, 1)
	dst := mat.NewVecDense(si.W*si.H, img.Channel(0))
	dst.MulVec(si.Signals.T(), si.MRefl.RowView(i))
	return img, nil
}
