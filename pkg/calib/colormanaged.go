package calib

import(
	"context"
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

// The starting point for M and the offsets, found by trial and error.
var(
	ColorManagedSeedM = [3][Channels]float64{
		{0.1, 0.1, 0.25, 0.5, 0.1, 0.1},
		{0.1, 0.1, 0.25, 0.1, 1.0, 0.1},
		{0.1, 0.1, 0.25, 0.1, 0.1, 0.5},
	}
	ColorManagedSeedOffset = 0.01

	colorManagedStepM      = 0.75
	colorManagedStepOffset = 0.01
)

// ColorManagedCalibrator fits M and the offsets, so that
//   XYZ = M * (signal - offset)
// minimizes the mean deltaE over the target's patches.
type ColorManagedCalibrator struct {
	simplex.Settings
	ColorSpace ecolor.ColorSpace
}

func NewColorManagedCalibrator() *ColorManagedCalibrator {
	return &ColorManagedCalibrator{
		Settings:   simplex.Settings{MaxIterations: 50000, Tolerance: 1e-10},
		ColorSpace: ecolor.ProPhoto,
	}
}

func ColorManagedSeed() *Params {
	p := NewParams(3, true)
	for i:=0; i<3; i++ {
		p.M().SetRow(i, ColorManagedSeedM[i][:])
	}
	for i := range p.Offset() {
		p.Offset()[i] = ColorManagedSeedOffset
	}
	return p
}

func colorManagedSteps() []float64 {
	step := make([]float64, DeltaEDim)
	for i := range step {
		if i < 3*Channels {
			step[i] = colorManagedStepM
		} else {
			step[i] = colorManagedStepOffset
		}
	}
	return step
}

func (c *ColorManagedCalibrator)Run(ctx context.Context, in Inputs) (*ColorManagedResult, error) {
	if err := in.validate(); err != nil {
		return nil, errors.Wrap(err, "color managed calibration")
	}
	in.Progress.report(0.0, "Color Managed Calibration")

	signals, err := in.targetSignals()
	if err != nil {
		return nil, errors.Wrap(err, "color managed calibration")
	}
	if !emath.AllFinite(signals) {
		return nil, errors.Wrap(ErrNumericDegeneracy, "color managed calibration: target averages")
	}
	obj, err := NewDeltaEObjective(signals, in.Ref)
	if err != nil {
		return nil, err
	}
	in.Progress.report(0.1, "Finding M and offsets")

	log.Printf("color managed: fitting %d params against %d patches\n", DeltaEDim, in.Ref.PatchCount())
	res, err := simplex.Minimize(ctx, obj.Value, ColorManagedSeed().Vector(), colorManagedSteps(), c.Settings)
	if err := optimizerError(err, "color managed calibration", res); err != nil {
		return nil, err
	}
	log.Printf("color managed: %s\n", res)

	params, err := ParamsOver(res.X, 3, true)
	if err != nil {
		return nil, err
	}
	ev, err := obj.Evaluate(params.Vector())
	if err != nil {
		return nil, err
	}
	log.Printf("color managed: %s", emath.MatString("M", params.M()))
	in.Progress.report(0.6, "Applying calibration")

	xyzImg, rgbImg, conv, err := c.materialize(in, params)
	if err != nil {
		return nil, errors.Wrap(err, "color managed calibration")
	}
	in.Progress.report(0.9, "Reporting")

	rows, cols := in.Ref.RowCount(), in.Ref.ColCount()
	refLab := in.Ref.LabMatrix()
	result := &ColorManagedResult{
		DeltaEAvg:  ev.Mean,
		M:          emath.Rows(params.M()),
		Offsets:    append([]float64{}, params.Offset()...),
		DeltaE:     patchGrid(ev.DeltaE, rows, cols),
		CameraSigs: emath.Rows(signals),
		XYZ:        emath.Rows(ev.XYZ),
		LCamera:    matRowGrid(ev.Lab, 0, rows, cols),
		ACamera:    matRowGrid(ev.Lab, 1, rows, cols),
		BCamera:    matRowGrid(ev.Lab, 2, rows, cols),
		LRef:       matRowGrid(refLab, 0, rows, cols),
		ARef:       matRowGrid(refLab, 1, rows, cols),
		BRef:       matRowGrid(refLab, 2, rows, cols),
		Iterations: res.Iterations,
		Status:     res.Status.String(),
		ColorSpace: c.ColorSpace.String(),
		Conversion: emath.Rows(mat.NewDense(3, 3, conv.Matrix[:])),
		ImageRows:  in.Art1.Height(),
		ImageCols:  in.Art1.Width(),

		Params:     params,
		Image:      rgbImg,
		XYZImage:   xyzImg,
		DeltaEGrid: floatGrid(ev.DeltaE, rows, cols),
	}

	in.Progress.report(1.0, "Color Managed Calibration done")
	return result, nil
}

// materialize runs every pixel through M and the offsets, giving an XYZ
// image, and then the gamma encoded working space image.
func (c *ColorManagedCalibrator)materialize(in Inputs, params *Params) (*eimage.FloatImage, *eimage.FloatImage, ecolor.Converter, error) {
	conv := ecolor.NewConverter(c.ColorSpace, in.Ref.WhitePoint)

	signals, err := target.BuildCameraSignals(in.images(), params.Offset())
	if err != nil {
		return nil, nil, conv, err
	}

	var xyz mat.Dense
	xyz.Mul(params.M(), signals)
	if !emath.AllFinite(&xyz) {
		return nil, nil, conv, errors.Wrap(ErrNumericDegeneracy, "calibrated image")
	}

	w, h := in.Art1.Width(), in.Art1.Height()

	// A fresh Dense is packed, so its rows are exactly our channel planes
	xyzImg := &eimage.FloatImage{W: w, H: h, C: 3, Pix: xyz.RawMatrix().Data}
	rgbImg := eimage.NewFloatImage(w, h, 3)
	if fi, ok := in.Art1.(*eimage.FloatImage); ok {
		xyzImg.Capture = fi.Capture
		rgbImg.Capture = fi.Capture
	}

	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			v := hdrcolor.XYZ{X: xyzImg.At(x,y,0), Y: xyzImg.At(x,y,1), Z: xyzImg.At(x,y,2)}
			rgb := conv.Encoded(v)
			for ch:=0; ch<3; ch++ {
				rgbImg.Set(x, y, ch, rgb[ch])
			}
		}
	}

	log.Printf("color managed: rendered %dx%d image into %s\n", w, h, c.ColorSpace)
	return xyzImg, rgbImg, conv, nil
}
