package calib

import(
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/btrgb/pkg/ecolor"
	"github.com/abworrall/btrgb/pkg/eimage"
	"github.com/abworrall/btrgb/pkg/emath"
	"github.com/abworrall/btrgb/pkg/refdata"
	"github.com/abworrall/btrgb/pkg/simplex"
	"github.com/abworrall/btrgb/pkg/target"
)

// refFile writes a reference data file whose patch (row,col) has the
// curve refl(patchIndex, i), and loads it.
func refFile(t *testing.T, rows, cols int, refl func(p, i int) float64) *refdata.RefData {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("Wavelength")
	for col:=0; col<cols; col++ {
		for row:=0; row<rows; row++ {
			fmt.Fprintf(&sb, ",%c:%d", 'A'+col, row+1)
		}
	}
	sb.WriteString("\n")
	for i:=0; i<ecolor.WavelengthCount; i++ {
		fmt.Fprintf(&sb, "%d", ecolor.IndexToWavelength(i))
		for col:=0; col<cols; col++ {
			for row:=0; row<rows; row++ {
				fmt.Fprintf(&sb, ",%g", refl(col + row*cols, i))
			}
		}
		sb.WriteString("\n")
	}

	path := filepath.Join(t.TempDir(), "ref.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0644))
	rd, err := refdata.New(path, ecolor.IlluminantD50, ecolor.Observer1931)
	require.NoError(t, err)
	return rd
}

// artImages paints the 6 x P signals onto a pair of 3 channel images,
// with the target filling the whole frame.
func artImages(t *testing.T, g target.Geometry, w, h int, signals *mat.Dense) (eimage.Image, eimage.Image) {
	t.Helper()
	_, p := signals.Dims()
	art1, err := target.Synthesize(g, w, h, signals.Slice(0, 3, 0, p))
	require.NoError(t, err)
	art2, err := target.Synthesize(g, w, h, signals.Slice(3, 6, 0, p))
	require.NoError(t, err)
	return art1, art2
}

func fullFrame(rows, cols int) target.Geometry {
	return target.Geometry{Top: 0, Bottom: 1, Left: 0, Right: 1, Rows: rows, Cols: cols}
}

// cmInputs builds a 2x1 target whose signals map exactly onto the
// reference XYZ under the seed M and offsets.
func cmInputs(t *testing.T) Inputs {
	t.Helper()
	return cmInputsFor(t, ColorManagedSeed())
}

// cmInputsFor builds the 2x1 target from whichever M and offsets we want
// the calibration to find.
func cmInputsFor(t *testing.T, truth *Params) Inputs {
	t.Helper()
	ref := refFile(t, 2, 1, func(p, i int) float64 {
		if p == 0 {
			return 0.2 + 0.6*float64(i)/35.0
		}
		return 0.7 - 0.5*float64(i)/35.0
	})

	id := mat.NewDense(Channels, Channels, nil)
	for i:=0; i<Channels; i++ {
		id.Set(i, i, 1.0)
	}
	pinv, err := emath.MulPinv(id, truth.M())
	require.NoError(t, err)

	var signals mat.Dense
	signals.Mul(pinv, ref.XYZMatrix())
	off := truth.Offset()
	signals.Apply(func(i, j int, v float64) float64 { return v + off[i] }, &signals)

	g := fullFrame(2, 1)
	art1, art2 := artImages(t, g, 20, 20, &signals)
	return Inputs{Art1: art1, Art2: art2, Target: g, Ref: ref}
}

func TestParamsAliasing(t *testing.T) {
	x := make([]float64, DeltaEDim)
	p, err := ParamsOver(x, 3, true)
	require.NoError(t, err)

	x[1] = 2.5
	x[DeltaEDim-1] = 0.3
	assert.Equal(t, 2.5, p.M().At(0, 1))
	assert.Equal(t, 0.3, p.Offset()[Channels-1])

	p.M().Set(2, 5, 7)
	assert.Equal(t, 7.0, x[2*Channels+5])

	c := p.Clone()
	c.M().Set(0, 0, 9)
	assert.Equal(t, 0.0, x[0])

	_, err = ParamsOver(x[:10], 3, true)
	assert.True(t, errors.Is(err, ErrDimension))
	assert.Nil(t, NewParams(36, false).Offset())
	assert.Equal(t, SpectralDim, NewParams(36, false).Len())
}

func TestDeltaEObjective(t *testing.T) {
	in := cmInputs(t)
	signals, err := in.targetSignals()
	require.NoError(t, err)

	obj, err := NewDeltaEObjective(signals, in.Ref)
	require.NoError(t, err)
	assert.Equal(t, DeltaEDim, obj.Dim())

	seed := ColorManagedSeed().Vector()
	ev, err := obj.Evaluate(seed)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, ev.Mean, 1e-6)
	assert.Len(t, ev.DeltaE, 2)
	assert.True(t, mat.EqualApprox(ev.XYZ, in.Ref.XYZMatrix(), 1e-6))
	assert.Equal(t, ev.Mean, obj.Value(seed))

	// Doubling M doubles XYZ, a long way off in Lab
	moved := append([]float64{}, seed...)
	for i:=0; i<3*Channels; i++ {
		moved[i] *= 2
	}
	assert.Greater(t, obj.Value(moved), 1.0)

	assert.True(t, math.IsNaN(obj.Value(seed[:5])))

	_, err = NewDeltaEObjective(mat.NewDense(6, 3, nil), in.Ref)
	assert.True(t, errors.Is(err, ErrDimension))
	_, err = NewDeltaEObjective(nil, in.Ref)
	assert.True(t, errors.Is(err, ErrInput))
}

func TestSpectralError(t *testing.T) {
	r := mat.NewDense(ecolor.WavelengthCount, 4, nil)
	r.Apply(func(i, j int, v float64) float64 { return 0.1 + 0.01*float64(i) + 0.1*float64(j) }, r)

	e1, e2, e3, z := SpectralError(r, r)
	assert.Equal(t, 0.0, e1)
	assert.Equal(t, 0.0, e2)
	assert.Equal(t, 0.0, e3)
	assert.Equal(t, 0.0, z)

	prev := 0.0
	for _, d := range []float64{0.001, 0.01, 0.1, 0.5} {
		var rc mat.Dense
		rc.Apply(func(i, j int, v float64) float64 { return v + d }, r)
		e1, e2, e3, z := SpectralError(r, &rc)
		assert.InDelta(t, d*math.Sqrt(float64(ecolor.WavelengthCount*4)), e1, 1e-9)
		assert.InDelta(t, float64(ecolor.WavelengthCount)*d*d, e2, 1e-9)
		assert.InDelta(t, e2, e3, 1e-9)
		assert.Equal(t, SpectralScore(e1, e2, e3), z)
		assert.Greater(t, z, prev)
		prev = z
	}
}

func TestColorManagedEndToEnd(t *testing.T) {
	in := cmInputs(t)
	var fractions []float64
	in.Progress = func(f float64, stage string) { fractions = append(fractions, f) }

	c := NewColorManagedCalibrator()
	c.MaxIterations = 2000
	res, err := c.Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0.1, 0.6, 0.9, 1}, fractions)
	assert.Less(t, res.DeltaEAvg, 1.0)
	assert.InDelta(t, 0.0, res.DeltaEAvg, 1e-6)

	// The recovered M and offsets reproduce the reference XYZ
	refXYZ := emath.Rows(in.Ref.XYZMatrix())
	for i := range refXYZ {
		for j := range refXYZ[i] {
			assert.InDelta(t, refXYZ[i][j], res.XYZ[i][j], 1e-3)
		}
	}

	// Two patches give 6 equations for 24 unknowns, so M and the offsets
	// can only be pinned down when the truth is the starting point
	truth := ColorManagedSeed()
	require.Len(t, res.M, 3)
	for i := range res.M {
		require.Len(t, res.M[i], Channels)
		for j := range res.M[i] {
			assert.InDelta(t, truth.M().At(i, j), res.M[i][j], 1e-3, "M[%d][%d]", i, j)
		}
	}
	require.Len(t, res.Offsets, Channels)
	for i := range res.Offsets {
		assert.InDelta(t, truth.Offset()[i], res.Offsets[i], 1e-3, "offset[%d]", i)
	}

	assert.Len(t, res.DeltaE, 2)
	assert.Len(t, res.DeltaE[0], 1)
	assert.Len(t, res.CameraSigs, Channels)
	assert.InDelta(t, res.LRef[1][0], res.LCamera[1][0], 1e-3)
	assert.Equal(t, 20, res.ImageRows)
	assert.Equal(t, 20, res.ImageCols)
	assert.Equal(t, "ProPhoto", res.ColorSpace)

	require.NotNil(t, res.Image)
	require.NotNil(t, res.XYZImage)
	assert.Equal(t, 3, res.Image.Channels())

	// Every pixel of the top half is patch 0
	assert.InDelta(t, refXYZ[1][0], res.XYZImage.At(3, 3, 1), 1e-3)
	assert.InDelta(t, refXYZ[1][1], res.XYZImage.At(3, 17, 1), 1e-3)
	for ch:=0; ch<3; ch++ {
		v := res.Image.At(3, 3, ch)
		assert.True(t, v >= 0 && v <= 1, "channel %d = %f", ch, v)
	}
	assert.Equal(t, 2, res.DeltaEGrid.Dy())
}

func TestColorManagedUnderdetermined(t *testing.T) {
	truth := ColorManagedSeed()
	truth.M().Set(0, 0, 0.4)
	truth.M().Set(1, 1, 0.3)
	truth.M().Set(2, 3, -0.2)
	truth.Offset()[0] = 0.02

	// Many M fit two patches; the fit must still get the colors right
	res, err := NewColorManagedCalibrator().Run(context.Background(), cmInputsFor(t, truth))
	require.NoError(t, err)
	assert.Less(t, res.DeltaEAvg, 0.5)
	assert.Equal(t, "converged", res.Status)
}

func TestSpectralEndToEnd(t *testing.T) {
	const rows, cols = 3, 3
	p := rows * cols

	// 0.5*I + 0.1 in the first six columns keeps the signals full rank
	signals := mat.NewDense(Channels, p, nil)
	signals.Apply(func(i, j int, v float64) float64 {
		if j >= Channels {
			return 0.1 + 0.05*float64((i+2*j)%5)
		}
		if i == j {
			return 0.6
		}
		return 0.1
	}, signals)
	mTrue := mat.NewDense(ecolor.WavelengthCount, Channels, nil)
	mTrue.Apply(func(i, j int, v float64) float64 { return 0.02*float64(j+1) + 0.001*float64(i) }, mTrue)
	var rTrue mat.Dense
	rTrue.Mul(mTrue, signals)

	ref := refFile(t, rows, cols, func(p, i int) float64 { return rTrue.At(i, p) })
	g := fullFrame(rows, cols)
	art1, art2 := artImages(t, g, 30, 30, signals)

	var fractions []float64
	in := Inputs{Art1: art1, Art2: art2, Target: g, Ref: ref,
		Progress: func(f float64, stage string) { fractions = append(fractions, f) }}

	c := NewSpectralCalibrator()
	c.MaxIterations = 300
	res, err := c.Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0.2, 0.4, 0.5, 0.9, 1}, fractions)
	assert.Less(t, res.RMSE, 1e-6)
	assert.Less(t, res.Z, 1e-5)
	assert.True(t, mat.EqualApprox(res.Params.M(), mTrue, 1e-6))
	assert.Len(t, res.RReference, ecolor.WavelengthCount)
	assert.Len(t, res.RCamera[0], p)
	assert.Len(t, res.MRefl[0], Channels)

	// The centre pixel of patch (1,2) has that patch's curve
	img := res.Image
	require.NotNil(t, img)
	curve := img.ReflectanceAt(25, 15)
	for i:=0; i<ecolor.WavelengthCount; i++ {
		assert.InDelta(t, rTrue.At(i, 5), curve[i], 1e-6)
	}
	band, err := img.Band(10)
	require.NoError(t, err)
	assert.InDelta(t, rTrue.At(10, 5), band.At(25, 15, 0), 1e-6)
	_, err = img.Band(36)
	assert.Error(t, err)

	cp, err := ref.ColorPatch(1, 2)
	require.NoError(t, err)
	assert.InDelta(t, cp.Y(), img.XYZAt(25, 15, ecolor.Observer1931, ecolor.IlluminantD50).Y, 1e-4)
}

func TestInputErrors(t *testing.T) {
	good := cmInputs(t)

	noArt := good
	noArt.Art2 = nil
	noRef := good
	noRef.Ref = nil
	badTarget := good
	badTarget.Target = fullFrame(1, 2)
	badChannels := good
	badChannels.Art2 = eimage.NewFloatImage(20, 20, 2)
	badSize := good
	badSize.Art2 = eimage.NewFloatImage(10, 20, 3)

	tests := []struct{
		name string
		in   Inputs
		want error
	}{
		{"empty", Inputs{}, ErrInput},
		{"no art2", noArt, ErrInput},
		{"no ref", noRef, ErrInput},
		{"target shape", badTarget, ErrDimension},
		{"channels", badChannels, ErrDimension},
		{"image size", badSize, ErrDimension},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewColorManagedCalibrator().Run(context.Background(), tc.in)
			assert.True(t, errors.Is(err, tc.want), "cm: %v", err)
			_, err = NewSpectralCalibrator().Run(context.Background(), tc.in)
			assert.True(t, errors.Is(err, tc.want), "spectral: %v", err)
		})
	}
}

func TestCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewColorManagedCalibrator().Run(ctx, cmInputs(t))
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled), "%v", err)
}

func TestNumericDegeneracy(t *testing.T) {
	t.Run("nan pixels", func(t *testing.T) {
		in := cmInputs(t)
		fi := in.Art1.(*eimage.FloatImage)
		for i := range fi.Pix {
			fi.Pix[i] = math.NaN()
		}
		_, err := NewColorManagedCalibrator().Run(context.Background(), in)
		assert.True(t, errors.Is(err, ErrNumericDegeneracy), "%v", err)
	})

	t.Run("zero signals", func(t *testing.T) {
		in := cmInputs(t)
		in.Art1 = eimage.NewFloatImage(20, 20, 3)
		in.Art2 = eimage.NewFloatImage(20, 20, 3)
		_, err := NewSpectralCalibrator().Run(context.Background(), in)
		assert.True(t, errors.Is(err, ErrNumericDegeneracy), "%v", err)
	})

	t.Run("optimizer", func(t *testing.T) {
		err := optimizerError(errors.Wrap(simplex.ErrNonFinite, "f"), "stage", simplex.Result{})
		assert.True(t, errors.Is(err, ErrNumericDegeneracy))
		err = optimizerError(context.DeadlineExceeded, "stage", simplex.Result{})
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		assert.NoError(t, optimizerError(nil, "stage", simplex.Result{}))
	})
}
