package target

import(
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/btrgb/pkg/eimage"
)

// BuildTargetAvgMatrix stacks the targets' channels into one matrix,
// with a row per channel and a column per patch. Patches are ordered row
// major (col + row*Cols), the same as refdata's matrices; for two
// exposures of three channels each, the result is 6 x P.
func BuildTargetAvgMatrix(targets ...*ColorTarget) (*mat.Dense, error) {
	if len(targets) == 0 {
		return nil, errors.Wrap(ErrDimension, "no targets")
	}

	rows, cols := targets[0].Rows, targets[0].Cols
	nCh := 0
	for i, t := range targets {
		if t.Rows != rows || t.Cols != cols {
			return nil, errors.Wrapf(ErrDimension, "target %d is %dx%d, want %dx%d", i, t.Rows, t.Cols, rows, cols)
		}
		nCh += t.channels
	}

	m := mat.NewDense(nCh, rows*cols, nil)
	ch := 0
	for _, t := range targets {
		for tc:=0; tc<t.channels; tc++ {
			for row:=0; row<rows; row++ {
				for col:=0; col<cols; col++ {
					m.Set(ch, col+row*cols, t.avgs[row][col][tc])
				}
			}
			ch++
		}
	}

	return m, nil
}

// BuildCameraSignals lays every pixel of the images out as a column: the
// result has one row per channel (across all the images) and one column
// per pixel, indexed y*width + x. If offset is non-nil, offset[i] is
// subtracted from every value in row i.
func BuildCameraSignals(images []eimage.Image, offset []float64) (*mat.Dense, error) {
	if len(images) == 0 {
		return nil, errors.Wrap(ErrDimension, "no images")
	}

	w, h := images[0].Width(), images[0].Height()
	nCh := 0
	for i, img := range images {
		if img.Width() != w || img.Height() != h {
			return nil, errors.Wrapf(ErrDimension, "image %d is %dx%d, want %dx%d", i, img.Width(), img.Height(), w, h)
		}
		nCh += img.Channels()
	}
	if offset != nil && len(offset) != nCh {
		return nil, errors.Wrapf(ErrDimension, "%d offsets for %d channels", len(offset), nCh)
	}

	m := mat.NewDense(nCh, w*h, nil)
	ch := 0
	for _, img := range images {
		for ic:=0; ic<img.Channels(); ic++ {
			row := m.RawRowView(ch)
			img.CopyChannel(ic, row)
			if offset != nil {
				for i := range row {
					row[i] -= offset[ch]
				}
			}
			ch++
		}
	}

	return m, nil
}

// Synthesize is the inverse of BuildTargetAvgMatrix for a single image:
// it paints a width x height image with one channel per row of signals,
// where every cell of the target is filled with its patch's values and
// everything outside the target is zero.
func Synthesize(g Geometry, width, height int, signals mat.Matrix) (*eimage.FloatImage, error) {
	g = g.WithDefaults()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	nCh, nPatch := signals.Dims()
	if nPatch != g.Rows*g.Cols {
		return nil, errors.Wrapf(ErrDimension, "%d patches of signal for a %dx%d target", nPatch, g.Rows, g.Cols)
	}

	img := eimage.NewFloatImage(width, height, nCh)
	for y:=0; y<height; y++ {
		fy := ((float64(y)+0.5)/float64(height) - g.Top) / (g.Bottom - g.Top)
		if fy < 0 || fy >= 1 {
			continue
		}
		row := int(fy * float64(g.Rows))

		for x:=0; x<width; x++ {
			fx := ((float64(x)+0.5)/float64(width) - g.Left) / (g.Right - g.Left)
			if fx < 0 || fx >= 1 {
				continue
			}
			col := int(fx * float64(g.Cols))

			for ch:=0; ch<nCh; ch++ {
				img.Set(x, y, ch, signals.At(ch, col+row*g.Cols))
			}
		}
	}

	return img, nil
}
