// Package target locates the patches of a color target in a capture, and
// averages the pixels of each one.
package target

import(
	"fmt"
	"image"
	"math"

	"github.com/pkg/errors"

	"github.com/abworrall/btrgb/pkg/emath"
)

var(
	ErrOutOfRange = errors.New("target index out of range")
	ErrGeometry   = errors.New("invalid target geometry")
	ErrDimension  = errors.New("image or target dimensions do not match")
)

const DefaultSampleSize = 0.5

// Geometry locates the target within the image. The bounds are
// fractions of the image width and height, so the same geometry works
// for both exposures.
type Geometry struct {
	Top          float64  `yaml:"top"`
	Bottom       float64  `yaml:"bottom"`
	Left         float64  `yaml:"left"`
	Right        float64  `yaml:"right"`
	Rows         int      `yaml:"rows"`
	Cols         int      `yaml:"cols"`

	// What fraction of each cell's width and height gets averaged; the
	// edges of a patch are prone to bleed from its neighbours.
	SampleSize   float64  `yaml:"samplesize"`
}

func (g Geometry)String() string {
	return fmt.Sprintf("target[%dx%d, t=%.3f b=%.3f l=%.3f r=%.3f, sample=%.2f]",
		g.Rows, g.Cols, g.Top, g.Bottom, g.Left, g.Right, g.SampleSize)
}

func (g Geometry)WithDefaults() Geometry {
	if g.SampleSize == 0 {
		g.SampleSize = DefaultSampleSize
	}
	return g
}

func (g Geometry)Validate() error {
	in01 := func(f float64) bool { return f >= 0.0 && f <= 1.0 }
	switch {
	case !in01(g.Top) || !in01(g.Bottom) || !in01(g.Left) || !in01(g.Right):
		return errors.Wrapf(ErrGeometry, "%s: bounds must be within [0,1]", g)
	case g.Top >= g.Bottom || g.Left >= g.Right:
		return errors.Wrapf(ErrGeometry, "%s: empty area", g)
	case g.Rows <= 0 || g.Cols <= 0:
		return errors.Wrapf(ErrGeometry, "%s: needs at least one row and column", g)
	case g.SampleSize <= 0 || g.SampleSize > 1:
		return errors.Wrapf(ErrGeometry, "%s: sample size must be within (0,1]", g)
	}
	return nil
}

// Transform maps target space, where the whole target is the unit
// square, onto image pixel coords.
func (g Geometry)Transform(width, height int) emath.Aff3 {
	return emath.Identity().
		Scale(float64(width), float64(height)).
		Translate(g.Left, g.Top).
		Scale(g.Right-g.Left, g.Bottom-g.Top)
}

// SampleRect is the block of pixels averaged for the patch at
// (row,col). It is never empty.
func (g Geometry)SampleRect(row, col, width, height int) image.Rectangle {
	m := g.Transform(width, height)

	cw, ch := 1.0/float64(g.Cols), 1.0/float64(g.Rows)
	cx, cy := (float64(col)+0.5)*cw, (float64(row)+0.5)*ch
	hw, hh := cw*g.SampleSize/2.0, ch*g.SampleSize/2.0

	x0, y0 := m.Apply(cx-hw, cy-hh)
	x1, y1 := m.Apply(cx+hw, cy+hh)

	r := image.Rect(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1)))
	if r.Dx() == 0 {
		r.Max.X = r.Min.X + 1
	}
	if r.Dy() == 0 {
		r.Max.Y = r.Min.Y + 1
	}

	return r.Intersect(image.Rect(0, 0, width, height))
}
