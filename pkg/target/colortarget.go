package target

import(
	"github.com/pkg/errors"

	"github.com/abworrall/btrgb/pkg/eimage"
)

// A ColorTarget holds the mean value of every channel, for each patch of
// the target, as seen in one image.
type ColorTarget struct {
	Geometry
	channels int
	avgs     [][][]float64  // [row][col][channel]
}

func New(img eimage.Image, g Geometry) (*ColorTarget, error) {
	g = g.WithDefaults()
	if err := g.Validate(); err != nil {
		return nil, err
	}

	ct := &ColorTarget{Geometry: g, channels: img.Channels()}
	ct.avgs = make([][][]float64, g.Rows)

	for row:=0; row<g.Rows; row++ {
		ct.avgs[row] = make([][]float64, g.Cols)
		for col:=0; col<g.Cols; col++ {
			r := g.SampleRect(row, col, img.Width(), img.Height())
			if r.Empty() {
				return nil, errors.Wrapf(ErrGeometry, "patch (%d,%d) falls outside the %dx%d image", row, col, img.Width(), img.Height())
			}

			sums := make([]float64, ct.channels)
			for y:=r.Min.Y; y<r.Max.Y; y++ {
				for x:=r.Min.X; x<r.Max.X; x++ {
					for ch:=0; ch<ct.channels; ch++ {
						sums[ch] += img.At(x, y, ch)
					}
				}
			}
			n := float64(r.Dx() * r.Dy())
			for ch := range sums {
				sums[ch] /= n
			}
			ct.avgs[row][col] = sums
		}
	}

	return ct, nil
}

func (ct *ColorTarget)Channels() int { return ct.channels }

func (ct *ColorTarget)PatchAvg(row, col, channel int) (float64, error) {
	if row < 0 || row >= ct.Rows || col < 0 || col >= ct.Cols || channel < 0 || channel >= ct.channels {
		return 0, errors.Wrapf(ErrOutOfRange, "patch (%d,%d) channel %d of %dx%dx%d", row, col, channel, ct.Rows, ct.Cols, ct.channels)
	}
	return ct.avgs[row][col][channel], nil
}
