package emath

import(
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg" // Move to https://pkg.go.dev/golang.org/x/image/font#Drawer sometime
)

// A FloatGrid is a grid of floats, with some operations. We use it for
// per-patch values laid out like the color target (e.g. deltaE).
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

func (fg *FloatGrid)Set(x, y int, v float64) { fg.values[fg.stride*y + x] = v }
func (fg *FloatGrid)Get(x, y int) float64    { return fg.values[fg.stride*y + x] }
func (fg *FloatGrid)Dx() int                 { return fg.stride }
func (fg *FloatGrid)Dy() int                 { return len(fg.values) / fg.stride }

// MinMax ignores non-finite values
func (fg *FloatGrid)MinMax() (float64, float64) {
	min := math.MaxFloat64
	max := -1.0  * min

	for i:=0 ; i<len(fg.values) ; i++ {
		if !IsFinite(fg.values[i]) { continue }
		if fg.values[i] > max { max = fg.values[i] }
		if fg.values[i] < min { min = fg.values[i] }
	}
	return min, max
}

func (fg *FloatGrid)Stats() string {
	min, max := fg.MinMax()
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}]", fg.Dx(), fg.Dy(), min, max)
}

// ToImg saves a simple grayscale, based on the range of values in the
// grid, and gamma scaling the gray to look normal for human vision. Each
// grid cell becomes a cellSize x cellSize block.
func (fg *FloatGrid)ToImg(title, filename string, cellSize int) error {
	if cellSize < 1 {
		cellSize = 1
	}
	min, max := fg.MinMax()
	span := max - min
	if span <= 0 {
		span = 1.0
	}

	img := image.NewRGBA64(image.Rectangle{Max:image.Point{fg.Dx()*cellSize, fg.Dy()*cellSize}})
	for x:=0; x<fg.Dx()*cellSize; x++ {
		for y:=0; y<fg.Dy()*cellSize; y++ {
			val := fg.Get(x/cellSize, y/cellSize)
			gray := GammaExpand_F64 (Clamp01((val - min) / span))
			col := color.RGBA64{uint16(gray * 65535.0), uint16(gray * 65535.0), uint16(gray * 65535.0), 0xFFFF}
			img.Set(x, y, col)
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1,0,0)
	dc.DrawString(title, 4, 14)
	return dc.SavePNG(filename)
}
