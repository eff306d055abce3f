// Package eimage holds captures as planes of float64 samples, and gets
// them on and off disk.
package eimage

import(
	"fmt"
	"image"
)

// Image is what the calibration code needs from an image: per-channel
// float access, and bulk copies of whole channels.
type Image interface {
	Width() int
	Height() int
	Channels() int
	At(x, y, ch int) float64
	Set(x, y, ch int, v float64)
	CopyChannel(ch int, dst []float64) // dst[y*Width()+x]; len(dst) must be Width()*Height()
}

// FloatImage is a planar image; each channel is one contiguous slice.
type FloatImage struct {
	W, H, C int
	Pix     []float64  // channel ch, pixel (x,y) is at [ch*W*H + y*W + x]

	Capture           // Where the pixels came from, if from a file
}

func NewFloatImage(w, h, c int) *FloatImage {
	return &FloatImage{W: w, H: h, C: c, Pix: make([]float64, w*h*c)}
}

func (fi *FloatImage)Width() int                   { return fi.W }
func (fi *FloatImage)Height() int                  { return fi.H }
func (fi *FloatImage)Channels() int                { return fi.C }
func (fi *FloatImage)Bounds() image.Rectangle      { return image.Rect(0, 0, fi.W, fi.H) }
func (fi *FloatImage)offset(x, y, ch int) int      { return ch*fi.W*fi.H + y*fi.W + x }
func (fi *FloatImage)At(x, y, ch int) float64      { return fi.Pix[fi.offset(x,y,ch)] }
func (fi *FloatImage)Set(x, y, ch int, v float64)  { fi.Pix[fi.offset(x,y,ch)] = v }

// Channel returns the channel's plane itself, not a copy.
func (fi *FloatImage)Channel(ch int) []float64 {
	n := fi.W * fi.H
	return fi.Pix[ch*n : (ch+1)*n]
}

func (fi *FloatImage)CopyChannel(ch int, dst []float64) {
	copy(dst, fi.Channel(ch))
}

func (fi *FloatImage)String() string {
	return fmt.Sprintf("FloatImage[%dx%d, %d channels] %s", fi.W, fi.H, fi.C, fi.Capture)
}

// FromImage converts a decoded image into three channels of [0,1] floats.
// The channels are left as-is, no gamma or color handling.
func FromImage(img image.Image) *FloatImage {
	b := img.Bounds()
	fi := NewFloatImage(b.Dx(), b.Dy(), 3)

	for y:=0; y<b.Dy(); y++ {
		for x:=0; x<b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			fi.Set(x, y, 0, float64(r) / float64(0xFFFF))
			fi.Set(x, y, 1, float64(g) / float64(0xFFFF))
			fi.Set(x, y, 2, float64(bl) / float64(0xFFFF))
		}
	}

	return fi
}
