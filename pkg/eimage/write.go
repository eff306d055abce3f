package eimage

import(
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/nfnt/resize"
	"golang.org/x/image/tiff"
)

// ToRGBA64 turns the first three channels, which should be in [0,1],
// into a 16-bit image. Out of range values are clipped.
func (fi *FloatImage)ToRGBA64() *image.RGBA64 {
	img := image.NewRGBA64(fi.Bounds())
	q := func(v float64) uint16 {
		if v <= 0.0 { return 0 }
		if v >= 1.0 { return 0xFFFF }
		return uint16(v*65535.0 + 0.5)
	}

	for y:=0; y<fi.H; y++ {
		for x:=0; x<fi.W; x++ {
			var c [3]float64
			for ch:=0; ch<3 && ch<fi.C; ch++ {
				c[ch] = fi.At(x, y, ch)
			}
			if fi.C == 1 {
				c[1], c[2] = c[0], c[0]
			}
			img.SetRGBA64(x, y, color.RGBA64{q(c[0]), q(c[1]), q(c[2]), 0xFFFF})
		}
	}
	return img
}

func WriteTIFF(fi *FloatImage, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return tiff.Encode(writer, fi.ToRGBA64(), &tiff.Options{Compression: tiff.Deflate})
	}
}

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}

// WritePreviewPNG writes a downsized 8-bit copy, no bigger than maxDim on
// either side.
func WritePreviewPNG(fi *FloatImage, filename string, maxDim uint) error {
	thumb := resize.Thumbnail(maxDim, maxDim, fi.ToRGBA64(), resize.Lanczos3)
	return WritePNG(thumb, filename)
}

// WriteHDR outputs a Radiance RGBE image. You can load this into photoshop or other HDR tools.
func WriteHDR(img hdr.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return rgbe.Encode(writer, img)
	}
}

// XYZImage presents a 3-channel image of XYZ (on a 0-100 scale, so white
// has Y=100) as an hdr.Image.
type XYZImage struct {
	*FloatImage
}

// Implement golang's image.Image interface
func (xi XYZImage)ColorModel() color.Model { return hdrcolor.RGBModel }
func (xi XYZImage)Bounds() image.Rectangle { return xi.FloatImage.Bounds() }
func (xi XYZImage)At(x, y int) color.Color { return xi.HDRAt(x, y) }

// Implement hdr.Image interface
func (xi XYZImage)HDRAt(x, y int) hdrcolor.Color {
	return hdrcolor.XYZ{
		X: xi.FloatImage.At(x,y,0)/100.0,
		Y: xi.FloatImage.At(x,y,1)/100.0,
		Z: xi.FloatImage.At(x,y,2)/100.0,
	}
}
func (xi XYZImage)Size() int { return xi.W * xi.H }
