package eimage

import(
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/tiff"
)

// Capture is the EXIF metadata we carry through from an input TIFF.
type Capture struct {
	Filename     string   `yaml:"filename"`
	Model        string   `yaml:"model,omitempty"`
	LensModel    string   `yaml:"lens,omitempty"`
	ISO          int64    `yaml:"iso,omitempty"`
	ExposureTime string   `yaml:"exposure,omitempty"`
	FNumber      float64  `yaml:"fnumber,omitempty"`
	DateTime     string   `yaml:"datetime,omitempty"`
}

func (c Capture)String() string {
	if c.Model == "" {
		return filepath.Base(c.Filename)
	}
	return fmt.Sprintf("%s: %s, ISO%d, %ss, f/%.1f", filepath.Base(c.Filename), c.Model, c.ISO, c.ExposureTime, c.FNumber)
}

// LoadTIFF decodes a TIFF capture. Missing EXIF is not an error; TIFFs out
// of a flat-fielding or registration step often don't carry any.
func LoadTIFF(filename string) (*FloatImage, error) {
	capture, err := loadEXIF(filename)
	if err != nil {
		log.Printf("%s: no EXIF metadata (%v)\n", filename, err)
	}
	capture.Filename = filename

	reader, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open+r img '%s': %v", filename, err)
	}
	defer reader.Close()

	img, err := tiff.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("tiff loading '%s': %v", filename, err)
	}

	fi := FromImage(img)
	fi.Capture = capture
	return fi, nil
}

func loadEXIF(filename string) (Capture, error) {
	c := Capture{}

	reader, err := os.Open(filename)
	if err != nil {
		return c, fmt.Errorf("open+r exif '%s': %v", filename, err)
	}
	defer reader.Close()

	ex, err := exif.Decode(reader)
	if err != nil {
		return c, fmt.Errorf("exif parsing '%s': %v", filename, err)
	}

	// All of these are optional; take what's there.
	if tag, err := ex.Get(exif.Model); err == nil {
		c.Model, _ = tag.StringVal()
	}
	if tag, err := ex.Get(exif.LensModel); err == nil {
		c.LensModel, _ = tag.StringVal()
	}
	if tag, err := ex.Get(exif.ISOSpeedRatings); err == nil {
		c.ISO, _ = tag.Int64(0)
	}
	if tag, err := ex.Get(exif.ExposureTime); err == nil {
		if num, denom, err := tag.Rat2(0); err == nil {
			c.ExposureTime = fmt.Sprintf("%d/%d", num, denom)
		}
	}
	if tag, err := ex.Get(exif.FNumber); err == nil {
		if num, denom, err := tag.Rat2(0); err == nil && denom != 0 {
			c.FNumber = float64(num) / float64(denom)
		}
	}
	if tag, err := ex.Get(exif.DateTimeOriginal); err == nil {
		c.DateTime, _ = tag.StringVal()
	}

	return c, nil
}
