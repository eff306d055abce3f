package ecolor

import(
	"fmt"
	"strings"

	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/btrgb/pkg/emath"
)

// A ColorSpace is an RGB working space that calibrated images get
// rendered into. All of them are defined relative to a D50 reference
// white; XYZ relative to other whites gets Bradford adapted first.
type ColorSpace int

const(
	ProPhoto ColorSpace = iota // ROMM RGB; the default, as it holds everything a painting can throw at us
	SRGB
	AdobeRGB
)

func (cs ColorSpace)String() string {
	switch cs {
	case ProPhoto: return "ProPhoto"
	case SRGB:     return "sRGB"
	case AdobeRGB: return "AdobeRGB"
	}
	return fmt.Sprintf("ColorSpace(%d)", int(cs))
}

func ParseColorSpace(s string) (ColorSpace, error) {
	switch strings.ToLower(s) {
	case "", "prophoto", "romm": return ProPhoto, nil
	case "srgb":                 return SRGB, nil
	case "adobergb", "adobe":    return AdobeRGB, nil
	}
	return ProPhoto, fmt.Errorf("unknown color space '%s'", s)
}

var(
	// http://www.brucelindbloom.com/index.html?Eqn_RGB_XYZ_Matrix.html
	// These map XYZ(D50), scaled so Y of white is 1.0, onto linear RGB.
	XYZD50_to_linear_ProPhoto = emath.Mat3{
		 1.3459433, -0.2556075, -0.0511118,
		-0.5445989,  1.5081673,  0.0205351,
		 0.0000000,  0.0000000,  1.2118128,
	}

	// Bruce's second table; it bundles in the D50->D65 adaptation, so
	// the image's white balance doesn't shift.
	XYZD50_to_linear_sRGBD65 = emath.Mat3{
		 3.1338561, -1.6168667, -0.4906146,
		-0.9787684,  1.9161415,  0.0334540,
		 0.0719453, -0.2289914,  1.4052427,
	}

	XYZD50_to_linear_AdobeRGBD65 = emath.Mat3{
		 1.9624274, -0.6105343, -0.3413404,
		-0.9787684,  1.9161415,  0.0334540,
		 0.0286869, -0.1406752,  1.3487655,
	}

	bradford = emath.Mat3{
		 0.8951000,  0.2664000, -0.1614000,
		-0.7502000,  1.7135000,  0.0367000,
		 0.0389000, -0.0685000,  1.0296000,
	}

	// The ICC profile connection space white, which the matrices above assume
	D50 = emath.Vec3{0.96422, 1.0, 0.82521}
)

func (cs ColorSpace)FromXYZD50() emath.Mat3 {
	switch cs {
	case SRGB:     return XYZD50_to_linear_sRGBD65
	case AdobeRGB: return XYZD50_to_linear_AdobeRGBD65
	}
	return XYZD50_to_linear_ProPhoto
}

// GammaExpand applies the space's transfer function to a linear value in [0,1].
func (cs ColorSpace)GammaExpand(f float64) float64 {
	switch cs {
	case SRGB:     return emath.GammaExpand_F64(f)
	case AdobeRGB: return emath.GammaExpand_AdobeRGB(f)
	}
	return emath.GammaExpand_ProPhoto(f)
}

// BradfordAdaptation builds the matrix that moves XYZ values from one
// reference white to another. Whites must be on the same scale.
func BradfordAdaptation(src, dst emath.Vec3) emath.Mat3 {
	srcCone := bradford.Apply(src)
	dstCone := bradford.Apply(dst)
	scale := dstCone.Diag().Mult(srcCone.InvertDiag())

	inv, _ := bradford.Inverse()
	return inv.Mult(scale).Mult(bradford)
}

// A Converter takes XYZ on the 0-100 scale of a white point, and renders
// it into a working space. The whole chain collapses into one matrix.
type Converter struct {
	Space  ColorSpace
	Matrix emath.Mat3 // XYZ (0-100, relative to the source white) to linear RGB
}

func NewConverter(cs ColorSpace, wp WhitePoint) Converter {
	src := wp.Vec3()
	for i := range src {
		src[i] /= 100.0
	}
	m := cs.FromXYZD50().Mult(BradfordAdaptation(src, D50))

	// Fold the /100 in
	for i := range m {
		m[i] /= 100.0
	}

	return Converter{Space: cs, Matrix: m}
}

// Linear returns the unclamped linear RGB, still an HDR value.
func (c Converter)Linear(xyz hdrcolor.XYZ) hdrcolor.RGB {
	rgb := c.Matrix.Apply(emath.Vec3{xyz.X, xyz.Y, xyz.Z})
	return hdrcolor.RGB{R: rgb[0], G: rgb[1], B: rgb[2]}
}

// Encoded clamps into [0,1] and applies the working space's gamma.
func (c Converter)Encoded(xyz hdrcolor.XYZ) emath.Vec3 {
	rgb := c.Linear(xyz)
	v := emath.Vec3{rgb.R, rgb.G, rgb.B}
	v.FloorAt(0.0)
	v.CeilingAt(1.0)
	for i := range v {
		v[i] = c.Space.GammaExpand(v[i])
	}
	return v
}

func (c Converter)String() string {
	return fmt.Sprintf("XYZ->%s\n%s", c.Space, c.Matrix)
}
