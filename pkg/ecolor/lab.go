package ecolor

import(
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mdouchement/hdr/hdrcolor"
)

// Lab is CIE L*a*b*, with L in [0,100].
type Lab struct {
	L, A, B float64
}

// XYZToLab converts an XYZ (on the same 0-100 scale as the white point)
// into L*a*b* relative to that white point. go-colorful works with L in
// [0,1], so we scale up to the conventional range.
func XYZToLab(xyz hdrcolor.XYZ, wp WhitePoint) Lab {
	l, a, b := colorful.XyzToLabWhiteRef(xyz.X, xyz.Y, xyz.Z, [3]float64{wp.X, wp.Y, wp.Z})
	return Lab{L: l*100.0, A: a*100.0, B: b*100.0}
}

// LabToXYZ is the inverse of XYZToLab.
func LabToXYZ(lab Lab, wp WhitePoint) hdrcolor.XYZ {
	x, y, z := colorful.LabToXyzWhiteRef(lab.L/100.0, lab.A/100.0, lab.B/100.0, [3]float64{wp.X, wp.Y, wp.Z})
	return hdrcolor.XYZ{X: x, Y: y, Z: z}
}

// DeltaE76 is the plain Euclidean distance in L*a*b*. (Not CIEDE2000;
// reported values have always been the 1976 metric.)
func DeltaE76(c1, c2 Lab) float64 {
	dl, da, db := c1.L-c2.L, c1.A-c2.A, c1.B-c2.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// PreviewColor gives an approximate display color for an XYZ (0-100
// scale), for swatches in charts. It is clamped into the sRGB gamut.
func PreviewColor(xyz hdrcolor.XYZ) colorful.Color {
	return colorful.Xyz(xyz.X/100.0, xyz.Y/100.0, xyz.Z/100.0).Clamped()
}
