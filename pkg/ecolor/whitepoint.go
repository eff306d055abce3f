package ecolor

import(
	"fmt"

	"github.com/abworrall/btrgb/pkg/emath"
)

// A WhitePoint is the XYZ of a perfect reflector, for a given observer
// and illuminant. Y is normalized to 100.
type WhitePoint struct {
	Observer   ObserverType
	Illuminant IlluminantType
	X, Y, Z    float64
}

func (wp WhitePoint)String() string {
	return fmt.Sprintf("Xn: %.4f, Yn: %.4f, Zn: %.4f (%s, %s)", wp.X, wp.Y, wp.Z, wp.Illuminant, wp.Observer)
}

func (wp WhitePoint)Vec3() emath.Vec3 { return emath.Vec3{wp.X, wp.Y, wp.Z} }

// NewWhitePoint integrates the illuminant against the observer, so the
// white point is exactly consistent with the XYZ we compute for patches.
func NewWhitePoint(obs ObserverType, illum IlluminantType) WhitePoint {
	ones := [WavelengthCount]float64{}
	for i := range ones {
		ones[i] = 1.0
	}
	x, y, z := SpectrumToXYZ(ones[:], obs, illum)
	return WhitePoint{Observer: obs, Illuminant: illum, X: x, Y: y, Z: z}
}

// SpectrumToXYZ integrates a reflectance spectrum (sampled per the table
// wavelengths) into tristimulus values: k = 100 / sum(S*ybar), X = k *
// sum(R*S*xbar) and so on. Samples beyond the table are ignored.
func SpectrumToXYZ(refl []float64, obs ObserverType, illum IlluminantType) (x, y, z float64) {
	cmf := obs.CMF()
	spd := illum.SPD()

	norm := 0.0
	for i:=0; i<WavelengthCount; i++ {
		norm += spd[i] * cmf[i][1]
	}
	k := 100.0 / norm

	for i:=0; i<WavelengthCount && i<len(refl); i++ {
		x += refl[i] * spd[i] * cmf[i][0]
		y += refl[i] * spd[i] * cmf[i][1]
		z += refl[i] * spd[i] * cmf[i][2]
	}

	return k*x, k*y, k*z
}
