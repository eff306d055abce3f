package refdata

import(
	"fmt"

	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/pkg/errors"

	"github.com/abworrall/btrgb/pkg/ecolor"
)

// A ColorPatch is one cell of the reference target. It owns the
// measured reflectance curve; XYZ and Lab are derived from it once, when
// the RefData has finished loading.
type ColorPatch struct {
	row, col int
	name     string
	refl     []float64  // index i is wavelength 380+10i

	xyz      hdrcolor.XYZ
	lab      ecolor.Lab
}

func newColorPatch(row, col int) *ColorPatch {
	return &ColorPatch{row: row, col: col, refl: make([]float64, 0, ecolor.WavelengthCount)}
}

func (cp *ColorPatch)append(v float64) { cp.refl = append(cp.refl, v) }

// init derives the tristimulus and Lab values from the reflectance curve
func (cp *ColorPatch)init(obs ecolor.ObserverType, illum ecolor.IlluminantType, wp ecolor.WhitePoint) {
	x, y, z := ecolor.SpectrumToXYZ(cp.refl, obs, illum)
	cp.xyz = hdrcolor.XYZ{X: x, Y: y, Z: z}
	cp.lab = ecolor.XYZToLab(cp.xyz, wp)
}

func (cp *ColorPatch)Row() int            { return cp.row }
func (cp *ColorPatch)Col() int            { return cp.col }
func (cp *ColorPatch)Name() string        { return cp.name }
func (cp *ColorPatch)XYZ() hdrcolor.XYZ   { return cp.xyz }
func (cp *ColorPatch)Lab() ecolor.Lab     { return cp.lab }
func (cp *ColorPatch)X() float64          { return cp.xyz.X }
func (cp *ColorPatch)Y() float64          { return cp.xyz.Y }
func (cp *ColorPatch)Z() float64          { return cp.xyz.Z }
func (cp *ColorPatch)L() float64          { return cp.lab.L }
func (cp *ColorPatch)A() float64          { return cp.lab.A }
func (cp *ColorPatch)B() float64          { return cp.lab.B }
func (cp *ColorPatch)SampleCount() int    { return len(cp.refl) }

// Reflectance returns a copy of the curve.
func (cp *ColorPatch)Reflectance() []float64 {
	ret := make([]float64, len(cp.refl))
	copy(ret, cp.refl)
	return ret
}

// ReflectanceAt looks up the reflectance at a sampled wavelength (nm).
func (cp *ColorPatch)ReflectanceAt(wavelength int) (float64, error) {
	i := ecolor.WavelengthToIndex(wavelength)
	if i < 0 || i >= len(cp.refl) {
		return 0, errors.Wrapf(ErrOutOfRange, "patch %s: no sample at %dnm", cp.name, wavelength)
	}
	return cp.refl[i], nil
}

func (cp *ColorPatch)String() string {
	return fmt.Sprintf("%s[%d,%d] XYZ{%.4f,%.4f,%.4f} Lab{%.4f,%.4f,%.4f}", cp.name, cp.row, cp.col,
		cp.xyz.X, cp.xyz.Y, cp.xyz.Z, cp.lab.L, cp.lab.A, cp.lab.B)
}
