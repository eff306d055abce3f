// Package refdata loads the measured reflectance data of a reference
// color target, and derives XYZ and Lab for each of its patches.
package refdata

import(
	"log"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/abworrall/btrgb/pkg/ecolor"
)

var(
	ErrFileRead   = errors.New("reference data file could not be read")
	ErrParse      = errors.New("reference data file is malformed")
	ErrOutOfRange = errors.New("patch index out of range")
)

// The reference files that ship with the application. Anything else
// passed to New is taken to be a path to a custom file.
var StandardFiles = []string{
	"NGT_Reflectance_Data.csv",
	"APT_Reflectance_Data.csv",
	"CCSG_Reflectance_Data.csv",
	"CC_Classic_Reflectance_Data.csv",
}

const DefaultRefDataDir = "res/ref_data"

// RefData is a grid of ColorPatches. It is immutable once New returns.
type RefData struct {
	Filename   string
	rows, cols int
	patches    [][]*ColorPatch  // [row][col]

	Illuminant ecolor.IlluminantType
	Observer   ecolor.ObserverType
	WhitePoint ecolor.WhitePoint
}

type options struct {
	refDataDir string
	verbosity  int
}

type Option func(*options)

// WithRefDataDir changes where the standard reference files are looked for.
func WithRefDataDir(dir string) Option { return func(o *options) { o.refDataDir = dir } }

// WithVerbosity logs a dump of the loaded data when v > 0.
func WithVerbosity(v int) Option { return func(o *options) { o.verbosity = v } }

func IsCustom(fileID string) bool {
	for _, f := range StandardFiles {
		if fileID == f {
			return false
		}
	}
	return true
}

// New loads and parses a reference data file. fileID is either one of
// StandardFiles, or the path of a custom file.
func New(fileID string, illum ecolor.IlluminantType, obs ecolor.ObserverType, opts ...Option) (*RefData, error) {
	o := options{refDataDir: DefaultRefDataDir}
	for _, opt := range opts {
		opt(&o)
	}

	path := fileID
	if !IsCustom(fileID) {
		path = filepath.Join(o.refDataDir, fileID)
	}

	rd := &RefData{
		Filename:   path,
		Illuminant: illum,
		Observer:   obs,
		WhitePoint: ecolor.NewWhitePoint(obs, illum),
	}

	if err := rd.readFile(path); err != nil {
		return nil, err
	}

	for row := range rd.patches {
		for _, cp := range rd.patches[row] {
			cp.init(obs, illum, rd.WhitePoint)
		}
	}

	log.Printf("refdata: loaded %s, %d rows x %d cols, %s/%s\n", path, rd.rows, rd.cols, illum, obs)
	if o.verbosity > 0 {
		log.Printf("refdata dump:\n%s", rd.DumpString())
	}

	return rd, nil
}

func (rd *RefData)RowCount() int   { return rd.rows }
func (rd *RefData)ColCount() int   { return rd.cols }
func (rd *RefData)PatchCount() int { return rd.rows * rd.cols }

func (rd *RefData)ColorPatch(row, col int) (*ColorPatch, error) {
	if row < 0 || row >= rd.rows || col < 0 || col >= rd.cols {
		return nil, errors.Wrapf(ErrOutOfRange, "patch (%d,%d) of %dx%d", row, col, rd.rows, rd.cols)
	}
	return rd.patches[row][col], nil
}

// patch is for internal loops that already know the indices are good
func (rd *RefData)patch(row, col int) *ColorPatch { return rd.patches[row][col] }

func (rd *RefData)get(row, col int, f func(*ColorPatch) float64) (float64, error) {
	cp, err := rd.ColorPatch(row, col)
	if err != nil {
		return 0, err
	}
	return f(cp), nil
}

func (rd *RefData)GetX(row, col int) (float64, error) { return rd.get(row, col, (*ColorPatch).X) }
func (rd *RefData)GetY(row, col int) (float64, error) { return rd.get(row, col, (*ColorPatch).Y) }
func (rd *RefData)GetZ(row, col int) (float64, error) { return rd.get(row, col, (*ColorPatch).Z) }
func (rd *RefData)GetL(row, col int) (float64, error) { return rd.get(row, col, (*ColorPatch).L) }
func (rd *RefData)GetA(row, col int) (float64, error) { return rd.get(row, col, (*ColorPatch).A) }
func (rd *RefData)GetB(row, col int) (float64, error) { return rd.get(row, col, (*ColorPatch).B) }

// EstimatedWhitePatch is the patch with the highest Y. Ties go to the
// first one found, scanning row by row.
func (rd *RefData)EstimatedWhitePatch() *ColorPatch {
	best := rd.patch(0, 0)
	for row:=0; row<rd.rows; row++ {
		for col:=0; col<rd.cols; col++ {
			if cp := rd.patch(row, col); cp.Y() > best.Y() {
				best = cp
			}
		}
	}
	return best
}

// PatchIndex is the column of a patch in all the matrices we build; row
// major, so it lines up with the camera signal matrices.
func (rd *RefData)PatchIndex(row, col int) int { return col + row*rd.cols }
