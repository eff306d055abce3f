package refdata

import(
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/btrgb/pkg/ecolor"
)

// curve gives a distinct, easily predicted value for every sample
func curve(row, col, i int) float64 {
	return float64(row+1)/10.0 + float64(col+1)/100.0 + float64(i)/10000.0
}

func refCSV(rows, cols, nWavelengths int, f func(row, col, i int) float64) string {
	var sb strings.Builder
	sb.WriteString("Wavelength")
	for col:=0; col<cols; col++ {
		for row:=0; row<rows; row++ {
			fmt.Fprintf(&sb, ",%c:%d", 'A'+col, row+1)
		}
	}
	sb.WriteString("\n")

	for i:=0; i<nWavelengths; i++ {
		fmt.Fprintf(&sb, "%d", ecolor.IndexToWavelength(i))
		for col:=0; col<cols; col++ {
			for row:=0; row<rows; row++ {
				fmt.Fprintf(&sb, ",%g", f(row, col, i))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func load(t *testing.T, contents string) (*RefData, error) {
	t.Helper()
	path := writeFile(t, t.TempDir(), "custom.csv", contents)
	return New(path, ecolor.IlluminantD50, ecolor.Observer1931)
}

func TestDimensions(t *testing.T) {
	tests := []struct{ rows, cols int }{
		{1, 1}, {2, 1}, {3, 2}, {4, 6}, {10, 13},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%dx%d", tc.rows, tc.cols), func(t *testing.T) {
			rd, err := load(t, refCSV(tc.rows, tc.cols, ecolor.WavelengthCount, curve))
			require.NoError(t, err)
			assert.Equal(t, tc.rows, rd.RowCount())
			assert.Equal(t, tc.cols, rd.ColCount())
			assert.Equal(t, tc.rows*tc.cols, rd.PatchCount())

			cp, err := rd.ColorPatch(tc.rows-1, tc.cols-1)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("%c:%d", 'A'+tc.cols-1, tc.rows), cp.Name())
			assert.Equal(t, ecolor.WavelengthCount, cp.SampleCount())
		})
	}
}

func TestParseErrors(t *testing.T) {
	good := refCSV(2, 2, ecolor.WavelengthCount, curve)
	lines := strings.Split(strings.TrimSpace(good), "\n")

	tests := []struct{
		name     string
		contents string
	}{
		{"empty", ""},
		{"header only label", "Wavelength\n"},
		{"non rectangular header", "Wavelength,A:1,A:2,B:1\n" + strings.Join(lines[1:], "\n")},
		{"uneven column runs", "Wavelength,A:1,A:2,A:3,B:1\n" + strings.Join(lines[1:], "\n")},
		{"too few rows", strings.Join(lines[:len(lines)-1], "\n")},
		{"too many rows", good + "740,1,1,1,1\n"},
		{"short row", strings.Join(lines[:5], "\n") + "\n430,0.1,0.2\n" + strings.Join(lines[6:], "\n")},
		{"bad value", strings.Join(lines[:5], "\n") + "\n430,0.1,zebra,0.3,0.4\n" + strings.Join(lines[6:], "\n")},
		{"bad wavelength", strings.Join(lines[:5], "\n") + "\nfoo,0.1,0.2,0.3,0.4\n" + strings.Join(lines[6:], "\n")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, tc.contents)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse), "got %v", err)
		})
	}
}

func TestLenientFormatting(t *testing.T) {
	contents := refCSV(2, 3, ecolor.WavelengthCount, curve)
	contents = strings.ReplaceAll(contents, "\n", ",\n\n")  // trailing commas, blank lines
	contents = strings.ReplaceAll(contents, ",", ", ")

	rd, err := load(t, contents)
	require.NoError(t, err)
	assert.Equal(t, 2, rd.RowCount())
	assert.Equal(t, 3, rd.ColCount())
}

func TestFileResolution(t *testing.T) {
	assert.False(t, IsCustom("CCSG_Reflectance_Data.csv"))
	assert.True(t, IsCustom("/tmp/CCSG_Reflectance_Data.csv"))

	dir := t.TempDir()
	writeFile(t, dir, "CCSG_Reflectance_Data.csv", refCSV(2, 1, ecolor.WavelengthCount, curve))

	rd, err := New("CCSG_Reflectance_Data.csv", ecolor.IlluminantD65, ecolor.Observer1964, WithRefDataDir(dir))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "CCSG_Reflectance_Data.csv"), rd.Filename)
	assert.Equal(t, ecolor.IlluminantD65, rd.WhitePoint.Illuminant)

	_, err = New("CCSG_Reflectance_Data.csv", ecolor.IlluminantD50, ecolor.Observer1931, WithRefDataDir(t.TempDir()))
	assert.True(t, errors.Is(err, ErrFileRead), "got %v", err)

	_, err = New(filepath.Join(dir, "nope.csv"), ecolor.IlluminantD50, ecolor.Observer1931)
	assert.True(t, errors.Is(err, ErrFileRead), "got %v", err)
}

func TestColorPatchRange(t *testing.T) {
	rd, err := load(t, refCSV(3, 2, ecolor.WavelengthCount, curve))
	require.NoError(t, err)

	for _, rc := range [][2]int{{3, 0}, {0, 2}, {-1, 0}, {0, -1}} {
		_, err := rd.ColorPatch(rc[0], rc[1])
		assert.True(t, errors.Is(err, ErrOutOfRange), "(%d,%d)", rc[0], rc[1])
		_, err = rd.GetL(rc[0], rc[1])
		assert.True(t, errors.Is(err, ErrOutOfRange))
	}

	cp, err := rd.ColorPatch(2, 1)
	require.NoError(t, err)
	v, err := cp.ReflectanceAt(400)
	require.NoError(t, err)
	assert.Equal(t, curve(2, 1, 2), v)
	_, err = cp.ReflectanceAt(405)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestAsMatrixRoundTrip(t *testing.T) {
	rows, cols := 4, 3
	rd, err := load(t, refCSV(rows, cols, ecolor.WavelengthCount, curve))
	require.NoError(t, err)

	m := rd.AsMatrix()
	r, c := m.Dims()
	assert.Equal(t, ecolor.WavelengthCount, r)
	assert.Equal(t, rows*cols, c)

	for i:=0; i<ecolor.WavelengthCount; i++ {
		for row:=0; row<rows; row++ {
			for col:=0; col<cols; col++ {
				assert.Equal(t, curve(row, col, i), m.At(i, col+row*cols))
			}
		}
	}

	xyz, lab := rd.XYZMatrix(), rd.LabMatrix()
	labs := rd.Labs()
	for row:=0; row<rows; row++ {
		for col:=0; col<cols; col++ {
			y, _ := rd.GetY(row, col)
			l, _ := rd.GetL(row, col)
			assert.Equal(t, y, xyz.At(1, rd.PatchIndex(row, col)))
			assert.Equal(t, l, lab.At(0, rd.PatchIndex(row, col)))
			assert.Equal(t, l, labs[rd.PatchIndex(row, col)].L)
		}
	}
}

func TestPerfectReflector(t *testing.T) {
	// patch (1,0) reflects everything, so it is the white patch and
	// sits exactly on the white point
	flat := func(row, col, i int) float64 {
		if row == 1 && col == 0 {
			return 1.0
		}
		return 0.2
	}

	for _, illum := range []ecolor.IlluminantType{ecolor.IlluminantA, ecolor.IlluminantD50, ecolor.IlluminantD65} {
		path := writeFile(t, t.TempDir(), "flat.csv", refCSV(2, 2, ecolor.WavelengthCount, flat))
		rd, err := New(path, illum, ecolor.Observer1931)
		require.NoError(t, err)

		wp := rd.EstimatedWhitePatch()
		assert.Equal(t, 1, wp.Row())
		assert.Equal(t, 0, wp.Col())
		assert.InDelta(t, rd.WhitePoint.X, wp.X(), 1e-9)
		assert.InDelta(t, 100.0, wp.Y(), 1e-9)
		assert.InDelta(t, 100.0, wp.L(), 1e-9)
		assert.InDelta(t, 0.0, wp.A(), 1e-9)
		assert.InDelta(t, 0.0, wp.B(), 1e-9)

		gray, _ := rd.ColorPatch(0, 0)
		assert.InDelta(t, 20.0, gray.Y(), 1e-9)
		assert.InDelta(t, 0.0, gray.A(), 1e-9)
	}
}

func TestDump(t *testing.T) {
	rd, err := load(t, refCSV(2, 2, ecolor.WavelengthCount, curve))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rd.Dump(&buf))
	out := buf.String()
	assert.Contains(t, out, "ValueType,A:1,A:2,B:1,B:2")
	assert.Contains(t, out, "White Patch,B:2")
	assert.Contains(t, out, "Xn:")
}
