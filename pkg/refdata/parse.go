package refdata

import(
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/abworrall/btrgb/pkg/ecolor"
)

// The file looks like this (with many more rows and columns):
//
//   Wavelength,A:1,A:2,B:1,B:2
//   380,0.0512,0.0498,0.0611,0.0623
//   390,...
//
// The header names each patch as <patchId>:<suffix>; a run of tokens
// sharing a patchId is one column of the target, top to bottom. The data
// rows follow the same column-major order, one row per wavelength.

func (rd *RefData)readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(ErrFileRead, "read '%s': %v", path, err)
	}
	defer f.Close()

	if err := rd.parse(f); err != nil {
		return errors.Wrapf(err, "parse '%s'", path)
	}
	return nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1  // we check the counts ourselves, with better errors
	cr.TrimLeadingSpace = true
	return cr
}

// spreadsheets like to leave trailing empty cells around
func trimRecord(rec []string) []string {
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	for len(rec) > 0 && rec[len(rec)-1] == "" {
		rec = rec[:len(rec)-1]
	}
	return rec
}

func (rd *RefData)parse(r io.Reader) error {
	cr := newReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return errors.Wrap(ErrParse, "empty file")
	} else if err != nil {
		return errors.Wrapf(ErrParse, "header: %v", err)
	}

	if err := rd.parseHeader(trimRecord(header)); err != nil {
		return err
	}

	nRows := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return errors.Wrapf(ErrParse, "data row %d: %v", nRows+1, err)
		}

		rec = trimRecord(rec)
		if len(rec) == 0 {
			continue
		}
		if nRows >= ecolor.WavelengthCount {
			return errors.Wrapf(ErrParse, "more than %d wavelength rows", ecolor.WavelengthCount)
		}
		if err := rd.parseLine(nRows, rec); err != nil {
			return err
		}
		nRows++
	}

	if nRows != ecolor.WavelengthCount {
		return errors.Wrapf(ErrParse, "found %d wavelength rows, need %d", nRows, ecolor.WavelengthCount)
	}

	return nil
}

func colID(token string) string {
	if i := strings.Index(token, ":"); i >= 0 {
		return token[:i]
	}
	return token
}

// parseHeader works out the grid dimensions, and names the patches.
func (rd *RefData)parseHeader(tokens []string) error {
	if len(tokens) < 2 {
		return errors.Wrap(ErrParse, "header has no patches")
	}
	tokens = tokens[1:]  // wavelength label

	cols := 0
	current := ""
	for i, tok := range tokens {
		if id := colID(tok); i == 0 || id != current {
			cols++
			current = id
		}
	}

	if len(tokens) % cols != 0 {
		return errors.Wrapf(ErrParse, "header has %d patches, not divisible into %d columns", len(tokens), cols)
	}
	rows := len(tokens) / cols

	rd.rows, rd.cols = rows, cols
	rd.patches = make([][]*ColorPatch, rows)
	for row:=0; row<rows; row++ {
		rd.patches[row] = make([]*ColorPatch, cols)
		for col:=0; col<cols; col++ {
			rd.patches[row][col] = newColorPatch(row, col)
		}
	}

	i := 0
	for col:=0; col<cols; col++ {
		for row:=0; row<rows; row++ {
			if colID(tokens[i]) != colID(tokens[col*rows]) {
				return errors.Wrapf(ErrParse, "header token '%s' is not in column '%s'", tokens[i], colID(tokens[col*rows]))
			}
			rd.patches[row][col].name = tokens[i]
			i++
		}
	}

	return nil
}

// parseLine reads one wavelength's worth of reflectances. n is the index
// of the data row, which fixes the wavelength.
func (rd *RefData)parseLine(n int, rec []string) error {
	if _, err := strconv.ParseFloat(rec[0], 64); err != nil {
		return errors.Wrapf(ErrParse, "data row %d: wavelength '%s' is not a number", n+1, rec[0])
	}

	if want := 1 + rd.rows*rd.cols; len(rec) != want {
		return errors.Wrapf(ErrParse, "data row %d (%dnm): %d items, want %d", n+1,
			ecolor.IndexToWavelength(n), len(rec), want)
	}

	i := 1
	for col:=0; col<rd.cols; col++ {
		for row:=0; row<rd.rows; row++ {
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				return errors.Wrapf(ErrParse, "data row %d, patch (%d,%d): '%s' is not a number", n+1, row+1, col+1, rec[i])
			}
			rd.patches[row][col].append(v)
			i++
		}
	}

	return nil
}
