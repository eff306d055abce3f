package refdata

import(
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Dump writes the derived XYZ and Lab values as CSV-ish text, along with
// the white point and the estimated white patch. It is for eyeballing
// against the values published with the target.
func (rd *RefData)Dump(w io.Writer) error {
	names := []string{"ValueType"}
	vals := map[string][]string{}
	order := []string{"X", "Y", "Z", "L*", "a*", "b*"}

	for col:=0; col<rd.cols; col++ {
		for row:=0; row<rd.rows; row++ {
			cp := rd.patch(row, col)
			names = append(names, cp.name)
			for i, v := range []float64{cp.X(), cp.Y(), cp.Z(), cp.L(), cp.A(), cp.B()} {
				vals[order[i]] = append(vals[order[i]], fmt.Sprintf("%f", v))
			}
		}
	}

	wp := rd.EstimatedWhitePatch()

	var err error
	p := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	p("%s\n", rd.Filename)
	p("%s\n", rd.WhitePoint)
	p("%s\n", strings.Join(names, ","))
	for i, k := range order {
		p("%s,%s\n", k, strings.Join(vals[k], ","))
		if i == 2 || i == 5 {
			p("\n")
		}
	}
	p("White Patch,%s\n", wp.name)
	p("Y Value,%f,Row,%d,Col,%d\n", wp.Y(), wp.row, wp.col)

	return err
}

func (rd *RefData)DumpString() string {
	var buf bytes.Buffer
	rd.Dump(&buf)
	return buf.String()
}
