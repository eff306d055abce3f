package calib

import(
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Channels is fixed: two exposures, three channels each.
const Channels = 6

// Params is a flat parameter vector, as the optimizer sees it, with a
// matrix view (and for color managed calibration, an offset view) laid
// over the same memory. Writes to the vector show up in the views.
type Params struct {
	buf       []float64
	rows      int
	hasOffset bool
	m         *mat.Dense
}

func paramLen(rows int, withOffset bool) int {
	if withOffset {
		return rows*Channels + Channels
	}
	return rows * Channels
}

// NewParams allocates a zeroed vector for a rows x Channels matrix,
// optionally followed by Channels offsets.
func NewParams(rows int, withOffset bool) *Params {
	p, _ := ParamsOver(make([]float64, paramLen(rows, withOffset)), rows, withOffset)
	return p
}

// ParamsOver lays the views over x itself; nothing is copied.
func ParamsOver(x []float64, rows int, withOffset bool) (*Params, error) {
	if len(x) != paramLen(rows, withOffset) {
		return nil, errors.Wrapf(ErrDimension, "parameter vector has %d values, want %d", len(x), paramLen(rows, withOffset))
	}
	return &Params{
		buf:       x,
		rows:      rows,
		hasOffset: withOffset,
		m:         mat.NewDense(rows, Channels, x[:rows*Channels]),
	}, nil
}

func (p *Params)Len() int            { return len(p.buf) }
func (p *Params)Vector() []float64   { return p.buf }
func (p *Params)M() *mat.Dense       { return p.m }

// Offset is nil when there isn't one.
func (p *Params)Offset() []float64 {
	if !p.hasOffset {
		return nil
	}
	return p.buf[p.rows*Channels:]
}

func (p *Params)Set(x []float64) error {
	if len(x) != len(p.buf) {
		return errors.Wrapf(ErrDimension, "setting %d values into %d params", len(x), len(p.buf))
	}
	copy(p.buf, x)
	return nil
}

// Clone copies the vector, so the result no longer aliases p.
func (p *Params)Clone() *Params {
	x := make([]float64, len(p.buf))
	copy(x, p.buf)
	c, _ := ParamsOver(x, p.rows, p.hasOffset)
	return c
}
